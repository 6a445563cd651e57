package transfer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts file record lookups under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, records *Repository) {
	handler := &httpHandler{records: records}
	group.GET("/files/:fileID", handler.getFile)
}

type httpHandler struct {
	records *Repository
}

func (h *httpHandler) getFile(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("fileID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	rec, err := h.records.Get(c.Request.Context(), fileID)
	if err != nil {
		switch err {
		case ErrRecordNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch file"})
		}
		return
	}

	c.JSON(http.StatusOK, rec)
}
