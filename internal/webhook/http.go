package webhook

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

type inboundEvent struct {
	EventType string          `json:"event_type" binding:"required"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
}

// RegisterRoutes mounts the webhook intake endpoint.
func RegisterRoutes(group *gin.RouterGroup, intake *Intake) {
	handler := &httpHandler{intake: intake}
	group.POST("/webhooks", handler.receive)
}

type httpHandler struct {
	intake *Intake
}

func (h *httpHandler) receive(c *gin.Context) {
	var req inboundEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_type and payload are required"})
		return
	}

	eventID, err := h.intake.Handle(c.Request.Context(), req.EventType, req.Payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"event_id": eventID})
}
