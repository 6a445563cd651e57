package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 5 * time.Second

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", readinessHandler(deps))
}

// readinessHandler verifies every store the pipeline depends on: the
// metadata database, the transfer bucket, and the sync queue.
func readinessHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := deps.DB.Ping(ctx); err != nil {
			degraded(c, "postgres", err.Error())
			return
		}

		exists, err := deps.ObjectStore.BucketExists(ctx, deps.Config.MinIO.Bucket)
		if err != nil {
			degraded(c, "minio", err.Error())
			return
		}
		if !exists {
			degraded(c, "minio", "transfer bucket missing")
			return
		}

		resp := gin.H{"status": "ok"}
		if deps.Queue != nil {
			depth, err := deps.Queue.Depth(ctx)
			if err != nil {
				degraded(c, "queue", err.Error())
				return
			}
			resp["queue_depth"] = depth
		}

		c.JSON(http.StatusOK, resp)
	}
}

func degraded(c *gin.Context, component, reason string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":    "degraded",
		"component": component,
		"error":     reason,
	})
}
