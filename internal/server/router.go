package server

import (
	"context"

	"github.com/askhat/filesync/internal/config"
	"github.com/askhat/filesync/internal/metrics"
	"github.com/askhat/filesync/internal/transfer"
	"github.com/askhat/filesync/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config      config.Config
	DB          *pgxpool.Pool
	ObjectStore *minio.Client
	Intake      *webhook.Intake
	Records     *transfer.Repository

	// Queue reports the sync queue's depth for readiness; optional.
	Queue interface {
		Depth(ctx context.Context) (int, error)
	}
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.Intake != nil {
		webhook.RegisterRoutes(api, deps.Intake)
	}
	if deps.Records != nil {
		transfer.RegisterRoutes(api, deps.Records)
	}

	return router
}
