package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"part-scout-go/internal/ingest"
	"part-scout-go/internal/metrics"
	"part-scout-go/internal/repository"
	"part-scout-go/internal/scheduler"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	repo        *repository.Repository
	coordinator *ingest.Coordinator
	scheduler   *scheduler.Scheduler
	metrics     *metrics.Metrics
}

// NewHandlers creates new HTTP handlers. scheduler may be nil when
// mailbox polling is disabled.
func NewHandlers(repo *repository.Repository, coordinator *ingest.Coordinator, sched *scheduler.Scheduler, m *metrics.Metrics) *Handlers {
	return &Handlers{
		repo:        repo,
		coordinator: coordinator,
		scheduler:   sched,
		metrics:     m,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/ingest/eml", h.IngestEmail)

		api.GET("/listings", h.GetListings)
		api.PATCH("/listings/:id", h.UpdateListing)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunSchedulerOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}
