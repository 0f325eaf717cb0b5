package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/norvik-erp/jobcard-api/internal/config"
	"github.com/norvik-erp/jobcard-api/internal/database"
	"github.com/norvik-erp/jobcard-api/internal/http/handler"
	"github.com/norvik-erp/jobcard-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	rateLimiter    *middleware.RateLimiter
	jobCardHandler *handler.JobCardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	jobCardHandler *handler.JobCardHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		rateLimiter:    rateLimiter,
		jobCardHandler: jobCardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/job-cards", func(r chi.Router) {
			r.Post("/", rt.jobCardHandler.Create)
			r.Get("/", rt.jobCardHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.jobCardHandler.Get)
				r.Put("/", rt.jobCardHandler.Update)
				r.Delete("/", rt.jobCardHandler.Delete)
				r.Put("/materials", rt.jobCardHandler.UpdateMaterials)
				r.Put("/labor", rt.jobCardHandler.UpdateLabor)
				r.Post("/notes", rt.jobCardHandler.AddNote)
				r.Post("/status", rt.jobCardHandler.ChangeStatus)
				r.Post("/invoice", rt.jobCardHandler.GenerateInvoice)
			})
		})

		r.Get("/technicians", rt.jobCardHandler.ListTechnicians)
	})

	return r
}
