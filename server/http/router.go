package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/sourabhkushwaha427/dms-server/internal/config"
	docHnd "github.com/sourabhkushwaha427/dms-server/internal/document/handler"
	"github.com/sourabhkushwaha427/dms-server/internal/document/service"
	"github.com/sourabhkushwaha427/dms-server/internal/document/store"
	"github.com/sourabhkushwaha427/dms-server/internal/middleware"
	"github.com/sourabhkushwaha427/dms-server/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, st store.Store, ex *service.Exporter) *chi.Mux {
	r := chi.NewRouter()
	importer := service.NewImporter(logger)

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))

	r.Get("/health", handlers.Health)

	r.Post("/documents/import", docHnd.Import(cfg, logger, importer, st))
	r.Get("/documents/{id}", docHnd.Get(logger, st))
	r.Get("/documents/{id}/export", docHnd.ExportStored(logger, ex, st))
	r.Post("/export", docHnd.Export(logger, ex))

	return r
}
