package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/sourabhkushwaha427/dms-server/internal/config"
	"github.com/sourabhkushwaha427/dms-server/internal/document/service"
	"github.com/sourabhkushwaha427/dms-server/internal/document/store"
	"github.com/sourabhkushwaha427/dms-server/internal/richtext"
	serverhttp "github.com/sourabhkushwaha427/dms-server/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer closeStore()

	if cfg.UniofficeKey != "" {
		if err := richtext.SetLicense(cfg.UniofficeKey, cfg.UniofficeCustomer); err != nil {
			logger.Fatal().Err(err).Msg("unioffice license")
		}
	} else {
		logger.Warn().Msg("UNIOFFICE_LICENSE_KEY not set, .docx exports carry an unlicensed banner")
	}

	ex := service.NewExporter(logger, richtext.New(service.RichTextLayout))
	r := serverhttp.NewRouter(cfg, logger, st, ex)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Str("staging", cfg.StagingDir).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}

// openStore connects to Postgres when DATABASE_URL is set and falls back to
// an in-process store otherwise.
func openStore(cfg config.Config, logger zerolog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, documents are kept in memory")
		return store.NewMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info().Msg("connected to postgres")
	return pg, func() { _ = db.Close() }, nil
}
