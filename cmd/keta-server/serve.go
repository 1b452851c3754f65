package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/keta/internal/middleware"
	"github.com/dfryer1193/keta/internal/rest"
	"github.com/dfryer1193/keta/internal/schema"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	repo, database, err := a.openRepository()
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	s, err := schema.New()
	if err != nil {
		return err
	}

	metrics := middleware.NewMetricsCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gin.SetMode(gin.ReleaseMode)
	router := rest.NewRouter(rest.NewHandler(s, repo), rest.RouterConfig{
		BodyLimit: a.cfg.LimitBytes(),
		Metrics:   metrics,
		Gatherer:  registry,
	})

	srv := &http.Server{
		Addr:    a.cfg.Bind,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.Bind).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
