package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"geoverify/internal"
	"geoverify/internal/api"
	"geoverify/internal/config"
	"geoverify/internal/container"
	"geoverify/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		internal.NewStderrLogger("ERROR").Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger := internal.NewStderrLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *internal.Logger) error {
	appContainer, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer appContainer.Shutdown(context.Background())

	hub := api.NewSSEHub(logger)
	defer hub.Close()

	gin.SetMode(cfg.Server.GinMode)
	handler := api.NewHandler(api.Dependencies{
		Critiques:   appContainer.Critiques,
		Claims:      appContainer.Claims,
		Compliance:  appContainer.Compliance,
		Adjudicator: appContainer.Adjudicator,
		Analyzer:    appContainer.Analyzer,
		Critic:      appContainer.Critic,
		Events:      hub,
		Usage:       appContainer.Usage,
		ListLimit:   cfg.Validation.SessionListDefault,
		Logger:      logger,
	})

	reports, err := ui.NewApp(appContainer.Critiques, appContainer.Compliance, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(handler, hub))
	mux.Handle("/", reports)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("geoverify listening on :%s (store %s)", cfg.Server.Port, cfg.Store.Driver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
