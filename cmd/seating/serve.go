package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limaJavier/seating/internal/rest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the seating API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seatingService, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer closeStore()

		router := rest.NewRouter(seatingService, cfg.AllowedOrigins, zapLogger)

		srv := &http.Server{
			Addr:         cfg.ServerAddress,
			Handler:      router.Setup(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.AssignTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			zapLogger.Info("Starting server",
				zap.String("address", cfg.ServerAddress),
				zap.String("environment", cfg.Environment),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// Wait for interrupt signal
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigChan:
		case err := <-serverErr:
			zapLogger.Error("Server failed to start", zap.Error(err))
			return err
		}

		zapLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Server shutdown error", zap.Error(err))
			return err
		}
		zapLogger.Info("Server stopped")
		return nil
	},
}
