package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkscout/browser"
	"linkscout/config"
	"linkscout/di"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API",
		Long: `Serve exposes the analysis pipeline over HTTP.

Endpoints:
  GET  /health        liveness
  POST /api/preview   {"url": "..."} -> analysis report`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
	addServeFlags(cmd)
	return cmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", "", "Listen port (overrides server.port)")
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	container, err := di.BuildContainer(configPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	port, _ := cmd.Flags().GetString("port")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(cfg *config.Config, logger *zap.Logger, chrome *browser.Chrome, router *gin.Engine) error {
		defer logger.Sync() //nolint:errcheck
		defer chrome.Close()

		server := cfg.GetServer()
		if port != "" {
			server.Port = port
		}
		return serve(ctx, server, router, logger)
	})
}

// serve runs the HTTP server until ctx is cancelled, then drains it
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("linkscout listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
