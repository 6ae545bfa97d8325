package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/arzan03/ConsultCMS/internal/config"
	"github.com/arzan03/ConsultCMS/internal/handlers"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/arzan03/ConsultCMS/internal/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())
	cfg := rt.cfg

	var (
		backend   storage.Storage
		uploadDir string
	)
	switch cfg.StorageDriver {
	case config.StorageMinio:
		backend, err = storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, rt.log)
	default:
		var local *storage.Local
		local, err = storage.NewLocal(cfg.UploadDir, cfg.UploadPublicURL)
		if local != nil {
			backend, uploadDir = local, local.Dir()
		}
	}
	if err != nil {
		return err
	}

	auth := services.NewAuthService(rt.store, cfg.JWTSecret, cfg.JWTExpiresIn, rt.revoker(ctx), rt.log)
	app := handlers.NewApp(handlers.Options{
		Log:            rt.log,
		Resources:      rt.resources,
		Auth:           auth,
		Uploads:        services.NewUploadService(backend, cfg.UploadMaxBytes, rt.log),
		Metrics:        rt.metrics,
		UploadDir:      uploadDir,
		AllowedOrigins: strings.Join(cfg.Origins(), ","),
		AuthRateLimit:  cfg.AuthRateLimit,
		DevLogging:     !cfg.IsProduction(),
		Ready:          rt.ready,
	})

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	rt.log.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
