package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/handlers"
	"github.com/Skryldev/sharebnb/middleware"
	"github.com/Skryldev/sharebnb/repo"
	"github.com/Skryldev/sharebnb/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	database, err := openDB(ctx, cfg.Database,
		db.NewLogHook(db.LogHookConfig{
			Logger:             logger,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
			LogArgs:            cfg.Database.LogArgs,
		}),
		db.NewMetricsHook(db.NewPrometheusCollector(registry)),
	)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.InfoContext(ctx, "database connected", "driver", cfg.Database.Driver)

	images, err := storage.NewClient(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		UseSSL:          cfg.Storage.UseSSL,
		PresignExpiry:   cfg.Storage.PresignExpiry,
	})
	if err != nil {
		return err
	}
	if !images.Enabled() {
		logger.WarnContext(ctx, "image storage disabled; uploads return 503")
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Deps{
		DB:             database,
		Users:          repo.NewUserRepo(database),
		Listings:       repo.NewListingRepo(database),
		Photos:         repo.NewPhotoRepo(database),
		Tokens:         tokens,
		Hasher:         auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Images:         images,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		Logger:      logger,
		CORSOrigin:  cfg.Server.CORSOrigin,
		AuthLimiter: middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, 10*time.Minute),
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
