package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/config"
	"github.com/tenaflow/tena-api/internal/handlers"
	"github.com/tenaflow/tena-api/internal/logging"
	"github.com/tenaflow/tena-api/internal/middleware"
	"github.com/tenaflow/tena-api/internal/services"
	"github.com/tenaflow/tena-api/internal/store"
	"github.com/tenaflow/tena-api/internal/store/mongostore"
	"github.com/tenaflow/tena-api/internal/store/sqlstore"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if cfg.Admin.Create {
		if err := services.EnsureSuperAdmin(ctx, st, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password, logger); err != nil {
			return fmt.Errorf("create superadmin: %w", err)
		}
	}

	notifier := services.NewNotificationService(cfg.SMS.APIKey, cfg.SMS.URL, logger)
	if !notifier.Enabled() {
		logger.Info("TEXTBELT_API_KEY not set, SMS notifications disabled")
	}

	var gen services.Generator
	if cfg.AI.GeminiAPIKey != "" {
		g, err := services.NewGeminiGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			logger.Warn("gemini unavailable, using keyword replies", zap.Error(err))
		} else {
			gen = g
		}
	}
	assistant := services.NewAssistant(gen, logger)

	receipts, err := services.NewReceiptStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		return err
	}

	h := handlers.NewHandler(st, notifier, assistant, receipts, cfg.Payment.TelebirrNumber, logger)

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.Requests(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SecurityHeaders())

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	h.RegisterRoutes(r, limiter.Middleware())
	r.NoRoute(handlers.ClientFallback(cfg.Server.StaticDir))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications dropped", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore(st)

	n, err := services.Seed(ctx, st)
	if errors.Is(err, services.ErrAlreadySeeded) {
		logger.Info("store already holds data, nothing seeded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("sample data seeded", zap.Int("hospitals", n))
	return nil
}

// openStore connects to MongoDB, or to sqlite when configured or when
// MongoDB is unreachable and fallback is enabled. The sqlite store starts
// out with the demo data.
func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	if sc.Driver == config.DriverMongo {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		st, err := mongostore.Connect(connectCtx, sc.MongoURI, sc.MongoDatabase, logger)
		if err == nil {
			return st, nil
		}
		if !sc.Fallback {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		logger.Warn("MongoDB unreachable, falling back to sqlite", zap.Error(err))
	}

	st, err := sqlstore.Open(sc.SQLiteDSN, logger)
	if err != nil {
		return nil, err
	}
	if _, err := services.Seed(ctx, st); err != nil && !errors.Is(err, services.ErrAlreadySeeded) {
		_ = st.Close(ctx)
		return nil, fmt.Errorf("seed sqlite store: %w", err)
	}
	logger.Info("using sqlite store", zap.String("dsn", sc.SQLiteDSN))
	return st, nil
}

func closeStore(st store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		logger.Warn("close store", zap.Error(err))
	}
}
