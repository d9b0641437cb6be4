package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicport/clinicport/internal/adminctx"
	"github.com/clinicport/clinicport/internal/api/router"
	"github.com/clinicport/clinicport/internal/appointments"
	"github.com/clinicport/clinicport/internal/auth"
	appconfig "github.com/clinicport/clinicport/internal/config"
	"github.com/clinicport/clinicport/internal/http/handlers"
	"github.com/clinicport/clinicport/internal/observability/metrics"
	"github.com/clinicport/clinicport/internal/session"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded .env file")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicport gateway",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET must be set")
		os.Exit(1)
	}

	redisClient := buildRedisClient(cfg, logger)

	// Metrics register against the default Prometheus registerer.
	authMetrics := metrics.NewAuthMetrics(nil)
	gateMetrics := metrics.NewGateMetrics(nil)
	upstreamMetrics := metrics.NewUpstreamMetrics(nil)

	// Upstream client, stores and services
	api := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger, upstreamMetrics)
	sessionStore := session.NewStore(redisClient, cfg.SessionTTL)
	cookies := session.NewCookies(cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.Env != "development")
	authService := auth.NewService(api, sessionStore, authMetrics, logger)
	contextProvider := adminctx.NewProvider(api, redisClient, cfg.AdminContextTTL, logger)
	appointmentCache := appointments.NewCache(redisClient, cfg.AdminContextTTL)
	appointmentService := appointments.NewService(api, appointmentCache, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionStore, cookies, logger)
	adminHandler := handlers.NewAdminHandler(api, contextProvider, logger)
	superAdminHandler := handlers.NewSuperAdminHandler(api, logger)
	doctorHandler := handlers.NewDoctorHandler(api, appointmentService, logger)
	patientHandler := handlers.NewPatientHandler(api, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		AuthHandler:        authHandler,
		AdminHandler:       adminHandler,
		SuperAdminHandler:  superAdminHandler,
		DoctorHandler:      doctorHandler,
		PatientHandler:     patientHandler,
		SessionStore:       sessionStore,
		Cookies:            cookies,
		GateMetrics:        gateMetrics,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRatePerSec:    cfg.LoginRatePerSec,
		LoginRateBurst:     cfg.LoginRateBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildRedisClient connects the session mirror. Sessions cannot be
// established without it, so a failed ping is fatal.
func buildRedisClient(cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	return client
}
