package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photohire-backend/internal/account"
	"photohire-backend/internal/auth"
	"photohire-backend/internal/booking"
	"photohire-backend/internal/chat"
	"photohire-backend/internal/config"
	"photohire-backend/internal/dashboard"
	"photohire-backend/internal/events"
	"photohire-backend/internal/httpapi"
	"photohire-backend/internal/photographer"
	"photohire-backend/internal/ratelimit"
	"photohire-backend/internal/realtime"
	"photohire-backend/pkg/logger"
	"photohire-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Event publishing is optional; a missing broker URL disables it.
	publisher := events.NewPublisher(cfg.AMQP.URL, log)
	defer publisher.Close()

	// Domain services
	accountStore := account.NewPostgresStore(db)
	accounts := account.NewService(accountStore, auth.Hasher{})
	bookings := booking.NewService(booking.NewPostgresStore(db), publisher, log)
	chats := chat.NewService(chat.NewPostgresStore(db))
	photographers := photographer.NewPostgresStore(db)
	stats := dashboard.NewStatsService(dashboard.NewPostgresStatsStore(db))

	var google *auth.GoogleVerifier
	if cfg.Google.ClientID != "" {
		google = auth.NewGoogleVerifier(cfg.Google.ClientID)
	}

	// Hubs and websocket handlers
	realtimeHub := realtime.NewHub(log)
	dashboardHub := dashboard.NewHub(log)
	metrics := dashboard.HubMetrics{Users: realtimeHub, Sessions: dashboardHub}
	realtimeWS := realtime.NewHandler(realtimeHub, chats, publisher, log)
	dashboardWS := dashboard.NewHandler(dashboardHub, metrics, log)

	broadcasterCtx, stopBroadcaster := context.WithCancel(rootCtx)
	go dashboard.RunMetricsBroadcaster(broadcasterCtx, dashboardHub, metrics, cfg.Dashboard.MetricsInterval, log)

	limiter := ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		handlers: httpapi.Handlers{
			Auth:          authManager,
			Google:        google,
			Refresher:     auth.NewRefresher(authManager, accountStore),
			Accounts:      accounts,
			Bookings:      bookings,
			Photographers: photographers,
			Chat:          chats,
			Stats:         stats,
			Hub:           realtimeHub,
		},
		db:          db,
		authMW:      auth.RequireAccessToken(authManager, accountStore),
		rateLimitMW: ratelimit.Middleware(limiter, subjectKey, log),
		realtimeWS:  realtimeWS,
		dashboardWS: dashboardWS,
	})

	// No WriteTimeout: the websocket endpoints hold connections open far
	// longer than any sane response deadline.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	// Drop live websocket connections so Shutdown is not held open by them.
	stopBroadcaster()
	realtimeHub.Close()
	dashboardHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

// subjectKey rate-limits per authenticated subject. Unauthenticated
// requests never reach the limiter.
func subjectKey(c *gin.Context) string {
	subject, err := auth.Subject(c.Request.Context())
	if err != nil {
		return ""
	}
	return subject
}
