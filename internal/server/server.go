// Package server assembles the HTTP API: middleware, routes and the
// listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tasktimer/backend/internal/cache"
	"tasktimer/backend/internal/config"
	"tasktimer/backend/internal/handlers"
	"tasktimer/backend/internal/middleware"
	"tasktimer/backend/internal/monitoring"
	"tasktimer/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Server struct {
	config  *config.Config
	db      *gorm.DB
	health  *monitoring.HealthChecker
	limiter *middleware.RateLimiter
	router  *gin.Engine
}

// New wires services and handlers around db. summaryCache may be nil, in
// which case summaries are computed on every request.
func New(cfg *config.Config, db *gorm.DB, summaryCache cache.Cache) *Server {
	s := &Server{
		config: cfg,
		db:     db,
		health: monitoring.NewHealthChecker(5 * time.Second),
	}

	s.health.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if summaryCache != nil {
		s.health.Register("cache", summaryCache.Health)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.BurstSize,
			CleanupInterval:   cfg.RateLimit.CleanupInterval,
		})
	}

	s.router = s.routes(services.NewSummaryCache(summaryCache, cfg.Cache.SummaryTTL))
	return s
}

func (s *Server) routes(summaries *services.SummaryCache) *gin.Engine {
	authService := services.NewAuthService(services.AuthConfig{
		Secret:          []byte(s.config.Auth.JWTSecret),
		Issuer:          s.config.Auth.Issuer,
		AccessTokenTTL:  s.config.Auth.AccessTokenTTL,
		RefreshTokenTTL: s.config.Auth.RefreshTokenTTL,
		BCryptCost:      s.config.Auth.BCryptCost,
	})
	registerService := services.NewRegisterService(s.config.Auth.BCryptCost)
	userService := services.NewUserService(summaries)
	taskService := services.NewTaskService(summaries)
	timerService := services.NewTimerService(summaries)
	summaryService := services.NewSummaryService(summaries)

	authHandler := handlers.NewAuthHandler(s.db, authService)
	registerHandler := handlers.NewRegisterHandler(s.db, registerService, authService)
	refreshHandler := handlers.NewRefreshHandler(s.db, authService)
	logoutHandler := handlers.NewLogoutHandler(s.db, authService)
	userHandler := handlers.NewUserHandler(s.db, userService)
	taskHandler := handlers.NewTaskHandler(s.db, taskService)
	timerHandler := handlers.NewTimerHandler(s.db, timerService)
	summaryHandler := handlers.NewSummaryHandler(s.db, summaryService)

	r := gin.New()
	r.Use(middleware.RequestID())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(middleware.RecoveryWithLog())
	if corsMiddleware := s.cors(); corsMiddleware != nil {
		r.Use(corsMiddleware)
	}
	r.Use(monitoring.MetricsMiddleware())
	if s.limiter != nil {
		r.Use(s.limiter.Middleware())
	}

	r.GET("/metrics", monitoring.Handler())

	api := r.Group("/api")
	api.GET("/health", monitoring.LivenessHandler())
	api.GET("/ready", s.health.ReadinessHandler())

	requireAuth := middleware.AuthMiddleware(authService, func(ctx context.Context, userID uuid.UUID) (bool, error) {
		_, err := userService.GetUser(s.db.WithContext(ctx), userID)
		if errors.Is(err, services.ErrUserNotFound) {
			return false, nil
		}
		return err == nil, err
	})

	auth := api.Group("/auth")
	{
		auth.POST("/register", registerHandler.Registration)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", refreshHandler.Refresh)
		auth.POST("/logout", logoutHandler.Logout)
		auth.GET("/me", requireAuth, userHandler.GetUserProfile)
	}

	protected := api.Group("", requireAuth)
	{
		protected.POST("/tasks", taskHandler.CreateTask)
		protected.GET("/tasks", taskHandler.GetTasks)
		protected.GET("/tasks/:id", taskHandler.GetTaskByID)
		protected.PUT("/tasks/:id", taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", taskHandler.DeleteTask)

		protected.POST("/tasks/:id/start", timerHandler.StartTimer)
		protected.POST("/tasks/:id/stop", timerHandler.StopTimer)
		protected.GET("/tasks/:id/time-entries", timerHandler.GetTimeEntries)

		protected.GET("/time-summary", summaryHandler.GetTimeSummary)
	}

	return r
}

// cors returns nil when no origin is configured, since gin-contrib/cors
// refuses an empty origin list.
func (s *Server) cors() gin.HandlerFunc {
	origins := s.config.Server.CORSOrigins
	if len(origins) == 0 {
		return nil
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
			corsConfig.AllowCredentials = false
			return cors.New(corsConfig)
		}
	}
	corsConfig.AllowOrigins = origins
	return cors.New(corsConfig)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	httpServer := &http.Server{
		Addr:         s.config.GetServerAddr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("tasktimer API listening on http://%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
