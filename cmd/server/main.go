package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/api/handlers"
	"github.com/nickbutler25/FPLOptimizer/internal/cache"
	"github.com/nickbutler25/FPLOptimizer/internal/config"
	"github.com/nickbutler25/FPLOptimizer/internal/fpl"
	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/ws"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.Init(cfg.LogLevel, cfg.IsDevelopment())
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting FPL optimizer")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis is optional; without it the service runs uncached.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, continuing without cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	cacheService := cache.New(redisClient)

	fplClient := fpl.NewClient(cfg.FPLBaseURL, cacheService)

	wsHub := ws.NewHub()
	go wsHub.Run()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	optimizationHandler := handlers.NewOptimizationHandler(fplClient, cacheService, wsHub, cfg)
	transferHandler := handlers.NewTransferHandler(fplClient, cacheService, cfg)
	playerHandler := handlers.NewPlayerHandler(fplClient)
	lineupHandler := handlers.NewLineupHandler()
	healthHandler := handlers.NewHealthHandler(cacheService)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizationHandler.Optimize)
		apiV1.POST("/optimize/advanced", optimizationHandler.OptimizeAdvanced)
		apiV1.POST("/lineup", lineupHandler.SelectLineup)
		apiV1.POST("/transfer-plan", transferHandler.PlanTransfers)
		apiV1.GET("/players", playerHandler.ListPlayers)
	}

	router.GET("/ws/optimization-progress/:job_id", wsHub.HandleProgress)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("FPL optimizer started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down FPL optimizer...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced to shutdown: %v", err)
	}

	log.Info("FPL optimizer exited")
}
