package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "civic_feed/docs"
	_ "civic_feed/internal/domain/notification"
	_ "civic_feed/internal/domain/post"
	_ "civic_feed/internal/domain/user"
	"civic_feed/internal/pkg/config"
	"civic_feed/internal/pkg/event"
	"civic_feed/internal/pkg/middleware"
	"civic_feed/internal/pkg/registry"
	"civic_feed/internal/pkg/worker"
	"civic_feed/pkg/cache"
	"civic_feed/pkg/database"
	"civic_feed/pkg/logger"
	"civic_feed/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Civic Feed API
// @version 1.0
// @description 动态、点赞、评论与通知服务
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	gin.SetMode(cfg.Server.Mode)

	db := database.InitDatabase()

	var rdb *redis.Client
	var cacheService cache.CacheService
	if cfg.Redis.Enabled {
		client, err := database.InitRedis(cfg.Redis)
		if err != nil {
			// redis 只用作缓存，不可用时退化为进程内缓存
			log.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
		} else {
			rdb = client
			cacheService = cache.NewRedisCache(client, "civic_feed")
		}
	}
	if cacheService == nil {
		cacheService = cache.NewMemoryCache()
	}

	var pool *worker.Pool
	if cfg.Engagement.AsyncSideEffects {
		pool = worker.NewPool(cfg.Engagement.Workers, cfg.Engagement.QueueSize, logger.Named("worker"))
		pool.Start()
	}
	bus := event.NewBus(logger.Named("event"), pool)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewMetricsCollector(reg)
	collector.Subscribe(bus)
	bus.OnFailure(collector.RecordSideEffectFailure)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sqlDB, err := db.DB(); err == nil {
		go collector.WatchDBStats(ctx, sqlDB, 15*time.Second)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware(logger.Named("http")))
	r.Use(collector.GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CorsOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", middleware.TraceHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		stats := database.Health(c.Request.Context(), db)
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	moduleCtx := &registry.ModuleContext{
		DB:      db,
		Redis:   rdb,
		Cache:   cacheService,
		Router:  r,
		Config:  cfg,
		Logger:  log,
		Events:  bus,
		Metrics: collector,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		log.Fatal("module init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	// 等待已入队的通知写完
	if pool != nil {
		pool.Stop()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
