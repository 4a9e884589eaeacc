package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	assetapp "github.com/wyfcoding/strategydesk/internal/asset/application"
	assetpersistence "github.com/wyfcoding/strategydesk/internal/asset/infrastructure/persistence"
	assethttp "github.com/wyfcoding/strategydesk/internal/asset/interfaces/http"
	orderapp "github.com/wyfcoding/strategydesk/internal/order/application"
	orderdomain "github.com/wyfcoding/strategydesk/internal/order/domain"
	ordermessaging "github.com/wyfcoding/strategydesk/internal/order/infrastructure/messaging"
	orderpersistence "github.com/wyfcoding/strategydesk/internal/order/infrastructure/persistence"
	orderhttp "github.com/wyfcoding/strategydesk/internal/order/interfaces/http"
	strategyapp "github.com/wyfcoding/strategydesk/internal/strategy/application"
	strategydomain "github.com/wyfcoding/strategydesk/internal/strategy/domain"
	strategypersistence "github.com/wyfcoding/strategydesk/internal/strategy/infrastructure/persistence"
	strategyhttp "github.com/wyfcoding/strategydesk/internal/strategy/interfaces/http"
	symbolapp "github.com/wyfcoding/strategydesk/internal/symbol/application"
	symboldomain "github.com/wyfcoding/strategydesk/internal/symbol/domain"
	symbolpersistence "github.com/wyfcoding/strategydesk/internal/symbol/infrastructure/persistence"
	symbolhttp "github.com/wyfcoding/strategydesk/internal/symbol/interfaces/http"

	assetdomain "github.com/wyfcoding/strategydesk/internal/asset/domain"
	"github.com/wyfcoding/strategydesk/pkg/cache"
	"github.com/wyfcoding/strategydesk/pkg/config"
	"github.com/wyfcoding/strategydesk/pkg/db"
	"github.com/wyfcoding/strategydesk/pkg/logger"
	"github.com/wyfcoding/strategydesk/pkg/metrics"
	"github.com/wyfcoding/strategydesk/pkg/middleware"
	"github.com/wyfcoding/strategydesk/pkg/mq"
	"github.com/wyfcoding/strategydesk/pkg/ratelimit"
	"github.com/wyfcoding/strategydesk/pkg/response"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting service",
		"service", cfg.ServiceName, "version", cfg.Version, "environment", cfg.Environment)

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init database", "error", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(
			&strategydomain.Strategy{},
			&symboldomain.Symbol{},
			&assetdomain.Asset{},
			&orderdomain.Order{},
		); err != nil {
			logger.Fatal(ctx, "Failed to migrate database schema", "error", err)
		}
		logger.Info(ctx, "Database schema migrated")
	}

	var redisCache *cache.RedisCache
	var limiter ratelimit.RateLimiter
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to init redis", "error", err)
		}
		defer redisCache.Close()
		limiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	}

	var publisher orderdomain.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to init kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = ordermessaging.NewKafkaEventPublisher(producer, cfg.Kafka.OrderEventTopic)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics server", "error", err)
		}
		database.SetMetrics(m)
	}

	strategyService := strategyapp.NewStrategyService(strategypersistence.NewStrategyRepository(database.DB))
	symbolService := symbolapp.NewSymbolService(symbolpersistence.NewSymbolRepository(database.DB))
	if redisCache != nil {
		symbolService = symbolService.WithCache(redisCache)
	}
	assetService := assetapp.NewAssetService(assetpersistence.NewAssetRepository(database.DB))
	orderService := orderapp.NewOrderService(
		orderpersistence.NewOrderRepository(database.DB), database, publisher, m)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if m != nil {
		router.Use(middleware.GinMetricsMiddleware(m))
	}
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	router.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context()); err != nil {
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		if redisCache != nil {
			if err := redisCache.Ping(c.Request.Context()); err != nil {
				response.ErrorWithStatus(c, http.StatusServiceUnavailable, "redis unreachable")
				return
			}
		}
		response.Success(c, gin.H{
			"status":  "ok",
			"service": cfg.ServiceName,
			"version": cfg.Version,
		})
	})

	// 占位接口：仅上报配置的券商通道，不发起真实调用
	router.GET("/broker/status", func(c *gin.Context) {
		response.Success(c, gin.H{
			"broker":          cfg.Broker.Name,
			"base_url":        cfg.Broker.BaseURL,
			"has_credentials": cfg.Broker.APIKey != "" && cfg.Broker.APISecret != "",
			"connected":       false,
			"mode":            "paper",
		})
	})

	api := router.Group("/api/v1")
	strategyhttp.NewStrategyHandler(strategyService).RegisterRoutes(api)
	symbolhttp.NewSymbolHandler(symbolService).RegisterRoutes(api)
	assethttp.NewAssetHandler(assetService).RegisterRoutes(api)
	orderhttp.NewOrderHandler(orderService).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", "error", err)
	}
	logger.Info(ctx, "Server exited")
}
