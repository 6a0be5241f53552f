package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/database"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/handler"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/logger"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/messaging"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/middleware"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/pipeline"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/refine"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/repository"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/service"
)

func main() {
	// .env is optional; container deployments pass real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	log.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))
	cfg.LogSummary(log)

	// --- External connections ---
	pool, err := setupPostgres(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.ClosePool(pool, log)

	if err := database.ApplyMigrations(pool, log); err != nil {
		log.Fatal("Failed to apply database migrations", zap.Error(err))
	}

	redisClient, err := setupRedis(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	notifier, mqConn, mqChannel, err := setupNotifier(cfg, log)
	if err != nil {
		log.Fatal("Failed to set up progress notifications", zap.Error(err))
	}
	if mqConn != nil {
		defer mqConn.Close()
	}
	if mqChannel != nil {
		defer mqChannel.Close()
	}

	// --- Dependency injection ---
	aiClient, err := ai.NewAIClient(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	pipelineSvc := pipeline.NewService(aiClient, cfg, log)
	refineEngine := refine.NewEngine(aiClient, cfg, log)
	gameRepo := repository.NewPgGameRepository(pool, log)
	gameCache := repository.NewRedisGameCache(redisClient, cfg.GameCacheTTL, log)
	gameService := service.NewGameService(pipelineSvc, refineEngine, gameRepo, gameCache, notifier, log)
	gameHandler := handler.NewGameHandler(gameService, log)

	// --- HTTP server (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.ZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if allowed := cfg.GetAllowedOrigins(); len(allowed) > 0 {
		corsConfig.AllowOrigins = allowed
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		log.Info("CORS_ALLOWED_ORIGINS not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	gameHandler.RegisterRoutes(router)

	// Prometheus middleware goes on after the routes are registered.
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// A build holds the response open for the whole pipeline run, so the
	// write timeout must outlast the slowest provider call.
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}

// setupPostgres builds the connection pool, retrying while the database
// container comes up.
func setupPostgres(cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	const maxRetries = 10
	const retryDelay = 3 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := database.NewPool(ctx, cfg, log)
		cancel()
		if err == nil {
			return pool, nil
		}

		lastErr = err
		log.Warn("PostgreSQL connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}

// setupRedis builds and pings the Redis client, retrying on failure.
func setupRedis(cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	const maxRetries = 10
	const retryDelay = 3 * time.Second

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		cancel()
		if err == nil {
			log.Info("Successfully connected to Redis",
				zap.String("address", opts.Addr),
				zap.Int("attempt", attempt),
			)
			return client, nil
		}

		client.Close()
		lastErr = fmt.Errorf("unable to ping redis: %w", err)
		log.Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}

// setupNotifier connects to RabbitMQ and builds the progress notifier. An
// empty RABBITMQ_URL disables publishing entirely; progress then only
// reaches the log.
func setupNotifier(cfg *config.Config, log *zap.Logger) (messaging.ProgressNotifier, *amqp.Connection, *amqp.Channel, error) {
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, progress events disabled")
		return messaging.NewNoopProgressNotifier(), nil, nil, nil
	}

	conn, err := connectRabbitMQ(cfg.RabbitMQURL, log)
	if err != nil {
		return nil, nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	notifier, err := messaging.NewAMQPProgressNotifier(ch, cfg.ProgressQueue, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, nil, err
	}
	return notifier, conn, ch, nil
}

// connectRabbitMQ dials the broker, retrying while it comes up.
func connectRabbitMQ(url string, log *zap.Logger) (*amqp.Connection, error) {
	const maxRetries = 10
	const retryDelay = 5 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			log.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			go func() {
				notifyClose := make(chan *amqp.Error)
				conn.NotifyClose(notifyClose)
				if closeErr := <-notifyClose; closeErr != nil {
					log.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}

		lastErr = err
		log.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, lastErr)
}
