package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"chronoflux-server/internal/ai"
	"chronoflux-server/internal/config"
	"chronoflux-server/internal/database"
	"chronoflux-server/internal/handler"
	"chronoflux-server/internal/logger"
	"chronoflux-server/internal/messaging"
	"chronoflux-server/internal/models"
	"chronoflux-server/internal/service"
	"chronoflux-server/pkg/migration"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting ChronoFlux server", zap.String("port", cfg.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: database.MigrationsPath,
		MigrationsFS:   database.MigrationsFS,
	}, pool)
	if err := migrator.Up(ctx); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var publisher messaging.TurnEventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			log.Fatal("Failed to open RabbitMQ channel", zap.Error(err))
		}
		defer ch.Close()
		publisher, err = messaging.NewRabbitMQPublisher(ch, cfg.TurnEventQueue, log)
		if err != nil {
			log.Fatal("Failed to declare turn event queue", zap.Error(err))
		}
		log.Info("Turn event publishing enabled", zap.String("queue", cfg.TurnEventQueue))
	}

	gameRepo := database.NewPgGameRepository(pool, log)
	nationRepo := database.NewPgNationRepository(pool, log)
	relRepo := database.NewPgRelationshipRepository(pool, log)
	turnRepo := database.NewPgTurnRepository(pool, log)
	eventRepo := database.NewPgEventRepository(pool, log)
	scenarioRepo := database.NewPgScenarioRepository(pool, log)
	settingsRepo := database.NewRedisSettingsRepository(redisClient, log)
	txManager := database.NewTxManager(pool, log)

	gameService := service.NewGameService(gameRepo, nationRepo, relRepo, turnRepo, eventRepo, scenarioRepo, txManager, log)
	if err := gameService.EnsureBuiltinScenarios(ctx); err != nil {
		log.Fatal("Failed to seed scenarios", zap.Error(err))
	}

	reconciler := service.NewReconciler(gameRepo, nationRepo, relRepo, turnRepo, eventRepo, txManager, log)
	gatewayFactory := func(settings models.AISettings) (ai.Gateway, error) {
		return ai.NewGateway(settings, cfg.AIRequestTimeout, log)
	}
	turnService := service.NewTurnService(gameService, reconciler, gameRepo, turnRepo, settingsRepo, txManager, publisher, gatewayFactory, cfg.AIMaxRetries, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(handler.ZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	router.GET("/health", handler.HealthHandler)

	gameHandler := handler.NewGameHandler(gameService, turnService, settingsRepo, log)
	gameHandler.RegisterRoutes(router)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AIRequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
