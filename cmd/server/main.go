package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_chat/internal/config"
	"restaurant_chat/internal/handler"
	"restaurant_chat/internal/middleware"
	"restaurant_chat/internal/realtime"
	"restaurant_chat/internal/repository"
	"restaurant_chat/internal/service"
	"restaurant_chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL (справочные данные платформы заказов)
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis (записи чатов и счетчики лимитов)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев
	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	// Комнаты и соединения
	hub := realtime.NewHub(appLogger)

	// Инициализация сервисов
	services := service.NewServices(repos, cfg, hub, appLogger)

	// Переговоры о realtime-порте: один раз на процесс, без повторов.
	// nil-листенер означает фолбэк на основной сервер, который принимает
	// websocket с самого старта.
	rtListener, rtPort := realtime.NegotiatePort(cfg.Realtime.CandidatePorts, cfg.Server.Port, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, hub, rtPort, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, cfg.RateLimit, appLogger)

	// Основной сервер: health, discovery и websocket-фолбэк
	router := setupRouter(handlers, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Выделенный realtime-сервер, если порт удалось занять
	var rtSrv *http.Server
	if rtListener != nil {
		rtSrv = &http.Server{Handler: setupRealtimeRouter(handlers, cfg)}
		go func() {
			appLogger.Info("Starting realtime server", "port", rtPort)
			if err := rtSrv.Serve(rtListener); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Realtime server stopped", "error", err)
			}
		}()
	}

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if rtSrv != nil {
		if err := rtSrv.Shutdown(ctx); err != nil {
			appLogger.Warn("Realtime server forced to shutdown", "error", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// Discovery: фактический порт realtime-листенера
	router.GET("/realtime-port", rateLimitMiddleware.Limit(), handlers.Health.RealtimePort)

	// Websocket на основном сервере — фолбэк всегда работоспособен
	router.GET("/ws", rateLimitMiddleware.Limit(), handlers.WebSocket.Handle)

	return router
}

func setupRealtimeRouter(handlers *handler.Handlers, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	router.GET("/ws", handlers.WebSocket.Handle)

	return router
}
