package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-auth/config"
	_ "storefront-auth/docs"
	"storefront-auth/internal/handler"
	"storefront-auth/internal/repository"
	"storefront-auth/internal/security"
	"storefront-auth/internal/service"
	"storefront-auth/internal/util"

	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Storefront auth
// @version 1.0
// @description Аутентификация магазина: выпуск, обновление и отзыв сессий на cookie

// @host localhost:5000
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fatal("ошибка загрузки конфигурации", err)
	}

	sessionCfg, err := cfg.SessionConfig()
	if err != nil {
		fatal("ошибка конфигурации сессий", err)
	}

	presignTTL, err := time.ParseDuration(cfg.S3Config.PresignTTL)
	if err != nil {
		fatal("ошибка парсинга s3Config.presign_ttl", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		fatal("не удалось подключиться к БД", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("ошибка при закрытии БД", slog.Any("err", err))
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		fatal("ошибка подключения к Redis", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("ошибка при закрытии Redis", slog.Any("err", err))
		}
	}()

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		fatal("ошибка создания S3 сервиса", err)
	}

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(redisClient)

	jwtService := security.NewJWTService(sessionCfg)
	authService := service.NewAuthenticationService(db, userRepo, refreshTokenRepo, jwtService, sessionCfg)
	imageService := service.NewImageService(s3Service, presignTTL)

	authHandler := handler.NewAuthenticationHandler(authService, sessionCfg)
	userHandler := handler.NewUserHandler(authService)
	imageHandler := handler.NewImageHandler(imageService)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": db,
		"redis":    redisClient,
	})

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(util.RequestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	handler.SetupHealthRoutes(router, healthHandler)
	handler.SetupAuthRoutes(router, authHandler, userHandler)
	handler.SetupImageRoutes(router, imageHandler, userHandler)

	runServer(ctx, srv)
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("сервер запущен", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("ошибка работы сервера", err)
		}
	case sig := <-signalChannel:
		slog.Info("получен сигнал остановки работы сервера", slog.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		slog.Error("ошибка при остановке сервера", slog.Any("err", err))
	} else {
		slog.Info("сервер успешно остановлен")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(message string, err error) {
	slog.Error(message, slog.Any("err", err))
	os.Exit(1)
}
