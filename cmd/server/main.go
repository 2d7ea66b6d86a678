package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	_ "phonebook/docs" // swagger docs

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/lmittmann/tint"

	"phonebook/internal/auth"
	"phonebook/internal/cache"
	"phonebook/internal/config"
	"phonebook/internal/db"
	"phonebook/internal/handler"
	"phonebook/internal/mailer"
	"phonebook/internal/model"
	"phonebook/internal/repository"
	"phonebook/internal/router"
	"phonebook/internal/service"
	"phonebook/internal/storage"
)

// @title Phonebook API
// @version 1.0
// @description Contacts API with account registration, bearer sessions, email verification and avatar uploads.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	setupLogger(cfg.LogLevel, cfg.LogFormat)

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Contact{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	diskStorage, err := storage.NewDisk(cfg.AvatarDir, "avatars")
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	var sender mailer.Sender
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP, cfg.PublicBaseURL)
	} else {
		slog.Warn("no SMTP host configured, verification mail goes to the log")
		sender = mailer.NewLogSender(cfg.PublicBaseURL)
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	contactRepo := repository.NewContactRepository(gormDB)

	// Auth components; secret and hash cost are fixed here for the process
	// lifetime.
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, auth.SessionTokenExpiry)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	verificationService := service.NewVerificationService(userRepo, sender)
	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore, verificationService)
	avatarService := service.NewAvatarService(userRepo, diskStorage)
	contactService := service.NewContactService(contactRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	verifyHandler := handler.NewVerifyHandler(verificationService)
	avatarHandler := handler.NewAvatarHandler(avatarService)
	contactHandler := handler.NewContactHandler(contactService)

	router.Register(
		e,
		cfg,
		userRepo,
		tokenStore,
		authHandler,
		verifyHandler,
		avatarHandler,
		contactHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// setupLogger configures the global slog logger.
func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		h = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	}
	slog.SetDefault(slog.New(h))
}
