package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rengoky/Base-for-films/database"
	"github.com/Rengoky/Base-for-films/internal/cache"
	"github.com/Rengoky/Base-for-films/internal/config"
	"github.com/Rengoky/Base-for-films/internal/httpapi/handler"
	"github.com/Rengoky/Base-for-films/internal/httpapi/middleware"
	"github.com/Rengoky/Base-for-films/internal/httpapi/repository"
	"github.com/Rengoky/Base-for-films/internal/httpapi/service"
	"github.com/Rengoky/Base-for-films/internal/mail"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Cache is optional; with no redis address every cache call is a no-op.
	var titleCache *cache.TitleCache
	if cfg.RedisAddr != "" {
		titleCache, err = cache.NewTitleCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			logger.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer titleCache.Close()
		logger.Info("title cache enabled", "addr", cfg.RedisAddr)
	}

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, mailer, cfg)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, titleCache, logger)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, titleCache, logger)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authMW := middleware.AuthMiddleware(authService)
	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth", middleware.RateLimit(cfg.AuthRateLimit))
	handler.NewAuthHandler(authService).RegisterRoutes(authGroup)

	handler.NewCategoryHandler(categoryService).RegisterRoutes(v1.Group("/categories"), authMW)
	handler.NewGenreHandler(genreService).RegisterRoutes(v1.Group("/genres"), authMW)

	titles := v1.Group("/titles")
	handler.NewTitleHandler(titleService).RegisterRoutes(titles, authMW)
	handler.NewReviewHandler(reviewService).RegisterRoutes(titles, authMW)
	handler.NewCommentHandler(commentService).RegisterRoutes(titles, authMW)

	handler.NewUserHandler(userService).RegisterRoutes(v1.Group("/users"), authMW)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr, "env", cfg.GoEnv)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
