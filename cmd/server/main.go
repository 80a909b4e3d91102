package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/tunepull/api/internal/client"
	"github.com/tunepull/api/internal/config"
	"github.com/tunepull/api/internal/handler"
	"github.com/tunepull/api/internal/middleware"
	"github.com/tunepull/api/internal/service"
	"github.com/tunepull/api/internal/storage"
	"github.com/tunepull/api/internal/strategy"
	"github.com/tunepull/api/pkg/response"
)

func main() {
	startedAt := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Output directory must exist before anything can convert
	store, err := storage.New(cfg.Storage.Dir, cfg.Storage.MaxFileAge, cfg.Storage.DeleteDelay)
	if err != nil {
		log.Fatalf("Failed to initialize output directory: %v", err)
	}

	// Initialize Redis client (rate limiting only; the limiter fails open
	// when Redis is unreachable)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: Redis not available, rate limiting disabled: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize external clients
	convertAPI := client.NewConvertAPIClient(&cfg.ConvertAPI)
	youtubeClient := client.NewYouTubeClient()

	// Build the auto-mode strategy chain in priority order. The remote API
	// goes first when configured; the local tool is always available.
	remoteAPI := strategy.NewRemoteAPIStrategy(convertAPI, store)
	localTool := strategy.NewLocalToolStrategy(
		cfg.YtDlp.Path,
		time.Duration(cfg.YtDlp.Timeout)*time.Second,
		store,
	)
	streamTranscode := strategy.NewStreamTranscodeStrategy(
		cfg.FFmpeg.Path,
		time.Duration(cfg.FFmpeg.Timeout)*time.Second,
		store,
	)

	chain := []strategy.Strategy{}
	if remoteAPI.IsConfigured() {
		chain = append(chain, remoteAPI)
	} else {
		log.Println("Info: conversion API not configured, using local tool only")
	}
	chain = append(chain, localTool)

	// Initialize services
	convertService := service.NewConvertService(chain, streamTranscode)

	// Initialize handlers
	convertHandler := handler.NewConvertHandler(convertService, validate)
	fetchHandler := handler.NewFetchHandler(youtubeClient, validate)
	downloadHandler := handler.NewDownloadHandler(store)
	healthHandler := handler.NewHealthHandler(startedAt, convertAPI.IsConfigured())
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // requests carry only JSON, not media
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check
	app.Get("/health", healthHandler.Health)

	// API routes
	api := app.Group("/api")
	api.Post("/convert", rateLimiter.ConvertLimit(cfg.RateLimit.ConvertPerMin), convertHandler.Convert)
	api.Post("/convert-from-stream", rateLimiter.ConvertLimit(cfg.RateLimit.ConvertPerMin), convertHandler.ConvertFromStream)
	api.Post("/fetch-youtube", rateLimiter.FetchLimit(cfg.RateLimit.FetchPerMin), fetchHandler.FetchPage)
	api.Get("/download/:filename", downloadHandler.Download)

	// Static front-end
	app.Static("/", cfg.Server.StaticDir)

	// Background sweep of expired artifacts
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go store.RunSweeper(sweepCtx, cfg.Storage.SweepInterval)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		stopSweeper()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (env: %s)", addr, cfg.Server.Env)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message)
}
