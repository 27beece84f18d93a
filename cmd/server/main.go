package main

import (
	"campus-market/internal/app"
	"campus-market/pkg/cache"
	"campus-market/pkg/config"
	"campus-market/pkg/database"
	"campus-market/pkg/logger"
	"campus-market/pkg/queue"
	"campus-market/pkg/storage"
)

// @title           Campus Market API
// @version         1.0
// @description     Campus classifieds backend: moderated listings with pickup addresses and media attachments.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	store, err := storage.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create attachment store client: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache and rate limiting: %v", err)
		redisClient = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, continuing without event publishing: %v", err)
		queueClient = nil
	}

	app.Run(cfg, log, db, store, queueClient, redisClient)
}
