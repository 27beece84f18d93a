package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	postHTTP "campus-market/internal/controller/http"
	"campus-market/internal/repo/persistent"
	"campus-market/internal/usecase"
	"campus-market/pkg/config"
	"campus-market/pkg/jwt"
	"campus-market/pkg/logger"
	"campus-market/pkg/middleware"
	"campus-market/pkg/queue"
	"campus-market/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, store *storage.Client, queueClient *queue.Client, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Repositories and resolvers
	postRepo := persistent.NewPostRepository(db)
	categories := persistent.NewCategoryResolver(db)
	addresses := persistent.NewAddressResolver(db)
	users := persistent.NewUserResolver(db)

	// Use cases
	var events usecase.EventPublisher
	if queueClient != nil {
		events = queueClient
	}
	postUseCase := usecase.NewPostUseCase(postRepo, categories, addresses, users, store, redisClient, events, log)

	// HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, log)

	// Router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.AuthMiddleware(jwtService, users)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtService, users)
	requireAdmin := middleware.AdminMiddleware(jwtService, users)

	api := r.Group("/api/v1")
	if redisClient != nil {
		api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))
	}

	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/closedpostsamount", postHandler.ClosedPostsAmount)
		posts.GET("/withoutfavourites", optionalAuth, postHandler.WithoutFavourites)
		posts.GET("/favourites", requireAuth, postHandler.Favourites)
		posts.GET("/myposts", requireAuth, postHandler.MyPosts)
		posts.GET("/pending", requireAdmin, postHandler.PendingPosts)
		posts.GET("/closed", requireAdmin, postHandler.ClosedPosts)
		posts.GET("/rejected", requireAdmin, postHandler.RejectedPosts)
		posts.GET("/:id", optionalAuth, postHandler.GetPost)
		posts.GET("/:id/fulldetails", optionalAuth, postHandler.FullDetails)
		posts.POST("", requireAuth, postHandler.CreatePost)
		posts.PUT("/:id", requireAuth, postHandler.EditPost)
		posts.DELETE("/:id", requireAuth, postHandler.DeletePost)
		posts.POST("/:id/statechange", requireAdmin, postHandler.ChangeState)
		posts.POST("/:id/sell", requireAuth, postHandler.Sell)
		posts.DELETE("/:id/file/:file_id", requireAuth, postHandler.DeleteAttachment)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	if queueClient != nil {
		queueClient.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Server exited")
}
