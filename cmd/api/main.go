package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if !cfg.UsePostgres() {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Redis is optional outside production: without it logout is a no-op
	// and rate limiting is off.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		if config.IsProduction() {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Redis unavailable, continuing without it: %v", err)
		redisClient = nil
	}

	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	membershipService := service.NewMembershipService(db)
	followService := service.NewFollowService(db)
	shoppingService := service.NewShoppingListService(db)

	var imageService *service.ImageService
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		imageService = service.NewImageService(s3cfg)
	}

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     120,
			KeyPrefix: "ratelimit",
		})
	}

	handlers := router.Handlers{
		Users:       api.NewUserHandler(db, authService, followService),
		Recipes:     api.NewRecipeHandler(recipeService, membershipService, followService, shoppingService, authService, imageService),
		Memberships: api.NewMembershipHandler(membershipService),
		Tags:        api.NewTagHandler(db),
		Ingredients: api.NewIngredientHandler(db),
	}

	engine := router.SetupRouter(handlers, authService, limiter)
	srv := server.New(engine, net.JoinHostPort(cfg.ServerHost, cfg.ServerPort))

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
