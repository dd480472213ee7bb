package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kitchenkin/recipes/backend/config"
	"github.com/kitchenkin/recipes/backend/internal/database"
	"github.com/kitchenkin/recipes/backend/internal/functions"
	"github.com/kitchenkin/recipes/backend/internal/imaging"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/server"
	"github.com/kitchenkin/recipes/backend/internal/service"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the session cache and rate limits; both degrade without it
	var redisClient *redis.Client
	if client, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, continuing without session cache and rate limits: %v", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingester, remover, err := imageBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to configure image storage: %v", err)
	}
	detector := functions.NewAllergenDetector(
		functions.NewClient(cfg.FunctionTimeout, cfg.FunctionMaxRetries),
		cfg.DetectAllergensEndpoint,
	)
	effects := service.NewSideEffectCoordinator(ingester, detector)

	auth := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		service.NewSessionCache(redisClient, cfg.SessionTTL),
		cfg.JWTSecret,
		cfg.TokenTTL,
	)

	srv, err := server.New(cfg, db, redisClient, server.Services{
		Recipes:    service.NewRecipeService(repository.NewRecipeRepository(db), effects, remover),
		Categories: service.NewCategoryService(repository.NewCategoryRepository(db)),
		Images:     service.NewImageService(effects),
		Auth:       auth,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go purgeSessions(ctx, auth)

	errChan := make(chan error, 1)
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Received shutdown signal")
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// imageBackend picks the remote image functions when they are configured and
// falls back to the in-process S3 pipeline otherwise
func imageBackend(ctx context.Context, cfg *config.Config) (service.ImageIngester, service.ImageRemover, error) {
	if cfg.ImageUploadEndpoint != "" {
		client := functions.NewClient(cfg.FunctionTimeout, cfg.FunctionMaxRetries)
		var remover service.ImageRemover
		if cfg.ImageDeleteEndpoint != "" {
			remover = functions.NewImageDeleter(client, cfg.ImageDeleteEndpoint)
		}
		log.Printf("Using image functions at %s", cfg.ImageUploadEndpoint)
		return functions.NewImageUploader(client, cfg.ImageUploadEndpoint), remover, nil
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	pipeline := imaging.NewPipeline(s3cfg)
	log.Printf("Using S3 image pipeline with bucket %s", s3cfg.BucketName)
	return pipeline, pipeline, nil
}

func purgeSessions(ctx context.Context, auth *service.AuthService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Printf("Failed to purge expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Purged %d expired sessions", n)
			}
		}
	}
}
