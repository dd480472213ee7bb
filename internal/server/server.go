package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kitchenkin/recipes/backend/config"
	"github.com/kitchenkin/recipes/backend/internal/api"
	"github.com/kitchenkin/recipes/backend/internal/graph"
	"github.com/kitchenkin/recipes/backend/internal/middleware"
	"github.com/kitchenkin/recipes/backend/internal/observability"
	"github.com/kitchenkin/recipes/backend/internal/service"
)

// Services are the application services the HTTP layer exposes
type Services struct {
	Recipes    service.IRecipeService
	Categories service.ICategoryService
	Images     service.IImageService
	Auth       service.IAuthService
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the router: GraphQL at /graphql, REST endpoints under /api/v1,
// plus health and metrics. redisClient may be nil, which disables rate limiting.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, svc Services) (*Server, error) {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	schema, err := graph.NewSchema(svc.Recipes, svc.Categories, svc.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(observability.GinMiddleware())
	router.Use(middleware.Authenticate(svc.Auth))

	mutations := middleware.NewMutationRateLimiter(redisClient, cfg.MutationsPerHour)
	uploads := middleware.NewUploadRateLimiter(redisClient, cfg.UploadsPerHour)

	health := api.NewHealthHandler(db, redisClient)
	router.GET("/health", health.HealthCheck)
	router.GET("/metrics", observability.Handler())

	gql := graph.NewHandler(schema).WithMutationLimiter(mutations)
	router.POST("/graphql", gql.Serve)

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(svc.Auth).RegisterRoutes(v1)

	uploadGroup := v1.Group("", middleware.RequireIdentity())
	api.NewImageHandler(svc.Images, uploads.RateLimitMiddleware()).RegisterRoutes(uploadGroup)
	api.NewRecipeHandler(svc.Recipes, mutations.RateLimitMiddleware()).RegisterRoutes(v1)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
