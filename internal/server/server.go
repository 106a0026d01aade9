// Package server is the reference recipe API: a Fiber application that
// serves the routes the cookbook client talks to.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cookbook/internal/config"
	"cookbook/internal/database"
	"cookbook/internal/middleware"
	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/repository"
	"cookbook/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// httpMetrics registers the HTTP collectors once per process; the default
// registry rejects a second registration.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("cookbook-api")
	})
	return prom
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	limiter        *middleware.Limiter
	userService    *service.UserService
	recipeService  *service.RecipeService
	ingredients    *service.IngredientService
	steps          *service.StepService
	commentService *service.CommentService
	imageService   *service.ImageService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	recipeRepo := repository.NewRecipeRepository(db, redisClient)
	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		limiter:        middleware.NewLimiter(redisClient, cfg.Env),
		userService:    service.NewUserService(repository.NewUserRepository(db), cfg.JWTSecret),
		recipeService:  service.NewRecipeService(recipeRepo),
		ingredients:    service.NewIngredientService(repository.NewIngredientRepository(db), recipeRepo),
		steps:          service.NewStepService(repository.NewStepRepository(db), recipeRepo),
		commentService: service.NewCommentService(repository.NewCommentRepository(db), recipeRepo),
		imageService:   service.NewImageService(cfg),
	}
}

// App builds the Fiber application with every middleware and route.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Cookbook API",
		BodyLimit:    int(s.imageService.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(httpMetrics().Middleware)
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, traceparent, tracestate",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	httpMetrics().RegisterAt(app, "/metrics")

	api := app.Group("/api")
	api.Static("/uploads", s.imageService.Dir())

	users := api.Group("/users")
	users.Post("/signup", s.limiter.RateLimit(5, 10*time.Minute, "signup"), s.Signup)
	users.Post("/login", s.limiter.RateLimit(10, 5*time.Minute, "login"), s.Login)

	api.Post("/image", s.OptionalAuth(), s.limiter.RateLimit(30, time.Minute, "image"), s.UploadImage)

	recipes := api.Group("/recipes")
	recipes.Get("/", s.ListRecipes)
	recipes.Get("/:id", s.GetRecipe)
	recipes.Post("/", s.AuthRequired(), s.CreateRecipe)
	recipes.Put("/:id", s.AuthRequired(), s.UpdateRecipe)
	recipes.Delete("/:id", s.AuthRequired(), s.DeleteRecipe)

	childRoutes(api.Group("/ingredients"), s.ingredients, s.AuthRequired())
	childRoutes(api.Group("/recipesteps"), s.steps, s.AuthRequired())

	comments := api.Group("/comments")
	comments.Get("/", s.ListComments)
	comments.Post("/", s.AuthRequired(), s.limiter.RateLimit(10, time.Minute, "create_comment"), s.CreateComment)
	comments.Put("/:id", s.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports unhealthy when the database does not answer. Redis
// is optional: without it the API runs uncached and without rate limits.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start serves on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	observability.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}

// errorHandler renders errors that escape a handler, including Fiber's own
// (unknown route, body too large).
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return respondError(c, err)
}
