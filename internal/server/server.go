// Package server contains the HTTP handlers and routing for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sociopedia/internal/auth"
	"sociopedia/internal/cache"
	"sociopedia/internal/config"
	"sociopedia/internal/database"
	"sociopedia/internal/middleware"
	"sociopedia/internal/models"
	"sociopedia/internal/repository"
	"sociopedia/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds the dependencies shared by all handlers.
type Server struct {
	config         *config.Config
	app            *fiber.App
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	rateLimiter    *middleware.RateLimiter
	tokens         *auth.Tokens
	pictures       *service.PictureStore

	authService   *service.AuthService
	userService   *service.UserService
	friendService *service.FriendService
	postService   *service.PostService
}

// NewServer creates a new server instance, connecting to the database and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case caching, rate limiting and token
// revocation are disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if db == nil {
		return nil, errors.New("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	postRepo := repository.NewPostRepository(db)

	// The user cache and revocation list read the package client.
	cache.SetClient(redisClient)

	var revoked auth.RevocationStore
	if redisClient != nil {
		revoked = cache.NewRevocationStore()
	}
	tokens := auth.NewTokens(auth.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL(),
	}, revoked)

	limiterEnabled := redisClient != nil && cfg.Env != "development" && cfg.Env != "test"

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("sociopedia-api"),
		rateLimiter:    middleware.NewRateLimiter(redisClient, limiterEnabled),
		tokens:         tokens,
		pictures:       service.NewPictureStore(cfg.AssetsDir, cfg.MaxUploadBytes()),
	}
	s.authService = service.NewAuthService(userRepo, tokens, cfg.BcryptCost)
	s.userService = service.NewUserService(userRepo)
	s.friendService = service.NewFriendService(friendRepo, userRepo)
	s.postService = service.NewPostService(postRepo, userRepo)

	return s, nil
}

// NewApp builds the Fiber app with middleware and routes registered.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if s.config != nil && s.config.MaxUploadBytes() > 0 {
		// Leave headroom for multipart framing and text fields.
		bodyLimit = int(s.config.MaxUploadBytes()) + 1024*1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "Sociopedia API",
		BodyLimit:    bodyLimit,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler turns anything a handler did not classify into the standard error body.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return models.RespondWithError(c, fe.Code, &models.AppError{Code: models.CodeNotFound, Message: fe.Message})
		case fiber.StatusRequestEntityTooLarge, fiber.StatusBadRequest:
			return models.RespondWithError(c, fe.Code, models.NewValidationError(fe.Message))
		case fiber.StatusMethodNotAllowed:
			return models.RespondWithError(c, fe.Code, &models.AppError{Code: models.CodeValidation, Message: fe.Message})
		}
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing runs first so ContextMiddleware can pick up the trace id
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Pictures are fetched cross-origin by the client.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected responses still carry CORS headers.
	origins := ""
	if s.config != nil {
		origins = s.config.AllowedOrigins
	}
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() == fiber.MethodOptions {
				return true
			}
			return s.config != nil && s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/assets", s.pictures.Dir(), fiber.Static{
		Browse: false,
		MaxAge: 3600,
	})

	authRequired := middleware.AuthRequired(s.tokens)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", s.rateLimiter.Limit(5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", s.rateLimiter.Limit(10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", authRequired, s.Logout)

	posts := app.Group("/posts", authRequired)
	posts.Post("/", s.rateLimiter.Limit(30, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/", s.GetFeed)
	posts.Get("/:userId/posts", s.GetUserPosts)
	posts.Patch("/:id/like", s.rateLimiter.Limit(120, time.Minute, "like"), s.ToggleLike)
	posts.Post("/:id/comments", s.rateLimiter.Limit(60, time.Minute, "comment"), s.AddComment)

	users := app.Group("/users", authRequired)
	users.Get("/:id", s.GetUser)
	users.Patch("/:id", s.UpdateProfile)
	users.Get("/:id/friends", s.GetFriends)
	users.Patch("/:id/:friendId", s.rateLimiter.Limit(60, time.Minute, "friend_toggle"), s.ToggleFriend)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: an
// absent client is reported but does not fail readiness, a failing one does.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
