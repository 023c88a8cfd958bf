// Package server contains the HTTP handlers for the blog's pages and JSON API.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blog/internal/admins"
	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/feed"
	"blog/internal/mailer"
	"blog/internal/middleware"
	"blog/internal/repository"
	"blog/internal/service"
	"blog/internal/sessionstore"
	"blog/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	sessionCookie = "blog_session"
	csrfCookie    = "csrf_"
	csrfFormField = "csrf_token"
	tokenTTL      = 24 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *session.Store
	csrfStorage    fiber.Storage
	admins         *admins.AllowList

	// source serves the read-only pages; it is the post service in
	// database mode and the feed snapshot in feed mode.
	source   service.PostSource
	readOnly bool

	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	authService    *service.AuthService
	tokenService   *service.TokenService
	postService    *service.PostService
	commentService *service.CommentService
	contactService *service.ContactService
}

// NewServer connects to the configured data source and builds a server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	redisClient := cache.Connect(cfg.RedisURL)

	if cfg.UsesFeed() {
		entries, err := feed.Fetch(ctx, cfg.FeedURL)
		if err != nil {
			return nil, err
		}
		return NewFeedServer(cfg, feed.NewSource(entries), redisClient, mailer.New(cfg)), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	allow, err := admins.LoadFile(cfg.AdminIDsFile)
	if err != nil {
		return nil, err
	}
	middleware.Logger.Info("admin allow-list loaded", slog.Int("admins", len(allow.IDs())))

	return NewServerWithDeps(cfg, db, redisClient, allow, mailer.New(cfg)), nil
}

// NewServerWithDeps creates a database-backed Server using already-initialized
// dependencies. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, allow *admins.AllowList, m mailer.Mailer) *Server {
	s := newBaseServer(cfg, redisClient)
	s.db = db
	s.admins = allow

	postCache := cache.New(redisClient)
	s.userRepo = repository.NewUserRepository(db)
	s.postRepo = repository.NewPostRepository(db, postCache)
	s.commentRepo = repository.NewCommentRepository(db, postCache)

	s.authService = service.NewAuthService(s.userRepo)
	s.tokenService = service.NewTokenService(cfg.JWTSecret, tokenTTL)
	s.postService = service.NewPostService(s.postRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.contactService = newContactService(cfg, m)
	s.source = s.postService
	return s
}

// NewFeedServer creates a read-only Server over a fetched feed. m may be nil,
// which disables the contact form.
func NewFeedServer(cfg *config.Config, src service.PostSource, redisClient *redis.Client, m mailer.Mailer) *Server {
	s := newBaseServer(cfg, redisClient)
	s.source = src
	s.readOnly = true
	s.admins = admins.New()
	s.contactService = newContactService(cfg, m)
	return s
}

// newContactService returns nil, which disables the contact form, when there
// is no mailer or no recipient.
func newContactService(cfg *config.Config, m mailer.Mailer) *service.ContactService {
	if m == nil || cfg.ContactRecipient == "" {
		middleware.Logger.Warn("contact form disabled", slog.Bool("mailer", m != nil), slog.Bool("recipient", cfg.ContactRecipient != ""))
		return nil
	}
	return service.NewContactService(m, cfg.ContactRecipient)
}

func newBaseServer(cfg *config.Config, redisClient *redis.Client) *Server {
	s := &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("blog"),
	}

	if redisClient != nil {
		s.csrfStorage = sessionstore.NewRedisStorage(redisClient, "csrf:")
	}
	s.sessions = session.New(session.Config{
		Storage:        sessionstore.New(redisClient),
		Expiration:     7 * 24 * time.Hour,
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: "Lax",
	})
	return s
}

// App builds the Fiber application with views, middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Blog",
		Views:        views.NewEngine(),
		ViewsLayout:  views.Layout,
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(middleware.TracingMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	// The CSRF cookie stays readable; its value is checked against storage.
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key:    cookieKey(s.config.SessionSecret),
		Except: []string{csrfCookie},
	}))

	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:" + csrfFormField,
		CookieName:     csrfCookie,
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		Expiration:     2 * time.Hour,
		ContextKey:     "csrf",
		Storage:        s.csrfStorage,
		// The JSON API authenticates with bearer tokens, not cookies.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}))

	app.Use(s.CurrentUser)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/admin/monitor", s.AdminOnly, monitor.New(monitor.Config{
		Title: "Blog Metrics Dashboard",
	}))

	app.Get("/", s.Home)
	app.Get("/post/:id", s.ShowPost)
	app.Get("/about", s.About)
	app.Get("/contact", s.Contact)
	app.Post("/contact", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "contact", middleware.FailOpen), s.SendContact)

	api := app.Group("/api")
	api.Get("/posts", s.APIListPosts)
	api.Get("/posts/:id", s.APIGetPost)

	if s.readOnly {
		return
	}

	app.Post("/post/:id", s.AddComment)

	app.Get("/register", s.RegisterPage)
	app.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register", middleware.FailOpen), s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login", middleware.FailOpen), s.Login)
	app.Get("/loginout", s.Logout)
	app.Get("/logout", s.Logout)

	app.Get("/new-post", s.AdminOnly, s.NewPost)
	app.Post("/new-post", s.AdminOnly, s.CreatePost)
	app.Get("/edit-post/:id", s.AdminOnly, s.EditPost)
	app.Post("/edit-post/:id", s.AdminOnly, s.UpdatePost)
	app.Get("/delete/:id", middleware.SameOrigin(), s.AdminOnly, s.DeletePost)

	api.Post("/auth/token", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "token", middleware.FailClosed), s.APIIssueToken)
	api.Get("/posts/:id/comments", s.APIListComments)
	api.Post("/posts/:id/comments", middleware.AuthRequired(s.tokenService), s.APIAddComment)
}

// HealthCheck reports database and Redis reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if s.db != nil {
		dbStatus = "healthy"
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	// Redis is optional: without it sessions and the cache stay in memory.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	body := fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"read_only": s.readOnly,
		"time":      time.Now(),
	}
	if dbStatus != "unhealthy" && s.source != nil {
		if n, err := s.source.CountPosts(ctx); err == nil {
			body["posts"] = n
		}
	}
	return c.Status(status).JSON(body)
}

// Start serves on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port), slog.Bool("read_only", s.readOnly))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
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

// cookieKey derives the 32-byte AES key encryptcookie expects from the
// configured session secret.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}
