package handlers

import (
	"context"
	"time"

	"github.com/arzan03/ConsultCMS/internal/middleware"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// bodySlack leaves room for multipart framing and other form fields around the largest upload.
const bodySlack = 1 << 20

// Options wires the HTTP surface to its services.
type Options struct {
	Log       zerolog.Logger
	Resources *resource.Service
	Auth      *services.AuthService
	Uploads   *services.UploadService
	// Metrics is exposed at /metrics when set.
	Metrics *prometheus.Registry
	// UploadDir is served at /uploads when uploads are kept on local disk.
	UploadDir      string
	AllowedOrigins string
	AuthRateLimit  int
	// DevLogging switches to Fiber's console request logger.
	DevLogging bool
	// Ready reports whether backing services are reachable.
	Ready func(ctx context.Context) error
}

// NewApp builds the Fiber application with every route mounted.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ConsultCMS",
		Immutable:    true,
		BodyLimit:    int(opts.Uploads.MaxBytes()) + bodySlack,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler(opts.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.Metrics != nil {
		app.Use(middleware.Metrics(opts.Metrics, "consultcms"))
	}
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	if opts.DevLogging {
		app.Use(logger.New())
	} else {
		app.Use(middleware.RequestLogger(opts.Log))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if opts.Ready != nil {
			if err := opts.Ready(c.UserContext()); err != nil {
				opts.Log.Warn().Err(err).Msg("readiness check failed")
				return c.Status(fiber.StatusServiceUnavailable).JSON(Envelope{Message: "Service unavailable"})
			}
		}
		return respond(c, fiber.StatusOK, "ok", nil)
	})
	if opts.Metrics != nil {
		app.Get("/metrics", middleware.MetricsHandler(opts.Metrics))
	}
	if opts.UploadDir != "" {
		app.Static("/uploads", opts.UploadDir)
	}

	requireAuth := middleware.RequireAuth(opts.Auth)
	api := app.Group("/api")

	auth := NewAuthHandler(opts.Auth)
	loginHandlers := []fiber.Handler{auth.Login}
	if opts.AuthRateLimit > 0 {
		loginHandlers = append([]fiber.Handler{limiter.New(limiter.Config{
			Max:        opts.AuthRateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(Envelope{Message: "Too many requests, please try again later."})
			},
		})}, loginHandlers...)
	}
	api.Post("/auth", loginHandlers...)
	api.Get("/auth", requireAuth, auth.Session)
	api.Delete("/auth", requireAuth, auth.Logout)
	api.All("/auth", methodNotAllowed)

	upload := NewUploadHandler(opts.Uploads)
	api.Post("/upload", requireAuth, upload.Upload)
	api.All("/upload", methodNotAllowed)

	admin := NewAdminHandler(opts.Resources, opts.Uploads)
	adminGroup := api.Group("/admin", requireAuth, middleware.RequireAdmin)
	adminGroup.Get("/stats", admin.Stats)
	adminGroup.Delete("/uploads/:name", admin.DeleteUpload)

	resources := NewResourceHandler(opts.Resources, opts.Uploads)
	api.All("/:resource", middleware.OptionalAuth(opts.Auth), resources.Handle)

	return app
}
