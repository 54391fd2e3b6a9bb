package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/bonsai/api/http/middleware"
	"github.com/artem13815/bonsai/api/http/presenter"
	"github.com/artem13815/bonsai/pkg/metrics"
)

// AppOptions configures the shared middleware stack.
type AppOptions struct {
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// NewApp builds a fiber app with recover, request id, access log, metrics and CORS.
func NewApp(opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "bonsai-api",
		ErrorHandler:          presenter.ErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: middleware.RequestIDKey,
	}))
	if opts.Logger != nil {
		app.Use(middleware.RequestLogger(opts.Logger))
	}
	if opts.Metrics != nil {
		app.Use(middleware.Metrics(opts.Metrics))
	}
	if len(opts.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(opts.CORSOrigins, ","),
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
		}))
	}
	return app
}

// NewLoginLimiter caps login attempts per client IP per minute.
// A nil storage keeps counters in process memory.
func NewLoginLimiter(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return presenter.Error(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
		Storage: storage,
	})
}
