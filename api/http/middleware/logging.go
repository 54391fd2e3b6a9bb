package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/bonsai/api/http/presenter"
)

// RequestIDKey matches the requestid middleware default context key.
const RequestIDKey = "requestid"

// handleChainError lets the app error handler write the response before we read the status.
func handleChainError(c *fiber.Ctx, chainErr error) {
	if chainErr == nil {
		return
	}
	if err := c.App().ErrorHandler(c, chainErr); err != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

// RequestLogger writes one access log line per request.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		handleChainError(c, c.Next())

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := c.Locals(RequestIDKey).(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if err, ok := c.Locals(presenter.ErrorKey).(error); ok {
			fields = append(fields, zap.Error(err))
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
		return nil
	}
}
