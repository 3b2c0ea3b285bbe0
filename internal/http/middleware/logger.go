package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LoggerLocalKey is the key under which the request-scoped logger is stored in Fiber's context locals.
const LoggerLocalKey = "logger"

// Logger is a middleware that writes one structured access log entry per request.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency_ms
//
// Handlers can retrieve a logger carrying the request_id through LoggerFrom.
func Logger(base *zap.Logger) fiber.Handler {
	if base == nil {
		base = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		reqLogger := base.With(zap.String("request_id", rid))
		c.Locals(LoggerLocalKey, reqLogger)

		err := c.Next()

		status := responseStatus(c, err)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			reqLogger.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			reqLogger.Warn("request", fields...)
		default:
			reqLogger.Info("request", fields...)
		}

		return err
	}
}

// LoggerFrom returns the request-scoped logger, or a no-op logger outside the Logger middleware.
func LoggerFrom(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(LoggerLocalKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
