package middleware

import (
	"errors"
	"time"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger writes one access-log line per request. It must run after requestid.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = apperr.From(err).Status()
			}
		}

		event := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = log.Error()
		case status >= fiber.StatusBadRequest:
			event = log.Warn()
		}

		if rid, ok := c.Locals("requestid").(string); ok {
			event = event.Str("requestId", rid)
		}
		if session, ok := SessionFrom(c); ok {
			event = event.Str("userId", session.UserID)
		}
		if err != nil {
			event = event.Err(err)
		}

		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start)).
			Msg("request processed")
		return err
	}
}
