package handlers

import (
	"errors"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       any                  `json:"data,omitempty"`
	Pagination *resource.Pagination `json:"pagination,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// ErrorHandler turns any error returned by a handler or middleware into a failure envelope.
// Internal details are logged, never sent.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			message := fe.Message
			if fe.Code == fiber.StatusRequestEntityTooLarge {
				message = "Request body too large"
			}
			return c.Status(fe.Code).JSON(Envelope{Message: message})
		}

		e := apperr.From(err)
		if e.Kind == apperr.KindInternal {
			event := log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path())
			if rid, ok := c.Locals("requestid").(string); ok {
				event = event.Str("requestId", rid)
			}
			event.Msg("request failed")
		}
		return c.Status(e.Status()).JSON(Envelope{Message: e.Message})
	}
}

func methodNotAllowed(c *fiber.Ctx) error {
	return apperr.MethodNotAllowed(c.Method())
}
