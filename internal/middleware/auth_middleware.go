package middleware

import (
	"context"
	"strings"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/services"
	"github.com/gofiber/fiber/v2"
)

const sessionLocal = "session"

type sessionKey struct{}

// TokenVerifier checks a bearer token and returns its session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (services.Session, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the session for handlers.
func RequireAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return apperr.Unauthorized("Authorization required")
		}

		session, err := v.Verify(c.UserContext(), token)
		if err != nil {
			return err
		}

		attach(c, session)
		return c.Next()
	}
}

// OptionalAuth attaches a session when a valid token is present and otherwise lets the
// request continue anonymously.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if session, err := v.Verify(c.UserContext(), token); err == nil {
				attach(c, session)
			}
		}
		return c.Next()
	}
}

// SessionFrom returns the session attached by RequireAuth or OptionalAuth.
func SessionFrom(c *fiber.Ctx) (services.Session, bool) {
	session, ok := c.Locals(sessionLocal).(services.Session)
	return session, ok
}

// SessionFromContext returns the session carried by a request context.
func SessionFromContext(ctx context.Context) (services.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(services.Session)
	return session, ok
}

func attach(c *fiber.Ctx, session services.Session) {
	c.Locals(sessionLocal, session)
	c.SetUserContext(context.WithValue(c.UserContext(), sessionKey{}, session))
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
