package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civix-service/internal/domain"
	apperrors "github.com/spec-kit/civix-service/pkg/util"
)

const principalKey = "auth_principal"

// CurrentUserFunc resolves a session artifact into the user it belongs to.
// The auth service provides the implementation.
type CurrentUserFunc func(ctx context.Context, artifact string) (*domain.User, error)

// Middleware validates session artifacts on protected routes.
type Middleware struct {
	cookieName  string
	currentUser CurrentUserFunc
}

// NewMiddleware constructs middleware.
func NewMiddleware(cookieName string, currentUser CurrentUserFunc) *Middleware {
	return &Middleware{cookieName: cookieName, currentUser: currentUser}
}

// ExtractArtifact returns the session artifact from the request. The cookie
// is authoritative when both the cookie and an Authorization header are
// present; the bearer header serves non-browser clients.
func (m *Middleware) ExtractArtifact(c *fiber.Ctx) string {
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie
	}
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	artifact := m.ExtractArtifact(c)
	if artifact == "" {
		return apperrors.NewUnauthorized(nil)
	}

	user, err := m.currentUser(c.UserContext(), artifact)
	if err != nil {
		return err
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// UserFromContext retrieves the authenticated user set by Handle.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
