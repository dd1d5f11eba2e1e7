package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civix-service/internal/api/dto"
	"github.com/spec-kit/civix-service/internal/auth"
	"github.com/spec-kit/civix-service/internal/config"
	"github.com/spec-kit/civix-service/internal/domain"
	"github.com/spec-kit/civix-service/internal/service"
	apperrors "github.com/spec-kit/civix-service/pkg/util"
)

// AuthHandler exposes the register/login/logout/me endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	middleware *auth.Middleware
	cookie     config.CookieConfig
	production bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, middleware *auth.Middleware, cookie config.CookieConfig, production bool) *AuthHandler {
	return &AuthHandler{auth: authService, middleware: middleware, cookie: cookie, production: production}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, sess, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
		Location: req.Location,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token, sess.ExpiresAt)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"user":       dto.NewUserResponse(user),
		"token":      token,
		"expires_at": sess.ExpiresAt,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, sess, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token, sess.ExpiresAt)
	return c.JSON(fiber.Map{
		"success":    true,
		"user":       dto.NewUserResponse(user),
		"token":      token,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout handles POST /auth/logout. It always succeeds, even when the
// artifact is missing or already revoked.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	artifact := h.middleware.ExtractArtifact(c)
	h.auth.Logout(c.UserContext(), artifact)
	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"success": true})
}

// Me handles GET /auth/me on the protected group.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(nil)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Domain:   h.cookie.Domain,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Domain:   h.cookie.Domain,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
