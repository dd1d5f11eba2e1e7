package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civix-service/internal/auth"
	apperrors "github.com/spec-kit/civix-service/pkg/util"
)

// DashboardHandler serves per-user dashboard data. The civic stats are a
// stub until issue reporting lands; the route exists so the client can gate
// the dashboard view on a protected call.
type DashboardHandler struct{}

// NewDashboardHandler constructs handler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Summary handles GET /dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"location":        user.Location,
			"role":            user.Role,
			"reported_issues": 0,
			"resolved_issues": 0,
		},
	})
}
