package handlers

import (
	"strconv"

	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// parseIDParam parses a positive integer path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// forbiddenResponse renders an authorization failure with its decision
// details when the error carries them
func forbiddenResponse(c *fiber.Ctx, err *domain.ForbiddenError) error {
	details := fiber.Map{"actual_role": err.ActualRole}
	if err.Action != "" {
		details["action"] = err.Action
	}
	if len(err.RequiredRoles) > 0 {
		details["required_roles"] = err.RequiredRoles
	}
	return response.ErrorWithDetails(c, fiber.StatusForbidden, err.Error(), details)
}
