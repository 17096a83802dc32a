package middleware

import (
	"errors"
	"strings"

	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/config"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/jwt"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const principalKey = "principal"

// AuthMiddleware creates authentication middleware. The token only proves
// identity; the account row is loaded fresh every request so a deactivation
// or deletion takes effect immediately, not at token expiry.
func AuthMiddleware(cfg *config.Config, userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Load the account
		user, err := userRepo.GetByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Unauthorized(c, "Account no longer exists")
			}
			return response.InternalServerError(c, "Failed to load account")
		}
		if !user.IsActive {
			return response.Unauthorized(c, "Account is deactivated")
		}

		// 6. Set principal in context
		c.Locals(principalKey, user.ToPrincipal())

		return c.Next()
	}
}

// Principal returns the authenticated principal set by AuthMiddleware
func Principal(c *fiber.Ctx) *domain.Principal {
	principal, _ := c.Locals(principalKey).(*domain.Principal)
	return principal
}

// RequireRoles creates role-based authorization middleware. Admin always
// passes; a denial carries the required and actual roles in the details.
func RequireRoles(access *services.AccessService, action string, allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := Principal(c)
		if principal == nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		if err := access.RequireRoles(principal, action, allowed...); err != nil {
			var forbidden *domain.ForbiddenError
			if errors.As(err, &forbidden) {
				return response.ErrorWithDetails(c, fiber.StatusForbidden, forbidden.Error(), fiber.Map{
					"action":         forbidden.Action,
					"required_roles": forbidden.RequiredRoles,
					"actual_role":    forbidden.ActualRole,
				})
			}
			return response.Forbidden(c, "You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly(access *services.AccessService, action string) fiber.Handler {
	return RequireRoles(access, action, domain.RoleAdmin)
}

// StaffOnly middleware allows admin and receptionist roles
func StaffOnly(access *services.AccessService, action string) fiber.Handler {
	return RequireRoles(access, action, domain.RoleReceptionist)
}
