package handlers

import (
	"errors"

	"clinicdesk/internal/adapters/http/middleware"
	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/pagination"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles admin-side user management endpoints
type UserHandler struct {
	userService *services.UserService
	access      *services.AccessService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, access *services.AccessService) *UserHandler {
	return &UserHandler{
		userService: userService,
		access:      access,
	}
}

// SetActiveRequest represents an activate/deactivate request body
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// List handles user listing
// @Summary List users
// @Description List users with optional role and search filters. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.List(c.Context(), c.Query("role"), c.Query("search"), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRole) {
			return response.BadRequest(c, "Invalid role filter")
		}
		return response.InternalServerError(c, "Failed to list users")
	}

	items := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, user.ToResponse())
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(items, params, total))
}

// Get handles user retrieval
// @Summary Get user
// @Description Get a user by ID with their role profile. Admin or the account owner.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	principal := middleware.Principal(c)
	if err := h.access.CanAccessUser(principal, id); err != nil {
		var forbidden *domain.ForbiddenError
		if errors.As(err, &forbidden) {
			return forbiddenResponse(c, forbidden)
		}
		return response.Forbidden(c, "Access denied")
	}

	user, err := h.userService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{"user": user})
}

// Update handles user account updates
// @Summary Update user
// @Description Update account fields. Admin or the account owner.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	principal := middleware.Principal(c)
	if err := h.access.CanAccessUser(principal, id); err != nil {
		var forbidden *domain.ForbiddenError
		if errors.As(err, &forbidden) {
			return forbiddenResponse(c, forbidden)
		}
		return response.Forbidden(c, "Access denied")
	}

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", fiber.Map{"user": user.ToResponse()})
}

// SetActive handles account activation and deactivation (admin only)
// @Summary Activate or deactivate user
// @Description Set the active flag. Deactivation also revokes all sessions.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/active [patch]
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return response.BadRequest(c, "is_active is required")
	}

	principal := middleware.Principal(c)
	if !*req.IsActive && principal.UserID == id {
		return response.BadRequest(c, "Cannot deactivate your own account")
	}

	user, err := h.userService.SetActive(c.Context(), id, *req.IsActive)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", fiber.Map{"user": user.ToResponse()})
}

// Delete handles user deletion (admin only)
// @Summary Delete user
// @Description Soft-delete a user and their role profile. Clinical history is kept.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	principal := middleware.Principal(c)
	if principal.UserID == id {
		return response.BadRequest(c, "Cannot delete your own account")
	}

	if err := h.userService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}
