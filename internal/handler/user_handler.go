package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// UserHandler serves admin user management.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the admin payload for a new account.
type CreateUserRequest struct {
	Username string           `json:"username"`
	Email    string           `json:"email" validate:"omitempty,email"`
	Password string           `json:"password"`
	Role     model.Role       `json:"role"`
	Status   model.UserStatus `json:"status"`
}

// UpdateUserRequest changes account attributes. Empty fields are left as they are.
type UpdateUserRequest struct {
	Username string           `json:"username"`
	Email    string           `json:"email" validate:"omitempty,email"`
	Role     model.Role       `json:"role"`
	Status   model.UserStatus `json:"status"`
}

// ListUsers godoc
// @Summary List users
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}

// CreateUser godoc
// @Summary Create user
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} map[string]model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": user})
}

// UpdateUser godoc
// @Summary Update user
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "Changes"
// @Success 200 {object} map[string]model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

// DeleteUser godoc
// @Summary Delete user
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
