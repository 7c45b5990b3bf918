package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// SettingsHandler serves the admin session and profile endpoints.
type SettingsHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(authService service.AuthService, userService service.UserService) *SettingsHandler {
	return &SettingsHandler{authService: authService, userService: userService}
}

// UpdateProfileRequest changes the admin's email and/or password.
type UpdateProfileRequest struct {
	Email           string `json:"email" validate:"omitempty,email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileResponse wraps a user record.
type ProfileResponse struct {
	Message string      `json:"message,omitempty"`
	User    interface{} `json:"user"`
}

// AdminSignin godoc
// @Summary Login administrator
// @Tags admin-settings
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Admin credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/signin [post]
func (h *SettingsHandler) AdminSignin(c echo.Context) error {
	var req SigninRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.AdminSignin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message: "Admin login successful",
		User:    session.User,
		Token:   session.Token,
	})
}

// VerifyToken godoc
// @Summary Check an admin token
// @Tags admin-settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/verify-token [get]
func (h *SettingsHandler) VerifyToken(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"isValid": true})
}

// Me godoc
// @Summary Get the signed-in admin
// @Tags admin-settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/me [get]
func (h *SettingsHandler) Me(c echo.Context) error {
	admin, err := adminFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProfileResponse{User: admin})
}

// UpdateProfile godoc
// @Summary Update the signed-in admin's email or password
// @Tags admin-settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/update-profile [put]
func (h *SettingsHandler) UpdateProfile(c echo.Context) error {
	admin, err := adminFrom(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), admin.ID, service.UpdateProfileInput{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		Message: "Profile updated successfully",
		User:    profileSummary(user),
	})
}

func profileSummary(user *model.User) service.UserSummary {
	return service.UserSummary{ID: user.ID.String(), Email: user.Email, Username: user.Username}
}
