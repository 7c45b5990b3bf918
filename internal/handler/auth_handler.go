package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// AuthHandler handles customer authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a customer registration request.
type SignupRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,max=100"`
	Password string `json:"password"`
}

// SigninRequest represents a login request.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a successful signup or signin.
type AuthResponse struct {
	Message string              `json:"message"`
	User    service.UserSummary `json:"user"`
	Token   string              `json:"token"`
}

// Signup godoc
// @Summary Register a new customer
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Signup(c.Request().Context(), req.Email, req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Message: "User created and logged in",
		User:    session.User,
		Token:   session.Token,
	})
}

// Signin godoc
// @Summary Login customer
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    session.User,
		Token:   session.Token,
	})
}

// Logout godoc
// @Summary Revoke the presented bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// Protected godoc
// @Summary Probe an authenticated route
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /protected [get]
func (h *AuthHandler) Protected(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "This is protected data",
		"userId":  userID.String(),
	})
}
