package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/auth"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

const (
	// ClaimsContextKey holds the *auth.Claims of a verified bearer token.
	ClaimsContextKey = "claims"
	// AdminContextKey holds the *model.User resolved by the admin gate.
	AdminContextKey = "admin"
)

// ErrRequestValidation is returned when a request body fails struct validation.
var ErrRequestValidation = apperrors.Validation("VALIDATION_FAILED", "Validation failed")

func claimsFrom(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// userIDFrom returns the acting user id taken from the verified token.
func userIDFrom(c echo.Context) (uuid.UUID, error) {
	claims, err := claimsFrom(c)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidToken
	}
	return id, nil
}

func adminFrom(c echo.Context) (*model.User, error) {
	admin, ok := c.Get(AdminContextKey).(*model.User)
	if !ok || admin == nil {
		return nil, apperrors.ErrAdminRequired
	}
	return admin, nil
}

// bind decodes and validates a request body.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ErrInvalidRequest.Wrap(err)
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ErrRequestValidation.Wrap(err)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return ErrRequestValidation.WithDetails(details)
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ErrInvalidID
	}
	return id, nil
}
