package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/service"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ErrInvalidDate is returned when a promo code date cannot be parsed.
var ErrInvalidDate = apperrors.Validation("INVALID_DATE", "Dates must be ISO 8601")

// PromoCodeHandler serves promo code evaluation and the admin lifecycle.
type PromoCodeHandler struct {
	svc service.PromoCodeService
}

// NewPromoCodeHandler creates a new promo code handler.
func NewPromoCodeHandler(svc service.PromoCodeService) *PromoCodeHandler {
	return &PromoCodeHandler{svc: svc}
}

// CreatePromoCodeRequest is the admin payload for a new promo code.
type CreatePromoCodeRequest struct {
	Code              string             `json:"code"`
	DiscountType      model.DiscountType `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal    `json:"discountValue" swaggertype:"number"`
	MinOrderAmount    decimal.Decimal    `json:"minOrderAmount" swaggertype:"number"`
	MaxDiscountAmount decimal.Decimal    `json:"maxDiscountAmount" swaggertype:"number"`
	StartDate         string             `json:"startDate" example:"2025-01-01"`
	EndDate           string             `json:"endDate" example:"2025-12-31"`
	MaxUses           int                `json:"maxUses" validate:"min=0"`
}

// UpdatePromoCodeRequest toggles a promo code.
type UpdatePromoCodeRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ValidatePromoCodeResponse is the evaluated discount.
type ValidatePromoCodeResponse struct {
	Success bool `json:"success"`
	service.PromoDiscount
}

// PromoCodeResponse wraps a promo code.
type PromoCodeResponse struct {
	Success   bool             `json:"success"`
	PromoCode *model.PromoCode `json:"promoCode"`
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ValidatePromoCode godoc
// @Summary Evaluate a promo code against a subtotal
// @Description Read-only; usage is only counted when an order applying the code is placed.
// @Tags promo-codes
// @Produce json
// @Security BearerAuth
// @Param code query string true "Promo code"
// @Param subtotal query number false "Cart subtotal"
// @Success 200 {object} ValidatePromoCodeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /promo-codes/validate [get]
func (h *PromoCodeHandler) ValidatePromoCode(c echo.Context) error {
	subtotal, err := decimal.NewFromString(strings.TrimSpace(c.QueryParam("subtotal")))
	if err != nil {
		subtotal = decimal.Zero
	}

	discount, err := h.svc.Validate(c.Request().Context(), c.QueryParam("code"), subtotal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ValidatePromoCodeResponse{Success: true, PromoDiscount: *discount})
}

// ListPromoCodes godoc
// @Summary List promo codes, newest first
// @Tags admin-promo-codes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/promo-codes [get]
func (h *PromoCodeHandler) ListPromoCodes(c echo.Context) error {
	promos, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"promoCodes": promos,
	})
}

// CreatePromoCode godoc
// @Summary Create promo code
// @Tags admin-promo-codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePromoCodeRequest true "Promo code"
// @Success 201 {object} PromoCodeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/promo-codes [post]
func (h *PromoCodeHandler) CreatePromoCode(c echo.Context) error {
	var req CreatePromoCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return err
	}

	promo, err := h.svc.Create(c.Request().Context(), service.CreatePromoCodeInput{
		Code:              req.Code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		StartDate:         start,
		EndDate:           end,
		MaxUses:           req.MaxUses,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, PromoCodeResponse{Success: true, PromoCode: promo})
}

// UpdatePromoCode godoc
// @Summary Activate or deactivate a promo code
// @Tags admin-promo-codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promo code ID"
// @Param request body UpdatePromoCodeRequest true "Active flag"
// @Success 200 {object} PromoCodeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/promo-codes/{id} [put]
func (h *PromoCodeHandler) UpdatePromoCode(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdatePromoCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	promo, err := h.svc.SetActive(c.Request().Context(), id, *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PromoCodeResponse{Success: true, PromoCode: promo})
}

// DeletePromoCode godoc
// @Summary Delete promo code
// @Tags admin-promo-codes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Promo code ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/promo-codes/{id} [delete]
func (h *PromoCodeHandler) DeletePromoCode(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Promo code deleted",
	})
}
