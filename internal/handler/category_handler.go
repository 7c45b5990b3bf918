package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// CategoryHandler serves admin category management.
type CategoryHandler struct {
	svc service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// CategoryRequest names a new category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse wraps a created category.
type CategoryResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Category *model.Category `json:"category"`
}

// CreateCategory godoc
// @Summary Create category
// @Tags admin-categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := h.svc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CategoryResponse{
		Success:  true,
		Message:  "Category created successfully",
		Category: category,
	})
}

// CategoryProducts godoc
// @Summary List products of a category
// @Tags admin-categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/category/{id} [get]
func (h *CategoryHandler) CategoryProducts(c echo.Context) error {
	products, err := h.svc.CategoryProducts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// DeleteCategory godoc
// @Summary Delete category
// @Tags admin-categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	if err := h.svc.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}
