package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/model"
	"storefront/internal/service"
)

// ProductHandler serves the public catalog and the admin product endpoints.
type ProductHandler struct {
	products   service.ProductService
	categories service.CategoryService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products service.ProductService, categories service.CategoryService) *ProductHandler {
	return &ProductHandler{products: products, categories: categories}
}

// ProductRequest is the admin create/update payload. Price may be a number or a numeric string.
type ProductRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       interface{}  `json:"price" swaggertype:"number"`
	Category    string       `json:"category"`
	Stock       *int         `json:"stock" validate:"omitempty,min=0"`
	Image       *model.Image `json:"image"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.Category,
		Stock:       r.Stock,
		Image:       r.Image,
	}
}

// StockRequest sets the stock level of a product.
type StockRequest struct {
	Stock interface{} `json:"stock" swaggertype:"integer"`
}

// ProductResponse wraps a single product after a write.
type ProductResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Product *model.Product `json:"product"`
}

// ListProducts godoc
// @Summary List products with their category
// @Tags products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.products.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /product/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.products.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// CategoryProducts godoc
// @Summary List products of a category given by id or name
// @Tags products
// @Produce json
// @Param category path string true "Category ID or name"
// @Success 200 {array} model.Product
// @Failure 404 {object} errors.ErrorResponse
// @Router /category/{category} [get]
func (h *ProductHandler) CategoryProducts(c echo.Context) error {
	products, err := h.products.ProductsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Search godoc
// @Summary Search products by name
// @Tags products
// @Produce json
// @Param query query string false "Name fragment"
// @Success 200 {object} map[string][]model.Product
// @Failure 500 {object} errors.ErrorResponse
// @Router /search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		query = c.QueryParam("q")
	}
	products, err := h.products.Search(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}

// ListCategories godoc
// @Summary List categories by name
// @Tags products
// @Produce json
// @Success 200 {array} model.Category
// @Failure 500 {object} errors.ErrorResponse
// @Router /categories [get]
func (h *ProductHandler) ListCategories(c echo.Context) error {
	categories, err := h.categories.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateProduct godoc
// @Summary Create product
// @Tags admin-products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.products.CreateProduct(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ProductResponse{
		Success: true,
		Message: "Product created successfully",
		Product: product,
	})
}

// UpdateProduct godoc
// @Summary Replace product attributes
// @Tags admin-products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductRequest true "Product"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.products.UpdateProduct(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProductResponse{
		Success: true,
		Message: "Product updated successfully",
		Product: product,
	})
}

// UpdateStock godoc
// @Summary Set product stock
// @Tags admin-products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body StockRequest true "Stock level"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/products/{id}/stock [put]
func (h *ProductHandler) UpdateStock(c echo.Context) error {
	var req StockRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	stock, err := h.products.UpdateStock(c.Request().Context(), c.Param("id"), req.Stock)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Stock updated",
		"newStock": stock,
	})
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags admin-products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.products.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
