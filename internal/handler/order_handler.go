package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/service"
)

// OrderHandler serves checkout, customer order history and admin order management.
type OrderHandler struct {
	svc service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// CreateOrderResponse is returned after a successful checkout.
type CreateOrderResponse struct {
	Success bool         `json:"success"`
	OrderID string       `json:"orderId"`
	Order   *model.Order `json:"order"`
}

// OrderResponse wraps a single order.
type OrderResponse struct {
	Success bool         `json:"success"`
	Order   *model.Order `json:"order"`
}

// OrderListResponse wraps a list of orders.
type OrderListResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Orders  []model.Order `json:"orders"`
}

// UpdateOrderStatusRequest moves an order to another status.
type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// CreateOrder godoc
// @Summary Place an order
// @Description Totals are recomputed from the items; a referenced promo code has its usage counted once the order is saved.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateOrderInput true "Checkout payload"
// @Success 201 {object} CreateOrderResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	var req service.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidRequest.Wrap(err)
	}

	order, err := h.svc.CreateOrder(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, CreateOrderResponse{
		Success: true,
		OrderID: order.ID.String(),
		Order:   order,
	})
}

// ListMyOrders godoc
// @Summary List the caller's orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OrderListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	orders, err := h.svc.GetUserOrders(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderListResponse{Success: true, Count: len(orders), Orders: orders})
}

// GetOrder godoc
// @Summary Get one of the caller's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /orders/{orderId} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return err
	}

	order, err := h.svc.GetOrderByID(c.Request().Context(), c.Param("orderId"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderResponse{Success: true, Order: order})
}

// ListAllOrders godoc
// @Summary List every order with its customer
// @Tags admin-orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OrderListResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/orders [get]
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.svc.ListAllOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderListResponse{Success: true, Count: len(orders), Orders: orders})
}

// UpdateOrderStatus godoc
// @Summary Change order status
// @Tags admin-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Param request body UpdateOrderStatusRequest true "New status"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/orders/{orderId} [put]
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidRequest.Wrap(err)
	}
	if err := c.Validate(&req); err != nil {
		return service.ErrInvalidOrderStatus
	}

	order, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("orderId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderResponse{Success: true, Order: order})
}

// DeleteOrder godoc
// @Summary Delete order
// @Tags admin-orders
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/orders/{orderId} [delete]
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	if err := h.svc.DeleteOrder(c.Request().Context(), c.Param("orderId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order deleted successfully",
	})
}
