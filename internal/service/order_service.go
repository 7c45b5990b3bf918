package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

var (
	// ErrMissingShippingFields is the template for absent shipping fields; the message names them.
	ErrMissingShippingFields = apperrors.Validation("MISSING_SHIPPING_FIELDS", "Missing shipping fields")
	// ErrCartEmpty is returned when an order has no items.
	ErrCartEmpty = apperrors.Validation("CART_EMPTY", "Cart is empty")
	// ErrInvalidItems is returned when one or more cart lines are malformed.
	ErrInvalidItems = apperrors.Validation("INVALID_ITEMS", "Invalid items in cart")
	// ErrOrderValidation is returned when the assembled order violates a field constraint.
	ErrOrderValidation = apperrors.Validation("ORDER_VALIDATION_FAILED", "Order validation failed")
	// ErrOrderExists is returned when the store reports a duplicate key on insert.
	ErrOrderExists = apperrors.Conflict("ORDER_EXISTS", "Order already exists")
	// ErrInvalidOrderID is returned for a syntactically invalid order id.
	ErrInvalidOrderID = apperrors.Validation("INVALID_ORDER_ID", "Invalid order ID format")
	// ErrOrderNotFound is returned when no order has the requested id.
	ErrOrderNotFound = apperrors.NotFound("ORDER_NOT_FOUND", "Order not found")
	// ErrOrderForbidden is returned when a user requests another user's order.
	ErrOrderForbidden = apperrors.Forbidden("ORDER_FORBIDDEN", "Not authorized to view this order")
	// ErrInvalidOrderStatus is returned for a status outside the order lifecycle.
	ErrInvalidOrderStatus = apperrors.Validation("INVALID_ORDER_STATUS", "Valid status is required")
)

// OrderItemInput is one raw cart line. Price and Quantity stay untyped until validated.
type OrderItemInput struct {
	Product  string      `json:"product"`
	Name     string      `json:"name"`
	Price    interface{} `json:"price" swaggertype:"number"`
	Quantity interface{} `json:"quantity" swaggertype:"integer"`
	Image    model.Image `json:"image"`
}

// AppliedPromoInput is the promo snapshot the client obtained from validate.
type AppliedPromoInput struct {
	Code          string              `json:"code"`
	DiscountType  model.DiscountType  `json:"discountType"`
	DiscountValue decimal.NullDecimal `json:"discountValue" swaggertype:"number"`
	PromoCodeID   string              `json:"promoCodeId"`
}

// PaymentInput carries the client-side payment breakdown. Subtotal and Total are
// recomputed by the server; Shipping, Tax and Discount are taken as submitted.
type PaymentInput struct {
	Subtotal  decimal.Decimal    `json:"subtotal" swaggertype:"number"`
	Discount  decimal.Decimal    `json:"discount" swaggertype:"number"`
	Shipping  decimal.Decimal    `json:"shipping" swaggertype:"number"`
	Tax       decimal.Decimal    `json:"tax" swaggertype:"number"`
	Total     decimal.Decimal    `json:"total" swaggertype:"number"`
	PromoCode *AppliedPromoInput `json:"promoCode,omitempty"`
}

// CreateOrderInput is the checkout request.
type CreateOrderInput struct {
	ShippingInfo model.ShippingInfo `json:"shippingInfo"`
	PaymentInfo  PaymentInput       `json:"paymentInfo"`
	Items        []OrderItemInput   `json:"items"`
}

// InvalidItem identifies a rejected cart line by its product reference.
type InvalidItem struct {
	Product string `json:"product"`
}

// OrderService assembles and serves orders.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*model.Order, error)
	GetOrderByID(ctx context.Context, rawID string, userID uuid.UUID) (*model.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, rawID string, status model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, rawID string) error
}

type orderService struct {
	orders repository.OrderRepository
	promos repository.PromoCodeRepository
	logger *zap.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, promos repository.PromoCodeRepository, logger *zap.Logger) OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderService{orders: orders, promos: promos, logger: logger}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*model.Order, error) {
	if missing := missingShippingFields(input.ShippingInfo); len(missing) > 0 {
		return nil, apperrors.Validation(ErrMissingShippingFields.Code,
			"Missing shipping fields: "+strings.Join(missing, ", ")).
			WithDetails(map[string][]string{"missingFields": missing})
	}

	if len(input.Items) == 0 {
		return nil, ErrCartEmpty
	}

	items, invalid := parseItems(input.Items)
	if len(invalid) > 0 {
		s.logger.Warn("invalid items in cart",
			zap.String("user_id", userID.String()),
			zap.Int("invalid", len(invalid)))
		return nil, ErrInvalidItems.WithDetails(map[string][]InvalidItem{"invalidItems": invalid})
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	pay := input.PaymentInfo
	total := subtotal.Add(pay.Shipping).Add(pay.Tax).Sub(pay.Discount)

	order := &model.Order{
		UserID:       userID,
		Items:        items,
		ShippingInfo: input.ShippingInfo,
		PaymentInfo: model.PaymentInfo{
			Subtotal: subtotal,
			Discount: pay.Discount,
			Shipping: pay.Shipping,
			Tax:      pay.Tax,
			Total:    total,
		},
		Status: model.OrderStatusPending,
	}

	var promoID *uuid.UUID
	if pay.PromoCode != nil {
		applied, problems := appliedPromo(pay.PromoCode)
		if len(problems) > 0 {
			return nil, ErrOrderValidation.WithDetails(problems)
		}
		order.PaymentInfo.PromoCode = applied
		promoID = applied.PromoCodeID
	}

	if problems := validateOrder(order); len(problems) > 0 {
		s.logger.Warn("order validation failed",
			zap.String("user_id", userID.String()),
			zap.Strings("problems", problems))
		return nil, ErrOrderValidation.WithDetails(problems)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrOrderExists.Wrap(err)
		}
		s.logger.Error("order creation failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, apperrors.Internal("Failed to create order", errors.Wrap(err, "create order"))
	}

	if promoID != nil {
		s.recordPromoUse(ctx, order.ID, *promoID)
	}
	return order, nil
}

// recordPromoUse counts one use of the promo against its limit. The order is already
// saved, so failures are logged and never surfaced.
func (s *orderService) recordPromoUse(ctx context.Context, orderID, promoID uuid.UUID) {
	applied, err := s.promos.IncrementUsage(ctx, promoID)
	fields := []zap.Field{zap.String("order_id", orderID.String()), zap.String("promo_code_id", promoID.String())}
	switch {
	case err != nil:
		s.logger.Error("promo usage increment failed", append(fields, zap.Error(err))...)
	case !applied:
		s.logger.Warn("promo usage not recorded: code missing or limit reached", fields...)
	default:
		s.logger.Debug("promo usage recorded", fields...)
	}
}

func missingShippingFields(info model.ShippingInfo) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", info.FirstName},
		{"lastName", info.LastName},
		{"email", info.Email},
		{"phone", info.Phone},
		{"address", info.Address},
		{"city", info.City},
		{"state", info.State},
		{"zipCode", info.ZipCode},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// parseItems converts raw cart lines, collecting every line that fails validation.
func parseItems(raw []OrderItemInput) ([]model.OrderItem, []InvalidItem) {
	items := make([]model.OrderItem, 0, len(raw))
	var invalid []InvalidItem

	for i, in := range raw {
		productID, idErr := uuid.Parse(in.Product)
		price, priceOK := asNumber(in.Price)
		quantity, qtyOK := asNumber(in.Quantity)

		if idErr != nil || !priceOK || !qtyOK || quantity <= 0 || quantity != math.Trunc(quantity) {
			invalid = append(invalid, InvalidItem{Product: in.Product})
			continue
		}

		items = append(items, model.OrderItem{
			Position:  i,
			ProductID: productID,
			Name:      in.Name,
			Quantity:  int(quantity),
			Price:     decimal.NewFromFloat(price),
			Image:     in.Image,
		})
	}
	return items, invalid
}

func asNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func appliedPromo(in *AppliedPromoInput) (*model.AppliedPromoCode, []string) {
	applied := &model.AppliedPromoCode{
		Code:          NormalizeCode(in.Code),
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
	}
	if in.PromoCodeID == "" {
		return applied, nil
	}
	id, err := uuid.Parse(in.PromoCodeID)
	if err != nil {
		return nil, []string{"paymentInfo.promoCode.promoCodeId: invalid identifier"}
	}
	applied.PromoCodeID = &id
	return applied, nil
}

// validateOrder enforces the field constraints of a stored order.
func validateOrder(order *model.Order) []string {
	var problems []string
	for i, item := range order.Items {
		if item.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("items.%d.price: must not be negative", i))
		}
	}
	pay := order.PaymentInfo
	if pay.Shipping.IsNegative() {
		problems = append(problems, "paymentInfo.shipping: must not be negative")
	}
	if pay.Tax.IsNegative() {
		problems = append(problems, "paymentInfo.tax: must not be negative")
	}
	if pay.Discount.IsNegative() {
		problems = append(problems, "paymentInfo.discount: must not be negative")
	}
	if promo := pay.PromoCode; promo != nil && promo.DiscountType != "" &&
		promo.DiscountType != model.DiscountPercentage && promo.DiscountType != model.DiscountFixed {
		problems = append(problems, "paymentInfo.promoCode.discountType: must be percentage or fixed")
	}
	return problems
}

func (s *orderService) GetOrderByID(ctx context.Context, rawID string, userID uuid.UUID) (*model.Order, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch order", errors.Wrap(err, "find order"))
	}

	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", errors.Wrap(err, "list user orders"))
	}
	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch orders", errors.Wrap(err, "list orders"))
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, rawID string, status model.OrderStatus) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to update order", errors.Wrap(err, "find order"))
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.Internal("Failed to update order", errors.Wrap(err, "update status"))
	}
	s.logger.Info("order status changed",
		zap.String("order_id", id.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)))
	order.Status = status
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return ErrInvalidOrderID
	}
	err = s.orders.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return apperrors.Internal("Failed to delete order", errors.Wrap(err, "delete order"))
	}
	return nil
}
