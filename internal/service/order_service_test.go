package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

func validShipping() model.ShippingInfo {
	return model.ShippingInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Address:   "12 Analytical St",
		City:      "London",
		State:     "LDN",
		ZipCode:   "N1 9GU",
	}
}

func item(product string, price, quantity interface{}) OrderItemInput {
	return OrderItemInput{Product: product, Name: "Widget", Price: price, Quantity: quantity}
}

func newOrderServiceForTest(orders *MockOrderRepository, promos *MockPromoCodeRepository) (OrderService, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewOrderService(orders, promos, zap.New(core)), logs
}

func TestOrderService_CreateOrder_RecomputesTotals(t *testing.T) {
	userID := uuid.New()
	orders := new(MockOrderRepository)
	promos := new(MockPromoCodeRepository)

	var saved *model.Order
	orders.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.Order) }).
		Return(nil)
	svc, _ := newOrderServiceForTest(orders, promos)

	input := CreateOrderInput{
		ShippingInfo: validShipping(),
		PaymentInfo: PaymentInput{
			Subtotal: decimal.NewFromInt(1),
			Total:    decimal.NewFromInt(999),
			Shipping: decimal.NewFromInt(5),
			Tax:      decimal.NewFromInt(2),
			Discount: decimal.NewFromInt(3),
		},
		Items: []OrderItemInput{
			item(uuid.NewString(), 10.0, 2.0),
			item(uuid.NewString(), 5.5, 1.0),
		},
	}

	order, err := svc.CreateOrder(context.Background(), userID, input)

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Same(t, saved, order)
	assertDecimal(t, "25.5", order.PaymentInfo.Subtotal)
	assertDecimal(t, "29.5", order.PaymentInfo.Total)
	assertDecimal(t, "5", order.PaymentInfo.Shipping)
	assertDecimal(t, "2", order.PaymentInfo.Tax)
	assertDecimal(t, "3", order.PaymentInfo.Discount)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, userID, order.UserID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 1, order.Items[1].Position)
	assert.Nil(t, order.PaymentInfo.PromoCode)
	promos.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_TotalWithoutDiscount(t *testing.T) {
	orders := new(MockOrderRepository)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

	order, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		ShippingInfo: validShipping(),
		PaymentInfo:  PaymentInput{Shipping: decimal.RequireFromString("4.99"), Tax: decimal.RequireFromString("1.10")},
		Items:        []OrderItemInput{item(uuid.NewString(), 0.1, 3.0)},
	})

	require.NoError(t, err)
	assertDecimal(t, "0.3", order.PaymentInfo.Subtotal)
	assertDecimal(t, "6.39", order.PaymentInfo.Total)
}

func TestOrderService_CreateOrder_ValidationFailures(t *testing.T) {
	missingPhoneAndZip := validShipping()
	missingPhoneAndZip.Phone = ""
	missingPhoneAndZip.ZipCode = "  "

	tests := []struct {
		name        string
		input       CreateOrderInput
		wantErr     error
		wantMessage string
		checkDetail func(t *testing.T, details interface{})
	}{
		{
			name: "missing shipping fields are named",
			input: CreateOrderInput{
				ShippingInfo: missingPhoneAndZip,
				Items:        []OrderItemInput{item(uuid.NewString(), 1.0, 1.0)},
			},
			wantErr:     ErrMissingShippingFields,
			wantMessage: "Missing shipping fields: phone, zipCode",
		},
		{
			name:        "empty cart",
			input:       CreateOrderInput{ShippingInfo: validShipping()},
			wantErr:     ErrCartEmpty,
			wantMessage: "Cart is empty",
		},
		{
			name: "every invalid item is collected",
			input: CreateOrderInput{
				ShippingInfo: validShipping(),
				Items: []OrderItemInput{
					item("not-an-id", 1.0, 1.0),
					item(uuid.NewString(), 1.0, 1.0),
					item("also-bad", "12", 1.0),
					item("zero-qty", 3.0, 0.0),
					item("fraction", 3.0, 1.5),
					item("no-price", nil, 1.0),
				},
			},
			wantErr:     ErrInvalidItems,
			wantMessage: "Invalid items in cart",
			checkDetail: func(t *testing.T, details interface{}) {
				got := details.(map[string][]InvalidItem)["invalidItems"]
				assert.Equal(t, []InvalidItem{
					{Product: "not-an-id"},
					{Product: "also-bad"},
					{Product: "zero-qty"},
					{Product: "fraction"},
					{Product: "no-price"},
				}, got)
			},
		},
		{
			name: "negative amounts fail order validation",
			input: CreateOrderInput{
				ShippingInfo: validShipping(),
				PaymentInfo:  PaymentInput{Shipping: decimal.NewFromInt(-1)},
				Items:        []OrderItemInput{item(uuid.NewString(), -2.0, 1.0)},
			},
			wantErr: ErrOrderValidation,
			checkDetail: func(t *testing.T, details interface{}) {
				assert.ElementsMatch(t, []string{
					"items.0.price: must not be negative",
					"paymentInfo.shipping: must not be negative",
				}, details)
			},
		},
		{
			name: "malformed promo code id",
			input: CreateOrderInput{
				ShippingInfo: validShipping(),
				PaymentInfo:  PaymentInput{PromoCode: &AppliedPromoInput{Code: "X", PromoCodeID: "123"}},
				Items:        []OrderItemInput{item(uuid.NewString(), 2.0, 1.0)},
			},
			wantErr: ErrOrderValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderRepository)
			promos := new(MockPromoCodeRepository)
			svc, _ := newOrderServiceForTest(orders, promos)

			order, err := svc.CreateOrder(context.Background(), uuid.New(), tt.input)

			require.Error(t, err)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tt.wantErr)
			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, appErr.Message)
			}
			if tt.checkDetail != nil {
				tt.checkDetail(t, appErr.Details)
			}
			orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			promos.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_CreateOrder_PromoUsage(t *testing.T) {
	promoID := uuid.New()
	input := CreateOrderInput{
		ShippingInfo: validShipping(),
		PaymentInfo: PaymentInput{
			Discount: decimal.NewFromInt(10),
			PromoCode: &AppliedPromoInput{
				Code:          "save20",
				DiscountType:  model.DiscountPercentage,
				DiscountValue: decimal.NewNullDecimal(decimal.NewFromInt(20)),
				PromoCodeID:   promoID.String(),
			},
		},
		Items: []OrderItemInput{item(uuid.NewString(), 100.0, 1.0)},
	}

	t.Run("increment recorded after save", func(t *testing.T) {
		orders := new(MockOrderRepository)
		promos := new(MockPromoCodeRepository)
		saved := false
		orders.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) { saved = true }).Return(nil)
		promos.On("IncrementUsage", mock.Anything, promoID).Run(func(mock.Arguments) {
			assert.True(t, saved, "usage must be counted after the order is stored")
		}).Return(true, nil)
		svc, _ := newOrderServiceForTest(orders, promos)

		order, err := svc.CreateOrder(context.Background(), uuid.New(), input)

		require.NoError(t, err)
		require.NotNil(t, order.PaymentInfo.PromoCode)
		assert.Equal(t, "SAVE20", order.PaymentInfo.PromoCode.Code)
		assert.Equal(t, promoID, *order.PaymentInfo.PromoCode.PromoCodeID)
		assertDecimal(t, "90", order.PaymentInfo.Total)
		promos.AssertNumberOfCalls(t, "IncrementUsage", 1)
	})

	t.Run("limit reached keeps the order and logs", func(t *testing.T) {
		orders := new(MockOrderRepository)
		promos := new(MockPromoCodeRepository)
		orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		promos.On("IncrementUsage", mock.Anything, promoID).Return(false, nil)
		svc, logs := newOrderServiceForTest(orders, promos)

		order, err := svc.CreateOrder(context.Background(), uuid.New(), input)

		require.NoError(t, err)
		assert.NotNil(t, order)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("increment failure keeps the order and logs", func(t *testing.T) {
		orders := new(MockOrderRepository)
		promos := new(MockPromoCodeRepository)
		orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		promos.On("IncrementUsage", mock.Anything, promoID).Return(false, stderrors.New("lock wait timeout"))
		svc, logs := newOrderServiceForTest(orders, promos)

		order, err := svc.CreateOrder(context.Background(), uuid.New(), input)

		require.NoError(t, err)
		assert.NotNil(t, order)
		assert.Equal(t, 1, logs.FilterMessage("promo usage increment failed").Len())
	})

	t.Run("failed save does not count usage", func(t *testing.T) {
		orders := new(MockOrderRepository)
		promos := new(MockPromoCodeRepository)
		orders.On("Create", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))
		svc, _ := newOrderServiceForTest(orders, promos)

		_, err := svc.CreateOrder(context.Background(), uuid.New(), input)

		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindInternal, appErr.Kind)
		promos.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
	})
}

func TestOrderService_CreateOrder_DuplicateKey(t *testing.T) {
	orders := new(MockOrderRepository)
	orders.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		ShippingInfo: validShipping(),
		Items:        []OrderItemInput{item(uuid.NewString(), 1.0, 1.0)},
	})

	assert.ErrorIs(t, err, ErrOrderExists)
	assert.Equal(t, 400, apperrors.MapErrorToHTTP(err, false).StatusCode)
}

func TestOrderService_GetOrderByID(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	stored := &model.Order{ID: orderID, UserID: owner}

	tests := []struct {
		name      string
		rawID     string
		actingAs  uuid.UUID
		setupMock func(*MockOrderRepository)
		wantErr   error
	}{
		{
			name:     "malformed id fails before the store",
			rawID:    "12345",
			actingAs: owner,
			wantErr:  ErrInvalidOrderID,
		},
		{
			name:     "missing order",
			rawID:    orderID.String(),
			actingAs: owner,
			setupMock: func(m *MockOrderRepository) {
				m.On("FindByID", mock.Anything, orderID).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: ErrOrderNotFound,
		},
		{
			name:     "another user's order",
			rawID:    orderID.String(),
			actingAs: uuid.New(),
			setupMock: func(m *MockOrderRepository) {
				m.On("FindByID", mock.Anything, orderID).Return(stored, nil)
			},
			wantErr: ErrOrderForbidden,
		},
		{
			name:     "own order",
			rawID:    orderID.String(),
			actingAs: owner,
			setupMock: func(m *MockOrderRepository) {
				m.On("FindByID", mock.Anything, orderID).Return(stored, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(MockOrderRepository)
			if tt.setupMock != nil {
				tt.setupMock(orders)
			}
			svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

			order, err := svc.GetOrderByID(context.Background(), tt.rawID, tt.actingAs)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, orderID, order.ID)
			}
			if tt.setupMock == nil {
				orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			}
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderService_GetUserOrders(t *testing.T) {
	userID := uuid.New()
	orders := new(MockOrderRepository)
	orders.On("ListByUser", mock.Anything, userID).Return([]model.Order{{UserID: userID}, {UserID: userID}}, nil)
	svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

	list, err := svc.GetUserOrders(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, list, 2)
	orders.AssertExpectations(t)
}

func TestOrderService_AdminOperations(t *testing.T) {
	orderID := uuid.New()

	t.Run("rejects unknown status", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

		_, err := svc.UpdateStatus(context.Background(), orderID.String(), "returned")

		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("updates status", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("FindByID", mock.Anything, orderID).Return(&model.Order{ID: orderID, Status: model.OrderStatusPending}, nil)
		orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusShipped).Return(nil)
		svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

		order, err := svc.UpdateStatus(context.Background(), orderID.String(), model.OrderStatusShipped)

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusShipped, order.Status)
		orders.AssertExpectations(t)
	})

	t.Run("delete missing order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("Delete", mock.Anything, orderID).Return(gorm.ErrRecordNotFound)
		svc, _ := newOrderServiceForTest(orders, new(MockPromoCodeRepository))

		err := svc.DeleteOrder(context.Background(), orderID.String())

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
