package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
	"storefront/internal/repository"
)

func TestResolveRange(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		rangeArg string
		wantCur  Window
		wantPrev Window
	}{
		{
			name:     "last 7 days",
			rangeArg: RangeLast7Days,
			wantCur:  Window{From: now.AddDate(0, 0, -7), To: now},
			wantPrev: Window{From: now.AddDate(0, 0, -14), To: now.AddDate(0, 0, -7)},
		},
		{
			name:     "this month",
			rangeArg: RangeThisMonth,
			wantCur:  Window{From: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), To: now},
			wantPrev: Window{
				From: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
			},
		},
		{
			name:     "last month",
			rangeArg: RangeLastMonth,
			wantCur: Window{
				From: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
			},
			wantPrev: Window{
				From: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
			},
		},
		{
			name:     "anything else is year to date",
			rangeArg: "This Year",
			wantCur:  Window{From: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), To: now},
			wantPrev: Window{
				From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, prev := ResolveRange(tt.rangeArg, now)
			assert.Equal(t, tt.wantCur, cur)
			assert.Equal(t, tt.wantPrev, prev)
		})
	}
}

func TestPercentageChange(t *testing.T) {
	assert.Equal(t, 0.0, PercentageChange(0, 0))
	assert.Equal(t, 100.0, PercentageChange(5, 0))
	assert.Equal(t, 50.0, PercentageChange(15, 10))
	assert.Equal(t, -25.0, PercentageChange(75, 100))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 second ago", TimeAgo(now.Add(-time.Second), now))
	assert.Equal(t, "45 seconds ago", TimeAgo(now.Add(-45*time.Second), now))
	assert.Equal(t, "1 minute ago", TimeAgo(now.Add(-90*time.Second), now))
	assert.Equal(t, "3 hours ago", TimeAgo(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", TimeAgo(now.Add(-49*time.Hour), now))
	assert.Equal(t, "1 year ago", TimeAgo(now.AddDate(-1, 0, -1), now))
}

func TestAnalyticsService_Stats(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	cur, prev := ResolveRange(RangeLast7Days, now)

	repo := new(MockAnalyticsRepository)
	repo.On("Revenue", mock.Anything, cur.From, cur.To).Return(decimal.NewFromInt(300), nil)
	repo.On("CountOrders", mock.Anything, cur.From, cur.To).Return(int64(6), nil)
	repo.On("CountNewUsers", mock.Anything, cur.From, cur.To).Return(int64(3), nil)
	repo.On("Revenue", mock.Anything, prev.From, prev.To).Return(decimal.NewFromInt(200), nil)
	repo.On("CountOrders", mock.Anything, prev.From, prev.To).Return(int64(4), nil)
	repo.On("CountNewUsers", mock.Anything, prev.From, prev.To).Return(int64(0), nil)

	svc := &analyticsService{repo: repo, now: func() time.Time { return now }}
	stats, err := svc.Stats(context.Background(), RangeLast7Days)

	require.NoError(t, err)
	assertDecimal(t, "300", stats.TotalRevenue)
	assert.Equal(t, int64(6), stats.TotalOrders)
	assert.Equal(t, 200.0, stats.ConversionRate)
	assert.Equal(t, 50.0, stats.RevenueChange)
	assert.Equal(t, 50.0, stats.OrdersChange)
	assert.Equal(t, 100.0, stats.CustomersChange)
	assert.Equal(t, 100.0, stats.ConversionChange)
	repo.AssertExpectations(t)
}

func TestAnalyticsService_SalesAndTopProducts(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	cur, _ := ResolveRange("", now)
	productID := uuid.New()
	current := "Renamed Boot"

	repo := new(MockAnalyticsRepository)
	repo.On("SalesByPeriod", mock.Anything, cur.From, cur.To, repository.GroupByMonth).Return([]repository.SalesBucket{
		{Bucket: 1, Revenue: decimal.NewFromInt(10), Orders: 1},
		{Bucket: 3, Revenue: decimal.NewFromInt(30), Orders: 2},
	}, nil)
	repo.On("TopProducts", mock.Anything, cur.From, cur.To, defaultTopProducts).Return([]repository.ProductSales{
		{ProductID: productID, SnapshotName: "Boot", CurrentName: &current, Units: 9},
		{ProductID: uuid.New(), SnapshotName: "Gone Hat", Units: 2},
	}, nil)

	svc := &analyticsService{repo: repo, now: func() time.Time { return now }}

	sales, err := svc.Sales(context.Background(), "", "By Month")
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "Jan", sales[0].Name)
	assert.Equal(t, "Mar", sales[1].Name)

	top, err := svc.TopProducts(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Renamed Boot", top[0].Name)
	assert.Equal(t, "Gone Hat", top[1].Name)
	assert.Equal(t, int64(9), top[0].Sales)
}

func TestAnalyticsService_RecentActivity(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	orderID := uuid.MustParse("0b7c3f1e-7d4a-4c55-9a3e-12ab34cdef56")

	repo := new(MockAnalyticsRepository)
	repo.On("RecentOrders", mock.Anything, 3).Return([]model.Order{
		{
			ID:           orderID,
			Status:       model.OrderStatusShipped,
			CreatedAt:    now.Add(-2 * time.Hour),
			ShippingInfo: model.ShippingInfo{Email: "ship@example.com"},
			User:         &model.User{Email: "buyer@example.com"},
		},
		{
			ID:           uuid.New(),
			Status:       model.OrderStatusPending,
			CreatedAt:    now.Add(-5 * time.Minute),
			ShippingInfo: model.ShippingInfo{Email: "guest@example.com"},
		},
	}, nil)

	svc := &analyticsService{repo: repo, now: func() time.Time { return now }}
	feed, err := svc.RecentActivity(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, Activity{Event: "Order Shipped #CDEF56", User: "buyer@example.com", Time: "2 hours ago", Status: "Shipped"}, feed[0])
	assert.Equal(t, "guest@example.com", feed[1].User)
	assert.Equal(t, "Pending", feed[1].Status)
}
