package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// Range names accepted by the analytics endpoints. Anything else means year to date.
const (
	RangeLast7Days  = "Last 7 Days"
	RangeLast30Days = "Last 30 Days"
	RangeThisMonth  = "This Month"
	RangeLastMonth  = "Last Month"
)

const (
	defaultTopProducts    = 5
	defaultRecentActivity = 5
	maxAnalyticsLimit     = 100
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Window is a closed time interval.
type Window struct {
	From time.Time
	To   time.Time
}

// Stats is the dashboard summary for a range compared with the preceding window.
type Stats struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalOrders      int64           `json:"totalOrders"`
	NewCustomers     int64           `json:"newCustomers"`
	ConversionRate   float64         `json:"conversionRate"`
	RevenueChange    float64         `json:"revenueChange"`
	OrdersChange     float64         `json:"ordersChange"`
	CustomersChange  float64         `json:"customersChange"`
	ConversionChange float64         `json:"conversionChange"`
}

// SalesPoint is one labelled bucket of the sales chart.
type SalesPoint struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

// TrafficSource is one slice of the traffic chart.
type TrafficSource struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TopProduct is a best seller by units.
type TopProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Sales int64  `json:"sales"`
}

// Activity is a recent order rendered as a feed entry.
type Activity struct {
	Event  string `json:"event"`
	User   string `json:"user"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

// AnalyticsService computes admin dashboard figures.
type AnalyticsService interface {
	Stats(ctx context.Context, rangeName string) (*Stats, error)
	Sales(ctx context.Context, rangeName, groupBy string) ([]SalesPoint, error)
	Traffic(ctx context.Context) []TrafficSource
	TopProducts(ctx context.Context, rangeName string, limit int) ([]TopProduct, error)
	RecentActivity(ctx context.Context, limit int) ([]Activity, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

// NewAnalyticsService creates an analytics service using the wall clock.
func NewAnalyticsService(repo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo, now: time.Now}
}

// ResolveRange returns the window for rangeName and the window it is compared against.
func ResolveRange(rangeName string, now time.Time) (current, previous Window) {
	y, m, _ := now.Date()
	loc := now.Location()
	monthStart := func(offset int) time.Time { return time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, loc) }
	endOfDay := func(t time.Time) time.Time { return t.Add(-time.Nanosecond) }

	switch rangeName {
	case RangeLast7Days, RangeLast30Days:
		days := 7
		if rangeName == RangeLast30Days {
			days = 30
		}
		start := now.AddDate(0, 0, -days)
		current = Window{From: start, To: now}
		previous = Window{From: start.AddDate(0, 0, -days), To: start}
	case RangeThisMonth:
		current = Window{From: monthStart(0), To: now}
		previous = Window{From: monthStart(-1), To: endOfDay(monthStart(0))}
	case RangeLastMonth:
		current = Window{From: monthStart(-1), To: endOfDay(monthStart(0))}
		previous = Window{From: monthStart(-2), To: endOfDay(monthStart(-1))}
	default:
		yearStart := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		current = Window{From: yearStart, To: now}
		previous = Window{From: yearStart.AddDate(-1, 0, 0), To: endOfDay(yearStart)}
	}
	return current, previous
}

// PercentageChange is the relative change from previous to current, in percent.
// A change from zero is reported as 100, or 0 when both are zero.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

func conversionRate(orders, customers int64) float64 {
	if orders == 0 || customers == 0 {
		return 0
	}
	return float64(orders) / float64(customers) * 100
}

type periodFigures struct {
	revenue   decimal.Decimal
	orders    int64
	customers int64
}

func (s *analyticsService) figures(ctx context.Context, w Window) (periodFigures, error) {
	var f periodFigures
	var err error
	if f.revenue, err = s.repo.Revenue(ctx, w.From, w.To); err != nil {
		return f, errors.Wrap(err, "revenue")
	}
	if f.orders, err = s.repo.CountOrders(ctx, w.From, w.To); err != nil {
		return f, errors.Wrap(err, "count orders")
	}
	if f.customers, err = s.repo.CountNewUsers(ctx, w.From, w.To); err != nil {
		return f, errors.Wrap(err, "count users")
	}
	return f, nil
}

func (s *analyticsService) Stats(ctx context.Context, rangeName string) (*Stats, error) {
	current, previous := ResolveRange(rangeName, s.now())

	cur, err := s.figures(ctx, current)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch analytics stats", err)
	}
	prev, err := s.figures(ctx, previous)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch analytics stats", err)
	}

	rate := conversionRate(cur.orders, cur.customers)
	prevRate := conversionRate(prev.orders, prev.customers)
	return &Stats{
		TotalRevenue:     cur.revenue,
		TotalOrders:      cur.orders,
		NewCustomers:     cur.customers,
		ConversionRate:   rate,
		RevenueChange:    PercentageChange(cur.revenue.InexactFloat64(), prev.revenue.InexactFloat64()),
		OrdersChange:     PercentageChange(float64(cur.orders), float64(prev.orders)),
		CustomersChange:  PercentageChange(float64(cur.customers), float64(prev.customers)),
		ConversionChange: PercentageChange(rate, prevRate),
	}, nil
}

func (s *analyticsService) Sales(ctx context.Context, rangeName, groupBy string) ([]SalesPoint, error) {
	current, _ := ResolveRange(rangeName, s.now())

	grouping := repository.GroupByDay
	switch groupBy {
	case "", "By Month":
		grouping = repository.GroupByMonth
	case "By Week":
		grouping = repository.GroupByWeek
	}

	buckets, err := s.repo.SalesByPeriod(ctx, current.From, current.To, grouping)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch sales data", err)
	}

	points := make([]SalesPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, SalesPoint{Name: bucketLabel(grouping, b.Bucket), Revenue: b.Revenue, Orders: b.Orders})
	}
	return points, nil
}

func bucketLabel(grouping repository.SalesGrouping, bucket int) string {
	switch grouping {
	case repository.GroupByMonth:
		if bucket >= 1 && bucket <= len(monthNames) {
			return monthNames[bucket-1]
		}
		return fmt.Sprintf("Month %d", bucket)
	case repository.GroupByWeek:
		return fmt.Sprintf("Week %d", bucket)
	default:
		return fmt.Sprintf("Day %d", bucket)
	}
}

func (s *analyticsService) Traffic(ctx context.Context) []TrafficSource {
	return []TrafficSource{
		{Name: "Direct", Value: 400},
		{Name: "Social", Value: 300},
		{Name: "Referral", Value: 200},
		{Name: "Organic", Value: 100},
	}
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxAnalyticsLimit {
		return maxAnalyticsLimit
	}
	return limit
}

func (s *analyticsService) TopProducts(ctx context.Context, rangeName string, limit int) ([]TopProduct, error) {
	current, _ := ResolveRange(rangeName, s.now())

	rows, err := s.repo.TopProducts(ctx, current.From, current.To, clampLimit(limit, defaultTopProducts))
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch top products", err)
	}

	top := make([]TopProduct, 0, len(rows))
	for _, r := range rows {
		name := r.SnapshotName
		if r.CurrentName != nil {
			name = *r.CurrentName
		}
		top = append(top, TopProduct{ID: r.ProductID.String(), Name: name, Sales: r.Units})
	}
	return top, nil
}

func (s *analyticsService) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	orders, err := s.repo.RecentOrders(ctx, clampLimit(limit, defaultRecentActivity))
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch recent activity", err)
	}

	now := s.now()
	feed := make([]Activity, 0, len(orders))
	for _, o := range orders {
		event, status := activityLabels(o.Status)
		user := o.ShippingInfo.Email
		if o.User != nil && o.User.Email != "" {
			user = o.User.Email
		}
		feed = append(feed, Activity{
			Event:  fmt.Sprintf("%s #%s", event, shortOrderRef(o)),
			User:   user,
			Time:   TimeAgo(o.CreatedAt, now),
			Status: status,
		})
	}
	return feed, nil
}

func activityLabels(status model.OrderStatus) (event, label string) {
	switch status {
	case model.OrderStatusPending:
		return "New Order", "Pending"
	case model.OrderStatusProcessing:
		return "Order Processing", "Processed"
	case model.OrderStatusShipped:
		return "Order Shipped", "Shipped"
	case model.OrderStatusDelivered:
		return "Order Delivered", "Completed"
	default:
		return "Order Update", "Processed"
	}
}

// shortOrderRef is the last six characters of the order id, upper-cased.
func shortOrderRef(o model.Order) string {
	id := o.ID.String()
	return strings.ToUpper(id[len(id)-6:])
}

// TimeAgo renders the age of t relative to now in the largest whole unit.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	units := []struct {
		name string
		secs int64
	}{
		{"year", 31536000},
		{"month", 2592000},
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
	}
	for _, u := range units {
		if n := seconds / u.secs; n >= 1 {
			return plural(n, u.name) + " ago"
		}
	}
	if seconds < 0 {
		seconds = 0
	}
	return plural(seconds, "second") + " ago"
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
