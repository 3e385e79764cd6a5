package dashboard

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidTimeframe = errors.New("dashboard: invalid timeframe")

// PlatformStats is the headline dashboard view.
type PlatformStats struct {
	TotalUsers         int     `json:"total_users"`
	TotalPhotographers int     `json:"total_photographers"`
	TotalBookings      int     `json:"total_bookings"`
	ActiveBookings     int     `json:"active_bookings"`
	TotalRevenue       float64 `json:"total_revenue"`
	UserGrowthRate     float64 `json:"user_growth_rate"`
}

// BookingMetrics breaks bookings down by status.
type BookingMetrics struct {
	PendingBookings     int     `json:"pending_bookings"`
	ConfirmedBookings   int     `json:"confirmed_bookings"`
	CompletedBookings   int     `json:"completed_bookings"`
	CancelledBookings   int     `json:"cancelled_bookings"`
	AverageBookingValue float64 `json:"average_booking_value"`
}

// TopPhotographer is one row of the top-rated list.
type TopPhotographer struct {
	UserID string  `json:"user_id"`
	City   string  `json:"city"`
	Rating float64 `json:"rating"`
}

type PhotographerMetrics struct {
	ActivePhotographers   int               `json:"active_photographers"`
	TopRatedPhotographers []TopPhotographer `json:"top_rated_photographers"`
	AverageRating         float64           `json:"average_rating"`
	TotalEarnings         float64           `json:"total_earnings"`
}

type UserActivity struct {
	DailyActiveUsers  int     `json:"daily_active_users"`
	NewUserSignups    int     `json:"new_user_signups"`
	UserRetentionRate float64 `json:"user_retention_rate"`
}

// RevenueSeries is chart-shaped: one label per bucket, one value per label.
type RevenueSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// StatsStore runs the aggregate queries behind the dashboard endpoints.
type StatsStore interface {
	PlatformStats(ctx context.Context, now time.Time) (PlatformStats, error)
	BookingMetrics(ctx context.Context) (BookingMetrics, error)
	PhotographerMetrics(ctx context.Context) (PhotographerMetrics, error)
	UserActivity(ctx context.Context, now time.Time) (UserActivity, error)
	RevenueByDay(ctx context.Context, from, to time.Time) (RevenueSeries, error)
}

// StatsService validates inputs and delegates aggregation to the store.
type StatsService struct {
	store StatsStore
	clock func() time.Time
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store, clock: time.Now}
}

func (s *StatsService) PlatformStats(ctx context.Context) (PlatformStats, error) {
	return s.store.PlatformStats(ctx, s.clock().UTC())
}

func (s *StatsService) BookingMetrics(ctx context.Context) (BookingMetrics, error) {
	return s.store.BookingMetrics(ctx)
}

func (s *StatsService) PhotographerMetrics(ctx context.Context) (PhotographerMetrics, error) {
	return s.store.PhotographerMetrics(ctx)
}

func (s *StatsService) UserActivity(ctx context.Context) (UserActivity, error) {
	return s.store.UserActivity(ctx, s.clock().UTC())
}

// RevenueChart returns completed-booking revenue bucketed by day over the
// requested timeframe: "week" (default), "month" or "year".
func (s *StatsService) RevenueChart(ctx context.Context, timeframe string) (RevenueSeries, error) {
	var days int
	switch timeframe {
	case "", "week":
		days = 7
	case "month":
		days = 30
	case "year":
		days = 365
	default:
		return RevenueSeries{}, ErrInvalidTimeframe
	}
	to := s.clock().UTC()
	return s.store.RevenueByDay(ctx, to.AddDate(0, 0, -days), to)
}
