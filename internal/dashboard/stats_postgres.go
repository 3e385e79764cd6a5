package dashboard

import (
	"context"
	"database/sql"
	"time"
)

// PostgresStatsStore aggregates over the users, photographers and bookings
// tables owned by the domain packages.
type PostgresStatsStore struct {
	db *sql.DB
}

func NewPostgresStatsStore(db *sql.DB) *PostgresStatsStore {
	return &PostgresStatsStore{db: db}
}

func (s *PostgresStatsStore) PlatformStats(ctx context.Context, now time.Time) (PlatformStats, error) {
	var out PlatformStats

	const counts = `
SELECT
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL),
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND user_type = 'photographer'),
	(SELECT COUNT(*) FROM bookings),
	(SELECT COUNT(*) FROM bookings WHERE status IN ('pending', 'confirmed')),
	(SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE status = 'completed')`
	err := s.db.QueryRowContext(ctx, counts).Scan(
		&out.TotalUsers,
		&out.TotalPhotographers,
		&out.TotalBookings,
		&out.ActiveBookings,
		&out.TotalRevenue,
	)
	if err != nil {
		return PlatformStats{}, err
	}

	// Growth rate compares the last 30 days of signups against the 30
	// days before that.
	const growth = `
SELECT
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND created_at >= $1),
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND created_at >= $2 AND created_at < $1)`
	var recent, previous int
	cutoff := now.AddDate(0, 0, -30)
	if err := s.db.QueryRowContext(ctx, growth, cutoff, now.AddDate(0, 0, -60)).Scan(&recent, &previous); err != nil {
		return PlatformStats{}, err
	}
	if previous > 0 {
		out.UserGrowthRate = float64(recent-previous) / float64(previous)
	}
	return out, nil
}

func (s *PostgresStatsStore) BookingMetrics(ctx context.Context) (BookingMetrics, error) {
	var out BookingMetrics
	const q = `
SELECT
	COUNT(*) FILTER (WHERE status = 'pending'),
	COUNT(*) FILTER (WHERE status = 'confirmed'),
	COUNT(*) FILTER (WHERE status = 'completed'),
	COUNT(*) FILTER (WHERE status = 'cancelled'),
	COALESCE(AVG(total_amount), 0)
FROM bookings`
	err := s.db.QueryRowContext(ctx, q).Scan(
		&out.PendingBookings,
		&out.ConfirmedBookings,
		&out.CompletedBookings,
		&out.CancelledBookings,
		&out.AverageBookingValue,
	)
	if err != nil {
		return BookingMetrics{}, err
	}
	return out, nil
}

func (s *PostgresStatsStore) PhotographerMetrics(ctx context.Context) (PhotographerMetrics, error) {
	var out PhotographerMetrics

	const summary = `
SELECT
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND is_active AND user_type = 'photographer'),
	(SELECT COALESCE(AVG(rating), 0) FROM photographers WHERE rating IS NOT NULL),
	(SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE status = 'completed')`
	err := s.db.QueryRowContext(ctx, summary).Scan(
		&out.ActivePhotographers,
		&out.AverageRating,
		&out.TotalEarnings,
	)
	if err != nil {
		return PhotographerMetrics{}, err
	}

	const top = `
SELECT user_id, city, rating
FROM photographers
WHERE rating IS NOT NULL
ORDER BY rating DESC
LIMIT 5`
	rows, err := s.db.QueryContext(ctx, top)
	if err != nil {
		return PhotographerMetrics{}, err
	}
	defer rows.Close()

	out.TopRatedPhotographers = []TopPhotographer{}
	for rows.Next() {
		var p TopPhotographer
		if err := rows.Scan(&p.UserID, &p.City, &p.Rating); err != nil {
			return PhotographerMetrics{}, err
		}
		out.TopRatedPhotographers = append(out.TopRatedPhotographers, p)
	}
	if err := rows.Err(); err != nil {
		return PhotographerMetrics{}, err
	}
	return out, nil
}

func (s *PostgresStatsStore) UserActivity(ctx context.Context, now time.Time) (UserActivity, error) {
	var out UserActivity

	// Activity is approximated from booking and signup timestamps; the
	// platform keeps no per-request activity log.
	const q = `
SELECT
	(SELECT COUNT(DISTINCT customer_id) FROM bookings WHERE created_at >= $1),
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND created_at >= $1)`
	dayAgo := now.Add(-24 * time.Hour)
	if err := s.db.QueryRowContext(ctx, q, dayAgo).Scan(&out.DailyActiveUsers, &out.NewUserSignups); err != nil {
		return UserActivity{}, err
	}

	// Retention: share of accounts older than 30 days that booked within
	// the last 30.
	const retention = `
SELECT
	(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND created_at < $1),
	(SELECT COUNT(DISTINCT b.customer_id)
	 FROM bookings b JOIN users u ON u.id = b.customer_id
	 WHERE u.created_at < $1 AND b.created_at >= $1)`
	var cohort, returned int
	if err := s.db.QueryRowContext(ctx, retention, now.AddDate(0, 0, -30)).Scan(&cohort, &returned); err != nil {
		return UserActivity{}, err
	}
	if cohort > 0 {
		out.UserRetentionRate = float64(returned) / float64(cohort)
	}
	return out, nil
}

func (s *PostgresStatsStore) RevenueByDay(ctx context.Context, from, to time.Time) (RevenueSeries, error) {
	const q = `
SELECT date_trunc('day', booking_date)::date AS day, COALESCE(SUM(total_amount), 0)
FROM bookings
WHERE status = 'completed' AND booking_date >= $1 AND booking_date < $2
GROUP BY day
ORDER BY day`
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return RevenueSeries{}, err
	}
	defer rows.Close()

	out := RevenueSeries{Labels: []string{}, Data: []float64{}}
	for rows.Next() {
		var day time.Time
		var amount float64
		if err := rows.Scan(&day, &amount); err != nil {
			return RevenueSeries{}, err
		}
		out.Labels = append(out.Labels, day.Format("2006-01-02"))
		out.Data = append(out.Data, amount)
	}
	if err := rows.Err(); err != nil {
		return RevenueSeries{}, err
	}
	return out, nil
}
