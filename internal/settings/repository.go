package settings

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing the admin settings row.
type Repository interface {
	Get(ctx context.Context) (AdminSettings, error)
	Update(ctx context.Context, s AdminSettings) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Get(ctx context.Context) (AdminSettings, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"booking_lead_time_days", "cancellation_deadline_days",
		"trip_reminder_days", "max_discount_duration_days",
		"notification_expiry_days",
	).
		From("public.admin_settings").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return AdminSettings{}, fmt.Errorf("build get settings query failed: %w", err)
	}

	var s AdminSettings
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&s.BookingLeadTimeDays, &s.CancellationDeadlineDays,
		&s.TripReminderDays, &s.MaxDiscountDurationDays,
		&s.NotificationExpiryDays,
	)
	if err != nil {
		return AdminSettings{}, fmt.Errorf("get settings failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) Update(ctx context.Context, s AdminSettings) error {
	// Upsert keeps the row self-healing if it was never seeded.
	query := `
		INSERT INTO public.admin_settings (
			id, booking_lead_time_days, cancellation_deadline_days,
			trip_reminder_days, max_discount_duration_days, notification_expiry_days
		)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			booking_lead_time_days = EXCLUDED.booking_lead_time_days,
			cancellation_deadline_days = EXCLUDED.cancellation_deadline_days,
			trip_reminder_days = EXCLUDED.trip_reminder_days,
			max_discount_duration_days = EXCLUDED.max_discount_duration_days,
			notification_expiry_days = EXCLUDED.notification_expiry_days`

	_, err := r.pool.Exec(ctx, query,
		s.BookingLeadTimeDays, s.CancellationDeadlineDays,
		s.TripReminderDays, s.MaxDiscountDurationDays,
		s.NotificationExpiryDays,
	)
	if err != nil {
		return fmt.Errorf("update settings failed: %w", err)
	}
	return nil
}
