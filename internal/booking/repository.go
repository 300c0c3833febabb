package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-booking-backend/internal/inventory"
	"travel-booking-backend/internal/waitinglist"
)

// Repository defines methods for accessing booking data from storage.
type Repository interface {
	// CreateConfirmed runs the whole booking admission inside one
	// serializable transaction: waiting list turn check, one room reserved
	// per traveler, price snapshot, booking insert and queue removal all
	// commit or roll back together.
	CreateConfirmed(ctx context.Context, userID string, tripID int64, partySize int, now time.Time) (*Booking, error)

	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter, now time.Time) ([]*Booking, int, error)
	CountUpcoming(ctx context.Context, userID string, now time.Time) (int, error)
	HasActive(ctx context.Context, userID string, tripID int64) (bool, error)
	MarkPaid(ctx context.Context, id int64, transactionID string, at time.Time) error

	// ResizeParty updates a booking's party size and total price while
	// moving the room delta through the ledger in the same serializable
	// transaction: growing the party reserves the extra rooms, shrinking
	// releases them. Reports availability after the change so the caller
	// can wake the waiting list when rooms were freed.
	ResizeParty(ctx context.Context, id int64, partySize int, totalPrice float64) (tripID int64, availableAfter int, err error)

	// CancelAndRelease flips the booking to cancelled and returns its
	// rooms, one per traveler, to the trip in one transaction, reporting
	// the trip's availability after the release so the caller can wake the
	// waiting list.
	CancelAndRelease(ctx context.Context, id int64, at time.Time) (tripID int64, availableAfter int, err error)

	ListForReminder(ctx context.Context, from, to time.Time) ([]*Reminder, error)
}

type pgxRepository struct {
	pool   *pgxpool.Pool
	ledger *inventory.Ledger
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool, ledger *inventory.Ledger) Repository {
	return &pgxRepository{pool: pool, ledger: ledger}
}

const bookingSelect = `
	b.id, b.trip_id, b.user_id, b.party_size, b.total_price,
	b.paid, b.paid_at, b.transaction_id,
	b.cancelled, b.cancelled_at,
	b.created_at, b.updated_at,
	t.title, t.start_date`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.TripID, &b.UserID, &b.PartySize, &b.TotalPrice,
		&b.Paid, &b.PaidAt, &b.TransactionID,
		&b.Cancelled, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
		&b.TripTitle, &b.TripStartDate,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) CreateConfirmed(ctx context.Context, userID string, tripID int64, partySize int, now time.Time) (*Booking, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("begin booking tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Turn check. An empty queue lets anyone book; otherwise only the head
	// may. Read inside the serializable tx so two concurrent creates cannot
	// both see themselves at the head.
	var headUserID string
	err = tx.QueryRow(ctx,
		`SELECT user_id FROM public.waiting_list
		 WHERE trip_id = $1
		 ORDER BY `+waitinglist.QueueOrder+`
		 LIMIT 1`, tripID).Scan(&headUserID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// empty queue, open booking
	case err != nil:
		return nil, fmt.Errorf("read queue head failed: %w", err)
	case headUserID != userID:
		return nil, ErrNotYourTurn
	}

	if err := r.ledger.Reserve(ctx, tx, tripID, partySize); err != nil {
		return nil, err
	}

	// Snapshot the effective price inside the same tx. A lapsed discount
	// falls back to the pre-discount price.
	var price float64
	var oldPrice *float64
	var discountActive bool
	var discountExpiry *time.Time
	var title string
	var startDate time.Time
	err = tx.QueryRow(ctx,
		`SELECT price, old_price, is_discount_active, discount_expiry_date, title, start_date
		 FROM public.trips WHERE id = $1`, tripID).
		Scan(&price, &oldPrice, &discountActive, &discountExpiry, &title, &startDate)
	if err != nil {
		return nil, fmt.Errorf("read trip price failed: %w", err)
	}
	if discountActive && discountExpiry != nil && now.After(*discountExpiry) && oldPrice != nil {
		price = *oldPrice
	}

	b := &Booking{
		TripID:        tripID,
		UserID:        userID,
		PartySize:     partySize,
		TotalPrice:    price * float64(partySize),
		TripTitle:     title,
		TripStartDate: startDate,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO public.bookings (trip_id, user_id, party_size, total_price)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		b.TripID, b.UserID, b.PartySize, b.TotalPrice).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert booking failed: %w", err)
	}

	// Booking consumes the user's queue spot, if any.
	if _, err := tx.Exec(ctx,
		`DELETE FROM public.waiting_list WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID); err != nil {
		return nil, fmt.Errorf("remove queue entry failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if inventory.IsSerializationFailure(err) {
			return nil, inventory.ErrConcurrentModification
		}
		return nil, fmt.Errorf("commit booking tx failed: %w", err)
	}

	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query := `SELECT ` + bookingSelect + `
		FROM public.bookings b
		JOIN public.trips t ON t.id = b.trip_id
		WHERE b.id = $1`

	b, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter, now time.Time) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query := psql.Select(
		"b.id", "b.trip_id", "b.user_id", "b.party_size", "b.total_price",
		"b.paid", "b.paid_at", "b.transaction_id",
		"b.cancelled", "b.cancelled_at",
		"b.created_at", "b.updated_at",
		"t.title", "t.start_date",
		"count(*) OVER() AS total_count",
	).
		From("public.bookings b").
		Join("public.trips t ON t.id = b.trip_id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.TripID != 0 {
		query = query.Where(squirrel.Eq{"b.trip_id": filter.TripID})
	}
	switch filter.Scope {
	case ScopeUpcoming:
		query = query.Where(squirrel.Gt{"t.start_date": now}).
			Where(squirrel.Eq{"b.cancelled": false})
	case ScopePast:
		query = query.Where(squirrel.LtOrEq{"t.start_date": now})
	}

	query = query.OrderBy("t.start_date ASC", "b.id ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.TripID, &b.UserID, &b.PartySize, &b.TotalPrice,
			&b.Paid, &b.PaidAt, &b.TransactionID,
			&b.Cancelled, &b.CancelledAt,
			&b.CreatedAt, &b.UpdatedAt,
			&b.TripTitle, &b.TripStartDate,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) CountUpcoming(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM public.bookings b
		 JOIN public.trips t ON t.id = b.trip_id
		 WHERE b.user_id = $1 AND b.cancelled = false AND t.start_date > $2`,
		userID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count upcoming bookings failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) HasActive(ctx context.Context, userID string, tripID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM public.bookings
			WHERE user_id = $1 AND trip_id = $2 AND cancelled = false
		)`, userID, tripID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active booking failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) MarkPaid(ctx context.Context, id int64, transactionID string, at time.Time) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE public.bookings
		 SET paid = true, paid_at = $2, transaction_id = $3, updated_at = now()
		 WHERE id = $1 AND paid = false AND cancelled = false`,
		id, at, transactionID)
	if err != nil {
		return fmt.Errorf("mark booking paid failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ResizeParty(ctx context.Context, id int64, partySize int, totalPrice float64) (int64, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, 0, fmt.Errorf("begin resize tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var tripID int64
	var oldSize int
	err = tx.QueryRow(ctx,
		`SELECT trip_id, party_size FROM public.bookings
		 WHERE id = $1 AND paid = false AND cancelled = false`, id).
		Scan(&tripID, &oldSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, fmt.Errorf("read booking for resize failed: %w", err)
	}

	switch delta := partySize - oldSize; {
	case delta > 0:
		if err := r.ledger.Reserve(ctx, tx, tripID, delta); err != nil {
			return 0, 0, err
		}
	case delta < 0:
		if err := r.ledger.Release(ctx, tx, tripID, -delta); err != nil {
			return 0, 0, err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE public.bookings
		 SET party_size = $2, total_price = $3, updated_at = now()
		 WHERE id = $1`, id, partySize, totalPrice); err != nil {
		return 0, 0, fmt.Errorf("update party size failed: %w", err)
	}

	available, err := r.ledger.Available(ctx, tx, tripID)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		if inventory.IsSerializationFailure(err) {
			return 0, 0, inventory.ErrConcurrentModification
		}
		return 0, 0, fmt.Errorf("commit resize tx failed: %w", err)
	}

	return tripID, available, nil
}

func (r *pgxRepository) CancelAndRelease(ctx context.Context, id int64, at time.Time) (int64, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, 0, fmt.Errorf("begin cancel tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var tripID int64
	var partySize int
	err = tx.QueryRow(ctx,
		`UPDATE public.bookings
		 SET cancelled = true, cancelled_at = $2, updated_at = now()
		 WHERE id = $1 AND cancelled = false
		 RETURNING trip_id, party_size`, id, at).Scan(&tripID, &partySize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrAlreadyCancelled
		}
		return 0, 0, fmt.Errorf("cancel booking failed: %w", err)
	}

	if err := r.ledger.Release(ctx, tx, tripID, partySize); err != nil {
		return 0, 0, err
	}

	available, err := r.ledger.Available(ctx, tx, tripID)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		if inventory.IsSerializationFailure(err) {
			return 0, 0, inventory.ErrConcurrentModification
		}
		return 0, 0, fmt.Errorf("commit cancel tx failed: %w", err)
	}

	return tripID, available, nil
}

func (r *pgxRepository) ListForReminder(ctx context.Context, from, to time.Time) ([]*Reminder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, u.email, t.title, t.start_date
		 FROM public.bookings b
		 JOIN public.trips t ON t.id = b.trip_id
		 JOIN public.users u ON u.id = b.user_id
		 WHERE b.paid = true AND b.cancelled = false
		   AND t.start_date >= $1 AND t.start_date < $2`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("list reminder bookings failed: %w", err)
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.BookingID, &rem.UserEmail, &rem.TripTitle, &rem.TripStartDate); err != nil {
			return nil, fmt.Errorf("scan reminder failed: %w", err)
		}
		reminders = append(reminders, &rem)
	}
	return reminders, nil
}
