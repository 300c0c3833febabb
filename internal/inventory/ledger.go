package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"travel-booking-backend/internal/pkg/apperror"
)

var (
	ErrTripNotFound          = apperror.New(http.StatusNotFound, "trip not found")
	ErrInsufficientInventory = apperror.New(http.StatusConflict, "not enough available rooms right now")

	// ErrConcurrentModification is expected under load and gets its own
	// user-facing message so callers can tell it apart from a generic failure.
	ErrConcurrentModification = apperror.New(http.StatusConflict,
		"someone else booked the last room before you; please try again or join the waiting list")
)

// DB is the subset of pgx operations the ledger needs. It is satisfied by
// both *pgxpool.Pool and pgx.Tx, so callers that need the reserve to happen
// inside a larger serializable transaction can pass their tx through.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger owns every mutation of a trip's available_rooms counter.
// All call sites go through Reserve/Release so the read-check-write of the
// counter is always a single atomic unit against the row's version token.
type Ledger struct{}

// NewLedger creates a new Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve decrements available_rooms by n for the given trip.
// It re-reads the row, rejects with ErrInsufficientInventory when fewer than
// n rooms remain, and applies the decrement with an optimistic version check.
// A version mismatch means another transaction touched the counter between
// our read and our write and maps to ErrConcurrentModification; the caller
// decides whether to resubmit, it is never retried here.
func (l *Ledger) Reserve(ctx context.Context, db DB, tripID int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("reserve amount must be positive, got %d", n)
	}

	available, version, err := l.read(ctx, db, tripID)
	if err != nil {
		return err
	}

	if available < n {
		return ErrInsufficientInventory
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trips").
		Set("available_rooms", squirrel.Expr("available_rooms - ?", n)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": tripID, "version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reserve query failed: %w", err)
	}

	ct, err := db.Exec(ctx, query, args...)
	if err != nil {
		if IsSerializationFailure(err) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("reserve rooms failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Row exists (we just read it) but the version moved under us.
		return ErrConcurrentModification
	}

	return nil
}

// Release returns n rooms to the trip. Release amounts are bounded by prior
// reserves, so there is no upper-bound check here; the version still bumps
// so concurrent reserves observe the change.
func (l *Ledger) Release(ctx context.Context, db DB, tripID int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("release amount must be positive, got %d", n)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trips").
		Set("available_rooms", squirrel.Expr("available_rooms + ?", n)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": tripID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release query failed: %w", err)
	}

	ct, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("release rooms failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTripNotFound
	}

	return nil
}

// Available reads the current available_rooms counter for a trip.
func (l *Ledger) Available(ctx context.Context, db DB, tripID int64) (int, error) {
	available, _, err := l.read(ctx, db, tripID)
	return available, err
}

func (l *Ledger) read(ctx context.Context, db DB, tripID int64) (available, version int, err error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("available_rooms", "version").
		From("public.trips").
		Where(squirrel.Eq{"id": tripID}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build read inventory query failed: %w", err)
	}

	if err := db.QueryRow(ctx, query, args...).Scan(&available, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrTripNotFound
		}
		return 0, 0, fmt.Errorf("read inventory failed: %w", err)
	}

	return available, version, nil
}

// IsSerializationFailure reports whether err is a Postgres serialization
// failure (SQLSTATE 40001), which shows up when serializable transactions
// conflict on commit.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure
}
