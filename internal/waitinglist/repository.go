package waitinglist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueueOrder is the FIFO rule for every queue read: first joined wins, the
// entry id breaks ties between identical timestamps. Shared with the booking
// repository's in-transaction turn check so the rule lives in one place.
const QueueOrder = "joined_at ASC, id ASC"

// Repository defines methods for accessing waiting list data from storage.
type Repository interface {
	Join(ctx context.Context, tripID int64, userID string) (*Entry, error)
	Head(ctx context.Context, tripID int64) (*Entry, error)
	NextUnnotified(ctx context.Context, tripID int64) (*Entry, error)
	Get(ctx context.Context, tripID int64, userID string) (*Entry, error)
	ListByTrip(ctx context.Context, tripID int64) ([]*Entry, error)
	Remove(ctx context.Context, tripID int64, userID string) (bool, error)
	RemoveByID(ctx context.Context, id int64) error
	Clear(ctx context.Context, tripID int64) error
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	ListExpiredNotifications(ctx context.Context, olderThan time.Time) ([]*Entry, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var entryColumns = []string{"id", "trip_id", "user_id", "joined_at", "notified_at"}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.TripID, &e.UserID, &e.JoinedAt, &e.NotifiedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgxRepository) Join(ctx context.Context, tripID int64, userID string) (*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.waiting_list").
		Columns("trip_id", "user_id").
		Values(tripID, userID).
		Suffix("RETURNING id, trip_id, user_id, joined_at, notified_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build join queue query failed: %w", err)
	}

	e, err := scanEntry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrAlreadyQueued
		}
		return nil, fmt.Errorf("join queue failed: %w", err)
	}
	return e, nil
}

// Head returns the first entry of a trip's queue, or nil when the queue is
// empty.
func (r *pgxRepository) Head(ctx context.Context, tripID int64) (*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(entryColumns...).
		From("public.waiting_list").
		Where(squirrel.Eq{"trip_id": tripID}).
		OrderBy(QueueOrder).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build head query failed: %w", err)
	}

	e, err := scanEntry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read queue head failed: %w", err)
	}
	return e, nil
}

// NextUnnotified returns the earliest entry that has not been told a room is
// free, or nil when every entry already carries a pending notice.
func (r *pgxRepository) NextUnnotified(ctx context.Context, tripID int64) (*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(entryColumns...).
		From("public.waiting_list").
		Where(squirrel.Eq{"trip_id": tripID, "notified_at": nil}).
		OrderBy(QueueOrder).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build next unnotified query failed: %w", err)
	}

	e, err := scanEntry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read next unnotified entry failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) Get(ctx context.Context, tripID int64, userID string) (*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(entryColumns...).
		From("public.waiting_list").
		Where(squirrel.Eq{"trip_id": tripID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get entry query failed: %w", err)
	}

	e, err := scanEntry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotQueued
		}
		return nil, fmt.Errorf("get queue entry failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) ListByTrip(ctx context.Context, tripID int64) ([]*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(entryColumns...).
		From("public.waiting_list").
		Where(squirrel.Eq{"trip_id": tripID}).
		OrderBy(QueueOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list queue query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TripID, &e.UserID, &e.JoinedAt, &e.NotifiedAt); err != nil {
			return nil, fmt.Errorf("scan queue entry failed: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

// Remove deletes a user's entry and reports whether one existed. Callers
// treat a missing entry as success, so no error is returned for zero rows.
func (r *pgxRepository) Remove(ctx context.Context, tripID int64, userID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.waiting_list").
		Where(squirrel.Eq{"trip_id": tripID, "user_id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build remove entry query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("remove queue entry failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgxRepository) RemoveByID(ctx context.Context, id int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.waiting_list").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove entry query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("remove queue entry failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *pgxRepository) Clear(ctx context.Context, tripID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.waiting_list").
		Where(squirrel.Eq{"trip_id": tripID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear queue query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("clear queue failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.waiting_list").
		Set("notified_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark notified query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark notified failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *pgxRepository) ListExpiredNotifications(ctx context.Context, olderThan time.Time) ([]*Entry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(entryColumns...).
		From("public.waiting_list").
		Where(squirrel.Lt{"notified_at": olderThan}).
		OrderBy("notified_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expired notifications query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expired notifications failed: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TripID, &e.UserID, &e.JoinedAt, &e.NotifiedAt); err != nil {
			return nil, fmt.Errorf("scan expired entry failed: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, nil
}
