package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing review data from storage.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	ListByTrip(ctx context.Context, tripID int64, page, pageSize int) ([]*Review, int, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id int64) error
	AverageRating(ctx context.Context, tripID int64) (float64, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, rev *Review) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO public.reviews (trip_id, user_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		rev.TripID, rev.UserID, rev.Rating, rev.Comment).
		Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("create review failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Review, error) {
	var rev Review
	err := r.pool.QueryRow(ctx,
		`SELECT r.id, r.trip_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at, u.full_name
		 FROM public.reviews r
		 JOIN public.users u ON u.id = r.user_id
		 WHERE r.id = $1`, id).
		Scan(&rev.ID, &rev.TripID, &rev.UserID, &rev.Rating, &rev.Comment,
			&rev.CreatedAt, &rev.UpdatedAt, &rev.UserFullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get review failed: %w", err)
	}
	return &rev, nil
}

func (r *pgxRepository) ListByTrip(ctx context.Context, tripID int64, page, pageSize int) ([]*Review, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"r.id", "r.trip_id", "r.user_id", "r.rating", "r.comment",
		"r.created_at", "r.updated_at", "u.full_name",
		"count(*) OVER() AS total_count",
	).
		From("public.reviews r").
		Join("public.users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.trip_id": tripID}).
		OrderBy("r.created_at DESC", "r.id DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reviews query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews failed: %w", err)
	}
	defer rows.Close()

	var reviews []*Review
	var total int
	for rows.Next() {
		var rev Review
		if err := rows.Scan(
			&rev.ID, &rev.TripID, &rev.UserID, &rev.Rating, &rev.Comment,
			&rev.CreatedAt, &rev.UpdatedAt, &rev.UserFullName, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review failed: %w", err)
		}
		reviews = append(reviews, &rev)
	}
	return reviews, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, rev *Review) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE public.reviews
		 SET rating = $2, comment = $3, updated_at = now()
		 WHERE id = $1`,
		rev.ID, rev.Rating, rev.Comment)
	if err != nil {
		return fmt.Errorf("update review failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM public.reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) AverageRating(ctx context.Context, tripID int64) (float64, int, error) {
	var avg float64
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(avg(rating), 0), count(*)
		 FROM public.reviews WHERE trip_id = $1`, tripID).
		Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("average rating failed: %w", err)
	}
	return avg, count, nil
}
