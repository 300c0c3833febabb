package trip

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing trip data from storage.
// AvailableRooms is written here only on create; every later change to the
// counter goes through the inventory ledger.
type Repository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id int64) (*Trip, error)
	List(ctx context.Context, filter Filter) ([]*Trip, int, error)
	Update(ctx context.Context, t *Trip) error
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var tripColumns = []string{
	"id", "title", "destination", "country", "start_date", "end_date",
	"capacity", "available_rooms", "price",
	"old_price", "is_discount_active", "discount_expiry_date", "discount_activated_at",
	"package_type", "age_limit", "short_description", "image_url",
	"popularity_score", "is_visible", "version", "created_at", "updated_at",
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	err := row.Scan(
		&t.ID, &t.Title, &t.Destination, &t.Country, &t.StartDate, &t.EndDate,
		&t.Capacity, &t.AvailableRooms, &t.Price,
		&t.OldPrice, &t.IsDiscountActive, &t.DiscountExpiryDate, &t.DiscountActivatedAt,
		&t.PackageType, &t.AgeLimit, &t.ShortDescription, &t.ImageURL,
		&t.PopularityScore, &t.IsVisible, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *Trip) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.trips").
		Columns(
			"title", "destination", "country", "start_date", "end_date",
			"capacity", "available_rooms", "price",
			"package_type", "age_limit", "short_description", "image_url",
			"popularity_score", "is_visible",
		).
		Values(
			t.Title, t.Destination, t.Country, t.StartDate, t.EndDate,
			t.Capacity, t.AvailableRooms, t.Price,
			t.PackageType, t.AgeLimit, t.ShortDescription, t.ImageURL,
			t.PopularityScore, t.IsVisible,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create trip query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.Version, &t.CreatedAt, &t.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Trip, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(tripColumns...).
		From("public.trips").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get trip query failed: %w", err)
	}

	t, err := scanTrip(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get trip failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Trip, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	cols := append([]string{}, tripColumns...)
	cols = append(cols, "count(*) OVER() AS total_count")

	query := psql.Select(cols...).From("public.trips")

	if filter.VisibleOnly {
		query = query.Where(squirrel.Eq{"is_visible": true})
	}
	if filter.Country != "" {
		query = query.Where(squirrel.Eq{"country": filter.Country})
	}
	if filter.PackageType != "" {
		query = query.Where(squirrel.Eq{"package_type": filter.PackageType})
	}

	query = query.OrderBy("start_date ASC", "id ASC")

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
		return nil, 0, fmt.Errorf("build list trips query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list trips failed: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	var total int

	for rows.Next() {
		var t Trip
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Destination, &t.Country, &t.StartDate, &t.EndDate,
			&t.Capacity, &t.AvailableRooms, &t.Price,
			&t.OldPrice, &t.IsDiscountActive, &t.DiscountExpiryDate, &t.DiscountActivatedAt,
			&t.PackageType, &t.AgeLimit, &t.ShortDescription, &t.ImageURL,
			&t.PopularityScore, &t.IsVisible, &t.Version, &t.CreatedAt, &t.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan trip failed: %w", err)
		}
		trips = append(trips, &t)
	}

	return trips, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Trip) error {
	// available_rooms and version are deliberately absent: those belong to
	// the inventory ledger.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trips").
		Set("title", t.Title).
		Set("destination", t.Destination).
		Set("country", t.Country).
		Set("start_date", t.StartDate).
		Set("end_date", t.EndDate).
		Set("capacity", t.Capacity).
		Set("price", t.Price).
		Set("old_price", t.OldPrice).
		Set("is_discount_active", t.IsDiscountActive).
		Set("discount_expiry_date", t.DiscountExpiryDate).
		Set("discount_activated_at", t.DiscountActivatedAt).
		Set("package_type", t.PackageType).
		Set("age_limit", t.AgeLimit).
		Set("short_description", t.ShortDescription).
		Set("popularity_score", t.PopularityScore).
		Set("is_visible", t.IsVisible).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update trip query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update trip failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.trips").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete trip query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete trip failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetImageURL(ctx context.Context, id int64, url string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.trips").
		Set("image_url", url).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set image url query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set image url failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
