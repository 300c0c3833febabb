package trip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-backend/internal/settings"
)

type fakeRepo struct {
	trips   map[int64]*Trip
	nextID  int64
	updates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{trips: map[int64]*Trip{}, nextID: 1}
}

func (r *fakeRepo) Create(ctx context.Context, t *Trip) error {
	t.ID = r.nextID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.trips[t.ID] = t
	r.nextID++
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*Trip, error) {
	t, ok := r.trips[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context, f Filter) ([]*Trip, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) Update(ctx context.Context, t *Trip) error {
	if _, ok := r.trips[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	r.trips[t.ID] = &cp
	r.updates++
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.trips[id]; !ok {
		return ErrNotFound
	}
	delete(r.trips, id)
	return nil
}

func (r *fakeRepo) SetImageURL(ctx context.Context, id int64, url string) error {
	t, ok := r.trips[id]
	if !ok {
		return ErrNotFound
	}
	t.ImageURL = url
	return nil
}

type staticSettings struct {
	cfg settings.AdminSettings
}

func (s staticSettings) Get(ctx context.Context) settings.AdminSettings { return s.cfg }
func (s staticSettings) Update(ctx context.Context, cfg settings.AdminSettings) error {
	return nil
}

func newTestService(t *testing.T) (*service, *fakeRepo, time.Time) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewService(repo, staticSettings{cfg: settings.Defaults()}, nil).(*service)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo, now
}

func seedTrip(t *testing.T, svc Service) *Trip {
	t.Helper()
	tr, err := svc.Create(context.Background(), CreateRequest{
		Title:       "Sahara Caravan",
		Destination: "Merzouga",
		Country:     "Morocco",
		StartDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Capacity:    12,
		Price:       800,
		PackageType: "adventure",
		IsVisible:   true,
	})
	require.NoError(t, err)
	return tr
}

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	t.Run("new trips start fully available", func(t *testing.T) {
		tr := seedTrip(t, svc)
		assert.Equal(t, 12, tr.AvailableRooms)
		assert.False(t, tr.SoldOut())
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateRequest{
			Title:     "Backwards",
			StartDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Capacity:  5,
			Price:     100,
		})
		require.ErrorIs(t, err, ErrInvalidDates)
	})
}

func TestActivateDiscount(t *testing.T) {
	ctx := context.Background()

	t.Run("remembers the old price", func(t *testing.T) {
		svc, _, now := newTestService(t)
		tr := seedTrip(t, svc)

		got, err := svc.ActivateDiscount(ctx, tr.ID, DiscountRequest{NewPrice: 600})
		require.NoError(t, err)

		assert.Equal(t, 600.0, got.Price)
		require.NotNil(t, got.OldPrice)
		assert.Equal(t, 800.0, *got.OldPrice)
		assert.True(t, got.IsDiscountActive)
		require.NotNil(t, got.DiscountActivatedAt)
		assert.Equal(t, now, *got.DiscountActivatedAt)

		// No expiry supplied: the policy maximum (7 days) applies.
		require.NotNil(t, got.DiscountExpiryDate)
		assert.Equal(t, now.AddDate(0, 0, 7), *got.DiscountExpiryDate)
	})

	t.Run("expiry beyond the policy maximum", func(t *testing.T) {
		svc, _, now := newTestService(t)
		tr := seedTrip(t, svc)

		tooLate := now.AddDate(0, 0, 8)
		_, err := svc.ActivateDiscount(ctx, tr.ID, DiscountRequest{NewPrice: 600, ExpiryDate: &tooLate})
		require.ErrorIs(t, err, ErrDiscountTooLong)
	})

	t.Run("discounted price must be lower", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tr := seedTrip(t, svc)

		_, err := svc.ActivateDiscount(ctx, tr.ID, DiscountRequest{NewPrice: 800})
		assert.ErrorIs(t, err, ErrInvalidDiscount)
		_, err = svc.ActivateDiscount(ctx, tr.ID, DiscountRequest{NewPrice: 900})
		assert.ErrorIs(t, err, ErrInvalidDiscount)
		_, err = svc.ActivateDiscount(ctx, tr.ID, DiscountRequest{NewPrice: 0})
		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})

	t.Run("deactivate restores the old price", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tr := seedTrip(t, svc)

		_, err := svc.ActivateDiscount(ctx, tr.ID, DiscountRequest{NewPrice: 600})
		require.NoError(t, err)

		got, err := svc.DeactivateDiscount(ctx, tr.ID)
		require.NoError(t, err)

		assert.Equal(t, 800.0, got.Price)
		assert.Nil(t, got.OldPrice)
		assert.False(t, got.IsDiscountActive)
		assert.Nil(t, got.DiscountExpiryDate)
		assert.Nil(t, got.DiscountActivatedAt)
	})
}

func TestEffectivePrice(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	old := 800.0

	t.Run("active discount", func(t *testing.T) {
		expiry := now.AddDate(0, 0, 2)
		tr := &Trip{Price: 600, OldPrice: &old, IsDiscountActive: true, DiscountExpiryDate: &expiry}

		assert.Equal(t, 600.0, tr.EffectivePrice(now))
	})

	t.Run("lapsed discount falls back", func(t *testing.T) {
		expiry := now.AddDate(0, 0, -1)
		tr := &Trip{Price: 600, OldPrice: &old, IsDiscountActive: true, DiscountExpiryDate: &expiry}

		assert.Equal(t, 800.0, tr.EffectivePrice(now))
	})

	t.Run("no discount", func(t *testing.T) {
		tr := &Trip{Price: 800}
		assert.Equal(t, 800.0, tr.EffectivePrice(now))
	})
}

func TestUpdateTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	tr := seedTrip(t, svc)

	t.Run("partial update", func(t *testing.T) {
		title := "Sahara Caravan Deluxe"
		score := 42
		got, err := svc.Update(ctx, tr.ID, UpdateRequest{Title: &title, PopularityScore: &score})
		require.NoError(t, err)

		assert.Equal(t, title, got.Title)
		assert.Equal(t, 42, got.PopularityScore)
		assert.Equal(t, "Merzouga", got.Destination, "untouched fields stay")
	})

	t.Run("date validation covers merged values", func(t *testing.T) {
		// Moving only the start date past the existing end date must fail.
		badStart := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
		_, err := svc.Update(ctx, tr.ID, UpdateRequest{StartDate: &badStart})
		require.ErrorIs(t, err, ErrInvalidDates)
	})

	t.Run("unknown trip", func(t *testing.T) {
		title := "x"
		_, err := svc.Update(ctx, 404, UpdateRequest{Title: &title})
		require.ErrorIs(t, err, ErrNotFound)
	})
}
