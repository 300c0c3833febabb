package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	stored  *AdminSettings
	getErr  error
	updates []AdminSettings
}

func (r *fakeRepo) Get(ctx context.Context) (AdminSettings, error) {
	if r.getErr != nil {
		return AdminSettings{}, r.getErr
	}
	return *r.stored, nil
}

func (r *fakeRepo) Update(ctx context.Context, s AdminSettings) error {
	r.updates = append(r.updates, s)
	r.stored = &s
	return nil
}

func TestGetFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored values", func(t *testing.T) {
		stored := AdminSettings{
			BookingLeadTimeDays:      10,
			CancellationDeadlineDays: 2,
			TripReminderDays:         1,
			MaxDiscountDurationDays:  14,
			NotificationExpiryDays:   5,
		}
		svc := NewService(&fakeRepo{stored: &stored})

		assert.Equal(t, stored, svc.Get(ctx))
	})

	t.Run("falls back when the row is unreadable", func(t *testing.T) {
		svc := NewService(&fakeRepo{getErr: errors.New("relation does not exist")})

		assert.Equal(t, Defaults(), svc.Get(ctx))
	})
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()

	valid := AdminSettings{
		BookingLeadTimeDays:      7,
		CancellationDeadlineDays: 5,
		TripReminderDays:         5,
		MaxDiscountDurationDays:  7,
		NotificationExpiryDays:   3,
	}

	t.Run("accepts positive values", func(t *testing.T) {
		repo := &fakeRepo{stored: &AdminSettings{}}
		svc := NewService(repo)

		require.NoError(t, svc.Update(ctx, valid))
		assert.Equal(t, []AdminSettings{valid}, repo.updates)
	})

	t.Run("rejects zero or negative values", func(t *testing.T) {
		repo := &fakeRepo{stored: &AdminSettings{}}
		svc := NewService(repo)

		bad := valid
		bad.NotificationExpiryDays = 0
		require.ErrorIs(t, svc.Update(ctx, bad), ErrInvalidSettings)

		bad = valid
		bad.BookingLeadTimeDays = -1
		require.ErrorIs(t, svc.Update(ctx, bad), ErrInvalidSettings)

		assert.Empty(t, repo.updates)
	})
}
