package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-backend/internal/booking"
	"travel-booking-backend/internal/settings"
	"travel-booking-backend/internal/waitinglist"
)

type fakeQueue struct {
	waitinglist.Service
	cutoffs []time.Time
	removed int
}

func (q *fakeQueue) ExpireNotifications(ctx context.Context, olderThan time.Time) (int, error) {
	q.cutoffs = append(q.cutoffs, olderThan)
	return q.removed, nil
}

type fakeReminders struct {
	windows   [][2]time.Time
	reminders []*booking.Reminder
}

func (r *fakeReminders) ListForReminder(ctx context.Context, from, to time.Time) ([]*booking.Reminder, error) {
	r.windows = append(r.windows, [2]time.Time{from, to})
	return r.reminders, nil
}

type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

type staticSettings struct {
	cfg settings.AdminSettings
}

func (s staticSettings) Get(ctx context.Context) settings.AdminSettings { return s.cfg }
func (s staticSettings) Update(ctx context.Context, cfg settings.AdminSettings) error {
	return nil
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

	queue := &fakeQueue{removed: 2}
	reminders := &fakeReminders{reminders: []*booking.Reminder{
		{BookingID: 1, UserEmail: "alice@example.com", TripTitle: "Fjord Cruise", TripStartDate: now.AddDate(0, 0, 5)},
		{BookingID: 2, UserEmail: "bob@example.com", TripTitle: "Fjord Cruise", TripStartDate: now.AddDate(0, 0, 5)},
	}}
	mail := &recordingMailer{}

	sw := New(queue, reminders, mail, staticSettings{cfg: settings.Defaults()}, time.Hour)
	sw.now = func() time.Time { return now }

	sw.RunOnce(ctx)

	// Default notification expiry is 3 days.
	require.Len(t, queue.cutoffs, 1)
	assert.Equal(t, now.AddDate(0, 0, -3), queue.cutoffs[0])

	// Default reminder horizon is 5 days, window one day wide.
	require.Len(t, reminders.windows, 1)
	assert.Equal(t, now.AddDate(0, 0, 5), reminders.windows[0][0])
	assert.Equal(t, now.AddDate(0, 0, 6), reminders.windows[0][1])

	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, mail.sent)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	queue := &fakeQueue{}
	reminders := &fakeReminders{}
	mail := &recordingMailer{}

	sw := New(queue, reminders, mail, staticSettings{cfg: settings.Defaults()}, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	// Let at least the immediate sweep happen, then stop.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancel")
	}

	assert.NotEmpty(t, queue.cutoffs, "the immediate sweep must have run")
}
