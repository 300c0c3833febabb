// Package sweeper runs the periodic maintenance pass: waiting list
// notifications that were never acted on expire and their turn moves down
// the queue, and paid travelers get a departure reminder.
package sweeper

import (
	"context"
	"log"
	"time"

	"travel-booking-backend/internal/booking"
	"travel-booking-backend/internal/mailer"
	"travel-booking-backend/internal/settings"
	"travel-booking-backend/internal/waitinglist"
)

// ReminderSource lists the paid bookings departing inside a window.
type ReminderSource interface {
	ListForReminder(ctx context.Context, from, to time.Time) ([]*booking.Reminder, error)
}

// Sweeper drives the expiry and reminder passes on a fixed interval.
type Sweeper struct {
	queue     waitinglist.Service
	reminders ReminderSource
	mail      mailer.Sender
	policy    settings.Service
	interval  time.Duration
	now       func() time.Time
}

// New creates a Sweeper that runs every interval.
func New(queue waitinglist.Service, reminders ReminderSource, mail mailer.Sender, policy settings.Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		queue:     queue,
		reminders: reminders,
		mail:      mail,
		policy:    policy,
		interval:  interval,
		now:       time.Now,
	}
}

// Run blocks, sweeping once immediately and then on every tick until the
// context is cancelled. Meant to be started in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("sweeper started, interval %s", s.interval)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Print("sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Each pass is independent; a failure in
// one is logged and does not block the other.
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := s.now().UTC()
	pol := s.policy.Get(ctx)

	cutoff := now.AddDate(0, 0, -pol.NotificationExpiryDays)
	removed, err := s.queue.ExpireNotifications(ctx, cutoff)
	if err != nil {
		log.Printf("sweep expire notifications failed: %v", err)
	} else if removed > 0 {
		log.Printf("sweep expired %d waiting list entries", removed)
	}

	s.sendReminders(ctx, now, pol.TripReminderDays)
}

// sendReminders mails paid travelers whose trip departs on the reminder day.
// The window is one day wide so a daily sweep sends each reminder once.
func (s *Sweeper) sendReminders(ctx context.Context, now time.Time, reminderDays int) {
	from := now.AddDate(0, 0, reminderDays)
	to := from.AddDate(0, 0, 1)

	reminders, err := s.reminders.ListForReminder(ctx, from, to)
	if err != nil {
		log.Printf("sweep list reminders failed: %v", err)
		return
	}

	for _, r := range reminders {
		subject, body := mailer.TripReminder(r.TripTitle, r.TripStartDate)
		if err := s.mail.Send(ctx, r.UserEmail, subject, body); err != nil {
			log.Printf("trip reminder for booking %d failed: %v", r.BookingID, err)
		}
	}
}
