package waitinglist

import (
	"context"
	"fmt"
	"log"
	"time"

	"travel-booking-backend/internal/mailer"
	"travel-booking-backend/internal/settings"
	"travel-booking-backend/internal/trip"
)

// EmailLookup resolves a user ID to the address notifications go to.
type EmailLookup interface {
	EmailByID(ctx context.Context, userID string) (string, error)
}

// Service defines business logic for trip waiting lists.
type Service interface {
	Join(ctx context.Context, tripID int64, userID string) (*Entry, error)
	Leave(ctx context.Context, tripID int64, userID string) error
	MyStatus(ctx context.Context, tripID int64, userID string) (*Status, error)

	// IsMyTurn reports whether userID may book tripID right now. An empty
	// queue means anyone may book; otherwise only the head of the queue may.
	IsMyTurn(ctx context.Context, tripID int64, userID string) (bool, error)

	// NotifyNext emails the earliest queue entry not yet told a room is
	// free. Sold-out trips are a no-op, so a stray call cannot promise a
	// room that is not there. The entry is marked notified only after the
	// mail goes out, so a failed send gets retried on the next room release
	// or sweep.
	NotifyNext(ctx context.Context, tripID int64) error

	// ExpireNotifications drops entries whose room-available notice is older
	// than the cutoff and passes the freed turn down the queue. Returns the
	// number of entries removed.
	ExpireNotifications(ctx context.Context, olderThan time.Time) (int, error)

	TripQueue(ctx context.Context, tripID int64) ([]*Entry, error)
	Clear(ctx context.Context, tripID int64) error
	RemoveEntry(ctx context.Context, entryID int64) error
}

type service struct {
	repo   Repository
	trips  trip.Repository
	users  EmailLookup
	mail   mailer.Sender
	policy settings.Service
	now    func() time.Time
}

// NewService creates a new waiting list Service.
func NewService(repo Repository, trips trip.Repository, users EmailLookup, mail mailer.Sender, policy settings.Service) Service {
	return &service{
		repo:   repo,
		trips:  trips,
		users:  users,
		mail:   mail,
		policy: policy,
		now:    time.Now,
	}
}

func (s *service) Join(ctx context.Context, tripID int64, userID string) (*Entry, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	// The queue exists for sold-out trips only. With rooms free the user
	// should book directly.
	if t.AvailableRooms > 0 {
		return nil, ErrRoomsAvailable
	}

	return s.repo.Join(ctx, tripID, userID)
}

func (s *service) Leave(ctx context.Context, tripID int64, userID string) error {
	// Leaving is idempotent: removing an absent entry is still success.
	_, err := s.repo.Remove(ctx, tripID, userID)
	return err
}

func (s *service) MyStatus(ctx context.Context, tripID int64, userID string) (*Status, error) {
	entries, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	for i, e := range entries {
		if e.UserID == userID {
			return &Status{
				Position:   i + 1,
				QueueSize:  len(entries),
				NotifiedAt: e.NotifiedAt,
			}, nil
		}
	}
	return nil, ErrNotQueued
}

func (s *service) IsMyTurn(ctx context.Context, tripID int64, userID string) (bool, error) {
	head, err := s.repo.Head(ctx, tripID)
	if err != nil {
		return false, err
	}
	if head == nil {
		return true, nil
	}
	return head.UserID == userID, nil
}

func (s *service) NotifyNext(ctx context.Context, tripID int64) error {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if t.AvailableRooms <= 0 {
		return nil
	}

	// Entries with a pending notice keep their claim; the next free room
	// goes to the earliest entry that has not been told yet.
	next, err := s.repo.NextUnnotified(ctx, tripID)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	email, err := s.users.EmailByID(ctx, next.UserID)
	if err != nil {
		return fmt.Errorf("resolve queue entry email failed: %w", err)
	}

	expiryDays := s.policy.Get(ctx).NotificationExpiryDays
	subject, body := mailer.RoomAvailable(t.Title, expiryDays)
	if err := s.mail.Send(ctx, email, subject, body); err != nil {
		return err
	}

	return s.repo.MarkNotified(ctx, next.ID, s.now().UTC())
}

func (s *service) ExpireNotifications(ctx context.Context, olderThan time.Time) (int, error) {
	expired, err := s.repo.ListExpiredNotifications(ctx, olderThan)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range expired {
		if err := s.repo.RemoveByID(ctx, e.ID); err != nil {
			log.Printf("expire queue entry %d failed: %v", e.ID, err)
			continue
		}
		removed++

		// The lapsed turn passes down the line. NotifyNext re-checks that
		// a room is actually still free.
		if err := s.NotifyNext(ctx, e.TripID); err != nil {
			log.Printf("notify next for trip %d failed: %v", e.TripID, err)
		}
	}

	return removed, nil
}

func (s *service) TripQueue(ctx context.Context, tripID int64) ([]*Entry, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *service) Clear(ctx context.Context, tripID int64) error {
	return s.repo.Clear(ctx, tripID)
}

func (s *service) RemoveEntry(ctx context.Context, entryID int64) error {
	return s.repo.RemoveByID(ctx, entryID)
}
