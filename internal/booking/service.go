package booking

import (
	"context"
	"log"
	"time"

	"travel-booking-backend/internal/mailer"
	"travel-booking-backend/internal/payment"
	"travel-booking-backend/internal/settings"
	"travel-booking-backend/internal/trip"
	"travel-booking-backend/internal/waitinglist"
)

// MaxUpcomingBookings bounds how many not-yet-departed active bookings one
// user may hold at a time.
const MaxUpcomingBookings = 3

// Service defines business logic for the booking lifecycle.
type Service interface {
	Create(ctx context.Context, userID string, tripID int64, partySize int) (*Booking, error)
	GetByID(ctx context.Context, userID string, isAdmin bool, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Pay(ctx context.Context, userID, userEmail string, id int64, card payment.Card) (*Booking, error)
	ChangePartySize(ctx context.Context, userID string, id int64, partySize int) (*Booking, error)
	Cancel(ctx context.Context, userID string, isAdmin bool, id int64) error
}

type service struct {
	repo      Repository
	trips     trip.Repository
	queue     waitinglist.Service
	processor payment.Processor
	mail      mailer.Sender
	policy    settings.Service
	now       func() time.Time
}

// NewService creates a new booking Service.
func NewService(
	repo Repository,
	trips trip.Repository,
	queue waitinglist.Service,
	processor payment.Processor,
	mail mailer.Sender,
	policy settings.Service,
) Service {
	return &service{
		repo:      repo,
		trips:     trips,
		queue:     queue,
		processor: processor,
		mail:      mail,
		policy:    policy,
		now:       time.Now,
	}
}

// Create admits a booking after the cheap rule checks pass. The decisive
// checks (waiting list turn, room availability) run again inside the
// repository's serializable transaction, so a stale read here can delay a
// booking but never corrupt the inventory.
func (s *service) Create(ctx context.Context, userID string, tripID int64, partySize int) (*Booking, error) {
	if partySize < MinPartySize || partySize > MaxPartySize {
		return nil, ErrInvalidPartySize
	}

	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if now.After(t.StartDate) {
		return nil, ErrTripStarted
	}

	lead := s.policy.Get(ctx).BookingLeadTimeDays
	if now.AddDate(0, 0, lead).After(t.StartDate) {
		return nil, ErrTooCloseToStart
	}

	upcoming, err := s.repo.CountUpcoming(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if upcoming >= MaxUpcomingBookings {
		return nil, ErrTooManyUpcoming
	}

	active, err := s.repo.HasActive(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrDuplicateBooking
	}

	return s.repo.CreateConfirmed(ctx, userID, tripID, partySize, now)
}

func (s *service) GetByID(ctx context.Context, userID string, isAdmin bool, id int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter, s.now().UTC())
}

func (s *service) Pay(ctx context.Context, userID, userEmail string, id int64, card payment.Card) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Cancelled {
		return nil, ErrAlreadyCancelled
	}
	if b.Paid {
		return nil, ErrAlreadyPaid
	}

	now := s.now().UTC()
	if now.After(b.TripStartDate) {
		return nil, ErrTripStarted
	}

	// Re-check the upcoming bound at payment time; the count now includes
	// this booking itself.
	upcoming, err := s.repo.CountUpcoming(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if upcoming > MaxUpcomingBookings {
		return nil, ErrTooManyUpcoming
	}

	txID, err := s.processor.Charge(ctx, card, b.TotalPrice, b.TripTitle)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkPaid(ctx, id, txID, now); err != nil {
		return nil, err
	}

	b.Paid = true
	b.PaidAt = &now
	b.TransactionID = &txID

	subject, body := mailer.PaymentConfirmation(b.TripTitle, b.TotalPrice, txID)
	if err := s.mail.Send(ctx, userEmail, subject, body); err != nil {
		log.Printf("payment confirmation mail for booking %d failed: %v", id, err)
	}

	return b, nil
}

// ChangePartySize resizes a confirmed booking, keeping the per-person price
// snapshotted at creation. The room delta moves through the inventory: a
// bigger party must reserve the extra rooms, a smaller one releases them.
func (s *service) ChangePartySize(ctx context.Context, userID string, id int64, partySize int) (*Booking, error) {
	if partySize < MinPartySize || partySize > MaxPartySize {
		return nil, ErrInvalidPartySize
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Cancelled {
		return nil, ErrAlreadyCancelled
	}
	if b.Paid {
		return nil, ErrPaidImmutable
	}
	if s.now().UTC().After(b.TripStartDate) {
		return nil, ErrTripStarted
	}

	newTotal := b.PricePerPerson() * float64(partySize)
	tripID, available, err := s.repo.ResizeParty(ctx, id, partySize, newTotal)
	if err != nil {
		return nil, err
	}

	// Shrinking frees rooms, and freed rooms wake the waiting list.
	if partySize < b.PartySize && available > 0 {
		if err := s.queue.NotifyNext(ctx, tripID); err != nil {
			log.Printf("notify waiting list for trip %d failed: %v", tripID, err)
		}
	}

	b.PartySize = partySize
	b.TotalPrice = newTotal
	return b, nil
}

func (s *service) Cancel(ctx context.Context, userID string, isAdmin bool, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != userID && !isAdmin {
		return ErrForbidden
	}
	if b.Cancelled {
		return ErrAlreadyCancelled
	}

	now := s.now().UTC()
	if now.After(b.TripStartDate) {
		return ErrTripStarted
	}

	// Admins may cancel past the deadline; travelers may not.
	if !isAdmin {
		deadline := s.policy.Get(ctx).CancellationDeadlineDays
		if now.AddDate(0, 0, deadline).After(b.TripStartDate) {
			return ErrCancelDeadline
		}
	}

	tripID, available, err := s.repo.CancelAndRelease(ctx, id, now)
	if err != nil {
		return err
	}

	// The freed room wakes the waiting list. Notification failures are
	// logged, not surfaced: the cancellation itself already succeeded and
	// the sweeper retries unsent notices.
	if available > 0 {
		if err := s.queue.NotifyNext(ctx, tripID); err != nil {
			log.Printf("notify waiting list for trip %d failed: %v", tripID, err)
		}
	}

	return nil
}
