package booking

import (
	"net/http"
	"time"

	"travel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidPartySize = apperror.New(http.StatusBadRequest, "party size must be between 1 and 20")
	ErrTooCloseToStart  = apperror.New(http.StatusConflict, "trip departs too soon to book")
	ErrTooManyUpcoming  = apperror.New(http.StatusConflict, "you have too many upcoming bookings")
	ErrDuplicateBooking = apperror.New(http.StatusConflict, "you already have an active booking for this trip")
	ErrNotYourTurn      = apperror.New(http.StatusConflict, "the waiting list decides who books next; it is not your turn")
	ErrAlreadyCancelled = apperror.New(http.StatusConflict, "booking is already cancelled")
	ErrAlreadyPaid      = apperror.New(http.StatusConflict, "booking is already paid")
	ErrPaidImmutable    = apperror.New(http.StatusConflict, "a paid booking can no longer be changed")
	ErrCancelDeadline   = apperror.New(http.StatusConflict, "the cancellation deadline for this trip has passed")
	ErrTripStarted      = apperror.New(http.StatusConflict, "the trip has already started")
	ErrForbidden        = apperror.New(http.StatusForbidden, "you do not have access to this booking")
)

// Party size bounds for a single booking.
const (
	MinPartySize = 1
	MaxPartySize = 20
)

// State labels derived from the paid/cancelled flags.
const (
	StateConfirmed = "confirmed"
	StatePaid      = "paid"
	StateCancelled = "cancelled"
)

// Booking reserves one room per traveler on a trip. TotalPrice snapshots the
// per-person price at booking time, so later price or discount changes on the
// trip never touch existing bookings.
type Booking struct {
	ID         int64
	TripID     int64
	UserID     string
	PartySize  int
	TotalPrice float64

	Paid          bool
	PaidAt        *time.Time
	TransactionID *string

	Cancelled   bool
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined from the trips table for display and reminders.
	TripTitle     string
	TripStartDate time.Time
}

// State returns the lifecycle label. Cancelled wins over paid so a refunded
// cancellation still reads as cancelled.
func (b *Booking) State() string {
	switch {
	case b.Cancelled:
		return StateCancelled
	case b.Paid:
		return StatePaid
	default:
		return StateConfirmed
	}
}

// Active reports whether the booking still holds its room.
func (b *Booking) Active() bool {
	return !b.Cancelled
}

// PricePerPerson returns the per-traveler price snapshotted at creation.
func (b *Booking) PricePerPerson() float64 {
	if b.PartySize <= 0 {
		return b.TotalPrice
	}
	return b.TotalPrice / float64(b.PartySize)
}

// Filter defines query options for listing bookings.
type Filter struct {
	UserID   string
	TripID   int64
	Scope    string // "", "upcoming" or "past"
	Page     int
	PageSize int
}

// Scope values for Filter.
const (
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
)

// Reminder is the slice of a booking the departure reminder mail needs.
type Reminder struct {
	BookingID     int64
	UserEmail     string
	TripTitle     string
	TripStartDate time.Time
}
