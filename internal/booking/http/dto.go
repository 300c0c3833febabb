package http

import (
	"time"

	"travel-booking-backend/internal/booking"
	"travel-booking-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Scope  string `form:"scope" binding:"omitempty,oneof=upcoming past"`
	TripID int64  `form:"trip_id" binding:"omitempty,min=1"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

type CreateBookingRequest struct {
	TripID    int64 `json:"trip_id" binding:"required,min=1"`
	PartySize int   `json:"party_size" binding:"required,min=1,max=20"`
}

type ChangePartySizeRequest struct {
	PartySize int `json:"party_size" binding:"required,min=1,max=20"`
}

type PayBookingRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
	HolderName string `json:"holder_name" binding:"required"`
}

type BookingResponse struct {
	ID            int64      `json:"id"`
	TripID        int64      `json:"trip_id"`
	TripTitle     string     `json:"trip_title"`
	TripStartDate time.Time  `json:"trip_start_date"`
	UserID        string     `json:"user_id"`
	PartySize     int        `json:"party_size"`
	TotalPrice    float64    `json:"total_price"`
	State         string     `json:"state"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		TripID:        b.TripID,
		TripTitle:     b.TripTitle,
		TripStartDate: b.TripStartDate,
		UserID:        b.UserID,
		PartySize:     b.PartySize,
		TotalPrice:    b.TotalPrice,
		State:         b.State(),
		PaidAt:        b.PaidAt,
		TransactionID: b.TransactionID,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
