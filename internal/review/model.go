package review

import (
	"net/http"
	"time"

	"travel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "review not found")
	ErrAlreadyReviewed = apperror.New(http.StatusConflict, "you have already reviewed this trip")
	ErrInvalidRating   = apperror.New(http.StatusBadRequest, "rating must be between 1 and 5")
	ErrForbidden       = apperror.New(http.StatusForbidden, "you do not have access to this review")
)

// Review is one user's rating of a trip. One review per user per trip.
type Review struct {
	ID        int64
	TripID    int64
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined for display.
	UserFullName *string
}
