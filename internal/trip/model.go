package trip

import (
	"net/http"
	"time"

	"travel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "trip not found")
	ErrInvalidDates    = apperror.New(http.StatusBadRequest, "end date must be after start date")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "available rooms cannot exceed capacity")
	ErrInvalidDiscount = apperror.New(http.StatusBadRequest, "discounted price must be lower than the old price")
	ErrDiscountTooLong = apperror.New(http.StatusBadRequest, "discount duration exceeds the allowed maximum")
)

// Trip is a catalog entry with a single room-inventory pool.
// AvailableRooms is mutated only through the inventory ledger; version is the
// optimistic concurrency token the ledger checks on every write.
type Trip struct {
	ID             int64
	Title          string
	Destination    string
	Country        string
	StartDate      time.Time
	EndDate        time.Time
	Capacity       int
	AvailableRooms int
	Price          float64

	// Discount fields. ActivatedAt is tracked so the max-duration policy can
	// be enforced even when no explicit expiry date was supplied.
	OldPrice            *float64
	IsDiscountActive    bool
	DiscountExpiryDate  *time.Time
	DiscountActivatedAt *time.Time

	PackageType      string
	AgeLimit         *int
	ShortDescription string
	ImageURL         string
	PopularityScore  int
	IsVisible        bool

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SoldOut reports whether the trip currently has no rooms left.
func (t *Trip) SoldOut() bool {
	return t.AvailableRooms <= 0
}

// EffectivePrice returns the price a booking made now would snapshot,
// falling back to OldPrice when an active discount has lapsed.
func (t *Trip) EffectivePrice(now time.Time) float64 {
	if t.IsDiscountActive && t.DiscountExpiryDate != nil && now.After(*t.DiscountExpiryDate) && t.OldPrice != nil {
		return *t.OldPrice
	}
	return t.Price
}

// Filter defines query options for listing trips.
type Filter struct {
	Country     string
	PackageType string
	VisibleOnly bool
	Page        int
	PageSize    int
}
