package http

import (
	"time"

	"travel-booking-backend/internal/pkg/request"
	"travel-booking-backend/internal/trip"
)

// ListTripsRequest defines query parameters for listing trips.
type ListTripsRequest struct {
	request.ListParams
	Country     string `form:"country"`
	PackageType string `form:"package_type"`
}

type CreateTripRequest struct {
	Title            string    `json:"title" binding:"required"`
	Destination      string    `json:"destination" binding:"required"`
	Country          string    `json:"country" binding:"required"`
	StartDate        time.Time `json:"start_date" binding:"required"`
	EndDate          time.Time `json:"end_date" binding:"required"`
	Capacity         int       `json:"capacity" binding:"required,min=0"`
	Price            float64   `json:"price" binding:"required,gt=0"`
	PackageType      string    `json:"package_type" binding:"required"`
	AgeLimit         *int      `json:"age_limit" binding:"omitempty,min=0"`
	ShortDescription string    `json:"short_description"`
	IsVisible        *bool     `json:"is_visible"`
}

// Validate performs custom validation for CreateTripRequest.
func (r *CreateTripRequest) Validate() error {
	if !r.EndDate.After(r.StartDate) {
		return trip.ErrInvalidDates
	}
	return nil
}

type UpdateTripRequest struct {
	Title            *string    `json:"title"`
	Destination      *string    `json:"destination"`
	Country          *string    `json:"country"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Price            *float64   `json:"price" binding:"omitempty,gt=0"`
	PackageType      *string    `json:"package_type"`
	AgeLimit         *int       `json:"age_limit" binding:"omitempty,min=0"`
	ShortDescription *string    `json:"short_description"`
	PopularityScore  *int       `json:"popularity_score" binding:"omitempty,min=0"`
	IsVisible        *bool      `json:"is_visible"`
}

type ActivateDiscountRequest struct {
	NewPrice   float64    `json:"new_price" binding:"required,gt=0"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

type TripResponse struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Destination        string     `json:"destination"`
	Country            string     `json:"country"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Capacity           int        `json:"capacity"`
	AvailableRooms     int        `json:"available_rooms"`
	SoldOut            bool       `json:"sold_out"`
	Price              float64    `json:"price"`
	OldPrice           *float64   `json:"old_price,omitempty"`
	IsDiscountActive   bool       `json:"is_discount_active"`
	DiscountExpiryDate *time.Time `json:"discount_expiry_date,omitempty"`
	PackageType        string     `json:"package_type"`
	AgeLimit           *int       `json:"age_limit,omitempty"`
	ShortDescription   string     `json:"short_description"`
	ImageURL           string     `json:"image_url"`
	PopularityScore    int        `json:"popularity_score"`
	IsVisible          bool       `json:"is_visible"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func NewTripResponse(t *trip.Trip) TripResponse {
	return TripResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Destination:        t.Destination,
		Country:            t.Country,
		StartDate:          t.StartDate,
		EndDate:            t.EndDate,
		Capacity:           t.Capacity,
		AvailableRooms:     t.AvailableRooms,
		SoldOut:            t.SoldOut(),
		Price:              t.Price,
		OldPrice:           t.OldPrice,
		IsDiscountActive:   t.IsDiscountActive,
		DiscountExpiryDate: t.DiscountExpiryDate,
		PackageType:        t.PackageType,
		AgeLimit:           t.AgeLimit,
		ShortDescription:   t.ShortDescription,
		ImageURL:           t.ImageURL,
		PopularityScore:    t.PopularityScore,
		IsVisible:          t.IsVisible,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
