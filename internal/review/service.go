package review

import (
	"context"

	"travel-booking-backend/internal/trip"
)

// Summary aggregates a trip's reviews.
type Summary struct {
	AverageRating float64
	ReviewCount   int
}

// Service defines business logic for trip reviews.
type Service interface {
	Create(ctx context.Context, userID string, tripID int64, rating int, comment string) (*Review, error)
	ListByTrip(ctx context.Context, tripID int64, page, pageSize int) ([]*Review, int, error)
	Update(ctx context.Context, userID string, isAdmin bool, id int64, rating int, comment string) (*Review, error)
	Delete(ctx context.Context, userID string, isAdmin bool, id int64) error
	TripSummary(ctx context.Context, tripID int64) (*Summary, error)
}

type service struct {
	repo  Repository
	trips trip.Repository
}

// NewService creates a new review Service.
func NewService(repo Repository, trips trip.Repository) Service {
	return &service{repo: repo, trips: trips}
}

func (s *service) Create(ctx context.Context, userID string, tripID int64, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	rev := &Review{
		TripID:  tripID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *service) ListByTrip(ctx context.Context, tripID int64, page, pageSize int) ([]*Review, int, error) {
	return s.repo.ListByTrip(ctx, tripID, page, pageSize)
}

func (s *service) Update(ctx context.Context, userID string, isAdmin bool, id int64, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}

	rev.Rating = rating
	rev.Comment = comment
	if err := s.repo.Update(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *service) Delete(ctx context.Context, userID string, isAdmin bool, id int64) error {
	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rev.UserID != userID && !isAdmin {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) TripSummary(ctx context.Context, tripID int64) (*Summary, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	avg, count, err := s.repo.AverageRating(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &Summary{AverageRating: avg, ReviewCount: count}, nil
}
