package trip

import (
	"context"
	"fmt"
	"io"
	"time"

	"travel-booking-backend/internal/pkg/storage"
	"travel-booking-backend/internal/settings"
)

// CreateRequest holds the fields for creating a trip.
type CreateRequest struct {
	Title            string
	Destination      string
	Country          string
	StartDate        time.Time
	EndDate          time.Time
	Capacity         int
	Price            float64
	PackageType      string
	AgeLimit         *int
	ShortDescription string
	IsVisible        bool
}

// UpdateRequest holds optional fields for updating a trip.
type UpdateRequest struct {
	Title            *string
	Destination      *string
	Country          *string
	StartDate        *time.Time
	EndDate          *time.Time
	Price            *float64
	PackageType      *string
	AgeLimit         *int
	ShortDescription *string
	PopularityScore  *int
	IsVisible        *bool
}

// DiscountRequest activates a discount on a trip.
type DiscountRequest struct {
	NewPrice   float64
	ExpiryDate *time.Time
}

// Service defines business logic for the trip catalog.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Trip, error)
	GetByID(ctx context.Context, id int64) (*Trip, error)
	List(ctx context.Context, filter Filter) ([]*Trip, int, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Trip, error)
	Delete(ctx context.Context, id int64) error
	ActivateDiscount(ctx context.Context, id int64, req DiscountRequest) (*Trip, error)
	DeactivateDiscount(ctx context.Context, id int64) (*Trip, error)
	UploadImage(ctx context.Context, id int64, content io.Reader) (string, error)
}

type service struct {
	repo      Repository
	policy    settings.Service
	files     storage.Storage
	processor *storage.ImageProcessor
	now       func() time.Time
}

// NewService creates a new trip Service.
func NewService(repo Repository, policy settings.Service, files storage.Storage) Service {
	return &service{
		repo:      repo,
		policy:    policy,
		files:     files,
		processor: storage.NewImageProcessor(),
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Trip, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidDates
	}
	if req.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	t := &Trip{
		Title:            req.Title,
		Destination:      req.Destination,
		Country:          req.Country,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Capacity:         req.Capacity,
		AvailableRooms:   req.Capacity, // new trips start fully available
		Price:            req.Price,
		PackageType:      req.PackageType,
		AgeLimit:         req.AgeLimit,
		ShortDescription: req.ShortDescription,
		IsVisible:        req.IsVisible,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create trip failed: %w", err)
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Trip, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Trip, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Destination != nil {
		t.Destination = *req.Destination
	}
	if req.Country != nil {
		t.Country = *req.Country
	}
	if req.StartDate != nil {
		t.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		t.EndDate = *req.EndDate
	}
	if !t.EndDate.After(t.StartDate) {
		return nil, ErrInvalidDates
	}
	if req.Price != nil {
		t.Price = *req.Price
	}
	if req.PackageType != nil {
		t.PackageType = *req.PackageType
	}
	if req.AgeLimit != nil {
		t.AgeLimit = req.AgeLimit
	}
	if req.ShortDescription != nil {
		t.ShortDescription = *req.ShortDescription
	}
	if req.PopularityScore != nil {
		t.PopularityScore = *req.PopularityScore
	}
	if req.IsVisible != nil {
		t.IsVisible = *req.IsVisible
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ActivateDiscount lowers the price and records the activation time, so the
// max-duration policy can be enforced even when no expiry date is supplied.
// When the request has no expiry date, one is derived from the policy.
func (s *service) ActivateDiscount(ctx context.Context, id int64, req DiscountRequest) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.NewPrice <= 0 || req.NewPrice >= t.Price {
		return nil, ErrInvalidDiscount
	}

	pol := s.policy.Get(ctx)
	now := s.now().UTC()
	maxExpiry := now.AddDate(0, 0, pol.MaxDiscountDurationDays)

	expiry := req.ExpiryDate
	if expiry == nil {
		expiry = &maxExpiry
	} else if expiry.After(maxExpiry) {
		return nil, ErrDiscountTooLong
	}

	old := t.Price
	t.OldPrice = &old
	t.Price = req.NewPrice
	t.IsDiscountActive = true
	t.DiscountExpiryDate = expiry
	t.DiscountActivatedAt = &now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) DeactivateDiscount(ctx context.Context, id int64) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if t.OldPrice != nil {
		t.Price = *t.OldPrice
	}
	t.OldPrice = nil
	t.IsDiscountActive = false
	t.DiscountExpiryDate = nil
	t.DiscountActivatedAt = nil

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UploadImage stores a resized cover image plus a thumbnail and records the
// cover path on the trip.
func (s *service) UploadImage(ctx context.Context, id int64, content io.Reader) (string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", err
	}

	cover, err := s.processor.Resize(content, storage.CoverMaxWidth, storage.CoverMaxHeight)
	if err != nil {
		return "", err
	}

	coverPath := fmt.Sprintf("trips/%d/cover.jpg", id)
	if err := s.files.Save(ctx, coverPath, cover); err != nil {
		return "", fmt.Errorf("save trip image failed: %w", err)
	}

	// Thumbnail is generated from the stored cover so a single upload
	// produces both sizes.
	stored, err := s.files.Get(ctx, coverPath)
	if err == nil {
		defer stored.Close()
		if thumb, terr := s.processor.Resize(stored, storage.ThumbMaxWidth, storage.ThumbMaxHeight); terr == nil {
			_ = s.files.Save(ctx, fmt.Sprintf("trips/%d/thumb.jpg", id), thumb)
		}
	}

	if err := s.repo.SetImageURL(ctx, id, "/"+coverPath); err != nil {
		return "", err
	}
	return "/" + coverPath, nil
}
