package settings

import (
	"context"
	"log"
	"net/http"

	"travel-booking-backend/internal/pkg/apperror"
)

var ErrInvalidSettings = apperror.New(http.StatusBadRequest, "all settings values must be positive")

// Service defines business logic for the booking policy settings.
type Service interface {
	// Get never fails; a read error falls back to the defaults so booking
	// rules keep working when the settings row is missing.
	Get(ctx context.Context) AdminSettings
	Update(ctx context.Context, s AdminSettings) error
}

type service struct {
	repo Repository
}

// NewService creates a new settings Service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context) AdminSettings {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		log.Printf("read settings failed, using defaults: %v", err)
		return Defaults()
	}
	return cfg
}

func (s *service) Update(ctx context.Context, cfg AdminSettings) error {
	if cfg.BookingLeadTimeDays <= 0 ||
		cfg.CancellationDeadlineDays <= 0 ||
		cfg.TripReminderDays <= 0 ||
		cfg.MaxDiscountDurationDays <= 0 ||
		cfg.NotificationExpiryDays <= 0 {
		return ErrInvalidSettings
	}
	return s.repo.Update(ctx, cfg)
}
