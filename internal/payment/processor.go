package payment

import (
	"context"
	"net/http"
	"regexp"

	"travel-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidCard   = apperror.New(http.StatusBadRequest, "invalid card details")
	ErrChargeFailed  = apperror.New(http.StatusBadGateway, "payment could not be processed")
	ErrInvalidAmount = apperror.New(http.StatusBadRequest, "payment amount must be positive")
)

// Card holds the details submitted for a charge. The processor only
// validates shape; it never stores card data.
type Card struct {
	Number     string
	Expiry     string // MM/YY
	CVV        string
	HolderName string
}

// Processor charges a card and returns an opaque transaction reference.
type Processor interface {
	Charge(ctx context.Context, card Card, amount float64, description string) (transactionID string, err error)
}

var (
	numberRe = regexp.MustCompile(`^\d{13,19}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidateCard checks the submitted card details have a plausible shape.
func ValidateCard(card Card) error {
	if !numberRe.MatchString(card.Number) {
		return ErrInvalidCard
	}
	if !expiryRe.MatchString(card.Expiry) {
		return ErrInvalidCard
	}
	if !cvvRe.MatchString(card.CVV) {
		return ErrInvalidCard
	}
	if len(card.HolderName) < 3 {
		return ErrInvalidCard
	}
	return nil
}
