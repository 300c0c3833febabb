package payment

import (
	"context"

	"github.com/google/uuid"
)

// SimulatedProcessor approves every valid charge without contacting a
// gateway. Used in development and tests.
type SimulatedProcessor struct{}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{}
}

func (p *SimulatedProcessor) Charge(ctx context.Context, card Card, amount float64, description string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if err := ValidateCard(card); err != nil {
		return "", err
	}
	return "PAY-" + uuid.NewString()[:8], nil
}
