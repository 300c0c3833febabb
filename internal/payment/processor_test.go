package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() Card {
	return Card{
		Number:     "4111111111111111",
		Expiry:     "12/28",
		CVV:        "123",
		HolderName: "Jane Doe",
	}
}

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Card)
		wantOK bool
	}{
		{"valid visa shape", func(c *Card) {}, true},
		{"valid 13 digit number", func(c *Card) { c.Number = "4111111111111" }, true},
		{"valid 19 digit number", func(c *Card) { c.Number = "4111111111111111111" }, true},
		{"valid 4 digit cvv", func(c *Card) { c.CVV = "1234" }, true},
		{"number too short", func(c *Card) { c.Number = "411111111111" }, false},
		{"number too long", func(c *Card) { c.Number = "41111111111111111111" }, false},
		{"number with letters", func(c *Card) { c.Number = "4111x11111111111" }, false},
		{"number with spaces", func(c *Card) { c.Number = "4111 1111 1111 1111" }, false},
		{"expiry month zero", func(c *Card) { c.Expiry = "00/28" }, false},
		{"expiry month thirteen", func(c *Card) { c.Expiry = "13/28" }, false},
		{"expiry wrong format", func(c *Card) { c.Expiry = "12/2028" }, false},
		{"cvv too short", func(c *Card) { c.CVV = "12" }, false},
		{"cvv too long", func(c *Card) { c.CVV = "12345" }, false},
		{"holder name too short", func(c *Card) { c.HolderName = "JD" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(&card)

			err := ValidateCard(card)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidCard)
			}
		})
	}
}

func TestSimulatedProcessor(t *testing.T) {
	ctx := context.Background()
	p := NewSimulatedProcessor()

	t.Run("approves a valid charge", func(t *testing.T) {
		txID, err := p.Charge(ctx, validCard(), 499.99, "Alpine Trek")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(txID, "PAY-"))
		assert.Len(t, txID, len("PAY-")+8)
	})

	t.Run("references are unique", func(t *testing.T) {
		a, err := p.Charge(ctx, validCard(), 10, "x")
		require.NoError(t, err)
		b, err := p.Charge(ctx, validCard(), 10, "x")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects bad cards", func(t *testing.T) {
		card := validCard()
		card.CVV = "xx"

		_, err := p.Charge(ctx, card, 10, "x")
		require.ErrorIs(t, err, ErrInvalidCard)
	})

	t.Run("rejects non positive amounts", func(t *testing.T) {
		_, err := p.Charge(ctx, validCard(), 0, "x")
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = p.Charge(ctx, validCard(), -5, "x")
		require.ErrorIs(t, err, ErrInvalidAmount)
	})
}
