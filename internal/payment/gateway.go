package payment

import (
	"context"
	"errors"
	"math"
)

// Currency is the only currency the storefront charges in.
const Currency = "usd"

var ErrInvalidAmount = errors.New("amount must be positive")

// Intent is a charge the client still has to confirm with the processor.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
}

// MinorUnits converts a major-unit price to cents, rounded to the nearest cent.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
