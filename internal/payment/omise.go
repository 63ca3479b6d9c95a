package payment

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// Omise has no payment intents; a source plays that role. The client
// authorizes the source and the charge is settled against its id.
type Omise struct {
	publicKey  string
	secretKey  string
	sourceType string
}

func NewOmise(publicKey, secretKey, sourceType string) (*Omise, error) {
	// fail on bad keys at startup rather than on the first payment
	if _, err := omise.NewClient(publicKey, secretKey); err != nil {
		return nil, err
	}
	return &Omise{publicKey: publicKey, secretKey: secretKey, sourceType: sourceType}, nil
}

// client returns a client bound to ctx. WithContext mutates the client, so
// each call gets its own.
func (o *Omise) client(ctx context.Context) (*omise.Client, error) {
	c, err := omise.NewClient(o.publicKey, o.secretKey)
	if err != nil {
		return nil, err
	}
	c.WithContext(ctx)
	return c, nil
}

func (o *Omise) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	c, err := o.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	src := &omise.Source{}
	if err := c.Do(src, &operations.CreateSource{
		Type:     o.sourceType,
		Amount:   amount,
		Currency: currency,
	}); err != nil {
		return nil, fmt.Errorf("omise source: %w", err)
	}
	return &Intent{
		ID:           src.ID,
		ClientSecret: src.ID,
		Amount:       src.Amount,
		Currency:     src.Currency,
	}, nil
}
