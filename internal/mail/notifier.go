package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
)

// Notifier turns domain events into mails.
type Notifier struct {
	Sender Sender
}

func (n *Notifier) Handle(ctx context.Context, d queue.Delivery) error {
	m, err := compose(d)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", d.Key, err, queue.ErrPoison)
	}
	if m == nil {
		return nil
	}
	return n.Sender.Send(ctx, *m)
}

func compose(d queue.Delivery) (*Message, error) {
	switch d.Key {
	case queue.KeyUserRegistered:
		var ev queue.UserRegistered
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return nil, err
		}
		name := ev.Name
		if name == "" {
			name = "there"
		}
		return &Message{
			To:      ev.Email,
			Subject: "Welcome to InnovateX",
			Text:    fmt.Sprintf("Hi %s, thanks for joining InnovateX. Start by sharing your first product.", name),
			HTML:    fmt.Sprintf("<p>Hi %s,</p><p>Thanks for joining <strong>InnovateX</strong>. Start by sharing your first product.</p>", name),
		}, nil

	case queue.KeyProductReported:
		var ev queue.ProductReported
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return nil, err
		}
		if ev.OwnerEmail == "" {
			return nil, nil
		}
		return &Message{
			To:      ev.OwnerEmail,
			Subject: "Your product was reported",
			Text:    fmt.Sprintf("Your product %q was reported and will be reviewed by a moderator.", ev.ProductName),
			HTML:    fmt.Sprintf("<p>Your product <em>%s</em> was reported and will be reviewed by a moderator.</p>", ev.ProductName),
		}, nil

	case queue.KeyPaymentCompleted:
		var ev queue.PaymentCompleted
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return nil, err
		}
		return &Message{
			To:      ev.Email,
			Subject: "Your InnovateX membership is active",
			Text:    fmt.Sprintf("We received your payment of $%.2f. Premium features are now unlocked.", ev.Price),
			HTML:    fmt.Sprintf("<p>We received your payment of <strong>$%.2f</strong>. Premium features are now unlocked.</p>", ev.Price),
		}, nil
	}
	return nil, nil
}
