package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/helper"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/metrics"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
)

var ErrMissingPayer = errors.New("payment has no userEmail")

type PaymentStore interface {
	CreatePayment(ctx context.Context, p *domain.Payment) (domain.WriteResult, bool, error)
	SetPremium(ctx context.Context, email string) (domain.WriteResult, error)
}

// Payments records a completed payment and upgrades the payer.
type Payments struct {
	Store PaymentStore
	Pub   queue.Publisher
	Now   func() time.Time
}

type PaymentOutcome struct {
	PaymentResponse domain.WriteResult `json:"paymentResponse"`
	UpdateResponse  domain.WriteResult `json:"updateResponse"`
}

// Complete inserts the payment record and then flags the payer premium.
// The two writes are not atomic; a retry with the same transactionId finds
// the existing record and re-applies the flag.
func (s *Payments) Complete(ctx context.Context, p *domain.Payment, reqID string) (PaymentOutcome, error) {
	var out PaymentOutcome
	if p.UserEmail == "" {
		return out, ErrMissingPayer
	}

	res, existed, err := s.Store.CreatePayment(ctx, p)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("error").Inc()
		return out, err
	}
	out.PaymentResponse = res

	if out.UpdateResponse, err = s.Store.SetPremium(ctx, p.UserEmail); err != nil {
		metrics.PaymentsTotal.WithLabelValues("partial").Inc()
		return out, err
	}

	if existed {
		metrics.PaymentsTotal.WithLabelValues("replayed").Inc()
		return out, nil
	}
	metrics.PaymentsTotal.WithLabelValues("completed").Inc()

	ev := queue.PaymentCompleted{
		Email:         p.UserEmail,
		TransactionID: p.TransactionID,
		Price:         p.Price,
		At:            s.now(),
	}
	if err := s.Pub.Publish(ctx, queue.KeyPaymentCompleted, ev, reqID); err != nil {
		zap.L().Warn("publish payment.completed failed",
			zap.String("payer", helper.EmailTag(p.UserEmail)), zap.Error(err))
	}
	return out, nil
}

func (s *Payments) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
