package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
)

type captureSender struct {
	sent []Message
}

func (c *captureSender) Send(_ context.Context, m Message) error {
	c.sent = append(c.sent, m)
	return nil
}

func TestNotifier_Handle(t *testing.T) {
	cs := &captureSender{}
	n := &Notifier{Sender: cs}
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, queue.Delivery{
		Key:  queue.KeyUserRegistered,
		Body: []byte(`{"email":"a@x.io","name":"Ann"}`),
	}))
	require.NoError(t, n.Handle(ctx, queue.Delivery{
		Key:  queue.KeyPaymentCompleted,
		Body: []byte(`{"email":"a@x.io","price":9.5}`),
	}))
	// reported product without an owner address: nothing to send
	require.NoError(t, n.Handle(ctx, queue.Delivery{
		Key:  queue.KeyProductReported,
		Body: []byte(`{"product_name":"Widget"}`),
	}))
	require.NoError(t, n.Handle(ctx, queue.Delivery{Key: "something.else", Body: []byte(`{}`)}))

	require.Len(t, cs.sent, 2)
	require.Equal(t, "a@x.io", cs.sent[0].To)
	require.Contains(t, cs.sent[0].Text, "Ann")
	require.Contains(t, cs.sent[1].Text, "$9.50")
}

func TestNotifier_BadBodyIsPoison(t *testing.T) {
	n := &Notifier{Sender: &captureSender{}}
	err := n.Handle(context.Background(), queue.Delivery{Key: queue.KeyUserRegistered, Body: []byte(`{`)})
	require.True(t, errors.Is(err, queue.ErrPoison))
}
