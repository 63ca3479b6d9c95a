package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	cases := []struct {
		name                   string
		err                    error
		acked, nacked, requeue bool
	}{
		{"ok", nil, true, false, false},
		{"poison", fmt.Errorf("decode: %w", ErrPoison), false, true, false},
		{"transient", errors.New("smtp down"), false, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &fakeAck{}
			settle(tc.err, a, KeyUserRegistered)
			if a.acked != tc.acked || a.nacked != tc.nacked || a.requeued != tc.requeue {
				t.Fatalf("got ack=%v nack=%v requeue=%v", a.acked, a.nacked, a.requeued)
			}
		})
	}
}

type countingAck struct{ acks atomic.Int32 }

func (a *countingAck) Ack(uint64, bool) error { a.acks.Add(1); return nil }
func (a *countingAck) Nack(uint64, bool, bool) error { return nil }
func (a *countingAck) Reject(uint64, bool) error { return nil }

func TestServe_ReturnsWhenDeliveriesClose(t *testing.T) {
	ack := &countingAck{}
	msgs := make(chan amqp.Delivery, 3)
	for i := 0; i < 3; i++ {
		msgs <- amqp.Delivery{Acknowledger: ack, RoutingKey: KeyUserRegistered}
	}
	close(msgs)

	errc := make(chan error, 1)
	go func() {
		errc <- serve(context.Background(), msgs, 2, func(context.Context, Delivery) error { return nil })
	}()
	select {
	case err := <-errc:
		if !errors.Is(err, errDeliveriesClosed) {
			t.Fatalf("got %v, want %v", err, errDeliveriesClosed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after the delivery channel closed")
	}
	if n := ack.acks.Load(); n != 3 {
		t.Fatalf("acked %d deliveries, want 3", n)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- serve(ctx, msgs, 2, func(context.Context, Delivery) error { return nil })
	}()
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("got %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
