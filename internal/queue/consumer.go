package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Delivery is the part of an AMQP delivery a handler needs.
type Delivery struct {
	Key   string
	Body  []byte
	ReqID string
}

// Handler processes one delivery. Returning ErrPoison drops the message;
// any other error requeues it.
type Handler func(ctx context.Context, d Delivery) error

var ErrPoison = errors.New("unprocessable message")

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	q    string
}

func NewConsumer(url, exchange, queue string, keys []string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	qd, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, k := range keys {
		if err := ch.QueueBind(qd.Name, k, exchange, false, nil); err != nil {
			return fail("bind "+k, err)
		}
	}
	return &Consumer{conn: conn, ch: ch, q: qd.Name}, nil
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume runs workers goroutines over the queue until ctx is cancelled or
// the channel is closed by the broker.
func (c *Consumer) Consume(ctx context.Context, workers int, handle Handler) error {
	if c == nil || c.ch == nil {
		return errors.New("consumer is not initialized")
	}
	if workers <= 0 {
		workers = 1
	}
	if err := c.ch.Qos(workers*10, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	msgs, err := c.ch.Consume(c.q, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return serve(ctx, msgs, workers, handle)
}

var errDeliveriesClosed = errors.New("delivery channel closed")

// serve dispatches msgs across workers until ctx is cancelled or the broker
// closes msgs. The latter is reported as an error so the caller can restart.
func serve(ctx context.Context, msgs <-chan amqp.Delivery, workers int, handle Handler) error {
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						return
					}
					dispatch(ctx, handle, d)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		<-done
		return nil
	case <-done:
		if ctx.Err() != nil {
			return nil
		}
		return errDeliveriesClosed
	}
}

// acknowledger is the subset of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func dispatch(ctx context.Context, handle Handler, d amqp.Delivery) {
	reqID, _ := d.Headers["X-Request-ID"].(string)
	settle(handle(ctx, Delivery{Key: d.RoutingKey, Body: d.Body, ReqID: reqID}), &d, d.RoutingKey)
}

func settle(err error, a acknowledger, key string) {
	switch {
	case err == nil:
		_ = a.Ack(false)
	case errors.Is(err, ErrPoison):
		zap.L().Warn("dropping message", zap.String("key", key), zap.Error(err))
		_ = a.Nack(false, false)
	default:
		zap.L().Error("handler failed, requeueing", zap.String("key", key), zap.Error(err))
		_ = a.Nack(false, true)
	}
}
