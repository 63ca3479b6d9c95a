package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// Hit counts one request for key in the current fixed window and returns the
// count so far. Window keys expire on their own.
func (r *Redis) Hit(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error) {
	slot := now.UnixNano() / int64(window)
	k := fmt.Sprintf("rl:%s:%d", key, slot)

	var incr *redis.IntCmd
	_, err := r.C.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
