package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/metrics"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Hitter interface {
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (int64, error)
}

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	Hits   Hitter
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

func NewRedisLimiter(h Hitter, perMin int) *RedisLimiter {
	return &RedisLimiter{Hits: h, Limit: perMin, Window: time.Minute, Now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.Hits.Hit(ctx, key, l.Window, l.Now())
	if err != nil {
		return false, err
	}
	return n <= int64(l.Limit), nil
}

// LocalLimiter keeps one token bucket per key in process memory. Used when
// no Redis is configured.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
	max     int
}

func NewLocalLimiter(perMin int) *LocalLimiter {
	if perMin <= 0 {
		perMin = 1
	}
	return &LocalLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Every(time.Minute / time.Duration(perMin)),
		burst:   perMin,
		max:     10000,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.max {
			// crude bound on memory; buckets refill quickly anyway
			l.buckets = make(map[string]*rate.Limiter)
		}
		b = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = b
	}
	return b.Allow(), nil
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil && host != "" {
		return host
	}
	return ip
}

// RateLimit throttles per client IP within scope. Limiter errors let the
// request through.
func RateLimit(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), scope+":"+ClientIP(c))
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
