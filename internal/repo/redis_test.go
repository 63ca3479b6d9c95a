package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo"
)

func TestRedis_HitCountsPerWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	r := repo.NewRedis(mr.Addr())
	t.Cleanup(func() { _ = r.Close() })
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 10, 0, time.UTC)
	for want := int64(1); want <= 3; want++ {
		n, err := r.Hit(ctx, "jwt:1.2.3.4", time.Minute, now)
		require.NoError(t, err)
		require.Equal(t, want, n)
	}

	// other keys and the next window start from scratch
	n, err := r.Hit(ctx, "jwt:5.6.7.8", time.Minute, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = r.Hit(ctx, "jwt:1.2.3.4", time.Minute, now.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, r.Ping(ctx))
}
