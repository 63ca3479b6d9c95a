package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo/memrepo"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/service"
)

type recordingPub struct {
	mu   sync.Mutex
	keys []string
	evs  []any
}

func (p *recordingPub) Publish(_ context.Context, key string, ev any, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.evs = append(p.evs, ev)
	return nil
}
func (p *recordingPub) Close() error { return nil }

func seed(t *testing.T, st *memrepo.Store, voter string) primitive.ObjectID {
	t.Helper()
	ctx := context.Background()
	_, _, err := st.CreateUserIfAbsent(ctx, &domain.User{Email: voter})
	require.NoError(t, err)
	p := &domain.Product{Name: "Widget", Owner: domain.Owner{Email: "owner@x.io"}}
	_, err = st.CreateProduct(ctx, p)
	require.NoError(t, err)
	return p.ID
}

func TestDuplicateUpVoteCountsTwice(t *testing.T) {
	ctx := context.Background()
	st := memrepo.New()
	id := seed(t, st, "v@x.io")
	v := &service.Voting{Store: st, Pub: queue.NewNoop()}

	for i := 0; i < 2; i++ {
		out, err := v.RecordUpVote(ctx, id, "v@x.io")
		require.NoError(t, err)
		require.True(t, out.ProductResponse.Modified())
		require.True(t, out.UserResponse.Modified())
	}

	p, err := st.FindProduct(ctx, id)
	require.NoError(t, err)
	require.EqualValues(t, 2, p.UpVote)
	require.EqualValues(t, 0, p.DownVote)

	u, err := st.FindUserByEmail(ctx, "v@x.io")
	require.NoError(t, err)
	require.Equal(t, []string{id.Hex(), id.Hex()}, u.UpVotes)
}

func TestDedupCountsOnce(t *testing.T) {
	ctx := context.Background()
	st := memrepo.New()
	st.VoteDedup = true
	id := seed(t, st, "v@x.io")
	v := &service.Voting{Store: st, Pub: queue.NewNoop()}

	_, err := v.RecordUpVote(ctx, id, "v@x.io")
	require.NoError(t, err)
	out, err := v.RecordUpVote(ctx, id, "v@x.io")
	require.NoError(t, err)
	require.False(t, out.ProductResponse.Modified())

	p, _ := st.FindProduct(ctx, id)
	require.EqualValues(t, 1, p.UpVote)
	u, _ := st.FindUserByEmail(ctx, "v@x.io")
	require.Len(t, u.UpVotes, 1)
}

func TestHasVoted(t *testing.T) {
	ctx := context.Background()
	st := memrepo.New()
	id := seed(t, st, "v@x.io")
	v := &service.Voting{Store: st, Pub: queue.NewNoop()}

	ok, err := v.HasUpVoted(ctx, id.Hex(), "v@x.io")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = v.RecordDownVote(ctx, id, "v@x.io")
	require.NoError(t, err)

	up, _ := v.HasUpVoted(ctx, id.Hex(), "v@x.io")
	down, _ := v.HasDownVoted(ctx, id.Hex(), "v@x.io")
	require.False(t, up)
	require.True(t, down)

	// unknown voters have voted for nothing
	ok, err = v.HasDownVoted(ctx, id.Hex(), "nobody@x.io")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCountersNeverDecrease(t *testing.T) {
	ctx := context.Background()
	st := memrepo.New()
	id := seed(t, st, "v@x.io")
	pub := &recordingPub{}
	v := &service.Voting{Store: st, Pub: pub}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, _ = v.RecordUpVote(ctx, id, "v@x.io")
			case 1:
				_, _ = v.RecordDownVote(ctx, id, "v@x.io")
			default:
				_, _ = v.RecordReport(ctx, id, "v@x.io", "req")
			}
		}(i)
	}
	wg.Wait()

	p, _ := st.FindProduct(ctx, id)
	require.EqualValues(t, 7, p.UpVote)
	require.EqualValues(t, 7, p.DownVote)
	require.EqualValues(t, 6, p.Report)
	require.Len(t, pub.keys, 6)
}

func TestRecordReportPublishesToOwner(t *testing.T) {
	ctx := context.Background()
	st := memrepo.New()
	id := seed(t, st, "v@x.io")
	pub := &recordingPub{}
	v := &service.Voting{Store: st, Pub: pub}

	res, err := v.RecordReport(ctx, id, "v@x.io", "req-1")
	require.NoError(t, err)
	require.True(t, res.Matched())
	require.Equal(t, []string{queue.KeyProductReported}, pub.keys)
	ev := pub.evs[0].(queue.ProductReported)
	require.Equal(t, "owner@x.io", ev.OwnerEmail)

	// unknown product: zero counts, nothing published
	res, err = v.RecordReport(ctx, primitive.NewObjectID(), "v@x.io", "req-2")
	require.NoError(t, err)
	require.False(t, res.Matched())
	require.Len(t, pub.keys, 1)
}
