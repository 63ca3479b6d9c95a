package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo"
)

// skipWithoutDocker runs the provider check and skips when it fails. Some
// testcontainers versions panic instead of skipping when no Docker socket is
// found, which would take the Docker-free tests in this package down too.
func skipWithoutDocker(t *testing.T, check func(*testing.T)) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("docker unavailable: %v", r)
		}
	}()
	check(t)
}

func TestSkipWithoutDocker_TurnsPanicIntoSkip(t *testing.T) {
	ok := t.Run("panicking provider", func(t *testing.T) {
		skipWithoutDocker(t, func(*testing.T) { panic("rootless Docker not found") })
		t.Fatal("expected skip")
	})
	require.True(t, ok)
}

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	skipWithoutDocker(t, testcontainers.SkipIfProviderIsNotHealthy)
	ctx := context.Background()

	mc, err := mongodb.Run(ctx, "mongo:6")
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}
	t.Cleanup(func() { _ = mc.Terminate(context.Background()) })

	uri, err := mc.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}
	st, err := repo.NewStore(ctx, uri, "innovatex_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := st.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestStore_Users(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	res, created, err := st.CreateUserIfAbsent(ctx, &domain.User{Email: "a@x.com", Name: "A"})
	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, res.InsertedID)

	_, created, err = st.CreateUserIfAbsent(ctx, &domain.User{Email: "a@x.com"})
	require.NoError(t, err)
	require.False(t, created)

	u, err := st.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUnset, u.Role)

	upd, err := st.SetUserRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	require.True(t, upd.Modified())

	_, err = st.SetPremium(ctx, "a@x.com")
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, st.DB.Collection("users").FindOne(ctx, bson.M{"email": "a@x.com"}).Decode(&raw))
	require.Equal(t, "admin", raw["role"])
	require.Equal(t, domain.TruthyMarker, raw["premiumUser"])

	missing, err := st.FindUserByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestStore_VoteAppend(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	_, _, err := st.CreateUserIfAbsent(ctx, &domain.User{Email: "v@x.com"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = st.AppendVote(ctx, "v@x.com", "p1", domain.VoteUp)
		require.NoError(t, err)
	}
	u, _ := st.FindUserByEmail(ctx, "v@x.com")
	require.Equal(t, []string{"p1", "p1"}, u.UpVotes)

	st.VoteDedup = true
	res, err := st.AppendVote(ctx, "v@x.com", "p2", domain.VoteDown)
	require.NoError(t, err)
	require.True(t, res.Modified())
	res, err = st.AppendVote(ctx, "v@x.com", "p2", domain.VoteDown)
	require.NoError(t, err)
	require.False(t, res.Modified())
}

func TestStore_Products(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	var ids []primitive.ObjectID
	for _, tags := range [][]string{{"AI"}, {"c++", "tools"}, {"games"}, {"cxx"}} {
		p := &domain.Product{Name: "P", Tags: tags, Owner: domain.Owner{Email: "o@x.com"},
			Extra: map[string]any{"title": "old"}}
		_, err := st.CreateProduct(ctx, p)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	// search terms are literal
	n, err := st.CountProducts(ctx, []string{"c++"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = st.CountProducts(ctx, []string{"ai", "GAMES"})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	page, err := st.PageProducts(ctx, domain.ProductQuery{Page: 2, Size: 3})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, ids[3], page[0].ID)

	for _, id := range []primitive.ObjectID{ids[2], ids[2], ids[1]} {
		_, err := st.IncrementVote(ctx, id, domain.VoteUp)
		require.NoError(t, err)
	}
	trending, err := st.ListTrending(ctx)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{ids[2], ids[1], ids[0], ids[3]},
		[]primitive.ObjectID{trending[0].ID, trending[1].ID, trending[2].ID, trending[3].ID})

	_, err = st.MakeFeatured(ctx, ids[0])
	require.NoError(t, err)
	featured, err := st.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	require.Equal(t, ids[0], featured[0].ID)

	res, err := st.UpdateProduct(ctx, ids[0], map[string]any{"title": "new", "_id": "x"})
	require.NoError(t, err)
	require.True(t, res.Matched())
	p, err := st.FindProduct(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, "new", p.Extra["title"])
	require.Equal(t, []string{"AI"}, p.Tags)
	require.True(t, bool(p.Featured))

	res, err = st.UpdateProduct(ctx, primitive.NewObjectID(), map[string]any{"title": "x"})
	require.NoError(t, err)
	require.False(t, res.Matched())

	_, err = st.IncrementReport(ctx, ids[3])
	require.NoError(t, err)
	reported, err := st.ListReported(ctx)
	require.NoError(t, err)
	require.Len(t, reported, 1)

	del, err := st.DeleteProduct(ctx, ids[3])
	require.NoError(t, err)
	require.EqualValues(t, 1, *del.DeletedCount)
}

func TestStore_MistypedPatchKeepsListingsReadable(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "P", Tags: []string{"ai"}, Owner: domain.Owner{Email: "o@x.com"}}
	_, err := st.CreateProduct(ctx, p)
	require.NoError(t, err)
	_, err = st.CreateProduct(ctx, &domain.Product{Name: "Q", Owner: domain.Owner{Email: "o@x.com"}})
	require.NoError(t, err)

	_, err = st.UpdateProduct(ctx, p.ID, map[string]any{"tags": "ai", "upVote": "x", "featured": 1})
	require.NoError(t, err)

	all, err := st.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	_, err = st.ListTrending(ctx)
	require.NoError(t, err)
	_, err = st.ListByOwner(ctx, "o@x.com")
	require.NoError(t, err)
	_, err = st.PageProducts(ctx, domain.ProductQuery{})
	require.NoError(t, err)

	got, err := st.FindProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "ai", got.Extra["tags"])
	require.Equal(t, "x", got.Extra["upVote"])
	require.EqualValues(t, 1, got.Extra["featured"])
	require.Equal(t, "P", got.Name)
}

func TestStore_PaymentsAreIdempotentByTransaction(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	first := &domain.Payment{UserEmail: "p@x.com", Price: 5, TransactionID: "pi_1"}
	_, existed, err := st.CreatePayment(ctx, first)
	require.NoError(t, err)
	require.False(t, existed)

	again := &domain.Payment{UserEmail: "p@x.com", Price: 5, TransactionID: "pi_1"}
	res, existed, err := st.CreatePayment(ctx, again)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, first.ID, res.InsertedID)

	// no transaction id: plain append-only inserts
	for i := 0; i < 2; i++ {
		_, existed, err = st.CreatePayment(ctx, &domain.Payment{UserEmail: "p@x.com"})
		require.NoError(t, err)
		require.False(t, existed)
	}
	n, err := st.DB.Collection("payments").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestStore_FeedbackAndStats(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	_, err := st.CreateReview(ctx, &domain.Review{ProductID: "p1", Extra: map[string]any{"rating": int32(5)}})
	require.NoError(t, err)
	_, err = st.CreateReport(ctx, &domain.Report{ProductID: "p1"})
	require.NoError(t, err)

	reviews, err := st.ListReviews(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.EqualValues(t, 5, reviews[0].Extra["rating"])

	// estimated counts lag briefly on some server versions
	require.Eventually(t, func() bool {
		s, err := st.AdminStats(ctx)
		return err == nil && s.ReviewCount == 1 && s.ReportCount == 1
	}, 5*time.Second, 100*time.Millisecond)
}

func TestParseID(t *testing.T) {
	_, err := repo.ParseID("zzz")
	require.True(t, errors.Is(err, repo.ErrInvalidID))
	id := primitive.NewObjectID()
	got, err := repo.ParseID(id.Hex())
	require.NoError(t, err)
	require.Equal(t, id, got)
}
