package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestProduct_KeepsUnknownFields(t *testing.T) {
	in := `{"productName":"Lens","tags":["ai"],"owner":{"email":"o@x.io"},"title":"old","pricing":{"tier":"free"}}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	require.Equal(t, "Lens", p.Name)
	require.Equal(t, "old", p.Extra["title"])
	require.NotContains(t, p.Extra, "productName")

	out, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	require.Equal(t, "old", m["title"])
	require.Equal(t, map[string]any{"tier": "free"}, m["pricing"])
	require.Equal(t, "Lens", m["productName"])
	require.EqualValues(t, 0, m["upVote"])
}

func TestProduct_ExtraRidesInlineInBSON(t *testing.T) {
	p := Product{Name: "Lens", Extra: map[string]any{"title": "old"}}
	raw, err := bson.Marshal(p)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	require.Equal(t, "old", m["title"])
	require.NotContains(t, m, "Extra")

	var back Product
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Equal(t, "old", back.Extra["title"])
}

func TestUser_VoteMembership(t *testing.T) {
	u := User{UpVotes: []string{"a", "a"}, DownVotes: []string{"b"}}
	require.True(t, u.HasUpVoted("a"))
	require.False(t, u.HasUpVoted("b"))
	require.True(t, u.HasDownVoted("b"))
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"admin": RoleAdmin, "moderator": RoleModerator, "user": RoleUnset, "": RoleUnset} {
		got, err := ParseRole(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseRole("Admin")
	require.Error(t, err)
}

func TestWriteResult_OmitsInapplicableCounts(t *testing.T) {
	b, err := json.Marshal(Deleted(1))
	require.NoError(t, err)
	require.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, string(b))

	b, err = json.Marshal(Updated(0, 0, 0, nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"acknowledged":true,"matchedCount":0,"modifiedCount":0,"upsertedCount":0}`, string(b))
}

func TestProduct_MistypedStoredFieldsAreKept(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"productName": "Lens",
		"tags":        "ai",
		"upVote":      "x",
		"featured":    int32(1),
		"report":      int64(2),
		"owner":       bson.M{"email": "o@x.io"},
	})
	require.NoError(t, err)

	var p Product
	require.NoError(t, bson.Unmarshal(raw, &p))
	require.Equal(t, "Lens", p.Name)
	require.EqualValues(t, 2, p.Report)
	require.Equal(t, "o@x.io", p.Owner.Email)
	require.Nil(t, p.Tags)
	require.Equal(t, "ai", p.Extra["tags"])
	require.Equal(t, "x", p.Extra["upVote"])
	require.EqualValues(t, 1, p.Extra["featured"])

	// served the way it is stored
	out, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	require.Equal(t, "ai", m["tags"])
	require.Equal(t, "x", m["upVote"])
	require.EqualValues(t, 1, m["featured"])
	require.EqualValues(t, 2, m["report"])
}

func TestCoupon_MistypedCodeIsKept(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"couponCode": int32(5), "discount": 10})
	require.NoError(t, err)

	var c Coupon
	require.NoError(t, bson.Unmarshal(raw, &c))
	require.Empty(t, c.Code)
	require.EqualValues(t, 5, c.Extra["couponCode"])
	require.EqualValues(t, 10, c.Extra["discount"])
}
