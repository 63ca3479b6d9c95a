package repo

import (
	"context"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// CreateUserIfAbsent inserts u unless a user with the same email exists.
// created is false for an existing email; that is not an error.
func (s *Store) CreateUserIfAbsent(ctx context.Context, u *domain.User) (res domain.WriteResult, created bool, err error) {
	sp, ctx := startSpan(ctx, "mongo.users.register")
	defer func() { finish(sp, err) }()

	existing, err := s.FindUserByEmail(ctx, u.Email)
	if err != nil {
		return res, false, err
	}
	if existing != nil {
		return res, false, nil
	}
	ins, err := s.colUsers.InsertOne(ctx, u)
	if IsDup(err) {
		// lost a race with a concurrent registration of the same email
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}
	if oid, ok := ins.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return domain.Inserted(ins.InsertedID), true, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	cur, err := s.colUsers.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.User](ctx, cur)
}

// FindUserByEmail returns nil, nil when no user has the email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SetUserRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.users.set_role", tracer.Tag("role", string(role)))
	defer func() { finish(sp, err) }()

	r, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}

// AppendVote records productID in the voter's up/down set. With VoteDedup the
// set semantics are enforced by $addToSet, otherwise every call appends.
func (s *Store) AppendVote(ctx context.Context, email, productID string, dir domain.VoteDirection) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.users.append_vote", tracer.Tag("direction", string(dir)))
	defer func() { finish(sp, err) }()

	op := "$push"
	if s.VoteDedup {
		op = "$addToSet"
	}
	r, err := s.colUsers.UpdateOne(ctx, bson.M{"email": email}, bson.M{op: bson.M{dir.SetField(): productID}})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}

func (s *Store) DedupsVotes() bool { return s.VoteDedup }

// SetPremium marks the user as premium. Re-applying it is harmless.
func (s *Store) SetPremium(ctx context.Context, email string) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.users.set_premium")
	defer func() { finish(sp, err) }()

	r, err := s.colUsers.UpdateOne(ctx, bson.M{"email": email},
		bson.M{"$set": bson.M{"premiumUser": domain.Flag(true)}})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}
