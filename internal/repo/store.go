package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names as they exist in the production database.
const (
	colUsers    = "users"
	colProducts = "Products"
	colReviews  = "Reviews"
	colReports  = "Reports"
	colCoupons  = "Coupons"
	colPayments = "payments"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
)

// Store is the single shared database handle. It is built once at startup,
// handed to every handler and closed on shutdown.
type Store struct {
	Client      *mongo.Client
	DB          *mongo.Database
	colUsers    *mongo.Collection
	colProducts *mongo.Collection
	colReviews  *mongo.Collection
	colReports  *mongo.Collection
	colCoupons  *mongo.Collection
	colPayments *mongo.Collection

	// VoteDedup switches vote appends from $push to $addToSet.
	VoteDedup bool
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetRetryWrites(true).
		SetMaxPoolSize(50).
		// free-form client fields come back as plain maps, not bson.D
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := cli.Database(dbname)
	return &Store{
		Client:      cli,
		DB:          db,
		colUsers:    db.Collection(colUsers),
		colProducts: db.Collection(colProducts),
		colReviews:  db.Collection(colReviews),
		colReports:  db.Collection(colReports),
		colCoupons:  db.Collection(colCoupons),
		colPayments: db.Collection(colPayments),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.colUsers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
	}); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	if _, err := s.colProducts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner.email", Value: 1}},
			Options: options.Index().SetName("owner_email"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		},
		{
			Keys:    bson.D{{Key: "upVote", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("trending"),
		},
	}); err != nil {
		return fmt.Errorf("products indexes: %w", err)
	}

	for _, c := range []*mongo.Collection{s.colReviews, s.colReports} {
		if _, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "productId", Value: 1}},
			Options: options.Index().SetName("product_id"),
		}); err != nil {
			return fmt.Errorf("%s indexes: %w", c.Name(), err)
		}
	}

	// payments without a transactionId stay insertable any number of times
	_, err := s.colPayments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "transactionId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_transaction").
			SetPartialFilterExpression(bson.M{"transactionId": bson.M{"$type": "string"}}),
	})
	if err != nil {
		return fmt.Errorf("payments indexes: %w", err)
	}
	return nil
}

func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return false
}

func updated(res *mongo.UpdateResult) domain.WriteResult {
	return domain.Updated(res.MatchedCount, res.ModifiedCount, res.UpsertedCount, res.UpsertedID)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

// sanitizePatch drops keys MongoDB refuses in a $set.
func sanitizePatch(fields map[string]any) bson.M {
	out := bson.M{}
	for k, v := range fields {
		if k == "_id" || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
