package repo

import (
	"context"
	"regexp"
	"time"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// CreateProduct stores p with zeroed counters.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.products.insert", tracer.Tag("owner", p.Owner.Email))
	defer func() { finish(sp, err) }()

	p.ID = primitive.NilObjectID
	p.UpVote, p.DownVote, p.Report = 0, 0, 0
	if p.CreatedAt == nil {
		now := time.Now().UTC()
		p.CreatedAt = &now
	}
	ins, err := s.colProducts.InsertOne(ctx, p)
	if err != nil {
		return res, err
	}
	if oid, ok := ins.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return domain.Inserted(ins.InsertedID), nil
}

func (s *Store) findProducts(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.Product, error) {
	cur, err := s.colProducts.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Product](ctx, cur)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.findProducts(ctx, bson.M{})
}

// tagFilter matches any product carrying a tag that contains one of the
// search terms, ignoring case. Terms are literal text, not patterns.
func tagFilter(tags []string) bson.M {
	if len(tags) == 0 {
		return bson.M{}
	}
	rx := make(bson.A, 0, len(tags))
	for _, t := range tags {
		rx = append(rx, primitive.Regex{Pattern: regexp.QuoteMeta(t), Options: "i"})
	}
	return bson.M{"tags": bson.M{"$in": rx}}
}

func (s *Store) PageProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	return s.findProducts(ctx, tagFilter(q.Tags), options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64((page-1)*size)).
		SetLimit(int64(size)))
}

func (s *Store) CountProducts(ctx context.Context, tags []string) (int64, error) {
	return s.colProducts.CountDocuments(ctx, tagFilter(tags))
}

func (s *Store) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	return s.findProducts(ctx, bson.M{"featured": domain.TruthyMarker})
}

// ListTrending returns the most up-voted products; equal counts keep insertion order.
func (s *Store) ListTrending(ctx context.Context) ([]domain.Product, error) {
	return s.findProducts(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "upVote", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(domain.TrendingLimit))
}

func (s *Store) ListReported(ctx context.Context) ([]domain.Product, error) {
	return s.findProducts(ctx, bson.M{"report": bson.M{"$gt": 0}})
}

func (s *Store) ListByOwner(ctx context.Context, email string) ([]domain.Product, error) {
	return s.findProducts(ctx, bson.M{"owner.email": email})
}

// FindProduct returns nil, nil when the id matches nothing.
func (s *Store) FindProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := s.colProducts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct shallow-merges fields into the product as given. Nothing is
// validated: any caller field, counters included, is written verbatim.
func (s *Store) UpdateProduct(ctx context.Context, id primitive.ObjectID, fields map[string]any) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.products.update", tracer.Tag("product_id", id.Hex()))
	defer func() { finish(sp, err) }()

	r, err := s.colProducts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": sanitizePatch(fields)})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}

func (s *Store) MakeFeatured(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error) {
	return s.setProductField(ctx, id, "featured", domain.Flag(true))
}

func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (domain.WriteResult, error) {
	return s.setProductField(ctx, id, "status", status)
}

func (s *Store) setProductField(ctx context.Context, id primitive.ObjectID, field string, v any) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.products.set", tracer.Tag("field", field), tracer.Tag("product_id", id.Hex()))
	defer func() { finish(sp, err) }()

	r, err := s.colProducts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: v}})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}

func (s *Store) IncrementVote(ctx context.Context, id primitive.ObjectID, dir domain.VoteDirection) (domain.WriteResult, error) {
	return s.increment(ctx, id, dir.CounterField())
}

func (s *Store) IncrementReport(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error) {
	return s.increment(ctx, id, "report")
}

// increment is a single-document $inc, atomic on the server.
func (s *Store) increment(ctx context.Context, id primitive.ObjectID, field string) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.products.inc", tracer.Tag("field", field), tracer.Tag("product_id", id.Hex()))
	defer func() { finish(sp, err) }()

	r, err := s.colProducts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: 1}})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}

func (s *Store) DeleteProduct(ctx context.Context, id primitive.ObjectID) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.products.delete", tracer.Tag("product_id", id.Hex()))
	defer func() { finish(sp, err) }()

	r, err := s.colProducts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return res, err
	}
	return domain.Deleted(r.DeletedCount), nil
}
