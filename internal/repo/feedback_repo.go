package repo

import (
	"context"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func (s *Store) CreateReview(ctx context.Context, r *domain.Review) (domain.WriteResult, error) {
	r.ID = primitive.NilObjectID
	id, err := s.insert(ctx, s.colReviews, r)
	if oid, ok := id.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return domain.Inserted(id), err
}

func (s *Store) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	cur, err := s.colReviews.Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Review](ctx, cur)
}

// CreateReport appends the audit record only; the product's report counter
// is bumped separately by IncrementReport.
func (s *Store) CreateReport(ctx context.Context, r *domain.Report) (domain.WriteResult, error) {
	r.ID = primitive.NilObjectID
	id, err := s.insert(ctx, s.colReports, r)
	if oid, ok := id.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return domain.Inserted(id), err
}

func (s *Store) ListReports(ctx context.Context, productID string) ([]domain.Report, error) {
	cur, err := s.colReports.Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Report](ctx, cur)
}

// AdminStats uses the collections' metadata counts, which is cheap and
// approximate.
func (s *Store) AdminStats(ctx context.Context) (domain.AdminStats, error) {
	var st domain.AdminStats
	for _, c := range []struct {
		col *mongo.Collection
		dst *int64
	}{
		{s.colUsers, &st.UserCount},
		{s.colProducts, &st.ProductCount},
		{s.colReviews, &st.ReviewCount},
		{s.colReports, &st.ReportCount},
	} {
		n, err := c.col.EstimatedDocumentCount(ctx)
		if err != nil {
			return st, err
		}
		*c.dst = n
	}
	return st, nil
}

func (s *Store) insert(ctx context.Context, col *mongo.Collection, doc any) (id any, err error) {
	sp, ctx := startSpan(ctx, "mongo."+col.Name()+".insert", tracer.Tag("collection", col.Name()))
	defer func() { finish(sp, err) }()

	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}
