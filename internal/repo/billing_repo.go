package repo

import (
	"context"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func (s *Store) CreateCoupon(ctx context.Context, c *domain.Coupon) (domain.WriteResult, error) {
	c.ID = primitive.NilObjectID
	id, err := s.insert(ctx, s.colCoupons, c)
	if oid, ok := id.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return domain.Inserted(id), err
}

func (s *Store) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	cur, err := s.colCoupons.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Coupon](ctx, cur)
}

func (s *Store) UpdateCoupon(ctx context.Context, id primitive.ObjectID, fields map[string]any) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.coupons.update", tracer.Tag("coupon_id", id.Hex()))
	defer func() { finish(sp, err) }()

	r, err := s.colCoupons.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": sanitizePatch(fields)})
	if err != nil {
		return res, err
	}
	return updated(r), nil
}

func (s *Store) DeleteCoupon(ctx context.Context, id primitive.ObjectID) (res domain.WriteResult, err error) {
	sp, ctx := startSpan(ctx, "mongo.coupons.delete", tracer.Tag("coupon_id", id.Hex()))
	defer func() { finish(sp, err) }()

	r, err := s.colCoupons.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return res, err
	}
	return domain.Deleted(r.DeletedCount), nil
}

// CreatePayment inserts the payment. A payment whose transactionId is already
// recorded is not inserted twice: the existing record's id is returned with
// existed set, so a retried completion is safe.
func (s *Store) CreatePayment(ctx context.Context, p *domain.Payment) (res domain.WriteResult, existed bool, err error) {
	p.ID = primitive.NilObjectID
	id, err := s.insert(ctx, s.colPayments, p)
	if err == nil {
		if oid, ok := id.(primitive.ObjectID); ok {
			p.ID = oid
		}
		return domain.Inserted(id), false, nil
	}
	if !IsDup(err) || p.TransactionID == "" {
		return res, false, err
	}
	var prev domain.Payment
	if err := s.colPayments.FindOne(ctx, bson.M{"transactionId": p.TransactionID}).Decode(&prev); err != nil {
		if err == mongo.ErrNoDocuments {
			return res, false, ErrNotFound
		}
		return res, false, err
	}
	p.ID = prev.ID
	return domain.Inserted(prev.ID), true, nil
}
