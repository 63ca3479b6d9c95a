package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/helper"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/metrics"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
)

type VoteStore interface {
	IncrementVote(ctx context.Context, id primitive.ObjectID, dir domain.VoteDirection) (domain.WriteResult, error)
	IncrementReport(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error)
	AppendVote(ctx context.Context, email, productID string, dir domain.VoteDirection) (domain.WriteResult, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	// DedupsVotes reports whether AppendVote leaves an existing id alone.
	DedupsVotes() bool
}

// Voting runs the two-document vote workflow: the product counter and the
// voter's id set. The two writes are independent and may partially succeed.
// When the store de-duplicates vote sets, a vote is counted only if the
// voter's set actually changed.
type Voting struct {
	Store VoteStore
	Pub   queue.Publisher
}

type VoteOutcome struct {
	ProductResponse domain.WriteResult `json:"productResponse"`
	UserResponse    domain.WriteResult `json:"userResponse"`
}

func (v *Voting) RecordUpVote(ctx context.Context, productID primitive.ObjectID, voter string) (VoteOutcome, error) {
	return v.record(ctx, productID, voter, domain.VoteUp)
}

func (v *Voting) RecordDownVote(ctx context.Context, productID primitive.ObjectID, voter string) (VoteOutcome, error) {
	return v.record(ctx, productID, voter, domain.VoteDown)
}

func (v *Voting) Record(ctx context.Context, productID primitive.ObjectID, voter string, dir domain.VoteDirection) (VoteOutcome, error) {
	return v.record(ctx, productID, voter, dir)
}

func (v *Voting) record(ctx context.Context, productID primitive.ObjectID, voter string, dir domain.VoteDirection) (VoteOutcome, error) {
	var out VoteOutcome
	var err error

	if v.Store.DedupsVotes() {
		if out.UserResponse, err = v.Store.AppendVote(ctx, voter, productID.Hex(), dir); err != nil {
			return out, err
		}
		if !out.UserResponse.Modified() {
			out.ProductResponse = domain.Updated(0, 0, 0, nil)
			return out, nil
		}
		if out.ProductResponse, err = v.Store.IncrementVote(ctx, productID, dir); err != nil {
			return out, err
		}
	} else {
		if out.ProductResponse, err = v.Store.IncrementVote(ctx, productID, dir); err != nil {
			return out, err
		}
		if out.UserResponse, err = v.Store.AppendVote(ctx, voter, productID.Hex(), dir); err != nil {
			return out, err
		}
	}

	metrics.VotesTotal.WithLabelValues(string(dir)).Inc()
	return out, nil
}

func (v *Voting) HasUpVoted(ctx context.Context, productID, voter string) (bool, error) {
	return v.hasVoted(ctx, productID, voter, domain.VoteUp)
}

func (v *Voting) HasDownVoted(ctx context.Context, productID, voter string) (bool, error) {
	return v.hasVoted(ctx, productID, voter, domain.VoteDown)
}

// hasVoted is a pure read. An unknown voter has voted for nothing.
func (v *Voting) hasVoted(ctx context.Context, productID, voter string, dir domain.VoteDirection) (bool, error) {
	u, err := v.Store.FindUserByEmail(ctx, voter)
	if err != nil || u == nil {
		return false, err
	}
	if dir == domain.VoteDown {
		return u.HasDownVoted(productID), nil
	}
	return u.HasUpVoted(productID), nil
}

// RecordReport bumps the product's report counter and tells the owner.
func (v *Voting) RecordReport(ctx context.Context, productID primitive.ObjectID, reporter, reqID string) (domain.WriteResult, error) {
	res, err := v.Store.IncrementReport(ctx, productID)
	if err != nil {
		return res, err
	}
	metrics.ReportsTotal.Inc()
	if !res.Matched() {
		return res, nil
	}

	p, err := v.Store.FindProduct(ctx, productID)
	if err != nil || p == nil {
		return res, nil
	}
	ev := queue.ProductReported{
		ProductID:   productID,
		ProductName: p.Name,
		OwnerEmail:  p.Owner.Email,
		ReportedBy:  reporter,
	}
	if err := v.Pub.Publish(ctx, queue.KeyProductReported, ev, reqID); err != nil {
		zap.L().Warn("publish product.reported failed",
			zap.String("product", productID.Hex()),
			zap.String("reporter", helper.EmailTag(reporter)),
			zap.Error(err))
	}
	return res, nil
}
