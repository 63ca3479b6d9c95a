// Package memrepo is an in-memory stand-in for repo.Store with the same
// write-result and ordering semantics. Handler and service tests run on it.
package memrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	users    []domain.User
	products []bson.M
	reviews  []domain.Review
	reports  []domain.Report
	coupons  []bson.M
	payments []domain.Payment

	VoteDedup bool
	// Fail, when set, is returned by every operation.
	Fail error
}

func New() *Store { return &Store{} }

func (s *Store) Ping(context.Context) error { return s.Fail }

// ---- users

func (s *Store) CreateUserIfAbsent(_ context.Context, u *domain.User) (domain.WriteResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, false, s.Fail
	}
	if s.userIdx(u.Email) >= 0 {
		return domain.WriteResult{}, false, nil
	}
	u.ID = primitive.NewObjectID()
	s.users = append(s.users, clone(*u))
	return domain.Inserted(u.ID), true, nil
}

func (s *Store) ListUsers(context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.users), s.Fail
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	i := s.userIdx(email)
	if i < 0 {
		return nil, nil
	}
	u := clone(s.users[i])
	return &u, nil
}

func (s *Store) SetUserRole(_ context.Context, id primitive.ObjectID, role domain.Role) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	for i := range s.users {
		if s.users[i].ID == id {
			changed := s.users[i].Role != role
			s.users[i].Role = role
			return result(1, changed), nil
		}
	}
	return result(0, false), nil
}

func (s *Store) AppendVote(_ context.Context, email, productID string, dir domain.VoteDirection) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	i := s.userIdx(email)
	if i < 0 {
		return result(0, false), nil
	}
	ids := &s.users[i].UpVotes
	if dir == domain.VoteDown {
		ids = &s.users[i].DownVotes
	}
	if s.VoteDedup && slices.Contains(*ids, productID) {
		return result(1, false), nil
	}
	*ids = append(*ids, productID)
	return result(1, true), nil
}

func (s *Store) DedupsVotes() bool { return s.VoteDedup }

func (s *Store) SetPremium(_ context.Context, email string) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	i := s.userIdx(email)
	if i < 0 {
		return result(0, false), nil
	}
	changed := !bool(s.users[i].Premium)
	s.users[i].Premium = true
	return result(1, changed), nil
}

func (s *Store) userIdx(email string) int {
	for i := range s.users {
		if s.users[i].Email == email {
			return i
		}
	}
	return -1
}

// ---- products

// Products and coupons are kept in their stored form so generic updates land
// as-is and reads go through the same decoding as documents from MongoDB.

func (s *Store) CreateProduct(_ context.Context, p *domain.Product) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	p.ID = primitive.NewObjectID()
	p.UpVote, p.DownVote, p.Report = 0, 0, 0
	if p.CreatedAt == nil {
		now := time.Now().UTC()
		p.CreatedAt = &now
	}
	doc, err := encode(p)
	if err != nil {
		return domain.WriteResult{}, err
	}
	s.products = append(s.products, doc)
	return domain.Inserted(p.ID), nil
}

func (s *Store) filterProducts(keep func(*domain.Product) bool) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, doc := range s.products {
		p, err := decode[domain.Product](doc)
		if err != nil {
			return nil, err
		}
		if keep(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func all(*domain.Product) bool { return true }

func (s *Store) ListProducts(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	return s.filterProducts(all)
}

func matchTags(p *domain.Product, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, tag := range p.Tags {
		for _, t := range terms {
			if strings.Contains(strings.ToLower(tag), strings.ToLower(t)) {
				return true
			}
		}
	}
	return false
}

func (s *Store) PageProducts(_ context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	page, size := q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	matched, err := s.filterProducts(func(p *domain.Product) bool { return matchTags(p, q.Tags) })
	if err != nil {
		return nil, err
	}
	sortByID(matched)
	from := (page - 1) * size
	if from >= len(matched) {
		return []domain.Product{}, nil
	}
	return matched[from:min(from+size, len(matched))], nil
}

func (s *Store) CountProducts(_ context.Context, tags []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	matched, err := s.filterProducts(func(p *domain.Product) bool { return matchTags(p, tags) })
	return int64(len(matched)), err
}

func (s *Store) ListFeatured(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	return s.filterProducts(func(p *domain.Product) bool { return bool(p.Featured) })
}

func (s *Store) ListTrending(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	ps, err := s.filterProducts(all)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].UpVote != ps[j].UpVote {
			return ps[i].UpVote > ps[j].UpVote
		}
		return ps[i].ID.Hex() < ps[j].ID.Hex()
	})
	if len(ps) > domain.TrendingLimit {
		ps = ps[:domain.TrendingLimit]
	}
	return ps, nil
}

func (s *Store) ListReported(context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	return s.filterProducts(func(p *domain.Product) bool { return p.Report > 0 })
}

func (s *Store) ListByOwner(_ context.Context, email string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	return s.filterProducts(func(p *domain.Product) bool { return p.Owner.Email == email })
}

func (s *Store) FindProduct(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	i := docIdx(s.products, id)
	if i < 0 {
		return nil, nil
	}
	p, err := decode[domain.Product](s.products[i])
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProduct(_ context.Context, id primitive.ObjectID, fields map[string]any) (domain.WriteResult, error) {
	return s.mutateProduct(id, func(doc bson.M) (bool, error) { return set(doc, fields), nil })
}

func (s *Store) MakeFeatured(_ context.Context, id primitive.ObjectID) (domain.WriteResult, error) {
	return s.mutateProduct(id, func(doc bson.M) (bool, error) {
		return set(doc, map[string]any{"featured": domain.TruthyMarker}), nil
	})
}

func (s *Store) SetStatus(_ context.Context, id primitive.ObjectID, status string) (domain.WriteResult, error) {
	return s.mutateProduct(id, func(doc bson.M) (bool, error) {
		return set(doc, map[string]any{"status": status}), nil
	})
}

func (s *Store) IncrementVote(_ context.Context, id primitive.ObjectID, dir domain.VoteDirection) (domain.WriteResult, error) {
	return s.mutateProduct(id, func(doc bson.M) (bool, error) { return true, inc(doc, dir.CounterField()) })
}

func (s *Store) IncrementReport(_ context.Context, id primitive.ObjectID) (domain.WriteResult, error) {
	return s.mutateProduct(id, func(doc bson.M) (bool, error) { return true, inc(doc, "report") })
}

func (s *Store) DeleteProduct(_ context.Context, id primitive.ObjectID) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	i := docIdx(s.products, id)
	if i < 0 {
		return domain.Deleted(0), nil
	}
	s.products = slices.Delete(s.products, i, i+1)
	return domain.Deleted(1), nil
}

func (s *Store) mutateProduct(id primitive.ObjectID, fn func(bson.M) (bool, error)) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	i := docIdx(s.products, id)
	if i < 0 {
		return result(0, false), nil
	}
	changed, err := fn(s.products[i])
	if err != nil {
		return domain.WriteResult{}, err
	}
	return result(1, changed), nil
}

// ---- feedback

func (s *Store) CreateReview(_ context.Context, r *domain.Review) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	r.ID = primitive.NewObjectID()
	s.reviews = append(s.reviews, clone(*r))
	return domain.Inserted(r.ID), nil
}

func (s *Store) ListReviews(_ context.Context, productID string) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Review{}
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, clone(r))
		}
	}
	return out, s.Fail
}

func (s *Store) CreateReport(_ context.Context, r *domain.Report) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	r.ID = primitive.NewObjectID()
	s.reports = append(s.reports, clone(*r))
	return domain.Inserted(r.ID), nil
}

func (s *Store) ListReports(_ context.Context, productID string) ([]domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Report{}
	for _, r := range s.reports {
		if r.ProductID == productID {
			out = append(out, clone(r))
		}
	}
	return out, s.Fail
}

func (s *Store) AdminStats(context.Context) (domain.AdminStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.AdminStats{
		UserCount:    int64(len(s.users)),
		ProductCount: int64(len(s.products)),
		ReviewCount:  int64(len(s.reviews)),
		ReportCount:  int64(len(s.reports)),
	}, s.Fail
}

// ---- billing

func (s *Store) CreateCoupon(_ context.Context, c *domain.Coupon) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	c.ID = primitive.NewObjectID()
	doc, err := encode(c)
	if err != nil {
		return domain.WriteResult{}, err
	}
	s.coupons = append(s.coupons, doc)
	return domain.Inserted(c.ID), nil
}

func (s *Store) ListCoupons(context.Context) ([]domain.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]domain.Coupon, 0, len(s.coupons))
	for _, doc := range s.coupons {
		c, err := decode[domain.Coupon](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) UpdateCoupon(_ context.Context, id primitive.ObjectID, fields map[string]any) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	i := docIdx(s.coupons, id)
	if i < 0 {
		return result(0, false), nil
	}
	return result(1, set(s.coupons[i], fields)), nil
}

func (s *Store) DeleteCoupon(_ context.Context, id primitive.ObjectID) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, s.Fail
	}
	i := docIdx(s.coupons, id)
	if i < 0 {
		return domain.Deleted(0), nil
	}
	s.coupons = slices.Delete(s.coupons, i, i+1)
	return domain.Deleted(1), nil
}

func (s *Store) CreatePayment(_ context.Context, p *domain.Payment) (domain.WriteResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return domain.WriteResult{}, false, s.Fail
	}
	if p.TransactionID != "" {
		for _, prev := range s.payments {
			if prev.TransactionID == p.TransactionID {
				p.ID = prev.ID
				return domain.Inserted(prev.ID), true, nil
			}
		}
	}
	p.ID = primitive.NewObjectID()
	s.payments = append(s.payments, clone(*p))
	return domain.Inserted(p.ID), false, nil
}

// Payments returns the stored payments; test helper.
func (s *Store) Payments() []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.payments)
}

// ---- helpers

func result(matched int, changed bool) domain.WriteResult {
	var mod int64
	if changed {
		mod = 1
	}
	return domain.Updated(int64(matched), mod, 0, nil)
}

func sortByID(ps []domain.Product) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].ID.Hex() < ps[j].ID.Hex() })
}

// encode converts v to its stored form.
func encode(v any) (bson.M, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	err = bson.Unmarshal(b, &doc)
	return doc, err
}

// decode reads a stored document the way the MongoDB store does.
func decode[T any](doc bson.M) (T, error) {
	var out T
	b, err := bson.Marshal(doc)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(b, &out)
	return out, err
}

// set is a shallow $set. Values are stored as given.
func set(doc bson.M, fields map[string]any) bool {
	changed := false
	for k, v := range fields {
		if k == "_id" || k == "" {
			continue
		}
		if old, ok := doc[k]; !ok || !reflect.DeepEqual(old, v) {
			changed = true
		}
		doc[k] = v
	}
	return changed
}

// inc is $inc by one; like MongoDB it refuses non-numeric values.
func inc(doc bson.M, field string) error {
	switch n := doc[field].(type) {
	case nil:
		doc[field] = int64(1)
	case int32:
		doc[field] = n + 1
	case int64:
		doc[field] = n + 1
	case float64:
		doc[field] = n + 1
	default:
		return fmt.Errorf("cannot apply $inc to %s of type %T", field, n)
	}
	return nil
}

func docIdx(docs []bson.M, id primitive.ObjectID) int {
	for i, d := range docs {
		if d["_id"] == id {
			return i
		}
	}
	return -1
}

// clone deep-copies through JSON so callers cannot alias stored slices.
func clone[T any](v T) T {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func cloneAll[T any](vs []T) []T {
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		out = append(out, clone(v))
	}
	return out
}
