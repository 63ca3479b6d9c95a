package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/log"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/payment"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/security"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/service"
)

type UserStore interface {
	CreateUserIfAbsent(ctx context.Context, u *domain.User) (domain.WriteResult, bool, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	SetUserRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (domain.WriteResult, error)
	AppendVote(ctx context.Context, email, productID string, dir domain.VoteDirection) (domain.WriteResult, error)
	DedupsVotes() bool
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) (domain.WriteResult, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	PageProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error)
	CountProducts(ctx context.Context, tags []string) (int64, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	ListTrending(ctx context.Context) ([]domain.Product, error)
	ListReported(ctx context.Context) ([]domain.Product, error)
	ListByOwner(ctx context.Context, email string) ([]domain.Product, error)
	FindProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, fields map[string]any) (domain.WriteResult, error)
	MakeFeatured(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (domain.WriteResult, error)
	IncrementVote(ctx context.Context, id primitive.ObjectID, dir domain.VoteDirection) (domain.WriteResult, error)
	IncrementReport(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error)
}

type FeedbackStore interface {
	CreateReview(ctx context.Context, r *domain.Review) (domain.WriteResult, error)
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
	CreateReport(ctx context.Context, r *domain.Report) (domain.WriteResult, error)
	ListReports(ctx context.Context, productID string) ([]domain.Report, error)
	AdminStats(ctx context.Context) (domain.AdminStats, error)
}

type CouponStore interface {
	CreateCoupon(ctx context.Context, c *domain.Coupon) (domain.WriteResult, error)
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	UpdateCoupon(ctx context.Context, id primitive.ObjectID, fields map[string]any) (domain.WriteResult, error)
	DeleteCoupon(ctx context.Context, id primitive.ObjectID) (domain.WriteResult, error)
}

// Store is everything the handlers read and write. *repo.Store implements it.
type Store interface {
	UserStore
	ProductStore
	FeedbackStore
	CouponStore
	service.PaymentStore
	Ping(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store    Store
	Tokens   security.TokenService
	Keys     *security.KeyManager // nil unless tokens are RS256
	Voting   *service.Voting
	Payments *service.Payments
	Gateway  payment.Gateway
	Events   queue.Publisher
	Redis    Pinger // optional
}

func NewHandler(store Store, tokens security.TokenService, gw payment.Gateway, pub queue.Publisher) *Handler {
	if pub == nil {
		pub = queue.NewNoop()
	}
	return &Handler{
		Store:    store,
		Tokens:   tokens,
		Gateway:  gw,
		Events:   pub,
		Voting:   &service.Voting{Store: store, Pub: pub},
		Payments: &service.Payments{Store: store, Pub: pub},
	}
}

// pathID parses an ObjectID path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := repo.ParseID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return id, false
	}
	return id, true
}

// bindFields decodes a free-form JSON object body.
func bindFields(c *gin.Context) (map[string]any, bool) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return nil, false
	}
	delete(fields, "_id")
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty update"})
		return nil, false
	}
	return fields, true
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repo.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, repo.ErrNotFound):
		status = http.StatusNotFound
	}
	log.WithDD(c.Request.Context(), log.L(),
		zap.String("op", op), zap.String("request_id", c.GetString(requestIDKey))).
		Error("request failed", zap.Error(err))
	c.JSON(status, gin.H{"error": op + " failed"})
}

// Root godoc
// @Summary Welcome banner
// @Tags system
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to InnovateX!")
}

// Healthz godoc
// @Summary Liveness and dependency check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "redis: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// JWKS godoc
// @Summary Public signing keys
// @Tags auth
// @Produce json
// @Success 200 {object} security.JWKS
// @Failure 404 {object} map[string]string
// @Router /.well-known/jwks.json [get]
func (h *Handler) JWKS(c *gin.Context) {
	if h.Keys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tokens are not signed with published keys"})
		return
	}
	c.JSON(http.StatusOK, h.Keys.JWKS())
}
