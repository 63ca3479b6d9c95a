package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
)

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.Product true "product document"
// @Success 200 {object} domain.WriteResult
// @Failure 400 {object} map[string]string
// @Router /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if p.Owner.Email == "" {
		if pr, ok := PrincipalFrom(c); ok {
			p.Owner.Email = pr.Email
			if p.Owner.Name == "" {
				p.Owner.Name = pr.Name
			}
		}
	}
	res, err := h.Store.CreateProduct(c.Request.Context(), &p)
	if err != nil {
		h.fail(c, "create product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListProducts godoc
// @Summary List all products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Router /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	h.list(c, "list products", h.Store.ListProducts)
}

func searchTerms(c *gin.Context) []string { return strings.Fields(c.Query("search")) }

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// PageProducts godoc
// @Summary One page of products, optionally filtered by tag search
// @Tags products
// @Produce json
// @Param page query int false "1-based page" default(1)
// @Param size query int false "page size" default(10)
// @Param search query string false "space separated tag terms"
// @Success 200 {array} domain.Product
// @Router /products/pageProducts [get]
func (h *Handler) PageProducts(c *gin.Context) {
	q := domain.ProductQuery{
		Tags: searchTerms(c),
		Page: queryInt(c, "page"),
		Size: queryInt(c, "size"),
	}
	items, err := h.Store.PageProducts(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "page products", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ProductCount godoc
// @Summary Number of products matching the tag search
// @Tags products
// @Produce json
// @Param search query string false "space separated tag terms"
// @Success 200 {object} map[string]int64
// @Router /products/productCount [get]
func (h *Handler) ProductCount(c *gin.Context) {
	n, err := h.Store.CountProducts(c.Request.Context(), searchTerms(c))
	if err != nil {
		h.fail(c, "count products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) FeaturedProducts(c *gin.Context) {
	h.list(c, "featured products", h.Store.ListFeatured)
}

// TrendingProducts godoc
// @Summary The six most up-voted products
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Router /products/trendingProducts [get]
func (h *Handler) TrendingProducts(c *gin.Context) {
	h.list(c, "trending products", h.Store.ListTrending)
}

func (h *Handler) ReportedProducts(c *gin.Context) {
	h.list(c, "reported products", h.Store.ListReported)
}

func (h *Handler) list(c *gin.Context, op string, fn func(ctx context.Context) ([]domain.Product, error)) {
	items, err := fn(c.Request.Context())
	if err != nil {
		h.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ProductsByOwner godoc
// @Summary Products owned by an email
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param email path string true "owner email"
// @Success 200 {array} domain.Product
// @Router /products/{email} [get]
func (h *Handler) ProductsByOwner(c *gin.Context) {
	items, err := h.Store.ListByOwner(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, "owner products", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetProduct godoc
// @Summary Fetch a product (null when absent)
// @Tags products
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products/product/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Store.FindProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProduct godoc
// @Summary Shallow-merge fields into a product
// @Description Every field in the body overwrites the stored one; other fields are kept.
// @Tags products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "product id"
// @Param payload body map[string]interface{} true "fields"
// @Success 200 {object} domain.WriteResult
// @Failure 400 {object} map[string]string
// @Router /products/updateProduct/{id} [patch]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	res, err := h.Store.UpdateProduct(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, "update product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MakeFeatured godoc
// @Summary Feature a product
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} domain.WriteResult
// @Failure 403 {object} map[string]string
// @Router /products/makeFeatured/{id} [patch]
func (h *Handler) MakeFeatured(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.Store.MakeFeatured(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "feature product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateStatus godoc
// @Summary Set a product's review status
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Param status query string true "e.g. accepted, rejected"
// @Success 200 {object} domain.WriteResult
// @Router /products/updateStatus/{id} [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	res, err := h.Store.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		h.fail(c, "update status", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// IncrementUpVote godoc
// @Summary Increment a product's up-vote counter
// @Tags votes
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} domain.WriteResult
// @Router /products/upVote/{id} [patch]
func (h *Handler) IncrementUpVote(c *gin.Context) { h.increment(c, domain.VoteUp) }

func (h *Handler) IncrementDownVote(c *gin.Context) { h.increment(c, domain.VoteDown) }

func (h *Handler) increment(c *gin.Context, dir domain.VoteDirection) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.Store.IncrementVote(c.Request.Context(), id, dir)
	if err != nil {
		h.fail(c, "increment vote", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ReportProduct godoc
// @Summary Increment a product's report counter
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} domain.WriteResult
// @Router /products/report/{id} [patch]
func (h *Handler) ReportProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, _ := PrincipalFrom(c)
	res, err := h.Voting.RecordReport(c.Request.Context(), id, p.Email, c.GetString(requestIDKey))
	if err != nil {
		h.fail(c, "report product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Vote godoc
// @Summary Vote on a product as the caller
// @Description Increments the counter and records the product in the caller's vote set.
// @Tags votes
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Param direction query string false "up | down" default(up)
// @Success 200 {object} service.VoteOutcome
// @Failure 400 {object} map[string]string
// @Router /products/vote/{id} [post]
func (h *Handler) Vote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dir, err := domain.ParseVoteDirection(c.DefaultQuery("direction", string(domain.VoteUp)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := mustPrincipal(c)
	if err != nil {
		unauthorized(c, "no_principal")
		return
	}
	out, err := h.Voting.Record(c.Request.Context(), id, p.Email, dir)
	if err != nil {
		h.fail(c, "vote", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} domain.WriteResult
// @Router /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.Store.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "delete product", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
