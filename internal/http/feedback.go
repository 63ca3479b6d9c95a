package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
)

// CreateReview godoc
// @Summary Add a review
// @Tags feedback
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.Review true "review document"
// @Success 200 {object} domain.WriteResult
// @Router /reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	var r domain.Review
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Store.CreateReview(c.Request.Context(), &r)
	if err != nil {
		h.fail(c, "create review", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListReviews godoc
// @Summary Reviews of a product
// @Tags feedback
// @Produce json
// @Param id path string true "product id"
// @Success 200 {array} domain.Review
// @Router /reviews/{id} [get]
func (h *Handler) ListReviews(c *gin.Context) {
	items, err := h.Store.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "list reviews", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateReport godoc
// @Summary File a report record
// @Description Only stores the record. The product counter is bumped by PATCH /products/report/{id}.
// @Tags feedback
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.Report true "report document"
// @Success 200 {object} domain.WriteResult
// @Router /reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	var r domain.Report
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Store.CreateReport(c.Request.Context(), &r)
	if err != nil {
		h.fail(c, "create report", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListReports(c *gin.Context) {
	items, err := h.Store.ListReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "list reports", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AdminStats godoc
// @Summary Dashboard counts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.AdminStats
// @Failure 403 {object} map[string]string
// @Router /adminStates [get]
func (h *Handler) AdminStats(c *gin.Context) {
	st, err := h.Store.AdminStats(c.Request.Context())
	if err != nil {
		h.fail(c, "admin stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
