package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/metrics"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/payment"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/service"
)

// CreateCoupon godoc
// @Summary Create a coupon
// @Tags coupons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.Coupon true "coupon document"
// @Success 200 {object} domain.WriteResult
// @Router /coupons [post]
func (h *Handler) CreateCoupon(c *gin.Context) {
	var cp domain.Coupon
	if err := c.ShouldBindJSON(&cp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Store.CreateCoupon(c.Request.Context(), &cp)
	if err != nil {
		h.fail(c, "create coupon", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListCoupons godoc
// @Summary List coupons
// @Tags coupons
// @Produce json
// @Success 200 {array} domain.Coupon
// @Router /coupons [get]
func (h *Handler) ListCoupons(c *gin.Context) {
	items, err := h.Store.ListCoupons(c.Request.Context())
	if err != nil {
		h.fail(c, "list coupons", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	res, err := h.Store.UpdateCoupon(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, "update coupon", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.Store.DeleteCoupon(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "delete coupon", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type intentReq struct {
	Price float64 `json:"price"`
}

type intentResp struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent godoc
// @Summary Start a card payment
// @Tags payments
// @Accept json
// @Produce json
// @Param payload body intentReq true "price in dollars"
// @Success 200 {object} intentResp
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /create_payment_intent [post]
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var in intentReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	intent, err := h.Gateway.CreateIntent(c.Request.Context(), payment.MinorUnits(in.Price), payment.Currency)
	if errors.Is(err, payment.ErrInvalidAmount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("intent_error").Inc()
		zap.L().Error("payment intent failed", zap.String("request_id", c.GetString(requestIDKey)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment processor unavailable"})
		return
	}
	c.JSON(http.StatusOK, intentResp{ClientSecret: intent.ClientSecret})
}

// CompletePayment godoc
// @Summary Record a payment and upgrade the payer
// @Description The insert and the premium flag update are separate writes.
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.Payment true "payment document"
// @Success 200 {object} service.PaymentOutcome
// @Failure 400 {object} map[string]string
// @Router /payments [post]
func (h *Handler) CompletePayment(c *gin.Context) {
	var p domain.Payment
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if p.UserEmail == "" {
		if pr, ok := PrincipalFrom(c); ok {
			p.UserEmail = pr.Email
		}
	}
	out, err := h.Payments.Complete(c.Request.Context(), &p, c.GetString(requestIDKey))
	if errors.Is(err, service.ErrMissingPayer) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, "complete payment", err)
		return
	}
	c.JSON(http.StatusOK, out)
}
