package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
)

type RouterOptions struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Limiter     Limiter // nil disables rate limiting
	// TrustedProxies may set X-Forwarded-For. Empty trusts none and the
	// client IP is the socket peer.
	TrustedProxies []string
	// TraceService enables Datadog request tracing under this service name.
	TraceService string
}

func NewRouter(h *Handler, gate Gate, opt RouterOptions) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opt.TrustedProxies); err != nil {
		zap.L().Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", opt.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	if opt.TraceService != "" {
		r.Use(gintrace.Middleware(opt.TraceService))
	}
	r.Use(RequestID())
	if opt.Logger != nil {
		r.Use(AccessLog(opt.Logger))
	}
	r.Use(Metrics())
	r.Use(CORS(opt.CORSOrigins))

	limited := func(scope string, hs ...gin.HandlerFunc) []gin.HandlerFunc {
		if opt.Limiter == nil {
			return hs
		}
		return append([]gin.HandlerFunc{RateLimit(opt.Limiter, scope)}, hs...)
	}

	auth := gate.Authenticated()
	admin := auth.Role(domain.RoleAdmin)
	moderator := auth.Role(domain.RoleModerator)

	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/.well-known/jwks.json", h.JWKS)

	r.POST("/jwt", limited("jwt", h.IssueToken)...)

	// users
	r.POST("/users", limited("users", h.RegisterUser)...)
	r.GET("/users", admin.Handle(h.ListUsers)...)
	r.GET("/user/:email", auth.Handle(h.GetUser)...)
	r.GET("/users/admin/:email", auth.Handle(h.IsAdmin)...)
	r.GET("/users/moderator/:email", auth.Handle(h.IsModerator)...)
	r.GET("/users/upVoteStatus/:id", h.UpVoteStatus)
	r.GET("/users/downVoteStatus/:id", h.DownVoteStatus)
	r.PATCH("/user/updateUser/:id", admin.Handle(h.UpdateUserRole)...)
	r.PATCH("/users/upVotes/:id", auth.Handle(h.AppendUpVote)...)
	r.PATCH("/users/downVotes/:id", auth.Handle(h.AppendDownVote)...)

	// products
	r.POST("/products", auth.Handle(h.CreateProduct)...)
	r.GET("/products", h.ListProducts)
	r.GET("/products/pageProducts", h.PageProducts)
	r.GET("/products/productCount", h.ProductCount)
	r.GET("/products/featuredProducts", h.FeaturedProducts)
	r.GET("/products/trendingProducts", h.TrendingProducts)
	r.GET("/products/reportedProducts", moderator.Handle(h.ReportedProducts)...)
	r.GET("/products/:email", auth.Handle(h.ProductsByOwner)...)
	r.GET("/products/product/:id", h.GetProduct)
	r.PATCH("/products/updateProduct/:id", auth.Handle(h.UpdateProduct)...)
	r.PATCH("/products/makeFeatured/:id", moderator.Handle(h.MakeFeatured)...)
	r.PATCH("/products/updateStatus/:id", moderator.Handle(h.UpdateStatus)...)
	r.PATCH("/products/upVote/:id", auth.Handle(h.IncrementUpVote)...)
	r.PATCH("/products/downVote/:id", auth.Handle(h.IncrementDownVote)...)
	r.PATCH("/products/report/:id", auth.Handle(h.ReportProduct)...)
	r.POST("/products/vote/:id", auth.Handle(h.Vote)...)
	r.DELETE("/products/:id", auth.Handle(h.DeleteProduct)...)

	// feedback
	r.POST("/reviews", auth.Handle(h.CreateReview)...)
	r.GET("/reviews/:id", h.ListReviews)
	r.POST("/reports", auth.Handle(h.CreateReport)...)
	r.GET("/reports/:id", moderator.Handle(h.ListReports)...)
	r.GET("/adminStates", admin.Handle(h.AdminStats)...)

	// billing
	r.POST("/coupons", admin.Handle(h.CreateCoupon)...)
	r.GET("/coupons", h.ListCoupons)
	r.PATCH("/coupons/updateCoupon/:id", admin.Handle(h.UpdateCoupon)...)
	r.DELETE("/coupons/deleteCoupon/:id", admin.Handle(h.DeleteCoupon)...)
	r.POST("/create_payment_intent", limited("payment_intent", h.CreatePaymentIntent)...)
	r.POST("/payments", auth.Handle(h.CompletePayment)...)

	return r
}
