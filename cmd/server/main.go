// @title       InnovateX API
// @version     1.0
// @description Product discovery backend: users, products, votes, reviews, reports, coupons and payments.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/config"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/log"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/metrics"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/payment"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/queue"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/security"

	_ "github.com/Tosiqul-Islam-Sopon/InnovateX-server/docs"
	api "github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.Init(cfg.LogProd)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.MustRegister()

	if cfg.DDEnabled {
		tracer.Start(tracer.WithService(cfg.DDService), tracer.WithEnv(cfg.DDEnv))
		defer tracer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())
	store.VoteDedup = cfg.VoteDedup

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	var limiter api.Limiter = api.NewLocalLimiter(cfg.RateLimitPerMin)
	var rdb *repo.Redis
	if cfg.RedisAddr != "" {
		rdb = repo.NewRedis(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, limiter fails open until it is back", zap.Error(err))
		}
		limiter = api.NewRedisLimiter(rdb, cfg.RateLimitPerMin)
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		if pub, err = queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange); err != nil {
			logger.Fatal("rabbit publisher", zap.Error(err))
		}
	}
	defer pub.Close()

	gw, err := newGateway(cfg)
	if err != nil {
		logger.Fatal("payment gateway", zap.Error(err))
	}

	tokens, keys, err := newTokens(cfg)
	if err != nil {
		logger.Fatal("token signer", zap.Error(err))
	}

	h := api.NewHandler(store, tokens, gw, pub)
	h.Keys = keys
	if rdb != nil {
		h.Redis = rdb
	}

	opt := api.RouterOptions{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,

		TrustedProxies: cfg.TrustedProxies,
	}
	if cfg.DDEnabled {
		opt.TraceService = cfg.DDService
	}
	r := api.NewRouter(h, api.NewGate(tokens, store), opt)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	logger.Info("InnovateX is sitting on port", zap.String("port", cfg.Port),
		zap.String("payments", cfg.PaymentProvider), zap.String("jwt", cfg.JWTAlg))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdown, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdown); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newGateway(cfg config.Config) (payment.Gateway, error) {
	if cfg.PaymentProvider == "omise" {
		return payment.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.OmiseSourceType)
	}
	return payment.NewStripe(cfg.StripeSecretKey, nil), nil
}

func newTokens(cfg config.Config) (security.TokenService, *security.KeyManager, error) {
	if strings.ToUpper(cfg.JWTAlg) == "RS256" {
		km, err := security.NewKeyManager(cfg.JWTActiveKid, cfg.JWTActiveKey, cfg.JWTNextKid, cfg.JWTNextKey)
		if err != nil {
			return nil, nil, err
		}
		return security.NewRSA(km, cfg.TokenTTL), km, nil
	}
	return security.NewHMAC(cfg.JWTSecret, cfg.TokenTTL), nil, nil
}
