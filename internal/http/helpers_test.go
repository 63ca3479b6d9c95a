package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	api "github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/http"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/payment"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo/memrepo"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/security"
)

// countingTokens counts Verify calls on top of a real HMAC service.
type countingTokens struct {
	security.TokenService
	mu       sync.Mutex
	verifies int
}

func (c *countingTokens) Verify(tok string) (*security.Claims, error) {
	c.mu.Lock()
	c.verifies++
	c.mu.Unlock()
	return c.TokenService.Verify(tok)
}

type fakeGateway struct {
	amounts []int64
	err     error
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string) (*payment.Intent, error) {
	if amount <= 0 {
		return nil, payment.ErrInvalidAmount
	}
	if f.err != nil {
		return nil, f.err
	}
	f.amounts = append(f.amounts, amount)
	return &payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Amount: amount, Currency: currency}, nil
}

type testEnv struct {
	T       *testing.T
	Store   *memrepo.Store
	Tokens  *countingTokens
	Gateway *fakeGateway
	Router  *gin.Engine
}

func newTestEnv(t *testing.T, opts ...func(*api.RouterOptions)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memrepo.New()
	tokens := &countingTokens{TokenService: security.NewHMAC("test-secret", time.Hour)}
	gw := &fakeGateway{}

	h := api.NewHandler(st, tokens, gw, nil)
	ro := api.RouterOptions{CORSOrigins: []string{"http://localhost:5173"}}
	for _, o := range opts {
		o(&ro)
	}
	r := api.NewRouter(h, api.NewGate(tokens, st), ro)
	return &testEnv{T: t, Store: st, Tokens: tokens, Gateway: gw, Router: r}
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	e.T.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// register creates the user and returns a token for it.
func (e *testEnv) register(email string) string {
	e.T.Helper()
	w := e.do("POST", "/users", `{"email":"`+email+`","name":"T"}`, "")
	require.Equal(e.T, 200, w.Code, w.Body.String())

	w = e.do("POST", "/jwt", `{"email":"`+email+`"}`, "")
	require.Equal(e.T, 200, w.Code, w.Body.String())
	var out struct{ Token string }
	require.NoError(e.T, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(e.T, out.Token)
	return out.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
