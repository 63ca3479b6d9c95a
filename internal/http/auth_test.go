package http_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/domain"
	api "github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/http"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/repo/memrepo"
	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/security"
)

func (e *testEnv) promote(email string, role domain.Role) {
	e.T.Helper()
	ctx := context.Background()
	u, err := e.Store.FindUserByEmail(ctx, email)
	require.NoError(e.T, err)
	require.NotNil(e.T, u)
	_, err = e.Store.SetUserRole(ctx, u.ID, role)
	require.NoError(e.T, err)
}

func Test_Promotion_TakesEffectWithoutNewToken(t *testing.T) {
	env := newTestEnv(t)
	tok := env.register("a@x.com")

	w := env.do("GET", "/users", "", tok)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	env.promote("a@x.com", domain.RoleAdmin)

	w = env.do("GET", "/users", "", tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	users := decode[[]domain.User](t, w)
	require.Len(t, users, 1)
	require.Equal(t, "a@x.com", users[0].Email)

	// and back: demotion is just as immediate
	env.promote("a@x.com", domain.RoleModerator)
	w = env.do("GET", "/users", "", tok)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func Test_Roles_AreNotHierarchical(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register("admin@x.com")
	mod := env.register("mod@x.com")
	env.promote("admin@x.com", domain.RoleAdmin)
	env.promote("mod@x.com", domain.RoleModerator)

	require.Equal(t, http.StatusForbidden, env.do("GET", "/products/reportedProducts", "", admin).Code)
	require.Equal(t, http.StatusOK, env.do("GET", "/products/reportedProducts", "", mod).Code)
	require.Equal(t, http.StatusForbidden, env.do("GET", "/adminStates", "", mod).Code)
	require.Equal(t, http.StatusOK, env.do("GET", "/adminStates", "", admin).Code)
}

func Test_MissingHeader_DoesNotVerify(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/user/a@x.com", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 0, env.Tokens.verifies)

	w = env.do("GET", "/user/a@x.com", "", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 1, env.Tokens.verifies)
}

func Test_HeaderWithoutToken_IsRejected(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/user/a@x.com", nil)
	req.Header.Set("Authorization", "Bearer")
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_ExpiredToken_IsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.register("old@x.com")

	past := func() time.Time { return time.Now().Add(-61 * time.Minute) }
	old, err := security.NewHMAC("test-secret", time.Hour, security.WithClock(past)).
		Issue(security.Claims{Email: "old@x.com"})
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, env.do("GET", "/user/old@x.com", "", old).Code)
}

func Test_RequireRole_WithoutAuthentication_FailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memrepo.New()
	gate := api.NewGate(security.NewHMAC("s", time.Hour), st)

	r := gin.New()
	r.GET("/misconfigured", gate.RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "reached")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/misconfigured", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_AuthChain_PutsAuthenticationFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memrepo.New()
	tokens := security.NewHMAC("s", time.Hour)
	gate := api.NewGate(tokens, st)

	chain := gate.Authenticated().Role(domain.RoleAdmin).Handle(func(c *gin.Context) { c.Status(http.StatusNoContent) })
	require.Len(t, chain, 3)

	r := gin.New()
	r.GET("/x", chain...)

	_, _, _ = st.CreateUserIfAbsent(context.Background(), &domain.User{Email: "root@x.com", Role: domain.RoleAdmin})
	tok, err := tokens.Issue(security.Claims{Email: "root@x.com"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func Test_RoleProbe_OnlyForSelf(t *testing.T) {
	env := newTestEnv(t)
	tok := env.register("me@x.com")
	env.register("other@x.com")
	env.promote("me@x.com", domain.RoleModerator)

	w := env.do("GET", "/users/moderator/me@x.com", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]bool{"moderator": true}, decode[map[string]bool](t, w))

	w = env.do("GET", "/users/admin/me@x.com", "", tok)
	require.Equal(t, map[string]bool{"admin": false}, decode[map[string]bool](t, w))

	require.Equal(t, http.StatusForbidden, env.do("GET", "/users/admin/other@x.com", "", tok).Code)
}

func Test_Register_IsIdempotentAndIgnoresSelfGrantedRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/users", `{"email":"r@x.com","role":"admin","photo":"p.png"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[map[string]any](t, w)
	require.Equal(t, true, res["acknowledged"])
	require.NotEmpty(t, res["insertedId"])

	w = env.do("POST", "/users", `{"email":"r@x.com"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"message": "user already exist"}, decode[map[string]any](t, w))

	u, _ := env.Store.FindUserByEmail(context.Background(), "r@x.com")
	require.Equal(t, domain.RoleUnset, u.Role)
	require.Equal(t, "p.png", u.Extra["photo"])
}

func Test_UpdateUserRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register("admin@x.com")
	env.register("u@x.com")
	env.promote("admin@x.com", domain.RoleAdmin)
	u, _ := env.Store.FindUserByEmail(context.Background(), "u@x.com")

	w := env.do("PATCH", "/user/updateUser/"+u.ID.Hex()+"?role=moderator", "", admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[domain.WriteResult](t, w)
	require.True(t, res.Modified())

	require.Equal(t, http.StatusBadRequest, env.do("PATCH", "/user/updateUser/"+u.ID.Hex()+"?role=root", "", admin).Code)
	require.Equal(t, http.StatusBadRequest, env.do("PATCH", "/user/updateUser/nope?role=admin", "", admin).Code)
}

func Test_RateLimit_OnTokenIssue(t *testing.T) {
	env := newTestEnv(t, func(o *api.RouterOptions) { o.Limiter = api.NewLocalLimiter(1) })

	require.Equal(t, http.StatusOK, env.do("POST", "/jwt", `{"email":"a@x.com"}`, "").Code)
	require.Equal(t, http.StatusTooManyRequests, env.do("POST", "/jwt", `{"email":"a@x.com"}`, "").Code)
}

func Test_RateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	env := newTestEnv(t, func(o *api.RouterOptions) { o.Limiter = api.NewLocalLimiter(1) })

	post := func(xff string) int {
		req := httptest.NewRequest("POST", "/jwt", bytes.NewBufferString(`{"email":"a@x.com"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, req)
		return w.Code
	}
	require.Equal(t, http.StatusOK, post("10.0.0.1"))
	for i := 2; i <= 4; i++ {
		require.Equal(t, http.StatusTooManyRequests, post(fmt.Sprintf("10.0.0.%d", i)))
	}
}

func Test_RateLimit_HonoursForwardedForFromTrustedProxy(t *testing.T) {
	env := newTestEnv(t, func(o *api.RouterOptions) {
		o.Limiter = api.NewLocalLimiter(1)
		o.TrustedProxies = []string{"192.0.2.0/24"}
	})

	post := func(xff string) int {
		req := httptest.NewRequest("POST", "/jwt", bytes.NewBufferString(`{"email":"a@x.com"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, req)
		return w.Code
	}
	require.Equal(t, http.StatusOK, post("10.0.0.1"))
	require.Equal(t, http.StatusOK, post("10.0.0.2"))
	require.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
}
