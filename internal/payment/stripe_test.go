package payment_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/Tosiqul-Islam-Sopon/InnovateX-server/internal/payment"
)

func fakeStripe(t *testing.T, form *url.Values) *stripe.Backends {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		*form, _ = url.ParseQuery(string(b))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_123","object":"payment_intent","amount":1999,"currency":"usd","client_secret":"pi_123_secret_abc"}`)
	}))
	t.Cleanup(srv.Close)

	return &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:           stripe.String(srv.URL),
			LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
		}),
	}
}

func TestStripe_CreateIntent(t *testing.T) {
	var form url.Values
	gw := payment.NewStripe("sk_test_123", fakeStripe(t, &form))

	in, err := gw.CreateIntent(context.Background(), payment.MinorUnits(19.99), payment.Currency)
	require.NoError(t, err)
	require.Equal(t, "pi_123_secret_abc", in.ClientSecret)
	require.Equal(t, "1999", form.Get("amount"))
	require.Equal(t, "usd", form.Get("currency"))
	require.Equal(t, "card", form.Get("payment_method_types[0]"))
}

func TestStripe_RejectsNonPositiveAmount(t *testing.T) {
	gw := payment.NewStripe("sk_test_123", nil)
	_, err := gw.CreateIntent(context.Background(), 0, payment.Currency)
	require.True(t, errors.Is(err, payment.ErrInvalidAmount))
}

func TestMinorUnits(t *testing.T) {
	require.Equal(t, int64(1999), payment.MinorUnits(19.99))
	require.Equal(t, int64(500), payment.MinorUnits(5))
	require.Equal(t, int64(0), payment.MinorUnits(0.001))
}
