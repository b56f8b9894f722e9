package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/paywall"
)

func postConfirm(env *testEnv, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/confirm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestConfirmPaidSession(t *testing.T) {
	env := newTestEnv(t)
	env.provider.sessions["cs_paid"] = service.CheckoutSession{
		ID:            "cs_paid",
		PaymentStatus: "paid",
		CustomerEmail: "Customer@Example.com",
	}

	rec := postConfirm(env, `{"session_id":"cs_paid"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	email := byName[paywall.CookieEmail]
	require.NotNil(t, email)
	assert.Equal(t, "customer@example.com", email.Value, "cookie identity is normalized")
	assert.True(t, email.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, email.SameSite)

	sig := byName[paywall.CookieSig]
	require.NotNil(t, sig)
	assert.True(t, paywall.Verify(email.Value, sig.Value, []byte(testSecret)))

	t.Run("purchase is recorded in the ledger", func(t *testing.T) {
		p, err := env.store.purchases.GetBySessionID(t.Context(), "cs_paid")
		require.NoError(t, err)
		assert.Equal(t, "customer@example.com", p.Email)
	})
}

func TestConfirmUnpaidSession(t *testing.T) {
	env := newTestEnv(t)
	env.provider.sessions["cs_open"] = service.CheckoutSession{
		ID:            "cs_open",
		PaymentStatus: "unpaid",
		CustomerEmail: "customer@example.com",
	}

	rec := postConfirm(env, `{"session_id":"cs_open"}`)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment_not_completed")
	assert.Empty(t, rec.Result().Cookies(), "denial must not set cookies")
}

func TestConfirmPaidWithoutEmail(t *testing.T) {
	env := newTestEnv(t)
	env.provider.sessions["cs_anon"] = service.CheckoutSession{
		ID:            "cs_anon",
		PaymentStatus: "paid",
	}

	rec := postConfirm(env, `{"session_id":"cs_anon"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_customer_email")
	assert.Empty(t, rec.Result().Cookies())
}

func TestConfirmLookupFailure(t *testing.T) {
	env := newTestEnv(t)
	env.provider.getErr = errors.New("provider unreachable")

	rec := postConfirm(env, `{"session_id":"cs_whatever"}`)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestConfirmBadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty object", `{}`},
		{"empty session id", `{"session_id":""}`},
		{"not json", "session_id=cs_123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postConfirm(env, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid_request")
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestConfirmNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.router.PaymentService = &service.PaymentService{
		Provider:     nil,
		Store:        env.store,
		CookieSecret: []byte(testSecret),
	}
	// Routes hold the handler built at ApplyRoutes time, so rebuild.
	env.router.Mux = http.NewServeMux()
	env.router.ApplyRoutes()

	rec := postConfirm(env, `{"session_id":"cs_123"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "server_error")
	assert.Empty(t, rec.Result().Cookies())
}

func TestConfirmReplayIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.provider.sessions["cs_replay"] = service.CheckoutSession{
		ID:            "cs_replay",
		PaymentStatus: "paid",
		CustomerEmail: "customer@example.com",
	}

	first := postConfirm(env, `{"session_id":"cs_replay"}`)
	second := postConfirm(env, `{"session_id":"cs_replay"}`)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	// Re-derived token is byte-identical and the ledger keeps a single row.
	firstCookies := first.Result().Cookies()
	secondCookies := second.Result().Cookies()
	require.Len(t, firstCookies, 2)
	require.Len(t, secondCookies, 2)
	for i := range firstCookies {
		assert.Equal(t, firstCookies[i].Value, secondCookies[i].Value)
	}

	count, err := env.store.purchases.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
