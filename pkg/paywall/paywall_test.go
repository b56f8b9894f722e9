package paywall_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/q8244654-ui/lifeclock/pkg/paywall"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("s3cr3t")

	tok := paywall.Sign("alice@example.com", secret)
	require.Equal(t, "alice@example.com", tok.Value)
	require.NotEmpty(t, tok.Signature)
	require.True(t, paywall.Verify(tok.Value, tok.Signature, secret))

	t.Run("wrong secret fails", func(t *testing.T) {
		require.False(t, paywall.Verify(tok.Value, tok.Signature, []byte("wrong")))
	})

	t.Run("signature from another secret fails", func(t *testing.T) {
		other := paywall.Sign("alice@example.com", []byte("another"))
		require.False(t, paywall.Verify(other.Value, other.Signature, secret))
	})
}

func TestNormalization(t *testing.T) {
	secret := []byte("secret")

	upper := paywall.Sign("User@Example.com", secret)
	lower := paywall.Sign("user@example.com", secret)
	require.Equal(t, lower.Value, upper.Value)
	require.Equal(t, lower.Signature, upper.Signature)

	t.Run("whitespace is trimmed", func(t *testing.T) {
		padded := paywall.Sign("  user@example.com \n", secret)
		require.Equal(t, lower.Value, padded.Value)
	})
}

func TestTamperSensitivity(t *testing.T) {
	secret := []byte("secret")
	tok := paywall.Sign("bob@example.com", secret)

	// Flipping any single character of a valid signature must invalidate it.
	for i := range tok.Signature {
		mutated := []byte(tok.Signature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		require.False(t, paywall.Verify(tok.Value, string(mutated), secret),
			"mutation at index %d should fail verification", i)
	}

	t.Run("tampered value fails", func(t *testing.T) {
		require.False(t, paywall.Verify("eve@example.com", tok.Signature, secret))
	})
}

func TestVerifyDegenerateInputs(t *testing.T) {
	secret := []byte("secret")
	tok := paywall.Sign("bob@example.com", secret)

	require.False(t, paywall.Verify("", "", secret))
	require.False(t, paywall.Verify(tok.Value, "", secret))
	require.False(t, paywall.Verify("", tok.Signature, secret))
	require.False(t, paywall.Verify(tok.Value, "deadbeef", secret))

	t.Run("missing secret denies by default", func(t *testing.T) {
		require.False(t, paywall.Verify(tok.Value, tok.Signature, nil))
		require.False(t, paywall.Verify(tok.Value, tok.Signature, []byte{}))
	})
}

func TestSetCookies(t *testing.T) {
	secret := []byte("secret")
	tok := paywall.Sign("alice@example.com", secret)

	rec := httptest.NewRecorder()
	paywall.SetCookies(rec, tok, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	email := byName[paywall.CookieEmail]
	require.NotNil(t, email)
	require.Equal(t, "alice@example.com", email.Value)

	sig := byName[paywall.CookieSig]
	require.NotNil(t, sig)
	require.Equal(t, tok.Signature, sig.Value)

	for _, c := range cookies {
		require.True(t, c.HttpOnly, "%s must be http-only", c.Name)
		require.True(t, c.Secure, "%s must be secure", c.Name)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.Equal(t, "/", c.Path)
		require.Equal(t, int(paywall.CookieTTL.Seconds()), c.MaxAge)
	}
}

func TestVerifyRequest(t *testing.T) {
	secret := []byte("secret")
	tok := paywall.Sign("alice@example.com", secret)

	t.Run("valid pair", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/x.pdf", nil)
		req.AddCookie(&http.Cookie{Name: paywall.CookieEmail, Value: tok.Value})
		req.AddCookie(&http.Cookie{Name: paywall.CookieSig, Value: tok.Signature})

		identity, ok := paywall.VerifyRequest(req, secret)
		require.True(t, ok)
		require.Equal(t, "alice@example.com", identity)
	})

	t.Run("no cookies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/x.pdf", nil)

		_, ok := paywall.VerifyRequest(req, secret)
		require.False(t, ok)
	})

	t.Run("signature cookie missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/x.pdf", nil)
		req.AddCookie(&http.Cookie{Name: paywall.CookieEmail, Value: tok.Value})

		_, ok := paywall.VerifyRequest(req, secret)
		require.False(t, ok)
	})
}

func TestMiddleware(t *testing.T) {
	secret := []byte("secret")
	tok := paywall.Sign("alice@example.com", secret)

	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("gated content"))
	})
	handler := paywall.Middleware(secret, false, nil)(protected)

	t.Run("valid token passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/x.pdf", nil)
		req.AddCookie(&http.Cookie{Name: paywall.CookieEmail, Value: tok.Value})
		req.AddCookie(&http.Cookie{Name: paywall.CookieSig, Value: tok.Signature})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "gated content", rec.Body.String())
	})

	t.Run("no cookies denied without leaking content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/x.pdf", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NotContains(t, rec.Body.String(), "gated content")
	})

	t.Run("forged signature denied and cookies cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/x.pdf", nil)
		req.AddCookie(&http.Cookie{Name: paywall.CookieEmail, Value: tok.Value})
		req.AddCookie(&http.Cookie{Name: paywall.CookieSig, Value: "forged"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		for _, c := range rec.Result().Cookies() {
			require.Equal(t, -1, c.MaxAge, "%s should be expired", c.Name)
		}
	})

	t.Run("redirect denial", func(t *testing.T) {
		redirecting := paywall.Middleware(secret, false, paywall.DenyRedirect("/result"))(protected)
		req := httptest.NewRequest(http.MethodGet, "/bonus", nil)
		rec := httptest.NewRecorder()

		redirecting.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/result", rec.Header().Get("Location"))
	})
}

func TestNewSecret(t *testing.T) {
	a, err := paywall.NewSecret()
	require.NoError(t, err)
	b, err := paywall.NewSecret()
	require.NoError(t, err)

	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
