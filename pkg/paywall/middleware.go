package paywall

import (
	"context"
	"net/http"

	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

// Middleware guards gated routes. Requests carrying a valid access token
// continue with the paid identity in context; everything else is handed to
// deny before any gated content is produced. Verification failure is normal
// control flow here, not an error.
func Middleware(secret []byte, secure bool, deny http.Handler) httpx.Middleware {
	if deny == nil {
		deny = http.HandlerFunc(DenyJSON)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, ok := VerifyRequest(r, secret)
			if !ok {
				slogx.FromContext(ctx).Info("gated route denied", "path", r.URL.Path)
				// Drop whatever pair was presented so a stale or forged
				// token is not retried on every navigation.
				if tok := FromRequest(r); tok.Value != "" || tok.Signature != "" {
					ClearCookies(w, secure)
				}
				deny.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, httpx.CtxKeyPaidEmail, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DenyJSON is the default denial response for gated API routes.
func DenyJSON(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteError(w, http.StatusUnauthorized,
		"payment_required", "A completed purchase is required to access this resource.")
}

// DenyRedirect returns a denial handler that redirects to a non-gated page,
// for gated routes that are navigated to directly by a browser.
func DenyRedirect(location string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, location, http.StatusSeeOther)
	})
}
