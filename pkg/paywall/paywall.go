// Package paywall implements the signed cookie pair that proves a customer
// has completed payment. The server keeps no session state: the claim is the
// customer's email, made tamper-evident with an HMAC-SHA256 signature under a
// server-held secret. Any request can verify the pair without I/O.
package paywall

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cookie names carried by paying customers. Both must be present and
// consistent for access to be granted.
const (
	CookieEmail = "lc_paid_email"
	CookieSig   = "lc_paid_sig"
)

// CookieTTL is how long issued cookies remain valid on the client.
const CookieTTL = 30 * 24 * time.Hour

// SecretSize is the byte length of generated cookie secrets (256 bits).
const SecretSize = 32

// Token is the transport form of a paid-access claim: the normalized identity
// and its hex-encoded HMAC-SHA256 signature.
type Token struct {
	Value     string
	Signature string
}

// Normalize canonicalizes an identity so the same mailbox always maps to the
// same token regardless of input casing or surrounding whitespace. Callers
// must apply the same normalization before comparing identities.
func Normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Sign issues a token for the given identity. The identity is normalized
// before signing.
func Sign(identity string, secret []byte) Token {
	value := Normalize(identity)
	return Token{Value: value, Signature: signValue(value, secret)}
}

// Verify reports whether sig is a valid signature for value under secret.
// It is total: missing inputs, a missing secret, or any mismatch all yield
// false, never a panic. The comparison is constant-time.
func Verify(value, sig string, secret []byte) bool {
	if value == "" || sig == "" || len(secret) == 0 {
		return false
	}
	expected := signValue(value, secret)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func signValue(value string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewSecret generates a random cookie-signing secret, base64url encoded.
func NewSecret() (string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("paywall: failed to generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SetCookies writes the token as the two access cookies on the response.
// Cookies are HttpOnly and SameSite=Lax; the Secure flag is set whenever the
// service is not running in dev.
func SetCookies(w http.ResponseWriter, tok Token, secure bool) {
	for _, c := range cookiePair(tok, secure) {
		http.SetCookie(w, c)
	}
}

// ClearCookies expires both access cookies on the response.
func ClearCookies(w http.ResponseWriter, secure bool) {
	for _, c := range cookiePair(Token{}, secure) {
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func cookiePair(tok Token, secure bool) []*http.Cookie {
	maxAge := int(CookieTTL.Seconds())
	return []*http.Cookie{
		{
			Name:     CookieEmail,
			Value:    tok.Value,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     CookieSig,
			Value:    tok.Signature,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// FromRequest extracts the raw cookie pair from a request. Missing cookies
// come back as empty strings; Verify treats those as invalid.
func FromRequest(r *http.Request) Token {
	var tok Token
	if c, err := r.Cookie(CookieEmail); err == nil {
		tok.Value = c.Value
	}
	if c, err := r.Cookie(CookieSig); err == nil {
		tok.Signature = c.Value
	}
	return tok
}

// VerifyRequest reports whether the request carries a valid access token and
// returns the paid identity when it does. A single failure path covers
// missing cookies, bad signatures, and a missing secret, so callers cannot
// distinguish which part failed.
func VerifyRequest(r *http.Request, secret []byte) (string, bool) {
	tok := FromRequest(r)
	if !Verify(tok.Value, tok.Signature, secret) {
		return "", false
	}
	return tok.Value, true
}
