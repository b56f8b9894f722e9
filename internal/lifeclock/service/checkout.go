package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/q8244654-ui/lifeclock/pkg/idx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

var (
	// ErrCheckoutNotConfigured means a required provider secret or price id
	// is absent. The endpoint fails closed rather than degrading.
	ErrCheckoutNotConfigured = errors.New("checkout is not configured")
)

// CheckoutRequest is the validated client request to start a purchase.
// All fields are optional; they only enrich provider metadata.
type CheckoutRequest struct {
	ReferralCode string
	Email        string
	FirstName    string
	LastName     string
}

// CheckoutService opens hosted checkout sessions. It owns URL resolution and
// idempotency; admission control happens at the route via the rate limiter.
type CheckoutService struct {
	Provider CheckoutProvider
	PriceID  string
	// BaseURL is the fallback when the request carries no usable Origin or
	// Referer.
	BaseURL string
}

// CreateSession opens a checkout session and returns the hosted URL to
// redirect the customer to. origin and referer come from the request headers;
// idempotencyKey may be empty, in which case one is generated so provider
// retries stay safe.
func (s *CheckoutService) CreateSession(
	ctx context.Context,
	req CheckoutRequest,
	origin, referer, idempotencyKey string,
) (string, error) {
	log := slogx.FromContext(ctx)

	if s.Provider == nil || s.PriceID == "" {
		return "", ErrCheckoutNotConfigured
	}

	baseURL := ResolveBaseURL(origin, referer, s.BaseURL)

	if idempotencyKey == "" {
		idempotencyKey = idx.New().String()
	}

	sess, err := s.Provider.CreateSession(ctx, CreateSessionParams{
		PriceID:        s.PriceID,
		SuccessURL:     baseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      baseURL + "/result",
		ReferralCode:   req.ReferralCode,
		ReferredEmail:  req.Email,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		log.Error("failed to create checkout session", "err", err)
		return "", err
	}

	log.Info("checkout session created", "session_id", sess.ID, "base_url", baseURL)
	return sess.URL, nil
}

// ResolveBaseURL picks the base URL for the provider's redirect targets:
// the Origin header, then the Referer's scheme+host, then the configured
// fallback. Non-localhost http URLs are coerced to https so the provider
// never redirects a customer back over plaintext.
func ResolveBaseURL(origin, referer, fallback string) string {
	baseURL := origin
	if baseURL == "" && referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Host != "" {
			baseURL = u.Scheme + "://" + u.Host
		}
	}
	if baseURL == "" {
		baseURL = fallback
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(fallback, "/")
	}
	if u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		u.Scheme = "https"
	}
	return strings.TrimSuffix(u.String(), "/")
}
