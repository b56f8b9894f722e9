package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/observability"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

// maxFieldLen caps every free-text field in the checkout request body.
const maxFieldLen = 200

type CheckoutHandler struct {
	CheckoutService *service.CheckoutService
	Metrics         *observability.Metrics
}

type checkoutRequest struct {
	ReferralCode string `json:"referralCode"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// ServeHTTP opens a hosted checkout session and returns its redirect URL.
// The body schema is checked field-by-field before anything touches the
// provider; admission control has already happened in the route's rate
// limiter.
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req checkoutRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Request body must be a JSON object")
		return
	}

	for _, f := range []string{req.ReferralCode, req.Email, req.FirstName, req.LastName} {
		if len(f) > maxFieldLen {
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "Field value too long")
			return
		}
	}

	url, err := h.CheckoutService.CreateSession(ctx,
		service.CheckoutRequest{
			ReferralCode: req.ReferralCode,
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		},
		r.Header.Get("Origin"),
		r.Header.Get("Referer"),
		r.Header.Get("Idempotency-Key"),
	)
	if err != nil {
		if errors.Is(err, service.ErrCheckoutNotConfigured) {
			log.Error("checkout endpoint invoked without provider configuration")
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Checkout is not configured")
			return
		}
		// Provider errors stay generic; details are in the logs.
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Unable to create checkout session")
		return
	}

	h.Metrics.CheckoutSessionsCreated.Inc()
	httpx.WriteJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

// decodeJSONBody decodes a JSON object body, rejecting trailing garbage.
func decodeJSONBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
