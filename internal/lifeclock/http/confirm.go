package http

import (
	"errors"
	"net/http"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/observability"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/paywall"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

type ConfirmHandler struct {
	PaymentService *service.PaymentService
	SecureCookies  bool
	Metrics        *observability.Metrics
}

type confirmRequest struct {
	SessionID string `json:"session_id"`
}

type confirmResponse struct {
	OK bool `json:"ok"`
}

// ServeHTTP verifies a returned checkout session with the provider and, when
// it is paid, issues the access cookie pair. Denial never sets cookies and
// never leaks which check failed beyond its status code.
func (h *ConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req confirmRequest
	if err := decodeJSONBody(r, &req); err != nil || req.SessionID == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Missing session_id")
		return
	}

	tok, err := h.PaymentService.Confirm(ctx, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotConfigured):
			log.Error("confirm endpoint invoked without payment configuration")
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Payment confirmation is not configured")
		case errors.Is(err, service.ErrPaymentNotCompleted):
			h.Metrics.PaymentsDenied.Inc()
			httpx.WriteError(w, http.StatusPaymentRequired,
				"payment_not_completed", "Payment not completed")
		case errors.Is(err, service.ErrMissingCustomerEmail):
			h.Metrics.PaymentsDenied.Inc()
			httpx.WriteError(w, http.StatusBadRequest,
				"missing_customer_email", "Missing customer email")
		case errors.Is(err, service.ErrSessionLookup):
			h.Metrics.PaymentsDenied.Inc()
			httpx.WriteError(w, http.StatusPaymentRequired,
				"payment_not_completed", "Payment not completed")
		default:
			log.Error("payment confirmation failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Internal Server Error")
		}
		return
	}

	paywall.SetCookies(w, tok, h.SecureCookies)
	h.Metrics.PaymentsConfirmed.Inc()
	httpx.WriteJSON(w, http.StatusOK, confirmResponse{OK: true})
}
