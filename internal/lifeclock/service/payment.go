package service

import (
	"context"
	"errors"
	"time"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/domain"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/store"
	"github.com/q8244654-ui/lifeclock/pkg/idx"
	"github.com/q8244654-ui/lifeclock/pkg/paywall"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

var (
	// ErrPaymentNotConfigured means the cookie-signing secret or provider
	// key is absent; confirmation fails closed.
	ErrPaymentNotConfigured = errors.New("payment confirmation is not configured")

	// ErrSessionLookup covers provider lookup failures. Not retried here:
	// the client may resubmit, which is harmless.
	ErrSessionLookup = errors.New("checkout session lookup failed")

	// ErrPaymentNotCompleted means the session exists but its payment
	// status is not "paid".
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrMissingCustomerEmail means the session is paid but carries no
	// customer email, so there is no identity to issue a token for.
	ErrMissingCustomerEmail = errors.New("customer email missing")
)

// PaymentService turns a returned checkout session id into a signed access
// token. The server stays stateless between the redirect and the return; the
// only state written is the advisory purchase ledger row.
type PaymentService struct {
	Provider     CheckoutProvider
	Store        store.Store
	CookieSecret []byte
}

// Confirm verifies the session with the provider and, when it is paid and
// has a customer email, returns the access token for that identity.
// Confirming the same session id again deterministically re-derives the same
// token, so replays are harmless.
func (s *PaymentService) Confirm(ctx context.Context, sessionID string) (paywall.Token, error) {
	log := slogx.FromContext(ctx)

	if s.Provider == nil || len(s.CookieSecret) == 0 {
		return paywall.Token{}, ErrPaymentNotConfigured
	}

	sess, err := s.Provider.GetSession(ctx, sessionID)
	if err != nil {
		log.Warn("checkout session lookup failed", "session_id", sessionID, "err", err)
		return paywall.Token{}, errors.Join(ErrSessionLookup, err)
	}

	if sess.PaymentStatus != PaymentStatusPaid {
		log.Info("confirmation denied: not paid",
			"session_id", sessionID, "payment_status", sess.PaymentStatus)
		return paywall.Token{}, ErrPaymentNotCompleted
	}

	if sess.CustomerEmail == "" {
		log.Warn("confirmation denied: paid session without customer email",
			"session_id", sessionID)
		return paywall.Token{}, ErrMissingCustomerEmail
	}

	tok := paywall.Sign(sess.CustomerEmail, s.CookieSecret)

	s.recordPurchase(ctx, sess)

	log.Info("payment confirmed", "session_id", sessionID)
	return tok, nil
}

// recordPurchase writes the ledger row. The ledger is advisory (social proof,
// referral attribution), so a write failure is logged but never blocks a
// customer who has already paid.
func (s *PaymentService) recordPurchase(ctx context.Context, sess CheckoutSession) {
	if s.Store == nil {
		return
	}

	err := s.Store.Purchases().Record(ctx, domain.Purchase{
		ID:           idx.New(),
		SessionID:    sess.ID,
		Email:        paywall.Normalize(sess.CustomerEmail),
		ReferralCode: sess.ReferralCode,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to record purchase",
			"session_id", sess.ID, "err", err)
	}
}
