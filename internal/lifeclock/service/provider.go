package service

import "context"

// PaymentStatusPaid is the provider payment status meaning funds were
// captured. Anything else denies access.
const PaymentStatusPaid = "paid"

// CheckoutSession is the provider-neutral view of one purchase attempt.
type CheckoutSession struct {
	ID            string
	URL           string // hosted checkout URL to redirect the customer to
	PaymentStatus string
	CustomerEmail string
	ReferralCode  string // echoed back from session metadata
}

// CreateSessionParams carries everything the provider needs to open a
// hosted checkout session.
type CreateSessionParams struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	ReferralCode  string
	ReferredEmail string
	// IdempotencyKey makes retried creation calls safe against duplicate,
	// externally billed sessions.
	IdempotencyKey string
}

// CheckoutProvider is the hosted payment provider boundary. Both calls are
// time-boxed network calls; failures are surfaced, never retried here, so a
// flaky lookup cannot double-charge or duplicate a session.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, p CreateSessionParams) (CheckoutSession, error)
	GetSession(ctx context.Context, id string) (CheckoutSession, error)
}
