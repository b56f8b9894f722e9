package httpx

type ctxKey string

const (
	// CtxKeyPaidEmail carries the verified paying identity for gated routes.
	CtxKeyPaidEmail ctxKey = "paid_email"
)
