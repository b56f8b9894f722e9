package domain

import (
	"time"

	"github.com/q8244654-ui/lifeclock/pkg/idx"
)

// Purchase is the record of one confirmed checkout session. Access control
// never reads this table (the signed cookie is the source of truth); it
// exists for the social-proof counter, referral attribution, and so repeated
// confirmations of the same session are observable.
type Purchase struct {
	ID           idx.ID
	SessionID    string // provider checkout session id, unique
	Email        string // normalized (lowercase) customer email
	ReferralCode string
	CreatedAt    time.Time
}
