package http

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

const adminUsername = "admin"

// AdminAuthMiddleware guards operator endpoints with HTTP Basic auth checked
// against a bcrypt hash. No hash configured means no admin surface: the
// endpoint fails closed with a 500 rather than falling open.
func AdminAuthMiddleware(passwordHash string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			if passwordHash == "" {
				log.Error("admin endpoint invoked without ADMIN_PASSWORD_HASH")
				httpx.WriteError(w, http.StatusInternalServerError,
					"server_error", "Admin access is not configured")
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || user != adminUsername ||
				bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="lifeclock-admin"`)
				httpx.WriteError(w, http.StatusUnauthorized,
					"unauthorized", "Invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type AdminStatsHandler struct {
	StatsService *service.StatsService
}

type adminPurchase struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referral_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type adminStatsResponse struct {
	TotalPurchases int64           `json:"total_purchases"`
	Recent         []adminPurchase `json:"recent"`
}

// ServeHTTP returns the operator's view of the purchase ledger.
func (h *AdminStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.StatsService.Admin(ctx, 20)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load admin stats", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Failed to load stats")
		return
	}

	resp := adminStatsResponse{
		TotalPurchases: stats.TotalPurchases,
		Recent:         make([]adminPurchase, 0, len(stats.Recent)),
	}
	for _, p := range stats.Recent {
		resp.Recent = append(resp.Recent, adminPurchase{
			ID:           p.ID.String(),
			SessionID:    p.SessionID,
			Email:        p.Email,
			ReferralCode: p.ReferralCode,
			CreatedAt:    p.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
