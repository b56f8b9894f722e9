package http

import (
	"net/http"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

type StatsHandler struct {
	StatsService *service.StatsService
}

type statsResponse struct {
	Count int64 `json:"count"`
}

// ServeHTTP returns the public customer count used for social proof.
// Ledger failures fall back to the baseline instead of erroring: the count
// is decorative.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.StatsService.SocialProofCount(ctx)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to count purchases", "err", err)
		count = service.SocialProofBaseline
	}

	httpx.WriteJSON(w, http.StatusOK, statsResponse{Count: count})
}
