package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

type ReportHandler struct {
	ReportService *service.ReportService
}

type reportRequest struct {
	UserName    string   `json:"userName"`
	FinalReport string   `json:"finalReport"`
	Forces      []string `json:"forces"`
	Revelations []string `json:"revelations"`
}

// ServeHTTP renders the personalized report PDF for a paying customer.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reportRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Request body must be a JSON object")
		return
	}

	data, err := h.ReportService.Generate(ctx, service.ReportRequest{
		UserName:    req.UserName,
		FinalReport: req.FinalReport,
		Forces:      req.Forces,
		Revelations: req.Revelations,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidReport) {
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request",
				fmt.Sprintf("Report requires userName, finalReport, forces, and exactly %d revelations",
					service.RevelationCount))
			return
		}
		slogx.FromContext(ctx).Error("failed to generate report", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q",
			fmt.Sprintf("LifeClock-%s-%d.pdf", req.UserName, time.Now().UnixMilli())))
	_, _ = w.Write(data)
}
