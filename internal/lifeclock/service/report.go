package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/report"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

// RevelationCount is the exact number of revelations a complete report
// carries, one per year of the journey.
const RevelationCount = 47

var (
	// ErrInvalidReport rejects report requests with missing fields or the
	// wrong revelation cardinality.
	ErrInvalidReport = errors.New("invalid report request")

	// ErrEmptyRender means the renderer produced no bytes.
	ErrEmptyRender = errors.New("rendered report is empty")
)

// ReportRenderer renders a document model to a byte buffer.
type ReportRenderer interface {
	Render(ctx context.Context, doc report.Document) ([]byte, error)
}

// ReportRequest is the client-supplied report content.
type ReportRequest struct {
	UserName    string
	FinalReport string
	Forces      []string
	Revelations []string
}

// ReportService validates report content and delegates rendering.
type ReportService struct {
	Renderer ReportRenderer
}

// Generate validates the request and renders the personalized report PDF.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) ([]byte, error) {
	if req.UserName == "" || req.FinalReport == "" || len(req.Forces) == 0 {
		return nil, ErrInvalidReport
	}
	if len(req.Revelations) != RevelationCount {
		return nil, fmt.Errorf("%w: expected %d revelations, got %d",
			ErrInvalidReport, RevelationCount, len(req.Revelations))
	}

	data, err := s.Renderer.Render(ctx, report.Document{
		UserName:    req.UserName,
		FinalReport: req.FinalReport,
		Forces:      req.Forces,
		Revelations: req.Revelations,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("report render failed", "err", err)
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyRender
	}
	return data, nil
}
