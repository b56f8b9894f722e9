package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/report"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
)

type stubRenderer struct {
	doc report.Document
	out []byte
	err error
}

func (r *stubRenderer) Render(_ context.Context, doc report.Document) ([]byte, error) {
	r.doc = doc
	return r.out, r.err
}

func validReport() service.ReportRequest {
	revs := make([]string, service.RevelationCount)
	for i := range revs {
		revs[i] = "revelation " + strconv.Itoa(i+1)
	}
	return service.ReportRequest{
		UserName:    "Alice",
		FinalReport: "A long and winding summary.",
		Forces:      []string{"curiosity"},
		Revelations: revs,
	}
}

func TestGenerate(t *testing.T) {
	renderer := &stubRenderer{out: []byte("%PDF-bytes")}
	svc := &service.ReportService{Renderer: renderer}

	data, err := svc.Generate(context.Background(), validReport())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-bytes"), data)
	assert.Equal(t, "Alice", renderer.doc.UserName)
	assert.Len(t, renderer.doc.Revelations, service.RevelationCount)
}

func TestGenerateValidation(t *testing.T) {
	svc := &service.ReportService{Renderer: &stubRenderer{out: []byte("x")}}

	t.Run("missing user name", func(t *testing.T) {
		req := validReport()
		req.UserName = ""
		_, err := svc.Generate(context.Background(), req)
		require.ErrorIs(t, err, service.ErrInvalidReport)
	})

	t.Run("missing final report", func(t *testing.T) {
		req := validReport()
		req.FinalReport = ""
		_, err := svc.Generate(context.Background(), req)
		require.ErrorIs(t, err, service.ErrInvalidReport)
	})

	t.Run("no forces", func(t *testing.T) {
		req := validReport()
		req.Forces = nil
		_, err := svc.Generate(context.Background(), req)
		require.ErrorIs(t, err, service.ErrInvalidReport)
	})

	t.Run("revelation cardinality", func(t *testing.T) {
		req := validReport()
		req.Revelations = req.Revelations[:service.RevelationCount-1]
		_, err := svc.Generate(context.Background(), req)
		require.ErrorIs(t, err, service.ErrInvalidReport)

		req.Revelations = append(req.Revelations, "extra", "extra")
		_, err = svc.Generate(context.Background(), req)
		require.ErrorIs(t, err, service.ErrInvalidReport)
	})
}

func TestGenerateRendererFailures(t *testing.T) {
	t.Run("render error surfaces", func(t *testing.T) {
		cause := errors.New("layout failed")
		svc := &service.ReportService{Renderer: &stubRenderer{err: cause}}
		_, err := svc.Generate(context.Background(), validReport())
		require.ErrorIs(t, err, cause)
	})

	t.Run("empty output rejected", func(t *testing.T) {
		svc := &service.ReportService{Renderer: &stubRenderer{}}
		_, err := svc.Generate(context.Background(), validReport())
		require.ErrorIs(t, err, service.ErrEmptyRender)
	})
}
