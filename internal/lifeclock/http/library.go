package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

// LibraryHandler serves one shelf of binary assets. Read is bound to either
// the public books directory or the gated docs directory by the router.
type LibraryHandler struct {
	Read func(name string) ([]byte, error)
}

// ServeHTTP serves a single file as a download. Path parameters arrive
// URL-decoded from the mux, so "%20" names work; validation happens on the
// decoded name.
func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")

	data, err := h.Read(name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFilename):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "Invalid file name")
		case errors.Is(err, service.ErrFileNotFound):
			httpx.WriteError(w, http.StatusNotFound,
				"not_found", "Not found")
		default:
			slogx.FromContext(r.Context()).Error("failed to read library file",
				"file", name, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Internal Server Error")
		}
		return
	}

	writeAttachment(w, name, data, true)
}

// BonusDownloadHandler streams the bundled bonus volume for paying
// customers.
type BonusDownloadHandler struct {
	LibraryService *service.LibraryService
}

const (
	bonusFile         = "The New Testament.pdf"
	bonusDownloadName = "The-New-Testament.pdf"
)

func (h *BonusDownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, err := h.LibraryService.ReadDoc(bonusFile)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "File not found")
			return
		}
		slogx.FromContext(r.Context()).Error("failed to read bonus file", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Internal Server Error")
		return
	}

	writeAttachment(w, bonusDownloadName, data, false)
}

// writeAttachment writes bytes as a forced download. Library files are
// immutable, so public shelf responses carry a long-lived cache header.
func writeAttachment(w http.ResponseWriter, name string, data []byte, cacheable bool) {
	w.Header().Set("Content-Type", service.ContentTypeFor(name))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", url.PathEscape(name)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	if cacheable {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	_, _ = w.Write(data)
}
