package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/blob"
	"github.com/rdharma/folio/pkg/richtext"
	"github.com/rdharma/folio/pkg/richtext/htmlimport"
	"github.com/rdharma/folio/pkg/richtext/markup"
	"github.com/rdharma/folio/pkg/richtext/present"
)

const (
	formatMarkup = "markup"
	formatHTML   = "html"
)

type previewRequest struct {
	Markup string `json:"markup"`
	Format string `json:"format"`
}

type previewResponse struct {
	Doc    richtext.Document `json:"doc"`
	HTML   string            `json:"html"`
	Markup string            `json:"markup"`
}

// handlePreview converts editor text, markup or pasted HTML, into a
// document, its rendering and its canonical markup.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var doc richtext.Document
	switch req.Format {
	case "", formatMarkup:
		doc = markup.Parse(req.Markup)
	case formatHTML:
		var err error
		doc, err = htmlimport.Convert(req.Markup)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, "Invalid HTML")
			return
		}
	default:
		writeJSONError(w, http.StatusBadRequest, "Unknown format")
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Doc:    doc,
		HTML:   present.HTML(doc),
		Markup: markup.Serialize(doc),
	})
}

type markupRequest struct {
	Doc json.RawMessage `json:"doc"`
}

// handleMarkup serializes a document. A malformed document serializes as
// the empty document.
func (s *Server) handleMarkup(w http.ResponseWriter, r *http.Request) {
	var req markupRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	doc := richtext.Parse(string(req.Doc))
	writeJSON(w, http.StatusOK, map[string]string{"markup": markup.Serialize(doc)})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// uploadLimit bounds an upload request body: the largest storable object
// plus room for the multipart envelope.
func (s *Server) uploadLimit() int64 {
	size := int64(blob.DefaultMaxSize)
	if s.deps.Blobs != nil {
		size = s.deps.Blobs.MaxSize()
	}
	return size + maxBodySize
}

// handleUpload stores the multipart field "file" and returns its URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.uploadLimit()
	if r.ContentLength > limit {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxBodySize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.uploads.WithLabelValues("rejected").Inc()
			writeJSONError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.metrics.uploads.WithLabelValues("invalid").Inc()
		writeJSONError(w, http.StatusBadRequest, "Missing file")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.metrics.uploads.WithLabelValues("invalid").Inc()
		writeJSONError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer func() { _ = file.Close() }()

	if s.deps.Blobs == nil {
		s.metrics.uploads.WithLabelValues("unavailable").Inc()
		writeJSONError(w, http.StatusInternalServerError, "Blob storage unavailable")
		return
	}

	obj, err := s.deps.Blobs.Put(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, blob.ErrNotAllowed):
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusUnsupportedMediaType, "Only images can be uploaded")
		return
	case errors.Is(err, blob.ErrTooLarge):
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSONError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	case err != nil:
		s.metrics.uploads.WithLabelValues("failed").Inc()
		s.logger.Error("upload failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	s.metrics.uploads.WithLabelValues("stored").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"url": obj.URL})
}
