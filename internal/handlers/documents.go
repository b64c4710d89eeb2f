package handlers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"rawda/internal/service"
)

// ReaderHandler serves documents, chapters and manifests as JSON.
type ReaderHandler struct {
	reader service.ReaderService
}

// NewReaderHandler creates a new ReaderHandler.
func NewReaderHandler(reader service.ReaderService) *ReaderHandler {
	return &ReaderHandler{
		reader: reader,
	}
}

// GetDocument returns the title and chapter index of a document.
//
// swagger:route GET /api/documents/{name} documents getDocument
//
// # Document chapter index
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Document view
//	'404':
//	  description: Unknown document
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *ReaderHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := pathParam(r, "name")
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid document name")
		return
	}

	view, err := h.reader.Document(ctx, name)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load document")
		return
	}

	writeJSON(ctx, w, http.StatusOK, view)
}

// GetChapter returns one rendered chapter. The q parameter marks a search
// term in the content and width overrides the verse justification width.
func (h *ReaderHandler) GetChapter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := chapterRequest(r)
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid chapter request")
		return
	}

	view, err := h.reader.Chapter(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load chapter")
		return
	}

	writeJSON(ctx, w, http.StatusOK, view)
}

// GetManifest lists the documents of a collection.
func (h *ReaderHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	collection, err := pathParam(r, "collection")
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid collection")
		return
	}

	entries, err := h.reader.Manifest(ctx, collection)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list manifest")
		return
	}

	writeJSON(ctx, w, http.StatusOK, entries)
}

// chapterRequest builds a service request from the route and query string.
func chapterRequest(r *http.Request) (service.ChapterRequest, error) {
	name, err := pathParam(r, "name")
	if err != nil {
		return service.ChapterRequest{}, err
	}
	chapterID, err := url.PathUnescape(chi.URLParam(r, "chapterID"))
	if err != nil {
		return service.ChapterRequest{}, &service.ValidationError{Field: "chapterID", Message: "invalid encoding"}
	}

	req := service.ChapterRequest{
		Document:  name,
		ChapterID: strings.TrimSpace(chapterID),
		Highlight: r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(width) || math.IsInf(width, 0) {
			return service.ChapterRequest{}, &service.ValidationError{Field: "width", Message: "must be a number"}
		}
		req.VerseWidth = width
	}
	return req, nil
}

// pathParam returns a required, unescaped route parameter.
func pathParam(r *http.Request, key string) (string, error) {
	value, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil {
		return "", &service.ValidationError{Field: key, Message: "invalid encoding"}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &service.ValidationError{Field: key, Message: "is required"}
	}
	return value, nil
}
