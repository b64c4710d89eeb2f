package handlers

import (
	"net/http"

	"rawda/internal/contextutil"
	"rawda/internal/service"
)

// SearchHandler handles HTTP requests for paginated corpus search.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// ServeHTTP handles HTTP requests for search.
//
// swagger:route GET /api/search search
//
// # Search the corpus
//
// Returns one page of records whose title or content contains q, title
// matches first. An empty q lists every record.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Search page
//	'400':
//	  description: Invalid query or page
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	page, err := pageParam(r)
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid page")
		return
	}

	result, err := h.searchService.Search(ctx, r.URL.Query().Get("q"), page)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search")
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}
