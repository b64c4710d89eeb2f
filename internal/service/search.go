package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_catalog.go -package=mocks rawda/internal/service Catalog
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_service.go -package=mocks -mock_names=SearchService=MockSearchService rawda/internal/service SearchService

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"rawda/internal/contextutil"
	"rawda/internal/corpus"
	"rawda/internal/markup"
	"rawda/internal/paginate"
	"rawda/internal/search"
)

const (
	// PreviewLength is the rune length of a result preview.
	PreviewLength = 150
	// MaxQueryLength bounds a search query, in runes.
	MaxQueryLength = 200

	untitled       = "بدون عنوان"
	titlePreview   = "🌟 هذا عنوان رئيسي يحتوي على محتوى قيم ومفيد للقارئ"
	emptyPreview   = "لا يوجد محتوى متاح في هذا القسم"
	chapterURLBase = "/chapters/"
)

// Catalog searches and lists corpus records.
// This interface is defined from the service layer's perspective (consumer-first).
type Catalog interface {
	// Search returns records matching query, title matches first.
	Search(ctx context.Context, query string) ([]search.Hit, error)
	// ListAll returns every record of every document.
	ListAll(ctx context.Context) ([]search.Hit, error)
}

// SearchResult is a hit prepared for display.
type SearchResult struct {
	Document   string           `json:"document"`
	Slug       string           `json:"slug"`
	Collection string           `json:"collection"`
	Type       string           `json:"type"`
	ChapterID  string           `json:"chapter_id,omitempty"`
	Title      []markup.Segment `json:"title"`
	Preview    []markup.Segment `json:"preview"`
	TitleMatch bool             `json:"title_match"`
	URL        string           `json:"url"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Query   string                         `json:"query"`
	Browse  bool                           `json:"browse"`
	Results paginate.Result[SearchResult] `json:"results"`
}

// SearchService runs paginated searches.
type SearchService interface {
	// Search returns page of the results for query. An empty query lists
	// every record; a query shorter than search.MinQueryLength yields no results.
	Search(ctx context.Context, query string, page int) (SearchPage, error)
}

// searchService implements SearchService.
type searchService struct {
	catalog   Catalog
	paginator paginate.Paginator
}

// NewSearchService creates a new SearchService.
func NewSearchService(catalog Catalog, paginator paginate.Paginator) SearchService {
	return &searchService{
		catalog:   catalog,
		paginator: paginator,
	}
}

// Search runs query and returns the requested page. Only the hits on that
// page are turned into previews.
func (s *searchService) Search(ctx context.Context, query string, page int) (SearchPage, error) {
	logger := contextutil.LoggerFromContext(ctx)
	query = strings.TrimSpace(query)

	if utf8.RuneCountInString(query) > MaxQueryLength {
		return SearchPage{}, &ValidationError{
			Field:   "q",
			Message: fmt.Sprintf("must be at most %d characters", MaxQueryLength),
		}
	}

	browse := query == ""
	var (
		hits []search.Hit
		err  error
	)
	if browse {
		hits, err = s.catalog.ListAll(ctx)
	} else {
		hits, err = s.catalog.Search(ctx, query)
	}
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "query", query, "error", err)
		return SearchPage{}, WrapError(err, "search failed")
	}

	paged := paginate.Paginate(hits, s.paginator.Size(), page)
	results := make([]SearchResult, len(paged.Items))
	for i, h := range paged.Items {
		results[i] = PresentHit(h, query)
	}

	logger.InfoContext(ctx, "search completed",
		"query", query,
		"browse", browse,
		"total_items", paged.TotalItems,
		"page", paged.Page,
	)
	return SearchPage{
		Query:  query,
		Browse: browse,
		Results: paginate.Result[SearchResult]{
			Items:      results,
			Page:       paged.Page,
			PageSize:   paged.PageSize,
			TotalPages: paged.TotalPages,
			TotalItems: paged.TotalItems,
			Window:     paged.Window,
		},
	}, nil
}

// PresentHit prepares a hit for display with query highlighted in its
// title and preview.
func PresentHit(h search.Hit, query string) SearchResult {
	doc := corpus.Document{Name: h.Document}
	chapterID := hitChapterID(h)
	return SearchResult{
		Document:   h.Document,
		Slug:       doc.Slug(),
		Collection: h.Collection,
		Type:       h.Record.Type,
		ChapterID:  chapterID,
		Title:      markup.Highlight(ResultTitle(h.Record), query),
		Preview:    markup.Highlight(ResultPreview(h.Record), query),
		TitleMatch: h.TitleMatch,
		URL:        ChapterURL(doc.Slug(), chapterID, query),
	}
}

// hitChapterID returns the chapter id that opens a hit. Sections without a
// resolved id fall back to their position.
func hitChapterID(h search.Hit) string {
	switch {
	case h.ChapterID != "":
		return h.ChapterID
	case h.Record.ID != "":
		return h.Record.ID
	case h.Record.IsSection():
		return strconv.Itoa(h.Section)
	}
	return ""
}

// ResultTitle returns the display title of a record: the content of a title
// record, otherwise its title or content, stripped of markup.
func ResultTitle(r corpus.Record) string {
	var t string
	if r.Type == corpus.TypeTitle {
		t = markup.Preview(r.Content, PreviewLength)
	} else {
		t = markup.Preview(r.Title, PreviewLength)
		if t == "" {
			t = markup.Preview(r.Content, PreviewLength)
		}
	}
	if t == "" {
		return untitled
	}
	return t
}

// ResultPreview returns the preview text shown under a result title.
func ResultPreview(r corpus.Record) string {
	if r.Type == corpus.TypeTitle {
		return titlePreview
	}
	if p := markup.Preview(r.Content, PreviewLength); p != "" {
		return p
	}
	return emptyPreview
}

// ChapterURL returns the reading page link for a chapter. The highlight
// query, when given, is carried in q. Without a chapter id the link opens
// the document.
func ChapterURL(slug, chapterID, query string) string {
	u := chapterURLBase + url.PathEscape(slug)
	if chapterID != "" {
		u += "/" + url.PathEscape(chapterID)
	}
	if query != "" {
		u += "?" + url.Values{"q": {query}}.Encode()
	}
	return u
}
