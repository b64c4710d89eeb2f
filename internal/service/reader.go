package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_library.go -package=mocks rawda/internal/service Library
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_page_observer.go -package=mocks rawda/internal/service PageObserver
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_reader_service.go -package=mocks -mock_names=ReaderService=MockReaderService rawda/internal/service ReaderService

import (
	"context"
	"fmt"
	"strconv"

	"rawda/internal/contextutil"
	"rawda/internal/corpus"
	"rawda/internal/markup"
)

const (
	// DescriptionLength is the rune length of a chapter's meta description.
	DescriptionLength = 160
	// MaxVerseWidth bounds a per-request verse width override.
	MaxVerseWidth = 4096
)

// Library reads documents and manifests.
// This interface is defined from the service layer's perspective (consumer-first).
type Library interface {
	// LoadDocument reads a document by name from the first collection that has it.
	LoadDocument(ctx context.Context, name string) (*corpus.Document, error)
	// Collection looks up a collection by name.
	Collection(name string) (corpus.Collection, bool)
	// ListManifest returns the document files of a collection.
	ListManifest(ctx context.Context, c corpus.Collection) ([]string, error)
}

// PageObserver is told about every chapter served. Failures are logged only.
type PageObserver interface {
	ChapterViewed(ctx context.Context, document string, index int) error
}

// ChapterRef identifies one chapter of a document.
type ChapterRef struct {
	ID     string `json:"id"`     // section id, or the positional index when absent
	Index  int    `json:"index"`  // 0-based
	Number int    `json:"number"` // 1-based
	Title  string `json:"title"`
}

// DocumentView is a document's title and chapter index.
type DocumentView struct {
	Name       string       `json:"name"`
	Slug       string       `json:"slug"`
	Collection string       `json:"collection"`
	Title      string       `json:"title"`
	Chapters   []ChapterRef `json:"chapters"`
}

// ChapterRequest selects a chapter to render.
type ChapterRequest struct {
	Document   string
	ChapterID  string  // empty selects the first chapter
	Highlight  string  // term to mark in the rendered content
	VerseWidth float64 // 0 keeps the renderer's default
}

// ChapterView is one rendered chapter with its navigation.
type ChapterView struct {
	Document      string        `json:"document"`
	Slug          string        `json:"slug"`
	Collection    string        `json:"collection"`
	DocumentTitle string        `json:"document_title"`
	Chapter       ChapterRef    `json:"chapter"`
	Section       corpus.Record `json:"section"`
	Total         int           `json:"total"`
	HasPrev       bool          `json:"has_prev"`
	HasNext       bool          `json:"has_next"`
	PrevID        string        `json:"prev_id,omitempty"`
	NextID        string        `json:"next_id,omitempty"`
	Description   string        `json:"description"`
	Render        markup.Result `json:"render"`
}

// ManifestEntry is one document listed in a collection manifest.
type ManifestEntry struct {
	File string `json:"file"`
	Slug string `json:"slug"`
}

// ReaderService resolves documents and chapters for reading.
type ReaderService interface {
	// Document returns the chapter index of a document.
	Document(ctx context.Context, name string) (DocumentView, error)
	// Chapter renders one chapter with prev/next navigation.
	Chapter(ctx context.Context, req ChapterRequest) (ChapterView, error)
	// Manifest lists the documents of a collection.
	Manifest(ctx context.Context, collection string) ([]ManifestEntry, error)
}

// readerService implements ReaderService.
type readerService struct {
	library  Library
	renderer *markup.Renderer
	observer PageObserver
}

// NewReaderService creates a new ReaderService. observer may be nil.
func NewReaderService(library Library, renderer *markup.Renderer, observer PageObserver) ReaderService {
	if renderer == nil {
		renderer = markup.NewRenderer(markup.Options{})
	}
	return &readerService{
		library:  library,
		renderer: renderer,
		observer: observer,
	}
}

// Document returns the chapter index of a document. A document without
// sections yields an empty chapter list, not an error.
func (s *readerService) Document(ctx context.Context, name string) (DocumentView, error) {
	doc, err := s.load(ctx, name)
	if err != nil {
		return DocumentView{}, err
	}
	return DocumentView{
		Name:       doc.Name,
		Slug:       doc.Slug(),
		Collection: doc.Collection,
		Title:      markup.StripMarkup(doc.Title()),
		Chapters:   chapterRefs(doc.Sections()),
	}, nil
}

// Chapter renders the requested chapter.
func (s *readerService) Chapter(ctx context.Context, req ChapterRequest) (ChapterView, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.VerseWidth < 0 || req.VerseWidth > MaxVerseWidth {
		return ChapterView{}, &ValidationError{
			Field:   "width",
			Message: fmt.Sprintf("must be between 0 and %d", MaxVerseWidth),
		}
	}

	doc, err := s.load(ctx, req.Document)
	if err != nil {
		return ChapterView{}, err
	}

	sections := doc.Sections()
	if len(sections) == 0 {
		return ChapterView{}, fmt.Errorf("%w: %s", ErrNoChapters, doc.Name)
	}

	idx, ok := findChapter(sections, req.ChapterID)
	if !ok {
		return ChapterView{}, fmt.Errorf("%w: chapter %q in %s", ErrNotFound, req.ChapterID, doc.Name)
	}

	refs := chapterRefs(sections)
	section := sections[idx]
	view := ChapterView{
		Document:      doc.Name,
		Slug:          doc.Slug(),
		Collection:    doc.Collection,
		DocumentTitle: markup.StripMarkup(doc.Title()),
		Chapter:       refs[idx],
		Section:       section,
		Total:         len(sections),
		HasPrev:       idx > 0,
		HasNext:       idx < len(sections)-1,
		Description:   markup.Truncate(section.Content, DescriptionLength),
		Render:        s.renderer.WithVerseWidth(req.VerseWidth).Render(section.Content, req.Highlight),
	}
	if view.HasPrev {
		view.PrevID = refs[idx-1].ID
	}
	if view.HasNext {
		view.NextID = refs[idx+1].ID
	}

	if s.observer != nil {
		if err := s.observer.ChapterViewed(ctx, doc.Name, idx); err != nil {
			logger.WarnContext(ctx, "page observer failed", "document", doc.Name, "chapter", idx, "error", err)
		}
	}

	logger.DebugContext(ctx, "chapter rendered",
		"document", doc.Name,
		"chapter", view.Chapter.ID,
		"blocks", len(view.Render.Blocks),
		"footnotes", view.Render.Footnotes,
	)
	return view, nil
}

// Manifest lists the documents of a collection in manifest order.
func (s *readerService) Manifest(ctx context.Context, collection string) ([]ManifestEntry, error) {
	c, ok := s.library.Collection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, collection)
	}
	files, err := s.library.ListManifest(ctx, c)
	if err != nil {
		return nil, WrapError(fmt.Errorf("%w: %w", ErrExternalService, err), "failed to list manifest")
	}
	entries := make([]ManifestEntry, 0, len(files))
	for _, f := range files {
		d := corpus.Document{Name: f}
		entries = append(entries, ManifestEntry{File: f, Slug: d.Slug()})
	}
	return entries, nil
}

// load maps corpus errors onto the service taxonomy.
func (s *readerService) load(ctx context.Context, name string) (*corpus.Document, error) {
	doc, err := s.library.LoadDocument(ctx, name)
	if err != nil {
		return nil, corpusError(err, "failed to load document")
	}
	return doc, nil
}

// chapterRefs numbers sections in insertion order. Ids are unique within
// the document; see corpus.ChapterIDs.
func chapterRefs(sections []corpus.Record) []ChapterRef {
	ids := corpus.ChapterIDs(sections)
	refs := make([]ChapterRef, len(sections))
	for i, sec := range sections {
		title := markup.StripMarkup(sec.Title)
		if title == "" {
			title = "فصل " + strconv.Itoa(i+1)
		}
		refs[i] = ChapterRef{ID: ids[i], Index: i, Number: i + 1, Title: title}
	}
	return refs
}

// findChapter resolves a chapter id against the document's chapter ids, so
// a duplicated section id opens its first section. Any other decimal id is
// taken as a 0-based position. An empty id selects the first chapter.
func findChapter(sections []corpus.Record, id string) (int, bool) {
	if id == "" {
		return 0, len(sections) > 0
	}
	for i, ref := range corpus.ChapterIDs(sections) {
		if ref == id {
			return i, true
		}
	}
	if !isDecimal(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id)
	if err != nil || n >= len(sections) {
		return 0, false
	}
	return n, true
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
