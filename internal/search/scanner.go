package search

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks rawda/internal/search Searcher

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"rawda/internal/contextutil"
	"rawda/internal/corpus"
)

const (
	// MinQueryLength is the shortest trimmed query, in runes, that triggers a scan.
	MinQueryLength = 2
	// DefaultConcurrency bounds simultaneous document loads.
	DefaultConcurrency = 16
	// DefaultTimeout bounds a whole scan.
	DefaultTimeout = 10 * time.Second
)

// Hit is a record matched by a query, tagged with its source document.
// Section is the record's 0-based position among the document's sections
// and ChapterID the id that opens it; both are zero for other records.
type Hit struct {
	Record     corpus.Record `json:"record"`
	Document   string        `json:"document"`
	Collection string        `json:"collection"`
	Section    int           `json:"section"`
	ChapterID  string        `json:"chapter_id,omitempty"`
	TitleMatch bool          `json:"title_match"`
}

// Searcher runs a query over the corpus.
type Searcher interface {
	// Search returns matching records, title matches first.
	// Queries shorter than MinQueryLength return an empty result without I/O.
	Search(ctx context.Context, query string) ([]Hit, error)
}

// Scanner is a Searcher that linearly scans every document of every collection.
type Scanner struct {
	accessor    *corpus.Accessor
	concurrency int
	timeout     time.Duration
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency sets the maximum number of documents loaded at once.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithTimeout bounds a whole scan. Documents still loading when it elapses
// contribute no hits.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewScanner creates a scanner over the accessor's collections.
func NewScanner(accessor *corpus.Accessor, opts ...Option) *Scanner {
	s := &Scanner{
		accessor:    accessor,
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// docRef locates one document file in a collection.
type docRef struct {
	collection corpus.Collection
	file       string
}

// Search scans the corpus for records whose title or content contains query,
// compared case-insensitively. Per-document and per-manifest failures are
// logged and skipped; the only error returned is the caller's context error.
func (s *Scanner) Search(ctx context.Context, query string) ([]Hit, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []Hit{}, nil
	}
	needle := cases.Fold().String(q)

	hits, err := s.scan(ctx, func(doc *corpus.Document) []Hit {
		return matchDocument(doc, needle)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].TitleMatch && !hits[j].TitleMatch
	})

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "search completed", "query", q, "hits", len(hits))
	return hits, nil
}

// ListAll returns every record of every document in discovery order.
func (s *Scanner) ListAll(ctx context.Context) ([]Hit, error) {
	return s.scan(ctx, func(doc *corpus.Document) []Hit {
		return documentHits(doc, func(corpus.Record) (bool, bool) { return true, false })
	})
}

// scan loads every document and collects fn's hits in manifest order.
func (s *Scanner) scan(ctx context.Context, fn func(*corpus.Document) []Hit) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	refs, err := s.documentRefs(scanCtx, logger)
	if err != nil {
		return nil, err
	}
	results := make([][]Hit, len(refs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			if scanCtx.Err() != nil {
				return nil
			}
			doc, err := s.accessor.LoadFromCollection(scanCtx, ref.collection, ref.file)
			if err != nil {
				logger.DebugContext(ctx, "document skipped", "collection", ref.collection.Name, "document", ref.file, "error", err)
				return nil
			}
			results[i] = fn(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scanCtx.Err() != nil {
		logger.WarnContext(ctx, "scan timed out, returning partial results", "timeout", s.timeout.String())
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	hits := make([]Hit, 0, total)
	for _, r := range results {
		hits = append(hits, r...)
	}
	return hits, nil
}

// documentRefs loads every manifest concurrently and returns the document
// files in collection order. A failed manifest is logged and skipped.
func (s *Scanner) documentRefs(ctx context.Context, logger *slog.Logger) ([]docRef, error) {
	collections := s.accessor.Collections()
	manifests := make([][]string, len(collections))

	var g errgroup.Group
	for i, c := range collections {
		g.Go(func() error {
			files, err := s.accessor.ListManifest(ctx, c)
			if err != nil {
				logger.WarnContext(ctx, "manifest unavailable", "collection", c.Name, "error", err)
				return nil
			}
			manifests[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var refs []docRef
	for i, files := range manifests {
		for _, f := range files {
			refs = append(refs, docRef{collection: collections[i], file: f})
		}
	}
	return refs, nil
}

// matchDocument returns the non-title records of doc that contain needle,
// which must already be case-folded.
func matchDocument(doc *corpus.Document, needle string) []Hit {
	fold := cases.Fold()
	return documentHits(doc, func(r corpus.Record) (bool, bool) {
		if r.Type == corpus.TypeTitle {
			return false, false
		}
		titleMatch := r.Title != "" && strings.Contains(fold.String(r.Title), needle)
		return titleMatch || strings.Contains(fold.String(r.Content), needle), titleMatch
	})
}

// documentHits returns the records of doc selected by match, with section
// records located by position and chapter id.
func documentHits(doc *corpus.Document, match func(corpus.Record) (ok, titleMatch bool)) []Hit {
	var ids []string
	var hits []Hit
	section := -1
	for _, r := range doc.Records {
		if r.IsSection() {
			section++
		}
		ok, titleMatch := match(r)
		if !ok {
			continue
		}
		h := Hit{
			Record:     r,
			Document:   doc.Name,
			Collection: doc.Collection,
			TitleMatch: titleMatch,
		}
		if r.IsSection() {
			if ids == nil {
				ids = corpus.ChapterIDs(doc.Sections())
			}
			h.Section = section
			h.ChapterID = ids[section]
		}
		hits = append(hits, h)
	}
	return hits
}
