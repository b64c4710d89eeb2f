package corpus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"rawda/internal/contextutil"
)

// Collection names, in lookup order.
const (
	CollectionArticles = "articles"
	CollectionBooks    = "books"
)

// DefaultCollections returns the article and book collections laid out the
// way the published site stores them. Articles are tried before books.
func DefaultCollections() []Collection {
	return []Collection{
		{Name: CollectionArticles, ManifestPath: "ArticlesIndex.json", Dir: "ArticlesJson"},
		{Name: CollectionBooks, ManifestPath: "Indexes.json", Dir: "BooksJson"},
	}
}

// Accessor resolves document names to records across an ordered list of
// collections. It holds no state across calls other than an optional cache.
type Accessor struct {
	fetcher     Fetcher
	collections []Collection
	cache       *cache.Cache
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithCache enables a process-level cache of parsed documents and manifests.
// Entries expire after ttl; a ttl of zero or less leaves caching disabled.
func WithCache(ttl time.Duration) Option {
	return func(a *Accessor) {
		if ttl > 0 {
			a.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// NewAccessor creates an accessor over the given collections.
// The collection order is the fallback order used by LoadDocument.
func NewAccessor(fetcher Fetcher, collections []Collection, opts ...Option) *Accessor {
	a := &Accessor{
		fetcher:     fetcher,
		collections: append([]Collection(nil), collections...),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collections returns the configured collections in lookup order.
func (a *Accessor) Collections() []Collection {
	return append([]Collection(nil), a.collections...)
}

// Collection returns the collection with the given name.
func (a *Accessor) Collection(name string) (Collection, bool) {
	for _, c := range a.collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// LoadDocument reads a document by name, trying each collection in order and
// stopping at the first one that yields a parseable body.
// Returns an error wrapping ErrNotFound when every collection fails.
func (a *Accessor) LoadDocument(ctx context.Context, name string) (*Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	file, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	for _, c := range a.collections {
		doc, err := a.LoadFromCollection(ctx, c, file)
		if err == nil {
			return doc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.DebugContext(ctx, "document not loaded from collection", "collection", c.Name, "document", file, "error", err)
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
}

// LoadFromCollection reads and parses one document file from a single collection.
func (a *Accessor) LoadFromCollection(ctx context.Context, c Collection, file string) (*Document, error) {
	key := "doc:" + c.Name + "/" + file
	if records, ok := a.cached(key); ok {
		return &Document{Name: file, Collection: c.Name, Records: records.([]Record)}, nil
	}

	data, err := a.fetcher.Fetch(ctx, c.DocumentPath(file))
	if err != nil {
		return nil, err
	}

	records, err := ParseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s/%s: %w", c.Name, file, err)
	}

	a.store(key, records)
	return &Document{Name: file, Collection: c.Name, Records: records}, nil
}

// ListManifest returns the ordered document file names of a collection.
// Returns an error wrapping ErrManifestUnavailable if the manifest cannot be
// fetched or parsed.
func (a *Accessor) ListManifest(ctx context.Context, c Collection) ([]string, error) {
	key := "manifest:" + c.Name
	if files, ok := a.cached(key); ok {
		return append([]string(nil), files.([]string)...), nil
	}

	data, err := a.fetcher.Fetch(ctx, c.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifestUnavailable, c.Name, err)
	}

	files, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifestUnavailable, c.Name, err)
	}

	a.store(key, files)
	return append([]string(nil), files...), nil
}

// Invalidate drops every cached document and manifest.
func (a *Accessor) Invalidate() {
	if a.cache != nil {
		a.cache.Flush()
	}
}

// Ping checks that at least one collection manifest is reachable.
func (a *Accessor) Ping(ctx context.Context) error {
	var errs []error
	for _, c := range a.collections {
		data, err := a.fetcher.Fetch(ctx, c.ManifestPath)
		if err == nil {
			if _, err = ParseManifest(data); err == nil {
				return nil
			}
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}
	return fmt.Errorf("%w: %w", ErrManifestUnavailable, errors.Join(errs...))
}

func (a *Accessor) cached(key string) (any, bool) {
	if a.cache == nil {
		return nil, false
	}
	return a.cache.Get(key)
}

func (a *Accessor) store(key string, value any) {
	if a.cache != nil {
		a.cache.Set(key, value, cache.DefaultExpiration)
	}
}
