package corpus

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fetcher.go -package=mocks rawda/internal/corpus Fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// maxDocumentBytes bounds a single fetched body.
const maxDocumentBytes = 32 << 20

// Fetcher reads raw JSON bodies keyed by a slash-separated path relative to
// the content root.
type Fetcher interface {
	// Fetch returns the body stored at path.
	// Returns an error wrapping ErrNotFound if nothing is stored there.
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FSFetcher reads content from a directory on the local filesystem.
type FSFetcher struct {
	root string
}

// NewFSFetcher creates a fetcher rooted at dir.
func NewFSFetcher(dir string) *FSFetcher {
	return &FSFetcher{root: filepath.Clean(dir)}
}

// Root returns the content root directory.
func (f *FSFetcher) Root() string {
	return f.root
}

// Fetch reads the file at p below the root.
func (f *FSFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := cleanContentPath(p)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

// HTTPFetcher reads content from a static file server.
type HTTPFetcher struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher that issues GET requests below baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch issues GET BaseURL/p and returns the body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	rel, err := cleanContentPath(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/"+escapePath(rel), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rel, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", rel, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", rel, err)
	}
	return body, nil
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// cleanContentPath normalizes a content path and rejects traversal outside the root.
func cleanContentPath(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidName)
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: path traversal in %q", ErrInvalidName, p)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, p)
	}
	return cleaned, nil
}
