package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record types found in document files.
const (
	TypeTitle   = "title"
	TypeSection = "section"
)

var (
	// ErrNotFound is returned when a document or manifest is absent.
	ErrNotFound = errors.New("document not found")
	// ErrParse is returned when a document body is not valid JSON.
	ErrParse = errors.New("document parse failure")
	// ErrManifestUnavailable is returned when a collection manifest cannot be read.
	ErrManifestUnavailable = errors.New("manifest unavailable")
	// ErrInvalidName is returned for document names that could escape a collection.
	ErrInvalidName = errors.New("invalid document name")
)

// Record is one tagged unit of a document: a title marker or a section body.
type Record struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// IsSection reports whether the record is a chapter body.
func (r Record) IsSection() bool {
	return r.Type == TypeSection
}

// Collection is a flat namespace of document files with its own manifest.
type Collection struct {
	Name         string // "articles" or "books"
	ManifestPath string // e.g. "ArticlesIndex.json"
	Dir          string // e.g. "ArticlesJson"
}

// DocumentPath returns the storage path of a document file in this collection.
func (c Collection) DocumentPath(file string) string {
	if c.Dir == "" {
		return file
	}
	return strings.TrimSuffix(c.Dir, "/") + "/" + file
}

// Document is a named, ordered list of records.
type Document struct {
	Name       string   // normalized file name, e.g. "eman.json"
	Collection string   // collection the document was read from
	Records    []Record // insertion order
}

// Title returns the content of the first title record, or "" if there is none.
func (d *Document) Title() string {
	for _, r := range d.Records {
		if r.Type == TypeTitle {
			return r.Content
		}
	}
	return ""
}

// Sections returns the section records in insertion order.
// A document with no sections yields an empty, non-nil slice.
func (d *Document) Sections() []Record {
	sections := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if r.IsSection() {
			sections = append(sections, r)
		}
	}
	return sections
}

// ChapterIDs returns a unique chapter id for each section, in order. A
// section keeps its own id unless an earlier section already claimed it.
// Sections without a usable id fall back to their 0-based position; when
// that collides with an id in the document, a "-n" suffix is added.
func ChapterIDs(sections []Record) []string {
	taken := make(map[string]bool, len(sections))
	for _, sec := range sections {
		if sec.ID != "" {
			taken[sec.ID] = true
		}
	}

	used := make(map[string]bool, len(sections))
	ids := make([]string, len(sections))
	for i, sec := range sections {
		id := sec.ID
		if id == "" || used[id] {
			pos := strconv.Itoa(i)
			id = pos
			for n := 1; taken[id] || used[id]; n++ {
				id = pos + "-" + strconv.Itoa(n)
			}
		}
		used[id] = true
		ids[i] = id
	}
	return ids
}

// Slug returns the document name without its .json suffix.
func (d *Document) Slug() string {
	return strings.TrimSuffix(d.Name, jsonExt)
}

const jsonExt = ".json"

// NormalizeName trims a document name and appends the .json suffix if absent.
// Names that contain path separators or parent references are rejected.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.HasSuffix(name, jsonExt) {
		name += jsonExt
	}
	return name, nil
}

// ParseRecords decodes a document body. The body is either an array of
// records or a single record object, which is treated as a one-element document.
func ParseRecords(data []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty body", ErrParse)
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []Record
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if records == nil {
			records = []Record{}
		}
		return records, nil
	}

	var record Record
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return []Record{record}, nil
}

// ParseManifest decodes a manifest body into the list of document file names.
// Entries without a .json suffix are dropped.
func ParseManifest(data []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	files := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if strings.HasSuffix(n, jsonExt) {
			files = append(files, n)
		}
	}
	return files, nil
}
