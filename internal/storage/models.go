package storage

import (
	"fmt"
	"time"
)

// ChapterViews is the view count of one chapter of a document.
type ChapterViews struct {
	Document     string    `json:"document"`
	Chapter      int       `json:"chapter"` // 0-based index
	Views        int64     `json:"views"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// PreferenceRecord is one stored reader preference.
type PreferenceRecord struct {
	ClientID  string    `json:"-"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// dayKey formats the calendar day of t in UTC.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// parseTimestamp reads a DATETIME column scanned as text.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// Try alternative format (the driver may hand back RFC 3339)
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
