package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_counter_store.go -package=mocks rawda/internal/storage CounterStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

const totalPagesCounter = "total_pages"

// CounterStore defines the interface for reading statistics storage.
type CounterStore interface {
	// TotalPages returns the all-time pages read counter.
	TotalPages(ctx context.Context) (int64, error)
	// AddTotalPages adds n to the all-time counter and returns the new value.
	AddTotalPages(ctx context.Context, n int64) (int64, error)
	// DailyPages returns the pages read on the calendar day of day (UTC).
	DailyPages(ctx context.Context, day time.Time) (int64, error)
	// AddDailyPages adds n to the counter of day and returns the new value.
	AddDailyPages(ctx context.Context, day time.Time, n int64) (int64, error)
	// ChapterViews returns per-chapter view counts of a document, by chapter index.
	ChapterViews(ctx context.Context, document string) ([]ChapterViews, error)
}

// CounterRepo provides methods for reading statistics.
// It implements the CounterStore interface and records chapter views.
type CounterRepo struct {
	db *sql.DB
}

// NewCounterRepo creates a new CounterRepo.
func NewCounterRepo(db *sql.DB) *CounterRepo {
	return &CounterRepo{db: db}
}

// TotalPages returns the all-time counter. A counter never written reads 0.
func (r *CounterRepo) TotalPages(ctx context.Context) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM page_counters WHERE name = ?",
		totalPagesCounter,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query total pages: %w", err)
	}
	return value, nil
}

// AddTotalPages adds n to the all-time counter.
func (r *CounterRepo) AddTotalPages(ctx context.Context, n int64) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO page_counters (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (name) DO UPDATE SET
		 value = page_counters.value + excluded.value, updated_at = CURRENT_TIMESTAMP
		 RETURNING value`,
		totalPagesCounter, n,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to add total pages: %w", err)
	}
	return value, nil
}

// DailyPages returns the counter of day. A day never written reads 0.
func (r *CounterRepo) DailyPages(ctx context.Context, day time.Time) (int64, error) {
	var pages int64
	err := r.db.QueryRowContext(ctx,
		"SELECT pages FROM daily_pages WHERE day = ?",
		dayKey(day),
	).Scan(&pages)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query daily pages: %w", err)
	}
	return pages, nil
}

// AddDailyPages adds n to the counter of day.
func (r *CounterRepo) AddDailyPages(ctx context.Context, day time.Time, n int64) (int64, error) {
	var pages int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO daily_pages (day, pages) VALUES (?, ?)
		 ON CONFLICT (day) DO UPDATE SET pages = daily_pages.pages + excluded.pages
		 RETURNING pages`,
		dayKey(day), n,
	).Scan(&pages)
	if err != nil {
		return 0, fmt.Errorf("failed to add daily pages: %w", err)
	}
	return pages, nil
}

// ChapterViewed records one view of a chapter.
func (r *CounterRepo) ChapterViewed(ctx context.Context, document string, index int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chapter_views (document, chapter, views, last_viewed_at) VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT (document, chapter) DO UPDATE SET
		 views = chapter_views.views + 1, last_viewed_at = CURRENT_TIMESTAMP`,
		document, index,
	)
	if err != nil {
		return fmt.Errorf("failed to record chapter view: %w", err)
	}
	return nil
}

// ChapterViews returns the view counts of a document ordered by chapter.
func (r *CounterRepo) ChapterViews(ctx context.Context, document string) ([]ChapterViews, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT document, chapter, views, last_viewed_at FROM chapter_views WHERE document = ? ORDER BY chapter",
		document,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapter views: %w", err)
	}
	defer rows.Close()

	views := []ChapterViews{}
	for rows.Next() {
		var (
			v         ChapterViews
			viewedStr string
		)
		if err := rows.Scan(&v.Document, &v.Chapter, &v.Views, &viewedStr); err != nil {
			return nil, fmt.Errorf("failed to scan chapter views: %w", err)
		}
		if v.LastViewedAt, err = parseTimestamp(viewedStr); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chapter views: %w", err)
	}
	return views, nil
}
