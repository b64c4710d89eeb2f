package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_preference_store.go -package=mocks rawda/internal/storage PreferenceStore

import (
	"context"
	"database/sql"
	"fmt"
)

// PreferenceStore defines the interface for per-client reader preferences
// such as font size or theme.
type PreferenceStore interface {
	// Get returns one preference.
	// Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, clientID, key string) (*PreferenceRecord, error)
	// Set inserts or replaces a preference.
	Set(ctx context.Context, pref *PreferenceRecord) error
	// List returns every preference of a client ordered by key.
	List(ctx context.Context, clientID string) ([]PreferenceRecord, error)
}

// PreferenceRepo provides methods for preference operations.
// It implements the PreferenceStore interface.
type PreferenceRepo struct {
	db *sql.DB
}

// NewPreferenceRepo creates a new PreferenceRepo.
func NewPreferenceRepo(db *sql.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// Get returns one preference.
// Returns nil and ErrNotFound if not found.
func (r *PreferenceRepo) Get(ctx context.Context, clientID, key string) (*PreferenceRecord, error) {
	var (
		pref       PreferenceRecord
		updatedStr string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT client_id, key, value, updated_at FROM preferences WHERE client_id = ? AND key = ?",
		clientID, key,
	).Scan(&pref.ClientID, &pref.Key, &pref.Value, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference: %w", err)
	}

	if pref.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Set inserts a preference or replaces its value.
func (r *PreferenceRepo) Set(ctx context.Context, pref *PreferenceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (client_id, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (client_id, key) DO UPDATE SET
		 value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		pref.ClientID, pref.Key, pref.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// List returns every preference of a client ordered by key.
func (r *PreferenceRepo) List(ctx context.Context, clientID string) ([]PreferenceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT client_id, key, value, updated_at FROM preferences WHERE client_id = ? ORDER BY key",
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	prefs := []PreferenceRecord{}
	for rows.Next() {
		var (
			pref       PreferenceRecord
			updatedStr string
		)
		if err := rows.Scan(&pref.ClientID, &pref.Key, &pref.Value, &updatedStr); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		if pref.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate preferences: %w", err)
	}
	return prefs, nil
}
