package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rawda/internal/contextutil"
	"rawda/internal/service"
	"rawda/internal/storage"
)

// ClientIDHeader identifies a reader across requests without an account.
const ClientIDHeader = "X-Client-ID"

// MaxPreferenceValue bounds a stored preference value, in runes.
const MaxPreferenceValue = 256

var preferenceKey = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// PreferenceHandler stores per-client reader preferences such as font size or theme.
type PreferenceHandler struct {
	store storage.PreferenceStore
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(store storage.PreferenceStore) *PreferenceHandler {
	return &PreferenceHandler{
		store: store,
	}
}

// PreferenceRequest sets a preference value.
type PreferenceRequest struct {
	Value string `json:"value"`
}

// List returns every preference of the calling client.
func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := h.clientID(w, r)

	prefs, err := h.store.List(ctx, clientID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list preferences")
		return
	}
	writeJSON(ctx, w, http.StatusOK, prefs)
}

// Get returns one preference of the calling client.
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := h.clientID(w, r)

	key, err := prefKey(r)
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid preference key")
		return
	}

	pref, err := h.store.Get(ctx, clientID, key)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to read preference")
		return
	}
	writeJSON(ctx, w, http.StatusOK, pref)
}

// Put stores one preference of the calling client.
func (h *PreferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	clientID := h.clientID(w, r)

	key, err := prefKey(r)
	if err != nil {
		handleServiceError(ctx, w, err, "Invalid preference key")
		return
	}

	var req PreferenceRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<12)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if utf8.RuneCountInString(req.Value) > MaxPreferenceValue {
		handleServiceError(ctx, w, &service.ValidationError{Field: "value", Message: "too long"}, "Invalid preference")
		return
	}

	pref := &storage.PreferenceRecord{ClientID: clientID, Key: key, Value: req.Value}
	if err := h.store.Set(ctx, pref); err != nil {
		handleServiceError(ctx, w, err, "Failed to store preference")
		return
	}

	stored, err := h.store.Get(ctx, clientID, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		handleServiceError(ctx, w, err, "Failed to read preference")
		return
	}
	if stored == nil {
		stored = pref
	}
	writeJSON(ctx, w, http.StatusOK, stored)
}

// clientID returns the caller's id, issuing a new one in the response
// header when the request has none or an unparseable one.
func (h *PreferenceHandler) clientID(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(ClientIDHeader))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	w.Header().Set(ClientIDHeader, id)
	return id
}

func prefKey(r *http.Request) (string, error) {
	key := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "key")))
	if !preferenceKey.MatchString(key) {
		return "", &service.ValidationError{Field: "key", Message: "must match " + preferenceKey.String()}
	}
	return key, nil
}
