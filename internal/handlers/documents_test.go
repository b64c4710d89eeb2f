package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"rawda/internal/service"
	"rawda/internal/service/mocks"
)

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestReaderHandler_GetDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	view := service.DocumentView{
		Name:       "book.json",
		Slug:       "book",
		Collection: "books",
		Title:      "كتاب",
		Chapters:   []service.ChapterRef{{ID: "a", Index: 0, Number: 1, Title: "الأول"}},
	}

	tests := []struct {
		name       string
		params     map[string]string
		mockSetup  func(*mocks.MockReaderService)
		wantStatus int
	}{
		{
			name:   "found",
			params: map[string]string{"name": "book"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Document(gomock.Any(), "book").Return(view, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "escaped name is unescaped",
			params: map[string]string{"name": "%D9%83%D8%AA%D8%A7%D8%A8"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Document(gomock.Any(), "كتاب").Return(view, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing name",
			params:     map[string]string{"name": "  "},
			mockSetup:  func(m *mocks.MockReaderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "unknown document",
			params: map[string]string{"name": "missing"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Document(gomock.Any(), "missing").
					Return(service.DocumentView{}, fmt.Errorf("%w: missing.json", service.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "invalid name",
			params: map[string]string{"name": "..secret"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Document(gomock.Any(), "..secret").
					Return(service.DocumentView{}, fmt.Errorf("%w: bad name", service.ErrInvalidInput))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := mocks.NewMockReaderService(ctrl)
			tt.mockSetup(reader)
			handler := NewReaderHandler(reader)

			req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/documents/x", nil), tt.params)
			w := httptest.NewRecorder()
			handler.GetDocument(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("GetDocument() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				var got service.DocumentView
				if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if got.Slug != "book" || len(got.Chapters) != 1 {
					t.Errorf("GetDocument() = %+v", got)
				}
			}
		})
	}
}

func TestReaderHandler_GetChapter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		target     string
		params     map[string]string
		mockSetup  func(*mocks.MockReaderService)
		wantStatus int
	}{
		{
			name:   "chapter with highlight and width",
			target: "/api/documents/book/chapters/a?q=%D8%B5%D9%84%D8%A7%D8%A9&width=320",
			params: map[string]string{"name": "book", "chapterID": "a"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Chapter(gomock.Any(), service.ChapterRequest{
					Document:   "book",
					ChapterID:  "a",
					Highlight:  "صلاة",
					VerseWidth: 320,
				}).Return(service.ChapterView{Slug: "book", Total: 3}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "first chapter without id",
			target: "/api/documents/book/chapters/",
			params: map[string]string{"name": "book"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Chapter(gomock.Any(), service.ChapterRequest{Document: "book"}).
					Return(service.ChapterView{Slug: "book", Total: 3}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "width not a number",
			target:     "/api/documents/book/chapters/a?width=wide",
			params:     map[string]string{"name": "book", "chapterID": "a"},
			mockSetup:  func(m *mocks.MockReaderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "width is NaN",
			target:     "/api/documents/book/chapters/a?width=NaN",
			params:     map[string]string{"name": "book", "chapterID": "a"},
			mockSetup:  func(m *mocks.MockReaderService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "document has no chapters",
			target: "/api/documents/empty/chapters/a",
			params: map[string]string{"name": "empty", "chapterID": "a"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Chapter(gomock.Any(), gomock.Any()).Return(service.ChapterView{}, service.ErrNoChapters)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "content source failure",
			target: "/api/documents/book/chapters/a",
			params: map[string]string{"name": "book", "chapterID": "a"},
			mockSetup: func(m *mocks.MockReaderService) {
				m.EXPECT().Chapter(gomock.Any(), gomock.Any()).
					Return(service.ChapterView{}, service.WrapError(service.ErrExternalService, "load"))
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := mocks.NewMockReaderService(ctrl)
			tt.mockSetup(reader)
			handler := NewReaderHandler(reader)

			req := withURLParams(httptest.NewRequest(http.MethodGet, tt.target, nil), tt.params)
			w := httptest.NewRecorder()
			handler.GetChapter(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("GetChapter() status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestReaderHandler_GetManifest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("lists entries", func(t *testing.T) {
		reader := mocks.NewMockReaderService(ctrl)
		reader.EXPECT().Manifest(gomock.Any(), "books").Return([]service.ManifestEntry{
			{File: "a.json", Slug: "a"},
			{File: "b.json", Slug: "b"},
		}, nil)

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/manifests/books", nil),
			map[string]string{"collection": "books"})
		w := httptest.NewRecorder()
		NewReaderHandler(reader).GetManifest(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("GetManifest() status = %d, want %d", w.Code, http.StatusOK)
		}
		var got []service.ManifestEntry
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(got) != 2 || got[1].Slug != "b" {
			t.Errorf("GetManifest() = %+v", got)
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		reader := mocks.NewMockReaderService(ctrl)
		reader.EXPECT().Manifest(gomock.Any(), "poems").
			Return(nil, fmt.Errorf("%w: collection poems", service.ErrNotFound))

		req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/manifests/poems", nil),
			map[string]string{"collection": "poems"})
		w := httptest.NewRecorder()
		NewReaderHandler(reader).GetManifest(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("GetManifest() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}
