package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"rawda/internal/corpus"
	"rawda/internal/service"
	"rawda/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	// Set default logger to discard output for cleaner test output
	// This suppresses logs from slog.Default() used in the service layer
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testContext returns a context for testing.
// The default logger is already set to discard in init().
func testContext() context.Context {
	return context.Background()
}

func testBook() *corpus.Document {
	return &corpus.Document{
		Name:       "book.json",
		Collection: corpus.CollectionBooks,
		Records: []corpus.Record{
			{Type: corpus.TypeTitle, Content: "كتاب ((الصلاة))[[حاشية]]"},
			{Type: corpus.TypeSection, ID: "a", Title: "الأول", Content: "نص عن الصلاة"},
			{Type: corpus.TypeSection, Content: "second"},
			{Type: corpus.TypeSection, ID: "c", Title: "ثالث", Content: "third"},
		},
	}
}

func TestNewReaderService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewReaderService(mocks.NewMockLibrary(ctrl), nil, nil)
	if svc == nil {
		t.Fatal("NewReaderService() returned nil")
	}
}

func TestReaderService_Document(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	svc := service.NewReaderService(lib, nil, nil)

	lib.EXPECT().LoadDocument(gomock.Any(), "book").Return(testBook(), nil)

	view, err := svc.Document(testContext(), "book")
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if view.Title != "كتاب الصلاة" {
		t.Errorf("Title = %q, want %q", view.Title, "كتاب الصلاة")
	}
	if view.Slug != "book" || view.Collection != corpus.CollectionBooks {
		t.Errorf("Slug, Collection = %q, %q", view.Slug, view.Collection)
	}
	want := []service.ChapterRef{
		{ID: "a", Index: 0, Number: 1, Title: "الأول"},
		{ID: "1", Index: 1, Number: 2, Title: "فصل 2"},
		{ID: "c", Index: 2, Number: 3, Title: "ثالث"},
	}
	if len(view.Chapters) != len(want) {
		t.Fatalf("len(Chapters) = %d, want %d", len(view.Chapters), len(want))
	}
	for i := range want {
		if view.Chapters[i] != want[i] {
			t.Errorf("Chapters[%d] = %+v, want %+v", i, view.Chapters[i], want[i])
		}
	}
}

func TestReaderService_DocumentErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	svc := service.NewReaderService(lib, nil, nil)

	backendErr := errors.New("disk failure")

	tests := []struct {
		name    string
		loadErr error
		wantErr error
	}{
		{
			name:    "not found",
			loadErr: corpus.ErrNotFound,
			wantErr: service.ErrNotFound,
		},
		{
			name:    "invalid name",
			loadErr: corpus.ErrInvalidName,
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "unreadable document",
			loadErr: corpus.ErrParse,
			wantErr: service.ErrExternalService,
		},
		{
			name:    "other failure is wrapped",
			loadErr: backendErr,
			wantErr: backendErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib.EXPECT().LoadDocument(gomock.Any(), "x").Return(nil, tt.loadErr)

			_, err := svc.Document(testContext(), "x")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Document() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReaderService_DocumentWithoutSections(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	svc := service.NewReaderService(lib, nil, nil)

	doc := &corpus.Document{Name: "empty.json", Records: []corpus.Record{{Type: corpus.TypeTitle, Content: "عنوان"}}}
	lib.EXPECT().LoadDocument(gomock.Any(), "empty").Return(doc, nil)

	view, err := svc.Document(testContext(), "empty")
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if view.Chapters == nil || len(view.Chapters) != 0 {
		t.Errorf("Chapters = %v, want empty non-nil", view.Chapters)
	}
}

func TestReaderService_Chapter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	svc := service.NewReaderService(lib, nil, nil)

	tests := []struct {
		name      string
		chapterID string
		wantIndex int
		wantPrev  string
		wantNext  string
	}{
		{
			name:      "empty id selects first chapter",
			chapterID: "",
			wantIndex: 0,
			wantNext:  "1",
		},
		{
			name:      "id match",
			chapterID: "c",
			wantIndex: 2,
			wantPrev:  "1",
		},
		{
			name:      "positional fallback",
			chapterID: "1",
			wantIndex: 1,
			wantPrev:  "a",
			wantNext:  "c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib.EXPECT().LoadDocument(gomock.Any(), "book").Return(testBook(), nil)

			view, err := svc.Chapter(testContext(), service.ChapterRequest{Document: "book", ChapterID: tt.chapterID})
			if err != nil {
				t.Fatalf("Chapter() error = %v", err)
			}
			if view.Chapter.Index != tt.wantIndex {
				t.Errorf("Chapter.Index = %d, want %d", view.Chapter.Index, tt.wantIndex)
			}
			if view.Total != 3 {
				t.Errorf("Total = %d, want 3", view.Total)
			}
			if view.PrevID != tt.wantPrev || view.HasPrev != (tt.wantPrev != "") {
				t.Errorf("PrevID, HasPrev = %q, %v, want %q", view.PrevID, view.HasPrev, tt.wantPrev)
			}
			if view.NextID != tt.wantNext || view.HasNext != (tt.wantNext != "") {
				t.Errorf("NextID, HasNext = %q, %v, want %q", view.NextID, view.HasNext, tt.wantNext)
			}
		})
	}
}

func TestReaderService_ChapterDuplicateIDs(t *testing.T) {
	section := func(id, content string) corpus.Record {
		return corpus.Record{Type: corpus.TypeSection, ID: id, Content: content}
	}
	tests := []struct {
		name     string
		sections []corpus.Record
		wantIDs  []string
	}{
		{
			name:     "repeated id",
			sections: []corpus.Record{section("x", "one"), section("x", "two"), section("y", "three")},
			wantIDs:  []string{"x", "1", "y"},
		},
		{
			name:     "position colliding with a real id",
			sections: []corpus.Record{section("2", "first"), section("", "second"), section("", "third")},
			wantIDs:  []string{"2", "1", "2-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			lib := mocks.NewMockLibrary(ctrl)
			svc := service.NewReaderService(lib, nil, nil)

			doc := &corpus.Document{Name: "dup.json", Collection: corpus.CollectionBooks, Records: tt.sections}
			lib.EXPECT().LoadDocument(gomock.Any(), "dup").Return(doc, nil).AnyTimes()

			index, err := svc.Document(testContext(), "dup")
			if err != nil {
				t.Fatalf("Document() error = %v", err)
			}
			for i, ref := range index.Chapters {
				if ref.ID != tt.wantIDs[i] {
					t.Errorf("Chapters[%d].ID = %q, want %q", i, ref.ID, tt.wantIDs[i])
				}
			}

			// Every index entry opens its own section.
			for i, ref := range index.Chapters {
				view, err := svc.Chapter(testContext(), service.ChapterRequest{Document: "dup", ChapterID: ref.ID})
				if err != nil {
					t.Fatalf("Chapter(%q) error = %v", ref.ID, err)
				}
				if view.Chapter.Index != i || view.Section.Content != tt.sections[i].Content {
					t.Errorf("Chapter(%q) opened %d %q, want %d %q", ref.ID, view.Chapter.Index, view.Section.Content, i, tt.sections[i].Content)
				}
			}

			// Following next links visits every section once.
			id, visited := "", []string{}
			for {
				view, err := svc.Chapter(testContext(), service.ChapterRequest{Document: "dup", ChapterID: id})
				if err != nil {
					t.Fatalf("Chapter(%q) error = %v", id, err)
				}
				visited = append(visited, view.Section.Content)
				if !view.HasNext || len(visited) > len(tt.sections) {
					break
				}
				id = view.NextID
			}
			if len(visited) != len(tt.sections) {
				t.Fatalf("next links visited %v, want %d sections", visited, len(tt.sections))
			}
			for i, content := range visited {
				if content != tt.sections[i].Content {
					t.Errorf("visit %d = %q, want %q", i, content, tt.sections[i].Content)
				}
			}
		})
	}
}

func TestReaderService_ChapterErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	svc := service.NewReaderService(lib, nil, nil)

	tests := []struct {
		name         string
		req          service.ChapterRequest
		mockSetup    func()
		checkErrType func(error) bool
	}{
		{
			name: "unknown id",
			req:  service.ChapterRequest{Document: "book", ChapterID: "zz"},
			mockSetup: func() {
				lib.EXPECT().LoadDocument(gomock.Any(), "book").Return(testBook(), nil)
			},
			checkErrType: func(err error) bool { return errors.Is(err, service.ErrNotFound) },
		},
		{
			name: "position out of range",
			req:  service.ChapterRequest{Document: "book", ChapterID: "3"},
			mockSetup: func() {
				lib.EXPECT().LoadDocument(gomock.Any(), "book").Return(testBook(), nil)
			},
			checkErrType: func(err error) bool { return errors.Is(err, service.ErrNotFound) },
		},
		{
			name: "no sections",
			req:  service.ChapterRequest{Document: "empty"},
			mockSetup: func() {
				lib.EXPECT().LoadDocument(gomock.Any(), "empty").
					Return(&corpus.Document{Name: "empty.json"}, nil)
			},
			checkErrType: func(err error) bool { return errors.Is(err, service.ErrNoChapters) },
		},
		{
			name: "missing document",
			req:  service.ChapterRequest{Document: "gone"},
			mockSetup: func() {
				lib.EXPECT().LoadDocument(gomock.Any(), "gone").Return(nil, corpus.ErrNotFound)
			},
			checkErrType: func(err error) bool { return errors.Is(err, service.ErrNotFound) },
		},
		{
			name:      "negative width",
			req:       service.ChapterRequest{Document: "book", VerseWidth: -1},
			mockSetup: func() {},
			checkErrType: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Field == "width"
			},
		},
		{
			name:      "width too large",
			req:       service.ChapterRequest{Document: "book", VerseWidth: service.MaxVerseWidth + 1},
			mockSetup: func() {},
			checkErrType: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			_, err := svc.Chapter(testContext(), tt.req)
			if err == nil {
				t.Fatal("Chapter() expected error but got none")
			}
			if !tt.checkErrType(err) {
				t.Errorf("Chapter() error = %v, wrong type", err)
			}
		})
	}
}

func TestReaderService_ChapterRendersWithHighlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	observer := mocks.NewMockPageObserver(ctrl)
	svc := service.NewReaderService(lib, nil, observer)

	lib.EXPECT().LoadDocument(gomock.Any(), "book").Return(testBook(), nil)
	observer.EXPECT().ChapterViewed(gomock.Any(), "book.json", 0).Return(nil)

	view, err := svc.Chapter(testContext(), service.ChapterRequest{Document: "book", ChapterID: "a", Highlight: "الصلاة"})
	if err != nil {
		t.Fatalf("Chapter() error = %v", err)
	}
	if view.DocumentTitle != "كتاب الصلاة" {
		t.Errorf("DocumentTitle = %q", view.DocumentTitle)
	}
	if view.Description != "نص عن الصلاة" {
		t.Errorf("Description = %q", view.Description)
	}
	if !view.Render.HasHighlight {
		t.Error("Render.HasHighlight = false, want true")
	}
	if view.Section.ID != "a" || view.Chapter.Number != 1 {
		t.Errorf("Section, Chapter = %+v, %+v", view.Section, view.Chapter)
	}
}

func TestReaderService_ObserverFailureIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	observer := mocks.NewMockPageObserver(ctrl)
	svc := service.NewReaderService(lib, nil, observer)

	lib.EXPECT().LoadDocument(gomock.Any(), "book").Return(testBook(), nil)
	observer.EXPECT().ChapterViewed(gomock.Any(), "book.json", 2).Return(errors.New("db locked"))

	if _, err := svc.Chapter(testContext(), service.ChapterRequest{Document: "book", ChapterID: "c"}); err != nil {
		t.Errorf("Chapter() error = %v, want nil", err)
	}
}

func TestReaderService_Manifest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lib := mocks.NewMockLibrary(ctrl)
	svc := service.NewReaderService(lib, nil, nil)
	books := corpus.Collection{Name: corpus.CollectionBooks, ManifestPath: "Indexes.json", Dir: "BooksJson"}

	t.Run("success", func(t *testing.T) {
		lib.EXPECT().Collection("books").Return(books, true)
		lib.EXPECT().ListManifest(gomock.Any(), books).Return([]string{"a.json", "b.json"}, nil)

		entries, err := svc.Manifest(testContext(), "books")
		if err != nil {
			t.Fatalf("Manifest() error = %v", err)
		}
		want := []service.ManifestEntry{{File: "a.json", Slug: "a"}, {File: "b.json", Slug: "b"}}
		if len(entries) != len(want) {
			t.Fatalf("len(entries) = %d, want %d", len(entries), len(want))
		}
		for i := range want {
			if entries[i] != want[i] {
				t.Errorf("entries[%d] = %+v, want %+v", i, entries[i], want[i])
			}
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		lib.EXPECT().Collection("poems").Return(corpus.Collection{}, false)

		if _, err := svc.Manifest(testContext(), "poems"); !errors.Is(err, service.ErrNotFound) {
			t.Errorf("Manifest() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("manifest unavailable", func(t *testing.T) {
		lib.EXPECT().Collection("books").Return(books, true)
		lib.EXPECT().ListManifest(gomock.Any(), books).Return(nil, corpus.ErrManifestUnavailable)

		_, err := svc.Manifest(testContext(), "books")
		if !errors.Is(err, service.ErrExternalService) || !errors.Is(err, corpus.ErrManifestUnavailable) {
			t.Errorf("Manifest() error = %v, want ErrExternalService wrapping ErrManifestUnavailable", err)
		}
	})
}
