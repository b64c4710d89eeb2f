package service_test

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"rawda/internal/corpus"
	"rawda/internal/markup"
	"rawda/internal/paginate"
	"rawda/internal/search"
	"rawda/internal/service"
	"rawda/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func sectionHits(n int) []search.Hit {
	hits := make([]search.Hit, n)
	for i := range hits {
		hits[i] = search.Hit{
			Document:   fmt.Sprintf("doc%d.json", i),
			Collection: corpus.CollectionArticles,
			Record: corpus.Record{
				Type:    corpus.TypeSection,
				ID:      fmt.Sprintf("s%d", i),
				Content: "نص",
			},
		}
	}
	return hits
}

func TestNewSearchService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewSearchService(mocks.NewMockCatalog(ctrl), paginate.New(0))
	if svc == nil {
		t.Fatal("NewSearchService() returned nil")
	}
}

func TestSearchService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalog(ctrl)
	svc := service.NewSearchService(catalog, paginate.New(10))

	tests := []struct {
		name       string
		query      string
		page       int
		mockSetup  func()
		wantBrowse bool
		wantItems  int
		wantPage   int
		wantTotal  int
	}{
		{
			name:  "query first page",
			query: " الصلاة ",
			page:  1,
			mockSetup: func() {
				catalog.EXPECT().Search(gomock.Any(), "الصلاة").Return(sectionHits(12), nil)
			},
			wantItems: 10,
			wantPage:  1,
			wantTotal: 2,
		},
		{
			name:  "query last page",
			query: "الصلاة",
			page:  2,
			mockSetup: func() {
				catalog.EXPECT().Search(gomock.Any(), "الصلاة").Return(sectionHits(12), nil)
			},
			wantItems: 2,
			wantPage:  2,
			wantTotal: 2,
		},
		{
			name:  "page beyond range is clamped",
			query: "الصلاة",
			page:  9,
			mockSetup: func() {
				catalog.EXPECT().Search(gomock.Any(), "الصلاة").Return(sectionHits(3), nil)
			},
			wantItems: 3,
			wantPage:  1,
			wantTotal: 1,
		},
		{
			name:  "empty query browses all",
			query: "   ",
			page:  1,
			mockSetup: func() {
				catalog.EXPECT().ListAll(gomock.Any()).Return(sectionHits(4), nil)
			},
			wantBrowse: true,
			wantItems:  4,
			wantPage:   1,
			wantTotal:  1,
		},
		{
			name:  "no hits",
			query: "zz",
			page:  1,
			mockSetup: func() {
				catalog.EXPECT().Search(gomock.Any(), "zz").Return([]search.Hit{}, nil)
			},
			wantItems: 0,
			wantPage:  1,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			got, err := svc.Search(testContext(), tt.query, tt.page)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if got.Browse != tt.wantBrowse {
				t.Errorf("Browse = %v, want %v", got.Browse, tt.wantBrowse)
			}
			if len(got.Results.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(got.Results.Items), tt.wantItems)
			}
			if got.Results.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", got.Results.Page, tt.wantPage)
			}
			if got.Results.TotalPages != tt.wantTotal {
				t.Errorf("TotalPages = %d, want %d", got.Results.TotalPages, tt.wantTotal)
			}
			if got.Query != strings.TrimSpace(tt.query) {
				t.Errorf("Query = %q", got.Query)
			}
		})
	}
}

func TestSearchService_SearchBuildsResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalog(ctrl)
	svc := service.NewSearchService(catalog, paginate.New(10))

	catalog.EXPECT().Search(gomock.Any(), "الصلاة").Return([]search.Hit{{
		Document:   "fiqh.json",
		Collection: corpus.CollectionBooks,
		TitleMatch: true,
		Record: corpus.Record{
			Type:    corpus.TypeSection,
			ID:      "7",
			Title:   "باب الصلاة",
			Content: "[[حاشية]]الصلاة عماد الدين",
		},
	}}, nil)

	got, err := svc.Search(testContext(), "الصلاة", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	r := got.Results.Items[0]
	if r.Slug != "fiqh" || r.ChapterID != "7" || !r.TitleMatch || r.Collection != corpus.CollectionBooks {
		t.Errorf("result = %+v", r)
	}
	wantTitle := []markup.Segment{{Text: "باب "}, {Text: "الصلاة", Highlight: true}}
	if !reflect.DeepEqual(r.Title, wantTitle) {
		t.Errorf("Title = %+v, want %+v", r.Title, wantTitle)
	}
	wantPreview := []markup.Segment{{Text: "الصلاة", Highlight: true}, {Text: " عماد الدين"}}
	if !reflect.DeepEqual(r.Preview, wantPreview) {
		t.Errorf("Preview = %+v, want %+v", r.Preview, wantPreview)
	}
	if !strings.HasPrefix(r.URL, "/chapters/fiqh/7?q=") {
		t.Errorf("URL = %q", r.URL)
	}
}

func TestPresentHit_ChapterLink(t *testing.T) {
	q := url.Values{"q": {"الصلاة"}}.Encode()
	tests := []struct {
		name    string
		hit     search.Hit
		wantID  string
		wantURL string
	}{
		{
			name: "resolved chapter id",
			hit: search.Hit{
				Document:  "eman.json",
				Section:   2,
				ChapterID: "2-1",
				Record:    corpus.Record{Type: corpus.TypeSection, Content: "الصلاة"},
			},
			wantID:  "2-1",
			wantURL: "/chapters/eman/2-1?" + q,
		},
		{
			name: "section without id uses its position",
			hit: search.Hit{
				Document: "eman.json",
				Section:  4,
				Record:   corpus.Record{Type: corpus.TypeSection, Content: "الصلاة"},
			},
			wantID:  "4",
			wantURL: "/chapters/eman/4?" + q,
		},
		{
			name: "first section without id",
			hit: search.Hit{
				Document: "eman.json",
				Record:   corpus.Record{Type: corpus.TypeSection, Content: "الصلاة"},
			},
			wantID:  "0",
			wantURL: "/chapters/eman/0?" + q,
		},
		{
			name: "record id",
			hit: search.Hit{
				Document: "eman.json",
				Record:   corpus.Record{Type: corpus.TypeSection, ID: "s", Content: "الصلاة"},
			},
			wantID:  "s",
			wantURL: "/chapters/eman/s?" + q,
		},
		{
			name: "title record opens the document",
			hit: search.Hit{
				Document: "eman.json",
				Record:   corpus.Record{Type: corpus.TypeTitle, Content: "الصلاة"},
			},
			wantURL: "/chapters/eman?" + q,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.PresentHit(tt.hit, "الصلاة")
			if got.ChapterID != tt.wantID {
				t.Errorf("ChapterID = %q, want %q", got.ChapterID, tt.wantID)
			}
			if got.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", got.URL, tt.wantURL)
			}
		})
	}
}

func TestSearchService_SearchErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalog(ctrl)
	svc := service.NewSearchService(catalog, paginate.New(10))

	t.Run("catalog failure", func(t *testing.T) {
		cause := errors.New("context canceled")
		catalog.EXPECT().Search(gomock.Any(), "abc").Return(nil, cause)

		if _, err := svc.Search(testContext(), "abc", 1); !errors.Is(err, cause) {
			t.Errorf("Search() error = %v, want wrapped %v", err, cause)
		}
	})

	t.Run("query too long", func(t *testing.T) {
		_, err := svc.Search(testContext(), strings.Repeat("ب", service.MaxQueryLength+1), 1)
		var validationErr *service.ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != "q" {
			t.Errorf("Search() error = %v, want ValidationError on q", err)
		}
	})
}

func TestResultTitle(t *testing.T) {
	tests := []struct {
		name   string
		record corpus.Record
		want   string
	}{
		{
			name:   "title record uses content",
			record: corpus.Record{Type: corpus.TypeTitle, Title: "ignored", Content: "كتاب الطهارة"},
			want:   "كتاب الطهارة",
		},
		{
			name:   "section title",
			record: corpus.Record{Type: corpus.TypeSection, Title: "{باب} المياه", Content: "نص"},
			want:   "باب المياه",
		},
		{
			name:   "section without title falls back to content",
			record: corpus.Record{Type: corpus.TypeSection, Content: "نص الفصل"},
			want:   "نص الفصل",
		},
		{
			name:   "nothing to show",
			record: corpus.Record{Type: corpus.TypeSection},
			want:   "بدون عنوان",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.ResultTitle(tt.record); got != tt.want {
				t.Errorf("ResultTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResultPreview(t *testing.T) {
	tests := []struct {
		name   string
		record corpus.Record
		want   string
	}{
		{
			name:   "title record",
			record: corpus.Record{Type: corpus.TypeTitle, Content: "كتاب"},
			want:   "🌟 هذا عنوان رئيسي يحتوي على محتوى قيم ومفيد للقارئ",
		},
		{
			name:   "section content",
			record: corpus.Record{Type: corpus.TypeSection, Content: "[sh]صدر = عجز[/sh]"},
			want:   "صدر عجز",
		},
		{
			name:   "empty section",
			record: corpus.Record{Type: corpus.TypeSection, Content: "[[]]"},
			want:   "لا يوجد محتوى متاح في هذا القسم",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.ResultPreview(tt.record); got != tt.want {
				t.Errorf("ResultPreview() = %q, want %q", got, tt.want)
			}
		})
	}

	long := corpus.Record{Type: corpus.TypeSection, Content: strings.Repeat("كلمة ", 100)}
	got := service.ResultPreview(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) > service.PreviewLength+3 {
		t.Errorf("ResultPreview() of long content = %q", got)
	}
}

func TestChapterURL(t *testing.T) {
	tests := []struct {
		name      string
		slug      string
		chapterID string
		query     string
		want      string
	}{
		{name: "document only", slug: "book", want: "/chapters/book"},
		{name: "document with query", slug: "book", query: "abc", want: "/chapters/book?q=abc"},
		{name: "chapter", slug: "book", chapterID: "s1", want: "/chapters/book/s1"},
		{name: "chapter with query", slug: "book", chapterID: "s1", query: "a b", want: "/chapters/book/s1?q=a+b"},
		{name: "escaped id", slug: "my book", chapterID: "x/y", want: "/chapters/my%20book/x%2Fy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.ChapterURL(tt.slug, tt.chapterID, tt.query); got != tt.want {
				t.Errorf("ChapterURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
