package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"rawda/internal/contextutil"
	"rawda/internal/service"
)

// PageHandler serves documents and chapters as RTL HTML reading pages.
type PageHandler struct {
	reader   service.ReaderService
	template *template.Template
}

// chapterLink is one entry of a chapter index.
type chapterLink struct {
	Number int
	Title  string
	URL    string
}

// readingPageData holds template data for rendered reading pages.
type readingPageData struct {
	Title         string
	Description   string
	DocumentTitle string
	DocumentURL   string
	Chapters      []chapterLink // document index page only
	Chapter       *service.ChapterRef
	Total         int
	PrevURL       string
	NextURL       string
	Content       template.HTML
}

// NewPageHandler creates a new handler for reading pages.
func NewPageHandler(reader service.ReaderService) *PageHandler {
	tmpl := template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  {{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
  <style>
    body {
      font-family: 'Amiri', 'Noto Naskh Arabic', serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 860px;
      line-height: 2;
      background: #fdfaf3;
      color: #2b2118;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid #e0d6c2;
      padding-bottom: 1rem;
    }
    h1 {
      margin: 0;
      font-size: 1.9rem;
    }
    .meta {
      color: #7a6a55;
      font-size: 0.95rem;
    }
    .verse {
      margin: 1.5rem 0;
    }
    .verse-line {
      display: flex;
      justify-content: space-between;
      gap: 2rem;
    }
    .hemistich {
      white-space: nowrap;
    }
    .bracket { color: #8b4513; }
    .paren { color: #1f6f43; }
    .brace { color: #6b3fa0; }
    mark.highlight {
      background: #ffe08a;
      padding: 0 2px;
    }
    .footnotes {
      border-top: 1px solid #e0d6c2;
      margin-top: 2rem;
      padding-top: 1rem;
      font-size: 0.9rem;
      list-style: none;
    }
    figure.image img {
      max-width: 100%;
      height: auto;
    }
    nav.pager {
      display: flex;
      justify-content: space-between;
      margin-top: 2rem;
    }
    a {
      color: #8b4513;
      text-decoration: none;
    }
    a:hover {
      text-decoration: underline;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{if .Chapter}}{{.Chapter.Title}}{{else}}{{.DocumentTitle}}{{end}}</h1>
    {{if .Chapter}}<p class="meta"><a href="{{.DocumentURL}}">{{.DocumentTitle}}</a> &middot; الفصل {{.Chapter.Number}} من {{.Total}}</p>{{end}}
  </header>
  {{if .Chapter}}
  <article>{{.Content}}</article>
  <nav class="pager">
    {{if .PrevURL}}<a rel="prev" href="{{.PrevURL}}">&rarr; الفصل السابق</a>{{else}}<span></span>{{end}}
    {{if .NextURL}}<a rel="next" href="{{.NextURL}}">الفصل التالي &larr;</a>{{end}}
  </nav>
  {{else}}
  <ol class="chapters">
    {{range .Chapters}}<li><a href="{{.URL}}">{{.Title}}</a></li>
    {{else}}<li>لا توجد فصول</li>{{end}}
  </ol>
  {{end}}
</body>
</html>`))

	return &PageHandler{
		reader:   reader,
		template: tmpl,
	}
}

// Document renders the chapter index of a document.
func (h *PageHandler) Document(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := pathParam(r, "name")
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	view, err := h.reader.Document(ctx, name)
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	links := make([]chapterLink, len(view.Chapters))
	for i, c := range view.Chapters {
		links[i] = chapterLink{
			Number: c.Number,
			Title:  c.Title,
			URL:    service.ChapterURL(view.Slug, c.ID, ""),
		}
	}

	h.render(w, r, readingPageData{
		Title:         view.Title,
		DocumentTitle: view.Title,
		DocumentURL:   service.ChapterURL(view.Slug, "", ""),
		Chapters:      links,
	})
}

// Chapter renders one chapter. A q parameter highlights the term and is
// carried over to the previous and next links.
func (h *PageHandler) Chapter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := chapterRequest(r)
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	view, err := h.reader.Chapter(ctx, req)
	if err != nil {
		h.writePageError(w, r, err)
		return
	}

	data := readingPageData{
		Title:         view.Chapter.Title + " - " + view.DocumentTitle,
		Description:   view.Description,
		DocumentTitle: view.DocumentTitle,
		DocumentURL:   service.ChapterURL(view.Slug, "", ""),
		Chapter:       &view.Chapter,
		Total:         view.Total,
		Content:       view.Render.HTML(),
	}
	if view.HasPrev {
		data.PrevURL = service.ChapterURL(view.Slug, view.PrevID, req.Highlight)
	}
	if view.HasNext {
		data.NextURL = service.ChapterURL(view.Slug, view.NextID, req.Highlight)
	}

	h.render(w, r, data)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, data readingPageData) {
	ctx := r.Context()

	var buf bytes.Buffer
	if err := h.template.Execute(&buf, data); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to execute page template", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// writePageError writes a plain text error using the same status mapping as the JSON API.
func (h *PageHandler) writePageError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status, msg := errorStatus(err, "failed to render page")
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "reading page failed", "path", r.URL.Path, "status", status, "error", err)
	http.Error(w, msg, status)
}
