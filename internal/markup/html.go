package markup

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// AnchorID is the element id given to the first highlighted segment.
const AnchorID = "first-highlight"

const scrollScript = `<script>(function(){var el=document.getElementById("` + AnchorID + `");if(el){el.scrollIntoView({block:"center"});}})();</script>`

// HTML renders the result as an HTML fragment. When a segment is anchored,
// the fragment ends with a script that scrolls it into view once.
func (r Result) HTML() template.HTML {
	var b strings.Builder
	anchored := false
	for _, block := range r.Blocks {
		switch block.Kind {
		case BlockParagraph:
			b.WriteString(`<p>`)
			writeSpans(&b, block.Spans, &anchored)
			b.WriteString("</p>\n")
		case BlockVerse:
			b.WriteString(`<div class="verse" dir="rtl">`)
			for _, line := range block.Lines {
				b.WriteString(`<div class="verse-line">`)
				for _, h := range line.Hemistichs {
					b.WriteString(`<span class="hemistich">`)
					writeSpans(&b, h.Spans, &anchored)
					b.WriteString(`</span>`)
				}
				b.WriteString(`</div>`)
			}
			b.WriteString("</div>\n")
		case BlockImage:
			b.WriteString(`<figure class="image">`)
			writeImage(&b, block.Image)
			b.WriteString("</figure>\n")
		case BlockFootnotes:
			b.WriteString(`<ol class="footnotes">`)
			for _, fn := range block.Footnotes {
				fmt.Fprintf(&b, `<li id="fn-%d"><a href="#fnref-%d">%d</a> - `, fn.Number, fn.Number, fn.Number)
				writeSegments(&b, fn.Segments, &anchored)
				b.WriteString(`</li>`)
			}
			b.WriteString("</ol>\n")
		}
	}
	if anchored {
		b.WriteString(scrollScript)
	}
	return template.HTML(b.String())
}

func writeSpans(b *strings.Builder, spans []Span, anchored *bool) {
	for _, s := range spans {
		switch s.Kind {
		case SpanText:
			writeSegments(b, s.Segments, anchored)
		case SpanLineBreak:
			b.WriteString("<br>")
		case SpanBracket, SpanParen, SpanBrace:
			fmt.Fprintf(b, `<span class="%s">`, s.Kind)
			writeSpans(b, s.Children, anchored)
			b.WriteString(`</span>`)
		case SpanFootnoteRef:
			fmt.Fprintf(b, `<sup class="footnote-ref"><a id="fnref-%d" href="#fn-%d">%d</a></sup>`, s.Number, s.Number, s.Number)
		case SpanImage:
			writeImage(b, s.Image)
		}
	}
}

func writeSegments(b *strings.Builder, segs []Segment, anchored *bool) {
	for _, seg := range segs {
		text := html.EscapeString(seg.Text)
		switch {
		case seg.Anchor && !*anchored:
			*anchored = true
			fmt.Fprintf(b, `<mark class="highlight" id="%s">%s</mark>`, AnchorID, text)
		case seg.Highlight:
			fmt.Fprintf(b, `<mark class="highlight">%s</mark>`, text)
		default:
			b.WriteString(text)
		}
	}
}

func writeImage(b *strings.Builder, img *Image) {
	if img == nil {
		return
	}
	fmt.Fprintf(b, `<img src="%s" alt="" loading="lazy"`, html.EscapeString(img.Src))
	if img.Width > 0 {
		fmt.Fprintf(b, ` width="%d"`, img.Width)
	}
	if img.Height > 0 {
		fmt.Fprintf(b, ` height="%d"`, img.Height)
	}
	b.WriteString(`>`)
}
