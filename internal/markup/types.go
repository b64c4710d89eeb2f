package markup

import (
	"fmt"
	"strings"
)

// BlockKind identifies a top-level render block.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockVerse     BlockKind = "verse"
	BlockImage     BlockKind = "image"
	BlockFootnotes BlockKind = "footnotes"
)

// SpanKind identifies an inline node inside a paragraph.
type SpanKind string

const (
	SpanText        SpanKind = "text"
	SpanLineBreak   SpanKind = "line_break"
	SpanBracket     SpanKind = "bracket"
	SpanParen       SpanKind = "paren"
	SpanBrace       SpanKind = "brace"
	SpanFootnoteRef SpanKind = "footnote_ref"
	SpanImage       SpanKind = "image"
)

// Segment is a run of text that is either highlighted or not.
// Anchor marks the first highlighted segment of a render result.
type Segment struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight,omitempty"`
	Anchor    bool   `json:"anchor,omitempty"`
}

// Span is one node of a paragraph's inline tree.
type Span struct {
	Kind     SpanKind  `json:"kind"`
	Segments []Segment `json:"segments,omitempty"` // SpanText
	Children []Span    `json:"children,omitempty"` // SpanBracket, SpanParen, SpanBrace
	Number   int       `json:"number,omitempty"`   // SpanFootnoteRef
	Image    *Image    `json:"image,omitempty"`    // SpanImage
}

// Text returns the concatenated text of a text span.
func (s Span) Text() string {
	return joinSegments(s.Segments)
}

// Image is a sized image reference with a normalized path.
type Image struct {
	Src    string `json:"src"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Hemistich is one half of a verse line.
// Text is its plain text; Justified is the same text stretched with tatweel.
// The text leaves of Spans cover Justified.
type Hemistich struct {
	Text      string `json:"text"`
	Justified string `json:"justified"`
	Spans     []Span `json:"spans"`
}

// VerseLine holds one or two hemistichs.
type VerseLine struct {
	Hemistichs []Hemistich `json:"hemistichs"`
}

// Footnote is a numbered note collected from a [[...]] marker.
type Footnote struct {
	Number   int       `json:"number"`
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// String formats the footnote as it appears in the footnote list.
func (f Footnote) String() string {
	return fmt.Sprintf("%d - %s", f.Number, f.Text)
}

// Block is a typed unit of renderable output.
type Block struct {
	Kind      BlockKind   `json:"kind"`
	Spans     []Span      `json:"spans,omitempty"`     // BlockParagraph
	Lines     []VerseLine `json:"lines,omitempty"`     // BlockVerse
	Image     *Image      `json:"image,omitempty"`     // BlockImage
	Footnotes []Footnote  `json:"footnotes,omitempty"` // BlockFootnotes
}

// Result is the output of a render pass.
type Result struct {
	Blocks       []Block `json:"blocks"`
	Footnotes    int     `json:"footnotes"`
	HasHighlight bool    `json:"has_highlight"`
}

func joinSegments(segments []Segment) string {
	if len(segments) == 1 {
		return segments[0].Text
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
