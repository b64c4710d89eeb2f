package markup

import (
	"strings"
	"unicode"
)

// Options configures a Renderer. Zero values fall back to defaults.
type Options struct {
	VerseWidth  float64  // target hemistich width in pixels
	Measurer    Measurer // width source for justification
	ImageWidth  int
	ImageHeight int
}

// Renderer turns annotated content into render blocks.
// A Renderer is immutable and safe for concurrent use if its Measurer is.
type Renderer struct {
	verseWidth float64
	justifier  *Justifier
	image      Image
}

// NewRenderer creates a renderer from opts.
func NewRenderer(opts Options) *Renderer {
	width := opts.VerseWidth
	if width <= 0 {
		width = DefaultVerseWidth
	}
	return &Renderer{
		verseWidth: width,
		justifier:  NewJustifier(opts.Measurer),
		image:      Image{Width: opts.ImageWidth, Height: opts.ImageHeight},
	}
}

// VerseWidth returns the target hemistich width.
func (r *Renderer) VerseWidth() float64 {
	return r.verseWidth
}

// WithVerseWidth returns a renderer that justifies verse to width.
// A non-positive width returns r unchanged.
func (r *Renderer) WithVerseWidth(width float64) *Renderer {
	if width <= 0 || width == r.verseWidth {
		return r
	}
	c := *r
	c.verseWidth = width
	return &c
}

var defaultRenderer = NewRenderer(Options{})

// Render parses content with the default renderer.
func Render(content, highlight string) Result {
	return defaultRenderer.Render(content, highlight)
}

// Render parses content into blocks and marks every occurrence of highlight.
// Malformed markup is kept as literal text.
func (r *Renderer) Render(content, highlight string) Result {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	notes := []Footnote{}
	p := &inlineParser{notes: &notes, image: r.image}

	blocks := []Block{}
	for _, c := range splitVerse(content) {
		if c.verse {
			if b, ok := r.verse(p, c.text); ok {
				blocks = append(blocks, b)
			}
			continue
		}
		for _, para := range splitParagraphs(c.text) {
			blocks = append(blocks, paragraphBlocks(p.parse(para))...)
		}
	}
	if len(notes) > 0 {
		blocks = append(blocks, Block{Kind: BlockFootnotes, Footnotes: notes})
	}

	res := Result{Blocks: blocks, Footnotes: len(notes)}
	if h := newHighlighter(highlight); h != nil && h.apply(blocks) {
		res.HasHighlight = markAnchor(blocks)
	}
	return res
}

// verse builds a verse block. Each hemistich is parsed inline so its
// footnotes join the shared numbering, then only its text leaves are justified.
func (r *Renderer) verse(p *inlineParser, body string) (Block, bool) {
	lines := verseLines(body)
	if len(lines) == 0 {
		return Block{}, false
	}
	b := Block{Kind: BlockVerse, Lines: make([]VerseLine, 0, len(lines))}
	for _, halves := range lines {
		line := VerseLine{Hemistichs: make([]Hemistich, 0, len(halves))}
		for _, text := range halves {
			spans := p.parse(text)
			leaves := textLeaves(spans)
			runs := make([]string, len(leaves))
			for i, leaf := range leaves {
				runs[i] = leaf.Text()
			}
			justified := r.justifier.JustifyRuns(runs, r.verseWidth)
			for i, leaf := range leaves {
				leaf.Segments = []Segment{{Text: justified[i]}}
			}
			line.Hemistichs = append(line.Hemistichs, Hemistich{
				Text:      strings.Join(runs, ""),
				Justified: strings.Join(justified, ""),
				Spans:     spans,
			})
		}
		b.Lines = append(b.Lines, line)
	}
	return b, true
}

// textLeaves returns the text spans of a span tree in document order.
func textLeaves(spans []Span) []*Span {
	var leaves []*Span
	for i := range spans {
		switch spans[i].Kind {
		case SpanText:
			leaves = append(leaves, &spans[i])
		case SpanBracket, SpanParen, SpanBrace:
			leaves = append(leaves, textLeaves(spans[i].Children)...)
		}
	}
	return leaves
}

// paragraphBlocks lifts top-level images out of a paragraph into image blocks.
func paragraphBlocks(spans []Span) []Block {
	var (
		blocks  []Block
		current []Span
	)
	flush := func() {
		if hasContent(current) {
			blocks = append(blocks, Block{Kind: BlockParagraph, Spans: current})
		}
		current = nil
	}
	for _, s := range spans {
		if s.Kind == SpanImage {
			flush()
			blocks = append(blocks, Block{Kind: BlockImage, Image: s.Image})
			continue
		}
		current = append(current, s)
	}
	flush()
	return blocks
}

// hasContent reports whether spans hold anything besides whitespace and breaks.
func hasContent(spans []Span) bool {
	for _, s := range spans {
		switch s.Kind {
		case SpanLineBreak:
		case SpanText:
			if strings.IndexFunc(s.Text(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}
