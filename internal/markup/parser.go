package markup

import (
	"regexp"
	"strings"
)

const (
	verseOpen  = "[sh]"
	verseClose = "[/sh]"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
	imagePath      = regexp.MustCompile(`(?i)^(?:img:)?([^\s\[\]]+\.(?:jpe?g|png|gif|webp|svg))$`)
	duplicateSlash = regexp.MustCompile(`/{2,}`)
)

// chunk is a stretch of source that is either prose or the body of a verse block.
type chunk struct {
	text  string
	verse bool
}

// splitVerse cuts content into prose and verse chunks. An opener without a
// matching closer stays in the prose.
func splitVerse(content string) []chunk {
	var chunks []chunk
	rest := content
	for {
		start := strings.Index(rest, verseOpen)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(verseOpen):], verseClose)
		if end < 0 {
			break
		}
		end += start + len(verseOpen)

		if start > 0 {
			chunks = append(chunks, chunk{text: rest[:start]})
		}
		chunks = append(chunks, chunk{text: rest[start+len(verseOpen) : end], verse: true})
		rest = rest[end+len(verseClose):]
	}
	if rest != "" {
		chunks = append(chunks, chunk{text: rest})
	}
	return chunks
}

// splitParagraphs splits prose on blank lines and drops empty paragraphs.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// verseLines splits a verse body into lines of hemistichs. Lines break on real
// newlines and on the two-character escape \n; a line splits on its first "="
// outside a footnote.
func verseLines(body string) [][]string {
	body = strings.ReplaceAll(body, `\n`, "\n")
	var lines [][]string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var halves []string
		left, right := cutHemistichs(line)
		for _, h := range []string{left, right} {
			if h = strings.TrimSpace(h); h != "" {
				halves = append(halves, h)
			}
		}
		if len(halves) > 0 {
			lines = append(lines, halves)
		}
	}
	return lines
}

// cutHemistichs splits a verse line around its first "=" that is not inside
// a [[...]] footnote.
func cutHemistichs(line string) (string, string) {
	for i := 0; i < len(line); {
		rest := line[i:]
		if strings.HasPrefix(rest, "[[") {
			if end := strings.Index(rest[2:], "]]"); end >= 0 {
				i += 2 + end + 2
				continue
			}
		}
		if rest[0] == '=' {
			return line[:i], line[i+1:]
		}
		i++
	}
	return line, ""
}

// matchImage reports whether inner names an image and returns its normalized path.
func matchImage(inner string) (string, bool) {
	m := imagePath.FindStringSubmatch(inner)
	if m == nil {
		return "", false
	}
	return NormalizeImagePath(m[1]), true
}

// NormalizeImagePath collapses repeated slashes and ensures a single leading slash.
func NormalizeImagePath(p string) string {
	p = duplicateSlash.ReplaceAllString(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// frame is an open span on the parser stack.
type frame struct {
	kind     SpanKind
	opener   string
	children []Span
	buf      strings.Builder
}

func (f *frame) flush() {
	if f.buf.Len() == 0 {
		return
	}
	text := f.buf.String()
	f.buf.Reset()
	if n := len(f.children); n > 0 && f.children[n-1].Kind == SpanText {
		f.children[n-1].Segments[0].Text += text
		return
	}
	f.children = append(f.children, Span{Kind: SpanText, Segments: []Segment{{Text: text}}})
}

func (f *frame) add(s Span) {
	f.flush()
	f.children = append(f.children, s)
}

// inlineParser builds the span tree of one paragraph. Footnotes are numbered
// through the shared notes slice so numbering runs across the whole content.
type inlineParser struct {
	notes *[]Footnote
	image Image
}

func (p *inlineParser) parse(text string) []Span {
	stack := []*frame{{}}
	top := func() *frame { return stack[len(stack)-1] }

	push := func(kind SpanKind, opener string) {
		top().flush()
		stack = append(stack, &frame{kind: kind, opener: opener})
	}
	pop := func() {
		f := top()
		f.flush()
		stack = stack[:len(stack)-1]
		top().add(Span{Kind: f.kind, Children: f.children})
	}

	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, verseOpen), strings.HasPrefix(rest, verseClose):
			tok := verseOpen
			if strings.HasPrefix(rest, verseClose) {
				tok = verseClose
			}
			top().buf.WriteString(tok)
			i += len(tok)

		case strings.HasPrefix(rest, "[["):
			end := strings.Index(rest[2:], "]]")
			if end < 0 {
				push(SpanBracket, "[")
				i++
				continue
			}
			note := strings.TrimSpace(rest[2 : 2+end])
			n := len(*p.notes) + 1
			*p.notes = append(*p.notes, Footnote{Number: n, Text: note, Segments: []Segment{{Text: note}}})
			top().add(Span{Kind: SpanFootnoteRef, Number: n})
			i += 2 + end + 2

		case rest[0] == '[':
			if end := strings.IndexByte(rest, ']'); end > 0 {
				if src, ok := matchImage(rest[1:end]); ok {
					img := p.image
					img.Src = src
					top().add(Span{Kind: SpanImage, Image: &img})
					i += end + 1
					continue
				}
			}
			push(SpanBracket, "[")
			i++

		case rest[0] == ']':
			if top().kind == SpanBracket {
				pop()
			} else {
				top().buf.WriteByte(']')
			}
			i++

		case strings.HasPrefix(rest, "(("):
			push(SpanParen, "((")
			i += 2

		case strings.HasPrefix(rest, "))"):
			if top().kind == SpanParen {
				pop()
			} else {
				top().buf.WriteString("))")
			}
			i += 2

		case rest[0] == '{':
			push(SpanBrace, "{")
			i++

		case rest[0] == '}':
			if top().kind == SpanBrace {
				pop()
			} else {
				top().buf.WriteByte('}')
			}
			i++

		case strings.HasPrefix(rest, `\n`):
			top().add(Span{Kind: SpanLineBreak})
			i += 2

		case rest[0] == '\n':
			top().add(Span{Kind: SpanLineBreak})
			i++

		case rest[0] == '\r':
			i++

		default:
			top().buf.WriteByte(rest[0])
			i++
		}
	}

	// Unclosed openers become literal text; their children move up a level.
	for len(stack) > 1 {
		f := top()
		f.flush()
		stack = stack[:len(stack)-1]
		parent := top()
		parent.buf.WriteString(f.opener)
		for _, child := range f.children {
			if child.Kind == SpanText {
				parent.buf.WriteString(child.Text())
				continue
			}
			parent.add(child)
		}
	}

	root := stack[0]
	root.flush()
	return root.children
}
