package markup

import (
	"regexp"
	"strings"
)

// highlighter marks case-insensitive occurrences of a term. Tatweel is
// ignored on both sides so stretched verse text still matches.
type highlighter struct {
	re *regexp.Regexp
}

func newHighlighter(term string) *highlighter {
	term = strings.TrimSpace(strings.ReplaceAll(term, string(Tatweel), ""))
	if term == "" {
		return nil
	}
	return &highlighter{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))}
}

// Highlight splits plain text into segments, marking every case-insensitive
// occurrence of term. An empty term yields a single plain segment.
func Highlight(text, term string) []Segment {
	h := newHighlighter(term)
	if h == nil {
		return []Segment{{Text: text}}
	}
	segs, _ := h.segments(text)
	return segs
}

// ranges returns the highlighted rune ranges [start, end) of text.
func (h *highlighter) ranges(text []rune) [][2]int {
	clean := make([]rune, 0, len(text))
	orig := make([]int, 0, len(text))
	for i, r := range text {
		if r == Tatweel {
			continue
		}
		clean = append(clean, r)
		orig = append(orig, i)
	}
	if len(clean) == 0 {
		return nil
	}

	cs := string(clean)
	runeAt := make([]int, len(cs)+1)
	idx := 0
	for bi := range cs {
		runeAt[bi] = idx
		idx++
	}
	runeAt[len(cs)] = len(clean)

	var out [][2]int
	for _, m := range h.re.FindAllStringIndex(cs, -1) {
		a, b := runeAt[m[0]], runeAt[m[1]]
		if b <= a {
			continue
		}
		out = append(out, [2]int{orig[a], orig[b-1] + 1})
	}
	return out
}

// segments splits text into highlighted and plain runs.
func (h *highlighter) segments(text string) ([]Segment, bool) {
	rs := h.ranges([]rune(text))
	if len(rs) == 0 {
		return []Segment{{Text: text}}, false
	}
	return splitRanges(text, 0, rs), true
}

// paragraph highlights the text leaves of a span tree. Leaves are matched as
// one flattened string; breaks, images and footnote markers act as separators.
func (h *highlighter) paragraph(spans []Span) bool {
	var (
		leaves []*Span
		offs   []int
		flat   []rune
	)
	var walk func([]Span)
	walk = func(ss []Span) {
		for i := range ss {
			s := &ss[i]
			switch s.Kind {
			case SpanText:
				leaves = append(leaves, s)
				offs = append(offs, len(flat))
				flat = append(flat, []rune(s.Text())...)
			case SpanBracket, SpanParen, SpanBrace:
				walk(s.Children)
			default:
				flat = append(flat, '\n')
			}
		}
	}
	walk(spans)

	rs := h.ranges(flat)
	if len(rs) == 0 {
		return false
	}
	for i, leaf := range leaves {
		leaf.Segments = splitRanges(leaf.Text(), offs[i], rs)
	}
	return true
}

// apply highlights every block in place and reports whether anything matched.
func (h *highlighter) apply(blocks []Block) bool {
	found := false
	for bi := range blocks {
		b := &blocks[bi]
		switch b.Kind {
		case BlockParagraph:
			if h.paragraph(b.Spans) {
				found = true
			}
		case BlockVerse:
			for li := range b.Lines {
				for hi := range b.Lines[li].Hemistichs {
					if h.paragraph(b.Lines[li].Hemistichs[hi].Spans) {
						found = true
					}
				}
			}
		case BlockFootnotes:
			for fi := range b.Footnotes {
				fn := &b.Footnotes[fi]
				var ok bool
				if fn.Segments, ok = h.segments(fn.Text); ok {
					found = true
				}
			}
		}
	}
	return found
}

// splitRanges cuts text, which starts at rune offset off of the matched
// string, into segments along the sorted, disjoint ranges rs.
func splitRanges(text string, off int, rs [][2]int) []Segment {
	runes := []rune(text)
	n := len(runes)
	var segs []Segment
	pos := 0
	for _, r := range rs {
		s, e := r[0]-off, r[1]-off
		if s < pos {
			s = pos
		}
		if e > n {
			e = n
		}
		if e <= s {
			continue
		}
		if s > pos {
			segs = append(segs, Segment{Text: string(runes[pos:s])})
		}
		segs = append(segs, Segment{Text: string(runes[s:e]), Highlight: true})
		pos = e
	}
	if pos < n || len(segs) == 0 {
		segs = append(segs, Segment{Text: string(runes[pos:])})
	}
	return segs
}

// markAnchor flags the first highlighted segment in document order.
func markAnchor(blocks []Block) bool {
	mark := func(segs []Segment) bool {
		for i := range segs {
			if segs[i].Highlight {
				segs[i].Anchor = true
				return true
			}
		}
		return false
	}

	var spans func([]Span) bool
	spans = func(ss []Span) bool {
		for i := range ss {
			if mark(ss[i].Segments) || spans(ss[i].Children) {
				return true
			}
		}
		return false
	}

	for bi := range blocks {
		b := &blocks[bi]
		switch b.Kind {
		case BlockParagraph:
			if spans(b.Spans) {
				return true
			}
		case BlockVerse:
			for li := range b.Lines {
				for hi := range b.Lines[li].Hemistichs {
					if spans(b.Lines[li].Hemistichs[hi].Spans) {
						return true
					}
				}
			}
		case BlockFootnotes:
			for fi := range b.Footnotes {
				if mark(b.Footnotes[fi].Segments) {
					return true
				}
			}
		}
	}
	return false
}
