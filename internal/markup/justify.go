package markup

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/text/unicode/norm"
)

// Tatweel is the Arabic elongation character inserted between connected letters.
const Tatweel = 'ـ'

const connectables = "بتثجحخسشصضطظعغفقكلمنهىي"

// Justification defaults.
const (
	DefaultVerseWidth = 360
	DefaultCharWidth  = 15
	DefaultMaxStretch = 20
	DefaultMaxTrail   = 8
)

// Measurer reports the rendered width of a string in pixels.
type Measurer interface {
	Width(text string) float64
}

// EstimateMeasurer assumes every character has the same width.
type EstimateMeasurer struct {
	CharWidth float64
}

// Width returns the rune count multiplied by CharWidth.
func (m EstimateMeasurer) Width(text string) float64 {
	cw := m.CharWidth
	if cw <= 0 {
		cw = DefaultCharWidth
	}
	return float64(len([]rune(text))) * cw
}

// FontMeasurer measures glyph advances of a parsed OpenType or TrueType font.
// It is safe for concurrent use.
type FontMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

// NewFontMeasurer parses font data and prepares a face at size points (72 DPI,
// so one point is one pixel).
func NewFontMeasurer(data []byte, size float64) (*FontMeasurer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return &FontMeasurer{face: face}, nil
}

// LoadFontMeasurer reads a font file from disk.
func LoadFontMeasurer(path string, size float64) (*FontMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	return NewFontMeasurer(data, size)
}

// Width returns the sum of glyph advances and kerning for text.
func (m *FontMeasurer) Width(text string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	adv := font.MeasureString(m.face, text)
	return float64(adv) / 64
}

// Close releases the font face.
func (m *FontMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face.Close()
}

// Justifier stretches a line toward a target width by inserting tatweel
// between connectable letter pairs.
type Justifier struct {
	Measurer    Measurer
	MaxStretch  int // cap on inserted tatweels
	MaxTrailing int // cap when the line has no connection point
}

// NewJustifier returns a justifier using m, or a 15px estimate when m is nil.
func NewJustifier(m Measurer) *Justifier {
	if m == nil {
		m = EstimateMeasurer{CharWidth: DefaultCharWidth}
	}
	return &Justifier{
		Measurer:    m,
		MaxStretch:  DefaultMaxStretch,
		MaxTrailing: DefaultMaxTrail,
	}
}

// Justify returns text with the largest number of tatweels, up to MaxStretch,
// whose measured width does not exceed target. Text that already fills the
// target is returned unchanged apart from NFC normalization.
func (j *Justifier) Justify(text string, target float64) string {
	return j.JustifyRuns([]string{text}, target)[0]
}

// JustifyRuns justifies runs as one line without stretching across run
// boundaries. Tatweels go only between connectable letters inside a run, and
// the joined width is measured against target. Without any connection point
// the tatweels trail the last non-empty run.
func (j *Justifier) JustifyRuns(runs []string, target float64) []string {
	text := make([][]rune, len(runs))
	best := make([]string, len(runs))
	var points []runPoint
	total := 0
	for i, r := range runs {
		best[i] = norm.NFC.String(r)
		text[i] = []rune(best[i])
		total += len(text[i])
		for _, at := range ConnectionPoints(text[i]) {
			points = append(points, runPoint{run: i, at: at})
		}
	}
	if total == 0 {
		return best
	}

	limit := j.MaxStretch
	if len(points) == 0 && j.MaxTrailing < limit {
		limit = j.MaxTrailing
	}

	for k := 1; k <= limit; k++ {
		candidate := stretchRuns(text, points, k)
		if j.Measurer.Width(strings.Join(candidate, "")) > target {
			break
		}
		best = candidate
	}
	return best
}

// runPoint is a connection point at rune index at of run.
type runPoint struct {
	run, at int
}

// ConnectionPoints returns every index i where runes i and i+1 are both
// connectable letters. A tatweel is inserted after index i.
func ConnectionPoints(runes []rune) []int {
	var points []int
	for i := 0; i+1 < len(runes); i++ {
		if isConnectable(runes[i]) && isConnectable(runes[i+1]) {
			points = append(points, i)
		}
	}
	return points
}

func isConnectable(r rune) bool {
	return r != Tatweel && strings.ContainsRune(connectables, r)
}

// stretchRuns inserts k tatweels distributed round-robin over points, earlier
// points taking the remainder.
func stretchRuns(text [][]rune, points []runPoint, k int) []string {
	counts := make([]map[int]int, len(text))
	if k > 0 && len(points) > 0 {
		base, extra := k/len(points), k%len(points)
		for idx, p := range points {
			if counts[p.run] == nil {
				counts[p.run] = make(map[int]int)
			}
			counts[p.run][p.at] = base
			if idx < extra {
				counts[p.run][p.at]++
			}
		}
	}

	out := make([]string, len(text))
	for i, runes := range text {
		var b strings.Builder
		b.Grow(len(string(runes)) + k*len(string(Tatweel)))
		for ri, r := range runes {
			b.WriteRune(r)
			if n := counts[i][ri]; n > 0 {
				b.WriteString(strings.Repeat(string(Tatweel), n))
			}
		}
		out[i] = b.String()
	}

	if k > 0 && len(points) == 0 {
		last := len(text) - 1
		for last > 0 && len(text[last]) == 0 {
			last--
		}
		out[last] += strings.Repeat(string(Tatweel), k)
	}
	return out
}
