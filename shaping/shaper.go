// Package shaping turns (text, style.ComputedStyle) spans into shaped glyph
// runs using go-text/typesetting's HarfBuzz port, and breaks shaped runs
// into justified/aligned lines. Runs are expressed in points at the
// requested font size and fonts come from a pluggable FontSource.
package shaping

import (
	"bytes"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	hbshaping "github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/foliopress/paginator/style"
)

// FontKey identifies a font face to load: family name plus weight/style.
type FontKey struct {
	Family string
	Weight style.FontWeight
	Style  style.FontStyle
}

// FontSource resolves a FontKey to raw TrueType/OpenType bytes.
// fonts.Registry implements it over faces registered directly or loaded
// through a resources.Provider.
type FontSource interface {
	Font(key FontKey) ([]byte, error)
}

// ShapedGlyph is a single positioned glyph, in points at the run's font
// size, the unit downstream layout works in.
type ShapedGlyph struct {
	GlyphID  int
	Cluster  int // byte offset into the run's source text
	XAdvance float64
	YAdvance float64
	XOffset  float64
	YOffset  float64
}

// BreakKind classifies the break opportunity following a ShapedRun.
type BreakKind int

const (
	// BreakNone means no line break may occur after this run.
	BreakNone BreakKind = iota
	// BreakSpace is a break opportunity at whitespace (the space itself is
	// consumed, not carried to the next line).
	BreakSpace
	// BreakHyphen is a soft-hyphen break opportunity. The soft hyphen is
	// dropped from the run's text, and no hyphen glyph is drawn when the
	// line breaks there.
	BreakHyphen
	// BreakMandatory is an explicit ir.LineBreak: the line ends here
	// unconditionally.
	BreakMandatory
)

// ShapedRun is one shaped, undivided stretch of text carrying a single
// style. A paragraph is a sequence of ShapedRuns.
type ShapedRun struct {
	Style      *style.ComputedStyle
	Text       string
	Glyphs     []ShapedGlyph
	Width      float64
	Ascent     float64
	Descent    float64
	LineHeight float64
	Break      BreakKind
	// IsImage marks a run that replaces text shaping with a fixed WxH box
	// for an inline image.
	ImageW, ImageH float64
	IsImage        bool
}

// Shaper shapes text spans into ShapedRuns, caching parsed font faces by
// FontKey for the lifetime of the Shaper so a face is parsed once, not
// once per span.
type Shaper struct {
	source FontSource

	mu    sync.Mutex
	faces map[FontKey]*gofont.Face
}

// NewShaper constructs a Shaper backed by the given font resolver.
func NewShaper(source FontSource) *Shaper {
	return &Shaper{source: source, faces: map[FontKey]*gofont.Face{}}
}

func (s *Shaper) face(key FontKey) (*gofont.Face, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.faces[key]; ok {
		return f, nil
	}
	raw, err := s.source.Font(key)
	if err != nil {
		return nil, fmt.Errorf("shaping: load font %+v: %w", key, err)
	}
	face, err := gofont.ParseTTF(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("shaping: parse font %+v: %w", key, err)
	}
	s.faces[key] = face
	return face, nil
}

// ShapeSpan shapes a single (text, style) span into one ShapedRun. brk is
// the break opportunity immediately following the span, as determined by
// the caller from the source text's trailing whitespace/hyphen/hard break.
func (s *Shaper) ShapeSpan(text string, cs *style.ComputedStyle, brk BreakKind) (ShapedRun, error) {
	face, err := s.face(FontKey{Family: cs.FontFamily, Weight: cs.FontWeight, Style: cs.FontStyle})
	if err != nil {
		return ShapedRun{}, err
	}

	runes := []rune(text)
	script := detectScript(runes)
	dir := scriptDirection(script)

	size := fixed.I(int(cs.FontSize))

	shaper := &hbshaping.HarfbuzzShaper{}
	output := shaper.Shape(hbshaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      face,
		Size:      size,
		Script:    script,
		Language:  language.DefaultLanguage(),
	})

	glyphs := make([]ShapedGlyph, 0, len(output.Glyphs))
	var width float64
	for _, g := range output.Glyphs {
		xAdv := fixed266ToFloat(g.XAdvance)
		glyphs = append(glyphs, ShapedGlyph{
			GlyphID:  int(g.GlyphID),
			Cluster:  int(g.ClusterIndex),
			XAdvance: xAdv,
			YAdvance: fixed266ToFloat(g.YAdvance),
			XOffset:  fixed266ToFloat(g.XOffset),
			YOffset:  fixed266ToFloat(g.YOffset),
		})
		width += xAdv
	}

	lineHeight := cs.LineHeight
	ascent := cs.FontSize * 0.8
	descent := cs.FontSize * 0.2

	return ShapedRun{
		Style:      cs,
		Text:       text,
		Glyphs:     glyphs,
		Width:      width,
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: lineHeight,
		Break:      brk,
	}, nil
}

func fixed266ToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin
	for _, r := range runes {
		sc := scriptFromRune(r)
		if sc == language.Unknown {
			continue
		}
		counts[sc]++
		if counts[sc] > maxCount {
			maxCount = counts[sc]
			best = sc
		}
	}
	return best
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Bengali, r):
		return language.Bengali
	case unicode.Is(unicode.Gurmukhi, r):
		return language.Gurmukhi
	case unicode.Is(unicode.Gujarati, r):
		return language.Gujarati
	case unicode.Is(unicode.Oriya, r):
		return language.Oriya
	case unicode.Is(unicode.Tamil, r):
		return language.Tamil
	case unicode.Is(unicode.Telugu, r):
		return language.Telugu
	case unicode.Is(unicode.Kannada, r):
		return language.Kannada
	case unicode.Is(unicode.Malayalam, r):
		return language.Malayalam
	case unicode.Is(unicode.Sinhala, r):
		return language.Sinhala
	case unicode.Is(unicode.Lao, r):
		return language.Lao
	case unicode.Is(unicode.Tibetan, r):
		return language.Tibetan
	case unicode.Is(unicode.Myanmar, r):
		return language.Myanmar
	case unicode.Is(unicode.Khmer, r):
		return language.Khmer
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}

// SplitSpan scans text for whitespace runs and returns the sub-span up to
// and including one collapsed trailing space (so the run's natural shaped
// width already carries one inter-word gap), the BreakKind found there, and
// the remainder of text after the break. If no break opportunity exists it
// returns the whole text with BreakNone.
func SplitSpan(text string) (head string, brk BreakKind, rest string) {
	for i, r := range text {
		if r == '\n' {
			return text[:i], BreakMandatory, text[i+1:]
		}
		if r == '­' { // soft hyphen
			return text[:i], BreakHyphen, text[i+len(string(r)):]
		}
		if unicode.IsSpace(r) {
			j := i + len(string(r))
			for j < len(text) {
				r2, size := decodeRune(text[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += size
			}
			return text[:i] + " ", BreakSpace, text[j:]
		}
	}
	return text, BreakNone, ""
}

func decodeRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}
