package shaping

import "github.com/foliopress/paginator/style"

// TextShaper abstracts span shaping so layout code can run against either
// the HarfBuzz-backed Shaper or fixed metrics when no font files are
// registered.
type TextShaper interface {
	ShapeSpan(text string, cs *style.ComputedStyle, brk BreakKind) (ShapedRun, error)
}

var _ TextShaper = (*Shaper)(nil)
var _ TextShaper = FixedShaper{}

// FixedShaper shapes text with synthetic metrics: every rune advances by
// AdvanceRatio x font-size. It needs no font files, which makes layout
// deterministic in tests and keeps the engine usable before any fonts are
// registered. Glyph ids are the runes themselves.
type FixedShaper struct {
	// AdvanceRatio is the per-rune advance as a fraction of the font size.
	// Zero means the default 0.5.
	AdvanceRatio float64
}

func (f FixedShaper) ShapeSpan(text string, cs *style.ComputedStyle, brk BreakKind) (ShapedRun, error) {
	ratio := f.AdvanceRatio
	if ratio == 0 {
		ratio = 0.5
	}
	adv := cs.FontSize * ratio

	runes := []rune(text)
	glyphs := make([]ShapedGlyph, 0, len(runes))
	var width float64
	byteOff := 0
	for _, r := range runes {
		glyphs = append(glyphs, ShapedGlyph{
			GlyphID:  int(r),
			Cluster:  byteOff,
			XAdvance: adv,
		})
		width += adv
		byteOff += len(string(r))
	}

	return ShapedRun{
		Style:      cs,
		Text:       text,
		Glyphs:     glyphs,
		Width:      width,
		Ascent:     cs.FontSize * 0.8,
		Descent:    cs.FontSize * 0.2,
		LineHeight: cs.LineHeight,
		Break:      brk,
	}, nil
}
