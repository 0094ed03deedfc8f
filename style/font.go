package style

import "strconv"

// FontWeight is either a named weight or an explicit numeric CSS weight.
type FontWeight struct {
	Named   string // "thin", "light", "regular", "medium", "bold", "black", or "" for Numeric
	Numeric uint16
}

var namedWeights = map[string]uint16{
	"thin":    100,
	"light":   300,
	"regular": 400,
	"medium":  500,
	"bold":    700,
	"black":   900,
}

// ParseFontWeight parses a weight string: a recognized name ("thin" ..
// "black") or a bare integer.
func ParseFontWeight(s string) FontWeight {
	if v, ok := namedWeights[s]; ok {
		return FontWeight{Named: s, Numeric: v}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return FontWeight{Numeric: uint16(n)}
	}
	return FontWeight{Named: "regular", Numeric: 400}
}

// Value returns the resolved numeric weight (100-900 scale).
func (w FontWeight) Value() uint16 {
	if w.Numeric == 0 {
		return 400
	}
	return w.Numeric
}

// IsBold reports whether the weight is at least semi-bold (>=600), the
// threshold a shaper/renderer uses to pick a bold font variant.
func (w FontWeight) IsBold() bool { return w.Value() >= 600 }

// FontStyle selects the slant of a typeface.
type FontStyle int

const (
	FontNormal FontStyle = iota
	FontItalic
	FontOblique
)

// TextAlign is the horizontal alignment of a line within its box.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignRight
	AlignCenter
	AlignJustify
)
