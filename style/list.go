package style

// ListStyleType selects the marker glyph or counter format for list items.
type ListStyleType int

const (
	Disc ListStyleType = iota
	Circle
	Square
	Decimal
	UpperAlpha
	LowerAlpha
	UpperRoman
	LowerRoman
	NoneMarker
)

// ListStylePosition controls whether the marker sits inside the content box
// (prepended as text) or outside it (in the padding area).
type ListStylePosition int

const (
	Outside ListStylePosition = iota
	Inside
)

// unorderedCycle and orderedCycle are the default marker sequences nested
// lists cycle through per depth when list-style-type is not overridden.
var (
	unorderedCycle = []ListStyleType{Disc, Circle, Square}
	orderedCycle   = []ListStyleType{Decimal, LowerAlpha, LowerRoman}
)

// DefaultListStyleType returns the marker type for a list at the given
// nesting depth (0-based) when no explicit list-style-type is set.
func DefaultListStyleType(depth int, ordered bool) ListStyleType {
	cycle := unorderedCycle
	if ordered {
		cycle = orderedCycle
	}
	return cycle[depth%len(cycle)]
}
