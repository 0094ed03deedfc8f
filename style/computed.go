package style

// ComputedStyle is the fully resolved style for one node: no optionals
// remain, every field carries a concrete value. It is produced by Resolver
// and is safe to share by pointer; nodes with identical computed
// properties are deduplicated by the per-record style cache.
type ComputedStyle struct {
	// Inherited properties.
	FontFamily string
	FontSize   float64
	FontWeight FontWeight
	FontStyle  FontStyle
	LineHeight float64 // resolved; never zero
	TextAlign  TextAlign
	Color      Color
	Widows     int
	Orphans    int
	ListStyle  ListStyleType
	ListPos    ListStylePosition

	// Non-inherited, reset to defaults on every node.
	Margin     Margins
	Padding    Margins
	Width      Dimension
	Height     Dimension
	Background Color
	BorderTop, BorderRight, BorderBottom, BorderLeft Border

	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	FlexGrow       float64
	FlexShrink     float64
	FlexBasis      Dimension
	JustifyContent JustifyContent
	AlignItems     AlignMode
	AlignSelf      AlignMode
	Order          int

	// explicit line-height, so the resolver can tell "set" from "default 1.2x"
	lineHeightSet bool
}

// Default returns the root ComputedStyle: Helvetica 12pt regular/normal,
// line-height 1.2x, black text, widows=2, orphans=2.
func Default() ComputedStyle {
	return ComputedStyle{
		FontFamily: "Helvetica",
		FontSize:   12,
		FontWeight: FontWeight{Named: "regular", Numeric: 400},
		FontStyle:  FontNormal,
		LineHeight: 12 * 1.2,
		TextAlign:  AlignLeft,
		Color:      Black,
		Widows:     2,
		Orphans:    2,
		ListStyle:  Disc,
		ListPos:    Outside,

		Width:      Auto(),
		Height:     Auto(),
		Background: Transparent,
		FlexBasis:  Auto(),
		FlexShrink: 1,
		AlignSelf:  AlignAuto,
	}
}

// inheritedFrom copies only the inheritable fields from parent onto a fresh
// default (non-inherited fields stay at their defaults).
func inheritedFrom(parent *ComputedStyle) ComputedStyle {
	cs := Default()
	if parent == nil {
		return cs
	}
	cs.FontFamily = parent.FontFamily
	cs.FontSize = parent.FontSize
	cs.FontWeight = parent.FontWeight
	cs.FontStyle = parent.FontStyle
	cs.LineHeight = parent.LineHeight
	cs.lineHeightSet = parent.lineHeightSet
	cs.TextAlign = parent.TextAlign
	cs.Color = parent.Color
	cs.Widows = parent.Widows
	cs.Orphans = parent.Orphans
	cs.ListStyle = parent.ListStyle
	cs.ListPos = parent.ListPos
	return cs
}
