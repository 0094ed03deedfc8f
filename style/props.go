package style

// Props is a partial style override: every field is a pointer, nil meaning
// "not set by this style set/override". It backs both named style sets in
// a Stylesheet and a node's inline style override.
type Props struct {
	FontFamily *string
	FontSize   *float64
	FontWeight *FontWeight
	FontStyle  *FontStyle
	LineHeight *float64
	TextAlign  *TextAlign
	Color      *Color
	Widows     *int
	Orphans    *int
	ListStyle  *ListStyleType
	ListPos    *ListStylePosition

	Margin     *Margins
	Padding    *Margins
	Width      *Dimension
	Height     *Dimension
	Background *Color
	Border     *Border // shorthand, applies to all four sides unless a per-side field below is also set
	BorderTop, BorderRight, BorderBottom, BorderLeft *Border

	FlexDirection  *FlexDirection
	FlexWrap       *FlexWrap
	FlexGrow       *float64
	FlexShrink     *float64
	FlexBasis      *Dimension
	JustifyContent *JustifyContent
	AlignItems     *AlignMode
	AlignSelf      *AlignMode
	Order          *int
}

// apply overlays the set fields of p onto cs, later overlays winning.
// Per-side border overrides take precedence over the border shorthand
// regardless of field declaration order.
func (p *Props) apply(cs *ComputedStyle) {
	if p == nil {
		return
	}
	if p.FontFamily != nil {
		cs.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		cs.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		cs.FontWeight = *p.FontWeight
	}
	if p.FontStyle != nil {
		cs.FontStyle = *p.FontStyle
	}
	if p.LineHeight != nil {
		cs.LineHeight = *p.LineHeight
		cs.lineHeightSet = true
	}
	if p.TextAlign != nil {
		cs.TextAlign = *p.TextAlign
	}
	if p.Color != nil {
		cs.Color = *p.Color
	}
	if p.Widows != nil {
		cs.Widows = *p.Widows
	}
	if p.Orphans != nil {
		cs.Orphans = *p.Orphans
	}
	if p.ListStyle != nil {
		cs.ListStyle = *p.ListStyle
	}
	if p.ListPos != nil {
		cs.ListPos = *p.ListPos
	}

	if p.Margin != nil {
		cs.Margin = *p.Margin
	}
	if p.Padding != nil {
		cs.Padding = *p.Padding
	}
	if p.Width != nil {
		cs.Width = *p.Width
	}
	if p.Height != nil {
		cs.Height = *p.Height
	}
	if p.Background != nil {
		cs.Background = *p.Background
	}

	if p.Border != nil {
		cs.BorderTop, cs.BorderRight, cs.BorderBottom, cs.BorderLeft = *p.Border, *p.Border, *p.Border, *p.Border
	}
	if p.BorderTop != nil {
		cs.BorderTop = *p.BorderTop
	}
	if p.BorderRight != nil {
		cs.BorderRight = *p.BorderRight
	}
	if p.BorderBottom != nil {
		cs.BorderBottom = *p.BorderBottom
	}
	if p.BorderLeft != nil {
		cs.BorderLeft = *p.BorderLeft
	}

	if p.FlexDirection != nil {
		cs.FlexDirection = *p.FlexDirection
	}
	if p.FlexWrap != nil {
		cs.FlexWrap = *p.FlexWrap
	}
	if p.FlexGrow != nil {
		cs.FlexGrow = *p.FlexGrow
	}
	if p.FlexShrink != nil {
		cs.FlexShrink = *p.FlexShrink
	}
	if p.FlexBasis != nil {
		cs.FlexBasis = *p.FlexBasis
	}
	if p.JustifyContent != nil {
		cs.JustifyContent = *p.JustifyContent
	}
	if p.AlignItems != nil {
		cs.AlignItems = *p.AlignItems
	}
	if p.AlignSelf != nil {
		cs.AlignSelf = *p.AlignSelf
	}
	if p.Order != nil {
		cs.Order = *p.Order
	}
}
