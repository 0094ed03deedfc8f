package style

// BorderStyle is the stroke pattern used to render a Border.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSolid
	BorderDashed
	BorderDotted
	BorderDouble
)

// Border describes one edge of a box's border.
type Border struct {
	Width float64
	Style BorderStyle
	Color Color
}

// PageSize is a named or custom page dimension, in points.
type PageSize struct {
	Name          string // "A4", "Letter", "Legal", "" for Custom
	Width, Height float64
}

var (
	A4     = PageSize{Name: "A4", Width: 595.28, Height: 841.89}
	Letter = PageSize{Name: "Letter", Width: 612, Height: 792}
	Legal  = PageSize{Name: "Legal", Width: 612, Height: 1008}
)

// Custom constructs an explicit page size.
func Custom(w, h float64) PageSize { return PageSize{Width: w, Height: h} }
