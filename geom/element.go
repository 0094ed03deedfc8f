package geom

import "github.com/foliopress/paginator/style"

// ElementKind discriminates a PositionedElement's payload. The set is
// closed: text runs, filled rectangles (backgrounds and borders), and
// placed images.
type ElementKind int

const (
	ElemText ElementKind = iota
	ElemRect
	ElemImage
)

// PositionedElement is one fully-positioned drawing operation on a page.
// It owns every value it needs for rendering; nothing borrows from the
// per-record node tree, so elements survive the tree's arena.
type PositionedElement struct {
	X, Y, W, H float64
	Style      *style.ComputedStyle
	Kind       ElementKind

	// ElemText payload.
	Content   string
	Href      string // external link, or "#id" for an internal anchor
	Underline bool

	// RefTarget marks a page-reference placeholder: the consumer rewrites
	// Content with the target anchor's final page number in two-pass mode.
	RefTarget string

	// TargetPage is the resolved 1-based global page of an internal link,
	// filled in by the consumer after anchor resolution. Zero means
	// unresolved or external.
	TargetPage int

	// ElemImage payload.
	Src string
}
