package node

import (
	"fmt"
	"strings"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/style"
)

// markerGap is the space between a marker and the item content, as a
// multiple of the item's font size.
const markerGap = 0.4

// ListNode is a sequence of list items. Layout-wise it is a block; the
// marker bookkeeping (depth, numbering, style cycling) happens at build
// time and lives on the items.
type ListNode struct {
	BlockNode
}

// ListItemNode is one list entry: block content plus a marker drawn on the
// first page the item appears on. With list-style-position outside, the
// marker sits left of the content box; with inside, the build step has
// already prepended it to the first paragraph.
type ListItemNode struct {
	base
	content *BlockNode

	markerText  string
	markerWidth float64
	measured    bool
}

// MarkerText exposes the computed marker, for tests.
func (n *ListItemNode) MarkerText() string { return n.markerText }

// markerFor renders the marker text for a 1-based item index.
func markerFor(t style.ListStyleType, index int) string {
	switch t {
	case style.Disc:
		return "•"
	case style.Circle:
		return "◦"
	case style.Square:
		return "▪"
	case style.Decimal:
		return fmt.Sprintf("%d.", index)
	case style.LowerAlpha:
		return alpha(index, false) + "."
	case style.UpperAlpha:
		return alpha(index, true) + "."
	case style.LowerRoman:
		return strings.ToLower(roman(index)) + "."
	case style.UpperRoman:
		return roman(index) + "."
	}
	return ""
}

func alpha(index int, upper bool) string {
	// 1 -> a, 26 -> z, 27 -> aa.
	var out []byte
	for index > 0 {
		index--
		out = append([]byte{byte('a' + index%26)}, out...)
		index /= 26
	}
	if upper {
		return strings.ToUpper(string(out))
	}
	return string(out)
}

var romanValues = []struct {
	v int
	s string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func roman(n int) string {
	var b strings.Builder
	for _, rv := range romanValues {
		for n >= rv.v {
			b.WriteString(rv.s)
			n -= rv.v
		}
	}
	return b.String()
}

// markerOffset measures the marker and returns the content indent it
// demands. Zero when the marker is empty or positioned inside.
func (n *ListItemNode) markerOffset() float64 {
	if n.markerText == "" || n.cs.ListPos == style.Inside {
		return 0
	}
	if !n.measured {
		if n.env != nil && n.env.Shaper != nil {
			run, err := n.env.Shaper.ShapeSpan(n.markerText, n.cs, 0)
			if err == nil {
				n.markerWidth = run.Width
			}
		}
		n.measured = true
	}
	return n.markerWidth + markerGap*n.cs.FontSize
}

func (n *ListItemNode) Measure(c geom.BoxConstraints) (geom.Size, error) {
	offset := n.markerOffset()
	inner := c
	if inner.MaxW > offset {
		inner.MaxW -= offset
	}
	sz, err := n.content.Measure(inner)
	if err != nil {
		return geom.Size{}, err
	}
	sz.W += offset
	return sz, nil
}

func (n *ListItemNode) Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error) {
	childIndex, childState, err := resume.asContainer(KindListItem)
	if err != nil {
		return Result{}, err
	}
	resuming := resume != nil

	var innerResume *State
	if resuming {
		innerResume = BlockState(childIndex, childState)
	}

	offset := n.markerOffset()

	if !resuming {
		n.registerAnchor(ctx)
		if n.markerText != "" && n.cs.ListPos == style.Outside {
			// The marker aligns with the item's first baseline.
			top := ctx.CursorY + maxf(n.cs.Margin.Top, ctx.LastVMargin) + n.cs.Padding.Top
			ctx.Emit(geom.PositionedElement{
				X:       ctx.Bounds.X + offset - markerGap*n.cs.FontSize - n.markerWidth,
				Y:       ctx.Bounds.Y + top + n.cs.FontSize*0.8,
				W:       n.markerWidth,
				H:       n.cs.FontSize,
				Style:   n.cs,
				Kind:    geom.ElemText,
				Content: n.markerText,
			})
		}
	}

	sub := *ctx
	sub.Bounds = geom.Rect{
		X:      ctx.Bounds.X + offset,
		Y:      ctx.Bounds.Y,
		Width:  maxf(0, ctx.Bounds.Width-offset),
		Height: ctx.Bounds.Height,
	}
	innerC := c
	if innerC.MaxW > offset {
		innerC.MaxW -= offset
	}

	res, err := n.content.Layout(&sub, innerC, innerResume)
	if err != nil {
		return Result{}, err
	}
	ctx.CursorY = sub.CursorY
	ctx.LastVMargin = sub.LastVMargin

	if res.Done {
		return Finished(), nil
	}
	return Suspend(ListItemState(res.State.ChildIndex, res.State.Child)), nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
