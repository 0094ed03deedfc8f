package node

import (
	"math"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/style"
)

// BlockNode stacks its children vertically inside a margin/border/padding
// box, collapsing vertical margins between siblings and breaking
// cooperatively across pages.
type BlockNode struct {
	base
	children []RenderNode
}

// Children exposes the node's children in flow order.
func (n *BlockNode) Children() []RenderNode { return n.children }

// horizontal returns the left inset to the content box and the total
// horizontal deduction (both margins, borders, paddings).
func (n *BlockNode) horizontal() (leftInset, deduction float64) {
	cs := n.cs
	leftInset = cs.Margin.Left + cs.BorderLeft.Width + cs.Padding.Left
	deduction = leftInset + cs.Margin.Right + cs.BorderRight.Width + cs.Padding.Right
	return
}

// contentWidth resolves the content-box width under the given constraints.
func (n *BlockNode) contentWidth(c geom.BoxConstraints) float64 {
	_, deduction := n.horizontal()
	if !n.cs.Width.IsAuto() {
		ref := c.MaxW
		if math.IsInf(ref, 1) {
			ref = 0
		}
		return n.cs.Width.Resolve(ref, 0)
	}
	if math.IsInf(c.MaxW, 1) {
		return math.Inf(1)
	}
	return math.Max(0, c.MaxW-deduction)
}

func (n *BlockNode) Measure(c geom.BoxConstraints) (geom.Size, error) {
	cs := n.cs
	contentW := n.contentWidth(c)
	childC := geom.BoxConstraints{MaxW: contentW, MaxH: math.Inf(1)}

	var contentH float64
	var lastMargin float64
	for i, child := range n.children {
		sz, err := child.Measure(childC)
		if err != nil {
			return geom.Size{}, err
		}
		if i > 0 {
			// Sibling margins collapse; Measure folds that into the sum
			// the same way Layout threads LastVMargin.
			collapse := math.Min(lastMargin, siblingTopMargin(child))
			contentH -= collapse
		}
		contentH += sz.H
		lastMargin = child.Style().Margin.Bottom
	}
	if !cs.Height.IsAuto() {
		ref := c.MaxH
		if math.IsInf(ref, 1) {
			ref = 0
		}
		contentH = cs.Height.Resolve(ref, contentH)
	}

	_, deduction := n.horizontal()
	w := contentW
	if !math.IsInf(w, 1) {
		w += deduction
	}
	h := cs.Margin.Top + cs.Margin.Bottom +
		cs.BorderTop.Width + cs.BorderBottom.Width +
		cs.Padding.Top + cs.Padding.Bottom + contentH
	return geom.Size{W: w, H: h}, nil
}

func siblingTopMargin(n RenderNode) float64 {
	return n.Style().Margin.Top
}

func (n *BlockNode) Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error) {
	startIndex, childResume, err := resume.asContainer(KindBlock)
	if err != nil {
		return Result{}, err
	}
	resuming := resume != nil
	cs := n.cs

	if !resuming {
		n.registerAnchor(ctx)
		marginToAdd := math.Max(cs.Margin.Top, ctx.LastVMargin)
		if ctx.CursorY > 0 && marginToAdd > ctx.AvailableHeight() {
			return Suspend(BlockState(0, nil)), nil
		}
		ctx.CursorY += marginToAdd
		ctx.LastVMargin = 0
	}

	var blockStartY float64
	if resuming {
		blockStartY = ctx.CursorY
	} else {
		blockStartY = ctx.CursorY
		ctx.CursorY += cs.BorderTop.Width + cs.Padding.Top
	}
	contentStartY := ctx.CursorY

	leftInset, deduction := n.horizontal()
	contentW := n.contentWidth(c)
	if c.MinW == c.MaxW && !math.IsInf(c.MaxW, 1) && c.MaxW > 0 {
		// Tight constraints: the parent (flex item sizing, table cells)
		// already fixed the outer width; any declared width yields.
		contentW = math.Max(0, c.MaxW-deduction)
	}
	if math.IsInf(contentW, 1) {
		contentW = 0
	}
	childBounds := geom.Rect{
		X:      ctx.Bounds.X + leftInset,
		Y:      ctx.Bounds.Y + contentStartY,
		Width:  contentW,
		Height: math.Max(0, ctx.Bounds.Height-contentStartY),
	}
	childCtx := ctx.Child(childBounds)
	childC := geom.BoxConstraints{MaxW: contentW, MaxH: childBounds.Height}

	elemMark := len(ctx.Sink.Elements)

	var split *State
	for i := startIndex; i < len(n.children); i++ {
		var r *State
		if i == startIndex {
			r = childResume
		}
		res, err := n.children[i].Layout(childCtx, childC, r)
		if err != nil {
			return Result{}, err
		}
		if res.Done {
			continue
		}
		if ctx.Sink.ForcedBreak {
			// Explicit page break: never re-invoke the node post-break.
			split = BlockState(i+1, nil)
		} else {
			split = BlockState(i, res.State)
		}
		break
	}

	usedHeight := childCtx.CursorY
	finished := split == nil
	if finished && !cs.Height.IsAuto() {
		resolved := cs.Height.Resolve(ctx.Bounds.Height, usedHeight)
		if resolved > usedHeight {
			usedHeight = resolved
		}
	}

	bottomSpacing := cs.Padding.Bottom + cs.BorderBottom.Width
	boxHeight := (contentStartY - blockStartY) + usedHeight
	if finished {
		boxHeight += bottomSpacing
	}
	n.decorate(ctx, elemMark, blockStartY, boxHeight, contentW, !resuming, finished)

	if finished {
		ctx.CursorY = contentStartY + usedHeight + bottomSpacing
		ctx.LastVMargin = cs.Margin.Bottom
		return Finished(), nil
	}
	ctx.CursorY = contentStartY + usedHeight
	return Suspend(split), nil
}

// decorate synthesizes the background and border rectangles for the slice
// of the block on this page, inserting them under the child elements. The
// top border is drawn only on the block's first page, the bottom border
// only on its last.
func (n *BlockNode) decorate(ctx *Context, mark int, blockStartY, boxHeight, contentW float64, first, last bool) {
	cs := n.cs
	if boxHeight <= 0 {
		return
	}
	x := ctx.Bounds.X + cs.Margin.Left
	y := ctx.Bounds.Y + blockStartY
	w := cs.BorderLeft.Width + cs.Padding.Left + contentW + cs.Padding.Right + cs.BorderRight.Width

	var rects []geom.PositionedElement
	if cs.Background.A > 0 {
		bg := *cs
		bg.Color = cs.Background
		rects = append(rects, geom.PositionedElement{
			X: x, Y: y, W: w, H: boxHeight,
			Style: &bg, Kind: geom.ElemRect,
		})
	}
	borderRect := func(bx, by, bw, bh float64, b style.Border) {
		if b.Width <= 0 || b.Style == style.BorderNone {
			return
		}
		bs := *cs
		bs.Color = b.Color
		rects = append(rects, geom.PositionedElement{
			X: bx, Y: by, W: bw, H: bh,
			Style: &bs, Kind: geom.ElemRect,
		})
	}
	if first {
		borderRect(x, y, w, cs.BorderTop.Width, cs.BorderTop)
	}
	if last {
		borderRect(x, y+boxHeight-cs.BorderBottom.Width, w, cs.BorderBottom.Width, cs.BorderBottom)
	}
	borderRect(x, y, cs.BorderLeft.Width, boxHeight, cs.BorderLeft)
	borderRect(x+w-cs.BorderRight.Width, y, cs.BorderRight.Width, boxHeight, cs.BorderRight)

	if len(rects) == 0 {
		return
	}
	elems := ctx.Sink.Elements
	ctx.Sink.Elements = append(elems[:mark], append(rects, elems[mark:]...)...)
}
