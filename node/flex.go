package node

import (
	"math"
	"sort"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/style"
)

// FlexNode lays its children out with the CSS flexbox algorithm restricted
// to the supported properties: direction, wrap, grow/shrink/basis, order,
// justify-content, align-items/align-self.
type FlexNode struct {
	base
	children []RenderNode
}

type flexItem struct {
	node  RenderNode
	index int // position after order-sorting; resume states refer to this

	basis     float64
	mainSize  float64
	crossSize float64
	rect      geom.Rect // relative to the container's content origin
}

// solve runs the flex algorithm and returns the order-sorted items with
// resolved rectangles plus the container's content size.
func (n *FlexNode) solve(c geom.BoxConstraints) ([]flexItem, geom.Size, error) {
	cs := n.cs
	column := cs.FlexDirection.IsColumn()

	mainLimit := c.MaxW
	crossLimit := c.MaxH
	if column {
		mainLimit, crossLimit = c.MaxH, c.MaxW
	}

	// 1. Stable order sort.
	items := make([]flexItem, len(n.children))
	for i, child := range n.children {
		items[i] = flexItem{node: child}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].node.Style().Order < items[j].node.Style().Order
	})
	for i := range items {
		items[i].index = i
	}

	// 2. Flex basis: explicit wins, else the measured main-axis size.
	for i := range items {
		ics := items[i].node.Style()
		measureC := geom.Unbounded()
		if !column && !math.IsInf(mainLimit, 1) {
			measureC.MaxW = mainLimit
		}
		sz, err := items[i].node.Measure(measureC)
		if err != nil {
			return nil, geom.Size{}, err
		}
		main, cross := sz.W, sz.H
		if column {
			main, cross = sz.H, sz.W
		}
		if !ics.FlexBasis.IsAuto() {
			ref := mainLimit
			if math.IsInf(ref, 1) {
				ref = 0
			}
			main = ics.FlexBasis.Resolve(ref, main)
		}
		items[i].basis = main
		items[i].crossSize = cross
	}

	// 3-4. Pack into lines and distribute free space per line.
	containerMain := mainLimit
	if math.IsInf(containerMain, 1) {
		var sum float64
		for i := range items {
			sum += items[i].basis
		}
		containerMain = sum
	}

	var flexLines [][]int // item indices per line
	if cs.FlexWrap == style.NoWrap || len(items) == 0 {
		line := make([]int, len(items))
		for i := range items {
			line[i] = i
		}
		flexLines = append(flexLines, line)
	} else {
		var line []int
		var used float64
		for i := range items {
			if len(line) > 0 && used+items[i].basis > containerMain {
				flexLines = append(flexLines, line)
				line, used = nil, 0
			}
			line = append(line, i)
			used += items[i].basis
		}
		if len(line) > 0 {
			flexLines = append(flexLines, line)
		}
	}
	if cs.FlexWrap == style.WrapReverse {
		for i, j := 0, len(flexLines)-1; i < j; i, j = i+1, j-1 {
			flexLines[i], flexLines[j] = flexLines[j], flexLines[i]
		}
	}

	for _, line := range flexLines {
		var used, growSum, shrinkWeight float64
		for _, idx := range line {
			ics := items[idx].node.Style()
			used += items[idx].basis
			growSum += ics.FlexGrow
			shrinkWeight += ics.FlexShrink * items[idx].basis
		}
		free := containerMain - used
		for _, idx := range line {
			ics := items[idx].node.Style()
			size := items[idx].basis
			if free > 0 && growSum > 0 {
				size += free * ics.FlexGrow / growSum
			} else if free < 0 && shrinkWeight > 0 {
				size += free * ics.FlexShrink * items[idx].basis / shrinkWeight
			}
			items[idx].mainSize = math.Max(0, size)
		}
	}

	// 5-6. Cross sizing/alignment and main-axis justification.
	var crossCursor float64
	for _, line := range flexLines {
		lineCross := 0.0
		for _, idx := range line {
			if items[idx].crossSize > lineCross {
				lineCross = items[idx].crossSize
			}
		}
		if len(flexLines) == 1 && !math.IsInf(crossLimit, 1) && crossLimit > 0 && cs.AlignItems == style.AlignStretch {
			lineCross = math.Max(lineCross, crossLimit)
		}

		var lineMain float64
		for _, idx := range line {
			lineMain += items[idx].mainSize
		}
		freeMain := math.Max(0, containerMain-lineMain)

		var mainPos, gap float64
		count := len(line)
		switch cs.JustifyContent {
		case style.FlexEnd:
			mainPos = freeMain
		case style.JustifyCenter:
			mainPos = freeMain / 2
		case style.SpaceBetween:
			if count > 1 {
				gap = freeMain / float64(count-1)
			}
		case style.SpaceAround:
			if count > 0 {
				gap = freeMain / float64(count)
				mainPos = gap / 2
			}
		case style.SpaceEvenly:
			if count > 0 {
				gap = freeMain / float64(count+1)
				mainPos = gap
			}
		}

		order := line
		if cs.FlexDirection.IsReverse() {
			order = make([]int, count)
			for i, idx := range line {
				order[count-1-i] = idx
			}
		}

		for _, idx := range order {
			ics := items[idx].node.Style()
			align := ics.AlignSelf
			if align == style.AlignAuto {
				align = cs.AlignItems
			}
			itemCross := items[idx].crossSize
			var crossPos float64
			switch align {
			case style.AlignStretch:
				itemCross = lineCross
			case style.AlignItemsEnd:
				crossPos = lineCross - itemCross
			case style.AlignItemsCenter:
				crossPos = (lineCross - itemCross) / 2
			case style.AlignBaseline:
				// Without per-item baselines this degrades to start.
			}

			if column {
				items[idx].rect = geom.Rect{
					X:      crossCursor + crossPos,
					Y:      mainPos,
					Width:  itemCross,
					Height: items[idx].mainSize,
				}
			} else {
				items[idx].rect = geom.Rect{
					X:      mainPos,
					Y:      crossCursor + crossPos,
					Width:  items[idx].mainSize,
					Height: itemCross,
				}
			}
			mainPos += items[idx].mainSize + gap
		}
		crossCursor += lineCross
	}

	var size geom.Size
	if column {
		size = geom.Size{W: crossCursor, H: containerMain}
	} else {
		size = geom.Size{W: containerMain, H: crossCursor}
	}
	return items, size, nil
}

func (n *FlexNode) Measure(c geom.BoxConstraints) (geom.Size, error) {
	cs := n.cs
	_, size, err := n.solve(c)
	if err != nil {
		return geom.Size{}, err
	}
	size.H += cs.Margin.Top + cs.Margin.Bottom
	size.W += cs.Margin.Left + cs.Margin.Right
	return size, nil
}

func (n *FlexNode) Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error) {
	startIndex, childResume, err := resume.asContainer(KindFlex)
	if err != nil {
		return Result{}, err
	}
	resuming := resume != nil
	cs := n.cs

	if !resuming {
		n.registerAnchor(ctx)
		marginToAdd := math.Max(cs.Margin.Top, ctx.LastVMargin)
		if ctx.CursorY > 0 && marginToAdd > ctx.AvailableHeight() {
			return Suspend(FlexState(0, nil)), nil
		}
		ctx.CursorY += marginToAdd
		ctx.LastVMargin = 0
	}

	contentW := math.Max(0, ctx.Bounds.Width-cs.Margin.Left-cs.Margin.Right)
	solveC := geom.BoxConstraints{MaxW: contentW, MaxH: math.Inf(1)}
	items, _, err := n.solve(solveC)
	if err != nil {
		return Result{}, err
	}

	// On resume, shift the remaining items up to the page top.
	var shift float64
	if startIndex > 0 {
		shift = math.Inf(1)
		for _, it := range items {
			if it.index >= startIndex && it.rect.Y < shift {
				shift = it.rect.Y
			}
		}
		if math.IsInf(shift, 1) {
			shift = 0
		}
	}

	avail := ctx.AvailableHeight()
	originX := ctx.Bounds.X + cs.Margin.Left
	originY := ctx.Bounds.Y + ctx.CursorY

	var maxBottom float64
	var split *State
	for _, it := range items {
		if it.index < startIndex {
			continue
		}
		top := it.rect.Y - shift
		bottom := top + it.rect.Height
		if top >= avail && !ctx.AtPageTop() {
			split = FlexState(it.index, nil)
			break
		}
		if bottom > avail && it.index > startIndex && !ctx.AtPageTop() {
			split = FlexState(it.index, nil)
			break
		}

		childBounds := geom.Rect{
			X:      originX + it.rect.X,
			Y:      originY + top,
			Width:  it.rect.Width,
			Height: math.Min(it.rect.Height, math.Max(0, avail-top)),
		}
		childCtx := ctx.Child(childBounds)
		childC := geom.Tight(it.rect.Width, it.rect.Height)

		var r *State
		if it.index == startIndex {
			r = childResume
		}
		res, err := it.node.Layout(childCtx, childC, r)
		if err != nil {
			return Result{}, err
		}
		if !res.Done {
			if ctx.Sink.ForcedBreak {
				split = FlexState(it.index+1, nil)
			} else {
				split = FlexState(it.index, res.State)
			}
			if bottom > maxBottom {
				maxBottom = bottom
			}
			break
		}
		if bottom > maxBottom {
			maxBottom = bottom
		}
	}

	ctx.CursorY += math.Min(maxBottom, avail)
	if split != nil {
		return Suspend(split), nil
	}
	ctx.LastVMargin = cs.Margin.Bottom
	return Finished(), nil
}
