package node

import (
	"math"

	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/style"
)

// tableCell is one cell's content (block semantics) plus its spans.
type tableCell struct {
	content *BlockNode
	colSpan int
	rowSpan int
}

// tableRow is an ordered list of cells.
type tableRow struct {
	cells []*tableCell
}

// cellPlacement fixes a cell onto the column grid.
type cellPlacement struct {
	cell     *tableCell
	colStart int
	colSpan  int
	rowSpan  int
}

// TableNode solves column widths against its width budget and paginates
// body rows, re-emitting header rows at the top of every continuation
// page.
type TableNode struct {
	base
	columns []style.Dimension
	header  []tableRow
	body    []tableRow

	headerGrid [][]cellPlacement
	bodyGrid   [][]cellPlacement
}

// tableSolution is the cached per-width solve: column widths and the
// heights of every header and body row.
type tableSolution struct {
	cols          []float64
	headerHeights []float64
	bodyHeights   []float64
}

// placeGrid assigns cells to columns, honoring col/row spans. Cells flow
// left to right into the next free column of their row.
func placeGrid(rows []tableRow, columnCount int) [][]cellPlacement {
	grid := make([][]cellPlacement, len(rows))
	// blocked[c] counts how many further rows column c is occupied by an
	// earlier row-spanning cell.
	blocked := make([]int, columnCount)

	for r, row := range rows {
		col := 0
		for _, cell := range row.cells {
			for col < columnCount && blocked[col] > 0 {
				col++
			}
			if col >= columnCount {
				break
			}
			cs := cell.colSpan
			if cs < 1 {
				cs = 1
			}
			if col+cs > columnCount {
				cs = columnCount - col
			}
			rs := cell.rowSpan
			if rs < 1 {
				rs = 1
			}
			grid[r] = append(grid[r], cellPlacement{cell: cell, colStart: col, colSpan: cs, rowSpan: rs})
			if rs > 1 {
				for c := col; c < col+cs; c++ {
					blocked[c] = rs - 1
				}
			}
			col += cs
		}
		for c := range blocked {
			if blocked[c] > 0 {
				blocked[c]--
			}
		}
	}
	return grid
}

func (n *TableNode) grids() ([][]cellPlacement, [][]cellPlacement) {
	if n.headerGrid == nil {
		n.headerGrid = placeGrid(n.header, len(n.columns))
	}
	if n.bodyGrid == nil {
		n.bodyGrid = placeGrid(n.body, len(n.columns))
	}
	return n.headerGrid, n.bodyGrid
}

// solveColumns distributes the width budget: absolute columns first, then
// percentages of what remains, then an equal split of the remainder among
// auto columns, then one redistribution pass from slack columns to columns
// whose max-content width overflows their assignment.
func (n *TableNode) solveColumns(budget float64) ([]float64, error) {
	count := len(n.columns)
	cols := make([]float64, count)

	remaining := budget
	autoCount := 0
	for i, d := range n.columns {
		if d.Kind == style.DimPt {
			cols[i] = d.Value
			remaining -= d.Value
		}
	}
	afterAbsolute := math.Max(0, remaining)
	for i, d := range n.columns {
		if d.Kind == style.DimPercent {
			cols[i] = d.Value / 100 * afterAbsolute
			remaining -= cols[i]
		}
	}
	for _, d := range n.columns {
		if d.IsAuto() {
			autoCount++
		}
	}
	if autoCount > 0 {
		share := math.Max(0, remaining) / float64(autoCount)
		for i, d := range n.columns {
			if d.IsAuto() {
				cols[i] = share
			}
		}
	}

	// Redistribution pass: shift slack toward overflowing columns.
	maxContent, err := n.maxContentWidths()
	if err != nil {
		return nil, err
	}
	var need, slack float64
	for i := range cols {
		if maxContent[i] > cols[i] {
			need += maxContent[i] - cols[i]
		} else {
			slack += cols[i] - maxContent[i]
		}
	}
	if need > 0 && slack > 0 {
		transfer := math.Min(need, slack)
		for i := range cols {
			if maxContent[i] > cols[i] {
				cols[i] += (maxContent[i] - cols[i]) / need * transfer
			} else if d := cols[i] - maxContent[i]; d > 0 {
				cols[i] -= d / slack * transfer
			}
		}
	}
	return cols, nil
}

// maxContentWidths measures every single-column cell with unbounded width.
func (n *TableNode) maxContentWidths() ([]float64, error) {
	widths := make([]float64, len(n.columns))
	headerGrid, bodyGrid := n.grids()
	for _, grid := range [][][]cellPlacement{headerGrid, bodyGrid} {
		for _, row := range grid {
			for _, p := range row {
				if p.colSpan != 1 {
					continue
				}
				sz, err := p.cell.content.Measure(geom.Unbounded())
				if err != nil {
					return nil, err
				}
				if sz.W > widths[p.colStart] {
					widths[p.colStart] = sz.W
				}
			}
		}
	}
	return widths, nil
}

// rowHeights measures each row at the solved column widths. Cells with
// rowSpan 1 set the row height; spanning cells only floor the last row
// they cover.
func rowHeights(grid [][]cellPlacement, cols []float64) ([]float64, error) {
	heights := make([]float64, len(grid))
	type spanFloor struct {
		firstRow, lastRow int
		height            float64
	}
	var floors []spanFloor

	for r, row := range grid {
		for _, p := range row {
			w := spanWidth(cols, p.colStart, p.colSpan)
			sz, err := p.cell.content.Measure(geom.BoxConstraints{MaxW: w, MaxH: math.Inf(1)})
			if err != nil {
				return nil, err
			}
			if p.rowSpan == 1 {
				if sz.H > heights[r] {
					heights[r] = sz.H
				}
			} else {
				floors = append(floors, spanFloor{firstRow: r, lastRow: r + p.rowSpan - 1, height: sz.H})
			}
		}
	}
	for _, f := range floors {
		last := f.lastRow
		if last >= len(heights) {
			last = len(heights) - 1
		}
		var covered float64
		for r := f.firstRow; r <= last; r++ {
			covered += heights[r]
		}
		if f.height > covered {
			heights[last] += f.height - covered
		}
	}
	return heights, nil
}

func spanWidth(cols []float64, start, span int) float64 {
	var w float64
	for i := start; i < start+span && i < len(cols); i++ {
		w += cols[i]
	}
	return w
}

// solve computes (or fetches) the per-width table solution.
func (n *TableNode) solve(lc *cache.LayoutCache, budget float64) (*tableSolution, error) {
	rounded := cache.RoundWidth(budget)
	if lc != nil {
		if v, ok := lc.Get(n.identity, cache.DomainTable, rounded); ok {
			if sol, ok := v.(*tableSolution); ok {
				return sol, nil
			}
		}
	}
	cols, err := n.solveColumns(budget)
	if err != nil {
		return nil, err
	}
	headerGrid, bodyGrid := n.grids()
	hh, err := rowHeights(headerGrid, cols)
	if err != nil {
		return nil, err
	}
	bh, err := rowHeights(bodyGrid, cols)
	if err != nil {
		return nil, err
	}
	sol := &tableSolution{cols: cols, headerHeights: hh, bodyHeights: bh}
	if lc != nil {
		lc.Put(n.identity, cache.DomainTable, rounded, sol)
	}
	return sol, nil
}

func (n *TableNode) Measure(c geom.BoxConstraints) (geom.Size, error) {
	cs := n.cs
	budget := c.MaxW
	if math.IsInf(budget, 1) {
		mc, err := n.maxContentWidths()
		if err != nil {
			return geom.Size{}, err
		}
		budget = 0
		for _, w := range mc {
			budget += w
		}
	} else {
		budget = math.Max(0, budget-cs.Margin.Left-cs.Margin.Right)
	}
	sol, err := n.solve(nil, budget)
	if err != nil {
		return geom.Size{}, err
	}
	var h float64
	for _, v := range sol.headerHeights {
		h += v
	}
	for _, v := range sol.bodyHeights {
		h += v
	}
	return geom.Size{
		W: budget + cs.Margin.Left + cs.Margin.Right,
		H: h + cs.Margin.Top + cs.Margin.Bottom,
	}, nil
}

func (n *TableNode) Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error) {
	rowIndex, err := resume.asTable()
	if err != nil {
		return Result{}, err
	}
	resuming := resume != nil
	cs := n.cs

	if !resuming {
		n.registerAnchor(ctx)
		marginToAdd := maxf(cs.Margin.Top, ctx.LastVMargin)
		if ctx.CursorY > 0 && marginToAdd > ctx.AvailableHeight() {
			return Suspend(TableState(0)), nil
		}
		ctx.CursorY += marginToAdd
		ctx.LastVMargin = 0
	}

	budget := math.Max(0, ctx.Bounds.Width-cs.Margin.Left-cs.Margin.Right)
	sol, err := n.solve(ctx.Cache, budget)
	if err != nil {
		return Result{}, err
	}
	headerGrid, bodyGrid := n.grids()
	left := cs.Margin.Left

	// Header rows repeat at the top of every page the table touches.
	var headerH float64
	for _, h := range sol.headerHeights {
		headerH += h
	}
	if !ctx.AtPageTop() {
		// Avoid stranding a header with no body rows at a page bottom.
		needed := headerH
		if rowIndex < len(sol.bodyHeights) {
			needed += sol.bodyHeights[rowIndex]
		}
		if needed > ctx.AvailableHeight() {
			return Suspend(TableState(rowIndex)), nil
		}
	}
	for r, row := range headerGrid {
		if err := n.layoutRow(ctx, row, sol.cols, left, sol.headerHeights[r]); err != nil {
			return Result{}, err
		}
	}

	bodyStarted := false
	for i := rowIndex; i < len(bodyGrid); i++ {
		rowH := sol.bodyHeights[i]
		if rowH > ctx.AvailableHeight() {
			if bodyStarted || !ctx.AtPageTop() {
				return Suspend(TableState(i)), nil
			}
			// The row alone exceeds the page: render with overflow.
			n.env.logger().Warn("table row taller than page, overflowing",
				observability.Int("row", i),
				observability.Int("node", int(n.identity)))
		}
		if err := n.layoutRow(ctx, bodyGrid[i], sol.cols, left, rowH); err != nil {
			return Result{}, err
		}
		bodyStarted = true
	}

	ctx.LastVMargin = cs.Margin.Bottom
	return Finished(), nil
}

// layoutRow lays one row's cells into per-cell child contexts and advances
// the cursor by the row height.
func (n *TableNode) layoutRow(ctx *Context, row []cellPlacement, cols []float64, left, rowH float64) error {
	y := ctx.Bounds.Y + ctx.CursorY
	for _, p := range row {
		x := ctx.Bounds.X + left + spanWidth(cols, 0, p.colStart)
		w := spanWidth(cols, p.colStart, p.colSpan)
		cellBounds := geom.Rect{X: x, Y: y, Width: w, Height: rowH}
		cellCtx := ctx.Child(cellBounds)
		// Rows are the pagination unit; cells lay out whole.
		if _, err := p.cell.content.Layout(cellCtx, geom.BoxConstraints{MaxW: w, MaxH: rowH}, nil); err != nil {
			return err
		}
	}
	ctx.CursorY += rowH
	return nil
}
