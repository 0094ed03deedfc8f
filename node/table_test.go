package node

import (
	"math"
	"testing"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/style"
)

// cellOf wraps a paragraph with a fixed 20pt line height, making row
// heights deterministic.
func cellOf(text string) ir.Cell {
	lh := 20.0
	return ir.Cell{Children: []ir.Node{para(text, &style.Props{LineHeight: &lh})}}
}

func tableWithRows(header int, body int) *ir.Table {
	tbl := &ir.Table{
		Columns: []ir.Column{{}, {}},
	}
	for i := 0; i < header; i++ {
		tbl.Header = append(tbl.Header, ir.Row{Cells: []ir.Cell{cellOf("H1"), cellOf("H2")}})
	}
	for i := 0; i < body; i++ {
		tbl.Body = append(tbl.Body, ir.Row{Cells: []ir.Cell{cellOf("a"), cellOf("b")}})
	}
	return tbl
}

func countContent(sink *Sink, content string) int {
	n := 0
	for _, el := range textElements(sink) {
		if el.Content == content {
			n++
		}
	}
	return n
}

func TestTableHeaderRepeatsOnEveryPage(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env, tableWithRows(1, 10))
	pageH := 140.0 // header + six body rows at 20pt each

	ctx1 := testCtx(400, pageH, env)
	res, err := root.Layout(ctx1, geom.TightWidth(400, pageH), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Done {
		t.Fatal("ten rows cannot fit page one")
	}
	if got := countContent(ctx1.Sink, "H1"); got != 1 {
		t.Errorf("page 1 header rows = %d, want 1", got)
	}
	if got := countContent(ctx1.Sink, "a"); got != 6 {
		t.Errorf("page 1 body rows = %d, want 6", got)
	}

	ctx2 := testCtx(400, pageH, env)
	res, err = root.Layout(ctx2, geom.TightWidth(400, pageH), res.State)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Fatal("remaining four rows fit page two")
	}
	if got := countContent(ctx2.Sink, "H1"); got != 1 {
		t.Errorf("page 2 must re-emit the header, got %d", got)
	}
	if got := countContent(ctx2.Sink, "a"); got != 4 {
		t.Errorf("page 2 body rows = %d, want 4", got)
	}
}

func TestTableColumnSolving(t *testing.T) {
	env := testEnv()
	abs := style.Pt(100)
	pct := style.Percent(50)
	tbl := &ir.Table{
		Columns: []ir.Column{{Width: &abs}, {Width: &pct}, {}},
		Body: []ir.Row{{Cells: []ir.Cell{
			cellOf("x"), cellOf("y"), cellOf("z"),
		}}},
	}
	root := buildRoot(t, env, tbl)
	node := root.children[0].(*TableNode)
	cols, err := node.solveColumns(300)
	if err != nil {
		t.Fatal(err)
	}
	// 100 absolute, 50% of the remaining 200, rest to the auto column.
	if math.Abs(cols[0]-100) > 0.01 || math.Abs(cols[1]-100) > 0.01 || math.Abs(cols[2]-100) > 0.01 {
		t.Errorf("cols = %v, want [100 100 100]", cols)
	}
}

func TestTableCellsSitInTheirColumns(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env, tableWithRows(0, 1))
	ctx := testCtx(200, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(200, 1000), nil); err != nil {
		t.Fatal(err)
	}
	texts := textElements(ctx.Sink)
	if len(texts) != 2 {
		t.Fatalf("cells = %d, want 2", len(texts))
	}
	if texts[0].X != 0 {
		t.Errorf("first cell x = %v, want 0", texts[0].X)
	}
	if math.Abs(texts[1].X-100) > 0.01 {
		t.Errorf("second cell x = %v, want column start 100", texts[1].X)
	}
	if texts[0].Y != texts[1].Y {
		t.Errorf("row cells share a baseline: %v vs %v", texts[0].Y, texts[1].Y)
	}
}

func TestTableRowTooTallOverflows(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env, tableWithRows(0, 1))
	pageH := 10.0 // shorter than the single 20pt row
	ctx := testCtx(400, pageH, env)
	res, err := root.Layout(ctx, geom.TightWidth(400, pageH), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Fatal("a row taller than the page renders with overflow at page top")
	}
	if got := countContent(ctx.Sink, "a"); got != 1 {
		t.Errorf("overflowing row must still render, got %d cells", got)
	}
}

func TestTableSolutionCachedAcrossResume(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env, tableWithRows(1, 10))
	node := root.children[0].(*TableNode)

	ctx := testCtx(400, 140, env)
	res, err := root.Layout(ctx, geom.TightWidth(400, 140), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Done {
		t.Fatal("expected a break")
	}
	if _, ok := ctx.Cache.Get(node.ID(), 3, 400); !ok {
		t.Error("table solution should be cached under the table domain")
	}
}
