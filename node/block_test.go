package node

import (
	"math"
	"testing"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/style"
)

func TestBlockSiblingMarginsCollapse(t *testing.T) {
	env := testEnv()
	mFirst := style.Margins{Bottom: 30}
	mSecond := style.Margins{Top: 10}
	root := buildRoot(t, env,
		para("one", &style.Props{Margin: &mFirst}),
		para("two", &style.Props{Margin: &mSecond}),
	)

	ctx := testCtx(400, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil); err != nil {
		t.Fatal(err)
	}
	texts := textElements(ctx.Sink)
	if len(texts) != 2 {
		t.Fatalf("want 2 lines, got %d", len(texts))
	}
	lineHeight := 12 * 1.2
	// The 30pt bottom margin collapses with the 10pt top margin: the gap
	// between baselines is one line height plus max(30, 10).
	gap := texts[1].Y - texts[0].Y
	if math.Abs(gap-(lineHeight+30)) > 0.01 {
		t.Errorf("baseline gap = %v, want %v", gap, lineHeight+30)
	}
}

func TestBlockBackgroundAndBorderSynthesis(t *testing.T) {
	env := testEnv()
	bg, _ := style.ParseColor("#eee")
	border := style.Border{Width: 2, Style: style.BorderSolid, Color: style.Black}
	pad := style.Margins{Top: 4, Right: 4, Bottom: 4, Left: 4}
	block := &ir.Block{
		Meta: ir.Meta{Inline: &style.Props{
			Background: &bg,
			Border:     &border,
			Padding:    &pad,
		}},
		Children: []ir.Node{para("inside", nil)},
	}
	root := buildRoot(t, env, block)

	ctx := testCtx(400, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil); err != nil {
		t.Fatal(err)
	}
	var rects []geom.PositionedElement
	for _, el := range ctx.Sink.Elements {
		if el.Kind == geom.ElemRect {
			rects = append(rects, el)
		}
	}
	// Background plus four borders.
	if len(rects) != 5 {
		t.Fatalf("rect elements = %d, want 5", len(rects))
	}
	bgRect := rects[0]
	wantH := 2 + 4 + 12*1.2 + 4 + 2 // border + padding + line + padding + border
	if math.Abs(bgRect.H-wantH) > 0.01 {
		t.Errorf("background height = %v, want %v", bgRect.H, wantH)
	}
	// Decoration is painted under the content.
	for i, el := range ctx.Sink.Elements {
		if el.Kind == geom.ElemText && i < 5 {
			t.Errorf("text at element %d paints under its background", i)
		}
	}
}

func TestBlockResumesMidChildAcrossPages(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env,
		fourLines(nil),
		fourLines(nil),
	)
	lineHeight := 12 * 1.2
	pageH := 3*lineHeight + 1

	var total int
	var state *State
	for page := 0; page < 10; page++ {
		ctx := testCtx(400, pageH, env)
		ctx.PageIndex = page
		res, err := root.Layout(ctx, geom.TightWidth(400, pageH), state)
		if err != nil {
			t.Fatal(err)
		}
		total += len(textElements(ctx.Sink))
		if res.Done {
			if page < 1 {
				t.Fatal("eight lines cannot fit one three-line page")
			}
			if total != 8 {
				t.Errorf("total lines across pages = %d, want 8", total)
			}
			return
		}
		state = res.State
		if state.Kind != KindBlock {
			t.Fatalf("root state kind = %v, want block", state.Kind)
		}
	}
	t.Fatal("did not finish in 10 pages")
}

func TestBlockStateMismatchIsFatal(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env, para("x", nil))
	ctx := testCtx(400, 100, env)
	_, err := root.Layout(ctx, geom.TightWidth(400, 100), TableState(1))
	if err == nil {
		t.Fatal("table state handed to a block must fail")
	}
}

func TestBlockExplicitHeightWins(t *testing.T) {
	env := testEnv()
	h := style.Pt(200)
	block := &ir.Block{
		Meta:     ir.Meta{Inline: &style.Props{Height: &h}},
		Children: []ir.Node{para("short", nil)},
	}
	root := buildRoot(t, env, block)
	inner := root.children[0]
	sz, err := inner.Measure(geom.BoxConstraints{MaxW: 400, MaxH: math.Inf(1)})
	if err != nil {
		t.Fatal(err)
	}
	if sz.H != 200 {
		t.Errorf("measured height = %v, want explicit 200", sz.H)
	}
}

func TestPageBreakForcesBreakWithoutReinvoke(t *testing.T) {
	env := testEnv()
	root := buildRoot(t, env,
		para("before", nil),
		&ir.PageBreak{MasterName: "landscape"},
		para("after", nil),
	)
	ctx := testCtx(400, 1000, env)
	res, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Done {
		t.Fatal("page break must suspend")
	}
	if !ctx.Sink.ForcedBreak || ctx.Sink.NextMaster != "landscape" {
		t.Errorf("sink = %+v, want forced break to landscape", ctx.Sink)
	}
	// The resume state skips the page-break node entirely.
	if res.State.ChildIndex != 2 {
		t.Errorf("resume child index = %d, want 2", res.State.ChildIndex)
	}

	ctx2 := testCtx(400, 1000, env)
	res, err = root.Layout(ctx2, geom.TightWidth(400, 1000), res.State)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Fatal("second page should finish")
	}
	texts := textElements(ctx2.Sink)
	if len(texts) != 1 || texts[0].Content != "after" {
		t.Errorf("page 2 content = %+v", texts)
	}
}
