package paginate

import (
	"math"
	"testing"

	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/node"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

func testEnv() *node.Env {
	return &node.Env{Shaper: shaping.FixedShaper{}, Shapes: cache.NewShapeCache()}
}

func buildTree(t *testing.T, env *node.Env, nodes ...ir.Node) *node.BlockNode {
	t.Helper()
	root, err := node.BuildTree(&ir.Root{Children: nodes}, style.NewStylesheet(nil), style.NewCache(), env)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func texts(p Page) []geom.PositionedElement {
	var out []geom.PositionedElement
	for _, el := range p.Elements {
		if el.Kind == geom.ElemText {
			out = append(out, el)
		}
	}
	return out
}

func TestSingleParagraphOnA4(t *testing.T) {
	env := testEnv()
	cm := 28.35
	master := Master{
		Name:    "body",
		Size:    style.A4,
		Margins: style.Margins{Top: cm, Right: cm, Bottom: cm, Left: cm},
	}
	tree := buildTree(t, env, &ir.Paragraph{
		Inlines: []ir.Inline{ir.Text{Content: "Hello, World"}},
	})

	d := NewDriver([]Master{master}, env)
	pages, err := d.Paginate(tree, anchor.NewRegistry(), cache.NewLayoutCache())
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	els := texts(pages[0])
	if len(els) != 1 {
		t.Fatalf("text elements = %d, want 1", len(els))
	}
	el := els[0]
	if el.Content != "Hello, World" {
		t.Errorf("content = %q", el.Content)
	}
	if math.Abs(el.X-cm) > 0.01 {
		t.Errorf("x = %v, want %v", el.X, cm)
	}
	ascent := 12 * 0.8
	if math.Abs(el.Y-(cm+ascent)) > 0.01 {
		t.Errorf("y = %v, want margin+ascent %v", el.Y, cm+ascent)
	}
	if el.Style.FontSize != 12 {
		t.Errorf("font size = %v, want 12", el.Style.FontSize)
	}
}

func TestPaginationAdvancesPages(t *testing.T) {
	env := testEnv()
	// Forty hard-broken lines on a page that fits ten.
	var text string
	for i := 0; i < 40; i++ {
		text += "line\n"
	}
	tree := buildTree(t, env, &ir.Paragraph{
		Inlines: []ir.Inline{ir.Text{Content: text}},
	})
	lineHeight := 12 * 1.2
	master := Master{
		Name: "m",
		Size: style.Custom(200, 10*lineHeight+1),
	}
	d := NewDriver([]Master{master}, env)
	pages, err := d.Paginate(tree, anchor.NewRegistry(), cache.NewLayoutCache())
	if err != nil {
		t.Fatal(err)
	}
	// 40 lines at ten per page; the final "\n" adds no empty line.
	if len(pages) < 4 {
		t.Fatalf("pages = %d, want at least 4", len(pages))
	}
	var total int
	for _, p := range pages {
		total += len(texts(p))
	}
	if total != 40 {
		t.Errorf("total rendered lines = %d, want 40", total)
	}
}

func TestPageBreakSwitchesMaster(t *testing.T) {
	env := testEnv()
	tree := buildTree(t, env,
		&ir.Paragraph{Inlines: []ir.Inline{ir.Text{Content: "first"}}},
		&ir.PageBreak{MasterName: "wide"},
		&ir.Paragraph{Inlines: []ir.Inline{ir.Text{Content: "second"}}},
	)
	d := NewDriver([]Master{
		{Name: "narrow", Size: style.Custom(200, 400)},
		{Name: "wide", Size: style.Custom(500, 400)},
	}, env)
	pages, err := d.Paginate(tree, anchor.NewRegistry(), cache.NewLayoutCache())
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].Master != "narrow" || pages[1].Master != "wide" {
		t.Errorf("masters = %s, %s; want narrow, wide", pages[0].Master, pages[1].Master)
	}
	if got := texts(pages[1]); len(got) != 1 || got[0].Content != "second" {
		t.Errorf("page 2 content = %+v", got)
	}
}

func TestAnchorsCarryLocalPageIndex(t *testing.T) {
	env := testEnv()
	var text string
	for i := 0; i < 12; i++ {
		text += "filler\n"
	}
	tree := buildTree(t, env,
		&ir.Paragraph{Inlines: []ir.Inline{ir.Text{Content: text}}},
		&ir.Heading{Meta: ir.Meta{ID: "later"}, Level: 1, Inlines: []ir.Inline{ir.Text{Content: "Later"}}},
	)
	lineHeight := 12 * 1.2
	d := NewDriver([]Master{{Name: "m", Size: style.Custom(300, 10*lineHeight+1)}}, env)
	reg := anchor.NewRegistry()
	if _, err := d.Paginate(tree, reg, cache.NewLayoutCache()); err != nil {
		t.Fatal(err)
	}
	loc, ok := reg.Anchor("later")
	if !ok {
		t.Fatal("anchor missing")
	}
	if loc.PageIndex != 1 {
		t.Errorf("anchor page = %d, want 1 (second page)", loc.PageIndex)
	}
}

func TestFooterEmitsTokensForConsumer(t *testing.T) {
	env := testEnv()
	tree := buildTree(t, env, &ir.Paragraph{
		Inlines: []ir.Inline{ir.Text{Content: "body"}},
	})
	master := DefaultMaster()
	master.FooterHeight = 24
	master.FooterText = "Page {page_num} of {total_pages}"
	d := NewDriver([]Master{master}, env)
	pages, err := d.Paginate(tree, anchor.NewRegistry(), cache.NewLayoutCache())
	if err != nil {
		t.Fatal(err)
	}
	var footer string
	for _, el := range texts(pages[0]) {
		if el.Content != "body" {
			footer = el.Content
		}
	}
	// The driver leaves both tokens for the consumer, which alone knows
	// the page's global position.
	if footer != "Page "+PageNumToken+" of "+TotalPagesToken {
		t.Errorf("footer = %q", footer)
	}
}

func TestIndexMarkerRecordsEntries(t *testing.T) {
	env := testEnv()
	tree := buildTree(t, env,
		&ir.Paragraph{Inlines: []ir.Inline{ir.Text{Content: "a"}}},
		&ir.IndexMarker{Term: "pagination"},
	)
	reg := anchor.NewRegistry()
	d := NewDriver(nil, env)
	if _, err := d.Paginate(tree, reg, cache.NewLayoutCache()); err != nil {
		t.Fatal(err)
	}
	reg.Finalize()
	entries := reg.IndexTerms()["pagination"]
	if len(entries) != 1 || entries[0].PageIndex != 0 {
		t.Errorf("index entries = %+v", entries)
	}
}
