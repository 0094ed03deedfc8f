package builder

import (
	"errors"
	"testing"

	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/style"
)

func TestTreeBuilderBuildsNestedStructure(t *testing.T) {
	b := NewTreeBuilder()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(b.StartBlock())
	must(b.SetAttribute("id", "intro"))
	must(b.StartParagraph())
	must(b.AddText("hello "))
	must(b.StartStyledSpan())
	must(b.SetAttribute("font-weight", "bold"))
	must(b.AddText("world"))
	must(b.EndStyledSpan())
	must(b.EndParagraph())
	must(b.EndBlock())

	root, err := b.Result()
	if err != nil {
		t.Fatal(err)
	}
	block, ok := root.Children[0].(*ir.Block)
	if !ok || block.Meta.ID != "intro" {
		t.Fatalf("root child = %#v", root.Children[0])
	}
	p, ok := block.Children[0].(*ir.Paragraph)
	if !ok || len(p.Inlines) != 2 {
		t.Fatalf("paragraph = %#v", block.Children[0])
	}
	span, ok := p.Inlines[1].(ir.StyledSpan)
	if !ok || span.Meta.Inline == nil || span.Meta.Inline.FontWeight == nil {
		t.Fatalf("span = %#v", p.Inlines[1])
	}
}

func TestTreeBuilderTableWithHeader(t *testing.T) {
	b := NewTreeBuilder()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(b.StartTable())
	must(b.SetTableColumns([]style.Dimension{style.Pt(100), style.Auto()}))
	must(b.SetAttribute("header", "true"))
	must(b.StartTableRow())
	must(b.StartTableCell())
	must(b.AddText("H"))
	must(b.EndTableCell())
	must(b.EndTableRow())
	must(b.SetAttribute("header", "false"))
	must(b.StartTableRow())
	must(b.StartTableCell())
	must(b.SetAttribute("colspan", "2"))
	must(b.AddText("body"))
	must(b.EndTableCell())
	must(b.EndTableRow())
	must(b.EndTable())

	root, err := b.Result()
	if err != nil {
		t.Fatal(err)
	}
	tbl := root.Children[0].(*ir.Table)
	if len(tbl.Columns) != 2 || tbl.Columns[0].Width.Value != 100 {
		t.Errorf("columns = %+v", tbl.Columns)
	}
	if len(tbl.Header) != 1 || len(tbl.Body) != 1 {
		t.Fatalf("header/body = %d/%d", len(tbl.Header), len(tbl.Body))
	}
	if tbl.Body[0].Cells[0].ColSpan != 2 {
		t.Errorf("colspan = %d", tbl.Body[0].Cells[0].ColSpan)
	}
}

func TestTreeBuilderRejectsMisnesting(t *testing.T) {
	b := NewTreeBuilder()
	if err := b.StartTableRow(); !errors.Is(err, ErrMismatch) {
		t.Errorf("row outside table: err = %v", err)
	}

	b = NewTreeBuilder()
	if err := b.StartListItem(); !errors.Is(err, ErrMismatch) {
		t.Errorf("item outside list: err = %v", err)
	}

	b = NewTreeBuilder()
	_ = b.StartBlock()
	if err := b.EndParagraph(); !errors.Is(err, ErrMismatch) {
		t.Errorf("mismatched end: err = %v", err)
	}
}

func TestTreeBuilderResultFailsOnOpenElement(t *testing.T) {
	b := NewTreeBuilder()
	_ = b.StartBlock()
	if _, err := b.Result(); !errors.Is(err, ErrMismatch) {
		t.Errorf("open element: err = %v", err)
	}
}

func TestImplicitParagraphForBareText(t *testing.T) {
	b := NewTreeBuilder()
	if err := b.AddText("loose"); err != nil {
		t.Fatal(err)
	}
	root, err := b.Result()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := root.Children[0].(*ir.Paragraph); !ok {
		t.Errorf("bare text should wrap in a paragraph, got %#v", root.Children[0])
	}
}

func TestBufferingBuilderFlushAndDiscard(t *testing.T) {
	buf := NewBufferingBuilder()
	_ = buf.StartParagraph()
	_ = buf.AddText("speculative")
	_ = buf.EndParagraph()
	if buf.Len() != 3 {
		t.Fatalf("buffered events = %d", buf.Len())
	}

	tree := NewTreeBuilder()
	if err := buf.Flush(tree); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Error("flush must clear the buffer")
	}
	root, err := tree.Result()
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 1 {
		t.Errorf("flushed children = %d", len(root.Children))
	}

	buf2 := NewBufferingBuilder()
	_ = buf2.StartParagraph()
	_ = buf2.AddText("rolled back")
	buf2.Discard()
	if buf2.Len() != 0 {
		t.Error("discard must clear the buffer")
	}
}

func TestListAttributes(t *testing.T) {
	b := NewTreeBuilder()
	_ = b.StartList()
	_ = b.SetAttribute("ordered", "true")
	_ = b.SetAttribute("start", "4")
	_ = b.StartListItem()
	_ = b.AddText("x")
	_ = b.EndListItem()
	_ = b.EndList()
	root, err := b.Result()
	if err != nil {
		t.Fatal(err)
	}
	list := root.Children[0].(*ir.List)
	if !list.Ordered || list.Start == nil || *list.Start != 4 {
		t.Errorf("list = %+v", list)
	}
}
