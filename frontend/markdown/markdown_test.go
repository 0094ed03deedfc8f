package markdown

import (
	"testing"

	"github.com/foliopress/paginator/builder"
	"github.com/foliopress/paginator/ir"
)

func convert(t *testing.T, source string) *ir.Root {
	t.Helper()
	tb := builder.NewTreeBuilder()
	if err := ConvertString(source, tb); err != nil {
		t.Fatal(err)
	}
	root, err := tb.Result()
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestConvertHeadingGetsAnchor(t *testing.T) {
	root := convert(t, "# Getting Started\n\nbody text\n")
	h, ok := root.Children[0].(*ir.Heading)
	if !ok {
		t.Fatalf("first child = %#v", root.Children[0])
	}
	if h.Level != 1 || h.Meta.ID != "getting-started" {
		t.Errorf("heading = level %d id %q", h.Level, h.Meta.ID)
	}
	if _, ok := root.Children[1].(*ir.Paragraph); !ok {
		t.Errorf("second child = %#v", root.Children[1])
	}
}

func TestConvertEmphasisNesting(t *testing.T) {
	root := convert(t, "plain *italic* **bold**\n")
	p := root.Children[0].(*ir.Paragraph)
	var spans []ir.StyledSpan
	for _, in := range p.Inlines {
		if s, ok := in.(ir.StyledSpan); ok {
			spans = append(spans, s)
		}
	}
	if len(spans) != 2 {
		t.Fatalf("styled spans = %d, want 2", len(spans))
	}
	if spans[0].Meta.Inline.FontStyle == nil {
		t.Error("single emphasis must set font-style")
	}
	if spans[1].Meta.Inline.FontWeight == nil {
		t.Error("double emphasis must set font-weight")
	}
}

func TestConvertListAndLink(t *testing.T) {
	src := "1. first\n2. [second](https://example.com)\n"
	root := convert(t, src)
	list, ok := root.Children[0].(*ir.List)
	if !ok {
		t.Fatalf("first child = %#v", root.Children[0])
	}
	if !list.Ordered || len(list.Children) != 2 {
		t.Fatalf("list = ordered %v, items %d", list.Ordered, len(list.Children))
	}
	item := list.Children[1]
	para := item.Children[0].(*ir.Paragraph)
	link, ok := para.Inlines[0].(ir.Hyperlink)
	if !ok || link.Href != "https://example.com" {
		t.Errorf("link = %#v", para.Inlines[0])
	}
}

func TestConvertCodeBlock(t *testing.T) {
	root := convert(t, "```\nfunc main() {}\n```\n")
	p, ok := root.Children[0].(*ir.Paragraph)
	if !ok {
		t.Fatalf("first child = %#v", root.Children[0])
	}
	if text, ok := p.Inlines[0].(ir.Text); !ok || text.Content != "func main() {}" {
		t.Errorf("code = %#v", p.Inlines[0])
	}
}

func TestAnchorNormalization(t *testing.T) {
	cases := map[string]string{
		"Getting Started":  "getting-started",
		"What's New, 2.0?": "whats-new-20",
		"already-kebab":    "already-kebab",
	}
	for in, want := range cases {
		if got := Anchor(in); got != want {
			t.Errorf("Anchor(%q) = %q, want %q", in, got, want)
		}
	}
}
