package node

import (
	"testing"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/style"
)

func item(text string) *ir.ListItem {
	return &ir.ListItem{Children: []ir.Node{para(text, nil)}}
}

func TestOrderedListMarkers(t *testing.T) {
	env := testEnv()
	start := 3
	list := &ir.List{
		Ordered:  true,
		Start:    &start,
		Children: []*ir.ListItem{item("a"), item("b"), item("c")},
	}
	root := buildRoot(t, env, list)
	ctx := testCtx(400, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil); err != nil {
		t.Fatal(err)
	}
	var markers []string
	for _, el := range textElements(ctx.Sink) {
		switch el.Content {
		case "3.", "4.", "5.":
			markers = append(markers, el.Content)
		}
	}
	if len(markers) != 3 || markers[0] != "3." || markers[2] != "5." {
		t.Errorf("markers = %v, want [3. 4. 5.]", markers)
	}
}

func TestNestedListCyclesMarkerStyle(t *testing.T) {
	env := testEnv()
	inner := &ir.List{Children: []*ir.ListItem{item("deep")}}
	outer := &ir.List{
		Children: []*ir.ListItem{
			{Children: []ir.Node{para("top", nil), inner}},
		},
	}
	root := buildRoot(t, env, outer)
	ctx := testCtx(400, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil); err != nil {
		t.Fatal(err)
	}
	var sawDisc, sawCircle bool
	for _, el := range textElements(ctx.Sink) {
		switch el.Content {
		case "•":
			sawDisc = true
		case "◦":
			sawCircle = true
		}
	}
	if !sawDisc || !sawCircle {
		t.Errorf("nested unordered lists cycle disc then circle; disc=%v circle=%v", sawDisc, sawCircle)
	}
}

func TestListContentIndentedPastMarker(t *testing.T) {
	env := testEnv()
	list := &ir.List{Children: []*ir.ListItem{item("text")}}
	root := buildRoot(t, env, list)
	ctx := testCtx(400, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil); err != nil {
		t.Fatal(err)
	}
	var markerX, contentX float64
	for _, el := range textElements(ctx.Sink) {
		switch el.Content {
		case "•":
			markerX = el.X
		case "text":
			contentX = el.X
		}
	}
	if contentX <= markerX {
		t.Errorf("content x %v must sit right of marker x %v", contentX, markerX)
	}
}

func TestInsideMarkerPrependsText(t *testing.T) {
	env := testEnv()
	pos := style.Inside
	list := &ir.List{
		Meta:     ir.Meta{Inline: &style.Props{ListPos: &pos}},
		Children: []*ir.ListItem{item("body")},
	}
	root := buildRoot(t, env, list)
	ctx := testCtx(400, 1000, env)
	if _, err := root.Layout(ctx, geom.TightWidth(400, 1000), nil); err != nil {
		t.Fatal(err)
	}
	texts := textElements(ctx.Sink)
	var joined string
	for _, el := range texts {
		joined += el.Content
	}
	if joined != "• body" && joined != "•body" {
		t.Errorf("inside marker must be inline text, got %q", joined)
	}
}

func TestRomanAndAlphaMarkers(t *testing.T) {
	cases := []struct {
		style style.ListStyleType
		index int
		want  string
	}{
		{style.Decimal, 7, "7."},
		{style.LowerAlpha, 1, "a."},
		{style.LowerAlpha, 27, "aa."},
		{style.UpperAlpha, 2, "B."},
		{style.LowerRoman, 4, "iv."},
		{style.UpperRoman, 1994, "MCMXCIV."},
		{style.NoneMarker, 1, ""},
	}
	for _, tc := range cases {
		if got := markerFor(tc.style, tc.index); got != tc.want {
			t.Errorf("markerFor(%v, %d) = %q, want %q", tc.style, tc.index, got, tc.want)
		}
	}
}
