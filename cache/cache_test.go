package cache

import (
	"testing"

	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

func TestSpanKeyDistinguishesStyleAndText(t *testing.T) {
	a := style.Default()
	b := style.Default()
	b.FontSize = 24

	k1 := SpanKey([]Span{{Text: "x", Style: &a}})
	k2 := SpanKey([]Span{{Text: "x", Style: &b}})
	k3 := SpanKey([]Span{{Text: "y", Style: &a}})
	if k1 == k2 || k1 == k3 {
		t.Errorf("keys must differ: %s %s %s", k1, k2, k3)
	}

	// Equal values behind distinct pointers share a key.
	c := style.Default()
	k4 := SpanKey([]Span{{Text: "x", Style: &c}})
	if k1 != k4 {
		t.Errorf("equal styles must share a key: %s vs %s", k1, k4)
	}
}

func TestShapeCacheRoundTrip(t *testing.T) {
	c := NewShapeCache()
	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache must miss")
	}
	runs := []shaping.ShapedRun{{Text: "hello", Width: 30}}
	c.Put("k", runs)
	got, ok := c.Get("k")
	if !ok || len(got) != 1 || got[0].Text != "hello" {
		t.Errorf("got %+v", got)
	}
	c.Clear()
	if _, ok := c.Get("k"); ok {
		t.Error("clear must drop entries")
	}
}

func TestLayoutCacheFIFOEviction(t *testing.T) {
	c := NewLayoutCache()
	for w := 0; w < 6; w++ {
		c.Put(1, DomainParagraph, w, w)
	}
	// Oldest two widths evicted by the per-node cap of four.
	if _, ok := c.Get(1, DomainParagraph, 0); ok {
		t.Error("width 0 should be evicted")
	}
	if _, ok := c.Get(1, DomainParagraph, 1); ok {
		t.Error("width 1 should be evicted")
	}
	if v, ok := c.Get(1, DomainParagraph, 5); !ok || v.(int) != 5 {
		t.Errorf("width 5 = %v, %v", v, ok)
	}
}

func TestLayoutCacheDomainsAreIndependent(t *testing.T) {
	c := NewLayoutCache()
	c.Put(1, DomainParagraph, 100, "lines")
	c.Put(1, DomainTable, 100, "columns")
	if v, _ := c.Get(1, DomainParagraph, 100); v != "lines" {
		t.Errorf("paragraph domain = %v", v)
	}
	if v, _ := c.Get(1, DomainTable, 100); v != "columns" {
		t.Errorf("table domain = %v", v)
	}
}
