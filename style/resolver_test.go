package style

import (
	"math"
	"testing"
)

func TestParseMarginsShorthand(t *testing.T) {
	cases := []struct {
		in   string
		want Margins
	}{
		{"10pt", Margins{10, 10, 10, 10}},
		{"10pt 20pt", Margins{10, 20, 10, 20}},
		{"1in", Margins{72, 72, 72, 72}},
		{"10 20 30 40", Margins{10, 20, 30, 40}},
		{"1cm", Margins{28.35, 28.35, 28.35, 28.35}},
	}
	for _, tc := range cases {
		got, err := ParseMargins(tc.in)
		if err != nil {
			t.Fatalf("ParseMargins(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseMargins(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestResolveInheritanceAndReset(t *testing.T) {
	sheet := NewStylesheet(map[string]*Props{
		"big": {FontSize: f64p(24)},
	})
	r := NewResolver(sheet, NewCache())

	parentMargin := Margins{1, 1, 1, 1}
	parent := Default()
	parent.FontSize = 18
	parent.Margin = parentMargin

	cs, err := r.Resolve(&parent, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs.FontSize != 18 {
		t.Errorf("font-size should inherit, got %v", cs.FontSize)
	}
	if cs.Margin != (Margins{}) {
		t.Errorf("margin must not inherit, got %+v", cs.Margin)
	}
	if math.Abs(cs.LineHeight-18*1.2) > 1e-9 {
		t.Errorf("line-height should default to font-size*1.2, got %v", cs.LineHeight)
	}

	cs2, err := r.Resolve(&parent, []string{"big"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs2.FontSize != 24 {
		t.Errorf("named style set should override, got %v", cs2.FontSize)
	}
}

func TestResolveUnknownStyleSet(t *testing.T) {
	r := NewResolver(NewStylesheet(nil), NewCache())
	_, err := r.Resolve(nil, []string{"missing"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown style set")
	}
}

func TestCacheDeduplication(t *testing.T) {
	r := NewResolver(NewStylesheet(nil), NewCache())
	a, err := r.Resolve(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Resolve(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("identical resolutions should share one *ComputedStyle")
	}
}

func TestBorderPerSideOverridesShorthand(t *testing.T) {
	solid := Border{Width: 1, Style: BorderSolid, Color: Black}
	dashedTop := Border{Width: 2, Style: BorderDashed, Color: Black}

	r := NewResolver(NewStylesheet(nil), NewCache())
	cs, err := r.Resolve(nil, nil, &Props{
		Border:    &solid,
		BorderTop: &dashedTop,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cs.BorderTop != dashedTop {
		t.Errorf("border-top override should win over shorthand, got %+v", cs.BorderTop)
	}
	if cs.BorderLeft != solid {
		t.Errorf("border-left should fall back to shorthand, got %+v", cs.BorderLeft)
	}
}

func f64p(v float64) *float64 { return &v }
