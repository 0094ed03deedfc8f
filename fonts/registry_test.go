package fonts

import (
	"errors"
	"testing"

	"github.com/foliopress/paginator/resources"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

func TestRegistryExactAndNearestWeight(t *testing.T) {
	r := NewRegistry()
	r.Register("Inter", style.ParseFontWeight("regular"), style.FontNormal, []byte("reg"))
	r.Register("Inter", style.ParseFontWeight("bold"), style.FontNormal, []byte("bold"))

	got, err := r.Font(shaping.FontKey{Family: "Inter", Weight: style.ParseFontWeight("bold")})
	if err != nil || string(got) != "bold" {
		t.Fatalf("exact = %q, %v", got, err)
	}
	// 500 sits nearer regular than bold.
	got, err = r.Font(shaping.FontKey{Family: "Inter", Weight: style.ParseFontWeight("500")})
	if err != nil || string(got) != "reg" {
		t.Fatalf("nearest = %q, %v", got, err)
	}
}

func TestRegistryFallsBackToDefaultFamily(t *testing.T) {
	r := NewRegistry()
	r.Register("Inter", style.ParseFontWeight("regular"), style.FontNormal, []byte("reg"))
	got, err := r.Font(shaping.FontKey{Family: "Unknown", Weight: style.ParseFontWeight("regular")})
	if err != nil || string(got) != "reg" {
		t.Fatalf("fallback = %q, %v", got, err)
	}
}

func TestRegistryEmptyFails(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Font(shaping.FontKey{Family: "X"}); !errors.Is(err, ErrNoFont) {
		t.Errorf("err = %v, want ErrNoFont", err)
	}
}

func TestRegisterFromProvider(t *testing.T) {
	p := resources.NewMemory(map[string][]byte{"fonts/x.ttf": []byte("ttf")})
	r := NewRegistry()
	if err := r.RegisterFromProvider(p, "fonts/x.ttf", "X", style.ParseFontWeight("regular"), style.FontNormal); err != nil {
		t.Fatal(err)
	}
	got, err := r.Font(shaping.FontKey{Family: "X", Weight: style.ParseFontWeight("regular")})
	if err != nil || string(got) != "ttf" {
		t.Errorf("got %q, %v", got, err)
	}
	if err := r.RegisterFromProvider(p, "missing.ttf", "Y", style.ParseFontWeight("regular"), style.FontNormal); err == nil {
		t.Error("missing font path must error")
	}
}
