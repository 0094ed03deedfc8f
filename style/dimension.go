// Package style resolves CSS-like box, flex, list, and table styling
// properties into a fully-merged ComputedStyle per node: inherited
// properties from the parent, overlaid by each named style set in order,
// overlaid by an inline override.
package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DimensionKind discriminates a Dimension's representation.
type DimensionKind int

const (
	DimAuto DimensionKind = iota
	DimPt
	DimPercent
)

// Dimension is a length expressed either in points, as a percentage of some
// reference, or left to the layout algorithm ("auto"). Equality and hashing
// treat NaN bit-identically (two Dimension{Pt, NaN} values are equal to one
// another), since a hashed ComputedStyle must dedupe identically-constructed
// "invalid" values the same way it dedupes any other.
type Dimension struct {
	Kind  DimensionKind
	Value float64 // meaningless when Kind == DimAuto
}

// Auto is the zero-ish "unset, let the algorithm decide" dimension.
func Auto() Dimension { return Dimension{Kind: DimAuto} }

// Pt constructs a point dimension.
func Pt(v float64) Dimension { return Dimension{Kind: DimPt, Value: v} }

// Percent constructs a percentage dimension (v is 0-100).
func Percent(v float64) Dimension { return Dimension{Kind: DimPercent, Value: v} }

// IsAuto reports whether the dimension is unset.
func (d Dimension) IsAuto() bool { return d.Kind == DimAuto }

// Resolve returns the dimension in points given a reference length to use
// for percentages. Auto resolves to fallback.
func (d Dimension) Resolve(reference, fallback float64) float64 {
	switch d.Kind {
	case DimPt:
		return d.Value
	case DimPercent:
		return d.Value / 100 * reference
	default:
		return fallback
	}
}

// hashKey returns a value suitable for use as a map key that treats NaN
// bit-identically rather than per IEEE-754 (NaN != NaN).
func (d Dimension) hashKey() [2]uint64 {
	return [2]uint64{uint64(d.Kind), math.Float64bits(d.Value)}
}

// Equal reports bit-identical equality, treating NaN payloads as equal to
// themselves.
func (d Dimension) Equal(o Dimension) bool {
	return d.Kind == o.Kind && math.Float64bits(d.Value) == math.Float64bits(o.Value)
}

// ParseDimension parses a dimension string: "auto", a percentage like
// "50%", or a length with an optional unit suffix (see ParseMargins).
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "auto" {
		return Auto(), nil
	}
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return Dimension{}, fmt.Errorf("%w: dimension %q", ErrParse, s)
		}
		return Percent(v), nil
	}
	v, err := parseLength(s)
	if err != nil {
		return Dimension{}, fmt.Errorf("parse dimension %q: %w", s, err)
	}
	return Pt(v), nil
}

// Margins holds the four box-model sides, in points.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// ParseMargins parses a CSS-shorthand margin string: "10pt" (all sides),
// "10pt 20pt" (vertical horizontal), "T R B L" (four explicit sides). Bare
// numbers are points; recognized unit suffixes are pt, px (1:1), in (x72),
// cm (x28.35), mm (x2.835).
func ParseMargins(s string) (Margins, error) {
	parts := strings.Fields(s)
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := parseLength(p)
		if err != nil {
			return Margins{}, fmt.Errorf("parse margins %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		return Margins{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return Margins{vals[0], vals[1], vals[0], vals[1]}, nil
	case 3:
		return Margins{vals[0], vals[1], vals[2], vals[1]}, nil
	case 4:
		return Margins{vals[0], vals[1], vals[2], vals[3]}, nil
	default:
		return Margins{}, fmt.Errorf("%w: margins shorthand %q has %d components, want 1-4", ErrParse, s, len(vals))
	}
}

func parseLength(tok string) (float64, error) {
	tok = strings.TrimSpace(tok)
	for _, unit := range []struct {
		suffix string
		factor float64
	}{
		{"pt", 1},
		{"px", 1},
		{"in", 72},
		{"cm", 28.35},
		{"mm", 2.835},
	} {
		if strings.HasSuffix(tok, unit.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(tok, unit.suffix), 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrParse, tok)
			}
			return n * unit.factor, nil
		}
	}
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, tok)
	}
	return n, nil
}
