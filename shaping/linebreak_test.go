package shaping

import (
	"math"
	"testing"

	"github.com/foliopress/paginator/style"
)

func testStyle() *style.ComputedStyle {
	cs := style.Default()
	return &cs
}

// word builds a shaped run of n-glyph text with adv points per glyph plus
// one trailing collapsed space when brk is BreakSpace.
func word(text string, adv float64, brk BreakKind) ShapedRun {
	cs := testStyle()
	full := text
	if brk == BreakSpace {
		full += " "
	}
	var glyphs []ShapedGlyph
	var width float64
	for range full {
		glyphs = append(glyphs, ShapedGlyph{XAdvance: adv})
		width += adv
	}
	return ShapedRun{
		Style:      cs,
		Text:       full,
		Glyphs:     glyphs,
		Width:      width,
		Ascent:     9.6,
		Descent:    2.4,
		LineHeight: cs.LineHeight,
		Break:      brk,
	}
}

func TestBreakParagraphGreedyFirstFit(t *testing.T) {
	runs := []ShapedRun{
		word("aaaa", 10, BreakSpace), // 50 wide with trailing space
		word("bbbb", 10, BreakSpace), // 50
		word("cccc", 10, BreakNone),  // 40
	}
	lines := BreakParagraph(runs, 105, false)
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if len(lines[0].Runs) != 2 || len(lines[1].Runs) != 1 {
		t.Fatalf("want 2+1 runs per line, got %d+%d", len(lines[0].Runs), len(lines[1].Runs))
	}
	if lines[0].RunStart != 0 || lines[1].RunStart != 2 {
		t.Errorf("run starts = %d,%d, want 0,2", lines[0].RunStart, lines[1].RunStart)
	}
}

func TestBreakParagraphOverflowSingleWord(t *testing.T) {
	runs := []ShapedRun{word("enormous", 10, BreakNone)} // 80 wide
	lines := BreakParagraph(runs, 30, false)
	if len(lines) != 1 {
		t.Fatalf("oversized word must be placed alone, got %d lines", len(lines))
	}
	if lines[0].Width != 80 {
		t.Errorf("overflow width = %v, want 80", lines[0].Width)
	}
}

func TestBreakParagraphTrimsTrailingSpace(t *testing.T) {
	runs := []ShapedRun{
		word("aa", 10, BreakSpace), // 30 with space
		word("bb", 10, BreakNone),  // 20
	}
	lines := BreakParagraph(runs, 35, false)
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	// The break consumed the collapsed space: the first line measures the
	// visible glyphs only.
	if lines[0].Width != 20 {
		t.Errorf("first line width = %v, want 20 (space trimmed)", lines[0].Width)
	}
}

func TestBreakParagraphJustifyStretchesGaps(t *testing.T) {
	runs := []ShapedRun{
		word("aa", 10, BreakSpace),
		word("bb", 10, BreakSpace),
		word("cc", 10, BreakSpace),
		word("dd", 10, BreakNone),
	}
	// First three runs fit on line one (90 <= 100 with spaces), rest wraps.
	lines := BreakParagraph(runs, 100, true)
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	first := lines[0]
	if !first.Justify {
		t.Fatal("non-final line must be justified")
	}
	if first.Width != 100 {
		t.Errorf("justified line width = %v, want exactly 100", first.Width)
	}
	last := first.Runs[len(first.Runs)-1]
	end := first.RunOffsets[len(first.Runs)-1] + last.Width
	if math.Abs(end-100) > 0.01 {
		t.Errorf("last word ends at %v, want 100", end)
	}
	if lines[1].Justify {
		t.Error("final line must not be stretched")
	}
}

func TestBreakParagraphMandatoryBreak(t *testing.T) {
	runs := []ShapedRun{
		word("aa", 10, BreakMandatory),
		word("bb", 10, BreakNone),
	}
	lines := BreakParagraph(runs, 1000, true)
	if len(lines) != 2 {
		t.Fatalf("hard break must end the line, got %d lines", len(lines))
	}
	if lines[0].Justify {
		t.Error("line ending in a hard break must not be justified")
	}
}

func TestSplitSpan(t *testing.T) {
	head, brk, rest := SplitSpan("hello world")
	if head != "hello " || brk != BreakSpace || rest != "world" {
		t.Errorf("got (%q, %v, %q)", head, brk, rest)
	}

	head, brk, rest = SplitSpan("line\nnext")
	if head != "line" || brk != BreakMandatory || rest != "next" {
		t.Errorf("got (%q, %v, %q)", head, brk, rest)
	}

	head, brk, rest = SplitSpan("word")
	if head != "word" || brk != BreakNone || rest != "" {
		t.Errorf("got (%q, %v, %q)", head, brk, rest)
	}

	// Runs of whitespace collapse into one break.
	head, brk, rest = SplitSpan("a  \t b")
	if head != "a " || brk != BreakSpace || rest != "b" {
		t.Errorf("got (%q, %v, %q)", head, brk, rest)
	}
}

func TestFixedShaperMetrics(t *testing.T) {
	cs := testStyle()
	run, err := FixedShaper{}.ShapeSpan("abcd", cs, BreakNone)
	if err != nil {
		t.Fatal(err)
	}
	if run.Width != 4*0.5*cs.FontSize {
		t.Errorf("width = %v, want %v", run.Width, 4*0.5*cs.FontSize)
	}
	if run.LineHeight != cs.LineHeight {
		t.Errorf("line height = %v, want %v", run.LineHeight, cs.LineHeight)
	}
	if len(run.Glyphs) != 4 {
		t.Errorf("glyphs = %d, want 4", len(run.Glyphs))
	}
}
