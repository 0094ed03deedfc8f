package node

import (
	"errors"
	"fmt"
	"math"

	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/resources"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

// pageRefPlaceholder reserves three digits of width for a page-number
// reference; the consumer rewrites the content once anchors are resolved.
const pageRefPlaceholder = "000"

// spanSrc is one flattened inline span: a stretch of text under a single
// resolved style, optionally carrying link or reference metadata, or an
// inline image.
type spanSrc struct {
	text      string
	cs        *style.ComputedStyle
	href      string
	refTarget string
	underline bool
	imageSrc  string
	hardBreak bool
}

// runMeta carries the per-run metadata that shaping does not: which link or
// page reference the run belongs to.
type runMeta struct {
	href      string
	refTarget string
	underline bool
	imageSrc  string
}

// ParagraphNode shapes its inline spans into runs, breaks them into lines,
// and paginates line-by-line under widow/orphan control. Headings are
// paragraphs with a Level; they additionally register a ToC entry.
type ParagraphNode struct {
	base
	spans []spanSrc

	// Level is non-zero for headings.
	Level int

	runs  []shaping.ShapedRun
	meta  []runMeta
	shape bool // runs/meta populated
}

// plainText concatenates the node's span texts, used for ToC entries.
func (n *ParagraphNode) plainText() string {
	var out []byte
	for _, s := range n.spans {
		out = append(out, s.text...)
	}
	return string(out)
}

// ensureShaped populates runs and meta, consulting the process-global shape
// cache first. The chunking pass is deterministic, so cached runs line up
// with freshly derived metadata index-for-index.
func (n *ParagraphNode) ensureShaped() error {
	if n.shape {
		return nil
	}
	if err := n.checkEnv(); err != nil {
		return err
	}
	spans := make([]cache.Span, 0, len(n.spans))
	for _, s := range n.spans {
		spans = append(spans, cache.Span{Text: s.text, Style: s.cs})
	}
	key := cache.SpanKey(spans)

	var cached []shaping.ShapedRun
	if n.env != nil && n.env.Shapes != nil {
		cached, _ = n.env.Shapes.Get(key)
	}

	var runs []shaping.ShapedRun
	var meta []runMeta
	idx := 0
	for _, s := range n.spans {
		if s.imageSrc != "" {
			run, err := n.imageRun(s)
			if err != nil {
				return err
			}
			if cached != nil && idx < len(cached) {
				run = cached[idx]
			}
			runs = append(runs, run)
			meta = append(meta, runMeta{imageSrc: s.imageSrc, href: s.href})
			idx++
			continue
		}
		text := s.text
		if s.refTarget != "" {
			text = pageRefPlaceholder
		}
		rest := text
		for {
			head, brk, tail := shaping.SplitSpan(rest)
			if head == "" && brk == shaping.BreakNone {
				break
			}
			var run shaping.ShapedRun
			if cached != nil && idx < len(cached) {
				run = cached[idx]
			} else {
				var err error
				run, err = n.env.Shaper.ShapeSpan(head, s.cs, brk)
				if err != nil {
					return err
				}
			}
			runs = append(runs, run)
			meta = append(meta, runMeta{href: s.href, refTarget: s.refTarget, underline: s.underline})
			idx++
			rest = tail
			if rest == "" {
				break
			}
		}
		if s.hardBreak {
			var run shaping.ShapedRun
			if cached != nil && idx < len(cached) {
				run = cached[idx]
			} else {
				var err error
				run, err = n.env.Shaper.ShapeSpan("", s.cs, shaping.BreakMandatory)
				if err != nil {
					return err
				}
			}
			runs = append(runs, run)
			meta = append(meta, runMeta{})
			idx++
		}
	}

	if cached == nil && n.env != nil && n.env.Shapes != nil {
		n.env.Shapes.Put(key, runs)
	}
	n.runs, n.meta, n.shape = runs, meta, true
	return nil
}

// imageRun builds the fixed-box run for an inline image, probing intrinsic
// size through the resource provider. Missing images render as a small
// placeholder box unless strict mode is on.
func (n *ParagraphNode) imageRun(s spanSrc) (shaping.ShapedRun, error) {
	w, h := 20.0, 20.0
	if n.env != nil && n.env.Resources != nil {
		data, err := n.env.Resources.Load(s.imageSrc)
		if err == nil {
			if iw, ih, derr := resources.ImageSize(data); derr == nil {
				w, h = iw, ih
			} else if n.env.Strict {
				return shaping.ShapedRun{}, derr
			} else {
				n.env.logger().Warn("inline image undecodable, using placeholder",
					observability.String("src", s.imageSrc))
			}
		} else if n.env.Strict {
			return shaping.ShapedRun{}, err
		} else {
			n.env.logger().Warn("inline image missing, using placeholder",
				observability.String("src", s.imageSrc),
				observability.Error("err", err))
		}
	}
	lh := h
	if s.cs.LineHeight > lh {
		lh = s.cs.LineHeight
	}
	return shaping.ShapedRun{
		Style:      s.cs,
		Width:      w,
		LineHeight: lh,
		Ascent:     h,
		ImageW:     w,
		ImageH:     h,
		IsImage:    true,
	}, nil
}

// lines breaks the paragraph against width, caching per rounded width when
// a layout cache is available.
func (n *ParagraphNode) lines(lc *cache.LayoutCache, width float64) ([]shaping.Line, error) {
	if err := n.ensureShaped(); err != nil {
		return nil, err
	}
	rounded := cache.RoundWidth(width)
	if lc != nil {
		if v, ok := lc.Get(n.identity, cache.DomainParagraph, rounded); ok {
			if lines, ok := v.([]shaping.Line); ok {
				return lines, nil
			}
		}
	}
	justify := n.cs.TextAlign == style.AlignJustify
	lines := shaping.BreakParagraph(n.runs, width, justify)
	if lc != nil {
		lc.Put(n.identity, cache.DomainParagraph, rounded, lines)
	}
	return lines, nil
}

func (n *ParagraphNode) contentWidth(c geom.BoxConstraints) float64 {
	cs := n.cs
	deduction := cs.Margin.Left + cs.Margin.Right + cs.Padding.Left + cs.Padding.Right
	if math.IsInf(c.MaxW, 1) {
		return math.Inf(1)
	}
	return math.Max(0, c.MaxW-deduction)
}

func (n *ParagraphNode) Measure(c geom.BoxConstraints) (geom.Size, error) {
	cs := n.cs
	width := n.contentWidth(c)
	lines, err := n.lines(nil, width)
	if err != nil {
		return geom.Size{}, err
	}
	var h, maxW float64
	for _, l := range lines {
		h += l.Height
		if l.Width > maxW {
			maxW = l.Width
		}
	}
	w := maxW
	if !math.IsInf(width, 1) {
		w = width
	}
	return geom.Size{
		W: w + cs.Margin.Left + cs.Margin.Right + cs.Padding.Left + cs.Padding.Right,
		H: h + cs.Margin.Top + cs.Margin.Bottom + cs.Padding.Top + cs.Padding.Bottom,
	}, nil
}

func (n *ParagraphNode) Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error) {
	offset, err := resume.asParagraph()
	if err != nil {
		return Result{}, err
	}
	resuming := resume != nil
	cs := n.cs

	if !resuming {
		n.registerAnchor(ctx)
		if n.Level > 0 {
			ctx.Anchors.AddHeading(anchor.TocEntry{
				Level:     n.Level,
				Text:      n.plainText(),
				ID:        n.irID,
				PageIndex: ctx.PageIndex,
			})
		}
		marginToAdd := math.Max(cs.Margin.Top, ctx.LastVMargin)
		if ctx.CursorY > 0 && marginToAdd > ctx.AvailableHeight() {
			return Suspend(ParagraphState(0)), nil
		}
		ctx.CursorY += marginToAdd
		ctx.LastVMargin = 0
		ctx.CursorY += cs.Padding.Top
	}

	width := n.contentWidth(c)
	if math.IsInf(width, 1) {
		width = math.Max(0, ctx.Bounds.Width-cs.Margin.Left-cs.Margin.Right-cs.Padding.Left-cs.Padding.Right)
	}
	lines, err := n.lines(ctx.Cache, width)
	if err != nil {
		return Result{}, err
	}
	total := len(lines)
	if offset >= total {
		if total == 0 {
			// Nothing to draw at all.
			ctx.LastVMargin = cs.Margin.Bottom
		}
		return Finished(), nil
	}

	avail := ctx.AvailableHeight()
	atTop := ctx.AtPageTop()

	// Greedy accept while the cumulative height fits.
	accepted := 0
	var h float64
	for i := offset; i < total; i++ {
		if h+lines[i].Height > avail {
			break
		}
		h += lines[i].Height
		accepted++
	}

	remaining := total - offset - accepted
	if offset == 0 && accepted < cs.Orphans && remaining > 0 && !atTop {
		// Too few lines would lead the paragraph; push it whole.
		return Suspend(ParagraphState(0)), nil
	}
	if remaining > 0 && remaining < cs.Widows {
		retract := cs.Widows - remaining
		if retract >= accepted {
			retract = accepted
		}
		for k := 0; k < retract; k++ {
			accepted--
			h -= lines[offset+accepted].Height
		}
		remaining = total - offset - accepted
		if offset == 0 && accepted < cs.Orphans && !atTop {
			return Suspend(ParagraphState(0)), nil
		}
		if accepted == 0 && !atTop {
			return Suspend(ParagraphState(offset)), nil
		}
	}
	if accepted == 0 {
		if !atTop {
			return Suspend(ParagraphState(offset)), nil
		}
		// Forced progress at page top: render one line, overflow tolerated.
		accepted = 1
		h = lines[offset].Height
	}

	n.emitLines(ctx, lines[offset:offset+accepted], width)
	ctx.CursorY += h

	if offset+accepted >= total {
		ctx.CursorY += cs.Padding.Bottom
		ctx.LastVMargin = cs.Margin.Bottom
		return Finished(), nil
	}
	return Suspend(ParagraphState(offset + accepted)), nil
}

// emitLines appends positioned elements for the given lines starting at the
// current cursor, applying horizontal alignment per line.
func (n *ParagraphNode) emitLines(ctx *Context, lines []shaping.Line, width float64) {
	cs := n.cs
	left := ctx.Bounds.X + cs.Margin.Left + cs.Padding.Left
	y := ctx.Bounds.Y + ctx.CursorY

	for _, line := range lines {
		var lineX float64
		switch cs.TextAlign {
		case style.AlignRight:
			lineX = width - line.Width
		case style.AlignCenter:
			lineX = (width - line.Width) / 2
		}

		var pending *geom.PositionedElement
		flush := func() {
			if pending == nil {
				return
			}
			ctx.Emit(*pending)
			if len(pending.Href) > 0 && pending.Href[0] == '#' {
				ctx.Anchors.AddLink(anchor.LinkRegion{
					PageIndex: ctx.PageIndex,
					X:         pending.X, Y: y,
					W: pending.W, H: line.Height,
					TargetID: pending.Href[1:],
				})
			}
			pending = nil
		}

		for j, run := range line.Runs {
			m := runMeta{}
			if idx := line.RunStart + j; idx < len(n.meta) {
				m = n.meta[idx]
			}
			x := left + lineX + line.RunOffsets[j]

			if run.IsImage {
				flush()
				ctx.Emit(geom.PositionedElement{
					X: x, Y: y + line.Height - run.ImageH,
					W: run.ImageW, H: run.ImageH,
					Style: run.Style, Kind: geom.ElemImage,
					Src: m.imageSrc, Href: m.href,
				})
				continue
			}
			if run.Width == 0 && run.Text == "" {
				continue
			}
			// Adjacent same-style runs on an unstretched line coalesce
			// into one text element; justified lines keep per-word
			// elements since the gaps between them are stretched.
			if !line.Justify && pending != nil &&
				pending.Style == run.Style &&
				pending.Href == m.href &&
				pending.Underline == m.underline &&
				pending.RefTarget == "" && m.refTarget == "" {
				pending.Content += run.Text
				pending.W += run.Width
				continue
			}
			flush()
			pending = &geom.PositionedElement{
				X: x, Y: y + run.Ascent,
				W: run.Width, H: run.Ascent + run.Descent,
				Style:     run.Style,
				Kind:      geom.ElemText,
				Content:   run.Text,
				Href:      m.href,
				Underline: m.underline,
				RefTarget: m.refTarget,
			}
		}
		flush()
		y += line.Height
	}
}

// errShapingUnavailable guards against a tree built without a shaper.
var errShapingUnavailable = errors.New("node: no shaper configured")

func (n *ParagraphNode) checkEnv() error {
	if n.env == nil || n.env.Shaper == nil {
		return fmt.Errorf("%w (paragraph %d)", errShapingUnavailable, n.identity)
	}
	return nil
}
