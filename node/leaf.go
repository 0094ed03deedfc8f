package node

import (
	"math"

	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/resources"
)

// ImageNode places one raster image. Explicit width/height win; otherwise
// the intrinsic pixel dimensions are used as points, scaled down
// proportionally if wider than the available box.
type ImageNode struct {
	base
	src string

	intrinsicW float64
	intrinsicH float64
	probed     bool
	probeErr   error
}

func (n *ImageNode) probe() {
	if n.probed {
		return
	}
	n.probed = true
	n.intrinsicW, n.intrinsicH = 100, 100
	if n.env == nil || n.env.Resources == nil {
		return
	}
	data, err := n.env.Resources.Load(n.src)
	if err != nil {
		n.probeErr = err
		n.env.logger().Warn("image unavailable, using placeholder",
			observability.String("src", n.src),
			observability.Error("err", err))
		return
	}
	w, h, err := resources.ImageSize(data)
	if err != nil {
		n.probeErr = err
		n.env.logger().Warn("image undecodable, using placeholder",
			observability.String("src", n.src),
			observability.Error("err", err))
		return
	}
	n.intrinsicW, n.intrinsicH = w, h
}

// size resolves the rendered dimensions against an available width.
func (n *ImageNode) size(availW float64) (float64, float64) {
	n.probe()
	cs := n.cs
	w, h := n.intrinsicW, n.intrinsicH
	switch {
	case !cs.Width.IsAuto() && !cs.Height.IsAuto():
		w = cs.Width.Resolve(availW, w)
		h = cs.Height.Resolve(availW, h)
	case !cs.Width.IsAuto():
		rw := cs.Width.Resolve(availW, w)
		if n.intrinsicW > 0 {
			h = h * rw / n.intrinsicW
		}
		w = rw
	case !cs.Height.IsAuto():
		rh := cs.Height.Resolve(availW, h)
		if n.intrinsicH > 0 {
			w = w * rh / n.intrinsicH
		}
		h = rh
	default:
		if !math.IsInf(availW, 1) && availW > 0 && w > availW {
			h = h * availW / w
			w = availW
		}
	}
	return w, h
}

func (n *ImageNode) Measure(c geom.BoxConstraints) (geom.Size, error) {
	if n.env != nil && n.env.Strict {
		n.probe()
		if n.probeErr != nil {
			return geom.Size{}, n.probeErr
		}
	}
	w, h := n.size(c.MaxW)
	cs := n.cs
	return geom.Size{
		W: w + cs.Margin.Left + cs.Margin.Right,
		H: h + cs.Margin.Top + cs.Margin.Bottom,
	}, nil
}

func (n *ImageNode) Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error) {
	if resume != nil && resume.Kind != KindAtomic {
		return Result{}, resume.mismatch(KindAtomic)
	}
	if n.env != nil && n.env.Strict {
		n.probe()
		if n.probeErr != nil {
			return Result{}, n.probeErr
		}
	}
	cs := n.cs
	resuming := resume != nil

	if !resuming {
		n.registerAnchor(ctx)
		marginToAdd := maxf(cs.Margin.Top, ctx.LastVMargin)
		if ctx.CursorY > 0 && marginToAdd > ctx.AvailableHeight() {
			return Suspend(AtomicState()), nil
		}
		ctx.CursorY += marginToAdd
		ctx.LastVMargin = 0
	}

	availW := ctx.Bounds.Width - cs.Margin.Left - cs.Margin.Right
	w, h := n.size(availW)
	if h > ctx.AvailableHeight() && !ctx.AtPageTop() {
		return Suspend(AtomicState()), nil
	}

	ctx.Emit(geom.PositionedElement{
		X:     ctx.Bounds.X + cs.Margin.Left,
		Y:     ctx.Bounds.Y + ctx.CursorY,
		W:     w,
		H:     h,
		Style: cs,
		Kind:  geom.ElemImage,
		Src:   n.src,
	})
	ctx.CursorY += h
	ctx.LastVMargin = cs.Margin.Bottom
	return Finished(), nil
}

// PageBreakNode forces a page boundary, optionally switching masters. Its
// break is the one case where breaking at the page top is legal; the
// driver will not re-invoke it.
type PageBreakNode struct {
	base
	master string
}

func (n *PageBreakNode) Measure(geom.BoxConstraints) (geom.Size, error) {
	return geom.Size{}, nil
}

func (n *PageBreakNode) Layout(ctx *Context, _ geom.BoxConstraints, resume *State) (Result, error) {
	if resume != nil && resume.Kind != KindAtomic {
		return Result{}, resume.mismatch(KindAtomic)
	}
	ctx.Sink.ForcedBreak = true
	ctx.Sink.NextMaster = n.master
	return Suspend(AtomicState()), nil
}

// IndexMarkerNode records an index-term occurrence and renders nothing.
type IndexMarkerNode struct {
	base
	term string
}

func (n *IndexMarkerNode) Measure(geom.BoxConstraints) (geom.Size, error) {
	return geom.Size{}, nil
}

func (n *IndexMarkerNode) Layout(ctx *Context, _ geom.BoxConstraints, resume *State) (Result, error) {
	if resume != nil && resume.Kind != KindAtomic {
		return Result{}, resume.mismatch(KindAtomic)
	}
	ctx.Anchors.AddIndexEntry(n.term, anchor.IndexEntry{
		PageIndex: ctx.PageIndex,
		Y:         ctx.Bounds.Y + ctx.CursorY,
	})
	return Finished(), nil
}

// TocPlaceholderNode stands in for a TableOfContents node that the pipeline
// has not expanded (single-pass mode); it renders nothing.
type TocPlaceholderNode struct {
	base
}

func (n *TocPlaceholderNode) Measure(geom.BoxConstraints) (geom.Size, error) {
	return geom.Size{}, nil
}

func (n *TocPlaceholderNode) Layout(ctx *Context, _ geom.BoxConstraints, resume *State) (Result, error) {
	if resume != nil && resume.Kind != KindAtomic {
		return Result{}, resume.mismatch(KindAtomic)
	}
	return Finished(), nil
}
