// Package node implements the layout tree: one render node per IR variant,
// each honoring the resumable measure/layout contract the pagination driver
// drives. A node's Layout either finishes within the page bounds it was
// given or reports a break point with enough state to continue on the next
// page.
package node

import (
	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/resources"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

// Env is the immutable environment shared by every node of a render tree:
// the shaper, the process-global shape cache, the asset provider, and the
// logger. It is safe to share across records.
type Env struct {
	Shaper    shaping.TextShaper
	Shapes    *cache.ShapeCache
	Resources resources.Provider
	Logger    observability.Logger
	// Strict makes resource failures fatal instead of rendering a
	// placeholder and warning.
	Strict bool
}

func (e *Env) logger() observability.Logger {
	if e == nil || e.Logger == nil {
		return observability.NopLogger{}
	}
	return e.Logger
}

// Sink collects page-scoped outputs shared by every context of one page:
// the positioned elements, plus the forced-break signal a PageBreak node
// raises for the driver.
type Sink struct {
	Elements []geom.PositionedElement

	// ForcedBreak is set when a PageBreak node caused the current break;
	// the driver must not re-invoke the node and may switch masters.
	ForcedBreak bool
	NextMaster  string
}

// Context is the mutable per-page layout state handed down the tree.
// Bounds is the absolute box the node may draw into; the cursor is
// relative to Bounds. Child contexts share the Sink, registries, and cache
// of their parent.
type Context struct {
	Bounds  geom.Rect
	CursorX float64
	CursorY float64

	// LastVMargin is the bottom margin of the previous in-flow sibling,
	// threaded through for margin collapsing.
	LastVMargin float64

	PageIndex int
	// PageTop is the absolute y of the page content box's top edge, used
	// to decide whether a node sits at the top of a fresh page.
	PageTop float64

	Sink    *Sink
	Anchors *anchor.Registry
	Cache   *cache.LayoutCache
	Env     *Env
}

// AvailableHeight returns the vertical space left below the cursor.
func (c *Context) AvailableHeight() float64 {
	return c.Bounds.Height - c.CursorY
}

// AtPageTop reports whether the cursor sits at the very top of the page's
// content box, where forced-progress rules apply: a break at page top is
// only legal for explicit page-break nodes.
func (c *Context) AtPageTop() bool {
	return c.Bounds.Y+c.CursorY <= c.PageTop+0.01
}

// Child spawns a context for laying out children inside bounds. The cursor
// resets to the new origin; sinks, registries, and caches are shared.
func (c *Context) Child(bounds geom.Rect) *Context {
	return &Context{
		Bounds:    bounds,
		PageIndex: c.PageIndex,
		PageTop:   c.PageTop,
		Sink:      c.Sink,
		Anchors:   c.Anchors,
		Cache:     c.Cache,
		Env:       c.Env,
	}
}

// Emit appends one positioned element to the page.
func (c *Context) Emit(e geom.PositionedElement) {
	c.Sink.Elements = append(c.Sink.Elements, e)
}

// Result is the outcome of one Layout call: either the node finished
// within bounds, or it consumed part of the page and reports resume state.
type Result struct {
	Done  bool
	State *State
}

// Finished reports a completed layout.
func Finished() Result { return Result{Done: true} }

// Suspend reports a page break with resume state.
func Suspend(s *State) Result { return Result{State: s} }

// RenderNode is the contract every layout node implements. Measure is a
// pure function of the node and constraints; Layout consumes page space
// and may be resumed with the State of a previous break.
type RenderNode interface {
	Measure(c geom.BoxConstraints) (geom.Size, error)
	Layout(ctx *Context, c geom.BoxConstraints, resume *State) (Result, error)
	Style() *style.ComputedStyle
	// ID is the node's identity within its tree, used as a cache key.
	ID() uint64
}

// base carries what every node shares: resolved style, tree-local
// identity, the environment, and the IR id for anchor registration.
type base struct {
	cs       *style.ComputedStyle
	identity uint64
	env      *Env
	irID     string
}

func (b *base) Style() *style.ComputedStyle { return b.cs }
func (b *base) ID() uint64                  { return b.identity }

// registerAnchor records the node's position if it carries an id. Called
// once, at the start of the node's first (non-resumed) layout.
func (b *base) registerAnchor(ctx *Context) {
	if b.irID == "" {
		return
	}
	ctx.Anchors.DefineAnchor(b.irID, anchor.Location{
		PageIndex: ctx.PageIndex,
		Y:         ctx.Bounds.Y + ctx.CursorY,
	})
}
