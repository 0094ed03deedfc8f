// Package paginate drives a render-node tree through page-sized layout
// passes: each iteration hands the root node one page's content rectangle
// and either finishes or collects resume state for the next page. Page
// masters select size, margins, and footers, and an explicit page break may
// switch the active master mid-sequence.
package paginate

import (
	"errors"
	"fmt"

	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/node"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

// ErrNoProgress is fatal: pagination produced the same resume state on two
// consecutive pages, which would loop forever.
var ErrNoProgress = errors.New("paginate: no progress between pages")

// ErrUnknownMaster is returned when a page break names a master that was
// never registered.
var ErrUnknownMaster = errors.New("paginate: unknown page master")

// PageNumToken and TotalPagesToken are the footer placeholders the
// consumer substitutes once global page positions are known: page numbers
// in every mode, totals only in two-pass mode.
const (
	PageNumToken    = "{page_num}"
	TotalPagesToken = "{total_pages}"
)

// maxPages caps runaway pagination far above any real document.
const maxPages = 100000

// Master is a named page configuration: size, margins, and an optional
// footer band reserved below the content box.
type Master struct {
	Name         string
	Size         style.PageSize
	Margins      style.Margins
	FooterHeight float64
	// FooterText is a template expanded per page: {page_num} is the
	// 1-based page number, {total_pages} resolves in two-pass mode.
	FooterText  string
	FooterStyle *style.ComputedStyle
}

// ContentRect is the box layout may fill, in page coordinates (top-left
// origin, y down). Renderers with a bottom-left origin flip on output.
func (m Master) ContentRect() geom.Rect {
	return geom.Rect{
		X:      m.Margins.Left,
		Y:      m.Margins.Top,
		Width:  m.Size.Width - m.Margins.Left - m.Margins.Right,
		Height: m.Size.Height - m.Margins.Top - m.Margins.Bottom - m.FooterHeight,
	}
}

// DefaultMaster is an A4 page with 1-inch margins and no footer.
func DefaultMaster() Master {
	return Master{
		Name:    "default",
		Size:    style.A4,
		Margins: style.Margins{Top: 72, Right: 72, Bottom: 72, Left: 72},
	}
}

// Page is the ordered element list produced for one page.
type Page struct {
	Master   string
	Size     style.PageSize
	Elements []geom.PositionedElement
}

// Driver repeatedly lays the root node into page content rectangles until
// the tree is consumed.
type Driver struct {
	masters map[string]Master
	first   string
	env     *node.Env
}

// NewDriver builds a driver over the given masters. The first master is
// the initial one; with none given, DefaultMaster applies.
func NewDriver(masters []Master, env *node.Env) *Driver {
	d := &Driver{masters: map[string]Master{}, env: env}
	for i, m := range masters {
		if i == 0 {
			d.first = m.Name
		}
		d.masters[m.Name] = m
	}
	if len(masters) == 0 {
		def := DefaultMaster()
		d.first = def.Name
		d.masters[def.Name] = def
	}
	return d
}

func (d *Driver) logger() observability.Logger {
	if d.env == nil || d.env.Logger == nil {
		return observability.NopLogger{}
	}
	return d.env.Logger
}

// Paginate runs the pagination loop. Anchors and index entries are written
// into reg with the local page index of the page that produced them.
func (d *Driver) Paginate(root node.RenderNode, reg *anchor.Registry, lc *cache.LayoutCache) ([]Page, error) {
	master, ok := d.masters[d.first]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaster, d.first)
	}

	var pages []Page
	var state *node.State
	for pageIndex := 0; ; pageIndex++ {
		if pageIndex >= maxPages {
			return nil, fmt.Errorf("%w: exceeded %d pages", ErrNoProgress, maxPages)
		}

		content := master.ContentRect()
		sink := &node.Sink{}
		ctx := &node.Context{
			Bounds:    content,
			PageIndex: pageIndex,
			PageTop:   content.Y,
			Sink:      sink,
			Anchors:   reg,
			Cache:     lc,
			Env:       d.env,
		}

		res, err := root.Layout(ctx, geom.TightWidth(content.Width, content.Height), state)
		if err != nil {
			return nil, err
		}

		if err := d.emitFooter(sink, master); err != nil {
			return nil, err
		}
		pages = append(pages, Page{Master: master.Name, Size: master.Size, Elements: sink.Elements})

		if res.Done {
			break
		}
		if res.State.Equal(state) && !sink.ForcedBreak {
			return nil, fmt.Errorf("%w (page %d)", ErrNoProgress, pageIndex)
		}
		state = res.State

		if sink.ForcedBreak && sink.NextMaster != "" {
			next, ok := d.masters[sink.NextMaster]
			if !ok {
				d.logger().Warn("page break names unknown master, keeping current",
					observability.String("master", sink.NextMaster))
			} else {
				master = next
			}
		}
	}
	return pages, nil
}

// emitFooter places the master's footer text for one page.
func (d *Driver) emitFooter(sink *node.Sink, master Master) error {
	if master.FooterText == "" || master.FooterHeight <= 0 {
		return nil
	}
	// Tokens stay verbatim here; the consumer substitutes them once the
	// page's global position (after any prelude) is known.
	text := master.FooterText

	fs := master.FooterStyle
	if fs == nil {
		def := style.Default()
		fs = &def
	}
	var width float64
	if d.env != nil && d.env.Shaper != nil {
		run, err := d.env.Shaper.ShapeSpan(text, fs, shaping.BreakNone)
		if err != nil {
			return err
		}
		width = run.Width
	}

	x := master.Margins.Left + (master.Size.Width-master.Margins.Left-master.Margins.Right-width)/2
	y := master.Size.Height - master.Margins.Bottom - master.FooterHeight + fs.FontSize*0.8
	sink.Elements = append(sink.Elements, geom.PositionedElement{
		X: x, Y: y, W: width, H: fs.FontSize,
		Style:   fs,
		Kind:    geom.ElemText,
		Content: text,
	})
	return nil
}
