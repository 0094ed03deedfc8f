package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/paginate"
)

// Renderer consumes finished pages in order and encodes the final
// artifact. PDF byte encoding lives outside the engine; the renderer is
// the seam it plugs into. Pages arrive with a top-left origin; renderers
// targeting a bottom-origin surface flip y on output.
type Renderer interface {
	Begin(w io.Writer) error
	Page(p paginate.Page) error
	End() error
}

// DebugRenderer writes a plain-text listing of every positioned element,
// one line each. It backs tests and the demo command; real deployments
// plug in a PDF-producing Renderer.
type DebugRenderer struct {
	w       *bufio.Writer
	pageNum int
}

// NewDebugRenderer constructs an unstarted DebugRenderer.
func NewDebugRenderer() *DebugRenderer { return &DebugRenderer{} }

func (r *DebugRenderer) Begin(w io.Writer) error {
	r.w = bufio.NewWriter(w)
	r.pageNum = 0
	return nil
}

func (r *DebugRenderer) Page(p paginate.Page) error {
	r.pageNum++
	fmt.Fprintf(r.w, "page %d %s %.2fx%.2f\n", r.pageNum, p.Master, p.Size.Width, p.Size.Height)
	for _, el := range p.Elements {
		switch el.Kind {
		case geom.ElemText:
			fmt.Fprintf(r.w, "  text %.2f,%.2f w=%.2f %q", el.X, el.Y, el.W, el.Content)
			if el.Href != "" {
				fmt.Fprintf(r.w, " href=%s", el.Href)
			}
			if el.TargetPage > 0 {
				fmt.Fprintf(r.w, " -> page %d", el.TargetPage)
			}
			fmt.Fprintln(r.w)
		case geom.ElemRect:
			fmt.Fprintf(r.w, "  rect %.2f,%.2f %.2fx%.2f\n", el.X, el.Y, el.W, el.H)
		case geom.ElemImage:
			fmt.Fprintf(r.w, "  image %.2f,%.2f %.2fx%.2f src=%s\n", el.X, el.Y, el.W, el.H, el.Src)
		}
	}
	return nil
}

func (r *DebugRenderer) End() error { return r.w.Flush() }
