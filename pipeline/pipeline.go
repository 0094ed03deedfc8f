// Package pipeline orchestrates the full render: a producer feeding
// records, parallel layout workers expanding and paginating them, and an
// in-order consumer translating finished pages to a Renderer. Forward
// references (table of contents, page-number links) switch the run into
// two-pass mode: pass one lays the body into a temporary artifact while
// recording anchors, pass two emits prelude pages and rewrites references.
package pipeline

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/fonts"
	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/paginate"
	"github.com/foliopress/paginator/resources"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

// ProcessingMode selects how much instrumentation a run emits.
type ProcessingMode int

const (
	// Standard runs quietly.
	Standard ProcessingMode = iota
	// WithMetrics logs each record's page count; it records no timings.
	WithMetrics
)

// ErrNoTemplate is returned by Build when no template was configured.
var ErrNoTemplate = errors.New("pipeline: no template configured")

// Template expands one input record into an IR tree. Implementations are
// called concurrently from layout workers and must be safe for concurrent
// use.
type Template interface {
	Expand(record any) (*ir.Root, error)
}

// StaticTemplate renders the same tree for every record.
type StaticTemplate struct {
	Root *ir.Root
}

func (t StaticTemplate) Expand(any) (*ir.Root, error) { return t.Root, nil }

// TemplateFunc adapts a function to the Template interface.
type TemplateFunc func(record any) (*ir.Root, error)

func (f TemplateFunc) Expand(record any) (*ir.Root, error) { return f(record) }

// RecordError pairs a failed record's index with its error.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Summary reports what a non-strict run did with its records.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
	Pages     int
	Errors    []RecordError
}

// Builder configures a Pipeline fluently; Build validates and freezes the
// configuration.
type Builder struct {
	template  Template
	sheet     *style.Stylesheet
	masters   []paginate.Master
	provider  resources.Provider
	shaper    shaping.TextShaper
	workers   int
	mode      ProcessingMode
	strict    bool
	logger    observability.Logger
	tracer    observability.Tracer
	threshold int
}

// New starts a pipeline configuration.
func New() *Builder {
	return &Builder{}
}

// WithTemplate sets the record template.
func (b *Builder) WithTemplate(t Template) *Builder {
	b.template = t
	return b
}

// WithTemplateRoot renders a fixed IR tree per record.
func (b *Builder) WithTemplateRoot(root *ir.Root) *Builder {
	b.template = StaticTemplate{Root: root}
	return b
}

// WithStylesheet sets the named style sets referenced by the template.
func (b *Builder) WithStylesheet(s *style.Stylesheet) *Builder {
	b.sheet = s
	return b
}

// WithWorkerCount overrides the layout worker count.
func (b *Builder) WithWorkerCount(n int) *Builder {
	b.workers = n
	return b
}

// WithProcessingMode selects instrumentation.
func (b *Builder) WithProcessingMode(m ProcessingMode) *Builder {
	b.mode = m
	return b
}

// WithPageMasters registers the page masters; the first is initial.
func (b *Builder) WithPageMasters(ms ...paginate.Master) *Builder {
	b.masters = ms
	return b
}

// WithResources sets the asset provider for images and fonts.
func (b *Builder) WithResources(p resources.Provider) *Builder {
	b.provider = p
	return b
}

// WithFontSource shapes text with real font files from src.
func (b *Builder) WithFontSource(src shaping.FontSource) *Builder {
	b.shaper = shaping.NewShaper(src)
	return b
}

// WithShaper overrides the text shaper directly.
func (b *Builder) WithShaper(s shaping.TextShaper) *Builder {
	b.shaper = s
	return b
}

// WithStrict makes any record failure abort the whole run; the default
// skips failed records and reports them in the Summary.
func (b *Builder) WithStrict(strict bool) *Builder {
	b.strict = strict
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(l observability.Logger) *Builder {
	b.logger = l
	return b
}

// WithTracer wraps pipeline stages in tracing spans.
func (b *Builder) WithTracer(t observability.Tracer) *Builder {
	b.tracer = t
	return b
}

// WithSpillThreshold sets the byte count past which the two-pass artifact
// moves from memory to a temp file.
func (b *Builder) WithSpillThreshold(bytes int) *Builder {
	b.threshold = bytes
	return b
}

// Build validates the configuration and returns a runnable Pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.template == nil {
		return nil, ErrNoTemplate
	}
	workers := b.workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 4 {
			workers = 4
		}
	}
	logger := b.logger
	if logger == nil {
		logger = observability.NopLogger{}
	}
	tracer := b.tracer
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	sheet := b.sheet
	if sheet == nil {
		sheet = style.NewStylesheet(nil)
	}
	shaper := b.shaper
	if shaper == nil {
		// With no fonts configured, fixed metrics keep layout running.
		shaper = shaping.FixedShaper{}
	}
	masters := b.masters
	if len(masters) == 0 {
		masters = []paginate.Master{paginate.DefaultMaster()}
	}
	return &Pipeline{
		template:  b.template,
		sheet:     sheet,
		masters:   masters,
		provider:  b.provider,
		shaper:    shaper,
		workers:   workers,
		mode:      b.mode,
		strict:    b.strict,
		logger:    logger,
		tracer:    tracer,
		threshold: b.threshold,
		shapes:    cache.NewShapeCache(),
	}, nil
}

// Pipeline is a frozen configuration ready to generate documents.
type Pipeline struct {
	template  Template
	sheet     *style.Stylesheet
	masters   []paginate.Master
	provider  resources.Provider
	shaper    shaping.TextShaper
	workers   int
	mode      ProcessingMode
	strict    bool
	logger    observability.Logger
	tracer    observability.Tracer
	threshold int
	shapes    *cache.ShapeCache
}

// NewDefault builds a pipeline for a fixed tree with library defaults, the
// quickest route for single-document callers.
func NewDefault(root *ir.Root) (*Pipeline, error) {
	return New().WithTemplateRoot(root).Build()
}

// RegisterFonts re-wires the pipeline's shaper to resolve faces through reg.
// It loads no faces into reg; the shaper uses whatever reg holds.
func (p *Pipeline) RegisterFonts(reg *fonts.Registry) {
	p.shaper = shaping.NewShaper(reg)
}

// scanForwardRefs walks an IR tree for the constructs that require
// two-pass mode: a table of contents (which also adds prelude pages) or
// any page-number reference.
func scanForwardRefs(root *ir.Root) (refs, toc bool) {
	var walkNode func(n ir.Node)
	var walkInline func(in ir.Inline)
	walkInline = func(in ir.Inline) {
		switch v := in.(type) {
		case ir.PageReference:
			refs = true
		case ir.StyledSpan:
			for _, c := range v.Inlines {
				walkInline(c)
			}
		case ir.Hyperlink:
			for _, c := range v.Inlines {
				walkInline(c)
			}
		}
	}
	walkNode = func(n ir.Node) {
		switch v := n.(type) {
		case *ir.TableOfContents:
			refs, toc = true, true
		case *ir.Block:
			for _, c := range v.Children {
				walkNode(c)
			}
		case *ir.FlexContainer:
			for _, c := range v.Children {
				walkNode(c)
			}
		case *ir.ListItem:
			for _, c := range v.Children {
				walkNode(c)
			}
		case *ir.List:
			for _, c := range v.Children {
				walkNode(c)
			}
		case *ir.Table:
			for _, rows := range [][]ir.Row{v.Header, v.Body} {
				for _, row := range rows {
					for _, cell := range row.Cells {
						for _, c := range cell.Children {
							walkNode(c)
						}
					}
				}
			}
		case *ir.Paragraph:
			for _, in := range v.Inlines {
				walkInline(in)
			}
		case *ir.Heading:
			for _, in := range v.Inlines {
				walkInline(in)
			}
		}
	}
	for _, c := range root.Children {
		walkNode(c)
	}
	return refs, toc
}
