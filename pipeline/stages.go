package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"sync"

	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/geom"
	"github.com/foliopress/paginator/node"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/paginate"
	"github.com/foliopress/paginator/style"
)

// job is one record queued for layout.
type job struct {
	index  int
	record any
}

// laidOut is the result of laying out one record: its pages plus the
// record-local anchor registry.
type laidOut struct {
	pages       []paginate.Page
	reg         *anchor.Registry
	forwardRefs bool
	hasToc      bool
}

// result flows from workers to the consumer.
type result struct {
	index int
	out   *laidOut
	err   error
}

// Generate runs the pipeline over records, writing the rendered document
// to w through r. Record order is preserved end-to-end. In strict mode the
// first record failure aborts the run; otherwise failed records are
// skipped and reported in the Summary.
func (p *Pipeline) Generate(ctx context.Context, records iter.Seq[any], r Renderer, w io.Writer) (*Summary, error) {
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.generate")
	var genErr error
	defer func() {
		if genErr != nil {
			span.SetError(genErr)
		}
		span.Finish()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, p.workers)
	results := make(chan result, p.workers)
	// Back-pressure: at most workers+2 records materialized at once.
	permits := make(chan struct{}, p.workers+2)

	// Producer.
	go func() {
		defer close(jobs)
		i := 0
		for record := range records {
			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case jobs <- job{index: i, record: record}:
			case <-ctx.Done():
				return
			}
			i++
		}
	}()

	// Layout workers: synchronous and CPU-bound.
	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out, err := p.layoutRecord(ctx, j)
				select {
				case results <- result{index: j.index, out: out, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	summary, err := p.consume(ctx, cancel, results, permits, r, w)
	genErr = err
	return summary, err
}

// layoutRecord expands, builds, and paginates a single record.
func (p *Pipeline) layoutRecord(ctx context.Context, j job) (*laidOut, error) {
	_, span := p.tracer.StartSpan(ctx, "pipeline.layout")
	span.SetTag("record", j.index)
	defer span.Finish()

	root, err := p.template.Expand(j.record)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("expand: %w", err)
	}

	env := &node.Env{
		Shaper:    p.shaper,
		Shapes:    p.shapes,
		Resources: p.provider,
		Logger:    p.logger,
		Strict:    p.strict,
	}
	tree, err := node.BuildTree(root, p.sheet, style.NewCache(), env)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("build tree: %w", err)
	}

	reg := anchor.NewRegistry()
	driver := paginate.NewDriver(p.masters, env)
	pages, err := driver.Paginate(tree, reg, cache.NewLayoutCache())
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("paginate: %w", err)
	}
	span.SetTag("pages", len(pages))

	if p.mode == WithMetrics {
		p.logger.Info("record laid out",
			observability.Int("record", j.index),
			observability.Int("pages", len(pages)))
	}
	refs, toc := scanForwardRefs(root)
	return &laidOut{pages: pages, reg: reg, forwardRefs: refs, hasToc: toc}, nil
}

// consume reorders worker results back into record order and emits them.
// Single-pass output streams straight to the renderer; once any record
// declares forward references the run buffers body pages in the two-pass
// artifact and assembles at the end.
func (p *Pipeline) consume(ctx context.Context, cancel context.CancelFunc, results <-chan result, permits <-chan struct{}, r Renderer, w io.Writer) (*Summary, error) {
	summary := &Summary{}
	global := anchor.NewRegistry()
	pending := map[int]result{}
	next := 0

	var art *artifact
	defer func() {
		if art != nil {
			art.Close()
		}
	}()
	var streamed []paginate.Page // pages held until we know the mode
	twoPass := false
	hasToc := false
	started := false
	pageOffset := 0
	flushed := 0

	// flushStreamed pushes held single-pass pages to the renderer with
	// their page-number tokens resolved (totals need two-pass).
	flushStreamed := func() error {
		for _, q := range streamed {
			substitutePageNum(&q, flushed+1)
			if err := r.Page(q); err != nil {
				return err
			}
			flushed++
		}
		streamed = streamed[:0]
		return nil
	}

	emit := func(pg paginate.Page) error {
		if twoPass {
			return art.Append(pg)
		}
		// Forward references are declared by the template, so they are
		// visible by the time record 0 finalizes; until then pages are
		// held, afterwards they stream straight through.
		streamed = append(streamed, pg)
		if started {
			return flushStreamed()
		}
		return nil
	}

	finalize := func(res result) error {
		if res.err != nil {
			recErr := RecordError{Index: res.index, Err: res.err}
			if p.strict {
				cancel()
				return recErr
			}
			summary.Failed++
			summary.Skipped++
			summary.Errors = append(summary.Errors, recErr)
			p.logger.Warn("record skipped",
				observability.Int("record", res.index),
				observability.Error("err", res.err))
			return nil
		}
		if res.out.hasToc {
			hasToc = true
		}
		if res.out.forwardRefs && !twoPass {
			twoPass = true
			art = newArtifact(p.threshold)
			for _, q := range streamed {
				if err := art.Append(q); err != nil {
					return err
				}
			}
			streamed = nil
		}
		global.Merge(res.out.reg, pageOffset)
		for _, pg := range res.out.pages {
			if err := emit(pg); err != nil {
				return err
			}
		}
		pageOffset += len(res.out.pages)
		summary.Succeeded++
		if !started && !twoPass {
			started = true
			return flushStreamed()
		}
		return nil
	}

	if err := r.Begin(w); err != nil {
		return summary, err
	}

	for res := range results {
		pending[res.index] = res
		for {
			queued, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := finalize(queued); err != nil {
				return summary, err
			}
			next++
			select {
			case <-permits:
			default:
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if twoPass {
		if err := p.assembleTwoPass(art, global, r, hasToc); err != nil {
			return summary, err
		}
	} else {
		if err := flushStreamed(); err != nil {
			return summary, err
		}
	}
	summary.Pages = pageOffset
	if err := r.End(); err != nil {
		return summary, err
	}
	return summary, nil
}

// substitutePageNum rewrites footer page-number tokens with the page's
// 1-based global position.
func substitutePageNum(pg *paginate.Page, num int) {
	for i := range pg.Elements {
		el := &pg.Elements[i]
		if el.Kind == geom.ElemText && strings.Contains(el.Content, paginate.PageNumToken) {
			el.Content = strings.ReplaceAll(el.Content, paginate.PageNumToken, strconv.Itoa(num))
		}
	}
}

// resolveElements rewrites forward references on one page: page-number
// placeholders get their final content, internal links their resolved
// target page, and footer tokens their global number and total.
func resolveElements(pg *paginate.Page, global *anchor.Registry, pageNum, preludePages, totalPages int) {
	substitutePageNum(pg, pageNum)
	for i := range pg.Elements {
		el := &pg.Elements[i]
		if el.Kind != geom.ElemText {
			continue
		}
		if el.RefTarget != "" {
			if loc, ok := global.Anchor(el.RefTarget); ok {
				final := loc.PageIndex + preludePages + 1
				el.Content = strconv.Itoa(final)
				el.TargetPage = final
			}
		}
		if strings.HasPrefix(el.Href, "#") {
			if loc, ok := global.Anchor(el.Href[1:]); ok {
				el.TargetPage = loc.PageIndex + preludePages + 1
			}
		}
		if strings.Contains(el.Content, paginate.TotalPagesToken) {
			el.Content = strings.ReplaceAll(el.Content, paginate.TotalPagesToken, strconv.Itoa(totalPages))
		}
	}
}
