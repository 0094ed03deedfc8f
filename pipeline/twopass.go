package pipeline

import (
	"fmt"

	"github.com/foliopress/paginator/anchor"
	"github.com/foliopress/paginator/cache"
	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/node"
	"github.com/foliopress/paginator/observability"
	"github.com/foliopress/paginator/paginate"
	"github.com/foliopress/paginator/style"
)

// tocTitleStyle and tocEntryStyle are the named style sets the prelude
// uses when the document's stylesheet declares them; otherwise entries
// inherit the default style.
const (
	tocTitleStyle = "toc-title"
	tocEntryStyle = "toc-entry"
)

// tocTree synthesizes the table-of-contents IR from the headings the body
// pass recorded: one hyperlinked entry per heading, each ending in a
// page-number reference resolved during assembly.
func (p *Pipeline) tocTree(headings []anchor.TocEntry) *ir.Root {
	var titleRefs, entryRefs []string
	if _, ok := p.sheet.Set(tocTitleStyle); ok {
		titleRefs = []string{tocTitleStyle}
	}
	if _, ok := p.sheet.Set(tocEntryStyle); ok {
		entryRefs = []string{tocEntryStyle}
	}

	children := []ir.Node{
		&ir.Heading{
			Meta:    ir.Meta{StyleRefs: titleRefs},
			Level:   1,
			Inlines: []ir.Inline{ir.Text{Content: "Contents"}},
		},
	}
	for _, h := range headings {
		if h.ID == "" {
			continue
		}
		indent := style.Margins{Left: float64(h.Level-1) * 12}
		children = append(children, &ir.Paragraph{
			Meta: ir.Meta{
				StyleRefs: entryRefs,
				Inline:    &style.Props{Margin: &indent},
			},
			Inlines: []ir.Inline{
				ir.Hyperlink{
					Href:    "#" + h.ID,
					Inlines: []ir.Inline{ir.Text{Content: h.Text}},
				},
				ir.Text{Content: "  "},
				ir.PageReference{Target: h.ID},
			},
		})
	}
	return &ir.Root{Children: children}
}

// assembleTwoPass emits the final document: generated prelude pages first,
// then the body replayed from the pass-1 artifact, with page-number
// placeholders, internal link targets, and footer total-page tokens
// rewritten against the merged anchor map.
func (p *Pipeline) assembleTwoPass(art *artifact, global *anchor.Registry, r Renderer, hasToc bool) error {
	env := &node.Env{
		Shaper:    p.shaper,
		Shapes:    p.shapes,
		Resources: p.provider,
		Logger:    p.logger,
		Strict:    p.strict,
	}

	var prelude []paginate.Page
	if hasToc && len(global.Headings()) > 0 {
		tree, err := node.BuildTree(p.tocTree(global.Headings()), p.sheet, style.NewCache(), env)
		if err != nil {
			return fmt.Errorf("pipeline: build toc: %w", err)
		}
		driver := paginate.NewDriver(p.masters, env)
		prelude, err = driver.Paginate(tree, anchor.NewRegistry(), cache.NewLayoutCache())
		if err != nil {
			return fmt.Errorf("pipeline: paginate toc: %w", err)
		}
	}

	offset := len(prelude)
	total := offset + art.Count()
	global.Finalize()

	p.logger.Debug("assembling two-pass output",
		observability.Int("prelude_pages", offset),
		observability.Int("body_pages", art.Count()))

	for i := range prelude {
		resolveElements(&prelude[i], global, i+1, offset, total)
		if err := r.Page(prelude[i]); err != nil {
			return err
		}
	}
	num := offset
	return art.Replay(func(pg paginate.Page) error {
		num++
		resolveElements(&pg, global, num, offset, total)
		return r.Page(pg)
	})
}
