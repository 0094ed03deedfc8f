package node

import (
	"fmt"

	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/style"
)

// TreeBuilder turns an IR tree into a render-node tree, resolving styles
// along the way. One TreeBuilder serves one record; node identities are
// unique within the resulting tree.
type TreeBuilder struct {
	resolver *style.Resolver
	sheet    *style.Stylesheet
	env      *Env
	nextID   uint64
}

// NewTreeBuilder constructs a builder over the given stylesheet and
// environment. styleCache may be nil.
func NewTreeBuilder(sheet *style.Stylesheet, styleCache *style.Cache, env *Env) *TreeBuilder {
	if sheet == nil {
		sheet = style.NewStylesheet(nil)
	}
	return &TreeBuilder{
		resolver: style.NewResolver(sheet, styleCache),
		sheet:    sheet,
		env:      env,
	}
}

// BuildTree resolves and builds the full render tree for a document root.
// The returned node is laid out by the pagination driver.
func BuildTree(root *ir.Root, sheet *style.Stylesheet, styleCache *style.Cache, env *Env) (*BlockNode, error) {
	return NewTreeBuilder(sheet, styleCache, env).Build(root)
}

// Build constructs the root block for a document.
func (b *TreeBuilder) Build(root *ir.Root) (*BlockNode, error) {
	rootStyle, err := b.resolver.Resolve(nil, nil, nil)
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(root.Children, rootStyle, 0)
	if err != nil {
		return nil, err
	}
	return &BlockNode{
		base:     b.newBase(rootStyle, ""),
		children: children,
	}, nil
}

func (b *TreeBuilder) newBase(cs *style.ComputedStyle, irID string) base {
	b.nextID++
	return base{cs: cs, identity: b.nextID, env: b.env, irID: irID}
}

func (b *TreeBuilder) resolveMeta(parent *style.ComputedStyle, meta ir.Meta) (*style.ComputedStyle, error) {
	return b.resolver.Resolve(parent, meta.StyleRefs, meta.Inline)
}

func (b *TreeBuilder) buildChildren(nodes []ir.Node, parent *style.ComputedStyle, listDepth int) ([]RenderNode, error) {
	out := make([]RenderNode, 0, len(nodes))
	for _, child := range nodes {
		rn, err := b.buildNode(child, parent, listDepth)
		if err != nil {
			return nil, err
		}
		out = append(out, rn)
	}
	return out, nil
}

func (b *TreeBuilder) buildNode(n ir.Node, parent *style.ComputedStyle, listDepth int) (RenderNode, error) {
	switch v := n.(type) {
	case *ir.Block:
		cs, err := b.resolveMeta(parent, v.Meta)
		if err != nil {
			return nil, err
		}
		children, err := b.buildChildren(v.Children, cs, listDepth)
		if err != nil {
			return nil, err
		}
		return &BlockNode{base: b.newBase(cs, v.Meta.ID), children: children}, nil

	case *ir.FlexContainer:
		cs, err := b.resolveMeta(parent, v.Meta)
		if err != nil {
			return nil, err
		}
		children, err := b.buildChildren(v.Children, cs, listDepth)
		if err != nil {
			return nil, err
		}
		return &FlexNode{base: b.newBase(cs, v.Meta.ID), children: children}, nil

	case *ir.Paragraph:
		cs, err := b.resolveMeta(parent, v.Meta)
		if err != nil {
			return nil, err
		}
		spans, err := b.flattenInlines(v.Inlines, cs)
		if err != nil {
			return nil, err
		}
		return &ParagraphNode{base: b.newBase(cs, v.Meta.ID), spans: spans}, nil

	case *ir.Heading:
		cs, err := b.resolveMeta(parent, v.Meta)
		if err != nil {
			return nil, err
		}
		cs = b.defaultHeadingStyle(cs, v)
		spans, err := b.flattenInlines(v.Inlines, cs)
		if err != nil {
			return nil, err
		}
		return &ParagraphNode{base: b.newBase(cs, v.Meta.ID), spans: spans, Level: v.Level}, nil

	case *ir.List:
		return b.buildList(v, parent, listDepth)

	case *ir.Table:
		return b.buildTable(v, parent)

	case *ir.Image:
		cs, err := b.resolveMeta(parent, v.Meta)
		if err != nil {
			return nil, err
		}
		return &ImageNode{base: b.newBase(cs, v.Meta.ID), src: v.Src}, nil

	case *ir.TableOfContents:
		cs, err := b.resolveMeta(parent, v.Meta)
		if err != nil {
			return nil, err
		}
		return &TocPlaceholderNode{base: b.newBase(cs, v.Meta.ID)}, nil

	case *ir.IndexMarker:
		return &IndexMarkerNode{base: b.newBase(parent, ""), term: v.Term}, nil

	case *ir.PageBreak:
		return &PageBreakNode{base: b.newBase(parent, ""), master: v.MasterName}, nil

	case *ir.ListItem:
		// A bare list item outside a list has no marker context.
		return nil, fmt.Errorf("node: list item outside a list")

	default:
		return nil, fmt.Errorf("node: unsupported IR node %T", n)
	}
}

// defaultHeadingStyle scales and bolds a heading that no style set or
// inline font size addressed: x2 for level 1, x1.5 for level 2, x1.25
// below, the conventional HTML ladder.
func (b *TreeBuilder) defaultHeadingStyle(cs *style.ComputedStyle, v *ir.Heading) *style.ComputedStyle {
	if len(v.Meta.StyleRefs) > 0 || (v.Meta.Inline != nil && v.Meta.Inline.FontSize != nil) {
		return cs
	}
	scaled := *cs
	switch {
	case v.Level <= 1:
		scaled.FontSize = cs.FontSize * 2
	case v.Level == 2:
		scaled.FontSize = cs.FontSize * 1.5
	default:
		scaled.FontSize = cs.FontSize * 1.25
	}
	scaled.LineHeight = scaled.FontSize * 1.2
	scaled.FontWeight = style.ParseFontWeight("bold")
	return &scaled
}

// listStyleOverridden reports whether the node's own styling names a
// list-style-type, which suppresses the per-depth default cycle.
func (b *TreeBuilder) listStyleOverridden(meta ir.Meta) bool {
	if meta.Inline != nil && meta.Inline.ListStyle != nil {
		return true
	}
	for _, name := range meta.StyleRefs {
		if set, ok := b.sheet.Set(name); ok && set.ListStyle != nil {
			return true
		}
	}
	return false
}

func (b *TreeBuilder) buildList(v *ir.List, parent *style.ComputedStyle, listDepth int) (RenderNode, error) {
	cs, err := b.resolveMeta(parent, v.Meta)
	if err != nil {
		return nil, err
	}

	markerStyle := cs.ListStyle
	if !b.listStyleOverridden(v.Meta) {
		markerStyle = style.DefaultListStyleType(listDepth, v.Ordered)
	}

	start := 1
	if v.Start != nil {
		start = *v.Start
	}

	items := make([]RenderNode, 0, len(v.Children))
	for i, item := range v.Children {
		itemCS, err := b.resolveMeta(cs, item.Meta)
		if err != nil {
			return nil, err
		}
		marker := markerFor(markerStyle, start+i)

		children := item.Children
		if marker != "" && itemCS.ListPos == style.Inside {
			children = prependMarker(children, marker)
			marker = ""
		}
		content, err := b.buildChildren(children, itemCS, listDepth+1)
		if err != nil {
			return nil, err
		}
		inner := &BlockNode{base: b.newBase(itemCS, ""), children: content}
		items = append(items, &ListItemNode{
			base:       b.newBase(itemCS, item.Meta.ID),
			content:    inner,
			markerText: marker,
		})
	}

	return &ListNode{BlockNode{base: b.newBase(cs, v.Meta.ID), children: items}}, nil
}

// prependMarker injects "marker " as leading text of the item's first
// paragraph, for list-style-position inside.
func prependMarker(children []ir.Node, marker string) []ir.Node {
	out := make([]ir.Node, len(children))
	copy(out, children)
	for i, c := range out {
		if p, ok := c.(*ir.Paragraph); ok {
			inlines := make([]ir.Inline, 0, len(p.Inlines)+1)
			inlines = append(inlines, ir.Text{Content: marker + " "})
			inlines = append(inlines, p.Inlines...)
			out[i] = &ir.Paragraph{Meta: p.Meta, Inlines: inlines}
			return out
		}
	}
	// No paragraph to host the marker: synthesize one.
	return append([]ir.Node{&ir.Paragraph{Inlines: []ir.Inline{ir.Text{Content: marker}}}}, out...)
}

func (b *TreeBuilder) buildTable(v *ir.Table, parent *style.ComputedStyle) (RenderNode, error) {
	cs, err := b.resolveMeta(parent, v.Meta)
	if err != nil {
		return nil, err
	}

	columns := make([]style.Dimension, len(v.Columns))
	for i, col := range v.Columns {
		if col.Width != nil {
			columns[i] = *col.Width
		} else {
			columns[i] = style.Auto()
		}
	}

	buildRows := func(rows []ir.Row) ([]tableRow, error) {
		out := make([]tableRow, len(rows))
		for r, row := range rows {
			cells := make([]*tableCell, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cellCS, err := b.resolveMeta(cs, cell.Meta)
				if err != nil {
					return nil, err
				}
				content, err := b.buildChildren(cell.Children, cellCS, 0)
				if err != nil {
					return nil, err
				}
				cells = append(cells, &tableCell{
					content: &BlockNode{base: b.newBase(cellCS, cell.Meta.ID), children: content},
					colSpan: cell.ColSpan,
					rowSpan: cell.RowSpan,
				})
			}
			out[r] = tableRow{cells: cells}
		}
		return out, nil
	}

	header, err := buildRows(v.Header)
	if err != nil {
		return nil, err
	}
	body, err := buildRows(v.Body)
	if err != nil {
		return nil, err
	}
	return &TableNode{
		base:    b.newBase(cs, v.Meta.ID),
		columns: columns,
		header:  header,
		body:    body,
	}, nil
}

// flattenInlines reduces the inline tree to a flat span list, resolving
// span styles against the paragraph style.
func (b *TreeBuilder) flattenInlines(inlines []ir.Inline, cs *style.ComputedStyle) ([]spanSrc, error) {
	var out []spanSrc
	var walk func(items []ir.Inline, cur *style.ComputedStyle, href string, underline bool) error
	walk = func(items []ir.Inline, cur *style.ComputedStyle, href string, underline bool) error {
		for _, item := range items {
			switch v := item.(type) {
			case ir.Text:
				out = append(out, spanSrc{text: v.Content, cs: cur, href: href, underline: underline})
			case ir.StyledSpan:
				spanCS, err := b.resolveMeta(cur, v.Meta)
				if err != nil {
					return err
				}
				if err := walk(v.Inlines, spanCS, href, underline); err != nil {
					return err
				}
			case ir.Hyperlink:
				linkCS, err := b.resolveMeta(cur, v.Meta)
				if err != nil {
					return err
				}
				if err := walk(v.Inlines, linkCS, v.Href, true); err != nil {
					return err
				}
			case ir.PageReference:
				out = append(out, spanSrc{cs: cur, refTarget: v.Target, href: href, underline: underline})
			case ir.InlineImage:
				imgCS, err := b.resolveMeta(cur, v.Meta)
				if err != nil {
					return err
				}
				out = append(out, spanSrc{cs: imgCS, imageSrc: v.Src, href: href})
			case ir.LineBreak:
				out = append(out, spanSrc{cs: cur, hardBreak: true})
			default:
				return fmt.Errorf("node: unsupported inline %T", item)
			}
		}
		return nil
	}
	if err := walk(inlines, cs, "", false); err != nil {
		return nil, err
	}
	return out, nil
}
