// Package builder defines the streaming event interface template engines
// drive to produce an IR tree. Events must be well-nested; the TreeBuilder
// checks nesting and fails with ErrMismatch rather than guessing. The
// BufferingBuilder records an event stream for later replay or rollback.
package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/foliopress/paginator/ir"
	"github.com/foliopress/paginator/style"
)

// ErrMismatch is returned when an event arrives in a position the IR does
// not allow (a table row outside a table, an end without a start, ...).
var ErrMismatch = errors.New("builder: event outside valid position")

// OutputBuilder is the collaborator-facing streaming interface. Template
// engines emit structural events; implementations assemble the IR tree.
type OutputBuilder interface {
	StartBlock() error
	EndBlock() error
	StartFlex() error
	EndFlex() error
	StartParagraph() error
	EndParagraph() error
	StartList() error
	EndList() error
	StartListItem() error
	EndListItem() error
	StartTable() error
	EndTable() error
	SetTableColumns(widths []style.Dimension) error
	StartTableRow() error
	EndTableRow() error
	StartTableCell() error
	EndTableCell() error
	AddText(text string) error
	StartHeading(level int, styles ...string) error
	EndHeading() error
	AddPageBreak(master string) error
	StartStyledSpan() error
	EndStyledSpan() error
	StartHyperlink(href string) error
	EndHyperlink() error
	SetAttribute(name, value string) error
	StartImage(src string) error
	EndImage() error
}

type frameKind int

const (
	frameRoot frameKind = iota
	frameBlock
	frameFlex
	frameParagraph
	frameList
	frameListItem
	frameTable
	frameTableHeader
	frameTableRow
	frameTableCell
	frameHeading
	frameSpan
	frameLink
	frameImage
)

func (k frameKind) String() string {
	switch k {
	case frameRoot:
		return "root"
	case frameBlock:
		return "block"
	case frameFlex:
		return "flex"
	case frameParagraph:
		return "paragraph"
	case frameList:
		return "list"
	case frameListItem:
		return "list-item"
	case frameTable:
		return "table"
	case frameTableHeader:
		return "table-header"
	case frameTableRow:
		return "table-row"
	case frameTableCell:
		return "table-cell"
	case frameHeading:
		return "heading"
	case frameSpan:
		return "span"
	case frameLink:
		return "hyperlink"
	case frameImage:
		return "image"
	}
	return "?"
}

// frame is one open element on the construction stack.
type frame struct {
	kind frameKind
	meta ir.Meta

	children []ir.Node
	inlines  []ir.Inline

	// list state
	ordered bool
	start   *int

	// table state
	columns  []ir.Column
	header   []ir.Row
	body     []ir.Row
	inHeader bool
	cells    []ir.Cell
	colSpan  int
	rowSpan  int

	// heading / link / image payload
	level int
	href  string
	src   string
}

// TreeBuilder assembles an ir.Root from the event stream.
type TreeBuilder struct {
	stack []*frame
	err   error
}

// NewTreeBuilder constructs an empty TreeBuilder.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{stack: []*frame{{kind: frameRoot}}}
}

// Result returns the finished tree. It fails if any element is still open
// or any event errored.
func (b *TreeBuilder) Result() (*ir.Root, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 1 {
		return nil, fmt.Errorf("%w: %s left open", ErrMismatch, b.top().kind)
	}
	return &ir.Root{Children: b.stack[0].children}, nil
}

func (b *TreeBuilder) top() *frame { return b.stack[len(b.stack)-1] }

func (b *TreeBuilder) fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if b.err == nil {
		b.err = err
	}
	return err
}

func (b *TreeBuilder) push(f *frame) { b.stack = append(b.stack, f) }

func (b *TreeBuilder) pop(want frameKind) (*frame, error) {
	top := b.top()
	if top.kind != want {
		return nil, b.fail("%w: end of %s, have open %s", ErrMismatch, want, top.kind)
	}
	b.stack = b.stack[:len(b.stack)-1]
	return top, nil
}

// inlineHost reports whether the open frame accepts inline content.
func (f *frame) inlineHost() bool {
	switch f.kind {
	case frameParagraph, frameHeading, frameSpan, frameLink:
		return true
	}
	return false
}

// blockHost reports whether the open frame accepts block children.
func (f *frame) blockHost() bool {
	switch f.kind {
	case frameRoot, frameBlock, frameFlex, frameListItem, frameTableCell:
		return true
	}
	return false
}

func (b *TreeBuilder) appendChild(n ir.Node) error {
	top := b.top()
	if !top.blockHost() {
		return b.fail("%w: block node inside %s", ErrMismatch, top.kind)
	}
	top.children = append(top.children, n)
	return nil
}

func (b *TreeBuilder) startBlockLike(kind frameKind) error {
	top := b.top()
	if !top.blockHost() {
		return b.fail("%w: %s inside %s", ErrMismatch, kind, top.kind)
	}
	b.push(&frame{kind: kind})
	return nil
}

func (b *TreeBuilder) StartBlock() error { return b.startBlockLike(frameBlock) }

func (b *TreeBuilder) EndBlock() error {
	f, err := b.pop(frameBlock)
	if err != nil {
		return err
	}
	return b.appendChild(&ir.Block{Meta: f.meta, Children: f.children})
}

func (b *TreeBuilder) StartFlex() error { return b.startBlockLike(frameFlex) }

func (b *TreeBuilder) EndFlex() error {
	f, err := b.pop(frameFlex)
	if err != nil {
		return err
	}
	return b.appendChild(&ir.FlexContainer{Meta: f.meta, Children: f.children})
}

func (b *TreeBuilder) StartParagraph() error { return b.startBlockLike(frameParagraph) }

func (b *TreeBuilder) EndParagraph() error {
	f, err := b.pop(frameParagraph)
	if err != nil {
		return err
	}
	return b.appendChild(&ir.Paragraph{Meta: f.meta, Inlines: f.inlines})
}

func (b *TreeBuilder) StartList() error { return b.startBlockLike(frameList) }

func (b *TreeBuilder) EndList() error {
	f, err := b.pop(frameList)
	if err != nil {
		return err
	}
	items := make([]*ir.ListItem, 0, len(f.children))
	for _, c := range f.children {
		item, ok := c.(*ir.ListItem)
		if !ok {
			return b.fail("%w: %T inside list", ErrMismatch, c)
		}
		items = append(items, item)
	}
	return b.appendChild(&ir.List{Meta: f.meta, Ordered: f.ordered, Start: f.start, Children: items})
}

func (b *TreeBuilder) StartListItem() error {
	if b.top().kind != frameList {
		return b.fail("%w: list item inside %s", ErrMismatch, b.top().kind)
	}
	b.push(&frame{kind: frameListItem})
	return nil
}

func (b *TreeBuilder) EndListItem() error {
	f, err := b.pop(frameListItem)
	if err != nil {
		return err
	}
	top := b.top()
	top.children = append(top.children, &ir.ListItem{Meta: f.meta, Children: f.children})
	return nil
}

func (b *TreeBuilder) StartTable() error { return b.startBlockLike(frameTable) }

func (b *TreeBuilder) EndTable() error {
	f, err := b.pop(frameTable)
	if err != nil {
		return err
	}
	return b.appendChild(&ir.Table{
		Meta:    f.meta,
		Columns: f.columns,
		Header:  f.header,
		Body:    f.body,
	})
}

func (b *TreeBuilder) SetTableColumns(widths []style.Dimension) error {
	top := b.top()
	if top.kind != frameTable {
		return b.fail("%w: table columns inside %s", ErrMismatch, top.kind)
	}
	top.columns = top.columns[:0]
	for _, w := range widths {
		d := w
		top.columns = append(top.columns, ir.Column{Width: &d})
	}
	return nil
}

func (b *TreeBuilder) StartTableRow() error {
	top := b.top()
	if top.kind != frameTable {
		return b.fail("%w: table row inside %s", ErrMismatch, top.kind)
	}
	b.push(&frame{kind: frameTableRow, inHeader: top.inHeader})
	return nil
}

func (b *TreeBuilder) EndTableRow() error {
	f, err := b.pop(frameTableRow)
	if err != nil {
		return err
	}
	table := b.top()
	row := ir.Row{Cells: f.cells}
	if f.inHeader {
		table.header = append(table.header, row)
	} else {
		table.body = append(table.body, row)
	}
	return nil
}

func (b *TreeBuilder) StartTableCell() error {
	if b.top().kind != frameTableRow {
		return b.fail("%w: table cell inside %s", ErrMismatch, b.top().kind)
	}
	b.push(&frame{kind: frameTableCell, colSpan: 1, rowSpan: 1})
	return nil
}

func (b *TreeBuilder) EndTableCell() error {
	f, err := b.pop(frameTableCell)
	if err != nil {
		return err
	}
	row := b.top()
	row.cells = append(row.cells, ir.Cell{
		Meta:     f.meta,
		ColSpan:  f.colSpan,
		RowSpan:  f.rowSpan,
		Children: f.children,
	})
	return nil
}

// AddText appends literal text. Inside an inline host it extends the
// inline run; inside a block host it opens an implicit single-text
// paragraph, which keeps simple front ends simple.
func (b *TreeBuilder) AddText(text string) error {
	top := b.top()
	if top.inlineHost() {
		top.inlines = append(top.inlines, ir.Text{Content: text})
		return nil
	}
	if top.blockHost() {
		top.children = append(top.children, &ir.Paragraph{Inlines: []ir.Inline{ir.Text{Content: text}}})
		return nil
	}
	return b.fail("%w: text inside %s", ErrMismatch, top.kind)
}

func (b *TreeBuilder) StartHeading(level int, styles ...string) error {
	top := b.top()
	if !top.blockHost() {
		return b.fail("%w: heading inside %s", ErrMismatch, top.kind)
	}
	if level < 1 {
		level = 1
	}
	f := &frame{kind: frameHeading, level: level}
	f.meta.StyleRefs = append(f.meta.StyleRefs, styles...)
	b.push(f)
	return nil
}

func (b *TreeBuilder) EndHeading() error {
	f, err := b.pop(frameHeading)
	if err != nil {
		return err
	}
	return b.appendChild(&ir.Heading{Meta: f.meta, Level: f.level, Inlines: f.inlines})
}

func (b *TreeBuilder) AddPageBreak(master string) error {
	return b.appendChild(&ir.PageBreak{MasterName: master})
}

func (b *TreeBuilder) StartStyledSpan() error {
	if !b.top().inlineHost() {
		return b.fail("%w: styled span inside %s", ErrMismatch, b.top().kind)
	}
	b.push(&frame{kind: frameSpan})
	return nil
}

func (b *TreeBuilder) EndStyledSpan() error {
	f, err := b.pop(frameSpan)
	if err != nil {
		return err
	}
	top := b.top()
	top.inlines = append(top.inlines, ir.StyledSpan{Meta: f.meta, Inlines: f.inlines})
	return nil
}

func (b *TreeBuilder) StartHyperlink(href string) error {
	if !b.top().inlineHost() {
		return b.fail("%w: hyperlink inside %s", ErrMismatch, b.top().kind)
	}
	b.push(&frame{kind: frameLink, href: href})
	return nil
}

func (b *TreeBuilder) EndHyperlink() error {
	f, err := b.pop(frameLink)
	if err != nil {
		return err
	}
	top := b.top()
	top.inlines = append(top.inlines, ir.Hyperlink{Meta: f.meta, Href: f.href, Inlines: f.inlines})
	return nil
}

func (b *TreeBuilder) StartImage(src string) error {
	top := b.top()
	if !top.blockHost() && !top.inlineHost() {
		return b.fail("%w: image inside %s", ErrMismatch, top.kind)
	}
	b.push(&frame{kind: frameImage, src: src})
	return nil
}

func (b *TreeBuilder) EndImage() error {
	f, err := b.pop(frameImage)
	if err != nil {
		return err
	}
	top := b.top()
	if top.inlineHost() {
		top.inlines = append(top.inlines, ir.InlineImage{Meta: f.meta, Src: f.src})
		return nil
	}
	return b.appendChild(&ir.Image{Meta: f.meta, Src: f.src})
}

// SetAttribute applies a named attribute to the innermost open element.
// Recognized names: id, style (space-separated style set refs), href, src,
// colspan, rowspan, ordered, start, header (marks the current table
// section), plus inline style shorthands margin, padding, width, height,
// color, background, font-size, font-weight, font-style, text-align.
func (b *TreeBuilder) SetAttribute(name, value string) error {
	top := b.top()
	switch name {
	case "id":
		top.meta.ID = value
	case "style", "styles":
		top.meta.StyleRefs = append(top.meta.StyleRefs, strings.Fields(value)...)
	case "href":
		top.href = value
	case "src":
		top.src = value
	case "colspan":
		n, err := strconv.Atoi(value)
		if err != nil || top.kind != frameTableCell {
			return b.fail("%w: colspan=%q on %s", ErrMismatch, value, top.kind)
		}
		top.colSpan = n
	case "rowspan":
		n, err := strconv.Atoi(value)
		if err != nil || top.kind != frameTableCell {
			return b.fail("%w: rowspan=%q on %s", ErrMismatch, value, top.kind)
		}
		top.rowSpan = n
	case "ordered":
		if top.kind != frameList {
			return b.fail("%w: ordered on %s", ErrMismatch, top.kind)
		}
		top.ordered = value == "true" || value == "1"
	case "start":
		n, err := strconv.Atoi(value)
		if err != nil || top.kind != frameList {
			return b.fail("%w: start=%q on %s", ErrMismatch, value, top.kind)
		}
		top.start = &n
	case "header":
		if top.kind != frameTable {
			return b.fail("%w: header on %s", ErrMismatch, top.kind)
		}
		top.inHeader = value == "true" || value == "1"
	default:
		return b.setInlineStyle(name, value)
	}
	return nil
}

// setInlineStyle folds one CSS-like property into the element's inline
// style override.
func (b *TreeBuilder) setInlineStyle(name, value string) error {
	top := b.top()
	if top.meta.Inline == nil {
		top.meta.Inline = &style.Props{}
	}
	p := top.meta.Inline
	switch name {
	case "margin":
		m, err := style.ParseMargins(value)
		if err != nil {
			return b.fail("margin: %w", err)
		}
		p.Margin = &m
	case "padding":
		m, err := style.ParseMargins(value)
		if err != nil {
			return b.fail("padding: %w", err)
		}
		p.Padding = &m
	case "width":
		d, err := style.ParseDimension(value)
		if err != nil {
			return b.fail("width: %w", err)
		}
		p.Width = &d
	case "height":
		d, err := style.ParseDimension(value)
		if err != nil {
			return b.fail("height: %w", err)
		}
		p.Height = &d
	case "color":
		c, err := style.ParseColor(value)
		if err != nil {
			return b.fail("color: %w", err)
		}
		p.Color = &c
	case "background":
		c, err := style.ParseColor(value)
		if err != nil {
			return b.fail("background: %w", err)
		}
		p.Background = &c
	case "font-size":
		d, err := style.ParseDimension(value)
		if err != nil || d.Kind != style.DimPt {
			return b.fail("%w: font-size %q", ErrMismatch, value)
		}
		v := d.Value
		p.FontSize = &v
	case "font-weight":
		w := style.ParseFontWeight(value)
		p.FontWeight = &w
	case "font-style":
		var fs style.FontStyle
		switch value {
		case "normal":
			fs = style.FontNormal
		case "italic":
			fs = style.FontItalic
		case "oblique":
			fs = style.FontOblique
		default:
			return b.fail("%w: font-style %q", ErrMismatch, value)
		}
		p.FontStyle = &fs
	case "text-align":
		switch value {
		case "left":
			a := style.AlignLeft
			p.TextAlign = &a
		case "right":
			a := style.AlignRight
			p.TextAlign = &a
		case "center":
			a := style.AlignCenter
			p.TextAlign = &a
		case "justify":
			a := style.AlignJustify
			p.TextAlign = &a
		default:
			return b.fail("%w: text-align %q", ErrMismatch, value)
		}
	default:
		return b.fail("%w: attribute %q on %s", ErrMismatch, name, top.kind)
	}
	return nil
}
