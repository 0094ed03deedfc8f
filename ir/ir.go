// Package ir defines the intermediate representation: the tagged tree of
// semantic block/inline nodes that sits between template expansion and
// layout. Front ends (frontend/html, frontend/markdown, or any
// collaborator reached through builder.OutputBuilder) produce a Node tree;
// the node package consumes it.
package ir

import "github.com/foliopress/paginator/style"

// Meta carries the attributes common to every block-level node: an optional
// cross-reference id, the ordered list of named style sets to overlay, and
// an optional inline style override.
type Meta struct {
	ID        string
	StyleRefs []string
	Inline    *style.Props
}

// Node is any block-level IR variant. The set is closed (the unexported
// node method keeps other packages from adding variants); the node package
// dispatches with a type switch, since the variant set is closed and small.
type Node interface {
	node()
}

// Root is the document root; its children are laid out in sequence.
type Root struct {
	Children []Node
}

func (*Root) node() {}

// Block is a CSS-block container: children stack vertically, contributing
// margin, border, padding, and background.
type Block struct {
	Meta     Meta
	Children []Node
}

func (*Block) node() {}

// FlexContainer lays its children out per the CSS flexbox algorithm
// restricted to the properties in style.ComputedStyle.
type FlexContainer struct {
	Meta     Meta
	Children []Node
}

func (*FlexContainer) node() {}

// Paragraph holds shaped, line-broken inline content.
type Paragraph struct {
	Meta    Meta
	Inlines []Inline
}

func (*Paragraph) node() {}

// List is an ordered or unordered list. Start is the 1-based starting
// index for ordered lists (nil means 1).
type List struct {
	Meta     Meta
	Ordered  bool
	Start    *int
	Children []*ListItem
}

func (*List) node() {}

// ListItem is one entry of a List; its children are laid out like a Block,
// with a marker drawn on the first page it appears on.
type ListItem struct {
	Meta     Meta
	Children []Node
}

func (*ListItem) node() {}

// Column describes one table column's declared width (nil means auto).
type Column struct {
	Width *style.Dimension
}

// Row is one row of a Table, made of Cells. Cells may declare ColSpan and
// RowSpan (both default to 1 when zero).
type Row struct {
	Cells []Cell
}

// Cell is one table cell; its content is laid out like a Block.
type Cell struct {
	Meta     Meta
	ColSpan  int
	RowSpan  int
	Children []Node
}

// Table holds column definitions, an optional repeating header, and body
// rows paginated row by row, the header repeating per page.
type Table struct {
	Meta    Meta
	Columns []Column
	Header  []Row
	Body    []Row
}

func (*Table) node() {}

// Image is a single raster image, resolved through a resources.Provider by
// Src (a collaborator-facing path, not a filesystem guarantee).
type Image struct {
	Meta Meta
	Src  string
}

func (*Image) node() {}

// Heading is a Paragraph-like node carrying a nesting Level (1-based), used
// by the anchor registry and table-of-contents generation.
type Heading struct {
	Meta    Meta
	Level   int
	Inlines []Inline
}

func (*Heading) node() {}

// TableOfContents is expanded by the pipeline's two-pass mode into a
// sequence of entries pointing at Heading anchors.
type TableOfContents struct {
	Meta Meta
}

func (*TableOfContents) node() {}

// IndexMarker records an index-term occurrence at its position in the flow;
// it contributes no visible output.
type IndexMarker struct {
	Term string
}

func (*IndexMarker) node() {}

// PageBreak forces a page boundary, optionally switching the active page
// master for subsequent content.
type PageBreak struct {
	MasterName string // "" keeps the current master
}

func (*PageBreak) node() {}

// Inline is any inline-content variant within a Paragraph or Heading.
type Inline interface {
	inline()
}

// Text is a literal run of text.
type Text struct {
	Content string
}

func (Text) inline() {}

// StyledSpan applies additional style sets/override to its nested inlines.
type StyledSpan struct {
	Meta    Meta
	Inlines []Inline
}

func (StyledSpan) inline() {}

// Hyperlink wraps inline content in a clickable region pointing at Href:
// an external URL, or "#id" for an internal link to the node with that id.
type Hyperlink struct {
	Meta    Meta
	Href    string
	Inlines []Inline
}

func (Hyperlink) inline() {}

// PageReference resolves, in two-pass mode, to the page number of the node
// carrying Target as its Meta.ID.
type PageReference struct {
	Target string
}

func (PageReference) inline() {}

// InlineImage places an image inline within running text.
type InlineImage struct {
	Meta Meta
	Src  string
}

func (InlineImage) inline() {}

// LineBreak forces a line break within a paragraph; the resulting empty
// line has height equal to the paragraph's line-height.
type LineBreak struct{}

func (LineBreak) inline() {}
