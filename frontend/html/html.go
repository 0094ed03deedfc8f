// Package html drives a builder.OutputBuilder from parsed HTML, the
// reference collaborator front end for the streaming event contract.
// Structure maps directly: headings, paragraphs, lists, tables, images,
// links, and bold/italic spans; everything unrecognized is traversed
// transparently.
package html

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/foliopress/paginator/builder"
)

// Convert parses HTML from r and replays it into out.
func Convert(r io.Reader, out builder.OutputBuilder) error {
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("frontend/html: parse: %w", err)
	}
	w := &walker{out: out}
	return w.walk(doc)
}

// ConvertString parses an HTML string and replays it into out.
func ConvertString(source string, out builder.OutputBuilder) error {
	return Convert(strings.NewReader(source), out)
}

type walker struct {
	out builder.OutputBuilder
	// inline is non-zero while inside a paragraph-like context, where text
	// and spans go to the open inline host instead of opening new blocks.
	inline int
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func (w *walker) setCommonAttrs(n *html.Node) error {
	if id := attr(n, "id"); id != "" {
		if err := w.out.SetAttribute("id", id); err != nil {
			return err
		}
	}
	if class := attr(n, "class"); class != "" {
		if err := w.out.SetAttribute("style", class); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walk(n *html.Node) error {
	if n.Type == html.TextNode {
		if w.inline > 0 {
			if t := collapseSpace(n.Data); t != "" {
				return w.out.AddText(t)
			}
			return nil
		}
		if t := strings.TrimSpace(n.Data); t != "" {
			return w.out.AddText(collapseSpace(n.Data))
		}
		return nil
	}
	if n.Type != html.ElementNode {
		return w.children(n)
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		if err := w.out.StartHeading(level); err != nil {
			return err
		}
		if err := w.setCommonAttrs(n); err != nil {
			return err
		}
		w.inline++
		if err := w.children(n); err != nil {
			return err
		}
		w.inline--
		return w.out.EndHeading()

	case atom.P:
		if err := w.out.StartParagraph(); err != nil {
			return err
		}
		if err := w.setCommonAttrs(n); err != nil {
			return err
		}
		w.inline++
		if err := w.children(n); err != nil {
			return err
		}
		w.inline--
		return w.out.EndParagraph()

	case atom.Div, atom.Blockquote, atom.Section, atom.Article:
		if err := w.out.StartBlock(); err != nil {
			return err
		}
		if err := w.setCommonAttrs(n); err != nil {
			return err
		}
		if n.DataAtom == atom.Blockquote {
			if err := w.out.SetAttribute("margin", "6pt 0pt 6pt 20pt"); err != nil {
				return err
			}
		}
		if err := w.children(n); err != nil {
			return err
		}
		return w.out.EndBlock()

	case atom.Ul, atom.Ol:
		if err := w.out.StartList(); err != nil {
			return err
		}
		if err := w.setCommonAttrs(n); err != nil {
			return err
		}
		if n.DataAtom == atom.Ol {
			if err := w.out.SetAttribute("ordered", "true"); err != nil {
				return err
			}
			if s := attr(n, "start"); s != "" {
				if err := w.out.SetAttribute("start", s); err != nil {
					return err
				}
			}
		}
		if err := w.children(n); err != nil {
			return err
		}
		return w.out.EndList()

	case atom.Li:
		if err := w.out.StartListItem(); err != nil {
			return err
		}
		if err := w.children(n); err != nil {
			return err
		}
		return w.out.EndListItem()

	case atom.Table:
		return w.table(n)

	case atom.Img:
		src := attr(n, "src")
		if src == "" {
			return nil
		}
		if err := w.out.StartImage(src); err != nil {
			return err
		}
		if v := attr(n, "width"); v != "" {
			if err := w.out.SetAttribute("width", v); err != nil {
				return err
			}
		}
		if v := attr(n, "height"); v != "" {
			if err := w.out.SetAttribute("height", v); err != nil {
				return err
			}
		}
		return w.out.EndImage()

	case atom.A:
		if w.inline == 0 {
			// A bare link becomes its own paragraph.
			if err := w.out.StartParagraph(); err != nil {
				return err
			}
			w.inline++
			err := w.link(n)
			w.inline--
			if err != nil {
				return err
			}
			return w.out.EndParagraph()
		}
		return w.link(n)

	case atom.B, atom.Strong:
		return w.span(n, "font-weight", "bold")

	case atom.I, atom.Em:
		return w.span(n, "font-style", "italic")

	case atom.Span:
		return w.span(n, "", "")

	case atom.Br:
		if w.inline > 0 {
			return w.out.AddText("\n")
		}
		return nil

	case atom.Head, atom.Script, atom.Style, atom.Title:
		return nil
	}

	return w.children(n)
}

func (w *walker) children(n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) span(n *html.Node, attrName, attrValue string) error {
	if w.inline == 0 {
		return w.children(n)
	}
	if err := w.out.StartStyledSpan(); err != nil {
		return err
	}
	if err := w.setCommonAttrs(n); err != nil {
		return err
	}
	if attrName != "" {
		if err := w.out.SetAttribute(attrName, attrValue); err != nil {
			return err
		}
	}
	if err := w.children(n); err != nil {
		return err
	}
	return w.out.EndStyledSpan()
}

func (w *walker) link(n *html.Node) error {
	if err := w.out.StartHyperlink(attr(n, "href")); err != nil {
		return err
	}
	if err := w.children(n); err != nil {
		return err
	}
	return w.out.EndHyperlink()
}

// table walks thead/tbody/tr/td structure, marking header rows.
func (w *walker) table(n *html.Node) error {
	if err := w.out.StartTable(); err != nil {
		return err
	}
	if err := w.setCommonAttrs(n); err != nil {
		return err
	}

	var rows func(parent *html.Node, header bool) error
	rows = func(parent *html.Node, header bool) error {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead:
				if err := w.out.SetAttribute("header", "true"); err != nil {
					return err
				}
				if err := rows(c, true); err != nil {
					return err
				}
				if err := w.out.SetAttribute("header", "false"); err != nil {
					return err
				}
			case atom.Tbody, atom.Tfoot:
				if err := rows(c, false); err != nil {
					return err
				}
			case atom.Tr:
				if err := w.row(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := rows(n, false); err != nil {
		return err
	}
	return w.out.EndTable()
}

func (w *walker) row(tr *html.Node) error {
	if err := w.out.StartTableRow(); err != nil {
		return err
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if err := w.out.StartTableCell(); err != nil {
			return err
		}
		if v := attr(c, "colspan"); v != "" {
			if err := w.out.SetAttribute("colspan", v); err != nil {
				return err
			}
		}
		if v := attr(c, "rowspan"); v != "" {
			if err := w.out.SetAttribute("rowspan", v); err != nil {
				return err
			}
		}
		if err := w.children(c); err != nil {
			return err
		}
		if err := w.out.EndTableCell(); err != nil {
			return err
		}
	}
	return w.out.EndTableRow()
}

// collapseSpace folds runs of whitespace to single spaces, the HTML
// default for text content, preserving one boundary space on either side
// so words split across inline elements stay separated.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if r := s[0]; r == ' ' || r == '\n' || r == '\t' || r == '\r' {
		out = " " + out
	}
	if r := s[len(s)-1]; r == ' ' || r == '\n' || r == '\t' || r == '\r' {
		out += " "
	}
	return out
}
