// Package markdown drives a builder.OutputBuilder from a goldmark AST, the
// second collaborator front end. Headings get GitHub-flavored anchors so
// documents can cross-reference sections without hand-written ids.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/foliopress/paginator/builder"
)

var gfmPunctuation = regexp.MustCompile(`[^\w\- ]`)

// Anchor converts heading text to a GitHub-flavored anchor: lowercase,
// punctuation stripped, spaces hyphenated.
func Anchor(heading string) string {
	heading = strings.ToLower(heading)
	heading = gfmPunctuation.ReplaceAllString(heading, "")
	return strings.ReplaceAll(heading, " ", "-")
}

// Convert parses markdown source and replays it into out.
func Convert(source []byte, out builder.OutputBuilder) error {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))
	w := &walker{out: out, source: source}
	return ast.Walk(doc, w.visit)
}

// ConvertString parses a markdown string and replays it into out.
func ConvertString(source string, out builder.OutputBuilder) error {
	return Convert([]byte(source), out)
}

type walker struct {
	out    builder.OutputBuilder
	source []byte
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch v := n.(type) {
	case *ast.Document:
		return ast.WalkContinue, nil

	case *ast.Heading:
		if entering {
			if err := w.out.StartHeading(v.Level); err != nil {
				return ast.WalkStop, err
			}
			title := string(v.Text(w.source))
			if a := Anchor(title); a != "" {
				if err := w.out.SetAttribute("id", a); err != nil {
					return ast.WalkStop, err
				}
			}
			return ast.WalkContinue, nil
		}
		return ast.WalkContinue, w.out.EndHeading()

	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			return ast.WalkContinue, w.out.StartParagraph()
		}
		return ast.WalkContinue, w.out.EndParagraph()

	case *ast.Blockquote:
		if entering {
			if err := w.out.StartBlock(); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkContinue, w.out.SetAttribute("margin", "6pt 0pt 6pt 20pt")
		}
		return ast.WalkContinue, w.out.EndBlock()

	case *ast.List:
		if entering {
			if err := w.out.StartList(); err != nil {
				return ast.WalkStop, err
			}
			if v.IsOrdered() {
				if err := w.out.SetAttribute("ordered", "true"); err != nil {
					return ast.WalkStop, err
				}
				if v.Start != 1 && v.Start != 0 {
					if err := w.out.SetAttribute("start", strconv.Itoa(v.Start)); err != nil {
						return ast.WalkStop, err
					}
				}
			}
			return ast.WalkContinue, nil
		}
		return ast.WalkContinue, w.out.EndList()

	case *ast.ListItem:
		if entering {
			return ast.WalkContinue, w.out.StartListItem()
		}
		return ast.WalkContinue, w.out.EndListItem()

	case *ast.Emphasis:
		if entering {
			if err := w.out.StartStyledSpan(); err != nil {
				return ast.WalkStop, err
			}
			if v.Level >= 2 {
				return ast.WalkContinue, w.out.SetAttribute("font-weight", "bold")
			}
			return ast.WalkContinue, w.out.SetAttribute("font-style", "italic")
		}
		return ast.WalkContinue, w.out.EndStyledSpan()

	case *ast.Link:
		if entering {
			return ast.WalkContinue, w.out.StartHyperlink(string(v.Destination))
		}
		return ast.WalkContinue, w.out.EndHyperlink()

	case *ast.AutoLink:
		if entering {
			url := string(v.URL(w.source))
			if err := w.out.StartHyperlink(url); err != nil {
				return ast.WalkStop, err
			}
			if err := w.out.AddText(url); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, w.out.EndHyperlink()
		}
		return ast.WalkContinue, nil

	case *ast.Image:
		if entering {
			if err := w.out.StartImage(string(v.Destination)); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, w.out.EndImage()
		}
		return ast.WalkContinue, nil

	case *ast.Text:
		if entering {
			if err := w.out.AddText(string(v.Segment.Value(w.source))); err != nil {
				return ast.WalkStop, err
			}
			if v.HardLineBreak() {
				return ast.WalkContinue, w.out.AddText("\n")
			}
			if v.SoftLineBreak() {
				return ast.WalkContinue, w.out.AddText(" ")
			}
		}
		return ast.WalkContinue, nil

	case *ast.String:
		if entering {
			return ast.WalkContinue, w.out.AddText(string(v.Value))
		}
		return ast.WalkContinue, nil

	case *ast.CodeSpan:
		// Content arrives through child text nodes.
		return ast.WalkContinue, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			if err := w.out.StartParagraph(); err != nil {
				return ast.WalkStop, err
			}
			var b strings.Builder
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(w.source))
			}
			code := strings.TrimRight(b.String(), "\n")
			if err := w.out.AddText(code); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, w.out.EndParagraph()
		}
		return ast.WalkContinue, nil

	case *ast.ThematicBreak:
		if entering {
			// Rendered as a thin full-width block.
			if err := w.out.StartBlock(); err != nil {
				return ast.WalkStop, err
			}
			if err := w.out.SetAttribute("margin", "6pt 0pt"); err != nil {
				return ast.WalkStop, err
			}
			if err := w.out.SetAttribute("height", "1pt"); err != nil {
				return ast.WalkStop, err
			}
			if err := w.out.SetAttribute("background", "gray"); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, w.out.EndBlock()
		}
		return ast.WalkContinue, nil

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}
