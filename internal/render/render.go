// ABOUTME: Markdown rendering of bot messages for HTML and terminal frontends
// ABOUTME: HTML goes through goldmark's renderer; Terminal walks the goldmark AST to plain text

// Package render turns the markdown content of bot messages into something a
// frontend can show. Messages are stored as raw markdown; rendering happens at
// display time only.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// HTML converts markdown content to an HTML fragment.
func HTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Terminal converts markdown content to plain text for a terminal. Emphasis
// markers are dropped, links are shown as "text (url)" and list items are
// bulleted.
func Terminal(content string) string {
	src := []byte(content)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.Link:
			if !entering && !bytes.Equal(linkText(node, src), node.Destination) {
				fmt.Fprintf(&buf, " (%s)", node.Destination)
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			if entering {
				fmt.Fprintf(&buf, "[image: %s]", node.Destination)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				writeLines(&buf, n, src)
				buf.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				buf.WriteString("- ")
			}
		case *ast.ThematicBreak:
			if entering {
				buf.WriteString("---\n\n")
			}
		case *ast.Paragraph, *ast.Heading:
			if !entering {
				buf.WriteByte('\n')
				if !inListItem(n) {
					buf.WriteByte('\n')
				}
			}
		case *ast.TextBlock:
			if !entering {
				buf.WriteByte('\n')
			}
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimRight(buf.String(), "\n")
}

func writeLines(buf *bytes.Buffer, n ast.Node, src []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
}

// linkText collects the plain text inside a link.
func linkText(link *ast.Link, src []byte) []byte {
	var out []byte
	for c := link.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			out = append(out, t.Segment.Value(src)...)
		}
	}
	return out
}

func inListItem(n ast.Node) bool {
	_, ok := n.Parent().(*ast.ListItem)
	return ok
}
