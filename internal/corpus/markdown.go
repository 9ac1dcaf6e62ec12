package corpus

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"mediabuddy/internal/textutil"
)

var markdownParser = goldmark.New().Parser()

// markdownToProse keeps the running text of paragraphs, list items and block
// quotes. Headings, code, raw HTML, images and bare autolinks are dropped.
func markdownToProse(src []byte) string {
	doc := markdownParser.Parse(text.NewReader(src))

	var (
		paragraphs []string
		current    strings.Builder
	)
	flush := func() {
		if p := textutil.CollapseWhitespace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading, *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock,
			*ast.RawHTML, *ast.Image, *ast.AutoLink, *ast.CodeSpan, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			if !entering {
				flush()
			}
		case *ast.Text:
			if entering {
				current.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					current.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				current.Write(node.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	flush()

	return strings.Join(paragraphs, "\n\n")
}
