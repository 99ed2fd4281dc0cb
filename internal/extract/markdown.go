package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// readMarkdown parses a markdown file and returns its plain text content
// with formatting stripped.
func readMarkdown(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return markdownText(source)
}

// markdownText walks the goldmark AST collecting text segments. Block
// boundaries become blank lines so the chunker sees paragraph structure.
func markdownText(source []byte) (string, error) {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	doc := md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				b.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case ast.KindCodeBlock, ast.KindFencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(source))
				}
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("walk markdown: %w", err)
	}

	return collapseBlankLines(strings.TrimSpace(b.String())), nil
}

// Outline returns the header hierarchy of a markdown document as a list of
// "Title > Section" paths, up to heading depth 3. Documents without
// headers yield an empty outline.
func Outline(source []byte) ([]string, error) {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	doc := md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(3),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect outline: %w", err)
	}

	var paths []string
	collectOutline(tree.Items, nil, &paths)
	return paths, nil
}

func collectOutline(items toc.Items, ancestors []string, paths *[]string) {
	for _, item := range items {
		current := append(append([]string(nil), ancestors...), string(item.Title))
		*paths = append(*paths, strings.Join(current, " > "))
		if len(item.Items) > 0 {
			collectOutline(item.Items, current, paths)
		}
	}
}

// collapseBlankLines reduces runs of three or more newlines to exactly two.
func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
