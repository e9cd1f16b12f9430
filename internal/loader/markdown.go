package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/gridlock/internal/page"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownLoader handles Markdown files. The page is the first fenced or
// indented code block, since that is the only Markdown construct that keeps
// column positions. Documents without one are read as plain text.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader, filename string) (page.Page, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	if lines, ok := CodeBlock(src); ok {
		return page.FromLines(lines), nil
	}
	return page.Read(bytes.NewReader(src))
}

// CodeBlock returns the rows of the first code block in a Markdown
// document, terminators included.
func CodeBlock(src []byte) ([]string, bool) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var block ast.Node
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			block = n
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if block == nil {
		return nil, false
	}

	segs := block.Lines()
	lines := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		lines = append(lines, string(seg.Value(src)))
	}
	return lines, true
}
