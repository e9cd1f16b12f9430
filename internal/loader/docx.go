package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/gridlock/internal/page"
	"github.com/fumiama/go-docx"
)

// DOCXLoader handles .docx files. Each paragraph becomes one row with its
// spacing intact. Other body items such as tables are skipped.
type DOCXLoader struct{}

func (l *DOCXLoader) Load(r io.Reader, filename string) (page.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", filename, err)
	}

	rows := make([]string, 0, len(doc.Document.Body.Items))
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			rows = append(rows, paragraphRow(para))
		}
	}
	return page.FromLines(rows), nil
}

// paragraphRow joins the text runs of para into one newline-terminated row.
func paragraphRow(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
