package merge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/gridlock/internal/columns"
	"github.com/dgallion1/gridlock/internal/page"
)

// sampleRows is how many rows of each page the structural diagnostic shows.
const sampleRows = 10

// BoxIt draws a box around a row report. Diagnostic lines keep their < or >
// marker in place of the left border so they stand out.
func BoxIt(report []string) []string {
	var rows []string
	for _, entry := range report {
		rows = append(rows, strings.Split(strings.TrimSuffix(entry, "\n"), "\n")...)
	}
	if len(rows) == 0 {
		return nil
	}

	width := 0
	for _, row := range rows {
		n := utf8.RuneCountInString(row)
		if isDiagnostic(row) {
			n--
		}
		width = max(width, n)
	}

	border := "+" + strings.Repeat("-", width) + "+\n"
	out := make([]string, 0, len(rows)+2)
	out = append(out, border)
	for _, row := range rows {
		if isDiagnostic(row) {
			out = append(out, page.PadRight(row, width+1)+"|\n")
		} else {
			out = append(out, "|"+page.PadRight(row, width)+"|\n")
		}
	}
	return append(out, border)
}

// structuralDiagnostic explains why the column strategy could not pair the
// columns of template and text.
func structuralDiagnostic(template page.Page, tExt []columns.Extent, text page.Page, xExt []columns.Extent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Column merge failed, template has %d, text has %d\n", len(tExt), len(xExt))
	sb.WriteString("TEMPLATE\n")
	sb.WriteString(sample(tExt, template))
	sb.WriteString("TEXT\n")
	sb.WriteString(sample(xExt, text))
	return sb.String()
}

// sample sketches the detected column boundaries above the first rows of p.
func sample(extents []columns.Extent, p page.Page) string {
	var sb strings.Builder
	for _, e := range extents {
		sb.WriteByte('+')
		sb.WriteString(strings.Repeat("-", max(e.Width()-1, 0)))
	}
	sb.WriteByte('\n')
	sb.WriteString(p[:min(sampleRows, len(p))].String())
	return sb.String()
}

// splitLines breaks s into newline-terminated lines.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
