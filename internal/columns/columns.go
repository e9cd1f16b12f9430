// Package columns splits a page into vertical columns separated by runs of
// blank poles, and pastes columns back together.
//
// Example, with the default margin of 2:
//
//	01234567890
//	a aa  bb
//
//	 aa   b
//	 a     b
//
// gives the extents [0,5) and [5,11): the single blank pole at 1 is absorbed
// into the first column, the two blank poles at 5-6 separate the columns, and
// the trailing blank poles merge into the last column.
package columns

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/gridlock/internal/page"
)

// DefaultMargin is the number of consecutive blank poles that separates two
// columns when the caller does not choose one.
const DefaultMargin = 2

// Extent is the half-open pole range [Start, End) covered by one column.
type Extent struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width returns the number of poles in the extent.
func (e Extent) Width() int {
	return e.End - e.Start
}

// grid caches the rows of a page as runes, terminators removed.
type grid [][]rune

func newGrid(p page.Page) grid {
	g := make(grid, len(p))
	for i, row := range p {
		g[i] = []rune(page.Content(row))
	}
	return g
}

func (g grid) poleBlank(pole int) bool {
	for _, row := range g {
		if pole >= len(row) {
			continue
		}
		if !unicode.IsSpace(row[pole]) {
			return false
		}
	}
	return true
}

// IsPoleBlank reports whether every row of p is blank at pole. Rows shorter
// than pole count as blank.
func IsPoleBlank(p page.Page, pole int) bool {
	return newGrid(p).poleBlank(pole)
}

// FindColumns divides p into columns separated by at least margin
// consecutive blank poles. The extents are ordered left to right, start at
// pole 0 and end at the page width with no gaps between them. An empty or
// entirely blank page has no columns. A margin below 1 selects
// DefaultMargin.
func FindColumns(p page.Page, margin int) []Extent {
	if margin < 1 {
		margin = DefaultMargin
	}
	width := p.Width()
	if len(p) == 0 || width == 0 {
		return nil
	}
	g := newGrid(p)

	var extents []Extent
	startCol := 0
	startText := -1 // first non-blank pole in the open column
	endText := -1   // first blank pole after the text in the open column
	for pole := 0; pole < width; pole++ {
		if !g.poleBlank(pole) {
			if startText < 0 {
				startText = pole
			}
			// A blank run shorter than the margin belongs to the column.
			endText = -1
			continue
		}
		if startText < 0 {
			// Leading whitespace is part of the column.
			continue
		}
		if endText < 0 {
			endText = pole
		}
		if pole-endText+1 == margin {
			extents = append(extents, Extent{Start: startCol, End: endText})
			startCol = endText
			startText = -1
			endText = -1
		}
	}

	if startText < 0 {
		if len(extents) == 0 {
			return nil
		}
		extents[len(extents)-1].End = width
		return extents
	}
	return append(extents, Extent{Start: startCol, End: width})
}

// GetColumn returns the rows of p that fall within e, without line
// terminators, each padded to exactly e.Width() runes.
func GetColumn(p page.Page, e Extent) page.Page {
	col := make(page.Page, 0, len(p))
	for _, row := range p {
		runes := []rune(page.Content(row))
		var text string
		if e.Start < len(runes) {
			text = string(runes[e.Start:min(e.End, len(runes))])
		}
		col = append(col, page.PadRight(text, e.Width()))
	}
	return col
}

// Split extracts one column per extent.
func Split(p page.Page, extents []Extent) []page.Page {
	cols := make([]page.Page, 0, len(extents))
	for _, e := range extents {
		cols = append(cols, GetColumn(p, e))
	}
	return cols
}

// PasteColumns joins columns side by side. The tallest column sets the row
// count; shorter columns contribute blanks. Each column is padded to its own
// widest row so uneven heights cannot shift the other columns. With boxed
// set, the result is drawn inside +---+ borders with | separators. Every
// returned row ends in a newline.
func PasteColumns(cols []page.Page, boxed bool) []string {
	numRows := 0
	widths := make([]int, len(cols))
	for i, col := range cols {
		numRows = max(numRows, len(col))
		for _, row := range col {
			widths[i] = max(widths[i], utf8.RuneCountInString(row))
		}
	}
	if numRows == 0 {
		return nil
	}

	var border string
	if boxed {
		var sb strings.Builder
		for _, w := range widths {
			sb.WriteByte('+')
			sb.WriteString(strings.Repeat("-", w))
		}
		sb.WriteString("+\n")
		border = sb.String()
	}

	out := make([]string, 0, numRows+2)
	if boxed {
		out = append(out, border)
	}
	for r := 0; r < numRows; r++ {
		var sb strings.Builder
		if boxed {
			sb.WriteByte('|')
		}
		for i, col := range cols {
			var field string
			if r < len(col) {
				field = col[r]
			}
			sb.WriteString(page.PadRight(field, widths[i]))
			if boxed {
				sb.WriteByte('|')
			}
		}
		sb.WriteByte('\n')
		out = append(out, sb.String())
	}
	if boxed {
		out = append(out, border)
	}
	return out
}
