package merge

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/gridlock/internal/columns"
	"github.com/dgallion1/gridlock/internal/page"
)

// Kind names a merge strategy.
type Kind string

const (
	KindRow    Kind = "row"
	KindColumn Kind = "column"
)

// Options control a page merge.
type Options struct {
	// Margin is the minimum run of blank poles that separates columns.
	// Values below 1 select columns.DefaultMargin.
	Margin int
	// Debug includes failed lines in the report.
	Debug bool
}

// DefaultOptions returns the options used when the caller has no opinion.
func DefaultOptions() Options {
	return Options{Margin: columns.DefaultMargin}
}

// Mismatch describes a page whose template and text split into different
// numbers of columns.
type Mismatch struct {
	TemplateExtents []columns.Extent `json:"template_extents"`
	TextExtents     []columns.Extent `json:"text_extents"`
}

// Result is the outcome of merging a page with one strategy.
type Result struct {
	OK       bool      `json:"ok"`
	Strategy Kind      `json:"strategy"`
	Report   []string  `json:"report"`
	Lines    []Line    `json:"-"`
	Mismatch *Mismatch `json:"mismatch,omitempty"`
}

// String returns the report as a single block of text.
func (r Result) String() string {
	return strings.Join(r.Report, "")
}

// Failed returns the number of lines that did not merge.
func (r Result) Failed() int {
	n := 0
	for _, l := range r.Lines {
		if !l.OK {
			n++
		}
	}
	return n
}

// Strategy merges a whole page one way.
type Strategy interface {
	Kind() Kind
	Merge(template, text page.Page, opts Options) Result
}

// DefaultStrategies returns the strategies Merge tries, in order.
func DefaultStrategies() []Strategy {
	return []Strategy{RowStrategy{}, ColumnStrategy{}}
}

// StrategyFor returns the strategy of the given kind.
func StrategyFor(k Kind) (Strategy, bool) {
	switch k {
	case KindRow:
		return RowStrategy{}, true
	case KindColumn:
		return ColumnStrategy{}, true
	}
	return nil, false
}

// Merge reconciles template with text, row by row first and column by column
// when any row fails. It never fails outright: problems are reported through
// Result.OK and the report.
func Merge(template, text page.Page, opts Options) Result {
	return MergeWith(DefaultStrategies(), template, text, opts)
}

// MergeWith tries each strategy in order and returns the first that merges
// every line. When none does, the last failed attempt that produced a report
// is returned, falling back to the first attempt.
func MergeWith(strategies []Strategy, template, text page.Page, opts Options) Result {
	template, text = page.FromLines(template), page.FromLines(text)
	var best Result
	for i, s := range strategies {
		res := s.Merge(template, text, opts)
		if res.OK {
			return res
		}
		if i == 0 || len(res.Report) > 0 {
			best = res
		}
	}
	return best
}

// RowStrategy pairs template and text rows by position. The shorter page is
// padded with blank rows.
type RowStrategy struct{}

func (RowStrategy) Kind() Kind { return KindRow }

func (RowStrategy) Merge(template, text page.Page, opts Options) Result {
	n := max(len(template), len(text))
	template, text = template.Padded(n), text.Padded(n)

	lines := make([]Line, 0, n)
	for i := range n {
		lines = append(lines, MergeLine(template[i], text[i]))
	}
	report := reportLines(lines, opts.Debug)
	if opts.Debug {
		report = BoxIt(report)
	}
	return Result{
		OK:       allOK(lines),
		Strategy: KindRow,
		Report:   report,
		Lines:    lines,
	}
}

// ColumnStrategy splits both pages into columns and merges each column top
// to bottom, which tolerates text that drifted into neighbouring rows.
type ColumnStrategy struct{}

func (ColumnStrategy) Kind() Kind { return KindColumn }

func (ColumnStrategy) Merge(template, text page.Page, opts Options) Result {
	tExt := columns.FindColumns(template, opts.Margin)
	xExt := columns.FindColumns(text, opts.Margin)
	if len(tExt) != len(xExt) {
		return Result{
			Strategy: KindColumn,
			Report:   splitLines(structuralDiagnostic(template, tExt, text, xExt)),
			Mismatch: &Mismatch{TemplateExtents: tExt, TextExtents: xExt},
		}
	}

	var lines []Line
	reports := make([]page.Page, 0, len(tExt))
	for i := range tExt {
		tCol := page.FromLines(columns.GetColumn(template, tExt[i]))
		xCol := page.FromLines(columns.GetColumn(text, xExt[i]))
		colLines := mergeVertical(tCol, xCol)
		lines = append(lines, colLines...)
		reports = append(reports, reportLines(colLines, opts.Debug))
	}

	report := columns.PasteColumns(reports, opts.Debug)
	if opts.Debug {
		for i, row := range report {
			mark := " "
			if strings.Contains(row, "|<") {
				mark = "!"
			}
			report[i] = mark + row
		}
	}
	return Result{
		OK:       allOK(lines),
		Strategy: KindColumn,
		Report:   report,
		Lines:    lines,
	}
}

// mergeVertical pairs each non-blank template row with the next non-blank
// text row. Blank template rows keep their place. Text rows left over once
// the template runs out are reported against a blank template.
func mergeVertical(template, text page.Page) []Line {
	lines := make([]Line, 0, len(template))
	next := 0
	for _, tRow := range template {
		if page.IsBlank(tRow) {
			lines = append(lines, MergeLine(tRow, tRow))
			continue
		}
		xRow := blankLike(tRow)
		for next < len(text) && page.IsBlank(xRow) {
			xRow = text[next]
			next++
		}
		lines = append(lines, MergeLine(tRow, xRow))
	}
	for ; next < len(text); next++ {
		xRow := text[next]
		if page.IsBlank(xRow) {
			continue
		}
		lines = append(lines, MergeLine(blankLike(xRow), xRow))
	}
	return lines
}

func blankLike(s string) string {
	return strings.Repeat(" ", utf8.RuneCountInString(s))
}

// reportLines lists the merged lines, and with debug set the diagnostics of
// the failed ones, in order.
func reportLines(lines []Line, debug bool) page.Page {
	var out page.Page
	for _, l := range lines {
		switch {
		case l.OK:
			out = append(out, l.Merged)
		case debug:
			out = append(out, l.Diagnostic)
		}
	}
	return out
}

func allOK(lines []Line) bool {
	for _, l := range lines {
		if !l.OK {
			return false
		}
	}
	return true
}
