// Package merge reconciles a template page with OCR text.
//
// A template marks every expected glyph with a placeholder and uses
// whitespace for layout. Merging keeps the template's whitespace and
// substitutes the text's glyphs in order, which succeeds whenever both sides
// carry the same number of non-whitespace characters.
package merge

import (
	"strings"
	"unicode"

	"github.com/dgallion1/gridlock/internal/page"
)

// Line is the outcome of merging one template line with one text line.
// Merged is valid when OK is set; Diagnostic is valid otherwise.
type Line struct {
	Template       string `json:"template"`
	Text           string `json:"text"`
	TemplateGlyphs string `json:"-"`
	TextGlyphs     string `json:"-"`
	OK             bool   `json:"ok"`
	Merged         string `json:"merged,omitempty"`
	Diagnostic     string `json:"diagnostic,omitempty"`
}

// MergeLine merges text into the layout of template. Line terminators are
// not counted as glyphs; the template's terminator is carried into the
// merged line.
func MergeLine(template, text string) Line {
	l := Line{
		Template:       template,
		Text:           text,
		TemplateGlyphs: glyphs(page.Content(template)),
		TextGlyphs:     glyphs(page.Content(text)),
	}
	tg, xg := []rune(l.TemplateGlyphs), []rune(l.TextGlyphs)
	if len(tg) != len(xg) {
		l.Diagnostic = diagnostic(template, text)
		return l
	}

	var sb strings.Builder
	next := 0
	for _, r := range page.Content(template) {
		if unicode.IsSpace(r) {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(xg[next])
		next++
	}
	sb.WriteString(page.Terminator(template))
	l.OK = true
	l.Merged = sb.String()
	return l
}

// glyphs returns s with all whitespace removed.
func glyphs(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// diagnostic pairs the two lines, template first, behind < and > markers.
// Lines that carry terminators give a two-line diagnostic; column cells,
// which never do, give a single line.
func diagnostic(template, text string) string {
	if page.Terminator(template) == "" && page.Terminator(text) == "" {
		return "<" + template + ">" + text
	}
	return "<" + page.Content(template) + "\n>" + page.Content(text) + "\n"
}

// isDiagnostic reports whether a report line carries a diagnostic marker.
func isDiagnostic(s string) bool {
	return strings.HasPrefix(s, "<") || strings.HasPrefix(s, ">")
}
