// Package page holds the grid primitives shared by the alignment engine.
//
// A Page is an ordered list of text rows. Rows may keep their trailing line
// terminator and need not share a length: positions past the end of a row are
// treated as blank. A pole is a rune offset shared by every row of a page.
package page

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNotFound is returned by LoadFile when the named file does not exist.
var ErrNotFound = errors.New("file not found")

// Page is an ordered sequence of text rows.
type Page []string

// FromLines copies lines into a new Page, dropping trailing blank rows.
func FromLines(lines []string) Page {
	p := make(Page, len(lines))
	copy(p, lines)
	return p.trimmed()
}

// Read reads rows from r. Line terminators are kept (CRLF becomes "\n") and
// trailing blank rows are dropped.
func Read(r io.Reader) (Page, error) {
	br := bufio.NewReader(r)
	var p Page
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if strings.HasSuffix(line, "\r\n") {
				line = strings.TrimSuffix(line, "\r\n") + "\n"
			}
			p = append(p, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
	}
	return p.trimmed(), nil
}

// LoadFile reads a page from the named file.
func LoadFile(path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w - %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func (p Page) trimmed() Page {
	n := len(p)
	for n > 0 && IsBlank(p[n-1]) {
		n--
	}
	return p[:n]
}

// Width returns the number of poles on the page: the longest row measured in
// runes, not counting line terminators.
func (p Page) Width() int {
	w := 0
	for _, row := range p {
		if n := utf8.RuneCountInString(Content(row)); n > w {
			w = n
		}
	}
	return w
}

// Padded returns a copy of p extended with empty rows up to n rows.
func (p Page) Padded(n int) Page {
	out := make(Page, len(p), max(n, len(p)))
	copy(out, p)
	for len(out) < n {
		out = append(out, "\n")
	}
	return out
}

// String joins the rows, adding a newline to any row that lacks one.
func (p Page) String() string {
	var sb strings.Builder
	for _, row := range p {
		sb.WriteString(row)
		if !strings.HasSuffix(row, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Content returns row without its line terminator.
func Content(row string) string {
	return strings.TrimRight(row, "\r\n")
}

// Terminator returns the line terminator carried by row, if any.
func Terminator(row string) string {
	return row[len(Content(row)):]
}

// PadRight right-pads s with spaces to n runes. Longer strings are returned
// unchanged.
func PadRight(s string, n int) string {
	if pad := n - utf8.RuneCountInString(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// IsBlank reports whether row holds nothing but whitespace.
func IsBlank(row string) bool {
	return strings.TrimFunc(row, unicode.IsSpace) == ""
}
