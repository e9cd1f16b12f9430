package loader

import (
	"io"

	"github.com/dgallion1/gridlock/internal/page"
)

// TextLoader handles plain text files. Rows keep their line terminators.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (page.Page, error) {
	return page.Read(r)
}
