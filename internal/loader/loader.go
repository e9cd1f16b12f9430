// Package loader reads template and text pages from the document formats
// they are commonly authored or delivered in.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/gridlock/internal/page"
)

// ErrUnsupported is returned for file extensions no loader handles.
var ErrUnsupported = errors.New("unsupported file extension")

// Loader converts raw document bytes into a Page.
type Loader interface {
	Load(r io.Reader, filename string) (page.Page, error)
}

// Options tune the loaders that need more than the file itself.
type Options struct {
	// PDFPage selects the 1-based page read from PDF files.
	PDFPage int
	// PDFFallbackPdftotext runs pdftotext -layout when the PDF library
	// yields no text.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate loader for a filename.
func ForFile(filename string, opts Options) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".text":
		return &TextLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".pdf":
		return &PDFLoader{Page: opts.PDFPage, FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// LoadFile opens path and loads it with the loader for its extension.
// A missing file yields an error wrapping page.ErrNotFound.
func LoadFile(path string, opts Options) (page.Page, error) {
	l, err := ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w - %s", page.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(f, filepath.Base(path))
}

// Load reads data with the loader for filename's extension.
func Load(data []byte, filename string, opts Options) (page.Page, error) {
	l, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	return l.Load(strings.NewReader(string(data)), filename)
}
