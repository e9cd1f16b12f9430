package loader

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/gridlock/internal/page"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFLoader handles PDF files. It reads one page with the Go library, then
// falls back to pdftotext -layout when the library yields no text and the
// fallback is enabled.
type PDFLoader struct {
	// Page is the 1-based page to read. Zero selects the first page.
	Page              int
	FallbackPdftotext bool
}

func (l *PDFLoader) Load(r io.Reader, filename string) (page.Page, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "gridlock-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	num := max(l.Page, 1)
	text, err := extractPDFPage(tmpPath, num)
	if (err != nil || strings.TrimSpace(text) == "") && l.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath, num)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return page.Read(strings.NewReader(text))
}

func extractPDFPage(path string, num int) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if num > reader.NumPage() {
		return "", fmt.Errorf("page %d out of range, document has %d", num, reader.NumPage())
	}
	p := reader.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func extractPdftotext(path string, num int) (string, error) {
	n := fmt.Sprint(num)
	cmd := exec.Command("pdftotext", "-layout", "-f", n, "-l", n, path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return strings.TrimSuffix(string(out), "\f"), nil
}
