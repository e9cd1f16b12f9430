package loader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/gridlock/internal/page"
)

func TestForFile_Extensions(t *testing.T) {
	cases := map[string]Loader{
		"a.txt":      &TextLoader{},
		"a.TEXT":     &TextLoader{},
		"a.md":       &MarkdownLoader{},
		"a.markdown": &MarkdownLoader{},
		"a.html":     &HTMLLoader{},
		"a.htm":      &HTMLLoader{},
		"a.docx":     &DOCXLoader{},
	}
	for name, want := range cases {
		got, err := ForFile(name, Options{})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if reflect.TypeOf(got) != reflect.TypeOf(want) {
			t.Errorf("%s: expected %T, got %T", name, want, got)
		}
	}

	l, err := ForFile("scan.pdf", Options{PDFPage: 3, PDFFallbackPdftotext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pl, ok := l.(*PDFLoader)
	if !ok || pl.Page != 3 || !pl.FallbackPdftotext {
		t.Errorf("unexpected pdf loader %+v", l)
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("sheet.xlsx", Options{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if IsSupportedExtension("sheet.xlsx") {
		t.Error("expected .xlsx to be unsupported")
	}
	if !IsSupportedExtension("PAGE.TXT") {
		t.Error("expected .TXT to be supported")
	}
}

func TestTextLoader_KeepsSpacing(t *testing.T) {
	p, err := Load([]byte("  ab  cd\n\tx\n\n\n"), "p.txt", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := page.Page{"  ab  cd\n", "\tx\n"}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("expected %q, got %q", want, p)
	}
}

func TestMarkdownLoader_FirstCodeBlock(t *testing.T) {
	src := "# Page 3\n\nSome prose.\n\n```\n##  ###\n  # #\n```\n\n```\nsecond\n```\n"
	p, err := Load([]byte(src), "p.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := page.Page{"##  ###\n", "  # #\n"}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("expected %q, got %q", want, p)
	}
}

func TestMarkdownLoader_NoCodeBlock(t *testing.T) {
	p, err := Load([]byte("just  text\nmore\n"), "p.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := page.Page{"just  text\n", "more\n"}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("expected %q, got %q", want, p)
	}
}

func TestCodeBlock_Missing(t *testing.T) {
	if _, ok := CodeBlock([]byte("no code here")); ok {
		t.Error("expected no code block")
	}
}

func TestHTMLLoader_Pre(t *testing.T) {
	src := "<html><head><title>t</title></head><body><p>intro</p>" +
		"<pre>##  ###\n<b>ab</b>  c&amp;d\n</pre></body></html>"
	p, err := Load([]byte(src), "p.html", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := page.Page{"##  ###\n", "ab  c&d\n"}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("expected %q, got %q", want, p)
	}
}

func TestHTMLLoader_BodyFallback(t *testing.T) {
	src := "<html><body>ab  cd<br>ef<script>var x;</script></body></html>"
	p, err := Load([]byte(src), "p.htm", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := page.Page{"ab  cd\n", "ef"}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("expected %q, got %q", want, p)
	}
}

func TestPDFLoader_InvalidInput(t *testing.T) {
	_, err := Load([]byte("not a pdf"), "p.pdf", Options{})
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.txt")
	if err := os.WriteFile(path, []byte("ab\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p, page.Page{"ab\n"}) {
		t.Errorf("unexpected page %q", p)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.txt"), Options{})
	if !errors.Is(err, page.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
