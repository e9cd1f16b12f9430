package merge

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestMergeLine_SameSpacing(t *testing.T) {
	l := MergeLine("### ###\n", "abc def\n")
	if !l.OK {
		t.Fatalf("expected merge to succeed, diagnostic %q", l.Diagnostic)
	}
	if l.Merged != "abc def\n" {
		t.Errorf("expected %q, got %q", "abc def\n", l.Merged)
	}
	if l.Diagnostic != "" {
		t.Errorf("expected no diagnostic, got %q", l.Diagnostic)
	}
}

func TestMergeLine_TemplateSpacingWins(t *testing.T) {
	l := MergeLine("  # # #   \n", "  a b c\n")
	if !l.OK {
		t.Fatalf("expected merge to succeed, diagnostic %q", l.Diagnostic)
	}
	if l.Merged != "  a b c   \n" {
		t.Errorf("expected %q, got %q", "  a b c   \n", l.Merged)
	}
}

func TestMergeLine_ShiftedText(t *testing.T) {
	l := MergeLine("##  ##", "a bc   d")
	if !l.OK {
		t.Fatalf("expected merge to succeed, diagnostic %q", l.Diagnostic)
	}
	if l.Merged != "ab  cd" {
		t.Errorf("expected %q, got %q", "ab  cd", l.Merged)
	}
}

func TestMergeLine_CountMismatch(t *testing.T) {
	l := MergeLine("### ###\n", "abc\n")
	if l.OK {
		t.Fatal("expected merge to fail")
	}
	if l.Merged != "" {
		t.Errorf("expected no merged output, got %q", l.Merged)
	}
	if l.Diagnostic != "<### ###\n>abc\n" {
		t.Errorf("unexpected diagnostic %q", l.Diagnostic)
	}
	if l.TemplateGlyphs != "######" || l.TextGlyphs != "abc" {
		t.Errorf("unexpected glyphs %q / %q", l.TemplateGlyphs, l.TextGlyphs)
	}
}

func TestMergeLine_CellDiagnosticIsOneLine(t *testing.T) {
	l := MergeLine("##  ", "a   ")
	if l.OK {
		t.Fatal("expected merge to fail")
	}
	if l.Diagnostic != "<##  >a   " {
		t.Errorf("unexpected diagnostic %q", l.Diagnostic)
	}
}

func TestMergeLine_BlankLines(t *testing.T) {
	l := MergeLine("    ", "    ")
	if !l.OK || l.Merged != "    " {
		t.Errorf("expected blank line to merge with itself, got %+v", l)
	}
	if l := MergeLine("#\n", "\n"); l.OK {
		t.Error("expected a glyph against a blank line to fail")
	}
}

func TestMergeLine_Runes(t *testing.T) {
	l := MergeLine("## #\n", "é ñ ü\n")
	if !l.OK {
		t.Fatalf("expected merge to succeed, diagnostic %q", l.Diagnostic)
	}
	if l.Merged != "éñ ü\n" {
		t.Errorf("expected %q, got %q", "éñ ü\n", l.Merged)
	}
}

func TestMergeLine_Idempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 1000; i++ {
		var tmpl, text strings.Builder
		glyphs := 0
		for range r.IntN(20) {
			if r.IntN(2) == 0 {
				tmpl.WriteByte(' ')
			} else {
				tmpl.WriteByte('#')
				glyphs++
			}
		}
		for range glyphs {
			text.WriteByte(byte('a' + r.IntN(26)))
			if r.IntN(3) == 0 {
				text.WriteByte(' ')
			}
		}
		first := MergeLine(tmpl.String()+"\n", text.String()+"\n")
		if !first.OK {
			t.Fatalf("expected %q and %q to merge", tmpl.String(), text.String())
		}
		again := MergeLine(first.Merged, first.Merged)
		if !again.OK || again.Merged != first.Merged {
			t.Fatalf("re-merging %q gave %+v", first.Merged, again)
		}
		if repeat := MergeLine(tmpl.String()+"\n", text.String()+"\n"); repeat.Merged != first.Merged {
			t.Fatalf("expected deterministic merge, got %q then %q", first.Merged, repeat.Merged)
		}
	}
}
