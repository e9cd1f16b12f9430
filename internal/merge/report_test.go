package merge

import (
	"reflect"
	"testing"
)

func TestBoxIt_MixedReport(t *testing.T) {
	got := BoxIt([]string{"abc\n", "<## #\n>xy\n"})
	want := []string{
		"+----+\n",
		"|abc |\n",
		"<## #|\n",
		">xy  |\n",
		"+----+\n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBoxIt_LongMergedLine(t *testing.T) {
	got := BoxIt([]string{"abcdef\n", "<#\n>\n"})
	want := []string{
		"+------+\n",
		"|abcdef|\n",
		"<#     |\n",
		">      |\n",
		"+------+\n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBoxIt_BlankLine(t *testing.T) {
	got := BoxIt([]string{"\n", "ab\n"})
	want := []string{"+--+\n", "|  |\n", "|ab|\n", "+--+\n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBoxIt_Empty(t *testing.T) {
	if got := BoxIt(nil); got != nil {
		t.Errorf("expected nil, got %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	if got := splitLines("a\nb\n"); !reflect.DeepEqual(got, []string{"a\n", "b\n"}) {
		t.Errorf("unexpected split %q", got)
	}
	if got := splitLines("a\nb"); !reflect.DeepEqual(got, []string{"a\n", "b"}) {
		t.Errorf("unexpected split %q", got)
	}
	if got := splitLines(""); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}
