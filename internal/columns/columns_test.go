package columns

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/gridlock/internal/page"
)

var gridShort = page.Page{
	"\n",
	" a aa  bb  \n",
	"           \n",
	"  aa   b   \n",
	"  a     b  \n",
	"   \n",
}

// gridFull is gridShort with every row at full width, so pasting its
// columns back together reproduces it exactly.
var gridFull = page.Page{
	"           \n",
	" a aa  bb  \n",
	"           \n",
	"  aa   b   \n",
	"  a     b  \n",
	"           \n",
}

func TestIsPoleBlank(t *testing.T) {
	cases := []struct {
		pole  int
		blank bool
	}{
		{0, true},
		{1, false},
		{4, false},
		{5, true},
		{6, true},
		{7, false},
		{40, true},
	}
	for _, tc := range cases {
		if got := IsPoleBlank(gridShort, tc.pole); got != tc.blank {
			t.Errorf("pole %d: expected blank=%v, got %v", tc.pole, tc.blank, got)
		}
	}
}

func TestFindColumns_ShortRows(t *testing.T) {
	extents := FindColumns(gridShort, DefaultMargin)
	want := []Extent{{0, 5}, {5, 11}}
	if !reflect.DeepEqual(extents, want) {
		t.Fatalf("expected %v, got %v", want, extents)
	}

	col0 := GetColumn(gridShort, extents[0])
	wantCol0 := page.Page{"     ", " a aa", "     ", "  aa ", "  a  ", "     "}
	if !reflect.DeepEqual(col0, wantCol0) {
		t.Errorf("column 0: expected %q, got %q", wantCol0, col0)
	}

	col1 := GetColumn(gridShort, extents[1])
	wantCol1 := page.Page{"      ", "  bb  ", "      ", "  b   ", "   b  ", "      "}
	if !reflect.DeepEqual(col1, wantCol1) {
		t.Errorf("column 1: expected %q, got %q", wantCol1, col1)
	}
}

func TestFindColumns_EmptyPage(t *testing.T) {
	if got := FindColumns(nil, DefaultMargin); len(got) != 0 {
		t.Errorf("expected no columns for empty page, got %v", got)
	}
	if got := FindColumns(page.Page{"   \n", "\n"}, DefaultMargin); len(got) != 0 {
		t.Errorf("expected no columns for blank page, got %v", got)
	}
}

func TestFindColumns_NoQualifyingGap(t *testing.T) {
	cases := []page.Page{
		{"abcdef\n", "a\n"},
		{"a b c d\n"},
		{"  ab   \n"},
	}
	for _, p := range cases {
		got := FindColumns(p, DefaultMargin)
		want := []Extent{{0, p.Width()}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("page %q: expected %v, got %v", p, want, got)
		}
	}
}

func TestFindColumns_TrailingBlankRunMergesIntoLastColumn(t *testing.T) {
	got := FindColumns(page.Page{"abc  def    \n"}, DefaultMargin)
	want := []Extent{{0, 3}, {3, 12}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFindColumns_Margin(t *testing.T) {
	p := page.Page{"ab cd   ef\n"}
	if got := FindColumns(p, 1); len(got) != 3 {
		t.Errorf("margin 1: expected 3 columns, got %v", got)
	}
	if got := FindColumns(p, 3); !reflect.DeepEqual(got, []Extent{{0, 5}, {5, 10}}) {
		t.Errorf("margin 3: unexpected extents %v", got)
	}
	if got := FindColumns(p, 4); len(got) != 1 {
		t.Errorf("margin 4: expected a single column, got %v", got)
	}
	if got, want := FindColumns(p, 0), FindColumns(p, DefaultMargin); !reflect.DeepEqual(got, want) {
		t.Errorf("margin 0: expected default margin result %v, got %v", want, got)
	}
}

func randomPage(r *rand.Rand) page.Page {
	rows := r.IntN(6) + 1
	p := make(page.Page, rows)
	for i := range p {
		var sb strings.Builder
		for range r.IntN(16) {
			if r.IntN(3) == 0 {
				sb.WriteByte('x')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
		p[i] = sb.String()
	}
	return p
}

func TestFindColumns_ExtentsAreContiguous(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		p := randomPage(r)
		margin := r.IntN(3) + 1
		extents := FindColumns(p, margin)
		if len(extents) == 0 {
			for pole := 0; pole < p.Width(); pole++ {
				if !IsPoleBlank(p, pole) {
					t.Fatalf("page %q: no columns but pole %d is not blank", p, pole)
				}
			}
			continue
		}
		if extents[0].Start != 0 {
			t.Fatalf("page %q: first extent starts at %d", p, extents[0].Start)
		}
		if last := extents[len(extents)-1].End; last != p.Width() {
			t.Fatalf("page %q: last extent ends at %d, width %d", p, last, p.Width())
		}
		for j, e := range extents {
			if e.Start >= e.End {
				t.Fatalf("page %q: empty extent %v", p, e)
			}
			if j > 0 && extents[j-1].End != e.Start {
				t.Fatalf("page %q: gap between %v and %v", p, extents[j-1], e)
			}
		}
	}
}

func TestFindColumns_NoBlankPoleGivesOneExtent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		width := r.IntN(20) + 1
		rows := r.IntN(4) + 1
		p := make(page.Page, rows)
		for j := range p {
			p[j] = strings.Repeat("#", width) + "\n"
		}
		got := FindColumns(p, r.IntN(3)+1)
		if want := []Extent{{0, width}}; !reflect.DeepEqual(got, want) {
			t.Fatalf("page %q: expected %v, got %v", p, want, got)
		}
	}
}

func TestGetColumn_PadsShortRows(t *testing.T) {
	p := page.Page{"abcdef\n", "ab\n", "\n"}
	got := GetColumn(p, Extent{Start: 3, End: 7})
	want := page.Page{"def ", "    ", "    "}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPasteColumns_RoundTrip(t *testing.T) {
	extents := FindColumns(gridFull, DefaultMargin)
	pasted := PasteColumns(Split(gridFull, extents), false)
	if !reflect.DeepEqual([]string(gridFull), pasted) {
		t.Errorf("expected round trip to reproduce the page\nwant %q\ngot  %q", gridFull, pasted)
	}
}

func TestPasteColumns_UnevenHeights(t *testing.T) {
	cols := []page.Page{{"ab", "c"}, {"xyz"}}
	got := PasteColumns(cols, false)
	want := []string{"abxyz\n", "c    \n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPasteColumns_Boxed(t *testing.T) {
	cols := []page.Page{{"ab", "c"}, {"xyz"}}
	got := PasteColumns(cols, true)
	want := []string{
		"+--+---+\n",
		"|ab|xyz|\n",
		"|c |   |\n",
		"+--+---+\n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPasteColumns_Empty(t *testing.T) {
	if got := PasteColumns([]page.Page{{}, {}}, true); got != nil {
		t.Errorf("expected nil for columns without rows, got %q", got)
	}
	if got := PasteColumns(nil, false); got != nil {
		t.Errorf("expected nil for no columns, got %q", got)
	}
}
