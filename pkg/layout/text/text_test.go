package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 40)
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Example WG", MaxLabelChars, "Example WG"},
		{strings.Repeat("b", 28), 28, strings.Repeat("b", 28)},
		{long, 28, strings.Repeat("a", 27) + Ellipsis},
		{"Größenordnung", 5, "Größ" + Ellipsis},
		{"abc", 0, "abc"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
	if n := utf8.RuneCountInString(Truncate(long, MaxLabelChars)); n != MaxLabelChars {
		t.Errorf("truncated label has %d runes, want %d", n, MaxLabelChars)
	}
}

func TestApprox(t *testing.T) {
	if got := (Approx{}).Width("abcd", 10); got != 22 {
		t.Errorf("Width() = %v, want 22", got)
	}
	if got := (Approx{Ratio: 1}).Width("ab", 10); got != 20 {
		t.Errorf("Width() = %v, want 20", got)
	}
}

func TestCells(t *testing.T) {
	tests := []struct {
		cells Cells
		in    string
		want  float64
	}{
		{Cells{}, "abc", 3},
		{Cells{CellWidth: 8}, "abc", 24},
		{Cells{CellWidth: 8}, "日本", 32},
	}
	for _, tt := range tests {
		if got := tt.cells.Width(tt.in, 99); got != tt.want {
			t.Errorf("%+v.Width(%q) = %v, want %v", tt.cells, tt.in, got, tt.want)
		}
	}
}

func TestFace(t *testing.T) {
	f, err := NewFace()
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	defer f.Close()

	w12 := f.Width("Working Group", 12)
	if w12 <= 0 {
		t.Fatalf("Width() = %v, want > 0", w12)
	}
	if w24 := f.Width("Working Group", 24); w24 < 2*w12-1e-9 || w24 > 2*w12+1e-9 {
		t.Errorf("Width(24) = %v, want twice %v", w24, w12)
	}
	if f.Width("iii", 12) >= f.Width("WWW", 12) {
		t.Error("narrow glyphs should measure narrower than wide glyphs")
	}
	if f.Width("", 12) != 0 {
		t.Error("empty string should have zero width")
	}
}
