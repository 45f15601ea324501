// Package text measures label widths for node sizing.
//
// Text metrics depend on the rendering surface, so layout engines take a
// [Measurer] instead of assuming a font. [Approx] is a fixed per-character
// estimate, [Face] measures with a real font, and [Cells] counts terminal
// cells for the explorer.
//
// Label truncation and pill padding live here as shared constants so the
// drawn text and the pill around it always agree.
package text

import (
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Label sizing constants shared by the measure step and every sink.
const (
	// MaxLabelChars is the longest label drawn in full, in runes.
	MaxLabelChars = 28
	// Ellipsis replaces the tail of a truncated label.
	Ellipsis = "…"
	// PillPaddingX is the horizontal padding on each side of a label.
	PillPaddingX = 16.0
	// PillHeight is the height of every label pill.
	PillHeight = 28.0
	// FontSize is the default label font size.
	FontSize = 12.0
	// CharWidthRatio is the average glyph advance relative to the font size.
	CharWidthRatio = 0.55
)

// Measurer returns the rendered width of s at the given font size.
type Measurer interface {
	Width(s string, size float64) float64
}

// Truncate shortens s to at most limit runes. Longer strings keep their
// first limit-1 runes followed by [Ellipsis]. A non-positive limit leaves s
// unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit-1 {
			return s[:i] + Ellipsis
		}
		n++
	}
	return s
}

// Approx estimates widths as rune count times Ratio times size.
type Approx struct {
	Ratio float64 // Zero means CharWidthRatio
}

// Width implements Measurer.
func (a Approx) Width(s string, size float64) float64 {
	r := a.Ratio
	if r <= 0 {
		r = CharWidthRatio
	}
	return float64(utf8.RuneCountInString(s)) * size * r
}

// Cells measures in terminal cells, ignoring the font size. Wide runes count
// as two cells. Each cell is CellWidth units wide, or one when zero.
type Cells struct {
	CellWidth float64
}

// Width implements Measurer.
func (c Cells) Width(s string, _ float64) float64 {
	w := c.CellWidth
	if w <= 0 {
		w = 1
	}
	return float64(lipgloss.Width(s)) * w
}
