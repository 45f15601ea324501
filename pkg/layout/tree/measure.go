package tree

import (
	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/layout/text"
)

// Style controls label sizing. Zero fields take the shared text constants.
type Style struct {
	FontSize float64 `toml:"font_size" json:"font_size"`
	MaxChars int     `toml:"max_label_chars" json:"max_label_chars"`
	PaddingX float64 `toml:"pill_padding_x" json:"pill_padding_x"`
	Height   float64 `toml:"pill_height" json:"pill_height"`
}

// SetDefaults fills zero fields.
func (s *Style) SetDefaults() {
	if s.FontSize <= 0 {
		s.FontSize = text.FontSize
	}
	if s.MaxChars <= 0 {
		s.MaxChars = text.MaxLabelChars
	}
	if s.PaddingX <= 0 {
		s.PaddingX = text.PillPaddingX
	}
	if s.Height <= 0 {
		s.Height = text.PillHeight
	}
}

// Label is the measured pill of one node.
type Label struct {
	Text      string  // Possibly truncated display text
	TextWidth float64 // Measured width of Text
	W, H      float64 // Pill size
}

// Labels maps node IDs to their measured pills.
type Labels map[string]Label

// Measure sizes the pill of every node in t. It is pure: the result
// depends only on the tree, the measurer and the style.
func Measure(t *dag.Tree, m text.Measurer, st Style) Labels {
	st.SetDefaults()
	if m == nil {
		m = text.Approx{}
	}
	out := make(Labels, t.Len())
	t.Walk(func(n *dag.TreeNode, _ int) bool {
		out[n.Node.ID] = measureOne(n.Node.Label(), m, st)
		return true
	})
	return out
}

func measureOne(name string, m text.Measurer, st Style) Label {
	s := text.Truncate(name, st.MaxChars)
	w := m.Width(s, st.FontSize)
	return Label{Text: s, TextWidth: w, W: w + 2*st.PaddingX, H: st.Height}
}
