package render

import "github.com/matzehuels/orgtower/pkg/dag"

// Kind colors as hex RGB.
const (
	ColorCouncil       = "#7c3aed"
	ColorCommittee     = "#2563eb"
	ColorWorkingGroup  = "#059669"
	ColorInterestGroup = "#d97706"
	ColorUnknown       = "#6b7280"
	ColorConnector     = "#9ca3af"
)

// KindColor returns the fill color for a node kind.
func KindColor(k dag.Kind) string {
	switch k {
	case dag.KindCouncil:
		return ColorCouncil
	case dag.KindCommittee:
		return ColorCommittee
	case dag.KindWorkingGroup:
		return ColorWorkingGroup
	case dag.KindInterestGroup:
		return ColorInterestGroup
	default:
		return ColorUnknown
	}
}

// KindColorName is KindColor for serialized kind names.
func KindColorName(name string) string {
	k, err := dag.ParseKind(name)
	if err != nil {
		return ColorUnknown
	}
	return KindColor(k)
}
