package render

import (
	"testing"

	"github.com/matzehuels/orgtower/pkg/dag"
)

func TestKindColor(t *testing.T) {
	tests := []struct {
		kind dag.Kind
		want string
	}{
		{dag.KindCouncil, ColorCouncil},
		{dag.KindCommittee, ColorCommittee},
		{dag.KindWorkingGroup, ColorWorkingGroup},
		{dag.KindInterestGroup, ColorInterestGroup},
		{dag.KindUnknown, ColorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := KindColor(tt.kind); got != tt.want {
				t.Errorf("KindColor(%v) = %q, want %q", tt.kind, got, tt.want)
			}
			if got := KindColorName(tt.kind.String()); got != tt.want {
				t.Errorf("KindColorName(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
	if got := KindColorName("bogus"); got != ColorUnknown {
		t.Errorf("KindColorName(bogus) = %q", got)
	}
}
