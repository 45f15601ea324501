package dag

import (
	"fmt"
	"strings"
)

// Kind is the governance level of a group. Kind drives node size and
// color in every layout, so it is a closed set.
type Kind int

const (
	// KindUnknown is the zero value; nodes built by the graph builder never carry it.
	KindUnknown Kind = iota
	// KindCouncil is the top-level council and root of the hierarchy.
	KindCouncil
	// KindCommittee is a mid-level committee that governs groups.
	KindCommittee
	// KindWorkingGroup is a working group or task group.
	KindWorkingGroup
	// KindInterestGroup is a special interest group.
	KindInterestGroup
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindCouncil:       "council",
	KindCommittee:     "committee",
	KindWorkingGroup:  "working-group",
	KindInterestGroup: "interest-group",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// classifyRules is evaluated top to bottom; the first rule with a matching
// pattern decides the kind. Patterns are matched case-insensitively
// against the full display name.
var classifyRules = []struct {
	kind     Kind
	contains []string
	suffixes []string
}{
	{kind: KindCouncil, contains: []string{"(tsc)", "technical steering committee"}},
	{kind: KindCommittee, contains: []string{"(hc)", "horizontal committee", "committee"}, suffixes: []string{" hc"}},
	{kind: KindWorkingGroup, contains: []string{"(wg)", "(tg)", "working group", "task group"}, suffixes: []string{" wg", " tg"}},
	{kind: KindInterestGroup, contains: []string{"(sig)", "special interest group"}, suffixes: []string{" sig"}},
}

// Classify derives the kind of a group from its display name.
// The returned bool is false when no rule matched and the working-group
// default was used, which callers report as a data-quality fallback.
func Classify(name string) (Kind, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, r := range classifyRules {
		for _, p := range r.contains {
			if strings.Contains(s, p) {
				return r.kind, true
			}
		}
		for _, p := range r.suffixes {
			if strings.HasSuffix(s, p) {
				return r.kind, true
			}
		}
	}
	return KindWorkingGroup, false
}
