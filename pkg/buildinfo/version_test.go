package buildinfo

import (
	"strings"
	"testing"
)

func TestGetKeepsStampedValues(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02T03:04:05Z"
	got := Get()
	if got != (Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}) {
		t.Errorf("Get() = %+v", got)
	}
	if ua := UserAgent(); ua != "orgtower/v1.2.3" {
		t.Errorf("UserAgent() = %q", ua)
	}
	if tmpl := Template(); !strings.Contains(tmpl, "v1.2.3") || !strings.Contains(tmpl, "abc123") {
		t.Errorf("Template() = %q", tmpl)
	}
}
