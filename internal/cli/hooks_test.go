package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/observability"
)

func TestInstallHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	installHooks(newLogger(&buf, log.DebugLevel))

	ctx := context.Background()
	observability.Pipeline().OnLayoutComplete(ctx, "tree", 5*time.Millisecond, nil)
	observability.Cache().OnCacheHit(ctx, "layout")
	observability.HTTP().OnResponse(ctx, "POST", "example.atlassian.net", "/rest/api/3/search/jql", 200, time.Second)

	out := buf.String()
	for _, want := range []string{"layout done", "mode=tree", "cache hit", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHooksQuietAtInfo(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	installHooks(newLogger(&buf, log.InfoLevel))
	observability.Cache().OnCacheMiss(context.Background(), "graph")
	if buf.Len() != 0 {
		t.Errorf("hooks logged at info level: %q", buf.String())
	}
}
