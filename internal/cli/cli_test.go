package cli

import (
	"io"
	"testing"

	"github.com/matzehuels/orgtower/pkg/config"
	"github.com/matzehuels/orgtower/pkg/layout/text"
)

func TestPipelineOptionsUseFontFace(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cfg := config.Default()

	opts := c.pipelineOptions(cfg)
	face, ok := opts.Measurer.(*text.Face)
	if !ok {
		t.Fatalf("Measurer = %T, want *text.Face", opts.Measurer)
	}
	if again := c.pipelineOptions(cfg).Measurer; again != text.Measurer(face) {
		t.Error("pipelineOptions should reuse one face")
	}
	if opts.Width != cfg.Width || opts.Mode != cfg.Mode {
		t.Errorf("opts = %+v", opts)
	}
}
