package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// rsvgConvert is the librsvg command that rasterizes SVG snapshots.
var rsvgConvert = "rsvg-convert"

// ErrNoRasterizer is returned by [ToPNG] and [ToPDF] when rsvg-convert is
// not installed.
var ErrNoRasterizer = errors.New("rsvg-convert not found: install librsvg2-bin (Linux) or librsvg (Homebrew)")

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG. A scale of 2 doubles the pixel
// size of the drawing.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, fmt.Errorf("%s export: %w", format, ErrNoRasterizer)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("rsvg-convert %s: %w: %s", format, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}
