package render

import (
	"context"
	"errors"
	"testing"
)

func TestConvertWithoutRasterizer(t *testing.T) {
	old := rsvgConvert
	rsvgConvert = "orgtower-missing-rsvg-convert"
	t.Cleanup(func() { rsvgConvert = old })

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	if _, err := ToPNG(context.Background(), svg, 2); !errors.Is(err, ErrNoRasterizer) {
		t.Errorf("ToPNG() error = %v, want ErrNoRasterizer", err)
	}
	if _, err := ToPDF(context.Background(), svg); !errors.Is(err, ErrNoRasterizer) {
		t.Errorf("ToPDF() error = %v, want ErrNoRasterizer", err)
	}
}
