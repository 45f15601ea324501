package text

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	faceRefSize   = 64.0
	faceCacheSize = 4096
)

// Face measures text with the embedded Go Regular font. Advances are taken
// at a fixed reference size and scaled linearly, and cached per string.
// A Face is safe for concurrent use.
type Face struct {
	mu    sync.Mutex
	face  font.Face
	cache *lru.Cache[string, float64]
}

// NewFace loads the embedded font.
func NewFace() (*Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    faceRefSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	cache, err := lru.New[string, float64](faceCacheSize)
	if err != nil {
		return nil, err
	}
	return &Face{face: face, cache: cache}, nil
}

// Width implements Measurer.
func (f *Face) Width(s string, size float64) float64 {
	ref, ok := f.cache.Get(s)
	if !ok {
		f.mu.Lock()
		adv := font.MeasureString(f.face, s)
		f.mu.Unlock()
		ref = float64(adv) / 64
		f.cache.Add(s, ref)
	}
	return ref * size / faceRefSize
}

// Close releases the font face.
func (f *Face) Close() error {
	f.cache.Purge()
	return f.face.Close()
}
