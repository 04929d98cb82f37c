// Package lottie decodes TGS sticker files into animation metadata.
//
// A TGS file is a gzip-compressed Lottie JSON document; a plain .json Lottie
// file is accepted as well (the gzip magic is sniffed). Only the header
// fields needed for conversion are decoded — frame rate, in/out points, and
// native dimensions. The raw JSON is retained because the rasterizer parses
// the full document itself.
package lottie

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrDecode is wrapped into every error returned for malformed input.
var ErrDecode = errors.New("not a valid TGS/Lottie animation")

// maxDecompressed caps gunzip output. Telegram rejects stickers whose
// decompressed JSON exceeds a few hundred KB; 32 MiB is far beyond any
// legitimate animation and stops decompression bombs.
const maxDecompressed = 32 << 20

// Animation holds the decoded metadata of one sticker animation. It is
// immutable after Parse; Data is the decompressed Lottie JSON handed to the
// rasterizer.
type Animation struct {
	Data        []byte
	Name        string
	Width       int
	Height      int
	FrameRate   float64
	TotalFrames int
}

// Duration returns the animation length in seconds. It is derived from the
// original frame count and rate and must stay invariant across re-encodes:
// any frame subset is played back at an adjusted rate, never a new duration.
func (a *Animation) Duration() float64 {
	return float64(a.TotalFrames) / a.FrameRate
}

// ParseFile reads and decodes the sticker at path.
func ParseFile(path string) (*Animation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	anim, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if anim.Name == "" {
		anim.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return anim, nil
}

// header mirrors the Lottie top-level fields we need. ip/op are frame
// numbers (floats in the wild), fr is frames per second.
type header struct {
	FrameRate float64 `json:"fr"`
	InPoint   float64 `json:"ip"`
	OutPoint  float64 `json:"op"`
	Width     int     `json:"w"`
	Height    int     `json:"h"`
	Name      string  `json:"nm"`
}

// Parse decodes a TGS (gzipped) or plain Lottie JSON byte slice.
func Parse(raw []byte) (*Animation, error) {
	data, err := maybeGunzip(raw)
	if err != nil {
		return nil, err
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if h.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: non-positive frame rate %g", ErrDecode, h.FrameRate)
	}
	total := int(h.OutPoint - h.InPoint)
	if total <= 0 {
		return nil, fmt.Errorf("%w: empty frame range [%g, %g)", ErrDecode, h.InPoint, h.OutPoint)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, h.Width, h.Height)
	}

	return &Animation{
		Data:        data,
		Name:        h.Name,
		Width:       h.Width,
		Height:      h.Height,
		FrameRate:   h.FrameRate,
		TotalFrames: total,
	}, nil
}

// maybeGunzip decompresses raw when it carries the gzip magic, otherwise
// returns it unchanged.
func maybeGunzip(raw []byte) ([]byte, error) {
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxDecompressed+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) > maxDecompressed {
		return nil, fmt.Errorf("%w: decompressed payload exceeds %d bytes", ErrDecode, maxDecompressed)
	}
	return data, nil
}
