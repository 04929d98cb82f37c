// Package webp produces animated WebP buffers from rendered frame sets.
//
// Two interchangeable backends implement [Encoder]:
//   - native: libwebp's WebPAnimEncoder API bound through purego (default).
//   - img2webp: the libwebp command-line muxer, driven through temp PNG
//     frames the way muxing tools are usually scripted.
//
// Both are invoked one trial at a time by the size-fit search; any failure
// is returned as an error for the caller to absorb, never a partial buffer.
package webp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/backmassage/stickerpress/internal/config"
	"github.com/backmassage/stickerpress/internal/render"
)

// ErrEncode is wrapped into every backend failure.
var ErrEncode = errors.New("webp encode failed")

// Encoder turns an ordered frame set into one animated WebP byte buffer.
// quality is the WebP quality knob (1..100); fps is the playback rate the
// container advertises. Implementations must be safe for sequential reuse
// across many trials.
type Encoder interface {
	Encode(ctx context.Context, frames []render.Frame, quality int, fps float64) ([]byte, error)
}

// NewEncoder returns the backend selected by cfg.
func NewEncoder(cfg *config.Config) (Encoder, error) {
	switch cfg.Encoder {
	case config.EncoderNative:
		return &nativeEncoder{loop: cfg.LoopCount}, nil
	case config.EncoderImg2webp:
		return &img2webpEncoder{loop: cfg.LoopCount, verbose: cfg.Verbose}, nil
	default:
		return nil, fmt.Errorf("unknown encoder backend %q", cfg.Encoder)
	}
}

// frameTimestamps returns the per-frame presentation times in milliseconds
// plus the total animation span. Times are derived from the playback rate so
// that count/fps always reproduces the original duration.
func frameTimestamps(count int, fps float64) (ts []int, total int) {
	ts = make([]int, count)
	for i := 0; i < count; i++ {
		ts[i] = int(math.Round(float64(i) * 1000 / fps))
	}
	total = int(math.Round(float64(count) * 1000 / fps))
	return ts, total
}

// validateFrames rejects the inputs no backend can handle.
func validateFrames(frames []render.Frame, quality int, fps float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: empty frame set", ErrEncode)
	}
	if quality < 1 || quality > 100 {
		return fmt.Errorf("%w: quality %d out of range", ErrEncode, quality)
	}
	if fps <= 0 {
		return fmt.Errorf("%w: non-positive fps %g", ErrEncode, fps)
	}
	bounds := frames[0].Image.Bounds()
	for _, f := range frames[1:] {
		if f.Image.Bounds() != bounds {
			return fmt.Errorf("%w: frame %d size differs from frame %d", ErrEncode, f.Index, frames[0].Index)
		}
	}
	return nil
}
