package fit

import (
	"math"

	"github.com/backmassage/stickerpress/internal/render"
)

// Select returns count frames evenly spaced across frames, preserving order
// and always including the first and last frame when count >= 2. When count
// meets or exceeds the source length the source is returned unchanged.
//
// Spacing uses index(i) = round(i*(M-1)/(N-1)). Rounding can land two
// neighbors on the same index when count approaches the source length; such
// duplicates are dropped, so the result may be shorter than requested.
// Callers must treat the returned length, not count, as authoritative.
func Select(frames []render.Frame, count int) []render.Frame {
	if count >= len(frames) {
		return frames
	}
	if count <= 1 {
		return frames[:1:1]
	}

	span := float64(len(frames) - 1)
	step := span / float64(count-1)

	out := make([]render.Frame, 0, count)
	last := -1
	for i := 0; i < count; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx == last {
			continue
		}
		out = append(out, frames[idx])
		last = idx
	}
	return out
}
