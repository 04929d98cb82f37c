//go:build !darwin && !linux

package webp

import (
	"context"
	"errors"

	"github.com/backmassage/stickerpress/internal/render"
)

var errNativeUnsupported = errors.New("the native libwebp backend is only supported on linux and darwin; use --encoder img2webp")

// NativeAvailable reports the native backend as unsupported on this platform.
func NativeAvailable() (string, error) { return "", errNativeUnsupported }

type nativeEncoder struct {
	loop int
}

func (e *nativeEncoder) Encode(ctx context.Context, frames []render.Frame, quality int, fps float64) ([]byte, error) {
	return nil, errNativeUnsupported
}
