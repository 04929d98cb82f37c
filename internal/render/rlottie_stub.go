//go:build !darwin && !linux

package render

import (
	"errors"

	"github.com/backmassage/stickerpress/internal/lottie"
)

var errUnsupported = errors.New("rlottie rendering is only supported on linux and darwin")

// Available reports whether librlottie can be loaded on this system.
func Available() error { return errUnsupported }

// NewRenderer is unavailable on this platform.
func NewRenderer(anim *lottie.Animation) (Renderer, error) {
	return nil, errUnsupported
}
