//go:build darwin || linux

// librlottie bindings via purego.
//
// rlottie is the renderer Telegram itself uses for TGS stickers. Its C API
// (rlottie_capi.h) is primitive-only, which makes it a clean purego target:
// the animation handle is an opaque pointer and frames render into a caller
// provided ARGB32-premultiplied buffer.
//
// Library locations checked (in order):
//   - STICKERPRESS_RLOTTIE_LIB environment variable
//   - system library names (librlottie.so.0 / librlottie.so / .dylib)

package render

import (
	"errors"
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/backmassage/stickerpress/internal/lottie"
)

var (
	rlottieOnce sync.Once
	rlottieErr  error
)

// rlottie function pointers, registered by loadRlottie.
var (
	lottieAnimationFromData   func(data string, key string, resourcePath string) uintptr
	lottieAnimationTotalFrame func(anim uintptr) uint64
	lottieAnimationRender     func(anim uintptr, frame uint64, buffer uintptr, width, height, bytesPerLine uint64)
	lottieAnimationDestroy    func(anim uintptr)
)

// Available reports whether librlottie can be loaded on this system.
func Available() error { return loadRlottie() }

func loadRlottie() error {
	rlottieOnce.Do(func() {
		rlottieErr = loadRlottieLib()
	})
	return rlottieErr
}

func loadRlottieLib() error {
	var lastErr error
	for _, path := range rlottieLibPaths() {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		registerRlottieSymbols(handle)
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to load librlottie: %w", lastErr)
	}
	return errors.New("librlottie not found in any standard location")
}

func rlottieLibPaths() []string {
	var paths []string
	if env := os.Getenv("STICKERPRESS_RLOTTIE_LIB"); env != "" {
		paths = append(paths, env)
	}
	if runtime.GOOS == "darwin" {
		return append(paths, "librlottie.0.dylib", "librlottie.dylib")
	}
	return append(paths, "librlottie.so.0", "librlottie.so")
}

func registerRlottieSymbols(handle uintptr) {
	purego.RegisterLibFunc(&lottieAnimationFromData, handle, "lottie_animation_from_data")
	purego.RegisterLibFunc(&lottieAnimationTotalFrame, handle, "lottie_animation_get_totalframe")
	purego.RegisterLibFunc(&lottieAnimationRender, handle, "lottie_animation_render")
	purego.RegisterLibFunc(&lottieAnimationDestroy, handle, "lottie_animation_destroy")
}

// rlottieRenderer wraps one lottie_animation handle. Not safe for concurrent
// use; conversions are single-threaded (one trial at a time), so no locking.
type rlottieRenderer struct {
	anim  uintptr
	total int
}

// NewRenderer creates the production rlottie-backed renderer for anim.
func NewRenderer(anim *lottie.Animation) (Renderer, error) {
	if err := loadRlottie(); err != nil {
		return nil, err
	}
	// rlottie keys its internal cache by this string; the animation name is
	// unique enough per conversion and keeps repeated loads cheap.
	handle := lottieAnimationFromData(string(anim.Data), anim.Name, "")
	if handle == 0 {
		return nil, fmt.Errorf("rlottie rejected animation %q", anim.Name)
	}
	total := clampFrames(anim.TotalFrames, lottieAnimationTotalFrame(handle))
	return &rlottieRenderer{anim: handle, total: total}, nil
}

// clampFrames reconciles the header's op-ip frame count with the count
// rlottie derives from the full document. Rendering past rlottie's count
// yields blank frames, so the smaller value wins.
func clampFrames(header int, lib uint64) int {
	if lib > 0 && int(lib) < header {
		return int(lib)
	}
	return header
}

func (r *rlottieRenderer) Render(frame, width, height int) (*image.NRGBA, error) {
	if r.anim == 0 {
		return nil, errors.New("renderer is closed")
	}
	if frame < 0 || frame >= r.total {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", frame, r.total)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d", width, height)
	}

	buf := make([]uint32, width*height)
	lottieAnimationRender(r.anim, uint64(frame),
		uintptr(unsafe.Pointer(&buf[0])),
		uint64(width), uint64(height), uint64(width*4))
	runtime.KeepAlive(buf)

	return argbToNRGBA(buf, width, height), nil
}

func (r *rlottieRenderer) Close() error {
	if r.anim != 0 {
		lottieAnimationDestroy(r.anim)
		r.anim = 0
	}
	return nil
}

// argbToNRGBA converts rlottie's ARGB32-premultiplied surface into a
// non-premultiplied NRGBA image (what the WebP importer expects).
func argbToNRGBA(buf []uint32, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, px := range buf {
		a := uint32(px >> 24)
		r := uint32(px>>16) & 0xff
		g := uint32(px>>8) & 0xff
		b := px & 0xff
		if a > 0 && a < 255 {
			r = r * 255 / a
			g = g * 255 / a
			b = b * 255 / a
		}
		o := i * 4
		img.Pix[o+0] = uint8(r)
		img.Pix[o+1] = uint8(g)
		img.Pix[o+2] = uint8(b)
		img.Pix[o+3] = uint8(a)
	}
	return img
}
