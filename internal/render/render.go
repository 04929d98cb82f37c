// Package render rasterizes Lottie animations into in-memory frames.
//
// The production [Renderer] binds librlottie's C API through purego; no cgo.
// The full frame cache is rendered once per conversion and shared read-only
// by every encode trial afterwards — memory traded for never rasterizing a
// frame twice. A frame that fails to render is replaced by a deterministic
// placeholder so a single bad frame cannot abort the whole conversion.
package render

import (
	"image"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/stickerpress/internal/lottie"
	"github.com/backmassage/stickerpress/internal/term"
)

// Frame is one rasterized animation frame, tied to its (index, timestamp)
// pair in the original animation.
type Frame struct {
	Index     int
	Timestamp float64 // seconds from animation start
	Image     *image.NRGBA
}

// Renderer rasterizes single frames at a requested size.
type Renderer interface {
	// Render draws frame (0-based) into a new width x height image.
	Render(frame, width, height int) (*image.NRGBA, error)
	// Close releases the underlying animation handle.
	Close() error
}

// Logger is the minimal logging interface BuildCache needs. Defined here
// (rather than importing the logging package) so render stays testable with
// a mock logger.
type Logger interface {
	Warn(string, ...any)
	Debug(string, ...any)
}

// CacheOptions configures BuildCache.
type CacheOptions struct {
	Width    int // -1 = native
	Height   int // -1 = native
	Progress bool
	Log      Logger
}

// TargetSize resolves the output dimensions: explicit values win, -1 falls
// back to the animation's native size.
func TargetSize(anim *lottie.Animation, width, height int) (int, int) {
	if width > 0 && height > 0 {
		return width, height
	}
	return anim.Width, anim.Height
}

// BuildCache renders every original frame of anim once, in order. Render
// failures are logged and replaced with [Placeholder] frames; the returned
// slice always has anim.TotalFrames entries.
func BuildCache(r Renderer, anim *lottie.Animation, opts CacheOptions) []Frame {
	w, h := TargetSize(anim, opts.Width, opts.Height)
	total := anim.TotalFrames

	var bar *progressbar.ProgressBar
	if opts.Progress && term.IsTerminal(os.Stderr) {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	frames := make([]Frame, 0, total)
	for i := 0; i < total; i++ {
		img, err := r.Render(i, w, h)
		if err != nil {
			if opts.Log != nil {
				opts.Log.Warn("Frame %d render failed, using placeholder: %v", i, err)
			}
			img = Placeholder(w, h, i, total)
		}
		frames = append(frames, Frame{
			Index:     i,
			Timestamp: float64(i) / anim.FrameRate,
			Image:     img,
		})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return frames
}
