package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// Placeholder frame appearance: a translucent blue dot that sweeps left to
// right across the animation, pulsing between radius 30 and 50. Chosen to be
// obviously synthetic without being jarring inside an otherwise valid sticker.
var placeholderColor = color.NRGBA{R: 51, G: 153, B: 255, A: 200}

// Placeholder returns the deterministic substitute for a frame that failed
// to render. The same (width, height, frame, total) always yields the same
// pixels, which keeps full conversions reproducible even with render errors.
func Placeholder(width, height, frame, total int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	denom := total - 1
	if denom < 1 {
		denom = 1
	}
	progress := float64(frame) / float64(denom)

	cx := float64(width) * (0.2 + 0.6*progress)
	cy := float64(height) * 0.5
	radius := 30 + 20*math.Abs(0.5-progress)*2

	fillCircle(img, cx, cy, radius, placeholderColor)
	return img
}

// kappa is the cubic Bézier control-point distance that approximates a
// quarter circle.
const kappa = 0.5522847498

// fillCircle rasterizes an anti-aliased filled circle with x/image/vector.
func fillCircle(dst *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	z := vector.NewRasterizer(dst.Bounds().Dx(), dst.Bounds().Dy())

	x, y, k := float32(cx), float32(cy), float32(r*kappa)
	rads := float32(r)

	z.MoveTo(x+rads, y)
	z.CubeTo(x+rads, y+k, x+k, y+rads, x, y+rads)
	z.CubeTo(x-k, y+rads, x-rads, y+k, x-rads, y)
	z.CubeTo(x-rads, y-k, x-k, y-rads, x, y-rads)
	z.CubeTo(x+k, y-rads, x+rads, y-k, x+rads, y)
	z.ClosePath()

	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}
