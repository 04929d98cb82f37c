//go:build darwin || linux

// libwebp / libwebpmux bindings via purego.
//
// The WebPAnimEncoder API lives in libwebpmux; picture and config setup in
// libwebp. Both libraries are loaded at first use. The *Internal entry
// points take the ABI version constants from the headers they were declared
// in — those are real exported symbols, unlike the inline wrappers.
//
// The struct mirrors below match the 64-bit C layout of libwebp 1.3+
// (encoder ABI 0x020f, mux ABI 0x0108). Natural Go alignment inserts the
// same padding C does for these layouts, which is load-bearing: do not
// reorder fields.

package webp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/backmassage/stickerpress/internal/render"
)

const (
	webpEncoderABIVersion = 0x020f
	webpMuxABIVersion     = 0x0108

	webpPresetDefault = 0
)

var (
	libwebpOnce sync.Once
	libwebpErr  error
)

// libwebp function pointers.
var (
	webpGetEncoderVersion   func() int32
	webpConfigInitInternal  func(cfg uintptr, preset int32, quality float32, version int32) int32
	webpValidateConfig      func(cfg uintptr) int32
	webpPictureInitInternal func(pic uintptr, version int32) int32
	webpPictureImportRGBA   func(pic uintptr, rgba uintptr, stride int32) int32
	webpPictureFree         func(pic uintptr)
	webpFree                func(ptr uintptr)
)

// libwebpmux function pointers.
var (
	animEncoderOptionsInit func(opts uintptr, version int32) int32
	animEncoderNew         func(width, height int32, opts uintptr, version int32) uintptr
	animEncoderAdd         func(enc uintptr, pic uintptr, timestampMs int32, cfg uintptr) int32
	animEncoderAssemble    func(enc uintptr, data uintptr) int32
	animEncoderGetError    func(enc uintptr) uintptr
	animEncoderDelete      func(enc uintptr)
)

// webpConfig mirrors WebPConfig: all 32-bit scalars, no pointers.
type webpConfig struct {
	lossless        int32
	quality         float32
	method          int32
	imageHint       int32
	targetSize      int32
	targetPSNR      float32
	segments        int32
	snsStrength     int32
	filterStrength  int32
	filterSharpness int32
	filterType      int32
	autofilter      int32
	alphaCompress   int32
	alphaFiltering  int32
	alphaQuality    int32
	pass            int32
	showCompressed  int32
	preprocessing   int32
	partitions      int32
	partitionLimit  int32
	emulateJPEGSize int32
	threadLevel     int32
	lowMemory       int32
	nearLossless    int32
	exact           int32
	useDeltaPalette int32
	useSharpYUV     int32
	qmin            int32
	qmax            int32
}

// webpPicture mirrors WebPPicture on 64-bit platforms. Pointer fields are
// held as uintptr; the padN fields reproduce the reserved words from the
// header so later fields land on the right offsets.
type webpPicture struct {
	useARGB    int32
	colorspace int32
	width      int32
	height     int32
	y, u, v    uintptr
	yStride    int32
	uvStride   int32
	a          uintptr
	aStride    int32
	pad1       [2]uint32
	argb       uintptr
	argbStride int32
	pad2       [3]uint32
	writer     uintptr
	customPtr  uintptr

	extraInfoType int32
	extraInfo     uintptr

	stats        uintptr
	errorCode    int32
	progressHook uintptr
	userData     uintptr
	pad3         [3]uint32
	pad4, pad5   uintptr
	pad6         [8]uint32

	// Private allocation pointers. libwebp writes these during
	// WebPPictureAlloc*/ImportRGBA and frees through them in
	// WebPPictureFree; truncating the mirror here lets the library write
	// past the Go struct.
	memoryY    uintptr
	memoryARGB uintptr
	pad7       [2]uintptr
}

// webpData mirrors WebPData: an owned byte pointer plus size_t length.
type webpData struct {
	bytes uintptr
	size  uint64
}

// animEncoderOptions mirrors WebPAnimEncoderOptions; animParams is the
// embedded WebPMuxAnimParams (bgcolor + loop count).
type animEncoderOptions struct {
	bgColor      uint32
	loopCount    int32
	minimizeSize int32
	kmin, kmax   int32
	allowMixed   int32
	verbose      int32
	padding      [4]uint32
}

// NativeAvailable loads libwebp/libwebpmux and returns the encoder version
// string (e.g. "1.3.2").
func NativeAvailable() (string, error) {
	if err := loadLibwebp(); err != nil {
		return "", err
	}
	v := webpGetEncoderVersion()
	return fmt.Sprintf("%d.%d.%d", (v>>16)&0xff, (v>>8)&0xff, v&0xff), nil
}

func loadLibwebp() error {
	libwebpOnce.Do(func() {
		libwebpErr = loadLibwebpLibs()
	})
	return libwebpErr
}

func loadLibwebpLibs() error {
	webpHandle, err := dlopenFirst(libwebpPaths())
	if err != nil {
		return fmt.Errorf("failed to load libwebp: %w", err)
	}
	muxHandle, err := dlopenFirst(libwebpmuxPaths())
	if err != nil {
		return fmt.Errorf("failed to load libwebpmux: %w", err)
	}

	purego.RegisterLibFunc(&webpGetEncoderVersion, webpHandle, "WebPGetEncoderVersion")
	purego.RegisterLibFunc(&webpConfigInitInternal, webpHandle, "WebPConfigInitInternal")
	purego.RegisterLibFunc(&webpValidateConfig, webpHandle, "WebPValidateConfig")
	purego.RegisterLibFunc(&webpPictureInitInternal, webpHandle, "WebPPictureInitInternal")
	purego.RegisterLibFunc(&webpPictureImportRGBA, webpHandle, "WebPPictureImportRGBA")
	purego.RegisterLibFunc(&webpPictureFree, webpHandle, "WebPPictureFree")
	purego.RegisterLibFunc(&webpFree, webpHandle, "WebPFree")

	purego.RegisterLibFunc(&animEncoderOptionsInit, muxHandle, "WebPAnimEncoderOptionsInitInternal")
	purego.RegisterLibFunc(&animEncoderNew, muxHandle, "WebPAnimEncoderNewInternal")
	purego.RegisterLibFunc(&animEncoderAdd, muxHandle, "WebPAnimEncoderAdd")
	purego.RegisterLibFunc(&animEncoderAssemble, muxHandle, "WebPAnimEncoderAssemble")
	purego.RegisterLibFunc(&animEncoderGetError, muxHandle, "WebPAnimEncoderGetError")
	purego.RegisterLibFunc(&animEncoderDelete, muxHandle, "WebPAnimEncoderDelete")
	return nil
}

func dlopenFirst(paths []string) (uintptr, error) {
	var lastErr error
	for _, p := range paths {
		handle, err := purego.Dlopen(p, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate paths")
	}
	return 0, lastErr
}

func libwebpPaths() []string {
	var paths []string
	if env := os.Getenv("STICKERPRESS_LIBWEBP_LIB"); env != "" {
		paths = append(paths, env)
	}
	if runtime.GOOS == "darwin" {
		return append(paths, "libwebp.7.dylib", "libwebp.dylib")
	}
	return append(paths, "libwebp.so.7", "libwebp.so")
}

func libwebpmuxPaths() []string {
	var paths []string
	if env := os.Getenv("STICKERPRESS_LIBWEBPMUX_LIB"); env != "" {
		paths = append(paths, env)
	}
	if runtime.GOOS == "darwin" {
		return append(paths, "libwebpmux.3.dylib", "libwebpmux.dylib")
	}
	return append(paths, "libwebpmux.so.3", "libwebpmux.so")
}

// nativeEncoder encodes through the in-process WebPAnimEncoder.
type nativeEncoder struct {
	loop int
}

func (e *nativeEncoder) Encode(ctx context.Context, frames []render.Frame, quality int, fps float64) ([]byte, error) {
	if err := validateFrames(frames, quality, fps); err != nil {
		return nil, err
	}
	if err := loadLibwebp(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	bounds := frames[0].Image.Bounds()
	width, height := int32(bounds.Dx()), int32(bounds.Dy())

	var opts animEncoderOptions
	if animEncoderOptionsInit(uintptr(unsafe.Pointer(&opts)), webpMuxABIVersion) == 0 {
		return nil, fmt.Errorf("%w: anim encoder options init rejected (ABI mismatch?)", ErrEncode)
	}
	opts.loopCount = int32(e.loop)

	enc := animEncoderNew(width, height, uintptr(unsafe.Pointer(&opts)), webpMuxABIVersion)
	runtime.KeepAlive(&opts)
	if enc == 0 {
		return nil, fmt.Errorf("%w: WebPAnimEncoderNew returned NULL", ErrEncode)
	}
	defer animEncoderDelete(enc)

	var cfg webpConfig
	if webpConfigInitInternal(uintptr(unsafe.Pointer(&cfg)), webpPresetDefault, float32(quality), webpEncoderABIVersion) == 0 {
		return nil, fmt.Errorf("%w: config init rejected (ABI mismatch?)", ErrEncode)
	}
	if webpValidateConfig(uintptr(unsafe.Pointer(&cfg))) == 0 {
		return nil, fmt.Errorf("%w: invalid config (quality=%d)", ErrEncode, quality)
	}

	timestamps, totalMs := frameTimestamps(len(frames), fps)

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		if err := e.addFrame(enc, &cfg, f, timestamps[i]); err != nil {
			return nil, err
		}
	}

	// A NULL frame at the end-of-animation timestamp flushes the last real
	// frame with its correct duration.
	if animEncoderAdd(enc, 0, int32(totalMs), 0) == 0 {
		return nil, e.encoderError(enc, "flush")
	}

	var data webpData
	if animEncoderAssemble(enc, uintptr(unsafe.Pointer(&data))) == 0 {
		return nil, e.encoderError(enc, "assemble")
	}
	defer webpFree(data.bytes)

	out := make([]byte, data.size)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(data.bytes)), data.size))
	runtime.KeepAlive(&data)
	return out, nil
}

// addFrame imports one NRGBA frame into a WebPPicture and hands it to the
// animation encoder. The picture is freed on every path.
func (e *nativeEncoder) addFrame(enc uintptr, cfg *webpConfig, f render.Frame, tsMs int) error {
	img := f.Image
	var pic webpPicture
	if webpPictureInitInternal(uintptr(unsafe.Pointer(&pic)), webpEncoderABIVersion) == 0 {
		return fmt.Errorf("%w: picture init rejected (ABI mismatch?)", ErrEncode)
	}
	pic.useARGB = 1
	pic.width = int32(img.Bounds().Dx())
	pic.height = int32(img.Bounds().Dy())

	if webpPictureImportRGBA(uintptr(unsafe.Pointer(&pic)),
		uintptr(unsafe.Pointer(&img.Pix[0])), int32(img.Stride)) == 0 {
		webpPictureFree(uintptr(unsafe.Pointer(&pic)))
		return fmt.Errorf("%w: import of frame %d failed", ErrEncode, f.Index)
	}
	runtime.KeepAlive(img.Pix)

	ok := animEncoderAdd(enc, uintptr(unsafe.Pointer(&pic)), int32(tsMs), uintptr(unsafe.Pointer(cfg)))
	webpPictureFree(uintptr(unsafe.Pointer(&pic)))
	if ok == 0 {
		return e.encoderError(enc, fmt.Sprintf("frame %d", f.Index))
	}
	return nil
}

// encoderError extracts libwebpmux's textual error for the failed step.
func (e *nativeEncoder) encoderError(enc uintptr, step string) error {
	msg := goString(animEncoderGetError(enc))
	if msg == "" {
		msg = "unknown encoder error"
	}
	return fmt.Errorf("%w: %s: %s", ErrEncode, step, msg)
}

// goString converts a NUL-terminated C string pointer to a Go string.
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var n int
	for n < 1024 {
		if *(*byte)(unsafe.Pointer(ptr + uintptr(n))) == 0 {
			break
		}
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n))
}
