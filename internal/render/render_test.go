package render

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/backmassage/stickerpress/internal/lottie"
)

// stubRenderer renders flat frames and can be scripted to fail on chosen
// frame indices.
type stubRenderer struct {
	failOn map[int]bool
	closed bool
}

func (s *stubRenderer) Render(frame, width, height int) (*image.NRGBA, error) {
	if s.failOn[frame] {
		return nil, errors.New("scripted render failure")
	}
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

func (s *stubRenderer) Close() error {
	s.closed = true
	return nil
}

type recordLogger struct {
	warnings []string
}

func (l *recordLogger) Warn(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
func (l *recordLogger) Debug(string, ...any) {}

func testAnim() *lottie.Animation {
	return &lottie.Animation{
		Width:       512,
		Height:      512,
		FrameRate:   60,
		TotalFrames: 10,
	}
}

func TestTargetSize(t *testing.T) {
	anim := testAnim()

	if w, h := TargetSize(anim, -1, -1); w != 512 || h != 512 {
		t.Errorf("native: got %dx%d, want 512x512", w, h)
	}
	if w, h := TargetSize(anim, 256, 128); w != 256 || h != 128 {
		t.Errorf("explicit: got %dx%d, want 256x128", w, h)
	}
}

func TestBuildCache_AllFrames(t *testing.T) {
	anim := testAnim()
	frames := BuildCache(&stubRenderer{}, anim, CacheOptions{Width: -1, Height: -1})

	if len(frames) != anim.TotalFrames {
		t.Fatalf("got %d frames, want %d", len(frames), anim.TotalFrames)
	}
	for i, f := range frames {
		if f.Index != i {
			t.Errorf("frame %d: Index = %d", i, f.Index)
		}
		if want := float64(i) / anim.FrameRate; f.Timestamp != want {
			t.Errorf("frame %d: Timestamp = %g, want %g", i, f.Timestamp, want)
		}
		if f.Image == nil {
			t.Fatalf("frame %d: nil image", i)
		}
		if b := f.Image.Bounds(); b.Dx() != 512 || b.Dy() != 512 {
			t.Errorf("frame %d: bounds %v, want 512x512", i, b)
		}
	}
}

func TestBuildCache_PlaceholderSubstitution(t *testing.T) {
	anim := testAnim()
	log := &recordLogger{}
	stub := &stubRenderer{failOn: map[int]bool{3: true, 7: true}}

	frames := BuildCache(stub, anim, CacheOptions{Width: -1, Height: -1, Log: log})

	if len(frames) != anim.TotalFrames {
		t.Fatalf("got %d frames, want %d despite failures", len(frames), anim.TotalFrames)
	}
	if len(log.warnings) != 2 {
		t.Errorf("got %d warnings, want 2", len(log.warnings))
	}
	for _, i := range []int{3, 7} {
		if frames[i].Image == nil {
			t.Errorf("failed frame %d was not substituted", i)
		}
		if b := frames[i].Image.Bounds(); b.Dx() != 512 || b.Dy() != 512 {
			t.Errorf("placeholder %d: bounds %v, want 512x512", i, b)
		}
	}
}

func TestPlaceholder_Deterministic(t *testing.T) {
	a := Placeholder(128, 128, 3, 10)
	b := Placeholder(128, 128, 3, 10)

	if len(a.Pix) != len(b.Pix) {
		t.Fatal("pixel buffers differ in length")
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixels differ at %d", i)
		}
	}
}

func TestPlaceholder_DrawsSomething(t *testing.T) {
	img := Placeholder(256, 256, 0, 10)

	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("bounds %v, want 256x256", b)
	}
	nonZero := 0
	for _, p := range img.Pix {
		if p != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("placeholder image is entirely blank")
	}
}

// The dot sweeps across the animation, so different frame indices must
// produce different images.
func TestPlaceholder_SweepsWithProgress(t *testing.T) {
	first := Placeholder(256, 256, 0, 10)
	last := Placeholder(256, 256, 9, 10)

	same := true
	for i := range first.Pix {
		if first.Pix[i] != last.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("first and last placeholder frames are identical")
	}
}

func TestPlaceholder_SingleFrame(t *testing.T) {
	// total == 1 must not divide by zero.
	img := Placeholder(64, 64, 0, 1)
	if img == nil {
		t.Fatal("nil image")
	}
}
