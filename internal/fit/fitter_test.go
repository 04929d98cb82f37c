package fit

import (
	"context"
	"errors"
	"testing"

	"github.com/backmassage/stickerpress/internal/render"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}

// scriptEncoder produces deterministic buffers whose length is computed from
// the trial parameters. It records every call for invariant checks.
type scriptEncoder struct {
	size  func(frames, quality int) int64
	fail  bool
	calls []encodeCall
}

type encodeCall struct {
	frames  int
	quality int
	fps     float64
}

func (e *scriptEncoder) Encode(_ context.Context, frames []render.Frame, quality int, fps float64) ([]byte, error) {
	e.calls = append(e.calls, encodeCall{frames: len(frames), quality: quality, fps: fps})
	if e.fail {
		return nil, errors.New("scripted failure")
	}
	return make([]byte, e.size(len(frames), quality)), nil
}

// newTestFitter wires a 60-frame, 3-second animation through enc with a
// small test window.
func newTestFitter(enc Encoder, target Range) *Fitter {
	return NewFitter(makeFrames(60), 3.0, enc, Options{
		Target:    target,
		MaxFrames: 30,
		Quality:   80,
	}, nopLogger{})
}

func TestFitter_FullStageAccepts(t *testing.T) {
	// 30 frames at 10 bytes each: comfortably under the cap on the very
	// first trial. Under the window is fine for the opening trial.
	enc := &scriptEncoder{size: func(frames, _ int) int64 { return int64(frames) * 10 }}

	res, err := newTestFitter(enc, Range{Low: 900, High: 1000}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageFull {
		t.Errorf("Stage = %s, want %s", res.Stage, StageFull)
	}
	if res.FrameCount != 30 {
		t.Errorf("FrameCount = %d, want 30", res.FrameCount)
	}
	if res.Quality != 80 {
		t.Errorf("Quality = %d, want 80", res.Quality)
	}
	if res.FPS != 10 {
		t.Errorf("FPS = %g, want 10 (30 frames over 3s)", res.FPS)
	}
	if res.Trials != 1 {
		t.Errorf("Trials = %d, want 1", res.Trials)
	}
	if res.Size != 300 || int64(len(res.Data)) != 300 {
		t.Errorf("Size = %d (buffer %d), want 300", res.Size, len(res.Data))
	}
}

func TestFitter_FrameHighStage(t *testing.T) {
	// 40 bytes per frame: 30 frames miss at 1200, the upper-half frame
	// search lands at 26 frames (1040).
	enc := &scriptEncoder{size: func(frames, _ int) int64 { return int64(frames) * 40 }}
	target := Range{Low: 1000, High: 1100}

	res, err := newTestFitter(enc, target).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageFrameHigh {
		t.Errorf("Stage = %s, want %s", res.Stage, StageFrameHigh)
	}
	if res.FrameCount != 26 {
		t.Errorf("FrameCount = %d, want 26", res.FrameCount)
	}
	if res.Quality != 80 {
		t.Errorf("Quality = %d, want 80 (frame search keeps quality fixed)", res.Quality)
	}
	if !target.Contains(res.Size) {
		t.Errorf("Size = %d outside window [%d, %d]", res.Size, target.Low, target.High)
	}
}

func TestFitter_QualityMidStage(t *testing.T) {
	// Size depends on quality only, so no frame search can help; the quality
	// search at the pivot frame count finds q=41 (1220 bytes).
	enc := &scriptEncoder{size: func(_, quality int) int64 { return int64(quality)*20 + 400 }}
	target := Range{Low: 1100, High: 1250}

	res, err := newTestFitter(enc, target).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageQualityMid {
		t.Errorf("Stage = %s, want %s", res.Stage, StageQualityMid)
	}
	if res.FrameCount != 15 {
		t.Errorf("FrameCount = %d, want the pivot 15", res.FrameCount)
	}
	if res.Quality != 41 {
		t.Errorf("Quality = %d, want 41", res.Quality)
	}
	if !target.Contains(res.Size) {
		t.Errorf("Size = %d outside window [%d, %d]", res.Size, target.Low, target.High)
	}
}

func TestFitter_FrameLowStage(t *testing.T) {
	// 500 bytes per frame regardless of quality: only a drastic frame cut
	// fits the window. 2 frames = 1000 bytes.
	enc := &scriptEncoder{size: func(frames, _ int) int64 { return int64(frames) * 500 }}
	target := Range{Low: 1000, High: 1400}

	res, err := newTestFitter(enc, target).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageFrameLow {
		t.Errorf("Stage = %s, want %s", res.Stage, StageFrameLow)
	}
	if res.FrameCount != 2 {
		t.Errorf("FrameCount = %d, want 2", res.FrameCount)
	}
	if res.Quality != floorQuality {
		t.Errorf("Quality = %d, want %d", res.Quality, floorQuality)
	}
}

func TestFitter_LastResortInWindow(t *testing.T) {
	// 100 bytes per quality point: nothing fits until the single-frame
	// quality search reaches q=5 (500 bytes).
	enc := &scriptEncoder{size: func(_, quality int) int64 { return int64(quality) * 100 }}
	target := Range{Low: 500, High: 600}

	res, err := newTestFitter(enc, target).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageLastResort {
		t.Errorf("Stage = %s, want %s", res.Stage, StageLastResort)
	}
	if res.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", res.FrameCount)
	}
	if res.Quality != 5 {
		t.Errorf("Quality = %d, want 5", res.Quality)
	}
	if res.FPS != 1.0/3.0 {
		t.Errorf("FPS = %g, want 1/3 (one frame over the original 3s)", res.FPS)
	}
}

func TestFitter_LastResortOverCap(t *testing.T) {
	// Every configuration is over the window. The pipeline must still emit
	// the single-frame quality-1 encode rather than fail.
	enc := &scriptEncoder{size: func(_, _ int) int64 { return 10000 }}

	res, err := newTestFitter(enc, Range{Low: 500, High: 600}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageLastResort {
		t.Errorf("Stage = %s, want %s", res.Stage, StageLastResort)
	}
	if res.FrameCount != 1 || res.Quality != 1 {
		t.Errorf("got %d frames @ q=%d, want 1 frame @ q=1", res.FrameCount, res.Quality)
	}
	if res.Size != 10000 {
		t.Errorf("Size = %d, want the over-cap 10000 accepted as-is", res.Size)
	}
}

func TestFitter_TotalFailure(t *testing.T) {
	enc := &scriptEncoder{fail: true}

	_, err := newTestFitter(enc, Range{Low: 500, High: 600}).Run(context.Background())
	if !errors.Is(err, ErrUnsatisfiable) {
		t.Fatalf("err = %v, want ErrUnsatisfiable", err)
	}
}

// Every trial, whatever its frame count, must advertise the playback rate
// that preserves the original duration.
func TestFitter_DurationInvariant(t *testing.T) {
	const duration = 3.0
	enc := &scriptEncoder{size: func(frames, _ int) int64 { return int64(frames) * 500 }}

	fitter := NewFitter(makeFrames(60), duration, enc, Options{
		Target:    Range{Low: 1000, High: 1400},
		MaxFrames: 30,
		Quality:   80,
	}, nopLogger{})
	if _, err := fitter.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(enc.calls) == 0 {
		t.Fatal("encoder never called")
	}
	for i, c := range enc.calls {
		want := float64(c.frames) / duration
		if c.fps != want {
			t.Errorf("call %d: %d frames at fps=%g, want %g", i, c.frames, c.fps, want)
		}
	}
}

func TestFitter_ShortAnimation(t *testing.T) {
	// Fewer source frames than the cap: the opening trial uses them all.
	enc := &scriptEncoder{size: func(frames, _ int) int64 { return int64(frames) * 10 }}

	fitter := NewFitter(makeFrames(8), 2.0, enc, Options{
		Target:    Range{Low: 900, High: 1000},
		MaxFrames: 30,
		Quality:   80,
	}, nopLogger{})

	res, err := fitter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stage != StageFull || res.FrameCount != 8 {
		t.Errorf("got stage %s with %d frames, want %s with all 8", res.Stage, res.FrameCount, StageFull)
	}
	if res.FPS != 4 {
		t.Errorf("FPS = %g, want 4 (8 frames over 2s)", res.FPS)
	}
}

func TestStage_Progression(t *testing.T) {
	order := []Stage{StageFull, StageFrameHigh, StageQualityMid, StageFrameLow, StageLastResort}

	s := StageFull
	for i := 1; i < len(order); i++ {
		next, ok := s.next()
		if !ok {
			t.Fatalf("%s.next() exhausted early", s)
		}
		if next != order[i] {
			t.Fatalf("%s.next() = %s, want %s", s, next, order[i])
		}
		s = next
	}
	if _, ok := s.next(); ok {
		t.Errorf("%s.next() should report exhaustion", s)
	}
}
