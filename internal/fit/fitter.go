package fit

import (
	"context"
	"errors"

	"github.com/backmassage/stickerpress/internal/display"
	"github.com/backmassage/stickerpress/internal/render"
)

// ErrUnsatisfiable is returned when every stage — including the single-frame,
// quality-1 last resort — failed to produce any output at all.
var ErrUnsatisfiable = errors.New("could not produce a WebP under the size limit")

// Encoder is the one external capability the fitter needs. The webp package
// provides the production implementations; tests substitute scripted fakes.
type Encoder interface {
	Encode(ctx context.Context, frames []render.Frame, quality int, fps float64) ([]byte, error)
}

// Logger is the minimal logging interface the fitter reports progress on.
type Logger interface {
	Info(string, ...any)
	Warn(string, ...any)
	Debug(string, ...any)
}

// Options configures a Fitter.
type Options struct {
	Target    Range // acceptance window in bytes, inclusive
	MaxFrames int   // hard frame cap before subsampling (default 30)
	Quality   int   // starting quality (default 80)
}

// Result is the final accepted configuration and its encoded buffer.
// Exactly one Result exists per conversion.
type Result struct {
	Data       []byte
	Size       int64
	FrameCount int
	Quality    int
	FPS        float64
	Stage      Stage
	Trials     int
}

// Fitter drives the stage pipeline over a fully rendered frame cache. The
// cache is shared read-only by every trial; the fitter itself is
// single-use — construct one per conversion.
type Fitter struct {
	frames   []render.Frame
	duration float64
	enc      Encoder
	opts     Options
	log      Logger
	trials   int
}

// NewFitter builds a fitter over the full source frame cache. duration is
// the original animation length in seconds and stays constant across every
// trial; per-trial playback rates are derived from it.
func NewFitter(frames []render.Frame, duration float64, enc Encoder, opts Options, log Logger) *Fitter {
	if opts.MaxFrames < 1 {
		opts.MaxFrames = 30
	}
	if opts.Quality < 1 {
		opts.Quality = 80
	}
	return &Fitter{frames: frames, duration: duration, enc: enc, opts: opts, log: log}
}

// Run walks the stages in order and returns the first accepted result.
// Every error short of total encoder failure is absorbed along the way;
// only ErrUnsatisfiable (or context cancellation surfaced through the
// encoder) escapes.
func (f *Fitter) Run(ctx context.Context) (*Result, error) {
	f.log.Info("Aiming for %s-%s",
		display.FormatKB(f.opts.Target.Low), display.FormatKB(f.opts.Target.High))

	stage := StageFull
	for {
		if res := f.runStage(ctx, stage); res != nil {
			res.Trials = f.trials
			f.log.Debug("Accepted at stage %s after %d trials", stage, f.trials)
			return res, nil
		}
		next, ok := stage.next()
		if !ok {
			return nil, ErrUnsatisfiable
		}
		stage = next
	}
}

// runStage executes one stage and returns its accepted result, or nil when
// the stage is exhausted.
func (f *Fitter) runStage(ctx context.Context, stage Stage) *Result {
	p := f.plan(stage)

	switch p.axis {
	case axisNone:
		return f.runSingle(ctx, stage, p)
	case axisFrames:
		return f.runFrameSearch(ctx, stage, p)
	default:
		return f.runQualitySearch(ctx, stage, p)
	}
}

// runSingle performs the stage-A trial: the capped frame count at the
// default quality. Anything at or under the cap is accepted, even a size
// below the window — no point compressing further when the first attempt
// already fits.
func (f *Fitter) runSingle(ctx context.Context, stage Stage, p stagePlan) *Result {
	sel := Select(f.frames, p.frames)
	f.log.Info("Stage %s: %d frames @ q=%d", stage, len(sel), p.quality)

	trial, ok := f.encode(ctx, sel, p.quality)
	if ok && trial.Size <= f.opts.Target.High {
		f.log.Info("Size %s fits, no optimization needed", display.FormatKB(trial.Size))
		return f.result(trial, len(sel), p.quality, stage)
	}
	if ok {
		f.log.Info("Too big (%s), optimizing", display.FormatKB(trial.Size))
	}
	return nil
}

// runFrameSearch searches the frame count with quality fixed.
func (f *Fitter) runFrameSearch(ctx context.Context, stage Stage, p stagePlan) *Result {
	f.log.Info("Stage %s: searching frame count in [%d, %d] @ q=%d",
		stage, p.domain.Low, p.domain.High, p.quality)

	value, trial, ok := Search(f.opts.Target, p.domain, func(n int) (Trial, bool) {
		return f.encode(ctx, Select(f.frames, n), p.quality)
	})
	if !ok {
		return nil
	}
	// Select is deterministic, so re-deriving the subset length for the
	// winning value matches what the trial actually encoded.
	count := len(Select(f.frames, value))
	f.log.Info("Stage %s: %d frames, %s", stage, count, display.FormatKB(trial.Size))
	return f.result(trial, count, p.quality, stage)
}

// runQualitySearch searches quality with the frame count fixed. For the
// last-resort stage a failed search falls back to quality 1 and accepts
// whatever size results — duration is preserved to the end, even as one
// motionless frame.
func (f *Fitter) runQualitySearch(ctx context.Context, stage Stage, p stagePlan) *Result {
	sel := Select(f.frames, p.frames)
	f.log.Info("Stage %s: %d frames fixed, searching quality in [%d, %d]",
		stage, len(sel), p.domain.Low, p.domain.High)

	value, trial, ok := Search(f.opts.Target, p.domain, func(q int) (Trial, bool) {
		return f.encode(ctx, sel, q)
	})
	if ok {
		f.log.Info("Stage %s: q=%d, %s", stage, value, display.FormatKB(trial.Size))
		return f.result(trial, len(sel), value, stage)
	}

	if stage != StageLastResort {
		return nil
	}

	// Uncapped fallback: the most compressed configuration possible. If even
	// this cannot encode, the conversion as a whole fails.
	trial, encOK := f.encode(ctx, sel, 1)
	if !encOK {
		return nil
	}
	f.log.Warn("Extreme compression: %d frame(s) @ q=1, %s (over cap accepted)",
		len(sel), display.FormatKB(trial.Size))
	return f.result(trial, len(sel), 1, stage)
}

// encode runs one trial, absorbing encoder failures. The playback rate is
// recomputed from the subset length so the advertised duration never drifts.
func (f *Fitter) encode(ctx context.Context, frames []render.Frame, quality int) (Trial, bool) {
	f.trials++
	fps := float64(len(frames)) / f.duration

	data, err := f.enc.Encode(ctx, frames, quality, fps)
	if err != nil {
		f.log.Debug("Trial failed (%d frames, q=%d): %v", len(frames), quality, err)
		return Trial{}, false
	}
	f.log.Debug("Trial: %d frames, q=%d, fps=%.2f -> %s",
		len(frames), quality, fps, display.FormatKB(int64(len(data))))
	return Trial{Size: int64(len(data)), Data: data}, true
}

func (f *Fitter) result(t Trial, frameCount, quality int, stage Stage) *Result {
	return &Result{
		Data:       t.Data,
		Size:       t.Size,
		FrameCount: frameCount,
		Quality:    quality,
		FPS:        float64(frameCount) / f.duration,
		Stage:      stage,
	}
}
