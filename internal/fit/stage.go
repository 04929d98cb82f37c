package fit

import "fmt"

// Stage identifies one phase of the escalation pipeline. Stages run in
// declaration order, each narrowing toward fewer frames and/or lower
// quality; the pipeline never revisits an earlier, larger configuration.
type Stage int

const (
	// StageFull tries the frame cap at the default quality — one trial, no
	// search. Most stickers fit here.
	StageFull Stage = iota
	// StageFrameHigh searches the frame count over the upper half
	// [cap/2, cap] at the default quality.
	StageFrameHigh
	// StageQualityMid fixes the frame count at the pivot (cap/2) and
	// searches quality over [default/2, default].
	StageQualityMid
	// StageFrameLow searches the frame count over [1, cap/2] at the reduced
	// quality floorQuality.
	StageFrameLow
	// StageLastResort fixes a single frame and searches quality over
	// [1, floorQuality]; if even that misses, quality 1 is taken and any
	// resulting size is accepted.
	StageLastResort
)

// floorQuality is the fixed quality for StageFrameLow and the quality
// ceiling for StageLastResort.
const floorQuality = 40

func (s Stage) String() string {
	switch s {
	case StageFull:
		return "full"
	case StageFrameHigh:
		return "frame-high"
	case StageQualityMid:
		return "quality-mid"
	case StageFrameLow:
		return "frame-low"
	case StageLastResort:
		return "last-resort"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// next returns the following stage; ok is false after the last one.
func (s Stage) next() (Stage, bool) {
	if s >= StageLastResort {
		return s, false
	}
	return s + 1, true
}

// axis is the parameter a stage varies.
type axis int

const (
	axisNone    axis = iota // single fixed trial
	axisFrames              // frame count searched, quality fixed
	axisQuality             // quality searched, frame count fixed
)

// stagePlan is the concrete search setup for one stage: which axis moves,
// over what domain, and the fixed value of the other axis.
type stagePlan struct {
	axis    axis
	domain  Range
	frames  int // fixed frame count when axis != axisFrames
	quality int // fixed quality when axis != axisQuality
}

// plan resolves a stage against the fitter's caps. capFrames is
// min(MaxFrames, total source frames), so every domain automatically scales
// down for animations shorter than the hard cap — the subsampler never
// upsamples beyond the source.
func (f *Fitter) plan(s Stage) stagePlan {
	capFrames := f.opts.MaxFrames
	if n := len(f.frames); n < capFrames {
		capFrames = n
	}
	pivot := capFrames / 2
	if pivot < 1 {
		pivot = 1
	}
	q := f.opts.Quality

	switch s {
	case StageFull:
		return stagePlan{axis: axisNone, frames: capFrames, quality: q}
	case StageFrameHigh:
		return stagePlan{axis: axisFrames, domain: Range{int64(pivot), int64(capFrames)}, quality: q}
	case StageQualityMid:
		return stagePlan{axis: axisQuality, domain: Range{int64(q / 2), int64(q)}, frames: pivot}
	case StageFrameLow:
		return stagePlan{axis: axisFrames, domain: Range{1, int64(pivot)}, quality: floorQuality}
	default: // StageLastResort
		return stagePlan{axis: axisQuality, domain: Range{1, floorQuality}, frames: 1}
	}
}
