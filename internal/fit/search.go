package fit

// Range is a closed integer interval [Low, High]. It serves both as the
// byte-size acceptance window and as the candidate domain for a search axis.
type Range struct {
	Low  int64
	High int64
}

// Contains reports whether v lies inside the interval (inclusive).
func (r Range) Contains(v int64) bool { return v >= r.Low && v <= r.High }

// Trial is the explicit outcome of one encode attempt: the buffer and its
// size travel together, so the search never relies on side channels to
// recover the bytes of the winning configuration.
type Trial struct {
	Size int64
	Data []byte
}

// EvalFunc runs one trial for a candidate axis value. ok is false when the
// encoder failed outright; the search treats that as an infinitely large
// result and keeps narrowing downward.
type EvalFunc func(value int) (t Trial, ok bool)

// Search binary-searches domain for a value whose trial size lands inside
// target. The first in-window hit is returned immediately — this is a
// satisficing search, not a minimizing one. Trials that land below the
// window are remembered as a safely-under-cap fallback while the upper half
// is explored; trials above the window are never kept. When the domain is
// exhausted the best under-cap fallback is returned, or ok=false when no
// candidate ever fit under target.High.
//
// The search assumes size responds (near-)monotonically to the axis value.
// That holds for frame count and quality against real encoders but is not
// guaranteed; a pathological encoder could hide an in-window value inside a
// discarded half. Accepted as an approximation.
func Search(target, domain Range, eval EvalFunc) (best int, t Trial, ok bool) {
	low, high := int(domain.Low), int(domain.High)
	if low > high {
		return 0, Trial{}, false
	}

	bestValue := -1
	var bestTrial Trial

	for low <= high {
		mid := (low + high) / 2
		if mid < 1 {
			mid = 1 // a zero-valued trial (0 frames, quality 0) is meaningless
		}

		trial, encOK := eval(mid)
		switch {
		case encOK && target.Contains(trial.Size):
			return mid, trial, true
		case encOK && trial.Size < target.Low:
			// Under the window: usable, but there may be room for a closer
			// candidate above.
			bestValue, bestTrial = mid, trial
			low = mid + 1
		default:
			// Over the window, or the encoder failed (treated as infinite).
			high = mid - 1
		}
	}

	if bestValue >= 0 && bestTrial.Size <= target.High {
		return bestValue, bestTrial, true
	}
	return 0, Trial{}, false
}
