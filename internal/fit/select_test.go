package fit

import (
	"testing"

	"github.com/backmassage/stickerpress/internal/render"
)

// makeFrames builds a cache of n frames whose Index fields equal their
// position, so tests can check which source frames a subset kept.
func makeFrames(n int) []render.Frame {
	frames := make([]render.Frame, n)
	for i := range frames {
		frames[i] = render.Frame{Index: i, Timestamp: float64(i)}
	}
	return frames
}

func indices(frames []render.Frame) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.Index
	}
	return out
}

func TestSelect_CountMeetsSource(t *testing.T) {
	frames := makeFrames(10)

	for _, count := range []int{10, 11, 100} {
		got := Select(frames, count)
		if len(got) != 10 {
			t.Errorf("Select(10 frames, %d) returned %d frames, want all 10", count, len(got))
		}
	}
}

func TestSelect_SingleFrame(t *testing.T) {
	frames := makeFrames(10)

	for _, count := range []int{1, 0, -3} {
		got := Select(frames, count)
		if len(got) != 1 || got[0].Index != 0 {
			t.Errorf("Select(10 frames, %d) = indices %v, want [0]", count, indices(got))
		}
	}
}

func TestSelect_EvenSpacing(t *testing.T) {
	tests := []struct {
		name   string
		source int
		count  int
		want   []int
	}{
		{"5 of 3", 5, 3, []int{0, 2, 4}},
		{"9 of 5", 9, 5, []int{0, 2, 4, 6, 8}},
		{"2 of larger source", 100, 2, []int{0, 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indices(Select(makeFrames(tt.source), tt.count))
			if len(got) != len(tt.want) {
				t.Fatalf("got indices %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got indices %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSelect_EndpointsAndOrder(t *testing.T) {
	frames := makeFrames(180)

	for count := 2; count < len(frames); count += 7 {
		got := Select(frames, count)
		if len(got) == 0 {
			t.Fatalf("count=%d: empty result", count)
		}
		if got[0].Index != 0 {
			t.Errorf("count=%d: first index = %d, want 0", count, got[0].Index)
		}
		if last := got[len(got)-1].Index; last != 179 {
			t.Errorf("count=%d: last index = %d, want 179", count, last)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Index <= got[i-1].Index {
				t.Fatalf("count=%d: indices not strictly ascending at %d: %v",
					count, i, indices(got))
			}
		}
		if len(got) > count {
			t.Errorf("count=%d: returned %d frames, more than requested", count, len(got))
		}
	}
}

// Selecting the same count twice from the same source must pick the same
// frames; the binary search relies on trials being reproducible.
func TestSelect_Deterministic(t *testing.T) {
	frames := makeFrames(60)

	a := indices(Select(frames, 17))
	b := indices(Select(frames, 17))
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("indices differ at %d: %v vs %v", i, a, b)
		}
	}
}
