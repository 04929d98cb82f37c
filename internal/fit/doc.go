// Package fit finds an animated-WebP encoding configuration whose byte size
// lands inside an acceptance window, using as few trial encodes as possible.
//
// The pieces:
//
//   - Select: deterministic even-spaced frame subsampling.
//   - Search: bounded integer binary search over one axis (frame count or
//     quality), satisficing on the first in-window trial.
//   - Fitter: a five-stage escalation pipeline. Each stage fixes one axis
//     and searches the other over a progressively stricter domain, from
//     "all capped frames at the default quality" down to "one frame at
//     quality 1". The first accepted trial wins; stages never back up.
//   - Commit: atomic persistence of the accepted buffer.
//
// The animation's duration is invariant throughout: only the frame count and
// quality vary, and the playback rate is recomputed from the active frame
// count, so a 10-frame subset of a 1-second sticker plays at 10 fps.
package fit
