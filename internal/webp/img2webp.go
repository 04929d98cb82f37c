package webp

// The img2webp backend shells out to the libwebp command-line muxer. Each
// trial writes its frames as PNGs into a fresh temp directory, builds one
// img2webp invocation with per-frame delays, and reads the result back.
// The temp directory is removed on every exit path.

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/stickerpress/internal/render"
)

const img2webpBinary = "img2webp"

// Img2webpAvailable reports whether the img2webp binary is on PATH.
func Img2webpAvailable() (string, error) {
	path, err := exec.LookPath(img2webpBinary)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH", img2webpBinary)
	}
	return path, nil
}

type img2webpEncoder struct {
	loop    int
	verbose bool
}

func (e *img2webpEncoder) Encode(ctx context.Context, frames []render.Frame, quality int, fps float64) ([]byte, error) {
	if err := validateFrames(frames, quality, fps); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "stickerpress-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer os.RemoveAll(dir)

	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = fmt.Sprintf("frame_%04d.png", i)
		if err := writePNG(filepath.Join(dir, names[i]), f); err != nil {
			return nil, err
		}
	}

	outName := "out.webp"
	args := buildArgs(names, outName, quality, fps, e.loop)

	cmd := exec.CommandContext(ctx, img2webpBinary, args...)
	cmd.Dir = dir

	var stderrBuf bytes.Buffer
	if e.verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: img2webp: %v%s", ErrEncode, err, stderrTail(stderrBuf.String()))
	}

	data, err := os.ReadFile(filepath.Join(dir, outName))
	if err != nil {
		return nil, fmt.Errorf("%w: reading img2webp output: %v", ErrEncode, err)
	}
	return data, nil
}

// buildArgs assembles the img2webp argument list. Per-frame options precede
// each input file; the -d delays are derived from the rounded millisecond
// timestamps so the total span stays count/fps regardless of rounding.
func buildArgs(names []string, out string, quality int, fps float64, loop int) []string {
	timestamps, totalMs := frameTimestamps(len(names), fps)

	args := []string{"-loop", strconv.Itoa(loop)}
	q := strconv.Itoa(quality)
	for i, name := range names {
		end := totalMs
		if i+1 < len(timestamps) {
			end = timestamps[i+1]
		}
		delay := end - timestamps[i]
		if delay < 1 {
			delay = 1 // img2webp rejects zero-length frames
		}
		args = append(args, "-d", strconv.Itoa(delay), "-lossy", "-q", q, name)
	}
	return append(args, "-o", out)
}

func writePNG(path string, f render.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := png.Encode(file, f.Image); err != nil {
		file.Close()
		return fmt.Errorf("%w: encoding frame %d: %v", ErrEncode, f.Index, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

// stderrTail returns the last few stderr lines, indented, for error messages.
func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return "\n  " + strings.Join(lines, "\n  ")
}
