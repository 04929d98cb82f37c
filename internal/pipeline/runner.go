// Package pipeline orchestrates sticker discovery, per-file conversion, and
// batch summary reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/stickerpress/internal/config"
	"github.com/backmassage/stickerpress/internal/display"
	"github.com/backmassage/stickerpress/internal/fit"
	"github.com/backmassage/stickerpress/internal/logging"
	"github.com/backmassage/stickerpress/internal/lottie"
	"github.com/backmassage/stickerpress/internal/naming"
	"github.com/backmassage/stickerpress/internal/render"
	"github.com/backmassage/stickerpress/internal/webp"
)

// minFileSize guards against empty or truncated sticker files; a valid TGS
// is never this small.
const minFileSize = 64

// Run is the top-level entry point. It resolves the input (file or
// directory), processes each sticker sequentially, and returns aggregate
// stats. A failed file never aborts the batch.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, root, err := resolveInputs(cfg.InputPath)
	if err != nil {
		log.Error("Input discovery failed: %v", err)
		stats.Failed++
		return stats
	}
	if len(files) == 0 {
		log.Warn("No sticker files found in %s", cfg.InputPath)
		return stats
	}

	enc, err := webp.NewEncoder(cfg)
	if err != nil {
		log.Error("%v", err)
		stats.Failed++
		return stats
	}

	stats.Total = len(files)
	resolver := naming.NewCollisionResolver()
	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		processFile(ctx, cfg, log, enc, path, root, &stats, resolver)
	}

	logSummary(log, &stats)
	return stats
}

// resolveInputs turns the input argument into a file list plus the root the
// output tree is mirrored from.
func resolveInputs(input string) ([]string, string, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, "", err
	}
	if !fi.IsDir() {
		return []string{input}, filepath.Dir(input), nil
	}
	files, err := Discover(input)
	return files, input, err
}

// processFile handles one sticker: validate, decode, name, render, fit, commit.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	enc webp.Encoder,
	path, root string,
	stats *RunStats,
	resolver *naming.CollisionResolver,
) {
	basename := filepath.Base(path)
	log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	fi, err := os.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.Failed++
		return
	}
	if fi.Size() < minFileSize {
		log.Error("File too small (possibly corrupt): %s", path)
		stats.Failed++
		return
	}

	anim, err := lottie.ParseFile(path)
	if err != nil {
		log.Error("Cannot decode sticker: %v", err)
		stats.Failed++
		return
	}

	w, h := render.TargetSize(anim, cfg.Width, cfg.Height)
	log.Info("  %d frames @ %.1f fps, %s, %dx%d -> %dx%d, %s on disk",
		anim.TotalFrames, anim.FrameRate, display.FormatSeconds(anim.Duration()),
		anim.Width, anim.Height, w, h, display.FormatBytes(fi.Size()))

	outputPath := resolver.Resolve(path, naming.OutputPath(path, root, cfg.OutputDir))

	if cfg.SkipExisting {
		if _, err := os.Stat(outputPath); err == nil {
			log.Warn("Skip (exists): %s", filepath.Base(outputPath))
			stats.Skipped++
			return
		}
	}

	log.Info("  -> %s", filepath.Base(outputPath))

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		log.Error("Cannot create output directory: %v", err)
		stats.Failed++
		return
	}

	if cfg.DryRun {
		log.Success("[DRY] Would convert")
		stats.Converted++
		return
	}

	start := time.Now()

	renderer, err := render.NewRenderer(anim)
	if err != nil {
		log.Error("Renderer unavailable: %v", err)
		stats.Failed++
		return
	}
	frames := render.BuildCache(renderer, anim, render.CacheOptions{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Progress: cfg.ShowProgress,
		Log:      log,
	})
	renderer.Close()

	low, high := cfg.TargetBytes()
	fitter := fit.NewFitter(frames, anim.Duration(), enc, fit.Options{
		Target:    fit.Range{Low: low, High: high},
		MaxFrames: cfg.MaxFrames,
		Quality:   cfg.Quality,
	}, log)

	res, err := fitter.Run(ctx)
	if err != nil {
		if errors.Is(err, fit.ErrUnsatisfiable) {
			log.Error("No stage produced output under %d KB", cfg.SizeCapKB)
		} else {
			log.Error("Conversion failed: %v", err)
		}
		stats.Failed++
		return
	}

	if err := fit.Commit(outputPath, res.Data); err != nil {
		log.Error("Cannot write output: %v", err)
		stats.Failed++
		return
	}

	stats.TotalInputBytes += fi.Size()
	stats.TotalOutputBytes += res.Size
	stats.Converted++

	log.Success("Converted in %s: %d frames @ q=%d, %.2f fps, %s (stage %s, %d trials)",
		display.FormatElapsed(time.Since(start)),
		res.FrameCount, res.Quality, res.FPS, display.FormatKB(res.Size),
		res.Stage, res.Trials)
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d sticker(s)", stats.Total)

	low, high := cfg.TargetBytes()
	log.Info("Size window: %s - %s", display.FormatKB(low), display.FormatKB(high))
	log.Info("Frames: cap %d | Quality: start %d | Encoder: %s",
		cfg.MaxFrames, cfg.Quality, cfg.Encoder)
	if cfg.Width > 0 {
		log.Info("Output size: %dx%d", cfg.Width, cfg.Height)
	} else {
		log.Info("Output size: native")
	}
	if cfg.LoopCount == 0 {
		log.Info("Loop: forever")
	} else {
		log.Info("Loop: %d", cfg.LoopCount)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN")
	}
	fmt.Println()
}

func logSummary(log *logging.Logger, stats *RunStats) {
	fmt.Println()
	log.Info("==============================")
	log.Info("Done: %d converted, %d skipped, %d failed",
		stats.Converted, stats.Skipped, stats.Failed)
	if stats.TotalInputBytes > 0 && stats.TotalOutputBytes > 0 {
		log.Info("  Input %s -> output %s",
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	}
}
