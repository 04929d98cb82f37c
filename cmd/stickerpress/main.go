// Command stickerpress is the CLI entrypoint for the StickerPress sticker
// converter.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check), the per-file analyzer (--analyze), or the
// convert pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/backmassage/stickerpress/internal/check"
	"github.com/backmassage/stickerpress/internal/config"
	"github.com/backmassage/stickerpress/internal/display"
	"github.com/backmassage/stickerpress/internal/logging"
	"github.com/backmassage/stickerpress/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()

	// The config file has to be located before the full flag parse so the
	// remaining flags can override file values. STICKERPRESS_* environment
	// variables overlay either way.
	if path := config.ConfigFileArg(os.Args[1:]); path != "" {
		if err := config.LoadFile(&cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "stickerpress: %v\n", err)
			return 1
		}
	} else if err := config.LoadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "stickerpress: %v\n", err)
		return 1
	}

	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "stickerpress: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "stickerpress: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stickerpress: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(log)
		return 0
	}

	if cfg.AnalyzeOnly {
		if failed := pipeline.Analyze(&cfg, log); failed > 0 {
			return 1
		}
		return 0
	}

	// Resolve and validate paths: input must exist, output is created if
	// needed, and a directory input must not contain the output (prevents
	// recursive processing).
	inputAbs, err := absPath(cfg.InputPath)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputPath)
		return 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if fi, err := os.Stat(inputAbs); err == nil && fi.IsDir() {
		if rel, err := filepath.Rel(inputAbs, outputAbs); err == nil && !isOutsideRel(rel) {
			log.Error("Output directory must not be inside the input directory")
			log.Error("Choose an output path outside: %s", cfg.InputPath)
			return 1
		}
	}

	log.Info("=== StickerPress v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputPath)
	log.Info("Out: %s", cfg.OutputDir)
	log.Info("")

	// Fail fast if rlottie or the chosen encoder backend are unavailable.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		log.Error("Run with --check for detailed diagnostics")
		return 1
	}

	// Phase 3: Signal handling — cancel context on SIGINT/SIGTERM. The
	// in-flight file's remaining trials abort and that file is reported
	// failed; commits are atomic, so no partial output is left behind.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, stopping…")
		cancel()
	}()

	// Phase 4: Run pipeline (discover → decode → render → fit → commit).
	stats := pipeline.Run(ctx, &cfg, log)

	if !stats.OK() {
		return 1
	}
	return 0
}

// isOutsideRel reports whether rel (a filepath.Rel result from input to
// output) points outside the input tree.
func isOutsideRel(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
