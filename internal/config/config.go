// Package config holds runtime configuration: defaults, optional config-file
// and environment loading, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kkyr/fig"
)

// --- Enum types for validated string fields ---

// EncoderBackend selects the animated-WebP encoding backend.
type EncoderBackend string

const (
	EncoderNative   EncoderBackend = "native"   // libwebp WebPAnimEncoder via purego (default).
	EncoderImg2webp EncoderBackend = "img2webp" // External img2webp binary through temp PNG frames.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// windowWidthKB is the fixed width of the byte-size acceptance window:
// an output is "in window" when its size falls in [cap-100KB, cap].
const windowWidthKB = 100

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args). InputPath may be a single .tgs/.json
	// file or a directory to batch-convert.
	InputPath string `fig:"-"`
	OutputDir string `fig:"-"`

	// Output geometry. -1 means "use the animation's native dimensions".
	Width  int `fig:"width" default:"-1"`
	Height int `fig:"height" default:"-1"`

	// Encoding.
	Quality   int            `fig:"quality" default:"80"`      // Starting WebP quality, 1..100.
	SizeCapKB int            `fig:"size_cap_kb" default:"490"` // Hard output size ceiling in KB.
	MaxFrames int            `fig:"max_frames" default:"30"`   // Hard frame cap before subsampling.
	Encoder   EncoderBackend `fig:"encoder" default:"native"`
	LoopCount int            `fig:"loop_count" default:"0"` // 0 = loop forever.

	// Behavior flags.
	DryRun       bool `fig:"-"`
	SkipExisting bool `fig:"skip_existing" default:"true"` // Cleared by --force.
	ShowProgress bool `fig:"progress" default:"true"`      // Frame-render progress bar on TTYs.

	// Display and logging.
	Verbose   bool      `fig:"verbose"`
	ColorMode ColorMode `fig:"color" default:"auto"`
	LogFile   string    `fig:"log_file"`

	// Modes.
	CheckOnly   bool `fig:"-"` // Run --check diagnostics and exit.
	AnalyzeOnly bool `fig:"-"` // Print the per-file animation report and exit.

	// ConfigFile is the path given via --config; recorded for logging only.
	ConfigFile string `fig:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		Width:        -1,
		Height:       -1,
		Quality:      80,
		SizeCapKB:    490,
		MaxFrames:    30,
		Encoder:      EncoderNative,
		LoopCount:    0,
		SkipExisting: true,
		ShowProgress: true,
		ColorMode:    ColorAuto,
	}
}

// envPrefix is the prefix for environment overrides, e.g. STICKERPRESS_QUALITY.
const envPrefix = "STICKERPRESS"

// LoadEnv overlays cfg with STICKERPRESS_* environment variables. Used when
// no config file was given; LoadFile applies the same overlay itself.
func LoadEnv(cfg *Config) error {
	if err := fig.Load(cfg, fig.IgnoreFile(), fig.UseEnv(envPrefix)); err != nil {
		return fmt.Errorf("environment config: %w", err)
	}
	return nil
}

// LoadFile overlays cfg with values from the YAML/TOML config file at path
// and from STICKERPRESS_* environment variables.
func LoadFile(cfg *Config, path string) error {
	err := fig.Load(cfg,
		fig.File(fileName(path)),
		fig.Dirs(fileDir(path)),
		fig.UseEnv(envPrefix),
	)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func fileName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func fileDir(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i+1]
	}
	return "."
}

// TargetBytes returns the inclusive byte-size acceptance window derived from
// SizeCapKB. The window spans the 100 KB below the cap.
func (c *Config) TargetBytes() (low, high int64) {
	high = int64(c.SizeCapKB) * 1024
	low = int64(c.SizeCapKB-windowWidthKB) * 1024
	if low < 0 {
		low = 0
	}
	return low, high
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly mode
// it also requires the input and output paths to be set.
func (c *Config) Validate() error {
	switch c.Encoder {
	case EncoderNative, EncoderImg2webp:
		// valid
	default:
		return errors.New("invalid encoder (use 'native' or 'img2webp')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be in 1..100 (got %d)", c.Quality)
	}
	if c.SizeCapKB <= windowWidthKB {
		return fmt.Errorf("size cap must exceed %d KB (got %d)", windowWidthKB, c.SizeCapKB)
	}
	if c.MaxFrames < 1 {
		return fmt.Errorf("max frames must be at least 1 (got %d)", c.MaxFrames)
	}
	if c.LoopCount < 0 {
		return fmt.Errorf("loop count must not be negative (got %d)", c.LoopCount)
	}
	if err := validateDimensions(c.Width, c.Height); err != nil {
		return err
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputPath == "" || c.OutputDir == "" {
		return errors.New("need exactly input and output_dir")
	}
	return nil
}

// validateDimensions requires width and height to be given together: either
// both -1 (native) or both positive.
func validateDimensions(w, h int) error {
	if w == -1 && h == -1 {
		return nil
	}
	if w > 0 && h > 0 {
		return nil
	}
	return fmt.Errorf("width and height must both be -1 or both be positive (got %dx%d)", w, h)
}

// NormalizeDirArg strips trailing slashes from a directory path. The
// filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}
