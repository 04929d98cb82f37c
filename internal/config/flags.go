package config

// This file implements CLI flag parsing and help text on top of spf13/pflag.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults
// (or config-file values) hold unless the flag was actually set.

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// ConfigFileArg scans args for --config/-C ahead of full flag parsing, so the
// config file can be loaded before flags override it. Returns "" when absent.
func ConfigFileArg(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--config" || a == "-C":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, missing positionals).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("stickerpress", flag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() { printUsage(version) }

	var negated negatedFlags

	defineOutputFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "stickerpress v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags applied after Parse. These either invert a
// default (e.g. force -> SkipExisting=false) or trigger exit (help, version).
type negatedFlags struct {
	force       bool
	noProgress  bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineOutputFlags registers geometry and encoding flags.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Width, "width", "W", cfg.Width, "Output width in pixels (-1 = native)")
	fs.IntVarP(&cfg.Height, "height", "H", cfg.Height, "Output height in pixels (-1 = native)")
	fs.IntVarP(&cfg.Quality, "quality", "q", cfg.Quality, "Starting WebP quality (1-100)")
	fs.IntVarP(&cfg.SizeCapKB, "size-cap", "s", cfg.SizeCapKB, "Output size ceiling in KB")
	fs.IntVar(&cfg.MaxFrames, "max-frames", cfg.MaxFrames, "Frame cap before subsampling")
	fs.VarP(&encoderValue{&cfg.Encoder}, "encoder", "e", "Encoder backend: native | img2webp")
	fs.IntVar(&cfg.LoopCount, "loop", cfg.LoopCount, "Animation loop count (0 = forever)")
}

// defineBehaviorFlags registers force, dry-run, and the config file path.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVarP(&n.force, "force", "f", false, "Overwrite existing output files")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", false, "Preview only; do not convert")
	fs.StringVarP(&cfg.ConfigFile, "config", "C", "", "Config file (YAML or TOML)")
}

// defineDisplayFlags registers color, progress, verbose, and log flags.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&n.noProgress, "no-progress", false, "Disable the frame-render progress bar")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// defineUtilityFlags registers check, analyze, version, and help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run system diagnostics and exit")
	fs.BoolVarP(&cfg.AnalyzeOnly, "analyze", "a", false, "Report animation stats without converting")
	fs.BoolVarP(&n.showVersion, "version", "V", false, "Print version and exit")
	fs.BoolVarP(&n.showHelp, "help", "h", false, "Show this help and exit")
}

// applyNegatedFlags copies negated flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.force {
		cfg.SkipExisting = false
	}
	if n.noProgress {
		cfg.ShowProgress = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputPath and OutputDir from the two positional
// args when not in check mode. Analyze mode needs only the input.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if cfg.AnalyzeOnly {
		if len(args) < 1 {
			return fmt.Errorf("need an input file or directory to analyze")
		}
		cfg.InputPath = NormalizeDirArg(args[0])
		cfg.OutputDir = "." // unused in analyze mode, but keeps Validate happy
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("need exactly input and output_dir")
	}
	cfg.InputPath = NormalizeDirArg(args[0])
	cfg.OutputDir = NormalizeDirArg(args[1])
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "StickerPress v" + version + " — size-capped TGS to animated WebP converter"},
		{"", ""},
		{"  stickerpress [OPTIONS] <input> <output_dir>", ""},
		{"", ""},
		{"  <input> is a .tgs/.json sticker file, or a directory to batch-convert.", ""},
		{"", ""},
		{"Output", ""},
		{"  -W, --width <px>", "Output width (-1 = native)"},
		{"  -H, --height <px>", "Output height (-1 = native)"},
		{"  -q, --quality <1-100>", "Starting WebP quality (default: 80)"},
		{"  -s, --size-cap <KB>", "Output size ceiling (default: 490)"},
		{"  --max-frames <n>", "Frame cap before subsampling (default: 30)"},
		{"  -e, --encoder <name>", "native | img2webp (default: native)"},
		{"  --loop <n>", "Loop count, 0 = forever (default: 0)"},
		{"", ""},
		{"Behavior", ""},
		{"  -f, --force", "Overwrite existing output files"},
		{"  -d, --dry-run", "Preview only; do not convert"},
		{"  -C, --config <path>", "Config file (YAML or TOML)"},
		{"", ""},
		{"Display", ""},
		{"  --color / --no-color", "Force / disable colored logs"},
		{"  --no-progress", "Disable the frame-render progress bar"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "System diagnostics (rlottie, libwebp, img2webp)"},
		{"  -a, --analyze", "Report animation stats without converting"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// pflag.Value adapter so the EncoderBackend enum can be used with fs.Var.

type encoderValue struct{ p *EncoderBackend }

func (e *encoderValue) String() string { return string(*e.p) }
func (e *encoderValue) Type() string   { return "backend" }
func (e *encoderValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "native":
		*e.p = EncoderNative
	case "img2webp":
		*e.p = EncoderImg2webp
	default:
		return fmt.Errorf("invalid encoder %q (use 'native' or 'img2webp')", s)
	}
	return nil
}
