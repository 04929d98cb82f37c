package config

import (
	"strings"
	"testing"
)

// validCfg returns a config that passes Validate as a baseline for the
// negative cases.
func validCfg() Config {
	cfg := DefaultConfig()
	cfg.InputPath = "stickers"
	cfg.OutputDir = "out"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validCfg()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad encoder", func(c *Config) { c.Encoder = "gifsicle" }, "invalid encoder"},
		{"bad color mode", func(c *Config) { c.ColorMode = "rainbow" }, "invalid color mode"},
		{"quality zero", func(c *Config) { c.Quality = 0 }, "quality"},
		{"quality over 100", func(c *Config) { c.Quality = 101 }, "quality"},
		{"cap below window width", func(c *Config) { c.SizeCapKB = 100 }, "size cap"},
		{"zero max frames", func(c *Config) { c.MaxFrames = 0 }, "max frames"},
		{"negative loop", func(c *Config) { c.LoopCount = -1 }, "loop count"},
		{"width without height", func(c *Config) { c.Width = 512 }, "width and height"},
		{"height without width", func(c *Config) { c.Height = 512 }, "width and height"},
		{"zero width", func(c *Config) { c.Width = 0; c.Height = 512 }, "width and height"},
		{"missing paths", func(c *Config) { c.InputPath = "" }, "input and output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCfg()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CheckOnlySkipsPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckOnly = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("--check should not require paths: %v", err)
	}
}

func TestValidate_ExplicitDimensions(t *testing.T) {
	cfg := validCfg()
	cfg.Width, cfg.Height = 256, 256
	if err := cfg.Validate(); err != nil {
		t.Errorf("explicit dimensions rejected: %v", err)
	}
}

func TestTargetBytes(t *testing.T) {
	tests := []struct {
		name     string
		capKB    int
		wantLow  int64
		wantHigh int64
	}{
		{"default 490", 490, 399360, 501760},
		{"custom 256", 256, 159744, 262144},
		{"just above window", 101, 1024, 103424},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SizeCapKB = tt.capKB
			low, high := cfg.TargetBytes()
			if low != tt.wantLow || high != tt.wantHigh {
				t.Errorf("TargetBytes() = (%d, %d), want (%d, %d)",
					low, high, tt.wantLow, tt.wantHigh)
			}
			if high-low != windowWidthKB*1024 {
				t.Errorf("window width = %d bytes, want %d KB", high-low, windowWidthKB)
			}
		})
	}
}

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"out/", "out"},
		{"out///", "out"},
		{"out", "out"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := NormalizeDirArg(tt.in); got != tt.want {
			t.Errorf("NormalizeDirArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("STICKERPRESS_QUALITY", "55")
	t.Setenv("STICKERPRESS_ENCODER", "img2webp")

	cfg := DefaultConfig()
	if err := LoadEnv(&cfg); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.Quality != 55 {
		t.Errorf("Quality = %d, want the env override 55", cfg.Quality)
	}
	if cfg.Encoder != EncoderImg2webp {
		t.Errorf("Encoder = %q, want img2webp from env", cfg.Encoder)
	}
	// Untouched settings keep their defaults.
	if cfg.SizeCapKB != 490 {
		t.Errorf("SizeCapKB = %d, want the default 490", cfg.SizeCapKB)
	}
}

func TestLoadEnv_NoVariables(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadEnv(&cfg); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Error("LoadEnv without variables changed the config")
	}
}

func TestConfigFileArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"long flag", []string{"--config", "press.yaml", "in", "out"}, "press.yaml"},
		{"long flag equals", []string{"--config=press.yaml"}, "press.yaml"},
		{"short flag", []string{"-C", "press.yaml"}, "press.yaml"},
		{"absent", []string{"in", "out"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfigFileArg(tt.args); got != tt.want {
				t.Errorf("ConfigFileArg(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
