package config

import (
	"errors"
	"flag"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/user-none/avout/pacer"
	"github.com/user-none/avout/testsrc"
)

var envVars = []string{
	"AVOUT_SCREEN_WIDTH", "AVOUT_SCREEN_HEIGHT", "AVOUT_DIAGONAL",
	"AVOUT_SCALE_MODIFIER", "AVOUT_EXTERNAL", "AVOUT_DEVICE_RATE",
	"AVOUT_INPUT_RATE", "AVOUT_BUFFER_FRAMES", "AVOUT_VOLUME",
	"AVOUT_SOURCE_WIDTH", "AVOUT_SOURCE_HEIGHT", "AVOUT_REGION",
	"AVOUT_VSYNC", "AVOUT_FRAME_SKIP", "AVOUT_OVERLAY",
	"AVOUT_ASSET_DIR", "AVOUT_LOG_LEVEL",
}

func clearEnv() {
	for _, k := range envVars {
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv()
	cfg := Load()

	if cfg.ScreenWidth != 640 || cfg.ScreenHeight != 480 {
		t.Errorf("screen = %dx%d, want 640x480", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.Diagonal != 2.8 {
		t.Errorf("Diagonal = %v, want 2.8", cfg.Diagonal)
	}
	if cfg.DeviceSampleRate != 48000 {
		t.Errorf("DeviceSampleRate = %d, want 48000", cfg.DeviceSampleRate)
	}
	if cfg.InputSampleRate != 44100 {
		t.Errorf("InputSampleRate = %d, want 44100", cfg.InputSampleRate)
	}
	if cfg.BufferFrames != 5 {
		t.Errorf("BufferFrames = %d, want 5", cfg.BufferFrames)
	}
	if cfg.VSync != "lenient" {
		t.Errorf("VSync = %q, want lenient", cfg.VSync)
	}
	if !cfg.FrameSkip || !cfg.Overlay {
		t.Errorf("FrameSkip %v Overlay %v, want both true", cfg.FrameSkip, cfg.Overlay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv()
	t.Setenv("AVOUT_SCREEN_WIDTH", "1024")
	t.Setenv("AVOUT_SCREEN_HEIGHT", "768")
	t.Setenv("AVOUT_DIAGONAL", "3.5")
	t.Setenv("AVOUT_EXTERNAL", "true")
	t.Setenv("AVOUT_INPUT_RATE", "32000")
	t.Setenv("AVOUT_REGION", "pal")
	t.Setenv("AVOUT_VSYNC", "strict")
	t.Setenv("AVOUT_FRAME_SKIP", "0")
	t.Setenv("AVOUT_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.ScreenWidth != 1024 || cfg.ScreenHeight != 768 || cfg.Diagonal != 3.5 {
		t.Errorf("screen = %dx%d @ %v", cfg.ScreenWidth, cfg.ScreenHeight, cfg.Diagonal)
	}
	if !cfg.External {
		t.Error("External = false, want true")
	}
	if cfg.InputSampleRate != 32000 {
		t.Errorf("InputSampleRate = %d, want 32000", cfg.InputSampleRate)
	}
	if cfg.FrameSkip {
		t.Error("FrameSkip = true, want false")
	}

	if r, err := cfg.SourceRegion(); err != nil || r != testsrc.RegionPAL {
		t.Errorf("SourceRegion = %v, %v", r, err)
	}
	if m, err := cfg.PacerMode(); err != nil || m != pacer.ModeStrict {
		t.Errorf("PacerMode = %v, %v", m, err)
	}
	if l, err := cfg.Level(); err != nil || l != zerolog.DebugLevel {
		t.Errorf("Level = %v, %v", l, err)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	clearEnv()
	t.Setenv("AVOUT_SCREEN_WIDTH", "wide")
	t.Setenv("AVOUT_DIAGONAL", "big")
	t.Setenv("AVOUT_FRAME_SKIP", "maybe")

	cfg := Load()
	if cfg.ScreenWidth != 640 || cfg.Diagonal != 2.8 || !cfg.FrameSkip {
		t.Errorf("malformed values not ignored: %+v", cfg)
	}
}

func TestBindFlagsOverrideEnv(t *testing.T) {
	clearEnv()
	t.Setenv("AVOUT_SCREEN_WIDTH", "800")
	t.Setenv("AVOUT_VSYNC", "off")

	cfg := Load()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)
	if err := fs.Parse([]string{"-height", "600", "-vsync", "strict", "-hdmi"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.ScreenWidth != 800 {
		t.Errorf("ScreenWidth = %d, want env value 800", cfg.ScreenWidth)
	}
	if cfg.ScreenHeight != 600 {
		t.Errorf("ScreenHeight = %d, want flag value 600", cfg.ScreenHeight)
	}
	if cfg.VSync != "strict" {
		t.Errorf("VSync = %q, want flag value strict", cfg.VSync)
	}
	if !cfg.External {
		t.Error("External not set by -hdmi")
	}
}

func TestGeometry(t *testing.T) {
	cfg := Config{ScreenWidth: 640, ScreenHeight: 480, Diagonal: 2.8, ScaleModifier: 1.2}
	g := cfg.Geometry()
	if g.Width != 640 || g.Height != 480 || g.Diagonal != 2.8 || g.ScaleModifier != 1.2 {
		t.Errorf("panel geometry = %+v", g)
	}

	cfg.External = true
	g = cfg.Geometry()
	if g.Width != HDMIWidth || g.Height != HDMIHeight || g.Diagonal != HDMIDiagonal {
		t.Errorf("external geometry = %+v", g)
	}
}

func TestValidate(t *testing.T) {
	clearEnv()
	base := Load()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.ScreenWidth = 0 }},
		{"negative diagonal", func(c *Config) { c.Diagonal = -1 }},
		{"negative modifier", func(c *Config) { c.ScaleModifier = -0.5 }},
		{"zero device rate", func(c *Config) { c.DeviceSampleRate = 0 }},
		{"zero input rate", func(c *Config) { c.InputSampleRate = 0 }},
		{"zero buffer frames", func(c *Config) { c.BufferFrames = 0 }},
		{"loud volume", func(c *Config) { c.Volume = 1.5 }},
		{"empty source", func(c *Config) { c.SourceHeight = 0 }},
		{"bad region", func(c *Config) { c.Region = "secam" }},
		{"bad vsync", func(c *Config) { c.VSync = "sometimes" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateExternalIgnoresPanel(t *testing.T) {
	clearEnv()
	cfg := Load()
	cfg.ScreenWidth = 0
	cfg.Diagonal = 0
	cfg.External = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for external profile", err)
	}
}

func TestValidateReportsAll(t *testing.T) {
	clearEnv()
	cfg := Load()
	cfg.DeviceSampleRate = 0
	cfg.VSync = "bogus"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("Validate() = %v, want two joined errors", err)
	}
}
