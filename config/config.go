// Package config loads runtime settings from AVOUT_* environment
// variables, overridable by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/user-none/avout/audio"
	"github.com/user-none/avout/layout"
	"github.com/user-none/avout/pacer"
	"github.com/user-none/avout/testsrc"
)

// External display profile: a 720p TV viewed from across the room.
const (
	HDMIWidth    = 1280
	HDMIHeight   = 720
	HDMIDiagonal = 23.0
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Config holds all runtime configuration.
type Config struct {
	// Screen
	ScreenWidth   int     // physical pixels
	ScreenHeight  int     // physical pixels
	Diagonal      float64 // inches
	ScaleModifier float64
	External      bool // use the HDMI profile instead of the panel

	// Audio
	DeviceSampleRate int
	InputSampleRate  int
	BufferFrames     int // video frames of audio headroom
	Volume           float64

	// Source
	SourceWidth  int
	SourceHeight int
	Region       string // ntsc or pal

	// Presentation
	VSync     string // off, lenient or strict
	FrameSkip bool   // skip presenting when audio is starving
	Overlay   bool
	AssetDir  string // empty uses generated sheets
	LogLevel  string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		ScreenWidth:   envInt("AVOUT_SCREEN_WIDTH", 640),
		ScreenHeight:  envInt("AVOUT_SCREEN_HEIGHT", 480),
		Diagonal:      envFloat("AVOUT_DIAGONAL", 2.8),
		ScaleModifier: envFloat("AVOUT_SCALE_MODIFIER", 1.0),
		External:      envBool("AVOUT_EXTERNAL", false),

		DeviceSampleRate: envInt("AVOUT_DEVICE_RATE", 48000),
		InputSampleRate:  envInt("AVOUT_INPUT_RATE", testsrc.DefaultSampleRate),
		BufferFrames:     envInt("AVOUT_BUFFER_FRAMES", audio.DefaultBufferFrames),
		Volume:           envFloat("AVOUT_VOLUME", 1.0),

		SourceWidth:  envInt("AVOUT_SOURCE_WIDTH", testsrc.DefaultWidth),
		SourceHeight: envInt("AVOUT_SOURCE_HEIGHT", testsrc.DefaultHeight),
		Region:       envStr("AVOUT_REGION", "ntsc"),

		VSync:     envStr("AVOUT_VSYNC", "lenient"),
		FrameSkip: envBool("AVOUT_FRAME_SKIP", true),
		Overlay:   envBool("AVOUT_OVERLAY", true),
		AssetDir:  envStr("AVOUT_ASSET_DIR", ""),
		LogLevel:  envStr("AVOUT_LOG_LEVEL", "info"),
	}
}

// BindFlags registers a flag for every setting, defaulting to the
// current values so flags override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.ScreenWidth, "width", c.ScreenWidth, "screen width in pixels")
	fs.IntVar(&c.ScreenHeight, "height", c.ScreenHeight, "screen height in pixels")
	fs.Float64Var(&c.Diagonal, "diagonal", c.Diagonal, "screen diagonal in inches")
	fs.Float64Var(&c.ScaleModifier, "scale-modifier", c.ScaleModifier, "multiplier applied to the dp scale")
	fs.BoolVar(&c.External, "hdmi", c.External, "use the external 1280x720 display profile")

	fs.IntVar(&c.DeviceSampleRate, "device-rate", c.DeviceSampleRate, "audio device sample rate")
	fs.IntVar(&c.InputSampleRate, "input-rate", c.InputSampleRate, "source audio sample rate")
	fs.IntVar(&c.BufferFrames, "buffer-frames", c.BufferFrames, "audio headroom in video frames")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "playback volume 0.0-1.0")

	fs.IntVar(&c.SourceWidth, "source-width", c.SourceWidth, "source frame width")
	fs.IntVar(&c.SourceHeight, "source-height", c.SourceHeight, "source frame height")
	fs.StringVar(&c.Region, "region", c.Region, "region: ntsc or pal")

	fs.StringVar(&c.VSync, "vsync", c.VSync, "vsync mode: off, lenient or strict")
	fs.BoolVar(&c.FrameSkip, "frame-skip", c.FrameSkip, "skip presenting frames while audio is starving")
	fs.BoolVar(&c.Overlay, "overlay", c.Overlay, "show the status overlay")
	fs.StringVar(&c.AssetDir, "assets", c.AssetDir, "directory holding assets@Nx.png sheets, empty for generated sheets")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
}

// Geometry returns the screen geometry to lay out for. The external
// profile replaces the panel dimensions.
func (c Config) Geometry() layout.Geometry {
	if c.External {
		return layout.Geometry{Width: HDMIWidth, Height: HDMIHeight, Diagonal: HDMIDiagonal, ScaleModifier: c.ScaleModifier}
	}
	return layout.Geometry{
		Width:         c.ScreenWidth,
		Height:        c.ScreenHeight,
		Diagonal:      c.Diagonal,
		ScaleModifier: c.ScaleModifier,
	}
}

// PacerMode returns the parsed vsync mode.
func (c Config) PacerMode() (pacer.Mode, error) {
	return pacer.ParseMode(c.VSync)
}

// SourceRegion returns the parsed region.
func (c Config) SourceRegion() (testsrc.Region, error) {
	return testsrc.ParseRegion(c.Region)
}

// Level returns the parsed log level.
func (c Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Validate reports every unusable setting.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	if !c.External && (c.ScreenWidth <= 0 || c.ScreenHeight <= 0) {
		bad("screen size %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	if !c.External && c.Diagonal <= 0 {
		bad("diagonal %v", c.Diagonal)
	}
	if c.ScaleModifier < 0 {
		bad("scale modifier %v", c.ScaleModifier)
	}
	if c.DeviceSampleRate <= 0 {
		bad("device rate %d", c.DeviceSampleRate)
	}
	if c.InputSampleRate <= 0 {
		bad("input rate %d", c.InputSampleRate)
	}
	if c.BufferFrames <= 0 {
		bad("buffer frames %d", c.BufferFrames)
	}
	if c.Volume < 0 || c.Volume > 1 {
		bad("volume %v", c.Volume)
	}
	if c.SourceWidth <= 0 || c.SourceHeight <= 0 {
		bad("source size %dx%d", c.SourceWidth, c.SourceHeight)
	}
	if _, err := c.SourceRegion(); err != nil {
		bad("%v", err)
	}
	if _, err := c.PacerMode(); err != nil {
		bad("%v", err)
	}
	if _, err := c.Level(); err != nil {
		bad("log level %q", c.LogLevel)
	}
	return errors.Join(errs...)
}
