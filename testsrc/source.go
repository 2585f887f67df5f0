// Package testsrc is a synthetic emulation producer: moving color bars in
// RGB565 and a PSG melody at a configurable sample rate. It stands in for
// a real core when exercising the output pipeline.
package testsrc

import (
	"errors"
	"fmt"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-sn76489"

	"github.com/user-none/avout/scaler"
)

const (
	DefaultWidth      = 320
	DefaultHeight     = 240
	DefaultSampleRate = 44100
)

// ErrConfig is returned by New for unusable dimensions or rates.
var ErrConfig = errors.New("invalid source configuration")

// bars are the classic color bar palette.
var bars = [...]uint16{
	scaler.RGB565(0xC0, 0xC0, 0xC0),
	scaler.RGB565(0xC0, 0xC0, 0x00),
	scaler.RGB565(0x00, 0xC0, 0xC0),
	scaler.RGB565(0x00, 0xC0, 0x00),
	scaler.RGB565(0xC0, 0x00, 0xC0),
	scaler.RGB565(0xC0, 0x00, 0x00),
	scaler.RGB565(0x00, 0x00, 0xC0),
	scaler.RGB565(0x10, 0x10, 0x10),
}

// Source renders one frame of video and audio per RunFrame call.
type Source struct {
	width, height int
	sampleRate    int
	region        Region
	timing        RegionTiming

	psg                 *sn76489.SN76489
	psgCyclesPerLine    int
	framebuffer         []uint16
	audio               []int16
	frame               uint64
	alpha, prevL, prevR float64
}

// New creates a source of the given frame size producing audio at
// sampleRate.
func New(width, height, sampleRate int, region Region) (*Source, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrConfig, width, height)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrConfig, sampleRate)
	}

	timing := TimingForRegion(region)
	samplesPerFrame := sampleRate / timing.FPS
	psg := sn76489.New(timing.PSGClockHz, sampleRate, samplesPerFrame*2, sn76489.Sega)
	psg.SetGain(psgGain)

	s := &Source{
		width:            width,
		height:           height,
		sampleRate:       sampleRate,
		region:           region,
		timing:           timing,
		psg:              psg,
		psgCyclesPerLine: (timing.PSGClockHz / timing.FPS) / timing.Scanlines,
		framebuffer:      make([]uint16, width*height),
		audio:            make([]int16, 0, samplesPerFrame*4),
		alpha:            lowPassAlpha(sampleRate),
	}

	// channels 2 and noise stay silent
	psg.Write(0xDF)
	psg.Write(0xFF)
	return s, nil
}

// RunFrame produces the next frame of video and audio.
func (s *Source) RunFrame() {
	s.audio = s.audio[:0]
	s.psg.ResetBuffer()
	s.sequence()

	for line := 0; line < s.timing.Scanlines; line++ {
		if line < s.height {
			s.renderLine(line)
		}
		s.psg.Run(s.psgCyclesPerLine)
	}
	s.mixAudio()
	s.frame++
}

// renderLine draws one row of the bars. Bar edges slant one pixel per two
// rows and the pattern scrolls two pixels per frame.
func (s *Source) renderLine(y int) {
	barWidth := s.width / len(bars)
	if barWidth == 0 {
		barWidth = 1
	}
	shift := int(s.frame*2) + y/2
	row := s.framebuffer[y*s.width : (y+1)*s.width]
	for x := range row {
		row[x] = bars[((x+shift)/barWidth)%len(bars)]
	}
}

// Framebuffer returns the current frame, Width pixels per row. The slice
// is reused by the next RunFrame.
func (s *Source) Framebuffer() []uint16 {
	return s.framebuffer
}

// Size returns the frame dimensions.
func (s *Source) Size() (width, height int) {
	return s.width, s.height
}

// AudioSamples returns the frame's interleaved stereo samples. The slice
// is reused by the next RunFrame.
func (s *Source) AudioSamples() []int16 {
	return s.audio
}

// SampleRate returns the audio sample rate.
func (s *Source) SampleRate() int {
	return s.sampleRate
}

// Region returns the source's timing region.
func (s *Source) Region() Region {
	return s.region
}

// GetTiming returns FPS and scanline count for the current region.
func (s *Source) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       s.timing.FPS,
		Scanlines: s.timing.Scanlines,
	}
}

// Frame returns how many frames have been produced.
func (s *Source) Frame() uint64 {
	return s.frame
}
