// Package cli runs a producer on a dedicated goroutine and feeds its
// output to the audio mixer and the shared framebuffer.
package cli

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	emucore "github.com/user-none/eblitui/api"

	"github.com/user-none/avout/audio"
	"github.com/user-none/avout/pacer"
	"github.com/user-none/avout/scaler"
	"github.com/user-none/avout/ui"
)

// Frame skip thresholds. Presentation is skipped while audio occupancy
// is below skipBelow, at most maxSkips frames in a row.
const (
	skipBelow = 25
	maxSkips  = 3
)

// ErrOptions is returned by NewRunner when a required collaborator is
// missing.
var ErrOptions = errors.New("incomplete runner options")

// Source produces one frame of RGB565 video and interleaved stereo audio
// per RunFrame.
type Source interface {
	RunFrame()
	Framebuffer() []uint16
	Size() (width, height int)
	AudioSamples() []int16
	GetTiming() emucore.Timing
}

// Options wires a Runner.
type Options struct {
	Source      Source
	Mixer       *audio.Mixer
	Pacer       *pacer.Pacer
	Framebuffer *ui.SharedFramebuffer
	Control     *ui.EmuControl

	// Width and Height are the output size frames are scaled to.
	Width, Height int

	FrameSkip bool
}

// Stats counts runner frames.
type Stats struct {
	Frames    uint64
	Presented uint64
	Skipped   uint64
	VSynced   uint64
}

// Runner drives a Source. The producer goroutine owns the source, the
// scaler and the pacer; the display thread only reads the shared
// framebuffer.
type Runner struct {
	source  Source
	mixer   *audio.Mixer
	pacer   *pacer.Pacer
	fb      *ui.SharedFramebuffer
	control *ui.EmuControl

	scaler    *scaler.AAScaler
	scaled    []uint16
	dstW      int
	dstH      int
	frameSkip bool
	skipRun   int

	frames    atomic.Uint64
	presented atomic.Uint64
	skipped   atomic.Uint64
	vsynced   atomic.Uint64

	started bool
	done    chan struct{}
}

// NewRunner creates a runner. Call Start to begin producing.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Source == nil || opts.Mixer == nil || opts.Pacer == nil || opts.Framebuffer == nil {
		return nil, ErrOptions
	}
	if opts.Control == nil {
		opts.Control = ui.NewEmuControl()
	}

	srcW, srcH := opts.Source.Size()
	s, err := scaler.NewAAScaler(srcW, srcH, opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("runner scaler: %w", err)
	}

	log.Info().
		Int("src_w", srcW).
		Int("src_h", srcH).
		Int("dst_w", opts.Width).
		Int("dst_h", opts.Height).
		Int("fps", opts.Source.GetTiming().FPS).
		Str("vsync", opts.Pacer.Mode().String()).
		Bool("frame_skip", opts.FrameSkip).
		Msg("runner configured")

	return &Runner{
		source:    opts.Source,
		mixer:     opts.Mixer,
		pacer:     opts.Pacer,
		fb:        opts.Framebuffer,
		control:   opts.Control,
		scaler:    s,
		scaled:    make([]uint16, opts.Width*opts.Height),
		dstW:      opts.Width,
		dstH:      opts.Height,
		frameSkip: opts.FrameSkip,
		done:      make(chan struct{}),
	}, nil
}

// Control returns the pause/stop control shared with the display.
func (r *Runner) Control() *ui.EmuControl {
	return r.control
}

// Start launches the producer goroutine.
func (r *Runner) Start() {
	r.started = true
	go r.loop()
}

// Close stops the producer goroutine and waits for it to exit.
func (r *Runner) Close() {
	r.control.Stop()
	if r.started {
		<-r.done
		r.started = false
	}

	st := r.Stats()
	ms := r.mixer.Stats()
	log.Info().
		Uint64("frames", st.Frames).
		Uint64("presented", st.Presented).
		Uint64("skipped", st.Skipped).
		Uint64("audio_written", ms.Written).
		Uint64("audio_dropped", ms.Dropped).
		Uint64("audio_underrun", ms.Underrun).
		Uint64("backpressure_waits", ms.BackpressureWaits).
		Msg("runner stopped")
}

// Stats returns frame counters. Safe from any goroutine.
func (r *Runner) Stats() Stats {
	return Stats{
		Frames:    r.frames.Load(),
		Presented: r.presented.Load(),
		Skipped:   r.skipped.Load(),
		VSynced:   r.vsynced.Load(),
	}
}

func (r *Runner) loop() {
	defer close(r.done)
	for r.control.CheckPause() {
		r.step()
	}
}

// step runs one frame: produce, queue audio, then present or skip.
func (r *Runner) step() {
	r.pacer.StartFrame()
	r.source.RunFrame()
	r.frames.Add(1)

	if samples := r.source.AudioSamples(); len(samples) > 0 {
		r.mixer.BatchInterleaved(samples)
	}

	if r.shouldSkip() {
		r.skipRun++
		r.skipped.Add(1)
		r.pacer.Sync()
		return
	}
	r.skipRun = 0

	if r.pacer.Flip(r.present) {
		r.vsynced.Add(1)
	}
	r.presented.Add(1)
}

func (r *Runner) shouldSkip() bool {
	return r.frameSkip && r.skipRun < maxSkips && r.mixer.Occupancy() < skipBelow
}

// present scales the source frame to the output size and publishes it.
func (r *Runner) present() {
	srcW, srcH := r.source.Size()
	if sw, sh := r.scaler.SourceSize(); sw != srcW || sh != srcH {
		if err := r.scaler.Reconfigure(srcW, srcH, r.dstW, r.dstH); err != nil {
			log.Error().Err(err).Int("src_w", srcW).Int("src_h", srcH).Msg("source size change rejected")
			return
		}
	}
	if err := r.scaler.Scale(r.scaled, r.dstW, r.source.Framebuffer(), srcW); err != nil {
		log.Error().Err(err).Msg("scaling frame")
		return
	}
	r.fb.Update(r.scaled, r.dstW, r.dstH)
}
