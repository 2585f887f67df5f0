package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBufferFrames = 5
	DefaultMaxRetries   = 10
	DefaultRetryDelay   = time.Millisecond
)

// ErrRate is returned for non-positive sample or frame rates.
var ErrRate = errors.New("invalid audio rate")

// Options configures a Mixer.
type Options struct {
	InputRate  int     // producer sample rate, Hz
	OutputRate int     // device sample rate, Hz
	FrameRate  float64 // producer video frame rate, Hz

	// BufferFrames sizes the ring buffer as this many video frames of
	// input audio. Zero selects DefaultBufferFrames.
	BufferFrames int

	// MaxRetries and RetryDelay bound how long Batch waits for the
	// consumer when the buffer is short on space.
	MaxRetries int
	RetryDelay time.Duration

	// Sleep replaces time.Sleep, for tests.
	Sleep func(time.Duration)
}

func (o *Options) setDefaults() {
	if o.BufferFrames <= 0 {
		o.BufferFrames = DefaultBufferFrames
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
}

// Stats counts mixer events since creation.
type Stats struct {
	Written           uint64 // frames resampled into the buffer
	Consumed          uint64 // input frames accepted
	Dropped           uint64 // unread frames overwritten
	Underrun          uint64 // frames padded on the consumer side
	BackpressureWaits uint64 // sleeps waiting for space
	Overflows         uint64 // batches written without enough space
}

// Mixer connects the producer to the audio device. The producer calls
// Batch; the device pulls through Read. One lock guards the ring buffer
// and resampler; Read never waits on anything but that lock.
type Mixer struct {
	mu        sync.Mutex
	opts      Options
	ring      *RingBuffer
	resampler *Resampler
	stats     Stats

	scratch []Frame // producer side, BatchInterleaved
	readBuf []Frame // consumer side, Read
}

// Capacity returns the ring size in frames for the given rates.
func Capacity(bufferFrames, inputRate int, frameRate float64) int {
	if frameRate <= 0 {
		return 0
	}
	return int(float64(bufferFrames*inputRate) / frameRate)
}

// NewMixer creates a mixer and allocates its ring buffer.
func NewMixer(opts Options) (*Mixer, error) {
	if opts.InputRate <= 0 || opts.OutputRate <= 0 || opts.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: in=%d out=%d fps=%.2f", ErrRate, opts.InputRate, opts.OutputRate, opts.FrameRate)
	}
	opts.setDefaults()

	ring, err := NewRingBuffer(Capacity(opts.BufferFrames, opts.InputRate, opts.FrameRate))
	if err != nil {
		return nil, fmt.Errorf("audio buffer: %w", err)
	}

	m := &Mixer{
		opts:      opts,
		ring:      ring,
		resampler: NewResampler(opts.InputRate, opts.OutputRate),
	}

	log.Info().
		Int("input_rate", opts.InputRate).
		Int("output_rate", opts.OutputRate).
		Float64("fps", opts.FrameRate).
		Int("capacity", ring.Cap()).
		Bool("resample", Needed(opts.InputRate, opts.OutputRate)).
		Msg("audio mixer initialized")

	return m, nil
}

// Batch resamples frames into the ring buffer and returns how many input
// frames were consumed. If the buffer lacks room it waits a bounded
// number of times for the consumer, then writes anyway, overwriting the
// oldest unread audio.
func (m *Mixer) Batch(frames []Frame) int {
	if len(frames) == 0 {
		return 0
	}

	m.mu.Lock()
	adjust := RateAdjust(m.ring.Fill())
	need := m.resampler.Estimate(len(frames), adjust)

	for tries := 0; tries < m.opts.MaxRetries && m.ring.Free() < need; tries++ {
		m.stats.BackpressureWaits++
		m.mu.Unlock()
		m.opts.Sleep(m.opts.RetryDelay)
		m.mu.Lock()
	}
	if m.ring.Free() < need {
		m.stats.Overflows++
	}

	dropped := m.ring.Dropped()
	written, consumed := m.resampler.Resample(m.ring, frames, adjust)
	m.stats.Written += uint64(written)
	m.stats.Consumed += uint64(consumed)
	m.stats.Dropped += m.ring.Dropped() - dropped
	m.mu.Unlock()

	return consumed
}

// BatchInterleaved is Batch for L/R interleaved samples. It returns the
// number of samples consumed.
func (m *Mixer) BatchInterleaved(samples []int16) int {
	m.scratch = Deinterleave(m.scratch[:0], samples)
	return m.Batch(m.scratch) * 2
}

// Read implements io.Reader for the device: little-endian signed 16-bit
// stereo. It always fills whole frames of p, padding underruns, and never
// returns an error.
func (m *Mixer) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}

	m.mu.Lock()
	if cap(m.readBuf) < n {
		m.readBuf = make([]Frame, n)
	}
	buf := m.readBuf[:n]
	before := m.ring.Underrun()
	m.ring.ReadFrames(buf)
	m.stats.Underrun += m.ring.Underrun() - before
	m.mu.Unlock()

	for i, f := range buf {
		binary.LittleEndian.PutUint16(p[i*4:], uint16(f.L))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(f.R))
	}
	return n * 4, nil
}

// Reset handles a stream discontinuity: resampler history and unread
// audio are discarded.
func (m *Mixer) Reset() {
	m.mu.Lock()
	m.resampler.Reset()
	m.ring.Clear()
	m.mu.Unlock()
}

// SetRates reconfigures for a new producer sample rate or frame rate.
// The buffer is reallocated and emptied. On error the mixer keeps its
// previous configuration.
func (m *Mixer) SetRates(inputRate int, frameRate float64) error {
	if inputRate <= 0 || frameRate <= 0 {
		return fmt.Errorf("%w: in=%d fps=%.2f", ErrRate, inputRate, frameRate)
	}
	capacity := Capacity(m.opts.BufferFrames, inputRate, frameRate)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Resize(capacity); err != nil {
		log.Error().Err(err).Int("capacity", capacity).Msg("audio buffer resize failed, keeping previous buffer")
		return fmt.Errorf("resize audio buffer: %w", err)
	}
	m.opts.InputRate = inputRate
	m.opts.FrameRate = frameRate
	m.resampler.SetRates(inputRate, m.opts.OutputRate)

	log.Info().Int("input_rate", inputRate).Float64("fps", frameRate).Int("capacity", capacity).Msg("audio buffer resized")
	return nil
}

// Occupancy returns the buffer fill level as a percentage.
func (m *Mixer) Occupancy() int {
	m.mu.Lock()
	fill := m.ring.Fill()
	m.mu.Unlock()
	return int(fill * 100)
}

// Capacity returns the ring size in frames.
func (m *Mixer) Capacity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Cap()
}

// SetOutputRate switches to a new device rate, for when the device opens
// at a rate other than the one requested. Buffered audio is kept; only
// the resampler restarts.
func (m *Mixer) SetOutputRate(outputRate int) error {
	if outputRate <= 0 {
		return fmt.Errorf("%w: out=%d", ErrRate, outputRate)
	}
	m.mu.Lock()
	m.opts.OutputRate = outputRate
	m.resampler.SetRates(m.opts.InputRate, outputRate)
	m.mu.Unlock()

	log.Info().Int("output_rate", outputRate).Msg("audio output rate changed")
	return nil
}

// OutputRate returns the device sample rate.
func (m *Mixer) OutputRate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.OutputRate
}

// Stats returns a snapshot of the event counters.
func (m *Mixer) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
