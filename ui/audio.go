package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSampleRate is the device rate used when none is configured.
const DefaultSampleRate = 48000

// playerBufferBytes keeps oto's own buffer short (~10ms at 48kHz) so the
// mixer, not the player, holds the latency and occupancy stays meaningful.
const playerBufferBytes = 2048

// AudioPlayer manages audio playback via oto. oto pulls S16LE stereo
// from the source reader on its own goroutine.
type AudioPlayer struct {
	player     *oto.Player
	sampleRate int
}

// oto context singleton. oto allows one context per process, so the first
// sample rate wins.
var (
	otoCtx      *oto.Context
	otoRate     int
	otoInitOnce sync.Once
	otoInitErr  error
)

// ensureOtoContext initializes the oto audio context on first use.
func ensureOtoContext(sampleRate int) (*oto.Context, int, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   20 * time.Millisecond,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-readyChan
		otoRate = sampleRate
	})
	return otoCtx, otoRate, otoInitErr
}

// NewAudioPlayer opens the audio device at sampleRate and starts pulling
// from src. src must never block for long; audio.Mixer satisfies this.
func NewAudioPlayer(src io.Reader, sampleRate int, volume float64) (*AudioPlayer, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, rate, err := ensureOtoContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}
	if rate != sampleRate {
		log.Warn().Int("requested", sampleRate).Int("device", rate).Msg("audio context already open at a different rate")
	}

	player := ctx.NewPlayer(src)
	player.SetBufferSize(playerBufferBytes)
	player.SetVolume(volume)
	player.Play()

	log.Info().Int("sample_rate", rate).Float64("volume", volume).Msg("audio output started")
	return &AudioPlayer{
		player:     player,
		sampleRate: rate,
	}, nil
}

// SampleRate returns the rate the device was opened at.
func (a *AudioPlayer) SampleRate() int {
	return a.sampleRate
}

// Buffered returns the bytes held inside the player, not yet played.
func (a *AudioPlayer) Buffered() int {
	return a.player.BufferedSize()
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Close stops playback and releases the player.
func (a *AudioPlayer) Close() {
	if a.player == nil {
		return
	}
	if err := a.player.Close(); err != nil {
		log.Warn().Err(err).Msg("closing audio player")
	}
	a.player = nil
}
