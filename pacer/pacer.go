// Package pacer paces frame presentation against a frame budget and the
// display's vertical sync.
package pacer

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Mode selects how presentation is synchronized.
type Mode int32

const (
	// ModeOff never waits for vsync; frames are limited by sleeping to
	// the budget.
	ModeOff Mode = iota
	// ModeLenient waits for vsync only when the frame finished within
	// budget, so a slow frame does not compound into a missed refresh.
	ModeLenient
	// ModeStrict always waits for vsync.
	ModeStrict
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeLenient:
		return "lenient"
	case ModeStrict:
		return "strict"
	}
	return fmt.Sprintf("Mode(%d)", int32(m))
}

// ParseMode parses "off", "lenient" or "strict".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff, nil
	case "lenient", "":
		return ModeLenient, nil
	case "strict":
		return ModeStrict, nil
	}
	return ModeLenient, fmt.Errorf("invalid vsync mode %q (use off, lenient or strict)", s)
}

// VSync is the platform's vertical sync primitive. WaitVSync returns
// after the next refresh or after timeout, whichever comes first.
type VSync interface {
	WaitVSync(timeout time.Duration)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// BudgetFor returns the frame budget for a refresh rate.
func BudgetFor(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// Pacer tracks the start of the current frame and decides whether and
// how long to wait. StartFrame, Flip and Sync belong to the producer
// goroutine; SetMode may be called from any goroutine.
type Pacer struct {
	mode   atomic.Int32
	budget time.Duration
	vsync  VSync
	clock  Clock

	frameStart time.Time
}

// New creates a pacer. A nil vsync forces ModeOff behavior; a nil clock
// uses SystemClock.
func New(mode Mode, budget time.Duration, vsync VSync, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock
	}
	if budget <= 0 {
		budget = BudgetFor(60)
	}
	p := &Pacer{
		budget: budget,
		vsync:  vsync,
		clock:  clock,
	}
	p.SetMode(mode)
	return p
}

// SetMode changes the sync mode.
func (p *Pacer) SetMode(m Mode) {
	p.mode.Store(int32(m))
}

// Mode returns the sync mode in effect. Without a vsync primitive it is
// always ModeOff.
func (p *Pacer) Mode() Mode {
	if p.vsync == nil {
		return ModeOff
	}
	return Mode(p.mode.Load())
}

// Budget returns the frame budget.
func (p *Pacer) Budget() time.Duration {
	return p.budget
}

// StartFrame marks the beginning of a frame.
func (p *Pacer) StartFrame() {
	p.frameStart = p.clock.Now()
}

func (p *Pacer) elapsed() time.Duration {
	return p.clock.Now().Sub(p.frameStart)
}

// ShouldVSync reports whether presenting now should wait for vsync.
// Before the first StartFrame it always does.
func (p *Pacer) ShouldVSync() bool {
	mode := p.Mode()
	if mode == ModeOff {
		return false
	}
	return mode == ModeStrict || p.frameStart.IsZero() || p.elapsed() < p.budget
}

// Flip presents a frame and then waits according to the mode. It
// reports whether it waited for vsync.
func (p *Pacer) Flip(present func()) bool {
	vsync := p.ShouldVSync()
	present()
	if vsync {
		p.vsync.WaitVSync(p.budget)
		return true
	}
	if p.Mode() == ModeOff {
		p.sleepRemaining()
	}
	return false
}

// Sync spends the rest of the frame budget without presenting, for
// frames that are deliberately skipped.
func (p *Pacer) Sync() {
	if p.Mode() == ModeOff {
		p.sleepRemaining()
		return
	}

	elapsed := p.elapsed()
	if p.frameStart.IsZero() {
		elapsed = 0
	}
	if p.Mode() == ModeStrict || p.frameStart.IsZero() || elapsed < p.budget {
		remaining := p.budget - elapsed
		if remaining <= 0 {
			remaining = p.budget
		}
		p.vsync.WaitVSync(remaining)
	}
}

func (p *Pacer) sleepRemaining() {
	if p.frameStart.IsZero() {
		return
	}
	if remaining := p.budget - p.elapsed(); remaining > 0 {
		p.clock.Sleep(remaining)
	}
}
