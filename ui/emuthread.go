// Package ui holds the state shared between the producer goroutine and
// the display thread, and the audio device player.
package ui

import (
	"sync"
)

// SharedFramebuffer holds an RGB565 frame written by the producer
// goroutine and read by the display's Draw. Writes go to one buffer and
// Read snapshots it into a second one, so the producer never waits on a
// draw in progress.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []uint16 // written by the producer under lock
	readPixels  []uint16 // snapshot handed to the reader
	width       int
	height      int
	seq         uint64
}

// NewSharedFramebuffer creates a framebuffer able to hold width x height
// pixels without reallocating.
func NewSharedFramebuffer(width, height int) *SharedFramebuffer {
	return &SharedFramebuffer{
		writePixels: make([]uint16, width*height),
		readPixels:  make([]uint16, width*height),
	}
}

// Update copies a complete frame from the producer and publishes it.
func (sf *SharedFramebuffer) Update(pixels []uint16, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	sf.mu.Lock()
	n := width * height
	if n > len(pixels) {
		n = len(pixels)
	}
	if cap(sf.writePixels) < n {
		sf.writePixels = make([]uint16, n)
	}
	sf.writePixels = sf.writePixels[:n]
	copy(sf.writePixels, pixels[:n])
	sf.width = width
	sf.height = n / width
	sf.seq++
	sf.mu.Unlock()
}

// Read returns a snapshot of the latest frame and its sequence number.
// The sequence increments once per published frame; a gap between reads
// means frames were replaced before they were drawn. The returned slice
// is valid until the next Read.
func (sf *SharedFramebuffer) Read() (pixels []uint16, width, height int, seq uint64) {
	sf.mu.Lock()
	width, height, seq = sf.width, sf.height, sf.seq
	n := width * height
	if cap(sf.readPixels) < n {
		sf.readPixels = make([]uint16, n)
	}
	sf.readPixels = sf.readPixels[:n]
	copy(sf.readPixels, sf.writePixels[:n])
	pixels = sf.readPixels
	sf.mu.Unlock()
	return
}

// Seq returns the sequence number of the latest frame.
func (sf *SharedFramebuffer) Seq() uint64 {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.seq
}

// EmuControl manages pause/resume/stop coordination between the display
// thread and the producer goroutine.
type EmuControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopReq  bool
}

// NewEmuControl creates a new producer control.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the producer to pause and blocks until it
// acknowledges or stops.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.stopReq {
		return
	}
	ec.pauseReq = true
	for !ec.paused && !ec.stopReq {
		ec.cond.Wait()
	}
}

// RequestResume tells the producer to resume.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// CheckPause is called by the producer between frames. If a pause has
// been requested it acknowledges and blocks until resumed or stopped.
// Returns false if the producer should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.stopReq {
		return false
	}
	if !ec.pauseReq {
		return true
	}

	ec.paused = true
	ec.cond.Broadcast()
	for ec.pauseReq && !ec.stopReq {
		ec.cond.Wait()
	}
	ec.paused = false
	return !ec.stopReq
}

// Stop signals the producer to exit and releases any waiters.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopReq = true
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// ShouldRun returns true if the producer should continue running.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return !ec.stopReq
}

// IsPaused returns true if the producer is currently paused.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.paused
}

// TogglePause flips the pause request without waiting for the producer
// to acknowledge. Safe to call from the display thread.
func (ec *EmuControl) TogglePause() {
	ec.mu.Lock()
	if !ec.stopReq {
		ec.pauseReq = !ec.pauseReq
		ec.cond.Broadcast()
	}
	ec.mu.Unlock()
}
