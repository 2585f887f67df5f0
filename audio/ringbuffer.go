package audio

import (
	"errors"
	"fmt"
)

// MaxCapacity bounds a ring buffer to about 21 seconds at 48kHz.
const MaxCapacity = 1 << 20

// ErrCapacity is returned when a requested buffer size is out of range.
var ErrCapacity = errors.New("invalid audio buffer capacity")

// RingBuffer is a fixed-size FIFO of frames. When full, a write replaces
// the oldest unread frame. It is not safe for concurrent use; Mixer
// serializes access with its own lock.
type RingBuffer struct {
	frames   []Frame
	readPos  int
	writePos int
	count    int

	last    Frame
	hasLast bool

	dropped  uint64
	underrun uint64
}

// NewRingBuffer creates a ring buffer holding capacity frames.
func NewRingBuffer(capacity int) (*RingBuffer, error) {
	rb := &RingBuffer{}
	if err := rb.Resize(capacity); err != nil {
		return nil, err
	}
	return rb, nil
}

// Resize discards all buffered frames and changes the capacity. On error
// the buffer is left untouched.
func (rb *RingBuffer) Resize(capacity int) error {
	if capacity <= 0 || capacity > MaxCapacity {
		return fmt.Errorf("%w: %d frames", ErrCapacity, capacity)
	}
	if cap(rb.frames) >= capacity {
		rb.frames = rb.frames[:capacity]
		clear(rb.frames)
	} else {
		rb.frames = make([]Frame, capacity)
	}
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
	rb.hasLast = false
	rb.last = Frame{}
	return nil
}

// Cap returns the capacity in frames.
func (rb *RingBuffer) Cap() int { return len(rb.frames) }

// Len returns the number of unread frames.
func (rb *RingBuffer) Len() int { return rb.count }

// Free returns how many frames can be written without dropping any.
func (rb *RingBuffer) Free() int { return len(rb.frames) - rb.count }

// Fill returns the occupied fraction of the buffer in [0, 1].
func (rb *RingBuffer) Fill() float64 {
	if len(rb.frames) == 0 {
		return 0
	}
	return float64(rb.count) / float64(len(rb.frames))
}

// WriteFrame appends f, dropping the oldest frame if the buffer is full.
func (rb *RingBuffer) WriteFrame(f Frame) {
	n := len(rb.frames)
	if n == 0 {
		return
	}
	if rb.count == n {
		rb.readPos++
		if rb.readPos == n {
			rb.readPos = 0
		}
		rb.count--
		rb.dropped++
	}
	rb.frames[rb.writePos] = f
	rb.writePos++
	if rb.writePos == n {
		rb.writePos = 0
	}
	rb.count++
}

// ReadFrames fills dst completely. When the buffer runs dry the last
// frame read is repeated, or silence if nothing was ever read. It returns
// how many frames came from the buffer.
func (rb *RingBuffer) ReadFrames(dst []Frame) int {
	n := len(dst)
	if n > rb.count {
		n = rb.count
	}

	size := len(rb.frames)
	first := size - rb.readPos
	if first >= n {
		copy(dst, rb.frames[rb.readPos:rb.readPos+n])
	} else {
		copy(dst, rb.frames[rb.readPos:])
		copy(dst[first:n], rb.frames[:n-first])
	}
	if n > 0 {
		rb.readPos = (rb.readPos + n) % size
		rb.count -= n
		rb.last = dst[n-1]
		rb.hasLast = true
	}

	if n < len(dst) {
		pad := Frame{}
		if rb.hasLast {
			pad = rb.last
		}
		for i := n; i < len(dst); i++ {
			dst[i] = pad
		}
		rb.underrun += uint64(len(dst) - n)
	}
	return n
}

// Clear discards unread frames. The last consumed frame is kept so a
// following underrun stays click free.
func (rb *RingBuffer) Clear() {
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
}

// Dropped returns how many unread frames were overwritten.
func (rb *RingBuffer) Dropped() uint64 { return rb.dropped }

// Underrun returns how many frames were padded on reads.
func (rb *RingBuffer) Underrun() uint64 { return rb.underrun }
