package audio

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"
	"time"
)

func newTestMixer(t *testing.T, in, out int, fps float64) *Mixer {
	t.Helper()
	m, err := NewMixer(Options{
		InputRate:  in,
		OutputRate: out,
		FrameRate:  fps,
		Sleep:      func(time.Duration) {},
	})
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	return m
}

func readFrames(t *testing.T, m *Mixer, n int) []Frame {
	t.Helper()
	p := make([]byte, n*4)
	got, err := m.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != n*4 {
		t.Fatalf("Read: got %d bytes, want %d", got, n*4)
	}

	frames := make([]Frame, n)
	for i := range frames {
		frames[i].L = int16(binary.LittleEndian.Uint16(p[i*4:]))
		frames[i].R = int16(binary.LittleEndian.Uint16(p[i*4+2:]))
	}
	return frames
}

func checkOccupancyBand(t *testing.T, occ []int, from int) {
	t.Helper()
	for i, o := range occ[from:] {
		if o < 28 || o > 72 {
			t.Fatalf("tick %d occupancy %d%%, want within 28..72", from+i, o)
		}
	}
}

func TestNewMixer_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"zero input rate", Options{InputRate: 0, OutputRate: 48000, FrameRate: 60}, ErrRate},
		{"zero frame rate", Options{InputRate: 44100, OutputRate: 48000, FrameRate: 0}, ErrRate},
		{"oversized buffer", Options{InputRate: 44100, OutputRate: 48000, FrameRate: 60, BufferFrames: 1 << 20}, ErrCapacity},
	}
	for _, tt := range tests {
		if _, err := NewMixer(tt.opts); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestMixer_Capacity(t *testing.T) {
	m := newTestMixer(t, 44100, 48000, 60)
	if m.Capacity() != 3675 {
		t.Errorf("capacity: got %d, want 3675", m.Capacity())
	}
	if m.OutputRate() != 48000 {
		t.Errorf("output rate: got %d, want 48000", m.OutputRate())
	}
}

func TestMixer_PassThroughAndUnderrun(t *testing.T) {
	m := newTestMixer(t, 48000, 48000, 60)

	if got := readFrames(t, m, 2); !slices.Equal(got, []Frame{{}, {}}) {
		t.Errorf("before any audio: got %v, want silence", got)
	}

	if consumed := m.Batch([]Frame{{1, -1}, {2, -2}}); consumed != 2 {
		t.Errorf("consumed: got %d, want 2", consumed)
	}

	want := []Frame{{1, -1}, {2, -2}, {2, -2}, {2, -2}}
	if got := readFrames(t, m, 4); !slices.Equal(got, want) {
		t.Errorf("frames: got %v, want %v", got, want)
	}

	st := m.Stats()
	if st.Written != 2 {
		t.Errorf("written: got %d, want 2", st.Written)
	}
	if st.Underrun != 2+2 {
		t.Errorf("underrun: got %d, want 4", st.Underrun)
	}
}

func TestMixer_BatchInterleaved(t *testing.T) {
	m := newTestMixer(t, 48000, 48000, 60)
	if n := m.BatchInterleaved([]int16{100, 200, 300, 400}); n != 4 {
		t.Errorf("consumed samples: got %d, want 4", n)
	}
	want := []Frame{{100, 200}, {300, 400}}
	if got := readFrames(t, m, 2); !slices.Equal(got, want) {
		t.Errorf("frames: got %v, want %v", got, want)
	}
}

func TestMixer_ReadPartialFrame(t *testing.T) {
	m := newTestMixer(t, 48000, 48000, 60)
	if n, err := m.Read(make([]byte, 3)); err != nil || n != 0 {
		t.Errorf("Read(3 bytes) = %d, %v, want 0, nil", n, err)
	}
	if n, err := m.Read(make([]byte, 7)); err != nil || n != 4 {
		t.Errorf("Read(7 bytes) = %d, %v, want 4, nil", n, err)
	}
}

func TestMixer_BackpressureBounded(t *testing.T) {
	sleeps := 0
	m, err := NewMixer(Options{
		InputRate:    48000,
		OutputRate:   48000,
		FrameRate:    48000,
		BufferFrames: 8,
		MaxRetries:   3,
		Sleep:        func(time.Duration) { sleeps++ },
	})
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	if m.Capacity() != 8 {
		t.Fatalf("capacity: got %d, want 8", m.Capacity())
	}

	full := make([]Frame, 8)
	for i := range full {
		full[i] = Frame{7, 7}
	}
	m.Batch(full)
	if m.Occupancy() != 100 || sleeps != 0 {
		t.Fatalf("after fill: occupancy %d sleeps %d, want 100 0", m.Occupancy(), sleeps)
	}

	// input is always accepted
	if consumed := m.Batch([]Frame{{100, 100}, {101, 101}}); consumed != 2 {
		t.Errorf("consumed: got %d, want 2", consumed)
	}
	if sleeps != 3 {
		t.Errorf("sleeps: got %d, want 3", sleeps)
	}

	st := m.Stats()
	if st.BackpressureWaits != 3 || st.Overflows != 1 {
		t.Errorf("waits %d overflows %d, want 3 1", st.BackpressureWaits, st.Overflows)
	}
	// every frame past capacity replaced an unread one
	if st.Dropped == 0 || st.Dropped != st.Written-8 {
		t.Errorf("dropped: got %d, want %d", st.Dropped, st.Written-8)
	}
	if m.Occupancy() != 100 {
		t.Errorf("occupancy: got %d, want 100", m.Occupancy())
	}
}

func TestMixer_BackpressureRelievedByConsumer(t *testing.T) {
	var m *Mixer
	sleeps := 0
	m, err := NewMixer(Options{
		InputRate:    48000,
		OutputRate:   48000,
		FrameRate:    48000,
		BufferFrames: 8,
		Sleep: func(time.Duration) {
			sleeps++
			// the device drains while the producer waits
			_, _ = m.Read(make([]byte, 4*4))
		},
	})
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}

	m.Batch(make([]Frame, 8))
	m.Batch(make([]Frame, 3))

	if sleeps != 1 {
		t.Errorf("sleeps: got %d, want 1", sleeps)
	}
	st := m.Stats()
	if st.Overflows != 0 || st.Dropped != 0 {
		t.Errorf("overflows %d dropped %d, want 0 0", st.Overflows, st.Dropped)
	}
}

func simulate(m *Mixer, ticks int) []int {
	in := make([]Frame, 735)
	for i := range in {
		in[i] = Frame{L: int16(i), R: int16(-i)}
	}
	p := make([]byte, 800*4)
	occupancy := make([]int, 0, ticks)
	for i := 0; i < ticks; i++ {
		m.Batch(in)
		_, _ = m.Read(p)
		occupancy = append(occupancy, m.Occupancy())
	}
	return occupancy
}

func TestMixer_DriftConvergesFromEmpty(t *testing.T) {
	m := newTestMixer(t, 44100, 48000, 60)
	checkOccupancyBand(t, simulate(m, 2000), 1500)
}

func TestMixer_DriftConvergesFromFull(t *testing.T) {
	m := newTestMixer(t, 44100, 48000, 60)
	for m.Occupancy() < 99 {
		m.Batch(make([]Frame, 735))
	}
	occ := simulate(m, 2000)
	if occ[0] >= 100 {
		t.Errorf("first tick occupancy %d%%, want below 100", occ[0])
	}
	checkOccupancyBand(t, occ, 1500)
}

func TestMixer_Reset(t *testing.T) {
	m := newTestMixer(t, 44100, 48000, 60)
	m.Batch(make([]Frame, 500))
	if m.Occupancy() == 0 {
		t.Fatal("occupancy 0 after batch")
	}

	m.Reset()
	if m.Occupancy() != 0 {
		t.Errorf("occupancy after reset: got %d, want 0", m.Occupancy())
	}

	// resampler history cleared: the next frame passes through
	var out FrameSlice
	m.resampler.Resample(&out, []Frame{{9, 9}}, 1.0)
	if want := []Frame{{9, 9}}; !slices.Equal([]Frame(out), want) {
		t.Errorf("after reset: got %v, want %v", out, want)
	}
}

func TestMixer_SetRates(t *testing.T) {
	m := newTestMixer(t, 44100, 48000, 60)
	m.Batch(make([]Frame, 100))

	if err := m.SetRates(48000, 50); err != nil {
		t.Fatalf("SetRates: %v", err)
	}
	if m.Capacity() != 4800 || m.Occupancy() != 0 {
		t.Errorf("capacity %d occupancy %d, want 4800 0", m.Capacity(), m.Occupancy())
	}
	if in, out := m.resampler.Rates(); in != 48000 || out != 48000 {
		t.Errorf("rates: got %d->%d, want 48000->48000", in, out)
	}

	if err := m.SetRates(0, 60); !errors.Is(err, ErrRate) {
		t.Errorf("SetRates(0, 60): got %v, want ErrRate", err)
	}
	if err := m.SetRates(48000, 0.0001); !errors.Is(err, ErrCapacity) {
		t.Errorf("SetRates(48000, 0.0001): got %v, want ErrCapacity", err)
	}
	// failed resize keeps previous state
	if m.Capacity() != 4800 {
		t.Errorf("capacity after failed resize: got %d, want 4800", m.Capacity())
	}
}

func TestMixer_SetOutputRate(t *testing.T) {
	m := newTestMixer(t, 44100, 48000, 60)
	m.Batch(make([]Frame, 100))
	before := m.Occupancy()

	if err := m.SetOutputRate(44100); err != nil {
		t.Fatalf("SetOutputRate: %v", err)
	}
	if m.OutputRate() != 44100 {
		t.Errorf("output rate: got %d, want 44100", m.OutputRate())
	}
	// buffered audio survives a device rate change
	if m.Occupancy() != before {
		t.Errorf("occupancy: got %d, want %d", m.Occupancy(), before)
	}
	if in, out := m.resampler.Rates(); in != 44100 || out != 44100 {
		t.Errorf("rates: got %d->%d, want 44100->44100", in, out)
	}

	if err := m.SetOutputRate(0); !errors.Is(err, ErrRate) {
		t.Errorf("SetOutputRate(0): got %v, want ErrRate", err)
	}
	if m.OutputRate() != 44100 {
		t.Errorf("output rate after failure: got %d, want 44100", m.OutputRate())
	}
}

func TestMixer_ConcurrentProducerConsumer(t *testing.T) {
	m, err := NewMixer(Options{InputRate: 44100, OutputRate: 48000, FrameRate: 60})
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p := make([]byte, 512*4)
		for i := 0; i < 500; i++ {
			_, _ = m.Read(p)
		}
	}()

	in := make([]Frame, 735)
	for i := 0; i < 200; i++ {
		m.Batch(in)
	}
	<-done

	if st := m.Stats(); st.Consumed != 200*735 {
		t.Errorf("consumed: got %d, want %d", st.Consumed, 200*735)
	}
}
