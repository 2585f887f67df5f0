package cli

import (
	"errors"
	"testing"
	"time"

	emucore "github.com/user-none/eblitui/api"

	"github.com/user-none/avout/audio"
	"github.com/user-none/avout/pacer"
	"github.com/user-none/avout/testsrc"
	"github.com/user-none/avout/ui"
)

type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.sleeps++ }

// solidSource produces a constant frame and, optionally, no audio.
type solidSource struct {
	w, h    int
	pixel   uint16
	silent  bool
	frames  int
	samples []int16
	pix     []uint16
}

func newSolidSource(w, h int, pixel uint16, silent bool) *solidSource {
	s := &solidSource{w: w, h: h, pixel: pixel, silent: silent, pix: make([]uint16, w*h)}
	for i := range s.pix {
		s.pix[i] = pixel
	}
	if !silent {
		s.samples = make([]int16, 735*2)
	}
	return s
}

func (s *solidSource) RunFrame()                 { s.frames++ }
func (s *solidSource) Framebuffer() []uint16     { return s.pix }
func (s *solidSource) Size() (int, int)          { return s.w, s.h }
func (s *solidSource) AudioSamples() []int16     { return s.samples }
func (s *solidSource) GetTiming() emucore.Timing { return emucore.Timing{FPS: 60, Scanlines: 262} }

func newTestRunner(t *testing.T, src Source, frameSkip bool) (*Runner, *ui.SharedFramebuffer) {
	t.Helper()
	mixer, err := audio.NewMixer(audio.Options{
		InputRate:  44100,
		OutputRate: 48000,
		FrameRate:  60,
		MaxRetries: 1,
		Sleep:      func(time.Duration) {},
	})
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	fb := ui.NewSharedFramebuffer(64, 48)
	p := pacer.New(pacer.ModeOff, pacer.BudgetFor(60), nil, &fakeClock{now: time.Unix(0, 0)})

	r, err := NewRunner(Options{
		Source:      src,
		Mixer:       mixer,
		Pacer:       p,
		Framebuffer: fb,
		Width:       64,
		Height:      48,
		FrameSkip:   frameSkip,
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r, fb
}

func TestNewRunnerValidates(t *testing.T) {
	if _, err := NewRunner(Options{}); !errors.Is(err, ErrOptions) {
		t.Errorf("empty options: err = %v, want ErrOptions", err)
	}

	mixer, err := audio.NewMixer(audio.Options{InputRate: 44100, OutputRate: 48000, FrameRate: 60})
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	_, err = NewRunner(Options{
		Source:      newSolidSource(32, 32, 0, true),
		Mixer:       mixer,
		Pacer:       pacer.New(pacer.ModeOff, 0, nil, nil),
		Framebuffer: ui.NewSharedFramebuffer(1, 1),
	})
	if err == nil {
		t.Error("zero output size accepted")
	}
}

func TestStepPresentsScaledFrame(t *testing.T) {
	src := newSolidSource(32, 24, 0xF800, false)
	r, fb := newTestRunner(t, src, false)

	r.step()

	pixels, w, h, seq := fb.Read()
	if w != 64 || h != 48 || seq != 1 {
		t.Fatalf("frame %dx%d seq %d, want 64x48 seq 1", w, h, seq)
	}
	for i, p := range pixels {
		if p != 0xF800 {
			t.Fatalf("pixel %d = %#04x, want 0xF800", i, p)
		}
	}
	st := r.Stats()
	if st.Frames != 1 || st.Presented != 1 || st.Skipped != 0 {
		t.Errorf("stats = %+v", st)
	}
	if r.mixer.Stats().Consumed != 735 {
		t.Errorf("audio consumed = %d, want 735", r.mixer.Stats().Consumed)
	}
}

func TestStepSkipsWhileAudioStarves(t *testing.T) {
	r, fb := newTestRunner(t, newSolidSource(32, 24, 0x07E0, false), true)

	// the first frame of audio leaves the buffer under the skip threshold
	r.step()
	if st := r.Stats(); st.Skipped != 1 || st.Presented != 0 {
		t.Fatalf("after frame 1: %+v", st)
	}
	if fb.Seq() != 0 {
		t.Error("skipped frame was published")
	}

	r.step()
	if st := r.Stats(); st.Skipped != 1 || st.Presented != 1 {
		t.Errorf("after frame 2: %+v", st)
	}
}

func TestStepSkipRunIsBounded(t *testing.T) {
	r, _ := newTestRunner(t, newSolidSource(32, 24, 0, true), true)
	for i := 0; i < 8; i++ {
		r.step()
	}
	// S S S P S S S P
	if st := r.Stats(); st.Skipped != 6 || st.Presented != 2 {
		t.Errorf("stats = %+v, want 6 skipped 2 presented", st)
	}
}

func TestStartClose(t *testing.T) {
	src, err := testsrc.New(64, 48, testsrc.DefaultSampleRate, testsrc.RegionNTSC)
	if err != nil {
		t.Fatalf("testsrc.New: %v", err)
	}
	r, fb := newTestRunner(t, src, false)
	r.Start()

	deadline := time.After(5 * time.Second)
	for fb.Seq() < 3 {
		select {
		case <-deadline:
			t.Fatal("runner produced no frames")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	r.Close()

	frames := r.Stats().Frames
	time.Sleep(10 * time.Millisecond)
	if r.Stats().Frames != frames {
		t.Error("producer still running after Close")
	}
	if r.Control().ShouldRun() {
		t.Error("control still running after Close")
	}
}
