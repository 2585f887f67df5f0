package audio

const (
	fracBits = 16
	fracOne  = 1 << fracBits
)

// Resampler converts between sample rates by linear interpolation with a
// 16.16 fixed-point cursor.
//
// The first frame after a reset is passed through unchanged. Every later
// input frame emits the outputs whose positions fall in (prev, curr], so
// equal rates are an exact identity with no added latency.
type Resampler struct {
	inRate  int
	outRate int
	step    uint32

	pos     uint32
	prev    Frame
	hasPrev bool
}

// NewResampler returns a resampler from inRate to outRate Hz.
func NewResampler(inRate, outRate int) *Resampler {
	r := &Resampler{}
	r.SetRates(inRate, outRate)
	return r
}

// SetRates changes the conversion ratio and resets the stream.
func (r *Resampler) SetRates(inRate, outRate int) {
	r.inRate = inRate
	r.outRate = outRate
	if outRate <= 0 || inRate <= 0 {
		r.step = fracOne
	} else {
		r.step = uint32((uint64(inRate) << fracBits) / uint64(outRate))
	}
	r.Reset()
}

// Reset forgets stream history. Call on a discontinuity such as a seek
// or a state load.
func (r *Resampler) Reset() {
	r.pos = 0
	r.prev = Frame{}
	r.hasPrev = false
}

// Step returns the unadjusted 16.16 step per output frame.
func (r *Resampler) Step() uint32 {
	return r.step
}

// Rates returns the configured input and output rates.
func (r *Resampler) Rates() (in, out int) {
	return r.inRate, r.outRate
}

// Estimate predicts how many output frames n input frames will produce
// with the given rate adjustment.
func (r *Resampler) Estimate(n int, adjust float64) int {
	if r.inRate <= 0 || r.outRate <= 0 || adjust <= 0 {
		return n
	}
	ratio := float64(r.outRate) / float64(r.inRate)
	return int(float64(n)*ratio/adjust + 0.5)
}

// adjustedStep scales the step by adjust, bounded to half and double the
// base step.
func (r *Resampler) adjustedStep(adjust float64) uint32 {
	if adjust <= 0 {
		return r.step
	}
	s := uint32(float64(r.step) * adjust)
	lo, hi := r.step>>1, r.step<<1
	if s < lo {
		s = lo
	}
	if s > hi {
		s = hi
	}
	return s
}

// Resample writes the resampled form of frames to w. adjust > 1 consumes
// input faster (fewer outputs), adjust < 1 slower. All input is consumed.
func (r *Resampler) Resample(w FrameWriter, frames []Frame, adjust float64) (written, consumed int) {
	step := r.adjustedStep(adjust)

	for _, curr := range frames {
		if !r.hasPrev {
			w.WriteFrame(curr)
			written++
			r.prev = curr
			r.hasPrev = true
			r.pos = step
			continue
		}

		for r.pos <= fracOne {
			w.WriteFrame(Frame{
				L: lerp(r.prev.L, curr.L, r.pos),
				R: lerp(r.prev.R, curr.R, r.pos),
			})
			written++
			r.pos += step
		}
		r.pos -= fracOne
		r.prev = curr
	}
	return written, len(frames)
}

// Needed reports whether converting between the rates does anything.
func Needed(inRate, outRate int) bool {
	return inRate != outRate
}

func lerp(a, b int16, frac uint32) int16 {
	diff := int64(b) - int64(a)
	return int16(int64(a) + (diff*int64(frac))>>fracBits)
}
