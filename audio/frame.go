// Package audio moves emulated audio from the producer to the output
// device: a fixed-point linear resampler, a frame ring buffer and a mixer
// that keeps the buffer near half full by nudging the resampling ratio.
package audio

// Frame is one stereo sample pair.
type Frame struct {
	L, R int16
}

// FrameWriter accepts resampled frames.
type FrameWriter interface {
	WriteFrame(f Frame)
}

// FrameSlice collects frames in memory.
type FrameSlice []Frame

// WriteFrame implements FrameWriter.
func (s *FrameSlice) WriteFrame(f Frame) {
	*s = append(*s, f)
}

// Deinterleave converts L/R interleaved samples into frames, appending
// to dst. A trailing odd sample is ignored.
func Deinterleave(dst []Frame, samples []int16) []Frame {
	for i := 0; i+1 < len(samples); i += 2 {
		dst = append(dst, Frame{L: samples[i], R: samples[i+1]})
	}
	return dst
}

// Interleave converts frames into L/R interleaved samples, appending to dst.
func Interleave(dst []int16, frames []Frame) []int16 {
	for _, f := range frames {
		dst = append(dst, f.L, f.R)
	}
	return dst
}
