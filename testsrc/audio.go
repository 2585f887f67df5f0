package testsrc

import "math"

const (
	psgGain     = 1898.0
	lpfCutoffHz = 2840.0
)

// lowPassAlpha is the smoothing factor for a first-order RC low-pass at
// rate Hz: alpha = dt / (RC + dt) where RC = 1/(2*pi*fc).
func lowPassAlpha(rate int) float64 {
	return 1.0 / (float64(rate)/(2*math.Pi*lpfCutoffHz) + 1)
}

// melody is a looping arpeggio in Hz, one note per step.
var melody = [...]float64{261.63, 329.63, 392.00, 523.25, 392.00, 329.63}

// noteFrames is how many video frames each melody note lasts.
const noteFrames = 12

// toneRegister converts a frequency to the 10-bit SN76489 tone divider.
func toneRegister(clockHz int, hz float64) int {
	n := int(float64(clockHz)/(32*hz) + 0.5)
	if n < 1 {
		n = 1
	}
	if n > 0x3FF {
		n = 0x3FF
	}
	return n
}

// writeTone latches a tone divider and attenuation for a channel.
func (s *Source) writeTone(ch, divider, attenuation int) {
	base := byte(ch << 5)
	s.psg.Write(0x80 | base | byte(divider&0x0F))
	s.psg.Write(byte(divider>>4) & 0x3F)
	s.psg.Write(0x90 | base | byte(attenuation&0x0F))
}

// sequence advances the melody on note boundaries. Channel 0 plays the
// note, channel 1 doubles it an octave down, quieter.
func (s *Source) sequence() {
	if s.frame%noteFrames != 0 {
		return
	}
	hz := melody[(s.frame/noteFrames)%uint64(len(melody))]
	s.writeTone(0, toneRegister(s.timing.PSGClockHz, hz), 2)
	s.writeTone(1, toneRegister(s.timing.PSGClockHz, hz/2), 6)
}

// mixAudio collects the PSG output for the frame into the stereo buffer.
// The PSG is mono; the right channel is attenuated slightly so the two
// channels differ.
func (s *Source) mixAudio() {
	buf, count := s.psg.GetBuffer()
	for i := 0; i < count; i++ {
		v := clampInt32(int32(buf[i]), -32768, 32767)
		s.audio = append(s.audio, int16(v), int16(v*7/8))
	}
	s.applyLowPass()
}

// applyLowPass filters the stereo buffer per channel with state carried
// across frames.
func (s *Source) applyLowPass() {
	for i := 0; i < len(s.audio); i += 2 {
		s.prevL = s.alpha*float64(s.audio[i]) + (1-s.alpha)*s.prevL
		s.prevR = s.alpha*float64(s.audio[i+1]) + (1-s.alpha)*s.prevR
		s.audio[i] = int16(math.Round(s.prevL))
		s.audio[i+1] = int16(math.Round(s.prevR))
	}
}

func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
