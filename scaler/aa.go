package scaler

import (
	"fmt"
	"math"
)

// AAScaler rescales RGB565 frames using five blend zones per axis: pure a,
// 3:1, 1:1, 1:3, pure b. It uses integer arithmetic only and does not
// allocate after construction.
type AAScaler struct {
	srcW, srcH int
	dstW, dstH int

	wRatioIn, wRatioOut int
	wBP                 [2]int
	hRatioIn, hRatioOut int
	hBP                 [2]int

	blend []uint16
}

// NewAAScaler prepares a scaler for the given source and destination
// dimensions.
func NewAAScaler(srcW, srcH, dstW, dstH int) (*AAScaler, error) {
	s := &AAScaler{}
	if err := s.Reconfigure(srcW, srcH, dstW, dstH); err != nil {
		return nil, err
	}
	return s, nil
}

// Reconfigure recomputes ratios for new dimensions. The scratch line is
// reallocated only when the source width grows. On error the previous
// configuration is kept.
func (s *AAScaler) Reconfigure(srcW, srcH, dstW, dstH int) error {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return fmt.Errorf("%w: scale %dx%d to %dx%d", ErrSurface, srcW, srcH, dstW, dstH)
	}

	// Blend zones are narrower when shrinking so edges stay sharp.
	denom := 2.5
	if srcW > dstW {
		denom = 5
	}

	g := gcd(srcW, dstW)
	wIn, wOut := srcW/g, dstW/g
	g = gcd(srcH, dstH)
	hIn, hOut := srcH/g, dstH/g

	if cap(s.blend) < srcW {
		s.blend = make([]uint16, srcW)
	}
	s.blend = s.blend[:srcW]

	s.srcW, s.srcH, s.dstW, s.dstH = srcW, srcH, dstW, dstH
	s.wRatioIn, s.wRatioOut = wIn, wOut
	s.wBP = [2]int{int(math.Round(float64(wOut) / denom)), wOut >> 1}
	s.hRatioIn, s.hRatioOut = hIn, hOut
	s.hBP = [2]int{int(math.Round(float64(hOut) / denom)), hOut >> 1}
	return nil
}

// SourceSize returns the configured source dimensions.
func (s *AAScaler) SourceSize() (int, int) { return s.srcW, s.srcH }

// DestSize returns the configured destination dimensions.
func (s *AAScaler) DestSize() (int, int) { return s.dstW, s.dstH }

// Scale writes the rescaled src into dst. Pitches are in pixels.
func (s *AAScaler) Scale(dst []uint16, dstPitch int, src []uint16, srcPitch int) error {
	if srcPitch < s.srcW || len(src) < (s.srcH-1)*srcPitch+s.srcW {
		return fmt.Errorf("%w: source buffer too small", ErrSurface)
	}
	if dstPitch < s.dstW || len(dst) < (s.dstH-1)*dstPitch+s.dstW {
		return fmt.Errorf("%w: destination buffer too small", ErrSurface)
	}

	ratW, ratDstW := s.wRatioIn, s.wRatioOut
	ratH, ratDstH := s.hRatioIn, s.hRatioOut
	bw, bh := s.wBP, s.hBP
	w := s.srcW
	last := w - 1

	dy := 0
	dstRow := 0
	for line := 0; line < s.srcH; line++ {
		cur := src[line*srcPitch : line*srcPitch+w]
		next := cur
		if line+1 < s.srcH {
			next = src[(line+1)*srcPitch : (line+1)*srcPitch+w]
		}

		for dy < ratDstH {
			var row []uint16
			switch {
			case dy > ratDstH-bh[0]:
				row = next
			case dy <= bh[0]:
				row = cur
			default:
				a, b := cur, next
				if dy <= bh[1] {
					a, b = b, a
				}
				blendRows(s.blend, a, b, dy > ratDstH-bh[1] || dy <= bh[1])
				row = s.blend
			}

			out := dst[dstRow*dstPitch : dstRow*dstPitch+s.dstW]
			o := 0
			dx := 0
			for x := 0; x < w; x++ {
				a := row[x]
				b := a
				if x < last {
					b = row[x+1]
				}

				for dx < ratDstW {
					var p uint16
					switch {
					case a == b:
						p = a
					case dx > ratDstW-bw[0]:
						p = b
					case dx <= bw[0]:
						p = a
					default:
						if dx > ratDstW-bw[1] {
							a = average565(a, b)
						} else if dx <= bw[1] {
							b = average565(a, b)
						}
						p = average565(a, b)
					}
					out[o] = p
					o++
					dx += ratW
				}
				dx -= ratDstW
			}

			dy += ratH
			dstRow++
		}
		dy -= ratDstH
	}
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
