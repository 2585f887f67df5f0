// Package scaler implements the pixel scalers: a bilinear filter for
// 8-bit-per-channel surfaces used when preparing UI assets, and an
// integer-only anti-aliased scaler for RGB565 frames on the per-frame path.
package scaler

import (
	"errors"
	"fmt"
	"image"
)

// ErrSurface is returned when a surface description does not match its
// pixel buffer or the two surfaces of an operation are incompatible.
var ErrSurface = errors.New("invalid surface")

// Surface describes a packed pixel buffer with 3 (RGB) or 4 (RGBA) bytes
// per pixel. Stride is in bytes.
type Surface struct {
	Pix    []byte
	W, H   int
	Stride int
	BPP    int
}

// NewSurface allocates a tightly packed surface.
func NewSurface(w, h, bpp int) Surface {
	return Surface{
		Pix:    make([]byte, w*h*bpp),
		W:      w,
		H:      h,
		Stride: w * bpp,
		BPP:    bpp,
	}
}

// SurfaceOf wraps an NRGBA image without copying.
func SurfaceOf(img *image.NRGBA) Surface {
	b := img.Bounds()
	return Surface{
		Pix:    img.Pix,
		W:      b.Dx(),
		H:      b.Dy(),
		Stride: img.Stride,
		BPP:    4,
	}
}

func (s Surface) validate() error {
	if s.BPP != 3 && s.BPP != 4 {
		return fmt.Errorf("%w: %d bytes per pixel", ErrSurface, s.BPP)
	}
	if s.W <= 0 || s.H <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSurface, s.W, s.H)
	}
	if s.Stride < s.W*s.BPP || len(s.Pix) < (s.H-1)*s.Stride+s.W*s.BPP {
		return fmt.Errorf("%w: buffer too small for %dx%d stride %d", ErrSurface, s.W, s.H, s.Stride)
	}
	return nil
}

// Bilinear resamples src into dst. The destination dimensions determine
// the scale. Every channel, alpha included, is interpolated independently
// so the result is a direct channel copy with no compositing.
func Bilinear(dst, src Surface) error {
	if err := src.validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dst.validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if src.BPP != dst.BPP {
		return fmt.Errorf("%w: bpp mismatch %d != %d", ErrSurface, src.BPP, dst.BPP)
	}

	bpp := src.BPP
	xRatio := float64(src.W) / float64(dst.W)
	yRatio := float64(src.H) / float64(dst.H)

	for y := 0; y < dst.H; y++ {
		sy := float64(y) * yRatio
		y1 := int(sy)
		y2 := y1 + 1
		if y2 >= src.H {
			y2 = y1
		}
		yFrac := sy - float64(y1)

		row1 := src.Pix[y1*src.Stride:]
		row2 := src.Pix[y2*src.Stride:]
		out := dst.Pix[y*dst.Stride:]

		for x := 0; x < dst.W; x++ {
			sx := float64(x) * xRatio
			x1 := int(sx)
			x2 := x1 + 1
			if x2 >= src.W {
				x2 = x1
			}
			xFrac := sx - float64(x1)

			p11 := row1[x1*bpp:]
			p12 := row1[x2*bpp:]
			p21 := row2[x1*bpp:]
			p22 := row2[x2*bpp:]
			d := out[x*bpp:]

			for c := 0; c < bpp; c++ {
				top := float64(p11[c])*(1-xFrac) + float64(p12[c])*xFrac
				bottom := float64(p21[c])*(1-xFrac) + float64(p22[c])*xFrac
				d[c] = uint8(top*(1-yFrac) + bottom*yFrac + 0.5)
			}
		}
	}
	return nil
}

// BilinearNRGBA returns src resampled to w x h.
func BilinearNRGBA(src *image.NRGBA, w, h int) (*image.NRGBA, error) {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := Bilinear(SurfaceOf(dst), SurfaceOf(src)); err != nil {
		return nil, err
	}
	return dst, nil
}

// ScaleToFit shrinks src proportionally so it fits within maxW x maxH.
// An image that already fits is returned unchanged.
func ScaleToFit(src *image.NRGBA, maxW, maxH int) (*image.NRGBA, error) {
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src, nil
	}

	scaleW := float64(maxW) / float64(b.Dx())
	scaleH := float64(maxH) / float64(b.Dy())
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return BilinearNRGBA(src, w, h)
}
