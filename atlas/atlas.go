// Package atlas builds the UI sprite sheet for a display: it loads the
// closest pre-rendered tier and rescales every sprite so pills and
// buttons land on exact physical pixel sizes.
package atlas

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	"github.com/user-none/avout/layout"
	"github.com/user-none/avout/scaler"
)

// ErrSheetTooSmall is returned when a loaded sheet does not contain every
// sprite rectangle of its tier.
var ErrSheetTooSmall = errors.New("asset sheet too small")

// gutter is the transparent border kept between packed sprites.
const gutter = 1

// Atlas is the prepared sprite sheet and the location of every sprite on
// it. It is read-only after Build.
type Atlas struct {
	Sheet  *image.NRGBA
	Tier   int
	Scaled bool

	rects [AssetCount]image.Rectangle
}

// Rect returns the sprite's rectangle on Sheet.
func (a *Atlas) Rect(id AssetID) image.Rectangle {
	return a.rects[id]
}

// SubImage returns the sprite as an image sharing Sheet's pixels.
func (a *Atlas) SubImage(id AssetID) *image.NRGBA {
	return a.Sheet.SubImage(a.rects[id]).(*image.NRGBA)
}

// Build loads the tier for l's dp scale from src and produces the atlas.
func Build(l layout.DisplayLayout, src Source) (*Atlas, error) {
	tier := SelectTier(l.Scale)

	img, err := src.Open(tier)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: tier %d returned no image", ErrMissingTier, tier)
	}
	sheet := toNRGBA(img)

	a := &Atlas{Tier: tier}
	bounds := sheet.Bounds()
	for id := AssetID(0); id < AssetCount; id++ {
		r := BaseRect(id, tier)
		if !r.In(bounds) {
			return nil, fmt.Errorf("%w: %v at %v outside %v (tier %d)", ErrSheetTooSmall, id, r, bounds, tier)
		}
		a.rects[id] = r
	}

	if l.Scale == float64(tier) && a.fits(l) {
		a.Sheet = sheet
		log.Info().Int("tier", tier).Float64("dp_scale", l.Scale).Msg("using asset sheet as-is")
		return a, nil
	}

	if err := a.rescale(sheet, l); err != nil {
		return nil, err
	}
	log.Info().
		Int("tier", tier).
		Float64("dp_scale", l.Scale).
		Int("assets", int(AssetCount)).
		Int("sheet_w", a.Sheet.Bounds().Dx()).
		Int("sheet_h", a.Sheet.Bounds().Dy()).
		Msg("rescaled asset sheet")
	return a, nil
}

// TargetSize returns the physical size of a sprite whose tier rectangle
// has size (w, h), for the given ratio from tier to dp scale.
func TargetSize(id AssetID, w, h int, ratio float64, l layout.DisplayLayout) (int, int) {
	switch ClassOf(id) {
	case ClassPill:
		return l.PillPx(), l.PillPx()
	case ClassButton:
		return l.ButtonPx(), l.ButtonPx()
	}

	tw := int(float64(w)*ratio + 0.5)
	th := int(float64(h)*ratio + 0.5)
	if ClassOf(id) == ClassCenteredIcon {
		pill := l.PillPx()
		if (pill-tw)%2 != 0 {
			tw++
		}
		if (pill-th)%2 != 0 {
			th++
		}
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

// fits reports whether every tier sprite already has the size l needs.
func (a *Atlas) fits(l layout.DisplayLayout) bool {
	for id := AssetID(0); id < AssetCount; id++ {
		r := a.rects[id]
		if w, h := TargetSize(id, r.Dx(), r.Dy(), 1, l); w != r.Dx() || h != r.Dy() {
			return false
		}
	}
	return true
}

func (a *Atlas) rescale(sheet *image.NRGBA, l layout.DisplayLayout) error {
	ratio := l.Scale / float64(a.Tier)

	var scaled [AssetCount]*image.NRGBA
	var sizes [AssetCount]image.Point
	for id := AssetID(0); id < AssetCount; id++ {
		r := a.rects[id]
		tw, th := TargetSize(id, r.Dx(), r.Dy(), ratio, l)

		extracted := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		copyNRGBA(extracted, image.Point{}, sheet, r)

		img, err := scaler.BilinearNRGBA(extracted, tw, th)
		if err != nil {
			return fmt.Errorf("scale %v: %w", id, err)
		}
		scaled[id] = img
		sizes[id] = image.Pt(tw, th)
	}

	width := int(float64(sheet.Bounds().Dx())*ratio + 0.5)
	placed, extent := pack(sizes, width)

	out := image.NewNRGBA(image.Rectangle{Max: extent})
	for id := AssetID(0); id < AssetCount; id++ {
		copyNRGBA(out, placed[id].Min, scaled[id], scaled[id].Bounds())
	}

	a.Sheet = out
	a.rects = placed
	a.Scaled = true
	return nil
}

// pack lays sprites out left to right in rows no wider than width,
// starting a new row when the next sprite does not fit. Every sprite is
// surrounded by at least gutter transparent pixels, so no two overlap.
func pack(sizes [AssetCount]image.Point, width int) ([AssetCount]image.Rectangle, image.Point) {
	var placed [AssetCount]image.Rectangle
	var extent image.Point
	x, y, rowH := gutter, gutter, 0
	for id, s := range sizes {
		if x > gutter && x+s.X+gutter > width {
			x = gutter
			y += rowH + gutter
			rowH = 0
		}
		placed[id] = image.Rect(x, y, x+s.X, y+s.Y)
		x += s.X + gutter
		rowH = max(rowH, s.Y)
		extent.X = max(extent.X, x)
		extent.Y = max(extent.Y, y+s.Y+gutter)
	}
	return placed, extent
}

// toNRGBA returns img as non-premultiplied RGBA. Conversion uses the Src
// operator so transparent pixels stay transparent.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(out, image.Point{}, img, b, xdraw.Src, nil)
	return out
}

// copyNRGBA copies the sr region of src to dst at dp, byte for byte. No
// blending takes place; alpha is copied like any other channel.
func copyNRGBA(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sr image.Rectangle) {
	dr := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}.Intersect(dst.Bounds())
	if dr.Empty() {
		return
	}
	sp := sr.Min.Add(dr.Min.Sub(dp))
	n := dr.Dx() * 4
	for y := 0; y < dr.Dy(); y++ {
		d := dst.PixOffset(dr.Min.X, dr.Min.Y+y)
		s := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[d:d+n], src.Pix[s:s+n])
	}
}
