package atlas

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/user-none/avout/layout"
)

// Composite alpha-blends a sprite onto dst with its top-left corner at
// at. This is the only place sprites are blended; every preparation step
// copies channels directly.
func (a *Atlas) Composite(dst draw.Image, id AssetID, at image.Point) {
	a.compositePart(dst, id, image.Rectangle{Max: a.rects[id].Size()}, at)
}

// compositePart blends the part of a sprite given by r, in sprite-local
// coordinates.
func (a *Atlas) compositePart(dst draw.Image, id AssetID, r image.Rectangle, at image.Point) {
	sr := r.Add(a.rects[id].Min).Intersect(a.rects[id])
	if sr.Empty() {
		return
	}
	dr := image.Rectangle{Min: at, Max: at.Add(sr.Size())}
	xdraw.Draw(dst, dr, a.Sheet, sr.Min, xdraw.Over)
}

// DrawPill draws a horizontal pill filling r: the left half of the cap
// sprite, a solid middle in the sprite's fill color and the right half.
// A zero height uses the sprite height; a width below the height is
// widened to a circle.
func (a *Atlas) DrawPill(dst draw.Image, id AssetID, r image.Rectangle) {
	x, y := r.Min.X, r.Min.Y
	w, h := r.Dx(), r.Dy()
	if h == 0 {
		h = a.rects[id].Dy()
	}
	radius := h / 2
	if w < h {
		w = h
	}
	w -= h

	a.compositePart(dst, id, image.Rect(0, 0, radius, h), image.Pt(x, y))
	x += radius
	if w > 0 {
		if c, ok := FillColor(id); ok {
			xdraw.Draw(dst, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, xdraw.Src)
		}
		x += w
	}
	a.compositePart(dst, id, image.Rect(radius, 0, 2*radius, h), image.Pt(x, y))
}

// DrawLevel draws a level gauge centered in a pill-sized cell at at: the
// battery outline with a fill proportional to percent, right aligned.
// Levels at or below 10% use the low outline, at or below 20% the low
// fill.
func (a *Atlas) DrawLevel(dst draw.Image, l layout.DisplayLayout, at image.Point, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	outline := a.rects[Battery]
	pill := l.PillPx()
	x := at.X + (pill-outline.Dx())/2
	y := at.Y + (pill-outline.Dy())/2

	// fill offsets scale with the outline: 3/17 across, 2/10 down at @1x
	fx := (outline.Dx()*3 + 8) / 17
	fy := (outline.Dy()*2 + 5) / 10

	body := Battery
	if percent <= 10 {
		body = BatteryLow
	}
	a.Composite(dst, body, image.Pt(x, y))

	fill := a.rects[BatteryFill]
	cw := fill.Dx() * percent / 100
	if cw <= 0 {
		return
	}
	cx := fill.Dx() - cw

	id := BatteryFill
	if percent <= 20 {
		id = BatteryFillLow
	}
	a.compositePart(dst, id, image.Rect(cx, 0, cx+cw, a.rects[id].Dy()), image.Pt(x+fx+cx, y+fy))
}
