package atlas

import (
	"image"
	"image/color"
)

// SheetSize is the @1x sheet extent. Every base rectangle fits inside it.
var SheetSize = image.Pt(122, 84)

// colorAlert marks low battery states.
var colorAlert = color.NRGBA{R: 0xFF, G: 0x33, B: 0x33, A: 0xFF}

type shape int

const (
	shapeCircle shape = iota
	shapeRounded
	shapeRect
	shapeOutline
	shapeSun
	shapeSpeaker
	shapeArrowUp
	shapeArrowDown
	shapeBars
)

var shapes = [AssetCount]shape{
	WhitePill:      shapeCircle,
	BlackPill:      shapeCircle,
	DarkGrayPill:   shapeCircle,
	Option:         shapeRounded,
	Button:         shapeCircle,
	PageBG:         shapeRounded,
	StateBG:        shapeRounded,
	Page:           shapeCircle,
	Bar:            shapeCircle,
	BarBG:          shapeCircle,
	BarBGMenu:      shapeCircle,
	Underline:      shapeCircle,
	Dot:            shapeCircle,
	Brightness:     shapeSun,
	VolumeMute:     shapeSpeaker,
	Volume:         shapeSpeaker,
	Battery:        shapeOutline,
	BatteryLow:     shapeOutline,
	BatteryFill:    shapeRect,
	BatteryFillLow: shapeRect,
	BatteryBolt:    shapeRect,
	ScrollUp:       shapeArrowUp,
	ScrollDown:     shapeArrowDown,
	Wifi:           shapeBars,
	Hole:           shapeCircle,
}

// RenderSheet draws a plain sheet for a tier from simple shapes. It lets
// the engine run without shipped artwork; sprites sit at the same
// rectangles as on a real sheet.
func RenderSheet(tier int) *image.NRGBA {
	if tier < MinTier {
		tier = MinTier
	}
	sheet := image.NewNRGBA(image.Rect(0, 0, SheetSize.X*tier, SheetSize.Y*tier))
	for id := AssetID(0); id < AssetCount; id++ {
		renderAsset(sheet, id, BaseRect(id, tier))
	}
	return sheet
}

func assetColor(id AssetID) color.NRGBA {
	switch id {
	case BatteryLow, BatteryFillLow:
		return colorAlert
	}
	if c, ok := FillColor(id); ok {
		return c
	}
	return ColorWhite
}

func renderAsset(img *image.NRGBA, id AssetID, r image.Rectangle) {
	c := assetColor(id)
	w, h := r.Dx(), r.Dy()
	inside := func(x, y int) bool { return true }

	switch shapes[id] {
	case shapeCircle:
		inside = func(x, y int) bool { return inEllipse(x, y, w, h) }
	case shapeRounded:
		radius := min(w, h) / 4
		inside = func(x, y int) bool { return inRounded(x, y, w, h, radius) }
	case shapeOutline:
		// body with a one-unit border and a nub on the right
		t := max(1, h/10)
		nub := max(1, w/17)
		inside = func(x, y int) bool {
			if x >= w-nub {
				return y >= h/3 && y < h-h/3
			}
			return x < t || x >= w-nub-t || y < t || y >= h-t
		}
	case shapeSun:
		inside = func(x, y int) bool {
			if inEllipse(x*2-w/2, y*2-h/2, w, h) {
				return true
			}
			ray := x == w/2 || y == h/2 || x == y || x == w-1-y
			return ray && inEllipse(x, y, w, h)
		}
	case shapeSpeaker:
		body := min(w, h*10/16)
		inside = func(x, y int) bool {
			if x < body {
				// cone widens to the right
				half := h/4 + x*h/(4*max(1, body))
				return y >= h/2-half && y < h/2+half
			}
			// waves: vertical strokes every few columns
			gap := max(2, (w-body)/3)
			return (x-body)%gap == gap-1 && y >= h/4 && y < h-h/4
		}
	case shapeArrowUp:
		inside = func(x, y int) bool { return inTriangle(x, y, w, h, true) }
	case shapeArrowDown:
		inside = func(x, y int) bool { return inTriangle(x, y, w, h, false) }
	case shapeBars:
		inside = func(x, y int) bool {
			bar := x * 3 / max(1, w)
			return y >= h-(bar+1)*h/3 && x%max(1, w/3) < max(1, w/3)-1
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if inside(x, y) {
				img.SetNRGBA(r.Min.X+x, r.Min.Y+y, c)
			}
		}
	}
}

// inEllipse tests the pixel center against the ellipse inscribed in w x h.
func inEllipse(x, y, w, h int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	dx := (float64(x) + 0.5 - float64(w)/2) / (float64(w) / 2)
	dy := (float64(y) + 0.5 - float64(h)/2) / (float64(h) / 2)
	return dx*dx+dy*dy <= 1
}

func inRounded(x, y, w, h, radius int) bool {
	if radius <= 0 {
		return true
	}
	cx := x
	if x >= w-radius {
		cx = x - (w - 2*radius)
	} else if x >= radius {
		return true
	}
	cy := y
	if y >= h-radius {
		cy = y - (h - 2*radius)
	} else if y >= radius {
		return true
	}
	return inEllipse(cx, cy, 2*radius, 2*radius)
}

func inTriangle(x, y, w, h int, up bool) bool {
	if !up {
		y = h - 1 - y
	}
	half := (y + 1) * w / (2 * h)
	return x >= w/2-half && x < w/2+half
}

// GeneratedSource serves RenderSheet for every tier.
type GeneratedSource struct{}

// Open implements Source.
func (GeneratedSource) Open(tier int) (image.Image, error) {
	return RenderSheet(tier), nil
}
