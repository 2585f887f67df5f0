// Package ebiten presents produced frames through Ebiten and exposes the
// draw cadence as the vsync primitive for frame pacing.
package ebiten

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/user-none/avout/atlas"
	"github.com/user-none/avout/layout"
	"github.com/user-none/avout/scaler"
	"github.com/user-none/avout/ui"
)

// LevelSource reports a 0-100 level for the status overlay, typically
// the audio buffer occupancy.
type LevelSource interface {
	Occupancy() int
}

// Display implements ebiten.Game. It draws the latest shared frame at the
// device resolution, composites the status overlay on top, and signals
// WaitVSync after each draw.
type Display struct {
	fb      *ui.SharedFramebuffer
	control *ui.EmuControl
	atlas   *atlas.Atlas
	layout  layout.DisplayLayout
	levels  LevelSource

	offscreen *ebiten.Image // frame at native resolution
	rgba      []byte        // conversion buffer for offscreen
	lastSeq   uint64
	skipped   atomic.Uint64

	overlay     *ebiten.Image
	overlayRGBA *image.RGBA
	showOverlay bool
	lastLevel   int

	drawOpts ebiten.DrawImageOptions
	vsyncCh  chan struct{}
}

// NewDisplay creates a display for fb. a and levels may be nil, which
// disables the status overlay.
func NewDisplay(fb *ui.SharedFramebuffer, control *ui.EmuControl, a *atlas.Atlas, l layout.DisplayLayout, levels LevelSource) *Display {
	return &Display{
		fb:          fb,
		control:     control,
		atlas:       a,
		layout:      l,
		levels:      levels,
		showOverlay: a != nil && levels != nil,
		lastLevel:   -1,
		vsyncCh:     make(chan struct{}, 1),
	}
}

// WaitVSync blocks until the next Draw completes or timeout elapses.
func (d *Display) WaitVSync(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-d.vsyncCh:
	case <-timer.C:
	}
}

// signalVSync wakes a pending WaitVSync without ever blocking Draw.
func (d *Display) signalVSync() {
	select {
	case d.vsyncCh <- struct{}{}:
	default:
	}
}

// Skipped returns how many produced frames were replaced before they
// could be drawn. Safe from any goroutine.
func (d *Display) Skipped() uint64 {
	return d.skipped.Load()
}

// Update implements ebiten.Game.
func (d *Display) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && d.atlas != nil && d.levels != nil {
		d.showOverlay = !d.showOverlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) && d.control != nil {
		d.control.TogglePause()
	}
	return nil
}

// Draw implements ebiten.Game.
func (d *Display) Draw(screen *ebiten.Image) {
	defer d.signalVSync()

	pixels, w, h, seq := d.fb.Read()
	if w == 0 || h == 0 {
		return
	}
	if seq != d.lastSeq {
		d.trackSkips(seq)
		d.upload(pixels, w, h)
	}
	if d.offscreen == nil {
		return
	}
	d.drawFrame(screen, w, h)

	if d.showOverlay {
		d.drawOverlay(screen)
	}
}

func (d *Display) trackSkips(seq uint64) {
	if d.lastSeq != 0 && seq > d.lastSeq+1 {
		d.skipped.Add(seq - d.lastSeq - 1)
	}
	d.lastSeq = seq
}

func (d *Display) upload(pixels []uint16, w, h int) {
	if d.offscreen == nil || d.offscreen.Bounds().Dx() != w || d.offscreen.Bounds().Dy() != h {
		d.offscreen = ebiten.NewImage(w, h)
		log.Debug().Int("width", w).Int("height", h).Msg("display frame size changed")
	}
	n := w * h * 4
	if cap(d.rgba) < n {
		d.rgba = make([]byte, n)
	}
	d.rgba = d.rgba[:n]
	scaler.RGB565ToRGBA(d.rgba, pixels)
	d.offscreen.WritePixels(d.rgba)
}

// drawFrame fits the frame to the screen preserving aspect ratio. Frames
// already at device resolution draw 1:1.
func (d *Display) drawFrame(screen *ebiten.Image, w, h int) {
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := fitScale(w, h, screenW, screenH)

	d.drawOpts = ebiten.DrawImageOptions{}
	d.drawOpts.GeoM.Scale(scale, scale)
	d.drawOpts.GeoM.Translate((float64(screenW)-float64(w)*scale)/2, (float64(screenH)-float64(h)*scale)/2)
	d.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(d.offscreen, &d.drawOpts)
}

func fitScale(w, h, screenW, screenH int) float64 {
	scaleX := float64(screenW) / float64(w)
	scaleY := float64(screenH) / float64(h)
	if scaleY < scaleX {
		return scaleY
	}
	return scaleX
}

func (d *Display) drawOverlay(screen *ebiten.Image) {
	if d.renderOverlay(d.levels.Occupancy()) {
		if d.overlay == nil {
			d.overlay = ebiten.NewImage(d.overlayRGBA.Bounds().Dx(), d.overlayRGBA.Bounds().Dy())
		}
		d.overlay.WritePixels(d.overlayRGBA.Pix)
	}

	pad := float64(d.layout.Px(d.layout.Padding))
	d.drawOpts = ebiten.DrawImageOptions{}
	d.drawOpts.GeoM.Translate(pad, pad)
	screen.DrawImage(d.overlay, &d.drawOpts)
}

// renderOverlay draws the status pill with the level gauge into
// overlayRGBA. It reports whether the image changed.
func (d *Display) renderOverlay(level int) bool {
	if level == d.lastLevel && d.overlayRGBA != nil {
		return false
	}
	d.lastLevel = level

	pill := d.layout.PillPx()
	if d.overlayRGBA == nil {
		d.overlayRGBA = image.NewRGBA(image.Rect(0, 0, pill*2, pill))
	}
	clear(d.overlayRGBA.Pix)

	d.atlas.DrawPill(d.overlayRGBA, atlas.DarkGrayPill, d.overlayRGBA.Bounds())
	d.atlas.DrawLevel(d.overlayRGBA, d.layout, image.Pt(pill/2, 0), level)
	return true
}

// Layout implements ebiten.Game. The logical screen is the physical
// device resolution so frames map 1:1 onto pixels.
func (d *Display) Layout(outsideWidth, outsideHeight int) (int, int) {
	if d.layout.WidthPx > 0 && d.layout.HeightPx > 0 {
		return d.layout.WidthPx, d.layout.HeightPx
	}
	return outsideWidth, outsideHeight
}
