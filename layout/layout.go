// Package layout derives resolution-independent UI metrics from the
// physical screen geometry of a device.
//
// Sizes are expressed in density-independent pixels (dp) where 1dp is one
// pixel on a 144 PPI reference panel. A DisplayLayout is computed once at
// startup and handed to every consumer; it is never mutated afterwards.
package layout

import (
	"math"

	"github.com/rs/zerolog/log"
)

const (
	// ReferencePPI is the pixel density at which 1dp equals 1px.
	ReferencePPI = 144.0

	// DefaultScale is used before Compute runs and for invalid geometry.
	DefaultScale = 2.0

	MinPill        = 28
	MaxPill        = 32
	DefaultPadding = 10
	SettingsWidth  = 80
)

// Geometry describes the physical panel.
type Geometry struct {
	Width    int     // physical pixels
	Height   int     // physical pixels
	Diagonal float64 // inches

	// ScaleModifier is an optional per-platform multiplier applied to the
	// raw dp scale. Zero means no modifier.
	ScaleModifier float64
}

// DisplayLayout holds the UI metrics derived from a Geometry.
type DisplayLayout struct {
	WidthPx  int
	HeightPx int
	Width    int // dp
	Height   int // dp

	Scale float64 // physical pixels per dp
	PPI   float64

	PillHeight    int
	RowCount      int
	Padding       int
	ButtonSize    int
	ButtonMargin  int
	ButtonPadding int
	TextBaseline  int
	SettingsSize  int
	SettingsWidth int

	// EvenPixels reports whether the chosen pill height maps to an even
	// number of physical pixels.
	EvenPixels bool
}

// Default returns the layout in effect before a device geometry is known.
func Default() DisplayLayout {
	return DisplayLayout{
		Scale:         DefaultScale,
		PillHeight:    30,
		RowCount:      6,
		Padding:       DefaultPadding,
		ButtonSize:    20,
		ButtonMargin:  5,
		ButtonPadding: 12,
		TextBaseline:  4,
		SettingsSize:  30 / 8,
		SettingsWidth: SettingsWidth,
		EvenPixels:    true,
	}
}

// Px converts a dp value to physical pixels, rounding half up.
func (l DisplayLayout) Px(dp int) int {
	return px(dp, l.Scale)
}

// PillPx returns the pill height in physical pixels.
func (l DisplayLayout) PillPx() int {
	return l.Px(l.PillHeight)
}

// ButtonPx returns the button size in physical pixels.
func (l DisplayLayout) ButtonPx() int {
	return l.Px(l.ButtonSize)
}

// UsedHeight returns the dp consumed by the content rows plus the footer.
func (l DisplayLayout) UsedHeight() int {
	return (l.RowCount + 1) * l.PillHeight
}

func px(dp int, scale float64) int {
	return int(float64(dp)*scale + 0.5)
}

// Valid reports whether the geometry can produce a meaningful density.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0 && g.Diagonal > 0
}

// Scale returns the dp scale for the geometry. Invalid geometry yields
// DefaultScale.
func Scale(g Geometry) (scale, ppi float64) {
	if !g.Valid() {
		return DefaultScale, DefaultScale * ReferencePPI
	}
	diagonalPx := math.Sqrt(float64(g.Width*g.Width + g.Height*g.Height))
	ppi = diagonalPx / g.Diagonal
	scale = ppi / ReferencePPI
	if g.ScaleModifier > 0 {
		scale *= g.ScaleModifier
	}
	return scale, ppi
}

// Compute derives the DisplayLayout for a screen.
//
// The screen is treated as a stack of uniform rows: padding, content rows,
// one footer row, padding. The most content rows whose pill height lands in
// [MinPill, MaxPill] wins; among those an even physical pill height is
// preferred so content can be centered without half pixels.
func Compute(g Geometry) DisplayLayout {
	scale, ppi := Scale(g)
	if !g.Valid() {
		log.Warn().
			Int("width", g.Width).
			Int("height", g.Height).
			Float64("diagonal", g.Diagonal).
			Msg("invalid screen geometry, using default dp scale")
	}

	heightDp := int(float64(g.Height)/scale + 0.5)
	available := heightDp - DefaultPadding*2

	maxRows := available/MinPill - 1
	if maxRows < 1 {
		maxRows = 1
	}

	bestPill, bestRows, bestEven := 0, 0, false
	for rows := maxRows; rows >= 1; rows-- {
		pill := available / (rows + 1)
		// pills only grow as rows decrease
		if pill > MaxPill {
			break
		}
		if pill < MinPill {
			continue
		}
		even := px(pill, scale)%2 == 0
		if even {
			bestPill, bestRows, bestEven = pill, rows, true
			log.Debug().Int("rows", rows).Int("pill", pill).Int("pill_px", px(pill, scale)).Msg("row calc: even pixels")
			break
		}
		if bestRows == 0 {
			bestPill, bestRows = pill, rows
			log.Debug().Int("rows", rows).Int("pill", pill).Int("pill_px", px(pill, scale)).Msg("row calc: odd pixels, keeping as backup")
		}
	}

	if bestRows == 0 {
		bestPill, bestRows = MinPill, 1
		log.Warn().Int("available_dp", available).Msg("row calc: no row count fits, falling back to a single row")
	}

	l := DisplayLayout{
		WidthPx:       g.Width,
		HeightPx:      g.Height,
		Width:         int(float64(g.Width)/scale + 0.5),
		Height:        heightDp,
		Scale:         scale,
		PPI:           ppi,
		PillHeight:    bestPill,
		RowCount:      bestRows,
		Padding:       DefaultPadding,
		SettingsWidth: SettingsWidth,
		EvenPixels:    bestEven,
	}

	l.ButtonSize = l.PillHeight * 2 / 3
	if l.Px(l.ButtonSize)%2 != 0 {
		l.ButtonSize++
	}
	l.ButtonMargin = (l.PillHeight - l.ButtonSize) / 2
	l.ButtonPadding = l.PillHeight * 2 / 5
	l.TextBaseline = l.PillHeight * 2 / 10
	l.SettingsSize = l.PillHeight / 8

	log.Info().
		Int("width", g.Width).
		Int("height", g.Height).
		Float64("ppi", ppi).
		Float64("dp_scale", scale).
		Int("pill", l.PillHeight).
		Int("rows", l.RowCount).
		Int("used_dp", l.UsedHeight()).
		Int("available_dp", available).
		Msg("display layout computed")

	return l
}
