// Command layoutinfo prints the layout and atlas geometry computed for a
// screen, for tuning new devices without starting the engine.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/user-none/avout/atlas"
	"github.com/user-none/avout/config"
	"github.com/user-none/avout/layout"
)

func main() {
	cfg := config.Load()
	cfg.BindFlags(flag.CommandLine)
	showAssets := flag.Bool("assets-rects", true, "list per-asset rectangles")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	if lvl, err := cfg.Level(); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	g := cfg.Geometry()
	l := layout.Compute(g)
	log.Info().
		Int("width_dp", l.Width).
		Int("height_dp", l.Height).
		Float64("ppi", l.PPI).
		Int("rows", l.RowCount).
		Int("pill_dp", l.PillHeight).
		Int("pill_px", l.PillPx()).
		Bool("even", l.EvenPixels).
		Int("button_dp", l.ButtonSize).
		Int("button_px", l.ButtonPx()).
		Int("button_margin", l.ButtonMargin).
		Int("button_padding", l.ButtonPadding).
		Int("text_baseline", l.TextBaseline).
		Int("settings_size", l.SettingsSize).
		Int("used_height_dp", l.UsedHeight()).
		Msg("layout")

	var src atlas.Source = atlas.GeneratedSource{}
	if cfg.AssetDir != "" {
		src = atlas.FSSource{FS: os.DirFS(cfg.AssetDir)}
	}
	a, err := atlas.Build(l, src)
	if err != nil {
		log.Fatal().Err(err).Msg("building atlas")
	}
	log.Info().
		Int("tier", a.Tier).
		Bool("scaled", a.Scaled).
		Int("sheet_w", a.Sheet.Bounds().Dx()).
		Int("sheet_h", a.Sheet.Bounds().Dy()).
		Msg("atlas")

	if !*showAssets {
		return
	}
	for id := atlas.AssetID(0); id < atlas.AssetCount; id++ {
		r := a.Rect(id)
		log.Info().
			Str("asset", id.String()).
			Int("x", r.Min.X).
			Int("y", r.Min.Y).
			Int("w", r.Dx()).
			Int("h", r.Dy()).
			Msg("rect")
	}
}
