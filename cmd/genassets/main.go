// Command genassets writes generated asset sheets for every tier, as a
// starting point for artwork or for devices without shipped sheets.
package main

import (
	"flag"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/user-none/avout/atlas"
)

func main() {
	dir := flag.String("out", "assets", "output directory")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("creating output directory")
	}
	for tier := atlas.MinTier; tier <= atlas.MaxTier; tier++ {
		path := filepath.Join(*dir, atlas.SheetName(tier))
		if err := writeSheet(path, tier); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("writing sheet")
		}
		log.Info().Str("path", path).Int("tier", tier).Msg("wrote sheet")
	}
}

func writeSheet(path string, tier int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, atlas.RenderSheet(tier)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
