package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/user-none/avout/atlas"
	"github.com/user-none/avout/audio"
	emubridge "github.com/user-none/avout/bridge/ebiten"
	"github.com/user-none/avout/cli"
	"github.com/user-none/avout/config"
	"github.com/user-none/avout/layout"
	"github.com/user-none/avout/pacer"
	"github.com/user-none/avout/testsrc"
	"github.com/user-none/avout/ui"
)

func main() {
	cfg := config.Load()
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	lvl, _ := cfg.Level()
	zerolog.SetGlobalLevel(lvl)
	mode, _ := cfg.PacerMode()
	region, _ := cfg.SourceRegion()

	l := layout.Compute(cfg.Geometry())

	var assets atlas.Source = atlas.GeneratedSource{}
	if cfg.AssetDir != "" {
		assets = atlas.FSSource{FS: os.DirFS(cfg.AssetDir)}
	}
	a, err := atlas.Build(l, assets)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.AssetDir).Msg("loading UI assets")
	}

	src, err := testsrc.New(cfg.SourceWidth, cfg.SourceHeight, cfg.InputSampleRate, region)
	if err != nil {
		log.Fatal().Err(err).Msg("creating source")
	}
	fps := float64(src.GetTiming().FPS)

	mixer, err := audio.NewMixer(audio.Options{
		InputRate:    cfg.InputSampleRate,
		OutputRate:   cfg.DeviceSampleRate,
		FrameRate:    fps,
		BufferFrames: cfg.BufferFrames,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("creating audio mixer")
	}

	// audio failure is not fatal; the mixer keeps absorbing frames
	player, err := ui.NewAudioPlayer(mixer, cfg.DeviceSampleRate, cfg.Volume)
	if err != nil {
		log.Warn().Err(err).Msg("audio initialization failed, running silent")
	} else {
		defer player.Close()
		if player.SampleRate() != cfg.DeviceSampleRate {
			if err := mixer.SetOutputRate(player.SampleRate()); err != nil {
				log.Warn().Err(err).Msg("matching device rate")
			}
		}
	}

	fb := ui.NewSharedFramebuffer(l.WidthPx, l.HeightPx)
	control := ui.NewEmuControl()
	var levels emubridge.LevelSource
	if cfg.Overlay {
		levels = mixer
	}
	display := emubridge.NewDisplay(fb, control, a, l, levels)

	runner, err := cli.NewRunner(cli.Options{
		Source:      src,
		Mixer:       mixer,
		Pacer:       pacer.New(mode, pacer.BudgetFor(fps), display, nil),
		Framebuffer: fb,
		Control:     control,
		Width:       l.WidthPx,
		Height:      l.HeightPx,
		FrameSkip:   cfg.FrameSkip,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("creating runner")
	}
	runner.Start()
	defer runner.Close()

	ebiten.SetWindowSize(l.WidthPx, l.HeightPx)
	ebiten.SetWindowTitle("avout")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(mode != pacer.ModeOff)

	if err := ebiten.RunGame(display); err != nil {
		log.Error().Err(err).Msg("display")
	}
	log.Info().Uint64("frames_replaced", display.Skipped()).Msg("display closed")
}
