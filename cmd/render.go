package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grindrt/grind/asset/reader"
	"github.com/grindrt/grind/config"
	"github.com/grindrt/grind/film"
	"github.com/grindrt/grind/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	sceneFile := ctx.Args().First()

	cfg, err := renderSettings(ctx, sceneFile)
	if err != nil {
		return err
	}

	mode, err := renderer.ParseMode(cfg.Render.Mode)
	if err != nil {
		return err
	}
	ss := cfg.Film.Supersample
	opts := renderer.Options{
		FrameW:          uint32(cfg.Film.Width * ss),
		FrameH:          uint32(cfg.Film.Height * ss),
		SamplesPerPixel: uint32(cfg.Render.SamplesPerPixel),
		Mode:            mode,
		AOSamples:       uint32(max(0, cfg.Render.AOSamples)),
		AODistance:      cfg.Render.AODistance,
		Seed:            cfg.Render.Seed,
	}

	sc, err := reader.ReadScene(context.Background(), sceneFile)
	if err != nil {
		return err
	}
	if pitch, yaw := ctx.Float64("pitch"), ctx.Float64("yaw"); pitch != 0 || yaw != 0 {
		if err = sc.Camera.Orbit(pitch, yaw); err != nil {
			return err
		}
	}

	r, err := renderer.NewDefault(sc, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	out := ctx.String("out")
	format := ctx.String("format")
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}

	fm, err := film.Downsample(r.Film(), ss)
	if err != nil {
		return err
	}
	if fm, err = film.Convert(fm, cfg.Film.Channels); err != nil {
		return err
	}
	fm.SetGamma(cfg.Film.Gamma)
	if err = fm.SaveFile(out, format); err != nil {
		return err
	}

	// Display stats
	fmt.Fprint(ctx.App.Writer, frameStats(r.Stats()))
	return nil
}

// Get the film and render settings. JSON scene descriptions provide the
// defaults; flags set on the command line take precedence.
func renderSettings(ctx *cli.Context, sceneFile string) (config.Config, error) {
	cfg := config.Default()
	if sceneFileExt(sceneFile) == ".json" && !strings.Contains(sceneFile, "://") {
		var err error
		if cfg, err = config.Load(sceneFile); err != nil {
			return config.Config{}, err
		}
	}

	if ctx.IsSet("width") {
		cfg.Film.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Film.Height = ctx.Int("height")
	}
	if ctx.IsSet("supersample") {
		cfg.Film.Supersample = ctx.Int("supersample")
	}
	if ctx.IsSet("channels") {
		cfg.Film.Channels = ctx.Int("channels")
	}
	if ctx.IsSet("gamma") {
		cfg.Film.Gamma = ctx.Float64("gamma")
	}
	if ctx.IsSet("spp") {
		cfg.Render.SamplesPerPixel = ctx.Int("spp")
	}
	if ctx.IsSet("mode") {
		cfg.Render.Mode = ctx.String("mode")
	}
	if ctx.IsSet("ao-samples") {
		cfg.Render.AOSamples = ctx.Int("ao-samples")
	}
	if ctx.IsSet("ao-distance") {
		cfg.Render.AODistance = ctx.Float64("ao-distance")
	}
	if ctx.IsSet("seed") {
		cfg.Render.Seed = uint64(ctx.Int64("seed"))
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func frameStats(stats renderer.FrameStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Block", "Rows", "Render time"})
	for index, stat := range stats.Blocks {
		table.Append([]string{
			fmt.Sprintf("%d", index),
			fmt.Sprintf("%d - %d", stat.BlockY, stat.BlockY+stat.BlockH-1),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d triangles", stats.Triangles),
		fmt.Sprintf("%d rays, %d hits", stats.Rays, stats.Hits),
		stats.RenderTime.String(),
	})

	table.Render()
	return buf.String()
}
