package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/grindrt/grind/cmd"
	"github.com/grindrt/grind/film"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "grind"
	app.Usage = "load, compile and render triangle mesh scenes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile a text scene representation into a binary compressed format",
			Description: `
Parse a scene definition from a wavefront obj file or a JSON scene description
and flatten its meshes, materials and textures into a single snapshot.

The snapshot is written to a zip archive next to the input file which can be
supplied as an argument to the render and info commands.`,
			ArgsUsage: "scene_file1.obj scene_file2.json ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display scene statistics",
			ArgsUsage: "scene_file",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a single frame. Settings of JSON scene descriptions are used as defaults
for any flag that is not specified.`,
					ArgsUsage: "scene_file",
					Flags: []cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "spp",
							Value: 1,
							Usage: "samples per pixel",
						},
						cli.StringFlag{
							Name:  "mode",
							Value: "flat",
							Usage: "shading mode (depth, normal, flat or ao)",
						},
						cli.IntFlag{
							Name:  "ao-samples",
							Value: 16,
							Usage: "number of occlusion rays per hit for the ao mode",
						},
						cli.Float64Flag{
							Name:  "ao-distance",
							Value: 1.0,
							Usage: "max occluder distance for the ao mode",
						},
						cli.Int64Flag{
							Name:  "seed",
							Usage: "seed for sample jittering",
						},
						cli.IntFlag{
							Name:  "supersample",
							Value: 1,
							Usage: "render at N times the frame size and downsample the result",
						},
						cli.IntFlag{
							Name:  "channels",
							Value: 4,
							Usage: "channels of the saved frame (1 for luminance, 3 for RGB or 4 for RGBA)",
						},
						cli.Float64Flag{
							Name:  "pitch",
							Usage: "orbit the camera look at point by pitch radians",
						},
						cli.Float64Flag{
							Name:  "yaw",
							Usage: "orbit the camera look at point by yaw radians",
						},
						cli.Float64Flag{
							Name:  "gamma",
							Value: 2.2,
							Usage: "gamma used when quantizing the frame",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
						cli.StringFlag{
							Name:  "format, f",
							Usage: fmt.Sprintf("output format (%s); detected from the filename if empty", strings.Join(film.Formats(), ", ")),
						},
					},
					Action: cmd.RenderFrame,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
