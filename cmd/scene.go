package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grindrt/grind/asset/reader"
	"github.com/grindrt/grind/asset/writer"
	"github.com/urfave/cli"
)

// Compile scenes to the zip snapshot format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		ext := sceneFileExt(sceneFile)
		if ext != ".obj" && ext != ".json" {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Infof("parsing and compiling scene: %s", sceneFile)
		sc, err := reader.ReadScene(context.Background(), sceneFile)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Infof("scene information:\n%s", sc.Stats())

		zipFile := strings.TrimSuffix(sceneFile, ext) + ".zip"
		if err = writer.WriteScene(sc, zipFile); err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "compiled %s to %s\n", sceneFile, zipFile)
	}

	return nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(context.Background(), ctx.Args().First())
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "%s\n", sc.Camera.String())
	if err = sc.Camera.Setup(1); err == nil {
		m := sc.Camera.ViewMatrix()
		fmt.Fprintf(ctx.App.Writer, "view matrix:\n")
		for row := 0; row < 3; row++ {
			fmt.Fprintf(ctx.App.Writer, "  [% .4f % .4f % .4f]\n", m[row*3], m[row*3+1], m[row*3+2])
		}
	}
	fmt.Fprint(ctx.App.Writer, sc.Stats())
	return nil
}

func sceneFileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
