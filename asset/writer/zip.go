package writer

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/grindrt/grind/asset/compiler"
	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/scene"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) (err error) {
	w.logger.Infof("writing compressed scene to %s", w.sceneFile)
	start := time.Now()

	snap, err := compiler.Compile(sc)
	if err != nil {
		return err
	}

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); err == nil {
			err = closeErr
		}
	}()

	// Create zip writer
	zw := zip.NewWriter(zipFile)
	cw, err := zw.Create(compiler.DataFile)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}

	// Write scene data
	if err = gob.NewEncoder(cw).Encode(snap); err != nil {
		return fmt.Errorf("writer: encoding %s: %w", compiler.DataFile, err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("writer: %w", err)
	}

	w.logger.Infof("compressed scene in %d ms", time.Since(start).Milliseconds())
	return nil
}
