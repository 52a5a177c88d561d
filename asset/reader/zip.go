package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/grindrt/grind/asset"
	"github.com/grindrt/grind/asset/compiler"
	"github.com/grindrt/grind/log"
	"github.com/grindrt/grind/scene"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read scene definition from zip file.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Infof(`parsing compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := io.ReadAll(sceneRes)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	var snap *compiler.Snapshot
	for _, f := range zr.File {
		switch f.Name {
		case compiler.DataFile:
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		snap = &compiler.Snapshot{}
		err = gob.NewDecoder(rc).Decode(snap)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reader: failed to load %s: %w", f.Name, err)
		}
	}
	if snap == nil {
		return nil, fmt.Errorf("reader: %s does not contain %s", sceneRes.Path(), compiler.DataFile)
	}

	sc, err := snap.Restore()
	if err != nil {
		return nil, fmt.Errorf("reader: %s: %w", sceneRes.Path(), err)
	}

	p.logger.Infof("loaded scene in %d ms", time.Since(start).Milliseconds())
	return sc, nil
}
