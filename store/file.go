package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/colornames"

	"github.com/nstehr/vimy/vimy-terrain/regions"
)

// FileStore keeps one <map>.json per map in a directory, with a same-named PNG
// preview next to it.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(mapName, ext string) string {
	return filepath.Join(s.dir, NormalizeMapName(mapName)+ext)
}

func (s *FileStore) Load(_ context.Context, mapName string) (*regions.Data, error) {
	raw, err := os.ReadFile(s.path(mapName, ".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read region document: %w", err)
	}
	return decode(mapName, raw)
}

// Save writes the document atomically, then the preview image. A failed
// preview is logged and does not fail the save.
func (s *FileStore) Save(_ context.Context, d *regions.Data) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode region document: %w", err)
	}
	path := s.path(d.MapName, ".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write region document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write region document: %w", err)
	}
	slog.Info("saved region document", "map", d.MapName, "path", path, "regions", len(d.Regions))

	if err := s.writePreview(d); err != nil {
		slog.Warn("region preview not written", "map", d.MapName, "error", err)
	}
	return nil
}

func (s *FileStore) writePreview(d *regions.Data) error {
	f, err := os.Create(s.path(d.MapName, ".png"))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, Render(d))
}

// Render draws one pixel per cell in its region's color on a black
// background. Image rows run top-down, so y is flipped.
func Render(d *regions.Data) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colornames.Black), image.Point{}, draw.Src)
	for _, r := range d.Regions {
		for _, c := range r.Cells {
			img.SetRGBA(c.X, d.Height-1-c.Y, r.Color)
		}
	}
	return img
}
