package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pitchboard/internal/render"
)

// Text writes the region exactly as the terminal shows it, without colour.
type Text struct {
	config
	create func(name string) (io.WriteCloser, error)
}

func NewText(dir string, opts ...Option) *Text {
	return &Text{config: newConfig(dir, opts), create: createFile}
}

func createFile(name string) (io.WriteCloser, error) { return os.Create(name) }

func (t *Text) Export(ctx context.Context, src Source, regionID, stem string) (string, error) {
	reg, err := lookup(ctx, src, regionID)
	if err != nil {
		return "", err
	}
	if reg.View.Cols <= 0 || reg.View.Rows <= 0 {
		return "", fmt.Errorf("%q is %dx%d cells: %w", regionID, reg.View.Cols, reg.View.Rows, ErrEmptyRegion)
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(t.dir, FileName(stem, t.now(), "txt"))
	file, err := t.create(path)
	if err != nil {
		return "", err
	}
	if err := writeLines(file, render.Rasterize(reg.Scene, reg.View).Plain()); err != nil {
		file.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	t.log.Info().Str("path", path).Str("region", regionID).Msg("exported text")
	return path, nil
}

func writeLines(out io.Writer, lines []string) error {
	w := bufio.NewWriter(out)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
