// Package export flattens a visible region of the editor into a file.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pitchboard/internal/render"
)

// PitchRegion is the id of the pitch area, the only region the editor exposes.
const PitchRegion = "football-pitch-container"

// DefaultStem is the file name stem used when the caller has none.
const DefaultStem = "football-formation"

var (
	ErrUnknownRegion = errors.New("unknown region")
	ErrEmptyRegion   = errors.New("region has nothing to draw")
)

// Region is what is currently drawn in one area of the screen.
type Region struct {
	Scene render.Scene
	View  render.Viewport
}

// Source looks up visible regions by id.
type Source interface {
	Region(id string) (Region, bool)
}

// Regions is a fixed set of regions captured at one instant.
type Regions map[string]Region

func (r Regions) Region(id string) (Region, bool) {
	reg, ok := r[id]
	return reg, ok
}

// Exporter writes a region to <dir>/<stem>-<YYYY-MM-DD>.<ext> and returns the path.
type Exporter interface {
	Export(ctx context.Context, src Source, regionID, stem string) (string, error)
}

// FileName builds the dated output name for stem.
func FileName(stem string, day time.Time, ext string) string {
	if stem == "" {
		stem = DefaultStem
	}
	return fmt.Sprintf("%s-%s.%s", stem, day.Format("2006-01-02"), ext)
}

type config struct {
	dir   string
	scale float64
	now   func() time.Time
	log   zerolog.Logger
}

type Option func(*config)

func WithClock(f func() time.Time) Option {
	return func(c *config) { c.now = f }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l.With().Str("component", "export").Logger() }
}

// WithScale sets the pixels per surface unit of PNG output.
func WithScale(s float64) Option {
	return func(c *config) {
		if s > 0 {
			c.scale = s
		}
	}
}

func newConfig(dir string, opts []Option) config {
	c := config{dir: dir, scale: 2, now: time.Now, log: zerolog.Nop()}
	for _, o := range opts {
		o(&c)
	}
	if c.dir == "" {
		c.dir = "."
	}
	return c
}

func lookup(ctx context.Context, src Source, id string) (Region, error) {
	if err := ctx.Err(); err != nil {
		return Region{}, err
	}
	reg, ok := src.Region(id)
	if !ok {
		return Region{}, fmt.Errorf("%q: %w", id, ErrUnknownRegion)
	}
	return reg, nil
}
