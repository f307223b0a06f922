package export

import (
	"context"
	"errors"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchboard/internal/formation"
	"pitchboard/internal/render"
)

var day = time.Date(2024, 5, 17, 23, 59, 0, 0, time.UTC)

func clock() time.Time { return day }

func pitch() Regions {
	scene := render.Scene{
		Width: 1000, Height: 500,
		Players: []formation.Player{{ID: "9", Role: "ST", X: 500, Y: 250, Color: "#ff0000"}},
		Arrows:  []formation.Arrow{{ID: "a", StartX: 300, StartY: 100, EndX: 700, EndY: 100, Color: "#0000ff"}},
	}
	return Regions{PitchRegion: {
		Scene: scene,
		View:  render.Viewport{Cols: 100, Rows: 25, Width: 1000, Height: 500},
	}}
}

func pixel(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "football-formation-2024-05-17.png", FileName("football-formation", day, "png"))
	assert.Equal(t, "press-2024-05-17.txt", FileName("press", day, "txt"))
	assert.Equal(t, "football-formation-2024-05-17.png", FileName("", day, "png"))
}

func TestPNG_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	exp := NewPNG(dir, WithClock(clock))

	path, err := exp.Export(context.Background(), pitch(), PitchRegion, DefaultStem)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "football-formation-2024-05-17.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Width, "default scale is 2x")
	assert.Equal(t, 1000, cfg.Height)

	assert.Equal(t, color.NRGBA{0x22, 0xc5, 0x5e, 0xff}, pixel(t, path, 100, 100), "grass")
	assert.Equal(t, color.NRGBA{0xff, 0x00, 0x00, 0xff}, pixel(t, path, 1000, 470), "player disc")
	assert.Equal(t, color.NRGBA{0x00, 0x00, 0xff, 0xff}, pixel(t, path, 800, 200), "arrow shaft")
}

func TestPNG_Scale(t *testing.T) {
	path, err := NewPNG(t.TempDir(), WithClock(clock), WithScale(1)).
		Export(context.Background(), pitch(), PitchRegion, "small")
	require.NoError(t, err)
	assert.Equal(t, "small-2024-05-17.png", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Width)
	assert.Equal(t, 500, cfg.Height)
}

func TestPNG_Failures(t *testing.T) {
	dir := t.TempDir()
	exp := NewPNG(dir, WithClock(clock))

	_, err := exp.Export(context.Background(), pitch(), "sidebar", DefaultStem)
	assert.ErrorIs(t, err, ErrUnknownRegion)

	empty := Regions{PitchRegion: {}}
	_, err = exp.Export(context.Background(), empty, PitchRegion, DefaultStem)
	assert.ErrorIs(t, err, ErrEmptyRegion)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exp.Export(ctx, pitch(), PitchRegion, DefaultStem)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed exports leave no files")
}

func TestPNG_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewPNG(blocker, WithClock(clock)).Export(context.Background(), pitch(), PitchRegion, DefaultStem)
	assert.Error(t, err)
}

func TestDraw_PreviewAndSelection(t *testing.T) {
	scene := pitch()[PitchRegion].Scene
	scene.Preview = &formation.Arrow{StartX: 100, StartY: 450, EndX: 400, EndY: 450}
	scene.Selected = "9"

	dc, err := Draw(scene, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000, dc.Width())
	assert.Equal(t, 500, dc.Height())
}

func TestText_Export(t *testing.T) {
	dir := t.TempDir()
	regions := pitch()

	path, err := NewText(dir, WithClock(clock)).Export(context.Background(), regions, PitchRegion, DefaultStem)
	require.NoError(t, err)
	assert.Equal(t, "football-formation-2024-05-17.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	reg := regions[PitchRegion]
	want := strings.Join(render.Rasterize(reg.Scene, reg.View).Plain(), "\n") + "\n"
	assert.Equal(t, want, string(data))
	assert.NotContains(t, string(data), "\x1b[", "no escape codes in text export")
}

func TestText_EmptyView(t *testing.T) {
	regions := Regions{PitchRegion: {Scene: render.Scene{Width: 1000, Height: 500}}}
	_, err := NewText(t.TempDir()).Export(context.Background(), regions, PitchRegion, DefaultStem)
	assert.ErrorIs(t, err, ErrEmptyRegion)
}

type flakyFile struct {
	strings.Builder
	writeErr, closeErr error
	closed             bool
}

func (f *flakyFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.Builder.Write(p)
}

func (f *flakyFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestText_ReportsCloseAndWriteFailures(t *testing.T) {
	full := errors.New("no space left on device")

	for name, file := range map[string]*flakyFile{
		"close": {closeErr: full},
		"write": {writeErr: full},
	} {
		t.Run(name, func(t *testing.T) {
			txt := NewText(t.TempDir(), WithClock(clock))
			txt.create = func(string) (io.WriteCloser, error) { return file, nil }

			path, err := txt.Export(context.Background(), pitch(), PitchRegion, DefaultStem)
			require.ErrorIs(t, err, full)
			assert.Empty(t, path)
			assert.True(t, file.closed)
		})
	}
}
