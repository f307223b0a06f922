package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"pitchboard/internal/formation"
	"pitchboard/internal/render"
)

// PNG renders the pitch with gg.
type PNG struct {
	config
}

func NewPNG(dir string, opts ...Option) *PNG {
	return &PNG{config: newConfig(dir, opts)}
}

func (p *PNG) Export(ctx context.Context, src Source, regionID, stem string) (string, error) {
	reg, err := lookup(ctx, src, regionID)
	if err != nil {
		return "", err
	}
	if reg.Scene.Width <= 0 || reg.Scene.Height <= 0 {
		return "", fmt.Errorf("%q is %gx%g: %w", regionID, reg.Scene.Width, reg.Scene.Height, ErrEmptyRegion)
	}

	dc, err := Draw(reg.Scene, p.scale)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(p.dir, FileName(stem, p.now(), "png"))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	p.log.Info().Str("path", path).Str("region", regionID).Msg("exported png")
	return path, nil
}

// Draw paints scene at scale pixels per surface unit.
func Draw(scene render.Scene, scale float64) (*gg.Context, error) {
	w := int(math.Ceil(scene.Width * scale))
	h := int(math.Ceil(scene.Height * scale))
	dc := gg.NewContext(w, h)
	dc.SetHexColor(render.GrassColor)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    12 * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	// shapes are given in surface units; line widths and dashes stay in pixels
	dc.Scale(scale, scale)

	dc.SetHexColor(render.LineColor)
	dc.SetLineWidth(2 * scale)
	for _, sh := range render.Markings(scene.Width, scene.Height) {
		drawMarking(dc, sh)
	}

	for _, a := range scene.Arrows {
		drawArrow(dc, a, scale)
	}
	if scene.Preview != nil {
		dc.SetDash(8*scale, 6*scale)
		drawArrow(dc, *scene.Preview, scale)
		dc.SetDash()
	}

	for _, pl := range scene.Players {
		drawPlayer(dc, pl, scale, pl.ID == scene.Selected)
	}
	return dc, nil
}

func drawMarking(dc *gg.Context, sh render.Shape) {
	switch sh.Kind {
	case render.ShapeLine:
		dc.DrawLine(sh.X1, sh.Y1, sh.X2, sh.Y2)
		dc.Stroke()
	case render.ShapeRect:
		dc.DrawRectangle(sh.X1, sh.Y1, sh.X2, sh.Y2)
		dc.Stroke()
	case render.ShapeArc:
		dc.NewSubPath()
		dc.DrawArc(sh.X1, sh.Y1, sh.R, sh.From, sh.To)
		dc.Stroke()
	case render.ShapeDot:
		dc.DrawCircle(sh.X1, sh.Y1, sh.R)
		dc.Fill()
	}
}

func drawArrow(dc *gg.Context, a formation.Arrow, scale float64) {
	color := a.Color
	if color == "" {
		color = formation.DefaultArrowColor
	}
	dc.SetHexColor(color)

	dx, dy := a.EndX-a.StartX, a.EndY-a.StartY
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		dc.DrawCircle(a.EndX, a.EndY, 3)
		dc.Fill()
		return
	}
	dx /= length
	dy /= length

	headSize := 10.0
	headAngle := 0.5

	// stop the shaft at the base of the head so the tip stays sharp
	shaft := math.Max(length-headSize, 0)
	dc.SetLineWidth(3 * scale)
	dc.DrawLine(a.StartX, a.StartY, a.StartX+dx*shaft, a.StartY+dy*shaft)
	dc.Stroke()

	tx, ty := a.EndX, a.EndY
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-headSize*dx+headSize*dy*headAngle, ty-headSize*dy-headSize*dx*headAngle)
	dc.LineTo(tx-headSize*dx-headSize*dy*headAngle, ty-headSize*dy+headSize*dx*headAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawPlayer(dc *gg.Context, p formation.Player, scale float64, selected bool) {
	color := p.Color
	if color == "" {
		color = formation.RoleColor(p.Role)
	}
	dc.DrawCircle(p.X, p.Y, render.PlayerRadius)
	dc.SetHexColor(color)
	dc.FillPreserve()
	dc.SetHexColor(render.PlayerLabel)
	border := 2.0
	if selected {
		border = 4
	}
	dc.SetLineWidth(border * scale)
	dc.Stroke()

	// glyphs would be resampled by the scale matrix, so labels are set in pixels
	dc.Push()
	dc.Identity()
	dc.SetHexColor(render.PlayerLabel)
	dc.DrawStringAnchored(p.Role, p.X*scale, p.Y*scale, 0.5, 0.5)
	dc.Pop()
}
