package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pitchboard/internal/formation"
)

// Cell is one terminal character of a rendered frame.
type Cell struct {
	Rune      rune
	FG, BG    string
	Bold      bool
	Underline bool
}

// Frame is a rasterized scene, one Cell per terminal character.
type Frame struct {
	Cols, Rows int
	cells      [][]Cell
}

// At returns the cell at col,row. Out of range cells are blank.
func (f *Frame) At(col, row int) Cell {
	if row < 0 || row >= f.Rows || col < 0 || col >= f.Cols {
		return Cell{Rune: ' '}
	}
	return f.cells[row][col]
}

func (f *Frame) set(col, row int, fn func(*Cell)) {
	if row < 0 || row >= f.Rows || col < 0 || col >= f.Cols {
		return
	}
	fn(&f.cells[row][col])
}

// Rasterize draws s onto a grid the size of vp. Players are drawn last so they sit
// above arrows and pitch lines.
func Rasterize(s Scene, vp Viewport) *Frame {
	cols, rows := max(vp.Cols, 1), max(vp.Rows, 1)
	vp.Cols, vp.Rows = cols, rows

	f := &Frame{Cols: cols, Rows: rows, cells: make([][]Cell, rows)}
	for r := range f.cells {
		f.cells[r] = make([]Cell, cols)
		for c := range f.cells[r] {
			f.cells[r][c] = Cell{Rune: ' ', BG: GrassColor}
		}
	}

	for _, sh := range Markings(vp.Width, vp.Height) {
		f.marking(sh, vp)
	}
	for _, a := range s.Arrows {
		f.arrow(a, vp, false)
	}
	if s.Preview != nil {
		f.arrow(*s.Preview, vp, true)
	}
	for _, p := range s.Players {
		f.player(p, vp, p.ID == s.Selected)
	}
	return f
}

func (f *Frame) marking(sh Shape, vp Viewport) {
	switch sh.Kind {
	case ShapeLine:
		f.rule(sh.X1, sh.Y1, sh.X2, sh.Y2, vp)
	case ShapeRect:
		x, y, w, h := sh.X1, sh.Y1, sh.X2, sh.Y2
		f.rule(x, y, x+w, y, vp)
		f.rule(x, y+h, x+w, y+h, vp)
		f.rule(x, y, x, y+h, vp)
		f.rule(x+w, y, x+w, y+h, vp)
	case ShapeArc:
		step := math.Min(vp.cellW(), vp.cellH()) / 2 / math.Max(sh.R, 1)
		for a := sh.From; a <= sh.To; a += step {
			c, r := vp.ToCell(ArcPoint(sh.X1, sh.Y1, sh.R, a))
			f.set(c, r, func(cell *Cell) {
				if cell.Rune == ' ' {
					cell.Rune = '·'
					cell.FG = LineColor
				}
			})
		}
	case ShapeDot:
		c, r := vp.ToCell(sh.X1, sh.Y1)
		f.set(c, r, func(cell *Cell) {
			cell.Rune = '•'
			cell.FG = LineColor
		})
	}
}

// rule draws an axis-aligned pitch line, joining crossings.
func (f *Frame) rule(x1, y1, x2, y2 float64, vp Viewport) {
	c1, r1 := vp.ToCell(x1, y1)
	c2, r2 := vp.ToCell(x2, y2)
	glyph := '─'
	if c1 == c2 {
		glyph = '│'
	}
	bresenham(c1, r1, c2, r2, func(c, r int, _ int) {
		f.set(c, r, func(cell *Cell) {
			cell.Rune = join(cell.Rune, glyph)
			cell.FG = LineColor
		})
	})
}

func join(have, want rune) rune {
	switch {
	case have == want || have == '┼':
		return have
	case (have == '─' && want == '│') || (have == '│' && want == '─'):
		return '┼'
	default:
		return want
	}
}

var heads = []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

func (f *Frame) arrow(a formation.Arrow, vp Viewport, dashed bool) {
	c1, r1 := vp.ToCell(a.StartX, a.StartY)
	c2, r2 := vp.ToCell(a.EndX, a.EndY)
	color := a.Color
	if color == "" {
		color = formation.DefaultArrowColor
	}
	if c1 == c2 && r1 == r2 {
		f.set(c2, r2, func(cell *Cell) {
			cell.Rune = '•'
			cell.FG = color
		})
		return
	}

	body := bodyGlyph(c2-c1, r2-r1)
	if dashed {
		body = '·'
	}
	bresenham(c1, r1, c2, r2, func(c, r, i int) {
		if dashed && i%2 == 1 {
			return
		}
		f.set(c, r, func(cell *Cell) {
			cell.Rune = body
			cell.FG = color
		})
	})

	angle := math.Atan2(float64(r2-r1), float64(c2-c1))
	oct := int(math.Round(angle/(math.Pi/4))+8) % 8
	f.set(c2, r2, func(cell *Cell) {
		cell.Rune = heads[oct]
		cell.FG = color
		cell.Bold = true
	})
}

func bodyGlyph(dc, dr int) rune {
	adc, adr := abs(dc), abs(dr)
	switch {
	case adr*2 < adc:
		return '─'
	case adc*2 < adr:
		return '│'
	case (dc > 0) == (dr > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (f *Frame) player(p formation.Player, vp Viewport, selected bool) {
	color := p.Color
	if color == "" {
		color = formation.RoleColor(p.Role)
	}
	c0, r0 := vp.ToCell(p.X-PlayerRadius, p.Y-PlayerRadius)
	c1, r1 := vp.ToCell(p.X+PlayerRadius, p.Y+PlayerRadius)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			x, y := vp.ToSurface(c, r)
			if math.Hypot(x-p.X, y-p.Y) > PlayerRadius {
				continue
			}
			f.set(c, r, func(cell *Cell) {
				cell.Rune = ' '
				cell.BG = color
			})
		}
	}

	// the centre cell is always painted so a player never vanishes on a small grid
	cc, cr := vp.ToCell(p.X, p.Y)
	label := []rune(p.Role)
	start := cc - len(label)/2
	if len(label) == 0 {
		f.set(cc, cr, func(cell *Cell) { cell.BG = color })
	}
	for k, ch := range label {
		f.set(start+k, cr, func(cell *Cell) {
			cell.Rune = ch
			cell.FG = PlayerLabel
			cell.BG = color
			cell.Bold = true
			cell.Underline = selected
		})
	}
}

// bresenham visits every cell on the line from (c0,r0) to (c1,r1) inclusive,
// passing the step index.
func bresenham(c0, r0, c1, r1 int, visit func(c, r, i int)) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr
	for i := 0; ; i++ {
		visit(c0, r0, i)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Plain returns the frame as text without any styling.
func (f *Frame) Plain() []string {
	out := make([]string, f.Rows)
	for r, row := range f.cells {
		var b strings.Builder
		for _, cell := range row {
			b.WriteRune(cell.Rune)
		}
		out[r] = b.String()
	}
	return out
}

// Styled returns the frame as lines coloured with lipgloss. Runs of cells sharing
// a style are rendered together.
func (f *Frame) Styled() []string {
	styles := make(map[Cell]lipgloss.Style)
	styleOf := func(c Cell) lipgloss.Style {
		key := Cell{FG: c.FG, BG: c.BG, Bold: c.Bold, Underline: c.Underline}
		st, ok := styles[key]
		if !ok {
			st = lipgloss.NewStyle().Bold(c.Bold).Underline(c.Underline)
			if c.FG != "" {
				st = st.Foreground(lipgloss.Color(c.FG))
			}
			if c.BG != "" {
				st = st.Background(lipgloss.Color(c.BG))
			}
			styles[key] = st
		}
		return st
	}

	out := make([]string, f.Rows)
	for r, row := range f.cells {
		var line, run strings.Builder
		cur := row[0]
		for _, cell := range row {
			if !sameStyle(cell, cur) {
				line.WriteString(styleOf(cur).Render(run.String()))
				run.Reset()
				cur = cell
			}
			run.WriteRune(cell.Rune)
		}
		line.WriteString(styleOf(cur).Render(run.String()))
		out[r] = line.String()
	}
	return out
}

func sameStyle(a, b Cell) bool {
	return a.FG == b.FG && a.BG == b.BG && a.Bold == b.Bold && a.Underline == b.Underline
}
