// Package gesture turns raw pointer events on the pitch into player drags and
// two-click arrows.
package gesture

import (
	"math"

	"pitchboard/internal/formation"
)

const (
	// PlayerRadius is both the hit radius of a player and the clamp margin at the pitch edge.
	PlayerRadius = 25.0
	// ClickSlop is how far the pointer may travel between press and release and still click.
	ClickSlop = 4.0
)

type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Surface is the bounded interaction region, origin top-left.
type Surface struct {
	Width, Height float64
}

// Clamp keeps p at least margin away from every edge. An axis too short to honour
// the margin pins p to its centre.
func (s Surface) Clamp(p Point, margin float64) Point {
	return Point{clampAxis(p.X, margin, s.Width), clampAxis(p.Y, margin, s.Height)}
}

func clampAxis(v, margin, size float64) float64 {
	lo, hi := margin, size-margin
	if hi < lo {
		return size / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

// Arrangement is the part of the formation store the interpreter drives.
type Arrangement interface {
	Players() []formation.Player
	MovePlayer(id string, x, y float64)
	AddArrow(startX, startY, endX, endY float64, color string) formation.Arrow
}

type State int

const (
	StateIdle State = iota
	StateDragging
	StatePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StatePending:
		return "arrow pending"
	default:
		return "unknown"
	}
}

// Interpreter is the single entry point for pointer events on the pitch. It keeps
// only transient gesture state; players and arrows live in the Arrangement.
type Interpreter struct {
	arr        Arrangement
	modes      *Controller
	surface    Surface
	arrowColor string

	state   State
	dragID  string
	grab    Point
	start   Point
	preview Point

	pressed bool
	pressAt Point
}

// NewInterpreter wires the interpreter to modes so a mode switch abandons any
// gesture in progress.
func NewInterpreter(arr Arrangement, modes *Controller, surface Surface) *Interpreter {
	i := &Interpreter{
		arr:        arr,
		modes:      modes,
		surface:    surface,
		arrowColor: formation.DefaultArrowColor,
	}
	modes.OnToggle(func(Mode) { i.Abandon() })
	return i
}

func (i *Interpreter) Surface() Surface { return i.surface }

func (i *Interpreter) SetSurface(s Surface) { i.surface = s }

func (i *Interpreter) ArrowColor() string { return i.arrowColor }

// SetArrowColor sets the colour used for arrows committed from now on.
func (i *Interpreter) SetArrowColor(c string) { i.arrowColor = c }

func (i *Interpreter) State() State { return i.state }

// Dragging reports the id of the player being dragged.
func (i *Interpreter) Dragging() (string, bool) {
	return i.dragID, i.state == StateDragging
}

// Preview returns the pending arrow's start and the last pointer position.
func (i *Interpreter) Preview() (start, end Point, ok bool) {
	if i.state != StatePending {
		return Point{}, Point{}, false
	}
	return i.start, i.preview, true
}

// Settle pulls every player back inside the surface, where a drag would have
// left it. Positions that came from outside the editor are not trusted to be in
// bounds.
func (i *Interpreter) Settle() {
	for _, p := range i.arr.Players() {
		c := i.surface.Clamp(Point{p.X, p.Y}, PlayerRadius)
		if c.X != p.X || c.Y != p.Y {
			i.arr.MovePlayer(p.ID, c.X, c.Y)
		}
	}
}

// Abandon drops any gesture in progress without touching the arrangement.
func (i *Interpreter) Abandon() {
	i.state = StateIdle
	i.dragID = ""
	i.grab = Point{}
	i.start = Point{}
	i.preview = Point{}
	i.pressed = false
}

func (i *Interpreter) PointerDown(p Point) {
	if i.modes.Drawing() {
		i.pressed = true
		i.pressAt = p
		return
	}
	if i.state != StateIdle {
		return
	}
	pl, ok := i.hit(p)
	if !ok {
		return
	}
	i.state = StateDragging
	i.dragID = pl.ID
	i.grab = p.Sub(Point{pl.X, pl.Y})
}

func (i *Interpreter) PointerMove(p Point) {
	switch i.state {
	case StateDragging:
		pos := i.surface.Clamp(p.Sub(i.grab), PlayerRadius)
		i.arr.MovePlayer(i.dragID, pos.X, pos.Y)
	case StatePending:
		i.preview = p
	}
}

func (i *Interpreter) PointerUp(p Point) {
	if i.modes.Drawing() {
		clicked := i.pressed && p.Dist(i.pressAt) <= ClickSlop
		i.pressed = false
		if clicked {
			i.click(p)
		}
		return
	}
	if i.state == StateDragging {
		i.state = StateIdle
		i.dragID = ""
		i.grab = Point{}
	}
}

func (i *Interpreter) click(p Point) {
	switch i.state {
	case StateIdle:
		i.state = StatePending
		i.start = p
		i.preview = p
	case StatePending:
		i.arr.AddArrow(i.start.X, i.start.Y, p.X, p.Y, i.arrowColor)
		i.state = StateIdle
		i.start = Point{}
		i.preview = Point{}
	}
}

// hit returns the player under p. Later players are drawn on top, so they win.
func (i *Interpreter) hit(p Point) (formation.Player, bool) {
	players := i.arr.Players()
	for k := len(players) - 1; k >= 0; k-- {
		pl := players[k]
		if p.Dist(Point{pl.X, pl.Y}) <= PlayerRadius {
			return pl, true
		}
	}
	return formation.Player{}, false
}
