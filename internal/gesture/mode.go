package gesture

// Mode selects how pointer gestures are read.
type Mode int

const (
	ModeMove Mode = iota
	ModeDraw
)

func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "MOVE"
	case ModeDraw:
		return "DRAW"
	default:
		return "UNKNOWN"
	}
}

// Controller holds the drawing-mode flag.
type Controller struct {
	mode      Mode
	listeners []func(Mode)
}

func NewController() *Controller {
	return &Controller{mode: ModeMove}
}

func (c *Controller) Current() Mode { return c.mode }

func (c *Controller) Drawing() bool { return c.mode == ModeDraw }

// Toggle flips between move and draw and notifies listeners in registration order.
func (c *Controller) Toggle() Mode {
	if c.mode == ModeDraw {
		c.mode = ModeMove
	} else {
		c.mode = ModeDraw
	}
	for _, f := range c.listeners {
		f(c.mode)
	}
	return c.mode
}

// OnToggle registers f to run after every Toggle.
func (c *Controller) OnToggle(f func(Mode)) {
	c.listeners = append(c.listeners, f)
}
