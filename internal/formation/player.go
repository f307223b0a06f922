package formation

// Player is a role-tagged marker on the pitch. Only X and Y change after creation.
type Player struct {
	ID    string  `json:"id"`
	Role  string  `json:"position"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Arrow is a tactical arrow drawn from (StartX, StartY) to (EndX, EndY).
type Arrow struct {
	ID     string  `json:"id"`
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
	Color  string  `json:"color"`
}

const (
	DefaultArrowColor = "#ef4444"
	fallbackRoleColor = "#6b7280"
)

var roleColors = map[string]string{
	"GK": "#22c55e",
	"CB": "#eab308",
	"LB": "#eab308",
	"RB": "#eab308",
	"CM": "#3b82f6",
	"DM": "#3b82f6",
	"LW": "#3b82f6",
	"RW": "#3b82f6",
	"ST": "#ef4444",
	"CF": "#ef4444",
}

// RoleColor returns the display colour for a role tag. Unknown roles get a neutral grey.
func RoleColor(role string) string {
	if c, ok := roleColors[role]; ok {
		return c
	}
	return fallbackRoleColor
}

func newPlayer(id, role, name string, x, y float64) Player {
	return Player{ID: id, Role: role, Name: name, X: x, Y: y, Color: RoleColor(role)}
}

// DefaultRoster returns a fresh copy of the built-in 4-1-2-3 layout.
func DefaultRoster() []Player {
	return []Player{
		newPlayer("1", "GK", "Goalkeeper", 80, 250),
		newPlayer("2", "CB", "Center Back", 180, 180),
		newPlayer("3", "CB", "Center Back", 180, 320),
		newPlayer("4", "LB", "Left Back", 220, 400),
		newPlayer("5", "RB", "Right Back", 220, 100),
		newPlayer("6", "DM", "Defensive Mid", 320, 250),
		newPlayer("7", "CM", "Center Mid", 420, 200),
		newPlayer("8", "CM", "Center Mid", 420, 300),
		newPlayer("9", "RW", "Right Wing", 520, 120),
		newPlayer("10", "LW", "Left Wing", 520, 380),
		newPlayer("11", "ST", "Striker", 620, 250),
	}
}
