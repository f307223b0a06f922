package formation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// SnapshotKey is the blob store key every save overwrites.
const SnapshotKey = "footballFormation"

// timestampLayout matches JavaScript's Date.toISOString output.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrMalformedSnapshot is returned when a stored blob is not a usable arrangement.
var ErrMalformedSnapshot = errors.New("malformed formation snapshot")

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidColor reports whether c is a #rrggbb colour.
func ValidColor(c string) bool { return hexColor.MatchString(c) }

// Snapshot is the unit of persistence: both collections plus the time it was taken.
type Snapshot struct {
	Players []Player
	Arrows  []Arrow
	SavedAt time.Time
}

type wireSnapshot struct {
	Players   *[]Player `json:"players"`
	Arrows    []Arrow   `json:"arrows"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Encode serialises a snapshot to the blob format.
func Encode(s Snapshot) ([]byte, error) {
	players := s.Players
	if players == nil {
		players = []Player{}
	}
	arrows := s.Arrows
	if arrows == nil {
		arrows = []Arrow{}
	}
	w := wireSnapshot{
		Players:   &players,
		Arrows:    arrows,
		Timestamp: s.SavedAt.UTC().Format(timestampLayout),
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a blob. Every failure wraps ErrMalformedSnapshot.
// A missing "arrows" field decodes to an empty arrow collection.
func Decode(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if w.Players == nil || len(*w.Players) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no players", ErrMalformedSnapshot)
	}

	players := make([]Player, len(*w.Players))
	seen := make(map[string]bool, len(players))
	for i, p := range *w.Players {
		if p.ID == "" {
			return Snapshot{}, fmt.Errorf("%w: player %d has no id", ErrMalformedSnapshot, i)
		}
		if seen[p.ID] {
			return Snapshot{}, fmt.Errorf("%w: duplicate player id %q", ErrMalformedSnapshot, p.ID)
		}
		seen[p.ID] = true
		if !hexColor.MatchString(p.Color) {
			p.Color = RoleColor(p.Role)
		}
		players[i] = p
	}

	arrows := make([]Arrow, 0, len(w.Arrows))
	seen = make(map[string]bool, len(w.Arrows))
	for i, a := range w.Arrows {
		if a.ID == "" {
			return Snapshot{}, fmt.Errorf("%w: arrow %d has no id", ErrMalformedSnapshot, i)
		}
		if seen[a.ID] {
			return Snapshot{}, fmt.Errorf("%w: duplicate arrow id %q", ErrMalformedSnapshot, a.ID)
		}
		seen[a.ID] = true
		if !hexColor.MatchString(a.Color) {
			a.Color = DefaultArrowColor
		}
		arrows = append(arrows, a)
	}

	var savedAt time.Time
	if w.Timestamp != "" {
		t, err := time.Parse(time.RFC3339Nano, w.Timestamp)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: bad timestamp: %v", ErrMalformedSnapshot, err)
		}
		savedAt = t
	}

	return Snapshot{Players: players, Arrows: arrows, SavedAt: savedAt}, nil
}
