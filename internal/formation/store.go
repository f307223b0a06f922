// Package formation holds the arrangement of players and tactical arrows on the pitch
// and moves it in and out of a blob store.
package formation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pitchboard/internal/blobstore"
)

// Store owns the player and arrow collections. It is not safe for concurrent use;
// all mutations happen on the editor's update loop.
type Store struct {
	players []Player
	arrows  []Arrow

	blobs blobstore.Store
	newID func() string
	now   func() time.Time
	log   zerolog.Logger
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "formation").Logger() }
}

// WithIDGenerator replaces the arrow id source. The generator must never repeat.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

func WithClock(f func() time.Time) Option {
	return func(s *Store) { s.now = f }
}

// NewStore starts from the default roster with no arrows.
func NewStore(blobs blobstore.Store, opts ...Option) *Store {
	s := &Store{
		players: DefaultRoster(),
		arrows:  []Arrow{},
		blobs:   blobs,
		newID:   arrowID,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// arrowID returns a time-ordered UUID so ids sort in creation order.
func arrowID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) Players() []Player {
	return append([]Player(nil), s.players...)
}

func (s *Store) Arrows() []Arrow {
	return append([]Arrow(nil), s.arrows...)
}

// Snapshot copies the current arrangement, stamped with the store clock.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Players: s.Players(), Arrows: s.Arrows(), SavedAt: s.now()}
}

// MovePlayer sets the position of the player with the given id. Unknown ids are ignored.
// Callers clamp the position.
func (s *Store) MovePlayer(id string, x, y float64) {
	for i := range s.players {
		if s.players[i].ID == id {
			s.players[i].X = x
			s.players[i].Y = y
			return
		}
	}
}

// AddArrow appends a new arrow and returns it. An empty color uses DefaultArrowColor.
func (s *Store) AddArrow(startX, startY, endX, endY float64, color string) Arrow {
	if color == "" {
		color = DefaultArrowColor
	}
	a := Arrow{
		ID:     s.newID(),
		StartX: startX,
		StartY: startY,
		EndX:   endX,
		EndY:   endY,
		Color:  color,
	}
	s.arrows = append(s.arrows, a)
	s.log.Debug().Str("arrow", a.ID).Msg("arrow added")
	return a
}

func (s *Store) ClearArrows() {
	s.arrows = []Arrow{}
}

// Reset restores the default roster and drops every arrow.
func (s *Store) Reset() {
	s.players = DefaultRoster()
	s.arrows = []Arrow{}
}

// PrepareSave encodes the arrangement now and returns a function that writes it.
// The returned function does not touch the store and may run on another goroutine.
func (s *Store) PrepareSave() func(ctx context.Context) error {
	data, err := Encode(s.Snapshot())
	blobs := s.blobs
	log := s.log
	return func(ctx context.Context) error {
		if err != nil {
			return err
		}
		if err := blobs.Put(ctx, SnapshotKey, data); err != nil {
			log.Error().Err(err).Msg("save failed")
			return fmt.Errorf("save formation: %w", err)
		}
		log.Info().Int("bytes", len(data)).Msg("formation saved")
		return nil
	}
}

func (s *Store) SaveSnapshot(ctx context.Context) error {
	return s.PrepareSave()(ctx)
}

// PrepareLoad returns a function that reads the saved blob without touching the
// store, so it may run on another goroutine. found is false when nothing has been
// saved yet. Pass the data to Restore on the update loop.
func (s *Store) PrepareLoad() func(ctx context.Context) (data []byte, found bool, err error) {
	blobs := s.blobs
	log := s.log
	return func(ctx context.Context) ([]byte, bool, error) {
		data, err := blobs.Get(ctx, SnapshotKey)
		if errors.Is(err, blobstore.ErrNotFound) {
			log.Debug().Msg("no saved formation")
			return nil, false, nil
		}
		if err != nil {
			log.Error().Err(err).Msg("load failed")
			return nil, false, fmt.Errorf("load formation: %w", err)
		}
		return data, true, nil
	}
}

// LoadSnapshot replaces the arrangement with the saved one. It reports false with no
// error when nothing has been saved yet. On any failure the current state is kept.
func (s *Store) LoadSnapshot(ctx context.Context) (bool, error) {
	data, found, err := s.PrepareLoad()(ctx)
	if err != nil || !found {
		return false, err
	}
	if err := s.Restore(data); err != nil {
		return false, err
	}
	return true, nil
}

// Restore replaces the arrangement from an encoded snapshot, as LoadSnapshot does.
func (s *Store) Restore(data []byte) error {
	snap, err := Decode(data)
	if err != nil {
		s.log.Error().Err(err).Msg("discarding malformed formation")
		return err
	}
	s.players = snap.Players
	s.arrows = snap.Arrows
	s.log.Info().
		Int("players", len(s.players)).
		Int("arrows", len(s.arrows)).
		Time("savedAt", snap.SavedAt).
		Msg("formation restored")
	return nil
}
