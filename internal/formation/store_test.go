package formation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchboard/internal/blobstore"
)

type brokenBlobs struct{ err error }

func (b brokenBlobs) Get(context.Context, string) ([]byte, error) { return nil, b.err }
func (b brokenBlobs) Put(context.Context, string, []byte) error  { return b.err }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("arrow-%d", n)
	}
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(blobs blobstore.Store) *Store {
	return NewStore(blobs,
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestNewStore_StartsFromDefaults(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	assert.Equal(t, DefaultRoster(), s.Players())
	assert.Empty(t, s.Arrows())
}

func TestMovePlayer(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.MovePlayer("7", 450.5, 210)

	players := s.Players()
	want := DefaultRoster()
	want[6].X, want[6].Y = 450.5, 210
	assert.Equal(t, want, players, "only the matching player's position changes")
}

func TestMovePlayer_UnknownIDIsNoop(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.MovePlayer("99", 1, 1)
	assert.Equal(t, DefaultRoster(), s.Players())
}

func TestMovePlayer_DoesNotClamp(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.MovePlayer("1", -40, 9000)
	assert.Equal(t, -40.0, s.Players()[0].X)
	assert.Equal(t, 9000.0, s.Players()[0].Y)
}

func TestAddArrow(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	a := s.AddArrow(100, 100, 300, 100, "")
	b := s.AddArrow(5, 5, 5, 5, "#ffffff")

	assert.Equal(t, Arrow{ID: "arrow-1", StartX: 100, StartY: 100, EndX: 300, EndY: 100, Color: DefaultArrowColor}, a)
	assert.Equal(t, []Arrow{a, b}, s.Arrows())
}

func TestAddArrow_DefaultIDsAreUnique(t *testing.T) {
	s := NewStore(blobstore.NewMemory())
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		a := s.AddArrow(0, 0, 1, 1, "")
		require.False(t, seen[a.ID], "id %s repeated", a.ID)
		seen[a.ID] = true
	}
}

func TestClearArrows_LeavesPlayersUntouched(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.MovePlayer("3", 200, 333)
	s.AddArrow(1, 2, 3, 4, "")
	before, err := Encode(Snapshot{Players: s.Players()})
	require.NoError(t, err)

	s.ClearArrows()

	after, err := Encode(Snapshot{Players: s.Players()})
	require.NoError(t, err)
	assert.Empty(t, s.Arrows())
	assert.True(t, bytes.Equal(before, after))

	s.ClearArrows()
	assert.Empty(t, s.Arrows())
}

func TestReset(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.MovePlayer("1", 10, 10)
	s.MovePlayer("11", 900, 480)
	s.AddArrow(1, 2, 3, 4, "")

	s.Reset()

	assert.Equal(t, DefaultRoster(), s.Players())
	assert.Empty(t, s.Arrows())
}

func TestReadersGetCopies(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.AddArrow(1, 2, 3, 4, "")

	players := s.Players()
	players[0].X = -1
	arrows := s.Arrows()
	arrows[0].EndX = -1

	assert.Equal(t, 80.0, s.Players()[0].X)
	assert.Equal(t, 3.0, s.Arrows()[0].EndX)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	blobs := blobstore.NewMemory()
	s := newTestStore(blobs)
	s.MovePlayer("9", 700, 60)
	s.AddArrow(100, 100, 300, 100, "")
	s.AddArrow(40, 40, 40, 40, "#3b82f6")
	wantPlayers, wantArrows := s.Players(), s.Arrows()

	require.NoError(t, s.SaveSnapshot(context.Background()))

	s.Reset()
	loaded, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, wantPlayers, s.Players())
	assert.Equal(t, wantArrows, s.Arrows())

	fresh := newTestStore(blobs)
	_, err = fresh.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, wantPlayers, fresh.Players())
	assert.Equal(t, wantArrows, fresh.Arrows())
}

func TestSave_WritesTimestampedBlob(t *testing.T) {
	blobs := blobstore.NewMemory()
	s := newTestStore(blobs)
	require.NoError(t, s.SaveSnapshot(context.Background()))

	data, err := blobs.Get(context.Background(), SnapshotKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2024-06-01T12:00:00.000Z"`)
}

func TestSave_Overwrites(t *testing.T) {
	blobs := blobstore.NewMemory()
	s := newTestStore(blobs)
	s.AddArrow(1, 1, 2, 2, "")
	require.NoError(t, s.SaveSnapshot(context.Background()))
	s.ClearArrows()
	require.NoError(t, s.SaveSnapshot(context.Background()))

	s.AddArrow(9, 9, 9, 9, "")
	_, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Arrows())
}

func TestPrepareSave_CapturesStateAtCallTime(t *testing.T) {
	blobs := blobstore.NewMemory()
	s := newTestStore(blobs)
	write := s.PrepareSave()

	s.AddArrow(1, 1, 2, 2, "")
	require.NoError(t, write(context.Background()))

	s.Reset()
	_, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Arrows(), "arrow added after PrepareSave is not part of the save")
}

func TestSave_ReportsStorageFailure(t *testing.T) {
	full := errors.New("quota exceeded")
	s := newTestStore(brokenBlobs{err: full})
	s.AddArrow(1, 1, 2, 2, "")

	err := s.SaveSnapshot(context.Background())
	require.ErrorIs(t, err, full)
	assert.Len(t, s.Arrows(), 1, "in-memory state unaffected")
}

func TestLoad_NothingSaved(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	s.MovePlayer("2", 1, 1)
	before := s.Players()

	loaded, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, before, s.Players())
}

func TestLoad_StorageFailureKeepsState(t *testing.T) {
	s := newTestStore(brokenBlobs{err: errors.New("disk gone")})
	s.AddArrow(1, 1, 2, 2, "")

	loaded, err := s.LoadSnapshot(context.Background())
	assert.Error(t, err)
	assert.False(t, loaded)
	assert.Len(t, s.Arrows(), 1)
}

func TestLoad_MissingArrowsField(t *testing.T) {
	blobs := blobstore.NewMemory()
	require.NoError(t, blobs.Put(context.Background(), SnapshotKey,
		[]byte(`{"players":[{"id":"1","position":"GK","name":"Goalkeeper","x":90,"y":240,"color":"#22c55e"}],"timestamp":"2024-01-01T00:00:00.000Z"}`)))
	s := newTestStore(blobs)
	s.AddArrow(1, 1, 2, 2, "")

	loaded, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Empty(t, s.Arrows())
	assert.Equal(t, []Player{{ID: "1", Role: "GK", Name: "Goalkeeper", X: 90, Y: 240, Color: "#22c55e"}}, s.Players())
}

func TestLoad_MalformedKeepsStateAndLogs(t *testing.T) {
	blobs := blobstore.NewMemory()
	require.NoError(t, blobs.Put(context.Background(), SnapshotKey, []byte(`{"players": [oops`)))

	var logs bytes.Buffer
	s := NewStore(blobs, WithIDGenerator(sequentialIDs()), WithLogger(zerolog.New(&logs)))
	s.MovePlayer("4", 300, 300)
	s.AddArrow(1, 2, 3, 4, "")
	wantPlayers, wantArrows := s.Players(), s.Arrows()

	loaded, err := s.LoadSnapshot(context.Background())
	require.ErrorIs(t, err, ErrMalformedSnapshot)
	assert.False(t, loaded)
	assert.Equal(t, wantPlayers, s.Players())
	assert.Equal(t, wantArrows, s.Arrows())
	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), "discarding malformed formation")
}

func TestPrepareLoad_LeavesStateUntilRestore(t *testing.T) {
	blobs := blobstore.NewMemory()
	saved := newTestStore(blobs)
	saved.MovePlayer("9", 700, 100)
	require.NoError(t, saved.SaveSnapshot(context.Background()))

	s := newTestStore(blobs)
	read := s.PrepareLoad()
	data, found, err := read(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, DefaultRoster(), s.Players(), "reading alone changes nothing")

	require.NoError(t, s.Restore(data))
	assert.Equal(t, saved.Players(), s.Players())
}

func TestPrepareLoad_NotFoundAndFailure(t *testing.T) {
	_, found, err := newTestStore(blobstore.NewMemory()).PrepareLoad()(context.Background())
	require.NoError(t, err)
	assert.False(t, found)

	gone := errors.New("disk gone")
	_, found, err = newTestStore(brokenBlobs{err: gone}).PrepareLoad()(context.Background())
	require.ErrorIs(t, err, gone)
	assert.False(t, found)
}

func TestRestore(t *testing.T) {
	s := newTestStore(blobstore.NewMemory())
	data, err := Encode(Snapshot{
		Players: []Player{{ID: "x", Role: "CF", Name: "Forward", X: 1, Y: 2, Color: "#ef4444"}},
		Arrows:  []Arrow{{ID: "a", EndX: 1, Color: "#ef4444"}},
	})
	require.NoError(t, err)

	require.NoError(t, s.Restore(data))
	assert.Len(t, s.Players(), 1)
	assert.Len(t, s.Arrows(), 1)

	assert.Error(t, s.Restore([]byte("nope")))
	assert.Len(t, s.Players(), 1)
}
