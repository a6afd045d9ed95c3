package table

import (
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/protocol"

	_ "github.com/parlorgames/parlor/pkg/games/pig"
)

type stubCallbacks struct {
	destroyed []string
	saved     []string
	results   int
	left      []string
}

func (c *stubCallbacks) TableDestroyed(t *Table) { c.destroyed = append(c.destroyed, t.ID) }

func (c *stubCallbacks) SaveTable(t *Table, owner, saveName string) error {
	c.saved = append(c.saved, saveName)
	return nil
}

func (c *stubCallbacks) RecordResult(t *Table, res *game.Result, rankings [][]string) {
	c.results++
}

func (c *stubCallbacks) MemberLeft(t *Table, playerID string) {
	c.left = append(c.left, playerID)
}

func (c *stubCallbacks) WinProbability(gameType, aID, bID string) (float64, bool) {
	return 0.5, true
}

func (c *stubCallbacks) SimulateArgs(gameType, optionsJSON string, bots int) []string {
	return []string{"sim", gameType}
}

type stubSeat struct{ name string }

func (s *stubSeat) SeatName() string { return s.name }
func (s *stubSeat) Locale() string { return "en" }
func (s *stubSeat) IsBotSeat() bool { return false }
func (s *stubSeat) Preferences() game.Preferences { return game.DefaultPreferences() }
func (s *stubSeat) Enqueue(protocol.Packet) {}

func TestCreateAndLookup(t *testing.T) {
	cb := &stubCallbacks{}
	m := NewManager(slog.Disabled, cb)

	tbl, err := m.Create("pig", "uuid-alice", "alice", &stubSeat{name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())
	assert.Same(t, tbl, m.Get(tbl.ID))
	assert.Equal(t, "alice", tbl.HostName())
	assert.True(t, tbl.HasPlayer("uuid-alice"))

	found := m.FindUserTable("uuid-alice")
	assert.Same(t, tbl, found)
	assert.Nil(t, m.FindUserTable("uuid-nobody"))
}

func TestCreateUnknownGameType(t *testing.T) {
	m := NewManager(slog.Disabled, &stubCallbacks{})
	_, err := m.Create("mumbletypeg", "uuid-a", "a", &stubSeat{name: "a"})
	assert.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestWaitingTablesExcludesStarted(t *testing.T) {
	cb := &stubCallbacks{}
	m := NewManager(slog.Disabled, cb)

	waiting, err := m.Create("pig", "uuid-a", "a", &stubSeat{name: "a"})
	require.NoError(t, err)

	started, err := m.Create("pig", "uuid-b", "b", &stubSeat{name: "b"})
	require.NoError(t, err)
	started.Base().AddHuman("uuid-c", "c", &stubSeat{name: "c"}, false)
	hp := started.Base().PlayerByID("uuid-b")
	started.Game.State().ExecuteAction(hp, hp.FindAction("start_game"), &game.ActionContext{})
	require.Equal(t, game.StatusPlaying, started.Base().Status)

	list := m.WaitingTables()
	require.Len(t, list, 1)
	assert.Same(t, waiting, list[0])
}

func TestDestroyNotifiesServer(t *testing.T) {
	cb := &stubCallbacks{}
	m := NewManager(slog.Disabled, cb)

	tbl, err := m.Create("pig", "uuid-a", "a", &stubSeat{name: "a"})
	require.NoError(t, err)

	m.Destroy(tbl.ID)
	assert.Zero(t, m.Count())
	assert.Equal(t, []string{tbl.ID}, cb.destroyed)

	// Destroying a gone table is a no-op.
	m.Destroy(tbl.ID)
	assert.Len(t, cb.destroyed, 1)
}

func TestSaveGameSnapshotsAndDestroys(t *testing.T) {
	cb := &stubCallbacks{}
	m := NewManager(slog.Disabled, cb)

	tbl, err := m.Create("pig", "uuid-a", "a", &stubSeat{name: "a"})
	require.NoError(t, err)

	require.NoError(t, tbl.SaveGame("a", "midgame"))
	assert.Equal(t, []string{"midgame"}, cb.saved)
	assert.Zero(t, m.Count(), "a saved table leaves the live set")
	assert.Equal(t, []string{tbl.ID}, cb.destroyed)
}

func TestRestoreRebuildsGame(t *testing.T) {
	cb := &stubCallbacks{}
	m := NewManager(slog.Disabled, cb)

	tbl, err := m.Create("pig", "uuid-a", "a", &stubSeat{name: "a"})
	require.NoError(t, err)
	tbl.Base().AddBot("Ada")
	snapshot, err := game.Serialize(tbl.Game)
	require.NoError(t, err)
	m.Destroy(tbl.ID)

	restored, err := m.Restore("pig", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "a", restored.HostName())
	assert.True(t, restored.HasPlayer("uuid-a"))

	members := restored.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].Username)
	assert.True(t, members[1].IsBot)
}

func TestOnTickReachesEveryTable(t *testing.T) {
	cb := &stubCallbacks{}
	m := NewManager(slog.Disabled, cb)

	a, err := m.Create("pig", "uuid-a", "a", &stubSeat{name: "a"})
	require.NoError(t, err)
	b, err := m.Create("pig", "uuid-b", "b", &stubSeat{name: "b"})
	require.NoError(t, err)

	m.OnTick()
	m.OnTick()
	assert.Equal(t, int64(2), a.Base().TickCount)
	assert.Equal(t, int64(2), b.Base().TickCount)
}
