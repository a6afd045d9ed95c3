package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/parlor/pkg/server/internal/db"

	_ "github.com/parlorgames/parlor/pkg/games/pig"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	s := newWithDB(Config{}, database, slog.Disabled)
	t.Cleanup(func() { s.Close() })
	return s
}

// login drives the fused authorize path without a live connection;
// packets queue on the User and are dropped at flush, like any seat
// whose connection is gone.
func login(t *testing.T, s *Server, username, password string) *User {
	t.Helper()
	row, err := s.authenticate(username, password)
	require.NoError(t, err)
	return s.loginUser(row, nil)
}

func TestAuthorizeRegistersFreeUsername(t *testing.T) {
	s := newTestServer(t)

	u := login(t, s, "alice", "hunter2")
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.UUID)
	assert.Equal(t, locShell, u.shell.Entity().location)

	row, err := s.db.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, db.TrustAdmin, row.TrustLevel, "first account is the admin")
	assert.True(t, row.Approved)
	assert.NotEqual(t, "hunter2", row.PasswordHash)
}

func TestSecondRegistrantStartsPending(t *testing.T) {
	s := newTestServer(t)
	login(t, s, "alice", "pw1")

	row, err := s.authenticate("bob", "pw2")
	require.NoError(t, err)
	assert.Equal(t, db.TrustPlayer, row.TrustLevel)
	assert.False(t, row.Approved, "later accounts wait for approval")
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	s := newTestServer(t)
	login(t, s, "alice", "correct")

	_, err := s.authenticate("alice", "wrong")
	assert.Error(t, err)

	row, err := s.authenticate("alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, "alice", row.Username)
}

func TestReattachAfterReconnect(t *testing.T) {
	s := newTestServer(t)
	u := login(t, s, "alice", "pw")

	tbl, err := s.tables.Create("pig", u.UUID, u.Username, u)
	require.NoError(t, err)
	u.shell.Entity().location = locInGame

	// The user drops: the seat is parked, the player stays.
	p := tbl.Base().PlayerByID(u.UUID)
	require.NotNil(t, p)
	p.AttachSeat(nil)
	delete(s.users, u.Username)

	again := login(t, s, "alice", "pw")
	assert.Equal(t, locInGame, again.shell.Entity().location, "login lands back at the table")
	assert.Same(t, again, p.Seat())
}

func TestRestoreRequiresMembersOnline(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice", "pw")
	bob := login(t, s, "bob", "pw")

	tbl, err := s.tables.Create("pig", alice.UUID, alice.Username, alice)
	require.NoError(t, err)
	tbl.Base().AddHuman(bob.UUID, bob.Username, bob, false)
	require.NoError(t, tbl.SaveGame(alice.Username, "midgame"))
	require.Zero(t, s.tables.Count())

	saved, err := s.db.ListSavedTables(alice.Username)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	// With bob offline the restore refuses and keeps the snapshot.
	delete(s.users, bob.Username)
	c := alice.shell.Entity()
	c.savedID = saved[0].ID
	assert.Nil(t, restoreSavedTable(c))
	assert.Zero(t, s.tables.Count())
	assert.Equal(t, locShell, c.location)
	_, err = s.db.GetSavedTable(saved[0].ID)
	assert.NoError(t, err, "a refused restore must not consume the snapshot")

	// Bob back in the shell: the restore succeeds and pulls him in.
	bob = login(t, s, "bob", "pw")
	require.NotNil(t, restoreSavedTable(c))
	assert.Equal(t, 1, s.tables.Count())
	assert.Equal(t, locInGame, c.location)
	assert.Equal(t, locInGame, bob.shell.Entity().location)
	_, err = s.db.GetSavedTable(saved[0].ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRestoreRefusedWhenMemberSeatedElsewhere(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice", "pw")
	bob := login(t, s, "bob", "pw")

	tbl, err := s.tables.Create("pig", alice.UUID, alice.Username, alice)
	require.NoError(t, err)
	tbl.Base().AddHuman(bob.UUID, bob.Username, bob, false)
	require.NoError(t, tbl.SaveGame(alice.Username, "midgame"))

	// Bob starts a fresh table of his own.
	_, err = s.tables.Create("pig", bob.UUID, bob.Username, bob)
	require.NoError(t, err)
	bob.shell.Entity().location = locInGame

	saved, err := s.db.ListSavedTables(alice.Username)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	c := alice.shell.Entity()
	c.savedID = saved[0].ID
	assert.Nil(t, restoreSavedTable(c))
	assert.Equal(t, 1, s.tables.Count(), "only bob's new table is live")
}

func TestStatusFileSnapshot(t *testing.T) {
	s := newTestServer(t)
	s.cfg.StatusFile = filepath.Join(t.TempDir(), "status.json")
	login(t, s, "alice", "pw")

	s.writeStatusFile()

	data, err := os.ReadFile(s.cfg.StatusFile)
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, Version, st["version"])
	assert.EqualValues(t, 1, st["users_online"])
	assert.Contains(t, st, "uptime_seconds")
	assert.Contains(t, st, "goroutines")
}
