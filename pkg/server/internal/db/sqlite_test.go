package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/parlor/pkg/rating"
)

func openTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	sdb, err := NewSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })
	return sdb
}

func TestUserLifecycle(t *testing.T) {
	sdb := openTestDB(t)

	n, err := sdb.CountUsers()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = sdb.GetUser("alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	u := &User{
		Username:        "alice",
		PasswordHash:    "$2a$10$fakehash",
		UUID:            "uuid-alice",
		Locale:          "en",
		PreferencesJSON: "{}",
		TrustLevel:      TrustAdmin,
		Approved:        true,
	}
	require.NoError(t, sdb.CreateUser(u))
	assert.NotZero(t, u.ID)

	got, err := sdb.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "uuid-alice", got.UUID)
	assert.Equal(t, TrustAdmin, got.TrustLevel)
	assert.True(t, got.Approved)

	byUUID, err := sdb.GetUserByUUID("uuid-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", byUUID.Username)

	require.NoError(t, sdb.UpdateUserLocale("alice", "de"))
	require.NoError(t, sdb.UpdateUserPreferences("alice", `{"keeping_style":"face"}`))
	got, err = sdb.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "de", got.Locale)
	assert.Equal(t, `{"keeping_style":"face"}`, got.PreferencesJSON)

	n, err = sdb.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dup := &User{Username: "alice", PasswordHash: "x", UUID: "uuid-other",
		Locale: "en", PreferencesJSON: "{}", TrustLevel: TrustPlayer}
	assert.Error(t, sdb.CreateUser(dup), "usernames are unique")
}

func TestReopenKeepsPendingUsersPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	sdb, err := NewSQLite(path)
	require.NoError(t, err)

	require.NoError(t, sdb.CreateUser(&User{
		Username: "carol", PasswordHash: "x", UUID: "uuid-carol",
		Locale: "en", PreferencesJSON: "{}", TrustLevel: TrustPlayer,
		Approved: false,
	}))
	require.NoError(t, sdb.Close())

	sdb, err = NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })

	got, err := sdb.GetUser("carol")
	require.NoError(t, err)
	assert.False(t, got.Approved, "a restart must not approve pending users")
}

func TestLiveTableSnapshotRoundTrip(t *testing.T) {
	sdb := openTestDB(t)

	tables, err := sdb.LoadLiveTables()
	require.NoError(t, err)
	assert.Empty(t, tables)

	lt := &LiveTable{
		TableID:     "t1",
		GameType:    "pig",
		Host:        "alice",
		MembersJSON: []byte(`[{"name":"alice"}]`),
		GameJSON:    []byte(`{"totals":{}}`),
		Status:      "playing",
	}
	require.NoError(t, sdb.SaveLiveTable(lt))

	// Re-saving the same table replaces the row.
	lt.Status = "waiting"
	require.NoError(t, sdb.SaveLiveTable(lt))

	tables, err = sdb.LoadLiveTables()
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "t1", tables[0].TableID)
	assert.Equal(t, "waiting", tables[0].Status)
	assert.JSONEq(t, `{"totals":{}}`, string(tables[0].GameJSON))

	require.NoError(t, sdb.DeleteAllLiveTables())
	tables, err = sdb.LoadLiveTables()
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestSavedTables(t *testing.T) {
	sdb := openTestDB(t)

	first := &SavedTable{
		Username:    "alice",
		SaveName:    "friday night",
		GameType:    "farkle",
		GameJSON:    []byte(`{}`),
		MembersJSON: []byte(`[]`),
		SavedAt:     time.Date(2026, 8, 20, 19, 0, 0, 0, time.UTC),
	}
	second := &SavedTable{
		Username:    "alice",
		SaveName:    "later",
		GameType:    "pig",
		GameJSON:    []byte(`{}`),
		MembersJSON: []byte(`[]`),
		SavedAt:     time.Date(2026, 8, 21, 19, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sdb.InsertSavedTable(first))
	require.NoError(t, sdb.InsertSavedTable(second))
	require.NotZero(t, first.ID)

	list, err := sdb.ListSavedTables("alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "later", list[0].SaveName, "newest save first")

	list, err = sdb.ListSavedTables("bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := sdb.GetSavedTable(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "friday night", got.SaveName)
	assert.True(t, got.SavedAt.Equal(first.SavedAt))

	require.NoError(t, sdb.DeleteSavedTable(first.ID))
	_, err = sdb.GetSavedTable(first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultsAndStats(t *testing.T) {
	sdb := openTestDB(t)

	res := &GameResult{
		GameType:       "pig",
		Timestamp:      "2026-08-22T10:00:00Z",
		DurationTicks:  2400,
		CustomDataJSON: []byte(`{"winner":"alice","final_scores":{"alice":104,"bob":88}}`),
	}
	players := []ResultPlayer{
		{PlayerID: "uuid-alice", Name: "alice"},
		{PlayerID: "uuid-bob", Name: "bob"},
		{PlayerID: "bot-1", Name: "Ada", IsBot: true},
	}
	require.NoError(t, sdb.InsertGameResult(res, players))
	require.NotZero(t, res.ID)

	// A second game that bob wins.
	require.NoError(t, sdb.InsertGameResult(&GameResult{
		GameType:       "pig",
		Timestamp:      "2026-08-22T11:00:00Z",
		DurationTicks:  1800,
		CustomDataJSON: []byte(`{"winner":"bob"}`),
	}, players[:2]))

	stats, err := sdb.StatsFor("uuid-alice")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "pig", stats[0].GameType)
	assert.Equal(t, 2, stats[0].GamesPlayed)
	assert.Equal(t, 1, stats[0].Wins)

	stats, err = sdb.StatsFor("uuid-bob")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Wins)

	stats, err = sdb.StatsFor("uuid-nobody")
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestRatingStore(t *testing.T) {
	sdb := openTestDB(t)

	_, ok, err := sdb.GetRating("uuid-alice", "pig")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sdb.PutRating("uuid-alice", "pig", rating.Rating{Mu: 28, Sigma: 4}))
	require.NoError(t, sdb.PutRating("uuid-bob", "pig", rating.Rating{Mu: 22, Sigma: 2}))
	require.NoError(t, sdb.PutRating("uuid-alice", "farkle", rating.Rating{Mu: 40, Sigma: 1}))

	r, ok, err := sdb.GetRating("uuid-alice", "pig")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 28.0, r.Mu, 1e-9)

	// Upsert replaces in place.
	require.NoError(t, sdb.PutRating("uuid-alice", "pig", rating.Rating{Mu: 29, Sigma: 3.5}))
	r, _, err = sdb.GetRating("uuid-alice", "pig")
	require.NoError(t, err)
	assert.InDelta(t, 29.0, r.Mu, 1e-9)

	top, err := sdb.TopRatings("pig", 10)
	require.NoError(t, err)
	require.Len(t, top, 2, "farkle ratings stay out of the pig board")
	// alice: 29 - 10.5 = 18.5; bob: 22 - 6 = 16.
	assert.Equal(t, "uuid-alice", top[0].PlayerID)
	assert.Equal(t, "uuid-bob", top[1].PlayerID)
}

func TestTopRatingsResolvesNames(t *testing.T) {
	sdb := openTestDB(t)

	require.NoError(t, sdb.CreateUser(&User{
		Username: "alice", PasswordHash: "x", UUID: "uuid-alice",
		Locale: "en", PreferencesJSON: "{}", TrustLevel: TrustPlayer,
	}))
	require.NoError(t, sdb.PutRating("uuid-alice", "pig", rating.Rating{Mu: 25, Sigma: 8}))
	require.NoError(t, sdb.PutRating("uuid-mystery", "pig", rating.Rating{Mu: 20, Sigma: 8}))

	top, err := sdb.TopRatings("pig", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "alice", top[0].Name, "known uuids resolve to usernames")
	assert.Equal(t, "uuid-mystery", top[1].Name, "unknown ids fall back to the id")
}
