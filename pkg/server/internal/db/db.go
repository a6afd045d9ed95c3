// Package db is the server's persistence adapter: users, live-table
// snapshots for restart, user-saved tables, finished-game results and
// skill ratings, all in one SQLite database.
package db

import (
	"errors"
	"time"

	"github.com/parlorgames/parlor/pkg/rating"
)

var (
	// ErrUserNotFound is returned when a username has no row.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotFound is returned for missing snapshots and saved tables.
	ErrNotFound = errors.New("not found")
)

// Trust levels.
const (
	TrustPlayer = "player"
	TrustAdmin  = "admin"
)

// User is one persistent account.
type User struct {
	ID              int64
	Username        string
	PasswordHash    string
	UUID            string
	Locale          string
	PreferencesJSON string
	TrustLevel      string
	Approved        bool
}

// LiveTable is a whole-table snapshot taken at shutdown and consumed
// at the next start.
type LiveTable struct {
	TableID     string
	GameType    string
	Host        string
	MembersJSON []byte
	GameJSON    []byte
	Status      string
}

// SavedTable is a user-initiated snapshot row.
type SavedTable struct {
	ID          int64
	Username    string
	SaveName    string
	GameType    string
	GameJSON    []byte
	MembersJSON []byte
	SavedAt     time.Time
}

// GameResult is one finished game.
type GameResult struct {
	ID             int64
	GameType       string
	Timestamp      string
	DurationTicks  int64
	CustomDataJSON []byte
}

// ResultPlayer is one participant of a result.
type ResultPlayer struct {
	PlayerID string
	Name     string
	IsBot    bool
}

// PlayerStats summarizes one player's record in one game type.
type PlayerStats struct {
	GameType    string
	GamesPlayed int
	Wins        int
}

// Database is every persistence operation the server consumes. It
// embeds the rating store so the rating engine shares the same
// backend.
type Database interface {
	rating.Store

	// Users.
	GetUser(username string) (*User, error)
	GetUserByUUID(uuid string) (*User, error)
	CreateUser(u *User) error
	UpdateUserLocale(username, locale string) error
	UpdateUserPreferences(username, preferencesJSON string) error
	CountUsers() (int, error)

	// Live tables (shutdown snapshot).
	SaveLiveTable(t *LiveTable) error
	LoadLiveTables() ([]*LiveTable, error)
	DeleteAllLiveTables() error

	// User-saved tables.
	InsertSavedTable(t *SavedTable) error
	ListSavedTables(username string) ([]*SavedTable, error)
	GetSavedTable(id int64) (*SavedTable, error)
	DeleteSavedTable(id int64) error

	// Results and stats.
	InsertGameResult(res *GameResult, players []ResultPlayer) error
	StatsFor(playerID string) ([]PlayerStats, error)

	Close() error
}
