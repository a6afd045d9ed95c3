package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parlorgames/parlor/pkg/rating"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	uuid TEXT NOT NULL UNIQUE,
	locale TEXT NOT NULL DEFAULT 'en',
	preferences_json TEXT NOT NULL DEFAULT '{}',
	trust_level TEXT NOT NULL DEFAULT 'player',
	approved INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tables (
	table_id TEXT PRIMARY KEY,
	game_type TEXT NOT NULL,
	host TEXT NOT NULL,
	members_json TEXT NOT NULL,
	game_json TEXT NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_tables (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	save_name TEXT NOT NULL,
	game_type TEXT NOT NULL,
	game_json TEXT NOT NULL,
	members_json TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_tables_username ON saved_tables(username);

CREATE TABLE IF NOT EXISTS game_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_type TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	duration_ticks INTEGER NOT NULL,
	custom_data TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_game_results_type ON game_results(game_type);
CREATE INDEX IF NOT EXISTS idx_game_results_timestamp ON game_results(timestamp);

CREATE TABLE IF NOT EXISTS game_result_players (
	result_id INTEGER NOT NULL REFERENCES game_results(id),
	player_id TEXT NOT NULL,
	player_name TEXT NOT NULL,
	is_bot INTEGER NOT NULL,
	won INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_result_players_player ON game_result_players(player_id);

CREATE TABLE IF NOT EXISTS player_ratings (
	player_id TEXT NOT NULL,
	game_type TEXT NOT NULL,
	mu REAL NOT NULL,
	sigma REAL NOT NULL,
	PRIMARY KEY (player_id, game_type)
);
`

// Columns added after the first release. The backfill runs only when
// the ALTER actually adds the column, so it grandfathers rows from
// older databases exactly once and never touches current ones.
var migrations = []struct {
	alter    string
	backfill string
}{
	{alter: `ALTER TABLE users ADD COLUMN trust_level TEXT NOT NULL DEFAULT 'player'`},
	{
		alter:    `ALTER TABLE users ADD COLUMN approved INTEGER NOT NULL DEFAULT 0`,
		backfill: `UPDATE users SET approved = 1 WHERE approved = 0`,
	},
	{alter: `ALTER TABLE game_result_players ADD COLUMN won INTEGER NOT NULL DEFAULT 0`},
}

// SQLiteDB implements Database over a single SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

var _ Database = (*SQLiteDB)(nil)

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLiteDB, error) {
	sdb, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	// One writer; SQLite serializes anyway and this avoids SQLITE_BUSY.
	sdb.SetMaxOpenConns(1)

	if _, err := sdb.Exec(schema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	for _, m := range migrations {
		if _, err := sdb.Exec(m.alter); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			sdb.Close()
			return nil, fmt.Errorf("migration %q: %w", m.alter, err)
		}
		if m.backfill == "" {
			continue
		}
		if _, err := sdb.Exec(m.backfill); err != nil {
			sdb.Close()
			return nil, fmt.Errorf("migration backfill %q: %w", m.backfill, err)
		}
	}
	return &SQLiteDB{db: sdb}, nil
}

// Close closes the underlying handle.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Users -------------------------------------------------------------------

func (s *SQLiteDB) GetUser(username string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, username, password_hash, uuid, locale, preferences_json,
		        trust_level, approved
		 FROM users WHERE username = ?`, username))
}

func (s *SQLiteDB) GetUserByUUID(uuid string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, username, password_hash, uuid, locale, preferences_json,
		        trust_level, approved
		 FROM users WHERE uuid = ?`, uuid))
}

func (s *SQLiteDB) scanUser(row *sql.Row) (*User, error) {
	var u User
	var approved int
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.UUID, &u.Locale,
		&u.PreferencesJSON, &u.TrustLevel, &approved)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Approved = approved != 0
	return &u, nil
}

func (s *SQLiteDB) CreateUser(u *User) error {
	approved := 0
	if u.Approved {
		approved = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, uuid, locale,
		                    preferences_json, trust_level, approved)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.UUID, u.Locale, u.PreferencesJSON,
		u.TrustLevel, approved)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	u.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteDB) UpdateUserLocale(username, locale string) error {
	_, err := s.db.Exec(`UPDATE users SET locale = ? WHERE username = ?`, locale, username)
	return err
}

func (s *SQLiteDB) UpdateUserPreferences(username, preferencesJSON string) error {
	_, err := s.db.Exec(`UPDATE users SET preferences_json = ? WHERE username = ?`,
		preferencesJSON, username)
	return err
}

func (s *SQLiteDB) CountUsers() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Live tables -------------------------------------------------------------

func (s *SQLiteDB) SaveLiveTable(t *LiveTable) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO tables (table_id, game_type, host, members_json,
		                                game_json, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.TableID, t.GameType, t.Host, string(t.MembersJSON),
		string(t.GameJSON), t.Status)
	if err != nil {
		return fmt.Errorf("save table %s: %w", t.TableID, err)
	}
	return nil
}

func (s *SQLiteDB) LoadLiveTables() ([]*LiveTable, error) {
	rows, err := s.db.Query(
		`SELECT table_id, game_type, host, members_json, game_json, status FROM tables`)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	defer rows.Close()
	var out []*LiveTable
	for rows.Next() {
		var t LiveTable
		var members, gameJSON string
		if err := rows.Scan(&t.TableID, &t.GameType, &t.Host, &members,
			&gameJSON, &t.Status); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.MembersJSON = []byte(members)
		t.GameJSON = []byte(gameJSON)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) DeleteAllLiveTables() error {
	_, err := s.db.Exec(`DELETE FROM tables`)
	return err
}

// Saved tables ------------------------------------------------------------

func (s *SQLiteDB) InsertSavedTable(t *SavedTable) error {
	res, err := s.db.Exec(
		`INSERT INTO saved_tables (username, save_name, game_type, game_json,
		                           members_json, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Username, t.SaveName, t.GameType, string(t.GameJSON),
		string(t.MembersJSON), t.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert saved table: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteDB) ListSavedTables(username string) ([]*SavedTable, error) {
	rows, err := s.db.Query(
		`SELECT id, username, save_name, game_type, game_json, members_json, saved_at
		 FROM saved_tables WHERE username = ? ORDER BY saved_at DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("list saved tables: %w", err)
	}
	defer rows.Close()
	var out []*SavedTable
	for rows.Next() {
		t, err := scanSavedTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) GetSavedTable(id int64) (*SavedTable, error) {
	rows, err := s.db.Query(
		`SELECT id, username, save_name, game_type, game_json, members_json, saved_at
		 FROM saved_tables WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get saved table: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, ErrNotFound
	}
	return scanSavedTable(rows)
}

func scanSavedTable(rows *sql.Rows) (*SavedTable, error) {
	var t SavedTable
	var gameJSON, members string
	if err := rows.Scan(&t.ID, &t.Username, &t.SaveName, &t.GameType,
		&gameJSON, &members, &t.SavedAt); err != nil {
		return nil, fmt.Errorf("scan saved table: %w", err)
	}
	t.GameJSON = []byte(gameJSON)
	t.MembersJSON = []byte(members)
	return &t, nil
}

func (s *SQLiteDB) DeleteSavedTable(id int64) error {
	_, err := s.db.Exec(`DELETE FROM saved_tables WHERE id = ?`, id)
	return err
}

// Results -----------------------------------------------------------------

func (s *SQLiteDB) InsertGameResult(res *GameResult, players []ResultPlayer) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin result tx: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.Exec(
		`INSERT INTO game_results (game_type, timestamp, duration_ticks, custom_data)
		 VALUES (?, ?, ?, ?)`,
		res.GameType, res.Timestamp, res.DurationTicks, string(res.CustomDataJSON))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	res.ID, _ = r.LastInsertId()

	for _, p := range players {
		isBot, won := 0, 0
		if p.IsBot {
			isBot = 1
		}
		if strings.Contains(string(res.CustomDataJSON), `"winner":"`+jsonEscape(p.Name)+`"`) {
			won = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO game_result_players (result_id, player_id, player_name, is_bot, won)
			 VALUES (?, ?, ?, ?, ?)`,
			res.ID, p.PlayerID, p.Name, isBot, won); err != nil {
			return fmt.Errorf("insert result player: %w", err)
		}
	}
	return tx.Commit()
}

// jsonEscape covers the characters json.Marshal escapes in names.
func jsonEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func (s *SQLiteDB) StatsFor(playerID string) ([]PlayerStats, error) {
	rows, err := s.db.Query(
		`SELECT gr.game_type, COUNT(*), COALESCE(SUM(grp.won), 0)
		 FROM game_result_players grp
		 JOIN game_results gr ON gr.id = grp.result_id
		 WHERE grp.player_id = ?
		 GROUP BY gr.game_type
		 ORDER BY gr.game_type`, playerID)
	if err != nil {
		return nil, fmt.Errorf("stats for %s: %w", playerID, err)
	}
	defer rows.Close()
	var out []PlayerStats
	for rows.Next() {
		var st PlayerStats
		if err := rows.Scan(&st.GameType, &st.GamesPlayed, &st.Wins); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Ratings (rating.Store) ---------------------------------------------------

func (s *SQLiteDB) GetRating(playerID, gameType string) (rating.Rating, bool, error) {
	var r rating.Rating
	err := s.db.QueryRow(
		`SELECT mu, sigma FROM player_ratings WHERE player_id = ? AND game_type = ?`,
		playerID, gameType).Scan(&r.Mu, &r.Sigma)
	if err == sql.ErrNoRows {
		return rating.Rating{}, false, nil
	}
	if err != nil {
		return rating.Rating{}, false, fmt.Errorf("get rating: %w", err)
	}
	return r, true, nil
}

func (s *SQLiteDB) PutRating(playerID, gameType string, r rating.Rating) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO player_ratings (player_id, game_type, mu, sigma)
		 VALUES (?, ?, ?, ?)`, playerID, gameType, r.Mu, r.Sigma)
	if err != nil {
		return fmt.Errorf("put rating: %w", err)
	}
	return nil
}

func (s *SQLiteDB) TopRatings(gameType string, limit int) ([]rating.Entry, error) {
	rows, err := s.db.Query(
		`SELECT pr.player_id, pr.mu, pr.sigma,
		        COALESCE(
		            (SELECT username FROM users WHERE uuid = pr.player_id),
		            (SELECT player_name FROM game_result_players
		             WHERE player_id = pr.player_id ORDER BY rowid DESC LIMIT 1),
		            pr.player_id)
		 FROM player_ratings pr
		 WHERE pr.game_type = ?
		 ORDER BY pr.mu - 3 * pr.sigma DESC
		 LIMIT ?`, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("top ratings: %w", err)
	}
	defer rows.Close()
	var out []rating.Entry
	for rows.Next() {
		var e rating.Entry
		if err := rows.Scan(&e.PlayerID, &e.Rating.Mu, &e.Rating.Sigma, &e.Name); err != nil {
			return nil, fmt.Errorf("scan rating entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
