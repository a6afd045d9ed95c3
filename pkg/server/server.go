// Package server is the hosting core: it owns the transport, the
// authenticated user registry, the shell menus, the table manager and
// the 50 ms tick loop that drives every live game and flushes every
// outbound queue. All game mutations happen on the tick goroutine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/decred/slog"
	"golang.org/x/crypto/bcrypt"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
	"github.com/parlorgames/parlor/pkg/rating"
	"github.com/parlorgames/parlor/pkg/server/internal/db"
	"github.com/parlorgames/parlor/pkg/statemachine"
	"github.com/parlorgames/parlor/pkg/table"
	"github.com/parlorgames/parlor/pkg/transport"

	"github.com/google/uuid"
)

// Version is reported in the authorize_success packet.
const Version = "1.2.0"

const (
	tickInterval = time.Second / game.TicksPerSecond
	// statusEvery is the tick period of the status-file writer (60 s).
	statusEvery = 60 * game.TicksPerSecond

	onlineSound  = "user_online"
	offlineSound = "user_offline"
	mainTheme    = "main_theme"
)

// Config is the server's startup configuration.
type Config struct {
	Host       string
	Port       int
	CertFile   string
	KeyFile    string
	DBPath     string
	StatusFile string
}

// Server owns all live state. Except for New and Run, its methods run
// on the tick goroutine only.
type Server struct {
	log      slog.Logger
	cfg      Config
	db       db.Database
	listener *transport.Listener
	tables   *table.Manager
	ratings  *rating.Engine

	users  map[string]*User // by username
	byConn map[*transport.Conn]*User

	execPath  string
	startedAt time.Time
}

// New opens the database at cfg.DBPath and assembles a server over it.
func New(cfg Config, log slog.Logger) (*Server, error) {
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newWithDB(cfg, database, log), nil
}

// newWithDB assembles a server over an already-open database.
func newWithDB(cfg Config, database db.Database, log slog.Logger) *Server {
	s := &Server{
		log:       log,
		cfg:       cfg,
		db:        database,
		listener:  transport.NewListener(log),
		ratings:   rating.NewEngine(database, log),
		users:     make(map[string]*User),
		byConn:    make(map[*transport.Conn]*User),
		startedAt: time.Now(),
	}
	s.tables = table.NewManager(log, s)
	if exe, err := os.Executable(); err == nil {
		s.execPath = exe
	} else {
		log.Warnf("cannot resolve own executable, duration estimation disabled: %v", err)
	}
	return s
}

// Close releases the server's database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Run restores saved tables, starts listening and drives the tick loop
// until ctx is cancelled. On the way out it snapshots every live table
// and closes all connections.
func (s *Server) Run(ctx context.Context) error {
	s.restoreSavedState()

	if err := s.listener.Start(s.cfg.Host, s.cfg.Port, s.cfg.CertFile, s.cfg.KeyFile); err != nil {
		return err
	}

	// First snapshot right away; the tick loop refreshes it each minute.
	if s.cfg.StatusFile != "" {
		s.writeStatusFile()
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var tickCount int64
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case ev := <-s.listener.Inbound():
			switch ev.Kind {
			case transport.EventPacket:
				s.handlePacket(ev.Conn, ev.Packet)
			case transport.EventDisconnect:
				s.handleDisconnect(ev.Conn)
			}

		case <-ticker.C:
			tickCount++
			s.tables.OnTick()
			for _, u := range s.users {
				u.Flush()
			}
			if s.cfg.StatusFile != "" && tickCount%statusEvery == 0 {
				s.writeStatusFile()
			}
		}
	}
}

// restoreSavedState rebuilds every table saved at the previous
// shutdown, reattaches bot seats, then deletes the snapshots; humans
// reattach when they log in. Tables are saved again at shutdown.
func (s *Server) restoreSavedState() {
	rows, err := s.db.LoadLiveTables()
	if err != nil {
		s.log.Errorf("load saved tables: %v", err)
		return
	}
	for _, row := range rows {
		t, err := s.tables.Restore(row.GameType, row.GameJSON)
		if err != nil {
			s.log.Errorf("restore table %s (%s): %v", row.TableID, row.GameType, err)
			continue
		}
		for _, p := range t.Base().Players {
			if p.IsBot {
				p.AttachSeat(game.NewBotSeat(p.Name))
			}
		}
	}
	if len(rows) > 0 {
		s.log.Infof("restored %d saved tables", len(rows))
	}
	if err := s.db.DeleteAllLiveTables(); err != nil {
		s.log.Errorf("clear saved tables: %v", err)
	}
}

// shutdown snapshots live tables and closes every connection.
func (s *Server) shutdown() {
	s.log.Infof("shutting down")
	for _, t := range s.tables.All() {
		data, err := game.Serialize(t.Game)
		if err != nil {
			s.log.Errorf("serialize table %s: %v", t.ID, err)
			continue
		}
		members, _ := json.Marshal(t.Members())
		err = s.db.SaveLiveTable(&db.LiveTable{
			TableID:     t.ID,
			GameType:    t.GameType,
			Host:        t.HostName(),
			MembersJSON: members,
			GameJSON:    data,
			Status:      string(t.Base().Status),
		})
		if err != nil {
			s.log.Errorf("save table %s: %v", t.ID, err)
		}
	}
	s.listener.Broadcast(protocol.NewDisconnect("Server shutting down", true), nil)
	s.listener.Stop()
}

// Packet routing ---------------------------------------------------------

func (s *Server) handlePacket(conn *transport.Conn, pkt protocol.Inbound) {
	switch pkt.Type {
	case protocol.TypeAuthorize:
		s.handleAuthorize(conn, pkt)
		return
	case protocol.TypeRegister:
		s.handleRegister(conn, pkt)
		return
	}

	u := s.byConn[conn]
	if u == nil {
		// Unauthenticated game traffic is protocol noise.
		return
	}
	switch pkt.Type {
	case protocol.TypeMenu:
		s.handleMenu(u, pkt)
	case protocol.TypeEditbox:
		s.handleEditbox(u, pkt)
	case protocol.TypeKeybind:
		s.handleKeybind(u, pkt)
	case protocol.TypeChat:
		s.handleChat(u, pkt)
	case protocol.TypePing:
		u.Enqueue(protocol.NewPong())
	}
}

// handleAuthorize verifies credentials, falling through to
// registration when the username is free.
func (s *Server) handleAuthorize(conn *transport.Conn, pkt protocol.Inbound) {
	if pkt.Username == "" || pkt.Password == "" {
		s.rejectAuth(conn)
		return
	}
	row, err := s.authenticate(pkt.Username, pkt.Password)
	if err != nil {
		s.rejectAuth(conn)
		return
	}
	s.loginUser(row, conn)
}

var errBadCredentials = errors.New("bad credentials")

// authenticate resolves fused login-or-register: an unknown username
// registers on the spot, a known one must match its password hash.
func (s *Server) authenticate(username, password string) (*db.User, error) {
	row, err := s.db.GetUser(username)
	switch {
	case err == db.ErrUserNotFound:
		row, err = s.registerUser(username, password)
		if err != nil {
			s.log.Errorf("register %s: %v", username, err)
			return nil, err
		}
		s.log.Infof("registered new user %s", username)
	case err != nil:
		s.log.Errorf("get user %s: %v", username, err)
		return nil, err
	default:
		if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
			return nil, errBadCredentials
		}
	}
	return row, nil
}

// loginUser builds the session for an authenticated account: replaces
// any previous connection, binds the shell, announces presence and
// reseats the user at their table if one survived a disconnect.
func (s *Server) loginUser(row *db.User, conn *transport.Conn) *User {
	// A second login replaces the first connection.
	if old := s.users[row.Username]; old != nil && old.conn != nil {
		old.conn.Send(protocol.NewDisconnect("Logged in from another location", false))
		old.conn.Close()
		delete(s.byConn, old.conn)
		old.conn = nil
	}

	u := &User{
		Username: row.Username,
		UUID:     row.UUID,
		Prefs:    decodePrefs(row.PreferencesJSON, row.Locale),
		conn:     conn,
	}
	u.shell = statemachine.New(&shellCtx{srv: s, user: u}, stateMainMenu)
	s.users[row.Username] = u
	if conn != nil {
		conn.BindUser(row.Username)
		s.byConn[conn] = u
		s.log.Infof("%s logged in from %s", row.Username, conn.RemoteAddr())
	}

	u.Enqueue(protocol.NewAuthorizeSuccess(row.Username, Version))
	u.Enqueue(protocol.NewUpdateOptionsLists(s.gameCatalog(u.Locale())))
	s.broadcastPresence(u, "user-online", onlineSound)

	if t := s.tables.FindUserTable(u.UUID); t != nil {
		t.Base().ReattachHuman(u.UUID, u)
		u.shell.Entity().location = locInGame
		u.shell.Set(stateInGame)
		return u
	}
	s.enterMainMenu(u)
	return u
}

// handleRegister creates a pending account without logging in.
func (s *Server) handleRegister(conn *transport.Conn, pkt protocol.Inbound) {
	if pkt.Username == "" || pkt.Password == "" {
		return
	}
	if _, err := s.db.GetUser(pkt.Username); err == nil {
		conn.Send(protocol.NewDisconnect("Username already taken", false))
		conn.Close()
		return
	}
	if _, err := s.registerUser(pkt.Username, pkt.Password); err != nil {
		s.log.Errorf("register %s: %v", pkt.Username, err)
		return
	}
	s.log.Infof("registered pending user %s", pkt.Username)
}

// registerUser creates the account row. The first account ever created
// becomes an approved admin; everyone else starts pending.
func (s *Server) registerUser(username, password string) (*db.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	count, err := s.db.CountUsers()
	if err != nil {
		return nil, err
	}
	row := &db.User{
		Username:        username,
		PasswordHash:    string(hash),
		UUID:            uuid.NewString(),
		Locale:          i18n.DefaultLocale,
		PreferencesJSON: "{}",
		TrustLevel:      db.TrustPlayer,
		Approved:        false,
	}
	if count == 0 {
		row.TrustLevel = db.TrustAdmin
		row.Approved = true
	}
	if err := s.db.CreateUser(row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Server) rejectAuth(conn *transport.Conn) {
	conn.Send(protocol.NewDisconnect("Invalid credentials", false))
	conn.Close()
}

func decodePrefs(prefsJSON, locale string) game.Preferences {
	p := game.DefaultPreferences()
	if prefsJSON != "" {
		_ = json.Unmarshal([]byte(prefsJSON), &p)
	}
	if p.Locale == "" {
		p.Locale = locale
	}
	if p.Locale == "" {
		p.Locale = i18n.DefaultLocale
	}
	return p
}

func (s *Server) handleDisconnect(conn *transport.Conn) {
	u := s.byConn[conn]
	delete(s.byConn, conn)
	if u == nil || u.conn != conn {
		return
	}
	u.conn = nil
	delete(s.users, u.Username)
	// The Player stays seated; the seat is parked until reconnect.
	if t := s.tables.FindUserTable(u.UUID); t != nil {
		if p := t.Base().PlayerByID(u.UUID); p != nil {
			p.AttachSeat(nil)
		}
	}
	s.broadcastPresence(u, "user-offline", offlineSound)
	s.log.Infof("%s disconnected", u.Username)
}

// broadcastPresence announces a user going on/offline to everyone
// else, with a sound.
func (s *Server) broadcastPresence(who *User, key, sound string) {
	for _, u := range s.users {
		if u == who {
			continue
		}
		u.SpeakL(key, i18n.Args{"player": who.Username})
		u.Enqueue(protocol.NewPlaySound(sound, 1.0, 0, 1.0))
	}
}

// gameCatalog lists the registered games for the options-lists packet.
func (s *Server) gameCatalog(locale string) []protocol.GameEntry {
	defs := game.Definitions()
	out := make([]protocol.GameEntry, 0, len(defs))
	for _, d := range defs {
		out = append(out, protocol.GameEntry{
			GameType: d.Type,
			Name:     i18n.T(locale, d.NameKey, nil),
		})
	}
	return out
}

// Authenticated packet handlers ------------------------------------------

func (s *Server) handleMenu(u *User, pkt protocol.Inbound) {
	ctx := u.shell.Entity()
	if ctx.location == locInGame {
		if t := s.tables.FindUserTable(u.UUID); t != nil {
			if p := t.Base().PlayerByID(u.UUID); p != nil {
				t.Base().HandleMenu(p, pkt.MenuID, pkt.SelectionID, pkt.Selection)
				return
			}
		}
		// The table vanished under the user; fall back to the shell.
		s.enterMainMenu(u)
		return
	}
	ctx.menuID = pkt.MenuID
	ctx.selectionID = pkt.SelectionID
	ctx.index = pkt.Selection
	u.shell.Handle()
}

func (s *Server) handleEditbox(u *User, pkt protocol.Inbound) {
	if u.shell.Entity().location != locInGame {
		return
	}
	if t := s.tables.FindUserTable(u.UUID); t != nil {
		if p := t.Base().PlayerByID(u.UUID); p != nil {
			t.Base().HandleEditbox(p, pkt.InputID, pkt.Text)
		}
	}
}

func (s *Server) handleKeybind(u *User, pkt protocol.Inbound) {
	if u.shell.Entity().location != locInGame {
		return
	}
	if t := s.tables.FindUserTable(u.UUID); t != nil {
		if p := t.Base().PlayerByID(u.UUID); p != nil {
			t.Base().HandleKeybind(p, pkt.Key, pkt.Shift, pkt.Control, pkt.Alt,
				pkt.MenuItemID, pkt.MenuIndex)
		}
	}
}

func (s *Server) handleChat(u *User, pkt protocol.Inbound) {
	if pkt.Message == "" {
		return
	}
	out := protocol.NewChat(pkt.Convo, u.Username, pkt.Message, pkt.Language)
	switch pkt.Convo {
	case "table":
		t := s.tables.FindUserTable(u.UUID)
		if t == nil {
			return
		}
		for _, p := range t.Base().Players {
			if seat := p.Seat(); seat != nil && !seat.IsBotSeat() {
				seat.Enqueue(out)
			}
		}
	default: // global
		for _, other := range s.users {
			other.Enqueue(out)
		}
	}
}

// table.Callbacks --------------------------------------------------------

var _ table.Callbacks = (*Server)(nil)

// TableDestroyed returns every displaced human to the main menu.
func (s *Server) TableDestroyed(t *table.Table) {
	for _, p := range t.Base().Players {
		if u := s.userByUUID(p.ID); u != nil {
			s.enterMainMenu(u)
		}
	}
}

// SaveTable writes a user-initiated snapshot row.
func (s *Server) SaveTable(t *table.Table, owner, saveName string) error {
	data, err := game.Serialize(t.Game)
	if err != nil {
		return err
	}
	members, err := json.Marshal(t.Members())
	if err != nil {
		return err
	}
	return s.db.InsertSavedTable(&db.SavedTable{
		Username:    owner,
		SaveName:    saveName,
		GameType:    t.GameType,
		GameJSON:    data,
		MembersJSON: members,
		SavedAt:     time.Now(),
	})
}

// RecordResult persists the finished game and applies the rating
// update over the reported rankings.
func (s *Server) RecordResult(t *table.Table, res *game.Result, rankings [][]string) {
	custom, err := json.Marshal(res.CustomData)
	if err != nil {
		custom = []byte("{}")
	}
	players := make([]db.ResultPlayer, 0, len(res.Players))
	for _, p := range res.Players {
		players = append(players, db.ResultPlayer{PlayerID: p.ID, Name: p.Name, IsBot: p.IsBot})
	}
	err = s.db.InsertGameResult(&db.GameResult{
		GameType:       res.GameType,
		Timestamp:      res.Timestamp,
		DurationTicks:  res.DurationTicks,
		CustomDataJSON: custom,
	}, players)
	if err != nil {
		s.log.Errorf("persist result for %s: %v", res.GameType, err)
	}
	if len(rankings) > 0 {
		if err := s.ratings.UpdateRatings(res.GameType, rankings); err != nil {
			s.log.Errorf("update ratings for %s: %v", res.GameType, err)
		}
	}
}

// MemberLeft returns the leaving user to the main menu if they are
// still online.
func (s *Server) MemberLeft(t *table.Table, playerID string) {
	if u := s.userByUUID(playerID); u != nil {
		s.enterMainMenu(u)
	}
}

// WinProbability answers prediction queries from games.
func (s *Server) WinProbability(gameType, aID, bID string) (float64, bool) {
	a := s.ratings.Rating(aID, gameType)
	b := s.ratings.Rating(bID, gameType)
	return rating.PredictWinProbability(a, b), true
}

// SimulateArgs builds the argv for one headless simulation run.
func (s *Server) SimulateArgs(gameType, optionsJSON string, bots int) []string {
	if s.execPath == "" {
		return nil
	}
	return []string{
		s.execPath, "simulate",
		"--game", gameType,
		"--options", optionsJSON,
		"--bots", strconv.Itoa(bots),
	}
}

func (s *Server) userByUUID(id string) *User {
	for _, u := range s.users {
		if u.UUID == id {
			return u
		}
	}
	return nil
}
