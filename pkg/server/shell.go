package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
	"github.com/parlorgames/parlor/pkg/statemachine"
)

// Shell locations. While a user is in the shell their menu packets
// drive the state machine; in a game they go to the table instead.
const (
	locShell  = "shell"
	locInGame = "in_game"
)

const shellMenuID = "shell"

// shellCtx is the entity behind each user's shell state machine. The
// router fills the event fields before calling Handle; the state
// functions consume them and optionally move the cursors.
type shellCtx struct {
	srv  *Server
	user *User

	location string

	// Pending menu-selection event.
	menuID      string
	selectionID string
	index       int

	// Cursors remembering where the user is drilling down.
	category string
	gameType string
	tableID  string
	savedID  int64
}

type shellState = statemachine.StateFn[shellCtx]

func (c *shellCtx) t(key string, args i18n.Args) string {
	return i18n.T(c.user.Locale(), key, args)
}

// show replaces the user's shell menu.
func (c *shellCtx) show(items []protocol.MenuItem) {
	c.user.Enqueue(protocol.NewShowMenu(shellMenuID, items, false, "none"))
}

func item(c *shellCtx, id, key string, args i18n.Args) protocol.MenuItem {
	return protocol.MenuItem{ID: id, Text: c.t(key, args)}
}

// enterMainMenu parks the user in the shell's top state and shows the
// main menu with its theme music.
func (s *Server) enterMainMenu(u *User) {
	ctx := u.shell.Entity()
	ctx.location = locShell
	u.shell.Set(stateMainMenu)
	showMainMenu(ctx)
	u.Enqueue(protocol.NewPlayMusic(mainTheme, true))
}

func showMainMenu(c *shellCtx) {
	c.show([]protocol.MenuItem{
		item(c, "play", "menu-play", nil),
		item(c, "saved_tables", "menu-saved-tables", nil),
		item(c, "leaderboards", "menu-leaderboards", nil),
		item(c, "my_stats", "menu-my-stats", nil),
		item(c, "options", "menu-options", nil),
		item(c, "logout", "menu-logout", nil),
	})
}

func stateMainMenu(c *shellCtx) shellState {
	switch c.selectionID {
	case "play":
		showCategories(c)
		return stateCategories
	case "saved_tables":
		showSavedTables(c)
		return stateSavedTables
	case "leaderboards":
		showLeaderboardTypes(c)
		return stateLeaderboardTypes
	case "my_stats":
		showMyStats(c)
		return stateMyStats
	case "options":
		showOptions(c)
		return stateOptions
	case "logout":
		if c.user.conn != nil {
			c.user.conn.Send(protocol.NewDisconnect("Logged out", false))
			c.user.conn.Close()
		}
	}
	return nil
}

// Play: categories -> games -> tables -> join ----------------------------

func showCategories(c *shellCtx) {
	seen := map[string]bool{}
	var items []protocol.MenuItem
	for _, d := range game.Definitions() {
		if seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		items = append(items, item(c, d.Category, "category-"+d.Category, nil))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateCategories(c *shellCtx) shellState {
	if c.selectionID == "back" {
		showMainMenu(c)
		return stateMainMenu
	}
	c.category = c.selectionID
	showGames(c)
	return stateGames
}

func showGames(c *shellCtx) {
	var items []protocol.MenuItem
	for _, d := range game.Definitions() {
		if d.Category != c.category {
			continue
		}
		items = append(items, item(c, d.Type, d.NameKey, nil))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateGames(c *shellCtx) shellState {
	if c.selectionID == "back" {
		showCategories(c)
		return stateCategories
	}
	if _, ok := game.DefinitionFor(c.selectionID); !ok {
		return nil
	}
	c.gameType = c.selectionID
	showTables(c)
	return stateTables
}

func showTables(c *shellCtx) {
	items := []protocol.MenuItem{item(c, "new", "menu-new-table", nil)}
	for _, t := range c.srv.tables.WaitingTables() {
		if t.GameType != c.gameType {
			continue
		}
		items = append(items, item(c, t.ID, "menu-table-entry", i18n.Args{
			"host":    t.HostName(),
			"players": len(t.Base().ActivePlayers()),
		}))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateTables(c *shellCtx) shellState {
	switch c.selectionID {
	case "back":
		showGames(c)
		return stateGames
	case "new":
		_, err := c.srv.tables.Create(c.gameType, c.user.UUID, c.user.Username, c.user)
		if err != nil {
			c.srv.log.Errorf("create %s table for %s: %v", c.gameType, c.user.Username, err)
			c.user.SpeakL("table-create-failed", nil)
			return nil
		}
		c.location = locInGame
		return stateInGame
	}
	t := c.srv.tables.Get(c.selectionID)
	if t == nil || t.Base().Status != game.StatusWaiting {
		c.user.SpeakL("table-gone", nil)
		showTables(c)
		return nil
	}
	c.tableID = t.ID
	showJoin(c)
	return stateJoin
}

func showJoin(c *shellCtx) {
	c.show([]protocol.MenuItem{
		item(c, "player", "menu-join-player", nil),
		item(c, "spectator", "menu-join-spectator", nil),
		item(c, "back", "menu-back", nil),
	})
}

func stateJoin(c *shellCtx) shellState {
	if c.selectionID == "back" {
		showTables(c)
		return stateTables
	}
	t := c.srv.tables.Get(c.tableID)
	if t == nil || t.Base().Status != game.StatusWaiting {
		c.user.SpeakL("table-gone", nil)
		showTables(c)
		return stateTables
	}
	b := t.Base()
	spectator := c.selectionID == "spectator"
	if !spectator && len(b.ActivePlayers()) >= b.Definition().MaxPlayers {
		c.user.SpeakL("table-full", nil)
		return nil
	}
	p := b.AddHuman(c.user.UUID, c.user.Username, c.user, spectator)
	b.BroadcastL("player-joined", p, i18n.Args{"player": c.user.Username})
	b.PlaySoundAll("join", 1.0, 0, 1.0)
	b.RebuildMenus()
	c.location = locInGame
	return stateInGame
}

// stateInGame never consumes events; the router hands packets straight
// to the table while location is in_game.
func stateInGame(c *shellCtx) shellState {
	return nil
}

// Options ----------------------------------------------------------------

func showOptions(c *shellCtx) {
	onOff := func(v bool) string {
		if v {
			return c.t("option-on", nil)
		}
		return c.t("option-off", nil)
	}
	c.show([]protocol.MenuItem{
		item(c, "language", "menu-language", nil),
		item(c, "keeping_style", "menu-keeping-style", nil),
		item(c, "turn_sound", "menu-turn-sound", i18n.Args{"state": onOff(c.user.Prefs.PlayTurnSound)}),
		item(c, "clear_kept", "menu-clear-kept", i18n.Args{"state": onOff(c.user.Prefs.ClearKeptOnRoll)}),
		item(c, "back", "menu-back", nil),
	})
}

func stateOptions(c *shellCtx) shellState {
	switch c.selectionID {
	case "back":
		showMainMenu(c)
		return stateMainMenu
	case "language":
		showLanguages(c)
		return stateLanguage
	case "keeping_style":
		showKeepingStyles(c)
		return stateKeepingStyle
	case "turn_sound":
		c.user.Prefs.PlayTurnSound = !c.user.Prefs.PlayTurnSound
		c.savePrefs()
		showOptions(c)
	case "clear_kept":
		c.user.Prefs.ClearKeptOnRoll = !c.user.Prefs.ClearKeptOnRoll
		c.savePrefs()
		showOptions(c)
	}
	return nil
}

func showLanguages(c *shellCtx) {
	var items []protocol.MenuItem
	for _, code := range i18n.Locales() {
		items = append(items, protocol.MenuItem{ID: code, Text: i18n.LocaleName(code)})
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateLanguage(c *shellCtx) shellState {
	if c.selectionID != "back" {
		c.user.Prefs.Locale = c.selectionID
		c.savePrefs()
		if err := c.srv.db.UpdateUserLocale(c.user.Username, c.selectionID); err != nil {
			c.srv.log.Errorf("save locale for %s: %v", c.user.Username, err)
		}
		c.user.SpeakL("language-set", i18n.Args{"language": i18n.LocaleName(c.selectionID)})
	}
	showOptions(c)
	return stateOptions
}

func showKeepingStyles(c *shellCtx) {
	c.show([]protocol.MenuItem{
		item(c, "index", "keeping-style-index", nil),
		item(c, "face", "keeping-style-face", nil),
		item(c, "back", "menu-back", nil),
	})
}

func stateKeepingStyle(c *shellCtx) shellState {
	switch c.selectionID {
	case "index", "face":
		c.user.Prefs.KeepingStyle = c.selectionID
		c.savePrefs()
		c.user.SpeakL("keeping-style-set", nil)
	}
	showOptions(c)
	return stateOptions
}

func (c *shellCtx) savePrefs() {
	if err := c.srv.db.UpdateUserPreferences(c.user.Username, c.user.prefsJSON()); err != nil {
		c.srv.log.Errorf("save preferences for %s: %v", c.user.Username, err)
	}
}

// Saved tables -----------------------------------------------------------

func showSavedTables(c *shellCtx) {
	rows, err := c.srv.db.ListSavedTables(c.user.Username)
	if err != nil {
		c.srv.log.Errorf("list saved tables for %s: %v", c.user.Username, err)
	}
	var items []protocol.MenuItem
	for _, row := range rows {
		items = append(items, item(c, strconv.FormatInt(row.ID, 10), "menu-saved-entry", i18n.Args{
			"name": row.SaveName,
			"game": c.t(gameNameKey(row.GameType), nil),
			"date": row.SavedAt.Format("2006-01-02 15:04"),
		}))
	}
	if len(items) == 0 {
		items = append(items, item(c, "none", "menu-no-saved-tables", nil))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func gameNameKey(gtype string) string {
	if d, ok := game.DefinitionFor(gtype); ok {
		return d.NameKey
	}
	return gtype
}

func stateSavedTables(c *shellCtx) shellState {
	switch c.selectionID {
	case "back":
		showMainMenu(c)
		return stateMainMenu
	case "none":
		return nil
	}
	id, err := strconv.ParseInt(c.selectionID, 10, 64)
	if err != nil {
		return nil
	}
	c.savedID = id
	c.show([]protocol.MenuItem{
		item(c, "restore", "menu-restore-table", nil),
		item(c, "delete", "menu-delete-table", nil),
		item(c, "back", "menu-back", nil),
	})
	return stateSavedActions
}

func stateSavedActions(c *shellCtx) shellState {
	switch c.selectionID {
	case "restore":
		if next := restoreSavedTable(c); next != nil {
			return next
		}
		showSavedTables(c)
		return stateSavedTables
	case "delete":
		if err := c.srv.db.DeleteSavedTable(c.savedID); err != nil {
			c.srv.log.Errorf("delete saved table %d: %v", c.savedID, err)
		} else {
			c.user.SpeakL("saved-table-deleted", nil)
		}
		showSavedTables(c)
		return stateSavedTables
	case "back":
		showSavedTables(c)
		return stateSavedTables
	}
	return nil
}

// restoreSavedTable rebuilds the snapshot as a live table, reseats the
// restoring user, bots and the other members, and deletes the snapshot
// row. Every human member must be online and free before the table
// comes back; otherwise the snapshot stays put and the user is told
// who is missing. Returns the next state on success, nil on failure.
func restoreSavedTable(c *shellCtx) shellState {
	row, err := c.srv.db.GetSavedTable(c.savedID)
	if err != nil || row.Username != c.user.Username {
		c.user.SpeakL("restore-failed", nil)
		return nil
	}
	if missing := c.srv.missingRestoreMembers(row.GameJSON, c.user.UUID); missing != "" {
		c.user.SpeakL("restore-missing-players", i18n.Args{"players": missing})
		return nil
	}
	t, err := c.srv.tables.Restore(row.GameType, row.GameJSON)
	if err != nil {
		c.srv.log.Errorf("restore saved table %d: %v", row.ID, err)
		c.user.SpeakL("restore-failed", nil)
		return nil
	}
	for _, p := range t.Base().Players {
		switch {
		case p.IsBot:
			p.AttachSeat(game.NewBotSeat(p.Name))
		case p.ID == c.user.UUID:
			t.Base().ReattachHuman(p.ID, c.user)
		default:
			if u := c.srv.userByUUID(p.ID); u != nil && u.shell.Entity().location == locShell {
				t.Base().ReattachHuman(p.ID, u)
				uc := u.shell.Entity()
				uc.location = locInGame
				u.shell.Set(stateInGame)
				u.SpeakL("restore-pulled-in", i18n.Args{"player": c.user.Username})
			}
		}
	}
	if err := c.srv.db.DeleteSavedTable(row.ID); err != nil {
		c.srv.log.Errorf("delete restored snapshot %d: %v", row.ID, err)
	}
	c.location = locInGame
	return stateInGame
}

// missingRestoreMembers lists the snapshot's human members who are not
// online and idling in the shell. The restorer's own id is exempt.
func (s *Server) missingRestoreMembers(gameJSON []byte, restorerID string) string {
	var snap struct {
		Players []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			IsBot bool   `json:"is_bot"`
		} `json:"players"`
	}
	if err := json.Unmarshal(gameJSON, &snap); err != nil {
		return ""
	}
	var missing []string
	for _, p := range snap.Players {
		if p.IsBot || p.ID == restorerID {
			continue
		}
		u := s.userByUUID(p.ID)
		if u == nil || u.shell.Entity().location != locShell {
			missing = append(missing, p.Name)
		}
	}
	return strings.Join(missing, ", ")
}

// Leaderboards and stats -------------------------------------------------

func showLeaderboardTypes(c *shellCtx) {
	var items []protocol.MenuItem
	for _, d := range game.Definitions() {
		items = append(items, item(c, d.Type, d.NameKey, nil))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateLeaderboardTypes(c *shellCtx) shellState {
	if c.selectionID == "back" {
		showMainMenu(c)
		return stateMainMenu
	}
	if _, ok := game.DefinitionFor(c.selectionID); !ok {
		return nil
	}
	c.gameType = c.selectionID
	showLeaderboard(c)
	return stateLeaderboard
}

func showLeaderboard(c *shellCtx) {
	entries, err := c.srv.ratings.Leaderboard(c.gameType, 10)
	if err != nil {
		c.srv.log.Errorf("leaderboard for %s: %v", c.gameType, err)
	}
	var items []protocol.MenuItem
	for i, e := range entries {
		items = append(items, protocol.MenuItem{
			ID: fmt.Sprintf("rank_%d", i+1),
			Text: c.t("leaderboard-line", i18n.Args{
				"rank":   i + 1,
				"player": e.Name,
				"score":  fmt.Sprintf("%.1f", e.Rating.Ordinal()),
			}),
		})
	}
	if len(items) == 0 {
		items = append(items, item(c, "none", "leaderboard-empty", nil))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateLeaderboard(c *shellCtx) shellState {
	if c.selectionID == "back" {
		showLeaderboardTypes(c)
		return stateLeaderboardTypes
	}
	return nil
}

func showMyStats(c *shellCtx) {
	stats, err := c.srv.db.StatsFor(c.user.UUID)
	if err != nil {
		c.srv.log.Errorf("stats for %s: %v", c.user.Username, err)
	}
	var items []protocol.MenuItem
	for _, st := range stats {
		items = append(items, protocol.MenuItem{
			ID: st.GameType,
			Text: c.t("stats-line", i18n.Args{
				"game":   c.t(gameNameKey(st.GameType), nil),
				"played": st.GamesPlayed,
				"wins":   st.Wins,
			}),
		})
	}
	if len(items) == 0 {
		items = append(items, item(c, "none", "stats-empty", nil))
	}
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateMyStats(c *shellCtx) shellState {
	switch c.selectionID {
	case "back":
		showMainMenu(c)
		return stateMainMenu
	case "none":
		return nil
	}
	if _, ok := game.DefinitionFor(c.selectionID); ok {
		c.gameType = c.selectionID
		showGameStats(c)
		return stateMyGameStats
	}
	return nil
}

// showGameStats shows one game type's record plus the user's rating.
func showGameStats(c *shellCtx) {
	var items []protocol.MenuItem
	stats, err := c.srv.db.StatsFor(c.user.UUID)
	if err == nil {
		for _, st := range stats {
			if st.GameType != c.gameType {
				continue
			}
			items = append(items,
				protocol.MenuItem{ID: "played", Text: c.t("stats-games-played", i18n.Args{"count": st.GamesPlayed})},
				protocol.MenuItem{ID: "wins", Text: c.t("stats-wins", i18n.Args{"count": st.Wins})},
			)
		}
	}
	r := c.srv.ratings.Rating(c.user.UUID, c.gameType)
	items = append(items, protocol.MenuItem{
		ID:   "rating",
		Text: c.t("stats-rating", i18n.Args{"score": fmt.Sprintf("%.1f", r.Ordinal())}),
	})
	items = append(items, item(c, "back", "menu-back", nil))
	c.show(items)
}

func stateMyGameStats(c *shellCtx) shellState {
	if c.selectionID == "back" {
		showMyStats(c)
		return stateMyStats
	}
	return nil
}
