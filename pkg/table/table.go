// Package table hosts live games: one Table per running game, owned
// and ticked by the server goroutine. The Table is the bridge between
// a game and the rest of the server (persistence, ratings, the
// simulation harness).
package table

import (
	"github.com/google/uuid"

	"github.com/parlorgames/parlor/pkg/game"
)

// Member is one seat of a table as recorded in a snapshot.
type Member struct {
	Username string `json:"username"`
	IsBot    bool   `json:"is_bot"`
}

// Callbacks is what the table layer needs from the server.
type Callbacks interface {
	// TableDestroyed runs after a table is removed; displaced humans
	// return to the main menu.
	TableDestroyed(t *Table)
	// SaveTable persists a snapshot of the table for owner, then the
	// table is destroyed.
	SaveTable(t *Table, owner, saveName string) error
	// RecordResult persists a finished game and applies ratings.
	RecordResult(t *Table, res *game.Result, rankings [][]string)
	// MemberLeft unbinds the user with the given player id from the
	// table.
	MemberLeft(t *Table, playerID string)
	// WinProbability predicts a head-to-head for the table's game type.
	WinProbability(gameType, aID, bID string) (float64, bool)
	// SimulateArgs builds the argv of a headless simulation run.
	SimulateArgs(gameType, optionsJSON string, bots int) []string
}

// Table is one live game and its seat bookkeeping.
type Table struct {
	ID       string
	GameType string
	Game     game.Variant

	mgr *Manager
}

// Base is a shorthand for the game's framework root.
func (t *Table) Base() *game.Base {
	return t.Game.State()
}

// HostName returns the current host's display name.
func (t *Table) HostName() string {
	return t.Base().HostName
}

// Members lists the table's current seats in join order.
func (t *Table) Members() []Member {
	players := t.Base().Players
	out := make([]Member, 0, len(players))
	for _, p := range players {
		out = append(out, Member{Username: p.Name, IsBot: p.IsBot})
	}
	return out
}

// HasPlayer reports whether the player id is seated here.
func (t *Table) HasPlayer(playerID string) bool {
	return t.Base().PlayerByID(playerID) != nil
}

// game.Host implementation --------------------------------------------------

// DestroyGame removes the table from the manager.
func (t *Table) DestroyGame() {
	t.mgr.Destroy(t.ID)
}

// SaveGame snapshots the table for owner and destroys it.
func (t *Table) SaveGame(owner, saveName string) error {
	if err := t.mgr.cb.SaveTable(t, owner, saveName); err != nil {
		return err
	}
	t.mgr.Destroy(t.ID)
	return nil
}

// GameFinished records the result and ratings with the server.
func (t *Table) GameFinished(res *game.Result, rankings [][]string) {
	t.mgr.cb.RecordResult(t, res, rankings)
}

// PlayerLeft tells the server the player id no longer holds a seat.
func (t *Table) PlayerLeft(playerID string) {
	t.mgr.cb.MemberLeft(t, playerID)
}

// WinProbability forwards to the rating engine.
func (t *Table) WinProbability(aID, bID string) (float64, bool) {
	return t.mgr.cb.WinProbability(t.GameType, aID, bID)
}

// SimulateArgs forwards to the server's simulation harness.
func (t *Table) SimulateArgs(gameType, optionsJSON string, bots int) []string {
	return t.mgr.cb.SimulateArgs(gameType, optionsJSON, bots)
}

func newTableID() string {
	return uuid.NewString()
}
