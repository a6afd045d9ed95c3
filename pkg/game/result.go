package game

import (
	"strconv"
	"time"

	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
)

// PlayerResult is one participant of a finished game.
type PlayerResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"is_bot"`
}

// Result is the immutable record of a finished game.
type Result struct {
	GameType      string         `json:"game_type"`
	Timestamp     string         `json:"timestamp"`
	DurationTicks int64          `json:"duration_ticks"`
	Players       []PlayerResult `json:"players"`
	CustomData    map[string]any `json:"custom_data"`
}

// FinishGame ends the game: builds and persists the result, applies
// the rating update and, when asked, shows the game-over screen. A
// table left with no humans is destroyed immediately.
func (b *Base) FinishGame(showEndScreen bool) {
	b.GameActive = false
	b.Status = StatusFinished

	res := &Result{
		GameType:      b.GameType,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DurationTicks: b.TickCount,
		CustomData:    map[string]any{},
	}
	for _, p := range b.ActivePlayers() {
		res.Players = append(res.Players, PlayerResult{ID: p.ID, Name: p.Name, IsBot: p.IsBot})
	}
	if rb, ok := b.impl.(ResultBuilder); ok {
		rb.BuildResult(res)
	}

	var rankings [][]string
	if r, ok := b.impl.(Ranker); ok {
		rankings = r.Rankings()
	}
	b.host.GameFinished(res, rankings)

	if showEndScreen {
		b.showEndScreen()
	}

	if b.HumanCount() == 0 {
		b.host.DestroyGame()
	}
}

// showEndScreen broadcasts the game_over menu: one inert line per
// score line plus a final selectable Leave entry.
func (b *Base) showEndScreen() {
	for _, p := range b.Players {
		seat := p.Seat()
		if seat == nil || seat.IsBotSeat() {
			continue
		}
		var items []protocol.MenuItem
		if ef, ok := b.impl.(EndScreenFormatter); ok {
			for i, line := range ef.EndScreen(p.Locale()) {
				items = append(items, protocol.MenuItem{Text: line, ID: "end_line_" + strconv.Itoa(i)})
			}
		}
		items = append(items, protocol.MenuItem{
			Text: i18n.T(p.Locale(), "action-leave-game", nil),
			ID:   "leave",
		})
		b.rememberItems(p, MenuGameOver, items)
		seat.Enqueue(protocol.NewShowMenu(MenuGameOver, items, false, "none"))
	}
}
