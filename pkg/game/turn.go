package game

import (
	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
)

// turnSound is broadcast to users who enabled the turn-change sound.
const turnSound = "turn"

// SetTurnPlayers installs the ordered turn rotation and resets the
// cursor. Spectators must never be included.
func (b *Base) SetTurnPlayers(ids []string) {
	b.TurnPlayerIDs = ids
	b.TurnIndex = 0
}

// CurrentPlayer returns the player whose turn it is, or nil when no
// rotation is installed.
func (b *Base) CurrentPlayer() *Player {
	n := len(b.TurnPlayerIDs)
	if n == 0 {
		return nil
	}
	return b.PlayerByID(b.TurnPlayerIDs[mod(b.TurnIndex, n)])
}

// AdvanceTurn consumes queued skips (announcing each skipped player),
// moves the cursor one step in the current direction, optionally
// announces the new turn, and rebuilds everyone's menus.
func (b *Base) AdvanceTurn(announce bool) {
	n := len(b.TurnPlayerIDs)
	if n == 0 {
		return
	}
	for b.PendingSkips > 0 {
		b.PendingSkips--
		b.TurnIndex = mod(b.TurnIndex+b.TurnDirection, n)
		if skipped := b.CurrentPlayer(); skipped != nil {
			b.BroadcastL("turn-skipped", nil, i18n.Args{"player": skipped.Name})
		}
	}
	b.TurnIndex = mod(b.TurnIndex+b.TurnDirection, n)
	if announce {
		b.AnnounceTurn()
	}
	b.RebuildMenus()
}

// AnnounceTurn speaks the turn start to everyone and plays the turn
// sound for users who want it.
func (b *Base) AnnounceTurn() {
	cur := b.CurrentPlayer()
	if cur == nil {
		return
	}
	b.BroadcastPersonalL(cur, "turn-start-you", "turn-start", nil)
	for _, p := range b.Players {
		seat := p.Seat()
		if seat == nil || seat.IsBotSeat() {
			continue
		}
		if seat.Preferences().PlayTurnSound {
			seat.Enqueue(protocol.NewPlaySound(turnSound, 1.0, 0, 1.0))
		}
	}
}

// SkipNextPlayers queues n skips consumed by the next AdvanceTurn.
func (b *Base) SkipNextPlayers(n int) {
	b.PendingSkips += n
}

// ReverseTurnDirection flips the rotation direction.
func (b *Base) ReverseTurnDirection() {
	b.TurnDirection = -b.TurnDirection
}

// ResetTurnOrder zeroes the cursor, restores forward direction and
// clears queued skips.
func (b *Base) ResetTurnOrder(announce bool) {
	b.TurnIndex = 0
	b.TurnDirection = 1
	b.PendingSkips = 0
	if announce {
		b.AnnounceTurn()
	}
	b.RebuildMenus()
}

// IsCurrent reports whether it is p's turn.
func (b *Base) IsCurrent(p *Player) bool {
	cur := b.CurrentPlayer()
	return cur != nil && cur.ID == p.ID
}

func mod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}
