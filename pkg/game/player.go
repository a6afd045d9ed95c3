package game

import (
	"github.com/google/uuid"

	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
)

// Seat is the framework's view of whoever (or whatever) sits behind a
// Player: a connected user, a disconnected placeholder, or a bot.
// Outbound UI goes through Enqueue and is flushed by the tick loop.
type Seat interface {
	SeatName() string
	Locale() string
	IsBotSeat() bool
	Enqueue(pkt protocol.Packet)
	Preferences() Preferences
}

// Preferences are the per-user UI settings the framework consults.
type Preferences struct {
	PlayTurnSound   bool   `json:"play_turn_sound"`
	ClearKeptOnRoll bool   `json:"clear_kept_on_roll"`
	KeepingStyle    string `json:"keeping_style"` // "index" or "face"
	Locale          string `json:"locale"`
}

// DefaultPreferences returns the settings a fresh user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		PlayTurnSound:   true,
		ClearKeptOnRoll: false,
		KeepingStyle:    "index",
		Locale:          i18n.DefaultLocale,
	}
}

// Player is a participant in one game. The serialized fields are
// everything needed to resume after a restart; the seat is runtime
// only and is reattached on load.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsBot       bool   `json:"is_bot"`
	IsSpectator bool   `json:"is_spectator"`

	// Bot cadence state.
	ThinkTicks    int    `json:"think_ticks"`
	PendingAction string `json:"pending_action,omitempty"`
	Target        int    `json:"target,omitempty"`

	ActionSets []*ActionSet `json:"action_sets"`

	seat Seat
}

// NewID allocates a fresh player id (used for bots; humans reuse
// their account UUID).
func NewID() string {
	return uuid.NewString()
}

// Seat returns the attached seat, which may be nil for a player whose
// user is offline.
func (p *Player) Seat() Seat {
	return p.seat
}

// AttachSeat binds a seat to the player.
func (p *Player) AttachSeat(s Seat) {
	p.seat = s
}

// Human reports whether the player is controlled by a person.
func (p *Player) Human() bool {
	return !p.IsBot
}

// Locale returns the locale UI for this player renders in.
func (p *Player) Locale() string {
	if p.seat != nil {
		return p.seat.Locale()
	}
	return i18n.DefaultLocale
}

// ActionSet returns the named set, or nil.
func (p *Player) ActionSet(name string) *ActionSet {
	for _, s := range p.ActionSets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindAction returns the first action with the given id across the
// player's action sets, in set order.
func (p *Player) FindAction(id string) *Action {
	for _, s := range p.ActionSets {
		if a := s.Action(id); a != nil {
			return a
		}
	}
	return nil
}

// botSeat is the stand-in seat driving an AI player (or holding the
// seat of a human who left mid-game). It swallows all UI.
type botSeat struct {
	name string
}

// NewBotSeat creates a seat for a bot player.
func NewBotSeat(name string) Seat {
	return &botSeat{name: name}
}

func (b *botSeat) SeatName() string { return b.name }
func (b *botSeat) Locale() string { return i18n.DefaultLocale }
func (b *botSeat) IsBotSeat() bool { return true }
func (b *botSeat) Enqueue(protocol.Packet) {}
func (b *botSeat) Preferences() Preferences { return DefaultPreferences() }
