package server

import (
	"encoding/json"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
	"github.com/parlorgames/parlor/pkg/statemachine"
	"github.com/parlorgames/parlor/pkg/transport"
)

// User is the in-memory extension of an account: the live connection,
// the outbound queue flushed by the tick loop, and the shell position.
// It is the game framework's seat for this person.
type User struct {
	Username string
	UUID     string
	Prefs    game.Preferences

	conn  *transport.Conn
	queue []protocol.Packet

	shell *statemachine.Machine[shellCtx]
}

var _ game.Seat = (*User)(nil)

// SeatName returns the display name used at tables.
func (u *User) SeatName() string {
	return u.Username
}

// Locale returns the user's language.
func (u *User) Locale() string {
	if u.Prefs.Locale == "" {
		return i18n.DefaultLocale
	}
	return u.Prefs.Locale
}

// IsBotSeat is always false for a connected person.
func (u *User) IsBotSeat() bool {
	return false
}

// Preferences returns the user's UI settings.
func (u *User) Preferences() game.Preferences {
	return u.Prefs
}

// Enqueue buffers a packet for the next tick flush.
func (u *User) Enqueue(pkt protocol.Packet) {
	u.queue = append(u.queue, pkt)
}

// Flush writes the queued packets to the user's connection in order.
// A missing or dead connection drops them silently.
func (u *User) Flush() {
	if len(u.queue) == 0 {
		return
	}
	pkts := u.queue
	u.queue = nil
	if u.conn == nil {
		return
	}
	for _, p := range pkts {
		u.conn.Send(p)
	}
}

// Speak enqueues screen-reader text.
func (u *User) Speak(text string) {
	u.Enqueue(protocol.NewSpeak(text))
}

// SpeakL enqueues a localized message.
func (u *User) SpeakL(key string, args i18n.Args) {
	u.Speak(i18n.T(u.Locale(), key, args))
}

// prefsJSON serializes the preferences for the user row.
func (u *User) prefsJSON() string {
	data, err := json.Marshal(u.Prefs)
	if err != nil {
		return "{}"
	}
	return string(data)
}
