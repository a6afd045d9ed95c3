package game

import (
	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
)

// Speak sends verbatim text to one player.
func (b *Base) Speak(p *Player, text string) {
	if seat := p.Seat(); seat != nil {
		seat.Enqueue(protocol.NewSpeak(text))
	}
}

// SpeakL sends a localized message to one player.
func (b *Base) SpeakL(p *Player, key string, args i18n.Args) {
	if key == "" {
		return
	}
	if seat := p.Seat(); seat != nil {
		seat.Enqueue(protocol.NewSpeak(i18n.T(p.Locale(), key, args)))
	}
}

// Broadcast speaks verbatim text to every player except exclude.
func (b *Base) Broadcast(text string, exclude *Player) {
	for _, p := range b.Players {
		if p == exclude {
			continue
		}
		b.Speak(p, text)
	}
}

// BroadcastL speaks a message to every player except exclude, each in
// their own locale.
func (b *Base) BroadcastL(key string, exclude *Player, args i18n.Args) {
	for _, p := range b.Players {
		if p == exclude {
			continue
		}
		b.SpeakL(p, key, args)
	}
}

// BroadcastPersonalL speaks personalKey to the focal player and
// othersKey (with a {player} argument naming the focal player) to
// everyone else.
func (b *Base) BroadcastPersonalL(focal *Player, personalKey, othersKey string, args i18n.Args) {
	others := i18n.Args{"player": focal.Name}
	for k, v := range args {
		others[k] = v
	}
	for _, p := range b.Players {
		if p == focal {
			b.SpeakL(p, personalKey, args)
		} else {
			b.SpeakL(p, othersKey, others)
		}
	}
}
