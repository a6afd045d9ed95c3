package game

import (
	"strings"
)

// KeybindWhen gates a keybind on the game's status.
type KeybindWhen string

const (
	KeyNever  KeybindWhen = "never"
	KeyIdle   KeybindWhen = "idle"   // only while waiting
	KeyActive KeybindWhen = "active" // only while playing
	KeyAlways KeybindWhen = "always"
)

// Keybind maps a normalized key combo to one or more action ids.
// Several keybinds may share a key with disjoint When states; the
// state filter selects the applicable one. Keybinds are runtime-only
// and reinstalled by Init after a load.
type Keybind struct {
	Name    string
	Key     string
	Actions []string
	// RequireFocus demands that the client's focused menu item is one
	// of the keybind's action ids.
	RequireFocus bool
	When         KeybindWhen
	// Players restricts the keybind to specific player ids; empty
	// means all players.
	Players []string
	// Spectators allows spectators to fire the keybind.
	Spectators bool
}

// NormalizeKey lowercases the key and prepends modifier prefixes in
// shift, ctrl, alt order.
func NormalizeKey(key string, shift, ctrl, alt bool) string {
	k := strings.ToLower(key)
	if shift {
		k = "shift+" + k
	}
	if ctrl {
		k = "ctrl+" + k
	}
	if alt {
		k = "alt+" + k
	}
	return k
}

// Bind registers a keybind. Key must already be in normalized combo
// form (e.g. "space", "ctrl+s").
func (b *Base) Bind(kb Keybind) {
	b.keybinds[kb.Key] = append(b.keybinds[kb.Key], kb)
}

// HandleKeybind dispatches a keybind packet: every registered keybind
// for the combo is filtered by spectator flag, state, player
// restriction and focus; each surviving keybind's actions execute in
// order (disabled ones speak their reason instead).
func (b *Base) HandleKeybind(p *Player, key string, shift, ctrl, alt bool, focusID string, focusIndex int) {
	combo := NormalizeKey(key, shift, ctrl, alt)
	if focusID != "" {
		b.lastFocus[p.ID] = focusID
	}
	fired := false
	for _, kb := range b.keybinds[combo] {
		if !b.keybindApplies(p, kb, focusID) {
			continue
		}
		for _, id := range kb.Actions {
			a := p.FindAction(id)
			if a == nil {
				continue
			}
			fired = true
			res := b.Resolve(p, a)
			if !res.Enabled {
				b.SpeakL(p, res.Reason, nil)
				continue
			}
			b.ExecuteAction(p, a, &ActionContext{
				Origin:     OriginKeybind,
				FocusID:    focusID,
				FocusIndex: focusIndex,
			})
		}
	}
	if fired && b.pendingInput[p.ID] == "" && !b.statusBoxOpen[p.ID] && !b.actionsMenuOpen[p.ID] {
		b.RebuildMenuFor(p)
	}
}

func (b *Base) keybindApplies(p *Player, kb Keybind, focusID string) bool {
	if p.IsSpectator && !kb.Spectators {
		return false
	}
	switch kb.When {
	case KeyNever:
		return false
	case KeyIdle:
		if b.Status != StatusWaiting {
			return false
		}
	case KeyActive:
		if b.Status != StatusPlaying {
			return false
		}
	}
	if len(kb.Players) > 0 {
		found := false
		for _, id := range kb.Players {
			if id == p.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if kb.RequireFocus {
		match := false
		for _, id := range kb.Actions {
			if id == focusID {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}
