package game

import (
	"github.com/parlorgames/parlor/pkg/i18n"
)

const joinSound = "join"

// lobbyActionSet builds the lifecycle actions every player carries.
// All of them except start_game stay off the turn menu; they remain
// reachable through the actions menu and keybinds.
func (b *Base) lobbyActionSet() *ActionSet {
	return NewActionSet("lobby",
		&Action{
			ID:       "start_game",
			LabelKey: "action-start-game",
			Handler:  "_action_start_game",
			Enabled:  "_can_start_game",
			Hidden:   "_hide_start_game",
		},
		&Action{
			ID:       "add_bot",
			LabelKey: "action-add-bot",
			Handler:  "_action_add_bot",
			Enabled:  "_can_add_bot",
			Hidden:   "_always_hidden",
		},
		&Action{
			ID:       "remove_bot",
			LabelKey: "action-remove-bot",
			Handler:  "_action_remove_bot",
			Enabled:  "_can_remove_bot",
			Hidden:   "_always_hidden",
		},
		&Action{
			ID:       "toggle_spectator",
			LabelKey: "action-toggle-spectator",
			Handler:  "_action_toggle_spectator",
			Enabled:  "_can_toggle_spectator",
			Hidden:   "_always_hidden",
		},
		&Action{
			ID:       "leave_game",
			LabelKey: "action-leave-game",
			Handler:  "_action_leave_game",
			Hidden:   "_always_hidden",
		},
	)
}

// InitializeLobby makes the named user the host of a fresh game: sets
// status, seats them, installs the default keybinds and shows the
// first menu.
func (b *Base) InitializeLobby(hostID, hostName string, seat Seat) *Player {
	b.HostName = hostName
	b.Status = StatusWaiting
	p := b.AddHuman(hostID, hostName, seat, false)
	b.RebuildMenuFor(p)
	return p
}

// installDefaultKeybinds wires the framework-level function keys.
// Games add their own binds on top in Init.
func (b *Base) installDefaultKeybinds() {
	b.Bind(Keybind{Name: "actions menu", Key: "f1", Actions: []string{"show_actions_menu"}, When: KeyAlways, Spectators: true})
	b.Bind(Keybind{Name: "whose turn", Key: "f2", Actions: []string{"whose_turn"}, When: KeyAlways, Spectators: true})
	b.Bind(Keybind{Name: "scores", Key: "f3", Actions: []string{"check_scores"}, When: KeyAlways, Spectators: true})
}

func (b *Base) canStartGame(p *Player) string {
	if b.Status != StatusWaiting {
		return "start-already-running"
	}
	if p.Name != b.HostName {
		return "start-host-only"
	}
	active := len(b.ActivePlayers())
	if active < b.def.MinPlayers {
		return "start-need-players"
	}
	if need := b.Teams.RequiredPlayers(); need != 0 && active != need {
		return "start-teams-need-exact"
	}
	return ""
}

func (b *Base) actionStartGame(p *Player, ctx *ActionContext) {
	if reason := b.canStartGame(p); reason != "" {
		b.SpeakL(p, reason, nil)
		return
	}
	b.Status = StatusPlaying
	b.GameActive = true
	b.Round = 1
	if b.Teams.Enabled() {
		ids := make([]string, 0, len(b.ActivePlayers()))
		for _, ap := range b.ActivePlayers() {
			ids = append(ids, ap.ID)
		}
		// Deterministic shuffle so restored games reproduce seating.
		for i := len(ids) - 1; i > 0; i-- {
			j := b.RandIntn(i + 1)
			ids[i], ids[j] = ids[j], ids[i]
		}
		b.Teams.Assign(ids)
		b.announceTeams()
	}
	b.BroadcastL("game-started", nil, nil)
	b.impl.OnStart()
	b.RebuildMenus()
}

func (b *Base) announceTeams() {
	for _, t := range b.Teams.Teams {
		names := make([]string, 0, len(t.PlayerIDs))
		for _, id := range t.PlayerIDs {
			if p := b.PlayerByID(id); p != nil {
				names = append(names, p.Name)
			}
		}
		if len(names) == 2 {
			b.BroadcastL("team-announce", nil, i18n.Args{
				"number": t.Number, "a": names[0], "b": names[1],
			})
		}
	}
}

func (b *Base) canAddBot(p *Player) string {
	if b.Status != StatusWaiting {
		return "lobby-waiting-only"
	}
	if p.Name != b.HostName {
		return "lobby-host-only"
	}
	if len(b.ActivePlayers()) >= b.def.MaxPlayers {
		return "lobby-table-full"
	}
	return ""
}

func (b *Base) actionAddBot(p *Player, ctx *ActionContext) {
	bot := b.AddBot(b.pickBotName())
	b.BroadcastL("player-joined", nil, i18n.Args{"player": bot.Name})
	b.PlaySoundAll(joinSound, 1.0, 0, 1.0)
	b.RebuildMenus()
}

func (b *Base) canRemoveBot(p *Player) string {
	if b.Status != StatusWaiting {
		return "lobby-waiting-only"
	}
	if p.Name != b.HostName {
		return "lobby-host-only"
	}
	for _, pl := range b.Players {
		if pl.IsBot {
			return ""
		}
	}
	return "lobby-no-bots"
}

func (b *Base) actionRemoveBot(p *Player, ctx *ActionContext) {
	var last *Player
	for _, pl := range b.Players {
		if pl.IsBot {
			last = pl
		}
	}
	if last == nil {
		return
	}
	b.RemovePlayer(last.ID)
	b.BroadcastL("player-left", nil, i18n.Args{"player": last.Name})
	b.RebuildMenus()
}

func (b *Base) canToggleSpectator(p *Player) string {
	if b.Status != StatusWaiting {
		return "lobby-waiting-only"
	}
	if p.IsBot {
		return "lobby-humans-only"
	}
	return ""
}

func (b *Base) actionToggleSpectator(p *Player, ctx *ActionContext) {
	p.IsSpectator = !p.IsSpectator
	key := "spectator-off"
	if p.IsSpectator {
		key = "spectator-on"
	}
	b.BroadcastL(key, nil, i18n.Args{"player": p.Name})
	b.RebuildMenus()
}

// actionLeaveGame implements the two-phase leave: mid-game humans are
// converted to bots in place (keeping their id so they can take the
// seat back on rejoin); lobby-phase players are removed outright.
func (b *Base) actionLeaveGame(p *Player, ctx *ActionContext) {
	switch b.Status {
	case StatusPlaying:
		if !p.Human() {
			return
		}
		b.BroadcastL("player-left-bot-takeover", nil, i18n.Args{"player": p.Name})
		p.IsBot = true
		p.AttachSeat(NewBotSeat(p.Name))
		b.host.PlayerLeft(p.ID)
		if b.HumanCount() == 0 {
			b.host.DestroyGame()
			return
		}
		b.RebuildMenus()

	default:
		b.RemovePlayer(p.ID)
		b.BroadcastL("player-left", nil, i18n.Args{"player": p.Name})
		b.host.PlayerLeft(p.ID)
		if p.Name == b.HostName {
			b.transferHost()
		}
		if b.HumanCount() == 0 {
			b.host.DestroyGame()
			return
		}
		b.RebuildMenus()
	}
}

// leaveFinishedGame handles the game-over screen's Leave entry.
func (b *Base) leaveFinishedGame(p *Player) {
	b.RemovePlayer(p.ID)
	b.host.PlayerLeft(p.ID)
	if b.HumanCount() == 0 {
		b.host.DestroyGame()
	}
}

// transferHost hands hosting to the first remaining human.
func (b *Base) transferHost() {
	for _, p := range b.Players {
		if p.Human() {
			b.HostName = p.Name
			b.BroadcastL("host-transferred", nil, i18n.Args{"player": p.Name})
			return
		}
	}
}
