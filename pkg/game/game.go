// Package game is the turn-based game framework: a serializable game
// state root driven by declarative actions, keybinds, a shared tick,
// a per-game sound scheduler and a cooperative bot cadence. Concrete
// games embed Base and plug in behavior through the Variant interface
// and named handler registrations.
package game

import (
	"math/rand"
	"strconv"

	"github.com/decred/slog"

	"github.com/parlorgames/parlor/pkg/i18n"
	"github.com/parlorgames/parlor/pkg/protocol"
)

// TicksPerSecond is the canonical scheduler rate (50 ms per tick).
const TicksPerSecond = 20

// Status is a game's lifecycle phase.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Logical menu ids a game understands.
const (
	MenuTurn        = "turn_menu"
	MenuActions     = "actions_menu"
	MenuStatusBox   = "status_box"
	MenuGameOver    = "game_over"
	MenuActionInput = "action_input_menu"

	EditboxActionInput = "action_input_editbox"
)

// Host is what the framework needs from whoever owns the game (the
// table, which forwards to the server).
type Host interface {
	// DestroyGame tears the table down; displaced humans return to the
	// main menu.
	DestroyGame()
	// SaveGame snapshots the game into a saved-table row owned by
	// owner, then destroys the table.
	SaveGame(owner, saveName string) error
	// GameFinished persists the result and applies the rating update.
	GameFinished(res *Result, rankings [][]string)
	// PlayerLeft tells the owner a player id no longer maps to a
	// seated member.
	PlayerLeft(playerID string)
	// WinProbability answers head-to-head prediction queries, false if
	// unavailable.
	WinProbability(aID, bID string) (float64, bool)
	// SimulateArgs returns the argv of a headless simulation of this
	// game type, or nil when estimation is unavailable.
	SimulateArgs(gameType string, optionsJSON string, bots int) []string
}

// Definition describes a registered game type.
type Definition struct {
	Type       string
	NameKey    string
	Category   string
	MinPlayers int
	MaxPlayers int
	// HumanFactor scales bot-only duration estimates to human play.
	HumanFactor float64
}

// Variant is the behavior a concrete game must provide. Optional
// capabilities are separate interfaces asserted at use sites.
type Variant interface {
	// State exposes the embedded framework state. The embedded field is
	// named Base, so the accessor needs a distinct name to be promoted.
	State() *Base
	// Init registers handlers, options and keybinds. It runs once per
	// instance, on creation and again after deserialization.
	Init()
	// OnStart is invoked when the lobby starts the game.
	OnStart()
	// BotThink picks the next action id for a bot, or "" to wait.
	BotThink(p *Player) string
}

// Ticker is implemented by games that need per-tick processing.
type Ticker interface {
	GameTick()
}

// TurnActionProvider supplies the per-player "turn" action set.
type TurnActionProvider interface {
	TurnActionSet(p *Player) *ActionSet
}

// ResultBuilder fills game-specific custom data into a result.
type ResultBuilder interface {
	BuildResult(res *Result)
}

// EndScreenFormatter produces the game-over screen lines.
type EndScreenFormatter interface {
	EndScreen(locale string) []string
}

// Ranker orders player ids from first place to last, ties grouped.
type Ranker interface {
	Rankings() [][]string
}

// ScoreReporter answers the check-scores standard actions.
type ScoreReporter interface {
	Scores(locale string) []string
	DetailedScores(locale string) []string
}

// RuntimeRebuilder restores non-serialized caches after a load.
type RuntimeRebuilder interface {
	RebuildRuntime()
}

// Base is the serializable root of a game's state plus the framework
// runtime. Concrete games embed it by value; its exported fields are
// the persisted state.
type Base struct {
	GameType string  `json:"game_type"`
	HostName string  `json:"host"`
	Status   Status  `json:"status"`
	Round    int     `json:"round"`
	Players  []*Player `json:"players"`

	// Turn cursor.
	TurnPlayerIDs []string `json:"turn_player_ids"`
	TurnIndex     int      `json:"turn_index"`
	TurnDirection int      `json:"turn_direction"`
	PendingSkips  int      `json:"pending_skips"`

	// Sound scheduler.
	Sounds    []ScheduledSound `json:"scheduled_sounds"`
	SoundTick int64            `json:"sound_tick"`

	Music    string `json:"music,omitempty"`
	Ambience string `json:"ambience,omitempty"`

	Options OptionValues `json:"options"`
	Teams   *TeamManager `json:"teams,omitempty"`

	GameActive bool  `json:"game_active"`
	TickCount  int64 `json:"tick_count"`
	Seed       int64 `json:"seed"`
	RngUses    int64 `json:"rng_uses"`

	// Runtime (rebuilt on load).
	def  Definition
	impl Variant
	host Host
	log  slog.Logger
	rng  *rand.Rand

	handlers     map[string]HandlerFunc
	enabledFns   map[string]EnabledFunc
	hiddenFns    map[string]HiddenFunc
	labelFns     map[string]LabelFunc
	choiceFns    map[string]ChoicesFunc
	botSelectFns map[string]BotSelectFunc
	botInputFns  map[string]BotInputFunc

	keybinds map[string][]Keybind
	declared []Option

	pendingInput    map[string]string // player id -> action id awaiting input
	statusBoxOpen   map[string]bool
	actionsMenuOpen map[string]bool
	menuShown       map[string]bool
	lastItems       map[string]map[string][]protocol.MenuItem
	lastFocus       map[string]string // player id -> focused turn-menu item

	estimate *estimateRun
}

// State returns itself so that embedding satisfies Variant.State.
func (b *Base) State() *Base {
	return b
}

// Definition returns the registered definition of this game type.
func (b *Base) Definition() Definition {
	return b.def
}

// Log returns the game's logger.
func (b *Base) Log() slog.Logger {
	return b.log
}

// setup wires the runtime into a fresh or deserialized Base.
func (b *Base) setup(def Definition, impl Variant, host Host, log slog.Logger, seed int64, fresh bool) {
	b.def = def
	b.impl = impl
	b.host = host
	b.log = log

	b.handlers = make(map[string]HandlerFunc)
	b.enabledFns = make(map[string]EnabledFunc)
	b.hiddenFns = make(map[string]HiddenFunc)
	b.labelFns = make(map[string]LabelFunc)
	b.choiceFns = make(map[string]ChoicesFunc)
	b.botSelectFns = make(map[string]BotSelectFunc)
	b.botInputFns = make(map[string]BotInputFunc)
	b.keybinds = make(map[string][]Keybind)
	b.pendingInput = make(map[string]string)
	b.statusBoxOpen = make(map[string]bool)
	b.actionsMenuOpen = make(map[string]bool)
	b.menuShown = make(map[string]bool)
	b.lastItems = make(map[string]map[string][]protocol.MenuItem)
	b.lastFocus = make(map[string]string)

	if fresh {
		b.GameType = def.Type
		b.Status = StatusWaiting
		b.TurnDirection = 1
		b.Seed = seed
		b.Teams = NewTeamManager()
	}
	b.rng = rand.New(rand.NewSource(b.Seed))
	// Replay consumed draws so a restored game continues the same
	// deterministic sequence.
	for i := int64(0); i < b.RngUses; i++ {
		b.rng.Int63()
	}

	b.registerBuiltins()
	b.installDefaultKeybinds()
}

// RandIntn draws from the game's deterministic RNG, counting uses so
// the stream survives save/restore.
func (b *Base) RandIntn(n int) int {
	b.RngUses++
	return int(b.rng.Int63() % int64(n))
}

// RollDie returns 1..sides.
func (b *Base) RollDie(sides int) int {
	return b.RandIntn(sides) + 1
}

// Players and membership -------------------------------------------------

// PlayerByID returns the player with the given id, or nil.
func (b *Base) PlayerByID(id string) *Player {
	for _, p := range b.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the player with the given display name, or nil.
func (b *Base) PlayerByName(name string) *Player {
	for _, p := range b.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the non-spectator players in seating order.
func (b *Base) ActivePlayers() []*Player {
	var out []*Player
	for _, p := range b.Players {
		if !p.IsSpectator {
			out = append(out, p)
		}
	}
	return out
}

// HumanCount counts players currently controlled by people.
func (b *Base) HumanCount() int {
	n := 0
	for _, p := range b.Players {
		if p.Human() {
			n++
		}
	}
	return n
}

// AddHuman seats a person as a new player and builds their action
// sets. id is the user's stable UUID.
func (b *Base) AddHuman(id, name string, seat Seat, spectator bool) *Player {
	p := &Player{ID: id, Name: name, IsSpectator: spectator}
	p.AttachSeat(seat)
	b.Players = append(b.Players, p)
	b.BuildActionSets(p)
	b.sendAtmosphere(p)
	return p
}

// AddBot seats a bot with a freshly generated id.
func (b *Base) AddBot(name string) *Player {
	p := &Player{ID: NewID(), Name: name, IsBot: true}
	p.AttachSeat(NewBotSeat(name))
	b.Players = append(b.Players, p)
	b.BuildActionSets(p)
	return p
}

// ReattachHuman rebinds a seat to an existing player by id (login
// while seated, or restore). A bot seat being taken over flips back to
// human in place.
func (b *Base) ReattachHuman(id string, seat Seat) *Player {
	p := b.PlayerByID(id)
	if p == nil {
		return nil
	}
	p.IsBot = false
	p.AttachSeat(seat)
	b.menuShown[p.ID] = false
	b.sendAtmosphere(p)
	b.RebuildMenuFor(p)
	return p
}

// RemovePlayer drops a player from the game entirely (lobby phase).
func (b *Base) RemovePlayer(id string) {
	for i, p := range b.Players {
		if p.ID == id {
			b.Players = append(b.Players[:i], b.Players[i+1:]...)
			break
		}
	}
	for i, tid := range b.TurnPlayerIDs {
		if tid == id {
			b.TurnPlayerIDs = append(b.TurnPlayerIDs[:i], b.TurnPlayerIDs[i+1:]...)
			break
		}
	}
	delete(b.pendingInput, id)
	delete(b.statusBoxOpen, id)
	delete(b.actionsMenuOpen, id)
	delete(b.menuShown, id)
	delete(b.lastItems, id)
	delete(b.lastFocus, id)
}

// BuildActionSets assembles the player's action-set list in standard
// order: turn, lobby, options, estimate, standard.
func (b *Base) BuildActionSets(p *Player) {
	p.ActionSets = nil
	if tp, ok := b.impl.(TurnActionProvider); ok {
		if set := tp.TurnActionSet(p); set != nil {
			p.ActionSets = append(p.ActionSets, set)
		}
	}
	p.ActionSets = append(p.ActionSets, b.lobbyActionSet())
	if opts := b.optionsActionSet(); opts != nil {
		p.ActionSets = append(p.ActionSets, opts)
	}
	p.ActionSets = append(p.ActionSets, b.estimateActionSet())
	p.ActionSets = append(p.ActionSets, b.standardActionSet())
}

// Action resolution ------------------------------------------------------

// Resolve computes the runtime view of an action for a player.
func (b *Base) Resolve(p *Player, a *Action) ResolvedAction {
	res := ResolvedAction{Action: a, Enabled: true, Visible: true}
	if a.Enabled != "" {
		if fn, ok := b.enabledFns[a.Enabled]; ok {
			if reason := fn(p); reason != "" {
				res.Enabled = false
				res.Reason = reason
			}
		}
	}
	if a.Hidden != "" {
		if fn, ok := b.hiddenFns[a.Hidden]; ok && fn(p) {
			res.Visible = false
		}
	}
	locale := p.Locale()
	if a.LabelFn != "" {
		if fn, ok := b.labelFns[a.LabelFn]; ok {
			res.Label = fn(p, locale)
		}
	}
	if res.Label == "" {
		res.Label = i18n.T(locale, a.LabelKey, nil)
	}
	return res
}

// VisibleActions lists the enabled AND visible actions across the
// player's sets, in order. This is the turn menu content.
func (b *Base) VisibleActions(p *Player) []ResolvedAction {
	var out []ResolvedAction
	for _, set := range p.ActionSets {
		for _, a := range set.Actions {
			r := b.Resolve(p, a)
			if r.Enabled && r.Visible {
				out = append(out, r)
			}
		}
	}
	return out
}

// EnabledActions lists the enabled actions regardless of visibility,
// minus those opted out of the actions menu.
func (b *Base) EnabledActions(p *Player) []ResolvedAction {
	var out []ResolvedAction
	for _, set := range p.ActionSets {
		for _, a := range set.Actions {
			if a.NoActionsMenu {
				continue
			}
			r := b.Resolve(p, a)
			if r.Enabled {
				out = append(out, r)
			}
		}
	}
	return out
}

// ExecuteAction re-checks the action, gathers any required input, then
// runs the handler and rebuilds the actor's menu.
func (b *Base) ExecuteAction(p *Player, a *Action, ctx *ActionContext) {
	ctx.ActionID = a.ID
	res := b.Resolve(p, a)
	if !res.Enabled {
		b.SpeakL(p, res.Reason, nil)
		return
	}

	if a.Input != nil && !ctx.HasValue {
		if p.IsBot {
			v, ok := b.synthesizeInput(p, a)
			if !ok {
				return
			}
			ctx.Value = v
			ctx.HasValue = true
		} else {
			b.requestInput(p, a)
			return
		}
	}

	handler, ok := b.handlers[a.Handler]
	if !ok {
		b.log.Errorf("game %s: action %s references unknown handler %s", b.GameType, a.ID, a.Handler)
		return
	}
	handler(p, ctx)

	if b.pendingInput[p.ID] == "" && !b.statusBoxOpen[p.ID] && !b.actionsMenuOpen[p.ID] {
		b.RebuildMenuFor(p)
	}
}

// requestInput shows the action's input UI and records the pending
// action for the player.
func (b *Base) requestInput(p *Player, a *Action) {
	seat := p.Seat()
	if seat == nil {
		return
	}
	locale := p.Locale()
	b.pendingInput[p.ID] = a.ID
	switch a.Input.Kind {
	case InputMenu:
		var items []protocol.MenuItem
		if fn, ok := b.choiceFns[a.Input.Choices]; ok {
			for _, c := range fn(p) {
				items = append(items, protocol.MenuItem{Text: c.Label, ID: c.ID})
			}
		}
		b.rememberItems(p, MenuActionInput, items)
		seat.Enqueue(protocol.NewShowMenu(MenuActionInput, items, false, "close"))
	case InputEditbox:
		def := a.Input.Default
		if a.Input.DefaultFn != "" {
			if fn, ok := b.botInputFns[a.Input.DefaultFn]; ok {
				def = fn(p)
			}
		}
		seat.Enqueue(protocol.NewShowEditbox(EditboxActionInput, i18n.T(locale, a.Input.PromptKey, nil), def))
	}
}

// synthesizeInput produces a bot's answer to an input request.
func (b *Base) synthesizeInput(p *Player, a *Action) (string, bool) {
	switch a.Input.Kind {
	case InputMenu:
		if a.Input.BotSelect != "" {
			if fn, ok := b.botSelectFns[a.Input.BotSelect]; ok {
				if v := fn(p); v != "" {
					return v, true
				}
				return "", false
			}
		}
		if fn, ok := b.choiceFns[a.Input.Choices]; ok {
			choices := fn(p)
			if len(choices) > 0 {
				return choices[0].ID, true
			}
		}
		return "", false
	case InputEditbox:
		if a.Input.BotInput != "" {
			if fn, ok := b.botInputFns[a.Input.BotInput]; ok {
				// An empty answer means the bot has no legal value.
				v := fn(p)
				return v, v != ""
			}
		}
		return a.Input.Default, true
	}
	return "", false
}

// Menus ------------------------------------------------------------------

// RebuildMenuFor rebuilds and pushes the player's turn menu, unless an
// input, status box or actions menu is in the way.
func (b *Base) RebuildMenuFor(p *Player) {
	seat := p.Seat()
	if seat == nil || seat.IsBotSeat() {
		return
	}
	if b.pendingInput[p.ID] != "" || b.statusBoxOpen[p.ID] || b.actionsMenuOpen[p.ID] {
		return
	}
	items := make([]protocol.MenuItem, 0, 8)
	for _, r := range b.VisibleActions(p) {
		items = append(items, protocol.MenuItem{Text: r.Label, ID: r.Action.ID})
	}
	b.rememberItems(p, MenuTurn, items)
	if !b.menuShown[p.ID] {
		b.menuShown[p.ID] = true
		seat.Enqueue(protocol.NewShowMenu(MenuTurn, items, true, "none"))
	} else {
		// Keep the client's cursor where it was when the item survives
		// the rebuild.
		sel := b.lastFocus[p.ID]
		if sel != "" {
			found := false
			for _, it := range items {
				if it.ID == sel {
					found = true
					break
				}
			}
			if !found {
				sel = ""
			}
		}
		seat.Enqueue(protocol.NewUpdateMenu(MenuTurn, items, sel))
	}
}

// RebuildMenus rebuilds every player's turn menu.
func (b *Base) RebuildMenus() {
	for _, p := range b.Players {
		b.RebuildMenuFor(p)
	}
}

func (b *Base) rememberItems(p *Player, menuID string, items []protocol.MenuItem) {
	m, ok := b.lastItems[p.ID]
	if !ok {
		m = make(map[string][]protocol.MenuItem)
		b.lastItems[p.ID] = m
	}
	m[menuID] = items
}

func (b *Base) itemAt(p *Player, menuID string, index int) (protocol.MenuItem, bool) {
	items := b.lastItems[p.ID][menuID]
	if index < 1 || index > len(items) {
		return protocol.MenuItem{}, false
	}
	return items[index-1], true
}

// ShowStatusBox presents read-only lines to one player; any selection
// closes it.
func (b *Base) ShowStatusBox(p *Player, lines []string) {
	seat := p.Seat()
	if seat == nil || seat.IsBotSeat() {
		return
	}
	items := make([]protocol.MenuItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, protocol.MenuItem{Text: line, ID: "line_" + strconv.Itoa(i)})
	}
	b.statusBoxOpen[p.ID] = true
	b.rememberItems(p, MenuStatusBox, items)
	seat.Enqueue(protocol.NewShowMenu(MenuStatusBox, items, false, "close"))
}

// openActionsMenu shows the fallback all-enabled-actions menu.
func (b *Base) openActionsMenu(p *Player) {
	seat := p.Seat()
	if seat == nil || seat.IsBotSeat() {
		return
	}
	items := make([]protocol.MenuItem, 0, 8)
	for _, r := range b.EnabledActions(p) {
		items = append(items, protocol.MenuItem{Text: r.Label, ID: r.Action.ID})
	}
	b.actionsMenuOpen[p.ID] = true
	b.rememberItems(p, MenuActions, items)
	seat.Enqueue(protocol.NewShowMenu(MenuActions, items, true, "close"))
}

// Packet dispatch --------------------------------------------------------

// HandleMenu routes a menu selection packet for the given player.
// Unknown menu ids are ignored.
func (b *Base) HandleMenu(p *Player, menuID, selectionID string, index int) {
	if selectionID == "" && index > 0 {
		if item, ok := b.itemAt(p, menuID, index); ok {
			selectionID = item.ID
		}
	}
	switch menuID {
	case MenuTurn:
		if selectionID != "" {
			b.lastFocus[p.ID] = selectionID
		}
		a := p.FindAction(selectionID)
		if a == nil {
			return
		}
		b.ExecuteAction(p, a, &ActionContext{Origin: OriginMenu})

	case MenuActions:
		b.actionsMenuOpen[p.ID] = false
		a := p.FindAction(selectionID)
		if a == nil {
			b.RebuildMenuFor(p)
			return
		}
		b.ExecuteAction(p, a, &ActionContext{Origin: OriginMenu})

	case MenuActionInput:
		pending := b.pendingInput[p.ID]
		if pending == "" {
			return
		}
		delete(b.pendingInput, p.ID)
		if seat := p.Seat(); seat != nil {
			seat.Enqueue(protocol.NewRemoveMenu(MenuActionInput))
		}
		a := p.FindAction(pending)
		if a == nil {
			return
		}
		b.ExecuteAction(p, a, &ActionContext{Origin: OriginInput, Value: selectionID, HasValue: true})

	case MenuStatusBox:
		b.statusBoxOpen[p.ID] = false
		if seat := p.Seat(); seat != nil {
			seat.Enqueue(protocol.NewRemoveMenu(MenuStatusBox))
		}
		b.RebuildMenuFor(p)

	case MenuGameOver:
		if selectionID == "leave" {
			b.leaveFinishedGame(p)
		}
	}
}

// HandleEditbox routes an editbox submission. Only the action-input
// editbox is meaningful, and only with a pending action recorded.
func (b *Base) HandleEditbox(p *Player, inputID, text string) {
	if inputID != EditboxActionInput {
		return
	}
	pending := b.pendingInput[p.ID]
	if pending == "" {
		return
	}
	delete(b.pendingInput, p.ID)
	a := p.FindAction(pending)
	if a == nil {
		return
	}
	b.ExecuteAction(p, a, &ActionContext{Origin: OriginInput, Value: text, HasValue: true})
}

// Tick -------------------------------------------------------------------

// OnTick advances the game by one scheduler tick: scheduled sounds,
// estimation polling, bot cadence, then the game's own tick hook.
func (b *Base) OnTick() {
	b.TickCount++
	b.flushSounds()
	b.pollEstimate()
	if b.Status == StatusPlaying && b.GameActive {
		b.botCadence()
	}
	if t, ok := b.impl.(Ticker); ok {
		t.GameTick()
	}
}

