package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/decred/slog"
)

// Factory allocates an empty instance of a game type.
type Factory func() Variant

type registration struct {
	def     Definition
	factory Factory
}

var (
	regMu    sync.RWMutex
	registry = map[string]registration{}
)

// Register installs a game type. Called from game packages' init.
func Register(def Definition, factory Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[def.Type]; dup {
		panic("game: duplicate registration of " + def.Type)
	}
	registry[def.Type] = registration{def: def, factory: factory}
}

// Definitions lists every registered game type, sorted by type id.
func Definitions() []Definition {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]Definition, 0, len(registry))
	for _, r := range registry {
		out = append(out, r.def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// DefinitionFor returns the definition of a game type.
func DefinitionFor(gtype string) (Definition, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	r, ok := registry[gtype]
	return r.def, ok
}

// New creates a fresh game of the given type.
func New(gtype string, log slog.Logger, host Host, seed int64) (Variant, error) {
	regMu.RLock()
	r, ok := registry[gtype]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown game type %q", gtype)
	}
	v := r.factory()
	v.State().setup(r.def, v, host, log, seed, true)
	v.Init()
	return v, nil
}

// Serialize snapshots a game to JSON. The exported fields of the
// concrete game (Base included) are the save format.
func Serialize(v Variant) ([]byte, error) {
	return json.Marshal(v)
}

// Restore rebuilds a game from a snapshot: deserialize into a fresh
// instance, rewire the runtime, replay the RNG, re-register handlers
// and keybinds through Init, then let the game rebuild its own caches.
// Seats are not restored; the caller reattaches them.
func Restore(gtype string, data []byte, log slog.Logger, host Host) (Variant, error) {
	regMu.RLock()
	r, ok := registry[gtype]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown game type %q", gtype)
	}
	v := r.factory()
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", gtype, err)
	}
	v.State().setup(r.def, v, host, log, 0, false)
	v.Init()
	if rr, ok := v.(RuntimeRebuilder); ok {
		rr.RebuildRuntime()
	}
	return v, nil
}

// registerBuiltins installs the framework's generic handlers and
// guards. Names starting with an underscore are reserved for these.
func (b *Base) registerBuiltins() {
	b.RegisterHandler("_action_set_option", b.actionSetOption)
	b.RegisterHandler("_action_toggle_option", b.actionToggleOption)
	b.RegisterEnabled("_option_guard", b.optionGuard)

	b.RegisterHandler("_action_start_game", b.actionStartGame)
	b.RegisterEnabled("_can_start_game", b.canStartGame)
	b.RegisterHidden("_hide_start_game", func(p *Player) bool {
		return b.canStartGame(p) != ""
	})
	b.RegisterHandler("_action_add_bot", b.actionAddBot)
	b.RegisterEnabled("_can_add_bot", b.canAddBot)
	b.RegisterHandler("_action_remove_bot", b.actionRemoveBot)
	b.RegisterEnabled("_can_remove_bot", b.canRemoveBot)
	b.RegisterHandler("_action_toggle_spectator", b.actionToggleSpectator)
	b.RegisterEnabled("_can_toggle_spectator", b.canToggleSpectator)
	b.RegisterHandler("_action_leave_game", b.actionLeaveGame)
	b.RegisterHidden("_always_hidden", func(*Player) bool { return true })

	b.RegisterHandler("_action_show_actions_menu", b.actionShowActionsMenu)
	b.RegisterHandler("_action_save_table", b.actionSaveTable)
	b.RegisterEnabled("_can_save_table", b.canSaveTable)
	b.RegisterHandler("_action_whose_turn", b.actionWhoseTurn)
	b.RegisterHandler("_action_check_scores", b.actionCheckScores)
	b.RegisterHandler("_action_check_scores_detailed", b.actionCheckScoresDetailed)
	b.RegisterHandler("_action_predict_outcomes", b.actionPredictOutcomes)

	b.RegisterHandler("_action_estimate_duration", b.actionEstimateDuration)
	b.RegisterEnabled("_can_estimate", b.canEstimate)
}
