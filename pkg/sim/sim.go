// Package sim runs one game headlessly with bot players only and
// reports how many ticks it took. The server shells out to itself in
// this mode to estimate game duration.
package sim

import (
	"errors"
	"fmt"

	"github.com/decred/slog"

	"github.com/parlorgames/parlor/pkg/game"
)

// maxTicks aborts runaway simulations (about 5.8 days of play time).
const maxTicks = 10_000_000

// host is a no-op game.Host; a simulation has no tables, saves or
// ratings behind it.
type host struct {
	result *game.Result
}

func (h *host) DestroyGame() {}
func (h *host) SaveGame(owner, saveName string) error { return errors.New("not available") }
func (h *host) PlayerLeft(playerID string) {}
func (h *host) WinProbability(a, b string) (float64, bool) { return 0, false }
func (h *host) SimulateArgs(string, string, int) []string { return nil }

func (h *host) GameFinished(res *game.Result, rankings [][]string) {
	h.result = res
}

// Run plays one bot-only game of gameType to completion and returns
// the tick count. optionsJSON may be empty for defaults.
func Run(gameType, optionsJSON string, bots int, seed int64, log slog.Logger) (int64, error) {
	def, ok := game.DefinitionFor(gameType)
	if !ok {
		return 0, fmt.Errorf("unknown game type %q", gameType)
	}
	if bots < def.MinPlayers {
		bots = def.MinPlayers
	}
	if bots > def.MaxPlayers {
		bots = def.MaxPlayers
	}

	h := &host{}
	v, err := game.New(gameType, log, h, seed)
	if err != nil {
		return 0, err
	}
	b := v.State()

	// The lobby host is a bot too; it drives start_game below.
	lead := b.InitializeLobby(game.NewID(), "Bot 1", game.NewBotSeat("Bot 1"))
	lead.IsBot = true
	if optionsJSON != "" {
		if err := b.ApplyOptionsJSON(optionsJSON); err != nil {
			return 0, fmt.Errorf("apply options: %w", err)
		}
	}
	for i := 2; i <= bots; i++ {
		b.AddBot(fmt.Sprintf("Bot %d", i))
	}

	start := lead.FindAction("start_game")
	if start == nil {
		return 0, errors.New("no start_game action")
	}
	b.ExecuteAction(lead, start, &game.ActionContext{})
	if b.Status != game.StatusPlaying {
		return 0, errors.New("game did not start")
	}

	var ticks int64
	for h.result == nil {
		if ticks >= maxTicks {
			return 0, fmt.Errorf("no result after %d ticks", maxTicks)
		}
		b.OnTick()
		ticks++
	}
	return h.result.DurationTicks, nil
}
