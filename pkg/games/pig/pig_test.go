package pig

import (
	"errors"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/protocol"
)

type stubHost struct {
	destroyed bool
	result    *game.Result
	rankings  [][]string
}

func (h *stubHost) DestroyGame() { h.destroyed = true }
func (h *stubHost) SaveGame(string, string) error { return errors.New("not supported") }
func (h *stubHost) PlayerLeft(string) {}
func (h *stubHost) WinProbability(a, b string) (float64, bool) { return 0, false }
func (h *stubHost) SimulateArgs(string, string, int) []string { return nil }

func (h *stubHost) GameFinished(res *game.Result, rankings [][]string) {
	h.result = res
	h.rankings = rankings
}

type stubSeat struct{ name string }

func (s *stubSeat) SeatName() string { return s.name }
func (s *stubSeat) Locale() string { return "en" }
func (s *stubSeat) IsBotSeat() bool { return false }
func (s *stubSeat) Preferences() game.Preferences { return game.DefaultPreferences() }
func (s *stubSeat) Enqueue(protocol.Packet) {}

// newStarted builds a two-human game and starts it.
func newStarted(t *testing.T, seed int64, optionsJSON string) (*Game, *stubHost, []*game.Player) {
	t.Helper()
	h := &stubHost{}
	v, err := game.New(Type, slog.Disabled, h, seed)
	require.NoError(t, err)
	g := v.(*Game)

	hp := g.InitializeLobby("alice-id", "alice", &stubSeat{name: "alice"})
	bp := g.AddHuman("bob-id", "bob", &stubSeat{name: "bob"}, false)
	if optionsJSON != "" {
		require.NoError(t, g.ApplyOptionsJSON(optionsJSON))
	}
	g.ExecuteAction(hp, hp.FindAction("start_game"), &game.ActionContext{})
	require.Equal(t, game.StatusPlaying, g.Status)
	return g, h, []*game.Player{hp, bp}
}

func exec(g *Game, p *game.Player, id string) {
	g.ExecuteAction(p, p.FindAction(id), &game.ActionContext{Origin: game.OriginMenu})
}

func TestBankAddsRoundAndAdvancesTurn(t *testing.T) {
	g, _, players := newStarted(t, 1, "")
	cur := g.CurrentPlayer()
	require.NotNil(t, cur)

	g.RoundScore = 17
	exec(g, cur, "bank")

	assert.Equal(t, 17, g.Totals[cur.ID])
	assert.Zero(t, g.RoundScore)
	assert.NotEqual(t, cur.ID, g.CurrentPlayer().ID)

	// Both original players are still in the rotation.
	assert.Contains(t, []string{players[0].ID, players[1].ID}, g.CurrentPlayer().ID)
}

func TestRollEitherBuildsRoundOrBusts(t *testing.T) {
	g, _, _ := newStarted(t, 7, "")

	// Roll until a bust shows up; every non-bust roll adds 2..6.
	busted := false
	for i := 0; i < 200 && !busted; i++ {
		cur := g.CurrentPlayer()
		before := g.RoundScore
		exec(g, cur, "roll")
		if g.RoundScore == 0 {
			busted = true
			// The bust hands the turn to the other player.
			assert.NotEqual(t, cur.ID, g.CurrentPlayer().ID)
			assert.Zero(t, g.Totals[cur.ID])
		} else {
			gained := g.RoundScore - before
			assert.GreaterOrEqual(t, gained, 2)
			assert.LessOrEqual(t, gained, 6)
			assert.Equal(t, cur.ID, g.CurrentPlayer().ID)
		}
	}
	assert.True(t, busted, "no bust in 200 rolls")
}

func TestOffTurnRollRefused(t *testing.T) {
	g, _, players := newStarted(t, 1, "")
	other := players[1]
	if g.CurrentPlayer().ID == other.ID {
		other = players[0]
	}

	g.RoundScore = 5
	exec(g, other, "roll")
	assert.Equal(t, 5, g.RoundScore, "off-turn roll must not change the round")
}

func TestTargetOptionEndsGame(t *testing.T) {
	g, h, _ := newStarted(t, 1, `{"ints":{"target":30}}`)
	cur := g.CurrentPlayer()

	g.Totals[cur.ID] = 20
	g.RoundScore = 12
	exec(g, cur, "bank")

	require.NotNil(t, h.result, "reaching the target must finish the game")
	assert.Equal(t, game.StatusFinished, g.Status)
	assert.Equal(t, cur.Name, h.result.CustomData["winner"])

	scores, ok := h.result.CustomData["final_scores"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 32, scores[cur.Name])

	require.NotEmpty(t, h.rankings)
	assert.Equal(t, []string{cur.ID}, h.rankings[0])
}

func TestRankingsGroupTies(t *testing.T) {
	g, _, players := newStarted(t, 1, "")
	g.Totals[players[0].ID] = 40
	g.Totals[players[1].ID] = 40

	groups := g.Rankings()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 2)
}

func TestBotOnlyGameFinishes(t *testing.T) {
	h := &stubHost{}
	v, err := game.New(Type, slog.Disabled, h, 99)
	require.NoError(t, err)
	g := v.(*Game)

	lead := g.InitializeLobby(game.NewID(), "Bot 1", game.NewBotSeat("Bot 1"))
	lead.IsBot = true
	g.AddBot("Ada")
	g.AddBot("Basil")
	require.NoError(t, g.ApplyOptionsJSON(`{"ints":{"target":50}}`))
	g.ExecuteAction(lead, lead.FindAction("start_game"), &game.ActionContext{})
	require.Equal(t, game.StatusPlaying, g.Status)

	for i := 0; i < 40_000 && h.result == nil; i++ {
		g.OnTick()
	}
	require.NotNil(t, h.result, "bot game did not finish in 40k ticks")
	assert.NotEmpty(t, h.result.CustomData["winner"])
	// With no humans left the table tears itself down.
	assert.True(t, h.destroyed)
}
