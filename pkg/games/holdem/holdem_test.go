package holdem

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
	result   *game.Result
	rankings [][]string
}

func (h *stubHost) DestroyGame() {}
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

// newTable starts a hand with the given number of human players.
func newTable(t *testing.T, seed int64, humans int) (*Game, *stubHost) {
	t.Helper()
	h := &stubHost{}
	v, err := game.New(Type, slog.Disabled, h, seed)
	require.NoError(t, err)
	g := v.(*Game)

	names := []string{"alice", "bob", "carol", "dave"}
	hp := g.InitializeLobby("id-alice", "alice", &stubSeat{name: "alice"})
	for i := 1; i < humans; i++ {
		g.AddHuman("id-"+names[i], names[i], &stubSeat{name: names[i]}, false)
	}
	g.ExecuteAction(hp, hp.FindAction("start_game"), &game.ActionContext{})
	require.Equal(t, game.StatusPlaying, g.Status)
	require.Equal(t, 1, g.HandNumber)
	return g, h
}

func raise(g *Game, p *game.Player, amount string) {
	g.ExecuteAction(p, p.FindAction("raise"),
		&game.ActionContext{Origin: game.OriginInput, Value: amount, HasValue: true})
}

func TestBlindsAndFirstActor(t *testing.T) {
	g, _ := newTable(t, 1, 3)

	assert.Equal(t, 10, g.CurrentBet)
	assert.Equal(t, 10, g.LastRaiseSize)
	assert.Equal(t, 15, g.Pot)

	// Three-handed, the player behind the big blind opens.
	cur := g.CurrentPlayer()
	require.NotNil(t, cur)
	assert.Zero(t, g.RoundBets[cur.ID])
	assert.Equal(t, 1000, g.Chips[cur.ID])
}

func TestRaiseBelowMinimumRefused(t *testing.T) {
	g, _ := newTable(t, 1, 3)
	cur := g.CurrentPlayer()

	raise(g, cur, "5") // below the 10 big-blind minimum
	assert.Equal(t, 10, g.CurrentBet)
	assert.Equal(t, 10, g.LastRaiseSize)
	assert.Equal(t, 1000, g.Chips[cur.ID], "a refused raise posts nothing")
	assert.Equal(t, cur.ID, g.CurrentPlayer().ID)
}

func TestFullRaiseReopensBetting(t *testing.T) {
	g, _ := newTable(t, 1, 3)
	cur := g.CurrentPlayer()

	raise(g, cur, "20")
	assert.Equal(t, 30, g.CurrentBet)
	assert.Equal(t, 20, g.LastRaiseSize)
	assert.Equal(t, []string{cur.ID}, g.ActedSinceRaise)
	// Call 10 plus raise 20.
	assert.Equal(t, 970, g.Chips[cur.ID])
	assert.Equal(t, 45, g.Pot)
}

func TestShortAllInDoesNotReopenBetting(t *testing.T) {
	g, _ := newTable(t, 1, 3)
	cur := g.CurrentPlayer()

	// A 15-chip stack can only push 5 over the bet: short of the
	// 10-chip minimum raise.
	g.Chips[cur.ID] = 15
	g.ExecuteAction(cur, cur.FindAction("all_in"), &game.ActionContext{Origin: game.OriginMenu})

	assert.Equal(t, 10, g.CurrentBet, "a short push leaves the bet alone")
	assert.Equal(t, 10, g.LastRaiseSize)
	assert.Equal(t, []string{cur.ID}, g.ActedSinceRaise)
	assert.True(t, g.AllIn[cur.ID])
	assert.Equal(t, 15, g.RoundBets[cur.ID])
}

func TestFullSizeAllInReopensBetting(t *testing.T) {
	g, _ := newTable(t, 1, 3)
	cur := g.CurrentPlayer()

	g.Chips[cur.ID] = 40
	g.ExecuteAction(cur, cur.FindAction("all_in"), &game.ActionContext{Origin: game.OriginMenu})

	assert.Equal(t, 40, g.CurrentBet)
	assert.Equal(t, 30, g.LastRaiseSize)
	assert.Equal(t, []string{cur.ID}, g.ActedSinceRaise)
}

func TestFoldToOneAwardsPotAndDealsAgain(t *testing.T) {
	g, _ := newTable(t, 1, 2)

	// Heads-up the small blind acts first preflop.
	cur := g.CurrentPlayer()
	g.ExecuteAction(cur, cur.FindAction("fold"), &game.ActionContext{Origin: game.OriginMenu})

	assert.Equal(t, 2, g.HandNumber, "an uncontested pot starts the next hand")
	total := 0
	for _, c := range g.Chips {
		total += c
	}
	assert.Equal(t, 2000, total+g.Pot, "chips are conserved across hands")
}

func TestBuildPotsSidePots(t *testing.T) {
	g, _ := newTable(t, 1, 3)

	var ids []string
	for _, p := range g.ActivePlayers() {
		ids = append(ids, p.ID)
	}
	// Rig a finished betting history: a 50-chip all-in, two callers at
	// 200, one of whom later folded.
	for k := range g.HandBets {
		delete(g.HandBets, k)
	}
	for k := range g.Folded {
		delete(g.Folded, k)
	}
	g.HandBets[ids[0]] = 50
	g.HandBets[ids[1]] = 200
	g.HandBets[ids[2]] = 200
	g.Folded[ids[2]] = true

	pots := g.buildPots()
	require.Len(t, pots, 2)
	// Main pot: 50 from each of the three.
	assert.Equal(t, 150, pots[0].amount)
	assert.Len(t, pots[0].eligible, 2)
	// Side pot: the remaining 150 each from the two big stacks; only
	// the live one is eligible.
	assert.Equal(t, 300, pots[1].amount)
	assert.Equal(t, []string{ids[1]}, pots[1].eligible)
}

func TestCardSpeech(t *testing.T) {
	g, _ := newTable(t, 1, 2)

	text := g.cardsText("en", []string{"As", "Th", "2c"})
	assert.Equal(t, "ace of spades, 10 of hearts, 2 of clubs", text)
}

func TestBotOnlyTournamentFinishes(t *testing.T) {
	h := &stubHost{}
	v, err := game.New(Type, slog.Disabled, h, 11)
	require.NoError(t, err)
	g := v.(*Game)

	lead := g.InitializeLobby(game.NewID(), "Bot 1", game.NewBotSeat("Bot 1"))
	lead.IsBot = true
	g.AddBot("Ada")
	g.AddBot("Basil")
	require.NoError(t, g.ApplyOptionsJSON(`{"ints":{"starting_chips":200}}`))
	g.ExecuteAction(lead, lead.FindAction("start_game"), &game.ActionContext{})
	require.Equal(t, game.StatusPlaying, g.Status)

	for i := 0; i < 500_000 && h.result == nil; i++ {
		g.OnTick()
	}
	require.NotNil(t, h.result, "bot tournament did not finish in 500k ticks")
	assert.NotEmpty(t, h.result.CustomData["winner"])
	require.NotEmpty(t, h.rankings)
	// The winner holds every chip.
	winnerID := h.rankings[0][0]
	assert.Equal(t, 600, g.Chips[winnerID])
}
