package game

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/parlor/pkg/protocol"
)

// trialGame is a minimal variant exercising the framework: one turn
// action whose handler counts executions per player.
type trialGame struct {
	Base
	Acted map[string]int `json:"acted"`
}

func (g *trialGame) Init() {
	g.DeclareOptions(
		IntOption("target", "trial-opt-target", 50, 10, 100),
		BoolOption("wild", "trial-opt-wild", false),
	)
	g.RegisterHandler("act", func(p *Player, ctx *ActionContext) {
		if g.Acted == nil {
			g.Acted = map[string]int{}
		}
		g.Acted[p.ID]++
	})
	g.RegisterHandler("guess", func(p *Player, ctx *ActionContext) {
		if g.Acted == nil {
			g.Acted = map[string]int{}
		}
		if ctx.HasValue && ctx.Value != "" {
			g.Acted[p.ID] += len(ctx.Value)
		}
	})
	g.RegisterEnabled("can_act", func(p *Player) string {
		if !g.IsCurrent(p) {
			return "not-your-turn"
		}
		return ""
	})
	g.Bind(Keybind{Name: "act", Key: "a", Actions: []string{"act"}, When: KeyActive})
}

func (g *trialGame) OnStart() {}
func (g *trialGame) BotThink(p *Player) string { return "act" }

func (g *trialGame) TurnActionSet(p *Player) *ActionSet {
	return NewActionSet("turn",
		&Action{ID: "act", LabelKey: "trial-act", Handler: "act", Enabled: "can_act"},
		&Action{ID: "guess", LabelKey: "trial-guess", Handler: "guess", Enabled: "can_act",
			Input: &InputRequest{Kind: InputEditbox, PromptKey: "trial-guess-prompt"}},
	)
}

func init() {
	Register(Definition{
		Type: "trial", NameKey: "game-trial", Category: "dice",
		MinPlayers: 2, MaxPlayers: 4, HumanFactor: 2,
	}, func() Variant { return &trialGame{} })
}

// recordSeat captures everything enqueued for a pretend human.
type recordSeat struct {
	name  string
	prefs Preferences
	pkts  []protocol.Packet
}

func newRecordSeat(name string) *recordSeat {
	return &recordSeat{name: name, prefs: DefaultPreferences()}
}

func (s *recordSeat) SeatName() string { return s.name }
func (s *recordSeat) Locale() string { return "en" }
func (s *recordSeat) IsBotSeat() bool { return false }
func (s *recordSeat) Preferences() Preferences { return s.prefs }
func (s *recordSeat) Enqueue(pkt protocol.Packet) { s.pkts = append(s.pkts, pkt) }

func (s *recordSeat) sounds() []string {
	var out []string
	for _, pkt := range s.pkts {
		if ps, ok := pkt.(protocol.PlaySound); ok {
			out = append(out, ps.Name)
		}
	}
	return out
}

// recordHost captures the finished result.
type recordHost struct {
	destroyed bool
	result    *Result
	rankings  [][]string
}

func (h *recordHost) DestroyGame() { h.destroyed = true }
func (h *recordHost) SaveGame(owner, name string) error { return errors.New("not supported") }
func (h *recordHost) PlayerLeft(string) {}
func (h *recordHost) WinProbability(a, b string) (float64, bool) { return 0, false }
func (h *recordHost) SimulateArgs(string, string, int) []string { return nil }

func (h *recordHost) GameFinished(res *Result, rankings [][]string) {
	h.result = res
	h.rankings = rankings
}

func newTrialGame(t *testing.T, seed int64) (*trialGame, *recordHost) {
	t.Helper()
	h := &recordHost{}
	v, err := New("trial", slog.Disabled, h, seed)
	require.NoError(t, err)
	return v.(*trialGame), h
}

func startTrial(t *testing.T, g *trialGame, seats ...*recordSeat) []*Player {
	t.Helper()
	players := make([]*Player, 0, len(seats))
	players = append(players, g.InitializeLobby("host-id", seats[0].name, seats[0]))
	for _, s := range seats[1:] {
		players = append(players, g.AddHuman("id-"+s.name, s.name, s, false))
	}
	g.Status = StatusPlaying
	g.GameActive = true
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	g.SetTurnPlayers(ids)
	return players
}

func TestTurnRotationSkipsAndReverse(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	a, b, c := newRecordSeat("alice"), newRecordSeat("bob"), newRecordSeat("carol")
	players := startTrial(t, g, a, b, c)

	require.Equal(t, players[0].ID, g.CurrentPlayer().ID)

	g.AdvanceTurn(false)
	assert.Equal(t, players[1].ID, g.CurrentPlayer().ID)

	// One queued skip jumps over carol back to alice.
	g.SkipNextPlayers(1)
	g.AdvanceTurn(false)
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID)

	// Reversing wraps from alice to carol.
	g.ReverseTurnDirection()
	g.AdvanceTurn(false)
	assert.Equal(t, players[2].ID, g.CurrentPlayer().ID)

	g.ResetTurnOrder(false)
	assert.Equal(t, players[0].ID, g.CurrentPlayer().ID)
	assert.Equal(t, 1, g.TurnDirection)
}

func TestSoundSchedulerFiresAtDelay(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	seat := newRecordSeat("alice")
	startTrial(t, g, seat, newRecordSeat("bob"))

	g.ScheduleSound("late", 2, 1.0, 0, 1.0)
	g.ScheduleSound("now", 0, 1.0, 0, 1.0)
	g.ScheduleSoundSequence([]SequenceSound{
		{Name: "seq1", DelayAfter: 1},
		{Name: "seq2", DelayAfter: 2},
	}, 0)

	g.OnTick() // fires "now" and nothing else
	require.Equal(t, []string{"now"}, seat.sounds())

	g.OnTick() // seq1 was due at tick 1
	assert.Equal(t, []string{"now", "seq1"}, seat.sounds())

	g.OnTick() // "late" at 2
	g.OnTick() // seq2 at 3
	assert.Equal(t, []string{"now", "seq1", "late", "seq2"}, seat.sounds())
	assert.Empty(t, g.Sounds)
}

func TestKeybindStateFilter(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	seat := newRecordSeat("alice")
	players := startTrial(t, g, seat, newRecordSeat("bob"))
	p := players[0]

	// The "a" bind is gated on an active game.
	g.Status = StatusWaiting
	g.HandleKeybind(p, "a", false, false, false, "", 0)
	assert.Zero(t, g.Acted[p.ID])

	g.Status = StatusPlaying
	g.HandleKeybind(p, "A", false, false, false, "", 0)
	assert.Equal(t, 1, g.Acted[p.ID])

	// Modifier combos are distinct keys.
	g.HandleKeybind(p, "a", false, true, false, "", 0)
	assert.Equal(t, 1, g.Acted[p.ID])
}

func TestKeybindDisabledSpeaksReason(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	a, b := newRecordSeat("alice"), newRecordSeat("bob")
	players := startTrial(t, g, a, b)

	// Not bob's turn: the handler must not run and bob hears why.
	g.HandleKeybind(players[1], "a", false, false, false, "", 0)
	assert.Zero(t, g.Acted[players[1].ID])

	var spoken []string
	for _, pkt := range b.pkts {
		if sp, ok := pkt.(protocol.Speak); ok {
			spoken = append(spoken, sp.Text)
		}
	}
	require.NotEmpty(t, spoken)
}

func TestVisibleActionsAreEnabled(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	players := startTrial(t, g, newRecordSeat("alice"), newRecordSeat("bob"))

	for _, p := range players {
		enabled := map[string]bool{}
		for _, r := range g.EnabledActions(p) {
			enabled[r.Action.ID] = true
		}
		for _, r := range g.VisibleActions(p) {
			if r.Action.NoActionsMenu {
				continue
			}
			assert.Truef(t, enabled[r.Action.ID],
				"%s visible for %s but missing from the actions menu", r.Action.ID, p.Name)
		}
	}
}

func TestEditboxInputRoundTrip(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	seat := newRecordSeat("alice")
	players := startTrial(t, g, seat, newRecordSeat("bob"))
	p := players[0]

	a := p.FindAction("guess")
	require.NotNil(t, a)

	// First execution has no value: the human gets an editbox instead.
	g.ExecuteAction(p, a, &ActionContext{Origin: OriginMenu})
	assert.Zero(t, g.Acted[p.ID])
	var prompted bool
	for _, pkt := range seat.pkts {
		if _, ok := pkt.(protocol.ShowEditbox); ok {
			prompted = true
		}
	}
	require.True(t, prompted)

	// The submission resumes the pending action with the value.
	g.HandleEditbox(p, EditboxActionInput, "abc")
	assert.Equal(t, 3, g.Acted[p.ID])

	// A stray submission with nothing pending is ignored.
	g.HandleEditbox(p, EditboxActionInput, "zzzz")
	assert.Equal(t, 3, g.Acted[p.ID])
}

func TestBotInputEmptyAnswerStopsAction(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	startTrial(t, g, newRecordSeat("alice"), newRecordSeat("bob"))
	bot := g.AddBot("Ada")
	g.SetTurnPlayers([]string{bot.ID})

	answer := ""
	g.RegisterBotInput("answer", func(p *Player) string { return answer })
	a := &Action{ID: "guess2", LabelKey: "trial-guess", Handler: "guess", Enabled: "can_act",
		Input: &InputRequest{Kind: InputEditbox, PromptKey: "trial-guess-prompt", BotInput: "answer"}}
	bot.ActionSets[0].Add(a)

	// No legal value: the handler must not run at all.
	g.ExecuteAction(bot, a, &ActionContext{Origin: OriginBot})
	assert.Zero(t, g.Acted[bot.ID])

	answer = "xyz"
	g.ExecuteAction(bot, a, &ActionContext{Origin: OriginBot})
	assert.Equal(t, 3, g.Acted[bot.ID])
}

func TestMenuUpdateKeepsFocus(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	seat := newRecordSeat("alice")
	players := startTrial(t, g, seat, newRecordSeat("bob"))
	p := players[0]

	g.RebuildMenuFor(p) // initial show
	g.HandleKeybind(p, "a", false, false, false, "act", 1)

	var updates []protocol.UpdateMenu
	for _, pkt := range seat.pkts {
		if um, ok := pkt.(protocol.UpdateMenu); ok && um.MenuID == MenuTurn {
			updates = append(updates, um)
		}
	}
	require.NotEmpty(t, updates)
	assert.Equal(t, "act", updates[len(updates)-1].SelectionID,
		"the rebuilt menu must carry the client's cursor position")
}

func TestLobbyOptions(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	host := newRecordSeat("alice")
	guest := newRecordSeat("bob")
	hp := g.InitializeLobby("host-id", host.name, host)
	gp := g.AddHuman("guest-id", guest.name, guest, false)

	set := hp.FindAction("set_target")
	require.NotNil(t, set)

	// Non-host changes are refused.
	g.ExecuteAction(gp, gp.FindAction("set_target"),
		&ActionContext{Origin: OriginInput, Value: "80", HasValue: true})
	assert.Equal(t, 50, g.OptInt("target"))

	g.ExecuteAction(hp, set, &ActionContext{Origin: OriginInput, Value: "80", HasValue: true})
	assert.Equal(t, 80, g.OptInt("target"))

	// Out-of-range values clamp to the declared bounds.
	g.ExecuteAction(hp, set, &ActionContext{Origin: OriginInput, Value: "9999", HasValue: true})
	assert.Equal(t, 100, g.OptInt("target"))

	tog := hp.FindAction("toggle_wild")
	require.NotNil(t, tog)
	g.ExecuteAction(hp, tog, &ActionContext{Origin: OriginMenu})
	assert.True(t, g.OptBool("wild"))

	// Options lock once the game starts.
	g.Status = StatusPlaying
	g.ExecuteAction(hp, set, &ActionContext{Origin: OriginInput, Value: "20", HasValue: true})
	assert.Equal(t, 100, g.OptInt("target"))
}

func TestSerializeRestoreRoundTrip(t *testing.T) {
	g, _ := newTrialGame(t, 42)
	startTrial(t, g, newRecordSeat("alice"), newRecordSeat("bob"))
	g.AddBot("Ada")
	g.Acted = map[string]int{"host-id": 3}
	g.ScheduleSound("pending", 10, 1.0, 0, 1.0)
	g.RandIntn(6)
	g.RandIntn(6)

	data, err := Serialize(g)
	require.NoError(t, err)

	v, err := Restore("trial", data, slog.Disabled, &recordHost{})
	require.NoError(t, err)
	r := v.(*trialGame)

	assert.Equal(t, spew.Sdump(g.Acted), spew.Sdump(r.Acted))
	assert.Equal(t, g.TurnPlayerIDs, r.TurnPlayerIDs)
	assert.Equal(t, g.Sounds, r.Sounds)
	assert.Equal(t, g.Options, r.Options)
	assert.Equal(t, g.RngUses, r.RngUses)

	// The deterministic draw stream continues identically.
	for i := 0; i < 10; i++ {
		assert.Equal(t, g.RandIntn(52), r.RandIntn(52))
	}
}

func TestBotCadence(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	startTrial(t, g, newRecordSeat("alice"), newRecordSeat("bob"))
	bot := g.AddBot("Ada")
	g.SetTurnPlayers([]string{bot.ID})
	g.Jolt(bot)
	require.Equal(t, DefaultJolt, bot.ThinkTicks)

	// The pause counts down one tick at a time.
	for i := 0; i < DefaultJolt; i++ {
		g.OnTick()
		assert.Zero(t, g.Acted[bot.ID])
	}

	g.OnTick() // think: BotThink stores the pending action
	assert.Equal(t, "act", bot.PendingAction)
	assert.Zero(t, g.Acted[bot.ID])

	g.OnTick() // execute
	assert.Equal(t, 1, g.Acted[bot.ID])
	assert.Empty(t, bot.PendingAction)
}

func TestBotNamePool(t *testing.T) {
	g, _ := newTrialGame(t, 1)
	g.InitializeLobby("host-id", "Ada", newRecordSeat("Ada"))

	// "Ada" is taken by the human, so the pool skips to "Basil".
	assert.Equal(t, "Basil", g.pickBotName())
}

func TestFinishGameReportsResult(t *testing.T) {
	g, h := newTrialGame(t, 1)
	seat := newRecordSeat("alice")
	startTrial(t, g, seat, newRecordSeat("bob"))
	g.TickCount = 777

	g.FinishGame(true)

	require.NotNil(t, h.result)
	assert.Equal(t, "trial", h.result.GameType)
	assert.Equal(t, int64(777), h.result.DurationTicks)
	assert.Len(t, h.result.Players, 2)
	assert.Equal(t, StatusFinished, g.Status)
	assert.False(t, g.GameActive)
	// Humans remain, so the table survives for the end screen.
	assert.False(t, h.destroyed)

	var sawGameOver bool
	for _, pkt := range seat.pkts {
		if sm, ok := pkt.(protocol.ShowMenu); ok && sm.MenuID == MenuGameOver {
			sawGameOver = true
			require.NotEmpty(t, sm.Items)
			assert.Equal(t, "leave", sm.Items[len(sm.Items)-1].ID)
		}
	}
	assert.True(t, sawGameOver)
}
