// Package pig implements the dice game Pig: roll to build a round
// score, bank to keep it, a 1 loses the round. First to the target
// total wins.
package pig

import (
	"sort"
	"strconv"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/i18n"
)

const Type = "pig"

func init() {
	game.Register(game.Definition{
		Type:        Type,
		NameKey:     "game-pig",
		Category:    "dice",
		MinPlayers:  2,
		MaxPlayers:  8,
		HumanFactor: 2,
	}, func() game.Variant { return &Game{} })
}

// Game is one table of Pig.
type Game struct {
	game.Base

	Totals     map[string]int `json:"totals"`
	RoundScore int            `json:"round_score"`
}

// Init registers behavior; runs on creation and after a restore.
func (g *Game) Init() {
	g.DeclareOptions(
		game.IntOption("target", "pig-opt-target", 100, 10, 1000),
		game.TeamModeOption("teams", "pig-opt-teams"),
	)

	g.RegisterHandler("roll", g.handleRoll)
	g.RegisterHandler("bank", g.handleBank)
	g.RegisterEnabled("can_act", g.canAct)

	g.Bind(game.Keybind{Name: "roll", Key: "r", Actions: []string{"roll"}, When: game.KeyActive})
	g.Bind(game.Keybind{Name: "bank", Key: "b", Actions: []string{"bank"}, When: game.KeyActive})
}

// TurnActionSet gives every player the two Pig moves.
func (g *Game) TurnActionSet(p *game.Player) *game.ActionSet {
	return game.NewActionSet("turn",
		&game.Action{ID: "roll", LabelKey: "pig-action-roll", Handler: "roll", Enabled: "can_act"},
		&game.Action{ID: "bank", LabelKey: "pig-action-bank", Handler: "bank", Enabled: "can_act"},
	)
}

// OnStart seats the active players into the turn order.
func (g *Game) OnStart() {
	g.Totals = make(map[string]int)
	g.RoundScore = 0
	var ids []string
	for _, p := range g.ActivePlayers() {
		g.Totals[p.ID] = 0
		ids = append(ids, p.ID)
	}
	if g.Teams.Enabled() {
		ids = g.Teams.InterleavedOrder(ids)
	}
	g.SetTurnPlayers(ids)
	g.AnnounceTurn()
	g.RebuildMenus()
}

func (g *Game) canAct(p *game.Player) string {
	if g.Status != game.StatusPlaying {
		return "not-playing"
	}
	if !g.IsCurrent(p) {
		return "not-your-turn"
	}
	return ""
}

func (g *Game) target() int {
	return g.OptInt("target")
}

func (g *Game) handleRoll(p *game.Player, ctx *game.ActionContext) {
	d := g.RollDie(6)
	if d == 1 {
		g.RoundScore = 0
		g.ScheduleSound("dice_bust", 0, 1.0, 0, 1.0)
		g.BroadcastPersonalL(p, "pig-bust-you", "pig-bust", nil)
		g.AdvanceTurn(true)
		return
	}
	g.RoundScore += d
	g.ScheduleSound("dice_roll", 0, 1.0, 0, 1.0)
	g.BroadcastPersonalL(p, "pig-rolled-you", "pig-rolled", i18n.Args{
		"die":   strconv.Itoa(d),
		"round": strconv.Itoa(g.RoundScore),
	})
	if p.IsBot {
		g.JoltRange(p, 10, 30)
	}
}

func (g *Game) handleBank(p *game.Player, ctx *game.ActionContext) {
	g.Totals[p.ID] += g.RoundScore
	if t := g.Teams.AddScore(p.ID, g.RoundScore); t != nil {
		g.BroadcastL("pig-team-total", nil, i18n.Args{
			"number": t.Number, "total": strconv.Itoa(t.Score),
		})
	}
	g.BroadcastPersonalL(p, "pig-banked-you", "pig-banked", i18n.Args{
		"round": strconv.Itoa(g.RoundScore),
		"total": strconv.Itoa(g.Totals[p.ID]),
	})
	g.RoundScore = 0
	if g.winningScore(p.ID) >= g.target() {
		g.BroadcastL("pig-winner", nil, i18n.Args{"player": p.Name})
		g.FinishGame(true)
		return
	}
	g.AdvanceTurn(true)
}

// winningScore is the score measured against the target: the team
// total in team mode, the personal total otherwise.
func (g *Game) winningScore(playerID string) int {
	if t := g.Teams.TeamOf(playerID); t != nil {
		return t.Score
	}
	return g.Totals[playerID]
}

// BotThink banks on a comfortable round or within reach of the target,
// otherwise keeps rolling.
func (g *Game) BotThink(p *game.Player) string {
	if g.RoundScore > 0 && (g.RoundScore >= 20 || g.winningScore(p.ID)+g.RoundScore >= g.target()) {
		return "bank"
	}
	return "roll"
}

// Rankings orders players by total, ties grouped.
func (g *Game) Rankings() [][]string {
	if groups := g.Teams.RankedGroups(); groups != nil {
		return groups
	}
	players := g.ActivePlayers()
	sort.SliceStable(players, func(i, j int) bool {
		return g.Totals[players[i].ID] > g.Totals[players[j].ID]
	})
	var groups [][]string
	for i := 0; i < len(players); {
		group := []string{players[i].ID}
		j := i + 1
		for j < len(players) && g.Totals[players[j].ID] == g.Totals[players[i].ID] {
			group = append(group, players[j].ID)
			j++
		}
		groups = append(groups, group)
		i = j
	}
	return groups
}

// BuildResult records final scores and the winner.
func (g *Game) BuildResult(res *game.Result) {
	scores := map[string]any{}
	var winner string
	best := -1
	for _, p := range g.ActivePlayers() {
		scores[p.Name] = g.Totals[p.ID]
		if g.Totals[p.ID] > best {
			best = g.Totals[p.ID]
			winner = p.Name
		}
	}
	res.CustomData["final_scores"] = scores
	res.CustomData["winner"] = winner
}

// Scores implements the check-scores status box.
func (g *Game) Scores(locale string) []string {
	return g.scoreLines(locale)
}

// DetailedScores adds the pending round score of the current player.
func (g *Game) DetailedScores(locale string) []string {
	lines := g.scoreLines(locale)
	if cur := g.CurrentPlayer(); cur != nil && g.Status == game.StatusPlaying {
		lines = append(lines, i18n.T(locale, "pig-round-line", i18n.Args{
			"player": cur.Name,
			"round":  strconv.Itoa(g.RoundScore),
		}))
	}
	return lines
}

// EndScreen lists final totals, best first.
func (g *Game) EndScreen(locale string) []string {
	return g.scoreLines(locale)
}

func (g *Game) scoreLines(locale string) []string {
	players := g.ActivePlayers()
	sort.SliceStable(players, func(i, j int) bool {
		return g.Totals[players[i].ID] > g.Totals[players[j].ID]
	})
	var lines []string
	for _, p := range players {
		lines = append(lines, i18n.T(locale, "score-line", i18n.Args{
			"player": p.Name,
			"score":  strconv.Itoa(g.Totals[p.ID]),
		}))
	}
	return lines
}
