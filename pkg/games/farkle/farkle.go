// Package farkle implements Farkle: six dice, keep scoring dice
// between rolls, bank before you throw a scoreless roll and lose the
// turn.
package farkle

import (
	"sort"
	"strconv"
	"strings"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/i18n"
)

const (
	Type     = "farkle"
	diceSize = 6
)

func init() {
	game.Register(game.Definition{
		Type:        Type,
		NameKey:     "game-farkle",
		Category:    "dice",
		MinPlayers:  2,
		MaxPlayers:  6,
		HumanFactor: 2,
	}, func() game.Variant { return &Game{} })
}

// Game is one table of Farkle. Dice indexes are stable for a whole
// turn: Locked dice are set aside and scored, Kept dice are the
// current roll's selection.
type Game struct {
	game.Base

	Totals    map[string]int  `json:"totals"`
	Dice      [diceSize]int   `json:"dice"`
	Kept      [diceSize]bool  `json:"kept"`
	Locked    [diceSize]bool  `json:"locked"`
	TurnScore int             `json:"turn_score"`
	HasRolled bool            `json:"has_rolled"`
}

func (g *Game) Init() {
	g.DeclareOptions(
		game.IntOption("target", "farkle-opt-target", 10000, 500, 100000),
		game.IntOption("opening_score", "farkle-opt-opening", 500, 0, 5000),
		game.TeamModeOption("teams", "farkle-opt-teams"),
	)

	g.RegisterHandler("roll", g.handleRoll)
	g.RegisterHandler("bank", g.handleBank)
	g.RegisterEnabled("can_act", g.canAct)
	for i := 0; i < diceSize; i++ {
		i := i
		id := "toggle_die_" + strconv.Itoa(i)
		g.RegisterHandler(id, func(p *game.Player, ctx *game.ActionContext) {
			g.handleToggleDie(p, i)
		})
		g.RegisterEnabled("can_"+id, func(p *game.Player) string {
			return g.canToggleDie(p, i)
		})
		g.RegisterLabel("label_"+id, func(p *game.Player, locale string) string {
			return g.dieLabel(locale, i)
		})
		g.RegisterHidden("hide_"+id, func(p *game.Player) bool {
			return !g.HasRolled || !g.IsCurrent(p)
		})
	}

	g.Bind(game.Keybind{Name: "roll", Key: "r", Actions: []string{"roll"}, When: game.KeyActive})
	g.Bind(game.Keybind{Name: "bank", Key: "b", Actions: []string{"bank"}, When: game.KeyActive})
	for i := 0; i < diceSize; i++ {
		g.Bind(game.Keybind{
			Name:    "keep die " + strconv.Itoa(i+1),
			Key:     strconv.Itoa(i + 1),
			Actions: []string{"toggle_die_" + strconv.Itoa(i)},
			When:    game.KeyActive,
		})
	}
}

func (g *Game) TurnActionSet(p *game.Player) *game.ActionSet {
	set := game.NewActionSet("turn",
		&game.Action{ID: "roll", LabelKey: "farkle-action-roll", Handler: "roll", Enabled: "can_act"},
		&game.Action{ID: "bank", LabelKey: "farkle-action-bank", Handler: "bank", Enabled: "can_act"},
	)
	for i := 0; i < diceSize; i++ {
		id := "toggle_die_" + strconv.Itoa(i)
		set.Add(&game.Action{
			ID:      id,
			Handler: id,
			Enabled: "can_" + id,
			Hidden:  "hide_" + id,
			LabelFn: "label_" + id,
		})
	}
	return set
}

func (g *Game) OnStart() {
	g.Totals = make(map[string]int)
	var ids []string
	for _, p := range g.ActivePlayers() {
		g.Totals[p.ID] = 0
		ids = append(ids, p.ID)
	}
	if g.Teams.Enabled() {
		ids = g.Teams.InterleavedOrder(ids)
	}
	g.SetTurnPlayers(ids)
	g.resetDice()
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

func (g *Game) canToggleDie(p *game.Player, i int) string {
	if reason := g.canAct(p); reason != "" {
		return reason
	}
	if !g.HasRolled {
		return "farkle-roll-first"
	}
	if g.Locked[i] {
		return "dice-locked"
	}
	return ""
}

func (g *Game) dieLabel(locale string, i int) string {
	key := "farkle-die"
	if g.Kept[i] {
		key = "farkle-die-kept"
	}
	return i18n.T(locale, key, i18n.Args{
		"index": strconv.Itoa(i + 1),
		"value": strconv.Itoa(g.Dice[i]),
	})
}

// handleToggleDie flips a die's kept state. With the by-face keeping
// preference, every free die of the same face flips together.
func (g *Game) handleToggleDie(p *game.Player, i int) {
	indexes := []int{i}
	if seat := p.Seat(); seat != nil && seat.Preferences().KeepingStyle == "face" {
		indexes = indexes[:0]
		for j := 0; j < diceSize; j++ {
			if !g.Locked[j] && g.Dice[j] == g.Dice[i] && g.Kept[j] == g.Kept[i] {
				indexes = append(indexes, j)
			}
		}
	}
	keeping := !g.Kept[i]
	for _, j := range indexes {
		g.Kept[j] = keeping
	}
	key := "farkle-unkeeping"
	if keeping {
		key = "farkle-keeping"
	}
	g.BroadcastPersonalL(p, key+"-you", key, i18n.Args{"value": strconv.Itoa(g.Dice[i])})
	if p.IsBot {
		g.Jolt(p)
	}
}

func (g *Game) handleRoll(p *game.Player, ctx *game.ActionContext) {
	if g.HasRolled {
		score, valid := g.keptScore()
		if !valid || score == 0 {
			g.SpeakL(p, "farkle-must-keep", nil)
			return
		}
		g.TurnScore += score
		g.lockKept()
	}
	g.rollFree()
	g.ScheduleSound("dice_roll", 0, 1.0, 0, 1.0)
	g.BroadcastPersonalL(p, "farkle-rolled-you", "farkle-rolled", i18n.Args{"dice": g.freeDiceText()})
	g.HasRolled = true

	if !g.freeCanScore() {
		g.ScheduleSound("dice_bust", 4, 1.0, 0, 1.0)
		g.BroadcastPersonalL(p, "farkle-bust-you", "farkle-bust", i18n.Args{
			"lost": strconv.Itoa(g.TurnScore),
		})
		g.nextTurn()
		return
	}
	if p.IsBot {
		g.JoltRange(p, 10, 30)
	}
}

func (g *Game) handleBank(p *game.Player, ctx *game.ActionContext) {
	score, valid := g.keptScore()
	total := g.TurnScore + score
	// A player not yet on the board needs a big enough opening turn.
	short := g.winningScore(p.ID) == 0 && total < g.OptInt("opening_score")
	if !valid || total == 0 || short {
		// A bot with no legal bank forfeits the turn instead of
		// retrying the same refusal every cadence cycle.
		if p.IsBot {
			g.nextTurn()
			return
		}
		switch {
		case !valid:
			g.SpeakL(p, "farkle-must-keep", nil)
		case total == 0:
			g.SpeakL(p, "farkle-nothing-to-bank", nil)
		default:
			g.SpeakL(p, "farkle-opening-short", i18n.Args{
				"needed": strconv.Itoa(g.OptInt("opening_score")),
			})
		}
		return
	}
	g.Totals[p.ID] += total
	if t := g.Teams.AddScore(p.ID, total); t != nil {
		g.BroadcastL("farkle-team-total", nil, i18n.Args{
			"number": t.Number, "total": strconv.Itoa(t.Score),
		})
	}
	g.BroadcastPersonalL(p, "farkle-banked-you", "farkle-banked", i18n.Args{
		"round": strconv.Itoa(total),
		"total": strconv.Itoa(g.Totals[p.ID]),
	})
	if g.winningScore(p.ID) >= g.OptInt("target") {
		g.BroadcastL("farkle-winner", nil, i18n.Args{"player": p.Name})
		g.FinishGame(true)
		return
	}
	g.nextTurn()
}

func (g *Game) winningScore(playerID string) int {
	if t := g.Teams.TeamOf(playerID); t != nil {
		return t.Score
	}
	return g.Totals[playerID]
}

// Dice mechanics ---------------------------------------------------------

func (g *Game) resetDice() {
	g.Dice = [diceSize]int{}
	g.Kept = [diceSize]bool{}
	g.Locked = [diceSize]bool{}
	g.TurnScore = 0
	g.HasRolled = false
}

func (g *Game) nextTurn() {
	g.resetDice()
	g.AdvanceTurn(true)
}

func (g *Game) rollFree() {
	for i := 0; i < diceSize; i++ {
		if !g.Locked[i] && !g.Kept[i] {
			g.Dice[i] = g.RollDie(6)
		}
	}
}

// lockKept sets kept dice aside; all six locked is hot dice and frees
// the whole set again.
func (g *Game) lockKept() {
	all := true
	for i := 0; i < diceSize; i++ {
		if g.Kept[i] {
			g.Locked[i] = true
			g.Kept[i] = false
		}
		if !g.Locked[i] {
			all = false
		}
	}
	if all {
		g.Locked = [diceSize]bool{}
		g.BroadcastL("farkle-hot-dice", nil, nil)
	}
}

func (g *Game) freeDiceText() string {
	var vals []string
	for i := 0; i < diceSize; i++ {
		if !g.Locked[i] && !g.Kept[i] {
			vals = append(vals, strconv.Itoa(g.Dice[i]))
		}
	}
	return strings.Join(vals, ", ")
}

// keptScore scores the current selection. valid is false when a kept
// die contributes nothing (every kept die must score).
func (g *Game) keptScore() (int, bool) {
	var sel []int
	for i := 0; i < diceSize; i++ {
		if g.Kept[i] {
			sel = append(sel, g.Dice[i])
		}
	}
	return scoreSelection(sel)
}

// scoreSelection scores a dice multiset. A full straight or three
// pairs scores as a whole selection; otherwise three of a kind is
// 1000 for ones and face×100, leftover ones are 100, fives 50. A
// selection with any dead die is invalid.
func scoreSelection(sel []int) (int, bool) {
	if len(sel) == 0 {
		return 0, true
	}
	var counts [7]int
	for _, v := range sel {
		counts[v]++
	}
	if len(sel) == diceSize && (isStraight(counts) || isThreePairs(counts)) {
		return 1500, true
	}
	score := 0
	for face := 1; face <= 6; face++ {
		n := counts[face]
		for n >= 3 {
			if face == 1 {
				score += 1000
			} else {
				score += face * 100
			}
			n -= 3
		}
		switch face {
		case 1:
			score += n * 100
		case 5:
			score += n * 50
		default:
			if n > 0 {
				return 0, false
			}
		}
	}
	return score, true
}

// isStraight reports one die of every face.
func isStraight(counts [7]int) bool {
	for face := 1; face <= 6; face++ {
		if counts[face] != 1 {
			return false
		}
	}
	return true
}

// isThreePairs reports exactly three distinct pairs.
func isThreePairs(counts [7]int) bool {
	pairs := 0
	for face := 1; face <= 6; face++ {
		switch counts[face] {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 3
}

// freeCanScore reports whether the fresh roll contains any scoring
// die or whole-roll combo; if not, the turn is a farkle.
func (g *Game) freeCanScore() bool {
	var counts [7]int
	free := 0
	for i := 0; i < diceSize; i++ {
		if !g.Locked[i] && !g.Kept[i] {
			counts[g.Dice[i]]++
			free++
		}
	}
	if counts[1] > 0 || counts[5] > 0 {
		return true
	}
	for face := 2; face <= 6; face++ {
		if counts[face] >= 3 {
			return true
		}
	}
	// A straight always holds ones and fives, so only three pairs
	// needs its own check here.
	return free == diceSize && isThreePairs(counts)
}

// Bot --------------------------------------------------------------------

// BotThink keeps every scoring die it can, then banks a decent turn or
// pushes on with enough free dice.
func (g *Game) BotThink(p *game.Player) string {
	if !g.HasRolled {
		return "roll"
	}
	if i := g.nextScoringDie(); i >= 0 {
		return "toggle_die_" + strconv.Itoa(i)
	}
	score, _ := g.keptScore()
	free := 0
	for i := 0; i < diceSize; i++ {
		if !g.Locked[i] && !g.Kept[i] {
			free++
		}
	}
	pending := g.TurnScore + score
	need := 0
	if g.winningScore(p.ID) == 0 {
		need = g.OptInt("opening_score")
	}
	canBank := pending > 0 && pending >= need
	if canBank && (pending >= 300 || free <= 2 || g.winningScore(p.ID)+pending >= g.OptInt("target")) {
		return "bank"
	}
	if score > 0 {
		return "roll"
	}
	return "bank"
}

// nextScoringDie picks the next free die the bot should set aside,
// building multi-die combos (triples, straights, three pairs) one
// toggle at a time. It never leaves the selection on a dead die.
func (g *Game) nextScoringDie() int {
	var counts, kept [7]int
	unlocked := 0
	for i := 0; i < diceSize; i++ {
		if g.Locked[i] {
			continue
		}
		counts[g.Dice[i]]++
		unlocked++
		if g.Kept[i] {
			kept[g.Dice[i]]++
		}
	}
	if unlocked == diceSize && (isStraight(counts) || isThreePairs(counts)) {
		for i := 0; i < diceSize; i++ {
			if !g.Locked[i] && !g.Kept[i] {
				return i
			}
		}
		return -1
	}
	for i := 0; i < diceSize; i++ {
		if g.Locked[i] || g.Kept[i] {
			continue
		}
		face := g.Dice[i]
		want := counts[face]
		if face != 1 && face != 5 {
			// Partial sets of other faces are dead dice.
			want = counts[face] / 3 * 3
		}
		if kept[face] < want {
			return i
		}
	}
	return -1
}

// Reporting --------------------------------------------------------------

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

func (g *Game) Scores(locale string) []string {
	return g.scoreLines(locale)
}

func (g *Game) DetailedScores(locale string) []string {
	lines := g.scoreLines(locale)
	if cur := g.CurrentPlayer(); cur != nil && g.Status == game.StatusPlaying {
		kept, _ := g.keptScore()
		lines = append(lines, i18n.T(locale, "farkle-turn-line", i18n.Args{
			"player": cur.Name,
			"round":  strconv.Itoa(g.TurnScore + kept),
		}))
	}
	return lines
}

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
