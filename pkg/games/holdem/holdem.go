// Package holdem implements no-limit Texas Hold'em on the framework:
// blinds, betting rounds with min-raise enforcement, short all-ins
// that do not reopen betting, side pots and showdown evaluation.
package holdem

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chehsunliu/poker"

	"github.com/parlorgames/parlor/pkg/game"
	"github.com/parlorgames/parlor/pkg/i18n"
)

const Type = "holdem"

// Betting phases.
const (
	phasePreflop = "preflop"
	phaseFlop    = "flop"
	phaseTurn    = "turn"
	phaseRiver   = "river"
)

func init() {
	game.Register(game.Definition{
		Type:        Type,
		NameKey:     "game-holdem",
		Category:    "cards",
		MinPlayers:  2,
		MaxPlayers:  9,
		HumanFactor: 2,
	}, func() game.Variant { return &Game{} })
}

// Game is one table of Hold'em. Cards are stored in two-character
// rank+suit notation ("As", "Td") so the state stays JSON-clean; the
// evaluator parses them on demand.
type Game struct {
	game.Base

	Chips map[string]int      `json:"chips"`
	Hands map[string][]string `json:"hands"`

	Deck      []string `json:"deck"`
	Community []string `json:"community"`

	Pot             int            `json:"pot"`
	RoundBets       map[string]int `json:"round_bets"`
	HandBets        map[string]int `json:"hand_bets"`
	CurrentBet      int            `json:"current_bet"`
	LastRaiseSize   int            `json:"last_raise_size"`
	ActedSinceRaise []string       `json:"acted_since_raise"`

	Folded map[string]bool `json:"folded"`
	AllIn  map[string]bool `json:"all_in"`

	DealerIndex int    `json:"dealer_index"`
	Phase       string `json:"phase"`
	HandNumber  int    `json:"hand_number"`
}

func (g *Game) Init() {
	g.DeclareOptions(
		game.IntOption("small_blind", "holdem-opt-small-blind", 5, 1, 1000),
		game.IntOption("big_blind", "holdem-opt-big-blind", 10, 2, 2000),
		game.IntOption("starting_chips", "holdem-opt-starting-chips", 1000, 100, 100000),
	)

	g.RegisterHandler("check_call", g.handleCheckCall)
	g.RegisterHandler("raise", g.handleRaise)
	g.RegisterHandler("fold", g.handleFold)
	g.RegisterHandler("all_in", g.handleAllIn)
	g.RegisterHandler("show_hand", g.handleShowHand)
	g.RegisterEnabled("can_act", g.canAct)
	g.RegisterLabel("label_check_call", g.checkCallLabel)
	g.RegisterBotInput("bot_raise_amount", g.botRaiseAmount)

	g.Bind(game.Keybind{Name: "check/call", Key: "c", Actions: []string{"check_call"}, When: game.KeyActive})
	g.Bind(game.Keybind{Name: "raise", Key: "r", Actions: []string{"raise"}, When: game.KeyActive})
	g.Bind(game.Keybind{Name: "fold", Key: "f", Actions: []string{"fold"}, When: game.KeyActive})
	g.Bind(game.Keybind{Name: "hand", Key: "h", Actions: []string{"show_hand"}, When: game.KeyActive})
}

func (g *Game) TurnActionSet(p *game.Player) *game.ActionSet {
	return game.NewActionSet("turn",
		&game.Action{ID: "check_call", Handler: "check_call", Enabled: "can_act", LabelFn: "label_check_call"},
		&game.Action{
			ID: "raise", LabelKey: "holdem-action-raise", Handler: "raise", Enabled: "can_act",
			Input: &game.InputRequest{
				Kind:      game.InputEditbox,
				PromptKey: "holdem-raise-prompt",
				BotInput:  "bot_raise_amount",
			},
		},
		&game.Action{ID: "fold", LabelKey: "holdem-action-fold", Handler: "fold", Enabled: "can_act"},
		&game.Action{ID: "all_in", LabelKey: "holdem-action-all-in", Handler: "all_in", Enabled: "can_act"},
		&game.Action{ID: "show_hand", LabelKey: "holdem-action-show-hand", Handler: "show_hand"},
	)
}

func (g *Game) OnStart() {
	g.Chips = make(map[string]int)
	g.Hands = make(map[string][]string)
	g.Folded = make(map[string]bool)
	g.AllIn = make(map[string]bool)
	g.RoundBets = make(map[string]int)
	g.HandBets = make(map[string]int)
	start := g.OptInt("starting_chips")
	var ids []string
	for _, p := range g.ActivePlayers() {
		g.Chips[p.ID] = start
		ids = append(ids, p.ID)
	}
	g.SetTurnPlayers(ids)
	g.DealerIndex = -1
	g.HandNumber = 0
	g.startHand()
}

// Hand lifecycle ---------------------------------------------------------

// livePlayers are active players still holding chips or already
// invested in the current hand.
func (g *Game) livePlayers() []*game.Player {
	var out []*game.Player
	for _, p := range g.ActivePlayers() {
		if g.Chips[p.ID] > 0 || g.HandBets[p.ID] > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) startHand() {
	funded := 0
	for _, p := range g.ActivePlayers() {
		if g.Chips[p.ID] > 0 {
			funded++
		}
	}
	if funded < 2 {
		g.finishTournament()
		return
	}

	g.HandNumber++
	g.Pot = 0
	g.Community = nil
	g.Phase = phasePreflop
	g.CurrentBet = 0
	g.LastRaiseSize = 0
	g.ActedSinceRaise = nil
	for k := range g.Folded {
		delete(g.Folded, k)
	}
	for k := range g.AllIn {
		delete(g.AllIn, k)
	}
	for k := range g.RoundBets {
		delete(g.RoundBets, k)
	}
	for k := range g.HandBets {
		delete(g.HandBets, k)
	}

	g.shuffleDeck()
	order := g.handOrder()
	for _, id := range order {
		if g.Chips[id] == 0 {
			g.Folded[id] = true
			continue
		}
		g.Hands[id] = []string{g.draw(), g.draw()}
	}
	g.BroadcastL("holdem-hand-start", nil, i18n.Args{"hand": strconv.Itoa(g.HandNumber)})
	g.ScheduleSound("card_deal", 0, 1.0, 0, 1.0)
	for _, p := range g.ActivePlayers() {
		if !g.Folded[p.ID] && p.Human() {
			g.SpeakL(p, "holdem-your-hand", i18n.Args{"cards": g.cardsText(p.Locale(), g.Hands[p.ID])})
		}
	}

	sb, bb := g.OptInt("small_blind"), g.OptInt("big_blind")
	if len(order) >= 2 {
		g.postBlind(order[0], sb, "holdem-posts-small-blind")
		g.postBlind(order[1], bb, "holdem-posts-big-blind")
	}
	g.CurrentBet = bb
	g.LastRaiseSize = bb
	g.ActedSinceRaise = nil

	g.SetTurnPlayers(order)
	if len(order) > 2 {
		g.TurnIndex = 2
	} else {
		g.TurnIndex = 0
	}
	g.AnnounceTurn()
	g.RebuildMenus()
}

// handOrder rotates the dealer button and lists live player ids
// starting left of the button (small blind first).
func (g *Game) handOrder() []string {
	live := g.livePlayers()
	n := len(live)
	g.DealerIndex = (g.DealerIndex + 1) % n
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, live[(g.DealerIndex+i)%n].ID)
	}
	return out
}

func (g *Game) postBlind(id string, amount int, key string) {
	if amount > g.Chips[id] {
		amount = g.Chips[id]
		g.AllIn[id] = true
	}
	g.Chips[id] -= amount
	g.RoundBets[id] += amount
	g.HandBets[id] += amount
	g.Pot += amount
	if p := g.PlayerByID(id); p != nil {
		g.BroadcastL(key, nil, i18n.Args{"player": p.Name, "amount": strconv.Itoa(amount)})
	}
}

// Betting actions --------------------------------------------------------

func (g *Game) canAct(p *game.Player) string {
	if g.Status != game.StatusPlaying {
		return "not-playing"
	}
	if !g.IsCurrent(p) {
		return "not-your-turn"
	}
	if g.Folded[p.ID] {
		return "holdem-folded"
	}
	if g.AllIn[p.ID] {
		return "holdem-already-all-in"
	}
	return ""
}

func (g *Game) toCall(id string) int {
	owe := g.CurrentBet - g.RoundBets[id]
	if owe < 0 {
		return 0
	}
	return owe
}

func (g *Game) checkCallLabel(p *game.Player, locale string) string {
	owe := g.toCall(p.ID)
	if owe == 0 {
		return i18n.T(locale, "holdem-action-check", nil)
	}
	return i18n.T(locale, "holdem-action-call", i18n.Args{"amount": strconv.Itoa(owe)})
}

func (g *Game) post(id string, amount int) {
	g.Chips[id] -= amount
	g.RoundBets[id] += amount
	g.HandBets[id] += amount
	g.Pot += amount
	if g.Chips[id] == 0 {
		g.AllIn[id] = true
	}
}

func (g *Game) markActed(id string) {
	for _, a := range g.ActedSinceRaise {
		if a == id {
			return
		}
	}
	g.ActedSinceRaise = append(g.ActedSinceRaise, id)
}

func (g *Game) handleCheckCall(p *game.Player, ctx *game.ActionContext) {
	owe := g.toCall(p.ID)
	if owe >= g.Chips[p.ID] {
		owe = g.Chips[p.ID]
	}
	g.post(p.ID, owe)
	g.markActed(p.ID)
	if owe == 0 {
		g.BroadcastPersonalL(p, "holdem-check-you", "holdem-check", nil)
	} else {
		g.BroadcastPersonalL(p, "holdem-call-you", "holdem-call", i18n.Args{"amount": strconv.Itoa(owe)})
	}
	g.ScheduleSound("chips", 0, 1.0, 0, 1.0)
	g.afterAction(p)
}

// handleRaise posts a call plus a raise of at least the last raise
// size. The raise amount is the increment above the current bet.
func (g *Game) handleRaise(p *game.Player, ctx *game.ActionContext) {
	amount, err := strconv.Atoi(strings.TrimSpace(ctx.Value))
	if err != nil || amount <= 0 {
		g.SpeakL(p, "option-invalid-number", nil)
		return
	}
	if amount < g.LastRaiseSize {
		g.SpeakL(p, "poker-raise-too-small", nil)
		return
	}
	cost := g.toCall(p.ID) + amount
	if cost > g.Chips[p.ID] {
		g.SpeakL(p, "holdem-not-enough-chips", nil)
		return
	}
	g.post(p.ID, cost)
	g.CurrentBet += amount
	g.LastRaiseSize = amount
	g.ActedSinceRaise = []string{p.ID}
	g.BroadcastPersonalL(p, "holdem-raise-you", "holdem-raise", i18n.Args{
		"amount": strconv.Itoa(amount),
		"bet":    strconv.Itoa(g.CurrentBet),
	})
	g.ScheduleSound("chips", 0, 1.0, 0, 1.0)
	g.afterAction(p)
}

func (g *Game) handleFold(p *game.Player, ctx *game.ActionContext) {
	g.Folded[p.ID] = true
	g.BroadcastPersonalL(p, "holdem-fold-you", "holdem-fold", nil)
	g.ScheduleSound("card_fold", 0, 1.0, 0, 1.0)
	g.afterAction(p)
}

// handleAllIn pushes the whole stack. A full-size raise portion moves
// the current bet and reopens the action; a short raise leaves the
// current bet alone and does not reopen betting. In both cases the
// pusher becomes the only entry in the acted list.
func (g *Game) handleAllIn(p *game.Player, ctx *game.ActionContext) {
	chips := g.Chips[p.ID]
	if chips == 0 {
		g.SpeakL(p, "holdem-already-all-in", nil)
		return
	}
	g.post(p.ID, chips)
	newTotal := g.RoundBets[p.ID]
	if newTotal > g.CurrentBet {
		raise := newTotal - g.CurrentBet
		if raise >= g.LastRaiseSize {
			g.CurrentBet = newTotal
			g.LastRaiseSize = raise
		}
		g.ActedSinceRaise = []string{p.ID}
	} else {
		g.markActed(p.ID)
	}
	g.BroadcastPersonalL(p, "holdem-all-in-you", "holdem-all-in", i18n.Args{
		"amount": strconv.Itoa(newTotal),
	})
	g.ScheduleSound("chips_all_in", 0, 1.0, 0, 1.0)
	g.afterAction(p)
}

func (g *Game) handleShowHand(p *game.Player, ctx *game.ActionContext) {
	cards := g.Hands[p.ID]
	if len(cards) == 0 {
		g.SpeakL(p, "holdem-no-hand", nil)
		return
	}
	args := i18n.Args{"cards": g.cardsText(p.Locale(), cards)}
	if len(g.Community) > 0 {
		args["board"] = g.cardsText(p.Locale(), g.Community)
		g.SpeakL(p, "holdem-hand-and-board", args)
		return
	}
	g.SpeakL(p, "holdem-your-hand", args)
}

// Round progression ------------------------------------------------------

// contenders are players still in the hand.
func (g *Game) contenders() []string {
	var out []string
	for _, id := range g.TurnPlayerIDs {
		if !g.Folded[id] {
			out = append(out, id)
		}
	}
	return out
}

// afterAction advances the betting: last player standing takes the
// pot, a settled round deals the next street, otherwise the turn moves
// to the next player owing a decision.
func (g *Game) afterAction(p *game.Player) {
	in := g.contenders()
	if len(in) == 1 {
		g.awardUncontested(in[0])
		return
	}
	if g.bettingSettled() {
		g.nextStreet()
		return
	}
	g.advanceToNextActor()
}

// needsDecision reports whether the player still owes a response this
// round.
func (g *Game) needsDecision(id string) bool {
	if g.Folded[id] || g.AllIn[id] {
		return false
	}
	if g.RoundBets[id] < g.CurrentBet {
		return true
	}
	for _, a := range g.ActedSinceRaise {
		if a == id {
			return false
		}
	}
	return true
}

func (g *Game) bettingSettled() bool {
	for _, id := range g.contenders() {
		if g.needsDecision(id) {
			return false
		}
	}
	return true
}

func (g *Game) advanceToNextActor() {
	n := len(g.TurnPlayerIDs)
	for i := 0; i < n; i++ {
		g.TurnIndex = (g.TurnIndex + 1) % n
		cur := g.CurrentPlayer()
		if cur != nil && g.needsDecision(cur.ID) {
			g.AnnounceTurn()
			g.RebuildMenus()
			return
		}
	}
	g.nextStreet()
}

func (g *Game) nextStreet() {
	for k := range g.RoundBets {
		delete(g.RoundBets, k)
	}
	g.CurrentBet = 0
	g.LastRaiseSize = g.OptInt("big_blind")
	g.ActedSinceRaise = nil

	switch g.Phase {
	case phasePreflop:
		g.Phase = phaseFlop
		g.dealCommunity(3)
	case phaseFlop:
		g.Phase = phaseTurn
		g.dealCommunity(1)
	case phaseTurn:
		g.Phase = phaseRiver
		g.dealCommunity(1)
	case phaseRiver:
		g.showdown()
		return
	}

	// Everyone left may already be all-in; run the board out.
	actors := 0
	for _, id := range g.contenders() {
		if !g.AllIn[id] {
			actors++
		}
	}
	if actors < 2 {
		g.nextStreet()
		return
	}

	g.TurnIndex = 0
	cur := g.CurrentPlayer()
	if cur == nil || !g.needsDecision(cur.ID) {
		g.advanceToNextActor()
		return
	}
	g.AnnounceTurn()
	g.RebuildMenus()
}

func (g *Game) dealCommunity(n int) {
	for i := 0; i < n; i++ {
		g.Community = append(g.Community, g.draw())
	}
	g.ScheduleSound("card_deal", 0, 1.0, 0, 1.0)
	for _, p := range g.Players {
		g.SpeakL(p, "holdem-board", i18n.Args{"cards": g.cardsText(p.Locale(), g.Community)})
	}
}

// Pot resolution ---------------------------------------------------------

func (g *Game) awardUncontested(id string) {
	g.Chips[id] += g.Pot
	if p := g.PlayerByID(id); p != nil {
		g.BroadcastL("holdem-wins-pot", nil, i18n.Args{
			"player": p.Name, "amount": strconv.Itoa(g.Pot),
		})
	}
	g.ScheduleSound("chips_win", 0, 1.0, 0, 1.0)
	g.Pot = 0
	g.startHand()
}

// showdown evaluates every contender and pays out side pots layer by
// layer, from the smallest contribution level up.
func (g *Game) showdown() {
	in := g.contenders()
	ranks := make(map[string]int32, len(in))
	for _, id := range in {
		ranks[id] = g.evaluate(id)
		if p := g.PlayerByID(id); p != nil {
			g.BroadcastL("holdem-shows", nil, i18n.Args{
				"player": p.Name,
				"cards":  g.cardsText(i18n.DefaultLocale, g.Hands[id]),
				"hand":   poker.RankString(ranks[id]),
			})
		}
	}

	for _, pot := range g.buildPots() {
		best := int32(1 << 30)
		var winners []string
		for _, id := range pot.eligible {
			if g.Folded[id] {
				continue
			}
			if ranks[id] < best {
				best = ranks[id]
				winners = []string{id}
			} else if ranks[id] == best {
				winners = append(winners, id)
			}
		}
		if len(winners) == 0 {
			continue
		}
		share := pot.amount / len(winners)
		odd := pot.amount - share*len(winners)
		for i, id := range winners {
			won := share
			if i == 0 {
				won += odd
			}
			g.Chips[id] += won
			if p := g.PlayerByID(id); p != nil {
				g.BroadcastL("holdem-wins-pot", nil, i18n.Args{
					"player": p.Name, "amount": strconv.Itoa(won),
				})
			}
		}
	}
	g.ScheduleSound("chips_win", 2, 1.0, 0, 1.0)
	g.Pot = 0
	g.startHand()
}

type sidePot struct {
	amount   int
	eligible []string
}

// buildPots splits the hand's contributions into main and side pots by
// contribution level.
func (g *Game) buildPots() []sidePot {
	levels := map[int]bool{}
	for id, bet := range g.HandBets {
		if bet > 0 && !g.Folded[id] {
			levels[bet] = true
		}
	}
	var cuts []int
	for l := range levels {
		cuts = append(cuts, l)
	}
	sort.Ints(cuts)

	remaining := map[string]int{}
	for id, bet := range g.HandBets {
		remaining[id] = bet
	}

	var pots []sidePot
	prev := 0
	for _, cut := range cuts {
		depth := cut - prev
		pot := sidePot{}
		for id, left := range remaining {
			take := depth
			if left < take {
				take = left
			}
			if take > 0 {
				pot.amount += take
				remaining[id] -= take
			}
			if !g.Folded[id] && g.HandBets[id] >= cut {
				pot.eligible = append(pot.eligible, id)
			}
		}
		sort.Strings(pot.eligible)
		if pot.amount > 0 {
			pots = append(pots, pot)
		}
		prev = cut
	}
	// Folded overage above the last live cut stays with the final pot.
	extra := 0
	for _, left := range remaining {
		extra += left
	}
	if extra > 0 && len(pots) > 0 {
		pots[len(pots)-1].amount += extra
	}
	return pots
}

func (g *Game) evaluate(id string) int32 {
	cards := make([]poker.Card, 0, 7)
	for _, c := range g.Hands[id] {
		cards = append(cards, poker.NewCard(c))
	}
	for _, c := range g.Community {
		cards = append(cards, poker.NewCard(c))
	}
	return poker.Evaluate(cards)
}

// Tournament end ---------------------------------------------------------

func (g *Game) finishTournament() {
	var winner *game.Player
	for _, p := range g.ActivePlayers() {
		if g.Chips[p.ID] > 0 {
			winner = p
			break
		}
	}
	if winner != nil {
		g.BroadcastL("holdem-tournament-winner", nil, i18n.Args{"player": winner.Name})
	}
	g.FinishGame(true)
}

// Deck -------------------------------------------------------------------

var (
	deckRanks = []byte("23456789TJQKA")
	deckSuits = []byte("shdc")
)

func (g *Game) shuffleDeck() {
	deck := make([]string, 0, 52)
	for _, r := range deckRanks {
		for _, s := range deckSuits {
			deck = append(deck, string([]byte{r, s}))
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := g.RandIntn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	g.Deck = deck
}

func (g *Game) draw() string {
	c := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return c
}

var rankWords = map[byte]string{
	'2': "2", '3': "3", '4': "4", '5': "5", '6': "6", '7': "7",
	'8': "8", '9': "9", 'T': "10", 'J': "card-jack", 'Q': "card-queen",
	'K': "card-king", 'A': "card-ace",
}

var suitWords = map[byte]string{
	's': "card-spades", 'h': "card-hearts", 'd': "card-diamonds", 'c': "card-clubs",
}

// cardsText renders cards as speech ("ace of spades, 10 of hearts").
func (g *Game) cardsText(locale string, cards []string) string {
	var parts []string
	for _, c := range cards {
		if len(c) != 2 {
			continue
		}
		rank := rankWords[c[0]]
		if strings.HasPrefix(rank, "card-") {
			rank = i18n.T(locale, rank, nil)
		}
		parts = append(parts, i18n.T(locale, "card-name", i18n.Args{
			"rank": rank,
			"suit": i18n.T(locale, suitWords[c[1]], nil),
		}))
	}
	return strings.Join(parts, ", ")
}

// Bot --------------------------------------------------------------------

// BotThink plays a simple pot-odds-free strategy: fold weak hands to
// big bets, call reasonable ones, raise strong holdings.
func (g *Game) BotThink(p *game.Player) string {
	owe := g.toCall(p.ID)
	strength := g.handStrength(p.ID)
	switch {
	case owe == 0:
		if strength >= 2 && g.Chips[p.ID] > g.LastRaiseSize*4 && g.RandIntn(3) == 0 &&
			g.botRaiseAmount(p) != "" {
			return "raise"
		}
		return "check_call"
	case strength >= 3:
		if g.Chips[p.ID] <= owe*2 || g.botRaiseAmount(p) == "" {
			return "all_in"
		}
		return "raise"
	case strength >= 1:
		if owe <= g.Chips[p.ID]/4 {
			return "check_call"
		}
		return "fold"
	default:
		if owe <= g.OptInt("big_blind") {
			return "check_call"
		}
		return "fold"
	}
}

func (g *Game) botRaiseAmount(p *game.Player) string {
	amount := g.LastRaiseSize * 2
	max := g.Chips[p.ID] - g.toCall(p.ID)
	if amount > max {
		amount = g.LastRaiseSize
	}
	if amount > max {
		return ""
	}
	return strconv.Itoa(amount)
}

// handStrength is a coarse 0..4 scale: preflop pairs/high cards score,
// post-flop the evaluator class does.
func (g *Game) handStrength(id string) int {
	hand := g.Hands[id]
	if len(hand) != 2 {
		return 0
	}
	if len(g.Community) == 0 {
		hi := strings.IndexByte("23456789TJQKA", hand[0][0])
		lo := strings.IndexByte("23456789TJQKA", hand[1][0])
		switch {
		case hand[0][0] == hand[1][0] && hi >= 8:
			return 4
		case hand[0][0] == hand[1][0]:
			return 2
		case hi >= 10 && lo >= 9:
			return 2
		case hi >= 11:
			return 1
		default:
			return 0
		}
	}
	class := poker.RankClass(g.evaluate(id))
	switch {
	case class <= 4: // flush or better
		return 4
	case class <= 6: // straight, trips
		return 3
	case class <= 8: // two pair, pair
		return 2
	default:
		return 1
	}
}

// Reporting --------------------------------------------------------------

// Rankings orders by chip count.
func (g *Game) Rankings() [][]string {
	players := g.ActivePlayers()
	sort.SliceStable(players, func(i, j int) bool {
		return g.Chips[players[i].ID] > g.Chips[players[j].ID]
	})
	var groups [][]string
	for i := 0; i < len(players); {
		group := []string{players[i].ID}
		j := i + 1
		for j < len(players) && g.Chips[players[j].ID] == g.Chips[players[i].ID] {
			group = append(group, players[j].ID)
			j++
		}
		groups = append(groups, group)
		i = j
	}
	return groups
}

func (g *Game) BuildResult(res *game.Result) {
	chips := map[string]any{}
	var winner string
	best := -1
	for _, p := range g.ActivePlayers() {
		chips[p.Name] = g.Chips[p.ID]
		if g.Chips[p.ID] > best {
			best = g.Chips[p.ID]
			winner = p.Name
		}
	}
	res.CustomData["final_scores"] = chips
	res.CustomData["winner"] = winner
	res.CustomData["hands_played"] = g.HandNumber
}

func (g *Game) Scores(locale string) []string {
	return g.chipLines(locale)
}

func (g *Game) DetailedScores(locale string) []string {
	lines := g.chipLines(locale)
	lines = append(lines, i18n.T(locale, "holdem-pot-line", i18n.Args{
		"pot": strconv.Itoa(g.Pot),
		"bet": strconv.Itoa(g.CurrentBet),
	}))
	return lines
}

func (g *Game) EndScreen(locale string) []string {
	return g.chipLines(locale)
}

func (g *Game) chipLines(locale string) []string {
	players := g.ActivePlayers()
	sort.SliceStable(players, func(i, j int) bool {
		return g.Chips[players[i].ID] > g.Chips[players[j].ID]
	})
	var lines []string
	for _, p := range players {
		lines = append(lines, i18n.T(locale, "holdem-chip-line", i18n.Args{
			"player": p.Name,
			"chips":  strconv.Itoa(g.Chips[p.ID]),
		}))
	}
	return lines
}
