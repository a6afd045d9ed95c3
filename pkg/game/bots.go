package game

import "strconv"

// DefaultJolt is the standard bot pause, in ticks.
const DefaultJolt = 5

// defaultBotNames is the pool add_bot draws from, skipping names
// already seated.
var defaultBotNames = []string{
	"Ada", "Basil", "Clover", "Dmitri", "Esther", "Fern",
	"Gustav", "Hazel", "Igor", "Juniper", "Klaus", "Luna",
	"Mortimer", "Nova", "Opal", "Percy", "Quincy", "Rosa",
	"Sage", "Tobias", "Uma", "Vera", "Wilbur", "Xena",
	"Yvette", "Ziggy",
}

// pickBotName returns the first unused default bot name, falling back
// to numbered names when the pool is exhausted.
func (b *Base) pickBotName() string {
	for _, name := range defaultBotNames {
		if b.PlayerByName(name) == nil {
			return name
		}
	}
	for i := 1; ; i++ {
		name := "Bot " + strconv.Itoa(i)
		if b.PlayerByName(name) == nil {
			return name
		}
	}
}

// Jolt pauses a bot for the default small delay.
func (b *Base) Jolt(p *Player) {
	p.ThinkTicks = DefaultJolt
}

// JoltRange pauses a bot for a randomized delay in [min, max] ticks.
func (b *Base) JoltRange(p *Player, min, max int) {
	p.ThinkTicks = min + b.RandIntn(max-min+1)
	p.PendingAction = ""
}

// botCadence runs once per tick while the game is playing: the current
// bot counts its pause down, then executes its pending action, then
// asks the game for its next move.
func (b *Base) botCadence() {
	cur := b.CurrentPlayer()
	if cur == nil || !cur.IsBot {
		return
	}
	if cur.ThinkTicks > 0 {
		cur.ThinkTicks--
		return
	}
	if cur.PendingAction != "" {
		id := cur.PendingAction
		cur.PendingAction = ""
		if a := cur.FindAction(id); a != nil {
			b.ExecuteAction(cur, a, &ActionContext{Origin: OriginBot})
		}
		return
	}
	if id := b.impl.BotThink(cur); id != "" {
		cur.PendingAction = id
	}
}
