package game

// The action model is purely declarative data so that a player's
// action sets serialize with the game. Behavior is referenced by name:
// handler, enabled, hidden, label and choice functions are string ids
// resolved against tables the concrete game populates in Init.

// Input request kinds.
const (
	InputMenu    = "menu"
	InputEditbox = "editbox"
)

// InputRequest describes the input an action needs before its handler
// can run. Menu requests take their choices from a registered choice
// function; editbox requests carry a prompt and a default.
type InputRequest struct {
	Kind      string `json:"kind"`
	PromptKey string `json:"prompt,omitempty"`
	Default   string `json:"default,omitempty"`
	// DefaultFn overrides Default with a registered function when set.
	DefaultFn string `json:"default_fn,omitempty"`
	// Choices names the registered choice function (menu kind).
	Choices string `json:"choices,omitempty"`
	// BotSelect / BotInput name registered synthesis functions bots use
	// instead of being shown UI.
	BotSelect string `json:"bot_select,omitempty"`
	BotInput  string `json:"bot_input,omitempty"`
}

// MenuChoice is one option of a menu input request.
type MenuChoice struct {
	ID    string
	Label string
}

// Action is one player-visible operation.
type Action struct {
	ID string `json:"id"`
	// LabelKey is the static localized label.
	LabelKey string `json:"label"`
	// Handler names the registered handler function.
	Handler string `json:"handler"`
	// Enabled names a registered function returning "" when the action
	// is available or a localization key describing why not. Empty
	// means always enabled.
	Enabled string `json:"enabled,omitempty"`
	// Hidden names a registered function returning true to hide the
	// action from the turn menu. Empty means always visible.
	Hidden string `json:"hidden,omitempty"`
	// LabelFn names a registered dynamic label function overriding
	// LabelKey.
	LabelFn string `json:"label_fn,omitempty"`

	Input *InputRequest `json:"input,omitempty"`

	// NoActionsMenu excludes the action from the fallback actions menu.
	NoActionsMenu bool `json:"no_actions_menu,omitempty"`
}

// ActionSet is a named ordered list of actions owned by one player.
type ActionSet struct {
	Name    string    `json:"name"`
	Actions []*Action `json:"actions"`
}

// NewActionSet creates an empty set.
func NewActionSet(name string, actions ...*Action) *ActionSet {
	return &ActionSet{Name: name, Actions: actions}
}

// Action returns the action with the given id, or nil.
func (s *ActionSet) Action(id string) *Action {
	for _, a := range s.Actions {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Add appends an action to the set.
func (s *ActionSet) Add(a *Action) {
	s.Actions = append(s.Actions, a)
}

// ResolvedAction is the runtime view of an Action for one player. Not
// serialized; recomputed whenever a menu is built.
type ResolvedAction struct {
	Action  *Action
	Label   string
	Enabled bool
	// Reason is the localization key for the disabled reason.
	Reason  string
	Visible bool
}

// Action origins.
const (
	OriginMenu    = "menu"
	OriginKeybind = "keybind"
	OriginBot     = "bot"
	OriginInput   = "input"
)

// ActionContext accompanies one handler invocation.
type ActionContext struct {
	ActionID string
	Origin   string
	// Value is the supplied input (menu choice id or editbox text);
	// HasValue distinguishes an empty submission from no submission.
	Value    string
	HasValue bool
	// Focus of the client menu when a keybind fired, if any.
	FocusID    string
	FocusIndex int
}

// Handler funcs and the resolution tables they live in.
type (
	HandlerFunc   func(p *Player, ctx *ActionContext)
	EnabledFunc   func(p *Player) string
	HiddenFunc    func(p *Player) bool
	LabelFunc     func(p *Player, locale string) string
	ChoicesFunc   func(p *Player) []MenuChoice
	BotSelectFunc func(p *Player) string
	BotInputFunc  func(p *Player) string
)

// RegisterHandler binds a handler name to a function. Registration
// normally happens in the game's Init so that a deserialized game
// resolves the same names.
func (b *Base) RegisterHandler(name string, fn HandlerFunc) {
	b.handlers[name] = fn
}

// RegisterEnabled binds an enabled-check name.
func (b *Base) RegisterEnabled(name string, fn EnabledFunc) {
	b.enabledFns[name] = fn
}

// RegisterHidden binds a hidden-check name.
func (b *Base) RegisterHidden(name string, fn HiddenFunc) {
	b.hiddenFns[name] = fn
}

// RegisterLabel binds a dynamic label name.
func (b *Base) RegisterLabel(name string, fn LabelFunc) {
	b.labelFns[name] = fn
}

// RegisterChoices binds a menu choice source name.
func (b *Base) RegisterChoices(name string, fn ChoicesFunc) {
	b.choiceFns[name] = fn
}

// RegisterBotSelect binds a bot menu-choice synthesizer.
func (b *Base) RegisterBotSelect(name string, fn BotSelectFunc) {
	b.botSelectFns[name] = fn
}

// RegisterBotInput binds a bot editbox synthesizer.
func (b *Base) RegisterBotInput(name string, fn BotInputFunc) {
	b.botInputFns[name] = fn
}
