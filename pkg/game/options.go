package game

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/parlorgames/parlor/pkg/i18n"
)

// Option kinds.
const (
	optInt      = "int"
	optFloat    = "float"
	optBool     = "bool"
	optMenu     = "menu"
	optTeamMode = "teammode"
)

// Option declares one configurable game setting. From the declaration
// the framework generates the "options" action set: an action per
// option with a localized value-interpolating label, an input request
// where needed, and generic set/toggle handlers that validate and
// store the value. Only the host may change options, and only while
// the game is waiting.
type Option struct {
	Name     string
	Kind     string
	LabelKey string

	DefInt int
	Min    int
	Max    int

	DefFloat float64
	FMin     float64
	FMax     float64
	Places   int

	DefBool bool

	DefChoice string
	Choices   []MenuChoice
	// ChoicesFn names a registered choice function for dynamic lists.
	ChoicesFn string
}

// IntOption declares an integer option clamped to [min, max].
func IntOption(name, labelKey string, def, min, max int) Option {
	return Option{Name: name, Kind: optInt, LabelKey: labelKey, DefInt: def, Min: min, Max: max}
}

// FloatOption declares a float option clamped to [min, max].
func FloatOption(name, labelKey string, def, min, max float64, places int) Option {
	return Option{Name: name, Kind: optFloat, LabelKey: labelKey, DefFloat: def, FMin: min, FMax: max, Places: places}
}

// BoolOption declares a toggle.
func BoolOption(name, labelKey string, def bool) Option {
	return Option{Name: name, Kind: optBool, LabelKey: labelKey, DefBool: def}
}

// MenuOption declares a choice from a fixed list.
func MenuOption(name, labelKey, def string, choices []MenuChoice) Option {
	return Option{Name: name, Kind: optMenu, LabelKey: labelKey, DefChoice: def, Choices: choices}
}

// TeamModeOption declares the team arrangement choice.
func TeamModeOption(name, labelKey string) Option {
	return Option{
		Name: name, Kind: optTeamMode, LabelKey: labelKey,
		DefChoice: TeamModeIndividual,
		Choices: []MenuChoice{
			{ID: TeamModeIndividual, Label: "Individual"},
			{ID: TeamMode2v2, Label: "2 vs 2"},
			{ID: TeamMode2v2v2, Label: "2 vs 2 vs 2"},
		},
	}
}

// OptionValues is the serialized value store.
type OptionValues struct {
	Ints    map[string]int     `json:"ints,omitempty"`
	Floats  map[string]float64 `json:"floats,omitempty"`
	Bools   map[string]bool    `json:"bools,omitempty"`
	Choices map[string]string  `json:"choices,omitempty"`
}

// DeclareOptions installs the game's option declarations. Values
// already present (from a deserialized game or from a simulation
// config) are kept; missing ones take their defaults.
func (b *Base) DeclareOptions(opts ...Option) {
	b.declared = opts
	if b.Options.Ints == nil {
		b.Options.Ints = map[string]int{}
	}
	if b.Options.Floats == nil {
		b.Options.Floats = map[string]float64{}
	}
	if b.Options.Bools == nil {
		b.Options.Bools = map[string]bool{}
	}
	if b.Options.Choices == nil {
		b.Options.Choices = map[string]string{}
	}
	for _, opt := range opts {
		opt := opt
		switch opt.Kind {
		case optInt:
			if _, ok := b.Options.Ints[opt.Name]; !ok {
				b.Options.Ints[opt.Name] = opt.DefInt
			}
		case optFloat:
			if _, ok := b.Options.Floats[opt.Name]; !ok {
				b.Options.Floats[opt.Name] = opt.DefFloat
			}
		case optBool:
			if _, ok := b.Options.Bools[opt.Name]; !ok {
				b.Options.Bools[opt.Name] = opt.DefBool
			}
		case optMenu, optTeamMode:
			if _, ok := b.Options.Choices[opt.Name]; !ok {
				b.Options.Choices[opt.Name] = opt.DefChoice
			}
		}

		b.RegisterLabel("_optlabel_"+opt.Name, func(p *Player, locale string) string {
			return i18n.T(locale, opt.LabelKey, i18n.Args{"value": b.optionDisplay(opt, locale)})
		})
		switch opt.Kind {
		case optInt:
			b.RegisterBotInput("_optdefault_"+opt.Name, func(*Player) string {
				return strconv.Itoa(b.OptInt(opt.Name))
			})
		case optFloat:
			b.RegisterBotInput("_optdefault_"+opt.Name, func(*Player) string {
				return strconv.FormatFloat(b.OptFloat(opt.Name), 'f', opt.Places, 64)
			})
		case optMenu, optTeamMode:
			if opt.ChoicesFn == "" {
				b.RegisterChoices("_optchoices_"+opt.Name, func(*Player) []MenuChoice {
					return opt.Choices
				})
			}
		}
	}
}

func (b *Base) optionDisplay(opt Option, locale string) string {
	switch opt.Kind {
	case optInt:
		return strconv.Itoa(b.OptInt(opt.Name))
	case optFloat:
		return strconv.FormatFloat(b.OptFloat(opt.Name), 'f', opt.Places, 64)
	case optBool:
		if b.OptBool(opt.Name) {
			return i18n.T(locale, "option-on", nil)
		}
		return i18n.T(locale, "option-off", nil)
	case optMenu, optTeamMode:
		cur := b.OptChoice(opt.Name)
		for _, c := range opt.Choices {
			if c.ID == cur {
				return c.Label
			}
		}
		return cur
	}
	return ""
}

// OptInt returns an int option's value (declared default if unset).
func (b *Base) OptInt(name string) int {
	if v, ok := b.Options.Ints[name]; ok {
		return v
	}
	for _, o := range b.declared {
		if o.Name == name {
			return o.DefInt
		}
	}
	return 0
}

// OptFloat returns a float option's value.
func (b *Base) OptFloat(name string) float64 {
	if v, ok := b.Options.Floats[name]; ok {
		return v
	}
	for _, o := range b.declared {
		if o.Name == name {
			return o.DefFloat
		}
	}
	return 0
}

// OptBool returns a bool option's value.
func (b *Base) OptBool(name string) bool {
	if v, ok := b.Options.Bools[name]; ok {
		return v
	}
	for _, o := range b.declared {
		if o.Name == name {
			return o.DefBool
		}
	}
	return false
}

// OptChoice returns a menu option's value.
func (b *Base) OptChoice(name string) string {
	if v, ok := b.Options.Choices[name]; ok {
		return v
	}
	for _, o := range b.declared {
		if o.Name == name {
			return o.DefChoice
		}
	}
	return ""
}

// OptionsJSON serializes the option values (for simulation configs).
func (b *Base) OptionsJSON() string {
	data, err := json.Marshal(b.Options)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ApplyOptionsJSON overwrites option values from a serialized blob.
func (b *Base) ApplyOptionsJSON(data string) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), &b.Options)
}

// optionsActionSet builds the auto-generated "options" set, or nil if
// the game declares no options.
func (b *Base) optionsActionSet() *ActionSet {
	if len(b.declared) == 0 {
		return nil
	}
	set := NewActionSet("options")
	for _, opt := range b.declared {
		var a *Action
		switch opt.Kind {
		case optBool:
			a = &Action{
				ID:      "toggle_" + opt.Name,
				Handler: "_action_toggle_option",
				Enabled: "_option_guard",
				LabelFn: "_optlabel_" + opt.Name,
			}
		case optInt, optFloat:
			a = &Action{
				ID:      "set_" + opt.Name,
				Handler: "_action_set_option",
				Enabled: "_option_guard",
				LabelFn: "_optlabel_" + opt.Name,
				Input: &InputRequest{
					Kind:      InputEditbox,
					PromptKey: opt.LabelKey,
					DefaultFn: "_optdefault_" + opt.Name,
				},
			}
		case optMenu, optTeamMode:
			choices := opt.ChoicesFn
			if choices == "" {
				choices = "_optchoices_" + opt.Name
			}
			a = &Action{
				ID:      "set_" + opt.Name,
				Handler: "_action_set_option",
				Enabled: "_option_guard",
				LabelFn: "_optlabel_" + opt.Name,
				Input: &InputRequest{
					Kind:    InputMenu,
					Choices: choices,
				},
			}
		default:
			continue
		}
		set.Add(a)
	}
	return set
}

// declaredOption looks an option up by the action id that mutates it.
func (b *Base) declaredOption(actionID string) (Option, bool) {
	name := strings.TrimPrefix(strings.TrimPrefix(actionID, "toggle_"), "set_")
	for _, o := range b.declared {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// actionSetOption is the generic handler for set_<name> actions.
func (b *Base) actionSetOption(p *Player, ctx *ActionContext) {
	opt, ok := b.declaredOption(ctx.ActionID)
	if !ok {
		return
	}
	switch opt.Kind {
	case optInt:
		v, err := strconv.Atoi(strings.TrimSpace(ctx.Value))
		if err != nil {
			b.SpeakL(p, "option-invalid-number", nil)
			return
		}
		if v < opt.Min {
			v = opt.Min
		}
		if v > opt.Max {
			v = opt.Max
		}
		b.Options.Ints[opt.Name] = v
	case optFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(ctx.Value), 64)
		if err != nil {
			b.SpeakL(p, "option-invalid-number", nil)
			return
		}
		if v < opt.FMin {
			v = opt.FMin
		}
		if v > opt.FMax {
			v = opt.FMax
		}
		b.Options.Floats[opt.Name] = v
	case optMenu, optTeamMode:
		valid := false
		for _, c := range b.optionChoices(p, opt) {
			if c.ID == ctx.Value {
				valid = true
				break
			}
		}
		if !valid {
			return
		}
		b.Options.Choices[opt.Name] = ctx.Value
		if opt.Kind == optTeamMode && b.Teams != nil {
			b.Teams.Mode = ctx.Value
		}
	}
	b.announceOption(p, opt)
	b.RebuildMenus()
}

// actionToggleOption is the generic handler for toggle_<name> actions.
func (b *Base) actionToggleOption(p *Player, ctx *ActionContext) {
	opt, ok := b.declaredOption(ctx.ActionID)
	if !ok || opt.Kind != optBool {
		return
	}
	b.Options.Bools[opt.Name] = !b.OptBool(opt.Name)
	b.announceOption(p, opt)
	b.RebuildMenus()
}

func (b *Base) optionChoices(p *Player, opt Option) []MenuChoice {
	if opt.ChoicesFn != "" {
		if fn, ok := b.choiceFns[opt.ChoicesFn]; ok {
			return fn(p)
		}
	}
	return opt.Choices
}

func (b *Base) announceOption(p *Player, opt Option) {
	for _, target := range b.Players {
		b.SpeakL(target, "option-changed", i18n.Args{
			"player": p.Name,
			"option": i18n.T(target.Locale(), opt.LabelKey, i18n.Args{"value": b.optionDisplay(opt, target.Locale())}),
		})
	}
}

// optionGuard is the shared enabled check of every option action.
func (b *Base) optionGuard(p *Player) string {
	if b.Status != StatusWaiting {
		return "options-locked"
	}
	if p.Name != b.HostName {
		return "options-host-only"
	}
	return ""
}
