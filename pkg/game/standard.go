package game

import (
	"strconv"
	"strings"

	"github.com/parlorgames/parlor/pkg/i18n"
)

// standardActionSet builds the utility actions shared by every game.
// None of them appear on the turn menu; F-keys and the actions menu
// reach them.
func (b *Base) standardActionSet() *ActionSet {
	return NewActionSet("standard",
		&Action{
			ID:            "show_actions_menu",
			LabelKey:      "action-show-actions",
			Handler:       "_action_show_actions_menu",
			Hidden:        "_always_hidden",
			NoActionsMenu: true,
		},
		&Action{
			ID:       "save_table",
			LabelKey: "action-save-table",
			Handler:  "_action_save_table",
			Enabled:  "_can_save_table",
			Hidden:   "_always_hidden",
			Input: &InputRequest{
				Kind:      InputEditbox,
				PromptKey: "save-table-prompt",
			},
		},
		&Action{
			ID:       "whose_turn",
			LabelKey: "action-whose-turn",
			Handler:  "_action_whose_turn",
			Hidden:   "_always_hidden",
		},
		&Action{
			ID:       "check_scores",
			LabelKey: "action-check-scores",
			Handler:  "_action_check_scores",
			Hidden:   "_always_hidden",
		},
		&Action{
			ID:       "check_scores_detailed",
			LabelKey: "action-check-scores-detailed",
			Handler:  "_action_check_scores_detailed",
			Hidden:   "_always_hidden",
		},
		&Action{
			ID:       "predict_outcomes",
			LabelKey: "action-predict-outcomes",
			Handler:  "_action_predict_outcomes",
			Hidden:   "_always_hidden",
		},
	)
}

// estimateActionSet holds the single duration-estimation action.
func (b *Base) estimateActionSet() *ActionSet {
	return NewActionSet("estimate",
		&Action{
			ID:       "estimate_duration",
			LabelKey: "action-estimate-duration",
			Handler:  "_action_estimate_duration",
			Enabled:  "_can_estimate",
			Hidden:   "_always_hidden",
		},
	)
}

func (b *Base) actionShowActionsMenu(p *Player, ctx *ActionContext) {
	b.openActionsMenu(p)
}

func (b *Base) canSaveTable(p *Player) string {
	if p.Name != b.HostName {
		return "save-host-only"
	}
	return ""
}

func (b *Base) actionSaveTable(p *Player, ctx *ActionContext) {
	name := strings.TrimSpace(ctx.Value)
	if name == "" {
		b.SpeakL(p, "save-name-empty", nil)
		return
	}
	b.BroadcastL("table-saved", nil, i18n.Args{"name": name})
	if err := b.host.SaveGame(b.HostName, name); err != nil {
		b.log.Errorf("game %s: save %q failed: %v", b.GameType, name, err)
		b.SpeakL(p, "save-failed", nil)
	}
}

func (b *Base) actionWhoseTurn(p *Player, ctx *ActionContext) {
	cur := b.CurrentPlayer()
	if b.Status != StatusPlaying || cur == nil {
		b.SpeakL(p, "whose-turn-nobody", nil)
		return
	}
	if cur.ID == p.ID {
		b.SpeakL(p, "whose-turn-you", nil)
		return
	}
	b.SpeakL(p, "whose-turn", i18n.Args{"player": cur.Name})
}

func (b *Base) actionCheckScores(p *Player, ctx *ActionContext) {
	sr, ok := b.impl.(ScoreReporter)
	if !ok {
		b.SpeakL(p, "scores-unavailable", nil)
		return
	}
	lines := sr.Scores(p.Locale())
	if len(lines) == 0 {
		b.SpeakL(p, "scores-unavailable", nil)
		return
	}
	b.ShowStatusBox(p, lines)
}

func (b *Base) actionCheckScoresDetailed(p *Player, ctx *ActionContext) {
	sr, ok := b.impl.(ScoreReporter)
	if !ok {
		b.SpeakL(p, "scores-unavailable", nil)
		return
	}
	lines := sr.DetailedScores(p.Locale())
	if len(lines) == 0 {
		b.SpeakL(p, "scores-unavailable", nil)
		return
	}
	b.ShowStatusBox(p, lines)
}

// actionPredictOutcomes shows head-to-head win probabilities between
// the invoker and every other active player.
func (b *Base) actionPredictOutcomes(p *Player, ctx *ActionContext) {
	locale := p.Locale()
	var lines []string
	for _, other := range b.ActivePlayers() {
		if other.ID == p.ID {
			continue
		}
		prob, ok := b.host.WinProbability(p.ID, other.ID)
		if !ok {
			continue
		}
		lines = append(lines, i18n.T(locale, "predict-line", i18n.Args{
			"player":  other.Name,
			"percent": strconv.Itoa(int(prob*100 + 0.5)),
		}))
	}
	if len(lines) == 0 {
		b.SpeakL(p, "predict-unavailable", nil)
		return
	}
	b.ShowStatusBox(p, lines)
}
