package i18n

func init() {
	RegisterLocale("en", "English", map[string]string{
		// Shell menus.
		"menu-play":            "Play",
		"menu-saved-tables":    "Saved tables",
		"menu-leaderboards":    "Leaderboards",
		"menu-my-stats":        "My statistics",
		"menu-options":         "Options",
		"menu-logout":          "Log out",
		"menu-back":            "Back",
		"menu-new-table":       "Start a new table",
		"menu-table-entry":     "{host}'s table, {players} players",
		"menu-join-player":     "Join as a player",
		"menu-join-spectator":  "Join as a spectator",
		"menu-language":        "Language",
		"menu-keeping-style":   "Dice keeping style",
		"menu-turn-sound":      "Turn sound: {state}",
		"menu-clear-kept":      "Clear kept dice on roll: {state}",
		"menu-saved-entry":     "{name} ({game}, saved {date})",
		"menu-no-saved-tables": "You have no saved tables.",
		"menu-restore-table":   "Restore",
		"menu-delete-table":    "Delete",

		"category-dice":  "Dice games",
		"category-cards": "Card games",

		"keeping-style-index": "By die position",
		"keeping-style-face":  "By face value",
		"keeping-style-set":   "Keeping style updated.",
		"language-set":        "Language set to {language}.",

		"table-create-failed": "Could not create the table.",
		"table-gone":          "That table is no longer available.",
		"table-full":          "That table is full.",
		"saved-table-deleted": "Saved table deleted.",
		"restore-failed":      "Could not restore that table.",
		"restore-pulled-in":   "{player} restored a saved table you were part of.",

		"restore-missing-players": "Cannot restore yet: {players} must be online and not in a game.",

		"leaderboard-line":  "{rank}. {player}, {score}",
		"leaderboard-empty": "Nobody is rated yet.",
		"stats-line":        "{game}: {played} played, {wins} won",
		"stats-empty":       "You have not finished any games yet.",
		"stats-games-played": "Games played: {count}",
		"stats-wins":         "Games won: {count}",
		"stats-rating":       "Rating: {score}",

		"user-online":  "{player} is online.",
		"user-offline": "{player} is offline.",

		// Lobby and standard actions.
		"action-start-game":            "Start game",
		"action-add-bot":               "Add a bot",
		"action-remove-bot":            "Remove a bot",
		"action-toggle-spectator":      "Switch between playing and spectating",
		"action-leave-game":            "Leave game",
		"action-show-actions":          "Actions menu",
		"action-save-table":            "Save table",
		"action-whose-turn":            "Whose turn is it?",
		"action-check-scores":          "Check scores",
		"action-check-scores-detailed": "Check detailed scores",
		"action-predict-outcomes":      "Predict outcomes",
		"action-estimate-duration":     "Estimate game duration",

		"game-started":             "The game begins!",
		"start-already-running":    "The game has already started.",
		"start-host-only":          "Only the host can start the game.",
		"start-need-players":       "Not enough players to start.",
		"start-teams-need-exact":   "Team play needs an exact number of players.",
		"lobby-waiting-only":       "You can only do that before the game starts.",
		"lobby-host-only":          "Only the host can do that.",
		"lobby-table-full":         "The table is full.",
		"lobby-no-bots":            "There are no bots to remove.",
		"lobby-humans-only":        "Bots cannot do that.",
		"player-joined":            "{player} has joined the table.",
		"player-left":              "{player} has left the table.",
		"player-left-bot-takeover": "{player} left; a bot plays on in their place.",
		"host-transferred":         "{player} is now the host.",
		"spectator-on":             "{player} is now spectating.",
		"spectator-off":            "{player} is now playing.",
		"team-announce":            "Team {number}: {a} and {b}.",

		"save-table-prompt": "Name this save:",
		"save-name-empty":   "The save needs a name.",
		"save-host-only":    "Only the host can save the table.",
		"save-failed":       "Saving failed.",
		"table-saved":       "Table saved as {name}. See you next time!",

		"whose-turn":        "It is {player}'s turn.",
		"whose-turn-you":    "It is your turn.",
		"whose-turn-nobody": "It is nobody's turn.",
		"turn-start":        "It is {player}'s turn.",
		"turn-start-you":    "It is your turn!",
		"turn-skipped":      "{player}'s turn is skipped.",
		"not-playing":       "The game is not in progress.",
		"not-your-turn":     "It is not your turn.",

		"scores-unavailable":  "Scores are not available.",
		"score-line":          "{player}: {score}",
		"predict-line":        "You beat {player} {percent} percent of the time.",
		"predict-unavailable": "Predictions are not available.",

		"estimate-waiting-only": "Estimates only run before the game starts.",
		"estimate-running":      "An estimate is already running.",
		"estimate-unavailable":  "Estimation is not available.",
		"estimate-started":      "Estimating game duration, one moment...",
		"estimate-failed":       "Every estimation run failed.",
		"estimate-result":       "Across {samples} simulated games: about {bot} of bot play, roughly {human} with people, give or take {spread}.",
		"duration-seconds":      "{seconds} seconds",
		"duration-minutes":      "{minutes} minutes {seconds} seconds",
		"duration-hours":        "{hours} hours {minutes} minutes",

		// Options.
		"option-changed":        "{player} set {option}",
		"option-invalid-number": "That is not a valid number.",
		"option-on":             "on",
		"option-off":            "off",
		"options-locked":        "Options are locked once the game starts.",
		"options-host-only":     "Only the host can change options.",

		// Pig.
		"game-pig":       "Pig",
		"pig-opt-target": "Target score: {value}",
		"pig-opt-teams":  "Team mode: {value}",
		"pig-action-roll": "Roll",
		"pig-action-bank": "Bank",
		"pig-rolled":      "{player} rolled a {die}, for {round} this turn.",
		"pig-rolled-you":  "You rolled a {die}, for {round} this turn.",
		"pig-bust":        "{player} rolled a one and busts!",
		"pig-bust-you":    "You rolled a one. Bust!",
		"pig-banked":      "{player} banks {round}, for a total of {total}.",
		"pig-banked-you":  "You bank {round}, for a total of {total}.",
		"pig-team-total":  "Team {number} now has {total}.",
		"pig-winner":      "{player} wins the game!",
		"pig-round-line":  "{player}: {round} this turn",

		// Farkle.
		"game-farkle":       "Farkle",
		"farkle-opt-target":  "Target score: {value}",
		"farkle-opt-opening": "Opening score to get on the board: {value}",
		"farkle-opt-teams":   "Team mode: {value}",
		"farkle-action-roll": "Roll",
		"farkle-action-bank": "Bank",
		"farkle-die":         "Keep die {index}: {value}",
		"farkle-die-kept":    "Release die {index}: {value}",
		"farkle-roll-first":  "Roll before keeping dice.",
		"dice-locked":        "That die is locked.",
		"farkle-keeping":     "{player} keeps a {value}.",
		"farkle-keeping-you": "Keeping {value}.",
		"farkle-unkeeping":   "{player} releases a {value}.",
		"farkle-unkeeping-you": "Releasing {value}.",
		"farkle-rolled":        "{player} rolled: {dice}.",
		"farkle-rolled-you":    "You rolled: {dice}.",
		"farkle-must-keep":     "Keep at least one scoring die first.",
		"farkle-hot-dice":      "Hot dice! All six come back.",
		"farkle-bust":          "{player} farkled and loses {lost}!",
		"farkle-bust-you":      "Farkle! You lose {lost}.",
		"farkle-nothing-to-bank": "There is nothing to bank yet.",
		"farkle-opening-short":   "You need {needed} in one turn to get on the board.",
		"farkle-banked":          "{player} banks {round}, for a total of {total}.",
		"farkle-banked-you":      "You bank {round}, for a total of {total}.",
		"farkle-team-total":      "Team {number} now has {total}.",
		"farkle-winner":          "{player} wins the game!",
		"farkle-turn-line":       "{player}: {round} pending this turn",

		// Hold'em.
		"game-holdem":              "Texas Hold'em",
		"holdem-opt-small-blind":   "Small blind: {value}",
		"holdem-opt-big-blind":     "Big blind: {value}",
		"holdem-opt-starting-chips": "Starting chips: {value}",
		"holdem-action-check":      "Check",
		"holdem-action-call":       "Call {amount}",
		"holdem-action-raise":      "Raise",
		"holdem-action-fold":       "Fold",
		"holdem-action-all-in":     "Go all in",
		"holdem-action-show-hand":  "Review your hand",
		"holdem-raise-prompt":      "Raise by how much?",
		"holdem-hand-start":        "Hand {hand}. Shuffling up and dealing.",
		"holdem-your-hand":         "Your hand: {cards}.",
		"holdem-hand-and-board":    "Your hand: {cards}. Board: {board}.",
		"holdem-board":             "Board: {cards}.",
		"holdem-no-hand":           "You have no cards yet.",
		"holdem-posts-small-blind": "{player} posts the small blind of {amount}.",
		"holdem-posts-big-blind":   "{player} posts the big blind of {amount}.",
		"holdem-check":             "{player} checks.",
		"holdem-check-you":         "You check.",
		"holdem-call":              "{player} calls {amount}.",
		"holdem-call-you":          "You call {amount}.",
		"holdem-raise":             "{player} raises {amount}, to {bet}.",
		"holdem-raise-you":         "You raise {amount}, to {bet}.",
		"holdem-fold":              "{player} folds.",
		"holdem-fold-you":          "You fold.",
		"holdem-all-in":            "{player} is all in for {amount}!",
		"holdem-all-in-you":        "You are all in for {amount}!",
		"holdem-folded":            "You have folded this hand.",
		"holdem-already-all-in":    "You are already all in.",
		"holdem-not-enough-chips":  "You do not have enough chips for that.",
		"poker-raise-too-small":    "The raise must be at least the size of the last raise.",
		"holdem-shows":             "{player} shows {cards}: {hand}.",
		"holdem-wins-pot":          "{player} wins {amount}.",
		"holdem-tournament-winner": "{player} wins the tournament!",
		"holdem-chip-line":         "{player}: {chips} chips",
		"holdem-pot-line":          "Pot: {pot}, current bet: {bet}",

		// Cards.
		"card-name":     "{rank} of {suit}",
		"card-ace":      "ace",
		"card-king":     "king",
		"card-queen":    "queen",
		"card-jack":     "jack",
		"card-spades":   "spades",
		"card-hearts":   "hearts",
		"card-diamonds": "diamonds",
		"card-clubs":    "clubs",
	})
}
