package game

// Team modes.
const (
	TeamModeIndividual = "individual"
	TeamMode2v2        = "2v2"
	TeamMode2v2v2      = "2v2v2"
)

// Team is a scoring unit of two players.
type Team struct {
	Number    int      `json:"number"`
	PlayerIDs []string `json:"player_ids"`
	Score     int      `json:"score"`
}

// TeamManager tracks the team arrangement and team scores. In
// individual mode it is dormant and every player scores alone.
type TeamManager struct {
	Mode  string  `json:"mode"`
	Teams []*Team `json:"teams,omitempty"`
}

// NewTeamManager starts in individual mode.
func NewTeamManager() *TeamManager {
	return &TeamManager{Mode: TeamModeIndividual}
}

// Enabled reports whether team play is active.
func (tm *TeamManager) Enabled() bool {
	return tm != nil && tm.Mode != TeamModeIndividual && tm.Mode != ""
}

// RequiredPlayers returns the exact active player count the mode
// needs, or 0 when any count is fine.
func (tm *TeamManager) RequiredPlayers() int {
	if tm == nil {
		return 0
	}
	switch tm.Mode {
	case TeamMode2v2:
		return 4
	case TeamMode2v2v2:
		return 6
	}
	return 0
}

// Assign splits the given player ids (already shuffled by the caller's
// deterministic RNG) into teams of two, in order: ids[0] and ids[1]
// become team 1, and so on.
func (tm *TeamManager) Assign(ids []string) {
	tm.Teams = nil
	if !tm.Enabled() {
		return
	}
	num := 1
	for i := 0; i+1 < len(ids); i += 2 {
		tm.Teams = append(tm.Teams, &Team{
			Number:    num,
			PlayerIDs: []string{ids[i], ids[i+1]},
		})
		num++
	}
}

// InterleavedOrder returns a turn order with teammates spread apart:
// the first member of each team, then the second member of each team.
// Non-team mode returns ids unchanged.
func (tm *TeamManager) InterleavedOrder(ids []string) []string {
	if !tm.Enabled() || len(tm.Teams) == 0 {
		return ids
	}
	out := make([]string, 0, len(ids))
	for round := 0; round < 2; round++ {
		for _, t := range tm.Teams {
			if round < len(t.PlayerIDs) {
				out = append(out, t.PlayerIDs[round])
			}
		}
	}
	// Keep any id that was never assigned to a team (spectator slips
	// should not vanish from the rotation).
	for _, id := range ids {
		if tm.TeamOf(id) == nil {
			out = append(out, id)
		}
	}
	return out
}

// TeamOf returns the team containing the player id, or nil.
func (tm *TeamManager) TeamOf(playerID string) *Team {
	if tm == nil {
		return nil
	}
	for _, t := range tm.Teams {
		for _, id := range t.PlayerIDs {
			if id == playerID {
				return t
			}
		}
	}
	return nil
}

// AddScore credits points to the player's team. Returns the team, or
// nil in individual mode.
func (tm *TeamManager) AddScore(playerID string, points int) *Team {
	t := tm.TeamOf(playerID)
	if t != nil {
		t.Score += points
	}
	return t
}

// ResetScores zeroes every team's score.
func (tm *TeamManager) ResetScores() {
	for _, t := range tm.Teams {
		t.Score = 0
	}
}

// RankedGroups orders team members into ranking groups by descending
// team score, teammates tied within one group. Used when a team game
// reports rankings for the rating update.
func (tm *TeamManager) RankedGroups() [][]string {
	if !tm.Enabled() || len(tm.Teams) == 0 {
		return nil
	}
	sorted := make([]*Team, len(tm.Teams))
	copy(sorted, tm.Teams)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Score > sorted[j-1].Score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	var groups [][]string
	for i := 0; i < len(sorted); {
		group := append([]string{}, sorted[i].PlayerIDs...)
		j := i + 1
		for j < len(sorted) && sorted[j].Score == sorted[i].Score {
			group = append(group, sorted[j].PlayerIDs...)
			j++
		}
		groups = append(groups, group)
		i = j
	}
	return groups
}
