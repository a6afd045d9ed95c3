package rating

import (
	"sort"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	ratings map[string]Rating
}

func newMemStore() *memStore {
	return &memStore{ratings: make(map[string]Rating)}
}

func (s *memStore) GetRating(playerID, gameType string) (Rating, bool, error) {
	r, ok := s.ratings[playerID+"/"+gameType]
	return r, ok, nil
}

func (s *memStore) PutRating(playerID, gameType string, r Rating) error {
	s.ratings[playerID+"/"+gameType] = r
	return nil
}

func (s *memStore) TopRatings(gameType string, limit int) ([]Entry, error) {
	var out []Entry
	for k, r := range s.ratings {
		out = append(out, Entry{PlayerID: k, Rating: r})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Rating.Ordinal() > out[j].Rating.Ordinal()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestDefaultOrdinalIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, Default().Ordinal(), 1e-9)
}

func TestPredictWinProbabilitySymmetry(t *testing.T) {
	a := Rating{Mu: 30, Sigma: 2}
	b := Rating{Mu: 24, Sigma: 6}

	pa := PredictWinProbability(a, b)
	pb := PredictWinProbability(b, a)
	assert.InDelta(t, 1.0, pa+pb, 1e-9)
	assert.Greater(t, pa, 0.5, "the stronger player is favored")

	even := PredictWinProbability(Default(), Default())
	assert.InDelta(t, 0.5, even, 1e-9)
}

func TestUpdateMovesWinnerUp(t *testing.T) {
	store := newMemStore()
	e := NewEngine(store, slog.Disabled)

	require.NoError(t, e.UpdateRatings("pig", [][]string{{"w"}, {"l"}}))

	w := e.Rating("w", "pig")
	l := e.Rating("l", "pig")
	assert.Greater(t, w.Mu, DefaultMu)
	assert.Less(t, l.Mu, DefaultMu)
	assert.Less(t, w.Sigma, DefaultSigma, "an observed game reduces uncertainty")
	assert.Less(t, l.Sigma, DefaultSigma)
}

func TestUpdateDrawPullsTogether(t *testing.T) {
	store := newMemStore()
	store.ratings["hi/pig"] = Rating{Mu: 32, Sigma: 3}
	store.ratings["lo/pig"] = Rating{Mu: 18, Sigma: 3}
	e := NewEngine(store, slog.Disabled)

	require.NoError(t, e.UpdateRatings("pig", [][]string{{"hi", "lo"}}))

	hi := e.Rating("hi", "pig")
	lo := e.Rating("lo", "pig")
	assert.Less(t, hi.Mu, 32.0, "a draw against a weaker player costs skill")
	assert.Greater(t, lo.Mu, 18.0)
}

func TestUpdateIgnoresSoloGame(t *testing.T) {
	store := newMemStore()
	e := NewEngine(store, slog.Disabled)

	require.NoError(t, e.UpdateRatings("pig", [][]string{{"only"}}))
	assert.Empty(t, store.ratings)
}

func TestRepeatedWinsConverge(t *testing.T) {
	store := newMemStore()
	e := NewEngine(store, slog.Disabled)

	for i := 0; i < 20; i++ {
		require.NoError(t, e.UpdateRatings("farkle", [][]string{{"champ"}, {"chump"}}))
	}

	champ := e.Rating("champ", "farkle")
	chump := e.Rating("chump", "farkle")
	assert.Greater(t, champ.Ordinal(), chump.Ordinal())
	assert.Greater(t, PredictWinProbability(champ, chump), 0.7)
	assert.GreaterOrEqual(t, champ.Sigma, minSigma)
}

func TestLeaderboardOrdersByOrdinal(t *testing.T) {
	store := newMemStore()
	e := NewEngine(store, slog.Disabled)

	require.NoError(t, e.UpdateRatings("pig", [][]string{{"a"}, {"b"}, {"c"}}))

	entries, err := e.Leaderboard("pig", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.GreaterOrEqual(t, entries[0].Rating.Ordinal(), entries[1].Rating.Ordinal())
}
