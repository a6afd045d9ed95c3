// Package rating maintains per-(player, game type) skill ratings using
// the TrueSkill model: each player carries a Gaussian skill belief
// (mu, sigma) and finished games move the beliefs toward the observed
// ranking. Leaderboards sort by the conservative ordinal mu - 3*sigma.
package rating

import (
	"fmt"
	"math"

	"github.com/decred/slog"
)

const (
	// DefaultMu is the prior mean skill.
	DefaultMu = 25.0
	// DefaultSigma is the prior skill uncertainty.
	DefaultSigma = DefaultMu / 3.0

	// beta is the skill distance giving ~76% win probability.
	beta = DefaultSigma / 2.0
	// tau keeps ratings from freezing as sigma shrinks.
	tau = DefaultSigma / 100.0
	// drawProbability feeds the draw margin used for tied ranks.
	drawProbability = 0.10

	// sigma may never collapse entirely.
	minSigma = 0.01
)

// Rating is one player's skill belief for one game type.
type Rating struct {
	Mu    float64
	Sigma float64
}

// Default returns the prior rating for an unrated player.
func Default() Rating {
	return Rating{Mu: DefaultMu, Sigma: DefaultSigma}
}

// Ordinal is the conservative skill estimate used for ordering.
func (r Rating) Ordinal() float64 {
	return r.Mu - 3.0*r.Sigma
}

// Entry is one leaderboard row.
type Entry struct {
	PlayerID string
	Name     string
	Rating   Rating
}

// Store is the persistence surface the engine needs.
type Store interface {
	GetRating(playerID, gameType string) (Rating, bool, error)
	PutRating(playerID, gameType string, r Rating) error
	TopRatings(gameType string, limit int) ([]Entry, error)
}

// Engine applies rating updates and answers rating queries.
type Engine struct {
	log   slog.Logger
	store Store
}

// NewEngine creates an engine over the given store.
func NewEngine(store Store, log slog.Logger) *Engine {
	return &Engine{log: log, store: store}
}

// Rating returns the stored rating for a player, or the prior when
// none exists (or the store errors; the error is logged, not raised).
func (e *Engine) Rating(playerID, gameType string) Rating {
	r, ok, err := e.store.GetRating(playerID, gameType)
	if err != nil {
		e.log.Errorf("get rating %s/%s: %v", playerID, gameType, err)
		return Default()
	}
	if !ok {
		return Default()
	}
	return r
}

// UpdateRatings applies one finished game. rankings lists player-id
// groups from first place to last; members of the same group tied.
// The multi-player outcome is folded into adjacent pairwise updates.
func (e *Engine) UpdateRatings(gameType string, rankings [][]string) error {
	var flat []string
	group := map[string]int{}
	for gi, g := range rankings {
		for _, id := range g {
			flat = append(flat, id)
			group[id] = gi
		}
	}
	if len(flat) < 2 {
		return nil
	}

	current := make(map[string]Rating, len(flat))
	for _, id := range flat {
		current[id] = e.Rating(id, gameType)
	}

	for i := 0; i+1 < len(flat); i++ {
		a, b := flat[i], flat[i+1]
		ra, rb := current[a], current[b]
		if group[a] == group[b] {
			ra, rb = adjustPair(ra, rb, true)
		} else {
			ra, rb = adjustPair(ra, rb, false)
		}
		current[a], current[b] = ra, rb
	}

	for _, id := range flat {
		if err := e.store.PutRating(id, gameType, current[id]); err != nil {
			return fmt.Errorf("put rating %s/%s: %w", id, gameType, err)
		}
	}
	return nil
}

// Leaderboard returns up to limit entries ordered by ordinal.
func (e *Engine) Leaderboard(gameType string, limit int) ([]Entry, error) {
	return e.store.TopRatings(gameType, limit)
}

// PredictWinProbability is the head-to-head chance that a beats b.
// PredictWinProbability(a,b) + PredictWinProbability(b,a) == 1.
func PredictWinProbability(a, b Rating) float64 {
	denom := math.Sqrt(2*beta*beta + a.Sigma*a.Sigma + b.Sigma*b.Sigma)
	return normCDF((a.Mu - b.Mu) / denom)
}

// adjustPair performs the two-player TrueSkill update. winner is the
// first argument unless draw is true.
func adjustPair(w, l Rating, draw bool) (Rating, Rating) {
	// Additive dynamics keep old ratings movable.
	wVar := w.Sigma*w.Sigma + tau*tau
	lVar := l.Sigma*l.Sigma + tau*tau

	c := math.Sqrt(2*beta*beta + wVar + lVar)
	eps := drawMargin()

	t := (w.Mu - l.Mu) / c
	e := eps / c

	var vw, ww, vl, wl float64
	if draw {
		vw = vDraw(t, e)
		ww = wDraw(t, e)
		vl = vDraw(-t, e)
		wl = wDraw(-t, e)
	} else {
		vw = vWin(t, e)
		ww = wWin(t, e)
		vl = -vw
		wl = ww
	}

	newW := Rating{
		Mu:    w.Mu + (wVar/c)*vw,
		Sigma: shrink(wVar, c, ww),
	}
	newL := Rating{
		Mu:    l.Mu + (lVar/c)*vl,
		Sigma: shrink(lVar, c, wl),
	}
	return newW, newL
}

func shrink(variance, c, w float64) float64 {
	f := 1.0 - (variance/(c*c))*w
	if f < 0 {
		f = 0
	}
	s := math.Sqrt(variance * f)
	if s < minSigma {
		s = minSigma
	}
	return s
}

// drawMargin converts the draw probability into a performance margin.
func drawMargin() float64 {
	return normPPF((drawProbability+1)/2) * math.Sqrt(2) * beta
}

func vWin(t, e float64) float64 {
	denom := normCDF(t - e)
	if denom < 1e-10 {
		return -(t - e)
	}
	return normPDF(t-e) / denom
}

func wWin(t, e float64) float64 {
	v := vWin(t, e)
	return v * (v + t - e)
}

func vDraw(t, e float64) float64 {
	denom := normCDF(e-t) - normCDF(-e-t)
	if denom < 1e-10 {
		if t > 0 {
			return -t - e
		}
		return -t + e
	}
	return (normPDF(-e-t) - normPDF(e-t)) / denom
}

func wDraw(t, e float64) float64 {
	denom := normCDF(e-t) - normCDF(-e-t)
	if denom < 1e-10 {
		return 1.0
	}
	v := vDraw(t, e)
	return v*v + ((e-t)*normPDF(e-t)+(e+t)*normPDF(e+t))/denom
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPPF inverts normCDF by bisection; it only runs on the constant
// draw margin so precision beats speed.
func normPPF(p float64) float64 {
	lo, hi := -10.0, 10.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if normCDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
