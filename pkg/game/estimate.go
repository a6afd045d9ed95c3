package game

import (
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/parlorgames/parlor/pkg/i18n"
)

const (
	estimateRuns    = 10
	estimateTimeout = 10 * time.Minute
)

// estimateRun collects the results of the headless simulations. The
// goroutines only touch this struct; the game thread polls it each
// tick and folds the summary back into the single-threaded world.
type estimateRun struct {
	mu        sync.Mutex
	remaining int
	results   []int64
	errs      []string
}

type simOutput struct {
	Ticks int64 `json:"ticks"`
}

func (b *Base) canEstimate(p *Player) string {
	if b.Status != StatusWaiting {
		return "estimate-waiting-only"
	}
	if b.estimate != nil {
		return "estimate-running"
	}
	return ""
}

// actionEstimateDuration launches the bot-only simulations. Results
// arrive asynchronously and are announced from pollEstimate.
func (b *Base) actionEstimateDuration(p *Player, ctx *ActionContext) {
	bots := len(b.ActivePlayers())
	if bots < b.def.MinPlayers {
		bots = b.def.MinPlayers
	}
	args := b.host.SimulateArgs(b.GameType, b.OptionsJSON(), bots)
	if len(args) == 0 {
		b.SpeakL(p, "estimate-unavailable", nil)
		return
	}
	run := &estimateRun{remaining: estimateRuns}
	b.estimate = run
	b.BroadcastL("estimate-started", nil, nil)
	for i := 0; i < estimateRuns; i++ {
		go run.execute(args)
	}
}

func (r *estimateRun) execute(args []string) {
	cctx, cancel := context.WithTimeout(context.Background(), estimateTimeout)
	defer cancel()
	out, err := exec.CommandContext(cctx, args[0], args[1:]...).Output()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining--
	if err != nil {
		r.errs = append(r.errs, err.Error())
		return
	}
	var res simOutput
	if jerr := json.Unmarshal(lastLine(out), &res); jerr != nil {
		r.errs = append(r.errs, jerr.Error())
		return
	}
	r.results = append(r.results, res.Ticks)
}

// lastLine returns the final non-empty line of the output; the
// simulation may log before printing its result object.
func lastLine(out []byte) []byte {
	end := len(out)
	for end > 0 && (out[end-1] == '\n' || out[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && out[start-1] != '\n' {
		start--
	}
	return out[start:end]
}

// pollEstimate runs every tick; once all simulations are done it
// summarizes and broadcasts.
func (b *Base) pollEstimate() {
	run := b.estimate
	if run == nil {
		return
	}
	run.mu.Lock()
	if run.remaining > 0 {
		run.mu.Unlock()
		return
	}
	results := run.results
	failures := len(run.errs)
	run.mu.Unlock()
	b.estimate = nil

	if len(results) == 0 {
		b.log.Warnf("game %s: all %d estimation runs failed", b.GameType, failures)
		b.BroadcastL("estimate-failed", nil, nil)
		return
	}

	trimmed := trimOutliers(results)
	mean, stddev := meanStddev(trimmed)
	factor := b.def.HumanFactor
	if factor <= 0 {
		factor = 2
	}
	for _, p := range b.Players {
		b.SpeakL(p, "estimate-result", i18n.Args{
			"samples": strconv.Itoa(len(trimmed)),
			"bot":     formatTicks(p.Locale(), int64(mean)),
			"human":   formatTicks(p.Locale(), int64(mean*factor)),
			"spread":  formatTicks(p.Locale(), int64(stddev)),
		})
	}
}

// trimOutliers drops samples outside 1.5 IQR of the quartiles.
func trimOutliers(samples []int64) []int64 {
	if len(samples) < 4 {
		return samples
	}
	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	q1 := float64(sorted[len(sorted)/4])
	q3 := float64(sorted[len(sorted)*3/4])
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr
	var out []int64
	for _, s := range sorted {
		if float64(s) >= lo && float64(s) <= hi {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return sorted
	}
	return out
}

func meanStddev(samples []int64) (float64, float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))
	var sq float64
	for _, s := range samples {
		d := float64(s) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(samples)))
}

// formatTicks renders a tick count as a localized coarse duration.
func formatTicks(locale string, ticks int64) string {
	secs := ticks / TicksPerSecond
	if secs < 60 {
		return i18n.T(locale, "duration-seconds", i18n.Args{"seconds": strconv.FormatInt(secs, 10)})
	}
	mins := secs / 60
	secs %= 60
	if mins < 60 {
		return i18n.T(locale, "duration-minutes", i18n.Args{
			"minutes": strconv.FormatInt(mins, 10),
			"seconds": strconv.FormatInt(secs, 10),
		})
	}
	hours := mins / 60
	mins %= 60
	return i18n.T(locale, "duration-hours", i18n.Args{
		"hours":   strconv.FormatInt(hours, 10),
		"minutes": strconv.FormatInt(mins, 10),
	})
}
