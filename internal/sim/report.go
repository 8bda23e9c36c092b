package sim

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RunReport summarises one autopilot session.
type RunReport struct {
	RunIndex int
	Seed     int64

	Outcome State
	Cause   LossCause
	Ticks   int
	Score   int
	Pickups int
	Reward  string

	// Tick of each pickup, in order.
	PickupTicks []int
	// Direction commits and rejected reversals seen by the engine.
	Turns    int
	Rejected int

	FinalInterval time.Duration
	// Virtual time the session took.
	Elapsed time.Duration
}

// RunAutopilot plays one seeded session with the default Autopilot and
// returns its report. The session stops at a terminal state or after
// maxTicks.
func RunAutopilot(runIndex int, seed int64, maxTicks int, t Tuning) RunReport {
	ts := NewTestSim(
		WithSeed(seed),
		WithSimTuning(t),
		WithAutopilot(NewAutopilot()),
	)
	ts.RunTicks(maxTicks)
	return BuildReport(runIndex, seed, ts)
}

// BuildReport reads a finished TestSim.
func BuildReport(runIndex int, seed int64, ts *TestSim) RunReport {
	snap := ts.Snapshot()
	rep := RunReport{
		RunIndex:      runIndex,
		Seed:          seed,
		Outcome:       snap.State,
		Cause:         snap.Cause,
		Ticks:         snap.Tick,
		Score:         snap.Score,
		Pickups:       snap.Pickups,
		Reward:        snap.RewardID,
		Turns:         ts.Log.CountCategory("direction", "commit"),
		Rejected:      ts.Log.CountCategory("direction", "rejected"),
		FinalInterval: snap.Interval,
		Elapsed:       ts.Sched.Now(),
	}
	for _, e := range ts.Log.Filter("pickup", "collect") {
		rep.PickupTicks = append(rep.PickupTicks, e.Tick)
	}
	return rep
}

// Format renders the report as key=value lines.
func (r RunReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Run %d (seed=%d) ---\n", r.RunIndex, r.Seed)
	outcome := r.Outcome.String()
	if r.Outcome == StateLost {
		outcome += ":" + r.Cause.String()
	}
	fmt.Fprintf(&sb, "outcome=%s ticks=%d score=%d pickups=%d\n", outcome, r.Ticks, r.Score, r.Pickups)
	fmt.Fprintf(&sb, "pickup_ticks=%s\n", joinInts(r.PickupTicks))
	fmt.Fprintf(&sb, "turns=%d rejected=%d final_interval=%v elapsed=%v\n", r.Turns, r.Rejected, r.FinalInterval, r.Elapsed)
	if r.Reward != "" {
		fmt.Fprintf(&sb, "reward=%s\n", r.Reward)
	}
	return sb.String()
}

// Summary aggregates a batch of runs.
type Summary struct {
	Runs          int
	Wins          int
	Caught        int
	SelfCollision int
	Unfinished    int

	AvgTicks   float64
	AvgPickups float64
	// Average tick of the first pickup over runs that had one; -1 if none.
	AvgFirstPickup float64

	Rewards map[string]int
}

// Summarize folds reports into a Summary.
func Summarize(reports []RunReport) Summary {
	s := Summary{Runs: len(reports), AvgFirstPickup: -1, Rewards: map[string]int{}}
	if len(reports) == 0 {
		return s
	}
	ticks, pickups, firstSum, firstN := 0, 0, 0, 0
	for _, r := range reports {
		switch {
		case r.Outcome == StateWon:
			s.Wins++
			s.Rewards[r.Reward]++
		case r.Outcome == StateLost && r.Cause == LossCaught:
			s.Caught++
		case r.Outcome == StateLost:
			s.SelfCollision++
		default:
			s.Unfinished++
		}
		ticks += r.Ticks
		pickups += r.Pickups
		if len(r.PickupTicks) > 0 {
			firstSum += r.PickupTicks[0]
			firstN++
		}
	}
	s.AvgTicks = float64(ticks) / float64(len(reports))
	s.AvgPickups = float64(pickups) / float64(len(reports))
	if firstN > 0 {
		s.AvgFirstPickup = float64(firstSum) / float64(firstN)
	}
	return s
}

// WinRate is wins over runs, in percent.
func (s Summary) WinRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Runs) * 100
}

// Format renders the aggregate block.
func (s Summary) Format() string {
	var sb strings.Builder
	sb.WriteString("=== Aggregate ===\n")
	fmt.Fprintf(&sb, "runs=%d wins=%d caught=%d self_collision=%d unfinished=%d win_rate=%.0f%%\n",
		s.Runs, s.Wins, s.Caught, s.SelfCollision, s.Unfinished, s.WinRate())
	first := "n/a"
	if s.AvgFirstPickup >= 0 {
		first = fmt.Sprintf("%.1f", s.AvgFirstPickup)
	}
	fmt.Fprintf(&sb, "avg_ticks=%.1f avg_pickups=%.1f avg_first_pickup=%s\n", s.AvgTicks, s.AvgPickups, first)
	ids := make([]string, 0, len(s.Rewards))
	for id := range s.Rewards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s(%d)", id, s.Rewards[id]))
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	fmt.Fprintf(&sb, "rewards=%s\n", strings.Join(parts, ","))
	return sb.String()
}

func joinInts(vals []int) string {
	if len(vals) == 0 {
		return "none"
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
