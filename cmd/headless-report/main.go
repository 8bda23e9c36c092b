package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/clout-chase/internal/sim"
)

type reportConfig struct {
	runs     int
	ticks    int
	seedBase int64
	seedStep int64
	caution  float64
}

func main() {
	var cfg reportConfig
	var copyOut bool

	flag.IntVar(&cfg.runs, "runs", 20, "number of autopilot sessions")
	flag.IntVar(&cfg.ticks, "ticks", 3000, "tick limit per session")
	flag.Int64Var(&cfg.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&cfg.seedStep, "seed-step", 1, "seed increment between runs")
	flag.Float64Var(&cfg.caution, "caution", sim.NewAutopilot().Caution, "autopilot pursuer avoidance weight")
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the clipboard")
	flag.Parse()

	if err := cfg.validate(); err != nil {
		fmt.Println("error:", err)
		os.Exit(2)
	}

	var sb strings.Builder
	writeReport(io.MultiWriter(os.Stdout, &sb), cfg)

	if copyOut {
		if err := clipboard.WriteAll(sb.String()); err != nil {
			fmt.Println("error: copy to clipboard:", err)
			os.Exit(1)
		}
		fmt.Println("(report copied to clipboard)")
	}
}

func (c reportConfig) validate() error {
	if c.runs <= 0 {
		return fmt.Errorf("-runs must be > 0")
	}
	if c.ticks <= 0 {
		return fmt.Errorf("-ticks must be > 0")
	}
	if c.caution < 0 {
		return fmt.Errorf("-caution must be >= 0")
	}
	return nil
}

// writeReport plays every session and writes the per-run blocks followed by
// the aggregate and the balance verdict.
func writeReport(w io.Writer, cfg reportConfig) []sim.RunReport {
	fmt.Fprintf(w, "=== Headless Chase Report ===\n")
	fmt.Fprintf(w, "runs=%d ticks=%d seed_base=%d seed_step=%d caution=%.2f\n\n",
		cfg.runs, cfg.ticks, cfg.seedBase, cfg.seedStep, cfg.caution)

	all := make([]sim.RunReport, 0, cfg.runs)
	for i := 0; i < cfg.runs; i++ {
		seed := cfg.seedBase + int64(i)*cfg.seedStep
		rep := runSession(i+1, seed, cfg)
		all = append(all, rep)
		fmt.Fprint(w, rep.Format())
		fmt.Fprintln(w)
	}

	summary := sim.Summarize(all)
	fmt.Fprint(w, summary.Format())
	verdict, reason := assessBalance(summary)
	fmt.Fprintf(w, "balance=%s reason=%s\n", verdict, reason)
	return all
}

func runSession(runIndex int, seed int64, cfg reportConfig) sim.RunReport {
	pilot := sim.NewAutopilot()
	pilot.Caution = cfg.caution
	ts := sim.NewTestSim(
		sim.WithSeed(seed),
		sim.WithAutopilot(pilot),
	)
	ts.RunTicks(cfg.ticks)
	return sim.BuildReport(runIndex, seed, ts)
}

// assessBalance classifies a batch. Catches dominating losses with a low win
// rate mean the pursuer is too strong; near-certain wins mean it is too weak.
func assessBalance(s sim.Summary) (string, string) {
	if s.Runs == 0 {
		return "unknown", "no_runs"
	}
	finished := s.Runs - s.Unfinished
	if finished*2 < s.Runs {
		return "unknown", fmt.Sprintf("too_many_unfinished(%d/%d)", s.Unfinished, s.Runs)
	}
	rate := s.WinRate()
	var reasons []string
	if s.Caught > s.SelfCollision && s.Caught > s.Wins {
		reasons = append(reasons, "pursuer_dominant")
	}
	if s.SelfCollision > s.Caught {
		reasons = append(reasons, "self_collision_dominant")
	}
	switch {
	case rate < 20:
		reasons = append(reasons, fmt.Sprintf("win_rate_%.0f_below_20", rate))
		return "too_hard", strings.Join(reasons, ",")
	case rate > 90:
		reasons = append(reasons, fmt.Sprintf("win_rate_%.0f_above_90", rate))
		return "too_easy", strings.Join(reasons, ",")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "within_band")
	}
	return "balanced", strings.Join(reasons, ",")
}
