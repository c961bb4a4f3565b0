package session

import (
	"fmt"
	"time"

	"github.com/abhisek/examprep/internal/config"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/timer"
)

// Strategy selects how the planner samples questions for a mode.
type Strategy string

const (
	// StrategyDistribute spreads Count questions evenly across chapters.
	StrategyDistribute Strategy = "distribute"
	// StrategyFlat samples Count questions from a single source.
	StrategyFlat Strategy = "flat"
	// StrategyListAll presents the whole pool in bank order.
	StrategyListAll Strategy = "list-all"
	// StrategyShuffleAll presents the whole pool shuffled.
	StrategyShuffleAll Strategy = "shuffle-all"
)

// ModePlan describes how sessions in a mode are built and timed.
type ModePlan struct {
	Mode      exam.Mode
	Strategy  Strategy
	Count     int
	TimeLimit time.Duration

	// RetryWrong keeps the learner on a question until it is answered
	// correctly. Every try is a ledger row.
	RetryWrong bool

	Timed bool
}

// NewTimer returns the timer variant for the plan. onExpire is only used by
// countdowns.
func (p ModePlan) NewTimer(onExpire func()) timer.Timer {
	if p.Timed {
		return timer.NewCountdown(p.TimeLimit, onExpire)
	}
	return timer.NewElapsed()
}

// DefaultPlans returns the plans for every mode with default counts and
// limits.
func DefaultPlans() map[exam.Mode]ModePlan {
	return PlansFromConfig(config.DefaultConfig())
}

// PlansFromConfig builds the mode plans, taking counts and limits for the
// timed modes from cfg.
func PlansFromConfig(cfg config.Config) map[exam.Mode]ModePlan {
	plans := map[exam.Mode]ModePlan{
		exam.ModeChapterwise: {Mode: exam.ModeChapterwise, Strategy: StrategyShuffleAll},
		exam.ModeLearn:       {Mode: exam.ModeLearn, Strategy: StrategyListAll, RetryWrong: true},
	}
	timed := map[exam.Mode]Strategy{
		exam.ModeQuickTest: StrategyDistribute,
		exam.ModeFullTest:  StrategyDistribute,
		exam.ModeBankQuick: StrategyFlat,
		exam.ModeBankFull:  StrategyFlat,
	}
	defaults := config.DefaultConfig().Plans
	for mode, strategy := range timed {
		pc, ok := cfg.Plans[mode]
		if !ok {
			pc = defaults[mode]
		}
		plans[mode] = ModePlan{
			Mode:      mode,
			Strategy:  strategy,
			Count:     pc.Count,
			TimeLimit: pc.TimeLimit,
			Timed:     true,
		}
	}
	return plans
}

func planFor(plans map[exam.Mode]ModePlan, mode exam.Mode) (ModePlan, error) {
	p, ok := plans[mode]
	if !ok {
		return ModePlan{}, fmt.Errorf("unknown mode %q", mode)
	}
	return p, nil
}
