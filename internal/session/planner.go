package session

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/sampler"
	"github.com/abhisek/examprep/internal/store"
)

// Planner picks the questions for a new session.
type Planner struct {
	Source store.QuestionSource
	Plans  map[exam.Mode]ModePlan

	// BankSource is used by the bank modes when no topic is given.
	BankSource string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlanner creates a Planner. A nil rng uses the global random source.
func NewPlanner(src store.QuestionSource, plans map[exam.Mode]ModePlan, rng *rand.Rand) *Planner {
	if plans == nil {
		plans = DefaultPlans()
	}
	return &Planner{Source: src, Plans: plans, rng: rng}
}

// Plan returns the plan for mode.
func (p *Planner) Plan(mode exam.Mode) (ModePlan, error) {
	return planFor(p.Plans, mode)
}

// Select samples questions for mode. topicID names the chapter for the
// chapter modes and the source for the bank modes; the exam modes ignore it.
// An empty result is not an error.
func (p *Planner) Select(ctx context.Context, mode exam.Mode, topicID string) (sampler.Result, error) {
	plan, err := p.Plan(mode)
	if err != nil {
		return sampler.Result{}, err
	}

	switch plan.Strategy {
	case StrategyShuffleAll, StrategyListAll:
		if topicID == "" && mode == exam.ModeChapterwise {
			return sampler.Result{}, fmt.Errorf("%s mode needs a chapter", mode)
		}
		var f store.Filter
		if topicID != "" {
			f.Chapters = []string{topicID}
		}
		pool, err := p.Source.FetchQuestions(ctx, f)
		if err != nil {
			return sampler.Result{}, fmt.Errorf("fetch questions: %w", err)
		}
		return p.sampleFlat(pool, 0, plan.Strategy == StrategyListAll), nil

	case StrategyFlat:
		source := topicID
		if source == "" {
			source = p.BankSource
		}
		pool, err := p.Source.FetchQuestions(ctx, store.Filter{Source: source})
		if err != nil {
			return sampler.Result{}, fmt.Errorf("fetch questions: %w", err)
		}
		return p.sampleFlat(pool, plan.Count, false), nil

	case StrategyDistribute:
		topics, err := p.Source.FetchTopics(ctx)
		if err != nil {
			return sampler.Result{}, fmt.Errorf("fetch topics: %w", err)
		}
		var chapters []string
		for _, t := range topics {
			if t.IsChapter() {
				chapters = append(chapters, t.ID)
			}
		}
		sort.Strings(chapters)
		if len(chapters) == 0 {
			return sampler.Result{Requested: plan.Count, Partial: plan.Count > 0}, nil
		}

		pool, err := p.Source.FetchQuestions(ctx, store.Filter{Chapters: chapters})
		if err != nil {
			return sampler.Result{}, fmt.Errorf("fetch questions: %w", err)
		}
		buckets := sampler.GroupByChapter(chapters, pool)

		p.mu.Lock()
		defer p.mu.Unlock()
		return sampler.Distribute(buckets, plan.Count, p.rng), nil
	}
	return sampler.Result{}, fmt.Errorf("mode %s: unknown strategy %q", mode, plan.Strategy)
}

func (p *Planner) sampleFlat(pool []question.Question, count int, listAll bool) sampler.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return sampler.SampleFlat(pool, count, listAll, p.rng)
}
