package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/timer"
)

var errStoreDown = errors.New("store down")

// flakyRepo wraps a Repository and fails selected writes on demand.
type flakyRepo struct {
	store.Repository

	mu            sync.Mutex
	failPersist   error
	failFinalize  error
	finalizeCalls int
	persistCalls  int
}

func (f *flakyRepo) PersistAttempt(ctx context.Context, a exam.Attempt, t exam.Totals) error {
	f.mu.Lock()
	f.persistCalls++
	err := f.failPersist
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Repository.PersistAttempt(ctx, a, t)
}

func (f *flakyRepo) FinalizeSession(ctx context.Context, id string, backfill []exam.Attempt, t exam.Totals, end time.Time) error {
	f.mu.Lock()
	f.finalizeCalls++
	err := f.failFinalize
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Repository.FinalizeSession(ctx, id, backfill, t, end)
}

func (f *flakyRepo) set(persist, finalize error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPersist = persist
	f.failFinalize = finalize
}

func (f *flakyRepo) calls() (persist, finalize int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.persistCalls, f.finalizeCalls
}

// chapterBank builds chapters with the given sizes plus a flat bank source.
func chapterBank(sizes ...int) *question.Bank {
	b := &question.Bank{}
	for c, n := range sizes {
		ch := fmt.Sprintf("chapter-%02d", c+1)
		b.Topics = append(b.Topics, question.Topic{ID: ch, Name: ch})
		for i := 0; i < n; i++ {
			b.Questions = append(b.Questions, question.Question{
				ID:            fmt.Sprintf("%s-q%02d", ch, i),
				Text:          fmt.Sprintf("Question %d of %s?", i, ch),
				Options:       []string{"right", "wrong"},
				CorrectAnswer: "right",
				Hint:          "pick the right one",
				Explanation:   "because",
				Chapter:       ch,
			})
		}
	}
	b.Topics = append(b.Topics, question.Topic{ID: "general", Name: "General", IsGeneral: true})
	for i := 0; i < 8; i++ {
		b.Questions = append(b.Questions, question.Question{
			ID:            fmt.Sprintf("bank-q%02d", i),
			Text:          "Bank question?",
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Source:        "past-papers",
		})
	}
	return b
}

type harness struct {
	t      *testing.T
	repo   *flakyRepo
	clock  *timer.FakeClock
	engine *Engine
	ids    int
}

func newHarness(t *testing.T, bank *question.Bank, plans map[exam.Mode]ModePlan) *harness {
	t.Helper()
	mem := store.NewMemory()
	if err := mem.UpsertBank(context.Background(), bank); err != nil {
		t.Fatalf("upsert bank: %v", err)
	}
	h := &harness{
		t:     t,
		repo:  &flakyRepo{Repository: mem},
		clock: timer.NewFakeClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
	}
	if plans == nil {
		plans = DefaultPlans()
	}
	planner := NewPlanner(h.repo, plans, rand.New(rand.NewSource(7)))
	planner.BankSource = "past-papers"
	h.engine = NewEngine(h.repo, planner, Options{
		Clock: h.clock,
		NewID: func() string {
			h.ids++
			return fmt.Sprintf("sess-%d", h.ids)
		},
	})
	return h
}

func (h *harness) start(mode exam.Mode, topic string) *Runner {
	h.t.Helper()
	r, err := h.engine.Start(context.Background(), StartOptions{Mode: mode, TopicID: topic})
	if err != nil {
		h.t.Fatalf("start %s: %v", mode, err)
	}
	if err := r.Activate(context.Background()); err != nil {
		h.t.Fatalf("activate: %v", err)
	}
	h.t.Cleanup(r.Stop)
	return r
}

func (h *harness) stored(id string) *exam.Session {
	h.t.Helper()
	s, err := h.repo.GetSession(context.Background(), id)
	if err != nil {
		h.t.Fatalf("get session %s: %v", id, err)
	}
	return s
}

// answer answers the current question right or wrong after d.
func (h *harness) answer(r *Runner, right bool, d time.Duration) Feedback {
	h.t.Helper()
	h.clock.Advance(d)
	opt := "wrong"
	if right {
		opt = "right"
	}
	fb, err := r.Answer(context.Background(), opt, AnswerMeta{})
	if err != nil {
		h.t.Fatalf("answer: %v", err)
	}
	return fb
}

func checkInvariant(t *testing.T, s *exam.Session) {
	t.Helper()
	if err := s.Verify(); err != nil {
		t.Fatal(err)
	}
	if s.Totals.TotalQuestions != len(s.Attempts) {
		t.Fatalf("total %d != attempts %d", s.Totals.TotalQuestions, len(s.Attempts))
	}
}
