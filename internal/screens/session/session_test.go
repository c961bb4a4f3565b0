package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/screen"
	sess "github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/timer"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

type fixture struct {
	repo   *store.Memory
	clock  *timer.FakeClock
	runner *sess.Runner
	screen *SessionScreen
	done   int
}

// newFixture starts an unactivated session over n chapter questions whose
// first option is always correct.
func newFixture(t *testing.T, mode exam.Mode, n int) *fixture {
	t.Helper()
	bank := &question.Bank{Topics: []question.Topic{{ID: "chapter-01", Name: "One"}}}
	for i := 0; i < n; i++ {
		bank.Questions = append(bank.Questions, question.Question{
			ID:            fmt.Sprintf("q%d", i),
			Text:          fmt.Sprintf("Question %d?", i),
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
			Hint:          "think",
			Explanation:   "because",
			Chapter:       "chapter-01",
		})
	}
	f := &fixture{
		repo:  store.NewMemory(),
		clock: timer.NewFakeClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
	}
	if err := f.repo.UpsertBank(context.Background(), bank); err != nil {
		t.Fatal(err)
	}
	plans := sess.DefaultPlans()
	p := plans[exam.ModeQuickTest]
	p.Count = n
	p.TimeLimit = 2 * time.Minute
	plans[exam.ModeQuickTest] = p

	planner := sess.NewPlanner(f.repo, plans, rand.New(rand.NewSource(1)))
	engine := sess.NewEngine(f.repo, planner, sess.Options{Clock: f.clock})
	r, err := engine.Start(context.Background(), sess.StartOptions{Mode: mode, TopicID: "chapter-01"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(r.Stop)
	f.runner = r
	f.screen = New(r, Options{OnComplete: func(Runner) tea.Cmd {
		f.done++
		return func() tea.Msg { return nil }
	}})
	return f
}

// activate runs the screen's Init command and feeds its result back.
func (f *fixture) activate(t *testing.T) {
	t.Helper()
	msg := f.screen.Init()()
	if _, cmd := f.screen.Update(msg); cmd == nil {
		t.Fatal("expected a tick command after activation")
	}
	if !f.screen.activated {
		t.Fatalf("not activated: %s", f.screen.errMsg)
	}
}

func (f *fixture) press(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	var scr screen.Screen = f.screen
	for _, m := range msgs {
		scr, cmd = scr.Update(m)
	}
	f.screen = scr.(*SessionScreen)
	return cmd
}

func (f *fixture) stored(t *testing.T) *exam.Session {
	t.Helper()
	s, err := f.repo.GetSession(context.Background(), f.runner.Session().ID)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSessionScreen_View_Loading(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 2)
	if !strings.Contains(f.screen.View(80, 24), "Preparing") {
		t.Error("expected loading view before activation")
	}
	if f.screen.HandlesEscape() {
		t.Error("escape should pop before activation")
	}
}

func TestSessionScreen_ActivatePersists(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 2)
	f.activate(t)

	s := f.stored(t)
	if len(s.Questions) != 2 {
		t.Errorf("stored questions = %d, want 2", len(s.Questions))
	}
	if !strings.Contains(f.screen.View(100, 30), "Question 1 of 2") {
		t.Error("expected progress line in view")
	}
}

func TestSessionScreen_AnswerAndAdvance(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 2)
	f.activate(t)

	f.clock.Advance(10 * time.Second)
	f.press(keyPress('h'), specialKey(tea.KeyEnter))
	if f.screen.feedback == nil || !f.screen.feedback.Correct {
		t.Fatalf("expected correct feedback, got %+v", f.screen.feedback)
	}

	// Dismiss feedback; the second question loads.
	f.press(keyPress(' '))
	if f.screen.index != 1 {
		t.Errorf("index = %d, want 1", f.screen.index)
	}
	if f.screen.hint != "" {
		t.Error("hint should reset for the next question")
	}

	s := f.stored(t)
	if len(s.Attempts) != 1 || !s.Attempts[0].HintUsed || s.Attempts[0].TimeSpentMs != 10000 {
		t.Errorf("attempt = %+v", s.Attempts)
	}
}

func TestSessionScreen_LastAnswerCompletes(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 1)
	f.activate(t)

	f.press(specialKey(tea.KeyDown), specialKey(tea.KeyEnter))
	if f.screen.feedback == nil || f.screen.feedback.Correct || !f.screen.feedback.Done {
		t.Fatalf("feedback = %+v", f.screen.feedback)
	}
	if f.done != 0 {
		t.Fatal("completed before feedback was dismissed")
	}
	f.press(keyPress(' '))
	if f.done != 1 {
		t.Errorf("OnComplete calls = %d, want 1", f.done)
	}
	if s := f.stored(t); s.Open() {
		t.Error("stored session should be finalized")
	}
}

func TestSessionScreen_LearnRetriesWrong(t *testing.T) {
	f := newFixture(t, exam.ModeLearn, 2)
	f.activate(t)

	f.press(keyPress('2'), specialKey(tea.KeyEnter))
	if f.screen.feedback.Advanced {
		t.Fatal("wrong answer in learn mode should not advance")
	}
	f.press(keyPress(' '))
	if f.screen.index != 0 {
		t.Errorf("index = %d, want 0 on retry", f.screen.index)
	}
	f.press(keyPress('1'), specialKey(tea.KeyEnter), keyPress(' '))
	if f.screen.index != 1 {
		t.Errorf("index = %d, want 1 after correct retry", f.screen.index)
	}
	if n := len(f.stored(t).Attempts); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 3)
	f.activate(t)

	if !f.screen.HandlesEscape() {
		t.Fatal("running exam should handle escape")
	}
	f.press(specialKey(tea.KeyEscape))
	if !f.screen.confirmQuit {
		t.Fatal("expected quit confirmation dialog")
	}
	f.press(keyPress('n'))
	if f.screen.confirmQuit || f.runner.State() != sess.StateActive {
		t.Fatal("declining should keep the session running")
	}

	f.press(specialKey(tea.KeyEscape), keyPress('y'))
	if f.done != 1 {
		t.Fatalf("OnComplete calls = %d, want 1", f.done)
	}
	if f.runner.EndReason() != sess.EndClosed {
		t.Errorf("reason = %s, want closed", f.runner.EndReason())
	}
	s := f.stored(t)
	if s.Totals.WrongAnswers != 3 {
		t.Errorf("wrong = %d, want 3 backfilled", s.Totals.WrongAnswers)
	}
}

func TestSessionScreen_SkipAndFinish(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 3)
	f.activate(t)

	f.press(keyPress('s'))
	if f.screen.index != 1 {
		t.Fatalf("index after skip = %d, want 1", f.screen.index)
	}
	f.press(specialKey(tea.KeyEnter), keyPress(' '), keyPress('f'))
	if f.done != 1 {
		t.Fatalf("OnComplete calls = %d, want 1", f.done)
	}
	s := f.stored(t)
	if s.Totals.TotalQuestions != 3 || s.Totals.CorrectAnswers != 1 {
		t.Errorf("totals = %+v, want 1 correct of 3", s.Totals)
	}
}

func TestSessionScreen_TickExpires(t *testing.T) {
	f := newFixture(t, exam.ModeQuickTest, 3)
	f.activate(t)

	if got := f.screen.Status(); !strings.Contains(got, "2:00") {
		t.Errorf("status = %q, want countdown at 2:00", got)
	}

	f.clock.Advance(time.Minute)
	if cmd := f.press(timerTickMsg(f.clock.Now())); cmd == nil {
		t.Fatal("expected another tick while time remains")
	}
	f.clock.Advance(2 * time.Minute)
	f.press(timerTickMsg(f.clock.Now()))
	if f.done != 1 {
		t.Fatalf("OnComplete calls = %d, want 1", f.done)
	}
	if f.runner.EndReason() != sess.EndExpired {
		t.Errorf("reason = %s, want expired", f.runner.EndReason())
	}

	// Late ticks after completion do nothing.
	if cmd := f.press(timerTickMsg(f.clock.Now())); cmd != nil {
		t.Error("expected no command after completion")
	}
}

func TestSessionScreen_BlurAndFocus(t *testing.T) {
	f := newFixture(t, exam.ModeQuickTest, 3)
	f.activate(t)

	f.press(tea.BlurMsg{})
	if !f.screen.hidden {
		t.Fatal("expected hidden after blur")
	}
	f.clock.Advance(5 * time.Minute)
	f.press(tea.FocusMsg{})
	if f.done != 1 {
		t.Fatalf("focus after the limit should expire the session, OnComplete calls = %d", f.done)
	}
}

func TestSessionScreen_KeyHints(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 2)
	f.activate(t)

	hints := f.screen.KeyHints()
	var keys []string
	for _, h := range hints {
		keys = append(keys, h.Key)
	}
	joined := strings.Join(keys, " ")
	for _, want := range []string{"Enter", "H", "E", "S", "Esc"} {
		if !strings.Contains(joined, want) {
			t.Errorf("hints %q missing %s", joined, want)
		}
	}
}

func TestSessionScreen_ActivateError(t *testing.T) {
	f := newFixture(t, exam.ModeChapterwise, 2)
	f.activate(t)

	// A second activation fails; the screen shows the error and any key pops.
	other := New(f.runner, Options{})
	other.Update(other.Init()())
	if other.errMsg == "" {
		t.Fatal("expected an error for a second activation")
	}
	if _, cmd := other.Update(keyPress('x')); cmd == nil {
		t.Error("expected a pop command")
	}
}

func TestLeaveStopsTimerAndKeepsSessionOpen(t *testing.T) {
	f := newFixture(t, exam.ModeQuickTest, 3)
	f.activate(t)

	f.screen.Leave()
	f.screen.Leave()

	f.clock.Advance(5 * time.Minute)
	if f.runner.Tick(context.Background()) {
		t.Fatal("a stopped timer must not expire the session")
	}
	if got := f.stored(t).EndTime; got != nil {
		t.Errorf("EndTime = %v, want open session", got)
	}
}

func TestSessionScreen_LateSubmitEndsTheExam(t *testing.T) {
	f := newFixture(t, exam.ModeQuickTest, 3)
	f.activate(t)

	// No tick arrives before the learner answers past the limit.
	f.clock.Advance(3 * time.Minute)
	f.press(specialKey(tea.KeyEnter))

	if f.done != 1 {
		t.Fatalf("OnComplete calls = %d, want 1", f.done)
	}
	if f.runner.EndReason() != sess.EndExpired {
		t.Errorf("reason = %s, want expired", f.runner.EndReason())
	}
	if f.screen.errMsg != "" {
		t.Errorf("errMsg = %q, want none", f.screen.errMsg)
	}
	if s := f.stored(t); s.Totals.CorrectAnswers != 0 || s.Totals.TotalQuestions != 3 {
		t.Errorf("totals = %+v, want three unanswered", s.Totals)
	}
}
