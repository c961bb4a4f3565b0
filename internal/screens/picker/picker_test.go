package picker

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
)

func testDeps(t *testing.T) flow.Deps {
	t.Helper()
	repo := store.NewMemory()
	bank := &question.Bank{
		Topics: []question.Topic{
			{ID: "chapter-01", Name: "Cells"},
			{ID: "chapter-02", Name: "Genetics"},
			{ID: "formulas", Name: "Formulas", IsGeneral: true},
		},
		Questions: []question.Question{
			{ID: "q1", Text: "?", Options: []string{"a"}, CorrectAnswer: "a", Chapter: "chapter-01"},
			{ID: "q2", Text: "?", Options: []string{"a"}, CorrectAnswer: "a", Chapter: "formulas"},
		},
	}
	if err := repo.UpsertBank(context.Background(), bank); err != nil {
		t.Fatal(err)
	}
	planner := session.NewPlanner(repo, nil, rand.New(rand.NewSource(1)))
	return flow.Deps{Engine: session.NewEngine(repo, planner, session.Options{}), Repo: repo}
}

func labels(p *PickerScreen) []string {
	var out []string
	for _, it := range p.menu.Items {
		out = append(out, it.Label)
	}
	return out
}

func TestPickerChapterwiseListsChapters(t *testing.T) {
	p := New(testDeps(t), exam.ModeChapterwise)
	p.Update(p.Init()())
	if got := strings.Join(labels(p), ","); got != "Cells,Genetics" {
		t.Errorf("labels = %s", got)
	}
}

func TestPickerLearnListsAllTopics(t *testing.T) {
	p := New(testDeps(t), exam.ModeLearn)
	p.Update(p.Init()())
	if got := len(labels(p)); got != 3 {
		t.Errorf("topics = %d, want 3", got)
	}
}

func TestPickerStartAndEmptyChapter(t *testing.T) {
	p := New(testDeps(t), exam.ModeChapterwise)
	p.Update(p.Init()())

	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected start command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected exam screen push for chapter-01")
	}

	// chapter-02 has no questions.
	p.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := cmd()
	if _, ok := msg.(flow.ErrorMsg); !ok {
		t.Fatalf("msg = %T, want ErrorMsg", msg)
	}
	p.Update(msg)
	if !strings.Contains(p.View(100, 30), "no questions") {
		t.Error("expected the error notice in the view")
	}
}
