package home

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/screens/picker"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
)

func testHome() *HomeScreen {
	repo := store.NewMemory()
	planner := session.NewPlanner(repo, nil, rand.New(rand.NewSource(1)))
	return New(flow.Deps{Engine: session.NewEngine(repo, planner, session.Options{}), Repo: repo})
}

func TestHomeListsModes(t *testing.T) {
	h := testHome()
	if got, want := len(h.menu.Items), len(exam.AllModes())+2; got != want {
		t.Fatalf("items = %d, want %d", got, want)
	}
	view := h.View(100, 40)
	for _, want := range []string{"Quick test", "25 questions", "30:00", "History"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHomeChapterModeOpensPicker(t *testing.T) {
	h := testHome()
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected a push")
	}
	if _, ok := push.Screen.(*picker.PickerScreen); !ok {
		t.Errorf("screen = %T, want PickerScreen", push.Screen)
	}
}

func TestHomeShowsStartErrors(t *testing.T) {
	h := testHome()
	h.Update(flow.ErrorMsg{Err: errors.New("no questions available")})
	if !strings.Contains(h.View(100, 40), "no questions available") {
		t.Error("expected notice in view")
	}
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if h.notice != "" {
		t.Error("key press should clear the notice")
	}
}

func TestDescribe(t *testing.T) {
	plans := session.DefaultPlans()
	if got := describe(plans[exam.ModeLearn]); got != "whole chapter · untimed · retry until right" {
		t.Errorf("learn = %q", got)
	}
	if got := describe(plans[exam.ModeFullTest]); got != "100 questions · 2:00:00" {
		t.Errorf("full = %q", got)
	}
}
