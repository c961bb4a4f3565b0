package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// Memory is an in-process Repository. Sessions are copied on the way in and
// out so callers never share slices with the store.
type Memory struct {
	mu        sync.RWMutex
	topics    []question.Topic
	questions []question.Question
	sessions  map[string]*exam.Session
}

var _ Repository = (*Memory)(nil)

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*exam.Session)}
}

func (m *Memory) FetchQuestions(_ context.Context, f Filter) ([]question.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []question.Question
	for _, q := range m.questions {
		if matchesFilter(q, f) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *Memory) FetchTopics(context.Context) ([]question.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]question.Topic(nil), m.topics...), nil
}

func (m *Memory) UpsertBank(_ context.Context, b *question.Bank) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range b.Topics {
		replaced := false
		for i := range m.topics {
			if m.topics[i].ID == t.ID {
				m.topics[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			m.topics = append(m.topics, t)
		}
	}

	// Reloaded questions move to the end, matching the SQL store ordering.
	incoming := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		incoming[q.ID] = true
	}
	kept := m.questions[:0:0]
	for _, q := range m.questions {
		if !incoming[q.ID] {
			kept = append(kept, q)
		}
	}
	m.questions = append(kept, b.Questions...)
	return nil
}

func (m *Memory) CreateSession(_ context.Context, s *exam.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("create session %s: already exists", s.ID)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*exam.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, exam.ErrNotFound)
	}
	return s.Clone(), nil
}

func (m *Memory) ListSessions(context.Context) ([]exam.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]exam.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (m *Memory) UpdateSession(_ context.Context, id string, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("update session %s: %w", id, exam.ErrNotFound)
	}
	if u.Totals != nil {
		s.Totals = *u.Totals
	}
	if u.EndTime != nil {
		end := *u.EndTime
		s.EndTime = &end
	}
	if u.TimeLimit != nil {
		s.TimeLimit = *u.TimeLimit
	}
	return nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("delete session %s: %w", id, exam.ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) PersistAttempt(_ context.Context, a exam.Attempt, totals exam.Totals) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[a.SessionID]
	if !ok {
		return fmt.Errorf("persist attempt: session %s: %w", a.SessionID, exam.ErrNotFound)
	}
	if s.Has(a.Key()) {
		return nil
	}
	s.Attempts = append(s.Attempts, a)
	s.Totals = totals
	return nil
}

func (m *Memory) DeleteAttempt(_ context.Context, match exam.Matcher, totals exam.Totals) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[match.SessionID]
	if !ok {
		return fmt.Errorf("delete attempt: session %s: %w", match.SessionID, exam.ErrNotFound)
	}
	if _, err := s.Remove(match); err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	s.Totals = totals
	return nil
}

func (m *Memory) FinalizeSession(_ context.Context, id string, backfill []exam.Attempt, totals exam.Totals, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("finalize session %s: %w", id, exam.ErrNotFound)
	}
	for _, a := range backfill {
		if !s.Has(a.Key()) {
			s.Attempts = append(s.Attempts, a)
		}
	}
	s.Totals = totals
	s.EndTime = &end
	return nil
}

func (m *Memory) Close() error { return nil }
