package exam

import "fmt"

// Record appends a to the session's attempt log and updates the running
// totals. Retries of the same question append further rows. Recording an
// attempt whose natural key is already present is a no-op and returns
// false, which makes a retried persistence call safe to replay.
func (s *Session) Record(a Attempt) (bool, error) {
	if a.SessionID != s.ID {
		return false, fmt.Errorf("record attempt for session %q into %q: %w", a.SessionID, s.ID, ErrInvalidState)
	}
	if s.find(a.Key()) >= 0 {
		return false, nil
	}
	s.Attempts = append(s.Attempts, a)
	s.Totals = s.Totals.Add(a)
	return true, nil
}

// Has reports whether an attempt with a's natural key is already recorded.
func (s *Session) Has(m Matcher) bool {
	return s.find(m) >= 0
}

// Lookup returns the unique attempt matching m without removing it.
func (s *Session) Lookup(m Matcher) (Attempt, error) {
	i, err := s.unique(m)
	if err != nil {
		return Attempt{}, err
	}
	return s.Attempts[i], nil
}

// Remove deletes the unique attempt matching m and rolls its contribution
// back out of the totals. On a miss nothing is mutated.
func (s *Session) Remove(m Matcher) (Attempt, error) {
	i, err := s.unique(m)
	if err != nil {
		return Attempt{}, err
	}
	a := s.Attempts[i]
	s.Attempts = append(s.Attempts[:i:i], s.Attempts[i+1:]...)
	s.Totals = s.Totals.Sub(a)
	return a, nil
}

// AnsweredIndexes returns the set of frozen-list positions that have at
// least one attempt.
func (s *Session) AnsweredIndexes() map[int]bool {
	seen := make(map[int]bool, len(s.Attempts))
	for _, a := range s.Attempts {
		if a.QuestionIndex >= 0 {
			seen[a.QuestionIndex] = true
		}
	}
	return seen
}

// Verify recomputes the totals from the attempt log and reports any drift.
func (s *Session) Verify() error {
	want := Replay(s.Attempts)
	if want != s.Totals {
		return fmt.Errorf("session %s: totals %+v do not match attempt log %+v", s.ID, s.Totals, want)
	}
	if s.Totals.CorrectAnswers+s.Totals.WrongAnswers != s.Totals.TotalQuestions {
		return fmt.Errorf("session %s: correct+wrong != total", s.ID)
	}
	return nil
}

// Replay derives totals from an attempt log.
func Replay(attempts []Attempt) Totals {
	var t Totals
	for _, a := range attempts {
		t = t.Add(a)
	}
	return t
}

func (s *Session) find(m Matcher) int {
	for i, a := range s.Attempts {
		if m.Matches(a) {
			return i
		}
	}
	return -1
}

func (s *Session) unique(m Matcher) (int, error) {
	found := -1
	for i, a := range s.Attempts {
		if !m.Matches(a) {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("attempt %s/%s at %s matches more than one row: %w",
				m.SessionID, m.QuestionID, m.Timestamp, ErrInvalidState)
		}
		found = i
	}
	if found < 0 {
		return -1, fmt.Errorf("attempt %s/%s at %s: %w", m.SessionID, m.QuestionID, m.Timestamp, ErrNotFound)
	}
	return found, nil
}
