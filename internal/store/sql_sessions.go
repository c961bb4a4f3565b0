package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

var sessionColumns = []string{
	"id", "topic_id", "mode", "start_time", "end_time", "time_limit_ms", "retake_of",
	"total_questions", "correct_answers", "wrong_answers", "hints_used", "total_time_ms",
}

var attemptColumns = []string{
	"session_id", "question_id", "question_index", "selected", "correct",
	"time_spent_ms", "hint_used", "explanation_viewed", "ts", "backfilled",
}

func (s *Store) CreateSession(ctx context.Context, sess *exam.Session) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ins := s.builder().Insert("sessions").Columns(sessionColumns...).Values(
			sess.ID, sess.TopicID, string(sess.Mode), sess.StartTime.UnixNano(), nullTime(sess.EndTime),
			sess.TimeLimit.Milliseconds(), sess.RetakeOf,
			sess.Totals.TotalQuestions, sess.Totals.CorrectAnswers, sess.Totals.WrongAnswers,
			sess.Totals.HintsUsed, sess.Totals.TotalTimeMs,
		)
		if err := execBuilt(ctx, tx, ins); err != nil {
			return fmt.Errorf("create session %s: %w", sess.ID, err)
		}

		if len(sess.Questions) > 0 {
			qins := s.builder().Insert("session_questions").Columns("session_id", "position", "body")
			for i, q := range sess.Questions {
				body, err := json.Marshal(q)
				if err != nil {
					return fmt.Errorf("encode frozen question %d: %w", i, err)
				}
				qins.Values(sess.ID, i, string(body))
			}
			if err := execBuilt(ctx, tx, qins); err != nil {
				return fmt.Errorf("store frozen questions: %w", err)
			}
		}

		if len(sess.Attempts) > 0 {
			if err := s.insertAttempts(ctx, tx, sess.Attempts); err != nil {
				return fmt.Errorf("store attempts: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) GetSession(ctx context.Context, id string) (*exam.Session, error) {
	query, args := s.builder().Select(sessionColumns...).
		From(entsql.Table("sessions")).
		Where(entsql.EQ("id", id)).
		Query()
	sess, err := scanSession(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, exam.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", id, err)
	}

	if sess.Questions, err = s.frozenQuestions(ctx, id); err != nil {
		return nil, err
	}
	if sess.Attempts, err = s.attempts(ctx, id); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]exam.Session, error) {
	query, args := s.builder().Select(sessionColumns...).
		From(entsql.Table("sessions")).
		OrderBy("start_time", "id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	var out []exam.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	// Child rows are loaded after the cursor is closed; SQLite runs on a
	// single connection.
	for i := range out {
		if out[i].Questions, err = s.frozenQuestions(ctx, out[i].ID); err != nil {
			return nil, err
		}
		if out[i].Attempts, err = s.attempts(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) UpdateSession(ctx context.Context, id string, u Update) error {
	upd := s.builder().Update("sessions").Where(entsql.EQ("id", id))
	changed := false
	if u.Totals != nil {
		setTotals(upd, *u.Totals)
		changed = true
	}
	if u.EndTime != nil {
		upd.Set("end_time", u.EndTime.UnixNano())
		changed = true
	}
	if u.TimeLimit != nil {
		upd.Set("time_limit_ms", u.TimeLimit.Milliseconds())
		changed = true
	}
	if !changed {
		_, err := s.GetSession(ctx, id)
		return err
	}

	n, err := execBuiltCount(ctx, s.db, upd)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update session %s: %w", id, exam.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"attempts", "session_questions"} {
			del := s.builder().Delete(table).Where(entsql.EQ("session_id", id))
			if err := execBuilt(ctx, tx, del); err != nil {
				return fmt.Errorf("delete %s of %s: %w", table, id, err)
			}
		}
		n, err := execBuiltCount(ctx, tx, s.builder().Delete("sessions").Where(entsql.EQ("id", id)))
		if err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("delete session %s: %w", id, exam.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) PersistAttempt(ctx context.Context, a exam.Attempt, totals exam.Totals) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ins := s.attemptInsert([]exam.Attempt{a})
		n, err := execBuiltCount(ctx, tx, ins)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		if n == 0 {
			// Natural key already stored; the earlier call already set totals.
			return nil
		}
		if err := s.storeTotals(ctx, tx, a.SessionID, totals); err != nil {
			return fmt.Errorf("persist attempt: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteAttempt(ctx context.Context, m exam.Matcher, totals exam.Totals) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		del := s.builder().Delete("attempts").Where(entsql.And(
			entsql.EQ("session_id", m.SessionID),
			entsql.EQ("question_id", m.QuestionID),
			entsql.EQ("ts", m.Timestamp.UnixNano()),
		))
		n, err := execBuiltCount(ctx, tx, del)
		if err != nil {
			return fmt.Errorf("delete attempt: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("delete attempt %s/%s: %w", m.SessionID, m.QuestionID, exam.ErrNotFound)
		}
		if err := s.storeTotals(ctx, tx, m.SessionID, totals); err != nil {
			return fmt.Errorf("delete attempt: %w", err)
		}
		return nil
	})
}

func (s *Store) FinalizeSession(ctx context.Context, id string, backfill []exam.Attempt, totals exam.Totals, end time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if len(backfill) > 0 {
			if err := s.insertAttempts(ctx, tx, backfill); err != nil {
				return fmt.Errorf("insert backfill: %w", err)
			}
		}
		upd := s.builder().Update("sessions").
			Set("end_time", end.UnixNano()).
			Where(entsql.EQ("id", id))
		setTotals(upd, totals)
		n, err := execBuiltCount(ctx, tx, upd)
		if err != nil {
			return fmt.Errorf("finalize session %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("finalize session %s: %w", id, exam.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) insertAttempts(ctx context.Context, q querier, attempts []exam.Attempt) error {
	return execBuilt(ctx, q, s.attemptInsert(attempts))
}

// attemptInsert ignores rows whose natural key is already stored.
func (s *Store) attemptInsert(attempts []exam.Attempt) *entsql.InsertBuilder {
	ins := s.builder().Insert("attempts").Columns(attemptColumns...)
	for _, a := range attempts {
		var selected any
		if a.Selected != nil {
			selected = *a.Selected
		}
		ins.Values(a.SessionID, a.QuestionID, a.QuestionIndex, selected, a.Correct,
			a.TimeSpentMs, a.HintUsed, a.ExplanationViewed, a.Timestamp.UnixNano(), a.Backfilled)
	}
	return ins.OnConflict(
		entsql.ConflictColumns("session_id", "question_id", "ts"),
		entsql.DoNothing(),
	)
}

func (s *Store) storeTotals(ctx context.Context, q querier, id string, t exam.Totals) error {
	upd := s.builder().Update("sessions").Where(entsql.EQ("id", id))
	setTotals(upd, t)
	n, err := execBuiltCount(ctx, q, upd)
	if err != nil {
		return fmt.Errorf("store totals: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, exam.ErrNotFound)
	}
	return nil
}

func setTotals(upd *entsql.UpdateBuilder, t exam.Totals) {
	upd.Set("total_questions", t.TotalQuestions).
		Set("correct_answers", t.CorrectAnswers).
		Set("wrong_answers", t.WrongAnswers).
		Set("hints_used", t.HintsUsed).
		Set("total_time_ms", t.TotalTimeMs)
}

func (s *Store) frozenQuestions(ctx context.Context, id string) ([]question.Question, error) {
	query, args := s.builder().Select("body").
		From(entsql.Table("session_questions")).
		Where(entsql.EQ("session_id", id)).
		OrderBy("position").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query frozen questions: %w", err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan frozen question: %w", err)
		}
		var q question.Question
		if err := json.Unmarshal([]byte(body), &q); err != nil {
			return nil, fmt.Errorf("decode frozen question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) attempts(ctx context.Context, id string) ([]exam.Attempt, error) {
	query, args := s.builder().Select(attemptColumns...).
		From(entsql.Table("attempts")).
		Where(entsql.EQ("session_id", id)).
		OrderBy("ts", "id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []exam.Attempt
	for rows.Next() {
		var (
			a        exam.Attempt
			selected sql.NullString
			ts       int64
		)
		err := rows.Scan(&a.SessionID, &a.QuestionID, &a.QuestionIndex, &selected, &a.Correct,
			&a.TimeSpentMs, &a.HintUsed, &a.ExplanationViewed, &ts, &a.Backfilled)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if selected.Valid {
			v := selected.String
			a.Selected = &v
		}
		a.Timestamp = time.Unix(0, ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*exam.Session, error) {
	var (
		sess    exam.Session
		mode    string
		start   int64
		end     sql.NullInt64
		limitMs int64
	)
	err := row.Scan(&sess.ID, &sess.TopicID, &mode, &start, &end, &limitMs, &sess.RetakeOf,
		&sess.Totals.TotalQuestions, &sess.Totals.CorrectAnswers, &sess.Totals.WrongAnswers,
		&sess.Totals.HintsUsed, &sess.Totals.TotalTimeMs)
	if err != nil {
		return nil, err
	}
	sess.Mode = exam.Mode(mode)
	sess.StartTime = time.Unix(0, start)
	if end.Valid {
		t := time.Unix(0, end.Int64)
		sess.EndTime = &t
	}
	sess.TimeLimit = time.Duration(limitMs) * time.Millisecond
	return &sess, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}
