package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examprep/internal/question"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) FetchQuestions(ctx context.Context, f Filter) ([]question.Question, error) {
	sel := s.builder().Select("body").From(entsql.Table("questions"))

	var preds []*entsql.Predicate
	if len(f.Chapters) > 0 {
		args := make([]any, len(f.Chapters))
		for i, c := range f.Chapters {
			args[i] = c
		}
		preds = append(preds, entsql.In("chapter", args...))
	}
	if f.Source != "" {
		preds = append(preds, entsql.EQ("source", f.Source))
	}
	if f.Difficulty != "" {
		preds = append(preds, entsql.EQ("difficulty", string(f.Difficulty)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy("position", "id")

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []question.Question
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q question.Question
		if err := json.Unmarshal([]byte(body), &q); err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) FetchTopics(ctx context.Context) ([]question.Topic, error) {
	query, args := s.builder().
		Select("id", "name", "description", "is_general").
		From(entsql.Table("topics")).
		OrderBy("id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var out []question.Topic
	for rows.Next() {
		var t question.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsGeneral); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpsertBank writes the bank in one transaction. Reloaded questions take
// new positions after every existing question.
func (s *Store) UpsertBank(ctx context.Context, b *question.Bank) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if len(b.Topics) > 0 {
			ins := s.builder().Insert("topics").Columns("id", "name", "description", "is_general")
			for _, t := range b.Topics {
				ins.Values(t.ID, t.Name, t.Description, t.IsGeneral)
			}
			ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
			if err := execBuilt(ctx, tx, ins); err != nil {
				return fmt.Errorf("upsert topics: %w", err)
			}
		}
		if len(b.Questions) == 0 {
			return nil
		}

		var next int
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM questions").Scan(&next); err != nil {
			return fmt.Errorf("next question position: %w", err)
		}

		ins := s.builder().Insert("questions").Columns("id", "chapter", "source", "difficulty", "position", "body")
		for i, q := range b.Questions {
			body, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			ins.Values(q.ID, q.Chapter, q.Source, string(q.Difficulty), next+i, string(body))
		}
		ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
		if err := execBuilt(ctx, tx, ins); err != nil {
			return fmt.Errorf("upsert questions: %w", err)
		}
		return nil
	})
}

// withTx runs fn in a transaction, committing on nil and rolling back
// otherwise.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func execBuilt(ctx context.Context, q querier, b entsql.Querier) error {
	query, args := b.Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

func execBuiltCount(ctx context.Context, q querier, b entsql.Querier) (int64, error) {
	query, args := b.Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
