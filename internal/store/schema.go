package store

// Timestamps are stored as Unix nanoseconds so the attempt natural key
// round-trips exactly on both backends.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS topics (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_general INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  chapter TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  difficulty TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL,
  body TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  topic_id TEXT NOT NULL DEFAULT '',
  mode TEXT NOT NULL DEFAULT '',
  start_time INTEGER NOT NULL,
  end_time INTEGER,
  time_limit_ms INTEGER NOT NULL DEFAULT 0,
  retake_of TEXT NOT NULL DEFAULT '',
  total_questions INTEGER NOT NULL DEFAULT 0,
  correct_answers INTEGER NOT NULL DEFAULT 0,
  wrong_answers INTEGER NOT NULL DEFAULT 0,
  hints_used INTEGER NOT NULL DEFAULT 0,
  total_time_ms INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS session_questions (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  body TEXT NOT NULL,
  PRIMARY KEY (session_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS attempts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  question_index INTEGER NOT NULL DEFAULT -1,
  selected TEXT,
  correct INTEGER NOT NULL,
  time_spent_ms INTEGER NOT NULL DEFAULT 0,
  hint_used INTEGER NOT NULL DEFAULT 0,
  explanation_viewed INTEGER NOT NULL DEFAULT 0,
  ts INTEGER NOT NULL,
  backfilled INTEGER NOT NULL DEFAULT 0,
  UNIQUE (session_id, question_id, ts)
)`,
	`CREATE INDEX IF NOT EXISTS attempts_session_ts ON attempts (session_id, ts)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS topics (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_general BOOLEAN NOT NULL DEFAULT FALSE
)`,
	`CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  chapter TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  difficulty TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL,
  body TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  topic_id TEXT NOT NULL DEFAULT '',
  mode TEXT NOT NULL DEFAULT '',
  start_time BIGINT NOT NULL,
  end_time BIGINT,
  time_limit_ms BIGINT NOT NULL DEFAULT 0,
  retake_of TEXT NOT NULL DEFAULT '',
  total_questions INTEGER NOT NULL DEFAULT 0,
  correct_answers INTEGER NOT NULL DEFAULT 0,
  wrong_answers INTEGER NOT NULL DEFAULT 0,
  hints_used INTEGER NOT NULL DEFAULT 0,
  total_time_ms BIGINT NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS session_questions (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  body TEXT NOT NULL,
  PRIMARY KEY (session_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS attempts (
  id BIGSERIAL PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL,
  question_index INTEGER NOT NULL DEFAULT -1,
  selected TEXT,
  correct BOOLEAN NOT NULL,
  time_spent_ms BIGINT NOT NULL DEFAULT 0,
  hint_used BOOLEAN NOT NULL DEFAULT FALSE,
  explanation_viewed BOOLEAN NOT NULL DEFAULT FALSE,
  ts BIGINT NOT NULL,
  backfilled BOOLEAN NOT NULL DEFAULT FALSE,
  UNIQUE (session_id, question_id, ts)
)`,
	`CREATE INDEX IF NOT EXISTS attempts_session_ts ON attempts (session_id, ts)`,
}
