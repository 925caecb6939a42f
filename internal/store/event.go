package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS answer_events (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence       INTEGER NOT NULL,
	timestamp      INTEGER NOT NULL,
	session_id     TEXT    NOT NULL,
	question_index INTEGER NOT NULL,
	question_text  TEXT    NOT NULL DEFAULT '',
	answer         TEXT    NOT NULL DEFAULT '',
	provenance     TEXT    NOT NULL DEFAULT 'typed',
	substituted    INTEGER NOT NULL DEFAULT 0,
	auto_submitted INTEGER NOT NULL DEFAULT 0,
	response_secs  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_answer_events_session ON answer_events(session_id);

CREATE TABLE IF NOT EXISTS session_events (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence           INTEGER NOT NULL,
	timestamp          INTEGER NOT NULL,
	session_id         TEXT    NOT NULL,
	role               TEXT    NOT NULL DEFAULT '',
	mode               TEXT    NOT NULL DEFAULT '',
	action             TEXT    NOT NULL,
	questions_answered INTEGER NOT NULL DEFAULT 0,
	duration_secs      INTEGER NOT NULL DEFAULT 0,
	detail             TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS llm_request_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence      INTEGER NOT NULL,
	timestamp     INTEGER NOT NULL,
	provider      TEXT    NOT NULL DEFAULT '',
	model         TEXT    NOT NULL DEFAULT '',
	purpose       TEXT    NOT NULL DEFAULT '',
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	audio_ms      INTEGER NOT NULL DEFAULT 0,
	success       INTEGER NOT NULL DEFAULT 0,
	error_message TEXT    NOT NULL DEFAULT '',
	request_body  TEXT    NOT NULL DEFAULT '',
	response_body TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS active_session (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	session_id TEXT    NOT NULL,
	role       TEXT    NOT NULL DEFAULT '',
	use_resume INTEGER NOT NULL DEFAULT 0,
	mode       TEXT    NOT NULL DEFAULT '',
	started_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS local_sessions (
	id         TEXT    PRIMARY KEY,
	role       TEXT    NOT NULL,
	use_resume INTEGER NOT NULL DEFAULT 0,
	status     TEXT    NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at   INTEGER NOT NULL DEFAULT 0,
	summary    TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS local_questions (
	session_id    TEXT    NOT NULL REFERENCES local_sessions(id) ON DELETE CASCADE,
	idx           INTEGER NOT NULL,
	text          TEXT    NOT NULL,
	difficulty    TEXT    NOT NULL DEFAULT '',
	category      TEXT    NOT NULL DEFAULT '',
	time_limit    INTEGER NOT NULL DEFAULT 0,
	answered      INTEGER NOT NULL DEFAULT 0,
	answer        TEXT    NOT NULL DEFAULT '',
	is_voice      INTEGER NOT NULL DEFAULT 0,
	audio_ref     TEXT    NOT NULL DEFAULT '',
	response_time INTEGER NOT NULL DEFAULT 0,
	score         REAL    NOT NULL DEFAULT 0,
	feedback      TEXT    NOT NULL DEFAULT '',
	answered_at   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (session_id, idx)
);
`

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// sequenceCounter hands out one monotonic sequence shared by every event
// table, so events of different types can be ordered against each other.
// The mutex serializes within the process; RETURNING makes the increment
// atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
