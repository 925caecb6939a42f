package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type interviewRepo struct {
	db *sql.DB
}

func (r *interviewRepo) CreateSession(ctx context.Context, s *LocalSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO local_sessions (id, role, use_resume, status, started_at, ended_at, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Role, s.UseResume, s.Status, toMillis(s.StartedAt), toMillis(s.EndedAt), s.Summary,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, q := range s.Questions {
		_, err = tx.ExecContext(ctx, `INSERT INTO local_questions
			(session_id, idx, text, difficulty, category, time_limit)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, q.Index, q.Text, q.Difficulty, q.Category, q.TimeLimit,
		)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *interviewRepo) GetSession(ctx context.Context, id string) (*LocalSession, error) {
	var s LocalSession
	var started, ended int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, role, use_resume, status, started_at, ended_at, summary FROM local_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Role, &s.UseResume, &s.Status, &started, &ended, &s.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.StartedAt = fromMillis(started)
	s.EndedAt = fromMillis(ended)

	rows, err := r.db.QueryContext(ctx, `SELECT idx, text, difficulty, category, time_limit, answered,
		answer, is_voice, audio_ref, response_time, score, feedback, answered_at
		FROM local_questions WHERE session_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q LocalQuestion
		var answeredAt int64
		if err := rows.Scan(&q.Index, &q.Text, &q.Difficulty, &q.Category, &q.TimeLimit, &q.Answered,
			&q.Answer, &q.IsVoice, &q.AudioRef, &q.ResponseTime, &q.Score, &q.Feedback, &answeredAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.AnsweredAt = fromMillis(answeredAt)
		s.Questions = append(s.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return &s, nil
}

func (r *interviewRepo) RecordAnswer(ctx context.Context, sessionID string, q LocalQuestion) error {
	answeredAt := q.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `UPDATE local_questions SET answered = 1, answer = ?, is_voice = ?,
		audio_ref = ?, response_time = ?, score = ?, feedback = ?, answered_at = ?
		WHERE session_id = ? AND idx = ?`,
		q.Answer, q.IsVoice, q.AudioRef, q.ResponseTime, q.Score, q.Feedback, toMillis(answeredAt),
		sessionID, q.Index,
	)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("question %d of session %s: %w", q.Index, sessionID, ErrNotFound)
	}
	return nil
}

func (r *interviewRepo) SetStatus(ctx context.Context, id, status string, endedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE local_sessions SET status = ?, ended_at = ? WHERE id = ?`,
		status, toMillis(endedAt), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *interviewRepo) SaveSummary(ctx context.Context, id, summary string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE local_sessions SET summary = ? WHERE id = ?`, summary, id); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

func (r *interviewRepo) ListSessions(ctx context.Context, limit int) ([]LocalSession, error) {
	q := `SELECT id, role, use_resume, status, started_at, ended_at, summary FROM local_sessions ORDER BY started_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []LocalSession
	for rows.Next() {
		var s LocalSession
		var started, ended int64
		if err := rows.Scan(&s.ID, &s.Role, &s.UseResume, &s.Status, &started, &ended, &s.Summary); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.StartedAt = fromMillis(started)
		s.EndedAt = fromMillis(ended)
		out = append(out, s)
	}
	return out, rows.Err()
}
