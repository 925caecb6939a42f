package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) SaveActive(ctx context.Context, s ActiveSession) error {
	if s.SessionID == "" {
		return errors.New("save active session: empty session id")
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO active_session (id, session_id, role, use_resume, mode, started_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET session_id = excluded.session_id, role = excluded.role,
			use_resume = excluded.use_resume, mode = excluded.mode, started_at = excluded.started_at`,
		s.SessionID, s.Role, s.UseResume, s.Mode, toMillis(s.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("save active session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Active(ctx context.Context) (*ActiveSession, error) {
	var s ActiveSession
	var started int64
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, role, use_resume, mode, started_at FROM active_session WHERE id = 1`,
	).Scan(&s.SessionID, &s.Role, &s.UseResume, &s.Mode, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	s.StartedAt = fromMillis(started)
	return &s, nil
}

func (r *sessionRepo) ClearActive(ctx context.Context, sessionID string) error {
	var err error
	if sessionID == "" {
		_, err = r.db.ExecContext(ctx, `DELETE FROM active_session`)
	} else {
		_, err = r.db.ExecContext(ctx, `DELETE FROM active_session WHERE session_id = ?`, sessionID)
	}
	if err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
