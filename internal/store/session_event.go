package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO session_events
		(sequence, timestamp, session_id, role, mode, action, questions_answered, duration_secs, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.SessionID, data.Role, data.Mode, data.Action,
		data.QuestionsAnswered, data.DurationSecs, data.Detail,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO answer_events
		(sequence, timestamp, session_id, question_index, question_text, answer,
		 provenance, substituted, auto_submitted, response_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UnixMilli(), data.SessionID, data.QuestionIndex, data.QuestionText,
		data.Answer, data.Provenance, data.Substituted, data.AutoSubmitted, data.ResponseSecs,
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	where, args := buildWhere(opts, true)
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, timestamp, session_id, role, mode,
		action, questions_answered, duration_secs, detail
		FROM session_events`+where+` ORDER BY sequence DESC`+limitClause(opts), args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEventRecord
	for rows.Next() {
		var e SessionEventRecord
		var ts int64
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.SessionID, &e.Role, &e.Mode,
			&e.Action, &e.QuestionsAnswered, &e.DurationSecs, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error) {
	where, args := buildWhere(opts, true)
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, timestamp, session_id, question_index,
		question_text, answer, provenance, substituted, auto_submitted, response_secs
		FROM answer_events`+where+` ORDER BY sequence ASC`+limitClause(opts), args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var out []AnswerEventRecord
	for rows.Next() {
		var e AnswerEventRecord
		var ts int64
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.SessionID, &e.QuestionIndex,
			&e.QuestionText, &e.Answer, &e.Provenance, &e.Substituted, &e.AutoSubmitted,
			&e.ResponseSecs); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
