package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/budgetly/budgetly/internal/models"
)

// SaveMessage appends a message to a session transcript, creating the
// session row on first write and bumping its activity timestamp after.
func (s *SQLiteStore) SaveMessage(ctx context.Context, sessionID, title string, msg models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		sessionID, title, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chat_messages (session_id, id, sender, text, attached_image, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, msg.ID, string(msg.Sender), msg.Text, msg.AttachedImage, msg.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListSessions returns sidebar summaries for all sessions, most recently
// active first. The preview is the text of the latest message.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]models.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cs.id, cs.title, cs.updated_at,
		        COALESCE((SELECT text FROM chat_messages m
		                  WHERE m.session_id = cs.id
		                  ORDER BY m.created_at DESC, m.id DESC LIMIT 1), '')
		 FROM chat_sessions cs
		 ORDER BY cs.updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionSummary
	for rows.Next() {
		var sum models.SessionSummary
		var updatedAt int64
		if err := rows.Scan(&sum.ID, &sum.Title, &updatedAt, &sum.PreviewText); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.LastActivityLabel = activityLabel(time.Unix(updatedAt, 0))
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return out, nil
}

// GetTranscript returns the full ordered transcript of one session.
func (s *SQLiteStore) GetTranscript(ctx context.Context, sessionID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, sender, text, attached_image, created_at FROM chat_messages WHERE session_id = ? ORDER BY created_at, id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var msg models.Message
		var sender string
		var createdAt int64
		if err := rows.Scan(&msg.ID, &sender, &msg.Text, &msg.AttachedImage, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Sender = models.Sender(sender)
		msg.CreatedAt = time.Unix(createdAt, 0)
		msg.VisibleText = msg.Text
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return out, nil
}

// activityLabel renders a coarse "Just now" / "Yesterday" / date label for
// the sidebar listing.
func activityLabel(t time.Time) string {
	since := time.Since(t)
	switch {
	case since < time.Minute:
		return "Just now"
	case since < 24*time.Hour:
		return t.Format("3:04 PM")
	case since < 48*time.Hour:
		return "Yesterday"
	default:
		return t.Format("Jan 2")
	}
}
