package store

import (
	"fmt"
	"time"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// =============================================================================
// CHAT TRANSCRIPT
// =============================================================================

// AppendTranscript records one chat bubble for the given session.
func (s *LocalStore) AppendTranscript(sessionID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Appending transcript turn: session=%s role=%s len=%d", sessionID, role, len(content))

	_, err := s.db.Exec(
		`INSERT INTO transcript (session_id, role, content) VALUES (?, ?, ?)`,
		sessionID, role, content,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to append transcript turn: %v", err)
		return fmt.Errorf("failed to append transcript: %w", err)
	}
	return nil
}

// LoadTranscript returns the most recent turns of a session in
// chronological order. limit <= 0 means 50.
func (s *LocalStore) LoadTranscript(sessionID string, limit int) ([]types.TranscriptMessage, error) {
	timer := logging.StartTimer(logging.CategoryStore, "LoadTranscript")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT role, content, created_at FROM transcript
		 WHERE session_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to load transcript: %v", err)
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	defer rows.Close()

	var reversed []types.TranscriptMessage
	for rows.Next() {
		var msg types.TranscriptMessage
		var created string
		if err := rows.Scan(&msg.Role, &msg.Content, &created); err != nil {
			continue
		}
		if t, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
			msg.Time = t
		}
		reversed = append(reversed, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript rows: %w", err)
	}

	// The query walks newest-first; flip back to chronological.
	out := make([]types.TranscriptMessage, len(reversed))
	for i, msg := range reversed {
		out[len(reversed)-1-i] = msg
	}
	logging.StoreDebug("Loaded %d transcript turns for session %s", len(out), sessionID)
	return out, nil
}

// ClearTranscript deletes every turn of a session.
func (s *LocalStore) ClearTranscript(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM transcript WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	logging.Store("Transcript cleared for session %s", sessionID)
	return nil
}
