package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

// =============================================================================
// KEY/VALUE SETTINGS (identity, session continuity, pending message)
// =============================================================================

const (
	keyUserID         = "user_id"
	keySessionID      = "session_id"
	keyPendingMessage = "pending_message"
)

func (s *LocalStore) setSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		key, value,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save setting %s: %v", key, err)
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	logging.StoreDebug("Setting saved: %s", key)
	return nil
}

func (s *LocalStore) getSetting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to load setting %s: %v", key, err)
		return "", fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

// SaveUserID persists the resolved user identity.
func (s *LocalStore) SaveUserID(id string) error {
	return s.setSetting(keyUserID, id)
}

// LoadUserID returns the persisted identity, empty when none.
func (s *LocalStore) LoadUserID() (string, error) {
	return s.getSetting(keyUserID)
}

// SaveSessionID persists the chat session id for reload continuity.
func (s *LocalStore) SaveSessionID(id string) error {
	return s.setSetting(keySessionID, id)
}

// LoadSessionID returns the persisted session id, empty when none.
func (s *LocalStore) LoadSessionID() (string, error) {
	return s.getSetting(keySessionID)
}

// SetPendingMessage leaves a message for the next chat run to send as its
// first turn.
func (s *LocalStore) SetPendingMessage(text string) error {
	return s.setSetting(keyPendingMessage, text)
}

// TakePendingMessage returns the pending message and clears it in the same
// transaction, so a message is consumed exactly once.
func (s *LocalStore) TakePendingMessage() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var value string
	err = tx.QueryRow(`SELECT value FROM settings WHERE key = ?`, keyPendingMessage).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load pending message: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM settings WHERE key = ?`, keyPendingMessage); err != nil {
		return "", fmt.Errorf("failed to clear pending message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	logging.Store("Pending message consumed (%d bytes)", len(value))
	return value, nil
}
