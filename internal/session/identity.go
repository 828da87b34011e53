// Package session resolves and persists the user identity sent with every
// backend request. Identity comes from, in order: an explicit override
// (flag, env or config), the id persisted by a previous run, or a freshly
// generated guest id which is then persisted for reload continuity.
package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

// Store is the persistence surface the resolver needs. Implemented by
// *store.LocalStore.
type Store interface {
	LoadUserID() (string, error)
	SaveUserID(id string) error
}

// GuestPrefix marks generated guest identities.
const GuestPrefix = "guest_"

// Resolve returns the user id to use for this run.
func Resolve(override string, store Store) string {
	if id := strings.TrimSpace(override); id != "" {
		logging.Session("identity from override: %s", id)
		return id
	}

	if store != nil {
		id, err := store.LoadUserID()
		if err != nil {
			logging.Get(logging.CategorySession).Warn("failed to load persisted identity: %v", err)
		} else if id != "" {
			logging.SessionDebug("identity from store: %s", id)
			return id
		}
	}

	id := NewGuestID()
	if store != nil {
		if err := store.SaveUserID(id); err != nil {
			logging.Get(logging.CategorySession).Warn("failed to persist guest identity: %v", err)
		}
	}
	logging.Session("generated guest identity: %s", id)
	return id
}

// NewGuestID generates a fresh guest identity.
func NewGuestID() string {
	return fmt.Sprintf("%s%s", GuestPrefix, uuid.NewString())
}

// IsGuest reports whether an id was generated rather than assigned.
func IsGuest(id string) bool {
	return strings.HasPrefix(id, GuestPrefix)
}
