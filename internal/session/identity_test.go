package session

import (
	"fmt"
	"testing"
)

type fakeStore struct {
	userID  string
	loadErr error
	saved   []string
}

func (f *fakeStore) LoadUserID() (string, error) { return f.userID, f.loadErr }
func (f *fakeStore) SaveUserID(id string) error {
	f.saved = append(f.saved, id)
	return nil
}

func TestResolveOverrideWins(t *testing.T) {
	store := &fakeStore{userID: "persisted-1"}

	id := Resolve("  explicit-7  ", store)
	if id != "explicit-7" {
		t.Errorf("Expected trimmed override, got %q", id)
	}
	if len(store.saved) != 0 {
		t.Error("Override must not be persisted")
	}
}

func TestResolvePersistedID(t *testing.T) {
	store := &fakeStore{userID: "persisted-1"}

	if id := Resolve("", store); id != "persisted-1" {
		t.Errorf("Expected persisted id, got %q", id)
	}
}

func TestResolveGeneratesAndPersistsGuest(t *testing.T) {
	store := &fakeStore{}

	id := Resolve("", store)
	if !IsGuest(id) {
		t.Errorf("Expected a guest id, got %q", id)
	}
	if len(store.saved) != 1 || store.saved[0] != id {
		t.Errorf("Guest id must be persisted, saved=%v", store.saved)
	}
}

func TestResolveStoreErrorFallsBackToGuest(t *testing.T) {
	store := &fakeStore{loadErr: fmt.Errorf("db locked")}

	if id := Resolve("", store); !IsGuest(id) {
		t.Errorf("Expected guest fallback on store error, got %q", id)
	}
}

func TestResolveNilStore(t *testing.T) {
	if id := Resolve("", nil); !IsGuest(id) {
		t.Errorf("Expected guest id without a store, got %q", id)
	}
}

func TestGuestIDsAreUnique(t *testing.T) {
	if NewGuestID() == NewGuestID() {
		t.Error("Guest ids must be unique")
	}
}
