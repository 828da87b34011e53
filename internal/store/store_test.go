package store

import (
	"testing"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(":memory:")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserIDRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if id, err := s.LoadUserID(); err != nil || id != "" {
		t.Fatalf("Fresh store must have no identity, got %q err=%v", id, err)
	}
	if err := s.SaveUserID("guest_abc"); err != nil {
		t.Fatalf("SaveUserID failed: %v", err)
	}
	if id, _ := s.LoadUserID(); id != "guest_abc" {
		t.Errorf("Expected guest_abc, got %q", id)
	}

	// Saving again overwrites.
	s.SaveUserID("member_7")
	if id, _ := s.LoadUserID(); id != "member_7" {
		t.Errorf("Expected member_7 after overwrite, got %q", id)
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveSessionID("sess-42"); err != nil {
		t.Fatalf("SaveSessionID failed: %v", err)
	}
	if id, _ := s.LoadSessionID(); id != "sess-42" {
		t.Errorf("Expected sess-42, got %q", id)
	}
}

func TestPendingMessageConsumedOnce(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetPendingMessage("김치찌개 레시피 알려줘"); err != nil {
		t.Fatalf("SetPendingMessage failed: %v", err)
	}

	msg, err := s.TakePendingMessage()
	if err != nil {
		t.Fatalf("TakePendingMessage failed: %v", err)
	}
	if msg != "김치찌개 레시피 알려줘" {
		t.Errorf("Expected pending message back, got %q", msg)
	}

	// Second take: already consumed.
	msg, err = s.TakePendingMessage()
	if err != nil {
		t.Fatalf("Second TakePendingMessage failed: %v", err)
	}
	if msg != "" {
		t.Errorf("Pending message must be consumed exactly once, got %q", msg)
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	s := newTestStore(t)

	turns := []struct{ role, content string }{
		{"user", "사과 2개 담아줘"},
		{"assistant", "사과 2개를 담았어요."},
		{"user", "결제할게"},
	}
	for _, turn := range turns {
		if err := s.AppendTranscript("sess-1", turn.role, turn.content); err != nil {
			t.Fatalf("AppendTranscript failed: %v", err)
		}
	}
	// A different session must not leak in.
	s.AppendTranscript("sess-2", "user", "other")

	got, err := s.LoadTranscript("sess-1", 0)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(got))
	}
	for i, turn := range turns {
		if got[i].Role != turn.role || got[i].Content != turn.content {
			t.Errorf("Turn %d mismatch: got %+v", i, got[i])
		}
	}
}

func TestTranscriptLimitKeepsNewest(t *testing.T) {
	s := newTestStore(t)

	s.AppendTranscript("sess-1", "user", "first")
	s.AppendTranscript("sess-1", "assistant", "second")
	s.AppendTranscript("sess-1", "user", "third")

	got, err := s.LoadTranscript("sess-1", 2)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(got))
	}
	if got[0].Content != "second" || got[1].Content != "third" {
		t.Errorf("Expected newest two turns in order, got %+v", got)
	}
}

func TestClearTranscript(t *testing.T) {
	s := newTestStore(t)

	s.AppendTranscript("sess-1", "user", "hello")
	if err := s.ClearTranscript("sess-1"); err != nil {
		t.Fatalf("ClearTranscript failed: %v", err)
	}
	got, _ := s.LoadTranscript("sess-1", 0)
	if len(got) != 0 {
		t.Errorf("Expected empty transcript, got %d turns", len(got))
	}
}

func TestFavoritesUpsertAndRemove(t *testing.T) {
	s := newTestStore(t)

	fav := types.FavoriteRecipe{RecipeID: "r-1", Title: "김치찌개", URL: "https://example.com/r-1"}
	if err := s.SaveFavorite(fav); err != nil {
		t.Fatalf("SaveFavorite failed: %v", err)
	}
	// Saving again with a new title refreshes instead of duplicating.
	fav.Title = "돼지고기 김치찌개"
	if err := s.SaveFavorite(fav); err != nil {
		t.Fatalf("Re-save failed: %v", err)
	}

	got, err := s.ListFavorites()
	if err != nil {
		t.Fatalf("ListFavorites failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 favorite, got %d", len(got))
	}
	if got[0].Title != "돼지고기 김치찌개" {
		t.Errorf("Expected refreshed title, got %q", got[0].Title)
	}

	if err := s.RemoveFavorite("r-1"); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
	if err := s.RemoveFavorite("r-missing"); err != nil {
		t.Errorf("Removing an unknown favorite must be a no-op, got %v", err)
	}
	if got, _ := s.ListFavorites(); len(got) != 0 {
		t.Errorf("Expected empty favorites, got %d", len(got))
	}
}

func TestReplaceFavorites(t *testing.T) {
	s := newTestStore(t)

	s.SaveFavorite(types.FavoriteRecipe{RecipeID: "stale", Title: "old"})

	err := s.ReplaceFavorites([]types.FavoriteRecipe{
		{RecipeID: "r-1", Title: "김치찌개"},
		{RecipeID: "r-2", Title: "된장찌개"},
	})
	if err != nil {
		t.Fatalf("ReplaceFavorites failed: %v", err)
	}

	got, _ := s.ListFavorites()
	if len(got) != 2 {
		t.Fatalf("Expected 2 favorites after replace, got %d", len(got))
	}
	for _, fav := range got {
		if fav.RecipeID == "stale" {
			t.Error("Stale favorite must be gone after replace")
		}
	}
}
