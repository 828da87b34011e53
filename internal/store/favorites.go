package store

import (
	"fmt"
	"time"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// =============================================================================
// FAVORITE RECIPES (offline mirror of the backend list)
// =============================================================================

// SaveFavorite upserts one favorite recipe. Saving an already-saved recipe
// refreshes its metadata, so syncing is idempotent.
func (s *LocalStore) SaveFavorite(fav types.FavoriteRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO favorites (recipe_id, title, image_url, url, saved_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		fav.RecipeID, fav.Title, fav.ImageURL, fav.URL,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to save favorite %s: %v", fav.RecipeID, err)
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	logging.StoreDebug("Favorite saved: %s", fav.RecipeID)
	return nil
}

// RemoveFavorite deletes a favorite. Removing an unknown id is a no-op.
func (s *LocalStore) RemoveFavorite(recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM favorites WHERE recipe_id = ?`, recipeID); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to remove favorite %s: %v", recipeID, err)
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	logging.StoreDebug("Favorite removed: %s", recipeID)
	return nil
}

// ListFavorites returns every saved recipe, newest first.
func (s *LocalStore) ListFavorites() ([]types.FavoriteRecipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT recipe_id, title, COALESCE(image_url, ''), COALESCE(url, ''), saved_at
		 FROM favorites
		 ORDER BY saved_at DESC, recipe_id`,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to list favorites: %v", err)
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var out []types.FavoriteRecipe
	for rows.Next() {
		var fav types.FavoriteRecipe
		var saved string
		if err := rows.Scan(&fav.RecipeID, &fav.Title, &fav.ImageURL, &fav.URL, &saved); err != nil {
			continue
		}
		if t, err := time.Parse("2006-01-02 15:04:05", saved); err == nil {
			fav.SavedAt = t
		}
		out = append(out, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorite rows: %w", err)
	}
	return out, nil
}

// ReplaceFavorites swaps the whole local list for the backend's, used after
// a bulk sync.
func (s *LocalStore) ReplaceFavorites(favs []types.FavoriteRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM favorites`); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	for _, fav := range favs {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO favorites (recipe_id, title, image_url, url, saved_at)
			 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			fav.RecipeID, fav.Title, fav.ImageURL, fav.URL,
		)
		if err != nil {
			return fmt.Errorf("failed to insert favorite %s: %w", fav.RecipeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.Store("Favorites replaced with %d entries", len(favs))
	return nil
}
