package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

type favoritesEnvelope struct {
	Favorites []types.FavoriteRecipe `json:"favorites"`
}

// GetFavorites fetches the user's saved recipes.
func (c *Client) GetFavorites(ctx context.Context) ([]types.FavoriteRecipe, error) {
	var resp favoritesEnvelope
	q := url.Values{"user_id": {c.userID}}
	path := "/api/recipes/favorites?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite saves one recipe.
func (c *Client) AddFavorite(ctx context.Context, recipe types.FavoriteRecipe) error {
	body := map[string]any{
		"user_id": c.userID,
		"recipe":  recipe,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/recipes/favorites", body, nil)
}

// RemoveFavorite deletes one saved recipe.
func (c *Client) RemoveFavorite(ctx context.Context, recipeID string) error {
	body := map[string]any{
		"user_id":   c.userID,
		"recipe_id": recipeID,
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/recipes/favorites", body, nil)
}

// BulkSyncFavorites replaces the server-side favorites with the local set,
// used to reconcile favorites collected while signed out.
func (c *Client) BulkSyncFavorites(ctx context.Context, favorites []types.FavoriteRecipe) error {
	body := map[string]any{
		"user_id":   c.userID,
		"favorites": favorites,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/recipes/favorites/bulk-sync", body, nil)
}
