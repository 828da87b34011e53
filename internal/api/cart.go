package api

import (
	"context"
	"net/http"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// ProductQuantity names a product and a desired quantity for bulk endpoints.
type ProductQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type cartEnvelope struct {
	Cart *types.Cart `json:"cart"`
}

// BulkAddResult is the response of /api/cart/bulk-add.
type BulkAddResult struct {
	Cart       *types.Cart `json:"cart"`
	AddedCount int         `json:"added_count"`
}

// CheckoutResult is the response of /api/cart/checkout-selected.
type CheckoutResult struct {
	Cart  *types.Cart         `json:"cart"`
	Order *types.OrderSummary `json:"order,omitempty"`
	Meta  map[string]any      `json:"meta,omitempty"`
}

// GetCart fetches the authoritative cart snapshot.
func (c *Client) GetCart(ctx context.Context) (*types.Cart, error) {
	body := map[string]string{"user_id": c.userID}

	var resp cartEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/cart/get", body, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

// UpdateCart sets the absolute quantity for one product and returns the
// server's recomputed cart. Quantity 0 removes the item.
func (c *Client) UpdateCart(ctx context.Context, productName string, quantity int) (*types.Cart, error) {
	body := map[string]any{
		"user_id":      c.userID,
		"product_name": productName,
		"quantity":     quantity,
	}

	var resp cartEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/cart/update", body, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

// BulkAdd adds several products at once (recipe ingredient baskets).
func (c *Client) BulkAdd(ctx context.Context, products []ProductQuantity) (*BulkAddResult, error) {
	body := map[string]any{
		"user_id":  c.userID,
		"products": products,
	}

	var resp BulkAddResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/cart/bulk-add", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckoutSelected checks out the named products.
func (c *Client) CheckoutSelected(ctx context.Context, products []string) (*CheckoutResult, error) {
	body := map[string]any{
		"user_id":  c.userID,
		"products": products,
	}

	var resp CheckoutResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/cart/checkout-selected", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveSelected removes the named products from the cart.
func (c *Client) RemoveSelected(ctx context.Context, products []string) (*types.Cart, error) {
	body := map[string]any{
		"user_id":  c.userID,
		"products": products,
	}

	var resp cartEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/cart/remove-selected", body, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}
