package api

import (
	"context"
	"net/http"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// OrderDetails fetches the detail view for one order code.
func (c *Client) OrderDetails(ctx context.Context, orderCode string) (*types.OrderDetails, error) {
	body := map[string]string{
		"order_code": orderCode,
		"user_id":    c.userID,
	}

	var resp types.OrderDetails
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders/details", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
