package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// SendMessage posts one chat turn. The response carries the bot reply plus
// optional side channels (search results, recipes, cart snapshot, orders,
// customer service) which the sidebar router dispatches on.
func (c *Client) SendMessage(ctx context.Context, message, sessionID string) (*types.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("empty message")
	}

	req := types.ChatRequest{
		Message:   message,
		UserID:    c.userID,
		SessionID: sessionID,
	}

	var resp types.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
