package api

import (
	"context"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// UploadImage uploads a product photo for vision search and returns the
// hosted URL.
func (c *Client) UploadImage(ctx context.Context, path string) (*types.UploadResult, error) {
	fields := []multipartField{{"user_id", c.userID}}

	var resp types.UploadResult
	if err := c.doMultipart(ctx, "/api/upload/image", "image", path, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadAudio uploads a voice recording for transcription. The backend
// returns the recognized text.
func (c *Client) UploadAudio(ctx context.Context, path string) (*types.UploadResult, error) {
	fields := []multipartField{{"user_id", c.userID}}

	var resp types.UploadResult
	if err := c.doMultipart(ctx, "/api/upload/audio", "audio", path, fields, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
