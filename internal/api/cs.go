package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// EvidenceRequest describes a customer-service evidence photo submission.
type EvidenceRequest struct {
	ImagePath string
	OrderCode string
	Product   string
	Quantity  int
}

type csEnvelope struct {
	CS *types.CSPayload `json:"cs"`
}

// SubmitEvidence uploads an evidence photo for a damaged/wrong item claim
// and returns the opened ticket.
func (c *Client) SubmitEvidence(ctx context.Context, req EvidenceRequest) (*types.CSTicket, error) {
	if req.ImagePath == "" {
		return nil, fmt.Errorf("evidence image required")
	}

	fields := []multipartField{
		{"user_id", c.userID},
		{"order_code", req.OrderCode},
		{"product", req.Product},
		{"quantity", strconv.Itoa(req.Quantity)},
	}

	var resp csEnvelope
	if err := c.doMultipart(ctx, "/api/cs/evidence", "image", req.ImagePath, fields, &resp); err != nil {
		return nil, err
	}
	if resp.CS == nil || resp.CS.Ticket == nil {
		return nil, fmt.Errorf("backend returned no ticket")
	}
	return resp.CS.Ticket, nil
}
