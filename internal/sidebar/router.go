// Package sidebar decides which side panes a chat-turn response opens and
// provides the deterministic sort/pagination applied to product lists.
package sidebar

import (
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// Visibility says which panes to show. A hidden pane is also cleared: the
// next response owns the sidebar completely.
type Visibility struct {
	Products bool
	Recipes  bool
	Cart     bool
	Orders   bool
}

// Route inspects a chat response and shows a pane iff its payload is
// present and non-empty. Pure dispatch, no state.
func Route(resp *types.ChatResponse) Visibility {
	var v Visibility
	if resp == nil {
		return v
	}

	if resp.Search != nil && len(resp.Search.Products) > 0 {
		v.Products = true
	}
	if resp.Recipe != nil && (len(resp.Recipe.Recipes) > 0 || len(resp.Recipe.Ingredients) > 0) {
		v.Recipes = true
	}
	if resp.Cart != nil && len(resp.Cart.Items) > 0 {
		v.Cart = true
	}
	// Customer-service turns carry their order list in the cs payload.
	if resp.Order != nil && len(resp.Order.Orders) > 0 {
		v.Orders = true
	}
	if resp.CS != nil && len(resp.CS.Orders) > 0 {
		v.Orders = true
	}
	return v
}

// Any reports whether any pane is visible.
func (v Visibility) Any() bool {
	return v.Products || v.Recipes || v.Cart || v.Orders
}
