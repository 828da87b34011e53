// Package cart keeps the client-side cart mirror: a disposable cache of the
// server's cart snapshot, optimistically recomputed on quantity edits for
// instant feedback and overwritten by every authoritative server response.
// The pricing formula here must exactly mirror the server's; any divergence
// is a correctness bug surfaced only visually between an edit and the next
// successful sync.
package cart

import (
	"math"
	"sync"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// Action is an optimistic quantity edit.
type Action int

const (
	ActionIncrement Action = iota // quantity +1
	ActionDecrement               // quantity -1, removal at 0
	ActionRemove                  // force quantity to 0
)

// Discount types produced by the local recompute.
const (
	DiscountMembership   = "membership"
	DiscountFreeShipping = "free_shipping"
)

// Rules carries the pricing constants mirrored from the server.
type Rules struct {
	// BaseShippingFee in won, charged on any non-empty cart.
	BaseShippingFee int64

	// FreeShippingThreshold in won, used when the snapshot's membership does
	// not carry its own threshold.
	FreeShippingThreshold int64
}

// DefaultRules matches the server's current pricing constants.
func DefaultRules() Rules {
	return Rules{
		BaseShippingFee:       3000,
		FreeShippingThreshold: 30000,
	}
}

// Recalculate computes the derived cart fields from items and membership.
// Pure function: subtotal, membership discount (floored), flat shipping fee,
// free-shipping discount when the raw subtotal reaches the threshold, and
// the clamped total.
func Recalculate(cart *types.Cart, rules Rules) {
	var subtotal int64
	for _, it := range cart.Items {
		subtotal += it.UnitPrice * int64(it.Quantity)
	}
	cart.Subtotal = subtotal
	cart.Discounts = cart.Discounts[:0]

	if rate := cart.Membership.DiscountRate; rate > 0 && subtotal > 0 {
		amount := int64(math.Floor(float64(subtotal) * rate))
		if amount > 0 {
			cart.Discounts = append(cart.Discounts, types.Discount{
				Type:        DiscountMembership,
				Amount:      amount,
				Description: "멤버십 할인",
			})
		}
	}

	if len(cart.Items) == 0 {
		cart.ShippingFee = 0
	} else {
		cart.ShippingFee = rules.BaseShippingFee
	}

	threshold := cart.Membership.FreeShippingThreshold
	if threshold <= 0 {
		threshold = rules.FreeShippingThreshold
	}
	// Free shipping qualifies on the raw subtotal, before the membership
	// discount is taken off. This mirrors the server's cart endpoint.
	if cart.ShippingFee > 0 && subtotal >= threshold {
		cart.Discounts = append(cart.Discounts, types.Discount{
			Type:        DiscountFreeShipping,
			Amount:      cart.ShippingFee,
			Description: "무료배송",
		})
	}

	var discountSum int64
	for _, d := range cart.Discounts {
		discountSum += d.Amount
	}
	total := subtotal + cart.ShippingFee - discountSum
	if total < 0 {
		total = 0
	}
	cart.Total = total
}

// State holds the current cart snapshot. All mutation happens under the
// mutex; callers only ever see copies.
type State struct {
	mu    sync.Mutex
	cart  types.Cart
	rules Rules
}

// NewState creates an empty cart mirror with the given pricing rules.
func NewState(rules Rules) *State {
	s := &State{rules: rules}
	Recalculate(&s.cart, rules)
	return s
}

// Snapshot returns a copy of the current cart.
func (s *State) Snapshot() types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.cart)
}

// Replace overwrites the local mirror with a server-authoritative snapshot.
// A nil cart is ignored (some endpoints omit the field).
func (s *State) Replace(cart *types.Cart) {
	if cart == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = copyCart(*cart)
	logging.CartDebug("replaced snapshot: items=%d total=%d", len(s.cart.Items), s.cart.Total)
}

// ApplyLocalDelta mutates the named item's quantity optimistically and
// recomputes the derived fields. An unknown name is a no-op for increment
// and decrement. Items reaching quantity <= 0 are dropped. Returns the new
// snapshot and whether anything changed.
func (s *State) ApplyLocalDelta(name string, action Action) (types.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.cart.Items {
		if it.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return copyCart(s.cart), false
	}

	switch action {
	case ActionIncrement:
		s.cart.Items[idx].Quantity++
	case ActionDecrement:
		s.cart.Items[idx].Quantity--
	case ActionRemove:
		s.cart.Items[idx].Quantity = 0
	}

	if s.cart.Items[idx].Quantity <= 0 {
		s.cart.Items = append(s.cart.Items[:idx], s.cart.Items[idx+1:]...)
	}

	Recalculate(&s.cart, s.rules)
	logging.CartDebug("local delta %q action=%d -> total=%d", name, action, s.cart.Total)
	return copyCart(s.cart), true
}

// Quantities returns the current in-memory quantity per item name.
func (s *State) Quantities() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := make(map[string]int, len(s.cart.Items))
	for _, it := range s.cart.Items {
		q[it.Name] = it.Quantity
	}
	return q
}

func copyCart(c types.Cart) types.Cart {
	out := c
	out.Items = append([]types.CartItem(nil), c.Items...)
	out.Discounts = append([]types.Discount(nil), c.Discounts...)
	return out
}
