// Package types defines the payload shapes exchanged with the Qook chatbot
// backend. Every endpoint gets an explicit result type with optional fields
// modeled as pointers, so presence checks are typed instead of ad hoc.
package types

import "time"

// =============================================================================
// CART
// =============================================================================

// CartItem is a single line in the cart. Name is the item key; the backend
// has no other identifier, so two products sharing a name collide.
type CartItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Membership carries the pricing parameters attached to the signed-in user.
type Membership struct {
	Grade                 string  `json:"grade,omitempty"`
	DiscountRate          float64 `json:"discount_rate"`
	FreeShippingThreshold int64   `json:"free_shipping_threshold"`
}

// Discount is one applied price adjustment. Amount is in won.
type Discount struct {
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Cart is the full cart snapshot. Subtotal, ShippingFee, Discounts and Total
// are derived fields owned by the server; the client copy is a disposable
// cache overwritten by the next server response.
type Cart struct {
	Items       []CartItem `json:"items"`
	Membership  Membership `json:"membership"`
	Subtotal    int64      `json:"subtotal"`
	ShippingFee int64      `json:"shipping_fee"`
	Discounts   []Discount `json:"discounts"`
	Total       int64      `json:"total"`
}

// ItemQuantity returns the quantity for the named item, 0 when absent.
func (c Cart) ItemQuantity(name string) int {
	for _, it := range c.Items {
		if it.Name == name {
			return it.Quantity
		}
	}
	return 0
}

// =============================================================================
// PRODUCTS / RECIPES
// =============================================================================

// Product is one entry of a product search payload.
type Product struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Origin     string `json:"origin,omitempty"`
	Category   string `json:"category,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Popularity int    `json:"popularity,omitempty"`
}

// SearchPayload is the product search side channel of a chat turn.
type SearchPayload struct {
	Query    string    `json:"query,omitempty"`
	Products []Product `json:"products"`
}

// Ingredient is one recipe ingredient with an optional matching product name.
type Ingredient struct {
	Name    string `json:"name"`
	Amount  string `json:"amount,omitempty"`
	Product string `json:"product,omitempty"`
}

// Recipe is a single recipe card.
type Recipe struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title"`
	ImageURL    string       `json:"image_url,omitempty"`
	URL         string       `json:"url,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Steps       []string     `json:"steps,omitempty"`
}

// RecipePayload is the recipe side channel of a chat turn.
type RecipePayload struct {
	Recipes     []Recipe     `json:"recipes"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

// =============================================================================
// ORDERS / CUSTOMER SERVICE
// =============================================================================

// OrderSummary is one row of the customer-service order list.
type OrderSummary struct {
	OrderCode  string `json:"order_code"`
	OrderDate  string `json:"order_date"`
	Status     string `json:"order_status"`
	TotalPrice int64  `json:"total_price"`
}

// OrderPayload is the order side channel of a chat turn.
type OrderPayload struct {
	Orders []OrderSummary `json:"orders"`
}

// OrderItem is one line of an order detail view.
type OrderItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderDetails is the response of /api/orders/details.
type OrderDetails struct {
	OrderCode      string      `json:"order_code"`
	Items          []OrderItem `json:"items"`
	Subtotal       int64       `json:"subtotal"`
	DiscountAmount int64       `json:"discount_amount"`
	ShippingFee    int64       `json:"shipping_fee"`
	TotalPrice     int64       `json:"total_price"`
	OrderDate      string      `json:"order_date"`
	OrderStatus    string      `json:"order_status"`
}

// CSTicket is an opened customer-service ticket.
type CSTicket struct {
	TicketID  string `json:"ticket_id"`
	OrderCode string `json:"order_code,omitempty"`
	Product   string `json:"product,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CSPayload is the customer-service side channel of a chat turn.
type CSPayload struct {
	Ticket *CSTicket      `json:"ticket,omitempty"`
	Orders []OrderSummary `json:"orders,omitempty"`
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is one chat turn. All side channels are optional; a nil field
// means the corresponding sidebar section stays hidden.
type ChatResponse struct {
	Response  string         `json:"response"`
	SessionID string         `json:"session_id,omitempty"`
	Search    *SearchPayload `json:"search,omitempty"`
	Recipe    *RecipePayload `json:"recipe,omitempty"`
	Cart      *Cart          `json:"cart,omitempty"`
	Order     *OrderPayload  `json:"order,omitempty"`
	CS        *CSPayload     `json:"cs,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// UPLOADS / FAVORITES
// =============================================================================

// UploadResult is the response of the image/audio upload endpoints. The
// backend is inconsistent about the URL field name, so both are accepted.
type UploadResult struct {
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ResolvedURL returns whichever URL field the backend populated.
func (u *UploadResult) ResolvedURL() string {
	if u.URL != "" {
		return u.URL
	}
	return u.ImageURL
}

// FavoriteRecipe is one saved recipe in the favorites list.
type FavoriteRecipe struct {
	RecipeID string    `json:"recipe_id"`
	Title    string    `json:"title"`
	ImageURL string    `json:"image_url,omitempty"`
	URL      string    `json:"url,omitempty"`
	SavedAt  time.Time `json:"saved_at,omitempty"`
}

// TranscriptMessage is one persisted chat bubble.
type TranscriptMessage struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}
