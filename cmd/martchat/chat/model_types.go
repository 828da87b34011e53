package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/cmd/martchat/ui"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/api"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/capture"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/cart"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/config"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/handoff"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/sidebar"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// =============================================================================
// CORE TYPES
// =============================================================================

// Message is one chat bubble in the history.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
	Time    time.Time
}

// Backend is the slice of the API client the chat model needs. Satisfied by
// *api.Client; tests substitute a fake.
type Backend interface {
	SendMessage(ctx context.Context, message, sessionID string) (*types.ChatResponse, error)
	GetCart(ctx context.Context) (*types.Cart, error)
	UpdateCart(ctx context.Context, productName string, quantity int) (*types.Cart, error)
	BulkAdd(ctx context.Context, products []api.ProductQuantity) (*api.BulkAddResult, error)
	CheckoutSelected(ctx context.Context, products []string) (*api.CheckoutResult, error)
	OrderDetails(ctx context.Context, orderCode string) (*types.OrderDetails, error)
	SubmitEvidence(ctx context.Context, req api.EvidenceRequest) (*types.CSTicket, error)
	UploadImage(ctx context.Context, path string) (*types.UploadResult, error)
	UploadAudio(ctx context.Context, path string) (*types.UploadResult, error)
	GetFavorites(ctx context.Context) ([]types.FavoriteRecipe, error)
	AddFavorite(ctx context.Context, recipe types.FavoriteRecipe) error
	RemoveFavorite(ctx context.Context, recipeID string) error
}

// Store is the slice of the local store the chat model needs.
type Store interface {
	AppendTranscript(sessionID, role, content string) error
	LoadTranscript(sessionID string, limit int) ([]types.TranscriptMessage, error)
	ClearTranscript(sessionID string) error
	SaveSessionID(id string) error
	LoadSessionID() (string, error)
	SaveFavorite(fav types.FavoriteRecipe) error
	RemoveFavorite(recipeID string) error
	ReplaceFavorites(favs []types.FavoriteRecipe) error
}

// Options wires the chat model to its collaborators.
type Options struct {
	Client  Backend
	Store   Store
	Syncer  *cart.Syncer
	State   *cart.State
	Handoff *handoff.Watcher
	Config  config.Config
	UserID  string
}

// Model is the main model for the interactive chat interface
type Model struct {
	// UI Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// State
	history   []Message
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool

	// Sidebar
	visible  sidebar.Visibility
	lastResp *types.ChatResponse
	sortKey  sidebar.SortKey
	page     int
	pageSize int

	// Cart
	cartState *cart.State
	syncer    *cart.Syncer

	// Capture flows (pointers: the bubbletea runtime copies the model)
	evidence *capture.Evidence
	voice    *capture.Voice

	// Session State
	sessionID string
	userID    string

	// Backend
	client  Backend
	store   Store
	handoff *handoff.Watcher
	cfg     config.Config
}

// =============================================================================
// ASYNC MESSAGES
// =============================================================================

// chatResponseMsg carries a completed chat turn.
type chatResponseMsg struct {
	resp *types.ChatResponse
}

// chatErrMsg carries a failed chat turn. The error becomes an apology
// bubble, never a crash.
type chatErrMsg struct {
	err error
}

// bulkAddMsg carries the result of adding all recipe ingredients at once.
type bulkAddMsg struct {
	result *api.BulkAddResult
	err    error
}

// checkoutDoneMsg carries the result of a flush-then-checkout.
type checkoutDoneMsg struct {
	result *api.CheckoutResult
	err    error
}

// orderDetailsMsg carries a fetched order detail view.
type orderDetailsMsg struct {
	details *types.OrderDetails
	err     error
}

// favoritesMsg carries the favorites list from the backend.
type favoritesMsg struct {
	favs []types.FavoriteRecipe
	err  error
}

// favSavedMsg carries the outcome of saving one favorite recipe.
type favSavedMsg struct {
	title string
	err   error
}

// favRemovedMsg carries the outcome of removing one favorite recipe.
type favRemovedMsg struct {
	err error
}

// imageUploadedMsg carries the hosted URL of a vision-search photo.
type imageUploadedMsg struct {
	url string
	err error
}

// evidenceDoneMsg carries the outcome of an evidence photo upload.
type evidenceDoneMsg struct {
	ticket *types.CSTicket
	err    error
}

// voiceTextMsg carries the transcription of a recorded question.
type voiceTextMsg struct {
	text string
	err  error
}

// handoffMsg carries a pending message left by another process.
type handoffMsg struct {
	text string
}
