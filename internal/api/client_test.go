package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, UserID: "user-1"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func TestSendMessageDecodesSideChannels(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.UserID != "user-1" || req.Message != "apples please" {
			t.Errorf("Unexpected request: %+v", req)
		}

		resp := types.ChatResponse{
			Response:  "Here are some apples.",
			SessionID: "sess-9",
			Search: &types.SearchPayload{
				Products: []types.Product{{Name: "Apple", Price: 3000}},
			},
			Cart: &types.Cart{
				Items: []types.CartItem{{Name: "Apple", Quantity: 2, UnitPrice: 3000}},
				Total: 9000,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))

	resp, err := client.SendMessage(context.Background(), "apples please", "sess-9")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.Response != "Here are some apples." {
		t.Errorf("Unexpected reply: %q", resp.Response)
	}
	if resp.Search == nil || len(resp.Search.Products) != 1 {
		t.Error("Expected search payload with one product")
	}
	if resp.Recipe != nil || resp.Order != nil || resp.CS != nil {
		t.Error("Absent side channels must stay nil")
	}
	if resp.Cart == nil || resp.Cart.Total != 9000 {
		t.Error("Expected cart snapshot with total 9000")
	}
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Empty message must not reach the network")
	}))

	if _, err := client.SendMessage(context.Background(), "   ", ""); err == nil {
		t.Error("Expected validation error for empty message")
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "product not found"})
	}))

	_, err := client.UpdateCart(context.Background(), "Nope", 1)
	if err == nil {
		t.Fatal("Expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Detail != "product not found" {
		t.Errorf("Unexpected APIError: %+v", apiErr)
	}
}

func TestCSRFTokenEchoedFromCookie(t *testing.T) {
	var sawToken string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/get", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
		json.NewEncoder(w).Encode(cartEnvelope{Cart: &types.Cart{}})
	})
	mux.HandleFunc("/api/cart/update", func(w http.ResponseWriter, r *http.Request) {
		sawToken = r.Header.Get("X-CSRFToken")
		json.NewEncoder(w).Encode(cartEnvelope{Cart: &types.Cart{}})
	})

	client, _ := newTestClient(t, mux)

	// First call receives the cookie, second call must echo it.
	if _, err := client.GetCart(context.Background()); err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if _, err := client.UpdateCart(context.Background(), "Apple", 3); err != nil {
		t.Fatalf("UpdateCart failed: %v", err)
	}
	if sawToken != "tok-123" {
		t.Errorf("Expected X-CSRFToken tok-123, got %q", sawToken)
	}
}

func TestUpdateCartSendsAbsoluteQuantity(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["product_name"] != "Apple" {
			t.Errorf("Unexpected product_name: %v", body["product_name"])
		}
		if q, _ := body["quantity"].(float64); int(q) != 4 {
			t.Errorf("Expected quantity 4, got %v", body["quantity"])
		}
		json.NewEncoder(w).Encode(cartEnvelope{Cart: &types.Cart{
			Items: []types.CartItem{{Name: "Apple", Quantity: 4, UnitPrice: 3000}},
			Total: 15000,
		}})
	}))

	cart, err := client.UpdateCart(context.Background(), "Apple", 4)
	if err != nil {
		t.Fatalf("UpdateCart failed: %v", err)
	}
	if cart.ItemQuantity("Apple") != 4 {
		t.Errorf("Expected server quantity 4, got %d", cart.ItemQuantity("Apple"))
	}
}

func TestSubmitEvidenceMultipart(t *testing.T) {
	imgPath := filepath.Join(t.TempDir(), "damage.jpg")
	if err := os.WriteFile(imgPath, []byte("not-really-a-jpeg"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Not a multipart request: %v", err)
		}
		if r.FormValue("order_code") != "ORD-7" || r.FormValue("product") != "Eggs" {
			t.Errorf("Unexpected fields: %v", r.MultipartForm.Value)
		}
		if r.FormValue("quantity") != "2" {
			t.Errorf("Expected quantity field 2, got %q", r.FormValue("quantity"))
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("Missing image part: %v", err)
		}
		file.Close()

		json.NewEncoder(w).Encode(csEnvelope{CS: &types.CSPayload{
			Ticket: &types.CSTicket{TicketID: "CS-1", Status: "open"},
		}})
	}))

	ticket, err := client.SubmitEvidence(context.Background(), EvidenceRequest{
		ImagePath: imgPath,
		OrderCode: "ORD-7",
		Product:   "Eggs",
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("SubmitEvidence failed: %v", err)
	}
	if ticket.TicketID != "CS-1" {
		t.Errorf("Unexpected ticket: %+v", ticket)
	}
}

func TestUploadAudioReturnsTranscript(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "voice.webm")
	if err := os.WriteFile(audioPath, []byte("opus-bytes"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload/audio" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(types.UploadResult{Text: "사과 두 개 담아줘"})
	}))

	res, err := client.UploadAudio(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("UploadAudio failed: %v", err)
	}
	if res.Text != "사과 두 개 담아줘" {
		t.Errorf("Unexpected transcript: %q", res.Text)
	}
}

func TestUploadImageReturnsHostedURL(t *testing.T) {
	imgPath := filepath.Join(t.TempDir(), "basket.jpg")
	if err := os.WriteFile(imgPath, []byte("jpeg-bytes"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload/image" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Not a multipart request: %v", err)
		}
		if r.FormValue("user_id") != "user-1" {
			t.Errorf("Unexpected user_id: %q", r.FormValue("user_id"))
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("Missing image part: %v", err)
		}
		file.Close()
		json.NewEncoder(w).Encode(types.UploadResult{URL: "http://img/basket.jpg"})
	}))

	res, err := client.UploadImage(context.Background(), imgPath)
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}
	if res.ResolvedURL() != "http://img/basket.jpg" {
		t.Errorf("Unexpected hosted URL: %q", res.ResolvedURL())
	}
}

func TestFavoriteMutations(t *testing.T) {
	var gotAdd, gotRemove, gotBulk map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recipes/favorites", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		switch r.Method {
		case http.MethodPost:
			gotAdd = body
		case http.MethodDelete:
			gotRemove = body
		default:
			t.Errorf("Unexpected method: %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/recipes/favorites/bulk-sync", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBulk)
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	if err := client.AddFavorite(ctx, types.FavoriteRecipe{RecipeID: "r-1", Title: "김치찌개"}); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if gotAdd["user_id"] != "user-1" {
		t.Errorf("AddFavorite must carry the user id, got %v", gotAdd)
	}
	if recipe, _ := gotAdd["recipe"].(map[string]any); recipe["recipe_id"] != "r-1" {
		t.Errorf("Unexpected recipe body: %v", gotAdd["recipe"])
	}

	if err := client.RemoveFavorite(ctx, "r-1"); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
	if gotRemove["recipe_id"] != "r-1" {
		t.Errorf("Unexpected remove body: %v", gotRemove)
	}

	err := client.BulkSyncFavorites(ctx, []types.FavoriteRecipe{
		{RecipeID: "r-1", Title: "김치찌개"},
		{RecipeID: "r-2", Title: "된장찌개"},
	})
	if err != nil {
		t.Fatalf("BulkSyncFavorites failed: %v", err)
	}
	if favs, _ := gotBulk["favorites"].([]any); len(favs) != 2 {
		t.Errorf("Expected two favorites in bulk body, got %v", gotBulk["favorites"])
	}
}

func TestGetFavoritesEscapesUserID(t *testing.T) {
	var gotUserID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.URL.Query().Get("user_id")
		json.NewEncoder(w).Encode(favoritesEnvelope{})
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, UserID: "guest a&b=c"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, err := client.GetFavorites(context.Background()); err != nil {
		t.Fatalf("GetFavorites failed: %v", err)
	}
	if gotUserID != "guest a&b=c" {
		t.Errorf("Reserved characters must survive the query string, got %q", gotUserID)
	}
}

func TestGetCartEmptyEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))

	cart, err := client.GetCart(context.Background())
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if cart != nil {
		t.Errorf("Missing cart field must yield a nil snapshot, got %+v", cart)
	}
}

func TestUploadResultResolvedURL(t *testing.T) {
	r := &types.UploadResult{ImageURL: "http://img/1.jpg"}
	if r.ResolvedURL() != "http://img/1.jpg" {
		t.Errorf("Expected image_url fallback, got %q", r.ResolvedURL())
	}
	r.URL = "http://img/2.jpg"
	if r.ResolvedURL() != "http://img/2.jpg" {
		t.Errorf("url field must win, got %q", r.ResolvedURL())
	}
}

func TestNoRetryOnFailure(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := client.GetCart(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected exactly one request (no retries), got %d", calls)
	}
}
