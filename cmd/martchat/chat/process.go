// Package chat provides the interactive TUI for the Qook grocery chatbot.
// This file handles chat turn processing and response routing.
package chat

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/api"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/capture"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/sidebar"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// apologyBubble is shown whenever a backend call fails. Failures never
// crash the interface.
const apologyBubble = "죄송해요, 답변을 가져오지 못했어요. 잠시 후 다시 시도해 주세요."

// submitMessage appends the user bubble optimistically and fires the
// request in the background.
func (m *Model) submitMessage(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	m.appendBubble("user", text)
	m.isLoading = true
	m.syncViewport()

	return m.sendChat(text)
}

func (m Model) sendChat(text string) tea.Cmd {
	client, sessionID, timeout := m.client, m.sessionID, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.SendMessage(ctx, text, sessionID)
		if err != nil {
			return chatErrMsg{err: err}
		}
		return chatResponseMsg{resp: resp}
	}
}

// applyResponse routes one chat turn into the model: session continuity,
// sidebar visibility, cart reconciliation, assistant bubble.
func (m *Model) applyResponse(resp *types.ChatResponse) {
	if resp == nil {
		return
	}

	if resp.SessionID != "" && resp.SessionID != m.sessionID {
		m.sessionID = resp.SessionID
		if m.store != nil {
			if err := m.store.SaveSessionID(resp.SessionID); err != nil {
				logging.Get(logging.CategorySession).Warn("failed to persist session id: %v", err)
			}
		}
	}

	m.lastResp = resp
	m.visible = sidebar.Route(resp)
	m.page = 0

	// The server cart is authoritative; it overwrites any optimistic state.
	if resp.Cart != nil && m.cartState != nil {
		m.cartState.Replace(resp.Cart)
	}

	if resp.Response != "" {
		m.appendBubble("assistant", resp.Response)
	}

	// A customer-service ticket opens the photo-evidence flow.
	if resp.CS != nil && resp.CS.Ticket != nil {
		t := resp.CS.Ticket
		err := m.evidence.Begin(capture.EvidenceContext{OrderCode: t.OrderCode, Product: t.Product, Quantity: 1})
		if err == nil {
			m.appendBubble("assistant", "사진을 첨부하려면 `/photo <경로>`를 입력해 주세요. 취소는 `/cancel` 입니다.")
		}
	}
}

// =============================================================================
// ASYNC OPERATIONS
// =============================================================================

// doCheckout flushes every pending cart edit, then checks out all items.
func (m Model) doCheckout() tea.Cmd {
	syncer, client, state, timeout := m.syncer, m.client, m.cartState, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if syncer != nil {
			if err := syncer.FlushBeforeCheckout(ctx); err != nil {
				return checkoutDoneMsg{err: err}
			}
		}

		var names []string
		if state != nil {
			for _, item := range state.Snapshot().Items {
				names = append(names, item.Name)
			}
		}
		if len(names) == 0 {
			return checkoutDoneMsg{result: &api.CheckoutResult{}}
		}

		result, err := client.CheckoutSelected(ctx, names)
		return checkoutDoneMsg{result: result, err: err}
	}
}

// addAllIngredients bulk-adds the matched products of the last recipe turn.
func (m Model) addAllIngredients(products []api.ProductQuantity) tea.Cmd {
	client, timeout := m.client, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := client.BulkAdd(ctx, products)
		return bulkAddMsg{result: result, err: err}
	}
}

func (m Model) fetchOrderDetails(orderCode string) tea.Cmd {
	client, timeout := m.client, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		details, err := client.OrderDetails(ctx, orderCode)
		return orderDetailsMsg{details: details, err: err}
	}
}

func (m Model) fetchFavorites() tea.Cmd {
	client, store, timeout := m.client, m.store, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		favs, err := client.GetFavorites(ctx)
		if err == nil && store != nil {
			if serr := store.ReplaceFavorites(favs); serr != nil {
				logging.Get(logging.CategoryStore).Warn("failed to mirror favorites: %v", serr)
			}
		}
		return favoritesMsg{favs: favs, err: err}
	}
}

// saveFavorite pushes one recipe to the backend and mirrors it locally.
func (m Model) saveFavorite(fav types.FavoriteRecipe) tea.Cmd {
	client, store, timeout := m.client, m.store, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := client.AddFavorite(ctx, fav); err != nil {
			return favSavedMsg{title: fav.Title, err: err}
		}
		if store != nil {
			if serr := store.SaveFavorite(fav); serr != nil {
				logging.Get(logging.CategoryStore).Warn("failed to mirror favorite: %v", serr)
			}
		}
		return favSavedMsg{title: fav.Title}
	}
}

// removeFavorite deletes one saved recipe on the backend and locally.
func (m Model) removeFavorite(recipeID string) tea.Cmd {
	client, store, timeout := m.client, m.store, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := client.RemoveFavorite(ctx, recipeID); err != nil {
			return favRemovedMsg{err: err}
		}
		if store != nil {
			if serr := store.RemoveFavorite(recipeID); serr != nil {
				logging.Get(logging.CategoryStore).Warn("failed to mirror favorite removal: %v", serr)
			}
		}
		return favRemovedMsg{}
	}
}

// uploadImage hosts a product photo so the chat turn can reference it.
func (m Model) uploadImage(path string) tea.Cmd {
	client, timeout := m.client, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := client.UploadImage(ctx, path)
		if err != nil {
			return imageUploadedMsg{err: err}
		}
		return imageUploadedMsg{url: result.ResolvedURL()}
	}
}

// submitEvidence uploads the attached photo with its ticket context.
func (m *Model) submitEvidence(path string) tea.Cmd {
	ctx2, err := m.evidence.Attach(path)
	if err != nil {
		return func() tea.Msg { return evidenceDoneMsg{err: err} }
	}

	client, timeout := m.client, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		ticket, err := client.SubmitEvidence(ctx, api.EvidenceRequest{
			ImagePath: path,
			OrderCode: ctx2.OrderCode,
			Product:   ctx2.Product,
			Quantity:  ctx2.Quantity,
		})
		return evidenceDoneMsg{ticket: ticket, err: err}
	}
}

// transcribeVoice sends the recorded audio for speech-to-text.
func (m *Model) transcribeVoice(path string) tea.Cmd {
	client, timeout := m.client, m.cfg.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := client.UploadAudio(ctx, path)
		if err != nil {
			return voiceTextMsg{err: err}
		}
		return voiceTextMsg{text: result.Text}
	}
}
