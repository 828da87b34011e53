// Package chat provides the interactive TUI for the Qook grocery chatbot.
// This file contains /command handling.
package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/api"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/capture"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/cart"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/sidebar"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// =============================================================================
// COMMAND HANDLING
// =============================================================================
// handleCommand processes all /command inputs from the user.

func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/help":
		m.appendBubble("assistant", helpText)
		m.syncViewport()
		return m, nil

	case "/clear":
		m.history = []Message{}
		if m.store != nil && m.sessionID != "" {
			if err := m.store.ClearTranscript(m.sessionID); err != nil {
				logging.Get(logging.CategoryStore).Warn("failed to clear transcript: %v", err)
			}
		}
		m.viewport.SetContent("")
		return m, nil

	case "/cart":
		if m.cartState == nil {
			return m, nil
		}
		m.appendBubble("assistant", renderCart(m.cartState.Snapshot()))
		m.syncViewport()
		return m, nil

	case "/add", "/sub", "/rm":
		return m.handleCartEdit(cmd, strings.Join(args, " "))

	case "/addall":
		return m.handleAddAll()

	case "/checkout":
		m.isLoading = true
		return m, m.doCheckout()

	case "/orders":
		if len(args) == 0 {
			m.appendBubble("assistant", "주문번호를 알려주세요. 예: `/orders QK-1001`")
			m.syncViewport()
			return m, nil
		}
		m.isLoading = true
		return m, m.fetchOrderDetails(args[0])

	case "/fav":
		return m.handleFav(args)

	case "/image":
		return m.handleImage(args)

	case "/photo":
		return m.handlePhoto(args)

	case "/voice":
		return m.handleVoice(args)

	case "/sort":
		return m.handleSort(args)

	case "/cancel":
		m.evidence.Cancel()
		m.voice.Cancel()
		m.appendBubble("assistant", "진행 중이던 첨부를 취소했어요.")
		m.syncViewport()
		return m, nil
	}

	m.appendBubble("assistant", fmt.Sprintf("알 수 없는 명령이에요: `%s` — `/help`를 입력해 보세요.", cmd))
	m.syncViewport()
	return m, nil
}

// handleCartEdit applies an optimistic quantity change and schedules the
// debounced sync.
func (m Model) handleCartEdit(cmd, name string) (tea.Model, tea.Cmd) {
	if name == "" || m.cartState == nil {
		m.appendBubble("assistant", "상품 이름을 알려주세요. 예: `/add 사과`")
		m.syncViewport()
		return m, nil
	}

	var action cart.Action
	switch cmd {
	case "/add":
		action = cart.ActionIncrement
	case "/sub":
		action = cart.ActionDecrement
	case "/rm":
		action = cart.ActionRemove
	}

	snapshot, changed := m.cartState.ApplyLocalDelta(name, action)
	if !changed {
		m.appendBubble("assistant", fmt.Sprintf("장바구니에 `%s` 상품이 없어요.", name))
		m.syncViewport()
		return m, nil
	}

	if m.syncer != nil {
		m.syncer.Schedule(name, snapshot.ItemQuantity(name))
	}
	m.appendBubble("assistant", renderCart(snapshot))
	m.syncViewport()
	return m, nil
}

// handleAddAll bulk-adds every matched ingredient of the last recipe turn.
func (m Model) handleAddAll() (tea.Model, tea.Cmd) {
	var products []api.ProductQuantity
	if m.lastResp != nil && m.lastResp.Recipe != nil {
		for _, ing := range m.lastResp.Recipe.Ingredients {
			if ing.Product != "" {
				products = append(products, api.ProductQuantity{Name: ing.Product, Quantity: 1})
			}
		}
		for _, r := range m.lastResp.Recipe.Recipes {
			for _, ing := range r.Ingredients {
				if ing.Product != "" {
					products = append(products, api.ProductQuantity{Name: ing.Product, Quantity: 1})
				}
			}
		}
	}
	if len(products) == 0 {
		m.appendBubble("assistant", "담을 재료가 없어요. 먼저 레시피를 찾아보세요.")
		m.syncViewport()
		return m, nil
	}

	m.isLoading = true
	return m, m.addAllIngredients(products)
}

// handleFav lists favorites, or saves/removes one. `/fav add <번호>` picks a
// recipe from the last recipe pane; `/fav rm <id>` removes by recipe id.
func (m Model) handleFav(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.isLoading = true
		return m, m.fetchFavorites()
	}

	switch args[0] {
	case "add":
		var recipes []types.Recipe
		if m.lastResp != nil && m.lastResp.Recipe != nil {
			recipes = m.lastResp.Recipe.Recipes
		}
		if len(recipes) == 0 {
			m.appendBubble("assistant", "찜할 레시피가 없어요. 먼저 레시피를 찾아보세요.")
			m.syncViewport()
			return m, nil
		}
		n := 1
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil || parsed < 1 || parsed > len(recipes) {
				m.appendBubble("assistant", fmt.Sprintf("레시피 번호는 1부터 %d까지예요.", len(recipes)))
				m.syncViewport()
				return m, nil
			}
			n = parsed
		}
		r := recipes[n-1]
		fav := types.FavoriteRecipe{RecipeID: r.ID, Title: r.Title, ImageURL: r.ImageURL, URL: r.URL}
		if fav.RecipeID == "" {
			fav.RecipeID = r.Title
		}
		m.isLoading = true
		return m, m.saveFavorite(fav)

	case "rm":
		if len(args) < 2 {
			m.appendBubble("assistant", "해제할 레시피 id를 알려주세요. 예: `/fav rm r-12`")
			m.syncViewport()
			return m, nil
		}
		m.isLoading = true
		return m, m.removeFavorite(args[1])
	}

	m.appendBubble("assistant", "`/fav`, `/fav add <번호>`, `/fav rm <id>` 중 하나를 입력해 주세요.")
	m.syncViewport()
	return m, nil
}

// handleImage uploads a product photo and searches with it.
func (m Model) handleImage(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.appendBubble("assistant", "사진 파일 경로를 알려주세요. 예: `/image ~/사진/과일.jpg`")
		m.syncViewport()
		return m, nil
	}

	m.isLoading = true
	return m, m.uploadImage(args[0])
}

func (m Model) handlePhoto(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.appendBubble("assistant", "사진 파일 경로를 알려주세요. 예: `/photo ~/사진/파손.jpg`")
		m.syncViewport()
		return m, nil
	}
	if m.evidence.State() != capture.EvidenceAwaitingFile {
		m.appendBubble("assistant", "지금은 첨부할 문의가 없어요. 먼저 채팅으로 교환/환불을 요청해 주세요.")
		m.syncViewport()
		return m, nil
	}

	m.isLoading = true
	return m, m.submitEvidence(args[0])
}

func (m Model) handleVoice(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.appendBubble("assistant", "녹음 파일 경로를 알려주세요. 예: `/voice ~/녹음/질문.webm`")
		m.syncViewport()
		return m, nil
	}

	if err := m.voice.Start(args[0]); err != nil {
		m.appendBubble("assistant", "이미 음성 입력이 진행 중이에요.")
		m.syncViewport()
		return m, nil
	}
	path, err := m.voice.StopForTranscription()
	if err != nil {
		m.voice.Cancel()
		return m, nil
	}

	m.isLoading = true
	return m, m.transcribeVoice(path)
}

func (m Model) handleSort(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 || !sidebar.ValidSortKey(sidebar.SortKey(args[0])) {
		m.appendBubble("assistant", "정렬 기준: `popular`, `price_asc`, `price_desc`, `name` 중 하나를 골라주세요.")
		m.syncViewport()
		return m, nil
	}
	m.sortKey = sidebar.SortKey(args[0])
	m.page = 0
	return m, nil
}

const helpText = `## 사용법

| 명령 | 설명 |
|------|------|
| /help | 이 도움말 |
| /cart | 장바구니 보기 |
| /add <상품> | 수량 +1 |
| /sub <상품> | 수량 -1 (0이 되면 삭제) |
| /rm <상품> | 상품 삭제 |
| /addall | 레시피 재료 모두 담기 |
| /checkout | 대기 중인 변경을 반영하고 결제 |
| /orders <주문번호> | 주문 상세 조회 |
| /fav | 찜한 레시피 목록 |
| /fav add <번호> | 레시피 찜하기 |
| /fav rm <id> | 찜 해제 |
| /image <경로> | 사진으로 상품 찾기 |
| /photo <경로> | 문의에 사진 첨부 |
| /voice <경로> | 음성으로 질문 |
| /sort <기준> | 상품 정렬 변경 |
| /cancel | 진행 중인 첨부 취소 |
| /clear | 대화 내용 지우기 |
| /quit | 종료 |

그 외 입력은 모두 Qook 챗봇에게 전달됩니다.`
