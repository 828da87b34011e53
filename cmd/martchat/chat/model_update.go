// Package chat provides the interactive TUI for the Qook grocery chatbot.
// This file contains the Update loop and key handling.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/api"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

const (
	headerHeight = 3
	footerHeight = 2
	inputHeight  = 4
)

// Update is the main event loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - headerHeight - footerHeight - inputHeight
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case chatResponseMsg:
		m.isLoading = false
		m.err = nil
		m.applyResponse(msg.resp)
		m.syncViewport()
		return m, nil

	case chatErrMsg:
		m.isLoading = false
		m.err = msg.err
		logging.Get(logging.CategoryAPI).Error("chat turn failed: %v", msg.err)
		m.appendBubble("assistant", apologyBubble)
		m.syncViewport()
		return m, nil

	case bulkAddMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendBubble("assistant", apologyBubble)
		} else {
			if msg.result.Cart != nil && m.cartState != nil {
				m.cartState.Replace(msg.result.Cart)
			}
			m.appendBubble("assistant", fmt.Sprintf("재료 %d개를 장바구니에 담았어요.", msg.result.AddedCount))
		}
		m.syncViewport()
		return m, nil

	case checkoutDoneMsg:
		m.isLoading = false
		if msg.err != nil {
			m.err = msg.err
			logging.Get(logging.CategoryCart).Error("checkout failed: %v", msg.err)
			m.appendBubble("assistant", "결제 처리 중 문제가 생겼어요. 장바구니는 그대로 유지됩니다.")
		} else {
			m.applyCheckout(msg.result)
		}
		m.syncViewport()
		return m, nil

	case orderDetailsMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendBubble("assistant", apologyBubble)
		} else {
			m.appendBubble("assistant", renderOrderDetails(msg.details))
		}
		m.syncViewport()
		return m, nil

	case favoritesMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendBubble("assistant", apologyBubble)
		} else {
			m.appendBubble("assistant", renderFavorites(msg.favs))
		}
		m.syncViewport()
		return m, nil

	case favSavedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendBubble("assistant", apologyBubble)
		} else {
			m.appendBubble("assistant", fmt.Sprintf("`%s` 레시피를 찜했어요.", msg.title))
		}
		m.syncViewport()
		return m, nil

	case favRemovedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendBubble("assistant", apologyBubble)
		} else {
			m.appendBubble("assistant", "찜을 해제했어요.")
		}
		m.syncViewport()
		return m, nil

	case imageUploadedMsg:
		m.isLoading = false
		if msg.err != nil {
			logging.Get(logging.CategoryAPI).Error("image upload failed: %v", msg.err)
			m.appendBubble("assistant", "사진 업로드에 실패했어요. 경로를 확인하고 다시 시도해 주세요.")
			m.syncViewport()
			return m, nil
		}
		// The hosted photo becomes a regular chat turn for vision search.
		cmd := m.submitMessage("이 사진 속 상품을 찾아줘: " + msg.url)
		return m, cmd

	case evidenceDoneMsg:
		m.isLoading = false
		if msg.err != nil {
			m.evidence.Fail()
			m.appendBubble("assistant", "사진 업로드에 실패했어요. 다른 파일로 다시 시도해 주세요. (/photo <경로>)")
		} else {
			m.evidence.Complete()
			content := "사진이 접수되었어요."
			if msg.ticket != nil && msg.ticket.TicketID != "" {
				content = fmt.Sprintf("사진이 접수되었어요. 접수 번호: `%s`", msg.ticket.TicketID)
			}
			m.appendBubble("assistant", content)
		}
		m.syncViewport()
		return m, nil

	case voiceTextMsg:
		m.isLoading = false
		m.voice.Done()
		if msg.err != nil {
			m.appendBubble("assistant", "음성을 알아듣지 못했어요. 다시 말씀해 주세요.")
			m.syncViewport()
			return m, nil
		}
		// Transcription lands in the input box so the user can confirm it.
		m.textarea.SetValue(msg.text)
		return m, nil

	case handoffMsg:
		cmd := m.submitMessage(msg.text)
		cmds = append(cmds, cmd)
		if m.handoff != nil {
			cmds = append(cmds, listenHandoff(m.handoff))
		}
		return m, tea.Batch(cmds...)
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		m.textarea.Reset()

		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}
		if m.isLoading {
			// One in-flight turn at a time; drop extra submits.
			return m, nil
		}
		return m, m.submitMessage(input)

	case tea.KeyPgUp:
		m.viewport.HalfViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.HalfViewDown()
		return m, nil

	case tea.KeyLeft, tea.KeyRight:
		// Page through the product list when it is visible.
		if m.visible.Products && m.lastResp != nil && m.lastResp.Search != nil {
			if msg.Type == tea.KeyLeft && m.page > 0 {
				m.page--
			}
			if msg.Type == tea.KeyRight {
				m.page++
				if last := m.productPageCount(); m.page >= last && last > 0 {
					m.page = last - 1
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// applyCheckout folds the checkout result back into the model.
func (m *Model) applyCheckout(result *api.CheckoutResult) {
	if result == nil {
		return
	}
	if result.Cart != nil && m.cartState != nil {
		m.cartState.Replace(result.Cart)
	}
	if result.Order != nil {
		m.appendBubble("assistant", fmt.Sprintf("주문이 완료되었어요! 주문번호 `%s` (%s)",
			result.Order.OrderCode, formatWon(result.Order.TotalPrice)))
		return
	}
	m.appendBubble("assistant", "결제할 상품이 없어요. 장바구니에 상품을 담아주세요.")
}

// syncViewport re-renders the history into the viewport and scrolls down.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
