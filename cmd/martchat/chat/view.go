// Package chat provides the interactive TUI for the Qook grocery chatbot.
// This file contains view rendering functions.
package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/sidebar"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())
	if pane := m.renderSidebar(); pane != "" {
		chatView = lipgloss.JoinHorizontal(lipgloss.Top, chatView, "  ", pane)
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("나") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		default: // "assistant"
			botStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(botStyle.Render("Qook") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" Qook 장보기 ")

	var status string
	if m.isLoading {
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("생각 중..."))
	} else {
		status = m.styles.Success.Render("Ready")
	}

	user := m.styles.Muted.Render(" " + m.userID)

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status, user)
	return lipgloss.JoinVertical(lipgloss.Left, headerLine, m.styles.RenderDivider(m.width))
}

func (m Model) renderFooter() string {
	var total string
	if m.cartState != nil {
		snapshot := m.cartState.Snapshot()
		if len(snapshot.Items) > 0 {
			total = fmt.Sprintf(" | 장바구니 %d종 %s", len(snapshot.Items), formatWon(snapshot.Total))
		}
	}

	pending := ""
	if m.syncer != nil && len(m.syncer.Pending()) > 0 {
		pending = " | 저장 대기 중"
	}

	timestamp := time.Now().Format("15:04")
	help := m.styles.Muted.Render(fmt.Sprintf("정렬: %s%s%s | %s | PgUp/PgDn: 스크롤  ←/→: 상품 페이지  /help",
		m.sortKey, total, pending, timestamp))
	return lipgloss.NewStyle().MarginTop(1).Render(help)
}

// =============================================================================
// SIDEBAR PANES
// =============================================================================

func (m Model) renderSidebar() string {
	if !m.visible.Any() || m.lastResp == nil {
		return ""
	}

	var sections []string
	if m.visible.Products {
		sections = append(sections, m.renderProducts())
	}
	if m.visible.Recipes {
		sections = append(sections, m.renderRecipes())
	}
	if m.visible.Cart && m.cartState != nil {
		sections = append(sections, renderCart(m.cartState.Snapshot()))
	}
	if m.visible.Orders {
		sections = append(sections, renderOrders(m.lastResp))
	}

	width := m.cfg.UI.SidebarWidth
	if width <= 0 {
		width = 36
	}
	return m.styles.Sidebar.Width(width).Render(strings.Join(sections, "\n\n"))
}

func (m Model) productPageCount() int {
	if m.lastResp == nil || m.lastResp.Search == nil {
		return 0
	}
	return sidebar.PageCount(len(m.lastResp.Search.Products), m.pageSize)
}

func (m Model) renderProducts() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("상품"))
	sb.WriteString("\n")

	sorted := sidebar.SortProducts(m.lastResp.Search.Products, m.sortKey)
	page := sidebar.Page(sorted, m.page, m.pageSize)
	for _, p := range page {
		origin := ""
		if p.Origin != "" {
			origin = m.styles.Muted.Render(" (" + p.Origin + ")")
		}
		sb.WriteString(fmt.Sprintf("%s%s  %s\n", p.Name, origin, m.styles.Price.Render(formatWon(p.Price))))
	}

	if total := m.productPageCount(); total > 1 {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("— %d/%d —", m.page+1, total)))
	}
	return sb.String()
}

func (m Model) renderRecipes() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("레시피"))
	sb.WriteString("\n")

	for _, r := range m.lastResp.Recipe.Recipes {
		sb.WriteString("• " + r.Title + "\n")
	}
	if len(m.lastResp.Recipe.Ingredients) > 0 {
		sb.WriteString(m.styles.Subtitle.Render("재료") + "\n")
		for _, ing := range m.lastResp.Recipe.Ingredients {
			line := "  " + ing.Name
			if ing.Amount != "" {
				line += " " + ing.Amount
			}
			sb.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderOrders(resp *types.ChatResponse) string {
	var orders []types.OrderSummary
	if resp.Order != nil {
		orders = resp.Order.Orders
	} else if resp.CS != nil {
		orders = resp.CS.Orders
	}

	var sb strings.Builder
	sb.WriteString("주문 내역\n")
	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("%s  %s  %s  %s\n", o.OrderCode, o.OrderDate, o.Status, formatWon(o.TotalPrice)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// BUBBLE CONTENT
// =============================================================================

func renderCart(c types.Cart) string {
	if len(c.Items) == 0 {
		return "장바구니가 비어 있어요."
	}

	var sb strings.Builder
	sb.WriteString("## 장바구니\n\n")
	for _, item := range c.Items {
		sb.WriteString(fmt.Sprintf("- %s × %d — %s\n", item.Name, item.Quantity, formatWon(item.UnitPrice*int64(item.Quantity))))
	}
	sb.WriteString(fmt.Sprintf("\n상품 금액: %s\n", formatWon(c.Subtotal)))
	sb.WriteString(fmt.Sprintf("배송비: %s\n", formatWon(c.ShippingFee)))
	for _, d := range c.Discounts {
		desc := d.Description
		if desc == "" {
			desc = d.Type
		}
		sb.WriteString(fmt.Sprintf("%s: -%s\n", desc, formatWon(d.Amount)))
	}
	sb.WriteString(fmt.Sprintf("\n**결제 금액: %s**", formatWon(c.Total)))
	return sb.String()
}

func renderOrderDetails(d *types.OrderDetails) string {
	if d == nil {
		return "주문 정보를 찾지 못했어요."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## 주문 %s\n\n%s · %s\n\n", d.OrderCode, d.OrderDate, d.OrderStatus))
	for _, item := range d.Items {
		sb.WriteString(fmt.Sprintf("- %s × %d — %s\n", item.Name, item.Quantity, formatWon(item.UnitPrice*int64(item.Quantity))))
	}
	sb.WriteString(fmt.Sprintf("\n상품 금액: %s\n", formatWon(d.Subtotal)))
	if d.DiscountAmount > 0 {
		sb.WriteString(fmt.Sprintf("할인: -%s\n", formatWon(d.DiscountAmount)))
	}
	sb.WriteString(fmt.Sprintf("배송비: %s\n", formatWon(d.ShippingFee)))
	sb.WriteString(fmt.Sprintf("\n**결제 금액: %s**", formatWon(d.TotalPrice)))
	return sb.String()
}

func renderFavorites(favs []types.FavoriteRecipe) string {
	if len(favs) == 0 {
		return "아직 찜한 레시피가 없어요."
	}

	var sb strings.Builder
	sb.WriteString("## 찜한 레시피\n\n")
	for _, fav := range favs {
		if fav.URL != "" {
			sb.WriteString(fmt.Sprintf("- [%s](%s)\n", fav.Title, fav.URL))
		} else {
			sb.WriteString("- " + fav.Title + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatWon renders an amount as grouped won, e.g. 12,500원.
func formatWon(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteRune(',')
		}
		sb.WriteRune(r)
	}

	out := sb.String() + "원"
	if neg {
		out = "-" + out
	}
	return out
}
