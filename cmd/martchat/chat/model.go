// Package chat provides the interactive TUI for the Qook grocery chatbot.
// The functionality is split across multiple files:
//   - model_types.go: Types and async messages
//   - model.go: Construction, Init (this file)
//   - model_update.go: Update loop and key handling
//   - commands.go: /command handling
//   - process.go: Chat turn processing and response routing
//   - view.go: Rendering functions
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/cmd/martchat/ui"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/capture"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/sidebar"
)

const transcriptReplayLimit = 20

// NewModel assembles the chat model from its collaborators.
func NewModel(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "무엇을 도와드릴까요? (/help 명령 목록)"
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := ui.NewStyles(ui.ThemeByName(opts.Config.UI.Theme))
	sp.Style = styles.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logging.UI("Markdown renderer unavailable, falling back to plain text: %v", err)
		renderer = nil
	}

	pageSize := opts.Config.UI.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}

	m := Model{
		textarea:  ta,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		sortKey:   sidebar.SortPopular,
		pageSize:  pageSize,
		evidence:  &capture.Evidence{},
		voice:     &capture.Voice{},
		cartState: opts.State,
		syncer:    opts.Syncer,
		userID:    opts.UserID,
		client:    opts.Client,
		store:     opts.Store,
		handoff:   opts.Handoff,
		cfg:       opts.Config,
	}

	m.restoreSession()
	return m
}

// restoreSession replays the persisted session id and recent transcript so
// a restart continues where the last run stopped.
func (m *Model) restoreSession() {
	if m.store == nil {
		return
	}

	if id, err := m.store.LoadSessionID(); err == nil && id != "" {
		m.sessionID = id
		logging.Session("resuming session %s", id)
	}
	if m.sessionID == "" {
		return
	}

	turns, err := m.store.LoadTranscript(m.sessionID, transcriptReplayLimit)
	if err != nil {
		logging.Get(logging.CategorySession).Warn("failed to replay transcript: %v", err)
		return
	}
	for _, turn := range turns {
		m.history = append(m.history, Message{Role: turn.Role, Content: turn.Content, Time: turn.Time})
	}
}

// Init starts the spinner and the handoff listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.handoff != nil {
		cmds = append(cmds, listenHandoff(m.handoff))
	}
	return tea.Batch(cmds...)
}

// listenHandoff waits for one pending message from another process.
func listenHandoff(w interface{ Messages() <-chan string }) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-w.Messages()
		if !ok {
			return nil
		}
		return handoffMsg{text: text}
	}
}

// appendBubble adds a message to the history and persists it.
func (m *Model) appendBubble(role, content string) {
	m.history = append(m.history, Message{Role: role, Content: content, Time: time.Now()})
	if m.store != nil && m.sessionID != "" {
		if err := m.store.AppendTranscript(m.sessionID, role, content); err != nil {
			logging.Get(logging.CategoryStore).Warn("failed to persist bubble: %v", err)
		}
	}
}
