package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analysisdto "airpulse/internal/modules/analysis/dto"
	"airpulse/internal/ui/theme"
)

type ChatPort interface {
	OpenChat(ctx context.Context, recordingName string, analysis analysisdto.AnalysisOutput) analysisdto.ConversationOutput
	Compose(ctx context.Context, text string) (analysisdto.MessageOutput, bool)
	Reply(ctx context.Context, text string) (analysisdto.MessageOutput, error)
}

// BackMsg asks the app to pop back to the analysis screen.
type BackMsg struct{}

type replyMsg struct {
	visit int
	msg   analysisdto.MessageOutput
	err   error
}

var (
	userBubble = lipgloss.NewStyle().
			Foreground(theme.Base).
			Background(theme.Lavender).
			Padding(0, 1)
	aiBubble = lipgloss.NewStyle().
			Foreground(theme.Text).
			Background(theme.Surface0).
			Padding(0, 1)
)

type Model struct {
	port     ChatPort
	ctx      context.Context
	visit    int
	name     string
	messages []analysisdto.MessageOutput
	pending  int
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

func New(port ChatPort) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about this analysis…"
	ti.CharLimit = 500
	return Model{
		port:     port,
		ctx:      context.Background(),
		input:    ti,
		viewport: viewport.New(0, 0),
	}
}

// Open seeds a new conversation. Replies are produced under ctx, which the
// app cancels when the screen is left.
func (m *Model) Open(ctx context.Context, recordingName string, analysis analysisdto.AnalysisOutput) tea.Cmd {
	m.visit++
	m.ctx = ctx
	conv := m.port.OpenChat(ctx, recordingName, analysis)
	m.name = conv.RecordingName
	m.messages = conv.Messages
	m.pending = 0
	m.input.SetValue("")
	m.refresh()
	return m.input.Focus()
}

// Close ends the visit; replies still pending are dropped.
func (m *Model) Close() {
	m.visit++
	m.pending = 0
	m.input.Blur()
}

func (m Model) Messages() []analysisdto.MessageOutput { return m.messages }

// Pending reports how many replies are still being produced.
func (m Model) Pending() int { return m.pending }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-5, 3)
		m.input.Width = max(m.width-4, 10)
		m.refresh()
		return m, nil

	case replyMsg:
		if msg.visit != m.visit {
			return m, nil
		}
		m.pending = max(m.pending-1, 0)
		if msg.err == nil {
			m.messages = append(m.messages, msg.msg)
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }
		case "enter":
			return m.send()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := theme.Title.Render("AI Assistant") + "  " + theme.Muted.Render(m.name)
	status := theme.Muted.Render("enter: send  esc: back  pgup/pgdown: scroll")
	if m.pending > 0 {
		status = theme.Hot.Render("AI is typing…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), "> "+m.input.View(), status)
}

func (m Model) send() (Model, tea.Cmd) {
	text := m.input.Value()
	out, ok := m.port.Compose(m.ctx, text)
	if !ok {
		return m, nil
	}
	m.messages = append(m.messages, out)
	m.input.SetValue("")
	m.pending++
	m.refresh()

	port, ctx, visit := m.port, m.ctx, m.visit
	return m, func() tea.Msg {
		reply, err := port.Reply(ctx, text)
		return replyMsg{visit: visit, msg: reply, err: err}
	}
}

func (m *Model) refresh() {
	width := max(m.viewport.Width, 20)
	bubbleW := width * 3 / 4
	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if msg.Sender == "user" {
			bubble := userBubble.MaxWidth(bubbleW).Render(wrap(msg.Text, bubbleW-2))
			sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
			continue
		}
		sb.WriteString(aiBubble.MaxWidth(bubbleW).Render(wrap(msg.Text, bubbleW-2)))
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 1)).Render(text)
}
