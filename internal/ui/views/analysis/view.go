package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analysisdto "airpulse/internal/modules/analysis/dto"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/components"
	"airpulse/internal/ui/theme"
)

type AnalysisPort interface {
	Fetch(ctx context.Context, recordingID, recordingName string) analysisdto.ScreenOutput
}

// OpenChatMsg asks the app to push the Chat screen for a loaded analysis.
type OpenChatMsg struct {
	RecordingName string
	Analysis      analysisdto.AnalysisOutput
}

// BackMsg asks the app to pop back to the recordings list.
type BackMsg struct{}

type loadedMsg struct {
	visit  int
	screen analysisdto.ScreenOutput
}

type Model struct {
	port    AnalysisPort
	spinner spinner.Model
	screen  analysisdto.ScreenOutput
	// visit tags fetches so results from an abandoned visit are dropped.
	visit  int
	width  int
	height int
}

func New(port AnalysisPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = theme.Pulse
	return Model{port: port, spinner: sp}
}

// Open starts a visit and fetches the analysis under ctx.
func (m *Model) Open(ctx context.Context, recordingID, recordingName string) tea.Cmd {
	m.visit++
	visit := m.visit
	m.screen = analysisdto.ScreenOutput{RecordingID: recordingID, RecordingName: recordingName, Phase: "loading"}
	port := m.port
	return tea.Batch(func() tea.Msg {
		return loadedMsg{visit: visit, screen: port.Fetch(ctx, recordingID, recordingName)}
	}, m.spinner.Tick)
}

// Close ends the visit; a fetch still in flight is ignored when it lands.
func (m *Model) Close() {
	m.visit++
	m.screen = analysisdto.ScreenOutput{}
}

func (m Model) Screen() analysisdto.ScreenOutput { return m.screen }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loadedMsg:
		if msg.visit != m.visit {
			return m, nil
		}
		m.screen = msg.screen

	case spinner.TickMsg:
		if m.screen.Phase == "loading" {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if m.screen.Phase == "loaded" {
				name, a := m.screen.RecordingName, m.screen.Analysis
				return m, func() tea.Msg { return OpenChatMsg{RecordingName: name, Analysis: a} }
			}
		case "esc", "backspace":
			return m, func() tea.Msg { return BackMsg{} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	s := m.screen
	switch s.Phase {
	case "loading":
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Analyzing "+displayName(s.RecordingName)+"...")
	case "failed":
		body := theme.Title.Render("AI Analysis") + "\n" +
			theme.Muted.Render("Recording: "+displayName(s.RecordingName)) + "\n\n" +
			theme.Alert.Render("Failed to analyze recording") + "\n" +
			theme.Muted.Render(apperrors.UserMessage(s.Err, "Please try again later.")) + "\n\n" +
			theme.Muted.Render("esc: back to recordings")
		return theme.Pane.Width(max(m.width-4, 20)).Render(body)
	case "loaded":
		return m.renderLoaded()
	}
	return ""
}

func (m Model) renderLoaded() string {
	s := m.screen
	a := s.Analysis
	inner := max(m.width-8, 20)
	card := func(title, body string) string {
		return theme.Pane.Padding(0, 1).Width(inner).Render(theme.Hot.Render(title) + "\n" + body)
	}

	var probs strings.Builder
	for i, p := range a.Probabilities {
		if i > 0 {
			probs.WriteString("\n")
		}
		fmt.Fprintf(&probs, "%-11s %s %3d%%", p.Condition+":", components.Bar(p.Percent, 20), p.Percent)
	}

	parts := []string{
		theme.Title.Render("AI Analysis"),
		theme.Muted.Render("Recording: " + displayName(s.RecordingName)),
		card("Heart Rate (BPM)", theme.Pulse.Bold(true).Render(FormatBPM(a.BPM)+" bpm")),
		card("ECG-like Signal", theme.Pulse.Render(components.Sparkline(a.ECG, inner-4))),
		card("AI Status", theme.StatusStyle(a.Status).Render(a.Status)),
		card("Condition Probabilities", probs.String()),
		theme.Muted.Render("c: chat with AI  esc: back to recordings"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// FormatBPM prints whole numbers without a fraction.
func FormatBPM(bpm float64) string {
	return strconv.FormatFloat(bpm, 'f', -1, 64)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown Recording"
	}
	return name
}
