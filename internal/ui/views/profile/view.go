package profile

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "airpulse/internal/modules/session/dto"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/theme"
)

type ProfilePort interface {
	Profile(ctx context.Context) (sessiondto.ProfileOutput, error)
}

// LogoutMsg is emitted once the user confirmed logging out.
type LogoutMsg struct{}

type loadedMsg struct {
	profile sessiondto.ProfileOutput
	err     error
}

type Model struct {
	port       ProfilePort
	profile    sessiondto.ProfileOutput
	loaded     bool
	confirming bool
	alert      string
	width      int
	height     int
}

func New(port ProfilePort) Model {
	return Model{port: port}
}

// Load refreshes the profile from the stored session.
func (m Model) Load() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		p, err := port.Profile(context.Background())
		return loadedMsg{profile: p, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loadedMsg:
		if msg.err != nil {
			m.alert = apperrors.UserMessage(msg.err, "Could not load profile")
			return m, nil
		}
		m.alert = ""
		m.loaded = true
		m.profile = msg.profile

	case tea.KeyMsg:
		if m.confirming {
			m.confirming = false
			if msg.String() == "y" {
				return m, func() tea.Msg { return LogoutMsg{} }
			}
			return m, nil
		}
		if msg.String() == "l" {
			m.confirming = true
		}
	}
	return m, nil
}

// Reset forgets the displayed user, used after logout.
func (m *Model) Reset() {
	*m = New(m.port)
}

func (m Model) View() string {
	p := m.profile
	name := "Loading..."
	if m.loaded {
		name = p.Name
	}

	var sb strings.Builder
	sb.WriteString(theme.Hot.Render("("+Initials(p.Name)+")") + "  " + theme.Title.Render(name) + "\n")
	sb.WriteString(theme.Muted.Render(p.Email) + "\n\n")
	sb.WriteString(theme.Muted.Render("Role    ") + p.Role + "\n")
	sb.WriteString(theme.Muted.Render("Joined  ") + FormatJoined(p.CreatedAt) + "\n")
	if p.HasClaims {
		expiry := p.ExpiresAt.Local().Format("Jan 2 2006 15:04")
		if p.Expired {
			expiry = theme.Alert.Render("expired " + expiry)
		}
		sb.WriteString(theme.Muted.Render("Session ") + expiry + "\n")
	}
	sb.WriteString("\n")

	switch {
	case m.confirming:
		sb.WriteString(theme.Alert.Render("Are you sure you want to log out? y to confirm, any key to cancel"))
	case m.alert != "":
		sb.WriteString(theme.Alert.Render(m.alert) + "\n\n" + theme.Muted.Render("l: log out"))
	default:
		sb.WriteString(theme.Muted.Render("l: log out"))
	}

	box := theme.Pane.Width(min(64, max(m.width-4, 30))).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, box)
}

// Initials returns up to two upper-case initials, or "?" for an empty name.
func Initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// FormatJoined renders an RFC 3339 timestamp as a date and passes anything
// else through.
func FormatJoined(createdAt string) string {
	if strings.TrimSpace(createdAt) == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, createdAt); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return createdAt
}
