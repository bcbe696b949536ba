package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "airpulse/internal/modules/session/dto"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type AuthPort interface {
	Login(ctx context.Context, email, password string) (sessiondto.SessionOutput, error)
	Register(ctx context.Context, name, email, password, confirm, userType string) (sessiondto.RegisterOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// LoggedInMsg is emitted once a login succeeded and the session is stored.
type LoggedInMsg struct {
	Session sessiondto.SessionOutput
}

// RouteMsg asks the app to switch the Auth sub-route.
type RouteMsg struct{ Signup bool }

type loginResultMsg struct {
	session sessiondto.SessionOutput
	err     error
}

type registerResultMsg struct {
	out sessiondto.RegisterOutput
	err error
}

// ─── fields ──────────────────────────────────────────────────────────────────

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldUserType
	fieldCount
)

var userTypes = []string{"Normal", "Doctor"}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     AuthPort
	signup   bool
	inputs   [fieldCount]textinput.Model
	focus    int
	userType int
	busy     bool
	alert    string
	info     string
	width    int
	height   int
}

func New(port AuthPort) Model {
	m := Model{port: port}
	placeholders := [fieldCount]string{"Full name", "Email", "Password", "Confirm password", ""}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 128
		if i == fieldPassword || i == fieldConfirm {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.inputs[i] = ti
	}
	m.focus = fieldEmail
	m.inputs[fieldEmail].Focus()
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Signup reports whether the signup form is showing.
func (m Model) Signup() bool { return m.signup }

// SetRoute shows the login or signup form and clears any alert.
func (m *Model) SetRoute(signup bool) tea.Cmd {
	m.signup = signup
	m.alert = ""
	return m.focusField(m.fields()[0])
}

// Reset clears credentials, used after logout.
func (m *Model) Reset() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.busy = false
	m.info = ""
	return m.SetRoute(false)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = loginFailure(msg.err)
			return m, nil
		}
		m.inputs[fieldPassword].SetValue("")
		m.alert = ""
		session := msg.session
		return m, func() tea.Msg { return LoggedInMsg{Session: session} }

	case registerResultMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = registerFailure(msg.err)
			return m, nil
		}
		for _, f := range []int{fieldName, fieldPassword, fieldConfirm} {
			m.inputs[f].SetValue("")
		}
		m.inputs[fieldEmail].SetValue(msg.out.Email)
		m.info = "Account created successfully! Please log in."
		cmd := m.SetRoute(false)
		return m, tea.Batch(cmd, func() tea.Msg { return RouteMsg{Signup: false} })

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+n":
			signup := !m.signup
			return m, func() tea.Msg { return RouteMsg{Signup: signup} }
		case "tab", "down":
			return m, m.step(1)
		case "shift+tab", "up":
			return m, m.step(-1)
		case "left", "right", " ":
			if m.focus == fieldUserType {
				m.userType = (m.userType + 1) % len(userTypes)
				return m, nil
			}
		case "enter":
			fields := m.fields()
			if m.focus != fields[len(fields)-1] {
				return m, m.step(1)
			}
			return m.submit()
		}
	}

	if m.focus == fieldUserType {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	title := "Welcome Back"
	sub := "Log in to continue monitoring your heart health."
	if m.signup {
		title = "Create Account"
		sub = "Sign up to start recording with AirPulse."
	}
	sb.WriteString(theme.Title.Render(title) + "\n")
	sb.WriteString(theme.Muted.Render(sub) + "\n\n")

	for _, f := range m.fields() {
		marker := "  "
		if f == m.focus {
			marker = theme.Hot.Render("› ")
		}
		if f == fieldUserType {
			sb.WriteString(marker + "User type: " + m.renderUserType() + "\n")
			continue
		}
		sb.WriteString(marker + m.inputs[f].View() + "\n")
	}
	sb.WriteString("\n")

	switch {
	case m.busy:
		sb.WriteString(theme.Muted.Render("Please wait…") + "\n")
	case m.alert != "":
		sb.WriteString(theme.Alert.Render(m.alert) + "\n")
	case m.info != "":
		sb.WriteString(theme.Good.Render(m.info) + "\n")
	}

	action, other := "enter: log in", "ctrl+n: sign up"
	if m.signup {
		action, other = "enter: sign up", "ctrl+n: back to login"
	}
	sb.WriteString("\n" + theme.Muted.Render(action+"  tab: next field  "+other))

	box := theme.Pane.Width(min(60, max(m.width-4, 30))).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) fields() []int {
	if m.signup {
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm, fieldUserType}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *Model) step(delta int) tea.Cmd {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	return m.focusField(fields[pos])
}

func (m *Model) focusField(field int) tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = field
	if field == fieldUserType {
		return nil
	}
	return m.inputs[field].Focus()
}

func (m Model) renderUserType() string {
	parts := make([]string, len(userTypes))
	for i, ut := range userTypes {
		if i == m.userType {
			parts[i] = theme.Hot.Render("[" + ut + "]")
		} else {
			parts[i] = theme.Muted.Render(" " + ut + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) submit() (Model, tea.Cmd) {
	m.alert = ""
	m.info = ""
	m.busy = true
	email := m.inputs[fieldEmail].Value()
	password := m.inputs[fieldPassword].Value()
	port := m.port
	if !m.signup {
		return m, func() tea.Msg {
			session, err := port.Login(context.Background(), email, password)
			return loginResultMsg{session: session, err: err}
		}
	}
	name := m.inputs[fieldName].Value()
	confirm := m.inputs[fieldConfirm].Value()
	userType := userTypes[m.userType]
	return m, func() tea.Msg {
		out, err := port.Register(context.Background(), name, email, password, confirm, userType)
		return registerResultMsg{out: out, err: err}
	}
}

func loginFailure(err error) string {
	var serverErr *apperrors.ServerError
	if errors.As(err, &serverErr) {
		return "Login failed: " + apperrors.UserMessage(err, "Invalid credentials")
	}
	return apperrors.UserMessage(err, "Something went wrong.")
}

func registerFailure(err error) string {
	var serverErr *apperrors.ServerError
	if errors.As(err, &serverErr) {
		return "Registration failed: " + apperrors.UserMessage(err, "Please try again.")
	}
	return apperrors.UserMessage(err, "Something went wrong. Please try again later.")
}
