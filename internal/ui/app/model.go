package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analysisdto "airpulse/internal/modules/analysis/dto"
	devicedto "airpulse/internal/modules/device/dto"
	endpointdto "airpulse/internal/modules/endpoint/dto"
	recordingdto "airpulse/internal/modules/recording/dto"
	sessiondto "airpulse/internal/modules/session/dto"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/components"
	"airpulse/internal/ui/gate"
	"airpulse/internal/ui/theme"
	analysisview "airpulse/internal/ui/views/analysis"
	authview "airpulse/internal/ui/views/auth"
	chatview "airpulse/internal/ui/views/chat"
	homeview "airpulse/internal/ui/views/home"
	"airpulse/internal/ui/views/onboarding"
	profileview "airpulse/internal/ui/views/profile"
	recordingsview "airpulse/internal/ui/views/recordings"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Login(ctx context.Context, email, password string) (sessiondto.SessionOutput, error)
	Register(ctx context.Context, name, email, password, confirm, userType string) (sessiondto.RegisterOutput, error)
	Logout(ctx context.Context) error
	Resume(ctx context.Context) (sessiondto.SessionOutput, error)
	Profile(ctx context.Context) (sessiondto.ProfileOutput, error)
}

type recordingPort interface {
	Start(ctx context.Context) (recordingdto.StatusOutput, error)
	Stop(ctx context.Context) (recordingdto.StatusOutput, error)
	Upload(ctx context.Context) (recordingdto.UploadOutput, error)
	Status(ctx context.Context) recordingdto.StatusOutput
	List(ctx context.Context) ([]recordingdto.RecordingOutput, error)
	ListCached(ctx context.Context) (recordingdto.CachedListOutput, error)
	BulkUpload(ctx context.Context) (recordingdto.BulkUploadOutput, error)
	Delete(ctx context.Context, id string) error
}

type analysisPort interface {
	Fetch(ctx context.Context, recordingID, recordingName string) analysisdto.ScreenOutput
	OpenChat(ctx context.Context, recordingName string, analysis analysisdto.AnalysisOutput) analysisdto.ConversationOutput
	Compose(ctx context.Context, text string) (analysisdto.MessageOutput, bool)
	Reply(ctx context.Context, text string) (analysisdto.MessageOutput, error)
}

type devicePort interface {
	Scan(ctx context.Context, window time.Duration) ([]devicedto.DeviceOutput, error)
	Connect(ctx context.Context, id string) (devicedto.DeviceOutput, error)
}

type endpointPort interface {
	Resolve(ctx context.Context) endpointdto.EndpointOutput
}

// Ports groups the use cases the TUI drives. Device may be nil when no
// bluetooth radio is available.
type Ports struct {
	Session   sessionPort
	Recording recordingPort
	Analysis  analysisPort
	Device    devicePort
	Endpoint  endpointPort
}

type Options struct {
	SplashDuration time.Duration
}

// ─── async messages ───────────────────────────────────────────────────────────

type splashElapsedMsg struct{}

type resumeMsg struct {
	session sessiondto.SessionOutput
	err     error
}

type endpointMsg struct{ endpoint endpointdto.EndpointOutput }

type loggedOutMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Jump    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Record  key.Binding
	Save    key.Binding
	Scan    key.Binding
	Open    key.Binding
	Chat    key.Binding
	Back    key.Binding
	Logout  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Jump:    key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "jump to tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Record:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record/stop")),
		Save:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		Scan:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan devices")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Chat:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat with AI")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Logout:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log out")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Jump, k.Open, k.Back},
		{k.Record, k.Save, k.Scan},
		{k.Chat, k.Logout},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the navigation gate, the help
// overlay and the command palette. Business logic is delegated to ports and
// rendering to sub-views.
type Model struct {
	ports Ports
	opts  Options
	gate  gate.Gate

	// splash completes once both the timer fired and the session check returned
	splashDone bool
	resumeDone bool
	resumed    bool

	// screenCtx lives for one Analysis or Chat visit
	screenCtx    context.Context
	cancelScreen context.CancelFunc

	auth       authview.Model
	home       homeview.Model
	recordings recordingsview.Model
	analysis   analysisview.Model
	chat       chatview.Model
	profile    profileview.Model

	spinner  spinner.Model
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	endpoint endpointdto.EndpointOutput
	userName string
	status   string
	width    int
	height   int
}

func NewModel(ports Ports, opts Options) Model {
	if opts.SplashDuration <= 0 {
		opts.SplashDuration = 2 * time.Second
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		ports:      ports,
		opts:       opts,
		gate:       gate.New(),
		auth:       authview.New(ports.Session),
		home:       homeview.New(ports.Recording, ports.Device),
		recordings: recordingsview.New(ports.Recording),
		analysis:   analysisview.New(ports.Analysis),
		chat:       chatview.New(ports.Analysis),
		profile:    profileview.New(ports.Session),
		spinner:    sp,
		keys:       defaultKeys(),
		help:       help.New(),
		palette:    components.NewPalette(),
		status:     "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(m.opts.SplashDuration, func(time.Time) tea.Msg { return splashElapsedMsg{} }),
		m.resumeCmd(),
		m.endpointCmd(),
		m.spinner.Tick,
	)
}

// Gate exposes the navigation state.
func (m Model) Gate() gate.Gate { return m.gate }

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case splashElapsedMsg:
		m.splashDone = true
		return m.leaveSplash()

	case resumeMsg:
		m.resumeDone = true
		m.resumed = msg.err == nil && msg.session.Token != ""
		if m.resumed && msg.session.HasUser {
			m.userName = msg.session.User.Name
		}
		return m.leaveSplash()

	case endpointMsg:
		m.endpoint = msg.endpoint
		return m, nil

	case spinner.TickMsg:
		if m.gate.Stage() == gate.StageSplash {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case authview.RouteMsg:
		var err error
		if msg.Signup {
			m.gate, err = m.gate.ShowSignup()
		} else {
			m.gate, err = m.gate.ShowLogin()
		}
		if err != nil {
			return m, nil
		}
		if m.auth.Signup() != msg.Signup {
			return m, m.auth.SetRoute(msg.Signup)
		}
		return m, nil

	case authview.LoggedInMsg:
		next, err := m.gate.LoggedIn()
		if err != nil {
			return m, nil
		}
		m.gate = next
		if msg.Session.HasUser {
			m.userName = msg.Session.User.Name
		}
		m.status = "logged in"
		return m, m.enterMain()

	case profileview.LogoutMsg:
		return m, m.logoutCmd()

	case loggedOutMsg:
		if msg.err != nil {
			m.status = "logout failed: " + apperrors.UserMessage(msg.err, "")
			return m, nil
		}
		return m.resetAfterLogout()

	case recordingsview.OpenAnalysisMsg:
		return m.openAnalysis(msg.ID, msg.Name)

	case analysisview.OpenChatMsg:
		next, err := m.gate.OpenChat()
		if err != nil {
			return m, nil
		}
		m.gate = next
		ctx := m.newScreenContext()
		return m, m.chat.Open(ctx, msg.RecordingName, msg.Analysis)

	case analysisview.BackMsg:
		if next, err := m.gate.Back(); err == nil {
			m.gate = next
			m.endScreen()
			m.analysis.Close()
		}
		return m, nil

	case chatview.BackMsg:
		if next, err := m.gate.Back(); err == nil {
			m.gate = next
			m.endScreen()
			m.chat.Close()
		}
		return m, nil

	case homeview.UploadedMsg:
		m.status = "uploaded " + msg.Upload.Title
		return m, m.recordings.Refresh()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.broadcast(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.endScreen()
		return m, tea.Quit
	}

	switch m.gate.Stage() {
	case gate.StageSplash:
		return m, nil

	case gate.StageOnboarding:
		switch msg.String() {
		case "enter", " ", "right", "n":
			next, err := m.gate.NextOnboarding()
			if err != nil {
				return m, nil
			}
			m.gate = next
			if m.gate.Stage() == gate.StageAuth {
				return m, m.auth.Reset()
			}
		case "q":
			return m, tea.Quit
		}
		return m, nil

	case gate.StageAuth:
		var cmd tea.Cmd
		m.auth, cmd = m.auth.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Text entry and list filtering take every key.
	if m.capturingInput() {
		return m.updateActive(msg)
	}

	switch msg.String() {
	case "q":
		m.endScreen()
		return m, tea.Quit
	case "tab":
		return m.selectTab((m.gate.Tab() + 1) % gate.Tab(len(gate.Tabs())))
	case "shift+tab":
		n := gate.Tab(len(gate.Tabs()))
		return m.selectTab((m.gate.Tab() + n - 1) % n)
	case "1", "2", "3":
		return m.selectTab(gate.Tab(msg.String()[0] - '1'))
	case "?":
		m.showHelp = true
		return m, nil
	case ":":
		return m, m.palette.Open()
	}
	return m.updateActive(msg)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	switch m.gate.Stage() {
	case gate.StageSplash:
		return onboarding.Splash(m.width, m.height, m.spinner.View())
	case gate.StageOnboarding:
		return onboarding.Page(m.gate.OnboardingPage(), m.width, m.height)
	case gate.StageAuth:
		return m.auth.View()
	}

	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.gate.Tab() {
	case gate.TabHome:
		return m.home.View()
	case gate.TabAnalysis:
		switch m.gate.AnalysisRoute() {
		case gate.RouteAnalysis:
			return m.analysis.View()
		case gate.RouteChat:
			return m.chat.View()
		}
		return m.recordings.View()
	case gate.TabProfile:
		return m.profile.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	tabs := gate.Tabs()
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		label := t.String()
		if t == gate.TabAnalysis {
			label += m.breadcrumb()
		}
		if t == m.gate.Tab() {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := theme.Pulse.Render("♥") + " AirPulse  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) breadcrumb() string {
	_, name := m.gate.Recording()
	switch m.gate.AnalysisRoute() {
	case gate.RouteAnalysis:
		return " › " + name
	case gate.RouteChat:
		return " › " + name + " › Chat"
	}
	return ""
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.userName != "" {
		left = theme.Hot.Render("● "+m.userName) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	if m.endpoint.BaseURL != "" {
		right = theme.Muted.Render(m.endpoint.Source+"  ") + right
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "record:start":
		return m, m.home.Start()
	case "record:stop":
		return m, m.home.Stop()
	case "record:upload":
		return m, m.home.Upload()
	case "devices:scan":
		if cmd := m.home.Scan(); cmd != nil {
			return m, cmd
		}
		m.status = "no bluetooth radio configured"
	case "recordings:refresh":
		return m, m.recordings.Refresh()
	case "recordings:bulk-upload":
		return m, m.recordings.BulkUpload()
	case "recordings:open":
		if len(parts) < 2 {
			m.status = "usage: recordings:open <id>"
			return m, nil
		}
		m.unwindAnalysis()
		next, _ := m.gate.SelectTab(gate.TabAnalysis)
		m.gate = next
		return m.openAnalysis(parts[1], parts[1])
	case "tab:home":
		return m.selectTab(gate.TabHome)
	case "tab:analysis":
		return m.selectTab(gate.TabAnalysis)
	case "tab:profile":
		return m.selectTab(gate.TabProfile)
	case "endpoint":
		if m.endpoint.BaseURL == "" {
			m.status = "endpoint not resolved yet"
		} else {
			m.status = fmt.Sprintf("api %s (%s)", m.endpoint.BaseURL, m.endpoint.Source)
		}
	case "logout":
		return m, m.logoutCmd()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) leaveSplash() (tea.Model, tea.Cmd) {
	if !m.splashDone || !m.resumeDone || m.gate.Stage() != gate.StageSplash {
		return m, nil
	}
	next, err := m.gate.SplashElapsed(m.resumed)
	if err != nil {
		return m, nil
	}
	m.gate = next
	if m.gate.Stage() == gate.StageMain {
		return m, m.enterMain()
	}
	return m, nil
}

func (m Model) enterMain() tea.Cmd {
	return tea.Batch(m.home.Init(), m.recordings.Init(), m.profile.Load())
}

func (m Model) selectTab(tab gate.Tab) (tea.Model, tea.Cmd) {
	next, err := m.gate.SelectTab(tab)
	if err != nil {
		return m, nil
	}
	m.gate = next
	switch tab {
	case gate.TabProfile:
		return m, m.profile.Load()
	case gate.TabAnalysis:
		if m.gate.AnalysisRoute() == gate.RouteRecordings {
			return m, m.recordings.Refresh()
		}
	}
	return m, nil
}

func (m Model) openAnalysis(id, name string) (tea.Model, tea.Cmd) {
	next, err := m.gate.OpenAnalysis(id, name)
	if err != nil {
		m.status = "cannot open analysis"
		return m, nil
	}
	m.gate = next
	ctx := m.newScreenContext()
	return m, m.analysis.Open(ctx, id, name)
}

// unwindAnalysis pops the Analysis stack back to the recordings list.
func (m *Model) unwindAnalysis() {
	if m.gate.Tab() != gate.TabAnalysis {
		return
	}
	for m.gate.AnalysisRoute() != gate.RouteRecordings {
		next, err := m.gate.Back()
		if err != nil {
			return
		}
		m.gate = next
	}
	m.endScreen()
	m.analysis.Close()
	m.chat.Close()
}

func (m Model) resetAfterLogout() (tea.Model, tea.Cmd) {
	m.endScreen()
	m.analysis.Close()
	m.chat.Close()
	if next, err := m.gate.LoggedOut(); err == nil {
		m.gate = next
	}
	m.userName = ""
	m.status = "logged out"
	m.profile.Reset()
	m.recordings = recordingsview.New(m.ports.Recording)
	m.propagateSize()
	return m, m.auth.Reset()
}

// newScreenContext cancels the previous screen's context and starts a new one.
func (m *Model) newScreenContext() context.Context {
	m.endScreen()
	ctx, cancel := context.WithCancel(context.Background())
	m.screenCtx = ctx
	m.cancelScreen = cancel
	return ctx
}

func (m *Model) endScreen() {
	if m.cancelScreen != nil {
		m.cancelScreen()
		m.cancelScreen = nil
	}
}

func (m Model) capturingInput() bool {
	if m.gate.Tab() != gate.TabAnalysis {
		return false
	}
	switch m.gate.AnalysisRoute() {
	case gate.RouteChat:
		return true
	case gate.RouteRecordings:
		return m.recordings.Filtering()
	}
	return false
}

// updateActive routes a key to the visible screen only.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.gate.Tab() {
	case gate.TabHome:
		m.home, cmd = m.home.Update(msg)
	case gate.TabAnalysis:
		switch m.gate.AnalysisRoute() {
		case gate.RouteAnalysis:
			m.analysis, cmd = m.analysis.Update(msg)
		case gate.RouteChat:
			m.chat, cmd = m.chat.Update(msg)
		default:
			m.recordings, cmd = m.recordings.Update(msg)
		}
	case gate.TabProfile:
		m.profile, cmd = m.profile.Update(msg)
	}
	return m, cmd
}

// broadcast delivers async results to every view. Each view ignores the
// messages it did not ask for.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 7)
	m.palette, cmds[6] = m.palette.Update(msg)
	m.auth, cmds[0] = m.auth.Update(msg)
	m.home, cmds[1] = m.home.Update(msg)
	m.recordings, cmds[2] = m.recordings.Update(msg)
	m.analysis, cmds[3] = m.analysis.Update(msg)
	m.chat, cmds[4] = m.chat.Update(msg)
	m.profile, cmds[5] = m.profile.Update(msg)
	return m, tea.Batch(cmds...)
}

func (m *Model) propagateSize() {
	full := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 4}
	m.auth, _ = m.auth.Update(full)
	m.home, _ = m.home.Update(sz)
	m.recordings, _ = m.recordings.Update(sz)
	m.analysis, _ = m.analysis.Update(sz)
	m.chat, _ = m.chat.Update(sz)
	m.profile, _ = m.profile.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) resumeCmd() tea.Cmd {
	session := m.ports.Session
	return func() tea.Msg {
		out, err := session.Resume(context.Background())
		return resumeMsg{session: out, err: err}
	}
}

func (m Model) endpointCmd() tea.Cmd {
	endpoint := m.ports.Endpoint
	if endpoint == nil {
		return nil
	}
	return func() tea.Msg {
		return endpointMsg{endpoint: endpoint.Resolve(context.Background())}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	session := m.ports.Session
	return func() tea.Msg {
		return loggedOutMsg{err: session.Logout(context.Background())}
	}
}
