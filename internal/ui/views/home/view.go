package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	devicedto "airpulse/internal/modules/device/dto"
	recordingdto "airpulse/internal/modules/recording/dto"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type RecorderPort interface {
	Start(ctx context.Context) (recordingdto.StatusOutput, error)
	Stop(ctx context.Context) (recordingdto.StatusOutput, error)
	Upload(ctx context.Context) (recordingdto.UploadOutput, error)
	Status(ctx context.Context) recordingdto.StatusOutput
}

type DevicePort interface {
	Scan(ctx context.Context, window time.Duration) ([]devicedto.DeviceOutput, error)
	Connect(ctx context.Context, id string) (devicedto.DeviceOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type statusMsg struct {
	status recordingdto.StatusOutput
	err    error
	action string
}

// UploadedMsg is emitted after a successful upload so the recordings list can
// refresh.
type UploadedMsg struct {
	Upload recordingdto.UploadOutput
}

type uploadResultMsg struct {
	out recordingdto.UploadOutput
	err error
}

type scannedMsg struct {
	devices []devicedto.DeviceOutput
	err     error
}

type connectedMsg struct {
	device devicedto.DeviceOutput
	err    error
}

type tickMsg time.Time

// ─── list item ───────────────────────────────────────────────────────────────

type deviceItem struct{ d devicedto.DeviceOutput }

func (i deviceItem) Title() string       { return i.d.Name }
func (i deviceItem) Description() string { return i.d.ID }
func (i deviceItem) FilterValue() string { return i.d.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	recorder  RecorderPort
	devices   DevicePort
	list      list.Model
	spinner   spinner.Model
	status    recordingdto.StatusOutput
	connected devicedto.DeviceOutput
	scanning  bool
	busy      bool
	alert     string
	info      string
	width     int
	height    int
}

func New(recorder RecorderPort, devices DevicePort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Available Devices"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("device", "devices")

	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = theme.Pulse

	return Model{
		recorder: recorder,
		devices:  devices,
		list:     l,
		spinner:  sp,
		status:   recordingdto.StatusOutput{State: "idle"},
	}
}

func (m Model) Init() tea.Cmd {
	return m.statusCmd("")
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width/2, max(m.height-4, 4))

	case statusMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = actionFailure(msg.action, msg.err)
			return m, m.statusCmd("")
		}
		m.status = msg.status
		if msg.action != "" {
			m.alert = ""
		}
		if m.recording() {
			cmds = append(cmds, tick(), m.spinner.Tick)
		}

	case tickMsg:
		if m.recording() {
			cmds = append(cmds, m.statusCmd(""))
		}

	case uploadResultMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = "Upload failed: " + apperrors.UserMessage(msg.err, "Unknown error")
			cmds = append(cmds, m.statusCmd(""))
			break
		}
		m.alert = ""
		m.info = "Uploaded. Saved as " + msg.out.Title
		out := msg.out
		cmds = append(cmds, m.statusCmd(""), func() tea.Msg { return UploadedMsg{Upload: out} })

	case scannedMsg:
		m.scanning = false
		if msg.err != nil {
			m.alert = "Bluetooth: " + apperrors.UserMessage(msg.err, "Scan failed")
			break
		}
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceItem{d: d}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.info = fmt.Sprintf("Found %d device(s)", len(msg.devices))

	case connectedMsg:
		m.busy = false
		if msg.err != nil {
			m.alert = "Bluetooth: " + apperrors.UserMessage(msg.err, "Failed to connect")
			break
		}
		m.connected = msg.device
		m.alert = ""
		m.info = "Connected to " + msg.device.Name

	case spinner.TickMsg:
		if m.recording() || m.scanning || m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if m.recording() {
				cmds = append(cmds, m.Stop())
			} else {
				cmds = append(cmds, m.Start())
			}
			return m, tea.Batch(cmds...)
		case "u":
			return m, m.Upload()
		case "s":
			cmd := m.Scan()
			m.scanning = cmd != nil
			return m, tea.Batch(cmd, m.spinner.Tick)
		case "enter":
			if item, ok := m.list.SelectedItem().(deviceItem); ok && !m.busy {
				m.busy = true
				return m, m.connectCmd(item.d.ID)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	leftW := m.width / 2
	rightW := m.width - leftW

	deviceHeader := theme.Muted.Render("Not Connected")
	if m.connected.ID != "" {
		deviceHeader = theme.Good.Render("Connected: " + m.connected.Name)
	}
	devices := m.list.View()
	if len(m.list.Items()) == 0 {
		devices = theme.Title.Render("Available Devices") + "\n\n" + theme.Muted.Render("press s to scan")
	}
	if m.scanning {
		devices += "\n\n" + m.spinner.View() + " scanning…"
	}
	left := lipgloss.NewStyle().Width(leftW).Height(m.height).
		Render(deviceHeader + "\n\n" + devices)

	right := theme.Pane.Width(max(rightW-4, 10)).Height(max(m.height-4, 1)).Render(m.renderRecorder())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// ─── commands usable from the palette ────────────────────────────────────────

func (m Model) Start() tea.Cmd {
	recorder := m.recorder
	return func() tea.Msg {
		st, err := recorder.Start(context.Background())
		return statusMsg{status: st, err: err, action: "start"}
	}
}

func (m Model) Stop() tea.Cmd {
	recorder := m.recorder
	return func() tea.Msg {
		st, err := recorder.Stop(context.Background())
		return statusMsg{status: st, err: err, action: "stop"}
	}
}

func (m Model) Upload() tea.Cmd {
	recorder := m.recorder
	return func() tea.Msg {
		out, err := recorder.Upload(context.Background())
		return uploadResultMsg{out: out, err: err}
	}
}

// Scan returns nil when no radio is configured.
func (m Model) Scan() tea.Cmd {
	if m.devices == nil {
		return nil
	}
	devices := m.devices
	return func() tea.Msg {
		found, err := devices.Scan(context.Background(), 0)
		return scannedMsg{devices: found, err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) recording() bool { return m.status.State == "recording" }

func (m Model) statusCmd(action string) tea.Cmd {
	recorder := m.recorder
	return func() tea.Msg {
		return statusMsg{status: recorder.Status(context.Background()), action: action}
	}
}

func (m Model) connectCmd(id string) tea.Cmd {
	devices := m.devices
	return func() tea.Msg {
		if devices == nil {
			return connectedMsg{err: apperrors.Device("no bluetooth radio configured")}
		}
		d, err := devices.Connect(context.Background(), id)
		return connectedMsg{device: d, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) renderRecorder() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recording") + "\n\n")

	st := m.status
	switch st.State {
	case "recording":
		sb.WriteString(m.spinner.View() + " " + theme.Pulse.Render("Recording… "+FormatElapsed(st.ElapsedSeconds)) + "\n")
	case "stopped":
		sb.WriteString(theme.Hot.Render("Stopped "+FormatElapsed(st.ElapsedSeconds)) + "\n")
		sb.WriteString(theme.Muted.Render(st.Path) + "\n")
	case "uploading":
		sb.WriteString(theme.Hot.Render("Uploading…") + "\n")
	case "error":
		if st.Path == "" {
			// The capture itself failed; there is no file to retry.
			sb.WriteString(theme.Alert.Render("Capture failed, press r to record again") + "\n")
			if st.LastError != "" {
				sb.WriteString(theme.Muted.Render(st.LastError) + "\n")
			}
			break
		}
		sb.WriteString(theme.Alert.Render("Upload failed, press u to retry") + "\n")
		sb.WriteString(theme.Muted.Render(st.Path) + "\n")
	default:
		sb.WriteString(theme.Good.Render("Ready") + "\n")
	}
	sb.WriteString("\n")

	switch {
	case m.alert != "":
		sb.WriteString(theme.Alert.Render(m.alert) + "\n\n")
	case m.info != "":
		sb.WriteString(theme.Good.Render(m.info) + "\n\n")
	}

	action := "r: record"
	if st.State == "recording" {
		action = "r: stop"
	}
	sb.WriteString(theme.Muted.Render(action + "  u: save  s: scan  enter: connect"))
	return sb.String()
}

// FormatElapsed renders seconds as mm:ss.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func actionFailure(action string, err error) string {
	switch action {
	case "start":
		return "Unable to start recording: " + apperrors.UserMessage(err, "")
	case "stop":
		return "Unable to stop recording: " + apperrors.UserMessage(err, "")
	}
	return apperrors.UserMessage(err, "Something went wrong.")
}
