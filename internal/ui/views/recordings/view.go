package recordings

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	recordingdto "airpulse/internal/modules/recording/dto"
	apperrors "airpulse/internal/platform/errors"
	"airpulse/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type RecordingsPort interface {
	List(ctx context.Context) ([]recordingdto.RecordingOutput, error)
	ListCached(ctx context.Context) (recordingdto.CachedListOutput, error)
	BulkUpload(ctx context.Context) (recordingdto.BulkUploadOutput, error)
	Delete(ctx context.Context, id string) error
}

// ─── messages ────────────────────────────────────────────────────────────────

// OpenAnalysisMsg asks the app to push the Analysis screen.
type OpenAnalysisMsg struct {
	ID   string
	Name string
}

type cachedMsg struct {
	out recordingdto.CachedListOutput
	err error
}

type loadedMsg struct {
	items []recordingdto.RecordingOutput
	err   error
}

type bulkMsg struct {
	count int
	err   error
}

type deletedMsg struct {
	id  string
	err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordingItem struct{ r recordingdto.RecordingOutput }

func (i recordingItem) Title() string { return i.r.Title }
func (i recordingItem) Description() string {
	parts := []string{fmt.Sprintf("%.0fs", i.r.Duration)}
	if i.r.CreatedAt != "" {
		parts = append(parts, i.r.CreatedAt)
	}
	return strings.Join(parts, "  ")
}
func (i recordingItem) FilterValue() string { return i.r.Title }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port          RecordingsPort
	list          list.Model
	spinner       spinner.Model
	loading       bool
	pendingDelete string
	alert         string
	info          string
	width         int
	height        int
}

func New(port RecordingsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recordings"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("recording", "recordings")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.cachedCmd(), m.Refresh(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, max(m.height-3, 3))

	case cachedMsg:
		// A live list that already arrived wins over the cache.
		if msg.err == nil && m.loading && len(msg.out.Recordings) > 0 {
			cmds = append(cmds, m.setItems(msg.out.Recordings))
			m.list.Title = "Recordings (cached " + msg.out.SyncedAt.Local().Format("Jan 2 15:04") + ")"
		}

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.alert = "Could not load recordings: " + apperrors.UserMessage(msg.err, "Please try again.")
			break
		}
		m.alert = ""
		m.list.Title = "Recordings"
		cmds = append(cmds, m.setItems(msg.items))

	case bulkMsg:
		if msg.err != nil {
			m.alert = "Bulk upload failed: " + apperrors.UserMessage(msg.err, "Please try again.")
			break
		}
		m.info = fmt.Sprintf("Imported %d recording(s)", msg.count)
		cmds = append(cmds, m.Refresh())

	case deletedMsg:
		if msg.err != nil {
			m.alert = "Delete failed: " + apperrors.UserMessage(msg.err, "Please try again.")
			break
		}
		m.info = "Deleted " + msg.id
		cmds = append(cmds, m.Refresh())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		if m.pendingDelete != "" {
			id := m.pendingDelete
			m.pendingDelete = ""
			if msg.String() == "y" {
				return m, m.deleteCmd(id)
			}
			m.info = "Delete cancelled"
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(recordingItem); ok {
				id, name := item.r.ID, item.r.Title
				return m, func() tea.Msg { return OpenAnalysisMsg{ID: id, Name: name} }
			}
			return m, nil
		case "b":
			return m, m.BulkUpload()
		case "d":
			if item, ok := m.list.SelectedItem().(recordingItem); ok {
				m.pendingDelete = item.r.ID
				m.info = ""
			}
			return m, nil
		case "ctrl+r":
			m.loading = true
			return m, tea.Batch(m.Refresh(), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var footer string
	switch {
	case m.pendingDelete != "":
		footer = theme.Alert.Render("Delete " + m.pendingDelete + "? y to confirm, any key to cancel")
	case m.alert != "":
		footer = theme.Alert.Render(m.alert)
	case m.info != "":
		footer = theme.Good.Render(m.info)
	default:
		footer = theme.Muted.Render("enter: analyze  b: bulk upload  d: delete  ctrl+r: refresh  /: filter")
	}
	body := m.list.View()
	if m.loading && len(m.list.Items()) == 0 {
		body = lipgloss.Place(m.width, max(m.height-3, 1), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading recordings…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// Filtering reports whether the list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Refresh() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		items, err := port.List(context.Background())
		return loadedMsg{items: items, err: err}
	}
}

func (m Model) BulkUpload() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.BulkUpload(context.Background())
		return bulkMsg{count: out.Count, err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) setItems(recs []recordingdto.RecordingOutput) tea.Cmd {
	items := make([]list.Item, len(recs))
	for i, r := range recs {
		items[i] = recordingItem{r: r}
	}
	return m.list.SetItems(items)
}

func (m Model) cachedCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.ListCached(context.Background())
		return cachedMsg{out: out, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		return deletedMsg{id: id, err: port.Delete(context.Background(), id)}
	}
}
