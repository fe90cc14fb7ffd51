// Package ui implements the interactive terminal view for a review run: a
// scrollable file list with per-file status, a spinner while work is in
// flight, and a summary footer.
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/revpilot/revpilot/internal/cli/hooks"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

const listHeightMargin = 4

// Model is the state of the TUI for one review run.
type Model struct {
	list    list.Model
	spinner spinner.Model
	width   int
	height  int
	// initialized tracks if the model has received initial dimensions.
	initialized bool
	appVersion  string

	// fileItems and itemMap are updated from renderer messages; listLock
	// protects them against the renderer goroutine.
	fileItems []listItem
	itemMap   map[string]int
	listLock  sync.Mutex

	summary      Summary
	phaseMessage string
	quitting     bool
	runStart     map[string]time.Time

	debounceTimer *time.Timer
}

// listItem is one file row in the list.
type listItem struct {
	path     string
	status   reviewer.Status
	message  string
	duration time.Duration
}

// Summary holds the aggregate counts shown in the footer.
type Summary struct {
	Total     int
	Completed int
	Succeeded int
	Failed    int
	StartTime time.Time
}

// NewModel creates the initial model for the TUI.
func NewModel(appVersion string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:         l,
		spinner:      s,
		appVersion:   appVersion,
		summary:      Summary{StartTime: time.Now()},
		phaseMessage: "Initializing...",
		itemMap:      make(map[string]int),
		runStart:     make(map[string]time.Time),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model, folding renderer messages into the file list
// and summary counts.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var listCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - listHeightMargin
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.SetSize(m.width, listHeight)
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		m.list, listCmd = m.list.Update(msg)
		cmds = append(cmds, listCmd)

	case spinner.TickMsg:
		if m.quitting {
			return m, nil
		}
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	case hooks.RunStartMsg:
		m.summary.Total = msg.Total
		m.summary.StartTime = time.Now()
		if !m.quitting {
			m.phaseMessage = "Reviewing..."
		}

	case hooks.FileStatusMsg:
		m.listLock.Lock()
		item := m.itemFor(msg.Path)
		switch msg.Status {
		case reviewer.StatusRunning:
			m.runStart[msg.Path] = time.Now()
			item.duration = 0
		case reviewer.StatusSuccess, reviewer.StatusError:
			if start, ok := m.runStart[msg.Path]; ok {
				item.duration = time.Since(start)
				delete(m.runStart, msg.Path)
			}
			if !isFinalStatus(item.status) {
				m.summary.Completed++
				if msg.Status == reviewer.StatusSuccess {
					m.summary.Succeeded++
				} else {
					m.summary.Failed++
				}
			}
		}
		item.status = msg.Status
		cmds = append(cmds, m.debounceListUpdate())
		m.listLock.Unlock()

	case hooks.ProgressMsg:
		m.summary.Total = msg.Total
		m.summary.Completed = msg.Completed

	case hooks.FileErrorMsg:
		m.listLock.Lock()
		item := m.itemFor(msg.Path)
		item.message = msg.Message
		cmds = append(cmds, m.debounceListUpdate())
		m.listLock.Unlock()

	case hooks.RunCompleteMsg:
		m.phaseMessage = "Complete"
		// Remain on screen until the user quits.

	case UpdateListMsg:
		m.listLock.Lock()
		items := make([]list.Item, len(m.fileItems))
		for i, item := range m.fileItems {
			items[i] = item
		}
		m.listLock.Unlock()
		cmds = append(cmds, m.list.SetItems(items))
	}

	if listCmd != nil {
		cmds = append(cmds, listCmd)
	}
	return m, tea.Batch(cmds...)
}

// itemFor returns the list item for path, creating it if unseen.
// MUST be called with listLock held.
func (m *Model) itemFor(path string) *listItem {
	if idx, ok := m.itemMap[path]; ok {
		return &m.fileItems[idx]
	}
	m.fileItems = append(m.fileItems, listItem{path: path, status: reviewer.StatusPending})
	m.itemMap[path] = len(m.fileItems) - 1
	return &m.fileItems[len(m.fileItems)-1]
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}
	if !m.initialized {
		return "Initializing..."
	}

	headerLeft := fmt.Sprintf("revpilot v%s", m.appVersion)
	headerRight := m.phaseMessage
	if m.phaseMessage != "Complete" && m.phaseMessage != "Initializing..." {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	headerCenter := ""
	headerWidth := m.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerWidth > 0 {
		headerCenter = lipgloss.PlaceHorizontal(headerWidth, lipgloss.Center, " ")
	}
	header := HeaderStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, headerLeft, headerCenter, headerRight))

	elapsed := time.Since(m.summary.StartTime).Round(time.Millisecond)
	footerLeft := fmt.Sprintf(
		"Reviewed: %d/%d | Passed: %d | Failed: %d | Elapsed: %s",
		m.summary.Completed,
		m.summary.Total,
		m.summary.Succeeded,
		m.summary.Failed,
		elapsed,
	)
	footerRight := "q: quit"
	footerCenter := ""
	footerWidth := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	if footerWidth > 0 {
		footerCenter = lipgloss.PlaceHorizontal(footerWidth, lipgloss.Center, " ")
	}
	footer := FooterStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, footerLeft, footerCenter, footerRight))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.list.View(),
		footer,
	)
}

func isFinalStatus(status reviewer.Status) bool {
	return status == reviewer.StatusSuccess ||
		status == reviewer.StatusError ||
		status == reviewer.StatusSkipped
}

// FilterValue implements the list.Item interface.
func (i listItem) FilterValue() string { return i.path }

// Title implements the list.Item interface.
func (i listItem) Title() string { return i.path }

// Description implements the list.Item interface.
func (i listItem) Description() string {
	var statusStyle lipgloss.Style
	statusIcon := " "
	switch i.status {
	case reviewer.StatusSuccess:
		statusStyle = StatusStyleSuccess
		statusIcon = "✓"
	case reviewer.StatusError:
		statusStyle = StatusStyleError
		statusIcon = "✗"
	case reviewer.StatusSkipped:
		statusStyle = StatusStyleSkipped
		statusIcon = "S"
	case reviewer.StatusRunning:
		statusStyle = StatusStyleRunning
		statusIcon = "…"
	default:
		statusStyle = StatusStylePending
	}

	statusStr := statusStyle.Render(fmt.Sprintf("[%s]", statusIcon))
	details := ""
	switch {
	case i.status == reviewer.StatusError:
		details = i.message
	case i.status == reviewer.StatusSuccess && i.duration > 0:
		details = formatDuration(i.duration)
	}
	return fmt.Sprintf("%s %s", statusStr, details)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		if d == 0 {
			return ""
		}
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// UpdateListMsg signals that the list component should refresh its items.
type UpdateListMsg struct{}

const listUpdateDebounceDuration = 50 * time.Millisecond

// debounceListUpdate coalesces bursts of status changes into one list
// refresh. MUST be called with listLock held.
func (m *Model) debounceListUpdate() tea.Cmd {
	if m.debounceTimer != nil {
		m.debounceTimer.Stop()
	}
	m.debounceTimer = time.NewTimer(listUpdateDebounceDuration)
	return func() tea.Msg {
		<-m.debounceTimer.C
		return UpdateListMsg{}
	}
}

const (
	ColorHeaderFg = lipgloss.Color("252")
	ColorHeaderBg = lipgloss.Color("62")

	ColorFooterFg = lipgloss.Color("252")
	ColorFooterBg = lipgloss.Color("56")

	ColorNormalFg     = lipgloss.Color("250")
	ColorNormalDescFg = lipgloss.Color("244")

	ColorSelectedFg     = lipgloss.Color("255")
	ColorSelectedBg     = lipgloss.Color("56")
	ColorSelectedDescFg = lipgloss.Color("248")

	ColorStatusSuccess = lipgloss.Color("40")
	ColorStatusError   = lipgloss.Color("196")
	ColorStatusSkipped = lipgloss.Color("214")
	ColorStatusPending = lipgloss.Color("244")
	ColorStatusRunning = lipgloss.Color("205")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeaderFg).
			Background(ColorHeaderBg).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorFooterFg).
			Background(ColorFooterBg).
			Padding(0, 1)

	StatusStyleSuccess = lipgloss.NewStyle().Foreground(ColorStatusSuccess)
	StatusStyleError   = lipgloss.NewStyle().Foreground(ColorStatusError)
	StatusStyleSkipped = lipgloss.NewStyle().Foreground(ColorStatusSkipped)
	StatusStylePending = lipgloss.NewStyle().Foreground(ColorStatusPending)
	StatusStyleRunning = lipgloss.NewStyle().Foreground(ColorStatusRunning)
)
