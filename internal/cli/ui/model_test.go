package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revpilot/revpilot/internal/cli/hooks"
	"github.com/revpilot/revpilot/pkg/reviewer"
)

// newTestModel creates a model with fixed dimensions so View can render.
func newTestModel(width, height int) *Model {
	m := NewModel("test")
	m.width = width
	m.height = height
	listHeight := height - listHeightMargin
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(width, listHeight)
	m.initialized = true
	return &m
}

func TestModelInit(t *testing.T) {
	m := newTestModel(80, 25)
	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	_, ok := msg.(spinner.TickMsg)
	assert.True(t, ok, "Init should return a command that produces spinner.TickMsg")
}

func TestModelUpdateQuit(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			m := newTestModel(80, 25)
			newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
			require.NotNil(t, newModel)
			require.NotNil(t, cmd)

			updated, ok := newModel.(*Model)
			require.True(t, ok)
			assert.True(t, updated.quitting)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestModelUpdateWindowSize(t *testing.T) {
	m := newTestModel(80, 25)

	newModel, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Nil(t, cmd)

	updated, ok := newModel.(*Model)
	require.True(t, ok)
	assert.True(t, updated.initialized)
	assert.Equal(t, 100, updated.width)
	assert.Equal(t, 30, updated.height)
	assert.Equal(t, 30-listHeightMargin, updated.list.Height())
	assert.Equal(t, 100, updated.list.Width())
}

func TestModelUpdateRunStart(t *testing.T) {
	m := newTestModel(80, 25)

	newModel, _ := m.Update(hooks.RunStartMsg{Total: 5})
	updated := newModel.(*Model)

	assert.Equal(t, 5, updated.summary.Total)
	assert.Equal(t, "Reviewing...", updated.phaseMessage)
}

func TestModelUpdateFileStatus(t *testing.T) {
	m := newTestModel(80, 25)
	path := "src/main.go"

	newModel, cmd := m.Update(hooks.FileStatusMsg{Path: path, Status: reviewer.StatusRunning})
	require.NotNil(t, cmd)
	updated := newModel.(*Model)

	require.Len(t, updated.fileItems, 1)
	assert.Equal(t, path, updated.fileItems[0].path)
	assert.Equal(t, reviewer.StatusRunning, updated.fileItems[0].status)
	assert.Zero(t, updated.summary.Completed)

	newModel2, _ := updated.Update(hooks.FileStatusMsg{Path: path, Status: reviewer.StatusSuccess})
	updated2 := newModel2.(*Model)

	require.Len(t, updated2.fileItems, 1, "status updates for a known file reuse its row")
	assert.Equal(t, reviewer.StatusSuccess, updated2.fileItems[0].status)
	assert.Equal(t, 1, updated2.summary.Completed)
	assert.Equal(t, 1, updated2.summary.Succeeded)
	assert.Zero(t, updated2.summary.Failed)
}

func TestModelUpdateFileError(t *testing.T) {
	m := newTestModel(80, 25)
	path := "src/bad.go"

	newModel, _ := m.Update(hooks.FileStatusMsg{Path: path, Status: reviewer.StatusError})
	updated := newModel.(*Model)
	newModel2, _ := updated.Update(hooks.FileErrorMsg{Path: path, Message: "syntax error"})
	updated2 := newModel2.(*Model)

	require.Len(t, updated2.fileItems, 1)
	assert.Equal(t, "syntax error", updated2.fileItems[0].message)
	assert.Equal(t, 1, updated2.summary.Failed)
}

func TestModelUpdateProgress(t *testing.T) {
	m := newTestModel(80, 25)

	newModel, _ := m.Update(hooks.ProgressMsg{Path: "a.go", Completed: 2, Total: 4})
	updated := newModel.(*Model)

	assert.Equal(t, 2, updated.summary.Completed)
	assert.Equal(t, 4, updated.summary.Total)
}

func TestModelUpdateRunComplete(t *testing.T) {
	m := newTestModel(80, 25)

	newModel, _ := m.Update(hooks.RunCompleteMsg{})
	updated := newModel.(*Model)
	assert.Equal(t, "Complete", updated.phaseMessage)
	assert.False(t, updated.quitting, "run completion leaves the view up until the user quits")
}

func TestModelCompletedCountedOnce(t *testing.T) {
	m := newTestModel(80, 25)
	path := "src/main.go"

	newModel, _ := m.Update(hooks.FileStatusMsg{Path: path, Status: reviewer.StatusSuccess})
	updated := newModel.(*Model)
	newModel2, _ := updated.Update(hooks.FileStatusMsg{Path: path, Status: reviewer.StatusSuccess})
	updated2 := newModel2.(*Model)

	assert.Equal(t, 1, updated2.summary.Completed)
	assert.Equal(t, 1, updated2.summary.Succeeded)
}
