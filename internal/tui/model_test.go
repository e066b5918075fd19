package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matsen/labsite/internal/publication"
	"github.com/matsen/labsite/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClipboard struct {
	mu    sync.Mutex
	texts []string
}

func (c *recordingClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *recordingClipboard) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1]
}

func testPubs() []publication.Publication {
	return []publication.Publication{
		{Title: "A", Year: 2020, Authors: []publication.Author{{Name: "X"}, {Name: "Y"}}},
		{Title: "B", Year: 2021, Authors: []publication.Author{{Name: "X"}, {Name: "Y"}, {Name: "Z"}}},
	}
}

func newTestModel(t *testing.T, pubs []publication.Publication) (Model, *view.View, *Widget, *recordingClipboard) {
	t.Helper()
	w := NewWidget()
	cb := &recordingClipboard{}
	v := view.New(view.PageConfig{Title: "Co-authors", Description: "Shared papers"}, pubs, w, cb,
		view.WithHintDuration(time.Hour))
	t.Cleanup(v.Unmount)
	return New(v, w), v, w, cb
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update should return a Model")
	return nm, cmd
}

func TestModel_SkeletonBeforeWindowSize(t *testing.T) {
	m, v, w, _ := newTestModel(t, testPubs())

	out := m.View()
	assert.Contains(t, out, "Co-authors")
	assert.Contains(t, out, "░")
	assert.Equal(t, view.StatusPlaceholder, v.State().Status)
	assert.Equal(t, 0, w.Renders())
}

func TestModel_WindowSizeMounts(t *testing.T) {
	m, v, w, _ := newTestModel(t, testPubs())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.True(t, v.State().Mounted)
	assert.Equal(t, 1, w.Renders())

	// A resize does not render again.
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 1, w.Renders())

	require.Len(t, m.edgeIDs, 3)
	assert.Equal(t, "X-Y", m.edgeIDs[0], "heaviest edge first")
	out := m.View()
	assert.Contains(t, out, "3 authors, 3 links")
	assert.NotContains(t, out, "░")
}

func TestModel_EmptyState(t *testing.T) {
	m, v, w, _ := newTestModel(t, nil)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, view.StatusEmpty, v.State().Status)
	assert.Equal(t, 0, w.Renders())
	assert.Contains(t, m.View(), "None")
}

func TestModel_EnterCopiesEdge(t *testing.T) {
	m, v, w, cb := newTestModel(t, testPubs())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Eventually(t, func() bool { return v.State().Copied }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Paper Numbers: 2—- A (2020)\n- B (2021)", cb.last())
	assert.Empty(t, w.Selected(), "selection is cleared after copying")
	assert.Contains(t, m.View(), "Copied!")
}

func TestModel_ChangeMsgRedraws(t *testing.T) {
	m, v, _, _ := newTestModel(t, testPubs())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Eventually(t, func() bool { return v.State().Copied }, time.Second, 5*time.Millisecond)
	require.Len(t, m.changes, 1, "state changes are queued for the program")

	_, cmd := update(t, m, changeMsg{})
	assert.NotNil(t, cmd, "model keeps listening for changes")
}

func TestModel_EscClearsSelection(t *testing.T) {
	m, _, w, _ := newTestModel(t, testPubs())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	w.mu.Lock()
	w.selected = "X-Y"
	w.mu.Unlock()

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, w.Selected())
}

func TestModel_QuitUnmounts(t *testing.T) {
	m, v, w, _ := newTestModel(t, testPubs())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, v.State().Mounted)

	// No remount after teardown.
	_, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.False(t, v.State().Mounted)
	assert.Equal(t, 1, w.Renders())
}

func TestModel_QuitReleasesChangeWaiter(t *testing.T) {
	m, _, _, _ := newTestModel(t, testPubs())

	got := make(chan tea.Msg, 1)
	go func() { got <- m.Init()() }()

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("change waiter still blocked after quit")
	}
	m.stop() // a second stop is a no-op
}

func TestModel_CursorDetail(t *testing.T) {
	m, _, _, _ := newTestModel(t, testPubs())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	detail := m.cursorDetail()
	assert.True(t, strings.HasPrefix(detail, "Paper Numbers: 2"), "detail = %q", detail)
}
