package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/stretchr/testify/require"
)

func newTestShell(sender *fakeSender) ShellModel {
	return NewShellModel(testConfig(), newTestPanel(sender))
}

func update(t *testing.T, m ShellModel, msg tea.Msg) (ShellModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	s, ok := next.(ShellModel)
	require.True(t, ok)
	return s, cmd
}

func TestShell_StartsClosed(t *testing.T) {
	m := newTestShell(&fakeSender{})
	require.False(t, m.IsOpen())
	view := m.View()
	require.Contains(t, view, openGlyph)
	require.NotContains(t, view, "Online")
}

func TestShell_ToggleOpensAndCloses(t *testing.T) {
	m := newTestShell(&fakeSender{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.IsOpen())
	require.Contains(t, m.View(), "Online")
	require.Contains(t, m.View(), closeGlyph)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.False(t, m.IsOpen())
}

func TestShell_EnterOrSpaceOpensWhenClosed(t *testing.T) {
	m := newTestShell(&fakeSender{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.IsOpen())

	m = newTestShell(&fakeSender{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.True(t, m.IsOpen())
}

func TestShell_KeysIgnoredByPanelWhileClosed(t *testing.T) {
	m := newTestShell(&fakeSender{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	require.Equal(t, "", m.Panel().InputValue())
}

func TestShell_PanelCloseControlClosesShell(t *testing.T) {
	m := newTestShell(&fakeSender{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.False(t, m.IsOpen())
}

func TestShell_ReplyAppliedWhileClosed(t *testing.T) {
	m := newTestShell(&fakeSender{reply: "Hi there"})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Hello")})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	res := firstResult(t, runCmd(cmd))

	m, _ = update(t, m, CloseMsg{})
	require.False(t, m.IsOpen())

	m, _ = update(t, m, res)
	require.Equal(t, 2, m.Panel().Conversation().Len())
	require.False(t, m.Panel().Conversation().Pending())

	// Reopening shows the same conversation.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Contains(t, m.View(), "Hi there")
}

func TestShell_CtrlCQuits(t *testing.T) {
	m := newTestShell(&fakeSender{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestShell_PlacementFollowsPosition(t *testing.T) {
	for _, pos := range []widget.Position{widget.BottomRight, widget.BottomLeft, widget.TopRight, widget.TopLeft} {
		cfg := testConfig()
		cfg.Position = pos
		m := NewShellModel(cfg, newTestPanel(&fakeSender{}))
		m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})

		lines := splitLines(m.View())
		require.Len(t, lines, 20, "position %s", pos)

		glyphLine := -1
		for i, l := range lines {
			if containsGlyph(l) {
				glyphLine = i
				break
			}
		}
		require.NotEqual(t, -1, glyphLine)
		if pos.Top() {
			require.Less(t, glyphLine, 10, "position %s", pos)
		} else {
			require.GreaterOrEqual(t, glyphLine, 10, "position %s", pos)
		}
	}
}

func splitLines(s string) []string { return strings.Split(s, "\n") }

func containsGlyph(line string) bool { return strings.Contains(line, openGlyph) }
