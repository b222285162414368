package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/embedbot/pkg/widget"
)

const (
	defaultWidth  = 80
	defaultHeight = 30

	openGlyph  = "💬"
	closeGlyph = "✕"
)

// ShellModel is the floating widget: a toggle button anchored to a corner
// and, while open, the chat panel next to it. Open/closed state is not
// persisted.
type ShellModel struct {
	cfg    widget.Config
	panel  PanelModel
	keys   ShellKeyMap
	styles Styles
	open   bool

	width  int
	height int
}

func NewShellModel(cfg widget.Config, panel PanelModel) ShellModel {
	m := ShellModel{
		cfg:    cfg,
		panel:  panel,
		keys:   DefaultShellKeyMap(),
		styles: NewStyles(cfg.PrimaryColor),
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.layout()
	return m
}

func (m ShellModel) IsOpen() bool { return m.open }

func (m ShellModel) Panel() PanelModel { return m.panel }

// Toggle flips between open and closed.
func (m *ShellModel) Toggle() {
	m.open = !m.open
}

// Close returns to the closed state. In-flight requests keep running.
func (m *ShellModel) Close() {
	m.open = false
}

// SetSize records the page size; the panel is sized to leave room for the
// toggle button.
func (m *ShellModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.layout()
}

func (m *ShellModel) layout() {
	buttonHeight := lipgloss.Height(m.button())
	m.panel.SetSize(m.width-2, m.height-buttonHeight-1)
}

func (m ShellModel) Init() tea.Cmd {
	return m.panel.Init()
}

func (m ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.Toggle()
			return m, nil
		case !m.open && key.Matches(msg, m.keys.Press):
			m.open = true
			return m, nil
		}
		if !m.open {
			return m, nil
		}

	case CloseMsg:
		m.Close()
		return m, nil
	}

	// Everything else reaches the panel, including transport results that
	// arrive while the shell is closed.
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m ShellModel) button() string {
	glyph := openGlyph
	if m.open {
		glyph = closeGlyph
	}
	return m.styles.Button.Render(glyph)
}

func (m ShellModel) View() string {
	pos := m.cfg.Position
	align := lipgloss.Right
	if pos.Left() {
		align = lipgloss.Left
	}

	block := m.button()
	if m.open {
		if pos.Top() {
			block = lipgloss.JoinVertical(align, m.button(), m.panel.View())
		} else {
			block = lipgloss.JoinVertical(align, m.panel.View(), m.button())
		}
	}

	vertical := lipgloss.Bottom
	if pos.Top() {
		vertical = lipgloss.Top
	}
	return lipgloss.Place(m.width, m.height, align, vertical, block)
}
