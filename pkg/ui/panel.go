package ui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/embedbot/pkg/conversation"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/rs/zerolog"
)

const (
	subtitle    = "Online • Typically replies instantly"
	placeholder = "Type a message..."

	// Panel outer size in cells, clamped to the window.
	panelWidth  = 48
	panelHeight = 22

	// header (2 lines + border) + input (1 line + border) + help
	panelChrome = 7
)

// CloseMsg is emitted by the panel's close control.
type CloseMsg struct{}

// PanelModel renders a conversation with an input line and drives transport
// calls for accepted submits.
type PanelModel struct {
	cfg     widget.Config
	conv    *conversation.Conversation
	backend *TransportBackend
	logger  zerolog.Logger
	keys    PanelKeyMap
	styles  Styles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
	status string

	// rendered caches glamour output per message index.
	rendered []string

	copyFn     func(string) error
	markdownFn func(string, int) (string, error)
}

type PanelOption func(*PanelModel)

func WithClipboard(fn func(string) error) PanelOption {
	return func(m *PanelModel) { m.copyFn = fn }
}

func WithMarkdownRenderer(fn func(content string, width int) (string, error)) PanelOption {
	return func(m *PanelModel) { m.markdownFn = fn }
}

func WithPanelLogger(l zerolog.Logger) PanelOption {
	return func(m *PanelModel) { m.logger = l }
}

func NewPanelModel(cfg widget.Config, backend *TransportBackend, opts ...PanelOption) PanelModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 10000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.PrimaryColor))

	m := PanelModel{
		cfg:        cfg,
		conv:       conversation.New(),
		backend:    backend,
		logger:     zerolog.Nop(),
		keys:       DefaultPanelKeyMap(),
		styles:     NewStyles(cfg.PrimaryColor),
		input:      ti,
		viewport:   viewport.New(panelWidth-2, panelHeight-panelChrome),
		spinner:    sp,
		copyFn:     clipboard.WriteAll,
		markdownFn: renderMarkdown,
	}
	for _, o := range opts {
		o(&m)
	}
	m.SetSize(panelWidth, panelHeight)
	return m
}

func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// Conversation exposes the state machine, mostly for inspection.
func (m PanelModel) Conversation() *conversation.Conversation { return m.conv }

// InputValue is the pending, unsent input text.
func (m PanelModel) InputValue() string { return m.input.Value() }

// SetSize fits the panel into the given outer size.
func (m *PanelModel) SetSize(width, height int) {
	m.width = min(width, panelWidth)
	m.height = min(height, panelHeight)
	inner := max(m.width-2, 10)
	m.viewport.Width = inner
	m.viewport.Height = max(m.height-panelChrome, 1)
	m.input.Width = max(inner-lipgloss.Width(m.input.Prompt)-10, 5)
	m.rendered = nil
	m.refresh()
}

func (m PanelModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PanelModel) Update(msg tea.Msg) (PanelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Reset):
			m.conv.Reset()
			m.input.Reset()
			m.rendered = nil
			m.status = ""
			m.refresh()
			return m, m.input.Focus()
		case key.Matches(msg, m.keys.Close):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Copy):
			m.copyLastReply()
			return m, nil
		}
		if m.conv.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case replyMsg:
		if !m.conv.Resolve(msg.gen, msg.reply) {
			m.logger.Debug().Uint64("generation", msg.gen).Msg("dropping stale reply")
		}
		m.refresh()
		return m, m.input.Focus()

	case failureMsg:
		if !m.conv.Fail(msg.gen, msg.err) {
			m.logger.Debug().Uint64("generation", msg.gen).Msg("dropping stale failure")
		}
		m.refresh()
		return m, m.input.Focus()

	case spinner.TickMsg:
		if !m.conv.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m PanelModel) submit() (PanelModel, tea.Cmd) {
	req, ok := m.conv.Submit(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.input.Blur()
	m.status = ""
	m.refresh()
	m.logger.Debug().Uint64("generation", req.Generation).Msg("submitting message")
	return m, tea.Batch(m.backend.Start(req), m.spinner.Tick)
}

func (m *PanelModel) copyLastReply() {
	reply, ok := m.conv.LastReply()
	if !ok {
		m.status = "Nothing to copy yet"
		return
	}
	if err := m.copyFn(reply); err != nil {
		m.logger.Warn().Err(err).Msg("could not copy reply to clipboard")
		m.status = "Copy failed"
		return
	}
	m.status = "Reply copied"
}

// refresh re-renders the message list into the viewport and keeps it pinned
// to the newest entry.
func (m *PanelModel) refresh() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *PanelModel) renderMessages() string {
	width := m.viewport.Width
	bubbleWidth := max(width*85/100, 8)
	var lines []string

	if m.conv.ShowWelcome() {
		lines = append(lines, m.styles.WelcomeBubble.MaxWidth(bubbleWidth).Render(wrap(m.cfg.WelcomeMessage, bubbleWidth-2)))
	}
	for i, msg := range m.conv.Messages() {
		switch msg.Role {
		case conversation.RoleUser:
			b := m.styles.UserBubble.Render(wrap(msg.Content, bubbleWidth-2))
			lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, b))
		default:
			lines = append(lines, m.styles.BotBubble.Render(m.assistantContent(i, msg.Content, bubbleWidth-2)))
		}
	}
	if m.conv.Pending() {
		lines = append(lines, m.styles.Loading.Render(m.spinner.View()))
	}
	if errText, ok := m.conv.Err(); ok {
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, m.styles.Error.Render(wrap(errText, width-2))))
	}
	return strings.Join(lines, "\n\n")
}

func (m *PanelModel) assistantContent(idx int, content string, width int) string {
	if !m.cfg.RenderMarkdown || m.markdownFn == nil {
		return wrap(content, width)
	}
	if idx < len(m.rendered) && m.rendered[idx] != "" {
		return m.rendered[idx]
	}
	out, err := m.markdownFn(content, width)
	if err != nil {
		m.logger.Debug().Err(err).Msg("markdown render failed, showing raw reply")
		out = wrap(content, width)
	}
	for len(m.rendered) <= idx {
		m.rendered = append(m.rendered, "")
	}
	m.rendered[idx] = out
	return out
}

func (m PanelModel) View() string {
	header := m.styles.Header.Width(m.width - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Center,
			m.styles.Avatar.Render("…"),
			" ",
			lipgloss.JoinVertical(lipgloss.Left,
				m.styles.Title.Render(m.cfg.Title),
				m.styles.Subtitle.Render(subtitle),
			),
		),
	)

	send := m.styles.SendButton.Render("Send")
	if m.conv.Pending() || strings.TrimSpace(m.input.Value()) == "" {
		send = m.styles.SendDisabled.Render("Send")
	}
	inputLine := m.styles.Input.Width(m.width - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, m.input.View(), " ", send),
	)

	footer := m.styles.Help.Render(helpLine(m.keys.Submit, m.keys.Reset, m.keys.Copy, m.keys.Close))
	if m.status != "" {
		footer = m.styles.Status.Render(m.status)
	}
	return m.styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		header, m.viewport.View(), inputLine, footer))
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// wrap soft-wraps s at width without padding short text.
func wrap(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
