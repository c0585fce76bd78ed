package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wufe/yeelight"
)

const maxExchangeLogLines = 1000

// ExchangeLogMsg carries one rendered exchange to the log pane.
type ExchangeLogMsg string

// ExchangeLogModel is a scrolling pane listing the commands sent to the
// bulbs and what they answered.
type ExchangeLogModel struct {
	viewport viewport.Model
	ready    bool
	lines    []string
	mu       sync.Mutex
	incoming <-chan string

	Title       string
	BorderColor string
	width       int
	height      int
}

func NewExchangeLogModel(incoming <-chan string) *ExchangeLogModel {
	return &ExchangeLogModel{
		Title:       "Exchanges",
		BorderColor: "205",
		lines:       []string{},
		incoming:    incoming,
	}
}

func formatExchange(e yeelight.Exchange) string {
	var outcome string
	switch {
	case e.Err != nil:
		outcome = redTextStyle.Render("error: " + e.Err.Error())
	case !e.Received:
		outcome = warnTextStyle.Render("no reply")
	default:
		outcome = greenTextStyle.Render(e.Reply)
	}
	return fmt.Sprintf("%s %s %s -> %s (%s)",
		time.Now().Format(time.TimeOnly),
		blueTextStyle.Render(e.Device.ID),
		e.Command.Render(),
		outcome,
		e.Elapsed.Round(time.Millisecond),
	)
}

func (m *ExchangeLogModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		return ExchangeLogMsg(<-m.incoming)
	}
}

func (m *ExchangeLogModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	if !m.ready {
		m.viewport = viewport.New(width-4, height-6)
		m.ready = true
	} else {
		m.viewport.Width = width - 4
		m.viewport.Height = height - 6 // Account for border and title
	}
}

func (m *ExchangeLogModel) Init() tea.Cmd {
	return m.waitForActivity()
}

func (m *ExchangeLogModel) Update(msg tea.Msg) (*ExchangeLogModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	if msg, ok := msg.(ExchangeLogMsg); ok {
		m.mu.Lock()
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxExchangeLogLines {
			m.lines = m.lines[len(m.lines)-maxExchangeLogLines:]
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		m.mu.Unlock()

		cmds = append(cmds, m.waitForActivity())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ExchangeLogModel) View() string {
	if !m.ready {
		return ""
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.BorderColor)).
		Padding(0, 1)

	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.BorderColor)).
		Render(m.Title)

	return style.Render(fmt.Sprintf("%s\n%s", title, m.viewport.View()))
}
