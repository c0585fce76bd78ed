package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/atomic"

	"github.com/wufe/yeelight"
)

var (
	redTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	greenTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	blueTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

type TUI struct {
	done         atomic.Bool
	registry     *status
	logUpdated   chan string
	modelUpdated chan struct{}
	exchanges    chan string
}

func NewTUI(registry *status) *TUI {
	return &TUI{
		registry:     registry,
		logUpdated:   make(chan string, 100),   // Buffered channel to avoid blocking
		modelUpdated: make(chan struct{}, 100), // Buffered channel to avoid blocking
		exchanges:    make(chan string, 100),
	}
}

// Write implements io.Writer interface to be able to receive logs from any logger (e.g. zerolog)
func (t *TUI) Write(p []byte) (n int, err error) {
	if t.done.Load() {
		return os.Stderr.Write(p)
	}
	select {
	case t.logUpdated <- string(p):
		return len(p), nil
	default:
		return os.Stderr.Write(p)
	}
}

// UpdateTUI asks the program to redraw the status table. Redraw requests
// are coalesced when the program is busy.
func (t *TUI) UpdateTUI() {
	select {
	case t.modelUpdated <- struct{}{}:
	default:
	}
}

// ObserveExchange appends an exchange to the log pane.
func (t *TUI) ObserveExchange(e yeelight.Exchange) {
	if t.done.Load() {
		return
	}
	select {
	case t.exchanges <- formatExchange(e):
	default:
	}
}

// RunNewProgram blocks until the user quits or ctx is done.
func (t *TUI) RunNewProgram(ctx context.Context) error {
	_, err := tea.NewProgram(
		newModel(t),
		tea.WithContext(ctx),
	).Run()
	t.done.Store(true)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func newModel(tui *TUI) model {
	return model{
		tui:         tui,
		exchangeLog: NewExchangeLogModel(tui.exchanges),
	}
}

type model struct {
	tui         *TUI
	exchangeLog *ExchangeLogModel
	width       int
	height      int
}

func (m model) Init() tea.Cmd {
	// dispatching both the waitForUpdate and waitForLog commands
	// to be able to listen to both the status updates and the logs at the same time
	return tea.Batch(m.waitForUpdate, m.waitForLog, m.exchangeLog.Init())
}

func (m model) waitForUpdate() tea.Msg {
	<-m.tui.modelUpdated
	return tuiUpdateModel{}
}

func (m model) waitForLog() tea.Msg {
	log := <-m.tui.logUpdated
	return tuiUpdateLog{
		log: strings.TrimSpace(log),
	}
}

// tuiUpdateModel is the tea.Msg that gets dispatched when the status changes,
// and we need to reflect those changes in the TUI.
type tuiUpdateModel struct{}

// tuiUpdateLog is the tea.Msg that gets dispatched when a new log is written,
// and we need to reflect that in the TUI.
type tuiUpdateLog struct {
	log string
}

// quit is the tea.Msg that gets dispatched when we want to exit the program.
type quit struct{}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var otherCmd tea.Cmd

	switch msg := msg.(type) {
	case quit:
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, func() tea.Msg {
				return quit{}
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.exchangeLog.SetSize(msg.Width, msg.Height/2)
	case tuiUpdateModel:
		// the status table is rendered from the registry in View
		otherCmd = m.waitForUpdate
	case tuiUpdateLog:
		// logs are printed above the rendered TUI view
		otherCmd = tea.Sequence(tea.Printf("%s", msg.log), m.waitForLog)
	}

	var exchangeLogCmd tea.Cmd
	m.exchangeLog, exchangeLogCmd = m.exchangeLog.Update(msg)
	return m, tea.Batch(otherCmd, exchangeLogCmd)
}

func (m model) View() string {
	mainContent := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(1).
		Width(max(m.width-4, 0)).
		Render(renderStatusTable(m.tui.registry.GetAll()))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		mainContent,
		m.exchangeLog.View(),
	)
}

func renderStatusTable(statuses map[string]deviceStatus) string {
	if len(statuses) == 0 {
		return warnTextStyle.Render("No bulbs")
	}

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %-22s %-5s %-6s %-6s %-8s %s", "BULB", "ADDRESS", "ON", "BRI", "CT", "RGB", "LAST")))
	for _, name := range names {
		ds := statuses[name]
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-20s %-22s %-5s %-6s %-6s %-8s %s",
			name,
			ds.Address,
			renderOn(ds.On),
			renderInt(ds.Brightness),
			renderInt(ds.Temperature),
			renderColor(ds.Color),
			renderLast(ds),
		))
	}
	return b.String()
}

func renderOn(on int) string {
	switch on {
	case 1:
		return "on"
	case 0:
		return "off"
	default:
		return "?"
	}
}

func renderInt(v int) string {
	if v < 0 {
		return "?"
	}
	return fmt.Sprint(v)
}

func renderColor(c deviceColor) string {
	if c.Red < 0 {
		return "?"
	}
	return fmt.Sprintf("#%02X%02X%02X", c.Red, c.Green, c.Blue)
}

func renderLast(ds deviceStatus) string {
	if ds.LastError != "" {
		return redTextStyle.Render(ds.LastError)
	}
	if ds.LastReply != "" {
		return greenTextStyle.Render(ds.LastReply)
	}
	return ""
}
