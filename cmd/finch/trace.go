package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/finch/pkg/trace"
)

type TraceCommand struct {
	Store string `long:"store" description:"Sequence file (default from config)"`
	Hz    int    `long:"hz" default:"2" description:"Commands per second"`
	Loop  bool   `long:"loop" description:"Start over after the last command"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Series plotted per step.
const (
	seriesLeft  = "left"
	seriesRight = "right"
	seriesLED   = "led"
)

var seriesColors = []struct {
	name  string
	color string
}{
	{seriesLeft, "196"}, // red
	{seriesRight, "46"}, // green
	{seriesLED, "226"},  // yellow
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type traceModel struct {
	player   *trace.Player
	chart    *streamlinechart.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	current  trace.State
	started  bool
	finished bool
	quitting bool
}

func (m *traceModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the player
type stateMsg trace.State
type logMsg string

func waitForState(p *trace.Player) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-p.States())
	}
}

func waitForLog(p *trace.Player) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-p.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *traceModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func initialTraceModel(p *trace.Player) traceModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-255, 255),
	)
	for _, s := range seriesColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.color))
		chart.SetDataSetStyles(s.name, runes.ThinLineStyle, style)
	}
	return traceModel{
		player: p,
		chart:  &chart,
	}
}

func (m traceModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.player),
		waitForLog(m.player),
	)
}

func (m traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		state := trace.State(msg)
		m.current = state
		m.started = true
		if state.Finished {
			m.finished = true
			return m, nil
		}
		m.chart.PushDataSet(seriesLeft, float64(state.Robot.Left))
		m.chart.PushDataSet(seriesRight, float64(state.Robot.Right))
		m.chart.PushDataSet(seriesLED, float64(state.Robot.LED[0]))
		m.chart.DrawAll()
		return m, waitForState(m.player)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.player)
	}

	return m, nil
}

func (m traceModel) View() string {
	if m.quitting {
		return "Trace stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Finch Trace"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.player.Hz()))
	switch {
	case m.finished:
		sb.WriteString(statusStyle.Render("  [finished]"))
	case !m.started:
		sb.WriteString(statusStyle.Render("  [waiting]"))
	default:
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%d/%d] %s", m.current.Index+1, m.player.Len(), m.current.Command)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4)

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, s := range seriesColors {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(s.color)).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+s.name)
	}
	return strings.Join(items, "  ")
}

func (c *TraceCommand) Execute(args []string) error {
	cfg := loadConfig()

	path := cfg.StorePath
	if c.Store != "" {
		path = c.Store
	}
	seq := loadSequence(path)

	player := trace.NewPlayer(trace.Config{
		Sequence: seq,
		Params:   cfg.Params,
		Hz:       c.Hz,
		Loop:     c.Loop,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := player.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Player error: %v", err)
		}
	}()

	p := tea.NewProgram(initialTraceModel(player), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
