package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chartflow/chartflow/pkg/engine"
)

// =============================================================================
// Stream Statistics Messages
// =============================================================================

// statEvent identifies a buffer or pipeline event observed by the hooks.
type statEvent int

const (
	eventAppend statEvent = iota
	eventReplace
	eventDrop
	eventThrottle
	eventRedraw
)

// statsMsg carries one hook event into the bubbletea update loop.
type statsMsg struct {
	event statEvent
	rows  int
	size  int
}

// sourceDoneMsg signals the row source has finished.
type sourceDoneMsg struct{}

// tickMsg drives the spinner and elapsed-time display.
type tickMsg time.Time

// statsCollector forwards buffer and engine hook events into a running
// bubbletea program. Hook callbacks run on buffer and scheduler goroutines;
// program.Send is safe to call from any of them.
type statsCollector struct {
	send func(tea.Msg)
}

func (c *statsCollector) OnAppend(added, size int) {
	c.send(statsMsg{event: eventAppend, rows: added, size: size})
}

func (c *statsCollector) OnReplace(size int) {
	c.send(statsMsg{event: eventReplace, size: size})
}

func (c *statsCollector) OnClear() {
	c.send(statsMsg{event: eventReplace, size: 0})
}

func (c *statsCollector) OnDrop(dropped int) {
	c.send(statsMsg{event: eventDrop, rows: dropped})
}

func (c *statsCollector) OnThrottle() {
	c.send(statsMsg{event: eventThrottle})
}

func (c *statsCollector) OnFilter(string, int, int) {}

func (c *statsCollector) OnCompile(int, int, time.Duration) {}

func (c *statsCollector) OnRender(time.Duration, error) {
	c.send(statsMsg{event: eventRedraw})
}

// =============================================================================
// StreamModel - Live Buffer Statistics
// =============================================================================

// streamModel is the bubbletea model showing live buffer statistics while
// rows flow into a chart.
type streamModel struct {
	chart      *engine.Chart
	buffered   int
	appended   int
	dropped    int
	coalesced  int
	redraws    int
	sourceDone bool
	start      time.Time
	frame      int
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func newStreamModel(chart *engine.Chart) streamModel {
	return streamModel{chart: chart, start: time.Now()}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m streamModel) Init() tea.Cmd {
	return tick()
}

func (m streamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case statsMsg:
		switch msg.event {
		case eventAppend:
			m.appended += msg.rows
			m.buffered = msg.size
		case eventReplace:
			m.buffered = msg.size
		case eventDrop:
			m.dropped += msg.rows
		case eventThrottle:
			m.coalesced++
		case eventRedraw:
			m.redraws++
		}
	case sourceDoneMsg:
		m.sourceDone = true
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m streamModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Streaming"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	writeStat(&b, "Buffered", fmt.Sprintf("%d / %d", m.buffered, m.chart.Spec().Streaming.Limit()))
	writeStat(&b, "Appended", fmt.Sprintf("%d", m.appended))
	writeStat(&b, "Dropped", fmt.Sprintf("%d", m.dropped))
	writeStat(&b, "Redraws", fmt.Sprintf("%d", m.redraws))
	writeStat(&b, "Coalesced", fmt.Sprintf("%d", m.coalesced))
	writeStat(&b, "Elapsed", time.Since(m.start).Round(time.Second).String())

	b.WriteString("\n")
	if m.sourceDone {
		b.WriteString(StyleSuccess.Render(iconSuccess) + StyleDim.Render(" source finished"))
	} else {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleIconSpinner.Render(frame) + StyleDim.Render(" receiving rows"))
	}
	b.WriteString("\n")

	return b.String()
}

func writeStat(b *strings.Builder, label, value string) {
	b.WriteString(styleStatLabel.Render(label))
	b.WriteString(" ")
	b.WriteString(StyleNumber.Render(value))
	b.WriteString("\n")
}
