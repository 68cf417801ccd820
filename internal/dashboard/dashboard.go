package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/artis101/rustrate/internal/metrics"
)

// tickMsg drives the periodic statistics refresh.
type tickMsg time.Time

// serverStoppedMsg arrives when the HTTP server has gone away.
type serverStoppedMsg struct{}

type keyMap struct {
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

// Model renders live request statistics in the terminal. It is the sole
// owner of the aggregator: queued events are drained and folded in on each
// tick, so the window state needs no lock.
type Model struct {
	agg     *metrics.Aggregator
	events  *metrics.Channel
	port    int
	refresh time.Duration
	stopped <-chan struct{}

	keys   keyMap
	help   help.Model
	width  int
	height int
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitStopped())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.agg.AdvanceWindow(time.Time(msg).Unix())
		m.drain()
		return m, m.tick()

	case serverStoppedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) drain() {
	for {
		event, ok := m.events.TryReceive()
		if !ok {
			return
		}
		m.agg.Observe(event)
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitStopped() tea.Cmd {
	if m.stopped == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.stopped
		return serverStoppedMsg{}
	}
}

// Run displays the dashboard until the user quits or stopped closes. It
// owns the terminal for the duration of the call.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// New creates a dashboard model over the given aggregator and event channel.
// Closing stopped shuts the dashboard down from the outside.
func New(agg *metrics.Aggregator, events *metrics.Channel, port int, refresh time.Duration, stopped <-chan struct{}) Model {
	return Model{
		agg:     agg,
		events:  events,
		port:    port,
		refresh: refresh,
		stopped: stopped,
		keys:    keys,
		help:    help.New(),
	}
}
