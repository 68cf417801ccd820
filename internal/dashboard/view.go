package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"

	"github.com/artis101/rustrate/internal/metrics"
)

const (
	logLines    = 20
	chartHeight = 10
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func (m Model) View() string {
	snap := m.agg.Snapshot(logLines)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderRPSStats(snap.RPS),
		m.renderDelayStats(snap.Latency),
		m.renderServerStats(snap),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		m.renderChart(snap.Series),
		m.renderLogs(snap.Recent),
		helpStyle.Render(m.help.View(m.keys)),
	)
}

func (m Model) renderRPSStats(stats metrics.RPSStats) string {
	body := fmt.Sprintf("Min RPS: %d\nMax RPS: %d\nAvg RPS: %.2f\nMedian RPS: %d\n90th Percentile: %d",
		stats.Min, stats.Max, stats.Avg, stats.Median, stats.P90)
	return panel("RPS Stats", body)
}

func (m Model) renderDelayStats(stats metrics.LatencyStats) string {
	body := fmt.Sprintf("Min Delay: %.3f ms\nMax Delay: %.3f ms\nAvg Delay: %.3f ms",
		stats.Min, stats.Max, stats.Avg)
	return panel("Delay Stats", body)
}

func (m Model) renderServerStats(snap metrics.Snapshot) string {
	body := fmt.Sprintf("Uptime: %ds\nTotal Requests: %d\nURL: http://localhost:%d",
		int64(snap.Uptime.Seconds()), snap.Total, m.port)
	return panel("Server Stats", body)
}

// renderChart plots one point per completed second, most recent on the left.
// The current, still-accumulating second is not drawn.
func (m Model) renderChart(series [metrics.WindowSeconds]uint64) string {
	data := make([]float64, 0, metrics.WindowSeconds-1)
	for _, count := range series[1:] {
		data = append(data, float64(count))
	}

	chart := asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(m.chartWidth()),
		asciigraph.Caption("Seconds Ago"),
	)
	return panel("RPS (Last 60s)", chart)
}

func (m Model) renderLogs(recent []metrics.Request) string {
	if len(recent) == 0 {
		return panel("Logs", "waiting for requests...")
	}

	lines := make([]string, 0, len(recent))
	for _, req := range recent {
		timestamp := time.Unix(req.Timestamp, 0).UTC().Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("%s [%d] %s %s (%.3f ms)",
			timestamp, req.Status, req.Method, req.Path, req.DurationMS)
		if m.width > 4 {
			line = runewidth.Truncate(line, m.width-4, "…")
		}
		lines = append(lines, line)
	}
	return panel("Logs", strings.Join(lines, "\n"))
}

func (m Model) chartWidth() int {
	if m.width > 12 {
		return m.width - 12
	}
	return 70
}

func panel(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n" + body)
}
