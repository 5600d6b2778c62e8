package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/slatelog/slatelog/internal/store"
)

type reportMode int

const (
	reportScenes reportMode = iota
	reportDays
)

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	mode    reportMode
	project *store.Project
	scenes  []store.SceneSummary
	days    []store.DaySummary
	offset  int // chart pages back from the latest (0 = latest)

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		project := currentProject(r.store)
		var scenes []store.SceneSummary
		var days []store.DaySummary
		if project != nil {
			scenes, _ = r.store.TakesPerScene(project.ID)
			days, _ = r.store.TakesPerDay(project.ID)
		}
		return reportsDataMsg{project: project, scenes: scenes, days: days}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.project = msg.project
		r.scenes = msg.scenes
		r.days = msg.days
		if r.offset > 0 && r.offset*r.pageSize() >= r.total() {
			r.offset = 0
		}
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if (r.offset+1)*r.pageSize() < r.total() {
				r.offset++
				r.buildChart()
			}
			return r, nil
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
				r.buildChart()
			}
			return r, nil
		case key.Matches(msg, keys.Tab):
			if r.mode == reportScenes {
				r.mode = reportDays
			} else {
				r.mode = reportScenes
			}
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r reportsModel) total() int {
	if r.mode == reportDays {
		return len(r.days)
	}
	return len(r.scenes)
}

// pageSize is how many bars fit one chart page.
func (r reportsModel) pageSize() int {
	size := (r.width - 8) / 6
	if size < 1 {
		return 1
	}
	return size
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	goodStyle := lipgloss.NewStyle().Foreground(colorSuccess)
	takeStyle := lipgloss.NewStyle().Foreground(colorHighlight)

	var bars []barchart.BarData
	switch r.mode {
	case reportDays:
		start, end := visibleWindow(len(r.days), r.pageSize(), r.offset)
		for _, d := range r.days[start:end] {
			bars = append(bars, takeBar(dayLabel(d.Date), d.TakeCount, d.GoodCount, goodStyle, takeStyle))
		}
	default:
		start, end := visibleWindow(len(r.scenes), r.pageSize(), r.offset)
		for _, s := range r.scenes[start:end] {
			bars = append(bars, takeBar(sceneLabel(s.Scene), s.TakeCount, s.GoodCount, goodStyle, takeStyle))
		}
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

// takeBar stacks the good takes under the rest so both read off one bar.
func takeBar(label string, takes, good int, goodStyle, takeStyle lipgloss.Style) barchart.BarData {
	rest := takes - good
	if rest < 0 {
		rest = 0
	}
	return barchart.BarData{
		Label: label,
		Values: []barchart.BarValue{
			{Name: "good", Value: float64(good), Style: goodStyle},
			{Name: "takes", Value: float64(rest), Style: takeStyle},
		},
	}
}

// visibleWindow picks the chart page: the last size items, offset pages
// back.
func visibleWindow(total, size, offset int) (int, int) {
	if size < 1 {
		size = 1
	}
	end := total - offset*size
	if end > total {
		end = total
	}
	if end < 0 {
		end = 0
	}
	start := max(0, end-size)
	return start, end
}

func sceneLabel(s string) string {
	if s == "" {
		return "–"
	}
	return truncate(s, 6)
}

// dayLabel shortens 2026-08-26 to 08-26.
func dayLabel(d string) string {
	if len(d) == 10 {
		return d[5:]
	}
	return d
}

func (r reportsModel) view() string {
	w := r.width - 4

	scenesTab := inactiveTabStyle.Render("By Scene")
	daysTab := inactiveTabStyle.Render("By Day")
	if r.mode == reportScenes {
		scenesTab = activeTabStyle.Render("By Scene")
	} else {
		daysTab = activeTabStyle.Render("By Day")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, scenesTab, daysTab)

	projectLabel := mutedStyle.Render("No project selected")
	if r.project != nil {
		projectLabel = mutedStyle.Render(r.project.Name)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", projectLabel,
	)

	if r.project == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("Pick a project on the Projects tab to see its reports."),
		))
	}

	chartView := r.chart.View()
	legend := "  " + successStyle.Render("■ good") + "  " + highlightStyle.Render("■ other takes")
	tableView := r.renderSummaryTable()
	nav := mutedStyle.Render("  ←/→: page  tab: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable() string {
	if r.total() == 0 {
		return mutedStyle.Render("  No takes logged yet")
	}

	var rows []string
	switch r.mode {
	case reportDays:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %8s", "Day", "Takes", "Good")))
		start, end := visibleWindow(len(r.days), r.pageSize(), r.offset)
		for _, d := range r.days[start:end] {
			rows = append(rows, fmt.Sprintf("  %-12s %8d %8d", d.Date, d.TakeCount, d.GoodCount))
		}
	default:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %8s", "Scene", "Takes", "Good")))
		start, end := visibleWindow(len(r.scenes), r.pageSize(), r.offset)
		for _, s := range r.scenes[start:end] {
			rows = append(rows, fmt.Sprintf("  %-12s %8d %8d", sceneName(s.Scene), s.TakeCount, s.GoodCount))
		}
	}
	rows = append(rows, mutedStyle.Render("  "+r.totalsLine()))
	return strings.Join(rows, "\n")
}

func sceneName(s string) string {
	if s == "" {
		return "(unslated)"
	}
	return truncate(s, 12)
}

func (r reportsModel) totalsLine() string {
	takes, good := 0, 0
	for _, s := range r.scenes {
		takes += s.TakeCount
		good += s.GoodCount
	}
	return fmt.Sprintf("%d takes · %d good · %d scenes", takes, good, len(r.scenes))
}
