package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

type takesModel struct {
	store  *store.Store
	width  int
	height int

	project     *store.Project
	takes       []*slate.Take
	hasProjects bool
	next        *slate.Take // auto-fill preview for the next take
	cursor      int

	editing bool
	editor  editorModel
}

func newTakesModel(s *store.Store) takesModel {
	return takesModel{store: s}
}

func (m takesModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *takesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.editor.setSize(w, h)
}

func (m takesModel) loadData() tea.Cmd {
	return func() tea.Msg {
		projects, _ := m.store.ListProjects(false)
		project := currentProject(m.store)

		var takes []*slate.Take
		if project != nil {
			takes, _ = m.store.ListTakes(project.ID)
		}

		return takesDataMsg{
			project:     project,
			takes:       takes,
			hasProjects: len(projects) > 0,
		}
	}
}

func (m takesModel) update(msg tea.Msg) (takesModel, tea.Cmd) {
	if m.editing {
		return m.updateEditor(msg)
	}

	switch msg := msg.(type) {
	case takesDataMsg:
		m.project = msg.project
		m.takes = msg.takes
		m.hasProjects = msg.hasProjects
		m.next = nil
		if m.project != nil {
			h := slate.NewHistory(m.takes, 0)
			m.next = slate.ComputeAutoFill(m.project.ID, m.project.Settings, h)
		}
		if m.cursor >= len(m.takes) {
			m.cursor = max(0, len(m.takes)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m takesModel) updateList(msg tea.KeyMsg) (takesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.takes)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		if m.project == nil {
			return m, func() tea.Msg {
				return statusMsg{text: "No project selected. Press 2 to choose or create one.", isError: true}
			}
		}
		return m.openEditor(nil)
	case key.Matches(msg, keys.Enter):
		if m.project != nil && len(m.takes) > 0 {
			return m.openEditor(m.takes[m.cursor])
		}
	case key.Matches(msg, keys.Delete):
		if m.project != nil && len(m.takes) > 0 {
			t := m.takes[m.cursor]
			if err := m.store.DeleteTake(t.ID); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
			return m, tea.Batch(m.loadData(), func() tea.Msg {
				return statusMsg{text: "Deleted " + t.Location()}
			})
		}
	case key.Matches(msg, keys.Good):
		return m.toggleGood()
	}
	return m, nil
}

func (m takesModel) toggleGood() (takesModel, tea.Cmd) {
	if m.project == nil || len(m.takes) == 0 {
		return m, nil
	}
	if !m.project.Settings.FieldEnabled(slate.FieldGoodTake) {
		return m, func() tea.Msg {
			return statusMsg{text: "Good-take marking is not tracked on this project", isError: true}
		}
	}
	t := m.takes[m.cursor].Clone()
	t.GoodTake = !t.GoodTake
	if err := m.store.UpdateTake(t); err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return m, m.loadData()
}

func (m takesModel) openEditor(existing *slate.Take) (takesModel, tea.Cmd) {
	ed, err := newEditorModel(m.store, m.project, existing)
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	ed.setSize(m.width, m.height)
	m.editor = ed
	m.editing = true
	return m, m.editor.Init()
}

func (m takesModel) updateEditor(msg tea.Msg) (takesModel, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.update(msg)
	if !m.editor.done {
		return m, cmd
	}
	m.editing = false
	if m.editor.saved == nil {
		return m, nil
	}
	saved, inserted := m.editor.saved, m.editor.inserted
	return m, tea.Batch(m.loadData(), func() tea.Msg {
		return takeSavedMsg{take: saved, inserted: inserted}
	})
}

func (m takesModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	if m.editing {
		return m.editor.view()
	}

	contentWidth := m.width - 4
	slatePanel := m.renderSlatePanel(contentWidth)
	logPanel := m.renderLogPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, slatePanel, logPanel)
}

func (m takesModel) renderSlatePanel(w int) string {
	if m.project == nil {
		hint := "No projects yet. Press 2 to create one."
		if m.hasProjects {
			hint = "No project selected. Press 2 to choose one."
		}
		content := lipgloss.JoinVertical(lipgloss.Center,
			slateStyle.Width(w-6).Render("slatelog"),
			mutedStyle.Render(hint),
		)
		return panelStyle.Width(w).Render(content)
	}

	name := highlightStyle.Render(m.project.Name)
	slateLine := slateStyle.Width(w - 6).Render(nextSlateLine(m.next))
	files := m.nextFilesLine()

	lines := []string{name, slateLine}
	if files != "" {
		lines = append(lines, accentStyle.Render(files))
	}
	lines = append(lines, mutedStyle.Render(m.countLine()))

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return activePanelStyle.Width(w).Render(content)
}

// nextSlateLine renders the auto-filled position the next take would get.
func nextSlateLine(t *slate.Take) string {
	if t == nil {
		return ""
	}
	var parts []string
	if t.Scene != "" {
		parts = append(parts, "Scene "+t.Scene)
	}
	if t.Shot != "" {
		parts = append(parts, "Shot "+t.Shot)
	}
	parts = append(parts, "Take "+strconv.Itoa(t.TakeNumber))
	return strings.Join(parts, " · ")
}

func (m takesModel) nextFilesLine() string {
	if m.next == nil {
		return ""
	}
	s := m.project.Settings
	var parts []string
	if s.SoundEnabled() && !m.next.Sound.IsBlank() {
		parts = append(parts, "Sound "+m.next.Sound.String())
	}
	for i := 1; i <= s.CameraCount; i++ {
		v := m.next.Camera(i)
		if v.IsBlank() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", slate.FieldLabel(slate.CameraField(i), s.CameraCount), v))
	}
	return strings.Join(parts, " · ")
}

func (m takesModel) countLine() string {
	if len(m.takes) == 0 {
		return "No takes logged"
	}
	line := fmt.Sprintf("%d takes logged", len(m.takes))
	if m.project.Settings.FieldEnabled(slate.FieldGoodTake) {
		good := 0
		for _, t := range m.takes {
			if t.GoodTake {
				good++
			}
		}
		line += fmt.Sprintf(" · %d good", good)
	}
	return line
}

func (m takesModel) renderLogPanel(w int) string {
	title := titleStyle.Render("Take Log")

	if m.project == nil || len(m.takes) == 0 {
		hint := "No takes yet. Press n to log the first one."
		if m.project == nil {
			hint = "Pick a project to see its log."
		}
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render(hint),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := fmt.Sprintf("  %-8s %-6s %4s  %-11s %-16s %-9s %s  %s",
		"Scene", "Shot", "Take", "Sound", "Cameras", "Class", "✓", "Description")
	rows = append(rows, mutedStyle.Render(header))

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+m.takeRow(m.takes[i])))
	}
	if end-start < len(m.takes) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  showing %d-%d of %d", start+1, end, len(m.takes))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  g: good  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// visibleRange windows the log around the cursor so long days still fit
// the panel.
func (m takesModel) visibleRange() (int, int) {
	maxRows := m.height - 18
	if maxRows < 5 {
		maxRows = 5
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	end := min(start+maxRows, len(m.takes))
	return start, end
}

func (m takesModel) takeRow(t *slate.Take) string {
	s := m.project.Settings
	cams := make([]string, 0, s.CameraCount)
	for i := 1; i <= s.CameraCount; i++ {
		v := t.Camera(i)
		if v.IsBlank() {
			cams = append(cams, "–")
		} else {
			cams = append(cams, v.String())
		}
	}
	good := " "
	if t.GoodTake {
		good = "✓"
	}
	return fmt.Sprintf("%-8s %-6s %4s  %-11s %-16s %-9s %s  %s",
		truncate(t.Scene, 8),
		truncate(t.Shot, 6),
		takeNumberString(t.TakeNumber),
		t.Sound.String(),
		truncate(strings.Join(cams, " "), 16),
		truncate(classLabel(t.Classification), 9),
		good,
		truncate(t.Description, 28),
	)
}
