package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/slatelog/slatelog/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings []store.Setting
	project  *store.Project

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	exportDir *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dir := ""
	return settingsModel{
		store:     s,
		exportDir: &dir,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{
			settings: settings,
			project:  currentProject(s.store),
		}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.project = msg.project
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.exportDir = s.getVal(store.SettingExportDir, "")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Export directory").
				Description("Exports land here. Leave empty for your home directory.").
				Value(s.exportDir),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveForm()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveForm() {
	s.store.SetSetting(store.SettingExportDir, strings.TrimSpace(*s.exportDir))
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(s.formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, s.renderProjectConfig()...)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderProjectConfig shows the active project's slate configuration,
// which is fixed at creation.
func (s settingsModel) renderProjectConfig() []string {
	if s.project == nil {
		return []string{mutedStyle.Render("No active project")}
	}

	cfg := s.project.Settings
	var rows []string
	rows = append(rows, titleStyle.Render("Project · "+s.project.Name))
	rows = append(rows, "")

	add := func(label, value string) {
		l := lipgloss.NewStyle().Width(24).Render(label)
		rows = append(rows, fmt.Sprintf("  %s %s", l, highlightStyle.Render(value)))
	}
	add("Cameras", fmt.Sprintf("%d", cfg.CameraCount))
	add("Tracked fields", fieldSummary(cfg))
	if len(cfg.CustomFields) > 0 {
		add("Custom fields", strings.Join(cfg.CustomFields, ", "))
	}
	add("Created", s.project.CreatedAt.Local().Format("2006-01-02"))

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Slate configuration is set when a project is created."))
	return rows
}

func settingLabel(k string) string {
	switch k {
	case store.SettingExportDir:
		return "Export directory"
	case store.SettingLastProject:
		return "Active project"
	}
	return k
}

func (s settingsModel) formatSettingValue(k, v string) string {
	switch k {
	case store.SettingExportDir:
		if v == "" {
			return "(home directory)"
		}
	case store.SettingLastProject:
		if v == "" || v == "0" {
			return "(none)"
		}
		if s.project != nil {
			return s.project.Name
		}
	}
	return v
}
