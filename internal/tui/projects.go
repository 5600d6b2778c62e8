package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

type projectsModel struct {
	store  *store.Store
	width  int
	height int

	projects []store.Project
	counts   map[int64]int
	current  int64
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string // "project", "rename"

	// Form field pointers (survive value copies)
	formName    *string
	formCameras *string
	formFields  *[]string
	formCustom  *string

	editingID int64 // project ID being renamed
}

func newProjectsModel(s *store.Store) projectsModel {
	name, cameras, custom := "", "1", ""
	fields := []string{}
	return projectsModel{
		store:       s,
		formName:    &name,
		formCameras: &cameras,
		formFields:  &fields,
		formCustom:  &custom,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p projectsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		projects, _ := p.store.ListProjects(false)
		counts := make(map[int64]int, len(projects))
		for i := range projects {
			n, _ := p.store.CountTakes(projects[i].ID)
			counts[projects[i].ID] = n
		}
		return projectsDataMsg{
			projects: projects,
			counts:   counts,
			current:  p.store.LastProjectID(),
		}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		p.counts = msg.counts
		p.current = msg.current
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			proj := p.projects[p.cursor]
			p.store.SetLastProjectID(proj.ID)
			return p, func() tea.Msg {
				return projectChosenMsg{project: &proj}
			}
		}
	case key.Matches(msg, keys.New):
		return p.showNewProjectForm()
	case key.Matches(msg, keys.Rename):
		if len(p.projects) > 0 {
			return p.showRenameForm()
		}
	case key.Matches(msg, keys.Delete):
		if len(p.projects) > 0 {
			proj := p.projects[p.cursor]
			p.store.ArchiveProject(proj.ID)
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p projectsModel) showNewProjectForm() (projectsModel, tea.Cmd) {
	*p.formName = ""
	*p.formCameras = "1"
	*p.formCustom = ""
	sel := make([]string, len(slate.OptionalFields))
	for i, f := range slate.OptionalFields {
		sel[i] = string(f)
	}
	*p.formFields = sel
	p.formType = "project"

	camOptions := make([]huh.Option[string], slate.MaxCameraCount)
	for i := 1; i <= slate.MaxCameraCount; i++ {
		camOptions[i-1] = huh.NewOption(strconv.Itoa(i), strconv.Itoa(i))
	}
	fieldOptions := make([]huh.Option[string], len(slate.OptionalFields))
	for i, f := range slate.OptionalFields {
		fieldOptions[i] = huh.NewOption(slate.FieldLabel(f, 0), string(f))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
			huh.NewSelect[string]().Title("Cameras").Options(camOptions...).Value(p.formCameras),
			huh.NewMultiSelect[string]().Title("Tracked Fields").Options(fieldOptions...).Value(p.formFields),
			huh.NewInput().Title("Custom Fields (comma-separated)").Value(p.formCustom),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showRenameForm() (projectsModel, tea.Cmd) {
	proj := p.projects[p.cursor]
	*p.formName = proj.Name
	p.formType = "rename"
	p.editingID = proj.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p.submitForm()
	}

	return p, cmd
}

func (p projectsModel) submitForm() (projectsModel, tea.Cmd) {
	switch p.formType {
	case "project":
		if *p.formName == "" {
			return p, p.refresh()
		}
		settings := settingsFromForm(*p.formCameras, *p.formFields, *p.formCustom)
		proj, err := p.store.CreateProject(strings.TrimSpace(*p.formName), settings)
		if err != nil {
			return p, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		p.store.SetLastProjectID(proj.ID)
		return p, tea.Batch(p.refresh(), func() tea.Msg {
			return projectCreatedMsg{project: proj}
		})
	case "rename":
		if *p.formName != "" {
			p.store.RenameProject(p.editingID, strings.TrimSpace(*p.formName))
		}
		return p, p.refresh()
	}
	return p, p.refresh()
}

// settingsFromForm assembles a slate configuration from the raw form
// values.
func settingsFromForm(cameras string, fields []string, custom string) slate.Settings {
	n, _ := strconv.Atoi(cameras)
	s := slate.Settings{
		CameraCount:   n,
		EnabledFields: slate.FieldSet{},
		CustomFields:  splitCustomNames(custom),
	}
	for _, f := range fields {
		s.EnabledFields[slate.FieldID(f)] = true
	}
	return s
}

func splitCustomNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.formType == "rename" {
			title = titleStyle.Render("Rename Project")
		}
		formView := p.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(p.width - 4).Render(content)
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header
	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %8s %6s  %s", "", "Name", "Cameras", "Takes", "Fields"))
	rows = append(rows, header)

	for i, proj := range p.projects {
		marker := " "
		if proj.ID == p.current {
			marker = "●"
		}
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%s  %-24s %8d %6d  %s",
			cursor, marker, truncate(proj.Name, 24), proj.Settings.CameraCount,
			p.counts[proj.ID], fieldSummary(proj.Settings)))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  r: rename  d: archive  enter: make current"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// fieldSummary renders the optional fields a project tracks.
func fieldSummary(s slate.Settings) string {
	var on []string
	for _, f := range slate.OptionalFields {
		if s.EnabledFields.Has(f) {
			on = append(on, slate.FieldLabel(f, 0))
		}
	}
	for _, name := range s.CustomFields {
		on = append(on, name)
	}
	if len(on) == 0 {
		return "–"
	}
	return truncate(strings.Join(on, ", "), 36)
}
