package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

// editorPhase tracks which form of the take workflow is on screen.
type editorPhase int

const (
	phaseClassify editorPhase = iota
	phaseWaste
	phaseInsert
	phaseFields
	phaseResolve
)

var classifications = []slate.Classification{
	slate.ClassNone,
	slate.ClassWaste,
	slate.ClassInsert,
	slate.ClassAmbience,
	slate.ClassSFX,
}

// editorModel walks one take through classification, field entry,
// duplicate detection and save. done is set when the workflow ends;
// saved is nil when it was cancelled.
type editorModel struct {
	project *store.Project
	ed      *slate.Editor

	phase editorPhase
	form  *huh.Form

	width  int
	height int

	done     bool
	saved    *slate.Take
	inserted bool

	problem  string
	conflict *slate.Conflict

	// Form field pointers (survive value copies)
	class      *string
	mos        *bool
	noSlate    *bool
	wasteCam   *bool
	wasteSound *bool
	soundSpeed *bool
	confirm    *bool

	fields        map[slate.FieldID]*string
	initial       map[slate.FieldID]string
	custom        map[string]*string
	customInitial map[string]string
	recOn         *[]string
	good          *bool
}

func newEditorModel(s *store.Store, project *store.Project, existing *slate.Take) (editorModel, error) {
	ed, err := slate.NewEditor(s, project.ID, project.Settings, existing)
	if err != nil {
		return editorModel{}, err
	}
	t := ed.Take()
	class := string(t.Classification)
	mos, noSlate := t.Details.MOS, t.Details.NoSlate
	wasteCam, wasteSound := t.Waste.Camera, t.Waste.Sound
	soundSpeed := true
	if t.InsertSoundSpeed != nil {
		soundSpeed = *t.InsertSoundSpeed
	}
	confirm := true

	m := editorModel{
		project:    project,
		ed:         ed,
		class:      &class,
		mos:        &mos,
		noSlate:    &noSlate,
		wasteCam:   &wasteCam,
		wasteSound: &wasteSound,
		soundSpeed: &soundSpeed,
		confirm:    &confirm,
	}
	m.buildClassifyForm()
	return m, nil
}

func (m editorModel) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

func (m *editorModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m editorModel) update(msg tea.Msg) (editorModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		if m.phase == phaseWaste || m.phase == phaseInsert {
			return m.cancelDialog()
		}
		m.done = true
		return m, nil
	}
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		switch m.phase {
		case phaseClassify:
			return m.completeClassify()
		case phaseWaste:
			return m.completeWaste()
		case phaseInsert:
			return m.completeInsert()
		case phaseFields:
			return m.completeFields()
		case phaseResolve:
			return m.completeResolve()
		}
	}

	return m, cmd
}

// --- Classification ---

func (m *editorModel) buildClassifyForm() {
	m.phase = phaseClassify
	opts := make([]huh.Option[string], len(classifications))
	for i, c := range classifications {
		opts[i] = huh.NewOption(c.Label(), string(c))
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Classification").Options(opts...).Value(m.class),
			huh.NewConfirm().Title("MOS (no sound rolled)").Value(m.mos),
			huh.NewConfirm().Title("No slate filmed").Value(m.noSlate),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m editorModel) completeClassify() (editorModel, tea.Cmd) {
	c := slate.Classification(*m.class)
	m.ed.SetClassification(c)
	m.ed.SetShotDetails(slate.ShotDetails{MOS: *m.mos, NoSlate: *m.noSlate})
	switch c {
	case slate.ClassWaste:
		return m.enterWaste()
	case slate.ClassInsert:
		return m.enterInsert()
	}
	return m.enterFields()
}

func (m editorModel) enterWaste() (editorModel, tea.Cmd) {
	m.phase = phaseWaste
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Camera kept rolling?").Value(m.wasteCam),
			huh.NewConfirm().Title("Sound kept rolling?").Value(m.wasteSound),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

// cancelDialog backs out of the waste/insert dialog: the take reverts
// to a normal classification and the classify form comes back.
func (m editorModel) cancelDialog() (editorModel, tea.Cmd) {
	*m.class = string(slate.ClassNone)
	m.ed.SetClassification(slate.ClassNone)
	m.buildClassifyForm()
	return m, m.form.Init()
}

func (m editorModel) completeWaste() (editorModel, tea.Cmd) {
	m.ed.SetWasteOptions(slate.WasteOptions{Camera: *m.wasteCam, Sound: *m.wasteSound})
	return m.enterFields()
}

func (m editorModel) enterInsert() (editorModel, tea.Cmd) {
	m.phase = phaseInsert
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Did sound roll for this insert?").Value(m.soundSpeed),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func (m editorModel) completeInsert() (editorModel, tea.Cmd) {
	m.ed.SetInsertSoundSpeed(*m.soundSpeed)
	return m.enterFields()
}

// --- Field entry ---

func (m editorModel) enterFields() (editorModel, tea.Cmd) {
	m.buildFieldForm()
	return m, m.form.Init()
}

// buildFieldForm lays out one input per enabled, currently not disabled
// field, pre-filled from the working take. initial keeps the shown
// values so only user edits are applied back, which preserves the
// engine's cascades for untouched fields.
func (m *editorModel) buildFieldForm() {
	m.phase = phaseFields
	s := m.ed.Settings()
	t := m.ed.Take()
	disabled := m.ed.Disabled()

	m.fields = map[slate.FieldID]*string{}
	m.initial = map[slate.FieldID]string{}
	m.custom = map[string]*string{}
	m.customInitial = map[string]string{}
	m.recOn = nil
	m.good = nil

	var inputs []huh.Field
	addText := func(f slate.FieldID, val string) {
		if !s.FieldEnabled(f) || disabled.Has(f) {
			return
		}
		v := val
		m.fields[f] = &v
		m.initial[f] = val
		inputs = append(inputs, huh.NewInput().Title(slate.FieldLabel(f, s.CameraCount)).Value(&v))
	}
	addFile := func(f slate.FieldID, val string) {
		if !s.FieldEnabled(f) || disabled.Has(f) {
			return
		}
		v := val
		m.fields[f] = &v
		m.initial[f] = val
		inputs = append(inputs, huh.NewInput().
			Title(slate.FieldLabel(f, s.CameraCount)).
			Placeholder("0001 or 0001-0004").
			Validate(validFileValue).
			Value(&v))
	}

	addText(slate.FieldEpisode, t.Episode)
	addText(slate.FieldScene, t.Scene)
	addText(slate.FieldShot, t.Shot)
	if !disabled.Has(slate.FieldTake) {
		v := takeNumberString(t.TakeNumber)
		m.fields[slate.FieldTake] = &v
		m.initial[slate.FieldTake] = v
		inputs = append(inputs, huh.NewInput().Title("Take").Validate(validTakeNumber).Value(&v))
	}
	addFile(slate.FieldSound, t.Sound.String())
	for i := 1; i <= s.CameraCount; i++ {
		addFile(slate.CameraField(i), t.Camera(i).String())
	}

	var recOpts []huh.Option[string]
	var recSel []string
	for i := 1; i <= s.CameraCount; i++ {
		if disabled.Has(slate.CameraField(i)) {
			continue
		}
		recOpts = append(recOpts, huh.NewOption(slate.FieldLabel(slate.CameraField(i), s.CameraCount), strconv.Itoa(i)))
		if t.CameraRec(i) {
			recSel = append(recSel, strconv.Itoa(i))
		}
	}
	if len(recOpts) > 0 {
		m.recOn = &recSel
		inputs = append(inputs, huh.NewMultiSelect[string]().Title("Rolling (REC)").Options(recOpts...).Value(&recSel))
	}

	addText(slate.FieldDescription, t.Description)
	addText(slate.FieldNotes, t.Notes)
	for _, name := range s.CustomFields {
		v := t.Custom[name]
		m.custom[name] = &v
		m.customInitial[name] = v
		inputs = append(inputs, huh.NewInput().Title(name).Value(&v))
	}
	if s.FieldEnabled(slate.FieldGoodTake) {
		g := t.GoodTake
		m.good = &g
		inputs = append(inputs, huh.NewConfirm().Title("Good take").Value(&g))
	}

	m.form = huh.NewForm(huh.NewGroup(inputs...)).WithShowHelp(true).WithShowErrors(true)
}

func (m editorModel) completeFields() (editorModel, tea.Cmd) {
	m.problem = ""
	if err := m.applyEdits(); err != nil {
		m.problem = err.Error()
		return m.enterFields()
	}
	if missing := m.ed.Validate(); len(missing) > 0 {
		m.problem = "Required: " + fieldList(missing, m.ed.Settings().CameraCount)
		return m.enterFields()
	}
	conf := m.ed.Detect()
	if conf == nil {
		return m.save(nil)
	}
	if conf.Kind == slate.ConflictInsertBefore {
		return m.enterResolve(conf)
	}
	m.problem = conf.Reason
	return m.enterFields()
}

// applyEdits pushes edited form values into the engine. Slate fields go
// first so their cascades run, then REC toggles, then typed file values
// so they win over derived ones.
func (m editorModel) applyEdits() error {
	edited := func(f slate.FieldID) (string, bool) {
		p, ok := m.fields[f]
		if !ok || *p == m.initial[f] {
			return "", false
		}
		return *p, true
	}

	for _, f := range []slate.FieldID{slate.FieldEpisode, slate.FieldScene, slate.FieldShot} {
		if v, ok := edited(f); ok {
			m.ed.SetSlateField(f, v)
		}
	}
	if v, ok := edited(slate.FieldTake); ok {
		n, err := parseTakeNumber(v)
		if err != nil {
			return err
		}
		m.ed.SetTakeNumber(n)
	}

	if m.recOn != nil {
		on := map[int]bool{}
		for _, v := range *m.recOn {
			if n, err := strconv.Atoi(v); err == nil {
				on[n] = true
			}
		}
		for i := 1; i <= m.ed.Settings().CameraCount; i++ {
			if m.fields[slate.CameraField(i)] == nil {
				continue
			}
			if m.ed.Take().CameraRec(i) != on[i] {
				m.ed.SetCameraRec(i, on[i])
			}
		}
	}

	if v, ok := edited(slate.FieldSound); ok {
		if err := m.ed.SetFileValue(slate.FieldSound, v); err != nil {
			return err
		}
	}
	for i := 1; i <= m.ed.Settings().CameraCount; i++ {
		f := slate.CameraField(i)
		if v, ok := edited(f); ok {
			if err := m.ed.SetFileValue(f, v); err != nil {
				return err
			}
		}
	}

	if v, ok := edited(slate.FieldDescription); ok {
		m.ed.SetDescription(v)
	}
	if v, ok := edited(slate.FieldNotes); ok {
		m.ed.SetNotes(v)
	}
	for name, p := range m.custom {
		if *p != m.customInitial[name] {
			m.ed.SetCustom(name, *p)
		}
	}
	if m.good != nil {
		m.ed.SetGoodTake(*m.good)
	}
	return nil
}

// --- Conflict resolution ---

func (m editorModel) enterResolve(conf *slate.Conflict) (editorModel, tea.Cmd) {
	m.phase = phaseResolve
	m.conflict = conf
	*m.confirm = true

	plan, err := slate.BuildInsertPlan(m.ed.Take(), conf)
	if err != nil {
		m.problem = err.Error()
		return m.enterFields()
	}

	var lines []string
	if plan.FromTake > 0 {
		lines = append(lines, fmt.Sprintf("Takes %d and up in scene %s, shot %s move up by %d.",
			plan.FromTake, plan.Scene, plan.Shot, plan.TakeDelta))
	}
	cameraCount := m.ed.Settings().CameraCount
	for _, fs := range plan.Files {
		lines = append(lines, fmt.Sprintf("%s files from %s move up by %d.",
			slate.FieldLabel(fs.Field, cameraCount), slate.FormatFileNumber(fs.From), fs.Delta))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(conf.Reason).
				Description(strings.Join(lines, "\n")).
				Affirmative("Insert before").
				Negative("Go back").
				Value(m.confirm),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func (m editorModel) completeResolve() (editorModel, tea.Cmd) {
	if !*m.confirm {
		return m.enterFields()
	}
	return m.save(m.conflict)
}

// save commits the working take, as a plain save or an accepted
// insert-before.
func (m editorModel) save(conf *slate.Conflict) (editorModel, tea.Cmd) {
	var err error
	if conf != nil {
		err = m.ed.CommitInsertBefore(conf)
	} else {
		err = m.ed.CommitNormalSave()
	}
	if err != nil {
		m.problem = err.Error()
		return m.enterFields()
	}
	m.done = true
	m.saved = m.ed.Take()
	m.inserted = conf != nil
	return m, nil
}

// --- View ---

func (m editorModel) view() string {
	w := m.width - 4
	title := titleStyle.Render(m.title())
	project := subtitleStyle.Render(m.project.Name)

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", project), ""}
	if m.problem != "" {
		rows = append(rows, errorStyle.Render(m.problem), "")
	}
	if m.form != nil {
		rows = append(rows, m.form.View())
	}
	rows = append(rows, "", mutedStyle.Render("  esc: cancel"))

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m editorModel) title() string {
	if m.ed.Take().ID != 0 {
		return "Edit Take"
	}
	return "New Take"
}

// --- Helpers ---

func validFileValue(s string) error {
	_, err := slate.ParseFileValue(s)
	return err
}

func validTakeNumber(s string) error {
	_, err := parseTakeNumber(s)
	return err
}

// parseTakeNumber reads a take number input, blank meaning 0.
func parseTakeNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid take number %q", s)
	}
	return n, nil
}

func fieldList(fields []slate.FieldID, cameraCount int) string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = slate.FieldLabel(f, cameraCount)
	}
	return strings.Join(labels, ", ")
}
