package slate

import "fmt"

// Store is the persistence the editor drives. SaveWithShift must apply
// the plan's shifts and the take write as one unit; a failure partway
// fails the whole operation.
type Store interface {
	ListTakes(projectID int64) ([]*Take, error)
	CreateTake(t *Take) error
	UpdateTake(t *Take) error
	SaveWithShift(t *Take, plan *ShiftPlan) error
}

// Editor drives the add/edit-take workflow: validate, detect
// duplicates, then save normally or renumber and insert before the
// conflicting take. One editor handles one workflow; callers reload
// history by opening a new one.
type Editor struct {
	store    Store
	project  int64
	settings Settings

	take    *Take    // working copy, never aliased to history
	history *History // other takes, the edited take excluded
	fill    AutoFill // next-value snapshot for the current scene/shot
}

// NewEditor opens the editor for a new take (existing nil) or an
// existing one. New takes are pre-populated from history; an existing
// take is excluded from its own duplicate checks.
func NewEditor(st Store, projectID int64, settings Settings, existing *Take) (*Editor, error) {
	takes, err := st.ListTakes(projectID)
	if err != nil {
		return nil, fmt.Errorf("load takes: %w", err)
	}
	e := &Editor{store: st, project: projectID, settings: settings}
	var exclude int64
	if existing != nil {
		exclude = existing.ID
	}
	e.history = NewHistory(takes, exclude)
	if existing != nil {
		e.take = existing.Clone()
	} else {
		e.take = ComputeAutoFill(projectID, settings, e.history)
	}
	e.refreshFill()
	return e, nil
}

func (e *Editor) refreshFill() {
	rec := make([]bool, len(e.take.Cameras))
	for i := range e.take.Cameras {
		rec[i] = e.take.Cameras[i].Rec
	}
	e.fill = NextValues(e.history, e.settings, e.take.Scene, e.take.Shot, rec)
}

// Take returns the working copy the UI renders from.
func (e *Editor) Take() *Take { return e.take }

func (e *Editor) Settings() Settings { return e.settings }

// Disabled derives the currently disabled fields.
func (e *Editor) Disabled() FieldSet {
	return DisabledFields(e.take, e.settings.CameraCount)
}

// Mandatory derives the currently mandatory fields.
func (e *Editor) Mandatory() FieldSet {
	return MandatoryFields(e.take, e.settings)
}

// SetClassification switches the classification through the reducer,
// clearing and refilling fields as their disabled state changes.
func (e *Editor) SetClassification(c Classification) {
	e.take = ApplyClassification(e.take, c, e.fill)
}

func (e *Editor) SetShotDetails(d ShotDetails) {
	e.take = ApplyShotDetails(e.take, d, e.fill)
}

func (e *Editor) SetWasteOptions(o WasteOptions) {
	e.take = ApplyWasteOptions(e.take, o, e.fill)
}

func (e *Editor) SetInsertSoundSpeed(soundSpeed bool) {
	e.take = ApplyInsertSoundSpeed(e.take, soundSpeed, e.fill)
}

// SetSlateField changes episode, scene or shot, cascading the resets
// for the levels below and recomputing the take number.
func (e *Editor) SetSlateField(f FieldID, value string) {
	e.take = ApplyFieldChange(e.take, f, value, e.history)
	e.refreshFill()
}

// SetTakeNumber overrides the auto-computed take number. 0 clears it.
func (e *Editor) SetTakeNumber(n int) {
	e.take.TakeNumber = n
}

// SetFileValue parses and stores a sound or camera file value.
func (e *Editor) SetFileValue(f FieldID, raw string) error {
	v, err := ParseFileValue(raw)
	if err != nil {
		return err
	}
	e.take.SetFieldValue(f, v)
	return nil
}

// SetCameraRec toggles a camera's REC state and re-derives its file
// value: an active camera advances the sequence, a paused one reuses
// the last recorded number.
func (e *Editor) SetCameraRec(cam int, rec bool) {
	if cam < 1 || cam > len(e.take.Cameras) {
		return
	}
	e.take.Cameras[cam-1].Rec = rec
	e.take.Cameras[cam-1].File = NextFileNumber(e.history, CameraField(cam), rec)
	e.refreshFill()
}

func (e *Editor) SetDescription(s string) { e.take.Description = s }
func (e *Editor) SetNotes(s string)       { e.take.Notes = s }
func (e *Editor) SetGoodTake(v bool)      { e.take.GoodTake = v }

func (e *Editor) SetCustom(name, value string) {
	if e.take.Custom == nil {
		e.take.Custom = map[string]string{}
	}
	e.take.Custom[name] = value
}

// Validate returns the mandatory fields still blank, in display order.
// Empty means the take can go on to duplicate detection.
func (e *Editor) Validate() []FieldID {
	return ValidateMandatory(e.take, e.settings)
}

// Detect runs duplicate detection on the working take against the rest
// of the project.
func (e *Editor) Detect() *Conflict {
	return DetectDuplicate(e.take, e.history, e.settings)
}

// CommitNormalSave persists the working take as-is. Callers run
// Validate and Detect first and only save on a clean result.
func (e *Editor) CommitNormalSave() error {
	t := e.take.Clone()
	PruneDisabled(t, e.settings)
	var err error
	if t.ID == 0 {
		err = e.store.CreateTake(t)
	} else {
		err = e.store.UpdateTake(t)
	}
	if err != nil {
		return fmt.Errorf("save take: %w", err)
	}
	e.take = t
	return nil
}

// CommitInsertBefore accepts an eligible conflict: it builds the shift
// plan, moves the candidate onto the vacated slot and hands both to the
// store as one unit.
func (e *Editor) CommitInsertBefore(conf *Conflict) error {
	plan, err := BuildInsertPlan(e.take, conf)
	if err != nil {
		return err
	}
	t := e.take.Clone()
	plan.ApplyToCandidate(t)
	PruneDisabled(t, e.settings)
	if err := e.store.SaveWithShift(t, plan); err != nil {
		return fmt.Errorf("insert before %s: %w", conf.Target.Location(), err)
	}
	e.take = t
	return nil
}
