package slate

import "strings"

// classControlled lists the fields classification state can disable,
// in display order.
func classControlled(cameraCount int) []FieldID {
	fields := []FieldID{FieldScene, FieldShot, FieldTake, FieldSound}
	for i := 1; i <= cameraCount; i++ {
		fields = append(fields, CameraField(i))
	}
	return fields
}

// DisabledFields derives the set of fields the take's current
// classification state disables. The set is always computed from the
// take, never stored, so it cannot drift from the state it depends on.
//
// Ambience and SFX takes have no slate: scene, shot, take and all
// camera fields are disabled. Waste disables camera and sound fields
// unless the matching waste option keeps them. Insert disables sound
// only after the user answers "no" to sound speed. MOS disables sound
// under any other classification.
func DisabledFields(t *Take, cameraCount int) FieldSet {
	d := FieldSet{}
	switch t.Classification {
	case ClassAmbience, ClassSFX:
		d[FieldScene] = true
		d[FieldShot] = true
		d[FieldTake] = true
		for i := 1; i <= cameraCount; i++ {
			d[CameraField(i)] = true
		}
	case ClassWaste:
		if !t.Waste.Camera {
			for i := 1; i <= cameraCount; i++ {
				d[CameraField(i)] = true
			}
		}
		if !t.Waste.Sound {
			d[FieldSound] = true
		}
	case ClassInsert:
		if t.InsertSoundSpeed != nil && !*t.InsertSoundSpeed {
			d[FieldSound] = true
		}
	}
	if t.Details.MOS && t.Classification != ClassAmbience && t.Classification != ClassSFX {
		d[FieldSound] = true
	}
	return d
}

// MandatoryFields derives which fields must hold a value before the
// take can be saved: scene and shot, sound when tracked and not
// disabled, and every camera field that is neither disabled nor
// REC-inactive. Ambience and SFX drop scene and shot entirely.
func MandatoryFields(t *Take, s Settings) FieldSet {
	disabled := DisabledFields(t, s.CameraCount)
	m := FieldSet{}
	if t.Classification != ClassAmbience && t.Classification != ClassSFX {
		m[FieldScene] = true
		m[FieldShot] = true
	}
	if s.SoundEnabled() && !disabled.Has(FieldSound) {
		m[FieldSound] = true
	}
	for i := 1; i <= s.CameraCount; i++ {
		f := CameraField(i)
		if !disabled.Has(f) && t.CameraRec(i) {
			m[f] = true
		}
	}
	return m
}

// ValidateMandatory returns the mandatory fields still blank on the
// take, in display order. An empty result means the take can be saved.
func ValidateMandatory(t *Take, s Settings) []FieldID {
	m := MandatoryFields(t, s)
	var missing []FieldID
	if m.Has(FieldScene) && strings.TrimSpace(t.Scene) == "" {
		missing = append(missing, FieldScene)
	}
	if m.Has(FieldShot) && strings.TrimSpace(t.Shot) == "" {
		missing = append(missing, FieldShot)
	}
	if m.Has(FieldSound) && t.Sound.IsBlank() {
		missing = append(missing, FieldSound)
	}
	for i := 1; i <= s.CameraCount; i++ {
		f := CameraField(i)
		if m.Has(f) && t.Camera(i).IsBlank() {
			missing = append(missing, f)
		}
	}
	return missing
}

// ApplyClassification switches the take's classification in a single
// step: it drops the mutually exclusive MOS marker under Ambience/SFX,
// resets options that belong to other classifications, clears newly
// disabled fields and refills newly enabled ones from fill.
func ApplyClassification(t *Take, next Classification, fill AutoFill) *Take {
	out := t.Clone()
	before := DisabledFields(t, len(t.Cameras))
	out.Classification = next
	if next == ClassAmbience || next == ClassSFX {
		out.Details.MOS = false
	}
	if next != ClassWaste {
		out.Waste = WasteOptions{}
	}
	if next != ClassInsert {
		out.InsertSoundSpeed = nil
	}
	reconcileDisabled(out, before, fill)
	return out
}

// ApplyShotDetails replaces the MOS / No Slate markers. MOS is ignored
// under Ambience and SFX.
func ApplyShotDetails(t *Take, details ShotDetails, fill AutoFill) *Take {
	out := t.Clone()
	before := DisabledFields(t, len(t.Cameras))
	out.Details = details
	if out.Classification == ClassAmbience || out.Classification == ClassSFX {
		out.Details.MOS = false
	}
	reconcileDisabled(out, before, fill)
	return out
}

// ApplyWasteOptions records which media a Waste take kept, re-enabling
// the matching fields.
func ApplyWasteOptions(t *Take, opts WasteOptions, fill AutoFill) *Take {
	out := t.Clone()
	before := DisabledFields(t, len(t.Cameras))
	out.Waste = opts
	reconcileDisabled(out, before, fill)
	return out
}

// ApplyInsertSoundSpeed records the Insert dialog's answer. Answering
// "no" disables the sound field.
func ApplyInsertSoundSpeed(t *Take, soundSpeed bool, fill AutoFill) *Take {
	out := t.Clone()
	before := DisabledFields(t, len(t.Cameras))
	out.InsertSoundSpeed = &soundSpeed
	reconcileDisabled(out, before, fill)
	return out
}

// reconcileDisabled clears fields that just became disabled and
// refills fields that just became enabled. Scene and shot have no
// derivable value, so re-enabling leaves them blank for the user.
func reconcileDisabled(t *Take, before FieldSet, fill AutoFill) {
	after := DisabledFields(t, len(t.Cameras))
	for _, f := range classControlled(len(t.Cameras)) {
		switch {
		case after.Has(f) && !before.Has(f):
			clearField(t, f)
		case !after.Has(f) && before.Has(f):
			refillField(t, f, fill)
		}
	}
}

func clearField(t *Take, f FieldID) {
	switch f {
	case FieldScene:
		t.Scene = ""
	case FieldShot:
		t.Shot = ""
	case FieldTake:
		t.TakeNumber = 0
	case FieldSound:
		t.Sound = FileValue{}
	case FieldEpisode:
		t.Episode = ""
	case FieldDescription:
		t.Description = ""
	case FieldNotes:
		t.Notes = ""
	case FieldGoodTake:
		t.GoodTake = false
	default:
		if cam := CameraIndex(f); cam >= 1 && cam <= len(t.Cameras) {
			t.Cameras[cam-1].File = FileValue{}
		}
	}
}

func refillField(t *Take, f FieldID, fill AutoFill) {
	switch f {
	case FieldTake:
		t.TakeNumber = fill.TakeNumber
	case FieldSound:
		t.Sound = fill.Sound
	default:
		if cam := CameraIndex(f); cam >= 1 && cam <= len(t.Cameras) && cam <= len(fill.Cameras) {
			t.Cameras[cam-1].File = fill.Cameras[cam-1]
		}
	}
}

// PruneDisabled clears every value held by a currently disabled or
// project-disabled field. Disabled fields are never persisted with a
// value.
func PruneDisabled(t *Take, s Settings) {
	for f := range DisabledFields(t, s.CameraCount) {
		clearField(t, f)
	}
	for _, f := range OptionalFields {
		if !s.EnabledFields.Has(f) {
			clearField(t, f)
		}
	}
}
