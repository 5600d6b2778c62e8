package slate

// NextTakeNumber returns 1 when no prior take shares the scene and
// shot, otherwise the highest take number there plus one.
func NextTakeNumber(h *History, scene, shot string) int {
	next := 1
	for _, t := range h.InSceneShot(scene, shot) {
		if t.TakeNumber >= next {
			next = t.TakeNumber + 1
		}
	}
	return next
}

// HighestFileNumber returns the maximum upper bound recorded for a
// sound or camera field across the project, 0 when the field has never
// held a value.
func HighestFileNumber(h *History, f FieldID) int {
	highest := 0
	for _, t := range h.WithField(f) {
		if u := t.FieldValue(f).Upper(); u > highest {
			highest = u
		}
	}
	return highest
}

// NextFileNumber computes the value to pre-fill for a sound or camera
// field. Active fields advance one past the highest recorded number,
// which yields 0001 on an empty project. An inactive camera did not
// roll a new file, so it reuses its most recent recorded value
// unchanged; the duplicate is intentional and the detector skips
// inactive fields.
func NextFileNumber(h *History, f FieldID, active bool) FileValue {
	if !active {
		return lastFieldValue(h, f)
	}
	return Single(HighestFileNumber(h, f) + 1)
}

// lastFieldValue returns the most recent non-blank value a field held,
// blank when it never held one.
func lastFieldValue(h *History, f FieldID) FileValue {
	carriers := h.WithField(f)
	if len(carriers) == 0 {
		return FileValue{}
	}
	return carriers[len(carriers)-1].FieldValue(f)
}

// AutoFill is the next-value snapshot for one scene/shot position. The
// editor recomputes it when scene, shot or REC state changes and hands
// it to the classification reducers so re-enabled fields can be
// refilled.
type AutoFill struct {
	TakeNumber int
	Sound      FileValue
	Cameras    []FileValue
}

// NextValues computes the auto-fill snapshot for a take at scene/shot.
// rec carries per-camera REC states; missing entries count as active.
func NextValues(h *History, s Settings, scene, shot string, rec []bool) AutoFill {
	fill := AutoFill{
		TakeNumber: NextTakeNumber(h, scene, shot),
		Cameras:    make([]FileValue, s.CameraCount),
	}
	if s.SoundEnabled() {
		fill.Sound = NextFileNumber(h, FieldSound, true)
	}
	for i := 1; i <= s.CameraCount; i++ {
		active := true
		if i-1 < len(rec) {
			active = rec[i-1]
		}
		fill.Cameras[i-1] = NextFileNumber(h, CameraField(i), active)
	}
	return fill
}

// ComputeAutoFill builds a fully pre-populated new take: episode, scene,
// shot and per-camera REC states carry over from the most recent take,
// and numbering comes from NextValues under those REC states, so a
// paused camera keeps reusing its last number until the crew resumes it.
func ComputeAutoFill(projectID int64, s Settings, h *History) *Take {
	t := NewTake(projectID, s)
	if last := h.MostRecent(); last != nil {
		t.Episode = last.Episode
		t.Scene = last.Scene
		t.Shot = last.Shot
		for i := range t.Cameras {
			if i < len(last.Cameras) {
				t.Cameras[i].Rec = last.Cameras[i].Rec
			}
		}
	}
	rec := make([]bool, len(t.Cameras))
	for i := range t.Cameras {
		rec[i] = t.Cameras[i].Rec
	}
	fill := NextValues(h, s, t.Scene, t.Shot, rec)
	t.TakeNumber = fill.TakeNumber
	if s.SoundEnabled() {
		t.Sound = fill.Sound
	}
	for i := range t.Cameras {
		t.Cameras[i].File = fill.Cameras[i]
	}
	return t
}

// ApplyFieldChange applies the slate hierarchy cascades: editing a
// level resets everything below it so metadata from a different shot
// cannot leak into the new take. Take numbers are recomputed from
// history after the cascade.
func ApplyFieldChange(t *Take, f FieldID, value string, h *History) *Take {
	out := t.Clone()
	switch f {
	case FieldEpisode:
		if value == t.Episode {
			return out
		}
		out.Episode = value
		out.Scene = ""
		out.Shot = ""
		out.Description = ""
		out.Notes = ""
		out.Custom = map[string]string{}
		out.TakeNumber = 1
	case FieldScene:
		if value == t.Scene {
			return out
		}
		out.Scene = value
		out.Shot = ""
		out.Description = ""
		out.Notes = ""
		out.Custom = map[string]string{}
		out.TakeNumber = NextTakeNumber(h, out.Scene, out.Shot)
	case FieldShot:
		changed := value != t.Shot
		out.Shot = value
		if changed {
			out.Description = ""
		}
		out.TakeNumber = NextTakeNumber(h, out.Scene, out.Shot)
	}
	return out
}
