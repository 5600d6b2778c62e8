package slate

import "fmt"

// OverlapKind classifies how a candidate file value intersects an
// existing one. Only lower matches can be resolved by insert-before;
// upper and within matches would fracture an already recorded range.
type OverlapKind int

const (
	OverlapLower  OverlapKind = iota // shared lower bound
	OverlapUpper                     // shared upper bound, lower differs
	OverlapWithin                    // inside the existing value
)

func (k OverlapKind) String() string {
	switch k {
	case OverlapLower:
		return "lower"
	case OverlapUpper:
		return "upper"
	default:
		return "within"
	}
}

// classifyOverlap assumes the two values already overlap. Equal values
// count as lower matches: inserting before an identical number is the
// canonical insert-before case.
func classifyOverlap(cand, existing FileValue) OverlapKind {
	switch {
	case cand.Lower() == existing.Lower():
		return OverlapLower
	case cand.Upper() == existing.Upper():
		return OverlapUpper
	default:
		return OverlapWithin
	}
}

// ConflictKind says how a detected duplicate can be resolved.
type ConflictKind int

const (
	ConflictBlocking     ConflictKind = iota // user must edit values
	ConflictInsertBefore                     // user may renumber and take the slot
)

// FieldConflict is one tracked field's collision with an existing take.
type FieldConflict struct {
	Field   FieldID
	Target  *Take
	Overlap OverlapKind
}

// Conflict is the detector's verdict for a candidate take. A nil
// Conflict from DetectDuplicate means the candidate saves normally.
type Conflict struct {
	Kind          ConflictKind
	Reason        string          // human-readable explanation for the user
	TakeCollision bool            // the collision is on the take number itself
	SuggestedTake int             // next free take number, set for take collisions
	Target        *Take           // the take the candidate would be inserted before
	Fields        []FieldConflict // colliding file fields, each with its own target
}

// crossSide resolves a sound collision and a camera collision pointing
// at different takes.
type crossSide int

const (
	crossBlocked crossSide = iota
	crossSoundSide
	crossCameraSide
)

// crossTargetTable is keyed by {camera target's sound blank, sound
// target's cameras all blank}. A side is offered only when it alone has
// the opposing field open; anything else is ambiguous ordering.
var crossTargetTable = map[[2]bool]crossSide{
	{false, false}: crossBlocked,
	{false, true}:  crossSoundSide,
	{true, false}:  crossCameraSide,
	{true, true}:   crossBlocked,
}

// DetectDuplicate checks a candidate take against the project history.
// The take-number check runs first; file overlaps are then evaluated
// per tracked field, in field order, against takes in creation order.
// History must already exclude the candidate itself when editing.
func DetectDuplicate(cand *Take, h *History, s Settings) *Conflict {
	disabled := DisabledFields(cand, s.CameraCount)

	if !disabled.Has(FieldTake) && cand.TakeNumber > 0 {
		for _, ex := range h.InSceneShot(cand.Scene, cand.Shot) {
			if ex.TakeNumber == cand.TakeNumber {
				next := NextTakeNumber(h, cand.Scene, cand.Shot)
				return &Conflict{
					Kind:          ConflictBlocking,
					TakeCollision: true,
					SuggestedTake: next,
					Target:        ex,
					Reason: fmt.Sprintf("take %d already logged for scene %s, shot %s; next free take is %d",
						cand.TakeNumber, cand.Scene, cand.Shot, next),
				}
			}
		}
	}

	var eligible []FieldConflict
	for _, f := range trackedFields(cand, s, disabled) {
		cv := cand.FieldValue(f)
		var lower []FieldConflict
		for _, ex := range h.WithField(f) {
			ev := ex.FieldValue(f)
			if !cv.Overlaps(ev) {
				continue
			}
			kind := classifyOverlap(cv, ev)
			if kind != OverlapLower {
				return &Conflict{
					Kind:   ConflictBlocking,
					Target: ex,
					Fields: []FieldConflict{{Field: f, Target: ex, Overlap: kind}},
					Reason: fmt.Sprintf("%s %s overlaps %s already logged on %s",
						FieldLabel(f, s.CameraCount), cv, ev, ex.Location()),
				}
			}
			lower = append(lower, FieldConflict{Field: f, Target: ex, Overlap: kind})
		}
		if len(lower) > 1 {
			// two existing takes share this lower bound, so the history
			// itself is inconsistent; refuse rather than guess
			return &Conflict{
				Kind:   ConflictBlocking,
				Target: lower[0].Target,
				Fields: lower,
				Reason: fmt.Sprintf("%s %s collides with more than one existing take",
					FieldLabel(f, s.CameraCount), cv),
			}
		}
		eligible = append(eligible, lower...)
	}

	if len(eligible) == 0 {
		return nil
	}
	return resolveEligible(eligible, s.CameraCount)
}

// trackedFields lists the candidate's collision-checked fields: sound
// when carried, plus every enabled, REC-active, non-blank camera.
// Disabled and REC-inactive fields are skipped entirely.
func trackedFields(cand *Take, s Settings, disabled FieldSet) []FieldID {
	var fields []FieldID
	if s.SoundEnabled() && !disabled.Has(FieldSound) && !cand.Sound.IsBlank() {
		fields = append(fields, FieldSound)
	}
	for i := 1; i <= s.CameraCount; i++ {
		f := CameraField(i)
		if disabled.Has(f) || !cand.CameraRec(i) || cand.Camera(i).IsBlank() {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// resolveEligible decides what to offer for a set of lower-type
// collisions: a single insert-before when all point at one take or when
// exactly one side has the opposing field open, a block otherwise.
func resolveEligible(conflicts []FieldConflict, cameraCount int) *Conflict {
	var sound *FieldConflict
	var cams []FieldConflict
	for i := range conflicts {
		if conflicts[i].Field == FieldSound {
			sound = &conflicts[i]
		} else {
			cams = append(cams, conflicts[i])
		}
	}

	for i := 1; i < len(cams); i++ {
		if cams[i].Target != cams[0].Target {
			return &Conflict{
				Kind:   ConflictBlocking,
				Target: cams[0].Target,
				Fields: conflicts,
				Reason: fmt.Sprintf("camera files collide with different takes (%s and %s)",
					cams[0].Target.Location(), cams[i].Target.Location()),
			}
		}
	}

	switch {
	case sound == nil:
		return insertBefore(cams[0].Target, conflicts)
	case len(cams) == 0:
		return insertBefore(sound.Target, conflicts)
	case sound.Target == cams[0].Target:
		return insertBefore(sound.Target, conflicts)
	}

	camTarget := cams[0].Target
	key := [2]bool{camTarget.Sound.IsBlank(), camerasBlank(sound.Target)}
	switch crossTargetTable[key] {
	case crossSoundSide:
		return insertBefore(sound.Target, conflicts)
	case crossCameraSide:
		return insertBefore(camTarget, conflicts)
	default:
		return &Conflict{
			Kind:   ConflictBlocking,
			Target: sound.Target,
			Fields: conflicts,
			Reason: fmt.Sprintf("sound and camera files collide with different takes (%s and %s)",
				sound.Target.Location(), camTarget.Location()),
		}
	}
}

func insertBefore(target *Take, fields []FieldConflict) *Conflict {
	return &Conflict{
		Kind:   ConflictInsertBefore,
		Target: target,
		Fields: fields,
		Reason: fmt.Sprintf("file numbers already logged on %s", target.Location()),
	}
}

func camerasBlank(t *Take) bool {
	for i := range t.Cameras {
		if !t.Cameras[i].File.IsBlank() {
			return false
		}
	}
	return true
}
