package slate

import "fmt"

// FileShift renumbers one file field: every take whose value for Field
// has a lower bound >= From moves up by Delta in both bounds.
type FileShift struct {
	Field FieldID
	From  int
	Delta int
}

// ShiftPlan is the renumbering an accepted insert-before requires. The
// store must run it and the candidate write as one unit: shift take
// numbers, shift each file field, then persist the candidate.
type ShiftPlan struct {
	Scene     string
	Shot      string
	FromTake  int // shift take numbers >= FromTake in Scene/Shot; 0 = no take shift
	TakeDelta int
	Files     []FileShift

	AdoptTake int // take number the candidate assumes; 0 = keep its own
}

// BuildInsertPlan turns an accepted insert-before conflict into the
// renumbering to run before writing the candidate. Take numbers shift
// only when the candidate sits in the target's scene and shot; every
// colliding file field shifts from its target's lower bound by the
// width of the candidate's value, which frees exactly the numbers the
// candidate occupies.
func BuildInsertPlan(cand *Take, conf *Conflict) (*ShiftPlan, error) {
	if conf == nil || conf.Kind != ConflictInsertBefore {
		return nil, fmt.Errorf("conflict is not eligible for insert-before")
	}
	plan := &ShiftPlan{}
	target := conf.Target
	if target.TakeNumber > 0 && keyFor(cand.Scene, cand.Shot) == keyFor(target.Scene, target.Shot) {
		plan.Scene = target.Scene
		plan.Shot = target.Shot
		plan.FromTake = target.TakeNumber
		plan.TakeDelta = 1
		plan.AdoptTake = target.TakeNumber
	}
	for _, fc := range conf.Fields {
		v := cand.FieldValue(fc.Field)
		if v.IsBlank() {
			continue
		}
		plan.Files = append(plan.Files, FileShift{
			Field: fc.Field,
			From:  v.Lower(),
			Delta: v.Upper() - v.Lower() + 1,
		})
	}
	return plan, nil
}

// ApplyToCandidate moves the candidate onto the vacated slot: it
// assumes the target's old take number when the plan shifts take
// numbers. File values stay as entered; the shifts free those numbers.
func (p *ShiftPlan) ApplyToCandidate(t *Take) {
	if p.AdoptTake > 0 {
		t.TakeNumber = p.AdoptTake
	}
}
