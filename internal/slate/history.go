package slate

import "strings"

type sceneShotKey struct {
	scene string
	shot  string
}

func keyFor(scene, shot string) sceneShotKey {
	return sceneShotKey{scene: strings.TrimSpace(scene), shot: strings.TrimSpace(shot)}
}

// History is a read-only indexed view of a project's takes, built once
// per operation and passed explicitly, so detection and autofill never
// rescan the full list. Takes keep their creation order.
type History struct {
	takes       []*Take
	bySceneShot map[sceneShotKey][]*Take
	byField     map[FieldID][]*Take
}

// NewHistory indexes takes by scene/shot and by carried file field.
// excludeID removes one take from the view (the take being edited);
// pass 0 to keep all.
func NewHistory(takes []*Take, excludeID int64) *History {
	h := &History{
		bySceneShot: map[sceneShotKey][]*Take{},
		byField:     map[FieldID][]*Take{},
	}
	for _, t := range takes {
		if excludeID != 0 && t.ID == excludeID {
			continue
		}
		h.takes = append(h.takes, t)
		k := keyFor(t.Scene, t.Shot)
		h.bySceneShot[k] = append(h.bySceneShot[k], t)
		if !t.Sound.IsBlank() {
			h.byField[FieldSound] = append(h.byField[FieldSound], t)
		}
		for i := range t.Cameras {
			if !t.Cameras[i].File.IsBlank() {
				f := CameraField(i + 1)
				h.byField[f] = append(h.byField[f], t)
			}
		}
	}
	return h
}

func (h *History) Len() int { return len(h.takes) }

// All returns every take in creation order.
func (h *History) All() []*Take { return h.takes }

// InSceneShot returns the takes sharing a scene and shot.
func (h *History) InSceneShot(scene, shot string) []*Take {
	return h.bySceneShot[keyFor(scene, shot)]
}

// WithField returns the takes holding a non-blank value for the field.
func (h *History) WithField(f FieldID) []*Take {
	return h.byField[f]
}

// MostRecent returns the newest take, or nil for an empty project.
func (h *History) MostRecent() *Take {
	if len(h.takes) == 0 {
		return nil
	}
	return h.takes[len(h.takes)-1]
}
