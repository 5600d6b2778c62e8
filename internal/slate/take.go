// Package slate implements the take numbering and conflict resolution
// engine: classification rules, next-value calculation, duplicate
// detection and the renumbering shifts that keep a project's take and
// file numbers monotonic and collision free.
package slate

import (
	"fmt"
	"time"
)

// MaxCameraCount is the most cameras a project can track.
const MaxCameraCount = 10

// Classification tags a take. Tags are mutually exclusive; the empty
// string means a normal, unclassified take.
type Classification string

const (
	ClassNone     Classification = ""
	ClassWaste    Classification = "waste"
	ClassInsert   Classification = "insert"
	ClassAmbience Classification = "ambience"
	ClassSFX      Classification = "sfx"
)

var classLabels = map[Classification]string{
	ClassNone:     "None",
	ClassWaste:    "Waste",
	ClassInsert:   "Insert",
	ClassAmbience: "Ambience",
	ClassSFX:      "SFX",
}

func (c Classification) Valid() bool {
	_, ok := classLabels[c]
	return ok
}

// Label returns the display name ("None", "Waste", ...).
func (c Classification) Label() string {
	if l, ok := classLabels[c]; ok {
		return l
	}
	return string(c)
}

// ShotDetails are the slate markers that can accompany any take.
// MOS means shot without sound; NoSlate means the slate was not filmed.
type ShotDetails struct {
	MOS     bool
	NoSlate bool
}

// WasteOptions records which media a Waste take still kept rolling.
// Meaningful only under ClassWaste.
type WasteOptions struct {
	Camera bool
	Sound  bool
}

// CameraTrack is one camera's slot on a take: its file value and
// whether the camera was actively recording (REC) for this take.
type CameraTrack struct {
	File FileValue
	Rec  bool
}

// Take is one logged recording attempt.
type Take struct {
	ID         int64
	ProjectID  int64
	Episode    string
	Scene      string
	Shot       string
	TakeNumber int // 0 means blank
	Sound      FileValue
	Cameras    []CameraTrack // one per project camera

	Classification   Classification
	Details          ShotDetails
	Waste            WasteOptions // meaningful only under ClassWaste
	InsertSoundSpeed *bool        // meaningful only under ClassInsert; nil = unanswered
	GoodTake         bool

	Description string
	Notes       string
	Custom      map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Camera returns the file value for the 1-based camera index, blank
// when the index is out of range.
func (t *Take) Camera(cam int) FileValue {
	if cam < 1 || cam > len(t.Cameras) {
		return FileValue{}
	}
	return t.Cameras[cam-1].File
}

// CameraRec reports the REC state for the 1-based camera index.
// Cameras outside the slice are treated as inactive.
func (t *Take) CameraRec(cam int) bool {
	if cam < 1 || cam > len(t.Cameras) {
		return false
	}
	return t.Cameras[cam-1].Rec
}

// FieldValue returns the file value held by a sound or camera field,
// blank for any other field id.
func (t *Take) FieldValue(f FieldID) FileValue {
	if f == FieldSound {
		return t.Sound
	}
	if cam := CameraIndex(f); cam > 0 {
		return t.Camera(cam)
	}
	return FileValue{}
}

// SetFieldValue stores a file value into a sound or camera field.
// Camera indexes beyond the slice are ignored.
func (t *Take) SetFieldValue(f FieldID, v FileValue) {
	if f == FieldSound {
		t.Sound = v
		return
	}
	if cam := CameraIndex(f); cam >= 1 && cam <= len(t.Cameras) {
		t.Cameras[cam-1].File = v
	}
}

// Slated reports whether the take carries scene/shot identification.
func (t *Take) Slated() bool {
	return t.Scene != "" || t.Shot != ""
}

// Location renders the take's position for conflict messages:
// "scene 12, shot 3A, take 4" when slated, otherwise the
// classification label.
func (t *Take) Location() string {
	if !t.Slated() {
		if t.Classification != ClassNone {
			return t.Classification.Label()
		}
		return "unslated take"
	}
	return fmt.Sprintf("scene %s, shot %s, take %d", t.Scene, t.Shot, t.TakeNumber)
}

// Clone returns a deep copy, so candidate edits never alias history.
func (t *Take) Clone() *Take {
	c := *t
	c.Cameras = make([]CameraTrack, len(t.Cameras))
	copy(c.Cameras, t.Cameras)
	if t.InsertSoundSpeed != nil {
		v := *t.InsertSoundSpeed
		c.InsertSoundSpeed = &v
	}
	if t.Custom != nil {
		c.Custom = make(map[string]string, len(t.Custom))
		for k, v := range t.Custom {
			c.Custom[k] = v
		}
	}
	return &c
}

// OptionalFields are the per-project toggleable field ids.
var OptionalFields = []FieldID{FieldEpisode, FieldSound, FieldDescription, FieldNotes, FieldGoodTake}

// Settings is a project's slate configuration, fixed at creation.
type Settings struct {
	CameraCount   int
	EnabledFields FieldSet
	CustomFields  []string
}

// DefaultSettings enables every optional field for the given camera count.
func DefaultSettings(cameraCount int) Settings {
	s := Settings{
		CameraCount:   cameraCount,
		EnabledFields: FieldSet{},
	}
	for _, f := range OptionalFields {
		s.EnabledFields[f] = true
	}
	s.normalize()
	return s
}

func (s *Settings) normalize() {
	if s.CameraCount < 1 {
		s.CameraCount = 1
	}
	if s.CameraCount > MaxCameraCount {
		s.CameraCount = MaxCameraCount
	}
	if s.EnabledFields == nil {
		s.EnabledFields = FieldSet{}
	}
}

// FieldEnabled reports whether a field exists on this project's slate.
// Scene, shot, take and camera fields are always present; optional
// fields consult the enabled set.
func (s Settings) FieldEnabled(f FieldID) bool {
	switch f {
	case FieldScene, FieldShot, FieldTake:
		return true
	}
	if CameraIndex(f) > 0 {
		return CameraIndex(f) <= s.CameraCount
	}
	return s.EnabledFields.Has(f)
}

// SoundEnabled reports whether the project tracks sound files at all.
func (s Settings) SoundEnabled() bool {
	return s.EnabledFields.Has(FieldSound)
}

// CameraFields lists the camera field ids for this project, in order.
func (s Settings) CameraFields() []FieldID {
	out := make([]FieldID, 0, s.CameraCount)
	for i := 1; i <= s.CameraCount; i++ {
		out = append(out, CameraField(i))
	}
	return out
}

// NewTake returns an empty take shaped for the project's settings:
// camera slots allocated with REC on, custom fields initialized.
func NewTake(projectID int64, s Settings) *Take {
	t := &Take{
		ProjectID: projectID,
		Cameras:   make([]CameraTrack, s.CameraCount),
		Custom:    map[string]string{},
	}
	for i := range t.Cameras {
		t.Cameras[i].Rec = true
	}
	return t
}
