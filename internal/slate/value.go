package slate

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldID identifies a take field. Camera fields are indexed (camera1..cameraN);
// everything else has a fixed id.
type FieldID string

const (
	FieldEpisode     FieldID = "episode"
	FieldScene       FieldID = "scene"
	FieldShot        FieldID = "shot"
	FieldTake        FieldID = "take"
	FieldSound       FieldID = "sound"
	FieldDescription FieldID = "description"
	FieldNotes       FieldID = "notes"
	FieldGoodTake    FieldID = "goodTake"
)

// CameraField returns the field id for the 1-based camera index.
func CameraField(cam int) FieldID {
	return FieldID("camera" + strconv.Itoa(cam))
}

// CameraIndex returns the 1-based camera index of a camera field id,
// or 0 when the id is not a camera field.
func CameraIndex(f FieldID) int {
	s := string(f)
	if !strings.HasPrefix(s, "camera") {
		return 0
	}
	n, err := strconv.Atoi(s[len("camera"):])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// FieldLabel returns the display name for a field. Single-camera
// projects call their only camera field just "Camera".
func FieldLabel(f FieldID, cameraCount int) string {
	switch f {
	case FieldEpisode:
		return "Episode"
	case FieldScene:
		return "Scene"
	case FieldShot:
		return "Shot"
	case FieldTake:
		return "Take"
	case FieldSound:
		return "Sound"
	case FieldDescription:
		return "Description"
	case FieldNotes:
		return "Notes"
	case FieldGoodTake:
		return "Good take"
	}
	if cam := CameraIndex(f); cam > 0 {
		if cameraCount <= 1 {
			return "Camera"
		}
		return "Camera " + strconv.Itoa(cam)
	}
	return string(f)
}

// FieldSet is a set of field ids.
type FieldSet map[FieldID]bool

func (s FieldSet) Has(f FieldID) bool { return s[f] }

type fileKind int

const (
	fileBlank fileKind = iota
	fileSingle
	fileRange
)

// FileValue is a camera or sound file identifier: blank, a single number,
// or an inclusive range of consecutively recorded file numbers. The zero
// value is blank. Bounds may be entered in either order; Lower/Upper
// normalize on use.
type FileValue struct {
	kind fileKind
	from int
	to   int
}

// Single returns a FileValue holding one file number.
func Single(n int) FileValue {
	return FileValue{kind: fileSingle, from: n, to: n}
}

// NewRange returns a FileValue spanning from..to inclusive, in the order given.
func NewRange(from, to int) FileValue {
	return FileValue{kind: fileRange, from: from, to: to}
}

func (v FileValue) IsBlank() bool { return v.kind == fileBlank }
func (v FileValue) IsRange() bool { return v.kind == fileRange }

// Lower returns the smaller bound (the value itself for singles, 0 for blank).
func (v FileValue) Lower() int {
	if v.kind == fileBlank {
		return 0
	}
	return min(v.from, v.to)
}

// Upper returns the larger bound (the value itself for singles, 0 for blank).
func (v FileValue) Upper() int {
	if v.kind == fileBlank {
		return 0
	}
	return max(v.from, v.to)
}

// Overlaps reports whether two values share at least one file number.
// Blank values never overlap anything.
func (v FileValue) Overlaps(o FileValue) bool {
	if v.kind == fileBlank || o.kind == fileBlank {
		return false
	}
	return v.Lower() <= o.Upper() && o.Lower() <= v.Upper()
}

// Contains reports whether n falls inside the value's bounds.
func (v FileValue) Contains(n int) bool {
	if v.kind == fileBlank {
		return false
	}
	return v.Lower() <= n && n <= v.Upper()
}

// Expand returns every file number in the value, in ascending order.
func (v FileValue) Expand() []int {
	if v.kind == fileBlank {
		return nil
	}
	lo, hi := v.Lower(), v.Upper()
	out := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	return out
}

// Shift moves both bounds by delta. Blank values are unchanged.
func (v FileValue) Shift(delta int) FileValue {
	if v.kind == fileBlank {
		return v
	}
	v.from += delta
	v.to += delta
	return v
}

// String renders the canonical display form: "" for blank, "0007" for a
// single, "0005-0010" for a range (bounds normalized).
func (v FileValue) String() string {
	switch v.kind {
	case fileBlank:
		return ""
	case fileSingle:
		return FormatFileNumber(v.from)
	default:
		return FormatFileNumber(v.Lower()) + "-" + FormatFileNumber(v.Upper())
	}
}

// FormatFileNumber zero-pads a file number to four digits.
func FormatFileNumber(n int) string {
	return fmt.Sprintf("%04d", n)
}

// fileSeparators are accepted between range bounds: hyphen and en-dash.
var fileSeparators = []string{"-", "–"}

// ParseFileValue parses a user-typed file-number string. Empty or
// whitespace-only input is blank; two non-empty digit runs joined by a
// hyphen or en-dash form a range; a plain digit run is a single value.
func ParseFileValue(raw string) (FileValue, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return FileValue{}, nil
	}
	for _, sep := range fileSeparators {
		parts := strings.Split(s, sep)
		if len(parts) != 2 {
			continue
		}
		from, okFrom := parseFileNumber(parts[0])
		to, okTo := parseFileNumber(parts[1])
		if okFrom && okTo {
			return NewRange(from, to), nil
		}
	}
	if n, ok := parseFileNumber(s); ok {
		return Single(n), nil
	}
	return FileValue{}, fmt.Errorf("invalid file number %q", raw)
}

func parseFileNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
