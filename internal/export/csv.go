package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

// ToCSV writes a project's take log. Columns follow the project's
// slate configuration: disabled fields are left out entirely.
func ToCSV(p *store.Project, takes []*slate.Take, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header(p)); err != nil {
		return err
	}
	for _, t := range takes {
		if err := w.Write(row(p, t)); err != nil {
			return err
		}
	}
	return w.Error()
}

func header(p *store.Project) []string {
	s := p.Settings
	cols := []string{"ID"}
	if s.FieldEnabled(slate.FieldEpisode) {
		cols = append(cols, "Episode")
	}
	cols = append(cols, "Scene", "Shot", "Take")
	if s.SoundEnabled() {
		cols = append(cols, "Sound")
	}
	for i := 1; i <= s.CameraCount; i++ {
		cols = append(cols, slate.FieldLabel(slate.CameraField(i), s.CameraCount))
	}
	cols = append(cols, "Class", "MOS", "No Slate")
	if s.FieldEnabled(slate.FieldGoodTake) {
		cols = append(cols, "Good")
	}
	if s.FieldEnabled(slate.FieldDescription) {
		cols = append(cols, "Description")
	}
	if s.FieldEnabled(slate.FieldNotes) {
		cols = append(cols, "Notes")
	}
	cols = append(cols, s.CustomFields...)
	cols = append(cols, "Logged At")
	return cols
}

func row(p *store.Project, t *slate.Take) []string {
	s := p.Settings
	cols := []string{strconv.FormatInt(t.ID, 10)}
	if s.FieldEnabled(slate.FieldEpisode) {
		cols = append(cols, t.Episode)
	}
	cols = append(cols, t.Scene, t.Shot, takeNumber(t))
	if s.SoundEnabled() {
		cols = append(cols, t.Sound.String())
	}
	for i := 1; i <= s.CameraCount; i++ {
		cols = append(cols, t.Camera(i).String())
	}
	class := ""
	if t.Classification != slate.ClassNone {
		class = t.Classification.Label()
	}
	cols = append(cols, class, mark(t.Details.MOS), mark(t.Details.NoSlate))
	if s.FieldEnabled(slate.FieldGoodTake) {
		cols = append(cols, mark(t.GoodTake))
	}
	if s.FieldEnabled(slate.FieldDescription) {
		cols = append(cols, t.Description)
	}
	if s.FieldEnabled(slate.FieldNotes) {
		cols = append(cols, t.Notes)
	}
	for _, name := range s.CustomFields {
		cols = append(cols, t.Custom[name])
	}
	cols = append(cols, loggedAt(t))
	return cols
}

func takeNumber(t *slate.Take) string {
	if t.TakeNumber == 0 {
		return ""
	}
	return strconv.Itoa(t.TakeNumber)
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func loggedAt(t *slate.Take) string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return t.CreatedAt.Local().Format(time.RFC3339)
}
