package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

func sampleProject() *store.Project {
	settings := slate.DefaultSettings(2)
	settings.CustomFields = []string{"Lens"}
	return &store.Project{ID: 1, Name: "Night Shift", Settings: settings}
}

func sampleTakes(t *testing.T) []*slate.Take {
	t.Helper()
	now := time.Now().UTC()

	cam, err := slate.ParseFileValue("0003-0005")
	if err != nil {
		t.Fatal(err)
	}

	return []*slate.Take{
		{
			ID:          1,
			ProjectID:   1,
			Episode:     "101",
			Scene:       "12",
			Shot:        "3A",
			TakeNumber:  1,
			Sound:       slate.Single(21),
			Cameras:     []slate.CameraTrack{{File: cam, Rec: true}, {File: slate.Single(3), Rec: true}},
			GoodTake:    true,
			Description: "wide master",
			Custom:      map[string]string{"Lens": "50mm"},
			CreatedAt:   now,
		},
		{
			ID:             2,
			ProjectID:      1,
			Classification: slate.ClassAmbience,
			Sound:          slate.Single(22),
			Cameras:        []slate.CameraTrack{{}, {}},
			CreatedAt:      now,
		},
		{
			ID:         3,
			ProjectID:  1,
			Scene:      "12",
			Shot:       "3A",
			TakeNumber: 2,
			Details:    slate.ShotDetails{MOS: true},
			Cameras:    []slate.CameraTrack{{File: slate.Single(6), Rec: true}, {}},
			CreatedAt:  now,
		},
	}
}

// Column indexes for the sample project (every optional field on,
// two cameras, one custom field).
const (
	colID = iota
	colEpisode
	colScene
	colShot
	colTake
	colSound
	colCam1
	colCam2
	colClass
	colMOS
	colNoSlate
	colGood
	colDescription
	colNotes
	colLens
	colLoggedAt
)

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	p := sampleProject()
	takes := sampleTakes(t)
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(p, takes, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{
		"ID", "Episode", "Scene", "Shot", "Take", "Sound", "Camera 1", "Camera 2",
		"Class", "MOS", "No Slate", "Good", "Description", "Notes", "Lens", "Logged At",
	}
	header := records[0]
	if len(header) != len(expectedHeader) {
		t.Fatalf("expected %d columns, got %d: %v", len(expectedHeader), len(header), header)
	}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[colID] != "1" || row[colEpisode] != "101" || row[colTake] != "1" {
		t.Fatalf("first row slate columns wrong: %v", row)
	}
	if row[colSound] != "0021" {
		t.Fatalf("Sound = %q, want 0021", row[colSound])
	}
	if row[colCam1] != "0003-0005" || row[colCam2] != "0003" {
		t.Fatalf("camera columns = %q/%q, want 0003-0005/0003", row[colCam1], row[colCam2])
	}
	if row[colGood] != "yes" {
		t.Fatalf("Good = %q, want yes", row[colGood])
	}
	if row[colLens] != "50mm" {
		t.Fatalf("Lens = %q, want 50mm", row[colLens])
	}

	ambience := records[2]
	if ambience[colScene] != "" || ambience[colTake] != "" {
		t.Fatalf("ambience row should have blank scene and take: %v", ambience)
	}
	if ambience[colClass] != "Ambience" {
		t.Fatalf("Class = %q, want Ambience", ambience[colClass])
	}
	if ambience[colSound] != "0022" {
		t.Fatalf("ambience Sound = %q, want 0022", ambience[colSound])
	}

	mos := records[3]
	if mos[colMOS] != "yes" {
		t.Fatalf("MOS = %q, want yes", mos[colMOS])
	}
	if mos[colSound] != "" {
		t.Fatalf("MOS take should have blank sound, got %q", mos[colSound])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(sampleProject(), nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVDisabledColumns(t *testing.T) {
	settings := slate.DefaultSettings(1)
	delete(settings.EnabledFields, slate.FieldEpisode)
	delete(settings.EnabledFields, slate.FieldNotes)
	p := &store.Project{ID: 1, Name: "Short Doc", Settings: settings}
	path := filepath.Join(t.TempDir(), "narrow.csv")

	if err := ToCSV(p, nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	header := records[0]

	for _, col := range header {
		if col == "Episode" || col == "Notes" {
			t.Fatalf("disabled column %q should not be exported", col)
		}
	}
	found := false
	for _, col := range header {
		if col == "Camera" {
			found = true
		}
		if col == "Camera 1" {
			t.Fatal("single-camera project should label its column just Camera")
		}
	}
	if !found {
		t.Fatalf("expected a Camera column, got %v", header)
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(sampleProject(), nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	p := sampleProject()
	takes := []*slate.Take{
		{
			ID:          1,
			ProjectID:   1,
			Scene:       "12",
			Shot:        "3A",
			TakeNumber:  1,
			Cameras:     []slate.CameraTrack{{Rec: true}, {Rec: true}},
			Description: `boom shadow on "hero" prop, retake`,
		},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(p, takes, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][colDescription] != `boom shadow on "hero" prop, retake` {
		t.Fatalf("description mangled: %q", records[1][colDescription])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	p := sampleProject()
	takes := sampleTakes(t)
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(p, takes, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Takes) != 3 {
		t.Fatalf("count = %d, takes = %d, want 3", result.Count, len(result.Takes))
	}
	if result.Project.Name != "Night Shift" || result.Project.CameraCount != 2 {
		t.Fatalf("project block wrong: %+v", result.Project)
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	first := result.Takes[0]
	if first.Scene != "12" || first.Take != 1 || first.Sound != "0021" {
		t.Fatalf("first take wrong: %+v", first)
	}
	if len(first.Cameras) != 2 || first.Cameras[0].File != "0003-0005" || !first.Cameras[0].Rec {
		t.Fatalf("first take cameras wrong: %+v", first.Cameras)
	}
	if !first.GoodTake || first.Custom["Lens"] != "50mm" {
		t.Fatalf("first take details wrong: %+v", first)
	}

	ambience := result.Takes[1]
	if ambience.Take != 0 || ambience.Scene != "" {
		t.Fatalf("ambience take should have no slate: %+v", ambience)
	}
	if ambience.Classification != "ambience" {
		t.Fatalf("classification = %q, want ambience", ambience.Classification)
	}

	mos := result.Takes[2]
	if !mos.MOS || mos.Sound != "" {
		t.Fatalf("MOS take wrong: %+v", mos)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(sampleProject(), nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Takes != nil {
		t.Fatal("takes should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(sampleProject(), nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(sampleProject(), nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	p := sampleProject()
	takes := sampleTakes(t)
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(p, takes, path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, tk := range result.Takes {
		if _, err := time.Parse(time.RFC3339, tk.LoggedAt); err != nil {
			t.Fatalf("logged_at is not valid RFC3339: %q", tk.LoggedAt)
		}
	}
}

// ============================================================
// Formatting helpers
// ============================================================

func TestMark(t *testing.T) {
	if mark(true) != "yes" || mark(false) != "" {
		t.Fatal("mark should render yes/blank")
	}
}

func TestTakeNumberBlank(t *testing.T) {
	if got := takeNumber(&slate.Take{}); got != "" {
		t.Fatalf("blank take number = %q, want empty", got)
	}
	if got := takeNumber(&slate.Take{TakeNumber: 7}); got != "7" {
		t.Fatalf("take number = %q, want 7", got)
	}
}
