package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/slatelog/slatelog/internal/slate"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestProject(t *testing.T, s *Store, cameras int) *Project {
	t.Helper()
	p, err := s.CreateProject("Night Shift", slate.DefaultSettings(cameras))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func fv(t *testing.T, raw string) slate.FileValue {
	t.Helper()
	v, err := slate.ParseFileValue(raw)
	if err != nil {
		t.Fatalf("parse file value %q: %v", raw, err)
	}
	return v
}

// storedTake is a test helper that persists a take with REC on for
// every given camera value. An empty sound string stays blank.
func storedTake(t *testing.T, s *Store, projectID int64, scene, shot string, takeNum int, sound string, cams ...string) *slate.Take {
	t.Helper()
	tk := &slate.Take{ProjectID: projectID, Scene: scene, Shot: shot, TakeNumber: takeNum}
	if sound != "" {
		tk.Sound = fv(t, sound)
	}
	for _, c := range cams {
		tk.Cameras = append(tk.Cameras, slate.CameraTrack{File: fv(t, c), Rec: true})
	}
	if err := s.CreateTake(tk); err != nil {
		t.Fatalf("create take: %v", err)
	}
	return tk
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "slatelog.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.CreateProject("Reopened", slate.DefaultSettings(2))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should not re-migrate and should keep the data.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Reopened" || got.Settings.CameraCount != 2 {
		t.Fatalf("project lost across reopen: %+v", got)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(path, "slatelog") {
		t.Fatalf("expected a slatelog path, got %q", path)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSettingsSeeded(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []string{SettingLastProject, SettingExportDir} {
		if _, err := s.GetSetting(key); err != nil {
			t.Fatalf("expected seeded setting %q: %v", key, err)
		}
	}
}

// ============================================================
// Column helpers
// ============================================================

func TestJoinSplitFields(t *testing.T) {
	fs := slate.FieldSet{slate.FieldSound: true, slate.FieldEpisode: true, slate.FieldGoodTake: true}

	joined := joinFields(fs)
	if joined != "episode,sound,goodTake" {
		t.Fatalf("expected stable order episode,sound,goodTake, got %q", joined)
	}
	back := splitFields(joined)
	if len(back) != 3 || !back.Has(slate.FieldSound) || !back.Has(slate.FieldEpisode) || !back.Has(slate.FieldGoodTake) {
		t.Fatalf("split did not restore the set: %v", back)
	}
	if got := splitFields(""); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestFileBoundsRoundTrip(t *testing.T) {
	if from, to := fileBounds(slate.FileValue{}); from.Valid || to.Valid {
		t.Fatalf("blank value should store NULLs, got (%v, %v)", from, to)
	}

	from, to := fileBounds(slate.NewRange(9, 5))
	if from.Int64 != 5 || to.Int64 != 9 {
		t.Fatalf("expected normalized bounds (5, 9), got (%d, %d)", from.Int64, to.Int64)
	}
	back := boundsValue(from, to)
	if !back.IsRange() || back.Lower() != 5 || back.Upper() != 9 {
		t.Fatalf("expected range 5-9 back, got %v", back)
	}

	single := boundsValue(sql.NullInt64{Int64: 7, Valid: true}, sql.NullInt64{Int64: 7, Valid: true})
	if single.IsRange() || single.Lower() != 7 {
		t.Fatalf("expected single 7, got %v", single)
	}
}

func TestCustomEncoding(t *testing.T) {
	if got := encodeCustom(nil); got != "{}" {
		t.Fatalf("expected {}, got %q", got)
	}
	m := map[string]string{"Lens": "50mm", "Filter": "ND8"}
	back := decodeCustom(encodeCustom(m))
	if len(back) != 2 || back["Lens"] != "50mm" || back["Filter"] != "ND8" {
		t.Fatalf("custom round trip failed: %v", back)
	}
	if got := decodeCustom(""); got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

// ============================================================
// Projects
// ============================================================

func TestCreateAndGetProject(t *testing.T) {
	s := newTestStore(t)

	settings := slate.DefaultSettings(3)
	delete(settings.EnabledFields, slate.FieldNotes)
	settings.CustomFields = []string{"Lens", "Filter"}

	p, err := s.CreateProject("Feature A", settings)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if p.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}

	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Feature A" {
		t.Fatalf("expected name Feature A, got %q", got.Name)
	}
	if got.Settings.CameraCount != 3 {
		t.Fatalf("expected 3 cameras, got %d", got.Settings.CameraCount)
	}
	if got.Settings.EnabledFields.Has(slate.FieldNotes) {
		t.Fatal("notes should stay disabled after round trip")
	}
	if !got.Settings.EnabledFields.Has(slate.FieldSound) {
		t.Fatal("sound should stay enabled after round trip")
	}
	if len(got.Settings.CustomFields) != 2 || got.Settings.CustomFields[0] != "Lens" {
		t.Fatalf("expected custom fields [Lens Filter], got %v", got.Settings.CustomFields)
	}
	if got.Archived {
		t.Fatal("new project should not be archived")
	}
}

func TestCreateProjectDuplicateName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateProject("Dup", slate.DefaultSettings(1))
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.CreateProject("Dup", slate.DefaultSettings(2))
	if err == nil {
		t.Fatal("expected error for duplicate project name")
	}
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProject(999)
	if err == nil {
		t.Fatal("expected error for missing project")
	}
}

func TestListProjects(t *testing.T) {
	s := newTestStore(t)
	s.CreateProject("Bravo", slate.DefaultSettings(1))
	s.CreateProject("Alpha", slate.DefaultSettings(1))

	projects, err := s.ListProjects(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	// Should be sorted by name
	if projects[0].Name != "Alpha" || projects[1].Name != "Bravo" {
		t.Fatalf("expected sorted by name: got %s, %s", projects[0].Name, projects[1].Name)
	}
}

func TestListProjectsEmpty(t *testing.T) {
	s := newTestStore(t)
	projects, err := s.ListProjects(false)
	if err != nil {
		t.Fatal(err)
	}
	if projects != nil {
		t.Fatalf("expected nil slice, got %d items", len(projects))
	}
}

func TestArchiveProject(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)
	s.ArchiveProject(p.ID)

	projects, _ := s.ListProjects(false)
	if len(projects) != 0 {
		t.Fatal("archived project should be hidden")
	}
	projects, _ = s.ListProjects(true)
	if len(projects) != 1 {
		t.Fatal("archived project should appear with includeArchived")
	}
	if !projects[0].Archived {
		t.Fatal("Archived flag should be true")
	}
}

func TestRenameProject(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 2)
	s.RenameProject(p.ID, "Day Shift")

	updated, _ := s.GetProject(p.ID)
	if updated.Name != "Day Shift" {
		t.Fatalf("rename failed: %+v", updated)
	}
	if updated.Settings.CameraCount != 2 {
		t.Fatal("rename must not touch the slate configuration")
	}
}

// ============================================================
// Takes
// ============================================================

func TestCreateAndGetTake(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 2)

	speed := false
	tk := &slate.Take{
		ProjectID:        p.ID,
		Episode:          "103",
		Scene:            "12",
		Shot:             "3A",
		TakeNumber:       4,
		Sound:            fv(t, "0021"),
		Cameras:          []slate.CameraTrack{{File: fv(t, "0003-0005"), Rec: true}, {Rec: false}},
		Classification:   slate.ClassInsert,
		Details:          slate.ShotDetails{NoSlate: true},
		InsertSoundSpeed: &speed,
		GoodTake:         true,
		Description:      "close on hands",
		Notes:            "boom dipped",
		Custom:           map[string]string{"Lens": "85mm"},
	}
	if err := s.CreateTake(tk); err != nil {
		t.Fatal(err)
	}
	if tk.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := s.GetTake(tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Episode != "103" || got.Scene != "12" || got.Shot != "3A" || got.TakeNumber != 4 {
		t.Fatalf("slate fields lost: %+v", got)
	}
	if got.Sound != slate.Single(21) {
		t.Fatalf("expected sound 0021, got %v", got.Sound)
	}
	if len(got.Cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(got.Cameras))
	}
	if got.Camera(1).String() != "0003-0005" || !got.CameraRec(1) {
		t.Fatalf("camera 1 lost: %v rec=%v", got.Camera(1), got.CameraRec(1))
	}
	if !got.Camera(2).IsBlank() || got.CameraRec(2) {
		t.Fatalf("camera 2 should be blank without rec: %v rec=%v", got.Camera(2), got.CameraRec(2))
	}
	if got.Classification != slate.ClassInsert || !got.Details.NoSlate || got.Details.MOS {
		t.Fatalf("classification fields lost: %+v", got)
	}
	if got.InsertSoundSpeed == nil || *got.InsertSoundSpeed {
		t.Fatalf("expected InsertSoundSpeed=false, got %v", got.InsertSoundSpeed)
	}
	if !got.GoodTake || got.Description != "close on hands" || got.Notes != "boom dipped" {
		t.Fatalf("detail fields lost: %+v", got)
	}
	if got.Custom["Lens"] != "85mm" {
		t.Fatalf("expected custom Lens=85mm, got %v", got.Custom)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be set")
	}
}

func TestCreateTakeNilOptionals(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	tk := storedTake(t, s, p.ID, "1", "1", 1, "")
	got, err := s.GetTake(tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Sound.IsBlank() {
		t.Fatalf("expected blank sound, got %v", got.Sound)
	}
	if got.InsertSoundSpeed != nil {
		t.Fatalf("expected nil InsertSoundSpeed, got %v", got.InsertSoundSpeed)
	}
	if got.Custom == nil || len(got.Custom) != 0 {
		t.Fatalf("expected empty custom map, got %v", got.Custom)
	}
}

func TestTakeFieldTrimming(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	tk := storedTake(t, s, p.ID, " 12 ", "3A\t", 1, "")
	got, _ := s.GetTake(tk.ID)
	if got.Scene != "12" || got.Shot != "3A" {
		t.Fatalf("expected trimmed 12/3A, got %q/%q", got.Scene, got.Shot)
	}
}

func TestGetTakeNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTake(999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestListTakesCreationOrder(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	first := storedTake(t, s, p.ID, "12", "1", 1, "0001", "0001")
	second := storedTake(t, s, p.ID, "12", "1", 2, "0002", "0002")
	third := storedTake(t, s, p.ID, "7", "2", 1, "0003", "0003")

	takes, err := s.ListTakes(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(takes) != 3 {
		t.Fatalf("expected 3 takes, got %d", len(takes))
	}
	for i, want := range []int64{first.ID, second.ID, third.ID} {
		if takes[i].ID != want {
			t.Fatalf("expected creation order, got take %d at position %d", takes[i].ID, i)
		}
	}
	if takes[0].Camera(1) != slate.Single(1) {
		t.Fatalf("cameras not attached on list: %v", takes[0].Camera(1))
	}
}

func TestListTakesEmpty(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	takes, err := s.ListTakes(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if takes != nil {
		t.Fatalf("expected nil slice, got %d items", len(takes))
	}
}

func TestListTakesIsolation(t *testing.T) {
	s := newTestStore(t)
	p1 := newTestProject(t, s, 1)
	p2, err := s.CreateProject("Other Unit", slate.DefaultSettings(1))
	if err != nil {
		t.Fatal(err)
	}
	storedTake(t, s, p1.ID, "12", "1", 1, "")
	storedTake(t, s, p2.ID, "12", "1", 1, "")

	takes, _ := s.ListTakes(p1.ID)
	if len(takes) != 1 || takes[0].ProjectID != p1.ID {
		t.Fatal("ListTakes should only return takes for the given project")
	}
}

func TestUpdateTakeRewritesCameras(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 2)

	tk := storedTake(t, s, p.ID, "12", "1", 1, "", "0001", "0001")

	tk.TakeNumber = 2
	tk.GoodTake = true
	tk.Cameras = []slate.CameraTrack{{File: fv(t, "0002-0003"), Rec: true}, {Rec: false}}
	if err := s.UpdateTake(tk); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTake(tk.ID)
	if got.TakeNumber != 2 || !got.GoodTake {
		t.Fatalf("update failed: %+v", got)
	}
	if got.Camera(1).String() != "0002-0003" {
		t.Fatalf("expected camera 1 = 0002-0003, got %v", got.Camera(1))
	}
	if !got.Camera(2).IsBlank() || got.CameraRec(2) {
		t.Fatalf("camera 2 should be cleared: %v rec=%v", got.Camera(2), got.CameraRec(2))
	}

	var rows int
	s.db.QueryRow(`SELECT COUNT(*) FROM take_cameras WHERE take_id = ?`, tk.ID).Scan(&rows)
	if rows != 2 {
		t.Fatalf("expected exactly 2 camera rows after rewrite, got %d", rows)
	}
}

func TestUpdateTakeNotFound(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	tk := &slate.Take{ID: 999, ProjectID: p.ID, Scene: "1", Shot: "1", TakeNumber: 1}
	if err := s.UpdateTake(tk); err == nil {
		t.Fatal("expected error for missing take")
	}
}

func TestDeleteTakeCascades(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	kept := storedTake(t, s, p.ID, "12", "1", 1, "", "0001")
	gone := storedTake(t, s, p.ID, "12", "1", 2, "", "0002")

	if err := s.DeleteTake(gone.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTake(gone.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows after delete, got %v", err)
	}

	var rows int
	s.db.QueryRow(`SELECT COUNT(*) FROM take_cameras WHERE take_id = ?`, gone.ID).Scan(&rows)
	if rows != 0 {
		t.Fatalf("camera rows survived delete: %d", rows)
	}
	if _, err := s.GetTake(kept.ID); err != nil {
		t.Fatalf("sibling take affected by delete: %v", err)
	}

	n, err := s.CountTakes(p.ID)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 remaining take, got %d (%v)", n, err)
	}
}

func TestForeignKeyTakesProject(t *testing.T) {
	s := newTestStore(t)
	tk := &slate.Take{ProjectID: 999, Scene: "1", Shot: "1", TakeNumber: 1}
	if err := s.CreateTake(tk); err == nil {
		t.Fatal("expected foreign key error for non-existent project")
	}
}

// ============================================================
// Shifts
// ============================================================

func TestShiftTakeNumbers(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	t1 := storedTake(t, s, p.ID, "7", "2", 1, "")
	t2 := storedTake(t, s, p.ID, "7", "2", 2, "")
	t3 := storedTake(t, s, p.ID, "7", "2", 3, "")
	other := storedTake(t, s, p.ID, "8", "1", 2, "")

	if err := s.ShiftTakeNumbers(p.ID, "7", "2", 2, 1, 0); err != nil {
		t.Fatal(err)
	}

	want := map[int64]int{t1.ID: 1, t2.ID: 3, t3.ID: 4, other.ID: 2}
	for id, num := range want {
		got, _ := s.GetTake(id)
		if got.TakeNumber != num {
			t.Fatalf("take %d: expected number %d, got %d", id, num, got.TakeNumber)
		}
	}
}

func TestShiftTakeNumbersExcludesCandidate(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	target := storedTake(t, s, p.ID, "7", "2", 2, "")
	editing := storedTake(t, s, p.ID, "7", "2", 3, "")

	if err := s.ShiftTakeNumbers(p.ID, "7", "2", 2, 1, editing.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTake(editing.ID)
	if got.TakeNumber != 3 {
		t.Fatalf("excluded take moved to %d", got.TakeNumber)
	}
	moved, _ := s.GetTake(target.ID)
	if moved.TakeNumber != 3 {
		t.Fatalf("expected target shifted to 3, got %d", moved.TakeNumber)
	}
}

func TestShiftSoundFiles(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	low := storedTake(t, s, p.ID, "7", "2", 1, "0006")
	mid := storedTake(t, s, p.ID, "7", "2", 2, "0007-0008")
	silent := storedTake(t, s, p.ID, "7", "2", 3, "")

	if err := s.ShiftFileNumbers(p.ID, slate.FieldSound, 7, 1, 0); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTake(low.ID)
	if got.Sound != slate.Single(6) {
		t.Fatalf("sound below threshold moved: %v", got.Sound)
	}
	got, _ = s.GetTake(mid.ID)
	if got.Sound.Lower() != 8 || got.Sound.Upper() != 9 {
		t.Fatalf("expected both bounds shifted to 0008-0009, got %v", got.Sound)
	}
	got, _ = s.GetTake(silent.ID)
	if !got.Sound.IsBlank() {
		t.Fatalf("blank sound gained a value: %v", got.Sound)
	}
}

func TestShiftCameraFiles(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 2)

	tk := storedTake(t, s, p.ID, "7", "2", 1, "", "0003", "0003")

	if err := s.ShiftFileNumbers(p.ID, slate.CameraField(1), 3, 1, 0); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTake(tk.ID)
	if got.Camera(1) != slate.Single(4) {
		t.Fatalf("expected camera 1 shifted to 0004, got %v", got.Camera(1))
	}
	if got.Camera(2) != slate.Single(3) {
		t.Fatalf("camera 2 should be untouched: %v", got.Camera(2))
	}
}

func TestShiftCameraFilesTouchesOwningTake(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	shifted := storedTake(t, s, p.ID, "7", "2", 1, "", "0005")
	untouched := storedTake(t, s, p.ID, "7", "2", 2, "", "0001")

	const backdated = "2020-01-01T00:00:00Z"
	if _, err := s.db.Exec(`UPDATE takes SET updated_at = ?`, backdated); err != nil {
		t.Fatal(err)
	}

	if err := s.ShiftFileNumbers(p.ID, slate.CameraField(1), 5, 1, 0); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetTake(shifted.ID)
	if got.UpdatedAt.Format(time.RFC3339) == backdated {
		t.Fatal("take with a shifted camera track should get a fresh updated_at")
	}
	got, _ = s.GetTake(untouched.ID)
	if got.UpdatedAt.Format(time.RFC3339) != backdated {
		t.Fatalf("take below the threshold was touched: %v", got.UpdatedAt)
	}
}

func TestShiftFileNumbersRejectsNonFileField(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	if err := s.ShiftFileNumbers(p.ID, slate.FieldScene, 1, 1, 0); err == nil {
		t.Fatal("expected error for a non-file field")
	}
}

// ============================================================
// SaveWithShift
// ============================================================

func TestSaveWithShiftInsertsAndRenumbers(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	t1 := storedTake(t, s, p.ID, "7", "2", 1, "0006", "0002")
	t2 := storedTake(t, s, p.ID, "7", "2", 2, "0007", "0003")
	t3 := storedTake(t, s, p.ID, "7", "2", 3, "0009", "0005")

	cand := &slate.Take{
		ProjectID:  p.ID,
		Scene:      "7",
		Shot:       "2",
		TakeNumber: 2,
		Sound:      fv(t, "0007"),
		Cameras:    []slate.CameraTrack{{File: fv(t, "0003"), Rec: true}},
	}
	plan := &slate.ShiftPlan{
		Scene:     "7",
		Shot:      "2",
		FromTake:  2,
		TakeDelta: 1,
		Files: []slate.FileShift{
			{Field: slate.FieldSound, From: 7, Delta: 1},
			{Field: slate.CameraField(1), From: 3, Delta: 1},
		},
		AdoptTake: 2,
	}
	if err := s.SaveWithShift(cand, plan); err != nil {
		t.Fatal(err)
	}
	if cand.ID == 0 {
		t.Fatal("candidate was not assigned an ID")
	}

	check := func(id int64, takeNum, sound, cam int) {
		t.Helper()
		got, err := s.GetTake(id)
		if err != nil {
			t.Fatal(err)
		}
		if got.TakeNumber != takeNum || got.Sound != slate.Single(sound) || got.Camera(1) != slate.Single(cam) {
			t.Fatalf("take %d: expected take %d sound %04d cam %04d, got take %d sound %v cam %v",
				id, takeNum, sound, cam, got.TakeNumber, got.Sound, got.Camera(1))
		}
	}
	check(t1.ID, 1, 6, 2)
	check(t2.ID, 3, 8, 4)
	check(t3.ID, 4, 10, 6)
	check(cand.ID, 2, 7, 3)
}

func TestSaveWithShiftRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	t1 := storedTake(t, s, p.ID, "7", "2", 2, "0007", "0003")

	// Updating a take that no longer exists fails after the shifts
	// have already run; the whole transaction must unwind.
	cand := &slate.Take{
		ID:         9999,
		ProjectID:  p.ID,
		Scene:      "7",
		Shot:       "2",
		TakeNumber: 2,
		Sound:      fv(t, "0007"),
	}
	plan := &slate.ShiftPlan{
		Scene:     "7",
		Shot:      "2",
		FromTake:  2,
		TakeDelta: 1,
		Files:     []slate.FileShift{{Field: slate.FieldSound, From: 7, Delta: 1}},
		AdoptTake: 2,
	}
	if err := s.SaveWithShift(cand, plan); err == nil {
		t.Fatal("expected failure for a missing take")
	}

	got, _ := s.GetTake(t1.ID)
	if got.TakeNumber != 2 || got.Sound != slate.Single(7) || got.Camera(1) != slate.Single(3) {
		t.Fatalf("history changed despite rollback: take %d sound %v cam %v", got.TakeNumber, got.Sound, got.Camera(1))
	}
	if n, _ := s.CountTakes(p.ID); n != 1 {
		t.Fatalf("expected 1 take after rollback, got %d", n)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting(SettingExportDir, "/tmp/dailies")
	val, _ := s.GetSetting(SettingExportDir)
	if val != "/tmp/dailies" {
		t.Fatalf("expected /tmp/dailies, got %s", val)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 2 {
		t.Fatalf("expected at least the 2 seeded settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestLastProjectID(t *testing.T) {
	s := newTestStore(t)

	if got := s.LastProjectID(); got != 0 {
		t.Fatalf("expected 0 when unset, got %d", got)
	}
	if err := s.SetLastProjectID(42); err != nil {
		t.Fatal(err)
	}
	if got := s.LastProjectID(); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

// ============================================================
// Stats
// ============================================================

func TestTakesPerScene(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	a := storedTake(t, s, p.ID, "12", "1", 1, "")
	a.GoodTake = true
	if err := s.UpdateTake(a); err != nil {
		t.Fatal(err)
	}
	storedTake(t, s, p.ID, "12", "1", 2, "")
	storedTake(t, s, p.ID, "7", "2", 1, "")

	sums, err := s.TakesPerScene(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(sums))
	}
	if sums[0].Scene != "12" || sums[0].TakeCount != 2 || sums[0].GoodCount != 1 {
		t.Fatalf("scene 12: expected 2 takes / 1 good, got %+v", sums[0])
	}
	if sums[1].Scene != "7" || sums[1].TakeCount != 1 || sums[1].GoodCount != 0 {
		t.Fatalf("scene 7: expected 1 take / 0 good, got %+v", sums[1])
	}
}

func TestTakesPerDay(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s, 1)

	storedTake(t, s, p.ID, "12", "1", 1, "")
	storedTake(t, s, p.ID, "12", "1", 2, "")

	sums, err := s.TakesPerDay(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].TakeCount != 2 {
		t.Fatalf("expected one day with 2 takes, got %+v", sums)
	}
	if len(sums[0].Date) != 10 {
		t.Fatalf("expected YYYY-MM-DD date, got %q", sums[0].Date)
	}
}

// ============================================================
// Close safety
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
