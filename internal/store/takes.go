package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/slatelog/slatelog/internal/slate"
)

// execer lets take writes run on the pooled handle or inside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const takeColumns = `id, project_id, episode, scene, shot, take_number, sound_from, sound_to,
	classification, mos, no_slate, good_take, waste_camera, waste_sound, insert_sound_speed,
	description, notes, custom, created_at, updated_at`

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return boolInt(*b)
}

// CreateTake persists a new take and its camera rows, assigning its ID.
func (s *Store) CreateTake(t *slate.Take) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin create take: %w", err)
	}
	defer tx.Rollback()

	if err := insertTakeTx(tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTake overwrites an existing take, rewriting its camera rows.
func (s *Store) UpdateTake(t *slate.Take) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update take: %w", err)
	}
	defer tx.Rollback()

	if err := updateTakeTx(tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetTake(id int64) (*slate.Take, error) {
	row := s.db.QueryRow(`SELECT `+takeColumns+` FROM takes WHERE id = ?`, id)
	t, err := scanTake(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get take %d: %w", id, err)
	}
	err = s.attachCameras(
		`SELECT take_id, cam, file_from, file_to, rec FROM take_cameras WHERE take_id = ? ORDER BY cam`,
		id, map[int64]*slate.Take{t.ID: t},
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTakes returns a project's takes in creation order with cameras
// attached. The engine relies on this order for its history view.
func (s *Store) ListTakes(projectID int64) ([]*slate.Take, error) {
	rows, err := s.db.Query(
		`SELECT `+takeColumns+` FROM takes WHERE project_id = ? ORDER BY created_at, id`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list takes: %w", err)
	}
	defer rows.Close()

	var takes []*slate.Take
	byID := map[int64]*slate.Take{}
	for rows.Next() {
		t, err := scanTake(rows.Scan)
		if err != nil {
			return nil, err
		}
		takes = append(takes, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close() // release the connection before the camera query

	err = s.attachCameras(
		`SELECT take_id, cam, file_from, file_to, rec FROM take_cameras
		 WHERE take_id IN (SELECT id FROM takes WHERE project_id = ?) ORDER BY take_id, cam`,
		projectID, byID,
	)
	if err != nil {
		return nil, err
	}
	return takes, nil
}

func (s *Store) DeleteTake(id int64) error {
	_, err := s.db.Exec(`DELETE FROM takes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete take %d: %w", id, err)
	}
	return nil
}

func (s *Store) CountTakes(projectID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM takes WHERE project_id = ?`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count takes: %w", err)
	}
	return n, nil
}

// ShiftTakeNumbers moves every take in the scene/shot group with
// take_number >= fromTake by delta. excludeID skips the take being
// written, whose row is overwritten right after the shift.
func (s *Store) ShiftTakeNumbers(projectID int64, scene, shot string, fromTake, delta int, excludeID int64) error {
	return shiftTakeNumbersTx(s.db, projectID, scene, shot, fromTake, delta, excludeID)
}

// ShiftFileNumbers moves every value of a sound or camera field whose
// lower bound is >= fromNumber by delta, in both bounds.
func (s *Store) ShiftFileNumbers(projectID int64, field slate.FieldID, fromNumber, delta int, excludeID int64) error {
	return shiftFileNumbersTx(s.db, projectID, field, fromNumber, delta, excludeID)
}

// SaveWithShift runs an accepted insert-before as one transaction:
// take-number shift, file shifts, then the candidate write. A failure
// anywhere rolls the whole operation back, so history is never left
// half renumbered.
func (s *Store) SaveWithShift(t *slate.Take, plan *slate.ShiftPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert-before: %w", err)
	}
	defer tx.Rollback()

	if plan.FromTake > 0 {
		if err := shiftTakeNumbersTx(tx, t.ProjectID, plan.Scene, plan.Shot, plan.FromTake, plan.TakeDelta, t.ID); err != nil {
			return err
		}
	}
	for _, fs := range plan.Files {
		if err := shiftFileNumbersTx(tx, t.ProjectID, fs.Field, fs.From, fs.Delta, t.ID); err != nil {
			return err
		}
	}
	if t.ID == 0 {
		if err := insertTakeTx(tx, t); err != nil {
			return err
		}
	} else {
		if err := updateTakeTx(tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert-before: %w", err)
	}
	return nil
}

func insertTakeTx(tx *sql.Tx, t *slate.Take) error {
	ts := time.Now().UTC().Truncate(time.Second)
	now := ts.Format(time.RFC3339)
	soundFrom, soundTo := fileBounds(t.Sound)
	res, err := tx.Exec(
		`INSERT INTO takes (project_id, episode, scene, shot, take_number, sound_from, sound_to,
			classification, mos, no_slate, good_take, waste_camera, waste_sound, insert_sound_speed,
			description, notes, custom, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, strings.TrimSpace(t.Episode), strings.TrimSpace(t.Scene), strings.TrimSpace(t.Shot),
		t.TakeNumber, soundFrom, soundTo,
		string(t.Classification), boolInt(t.Details.MOS), boolInt(t.Details.NoSlate), boolInt(t.GoodTake),
		boolInt(t.Waste.Camera), boolInt(t.Waste.Sound), nullBool(t.InsertSoundSpeed),
		t.Description, t.Notes, encodeCustom(t.Custom), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert take: %w", err)
	}
	id, _ := res.LastInsertId()
	t.ID = id
	t.CreatedAt = ts
	t.UpdatedAt = ts
	return insertCamerasTx(tx, t)
}

func updateTakeTx(tx *sql.Tx, t *slate.Take) error {
	ts := time.Now().UTC().Truncate(time.Second)
	now := ts.Format(time.RFC3339)
	soundFrom, soundTo := fileBounds(t.Sound)
	res, err := tx.Exec(
		`UPDATE takes SET episode = ?, scene = ?, shot = ?, take_number = ?, sound_from = ?, sound_to = ?,
			classification = ?, mos = ?, no_slate = ?, good_take = ?, waste_camera = ?, waste_sound = ?,
			insert_sound_speed = ?, description = ?, notes = ?, custom = ?, updated_at = ?
		 WHERE id = ?`,
		strings.TrimSpace(t.Episode), strings.TrimSpace(t.Scene), strings.TrimSpace(t.Shot),
		t.TakeNumber, soundFrom, soundTo,
		string(t.Classification), boolInt(t.Details.MOS), boolInt(t.Details.NoSlate), boolInt(t.GoodTake),
		boolInt(t.Waste.Camera), boolInt(t.Waste.Sound), nullBool(t.InsertSoundSpeed),
		t.Description, t.Notes, encodeCustom(t.Custom), now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update take: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update take %d: not found", t.ID)
	}
	t.UpdatedAt = ts
	if _, err := tx.Exec(`DELETE FROM take_cameras WHERE take_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clear take cameras: %w", err)
	}
	return insertCamerasTx(tx, t)
}

func insertCamerasTx(tx *sql.Tx, t *slate.Take) error {
	for i, cam := range t.Cameras {
		from, to := fileBounds(cam.File)
		if _, err := tx.Exec(
			`INSERT INTO take_cameras (take_id, cam, file_from, file_to, rec) VALUES (?, ?, ?, ?, ?)`,
			t.ID, i+1, from, to, boolInt(cam.Rec),
		); err != nil {
			return fmt.Errorf("insert take camera %d: %w", i+1, err)
		}
	}
	return nil
}

func shiftTakeNumbersTx(e execer, projectID int64, scene, shot string, fromTake, delta int, excludeID int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := e.Exec(
		`UPDATE takes SET take_number = take_number + ?, updated_at = ?
		 WHERE project_id = ? AND scene = ? AND shot = ? AND take_number >= ? AND id <> ?`,
		delta, now, projectID, strings.TrimSpace(scene), strings.TrimSpace(shot), fromTake, excludeID,
	)
	if err != nil {
		return fmt.Errorf("shift take numbers: %w", err)
	}
	return nil
}

func shiftFileNumbersTx(e execer, projectID int64, field slate.FieldID, fromNumber, delta int, excludeID int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if field == slate.FieldSound {
		_, err := e.Exec(
			`UPDATE takes SET sound_from = sound_from + ?, sound_to = sound_to + ?, updated_at = ?
			 WHERE project_id = ? AND sound_from IS NOT NULL AND sound_from >= ? AND id <> ?`,
			delta, delta, now, projectID, fromNumber, excludeID,
		)
		if err != nil {
			return fmt.Errorf("shift sound files: %w", err)
		}
		return nil
	}
	cam := slate.CameraIndex(field)
	if cam == 0 {
		return fmt.Errorf("shift file numbers: %q is not a file field", field)
	}
	// Touch the owning takes first, while the threshold still matches
	// exactly the rows about to shift.
	_, err := e.Exec(
		`UPDATE takes SET updated_at = ?
		 WHERE project_id = ? AND id <> ? AND id IN (
			SELECT take_id FROM take_cameras
			WHERE cam = ? AND file_from IS NOT NULL AND file_from >= ?)`,
		now, projectID, excludeID, cam, fromNumber,
	)
	if err != nil {
		return fmt.Errorf("touch shifted takes: %w", err)
	}
	_, err = e.Exec(
		`UPDATE take_cameras SET file_from = file_from + ?, file_to = file_to + ?
		 WHERE cam = ? AND file_from IS NOT NULL AND file_from >= ?
		   AND take_id IN (SELECT id FROM takes WHERE project_id = ?) AND take_id <> ?`,
		delta, delta, cam, fromNumber, projectID, excludeID,
	)
	if err != nil {
		return fmt.Errorf("shift camera %d files: %w", cam, err)
	}
	return nil
}

func scanTake(scan func(dest ...any) error) (*slate.Take, error) {
	t := &slate.Take{}
	var soundFrom, soundTo, insertSpeed sql.NullInt64
	var class, custom, createdAt, updatedAt string
	var mos, noSlate, good, wasteCam, wasteSnd int
	err := scan(&t.ID, &t.ProjectID, &t.Episode, &t.Scene, &t.Shot, &t.TakeNumber,
		&soundFrom, &soundTo, &class, &mos, &noSlate, &good, &wasteCam, &wasteSnd, &insertSpeed,
		&t.Description, &t.Notes, &custom, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Sound = boundsValue(soundFrom, soundTo)
	t.Classification = slate.Classification(class)
	t.Details = slate.ShotDetails{MOS: mos == 1, NoSlate: noSlate == 1}
	t.GoodTake = good == 1
	t.Waste = slate.WasteOptions{Camera: wasteCam == 1, Sound: wasteSnd == 1}
	if insertSpeed.Valid {
		v := insertSpeed.Int64 == 1
		t.InsertSoundSpeed = &v
	}
	t.Custom = decodeCustom(custom)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func (s *Store) attachCameras(query string, arg any, takes map[int64]*slate.Take) error {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return fmt.Errorf("load take cameras: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var takeID int64
		var cam, rec int
		var from, to sql.NullInt64
		if err := rows.Scan(&takeID, &cam, &from, &to, &rec); err != nil {
			return err
		}
		t := takes[takeID]
		if t == nil || cam < 1 {
			continue
		}
		for len(t.Cameras) < cam {
			t.Cameras = append(t.Cameras, slate.CameraTrack{})
		}
		t.Cameras[cam-1] = slate.CameraTrack{File: boundsValue(from, to), Rec: rec == 1}
	}
	return rows.Err()
}
