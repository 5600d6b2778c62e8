package store

import "fmt"

// TakesPerScene aggregates a project's takes by scene for reporting.
func (s *Store) TakesPerScene(projectID int64) ([]SceneSummary, error) {
	rows, err := s.db.Query(
		`SELECT scene, COUNT(*), SUM(good_take) FROM takes
		 WHERE project_id = ? GROUP BY scene ORDER BY scene`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("takes per scene: %w", err)
	}
	defer rows.Close()

	var out []SceneSummary
	for rows.Next() {
		var sum SceneSummary
		if err := rows.Scan(&sum.Scene, &sum.TakeCount, &sum.GoodCount); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// TakesPerDay aggregates a project's takes by the day they were logged.
func (s *Store) TakesPerDay(projectID int64) ([]DaySummary, error) {
	rows, err := s.db.Query(
		`SELECT substr(created_at, 1, 10) AS day, COUNT(*), SUM(good_take) FROM takes
		 WHERE project_id = ? GROUP BY day ORDER BY day`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("takes per day: %w", err)
	}
	defer rows.Close()

	var out []DaySummary
	for rows.Next() {
		var sum DaySummary
		if err := rows.Scan(&sum.Date, &sum.TakeCount, &sum.GoodCount); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
