package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/slatelog/slatelog/internal/slate"
)

type Project struct {
	ID        int64
	Name      string
	Settings  slate.Settings
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// SceneSummary aggregates logged takes per scene.
type SceneSummary struct {
	Scene     string
	TakeCount int
	GoodCount int
}

// DaySummary aggregates logged takes per shooting day.
type DaySummary struct {
	Date      string
	TakeCount int
	GoodCount int
}

// joinFields serializes an enabled-field set in a stable order.
func joinFields(fs slate.FieldSet) string {
	var parts []string
	for _, f := range slate.OptionalFields {
		if fs.Has(f) {
			parts = append(parts, string(f))
		}
	}
	return strings.Join(parts, ",")
}

func splitFields(raw string) slate.FieldSet {
	fs := slate.FieldSet{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			fs[slate.FieldID(p)] = true
		}
	}
	return fs
}

func joinNames(names []string) string {
	return strings.Join(names, ",")
}

func splitNames(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fileBounds flattens a file value to nullable from/to columns,
// normalized so from <= to.
func fileBounds(v slate.FileValue) (from, to sql.NullInt64) {
	if v.IsBlank() {
		return
	}
	from = sql.NullInt64{Int64: int64(v.Lower()), Valid: true}
	to = sql.NullInt64{Int64: int64(v.Upper()), Valid: true}
	return
}

// boundsValue rebuilds a file value from its from/to columns.
func boundsValue(from, to sql.NullInt64) slate.FileValue {
	if !from.Valid {
		return slate.FileValue{}
	}
	lo := int(from.Int64)
	hi := lo
	if to.Valid {
		hi = int(to.Int64)
	}
	if lo == hi {
		return slate.Single(lo)
	}
	return slate.NewRange(lo, hi)
}

func encodeCustom(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeCustom(raw string) map[string]string {
	m := map[string]string{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &m)
	}
	return m
}
