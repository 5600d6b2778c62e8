package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Project    jsonProject `json:"project"`
	Count      int         `json:"count"`
	Takes      []jsonTake  `json:"takes"`
}

type jsonProject struct {
	Name         string   `json:"name"`
	CameraCount  int      `json:"camera_count"`
	CustomFields []string `json:"custom_fields,omitempty"`
}

type jsonTake struct {
	ID             int64             `json:"id"`
	Episode        string            `json:"episode,omitempty"`
	Scene          string            `json:"scene,omitempty"`
	Shot           string            `json:"shot,omitempty"`
	Take           int               `json:"take,omitempty"`
	Sound          string            `json:"sound,omitempty"`
	Cameras        []jsonCamera      `json:"cameras"`
	Classification string            `json:"classification,omitempty"`
	MOS            bool              `json:"mos,omitempty"`
	NoSlate        bool              `json:"no_slate,omitempty"`
	GoodTake       bool              `json:"good_take,omitempty"`
	Description    string            `json:"description,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Custom         map[string]string `json:"custom,omitempty"`
	LoggedAt       string            `json:"logged_at,omitempty"`
}

type jsonCamera struct {
	File string `json:"file,omitempty"`
	Rec  bool   `json:"rec"`
}

func ToJSON(p *store.Project, takes []*slate.Take, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Project: jsonProject{
			Name:         p.Name,
			CameraCount:  p.Settings.CameraCount,
			CustomFields: p.Settings.CustomFields,
		},
		Count: len(takes),
	}

	for _, t := range takes {
		jt := jsonTake{
			ID:             t.ID,
			Episode:        t.Episode,
			Scene:          t.Scene,
			Shot:           t.Shot,
			Take:           t.TakeNumber,
			Sound:          t.Sound.String(),
			Classification: string(t.Classification),
			MOS:            t.Details.MOS,
			NoSlate:        t.Details.NoSlate,
			GoodTake:       t.GoodTake,
			Description:    t.Description,
			Notes:          t.Notes,
			LoggedAt:       loggedAt(t),
		}
		for _, cam := range t.Cameras {
			jt.Cameras = append(jt.Cameras, jsonCamera{File: cam.File.String(), Rec: cam.Rec})
		}
		if len(t.Custom) > 0 {
			jt.Custom = t.Custom
		}
		export.Takes = append(export.Takes, jt)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
