package tui

import (
	"strconv"

	"github.com/slatelog/slatelog/internal/slate"
	"github.com/slatelog/slatelog/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTakes viewState = iota
	viewProjects
	viewReports
	viewSettings
)

var viewNames = []string{"Takes", "Projects", "Reports", "Settings"}

// --- Messages ---

type takesDataMsg struct {
	project     *store.Project
	takes       []*slate.Take
	hasProjects bool
}

type takeSavedMsg struct {
	take     *slate.Take
	inserted bool
}

type projectsDataMsg struct {
	projects []store.Project
	counts   map[int64]int
	current  int64
}

type projectCreatedMsg struct {
	project *store.Project
}

type projectChosenMsg struct {
	project *store.Project
}

type reportsDataMsg struct {
	project *store.Project
	scenes  []store.SceneSummary
	days    []store.DaySummary
}

type settingsDataMsg struct {
	settings []store.Setting
	project  *store.Project
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// currentProject resolves the project the log views operate on: the
// remembered last project, or the only one when none is remembered.
func currentProject(s *store.Store) *store.Project {
	id := s.LastProjectID()
	if id == 0 {
		projects, _ := s.ListProjects(false)
		if len(projects) == 1 {
			id = projects[0].ID
		}
	}
	if id == 0 {
		return nil
	}
	p, err := s.GetProject(id)
	if err != nil {
		return nil
	}
	return p
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// takeNumberString renders a take number, blank for 0.
func takeNumberString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// classLabel renders a classification for lists, blank for normal takes.
func classLabel(c slate.Classification) string {
	if c == slate.ClassNone {
		return ""
	}
	return c.Label()
}
