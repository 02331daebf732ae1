package ops

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gtdone/internal/contexts"
	"gtdone/internal/model"
	"gtdone/internal/project"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
)

// SnapshotVersion is written on export. Import records the incoming value
// but never gates on it.
const SnapshotVersion = "1.0"

// Snapshot is the import/export JSON envelope.
type Snapshot struct {
	Version        string           `json:"version"`
	ExportDate     time.Time        `json:"exportDate"`
	Tasks          []model.Task     `json:"tasks"`
	Projects       []model.Project  `json:"projects"`
	CustomContexts []string         `json:"customContexts"`
	UsageStats     *telemetry.Stats `json:"usageStats,omitempty"`
}

// Exporter bundles the repos a snapshot draws from.
type Exporter struct {
	Tasks    task.Repo
	Projects project.Repo
	Contexts *contexts.FileRepo
	Events   telemetry.Repository
}

func (e *Exporter) BuildSnapshot(now time.Time) (*Snapshot, error) {
	tasks, err := e.Tasks.All()
	if err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	projects, err := e.Projects.List()
	if err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}

	snap := &Snapshot{
		Version:    SnapshotVersion,
		ExportDate: now,
		Tasks:      tasks,
		Projects:   projects,
	}
	if e.Contexts != nil {
		snap.CustomContexts = e.Contexts.Custom()
	}
	if snap.CustomContexts == nil {
		snap.CustomContexts = []string{}
	}
	if e.Events != nil {
		events, err := e.Events.GetEvents(time.Time{}, nil)
		if err == nil {
			stats, err := telemetry.CalculateStats(events, now.AddDate(0, 0, -30))
			if err == nil {
				snap.UsageStats = &stats
			}
		}
	}
	return snap, nil
}

func (e *Exporter) WriteSnapshot(w io.Writer, now time.Time) error {
	snap, err := e.BuildSnapshot(now)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ImportMode selects how a snapshot lands on existing data.
type ImportMode string

const (
	// ImportReplace drops current tasks/projects/contexts first.
	ImportReplace ImportMode = "replace"
	// ImportMerge keeps existing records and appends the snapshot's.
	ImportMerge ImportMode = "merge"
)

type ImportResult struct {
	Tasks    int    `json:"tasks"`
	Projects int    `json:"projects"`
	Contexts int    `json:"contexts"`
	Version  string `json:"version"`
}

func (e *Exporter) ImportSnapshot(r io.Reader, mode ImportMode) (*ImportResult, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	switch mode {
	case "", ImportReplace:
		mode = ImportReplace
	case ImportMerge:
	default:
		return nil, fmt.Errorf("unknown import mode: %s", mode)
	}

	tasks := snap.Tasks
	projects := snap.Projects
	customContexts := snap.CustomContexts

	if mode == ImportMerge {
		existing, err := e.Tasks.All()
		if err != nil {
			return nil, err
		}
		tasks = mergeTasks(existing, tasks)

		existingProjects, err := e.Projects.List()
		if err != nil {
			return nil, err
		}
		projects = mergeProjects(existingProjects, projects)

		if e.Contexts != nil {
			customContexts = mergeStrings(e.Contexts.Custom(), customContexts)
		}
	}

	if err := e.Tasks.ReplaceAll(tasks); err != nil {
		return nil, fmt.Errorf("import tasks: %w", err)
	}
	if err := e.Projects.ReplaceAll(projects); err != nil {
		return nil, fmt.Errorf("import projects: %w", err)
	}
	if e.Contexts != nil {
		if err := e.Contexts.ReplaceCustom(customContexts); err != nil {
			return nil, fmt.Errorf("import contexts: %w", err)
		}
	}

	if e.Events != nil {
		_ = e.Events.RecordEvent(telemetry.EventSnapshotImported, telemetry.EventMetadata{
			"mode":     string(mode),
			"tasks":    len(tasks),
			"projects": len(projects),
		})
	}

	return &ImportResult{
		Tasks:    len(tasks),
		Projects: len(projects),
		Contexts: len(customContexts),
		Version:  strings.TrimSpace(snap.Version),
	}, nil
}

func mergeTasks(existing, incoming []model.Task) []model.Task {
	seen := make(map[model.TaskID]bool, len(existing))
	out := append([]model.Task{}, existing...)
	for _, t := range existing {
		seen[t.ID] = true
	}
	for _, t := range incoming {
		if t.ID != "" && seen[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func mergeProjects(existing, incoming []model.Project) []model.Project {
	seen := make(map[model.ProjectID]bool, len(existing))
	out := append([]model.Project{}, existing...)
	for _, p := range existing {
		seen[p.ID] = true
	}
	for _, p := range incoming {
		if p.ID != "" && seen[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mergeStrings(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	out := append([]string{}, existing...)
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range incoming {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
