package workflow

import (
	"errors"
	"fmt"

	"gtdone/internal/config"
	"gtdone/internal/project"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
)

var (
	ErrSelfDependency = errors.New("a task cannot depend on itself")
	ErrWouldCycle     = errors.New("dependency would create a cycle")
	ErrUnknownTask    = errors.New("unknown task")
)

// Handler executes workflow commands. All dependency-graph and status
// mutations funnel through here so the cycle check and transition rules
// cannot be bypassed.
type Handler struct {
	tasks    task.Repo
	projects project.Repo
	events   telemetry.Repository
	cfg      *config.Config
}

func NewHandler(tasks task.Repo, projects project.Repo, events telemetry.Repository, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{tasks: tasks, projects: projects, events: events, cfg: cfg}
}

// Execute dispatches a command by name.
func (h *Handler) Execute(cmd string, args map[string]any) (any, error) {
	switch cmd {
	case "task.complete":
		return h.cmdTaskComplete(args)
	case "task.reopen":
		return h.cmdTaskReopen(args)
	case "task.set_status":
		return h.cmdTaskSetStatus(args)
	case "task.assign_project":
		return h.cmdTaskAssignProject(args)
	case "dependency.add":
		return h.cmdDependencyAdd(args)
	case "dependency.remove":
		return h.cmdDependencyRemove(args)
	case "review.sweep":
		return h.cmdReviewSweep(args)
	case "review.migrate_blocked":
		return h.cmdMigrateBlocked(args)
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd)
	}
}

func (h *Handler) record(t telemetry.EventType, metadata telemetry.EventMetadata) {
	if h.events == nil {
		return
	}
	_ = h.events.RecordEvent(t, metadata)
}

// Helper to get string from args
func getString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required field: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s must be a string", key)
	}
	return s, nil
}

func getOptionalString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
