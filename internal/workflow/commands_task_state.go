package workflow

import (
	"fmt"
	"strings"
	"time"

	"gtdone/internal/model"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
)

// task.complete { taskId }
//
// Marks the task done, spawns the next recurrence instance when one is due,
// and runs the waiting sweep so dependents unblock in the same request.
func (h *Handler) cmdTaskComplete(args map[string]any) (any, error) {
	id, err := getString(args, "taskId")
	if err != nil {
		return nil, err
	}

	t, err := h.tasks.Get(model.TaskID(id))
	if err != nil {
		return nil, err
	}
	if t.Completed {
		return map[string]any{"task": t, "alreadyCompleted": true}, nil
	}

	now := time.Now()
	done := true
	t, err = h.tasks.Update(t.ID, task.Patch{Completed: &done})
	if err != nil {
		return nil, err
	}

	h.record(telemetry.EventTaskCompleted, telemetry.EventMetadata{
		"task_id":  string(t.ID),
		"contexts": t.Contexts,
	})

	var spawned *model.Task
	if t.Recurrence != nil {
		if next, ok := task.NextInstance(t, now); ok {
			created, err := h.tasks.Create(next)
			if err != nil {
				return nil, fmt.Errorf("spawn recurrence instance: %w", err)
			}
			spawned = &created
			h.record(telemetry.EventRecurrenceSpawned, telemetry.EventMetadata{
				"source_task_id": string(t.ID),
				"new_task_id":    string(created.ID),
				"due_date":       derefOr(created.DueDate, ""),
			})
		}
	}

	promoted, err := h.sweepWaiting(now)
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"task":     t,
		"promoted": promoted,
	}
	if spawned != nil {
		result["nextInstance"] = spawned
	}
	return result, nil
}

// task.reopen { taskId }
func (h *Handler) cmdTaskReopen(args map[string]any) (any, error) {
	id, err := getString(args, "taskId")
	if err != nil {
		return nil, err
	}

	done := false
	t, err := h.tasks.Update(model.TaskID(id), task.Patch{Completed: &done})
	if err != nil {
		return nil, err
	}

	h.record(telemetry.EventTaskReopened, telemetry.EventMetadata{"task_id": id})
	return map[string]any{"task": t}, nil
}

// task.set_status { taskId, status }
func (h *Handler) cmdTaskSetStatus(args map[string]any) (any, error) {
	id, err := getString(args, "taskId")
	if err != nil {
		return nil, err
	}
	statusRaw, err := getString(args, "status")
	if err != nil {
		return nil, err
	}
	status := model.Status(strings.ToLower(strings.TrimSpace(statusRaw)))
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %s", statusRaw)
	}

	t, err := h.tasks.Update(model.TaskID(id), task.Patch{Status: &status})
	if err != nil {
		return nil, err
	}
	return map[string]any{"task": t}, nil
}

// task.assign_project { taskId, projectId }
//
// Empty projectId clears the assignment. Assigning a project to an inbox
// task promotes it to next (configurable rule).
func (h *Handler) cmdTaskAssignProject(args map[string]any) (any, error) {
	id, err := getString(args, "taskId")
	if err != nil {
		return nil, err
	}
	projectID := strings.TrimSpace(getOptionalString(args, "projectId"))

	if projectID != "" {
		if _, err := h.projects.Get(model.ProjectID(projectID)); err != nil {
			return nil, fmt.Errorf("project %s: %w", projectID, err)
		}
	}

	t, err := h.tasks.Get(model.TaskID(id))
	if err != nil {
		return nil, err
	}

	patch := task.Patch{ProjectID: &projectID}
	promoted := false
	if projectID != "" && t.Status == model.StatusInbox && h.cfg.Rules.PromoteInboxOnProjectAssign {
		next := model.StatusNext
		patch.Status = &next
		promoted = true
	}

	t, err = h.tasks.Update(t.ID, patch)
	if err != nil {
		return nil, err
	}

	return map[string]any{"task": t, "promoted": promoted}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
