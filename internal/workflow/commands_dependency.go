package workflow

import (
	"errors"
	"fmt"

	"gtdone/internal/model"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
)

// dependency.add { taskId, prerequisiteId }
//
// The only path that adds a dependency edge. The cycle check runs against
// the current snapshot before the edge is written, so an acyclic graph stays
// acyclic no matter what callers do.
func (h *Handler) cmdDependencyAdd(args map[string]any) (any, error) {
	dependentID, err := getString(args, "taskId")
	if err != nil {
		return nil, err
	}
	prereqID, err := getString(args, "prerequisiteId")
	if err != nil {
		return nil, err
	}

	if dependentID == prereqID {
		h.recordRejected(dependentID, prereqID, "self")
		return nil, ErrSelfDependency
	}

	dependent, err := h.tasks.Get(model.TaskID(dependentID))
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, dependentID)
		}
		return nil, err
	}
	prereq, err := h.tasks.Get(model.TaskID(prereqID))
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, prereqID)
		}
		return nil, err
	}

	if dependent.DependsOn(prereq.ID) {
		return map[string]any{"task": dependent, "alreadyPresent": true}, nil
	}

	all, err := h.tasks.All()
	if err != nil {
		return nil, err
	}
	if task.WouldCreateCircularDependency(all, prereq.ID, dependent.ID) {
		h.recordRejected(dependentID, prereqID, "cycle")
		return nil, ErrWouldCycle
	}

	ids := append(append([]model.TaskID{}, dependent.WaitingForTaskIDs...), prereq.ID)
	patch := task.Patch{WaitingForTaskIDs: &ids}

	// Gaining a prerequisite makes a next/someday task waiting.
	demoted := false
	if h.cfg.Rules.DemoteOnDependencyAdd &&
		(dependent.Status == model.StatusNext || dependent.Status == model.StatusSomeday) {
		waiting := model.StatusWaiting
		patch.Status = &waiting
		demoted = true
	}

	updated, err := h.tasks.Update(dependent.ID, patch)
	if err != nil {
		return nil, err
	}

	h.record(telemetry.EventDependencyAdded, telemetry.EventMetadata{
		"task_id":         dependentID,
		"prerequisite_id": prereqID,
	})

	return map[string]any{"task": updated, "demoted": demoted}, nil
}

// dependency.remove { taskId, prerequisiteId }
func (h *Handler) cmdDependencyRemove(args map[string]any) (any, error) {
	dependentID, err := getString(args, "taskId")
	if err != nil {
		return nil, err
	}
	prereqID, err := getString(args, "prerequisiteId")
	if err != nil {
		return nil, err
	}

	dependent, err := h.tasks.Get(model.TaskID(dependentID))
	if err != nil {
		return nil, err
	}

	ids := make([]model.TaskID, 0, len(dependent.WaitingForTaskIDs))
	for _, id := range dependent.WaitingForTaskIDs {
		if id != model.TaskID(prereqID) {
			ids = append(ids, id)
		}
	}

	updated, err := h.tasks.Update(dependent.ID, task.Patch{WaitingForTaskIDs: &ids})
	if err != nil {
		return nil, err
	}
	return map[string]any{"task": updated}, nil
}

func (h *Handler) recordRejected(taskID, prereqID, reason string) {
	h.record(telemetry.EventDependencyRejected, telemetry.EventMetadata{
		"task_id":         taskID,
		"prerequisite_id": prereqID,
		"reason":          reason,
	})
}
