package workflow

import (
	"time"

	"gtdone/internal/model"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
)

// review.sweep {}
//
// Scans waiting tasks and promotes the ones that are no longer waiting on
// anything: prerequisites all satisfied, or a defer date that has arrived,
// or nothing to wait for at all.
func (h *Handler) cmdReviewSweep(_ map[string]any) (any, error) {
	promoted, err := h.sweepWaiting(time.Now())
	if err != nil {
		return nil, err
	}
	h.record(telemetry.EventReviewSweep, telemetry.EventMetadata{
		"promoted": len(promoted),
	})
	return map[string]any{"promoted": promoted}, nil
}

func (h *Handler) sweepWaiting(now time.Time) ([]model.TaskID, error) {
	all, err := h.tasks.All()
	if err != nil {
		return nil, err
	}

	promoted := make([]model.TaskID, 0)
	for _, t := range all {
		if t.Completed || t.Status != model.StatusWaiting {
			continue
		}
		if !shouldPromote(t, all, now) {
			continue
		}

		next := model.StatusNext
		emptyIDs := []model.TaskID{}
		emptyDesc := ""
		patch := task.Patch{
			Status:                &next,
			WaitingForTaskIDs:     &emptyIDs,
			WaitingForDescription: &emptyDesc,
		}
		if _, err := h.tasks.Update(t.ID, patch); err != nil {
			return nil, err
		}
		promoted = append(promoted, t.ID)
		h.record(telemetry.EventWaitingPromoted, telemetry.EventMetadata{
			"task_id": string(t.ID),
		})
	}

	return promoted, nil
}

// shouldPromote implements the waiting -> next policy:
// (a) prerequisites exist and are all satisfied, or
// (b) no prerequisites and the defer date has arrived, or
// (c) no prerequisites, no defer date, and no waiting description.
func shouldPromote(t model.Task, all []model.Task, now time.Time) bool {
	if len(t.WaitingForTaskIDs) > 0 {
		return task.DependenciesMet(t, all)
	}
	if t.DeferDate != nil {
		return !t.IsDeferred(now)
	}
	return t.WaitingForDescription == ""
}

// review.migrate_blocked {}
//
// One-time repair pass: next/someday tasks with unmet prerequisites are
// moved to waiting so blocked work stops showing up as actionable.
func (h *Handler) cmdMigrateBlocked(_ map[string]any) (any, error) {
	migrated, err := h.MigrateBlockedToWaiting()
	if err != nil {
		return nil, err
	}
	return map[string]any{"migrated": migrated}, nil
}

// MigrateBlockedToWaiting is exported for the startup path.
func (h *Handler) MigrateBlockedToWaiting() ([]model.TaskID, error) {
	all, err := h.tasks.All()
	if err != nil {
		return nil, err
	}

	migrated := make([]model.TaskID, 0)
	for _, t := range all {
		if t.Completed {
			continue
		}
		if t.Status != model.StatusNext && t.Status != model.StatusSomeday {
			continue
		}
		if len(t.WaitingForTaskIDs) == 0 || task.DependenciesMet(t, all) {
			continue
		}

		waiting := model.StatusWaiting
		if _, err := h.tasks.Update(t.ID, task.Patch{Status: &waiting}); err != nil {
			return nil, err
		}
		migrated = append(migrated, t.ID)
	}
	return migrated, nil
}

// RunBootTasks performs the configured startup passes.
func (h *Handler) RunBootTasks() error {
	if h.cfg.Review.MigrateBlockedOnBoot {
		if _, err := h.MigrateBlockedToWaiting(); err != nil {
			return err
		}
	}
	if h.cfg.Review.SweepOnBoot {
		if _, err := h.sweepWaiting(time.Now()); err != nil {
			return err
		}
	}
	return nil
}
