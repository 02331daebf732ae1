package task

import (
	"gtdone/internal/model"
)

// DependenciesMet reports whether every prerequisite of t is complete.
// Ids that no longer resolve to a task count as satisfied, so deleting a
// prerequisite never strands its dependents.
func DependenciesMet(t model.Task, all []model.Task) bool {
	if len(t.WaitingForTaskIDs) == 0 {
		return true
	}
	byID := indexByID(all)
	for _, id := range t.WaitingForTaskIDs {
		dep, ok := byID[id]
		if !ok {
			continue
		}
		if !dep.Completed {
			return false
		}
	}
	return true
}

// PendingDependencies returns the prerequisite tasks of t that are not yet
// complete, in the order they appear on the task.
func PendingDependencies(t model.Task, all []model.Task) []model.Task {
	if len(t.WaitingForTaskIDs) == 0 {
		return nil
	}
	byID := indexByID(all)
	var pending []model.Task
	for _, id := range t.WaitingForTaskIDs {
		dep, ok := byID[id]
		if !ok || dep.Completed {
			continue
		}
		pending = append(pending, dep)
	}
	return pending
}

// WouldCreateCircularDependency reports whether adding the edge
// "dependent waits for prerequisite" would close a cycle. It walks the
// prerequisite's own waiting-for edges breadth-first; reaching the
// dependent means the prerequisite already (transitively) waits on it.
func WouldCreateCircularDependency(all []model.Task, prerequisiteID, dependentID model.TaskID) bool {
	if prerequisiteID == dependentID {
		return true
	}

	byID := indexByID(all)
	visited := map[model.TaskID]bool{prerequisiteID: true}
	queue := []model.TaskID{prerequisiteID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range byID[cur].WaitingForTaskIDs {
			if next == dependentID {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// BlockedTaskIDs returns the ids of uncompleted tasks whose prerequisites
// are not all satisfied. Used by the startup repair pass.
func BlockedTaskIDs(all []model.Task) []model.TaskID {
	var blocked []model.TaskID
	for _, t := range all {
		if t.Completed || len(t.WaitingForTaskIDs) == 0 {
			continue
		}
		if !DependenciesMet(t, all) {
			blocked = append(blocked, t.ID)
		}
	}
	return blocked
}

func indexByID(all []model.Task) map[model.TaskID]model.Task {
	byID := make(map[model.TaskID]model.Task, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	return byID
}
