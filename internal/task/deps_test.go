package task

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gtdone/internal/model"
)

func depTask(id string, waitsFor ...string) model.Task {
	t := model.Task{ID: model.TaskID(id), Title: id, Status: model.StatusNext}
	for _, w := range waitsFor {
		t.WaitingForTaskIDs = append(t.WaitingForTaskIDs, model.TaskID(w))
	}
	return t
}

func TestDependenciesMet_NoPrereqs(t *testing.T) {
	a := depTask("task_a")
	assert.True(t, DependenciesMet(a, []model.Task{a}))
}

func TestDependenciesMet_IncompletePrereqBlocks(t *testing.T) {
	a := depTask("task_a")
	b := depTask("task_b", "task_a")
	all := []model.Task{a, b}

	assert.False(t, DependenciesMet(b, all))

	a.Completed = true
	all = []model.Task{a, b}
	assert.True(t, DependenciesMet(b, all))
}

func TestDependenciesMet_DeletedPrereqCountsAsSatisfied(t *testing.T) {
	b := depTask("task_b", "task_gone")
	assert.True(t, DependenciesMet(b, []model.Task{b}))
}

func TestPendingDependencies(t *testing.T) {
	a := depTask("task_a")
	b := depTask("task_b")
	b.Completed = true
	c := depTask("task_c", "task_a", "task_b", "task_gone")
	all := []model.Task{a, b, c}

	pending := PendingDependencies(c, all)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, model.TaskID("task_a"), pending[0].ID)
	}
}

func TestWouldCreateCircularDependency_SelfLoop(t *testing.T) {
	a := depTask("task_a")
	assert.True(t, WouldCreateCircularDependency([]model.Task{a}, "task_a", "task_a"))
}

func TestWouldCreateCircularDependency_DirectCycle(t *testing.T) {
	a := depTask("task_a")
	b := depTask("task_b", "task_a") // b waits for a

	// a waiting for b would close a -> b -> a
	all := []model.Task{a, b}
	assert.True(t, WouldCreateCircularDependency(all, "task_b", "task_a"))
}

func TestWouldCreateCircularDependency_TransitiveCycle(t *testing.T) {
	a := depTask("task_a")
	b := depTask("task_b", "task_a")
	c := depTask("task_c", "task_b")
	all := []model.Task{a, b, c}

	// a waiting for c would close a -> b -> c -> a
	assert.True(t, WouldCreateCircularDependency(all, "task_c", "task_a"))

	// c waiting for a is just a parallel edge along the existing direction
	assert.False(t, WouldCreateCircularDependency(all, "task_a", "task_c"))
}

func TestWouldCreateCircularDependency_DiamondIsFine(t *testing.T) {
	a := depTask("task_a")
	b := depTask("task_b", "task_a")
	c := depTask("task_c", "task_a")
	d := depTask("task_d", "task_b")
	all := []model.Task{a, b, c, d}

	// d also waiting on c gives a diamond, not a cycle
	assert.False(t, WouldCreateCircularDependency(all, "task_c", "task_d"))
}

func TestBlockedTaskIDs(t *testing.T) {
	a := depTask("task_a")
	b := depTask("task_b", "task_a")
	c := depTask("task_c", "task_gone")
	d := depTask("task_d", "task_a")
	d.Completed = true
	all := []model.Task{a, b, c, d}

	blocked := BlockedTaskIDs(all)
	assert.Equal(t, []model.TaskID{"task_b"}, blocked)
}
