package task

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gtdone/internal/model"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]model.Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[model.TaskID]model.Task{}}
}

func (r *MemoryRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	normalizeTask(&t)
	return t, nil
}

func (r *MemoryRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if err := applyPatch(&t, p); err != nil {
		return model.Task{}, err
	}
	t.UpdatedAt = time.Now()
	normalizeTask(&t)

	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) Delete(id model.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepo) ReplaceAll(tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[model.TaskID]model.Task, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = newID()
		}
		normalizeTask(&t)
		next[t.ID] = t
	}
	r.tasks = next
	return nil
}

func (r *MemoryRepo) All() ([]model.Task, error) {
	return r.List(ListFilter{Status: "all"})
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		normalizeTask(&t)
		all = append(all, t)
	}
	return filterTasks(all, filter, time.Now()), nil
}

// filterTasks applies a ListFilter to a task snapshot. Shared between the
// memory and file repos so both stay in agreement about filter semantics.
func filterTasks(all []model.Task, filter ListFilter, now time.Time) []model.Task {
	today := now.Format(model.DateLayout)
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	project := strings.TrimSpace(filter.Project)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]model.Task, 0, len(all))
	for _, t := range all {
		switch status {
		case "", "all":
		case "pending":
			if t.Completed {
				continue
			}
		case "completed":
			if !t.Completed {
				continue
			}
		case "due_today":
			if t.Completed || t.DueDate == nil || *t.DueDate != today {
				continue
			}
		case "overdue":
			if t.Completed || t.DueDate == nil || *t.DueDate >= today {
				continue
			}
		case "upcoming":
			if t.Completed || t.DueDate == nil || *t.DueDate <= today {
				continue
			}
		default:
			if t.Completed || string(t.Status) != status {
				continue
			}
		}

		switch strings.ToLower(project) {
		case "", "any":
		case "none":
			if t.ProjectID != nil {
				continue
			}
		default:
			if t.ProjectID == nil || string(*t.ProjectID) != project {
				continue
			}
		}

		if filter.Context != "" && !t.HasContext(filter.Context) {
			continue
		}

		if filter.Starred != nil && t.Starred != *filter.Starred {
			continue
		}

		if filter.AvailableOnly {
			if t.Completed || t.IsDeferred(now) || !DependenciesMet(t, all) {
				continue
			}
		}

		if search != "" {
			haystack := strings.ToLower(t.Title + " " + t.Description + " " + t.Notes)
			if !strings.Contains(haystack, search) {
				continue
			}
		}

		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di == nil && dj == nil:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case *di != *dj:
			return *di < *dj
		default:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
	})

	return out
}
