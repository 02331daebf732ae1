package project

import (
	"sort"
	"sync"
	"time"

	"gtdone/internal/model"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	projects map[model.ProjectID]model.Project
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{projects: map[model.ProjectID]model.Project{}}
}

func (r *MemoryRepo) Create(p model.Project) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	normalizeProject(&p)

	r.projects[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) Get(id model.ProjectID) (model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	normalizeProject(&p)
	return p, nil
}

func (r *MemoryRepo) Update(id model.ProjectID, patch Patch) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	if err := applyPatch(&p, patch); err != nil {
		return model.Project{}, err
	}
	p.UpdatedAt = time.Now()
	normalizeProject(&p)

	r.projects[id] = p
	return p, nil
}

func (r *MemoryRepo) Delete(id model.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *MemoryRepo) List() ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		normalizeProject(&p)
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (r *MemoryRepo) ReplaceAll(projects []model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[model.ProjectID]model.Project, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			p.ID = newID()
		}
		normalizeProject(&p)
		next[p.ID] = p
	}
	r.projects = next
	return nil
}

func sortProjects(ps []model.Project) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Position != ps[j].Position {
			return ps[i].Position < ps[j].Position
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}
