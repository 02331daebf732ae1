package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gtdone/internal/model"
)

type fileState struct {
	Projects map[model.ProjectID]model.Project `json:"projects"`
}

// FileRepo persists projects to a single JSON file, rewritten on every
// mutation.
type FileRepo struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "projects.json"),
		s:    fileState{Projects: map[model.ProjectID]model.Project{}},
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.s = fileState{Projects: map[model.ProjectID]model.Project{}}
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Projects == nil {
		loaded.Projects = map[model.ProjectID]model.Project{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func (r *FileRepo) Create(p model.Project) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	normalizeProject(&p)

	r.s.Projects[p.ID] = p
	if err := r.saveLocked(); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *FileRepo) Get(id model.ProjectID) (model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.s.Projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	normalizeProject(&p)
	return p, nil
}

func (r *FileRepo) Update(id model.ProjectID, patch Patch) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.s.Projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	if err := applyPatch(&p, patch); err != nil {
		return model.Project{}, err
	}
	p.UpdatedAt = time.Now()
	normalizeProject(&p)

	r.s.Projects[id] = p
	if err := r.saveLocked(); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func (r *FileRepo) Delete(id model.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.Projects, id)
	return r.saveLocked()
}

func (r *FileRepo) List() ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Project, 0, len(r.s.Projects))
	for _, p := range r.s.Projects {
		normalizeProject(&p)
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (r *FileRepo) ReplaceAll(projects []model.Project) error {
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
	r.s.Projects = next
	return r.saveLocked()
}
