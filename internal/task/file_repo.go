package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gtdone/internal/model"
)

type fileState struct {
	Tasks map[model.TaskID]model.Task `json:"tasks"`
}

// FileRepo is a persistent task repository backed by a single JSON file.
// Every mutation rewrites the whole file; the data set is small enough
// that wholesale persistence beats bookkeeping partial writes.
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
		path: filepath.Join(dataDir, "tasks.json"),
		s:    fileState{Tasks: map[model.TaskID]model.Task{}},
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the backing file, for the data-dir watcher.
func (r *FileRepo) Path() string {
	return r.path
}

// Reload replaces in-memory state with the file's contents. Safe to call
// when another process rewrote the file.
func (r *FileRepo) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.s = fileState{Tasks: map[model.TaskID]model.Task{}}
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Tasks == nil {
		loaded.Tasks = map[model.TaskID]model.Task{}
	}
	r.s = loaded
	return nil
}

// saveLocked writes via a temp file and rename so a crash mid-write never
// leaves a truncated tasks.json.
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

func (r *FileRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	r.s.Tasks[t.ID] = t
	if err := r.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	normalizeTask(&t)
	return t, nil
}

func (r *FileRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if err := applyPatch(&t, p); err != nil {
		return model.Task{}, err
	}
	t.UpdatedAt = time.Now()
	normalizeTask(&t)

	r.s.Tasks[id] = t
	if err := r.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Delete(id model.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.Tasks, id)
	return r.saveLocked()
}

func (r *FileRepo) All() ([]model.Task, error) {
	return r.List(ListFilter{Status: "all"})
}

func (r *FileRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]model.Task, 0, len(r.s.Tasks))
	for _, t := range r.s.Tasks {
		normalizeTask(&t)
		all = append(all, t)
	}
	return filterTasks(all, filter, time.Now()), nil
}

// ReplaceAll swaps the entire task set, used by snapshot import.
func (r *FileRepo) ReplaceAll(tasks []model.Task) error {
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
	r.s.Tasks = next
	return r.saveLocked()
}
