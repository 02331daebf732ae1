package contexts

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrInvalidContext = errors.New("context must start with @")
	ErrBuiltIn        = errors.New("built-in contexts cannot be removed")
)

// DefaultContexts ships with the app; users add their own on top.
var DefaultContexts = []string{"@home", "@office", "@errands", "@calls", "@computer"}

// FileRepo stores user-defined context tags in a JSON file alongside the
// task data.
type FileRepo struct {
	mu     sync.RWMutex
	path   string
	custom []string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{path: filepath.Join(dataDir, "contexts.json")}
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
			r.custom = []string{}
			return nil
		}
		return err
	}

	var loaded []string
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	r.custom = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.custom, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// All returns built-in plus custom contexts, sorted.
func (r *FileRepo) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]string{}, DefaultContexts...)
	out = append(out, r.custom...)
	sort.Strings(out)
	return out
}

// Custom returns only the user-defined contexts.
func (r *FileRepo) Custom() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.custom...)
}

func (r *FileRepo) Add(ctx string) error {
	ctx = strings.TrimSpace(ctx)
	if !strings.HasPrefix(ctx, "@") || len(ctx) < 2 {
		return ErrInvalidContext
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range DefaultContexts {
		if c == ctx {
			return nil
		}
	}
	for _, c := range r.custom {
		if c == ctx {
			return nil
		}
	}
	r.custom = append(r.custom, ctx)
	return r.saveLocked()
}

func (r *FileRepo) Remove(ctx string) error {
	ctx = strings.TrimSpace(ctx)
	for _, c := range DefaultContexts {
		if c == ctx {
			return ErrBuiltIn
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.custom))
	for _, c := range r.custom {
		if c != ctx {
			out = append(out, c)
		}
	}
	r.custom = out
	return r.saveLocked()
}

// ReplaceCustom swaps the custom context list, used by snapshot import.
func (r *FileRepo) ReplaceCustom(ctxs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(ctxs))
	for _, c := range ctxs {
		c = strings.TrimSpace(c)
		if strings.HasPrefix(c, "@") && len(c) >= 2 {
			out = append(out, c)
		}
	}
	r.custom = out
	return r.saveLocked()
}
