package project

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"gtdone/internal/model"
)

var ErrNotFound = errors.New("project not found")

// Patch is a partial project update; nil means "no change".
type Patch struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *model.ProjectStatus `json:"status,omitempty"`
	Contexts    *[]string            `json:"contexts,omitempty"`
	Position    *int                 `json:"position,omitempty"`
}

type Repo interface {
	Create(p model.Project) (model.Project, error)
	Get(id model.ProjectID) (model.Project, error)
	Update(id model.ProjectID, patch Patch) (model.Project, error)
	Delete(id model.ProjectID) error
	List() ([]model.Project, error)
	ReplaceAll(projects []model.Project) error
}

func newID() model.ProjectID {
	return model.ProjectID("proj_" + uuid.NewString())
}

func normalizeProject(p *model.Project) {
	if p.Status == "" {
		p.Status = model.ProjectActive
	}
	if p.Contexts == nil {
		p.Contexts = []string{}
	}
}

func applyPatch(p *model.Project, patch Patch) error {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return errors.New("invalid project status: " + strings.TrimSpace(string(*patch.Status)))
		}
		p.Status = *patch.Status
	}
	if patch.Contexts != nil {
		if *patch.Contexts == nil {
			p.Contexts = []string{}
		} else {
			p.Contexts = *patch.Contexts
		}
	}
	if patch.Position != nil {
		p.Position = *patch.Position
	}
	return nil
}
