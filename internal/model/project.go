package model

import "time"

type ProjectID string

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectSomeday  ProjectStatus = "someday"
	ProjectArchived ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectSomeday, ProjectArchived:
		return true
	}
	return false
}

// Project groups tasks. Tasks reference a project by id; the reference is
// weak, deleting a project nulls the task's projectId.
type Project struct {
	ID          ProjectID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Contexts    []string      `json:"contexts,omitempty"`
	Position    int           `json:"position"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Project) Archive(now time.Time) {
	p.Status = ProjectArchived
	p.UpdatedAt = now
}

func (p *Project) Unarchive(now time.Time) {
	p.Status = ProjectActive
	p.UpdatedAt = now
}
