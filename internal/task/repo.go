package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gtdone/internal/model"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)

// Patch represents a partial update.
// nil pointer => "no change"
// empty string for pointer date fields => clear (set to nil)
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
	Type        *model.TaskType `json:"type,omitempty"`

	Contexts     *[]string     `json:"contexts,omitempty"`
	Energy       *model.Energy `json:"energy,omitempty"`
	TimeEstimate *int          `json:"timeEstimate,omitempty"`

	DueDate   *string `json:"dueDate,omitempty"`
	DeferDate *string `json:"deferDate,omitempty"`

	Completed *bool `json:"completed,omitempty"`

	WaitingForTaskIDs     *[]model.TaskID `json:"waitingForTaskIds,omitempty"`
	WaitingForDescription *string         `json:"waitingForDescription,omitempty"`

	Recurrence *model.Recurrence `json:"recurrence,omitempty"`

	Subtasks *[]model.Subtask `json:"subtasks,omitempty"`

	ProjectID *string `json:"projectId,omitempty"` // empty string clears
	Position  *int    `json:"position,omitempty"`
	Starred   *bool   `json:"starred,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	TimeSpent *int    `json:"timeSpent,omitempty"`
}

type ListFilter struct {
	// Status:
	//   "" | "all" | "inbox" | "next" | "waiting" | "someday" | "reference"
	//   | "completed" | "pending" | "due_today" | "overdue" | "upcoming"
	Status string

	// Project:
	//   "" | "any" | "none" | "<project id>"
	Project string

	// Context: "" or an exact context tag, e.g. "@home".
	Context string

	// Search matches title/description/notes, case-insensitive.
	Search string

	// AvailableOnly keeps tasks whose prerequisites are all complete and
	// whose defer date has arrived.
	AvailableOnly bool

	Starred *bool
}

type Repo interface {
	Create(t model.Task) (model.Task, error)
	Get(id model.TaskID) (model.Task, error)
	Update(id model.TaskID, patch Patch) (model.Task, error)
	Delete(id model.TaskID) error
	List(filter ListFilter) ([]model.Task, error)
	All() ([]model.Task, error)

	// ReplaceAll swaps the entire task set, used by snapshot import.
	ReplaceAll(tasks []model.Task) error
}

func newID() model.TaskID {
	return model.TaskID("task_" + uuid.NewString())
}

func normalizeTask(t *model.Task) {
	if t.Status == "" {
		t.Status = model.StatusInbox
	}
	if t.Type == "" {
		t.Type = model.TypeTask
	}
	if t.Contexts == nil {
		t.Contexts = []string{}
	}
	if t.WaitingForTaskIDs == nil {
		t.WaitingForTaskIDs = []model.TaskID{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}
}

func applyPatch(t *model.Task, p Patch) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return ErrInvalidStatus
		}
		t.Status = *p.Status
	}
	if p.Type != nil {
		t.Type = *p.Type
	}

	if p.Contexts != nil {
		if *p.Contexts == nil {
			t.Contexts = []string{}
		} else {
			t.Contexts = *p.Contexts
		}
	}
	if p.Energy != nil {
		t.Energy = *p.Energy
	}
	if p.TimeEstimate != nil {
		t.TimeEstimate = *p.TimeEstimate
	}

	// pointer date fields with "empty clears" semantics
	if p.DueDate != nil {
		if strings.TrimSpace(*p.DueDate) == "" {
			t.DueDate = nil
		} else {
			t.DueDate = p.DueDate
		}
	}
	if p.DeferDate != nil {
		if strings.TrimSpace(*p.DeferDate) == "" {
			t.DeferDate = nil
		} else {
			t.DeferDate = p.DeferDate
		}
	}

	if p.Completed != nil {
		if *p.Completed && !t.Completed {
			now := time.Now()
			t.Completed = true
			t.CompletedAt = &now
		} else if !*p.Completed {
			t.Completed = false
			t.CompletedAt = nil
		}
	}

	if p.WaitingForTaskIDs != nil {
		if *p.WaitingForTaskIDs == nil {
			t.WaitingForTaskIDs = []model.TaskID{}
		} else {
			t.WaitingForTaskIDs = *p.WaitingForTaskIDs
		}
	}
	if p.WaitingForDescription != nil {
		t.WaitingForDescription = *p.WaitingForDescription
	}

	if p.Recurrence != nil {
		if p.Recurrence.Type == "" {
			t.Recurrence = nil
		} else {
			t.Recurrence = p.Recurrence
		}
	}

	if p.Subtasks != nil {
		if *p.Subtasks == nil {
			t.Subtasks = []model.Subtask{}
		} else {
			t.Subtasks = *p.Subtasks
		}
	}

	if p.ProjectID != nil {
		if strings.TrimSpace(*p.ProjectID) == "" {
			t.ProjectID = nil
		} else {
			pid := model.ProjectID(*p.ProjectID)
			t.ProjectID = &pid
		}
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Starred != nil {
		t.Starred = *p.Starred
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.TimeSpent != nil {
		t.TimeSpent = *p.TimeSpent
	}

	return nil
}
