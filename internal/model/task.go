package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TaskID string

type Status string

const (
	StatusInbox     Status = "inbox"
	StatusNext      Status = "next"
	StatusWaiting   Status = "waiting"
	StatusSomeday   Status = "someday"
	StatusReference Status = "reference"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInbox, StatusNext, StatusWaiting, StatusSomeday, StatusReference:
		return true
	}
	return false
}

// Actionable reports whether tasks in this status show up in working views.
func (s Status) Actionable() bool {
	return s == StatusInbox || s == StatusNext
}

type TaskType string

const (
	TypeTask      TaskType = "task"
	TypeProject   TaskType = "project"
	TypeReference TaskType = "reference"
)

type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

type Subtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

const DateLayout = "2006-01-02"

type Task struct {
	ID          TaskID   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Type        TaskType `json:"type"`

	Contexts     []string `json:"contexts,omitempty"`
	Energy       Energy   `json:"energy,omitempty"`
	TimeEstimate int      `json:"timeEstimate,omitempty"` // minutes

	DueDate   *string `json:"dueDate,omitempty"`   // YYYY-MM-DD
	DeferDate *string `json:"deferDate,omitempty"` // YYYY-MM-DD

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	WaitingForTaskIDs     []TaskID `json:"waitingForTaskIds,omitempty"`
	WaitingForDescription string   `json:"waitingForDescription,omitempty"`

	Recurrence *Recurrence `json:"recurrence,omitempty"`

	Subtasks []Subtask `json:"subtasks,omitempty"`

	ProjectID *ProjectID `json:"projectId,omitempty"`
	Position  int        `json:"position"`
	Starred   bool       `json:"starred"`
	Notes     string     `json:"notes,omitempty"`
	TimeSpent int        `json:"timeSpent,omitempty"` // minutes

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOverdue reports whether the task has a due date in the past and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return strings.TrimSpace(*t.DueDate) < now.Format(DateLayout)
}

// IsDeferred reports whether the task is still hidden behind its defer date.
func (t *Task) IsDeferred(now time.Time) bool {
	if t.DeferDate == nil {
		return false
	}
	return strings.TrimSpace(*t.DeferDate) > now.Format(DateLayout)
}

func (t *Task) HasContext(ctx string) bool {
	for _, c := range t.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

func (t *Task) AddContext(ctx string) {
	if ctx == "" || t.HasContext(ctx) {
		return
	}
	t.Contexts = append(t.Contexts, ctx)
}

// DependsOn reports whether id is listed as a direct prerequisite.
func (t *Task) DependsOn(id TaskID) bool {
	for _, dep := range t.WaitingForTaskIDs {
		if dep == id {
			return true
		}
	}
	return false
}

func (t *Task) MarkComplete(now time.Time) {
	t.Completed = true
	t.CompletedAt = &now
	t.UpdatedAt = now
}

func (t *Task) Reopen(now time.Time) {
	t.Completed = false
	t.CompletedAt = nil
	t.UpdatedAt = now
}

// SubtaskProgress returns completed and total subtask counts.
func (t *Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurYearly  RecurrenceType = "yearly"
)

// NthWeekday names a pattern like "2nd Tuesday" (Nth 1..5, Weekday 0=Sunday).
// Nth of 5 means "last".
type NthWeekday struct {
	Nth     int `json:"nth"`
	Weekday int `json:"weekday"`
}

// Recurrence describes how a completed task regenerates. Weekly recurrences
// use DaysOfWeek (0=Sunday), monthly either DayOfMonth or NthWeekday, yearly
// a fixed Month/Day.
type Recurrence struct {
	Type       RecurrenceType `json:"type"`
	DaysOfWeek []int          `json:"daysOfWeek,omitempty"`
	DayOfMonth int            `json:"dayOfMonth,omitempty"`
	NthWeekday *NthWeekday    `json:"nthWeekday,omitempty"`
	Month      int            `json:"month,omitempty"`
	Day        int            `json:"day,omitempty"`
	EndDate    *string        `json:"endDate,omitempty"` // YYYY-MM-DD
}

// UnmarshalJSON accepts both the structured object form and the legacy bare
// string form ("daily", "weekly", ...). The string form only carries a type;
// marshalling always produces the object form.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		rt := RecurrenceType(strings.ToLower(strings.TrimSpace(s)))
		switch rt {
		case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
			*r = Recurrence{Type: rt}
			return nil
		}
		return fmt.Errorf("unknown recurrence type: %q", s)
	}

	type alias Recurrence
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Recurrence(a)
	return nil
}

func (r *Recurrence) Valid() bool {
	if r == nil {
		return false
	}
	switch r.Type {
	case RecurDaily:
		return true
	case RecurWeekly:
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return false
			}
		}
		return true
	case RecurMonthly:
		if r.NthWeekday != nil {
			return r.NthWeekday.Nth >= 1 && r.NthWeekday.Nth <= 5 &&
				r.NthWeekday.Weekday >= 0 && r.NthWeekday.Weekday <= 6
		}
		return r.DayOfMonth >= 1 && r.DayOfMonth <= 31
	case RecurYearly:
		return r.Month >= 1 && r.Month <= 12 && r.Day >= 1 && r.Day <= 31
	}
	return false
}
