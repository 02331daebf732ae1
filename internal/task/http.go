package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gtdone/internal/model"
	"gtdone/internal/telemetry"
)

type Handler struct {
	repo    Repo
	weights PriorityWeights
	events  telemetry.Repository
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo, weights: DefaultPriorityWeights()}
}

func (h *Handler) SetPriorityWeights(w PriorityWeights) {
	h.weights = w
}

func (h *Handler) SetEventRecorder(r telemetry.Repository) {
	h.events = r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func parseBoolPtr(s string) *bool {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "1", "true", "yes":
		b := true
		return &b
	case "0", "false", "no":
		b := false
		return &b
	}
	return nil
}

// TaskView is a task plus derived fields the UI renders next to it.
type TaskView struct {
	model.Task
	Available     bool         `json:"available"`
	Overdue       bool         `json:"overdue"`
	PriorityScore int          `json:"priorityScore"`
	BlockedBy     []model.Task `json:"blockedBy,omitempty"`
}

func (h *Handler) viewOf(t model.Task, all []model.Task, now time.Time) TaskView {
	return TaskView{
		Task:          t,
		Available:     !t.Completed && !t.IsDeferred(now) && DependenciesMet(t, all),
		Overdue:       t.IsOverdue(now),
		PriorityScore: PriorityScore(t, all, now, h.weights),
		BlockedBy:     PendingDependencies(t, all),
	}
}

// TasksRoot handles /api/tasks (collection).
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		available := parseBoolPtr(q.Get("available"))
		filter := ListFilter{
			Status:        q.Get("status"),
			Project:       q.Get("project"),
			Context:       q.Get("context"),
			Search:        q.Get("q"),
			AvailableOnly: available != nil && *available,
			Starred:       parseBoolPtr(q.Get("starred")),
		}
		ts, err := h.repo.List(filter)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		all, err := h.repo.All()
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		now := time.Now()
		views := make([]TaskView, 0, len(ts))
		for _, t := range ts {
			views = append(views, h.viewOf(t, all, now))
		}
		writeJSON(w, 200, views)

	case http.MethodPost:
		var body model.Task
		if err := decodeJSON(r, &body); err != nil {
			writeErr(w, 400, "invalid json")
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			writeErr(w, 400, "title is required")
			return
		}
		if body.Status != "" && !body.Status.Valid() {
			writeErr(w, 400, "invalid status: "+string(body.Status))
			return
		}
		if body.Recurrence != nil && !body.Recurrence.Valid() {
			writeErr(w, 400, "invalid recurrence")
			return
		}
		// Dependency edges only enter through the workflow command endpoint
		// where the cycle check is enforced.
		body.WaitingForTaskIDs = nil
		body.Completed = false
		body.CompletedAt = nil

		t, err := h.repo.Create(body)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		if h.events != nil {
			_ = h.events.RecordEvent(telemetry.EventTaskCreated, telemetry.EventMetadata{
				"task_id": string(t.ID),
				"status":  string(t.Status),
			})
		}
		writeJSON(w, 201, t)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

// TasksSub handles /api/tasks/{id} and /api/tasks/{id}/calendar.ics.
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id := model.TaskID(parts[0])
	if id == "" {
		writeErr(w, 400, "task id required")
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "calendar.ics":
			h.taskCalendar(w, r, id)
		default:
			writeErr(w, 404, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.repo.Get(id)
		if err != nil {
			h.repoErr(w, err)
			return
		}
		all, err := h.repo.All()
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, h.viewOf(t, all, time.Now()))

	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, 400, "invalid json")
			return
		}
		// Same enforcement boundary as on create.
		p.WaitingForTaskIDs = nil
		t, err := h.repo.Update(id, p)
		if err != nil {
			h.repoErr(w, err)
			return
		}
		writeJSON(w, 200, t)

	case http.MethodDelete:
		if err := h.repo.Delete(id); err != nil {
			h.repoErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (h *Handler) taskCalendar(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	t, err := h.repo.Get(id)
	if err != nil {
		h.repoErr(w, err)
		return
	}
	ics, err := BuildTaskCalendarICS(t, time.Now())
	if err != nil {
		writeErr(w, 400, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="task.ics"`)
	_, _ = w.Write([]byte(ics))
}

func (h *Handler) repoErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeErr(w, 404, err.Error())
	case errors.Is(err, ErrInvalidStatus):
		writeErr(w, 400, err.Error())
	default:
		writeErr(w, 500, err.Error())
	}
}
