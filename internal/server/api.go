package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gtdone/internal/contexts"
	"gtdone/internal/model"
	"gtdone/internal/ops"
	"gtdone/internal/project"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
	"gtdone/internal/workflow"
)

// App holds the state the handlers depend on.
type App struct {
	TaskRepo    task.Repo
	TaskHandler *task.Handler
	ProjectRepo project.Repo
	ContextRepo *contexts.FileRepo
	Workflow    *workflow.Handler
	Events      telemetry.Repository
	Exporter    *ops.Exporter

	BootNow time.Time
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// RegisterAPIRoutes wires the JSON API onto the mux.
func RegisterAPIRoutes(mux *http.ServeMux, rr *RouteRegistry, app *App) {
	Handle(mux, rr, "GET /api/tasks", "List tasks (status, project, context, q, available, starred filters)", "", app.TaskHandler.TasksRoot)
	Handle(mux, rr, "POST /api/tasks", "Create task", `{"title":"pay bills","status":"inbox"}`, app.TaskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", app.TaskHandler.TasksSub)
	rr.Add(RouteDoc{Method: "GET|PATCH|DELETE", Pattern: "/api/tasks/{id}", Summary: "Read, patch or delete one task"})
	rr.Add(RouteDoc{Method: "GET", Pattern: "/api/tasks/{id}/calendar.ics", Summary: "iCalendar event for a task with a due date"})

	Handle(mux, rr, "GET /api/projects", "List projects", "", app.projectsRoot)
	Handle(mux, rr, "POST /api/projects", "Create project", `{"title":"kitchen remodel"}`, app.projectsRoot)
	mux.HandleFunc("/api/projects/", app.projectsSub)
	rr.Add(RouteDoc{Method: "GET|PATCH|DELETE", Pattern: "/api/projects/{id}", Summary: "Read, patch or delete one project"})

	Handle(mux, rr, "POST /api/cmd", "Workflow command dispatch", `{"cmd":"dependency.add","args":{"taskId":"task_a","prerequisiteId":"task_b"}}`, app.Workflow.Command)

	Handle(mux, rr, "GET /api/contexts", "List contexts (built-in plus custom)", "", app.contextsRoot)
	Handle(mux, rr, "POST /api/contexts", "Add custom context", `{"context":"@garden"}`, app.contextsRoot)
	Handle(mux, rr, "DELETE /api/contexts", "Remove custom context", `{"context":"@garden"}`, app.contextsRoot)

	Handle(mux, rr, "GET /api/stats", "Usage stats for the last 30 days", "", app.stats)
	Handle(mux, rr, "GET /api/export", "Download snapshot JSON", "", app.exportSnapshot)
	Handle(mux, rr, "POST /api/import", "Upload snapshot JSON (?mode=replace|merge)", "", app.importSnapshot)

	Handle(mux, rr, "GET /api/routes", "This route listing", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, rr.List())
	})
}

func (app *App) projectsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ps, err := app.ProjectRepo.List()
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ps)

	case http.MethodPost:
		var body model.Project
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
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
		p, err := app.ProjectRepo.Create(body)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 201, p)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (app *App) projectsSub(w http.ResponseWriter, r *http.Request) {
	id := model.ProjectID(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/"))
	if id == "" {
		writeErr(w, 400, "project id required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := app.ProjectRepo.Get(id)
		if err != nil {
			app.projectErr(w, err)
			return
		}
		writeJSON(w, 200, p)

	case http.MethodPatch:
		var patch project.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeErr(w, 400, "invalid json")
			return
		}
		p, err := app.ProjectRepo.Update(id, patch)
		if err != nil {
			app.projectErr(w, err)
			return
		}
		writeJSON(w, 200, p)

	case http.MethodDelete:
		if err := app.ProjectRepo.Delete(id); err != nil {
			app.projectErr(w, err)
			return
		}
		// Weak reference: orphaned tasks keep living, their projectId is
		// nulled rather than cascading the delete.
		cleared, err := app.clearProjectRefs(id)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id, "tasksCleared": cleared})

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (app *App) clearProjectRefs(id model.ProjectID) (int, error) {
	all, err := app.TaskRepo.All()
	if err != nil {
		return 0, err
	}
	cleared := 0
	empty := ""
	for _, t := range all {
		if t.ProjectID == nil || *t.ProjectID != id {
			continue
		}
		if _, err := app.TaskRepo.Update(t.ID, task.Patch{ProjectID: &empty}); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

func (app *App) projectErr(w http.ResponseWriter, err error) {
	if errors.Is(err, project.ErrNotFound) {
		writeErr(w, 404, err.Error())
		return
	}
	writeErr(w, 500, err.Error())
}

func (app *App) contextsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, map[string]any{
			"contexts": app.ContextRepo.All(),
			"custom":   app.ContextRepo.Custom(),
		})

	case http.MethodPost, http.MethodDelete:
		var body struct {
			Context string `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeErr(w, 400, "invalid json")
			return
		}
		var err error
		if r.Method == http.MethodPost {
			err = app.ContextRepo.Add(body.Context)
		} else {
			err = app.ContextRepo.Remove(body.Context)
		}
		switch {
		case err == nil:
			writeJSON(w, 200, map[string]any{"contexts": app.ContextRepo.All()})
		case errors.Is(err, contexts.ErrInvalidContext), errors.Is(err, contexts.ErrBuiltIn):
			writeErr(w, 400, err.Error())
		default:
			writeErr(w, 500, err.Error())
		}

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (app *App) stats(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -30)
	events, err := app.Events.GetEvents(since, nil)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, stats)
}

func (app *App) exportSnapshot(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="gtdone-export.json"`)
	if err := app.Exporter.WriteSnapshot(w, now); err != nil {
		// Headers are gone; best effort error payload.
		_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
		return
	}
	if app.Events != nil {
		_ = app.Events.RecordEvent(telemetry.EventSnapshotExported, nil)
	}
}

func (app *App) importSnapshot(w http.ResponseWriter, r *http.Request) {
	mode := ops.ImportMode(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode"))))
	result, err := app.Exporter.ImportSnapshot(r.Body, mode)
	if err != nil {
		writeErr(w, 400, err.Error())
		return
	}
	// Imported tasks may have stale waiting states; repair immediately.
	if _, err := app.Workflow.MigrateBlockedToWaiting(); err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, result)
}
