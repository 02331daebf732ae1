package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"gtdone/internal/config"
	"gtdone/internal/contexts"
	"gtdone/internal/httpmw"
	"gtdone/internal/ops"
	"gtdone/internal/project"
	"gtdone/internal/task"
	"gtdone/internal/telemetry"
	"gtdone/internal/workflow"
)

type Options struct {
	Config  *config.Config
	DataDir string
	Logger  *log.Logger
}

// Build assembles the application: file repos, workflow handler, routes,
// middleware. It returns the handler plus the app so callers can reach the
// repos (the data-dir watcher and ops tooling need them).
func Build(opts Options) (http.Handler, *App, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.Server.DataDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	taskRepo, err := task.NewFileRepo(opts.DataDir)
	if err != nil {
		return nil, nil, err
	}
	projectRepo, err := project.NewFileRepo(opts.DataDir)
	if err != nil {
		return nil, nil, err
	}
	contextRepo, err := contexts.NewFileRepo(opts.DataDir)
	if err != nil {
		return nil, nil, err
	}
	events := telemetry.NewMemoryRepository()

	wf := workflow.NewHandler(taskRepo, projectRepo, events, opts.Config)
	if err := wf.RunBootTasks(); err != nil {
		return nil, nil, err
	}

	taskHandler := task.NewHandler(taskRepo)
	taskHandler.SetPriorityWeights(opts.Config.Priority)
	taskHandler.SetEventRecorder(events)

	app := &App{
		TaskRepo:    taskRepo,
		TaskHandler: taskHandler,
		ProjectRepo: projectRepo,
		ContextRepo: contextRepo,
		Workflow:    wf,
		Events:      events,
		Exporter: &ops.Exporter{
			Tasks:    taskRepo,
			Projects: projectRepo,
			Contexts: contextRepo,
			Events:   events,
		},
		BootNow: time.Now(),
	}

	mux := http.NewServeMux()
	rr := &RouteRegistry{}
	RegisterAPIRoutes(mux, rr, app)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "gtdone",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ready": true,
			"boot":  app.BootNow.UTC().Format(time.RFC3339),
		})
	})

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRecover(opts.Logger),
	)

	return handler, app, nil
}
