package workflow

import (
	"encoding/json"
	"errors"
	"net/http"

	"gtdone/internal/project"
	"gtdone/internal/task"
)

// CommandRequest is the request body for POST /api/cmd.
type CommandRequest struct {
	Cmd  string         `json:"cmd"`
	Args map[string]any `json:"args"`
}

// CommandResponse is the response for POST /api/cmd.
type CommandResponse struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Command handles POST /api/cmd.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "invalid json")
		return
	}

	result, err := h.Execute(req.Cmd, req.Args)
	if err != nil {
		writeJSON(w, statusFor(err), CommandResponse{
			OK:    false,
			Error: err.Error(),
		})
		return
	}

	writeJSON(w, 200, CommandResponse{OK: true, Result: result})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrWouldCycle), errors.Is(err, ErrSelfDependency):
		return http.StatusConflict
	case errors.Is(err, task.ErrNotFound), errors.Is(err, project.ErrNotFound), errors.Is(err, ErrUnknownTask):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
