package handlers

import (
	"net/http"
)

// Health reports liveness plus the current generation queue depth, so a probe
// can tell an idle process from one stuck mid-drain.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tasks":  len(a.Queue.ListAll()),
	})
}
