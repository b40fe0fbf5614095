package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"topm/internal/domain"
	"topm/internal/taskqueue"
)

type App struct {
	Repo   domain.ProductRepository
	Queue  *taskqueue.Queue
	Logger zerolog.Logger
}

func NewApp(repo domain.ProductRepository, queue *taskqueue.Queue, logger zerolog.Logger) *App {
	return &App{Repo: repo, Queue: queue, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
