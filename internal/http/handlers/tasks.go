package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"topm/internal/domain"
)

type generateRequest struct {
	SourceImages []string `json:"source_images"`
}

// EnqueueGeneration queues a background generation run for a product. The
// product's stored originals are used unless the request carries its own
// source images.
func (a *App) EnqueueGeneration(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	product, err := a.Repo.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		a.Logger.Error().Err(err).Str("product_id", productID).Msg("load product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load product")
		return
	}

	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	sources := req.SourceImages
	if len(sources) == 0 {
		sources = product.OriginalImages
	}
	if len(sources) == 0 {
		a.error(w, http.StatusBadRequest, "no_source_images", "product has no source images")
		return
	}

	if err := a.Queue.Enqueue(productID, sources); err != nil {
		if errors.Is(err, domain.ErrTaskActive) {
			a.error(w, http.StatusConflict, "task_active", "generation already running for this product")
			return
		}
		a.Logger.Error().Err(err).Str("product_id", productID).Msg("enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue generation")
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"status": "queued", "product_id": productID})
}

func (a *App) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := a.Queue.ListAll()
	a.json(w, http.StatusOK, map[string]any{"items": tasks, "total": len(tasks)})
}

func (a *App) DismissTask(w http.ResponseWriter, r *http.Request) {
	a.Queue.Dismiss(chi.URLParam(r, "id"))
	a.json(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// StreamTasks pushes task snapshots over server-sent events until the client
// disconnects. Every event carries the full live task list.
func (a *App) StreamTasks(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	snapshots, unsubscribe := a.Queue.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case tasks, open := <-snapshots:
			if !open {
				return
			}
			payload, err := json.Marshal(tasks)
			if err != nil {
				a.Logger.Error().Err(err).Msg("encode task snapshot failed")
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
