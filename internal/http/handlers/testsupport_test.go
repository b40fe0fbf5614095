package handlers

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"topm/internal/domain"
	"topm/internal/pipeline"
	"topm/internal/taskqueue"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newMemRepo() *memRepo {
	return &memRepo{products: make(map[string]*domain.Product)}
}

func (m *memRepo) Create(ctx context.Context, p *domain.Product) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusDraft
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	clone := *p
	m.products[p.ID] = &clone
	return p.ID, nil
}

func (m *memRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memRepo) List(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id string, update domain.ProductUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.Attributes != nil {
		p.Attributes = update.Attributes
	}
	if update.OriginalImages != nil {
		p.OriginalImages = update.OriginalImages
	}
	if update.ProductImages != nil {
		p.ProductImages = update.ProductImages
	}
	if update.EffectImages != nil {
		p.EffectImages = update.EffectImages
	}
	if update.GridImages != nil {
		p.GridImages = update.GridImages
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memRepo) DeleteMany(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.products, id)
	}
	return nil
}

func (m *memRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func (m *memRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.products {
		if !p.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	all, _ := m.List(ctx)
	if strings.TrimSpace(query) == "" {
		return all, nil
	}
	needle := strings.ToLower(query)
	out := []domain.Product{}
	for _, p := range all {
		haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Category)
		if strings.Contains(haystack, needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	result  *domain.GenerationResult
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		result:  &domain.GenerationResult{Title: "Listo", Price: 10},
	}
}

func (r *blockingRunner) Run(ctx context.Context, sources []string, onProgress pipeline.ProgressFunc) (*domain.GenerationResult, error) {
	r.started <- struct{}{}
	<-r.release
	return r.result, nil
}

func newTestApp(repo domain.ProductRepository, runner taskqueue.Runner) *App {
	queue := taskqueue.New(context.Background(), runner, repo, taskqueue.Options{DismissAfter: time.Hour})
	return NewApp(repo, queue, zerolog.New(io.Discard))
}

func testRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/products", app.ListProducts)
	r.Post("/v1/products", app.CreateProduct)
	r.Post("/v1/products/delete", app.DeleteProducts)
	r.Get("/v1/products/export", app.ExportProducts)
	r.Get("/v1/products/stats", app.StatsSummary)
	r.Get("/v1/products/{id}", app.GetProduct)
	r.Patch("/v1/products/{id}", app.UpdateProduct)
	r.Delete("/v1/products/{id}", app.DeleteProduct)
	r.Post("/v1/products/{id}/generate", app.EnqueueGeneration)
	r.Get("/v1/tasks", app.ListTasks)
	r.Get("/v1/tasks/stream", app.StreamTasks)
	r.Delete("/v1/tasks/{id}", app.DismissTask)
	return r
}
