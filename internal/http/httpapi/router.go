package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"topm/internal/http/handlers"
	"topm/internal/middleware"
)

func NewRouter(app *handlers.App, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(corsOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/products", func(r chi.Router) {
		r.Get("/", app.ListProducts)
		r.Post("/", app.CreateProduct)
		r.Post("/delete", app.DeleteProducts)
		r.Get("/export", app.ExportProducts)
		r.Get("/stats", app.StatsSummary)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetProduct)
			r.Patch("/", app.UpdateProduct)
			r.Delete("/", app.DeleteProduct)
			r.Post("/generate", app.EnqueueGeneration)
		})
	})

	r.Route("/v1/tasks", func(r chi.Router) {
		r.Get("/", app.ListTasks)
		r.Get("/stream", app.StreamTasks)
		r.Delete("/{id}", app.DismissTask)
	})

	return r
}
