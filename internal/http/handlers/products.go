package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"topm/internal/domain"
)

type productCreateRequest struct {
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	Price          float64                   `json:"price"`
	Currency       string                    `json:"currency"`
	Category       string                    `json:"category"`
	Attributes     []domain.ProductAttribute `json:"attributes"`
	OriginalImages []string                  `json:"original_images"`
}

type productUpdateRequest struct {
	Title          *string                   `json:"title"`
	Description    *string                   `json:"description"`
	Price          *float64                  `json:"price"`
	Currency       *string                   `json:"currency"`
	Category       *string                   `json:"category"`
	Attributes     []domain.ProductAttribute `json:"attributes"`
	OriginalImages []string                  `json:"original_images"`
	Status         *domain.ProductStatus     `json:"status"`
}

func (a *App) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	product := &domain.Product{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Currency:       req.Currency,
		Category:       req.Category,
		Attributes:     req.Attributes,
		OriginalImages: req.OriginalImages,
	}
	id, err := a.Repo.Create(r.Context(), product)
	if err != nil {
		a.Logger.Error().Err(err).Msg("create product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create product")
		return
	}
	created, err := a.Repo.Get(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Str("product_id", id).Msg("reload created product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load product")
		return
	}
	a.json(w, http.StatusCreated, created)
}

func (a *App) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := a.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		a.Logger.Error().Err(err).Str("product_id", id).Msg("get product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load product")
		return
	}
	a.json(w, http.StatusOK, product)
}

// ListProducts lists the catalog; an optional q parameter narrows it to a
// case-insensitive substring match over title, description, and category.
func (a *App) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	products, err := a.Repo.Search(r.Context(), query)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list products failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list products")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

func (a *App) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	update := domain.ProductUpdate{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Currency:       req.Currency,
		Category:       req.Category,
		Attributes:     req.Attributes,
		OriginalImages: req.OriginalImages,
		Status:         req.Status,
	}
	if err := a.Repo.Update(r.Context(), id, update); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		a.Logger.Error().Err(err).Str("product_id", id).Msg("update product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update product")
		return
	}
	product, err := a.Repo.Get(r.Context(), id)
	if err != nil {
		a.Logger.Error().Err(err).Str("product_id", id).Msg("reload updated product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load product")
		return
	}
	a.json(w, http.StatusOK, product)
}

func (a *App) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		a.Logger.Error().Err(err).Str("product_id", id).Msg("delete product failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete product")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) DeleteProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.IDs) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "ids is required")
		return
	}
	if err := a.Repo.DeleteMany(r.Context(), req.IDs); err != nil {
		a.Logger.Error().Err(err).Int("count", len(req.IDs)).Msg("bulk delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete products")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "deleted", "count": len(req.IDs)})
}

// StatsSummary reports catalog totals for the dashboard.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	total, err := a.Repo.Count(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("count products failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	last24h, err := a.Repo.CountCreatedSince(r.Context(), time.Now().Add(-24*time.Hour))
	if err != nil {
		a.Logger.Error().Err(err).Msg("count recent products failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	products, err := a.Repo.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("list products failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	byStatus := map[domain.ProductStatus]int{}
	byCategory := map[string]int{}
	for _, p := range products {
		byStatus[p.Status]++
		if p.Category != "" {
			byCategory[p.Category]++
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_products": total,
		"last_24h":       last24h,
		"by_status":      byStatus,
		"by_category":    byCategory,
	})
}
