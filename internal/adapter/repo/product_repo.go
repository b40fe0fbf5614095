package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"topm/internal/domain"
	"topm/internal/infra"
	"topm/internal/sqlinline"
)

// ProductRepositoryPG implements domain.ProductRepository on PostgreSQL.
// Attribute lists and image sets are stored as JSONB.
type ProductRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProductRepository creates a product repository on top of a SQL executor.
func NewProductRepository(sql infra.SQLExecutor) *ProductRepositoryPG {
	return &ProductRepositoryPG{sql: sql}
}

// Create inserts a new product record and returns its id. A missing id is
// generated; missing status defaults to draft.
func (r *ProductRepositoryPG) Create(ctx context.Context, product *domain.Product) (string, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Status == "" {
		product.Status = domain.ProductStatusDraft
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}

	_, err := r.sql.Exec(ctx, sqlinline.QInsertProduct,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.Currency,
		product.Category,
		encodeJSON(product.Attributes),
		encodeJSON(product.OriginalImages),
		encodeJSON(product.ProductImages),
		encodeJSON(product.EffectImages),
		encodeJSON(product.GridImages),
		string(product.Status),
	)
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	return product.ID, nil
}

// Get fetches a product by its identifier.
func (r *ProductRepositoryPG) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := scanProduct(r.sql.QueryRow(ctx, sqlinline.QSelectProductByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List returns all products, newest first.
func (r *ProductRepositoryPG) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListProducts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Update applies a partial update; nil fields keep their stored values.
func (r *ProductRepositoryPG) Update(ctx context.Context, id string, update domain.ProductUpdate) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateProduct,
		id,
		update.Title,
		update.Description,
		update.Price,
		update.Currency,
		update.Category,
		encodeJSONOptional(update.Attributes),
		encodeJSONOptional(update.OriginalImages),
		encodeJSONOptional(update.ProductImages),
		encodeJSONOptional(update.EffectImages),
		encodeJSONOptional(update.GridImages),
		statusText(update.Status),
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a product record.
func (r *ProductRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteProduct, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMany removes a batch of product records; missing ids are ignored.
func (r *ProductRepositoryPG) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QDeleteProducts, ids); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

// Count returns the total number of products.
func (r *ProductRepositoryPG) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountProducts).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// CountCreatedSince returns how many products were created at or after the
// given instant.
func (r *ProductRepositoryPG) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.sql.QueryRow(ctx, sqlinline.QCountProductsSince, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products since: %w", err)
	}
	return count, nil
}

// Search matches the query as a case-insensitive substring of title,
// description, or category. An empty query lists everything.
func (r *ProductRepositoryPG) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	rows, err := r.sql.Query(ctx, sqlinline.QSearchProducts, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p              domain.Product
		attributes     []byte
		originalImages []byte
		productImages  []byte
		effectImages   []byte
		gridImages     []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Price,
		&p.Currency,
		&p.Category,
		&attributes,
		&originalImages,
		&productImages,
		&effectImages,
		&gridImages,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Attributes = decodeJSON[[]domain.ProductAttribute](attributes)
	p.OriginalImages = decodeJSON[[]string](originalImages)
	p.ProductImages = decodeJSON[[]string](productImages)
	p.EffectImages = decodeJSON[[]string](effectImages)
	p.GridImages = decodeJSON[[]string](gridImages)
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// encodeJSON stores nil and unmarshalable values as an empty array, never
// JSON null. A nil slice arrives as a typed non-nil any, so the slice cases
// are checked explicitly.
func encodeJSON(v any) []byte {
	switch s := v.(type) {
	case nil:
		return []byte("[]")
	case []string:
		if s == nil {
			return []byte("[]")
		}
	case []domain.ProductAttribute:
		if s == nil {
			return []byte("[]")
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("[]")
	}
	return b
}

// encodeJSONOptional keeps nil slices as SQL NULL so coalesce preserves the
// stored value.
func encodeJSONOptional(v any) any {
	switch s := v.(type) {
	case []string:
		if s == nil {
			return nil
		}
	case []domain.ProductAttribute:
		if s == nil {
			return nil
		}
	}
	return encodeJSON(v)
}

func statusText(status *domain.ProductStatus) any {
	if status == nil {
		return nil
	}
	return string(*status)
}

// decodeJSON tolerates NULL and malformed stored payloads by returning the
// zero slice.
func decodeJSON[T any](data []byte) T {
	var out T
	if len(data) == 0 {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}
