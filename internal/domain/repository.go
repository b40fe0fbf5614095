package domain

import (
	"context"
	"time"
)

// ProductRepository defines persistence for catalog records. List returns
// records newest-first by creation time.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) (string, error)
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, id string, update ProductUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	Search(ctx context.Context, query string) ([]Product, error)
}
