package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"topm/internal/domain"
)

type stubSQL struct {
	exec     func(query string, args []any) (pgconn.CommandTag, error)
	queryRow func(query string, args []any) pgx.Row
	query    func(query string, args []any) (pgx.Rows, error)
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.exec == nil {
		return pgconn.CommandTag{}, errors.New("unexpected exec")
	}
	return s.exec(query, args)
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRow == nil {
		return stubRow{}
	}
	return s.queryRow(query, args)
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.query == nil {
		return nil, errors.New("unexpected query")
	}
	return s.query(query, args)
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type stubRows struct {
	rows []func(dest ...any) error
	i    int
	err  error
}

func (r *stubRows) Next() bool {
	if r.i >= len(r.rows) {
		return false
	}
	r.i++
	return true
}

func (r *stubRows) Scan(dest ...any) error { return r.rows[r.i-1](dest...) }

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func productScan(id, title string, attrs string) func(dest ...any) error {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		*(dest[1].(*string)) = title
		*(dest[2].(*string)) = "una descripción"
		*(dest[3].(*float64)) = 19.99
		*(dest[4].(*string)) = "USD"
		*(dest[5].(*string)) = "Hogar y Muebles"
		*(dest[6].(*[]byte)) = []byte(attrs)
		*(dest[7].(*[]byte)) = []byte(`["data:image/jpeg;base64,AA=="]`)
		*(dest[8].(*[]byte)) = nil
		*(dest[9].(*[]byte)) = nil
		*(dest[10].(*[]byte)) = nil
		*(dest[11].(*domain.ProductStatus)) = domain.ProductStatusDraft
		*(dest[12].(*time.Time)) = now
		*(dest[13].(*time.Time)) = now
		return nil
	}
}

func TestGetMapsMissingRowToNotFound(t *testing.T) {
	r := NewProductRepository(&stubSQL{
		queryRow: func(query string, args []any) pgx.Row { return stubRow{} },
	})
	if _, err := r.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDecodesJSONBColumns(t *testing.T) {
	r := NewProductRepository(&stubSQL{
		queryRow: func(query string, args []any) pgx.Row {
			return stubRow{scan: productScan("p1", "Silla", `[{"key":"Color","value":"Negro"}]`)}
		},
	})
	p, err := r.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p.Attributes) != 1 || p.Attributes[0].Value != "Negro" {
		t.Fatalf("attributes = %+v", p.Attributes)
	}
	if len(p.OriginalImages) != 1 {
		t.Fatalf("original images = %+v", p.OriginalImages)
	}
	if p.ProductImages == nil && len(p.ProductImages) != 0 {
		t.Fatalf("product images = %+v", p.ProductImages)
	}
}

func TestCreateDefaultsIDStatusCurrency(t *testing.T) {
	var captured []any
	r := NewProductRepository(&stubSQL{
		exec: func(query string, args []any) (pgconn.CommandTag, error) {
			captured = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	})

	id, err := r.Create(context.Background(), &domain.Product{Title: "Silla"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("no id generated")
	}
	if captured[4] != "USD" {
		t.Fatalf("currency arg = %v, want USD", captured[4])
	}
	if captured[11] != string(domain.ProductStatusDraft) {
		t.Fatalf("status arg = %v, want draft", captured[11])
	}
	if string(captured[6].([]byte)) != "[]" {
		t.Fatalf("attributes arg = %s, want []", captured[6])
	}
	// nil image slices store an empty array, never JSON null
	for i := 7; i <= 10; i++ {
		if string(captured[i].([]byte)) != "[]" {
			t.Fatalf("arg %d = %s, want []", i, captured[i])
		}
	}
}

func TestUpdateKeepsNilFieldsNull(t *testing.T) {
	var captured []any
	r := NewProductRepository(&stubSQL{
		exec: func(query string, args []any) (pgconn.CommandTag, error) {
			captured = args
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	})

	title := "Nuevo título"
	err := r.Update(context.Background(), "p1", domain.ProductUpdate{
		Title:         &title,
		ProductImages: []string{"data:image/jpeg;base64,AA=="},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := captured[1].(*string); *got != title {
		t.Fatalf("title arg = %v", captured[1])
	}
	if captured[2] != (*string)(nil) {
		t.Fatalf("description arg = %v, want nil", captured[2])
	}
	if captured[7] != nil {
		t.Fatalf("original images arg = %v, want nil", captured[7])
	}
	if string(captured[8].([]byte)) != `["data:image/jpeg;base64,AA=="]` {
		t.Fatalf("product images arg = %s", captured[8])
	}
	if captured[11] != nil {
		t.Fatalf("status arg = %v, want nil", captured[11])
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	r := NewProductRepository(&stubSQL{
		exec: func(query string, args []any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	})
	if err := r.Update(context.Background(), "missing", domain.ProductUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListCollectsRows(t *testing.T) {
	r := NewProductRepository(&stubSQL{
		query: func(query string, args []any) (pgx.Rows, error) {
			return &stubRows{rows: []func(dest ...any) error{
				productScan("p1", "Silla", `[]`),
				productScan("p2", "Mesa", `[]`),
			}}, nil
		},
	})
	products, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 || products[0].ID != "p1" || products[1].Title != "Mesa" {
		t.Fatalf("products = %+v", products)
	}
}

func TestSearchEmptyQueryFallsBackToList(t *testing.T) {
	listed := false
	r := NewProductRepository(&stubSQL{
		query: func(query string, args []any) (pgx.Rows, error) {
			listed = len(args) == 0
			return &stubRows{}, nil
		},
	})
	if _, err := r.Search(context.Background(), "   "); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !listed {
		t.Fatal("blank query should use the list query")
	}
}

func TestDeleteManyNoIDsIsNoop(t *testing.T) {
	r := NewProductRepository(&stubSQL{})
	if err := r.DeleteMany(context.Background(), nil); err != nil {
		t.Fatalf("delete many: %v", err)
	}
}
