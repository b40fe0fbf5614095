package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"topm/internal/domain"
	"topm/internal/imaging"
)

func TestExportProducts(t *testing.T) {
	repo := newMemRepo()
	id, _ := repo.Create(context.Background(), &domain.Product{
		Title:         "Silla nórdica",
		Price:         89.9,
		Currency:      "USD",
		Category:      "Hogar y Muebles",
		ProductImages: []string{imaging.EncodeDataURI("image/jpeg", []byte{0xff, 0xd8, 0xff})},
		Attributes:    []domain.ProductAttribute{{Key: "Color", Value: "Negro"}},
	})
	app := newTestApp(repo, newBlockingRunner())

	rec := httptest.NewRecorder()
	testRouter(app).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}

	reader, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	names := map[string]bool{}
	var manifest *zip.File
	for _, file := range reader.File {
		names[file.Name] = true
		if file.Name == "products.csv" {
			manifest = file
		}
	}
	if manifest == nil {
		t.Fatalf("no manifest in archive: %v", names)
	}
	if !names[id+"/product-01.jpg"] {
		t.Fatalf("missing image entry, archive has %v", names)
	}

	rc, err := manifest.Open()
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer rc.Close()
	records, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("csv rows = %d, want header + 1", len(records))
	}
	if records[1][1] != "Silla nórdica" {
		t.Fatalf("csv title = %q", records[1][1])
	}
	if !strings.Contains(records[1][3], "89") {
		t.Fatalf("csv price = %q", records[1][3])
	}
}

func TestExportProductsEmptyCatalog(t *testing.T) {
	app := newTestApp(newMemRepo(), newBlockingRunner())
	rec := httptest.NewRecorder()
	testRouter(app).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/export", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestExportProductsSelection(t *testing.T) {
	repo := newMemRepo()
	a, _ := repo.Create(context.Background(), &domain.Product{Title: "A"})
	_, _ = repo.Create(context.Background(), &domain.Product{Title: "B"})
	app := newTestApp(repo, newBlockingRunner())

	rec := httptest.NewRecorder()
	testRouter(app).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/export?ids="+a, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	reader, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	for _, file := range reader.File {
		if file.Name != "products.csv" {
			t.Fatalf("unexpected entry %q for single product without images", file.Name)
		}
	}
}
