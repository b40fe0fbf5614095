package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"topm/internal/domain"
	"topm/internal/imaging"
	"topm/pkg/zip"
)

// ExportProducts streams a zip with a CSV manifest plus every generated image,
// for the whole catalog or the ids listed in the ids query parameter.
func (a *App) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.exportSelection(r)
	if err != nil {
		a.Logger.Error().Err(err).Msg("load export selection failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load products")
		return
	}
	if len(products) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no products to export")
		return
	}

	entries := []zip.Entry{{Name: "products.csv", Data: productsCSV(products)}}
	for _, p := range products {
		entries = append(entries, imageEntries(p)...)
	}

	archive, err := zip.Archive(entries)
	if err != nil {
		a.Logger.Error().Err(err).Msg("build export archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}

	filename := fmt.Sprintf("catalog-export-%s.zip", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) exportSelection(r *http.Request) ([]domain.Product, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		return a.Repo.List(r.Context())
	}
	products := []domain.Product{}
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		p, err := a.Repo.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func productsCSV(products []domain.Product) []byte {
	buf := &bytes.Buffer{}
	cw := csv.NewWriter(buf)
	_ = cw.Write([]string{"id", "title", "description", "price", "category", "status", "attributes", "created_at"})
	printer := message.NewPrinter(language.EuropeanSpanish)
	for _, p := range products {
		_ = cw.Write([]string{
			p.ID,
			p.Title,
			p.Description,
			formatPrice(printer, p.Currency, p.Price),
			p.Category,
			string(p.Status),
			formatAttributes(p.Attributes),
			p.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	return buf.Bytes()
}

func formatPrice(printer *message.Printer, code string, price float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	return printer.Sprintf("%v", currency.Symbol(unit.Amount(price)))
}

func formatAttributes(attributes []domain.ProductAttribute) string {
	parts := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		parts = append(parts, attr.Key+": "+attr.Value)
	}
	return strings.Join(parts, "; ")
}

func imageEntries(p domain.Product) []zip.Entry {
	entries := []zip.Entry{}
	groups := []struct {
		label string
		uris  []string
	}{
		{"original", p.OriginalImages},
		{"product", p.ProductImages},
		{"effect", p.EffectImages},
		{"grid", p.GridImages},
	}
	for _, group := range groups {
		for i, uri := range group.uris {
			mime, data, err := imaging.DecodeDataURI(uri)
			if err != nil {
				continue
			}
			name := fmt.Sprintf("%s/%s-%02d%s", p.ID, group.label, i+1, extensionFor(mime))
			entries = append(entries, zip.Entry{Name: name, Data: data})
		}
	}
	return entries
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
