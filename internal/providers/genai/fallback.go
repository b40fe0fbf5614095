package genai

import (
	"fmt"
	"math/rand"
	"strings"

	"topm/internal/domain"
)

// Synthesizer produces plausible-looking synthetic product metadata from
// fixed vocabularies. It is the deterministic substitute used whenever the
// external capability is unavailable or errors: given the same seed it
// produces the same sequence of results, which keeps tests reproducible.
type Synthesizer struct {
	rng *rand.Rand
}

// NewSynthesizer constructs a Synthesizer over its own seeded random source.
func NewSynthesizer(seed int64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewSource(seed))}
}

// FallbackCategories is the fixed category vocabulary the synthesizer draws
// from, a subset of the categories the extraction prompt offers the model.
var FallbackCategories = []string{
	"Electrónica",
	"Ropa y Calzado",
	"Hogar y Muebles",
	"Belleza y Cuidado Personal",
}

var (
	fallbackPrefixes = []string{"Premium", "Clásico", "Nueva Edición", "Más Vendido", "Elegante"}
	fallbackSuffixes = []string{"Diseño Multifuncional", "Calidad Superior", "Estilo Minimalista"}
	fallbackMaterial = []string{"Algodón premium", "Aleación de alta calidad", "Plástico ABS"}
	fallbackColors   = []string{"Negro clásico", "Blanco perla", "Gris espacial"}
	fallbackSizes    = []string{"S/M/L/XL", "Talla única", "25×15×10cm"}
	fallbackWeights  = []string{"150g", "280g", "450g"}
	fallbackOrigins  = []string{"China - Guangdong", "China - Zhejiang"}
	fallbackPacking  = []string{"Caja de regalo", "Caja ecológica"}
	fallbackWarranty = []string{"1 año", "2 años"}
)

// ProductInfo synthesizes one metadata bundle: non-empty title, finite
// positive price, category from FallbackCategories, and exactly eight
// attributes.
func (s *Synthesizer) ProductInfo() domain.ProductInfo {
	prefix := s.pick(fallbackPrefixes)
	suffix := s.pick(fallbackSuffixes)

	return domain.ProductInfo{
		Title: prefix + " - " + suffix,
		Description: fmt.Sprintf(
			"Este producto %s está elaborado con materiales de alta calidad. %s, perfecto para cualquier ocasión.",
			strings.ToLower(prefix), suffix,
		),
		Price:    float64(s.rng.Intn(500)+50) + 0.99,
		Category: s.pick(FallbackCategories),
		Attributes: []domain.ProductAttribute{
			{Key: "Marca", Value: "TOPM"},
			{Key: "Material", Value: s.pick(fallbackMaterial)},
			{Key: "Color", Value: s.pick(fallbackColors)},
			{Key: "Dimensiones", Value: s.pick(fallbackSizes)},
			{Key: "Peso", Value: s.pick(fallbackWeights)},
			{Key: "Origen", Value: s.pick(fallbackOrigins)},
			{Key: "Empaque", Value: s.pick(fallbackPacking)},
			{Key: "Garantía", Value: s.pick(fallbackWarranty)},
		},
	}
}

func (s *Synthesizer) pick(values []string) string {
	return values[s.rng.Intn(len(values))]
}
