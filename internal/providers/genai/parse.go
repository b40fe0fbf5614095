package genai

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"topm/internal/domain"
)

// Defaults substituted for absent or malformed metadata fields. The model is
// instructed to answer in Spanish, so the placeholders follow suit.
const (
	defaultTitle    = "Producto sin nombre"
	defaultCategory = "Otros"
	defaultPrice    = 99.9
)

// productInfoPrompt instructs the text model to return a strict JSON product
// description in Spanish for the supplied photos.
const productInfoPrompt = `Eres un experto profesional en operaciones de productos de e-commerce. Observa cuidadosamente estas imágenes del producto y genera la información completa del producto en ESPAÑOL.

Devuelve ESTRICTAMENTE en el siguiente formato JSON, sin ningún otro texto ni marcas markdown:

{
  "title": "Título del producto (10-20 palabras, incluir puntos de venta clave y palabras clave)",
  "description": "Descripción detallada del producto (80-150 palabras, incluir características, materiales, escenarios de uso, ventajas, etc.)",
  "price": número (precio de mercado razonable en USD, sin símbolo de moneda),
  "category": "Categoría del producto (elegir de: Electrónica, Ropa y Calzado, Hogar y Muebles, Belleza y Cuidado Personal, Alimentos y Bebidas, Deportes y Aire Libre, Bebés y Juguetes, Libros y Papelería, Joyería y Accesorios, Automotriz, Otros)",
  "attributes": [
    {"key": "Marca", "value": "marca identificada o estimada"},
    {"key": "Material", "value": "material del producto"},
    {"key": "Color", "value": "color del producto"},
    {"key": "Dimensiones", "value": "tamaño estimado"},
    {"key": "Peso", "value": "peso estimado"},
    {"key": "Origen", "value": "país de origen estimado"},
    {"key": "Empaque", "value": "tipo de empaque"},
    {"key": "Garantía", "value": "período de garantía"}
  ]
}

Requisitos:
1. El título debe ser atractivo, incluir los puntos de venta principales
2. La descripción debe ser detallada y profesional, destacando las ventajas del producto
3. El precio debe ser acorde al mercado para este tipo de producto (en USD)
4. Los atributos deben ser lo más precisos posible, basados en el contenido de las imágenes`

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ParseProductInfo turns a model response into ProductInfo, tolerating code
// fences, surrounding prose, and per-field garbage. Every field defaults
// independently; the function never fails.
func ParseProductInfo(text string) domain.ProductInfo {
	payload := text
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		payload = m[1]
	}
	if obj := firstJSONObject(payload); obj != "" {
		payload = obj
	}

	var fields map[string]json.RawMessage
	_ = json.Unmarshal([]byte(payload), &fields)

	info := domain.ProductInfo{
		Title:      defaultTitle,
		Category:   defaultCategory,
		Price:      defaultPrice,
		Attributes: []domain.ProductAttribute{},
	}

	if title := stringField(fields["title"]); title != "" {
		info.Title = title
	}
	info.Description = stringField(fields["description"])
	if price, ok := priceField(fields["price"]); ok {
		info.Price = price
	}
	if category := stringField(fields["category"]); category != "" {
		info.Category = category
	}
	var attrs []domain.ProductAttribute
	if err := json.Unmarshal(fields["attributes"], &attrs); err == nil && attrs != nil {
		info.Attributes = attrs
	}
	return info
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// priceField accepts a JSON number or a numeric string (models occasionally
// quote the price or append a currency symbol).
func priceField(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(strings.TrimLeft(s, "$€ "))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	return 0, false
}

// firstJSONObject returns the first balanced {...} literal in s, skipping
// brace characters inside string values. Empty when no balanced object
// exists.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
