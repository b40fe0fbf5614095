package genai

import (
	"math"
	"reflect"
	"testing"
)

func TestSynthesizerDeterministic(t *testing.T) {
	first := NewSynthesizer(42).ProductInfo()
	second := NewSynthesizer(42).ProductInfo()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different info:\n%+v\n%+v", first, second)
	}
}

func TestSynthesizerProductInfoShape(t *testing.T) {
	s := NewSynthesizer(7)
	for i := 0; i < 20; i++ {
		info := s.ProductInfo()
		if info.Title == "" {
			t.Fatal("empty title")
		}
		if info.Price <= 0 || math.IsNaN(info.Price) || math.IsInf(info.Price, 0) {
			t.Fatalf("bad price %v", info.Price)
		}
		if info.Price < 50.99 || info.Price > 549.99 {
			t.Fatalf("price %v out of range", info.Price)
		}
		if len(info.Attributes) != 8 {
			t.Fatalf("attributes = %d, want 8", len(info.Attributes))
		}
		if info.Attributes[0].Key != "Marca" {
			t.Fatalf("first attribute = %q, want Marca", info.Attributes[0].Key)
		}
		found := false
		for _, category := range FallbackCategories {
			if info.Category == category {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("category %q not in vocabulary", info.Category)
		}
	}
}
