package imaging

import (
	"image/color"
	"testing"
)

func TestComposeGridSize(t *testing.T) {
	r := NewRenderer("TOPM")
	cell := testSourceURI(t, 300, 300, color.RGBA{90, 90, 200, 255})
	cells := make([]string, 9)
	for i := range cells {
		cells[i] = cell
	}

	uri, err := r.ComposeGrid(cells, 3)
	if err != nil {
		t.Fatalf("compose grid: %v", err)
	}
	img := decodeResult(t, uri)
	want := 3*500 + 2*4
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Fatalf("grid size %dx%d, want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), want, want)
	}
}

func TestComposeGridPlaceholderForBadCell(t *testing.T) {
	r := NewRenderer("TOPM")
	cell := testSourceURI(t, 300, 300, color.RGBA{240, 240, 240, 255})
	cells := []string{cell, "", "garbage", cell, cell, cell, cell, cell, cell}

	uri, err := r.ComposeGrid(cells, 3)
	if err != nil {
		t.Fatalf("compose grid: %v", err)
	}
	img := decodeResult(t, uri)

	// Second cell starts at x=504; probe its center, which should carry the
	// dark placeholder rather than the light source.
	red, _, _, _ := img.At(504+250, 250).RGBA()
	if red>>8 > 100 {
		t.Fatalf("placeholder cell too bright: r=%d", red>>8)
	}
}

func TestComposeGridTooSmall(t *testing.T) {
	r := NewRenderer("TOPM")
	if _, err := r.ComposeGrid(nil, 1); err == nil {
		t.Fatal("expected error for size 1")
	}
}

func TestComposeGridShortInputStillRenders(t *testing.T) {
	r := NewRenderer("TOPM")
	cell := testSourceURI(t, 300, 300, color.RGBA{200, 200, 200, 255})

	uri, err := r.ComposeGrid([]string{cell}, 3)
	if err != nil {
		t.Fatalf("compose grid: %v", err)
	}
	img := decodeResult(t, uri)
	want := 3*500 + 2*4
	if img.Bounds().Dx() != want {
		t.Fatalf("grid width %d, want %d", img.Bounds().Dx(), want)
	}
}
