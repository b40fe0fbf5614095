package imaging

import "image/color"

// Gradient describes a two-stop diagonal background fill.
type Gradient struct {
	From color.RGBA
	To   color.RGBA
}

// Style is one local-synthesis look for a product hero image: a background
// fill plus a photographic tone adjustment applied to the subject.
type Style struct {
	Name       string
	Background color.RGBA
	Gradient   *Gradient
	Brightness float64
	Contrast   float64
	Saturation float64
}

// ProductStyles are the fixed style slots used when the generative capability
// is unavailable. One slot per hero image in the richest pipeline variant.
var ProductStyles = []Style{
	{
		Name:       "pure-white",
		Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
		Brightness: 1.10, Contrast: 1.10, Saturation: 1.05,
	},
	{
		Name: "soft-gradient",
		Gradient: &Gradient{
			From: color.RGBA{0xf5, 0xf7, 0xfa, 0xff},
			To:   color.RGBA{0xc3, 0xcf, 0xe2, 0xff},
		},
		Brightness: 1.05, Contrast: 1.15, Saturation: 1.00,
	},
	{
		Name:       "warm-tone",
		Background: color.RGBA{0xfe, 0xf9, 0xef, 0xff},
		Brightness: 1.08, Contrast: 1.05, Saturation: 1.20,
	},
	{
		Name:       "cool-tone",
		Background: color.RGBA{0xf0, 0xf4, 0xf8, 0xff},
		Brightness: 1.05, Contrast: 1.10, Saturation: 0.90,
	},
	{
		Name:       "high-contrast",
		Background: color.RGBA{0xf8, 0xf8, 0xf8, 0xff},
		Brightness: 1.02, Contrast: 1.30, Saturation: 1.15,
	},
}
