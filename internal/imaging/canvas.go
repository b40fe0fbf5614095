package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // source photos may arrive as PNG
	"math"
	"math/rand"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// CanvasSize is the square output dimension of every locally synthesized
	// image, matching the generative capability's hero format.
	CanvasSize = 1000

	canvasPadding = 60
	jpegQuality   = 92
)

// Renderer performs local image synthesis: the deterministic fallback used
// whenever the external generative capability is unavailable or fails.
type Renderer struct {
	watermark string
}

// NewRenderer constructs a Renderer with the given watermark tag.
func NewRenderer(watermark string) *Renderer {
	if watermark == "" {
		watermark = "TOPM"
	}
	return &Renderer{watermark: watermark}
}

// ProductImage composes a styled hero shot: background fill, centered
// scale-to-fit subject with a drop shadow and tone filter, faint watermark.
// The featured source rotates round-robin by slot so consecutive slots show
// different uploads. Output is a JPEG data URI.
func (r *Renderer) ProductImage(sources []string, style Style, slot int) (string, error) {
	if len(sources) == 0 {
		return "", fmt.Errorf("product image: %w", errNoSources)
	}
	src, err := decodeSource(sources[slot%len(sources)])
	if err != nil {
		return "", fmt.Errorf("product image slot %d: %w", slot, err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	if style.Gradient != nil {
		fillLinearGradient(canvas, style.Gradient.From, style.Gradient.To)
	} else {
		draw.Draw(canvas, canvas.Bounds(), &image.Uniform{style.Background}, image.Point{}, draw.Src)
	}

	fit := CanvasSize - 2*canvasPadding
	subject := scaleToFit(src, fit, fit)
	applyTone(subject, style.Brightness, style.Contrast, style.Saturation)

	w, h := subject.Bounds().Dx(), subject.Bounds().Dy()
	x := (CanvasSize - w) / 2
	y := (CanvasSize - h) / 2
	drawShadow(canvas, image.Rect(x, y, x+w, y+h), 10, 0.15)
	draw.Draw(canvas, image.Rect(x, y, x+w, y+h), subject, image.Point{}, draw.Over)

	drawWatermark(canvas, r.watermark, color.Black, 0.06, 36, CanvasSize/2, 960)
	return encodeJPEGDataURI(canvas, jpegQuality)
}

// effectPalettes are the radial background stops for the two lifestyle-scene
// slots: a warm earthy set and a cool slate set.
var effectPalettes = [2][3]color.RGBA{
	{{0xfa, 0xf5, 0xef, 0xff}, {0xf0, 0xe8, 0xda, 0xff}, {0xd4, 0xc5, 0xa9, 0xff}},
	{{0xe8, 0xed, 0xf5, 0xff}, {0xd0, 0xd8, 0xe8, 0xff}, {0xa8, 0xb5, 0xcc, 0xff}},
}

var effectAccents = [2]color.RGBA{
	{0xc8, 0x9b, 0x5c, 0xff},
	{0x6b, 0x8c, 0xc7, 0xff},
}

// EffectImage composes a lifestyle scene from up to two source images. The
// layout mirrors between slots (main subject offset right/left, secondary
// inset on the opposite side). Slot selects the palette and is also the seed
// for the decorative accents, keeping output reproducible.
func (r *Renderer) EffectImage(sources []string, slot int) (string, error) {
	if len(sources) == 0 {
		return "", fmt.Errorf("effect image: %w", errNoSources)
	}
	main, err := decodeSource(sources[0])
	if err != nil {
		return "", fmt.Errorf("effect image slot %d: %w", slot, err)
	}

	palette := effectPalettes[slot%len(effectPalettes)]
	accent := effectAccents[slot%len(effectAccents)]

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	fillRadialGradient(canvas, palette, 100, 700)

	rng := rand.New(rand.NewSource(int64(slot) + 1))
	for i := 0; i < 6; i++ {
		cx := rng.Float64() * CanvasSize
		cy := rng.Float64() * CanvasSize
		radius := 50 + rng.Float64()*200
		drawCircle(canvas, cx, cy, radius, accent, 0.05)
	}

	subject := scaleToFit(main, 600, 600)
	w, h := subject.Bounds().Dx(), subject.Bounds().Dy()
	offsetX := 80
	if slot%2 != 0 {
		offsetX = -30
	}
	x := (CanvasSize-w)/2 + offsetX
	y := (CanvasSize-h)/2 - 20
	drawShadow(canvas, image.Rect(x, y, x+w, y+h), 15, 0.25)
	draw.Draw(canvas, image.Rect(x, y, x+w, y+h), subject, image.Point{}, draw.Over)

	if len(sources) > 1 {
		if sec, err := decodeSource(sources[1]); err == nil {
			inset := scaleToFit(sec, 280, 280)
			sx := 650
			if slot%2 != 0 {
				sx = 80
			}
			rect := image.Rect(sx, 620, sx+inset.Bounds().Dx(), 620+inset.Bounds().Dy())
			drawWithAlpha(canvas, rect, inset, 0.85)
		}
	}

	drawWatermark(canvas, r.watermark+" PHOTO", color.Black, 0.08, 48, CanvasSize/2, 950)
	return encodeJPEGDataURI(canvas, jpegQuality)
}

// Blank renders the style's background with only the watermark. Last-resort
// output when no source image can be decoded; keeps result bundles complete
// and well-formed.
func (r *Renderer) Blank(style Style) string {
	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	if style.Gradient != nil {
		fillLinearGradient(canvas, style.Gradient.From, style.Gradient.To)
	} else {
		draw.Draw(canvas, canvas.Bounds(), &image.Uniform{style.Background}, image.Point{}, draw.Src)
	}
	drawWatermark(canvas, r.watermark, color.Black, 0.06, 36, CanvasSize/2, 960)
	uri, err := encodeJPEGDataURI(canvas, jpegQuality)
	if err != nil {
		return ""
	}
	return uri
}

var errNoSources = fmt.Errorf("no source images")

func decodeSource(uri string) (image.Image, error) {
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func encodeJPEGDataURI(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return EncodeDataURI("image/jpeg", buf.Bytes()), nil
}

// scaleToFit uniformly scales img so it fits inside maxW x maxH, preserving
// aspect ratio. Arbitrary aspect ratios are handled by letterboxing at the
// caller (the result is simply smaller along one axis).
func scaleToFit(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	scale := math.Min(float64(maxW)/float64(sw), float64(maxH)/float64(sh))
	dw := int(math.Round(float64(sw) * scale))
	dh := int(math.Round(float64(sh) * scale))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func fillLinearGradient(dst *image.RGBA, from, to color.RGBA) {
	b := dst.Bounds()
	span := float64(b.Dx() + b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x+y) / span
			dst.SetRGBA(x, y, lerpRGBA(from, to, t))
		}
	}
}

func fillRadialGradient(dst *image.RGBA, stops [3]color.RGBA, innerR, outerR float64) {
	b := dst.Bounds()
	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			t := (d - innerR) / (outerR - innerR)
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			var c color.RGBA
			if t < 0.5 {
				c = lerpRGBA(stops[0], stops[1], t*2)
			} else {
				c = lerpRGBA(stops[1], stops[2], (t-0.5)*2)
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 0xff,
	}
}

// applyTone applies brightness/contrast/saturation in place.
func applyTone(img *image.RGBA, brightness, contrast, saturation float64) {
	if brightness == 0 {
		brightness = 1
	}
	if contrast == 0 {
		contrast = 1
	}
	if saturation == 0 {
		saturation = 1
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			r := float64(c.R) * brightness
			g := float64(c.G) * brightness
			bl := float64(c.B) * brightness

			r = (r-128)*contrast + 128
			g = (g-128)*contrast + 128
			bl = (bl-128)*contrast + 128

			luma := 0.299*r + 0.587*g + 0.114*bl
			r = luma + (r-luma)*saturation
			g = luma + (g-luma)*saturation
			bl = luma + (bl-luma)*saturation

			img.SetRGBA(x, y, color.RGBA{clamp8(r), clamp8(g), clamp8(bl), c.A})
		}
	}
}

// drawShadow approximates a blurred drop shadow with a stack of expanding
// translucent rectangles offset below the subject.
func drawShadow(dst *image.RGBA, rect image.Rectangle, offsetY int, alpha float64) {
	layers := 3
	for i := layers; i >= 1; i-- {
		grow := i * 8
		layer := image.Rect(rect.Min.X-grow, rect.Min.Y-grow+offsetY, rect.Max.X+grow, rect.Max.Y+grow+offsetY)
		a := alpha / float64(layers+1)
		blendRect(dst, layer, color.RGBA{0, 0, 0, 0xff}, a)
	}
}

func blendRect(dst *image.RGBA, rect image.Rectangle, c color.RGBA, alpha float64) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.SetRGBA(x, y, blendPixel(dst.RGBAAt(x, y), c, alpha))
		}
	}
}

func drawCircle(dst *image.RGBA, cx, cy, radius float64, c color.RGBA, alpha float64) {
	minX := int(cx - radius)
	maxX := int(cx + radius)
	minY := int(cy - radius)
	maxY := int(cy + radius)
	bounds := dst.Bounds()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			if math.Hypot(float64(x)-cx, float64(y)-cy) > radius {
				continue
			}
			dst.SetRGBA(x, y, blendPixel(dst.RGBAAt(x, y), c, alpha))
		}
	}
}

func blendPixel(dst, src color.RGBA, alpha float64) color.RGBA {
	inv := 1 - alpha
	return color.RGBA{
		R: clamp8(float64(src.R)*alpha + float64(dst.R)*inv),
		G: clamp8(float64(src.G)*alpha + float64(dst.G)*inv),
		B: clamp8(float64(src.B)*alpha + float64(dst.B)*inv),
		A: 0xff,
	}
}

// drawWithAlpha draws src into rect with uniform opacity.
func drawWithAlpha(dst *image.RGBA, rect image.Rectangle, src image.Image, alpha float64) {
	mask := image.NewUniform(color.Alpha{A: uint8(alpha * 255)})
	draw.DrawMask(dst, rect, src, src.Bounds().Min, mask, image.Point{}, draw.Over)
}

// drawWatermark renders text with the basicfont face, upscales it to the
// requested pixel height, and blends it centered horizontally with the given
// opacity. bottom is the target baseline on dst.
func drawWatermark(dst *image.RGBA, text string, col color.Color, alpha float64, height, centerX, bottom int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	if width <= 0 || height <= 0 {
		return
	}

	strip := image.NewRGBA(image.Rect(0, 0, width, face.Height))
	drawer := &font.Drawer{
		Dst:  strip,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(text)

	scale := float64(height) / float64(face.Height)
	sw := int(float64(width) * scale)
	scaled := image.NewRGBA(image.Rect(0, 0, sw, height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), strip, strip.Bounds(), xdraw.Src, nil)

	rect := image.Rect(centerX-sw/2, bottom-height, centerX-sw/2+sw, bottom)
	drawWithAlpha(dst, rect, scaled, alpha)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
