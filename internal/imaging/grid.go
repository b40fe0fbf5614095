package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

const (
	gridCellSize     = 500
	gridGap          = 4
	gridCornerRadius = 6
	gridJPEGQuality  = 90
)

var (
	gridBackground  = color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	gridPlaceholder = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
)

// ComposeGrid tiles size*size cell images into one square canvas with small
// uniform gaps. Each cell is cover-cropped to fill exactly and corner-rounded;
// a cell whose image fails to decode becomes a solid placeholder instead of
// aborting the composite. A faint watermark spans the bottom. Returns a JPEG
// data URI.
func (r *Renderer) ComposeGrid(cells []string, size int) (string, error) {
	if size < 2 {
		return "", fmt.Errorf("compose grid: size %d too small", size)
	}
	total := size*gridCellSize + (size-1)*gridGap
	canvas := image.NewRGBA(image.Rect(0, 0, total, total))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{gridBackground}, image.Point{}, draw.Src)

	mask := roundedRectMask(gridCellSize, gridCellSize, gridCornerRadius)

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			idx := row*size + col
			if idx >= len(cells) {
				break
			}
			x := col * (gridCellSize + gridGap)
			y := row * (gridCellSize + gridGap)
			rect := image.Rect(x, y, x+gridCellSize, y+gridCellSize)

			img, err := decodeSource(cells[idx])
			if err != nil {
				draw.Draw(canvas, rect, &image.Uniform{gridPlaceholder}, image.Point{}, draw.Src)
				continue
			}
			cell := scaleToCover(img, gridCellSize, gridCellSize)
			draw.DrawMask(canvas, rect, cell, image.Point{}, mask, image.Point{}, draw.Over)
		}
	}

	wmHeight := total * 3 / 100
	drawWatermark(canvas, r.watermark+" PHOTO", color.White, 0.04, wmHeight, total/2, total-20)
	return encodeJPEGDataURI(canvas, gridJPEGQuality)
}

// scaleToCover center-crops img to the target aspect ratio and scales it to
// fill w x h exactly.
func scaleToCover(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	targetRatio := float64(w) / float64(h)
	srcRatio := float64(sw) / float64(sh)
	crop := b
	if srcRatio > targetRatio {
		cw := int(float64(sh) * targetRatio)
		offset := (sw - cw) / 2
		crop = image.Rect(b.Min.X+offset, b.Min.Y, b.Min.X+offset+cw, b.Max.Y)
	} else if srcRatio < targetRatio {
		ch := int(float64(sw) / targetRatio)
		offset := (sh - ch) / 2
		crop = image.Rect(b.Min.X, b.Min.Y+offset, b.Max.X, b.Min.Y+offset+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, xdraw.Src, nil)
	return dst
}

// roundedRectMask builds an alpha mask for a w x h rectangle with rounded
// corners of the given radius.
func roundedRectMask(w, h, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r2 := radius * radius
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inside := true
			var dx, dy int
			switch {
			case x < radius && y < radius:
				dx, dy = radius-x, radius-y
			case x >= w-radius && y < radius:
				dx, dy = x-(w-radius-1), radius-y
			case x < radius && y >= h-radius:
				dx, dy = radius-x, y-(h-radius-1)
			case x >= w-radius && y >= h-radius:
				dx, dy = x-(w-radius-1), y-(h-radius-1)
			default:
				dx, dy = 0, 0
			}
			if dx*dx+dy*dy > r2 {
				inside = false
			}
			if inside {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return mask
}
