package sprite

import (
	"image"
	"image/color"
	"math"
)

// Luminance converts 8-bit RGB components to a single grayscale value using
// the ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B), computed in 16.16
// fixed point with rounding. The weights sum to exactly 1<<16, so a gray
// input (r==g==b) maps to itself.
func Luminance(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// MapPixel maps a grayscale value to an alpha value through the threshold
// window (minGray, maxGray):
//
//   - gray <= minGray: 0 (fully transparent)
//   - gray >= maxGray: 255 (fully opaque)
//   - otherwise: round((gray-minGray)/(maxGray-minGray)*255), clamped to [0,255]
//
// A degenerate window with minGray >= maxGray is treated as an opacity cliff:
// gray values at or above minGray map to 255, everything below to 0.
//
// For any fixed window with minGray < maxGray the mapping is monotone
// non-decreasing in gray.
func MapPixel(gray, minGray, maxGray uint8) uint8 {
	if minGray >= maxGray {
		if gray >= minGray {
			return 255
		}
		return 0
	}

	if gray <= minGray {
		return 0
	}
	if gray >= maxGray {
		return 255
	}

	alpha := math.Round(float64(gray-minGray) / float64(maxGray-minGray) * 255)
	if alpha < 0 {
		return 0
	}
	if alpha > 255 {
		return 255
	}
	return uint8(alpha)
}

// MapImage applies MapPixel to every pixel of img and returns the result as a
// non-premultiplied RGBA image. Each output pixel carries the source luminance
// replicated across R, G and B, with the mapped alpha, so partially
// transparent pixels stay neutral gray when composited.
//
// The function is pure: no cross-pixel state, same output for same inputs.
func MapImage(img image.Image, minGray, maxGray uint8) *image.NRGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray := Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			out.SetNRGBA(x, y, color.NRGBA{
				R: gray,
				G: gray,
				B: gray,
				A: MapPixel(gray, minGray, maxGray),
			})
		}
	}
	return out
}
