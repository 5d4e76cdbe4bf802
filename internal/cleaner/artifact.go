package cleaner

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// Options controls artifact detection and patching.
type Options struct {
	// TargetColor is the artifact's nominal color.
	TargetColor color.RGBA

	// MaxDistance is the maximum CIE-Lab distance from TargetColor for a
	// pixel to count as part of the artifact.
	MaxDistance float64

	// MinSize and MaxSize bound the artifact's edge length in pixels. The
	// bounds are applied with 20% slack to tolerate ragged edges.
	MinSize int
	MaxSize int

	// ExpandBy grows the detected box before patching, to catch
	// anti-aliased edge pixels.
	ExpandBy int

	// Padding is the width of the surrounding ring sampled for the patch
	// color.
	Padding int
}

// DefaultOptions returns the detection parameters tuned for the known
// artifact: a roughly 64px #808080 box in the right third of the frame.
func DefaultOptions() Options {
	return Options{
		TargetColor: color.RGBA{R: 128, G: 128, B: 128, A: 255},
		MaxDistance: 0.06,
		MinSize:     50,
		MaxSize:     70,
		ExpandBy:    2,
		Padding:     10,
	}
}

// Report describes the outcome of an artifact removal pass.
type Report struct {
	// Found indicates whether an artifact was detected and patched.
	Found bool `json:"found"`

	// X1, Y1, X2, Y2 are the bounds of the patched region (after
	// expansion). Zero when Found is false.
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	// PatchColor is the fill color used, as "#RRGGBB". Empty when Found is
	// false.
	PatchColor string `json:"patch_color,omitempty"`
}

// RemoveArtifact searches img for the capture artifact and returns a copy
// with the artifact patched over. The input image is never modified. When no
// artifact matches, the returned report has Found false and the copy is
// pixel-identical to the input.
func RemoveArtifact(img image.Image, opts Options) (*image.RGBA, *Report, error) {
	out := clone.AsRGBA(img)
	bounds := out.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return out, &Report{}, nil
	}

	target, ok := colorful.MakeColor(opts.TargetColor)
	if !ok {
		return nil, nil, fmt.Errorf("target color must be opaque")
	}

	mask := buildMask(out, target, opts.MaxDistance)
	boxes := findComponents(mask, width, height)
	boxes = filterBoxes(boxes, width, opts)
	if len(boxes) == 0 {
		return out, &Report{}, nil
	}

	box := selectRightmostBottom(boxes)
	patch := surroundColor(out, box, opts)

	expanded := box.Inset(-opts.ExpandBy).Intersect(image.Rect(0, 0, width, height))
	for y := expanded.Min.Y; y < expanded.Max.Y; y++ {
		for x := expanded.Min.X; x < expanded.Max.X; x++ {
			out.SetRGBA(x, y, patch)
		}
	}

	return out, &Report{
		Found:      true,
		X1:         expanded.Min.X,
		Y1:         expanded.Min.Y,
		X2:         expanded.Max.X,
		Y2:         expanded.Max.Y,
		PatchColor: fmt.Sprintf("#%02X%02X%02X", patch.R, patch.G, patch.B),
	}, nil
}

// buildMask marks every pixel within maxDist of the target color.
func buildMask(img *image.RGBA, target colorful.Color, maxDist float64) []bool {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	mask := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c, ok := colorful.MakeColor(img.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y))
			if ok && c.DistanceLab(target) <= maxDist {
				mask[y*width+x] = true
			}
		}
	}
	return mask
}

// findComponents returns the bounding box of every 4-connected component of
// set mask pixels, using an iterative flood fill.
func findComponents(mask []bool, width, height int) []image.Rectangle {
	visited := make([]bool, len(mask))
	var boxes []image.Rectangle

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		box := image.Rect(start%width, start/width, start%width+1, start/width+1)
		stack := []int{start}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[idx] || !mask[idx] {
				continue
			}
			visited[idx] = true

			x, y := idx%width, idx/width
			box = box.Union(image.Rect(x, y, x+1, y+1))

			if x > 0 {
				stack = append(stack, idx-1)
			}
			if x < width-1 {
				stack = append(stack, idx+1)
			}
			if y > 0 {
				stack = append(stack, idx-width)
			}
			if y < height-1 {
				stack = append(stack, idx+width)
			}
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// filterBoxes keeps boxes whose dimensions fall in the size range (with 20%
// slack) and that overlap the right third of the image.
func filterBoxes(boxes []image.Rectangle, width int, opts Options) []image.Rectangle {
	rightThird := width * 2 / 3
	minSize := float64(opts.MinSize) * 0.8
	maxSize := float64(opts.MaxSize) * 1.2

	var kept []image.Rectangle
	for _, box := range boxes {
		w := float64(box.Dx())
		h := float64(box.Dy())
		if w < minSize || w > maxSize || h < minSize || h > maxSize {
			continue
		}
		centerX := (box.Min.X + box.Max.X) / 2
		if box.Max.X < rightThird && centerX < rightThird {
			continue
		}
		kept = append(kept, box)
	}
	return kept
}

// selectRightmostBottom picks the candidate closest to the bottom-right
// corner, ordering by right edge first, bottom edge second.
func selectRightmostBottom(boxes []image.Rectangle) image.Rectangle {
	best := boxes[0]
	for _, box := range boxes[1:] {
		if box.Max.X > best.Max.X || (box.Max.X == best.Max.X && box.Max.Y > best.Max.Y) {
			best = box
		}
	}
	return best
}

// surroundColor returns the dominant color of the ring of pixels around box,
// Padding wide, excluding the box itself. Falls back to the target color if
// the box covers the whole image.
func surroundColor(img *image.RGBA, box image.Rectangle, opts Options) color.RGBA {
	bounds := img.Bounds()
	sample := box.Inset(-opts.Padding).Intersect(bounds)

	var ring []color.RGBA
	for y := sample.Min.Y; y < sample.Max.Y; y++ {
		for x := sample.Min.X; x < sample.Max.X; x++ {
			if image.Pt(x, y).In(box) {
				continue
			}
			ring = append(ring, img.RGBAAt(x, y))
		}
	}
	if len(ring) == 0 {
		return opts.TargetColor
	}

	// Lay the ring out as a strip so the palette extractor can chew on it.
	strip := image.NewRGBA(image.Rect(0, 0, len(ring), 1))
	for i, c := range ring {
		strip.SetRGBA(i, 0, c)
	}
	found := dominantcolor.Find(strip)
	found.A = 255
	return found
}
