package sprite

import (
	"fmt"
	"image"
	"sort"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/nebulator/internal/settings"
)

// maxAnalysisSamples bounds the number of luminance samples taken from an
// image before clustering. Larger images are sampled on a uniform grid.
const maxAnalysisSamples = 16384

// SuggestWindow estimates a threshold window from the luminance distribution
// of an image. It splits the sampled gray values into two k-means clusters,
// background and nebula, and proposes a window that cuts just above the
// background: min at the 95th percentile of the dark cluster, max at the
// median of the bright cluster.
//
// The suggestion is advisory. It never mutates stored settings, and the
// returned window always satisfies the store's validation rules.
func SuggestWindow(img image.Image) (settings.Window, error) {
	grays := sampleLuminance(img)
	if len(grays) == 0 {
		return settings.Window{}, fmt.Errorf("image has no pixels to analyze")
	}

	uniform := true
	for _, v := range grays[1:] {
		if v != grays[0] {
			uniform = false
			break
		}
	}
	if uniform {
		// Single-valued image: a step window at that value.
		v := uint8(grays[0])
		return settings.Window{MinGray: v, MaxGray: v}, nil
	}

	observations := make(clusters.Observations, len(grays))
	for i, v := range grays {
		observations[i] = clusters.Coordinates{v}
	}

	km := kmeans.New()
	parts, err := km.Partition(observations, 2)
	if err != nil {
		return settings.Window{}, fmt.Errorf("failed to cluster luminance: %w", err)
	}

	dark, bright := parts[0], parts[1]
	if dark.Center[0] > bright.Center[0] {
		dark, bright = bright, dark
	}
	if len(dark.Observations) == 0 || len(bright.Observations) == 0 {
		// Degenerate split; fall back to the overall distribution.
		minSuggest := quantileOf(observations, 0.1)
		maxSuggest := quantileOf(observations, 0.9)
		return settings.Window{MinGray: clampGray(minSuggest), MaxGray: clampGray(maxSuggest)}, nil
	}

	minSuggest := quantileOf(dark.Observations, 0.95)
	maxSuggest := quantileOf(bright.Observations, 0.5)

	minGray := clampGray(minSuggest)
	maxGray := clampGray(maxSuggest)
	if minGray > maxGray {
		minGray = maxGray
	}
	return settings.Window{MinGray: minGray, MaxGray: maxGray}, nil
}

// sampleLuminance collects gray values from img on a uniform grid, visiting
// every pixel for small images and at most maxAnalysisSamples overall.
func sampleLuminance(img image.Image) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}

	step := 1
	for (width/step)*(height/step) > maxAnalysisSamples {
		step++
	}

	grays := make([]float64, 0, (width/step+1)*(height/step+1))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			grays = append(grays, float64(Luminance(uint8(r>>8), uint8(g>>8), uint8(b>>8))))
		}
	}
	return grays
}

// quantileOf returns the empirical p-quantile of a cluster's gray values.
func quantileOf(obs clusters.Observations, p float64) float64 {
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Coordinates()[0]
	}
	sort.Float64s(values)
	return stat.Quantile(p, stat.Empirical, values, nil)
}

func clampGray(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
