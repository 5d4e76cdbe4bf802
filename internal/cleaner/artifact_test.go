package cleaner

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// newFrame builds a black frame with an optional gray box burned in.
func newFrame(width, height int, box *image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if box != nil && image.Pt(x, y).In(*box) {
				c = color.RGBA{128, 128, 128, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRemoveArtifact_FindsAndPatches(t *testing.T) {
	box := image.Rect(220, 120, 284, 184) // 64x64 in the right third
	img := newFrame(300, 200, &box)

	out, report, err := RemoveArtifact(img, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveArtifact failed: %v", err)
	}
	if !report.Found {
		t.Fatal("artifact should have been found")
	}

	// The report covers at least the original box.
	if report.X1 > box.Min.X || report.Y1 > box.Min.Y || report.X2 < box.Max.X || report.Y2 < box.Max.Y {
		t.Errorf("report box (%d,%d)-(%d,%d) does not cover artifact %v",
			report.X1, report.Y1, report.X2, report.Y2, box)
	}

	// The box center is patched with the surrounding black.
	got := out.RGBAAt(252, 152)
	if got.R > 20 || got.G > 20 || got.B > 20 {
		t.Errorf("patched pixel: got %+v, want near-black", got)
	}
}

func TestRemoveArtifact_InputUntouched(t *testing.T) {
	box := image.Rect(220, 120, 284, 184)
	img := newFrame(300, 200, &box)

	if _, _, err := RemoveArtifact(img, DefaultOptions()); err != nil {
		t.Fatalf("RemoveArtifact failed: %v", err)
	}

	if got := img.RGBAAt(252, 152); got.R != 128 {
		t.Errorf("input image was modified: got %+v", got)
	}
}

func TestRemoveArtifact_CleanImage(t *testing.T) {
	img := newFrame(300, 200, nil)

	out, report, err := RemoveArtifact(img, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveArtifact failed: %v", err)
	}
	if report.Found {
		t.Errorf("no artifact present, but report says found: %+v", report)
	}
	if got := out.RGBAAt(150, 100); got.R != 0 {
		t.Errorf("clean image should pass through unchanged, got %+v", got)
	}
}

func TestRemoveArtifact_IgnoresWrongSize(t *testing.T) {
	tests := []struct {
		name string
		box  image.Rectangle
	}{
		{"too small", image.Rect(280, 180, 290, 190)},
		{"too large", image.Rect(150, 50, 290, 190)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newFrame(300, 200, &tt.box)
			_, report, err := RemoveArtifact(img, DefaultOptions())
			if err != nil {
				t.Fatalf("RemoveArtifact failed: %v", err)
			}
			if report.Found {
				t.Errorf("box %v should not match the artifact profile", tt.box)
			}
		})
	}
}

func TestRemoveArtifact_IgnoresLeftSide(t *testing.T) {
	// Right size, wrong position: well inside the left two thirds.
	box := image.Rect(20, 120, 84, 184)
	img := newFrame(300, 200, &box)

	_, report, err := RemoveArtifact(img, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveArtifact failed: %v", err)
	}
	if report.Found {
		t.Error("artifact detection must be restricted to the right third")
	}
}

func TestRemoveArtifact_PicksRightmostBottom(t *testing.T) {
	// Two candidates; the one nearer the bottom-right corner wins.
	upper := image.Rect(210, 20, 274, 84)
	lower := image.Rect(230, 120, 294, 184)
	img := newFrame(300, 200, &upper)
	for y := lower.Min.Y; y < lower.Max.Y; y++ {
		for x := lower.Min.X; x < lower.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{128, 128, 128, 255})
		}
	}

	out, report, err := RemoveArtifact(img, DefaultOptions())
	if err != nil {
		t.Fatalf("RemoveArtifact failed: %v", err)
	}
	if !report.Found {
		t.Fatal("expected a detection")
	}
	if report.X2 < lower.Max.X {
		t.Errorf("wrong candidate selected: report ends at x=%d, want >= %d", report.X2, lower.Max.X)
	}
	// The upper box stays in place.
	if got := out.RGBAAt(240, 50); got.R != 128 {
		t.Errorf("non-selected candidate was patched: %+v", got)
	}
}

func TestCleanDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	box := image.Rect(220, 120, 284, 184)
	if err := imaging.Save(newFrame(300, 200, &box), filepath.Join(inDir, "dirty.png")); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(newFrame(300, 200, nil), filepath.Join(inDir, "clean.png")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inDir, "broken.png"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := CleanDirectory(inDir, outDir, DefaultOptions())
	if err != nil {
		t.Fatalf("CleanDirectory failed: %v", err)
	}

	if len(result.Cleaned) != 1 || result.Cleaned[0] != "dirty.png" {
		t.Errorf("Cleaned: got %v, want [dirty.png]", result.Cleaned)
	}
	if len(result.Unchanged) != 1 || result.Unchanged[0] != "clean.png" {
		t.Errorf("Unchanged: got %v, want [clean.png]", result.Unchanged)
	}
	if len(result.Errors) != 1 || result.Errors[0].Source != "broken.png" {
		t.Errorf("Errors: got %v, want one entry for broken.png", result.Errors)
	}

	// The cleaned copy landed in outDir with the artifact patched.
	cleaned, err := imaging.Open(filepath.Join(outDir, "dirty.png"))
	if err != nil {
		t.Fatalf("cleaned output missing: %v", err)
	}
	r, _, _, _ := cleaned.At(252, 152).RGBA()
	if r>>8 > 20 {
		t.Errorf("cleaned output still carries the artifact: r=%d", r>>8)
	}

	// Untouched files are not copied to outDir.
	if _, err := os.Stat(filepath.Join(outDir, "clean.png")); !os.IsNotExist(err) {
		t.Errorf("clean.png should not be written to outDir, stat err=%v", err)
	}
}

func TestCleanDirectory_MissingInput(t *testing.T) {
	_, err := CleanDirectory(filepath.Join(t.TempDir(), "missing"), "", DefaultOptions())
	if err == nil {
		t.Error("CleanDirectory should fail for a missing input directory")
	}
}
