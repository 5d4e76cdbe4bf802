package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/nebulator/internal/catalog"
	"github.com/ironsheep/nebulator/internal/settings"
	"github.com/ironsheep/nebulator/internal/sprite"
)

// writeGrayPNG writes a uniform grayscale PNG into dir.
func writeGrayPNG(t *testing.T, dir, name string, gray uint8, width, height int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: gray})
		}
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func call(t *testing.T, s *Server, tool string, args string) interface{} {
	t.Helper()
	result, err := s.executeTool(tool, json.RawMessage(args))
	if err != nil {
		t.Fatalf("%s failed: %v", tool, err)
	}
	return result
}

func TestListImages(t *testing.T) {
	s, inDir, _ := newTestServer(t)
	writeGrayPNG(t, inDir, "b.png", 10, 2, 2)
	writeGrayPNG(t, inDir, "a.png", 10, 2, 2)

	result := call(t, s, "nebula_list_images", `{}`).(*listImagesResult)
	if len(result.Images) != 2 || result.Images[0] != "a.png" || result.Images[1] != "b.png" {
		t.Errorf("Images: got %v", result.Images)
	}
}

func TestGetSetSettings(t *testing.T) {
	s, _, _ := newTestServer(t)

	got := call(t, s, "nebula_get_settings", `{}`).(settings.Window)
	if got != settings.DefaultWindow {
		t.Errorf("default settings: got %+v", got)
	}

	got = call(t, s, "nebula_set_settings", `{"min_gray":50,"max_gray":200}`).(settings.Window)
	if got.MinGray != 50 || got.MaxGray != 200 {
		t.Errorf("after set: got %+v", got)
	}
}

func TestSetSettings_InvalidRange(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.executeTool("nebula_set_settings", json.RawMessage(`{"min_gray":200,"max_gray":50}`))
	if !errors.Is(err, settings.ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}

	// State unchanged.
	got := call(t, s, "nebula_get_settings", `{}`).(settings.Window)
	if got != settings.DefaultWindow {
		t.Errorf("settings changed after rejected update: %+v", got)
	}
}

func TestImageSettings_OverrideLifecycle(t *testing.T) {
	s, inDir, _ := newTestServer(t)
	writeGrayPNG(t, inDir, "a.png", 10, 2, 2)

	// No override yet: effective settings are global.
	got := call(t, s, "nebula_get_image_settings", `{"filename":"a.png"}`).(*imageSettingsResult)
	if got.IsOverride || got.MinGray != 0 || got.MaxGray != 255 {
		t.Errorf("before override: got %+v", got)
	}

	got = call(t, s, "nebula_set_image_override", `{"filename":"a.png","min_gray":10,"max_gray":200}`).(*imageSettingsResult)
	if !got.IsOverride || got.MinGray != 10 || got.MaxGray != 200 {
		t.Errorf("after override: got %+v", got)
	}

	// The override shields a.png from global changes.
	call(t, s, "nebula_set_settings", `{"min_gray":100,"max_gray":150}`)
	got = call(t, s, "nebula_get_image_settings", `{"filename":"a.png"}`).(*imageSettingsResult)
	if !got.IsOverride || got.MinGray != 10 {
		t.Errorf("override lost after global update: got %+v", got)
	}

	removed := call(t, s, "nebula_remove_image_override", `{"filename":"a.png"}`).(*removeOverrideResult)
	if !removed.Removed {
		t.Errorf("Removed: got %+v", removed)
	}

	got = call(t, s, "nebula_get_image_settings", `{"filename":"a.png"}`).(*imageSettingsResult)
	if got.IsOverride || got.MinGray != 100 || got.MaxGray != 150 {
		t.Errorf("after removal: got %+v", got)
	}

	// Removing again is not an error.
	removed = call(t, s, "nebula_remove_image_override", `{"filename":"a.png"}`).(*removeOverrideResult)
	if removed.Removed {
		t.Errorf("second removal should report nothing removed: %+v", removed)
	}
}

func TestSetImageOverride_UnknownImage(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.executeTool("nebula_set_image_override", json.RawMessage(`{"filename":"ghost.png","min_gray":0,"max_gray":255}`))
	if !errors.Is(err, settings.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetImageSettings_UnknownImage(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.executeTool("nebula_get_image_settings", json.RawMessage(`{"filename":"ghost.png"}`))
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPreview(t *testing.T) {
	s, inDir, _ := newTestServer(t)
	writeGrayPNG(t, inDir, "a.png", 128, 4, 4)

	result := call(t, s, "nebula_preview", `{"filename":"a.png","min_gray":0,"max_gray":255}`).(*previewResult)
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", result.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG payload: %v", err)
	}
	c := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA)
	if c.A != 128 {
		t.Errorf("alpha: got %d, want 128", c.A)
	}
}

func TestPreview_DefaultsToEffectiveWindow(t *testing.T) {
	s, inDir, _ := newTestServer(t)
	writeGrayPNG(t, inDir, "a.png", 128, 4, 4)

	// Override pins the window; a preview without an explicit window uses it.
	call(t, s, "nebula_set_image_override", `{"filename":"a.png","min_gray":0,"max_gray":100}`)

	result := call(t, s, "nebula_preview", `{"filename":"a.png"}`).(*previewResult)
	if result.MinGray != 0 || result.MaxGray != 100 {
		t.Errorf("window: got (%d,%d), want resolved (0,100)", result.MinGray, result.MaxGray)
	}
}

func TestPreview_Errors(t *testing.T) {
	s, inDir, _ := newTestServer(t)
	writeGrayPNG(t, inDir, "a.png", 128, 4, 4)

	_, err := s.executeTool("nebula_preview", json.RawMessage(`{"filename":"ghost.png","min_gray":0,"max_gray":255}`))
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing image: got %v, want ErrNotFound", err)
	}

	_, err = s.executeTool("nebula_preview", json.RawMessage(`{"filename":"a.png","min_gray":300,"max_gray":255}`))
	if !errors.Is(err, settings.ErrInvalidRange) {
		t.Errorf("bad window: got %v, want ErrInvalidRange", err)
	}
}

func TestExport(t *testing.T) {
	s, inDir, outDir := newTestServer(t)
	writeGrayPNG(t, inDir, "a.png", 10, 2, 2)
	writeGrayPNG(t, inDir, "b.png", 20, 2, 2)

	result := call(t, s, "nebula_export", `{}`).(*sprite.ExportResult)
	if len(result.Exported) != 2 || result.Exported[0] != "nebula_001.png" {
		t.Errorf("Exported: got %v", result.Exported)
	}
	if _, err := os.Stat(filepath.Join(outDir, "nebula_002.png")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestImageInfo(t *testing.T) {
	s, inDir, _ := newTestServer(t)
	writeGrayPNG(t, inDir, "a.png", 10, 32, 16)

	info := call(t, s, "nebula_image_info", `{"filename":"a.png"}`).(*sprite.Info)
	if info.Width != 32 || info.Height != 16 || info.Format != "png" {
		t.Errorf("Info: got %+v", info)
	}
}

func TestSuggestWindow(t *testing.T) {
	s, inDir, _ := newTestServer(t)

	// Half dark, half bright.
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(5)
			if x >= 16 {
				v = 220
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(filepath.Join(inDir, "a.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	window := call(t, s, "nebula_suggest_window", `{"filename":"a.png"}`).(settings.Window)
	if window.MinGray > window.MaxGray {
		t.Errorf("invalid suggestion: %+v", window)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid range", fmt.Errorf("wrap: %w", settings.ErrInvalidRange), -32602},
		{"settings not found", fmt.Errorf("wrap: %w", settings.ErrNotFound), -32001},
		{"catalog not found", fmt.Errorf("wrap: %w", catalog.ErrNotFound), -32001},
		{"catalog unavailable", fmt.Errorf("wrap: %w", catalog.ErrUnavailable), -32002},
		{"generic", errors.New("boom"), -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := classifyError(tt.err)
			if code != tt.code {
				t.Errorf("code: got %d, want %d", code, tt.code)
			}
		})
	}
}

func TestExecuteTool_Unknown(t *testing.T) {
	s, _, _ := newTestServer(t)
	if _, err := s.executeTool("nebula_frobnicate", json.RawMessage(`{}`)); err == nil {
		t.Error("unknown tool should fail")
	}
}
