package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/nebulator/internal/catalog"
	"github.com/ironsheep/nebulator/internal/cleaner"
	"github.com/ironsheep/nebulator/internal/settings"
	"github.com/ironsheep/nebulator/internal/sprite"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "nebula_preview").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Engine failures map onto distinct JSON-RPC error codes so clients can tell
// bad input from a missing image from an I/O fault.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		code, message := classifyError(err)
		return s.errorResponse(req.ID, code, message, err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// classifyError maps engine sentinel errors onto JSON-RPC error codes.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, settings.ErrInvalidRange):
		return -32602, "Invalid gray window"
	case errors.Is(err, settings.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return -32001, "Image not found"
	case errors.Is(err, catalog.ErrUnavailable):
		return -32002, "Catalog unavailable"
	default:
		return -32000, "Tool execution failed"
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Catalog
	case "nebula_list_images":
		return s.handleListImages(args)
	case "nebula_image_info":
		return s.handleImageInfo(args)

	// Settings
	case "nebula_get_settings":
		return s.handleGetSettings(args)
	case "nebula_set_settings":
		return s.handleSetSettings(args)
	case "nebula_get_image_settings":
		return s.handleGetImageSettings(args)
	case "nebula_set_image_override":
		return s.handleSetImageOverride(args)
	case "nebula_remove_image_override":
		return s.handleRemoveImageOverride(args)

	// Rendering
	case "nebula_preview":
		return s.handlePreview(args)
	case "nebula_export":
		return s.handleExport(args)

	// Analysis and cleanup
	case "nebula_suggest_window":
		return s.handleSuggestWindow(args)
	case "nebula_clean_artifact":
		return s.handleCleanArtifact(args)
	case "nebula_clean_all":
		return s.handleCleanAll(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// requireCatalogEntry resolves name to a catalog path, or fails with
// catalog.ErrNotFound.
func (s *Server) requireCatalogEntry(name string) (string, error) {
	ok, err := s.catalog.Contains(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%q: %w", name, catalog.ErrNotFound)
	}
	return s.catalog.Path(name), nil
}

// === Catalog Handlers ===

type listImagesResult struct {
	Images []string `json:"images"`
}

func (s *Server) handleListImages(args json.RawMessage) (interface{}, error) {
	names, err := s.catalog.List()
	if err != nil {
		return nil, err
	}
	return &listImagesResult{Images: names}, nil
}

type filenameArgs struct {
	Filename string `json:"filename"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a filenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, err := s.requireCatalogEntry(a.Filename)
	if err != nil {
		return nil, err
	}
	info, err := sprite.LoadInfo(s.cache, path)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// === Settings Handlers ===

func (s *Server) handleGetSettings(args json.RawMessage) (interface{}, error) {
	return s.store.Global(), nil
}

type setSettingsArgs struct {
	MinGray int `json:"min_gray"`
	MaxGray int `json:"max_gray"`
}

func (s *Server) handleSetSettings(args json.RawMessage) (interface{}, error) {
	var a setSettingsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.SetGlobal(a.MinGray, a.MaxGray); err != nil {
		return nil, err
	}
	return s.store.Global(), nil
}

type imageSettingsResult struct {
	Filename   string `json:"filename"`
	MinGray    uint8  `json:"min_gray"`
	MaxGray    uint8  `json:"max_gray"`
	IsOverride bool   `json:"is_override"`
}

func (s *Server) handleGetImageSettings(args json.RawMessage) (interface{}, error) {
	var a filenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.requireCatalogEntry(a.Filename); err != nil {
		return nil, err
	}

	window, isOverride := s.store.Resolve(a.Filename)
	return &imageSettingsResult{
		Filename:   a.Filename,
		MinGray:    window.MinGray,
		MaxGray:    window.MaxGray,
		IsOverride: isOverride,
	}, nil
}

type setOverrideArgs struct {
	Filename string `json:"filename"`
	MinGray  int    `json:"min_gray"`
	MaxGray  int    `json:"max_gray"`
}

func (s *Server) handleSetImageOverride(args json.RawMessage) (interface{}, error) {
	var a setOverrideArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.SetOverride(a.Filename, a.MinGray, a.MaxGray); err != nil {
		return nil, err
	}

	window, _ := s.store.Resolve(a.Filename)
	return &imageSettingsResult{
		Filename:   a.Filename,
		MinGray:    window.MinGray,
		MaxGray:    window.MaxGray,
		IsOverride: true,
	}, nil
}

type removeOverrideResult struct {
	Filename string `json:"filename"`
	Removed  bool   `json:"removed"`
}

func (s *Server) handleRemoveImageOverride(args json.RawMessage) (interface{}, error) {
	var a filenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	_, had := s.store.Override(a.Filename)
	if err := s.store.RemoveOverride(a.Filename); err != nil {
		return nil, err
	}
	return &removeOverrideResult{Filename: a.Filename, Removed: had}, nil
}

// === Rendering Handlers ===

type previewArgs struct {
	Filename string `json:"filename"`
	MinGray  int    `json:"min_gray"`
	MaxGray  int    `json:"max_gray"`
	MaxEdge  int    `json:"max_edge"`
}

type previewResult struct {
	Filename    string `json:"filename"`
	MinGray     int    `json:"min_gray"`
	MaxGray     int    `json:"max_gray"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	a := previewArgs{MinGray: -1, MaxGray: -1}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	// Omitted window falls back to the effective (resolved) one.
	if a.MinGray < 0 && a.MaxGray < 0 {
		window, _ := s.store.Resolve(a.Filename)
		a.MinGray = int(window.MinGray)
		a.MaxGray = int(window.MaxGray)
	}

	data, err := s.renderer.RenderScaled(a.Filename, a.MinGray, a.MaxGray, a.MaxEdge)
	if err != nil {
		return nil, err
	}
	return &previewResult{
		Filename:    a.Filename,
		MinGray:     a.MinGray,
		MaxGray:     a.MaxGray,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	result, err := s.exporter.ExportAll()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// === Analysis and Cleanup Handlers ===

func (s *Server) handleSuggestWindow(args json.RawMessage) (interface{}, error) {
	var a filenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, err := s.requireCatalogEntry(a.Filename)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	window, err := sprite.SuggestWindow(img)
	if err != nil {
		return nil, err
	}
	return window, nil
}

type cleanArtifactArgs struct {
	Filename string `json:"filename"`
}

func (s *Server) handleCleanArtifact(args json.RawMessage) (interface{}, error) {
	var a cleanArtifactArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	path, err := s.requireCatalogEntry(a.Filename)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	cleaned, report, err := cleaner.RemoveArtifact(img, cleaner.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if report.Found {
		if err := saveCleaned(cleaned, path); err != nil {
			return nil, err
		}
		// The source changed on disk; the cached decode is stale.
		s.cache.Evict(path)
	}
	return report, nil
}

func saveCleaned(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save cleaned image: %w", err)
	}
	return nil
}

type cleanAllArgs struct {
	OutputDir string `json:"output_dir"`
}

func (s *Server) handleCleanAll(args json.RawMessage) (interface{}, error) {
	var a cleanAllArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	result, err := cleaner.CleanDirectory(s.inputDir, a.OutputDir, cleaner.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if a.OutputDir == "" && len(result.Cleaned) > 0 {
		// In-place cleaning invalidates cached decodes wholesale.
		s.cache.Clear()
	}
	return result, nil
}
