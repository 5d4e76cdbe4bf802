package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Catalog
		{
			Name:        "nebula_list_images",
			Description: "List the source images in the input directory, sorted by name. This order fixes the numbering used by nebula_export.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "nebula_image_info",
			Description: "Get dimensions, format and alpha-channel presence for a source image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name (as returned by nebula_list_images)",
					},
				},
				"required": []string{"filename"},
			},
		},

		// Settings
		{
			Name:        "nebula_get_settings",
			Description: "Get the global gray threshold window applied to images without an override.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "nebula_set_settings",
			Description: "Set the global gray threshold window. Takes effect immediately for every image without an override.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"min_gray": map[string]interface{}{
						"type":        "integer",
						"description": "Gray value mapped to alpha 0 (0-255)",
					},
					"max_gray": map[string]interface{}{
						"type":        "integer",
						"description": "Gray value mapped to alpha 255 (0-255, >= min_gray)",
					},
				},
				"required": []string{"min_gray", "max_gray"},
			},
		},
		{
			Name:        "nebula_get_image_settings",
			Description: "Get the effective threshold window for one image, and whether it comes from a per-image override.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name",
					},
				},
				"required": []string{"filename"},
			},
		},
		{
			Name:        "nebula_set_image_override",
			Description: "Set a per-image threshold window that takes precedence over the global default for this image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name",
					},
					"min_gray": map[string]interface{}{
						"type":        "integer",
						"description": "Gray value mapped to alpha 0 (0-255)",
					},
					"max_gray": map[string]interface{}{
						"type":        "integer",
						"description": "Gray value mapped to alpha 255 (0-255, >= min_gray)",
					},
				},
				"required": []string{"filename", "min_gray", "max_gray"},
			},
		},
		{
			Name:        "nebula_remove_image_override",
			Description: "Remove a per-image override so the image reverts to the global window. No error if no override exists.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name",
					},
				},
				"required": []string{"filename"},
			},
		},

		// Rendering
		{
			Name:        "nebula_preview",
			Description: "Render a sprite preview with an explicit threshold window and return it as base64 PNG. Nothing is written to disk; omit the window to preview with the image's effective settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name",
					},
					"min_gray": map[string]interface{}{
						"type":        "integer",
						"description": "Gray value mapped to alpha 0 (0-255)",
					},
					"max_gray": map[string]interface{}{
						"type":        "integer",
						"description": "Gray value mapped to alpha 255 (0-255, >= min_gray)",
					},
					"max_edge": map[string]interface{}{
						"type":        "integer",
						"description": "Optional bound on the longer output edge in pixels; 0 renders full size",
						"default":     0,
					},
				},
				"required": []string{"filename"},
			},
		},
		{
			Name:        "nebula_export",
			Description: "Export every catalog image through its effective window to the output directory as nebula_001.png onward, in catalog order. Per-image failures are reported and skipped.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Analysis and cleanup
		{
			Name:        "nebula_suggest_window",
			Description: "Estimate a threshold window from an image's luminance distribution (background/nebula split). Advisory; does not change settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name",
					},
				},
				"required": []string{"filename"},
			},
		},
		{
			Name:        "nebula_clean_artifact",
			Description: "Detect and remove the gray capture artifact from one source image, patching it in place with the surrounding color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Catalog file name",
					},
				},
				"required": []string{"filename"},
			},
		},
		{
			Name:        "nebula_clean_all",
			Description: "Run artifact removal over every image in the input directory. Writes to output_dir when given, otherwise cleans in place.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory for cleaned copies; empty cleans in place",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
