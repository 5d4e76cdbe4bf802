// Package server implements the MCP (Model Context Protocol) front end for
// the nebula sprite engine.
//
// This package provides a JSON-RPC 2.0 server that exposes the engine's
// operations as MCP tools, for use from Claude Desktop or any other
// MCP-compatible client.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Catalog:
//   - nebula_list_images: Ordered source image listing
//   - nebula_image_info: Dimensions and format for one image
//
// Settings:
//   - nebula_get_settings / nebula_set_settings: Global threshold window
//   - nebula_get_image_settings: Effective window plus override flag
//   - nebula_set_image_override / nebula_remove_image_override: Per-image windows
//
// Rendering:
//   - nebula_preview: Ephemeral base64 PNG render with an explicit window
//   - nebula_export: Batch export with sequential output naming
//
// Analysis and cleanup:
//   - nebula_suggest_window: Threshold estimation from the luminance histogram
//   - nebula_clean_artifact / nebula_clean_all: Capture-artifact removal
//
// # Error Codes
//
// Engine failures are mapped to distinct JSON-RPC error codes: -32602 for an
// invalid gray window, -32001 for an unknown image, -32002 for an unreadable
// input directory, and -32000 for other execution failures. The underlying
// error text is carried in the error's data field.
package server
