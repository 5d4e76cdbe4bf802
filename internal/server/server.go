package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/nebulator/internal/catalog"
	"github.com/ironsheep/nebulator/internal/settings"
	"github.com/ironsheep/nebulator/internal/sprite"
)

// Config holds the locations the engine works with.
type Config struct {
	// InputDir is the source image directory. The engine only reads from it,
	// except for explicit in-place artifact cleaning.
	InputDir string

	// OutputDir is where exported sprites are written.
	OutputDir string

	// SettingsPath is the durable settings document. Defaults to
	// "nebulator.json" in the working directory when empty.
	SettingsPath string
}

// Server handles MCP protocol communication and owns the engine components.
type Server struct {
	inputDir string
	catalog  *catalog.Catalog
	store    *settings.Store
	cache    *sprite.Cache
	renderer *sprite.Renderer
	exporter *sprite.Exporter
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server instance, loading persisted settings from disk.
func New(cfg Config) (*Server, error) {
	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		settingsPath = "nebulator.json"
	}

	cat := catalog.New(cfg.InputDir)
	store, err := settings.Open(settingsPath, cat)
	if err != nil {
		return nil, err
	}

	cache := sprite.NewCache()
	return &Server{
		inputDir: cfg.InputDir,
		catalog:  cat,
		store:    store,
		cache:    cache,
		renderer: sprite.NewRenderer(cat, cache),
		exporter: sprite.NewExporter(cat, store, cache, cfg.OutputDir),
	}, nil
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "nebulator",
				"version": "0.1.0",
			},
		},
	}
}
