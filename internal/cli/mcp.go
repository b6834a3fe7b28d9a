package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/colthorp/holidate/internal/api"
	"github.com/colthorp/holidate/internal/cache"
	"github.com/colthorp/holidate/internal/core"
)

// MCP Protocol types
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type MCPToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type MCPServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type MCPInitializeResult struct {
	ProtocolVersion string        `json:"protocolVersion"`
	ServerInfo      MCPServerInfo `json:"serverInfo"`
	Capabilities    interface{}   `json:"capabilities"`
}

// NextHolidaysParams are the parameters for the next_holidays tool
type NextHolidaysParams struct {
	Country string `json:"country"`
	Count   *int   `json:"count"`
	Date    string `json:"date"`
	Offline bool   `json:"offline"`
}

// mcpServer answers JSON-RPC requests, one per line, until in is exhausted.
// A single Manager serves every call so the cache is shared across them.
type mcpServer struct {
	app     *app
	manager *cache.Manager
	in      io.Reader
	out     io.Writer
}

func newMCPServer(a *app, in io.Reader, out io.Writer) *mcpServer {
	return &mcpServer{app: a, manager: a.manager(), in: in, out: out}
}

// run serves MCP on the configured streams
func (s *mcpServer) run() error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large messages
	const maxCapacity = 10 * 1024 * 1024 // 10MB
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	log := s.app.logger.WithComponent("mcp")
	log.Info().Msg("MCP server listening on stdio")

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			// For parse errors, we can't know the ID, so we only log
			// and don't send a response (which would have id: null and confuse clients)
			log.Warn().Err(err).Msg("parse error")
			continue
		}

		s.handleRequest(&req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

func (s *mcpServer) handleRequest(req *MCPRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notifications don't get responses - silently ignore
		return
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(req)
	default:
		// Only send error for requests (those with an ID)
		// Notifications (no ID) should be silently ignored per JSON-RPC
		if req.ID != nil {
			s.sendError(req.ID, -32601, "Method not found", req.Method)
		}
	}
}

func (s *mcpServer) handleInitialize(req *MCPRequest) {
	result := MCPInitializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo: MCPServerInfo{
			Name:    "holidate",
			Version: core.Version,
		},
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
	}
	s.sendResponse(req.ID, result)
}

func (s *mcpServer) handleToolsList(req *MCPRequest) {
	tools := []MCPToolInfo{
		{
			Name:        "next_holidays",
			Description: "List the next upcoming public holidays for a country.\n\nArgs:\n    country: ISO 3166-1 alpha-2 code or country name\n    count: Number of holidays to return (default: 5)\n    date: Reference date instead of today (YYYY-MM-DD or shorthand such as 'tomorrow', 'd+30')\n    offline: Use cached data only\n\nReturns:\n    Dictionary with the resolved country, the reference date and the holidays",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"country": map[string]interface{}{
						"type":        "string",
						"description": "ISO 3166-1 alpha-2 country code or country name",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of holidays to return",
						"default":     core.DefaultCount,
					},
					"date": map[string]interface{}{
						"type":        "string",
						"description": "Reference date (YYYY-MM-DD, today, tomorrow, d+N)",
					},
					"offline": map[string]interface{}{
						"type":        "boolean",
						"description": "Use cached data only; never contact the API",
						"default":     false,
					},
				},
				"required": []string{"country"},
			},
		},
	}

	s.sendResponse(req.ID, map[string]interface{}{"tools": tools})
}

func (s *mcpServer) handleToolsCall(req *MCPRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	switch params.Name {
	case "next_holidays":
		s.handleNextHolidays(req.ID, params.Arguments)
	default:
		s.sendError(req.ID, -32602, "Unknown tool", params.Name)
	}
}

func (s *mcpServer) handleNextHolidays(id interface{}, argsJSON json.RawMessage) {
	var args NextHolidaysParams
	if err := json.Unmarshal(argsJSON, &args); err != nil {
		s.sendToolError(id, fmt.Sprintf("Invalid arguments: %v", err))
		return
	}

	// Set defaults
	count := s.app.cfg.Query.Count
	if args.Count != nil {
		count = *args.Count
	}
	if count < 0 {
		s.sendToolError(id, fmt.Sprintf("Invalid arguments: count must not be negative, got %d", count))
		return
	}

	today := s.app.today()
	if args.Date != "" {
		var err error
		today, err = core.ParseDateSpec(args.Date, now().In(s.app.location()))
		if err != nil {
			s.sendToolResult(id, map[string]interface{}{
				"error":         fmt.Sprintf("Invalid date specification: %s", args.Date),
				"valid_formats": []string{"YYYY-MM-DD", "today", "tomorrow", "d+N"},
				"date":          args.Date,
			})
			return
		}
	}

	country, err := s.app.resolveCountry(args.Country, args.Offline)
	if err != nil {
		s.sendToolError(id, err.Error())
		return
	}

	s.manager.Offline = args.Offline
	holidays, err := s.manager.NextHolidays(country, today, count)
	s.manager.Offline = false
	if err != nil {
		s.sendToolResult(id, map[string]interface{}{
			"error":   err.Error(),
			"reason":  failureReason(err),
			"country": country,
		})
		return
	}

	result := map[string]interface{}{
		"country":        country,
		"date":           core.FormatDate(today),
		"holidays_count": len(holidays),
		"holidays":       holidays,
	}

	s.sendToolResult(id, result)
}

// failureReason maps engine errors to a short machine-readable reason.
func failureReason(err error) string {
	switch {
	case errors.Is(err, cache.ErrOffline):
		return "offline"
	case errors.Is(err, api.ErrNotFound):
		return "not_found"
	case errors.Is(err, api.ErrMalformed):
		return "malformed"
	case errors.Is(err, api.ErrUnavailable):
		return "unavailable"
	}
	return "unknown"
}

func (s *mcpServer) sendResponse(id interface{}, result interface{}) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	data, _ := json.Marshal(resp)
	fmt.Fprintln(s.out, string(data))
}

func (s *mcpServer) sendError(id interface{}, code int, message, data string) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	data2, _ := json.Marshal(resp)
	fmt.Fprintln(s.out, string(data2))
}

func (s *mcpServer) sendToolResult(id interface{}, result interface{}) {
	s.sendResponse(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": mustMarshal(result),
			},
		},
	})
}

func (s *mcpServer) sendToolError(id interface{}, message string) {
	s.sendResponse(id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": message,
			},
		},
		"isError": true,
	})
}

func mustMarshal(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}
