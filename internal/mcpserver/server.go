package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all vigil tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("vigil", "1.0.0")
	client := NewVigilClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolGetSession, h.HandleGetSession)
	s.AddTool(ToolListEvents, h.HandleListEvents)
	s.AddTool(ToolGetFullReport, h.HandleGetFullReport)
	s.AddTool(ToolGetLatestRisk, h.HandleGetLatestRisk)
	s.AddTool(ToolGetFinalReport, h.HandleGetFinalReport)

	return s
}
