// Command mcp runs the vigil MCP server on stdio, exposing session,
// event, and report lookups as tools for an LLM assistant.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/vigilhq/vigil/internal/mcpserver"
)

func main() {
	cfg := mcpserver.Config{
		APIURL: envOrDefault("VIGIL_API_URL", "http://localhost:8080"),
	}

	s := mcpserver.NewMCPServer(cfg)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
