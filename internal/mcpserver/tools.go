package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the vigil MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription(
		"Look up an interview monitoring session's lifecycle state. "+
			"Shows whether the session is CREATED, ACTIVE, or ENDED, with timestamps."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("The session's id (e.g. 'sess_1a2b...')")),
)

var ToolListEvents = mcp.NewTool("list_events",
	mcp.WithDescription(
		"List the integrity events recorded for a session in chronological order: "+
			"face visibility changes, tab switches, window focus changes. "+
			"Paginated; pass the returned cursor to fetch the next page."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("The session's id")),
	mcp.WithString("cursor",
		mcp.Description("Opaque cursor from a previous list_events result")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of events to return (default 50)")),
)

var ToolGetFullReport = mcp.NewTool("get_full_report",
	mcp.WithDescription(
		"Get the full risk analysis for a session, recomputed from its complete event history. "+
			"Includes the risk score, risk level (NORMAL/SUSPICIOUS/HIGH_RISK), per-behavior "+
			"counts, and the list of scoring reasons."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("The session's id")),
)

var ToolGetLatestRisk = mcp.NewTool("get_latest_risk",
	mcp.WithDescription(
		"Get a session's current risk score and level from the most recent snapshot. "+
			"Cheaper than get_full_report; use this for quick live checks."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("The session's id")),
)

var ToolGetFinalReport = mcp.NewTool("get_final_report",
	mcp.WithDescription(
		"Get the reviewer-facing final integrity report for a session: headline risk "+
			"summary, movement percentage, behavior counts, and plain-language "+
			"interpretation of observed behavior. Use after the interview has ended."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("The session's id")),
)
