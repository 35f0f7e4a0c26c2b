package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *VigilClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *VigilClient) *Handlers {
	return &Handlers{client: client}
}

// HandleGetSession looks up a session's lifecycle state.
func (h *Handlers) HandleGetSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	raw, err := h.client.GetSession(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get session: %v", err)), nil
	}

	text, err := formatSession(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse session: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListEvents lists a session's event history.
func (h *Handlers) HandleListEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	cursor := req.GetString("cursor", "")
	limit := int(req.GetFloat("limit", 0))

	raw, err := h.client.ListEvents(ctx, sessionID, cursor, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	text, err := formatEventList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse events: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetFullReport returns the full recomputed risk analysis.
func (h *Handlers) HandleGetFullReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	raw, err := h.client.GetFullReport(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get report: %v", err)), nil
	}

	text, err := formatFullReport(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse report: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetLatestRisk returns the session's current score and level.
func (h *Handlers) HandleGetLatestRisk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	raw, err := h.client.GetLatestRisk(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get latest risk: %v", err)), nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse latest risk: %v", err)), nil
	}

	score, _ := getFloat(m, "risk_score")
	text := fmt.Sprintf("Session %s\nRisk score: %.0f\nRisk level: %s\n",
		getString(m, "session_id"), score, getString(m, "risk_level"))

	return mcp.NewToolResultText(text), nil
}

// HandleGetFinalReport returns the reviewer-facing final report.
func (h *Handlers) HandleGetFinalReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	raw, err := h.client.GetFinalReport(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get final report: %v", err)), nil
	}

	text, err := formatFinalReport(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse final report: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

func formatSession(raw json.RawMessage) (string, error) {
	var resp map[string]any
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	sess := resp
	if s, ok := resp["session"].(map[string]any); ok {
		sess = s
	}

	var sb strings.Builder
	sb.WriteString("Session:\n")
	sb.WriteString(fmt.Sprintf("  ID:     %s\n", getString(sess, "id")))
	sb.WriteString(fmt.Sprintf("  Status: %s\n", getString(sess, "status")))
	if v := getString(sess, "created_at"); v != "" {
		sb.WriteString(fmt.Sprintf("  Created: %s\n", v))
	}
	if v := getString(sess, "started_at"); v != "" {
		sb.WriteString(fmt.Sprintf("  Started: %s\n", v))
	}
	if v := getString(sess, "ended_at"); v != "" {
		sb.WriteString(fmt.Sprintf("  Ended:   %s\n", v))
	}
	return sb.String(), nil
}

func formatEventList(raw json.RawMessage) (string, error) {
	var resp struct {
		Events []map[string]any `json:"events"`
		Next   string           `json:"next_cursor"`
		More   bool             `json:"has_more"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	if len(resp.Events) == 0 {
		return "No events recorded for this session.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d event(s):\n\n", len(resp.Events)))
	for i, e := range resp.Events {
		sb.WriteString(fmt.Sprintf("%d. %s at %s", i+1, getString(e, "event_type"), getString(e, "timestamp")))
		if v := getString(e, "severity"); v != "" {
			sb.WriteString(fmt.Sprintf(" (severity %s)", v))
		}
		sb.WriteString("\n")
	}
	if resp.More {
		sb.WriteString(fmt.Sprintf("\nMore events available; pass cursor %q to continue.\n", resp.Next))
	}
	return sb.String(), nil
}

func formatFullReport(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Risk Analysis:\n")
	sb.WriteString(fmt.Sprintf("  Session: %s\n", getString(m, "session_id")))
	if v, ok := getFloat(m, "risk_score"); ok {
		sb.WriteString(fmt.Sprintf("  Score: %.0f\n", v))
	}
	sb.WriteString(fmt.Sprintf("  Level: %s\n", getString(m, "risk_level")))

	if counts, ok := m["event_counts"].(map[string]any); ok {
		sb.WriteString("  Behavior counts:\n")
		for _, key := range []string{"face_missing_count", "tab_switch_count", "window_blur_count"} {
			if v, ok := getFloat(counts, key); ok {
				sb.WriteString(fmt.Sprintf("    %s: %.0f\n", key, v))
			}
		}
	}

	if reasons, ok := m["reasons"].([]any); ok && len(reasons) > 0 {
		sb.WriteString(fmt.Sprintf("  Scoring reasons (%d):\n", len(reasons)))
		for _, r := range reasons {
			if rm, ok := r.(map[string]any); ok {
				added, _ := getFloat(rm, "score_added")
				sb.WriteString(fmt.Sprintf("    +%.0f %s at %s\n",
					added, getString(rm, "event_type"), getString(rm, "timestamp")))
			}
		}
	}

	return sb.String(), nil
}

func formatFinalReport(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Final Integrity Report:\n")
	sb.WriteString(fmt.Sprintf("  Session: %s\n", getString(m, "session_id")))

	if summary, ok := m["summary"].(map[string]any); ok {
		if v, ok := getFloat(summary, "risk_score"); ok {
			sb.WriteString(fmt.Sprintf("  Risk score: %.0f\n", v))
		}
		sb.WriteString(fmt.Sprintf("  Risk level: %s\n", getString(summary, "risk_level")))
		if v, ok := getFloat(summary, "movement_percentage"); ok {
			sb.WriteString(fmt.Sprintf("  Movement: %.0f%%\n", v))
		}
	}

	if interp, ok := m["interpretation"].(map[string]any); ok && len(interp) > 0 {
		sb.WriteString("  Observations:\n")
		for _, key := range []string{"face_presence", "tab_behavior", "focus_behavior", "external_presence"} {
			if v := getString(interp, key); v != "" {
				sb.WriteString(fmt.Sprintf("    - %s\n", v))
			}
		}
	}

	if v := getString(m, "final_decision_note"); v != "" {
		sb.WriteString(fmt.Sprintf("\n  Note: %s\n", v))
	}

	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
