package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test helpers ---

func newTestSetup(handler http.Handler) (*Handlers, func()) {
	ts := httptest.NewServer(handler)
	client := NewVigilClient(Config{APIURL: ts.URL})
	return NewHandlers(client), ts.Close
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func jsonHandler(t *testing.T, wantPath, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" {
			assert.Equal(t, wantPath, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

// ============================================================
// Client tests
// ============================================================

func TestClient_HTTPError_WithAPIMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Session not found"}`))
	}))
	defer ts.Close()

	client := NewVigilClient(Config{APIURL: ts.URL})
	_, err := client.GetSession(context.Background(), "sess_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Session not found")
}

func TestClient_ListEvents_QueryParams(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer ts.Close()

	client := NewVigilClient(Config{APIURL: ts.URL})
	_, err := client.ListEvents(context.Background(), "sess_1", "abc123", 25)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "cursor=abc123")
	assert.Contains(t, gotQuery, "limit=25")
}

// ============================================================
// Handler tests
// ============================================================

func TestHandleGetSession_RequiresSessionID(t *testing.T) {
	h, done := newTestSetup(jsonHandler(t, "", `{}`))
	defer done()

	result, err := h.HandleGetSession(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "session_id is required")
}

func TestHandleGetSession_FormatsLifecycle(t *testing.T) {
	body := `{"session":{"id":"sess_abc","status":"ACTIVE","created_at":"2026-01-02T10:00:00Z","started_at":"2026-01-02T10:01:00Z"}}`
	h, done := newTestSetup(jsonHandler(t, "/v1/sessions/sess_abc", body))
	defer done()

	result, err := h.HandleGetSession(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "sess_abc")
	assert.Contains(t, text, "ACTIVE")
	assert.Contains(t, text, "Started: 2026-01-02T10:01:00Z")
	assert.NotContains(t, text, "Ended:")
}

func TestHandleListEvents_Empty(t *testing.T) {
	h, done := newTestSetup(jsonHandler(t, "/v1/sessions/sess_abc/events", `{"events":[],"has_more":false}`))
	defer done()

	result, err := h.HandleListEvents(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No events recorded")
}

func TestHandleListEvents_FormatsPage(t *testing.T) {
	body := `{
		"events": [
			{"id":"evt_1","event_type":"TAB_SWITCH","severity":"low","timestamp":"2026-01-02T10:00:00Z"},
			{"id":"evt_2","event_type":"FACE_MISSING","timestamp":"2026-01-02T10:00:05Z"}
		],
		"next_cursor": "opaque123",
		"has_more": true
	}`
	h, done := newTestSetup(jsonHandler(t, "/v1/sessions/sess_abc/events", body))
	defer done()

	result, err := h.HandleListEvents(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "2 event(s)")
	assert.Contains(t, text, "TAB_SWITCH")
	assert.Contains(t, text, "(severity low)")
	assert.Contains(t, text, "FACE_MISSING")
	assert.Contains(t, text, `"opaque123"`)
}

func TestHandleGetFullReport_FormatsAnalysis(t *testing.T) {
	body := `{
		"session_id": "sess_abc",
		"risk_score": 40,
		"risk_level": "SUSPICIOUS",
		"event_counts": {"face_missing_count":0,"tab_switch_count":3,"window_blur_count":1},
		"reasons": [
			{"event_type":"TAB_SWITCH","score_added":10,"timestamp":"2026-01-02T10:00:00Z"}
		]
	}`
	h, done := newTestSetup(jsonHandler(t, "/v1/reports/sess_abc", body))
	defer done()

	result, err := h.HandleGetFullReport(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Score: 40")
	assert.Contains(t, text, "Level: SUSPICIOUS")
	assert.Contains(t, text, "tab_switch_count: 3")
	assert.Contains(t, text, "+10 TAB_SWITCH")
}

func TestHandleGetLatestRisk(t *testing.T) {
	h, done := newTestSetup(jsonHandler(t, "/v1/reports/sess_abc/latest",
		`{"session_id":"sess_abc","risk_score":70,"risk_level":"HIGH_RISK"}`))
	defer done()

	result, err := h.HandleGetLatestRisk(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Risk score: 70")
	assert.Contains(t, text, "Risk level: HIGH_RISK")
}

func TestHandleGetFinalReport(t *testing.T) {
	body := `{
		"session_id": "sess_abc",
		"summary": {"risk_score":60,"risk_level":"SUSPICIOUS","movement_percentage":40},
		"interpretation": {
			"face_presence": "Candidate left the camera frame 2 times",
			"tab_behavior": "Switched tabs or applications 3 times"
		},
		"final_decision_note": "Flagged for manual review."
	}`
	h, done := newTestSetup(jsonHandler(t, "/v1/reports/sess_abc/final", body))
	defer done()

	result, err := h.HandleGetFinalReport(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Risk score: 60")
	assert.Contains(t, text, "Movement: 40%")
	assert.Contains(t, text, "left the camera frame")
	assert.Contains(t, text, "Flagged for manual review.")
}

func TestHandlers_BackendErrorBecomesToolError(t *testing.T) {
	h, done := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"invalid_state","message":"Session is not active"}`))
	}))
	defer done()

	result, err := h.HandleGetFullReport(context.Background(), makeRequest(map[string]any{"session_id": "sess_abc"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Session is not active")
}

// ============================================================
// Formatting helper tests
// ============================================================

func TestGetString(t *testing.T) {
	m := map[string]any{"a": "x", "n": float64(7)}
	assert.Equal(t, "x", getString(m, "a"))
	assert.Equal(t, "7", getString(m, "n"))
	assert.Equal(t, "x", getString(m, "missing", "a"))
	assert.Equal(t, "", getString(m, "missing"))
}

func TestGetFloat(t *testing.T) {
	m := map[string]any{"score": float64(42), "label": "nope"}
	v, ok := getFloat(m, "score")
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)

	_, ok = getFloat(m, "label")
	assert.False(t, ok)
	_, ok = getFloat(m, "missing")
	assert.False(t, ok)
}

func TestFormatJSON(t *testing.T) {
	pretty := formatJSON([]byte(`{"a":1}`))
	assert.Contains(t, pretty, "\n")

	// Invalid JSON passes through untouched.
	assert.Equal(t, "not json", formatJSON([]byte("not json")))
}
