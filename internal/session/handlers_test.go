package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingEmitter struct {
	mu      sync.Mutex
	started []string
	ended   []string
}

func (r *recordingEmitter) SessionStarted(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, s.ID)
}

func (r *recordingEmitter) SessionEnded(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, s.ID)
}

func setupRouter(emitter EventEmitter) *gin.Engine {
	router := gin.New()
	handler := NewHandler(NewService(NewMemoryStore()))
	if emitter != nil {
		handler = handler.WithEvents(emitter)
	}
	handler.RegisterRoutes(router.Group("/v1"))
	return router
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/sessions", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id, _ := resp["session"]["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateSession(t *testing.T) {
	router := setupRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/sessions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CREATED", resp["session"]["status"])
	assert.NotEmpty(t, resp["session"]["created_at"])
}

func TestStartSession(t *testing.T) {
	emitter := &recordingEmitter{}
	router := setupRouter(emitter)
	id := createSession(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/sessions/"+id+"/start", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACTIVE", resp["session"]["status"])
	assert.NotEmpty(t, resp["session"]["started_at"])
	assert.Equal(t, []string{id}, emitter.started)
}

func TestStartSession_AlreadyActive(t *testing.T) {
	router := setupRouter(nil)
	id := createSession(t, router)

	for _, wantCode := range []int{http.StatusOK, http.StatusConflict} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/v1/sessions/"+id+"/start", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, wantCode, w.Code)
	}
}

func TestEndSession(t *testing.T) {
	emitter := &recordingEmitter{}
	router := setupRouter(emitter)
	id := createSession(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/v1/sessions/"+id+"/start", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/sessions/"+id+"/end", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ENDED", resp["session"]["status"])
	assert.Equal(t, []string{id}, emitter.ended)
}

func TestEndSession_NeverStarted(t *testing.T) {
	router := setupRouter(nil)
	id := createSession(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/sessions/"+id+"/end", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_state", resp["error"])
}

func TestGetSession_NotFound(t *testing.T) {
	router := setupRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/sessions/sess_deadbeefdeadbeef", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp["error"])
}
