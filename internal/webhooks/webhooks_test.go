package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedDelivery struct {
	body      []byte
	signature string
	eventType string
}

// receiver collects webhook deliveries and answers with the given status.
type receiver struct {
	mu         sync.Mutex
	deliveries []capturedDelivery
	status     int
	got        chan struct{}
}

func newReceiver(status int) *receiver {
	return &receiver{status: status, got: make(chan struct{}, 16)}
}

func (r *receiver) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.deliveries = append(r.deliveries, capturedDelivery{
			body:      body,
			signature: req.Header.Get("X-Vigil-Signature"),
			eventType: req.Header.Get("X-Vigil-Event"),
		})
		r.mu.Unlock()
		w.WriteHeader(r.status)
		r.got <- struct{}{}
	}
}

func (r *receiver) waitForDelivery(t *testing.T) capturedDelivery {
	t.Helper()
	select {
	case <-r.got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deliveries[len(r.deliveries)-1]
}

func notification(t NotificationType) *Notification {
	return &Notification{
		ID:        "ntf_test",
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      map[string]interface{}{"session_id": "sess_1"},
	}
}

func subscribe(t *testing.T, store Store, url string, types ...NotificationType) *Subscription {
	t.Helper()
	sub := &Subscription{
		ID:        "wh_test",
		URL:       url,
		Secret:    "topsecret",
		Types:     types,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Create(context.Background(), sub))
	return sub
}

func TestSign(t *testing.T) {
	sig := Sign([]byte(`{"hello":"world"}`), "secret")

	// HMAC-SHA256 is deterministic; 32 bytes hex-encoded.
	assert.Len(t, sig, 64)
	assert.Equal(t, sig, Sign([]byte(`{"hello":"world"}`), "secret"))
	assert.NotEqual(t, sig, Sign([]byte(`{"hello":"world"}`), "other"))
	assert.NotEqual(t, sig, Sign([]byte(`{"hello":"mars"}`), "secret"))
}

func TestDispatch_DeliversSignedPayload(t *testing.T) {
	rcv := newReceiver(http.StatusOK)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	subscribe(t, store, srv.URL, NotifyRiskLevelChanged)

	d := NewDispatcher(store, 5*time.Second)
	err := d.Dispatch(context.Background(), notification(NotifyRiskLevelChanged))
	require.NoError(t, err)

	got := rcv.waitForDelivery(t)
	assert.Equal(t, "risk.level_changed", got.eventType)
	assert.Equal(t, Sign(got.body, "topsecret"), got.signature)

	var n Notification
	require.NoError(t, json.Unmarshal(got.body, &n))
	assert.Equal(t, NotifyRiskLevelChanged, n.Type)
	assert.Equal(t, "sess_1", n.Data["session_id"])
}

func TestDispatch_FiltersByType(t *testing.T) {
	rcv := newReceiver(http.StatusOK)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	subscribe(t, store, srv.URL, NotifySessionEnded)

	d := NewDispatcher(store, 5*time.Second)
	// Subscriber only wants session.ended; this must not be delivered.
	require.NoError(t, d.Dispatch(context.Background(), notification(NotifySessionStarted)))

	select {
	case <-rcv.got:
		t.Fatal("delivery to non-subscribed type")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDispatch_SkipsInactive(t *testing.T) {
	rcv := newReceiver(http.StatusOK)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	sub := subscribe(t, store, srv.URL, NotifySessionEnded)
	sub.Active = false
	require.NoError(t, store.Update(context.Background(), sub))

	d := NewDispatcher(store, 5*time.Second)
	require.NoError(t, d.Dispatch(context.Background(), notification(NotifySessionEnded)))

	select {
	case <-rcv.got:
		t.Fatal("delivery to inactive subscription")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSend_RecordsFailureOn4xx(t *testing.T) {
	rcv := newReceiver(http.StatusForbidden)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	sub := subscribe(t, store, srv.URL, NotifySessionEnded)

	d := NewDispatcher(store, 5*time.Second)
	d.send(context.Background(), sub, notification(NotifySessionEnded))

	// 4xx is permanent: exactly one attempt, error recorded.
	rcv.mu.Lock()
	attempts := len(rcv.deliveries)
	rcv.mu.Unlock()
	assert.Equal(t, 1, attempts)

	stored, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.LastError, "403")
	assert.Nil(t, stored.LastSuccess)
}

func TestSend_RetriesOn5xx(t *testing.T) {
	rcv := newReceiver(http.StatusBadGateway)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	sub := subscribe(t, store, srv.URL, NotifySessionEnded)

	d := NewDispatcher(store, 5*time.Second)
	d.send(context.Background(), sub, notification(NotifySessionEnded))

	rcv.mu.Lock()
	attempts := len(rcv.deliveries)
	rcv.mu.Unlock()
	assert.Equal(t, 3, attempts, "5xx responses retry up to maxAttempts")
}

func TestSend_UpdatesLastSuccess(t *testing.T) {
	rcv := newReceiver(http.StatusOK)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	sub := subscribe(t, store, srv.URL, NotifySessionEnded)

	d := NewDispatcher(store, 5*time.Second)
	d.send(context.Background(), sub, notification(NotifySessionEnded))

	stored, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastSuccess)
	assert.Empty(t, stored.LastError)
}

func TestSend_CircuitOpenSuppressesDelivery(t *testing.T) {
	rcv := newReceiver(http.StatusOK)
	srv := httptest.NewServer(rcv.handler())
	defer srv.Close()

	store := NewMemoryStore()
	sub := subscribe(t, store, srv.URL, NotifySessionEnded)

	d := NewDispatcher(store, 5*time.Second)
	for i := 0; i < 5; i++ {
		d.breaker.RecordFailure(sub.ID)
	}

	d.send(context.Background(), sub, notification(NotifySessionEnded))

	select {
	case <-rcv.got:
		t.Fatal("delivery while circuit open")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestValidNotificationType(t *testing.T) {
	assert.True(t, ValidNotificationType(NotifySessionStarted))
	assert.True(t, ValidNotificationType(NotifySessionEnded))
	assert.True(t, ValidNotificationType(NotifyEventAdmitted))
	assert.True(t, ValidNotificationType(NotifyRiskLevelChanged))
	assert.False(t, ValidNotificationType("session.deleted"))
}
