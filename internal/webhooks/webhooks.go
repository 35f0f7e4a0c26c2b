// Package webhooks delivers session notifications to external services.
//
// Recruiting systems register webhook URLs to be notified about:
// - Session lifecycle transitions
// - Risk level escalations
package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vigilhq/vigil/internal/circuitbreaker"
	"github.com/vigilhq/vigil/internal/metrics"
	"github.com/vigilhq/vigil/internal/retry"
)

// ErrNotFound indicates the subscription does not exist.
var ErrNotFound = errors.New("webhooks: subscription not found")

// NotificationType represents the type of webhook notification
type NotificationType string

const (
	NotifySessionStarted   NotificationType = "session.started"
	NotifySessionEnded     NotificationType = "session.ended"
	NotifyEventAdmitted    NotificationType = "event.admitted"
	NotifyRiskLevelChanged NotificationType = "risk.level_changed"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotifySessionStarted, NotifySessionEnded, NotifyEventAdmitted, NotifyRiskLevelChanged:
		return true
	}
	return false
}

// Notification is one webhook delivery payload
type Notification struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscription represents a webhook subscription
type Subscription struct {
	ID          string             `json:"id"`
	URL         string             `json:"url"`
	Secret      string             `json:"-"` // Used for HMAC signing
	Types       []NotificationType `json:"types"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	LastSuccess *time.Time         `json:"last_success,omitempty"`
	LastError   string             `json:"last_error,omitempty"`
}

// Store persists webhook subscriptions
type Store interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context) ([]*Subscription, error)
	GetByType(ctx context.Context, t NotificationType) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error
}

// Dispatcher sends webhook notifications with retry and HMAC signing.
// A per-subscription circuit breaker suppresses deliveries to endpoints
// that keep failing, so one dead receiver cannot soak up retry budget.
type Dispatcher struct {
	store       Store
	client      *http.Client
	maxAttempts int
	breaker     *circuitbreaker.Breaker
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(store Store, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		store:       store,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: 3,
		breaker:     circuitbreaker.New(5, 30*time.Second),
	}
}

// Dispatch sends a notification to all active subscribers of its type.
// Deliveries run asynchronously so admission and lifecycle paths never
// block on a slow receiver.
func (d *Dispatcher) Dispatch(ctx context.Context, n *Notification) error {
	subs, err := d.store.GetByType(ctx, n.Type)
	if err != nil {
		return fmt.Errorf("failed to get subscribers: %w", err)
	}

	for _, sub := range subs {
		if !sub.Active {
			continue
		}
		go d.send(context.WithoutCancel(ctx), sub, n)
	}

	return nil
}

func (d *Dispatcher) send(ctx context.Context, sub *Subscription, n *Notification) {
	if !d.breaker.Allow(sub.ID) {
		metrics.WebhookDeliveriesTotal.WithLabelValues("suppressed").Inc()
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		d.updateError(ctx, sub, "failed to marshal notification")
		return
	}

	err = retry.Do(ctx, d.maxAttempts, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", sub.URL, bytes.NewReader(payload))
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Vigil-Event", string(n.Type))
		req.Header.Set("X-Vigil-Timestamp", fmt.Sprintf("%d", n.Timestamp.Unix()))
		if sub.Secret != "" {
			req.Header.Set("X-Vigil-Signature", Sign(payload, sub.Secret))
		}

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return retry.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	})

	if err != nil {
		d.breaker.RecordFailure(sub.ID)
		metrics.WebhookDeliveriesTotal.WithLabelValues("failure").Inc()
		d.updateError(ctx, sub, err.Error())
		return
	}
	d.breaker.RecordSuccess(sub.ID)
	metrics.WebhookDeliveriesTotal.WithLabelValues("success").Inc()
	d.updateSuccess(ctx, sub)
}

// Sign computes the hex HMAC-SHA256 of payload under secret. Receivers
// verify deliveries by recomputing it.
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func (d *Dispatcher) updateSuccess(ctx context.Context, sub *Subscription) {
	now := time.Now().UTC()
	sub.LastSuccess = &now
	sub.LastError = ""
	_ = d.store.Update(ctx, sub)
}

func (d *Dispatcher) updateError(ctx context.Context, sub *Subscription, errMsg string) {
	sub.LastError = errMsg
	_ = d.store.Update(ctx, sub)
}

// MemoryStore is an in-memory implementation for demo/test use
type MemoryStore struct {
	subs map[string]*Subscription
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs: make(map[string]*Subscription),
	}
}

func (m *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sub, ok := m.subs[id]; ok {
		return sub, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) List(_ context.Context) ([]*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		result = append(result, sub)
	}
	return result, nil
}

func (m *MemoryStore) GetByType(_ context.Context, t NotificationType) ([]*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Subscription
	for _, sub := range m.subs {
		for _, st := range sub.Types {
			if st == t {
				result = append(result, sub)
				break
			}
		}
	}
	return result, nil
}

func (m *MemoryStore) Update(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
