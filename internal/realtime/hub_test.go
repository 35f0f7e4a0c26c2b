package realtime

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testHub() *Hub {
	return NewHub(slog.Default())
}

func clientWith(sub Subscription) *Client {
	return &Client{sub: sub}
}

func msg(t MessageType, data map[string]interface{}) *Message {
	return &Message{Type: t, Data: data}
}

func TestShouldSend_AllMessages(t *testing.T) {
	h := testHub()
	c := clientWith(Subscription{AllMessages: true})

	assert.True(t, h.shouldSend(c, msg(MessageSessionStarted, nil)))
	assert.True(t, h.shouldSend(c, msg(MessageRiskLevelChanged, nil)))
}

func TestShouldSend_TypeFilter(t *testing.T) {
	h := testHub()
	c := clientWith(Subscription{
		MessageTypes: []MessageType{MessageRiskLevelChanged},
	})

	assert.True(t, h.shouldSend(c, msg(MessageRiskLevelChanged, nil)))
	assert.False(t, h.shouldSend(c, msg(MessageEventAdmitted, nil)))
	assert.False(t, h.shouldSend(c, msg(MessageSessionEnded, nil)))
}

func TestShouldSend_SessionFilter(t *testing.T) {
	h := testHub()
	c := clientWith(Subscription{
		SessionIDs: []string{"sess_watched"},
	})

	assert.True(t, h.shouldSend(c, msg(MessageEventAdmitted, map[string]interface{}{
		"session_id": "sess_watched",
	})))
	assert.False(t, h.shouldSend(c, msg(MessageEventAdmitted, map[string]interface{}{
		"session_id": "sess_other",
	})))
}

func TestShouldSend_MinScore(t *testing.T) {
	h := testHub()
	c := clientWith(Subscription{MinScore: 40})

	assert.False(t, h.shouldSend(c, msg(MessageRiskLevelChanged, map[string]interface{}{
		"risk_score": 20,
	})))
	assert.True(t, h.shouldSend(c, msg(MessageRiskLevelChanged, map[string]interface{}{
		"risk_score": 70,
	})))
	// MinScore only gates risk change frames.
	assert.True(t, h.shouldSend(c, msg(MessageEventAdmitted, map[string]interface{}{
		"risk_score": 20,
	})))
}

func TestShouldSend_CombinedFilters(t *testing.T) {
	h := testHub()
	c := clientWith(Subscription{
		MessageTypes: []MessageType{MessageRiskLevelChanged},
		SessionIDs:   []string{"sess_1"},
	})

	assert.True(t, h.shouldSend(c, msg(MessageRiskLevelChanged, map[string]interface{}{
		"session_id": "sess_1",
	})))
	assert.False(t, h.shouldSend(c, msg(MessageRiskLevelChanged, map[string]interface{}{
		"session_id": "sess_2",
	})))
	assert.False(t, h.shouldSend(c, msg(MessageSessionEnded, map[string]interface{}{
		"session_id": "sess_1",
	})))
}

func TestPublish_DropsWhenFull(t *testing.T) {
	h := testHub()

	// Nothing drains the channel here; filling past capacity must not block.
	for i := 0; i < 300; i++ {
		h.Publish(MessageEventAdmitted, map[string]interface{}{"n": i})
	}

	assert.Len(t, h.broadcast, 256)
}
