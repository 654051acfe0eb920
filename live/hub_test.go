package live

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := testHub()
	sub := hub.Subscribe(FixtureTopic(1))
	defer sub.Close()

	for i := 0; i < 5; i++ {
		hub.Publish(FixtureTopic(1), map[string]int{"seq": i})
	}

	for i := 0; i < 5; i++ {
		raw := <-sub.C
		var payload map[string]int
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, i, payload["seq"])
	}
}

func TestHubPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := testHub()
	// Must return immediately; no subscriber is listening.
	hub.Publish(FixtureTopic(42), map[string]string{"type": "Goal"})
}

func TestHubTopicsAreIsolated(t *testing.T) {
	hub := testHub()
	sub1 := hub.Subscribe(FixtureTopic(1))
	defer sub1.Close()
	sub2 := hub.Subscribe(FixtureTopic(2))
	defer sub2.Close()

	hub.Publish(FixtureTopic(1), map[string]string{"for": "one"})

	raw := <-sub1.C
	var payload map[string]string
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "one", payload["for"])

	select {
	case <-sub2.C:
		t.Fatal("subscriber of another fixture received the event")
	default:
	}
}

func TestHubCloseStopsDelivery(t *testing.T) {
	hub := testHub()
	sub := hub.Subscribe(FixtureTopic(1))
	sub.Close()

	_, open := <-sub.C
	assert.False(t, open, "channel should be closed after unsubscribe")

	// Publishing after close must not panic.
	hub.Publish(FixtureTopic(1), map[string]string{"type": "Goal"})
}

func TestHubFansOutToAllSubscribers(t *testing.T) {
	hub := testHub()
	subA := hub.Subscribe(FixtureTopic(3))
	defer subA.Close()
	subB := hub.Subscribe(FixtureTopic(3))
	defer subB.Close()

	hub.Publish(FixtureTopic(3), map[string]string{"type": "Goal"})

	assert.NotNil(t, <-subA.C)
	assert.NotNil(t, <-subB.C)
}
