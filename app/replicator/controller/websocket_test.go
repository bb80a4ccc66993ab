package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/craftwatch/craftwatch/app/replicator/types"
	"github.com/craftwatch/craftwatch/pkg/broadcast"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWebSocketSubscribeStreamDisconnect(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 16)
	c := NewController(&types.App{Logger: zaptest.NewLogger(t), Bus: bus})

	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.HandleWebSocket(w, r)
		close(done)
	}))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "subscribe", Topics: []string{"*"}}))
	var ack ServerMessage
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack.Type)

	bus.Publish(broadcast.Message{
		Variant: "Experience",
		Keys:    map[string]string{"skill": "fishing", "user": "7"},
		Payload: map[string]any{"user_id": 7},
	})
	var evt ServerMessage
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "Experience", evt.Type)

	// Keep traffic flowing while the client goes away: teardown must stop
	// the forwarder before the send channel closes.
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(broadcast.Message{
				Variant: "Experience",
				Keys:    map[string]string{"skill": "fishing", "user": "7"},
			})
		}
	}()
	require.NoError(t, conn.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not shut down after the client disconnected")
	}
}
