package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/wicket/internal/store"
)

// dialTestServer stands up the upgrade handler and dials it for real.
func dialTestServer(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()

	s := NewServer()
	go s.hub.Run()

	ts := httptest.NewServer(http.HandlerFunc(s.handleLiveMatches))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Wait for the hub to register the client before broadcasting.
	require.Eventually(t, func() bool {
		return s.hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	return s, conn
}

func TestSnapshotBroadcastRoundTrip(t *testing.T) {
	s, conn := dialTestServer(t)

	payload := json.RawMessage(`{"score":"IND 112/3 (14.2)"}`)
	require.NoError(t, s.PublishSnapshot(context.Background(), "m1", store.KindLive, payload))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "snapshot", env.Type)
	assert.Equal(t, "m1", env.MatchID)
	assert.Equal(t, "live", env.Kind)
	assert.JSONEq(t, string(payload), string(env.Payload))
}

func TestStaticKindsAreNotBroadcast(t *testing.T) {
	s, conn := dialTestServer(t)

	ctx := context.Background()
	require.NoError(t, s.PublishSnapshot(ctx, "m1", store.KindInfo, json.RawMessage(`{}`)))
	require.NoError(t, s.PublishStatusChange(ctx, "m1", store.StatusLive))

	// Only the status envelope arrives; the info snapshot is filtered out.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "status", env.Type)
	assert.Equal(t, "live", env.Status)
}
