package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photocatalog/visibility"
)

func startHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(visibility.NewDefaultPolicy())
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := visibility.AnonymousCaller()
		if raw := r.URL.Query().Get("user"); raw != "" {
			id, err := strconv.Atoi(raw)
			require.NoError(t, err)
			caller = visibility.AuthenticatedCaller(uint(id))
		}
		hub.ServeWS(w, r, caller)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialSubscriber(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		count := len(hub.clients)
		hub.mu.Unlock()
		if count == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d subscribers", want)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(msg, &event))
	return event
}

func TestHubWithholdsInvisibleEvents(t *testing.T) {
	// the event feed must honor the same visibility rules as the read
	// endpoints: a subscriber who cannot read an entry never learns its
	// content hash, not even that it exists
	hub, srv := startHubServer(t)

	anonymous := dialSubscriber(t, srv, "")
	owner := dialSubscriber(t, srv, "?user=1")
	other := dialSubscriber(t, srv, "?user=2")
	waitForSubscribers(t, hub, 3)

	hub.Broadcast(NewEvent(EventEntryCreated, "private-hash", 1, visibility.LevelPrivate))
	hub.Broadcast(NewEvent(EventEntryCreated, "public-hash", 1, visibility.LevelPublic))

	// the first event either non-owner receives must already be the public one
	event := readEvent(t, anonymous)
	assert.Equal(t, "public-hash", event.ContentHash)

	event = readEvent(t, other)
	assert.Equal(t, "public-hash", event.ContentHash)

	// the owner sees both, in broadcast order
	event = readEvent(t, owner)
	assert.Equal(t, "private-hash", event.ContentHash)
	event = readEvent(t, owner)
	assert.Equal(t, "public-hash", event.ContentHash)
}

func TestHubAuthenticatedLevelEvents(t *testing.T) {
	hub, srv := startHubServer(t)

	anonymous := dialSubscriber(t, srv, "")
	other := dialSubscriber(t, srv, "?user=9")
	waitForSubscribers(t, hub, 2)

	hub.Broadcast(NewEvent(EventVisibilityChanged, "auth-hash", 1, visibility.LevelAuthenticated))
	hub.Broadcast(NewEvent(EventEntryDeleted, "pub-hash", 1, visibility.LevelPublic))

	// signed-in non-owners clear the authenticated floor
	event := readEvent(t, other)
	assert.Equal(t, "auth-hash", event.ContentHash)

	// anonymous subscribers skip straight to the public event
	event = readEvent(t, anonymous)
	assert.Equal(t, "pub-hash", event.ContentHash)
}
