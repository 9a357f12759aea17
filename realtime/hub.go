package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/camden-git/photocatalog/visibility"
)

const (
	EventEntryCreated      = "entry_created"
	EventVisibilityChanged = "visibility_changed"
	EventEntryDeleted      = "entry_deleted"
)

// Event represents a catalog change pushed to websocket subscribers. The
// entry's owner and level travel with the event so the hub can decide who may
// see it; neither is serialized beyond the visibility name on level changes.
type Event struct {
	Type        string `json:"type"`
	ContentHash string `json:"content_hash,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	Timestamp   int64  `json:"timestamp"`

	ownerID uint
	level   visibility.Level
}

// NewEvent stamps an event with the current time. ownerID and level scope its
// delivery: a subscriber who could not read the entry never sees the event,
// the same contract as the read endpoints' indistinguishable not-found.
func NewEvent(eventType, contentHash string, ownerID uint, level visibility.Level) Event {
	return Event{
		Type:        eventType,
		ContentHash: contentHash,
		Timestamp:   time.Now().Unix(),
		ownerID:     ownerID,
		level:       level,
	}
}

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	caller visibility.Caller
}

// Hub is a pubsub for websocket subscribers. Delivery runs through the same
// visibility policy as every read path, so content hashes of entries a
// subscriber cannot read are withheld from them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	policy     visibility.Policy
	mu         sync.Mutex
}

func NewHub(policy visibility.Policy) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		policy:     policy,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case event := <-h.broadcast:
			encoded, err := json.Marshal(event)
			if err != nil {
				log.Printf("realtime: failed to marshal event: %v", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !h.policy.Readable(client.caller, event.ownerID, event.level) {
					continue
				}
				select {
				case client.send <- encoded:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("realtime: dropping event, broadcast channel full")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers a subscriber under the given
// caller identity. Anonymous subscribers are allowed; they only ever receive
// events about public entries.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, caller visibility.Caller) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade error: %v", err)
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 256), caller: caller}
	h.register <- client

	// writer
	go func() {
		for msg := range client.send {
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		client.conn.Close()
	}()

	// reader (just consume pings/close)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister <- client
}
