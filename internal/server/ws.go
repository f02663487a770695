package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/app"
)

// DefaultStateInterval is roughly one render frame at 30 FPS.
const DefaultStateInterval = 33 * time.Millisecond

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Client message types.
const (
	msgHover  = "hover"
	msgMissed = "missed"
	msgAction = "action"
)

// clientMessage is a pointer event sent by the renderer over the socket.
type clientMessage struct {
	Type     string     `json:"type"`
	Position [3]float64 `json:"position"`
}

// StateHub pushes the render state to WebSocket clients whenever its version
// changes, and accepts pointer events on the same connection.
type StateHub struct {
	app      *app.App
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStateHub creates a hub and starts its broadcast loop.
func NewStateHub(a *app.App, interval time.Duration) *StateHub {
	h := &StateHub{
		app:      a,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		stopCh:   make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Send the current state immediately rather than on the next change.
	h.mu.Lock()
	h.clients[conn] = true
	if msg, err := json.Marshal(h.app.RenderState()); err == nil {
		h.send(conn, msg)
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		h.handle(msg)
	}
}

func (h *StateHub) handle(msg clientMessage) {
	pos := r3.Vec{X: msg.Position[0], Y: msg.Position[1], Z: msg.Position[2]}
	switch msg.Type {
	case msgHover:
		h.app.PointerHover(pos)
	case msgMissed:
		h.app.PointerMissed()
	case msgAction:
		h.app.PointerAction(pos)
	default:
		log.Printf("websocket: unknown message type %q", msg.Type)
	}
}

// send writes msg to conn. Callers hold h.mu, which serializes writers.
func (h *StateHub) send(conn *websocket.Conn, msg []byte) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		conn.Close()
	}
}

// broadcast sends each new render state to all connected clients.
func (h *StateHub) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		state := h.app.RenderState()
		if state.Version == last {
			continue
		}

		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		msg, err := json.Marshal(state)
		if err != nil {
			log.Printf("Error encoding render state: %v", err)
			continue
		}
		last = state.Version

		h.mu.Lock()
		for conn := range h.clients {
			h.send(conn, msg)
		}
		h.mu.Unlock()
	}
}

// Clients returns the number of connected clients.
func (h *StateHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop. Open connections are left to their
// readers.
func (h *StateHub) Close() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}
