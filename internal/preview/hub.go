// Package preview mirrors the strip to websocket clients for a browser view.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

const (
	writeWait = 200 * time.Millisecond
	sendQueue = 8
)

// client is one /ws connection. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub is a led.Driver that broadcasts every frame it is given.
type Hub struct {
	mu         sync.RWMutex
	count      int
	rgb        []byte
	frameID    uint64
	startTime  time.Time
	clients    map[*client]bool
	displaying func() bool
	log        zerolog.Logger

	srv *http.Server
}

func NewHub(count int, log zerolog.Logger) *Hub {
	return &Hub{
		count:     count,
		rgb:       make([]byte, count*3),
		startTime: time.Now(),
		clients:   map[*client]bool{},
		log:       log,
	}
}

// SetDisplaying reports the message state on /health.
func (h *Hub) SetDisplaying(f func() bool) {
	h.mu.Lock()
	h.displaying = f
	h.mu.Unlock()
}

func (h *Hub) Write(frame []model.Color) error {
	rgb := make([]byte, 0, len(frame)*3)
	for _, c := range frame {
		rgb = append(rgb, c.R(), c.G(), c.B())
	}
	h.mu.Lock()
	h.frameID++
	h.rgb = rgb
	b := h.encode(rgb)
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	h.broadcastFrame(clients, b)
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	srv := h.srv
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// ListenAndServe serves the hub on addr in the background.
func (h *Hub) ListenAndServe(addr string) {
	srv := &http.Server{Addr: addr, Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	h.mu.Lock()
	h.srv = srv
	h.mu.Unlock()
	go func() {
		h.log.Info().Str("addr", addr).Msg("preview listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error().Err(err).Msg("preview server")
		}
	}()
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	h.mu.Lock()
	h.clients[c] = true
	c.send <- h.encode(h.rgb)
	h.mu.Unlock()

	go h.writeLoop(c)
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// writeLoop drains c.send until it is closed, then closes the connection.
func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
			h.drop(c)
			return
		}
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id":   h.frameID,
		"uptime_s":   time.Since(h.startTime).Seconds(),
		"count":      h.count,
		"displaying": h.displaying != nil && h.displaying(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (h *Hub) encode(rgb []byte) []byte {
	b, _ := json.Marshal(frameMsg{T: time.Now().UnixNano(), FrameID: h.frameID, RGB: rgb})
	return b
}

// broadcastFrame queues b for every client without waiting on the network.
// A client whose queue is full misses the frame.
func (h *Hub) broadcastFrame(clients []*client, b []byte) {
	for _, c := range clients {
		h.trySend(c, b)
	}
}

func (h *Hub) trySend(c *client, b []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- b:
	default:
		h.log.Trace().Msg("preview client behind; frame dropped")
	}
}
