// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"lightbox/internal/frame"
	"lightbox/internal/log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// FramesPath is the upgrade endpoint.
	FramesPath = "/frames"

	broadcastQueue = 8
	writeTimeout   = 250 * time.Millisecond
)

// frameMessage is the JSON shape broadcast to clients. Pixels is encoded
// as base64 by encoding/json.
type frameMessage struct {
	Seq    uint64 `json:"seq"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"pixels"`
}

// WebSocketSink broadcasts committed frames to every connected client.
type WebSocketSink struct {
	upgrader  websocket.Upgrader
	listener  net.Listener
	server    *http.Server
	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex
	broadcast chan frameMessage
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	dropped   atomic.Uint64
}

// NewWebSocketSink listens on addr and starts serving FramesPath.
func NewWebSocketSink(addr string) (*WebSocketSink, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on '%s': %w", addr, err)
	}

	ws := &WebSocketSink{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		listener:  ln,
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan frameMessage, broadcastQueue),
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(FramesPath, ws.handleWebSocket)
	ws.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ws.wg.Add(2)
	go func() {
		defer ws.wg.Done()
		log.Infof("WebSocketSink: Serving %s on %s", FramesPath, ln.Addr())
		if err := ws.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketSink: Server error: %v", err)
		}
	}()
	go ws.handleBroadcasts()

	return ws, nil
}

// Addr returns the address the sink is listening on.
func (ws *WebSocketSink) Addr() net.Addr {
	return ws.listener.Addr()
}

// Clients returns the number of connected clients.
func (ws *WebSocketSink) Clients() int {
	ws.clientsMu.Lock()
	defer ws.clientsMu.Unlock()
	return len(ws.clients)
}

// Dropped returns how many frames were discarded because the queue was full.
func (ws *WebSocketSink) Dropped() uint64 {
	return ws.dropped.Load()
}

func (ws *WebSocketSink) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketSink: Upgrade error: %v", err)
		return
	}

	ws.clientsMu.Lock()
	select {
	case <-ws.done:
		ws.clientsMu.Unlock()
		conn.Close()
		return
	default:
	}
	ws.clients[conn] = struct{}{}
	total := len(ws.clients)
	ws.clientsMu.Unlock()
	log.Infof("WebSocketSink: Client %s connected, total: %d", conn.RemoteAddr(), total)

	// Clients only listen; reading drives close detection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	ws.clientsMu.Lock()
	if _, ok := ws.clients[conn]; ok {
		delete(ws.clients, conn)
		conn.Close()
	}
	total = len(ws.clients)
	ws.clientsMu.Unlock()
	log.Infof("WebSocketSink: Client disconnected, total: %d", total)
}

func (ws *WebSocketSink) handleBroadcasts() {
	defer ws.wg.Done()
	for {
		select {
		case <-ws.done:
			return
		case msg := <-ws.broadcast:
			ws.clientsMu.Lock()
			for client := range ws.clients {
				client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteJSON(msg); err != nil {
					log.Warnf("WebSocketSink: Error sending to %s: %v", client.RemoteAddr(), err)
					client.Close()
					delete(ws.clients, client)
				}
			}
			ws.clientsMu.Unlock()
		}
	}
}

// Send queues the frame for broadcast, dropping it when the queue is full.
func (ws *WebSocketSink) Send(f frame.Frame) error {
	select {
	case <-ws.done:
		return ErrClosed
	default:
	}

	msg := frameMessage{
		Seq:    f.Seq,
		Width:  f.Width,
		Height: f.Height,
		Pixels: f.AppendRGB(make([]byte, 0, len(f.Pixels)*3)),
	}
	select {
	case ws.broadcast <- msg:
	default:
		if ws.dropped.Add(1)%100 == 1 {
			log.Debugf("WebSocketSink: queue full, %d frames dropped", ws.dropped.Load())
		}
	}
	return nil
}

// Close stops the server and disconnects all clients.
func (ws *WebSocketSink) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		log.Infof("WebSocketSink: Closing server")
		close(ws.done)
		err = ws.server.Close()

		// Hijacked connections are not closed by the server.
		ws.clientsMu.Lock()
		for client := range ws.clients {
			client.Close()
		}
		clear(ws.clients)
		ws.clientsMu.Unlock()

		ws.wg.Wait()
	})
	return err
}

var _ Sink = (*WebSocketSink)(nil)
