// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"talkulizer/internal/preset"
	"talkulizer/internal/scene"

	"github.com/gorilla/websocket"
)

// Command actions accepted from WebSocket clients.
const (
	ActionApply      = "apply"      // Apply the preset fields of the command.
	ActionBackground = "background" // Change only the background color.
	ActionRandom     = "random"     // Jump to a random preset.
)

// Command is a control message sent by a client. Apply commands carry the
// preset fields inline:
//
//	{"action":"apply","visualizerType":"rings","colorIndex":2,"spread":10,...}
type Command struct {
	Action string `json:"action"`
	preset.Preset
}

const (
	writeTimeout   = 250 * time.Millisecond
	broadcastQueue = 8
)

// WebSocketPublisher broadcasts every frame as JSON to the clients connected
// on /ws and forwards their commands to a handler.
type WebSocketPublisher struct {
	addr      string
	upgrader  websocket.Upgrader
	mux       *http.ServeMux
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	server    *http.Server
	onCommand func(Command)

	enc     Encoder // Used only from Render.
	dropped uint64
}

// NewWebSocketPublisher creates a publisher for addr. onCommand may be nil,
// in which case client messages are ignored. Call Start to listen on addr,
// or mount the publisher on an existing server as an http.Handler.
func NewWebSocketPublisher(addr string, onCommand func(Command)) *WebSocketPublisher {
	wsp := &WebSocketPublisher{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Renderers may be served from any origin
			},
		},
		mux:       http.NewServeMux(),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, broadcastQueue),
		done:      make(chan struct{}),
		onCommand: onCommand,
	}
	wsp.mux.HandleFunc("/ws", wsp.handleWebSocket)

	wsp.wg.Add(1)
	go wsp.handleBroadcasts()
	return wsp
}

// Start listens on the configured address and serves in the background.
func (wsp *WebSocketPublisher) Start() error {
	ln, err := net.Listen("tcp", wsp.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", wsp.addr, err)
	}
	wsp.server = &http.Server{
		Handler:           wsp.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("websocket server listening on %s", ln.Addr())
		if err := wsp.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("websocket server: %v", err)
		}
	}()
	return nil
}

// ServeHTTP serves the publisher's routes.
func (wsp *WebSocketPublisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsp.mux.ServeHTTP(w, r)
}

// Clients returns the number of connected clients.
func (wsp *WebSocketPublisher) Clients() int {
	wsp.clientsMu.Lock()
	defer wsp.clientsMu.Unlock()
	return len(wsp.clients)
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wsp *WebSocketPublisher) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade: %v", err)
		return
	}

	wsp.clientsMu.Lock()
	wsp.clients[conn] = true
	total := len(wsp.clients)
	wsp.clientsMu.Unlock()
	logger.Infof("client %s connected, total: %d", conn.RemoteAddr(), total)

	go wsp.readCommands(conn)
}

// readCommands decodes client messages until the connection closes.
func (wsp *WebSocketPublisher) readCommands(conn *websocket.Conn) {
	defer wsp.removeClient(conn)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warnf("client %s: invalid command: %v", conn.RemoteAddr(), err)
			continue
		}
		if wsp.onCommand != nil {
			wsp.onCommand(cmd)
		}
	}
}

func (wsp *WebSocketPublisher) removeClient(conn *websocket.Conn) {
	wsp.clientsMu.Lock()
	_, ok := wsp.clients[conn]
	delete(wsp.clients, conn)
	total := len(wsp.clients)
	wsp.clientsMu.Unlock()
	conn.Close()
	if ok {
		logger.Infof("client %s disconnected, total: %d", conn.RemoteAddr(), total)
	}
}

// handleBroadcasts sends messages to all connected clients
func (wsp *WebSocketPublisher) handleBroadcasts() {
	defer wsp.wg.Done()
	for {
		select {
		case <-wsp.done:
			return
		case data := <-wsp.broadcast:
			wsp.clientsMu.Lock()
			for client := range wsp.clients {
				client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
					logger.Warnf("client %s: %v", client.RemoteAddr(), err)
					client.Close()
					delete(wsp.clients, client)
				}
			}
			wsp.clientsMu.Unlock()
		}
	}
}

// Render encodes f and queues it for broadcast. Frames are skipped while no
// client is connected and dropped when the queue is full.
func (wsp *WebSocketPublisher) Render(f *scene.Frame) error {
	if wsp.Clients() == 0 {
		return nil
	}
	data, err := json.Marshal(wsp.enc.Encode(f))
	if err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", f.Seq, err)
	}
	select {
	case wsp.broadcast <- data:
	case <-wsp.done:
	default:
		wsp.dropped++
		if wsp.dropped%100 == 1 {
			logger.Debugf("broadcast queue full, %d frames dropped", wsp.dropped)
		}
	}
	return nil
}

// Close disconnects all clients and shuts down the server.
func (wsp *WebSocketPublisher) Close() error {
	var err error
	wsp.closeOnce.Do(func() {
		logger.Infof("closing websocket publisher")
		close(wsp.done)
		wsp.wg.Wait()

		wsp.clientsMu.Lock()
		for client := range wsp.clients {
			client.Close()
		}
		wsp.clients = make(map[*websocket.Conn]bool)
		wsp.clientsMu.Unlock()

		if wsp.server != nil {
			err = wsp.server.Close()
		}
	})
	return err
}

// Ensure WebSocketPublisher satisfies the interface
var _ Publisher = (*WebSocketPublisher)(nil)
