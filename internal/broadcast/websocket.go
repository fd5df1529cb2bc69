package broadcast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	pingInterval = 25 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketServer streams hub events to websocket clients, one JSON text
// frame per event. Clients are receive-only; anything they send is ignored.
type WebSocketServer struct {
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
	buffer   int
}

// NewWebSocketServer creates a handler serving events published into hub.
// A nil logger disables logging.
func NewWebSocketServer(hub *Hub, logger *log.Logger) *WebSocketServer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &WebSocketServer{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		buffer: DefaultListenerBuffer,
	}
}

// ServeHTTP upgrades the request and forwards events until the client goes away.
func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(s.buffer)
	defer sub.Close()

	s.logger.Info("listener connected", "remote", r.RemoteAddr, "listeners", s.hub.Count())
	defer s.logger.Info("listener disconnected", "remote", r.RemoteAddr)

	gone := make(chan struct{})
	go s.readLoop(conn, gone)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case env := <-sub.Events():
			data, err := Encode(env)
			if err != nil {
				s.logger.Error("dropping event", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *WebSocketServer) readLoop(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Client receives events from a WebSocketServer.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to a WebSocketServer at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("broadcast: cannot dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Next blocks until the next event arrives.
func (c *Client) Next() (Envelope, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return Envelope{}, err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return Decode(data)
	}
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
