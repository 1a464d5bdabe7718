// Package wsserver exposes the coordinator over websocket frames. A client
// sends a "query" frame and receives one "response" frame per query.
package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 16
)

const (
	MessageTypeQuery    = "query"
	MessageTypeResponse = "response"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
	MessageTypeError    = "error"
)

type Config struct {
	Addr           string `default:":8080"`
	Path           string `default:"/ws"`
	MaxMessageSize int64  `split_words:"true" default:"65536"`
}

// WSMessage is the envelope of every frame in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	ID        string          `json:"id,omitempty"`
}

type QueryPayload struct {
	Query string `json:"query"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type Server struct {
	processor contractx.QueryProcessor
	cfg       Config
	upgrader  websocket.Upgrader
	log       zerolog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func New(processor contractx.QueryProcessor, cfg Config) (*Server, error) {
	if processor == nil {
		return nil, errors.New("query processor is required")
	}
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = "/ws"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 65536
	}
	return &Server{
		processor: processor,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     logx.Component("wsserver"),
		clients: map[*client]struct{}{},
	}, nil
}

// Handler serves the websocket endpoint and a plain health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": s.ClientCount()})
	})
	return mux
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Str("path", s.cfg.Path).Msg("websocket server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	go c.writePump()
	go c.readPump(context.WithoutCancel(r.Context()))
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.done)
	}
}

type client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

// readPump handles one frame at a time, so queries on a connection are
// answered in the order they were sent.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.server.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.server.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		c.handleMessage(ctx, data)
	}
}

func (c *client) handleMessage(ctx context.Context, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.sendFrame(MessageTypePong, msg.ID, nil)

	case MessageTypeQuery:
		var payload QueryPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError(msg.ID, "invalid query payload")
			return
		}
		if strings.TrimSpace(payload.Query) == "" {
			c.sendError(msg.ID, "query is required")
			return
		}
		resp := c.server.processor.ProcessUserQuery(ctx, payload.Query)
		c.sendFrame(MessageTypeResponse, msg.ID, resp)

	default:
		c.sendError(msg.ID, "unknown message type "+msg.Type)
	}
}

func (c *client) sendError(id, message string) {
	c.sendFrame(MessageTypeError, id, ErrorPayload{Message: message})
}

func (c *client) sendFrame(msgType, id string, payload any) {
	msg := WSMessage{Type: msgType, Timestamp: time.Now().UTC(), ID: id}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.server.log.Error().Err(err).Str("type", msgType).Msg("encode frame payload")
			return
		}
		msg.Payload = raw
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case c.send <- frame:
	case <-c.done:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.server.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
