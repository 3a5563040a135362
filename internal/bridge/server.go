package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/soundscape/internal/command"
	"github.com/udisondev/soundscape/internal/config"
	"github.com/udisondev/soundscape/internal/engine"
)

const (
	handshakeTimeout = 5 * time.Second
	closeGrace       = time.Second
)

// Server accepts platform connections.
type Server struct {
	cfg     config.BridgeConfig
	eng     *engine.Engine
	handler *command.Handler
	hub     *Hub
	auth    *Authenticator

	upgrader websocket.Upgrader
	seq      atomic.Uint64

	// фоновые ожидания выделения (create с wait)
	workers sync.WaitGroup
}

// NewServer creates a bridge server. hub must be the output the engine
// was created with.
func NewServer(cfg config.BridgeConfig, eng *engine.Engine, handler *command.Handler, hub *Hub) *Server {
	if cfg.Path == "" {
		cfg.Path = "/bridge"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 120 * time.Second
	}
	return &Server{
		cfg:     cfg,
		eng:     eng,
		handler: handler,
		hub:     hub,
		auth:    NewAuthenticator(cfg.AuthSecret),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			// платформы не браузеры, Origin не проверяем
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the bridge path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	return mux
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: handshakeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("bridge listening", "address", ln.Addr().String(), "path", s.cfg.Path, "auth", s.auth.Enabled())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("bridge shutdown", "error", err)
		}
		s.workers.Wait()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving bridge: %w", err)
	}
}

func (s *Server) serveWS(rw http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		slog.Debug("bridge upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer ws.Close()

	platform, ok := s.handshake(ws)
	if !ok {
		return
	}

	id := platform + "#" + strconv.FormatUint(s.seq.Add(1), 10)
	c := newConn(id, s.cfg.SendQueueSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// ReadMessage не знает про ctx: закрываем сокет при остановке
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	slog.Info("platform connected", "conn", id, "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ws, c, cancel)
	}()

	s.readLoop(ctx, ws, c)

	// игроки отключившейся платформы выходят
	for _, player := range s.hub.release(c) {
		s.eng.Do(func() {
			if err := s.eng.Quit(player); err != nil {
				slog.Debug("quit on disconnect", "player", player, "error", err)
			}
		})
	}
	c.close()
	<-writerDone

	slog.Info("platform disconnected", "conn", id)
}

func (s *Server) handshake(ws *websocket.Conn) (string, bool) {
	_ = ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return "", false
	}

	var hello Inbound
	if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != TypeHello {
		s.closeWith(ws, websocket.ClosePolicyViolation, "expected hello")
		return "", false
	}

	platform, err := s.auth.Verify(hello.Token)
	if err != nil {
		slog.Warn("bridge handshake rejected", "remote", ws.RemoteAddr().String(), "error", err)
		s.closeWith(ws, websocket.ClosePolicyViolation, "unauthorized")
		return "", false
	}
	if platform == "" {
		platform = "platform"
	}

	ack, _ := json.Marshal(Reply{Type: TypeReply, RequestID: hello.RequestID, OK: true})
	_ = ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, ack); err != nil {
		return "", false
	}
	return platform, true
}

func (s *Server) closeWith(ws *websocket.Conn, code int, reason string) {
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(closeGrace))
}

func (s *Server) writeLoop(ws *websocket.Conn, c *conn, cancel context.CancelFunc) {
	for b := range c.out {
		_ = ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			slog.Debug("bridge write failed", "conn", c.id, "error", err)
			cancel()
			// дочитываем очередь, чтобы send не упирался в полный канал
			for range c.out {
			}
			return
		}
	}
	s.closeWith(ws, websocket.CloseNormalClosure, "")
}

func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, c *conn) {
	for {
		_ = ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("bridge read failed", "conn", c.id, "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var f Inbound
		if err := json.Unmarshal(msg, &f); err != nil {
			c.reply("", nil, fmt.Errorf("%w: malformed frame: %v", command.ErrBadArgument, err))
			continue
		}
		s.dispatch(ctx, c, f)
	}
}

// reply sends the outcome of a request. Frames without a request id get
// no reply.
func (c *conn) reply(requestID string, payload any, err error) {
	if requestID == "" {
		if err != nil {
			slog.Debug("bridge request failed", "conn", c.id, "error", err)
		}
		return
	}
	r := Reply{Type: TypeReply, RequestID: requestID, OK: err == nil, Payload: payload}
	if err != nil {
		r.ErrorKind = command.ErrorKind(err)
		r.Error = err.Error()
	}
	c.send(r)
}
