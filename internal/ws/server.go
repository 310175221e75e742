package ws

import (
	"net/http"
	"sync"

	"savora-admin-service/internal/auth"
	"savora-admin-service/internal/config"
	"savora-admin-service/internal/reporting"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server pushes the live report bundle to connected back-office clients.
// Every recompute in the controller fans out to all subscribers.
type Server struct {
	Logger  *zap.Logger
	Config  config.Config
	Reports *reporting.Controller

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func New(logger *zap.Logger, cfg config.Config, reports *reporting.Controller) *Server {
	srv := &Server{
		Logger:  logger,
		Config:  cfg,
		Reports: reports,
		clients: make(map[*wsClient]struct{}),
	}
	reports.OnUpdate(func(agg reporting.Aggregates) {
		srv.broadcast(map[string]any{"type": "reports.state", "data": agg})
	})
	return srv
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (s *Server) subscribe(client *wsClient) (unsubscribe func()) {
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
	}
}

func (s *Server) broadcast(message any) {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
		}
	}
}

// AdminReportsWS upgrades the connection, checks the query token and streams
// report bundles until the client goes away.
func (s *Server) AdminReportsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := auth.ParseBearerToken(r.URL.Query().Get("token"))
	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil || (claims.Role != auth.RoleAdmin && claims.Role != auth.RoleManager) {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	client := &wsClient{conn: conn}
	unsubscribe := s.subscribe(client)
	defer unsubscribe()

	// Send the current bundle immediately when one exists.
	if agg, aggErr := s.Reports.Aggregates(); aggErr == nil {
		_ = client.writeJSON(map[string]any{"type": "reports.state", "data": agg})
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	select {
	case <-clientClosed:
		return
	case <-r.Context().Done():
		return
	}
}
