package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/internal/grid"
	"github.com/gravitas-games/hexgrid/internal/network"
	"github.com/gravitas-games/hexgrid/pkg/models"
)

// Server serves grid meshes and overlays to WebSocket viewers
type Server struct {
	config    *config.Config
	scene     *Scene
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	validator tokenValidator
	store     MeshStore
	redis     *redis.Client // nil when Redis is disabled

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server for g. When cfg.Redis.Address is empty, published
// meshes stay in memory and the token blacklist is not consulted.
func New(cfg *config.Config, g *grid.Grid) (*Server, error) {
	log.Println("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	var (
		redisClient *redis.Client
		store       MeshStore
		blacklist   blacklistChecker
	)
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("Connected to Redis")

		ttl := time.Duration(cfg.Redis.MeshTTLSeconds) * time.Second
		store = NewRedisMeshStore(redisClient, cfg.Redis.MeshChannel, ttl)
		blacklist = redisClient
	} else {
		log.Println("Redis disabled, published meshes kept in memory")
		store = NewMemoryMeshStore()
	}

	validator, err := NewJWTValidator(ctx, cfg, blacklist)
	if err != nil {
		cancel()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
	}

	srv := newServer(ctx, cancel, cfg, g, validator, store)
	srv.redis = redisClient

	log.Println("Server initialized successfully")
	return srv, nil
}

func newServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, g *grid.Grid,
	validator tokenValidator, store MeshStore) *Server {
	return &Server{
		config:      cfg,
		scene:       NewScene(g.Name, g, cfg.Scene),
		validator:   validator,
		store:       store,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		// Viewers are render and editor hosts, not browsers, so any origin
		// is accepted. The subprotocol is echoed when the token arrives as
		// "access_token, <token>".
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{"access_token"},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	log.Printf("Starting WebSocket server on %s", addr)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("WebSocket endpoint: ws://%s/ws", addr)
	log.Printf("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	log.Println("Shutting down server...")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	s.connMu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.connMu.RUnlock()
	for _, conn := range conns {
		conn.Close()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// handleWebSocket authenticates and upgrades viewer connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log.Printf("New WebSocket connection request from %s", r.RemoteAddr)

	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		log.Printf("Missing JWT token from %s", r.RemoteAddr)
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}

	viewer, err := s.validator.ValidateToken(tokenString)
	if err != nil {
		log.Printf("Invalid JWT token from %s: %v", r.RemoteAddr, err)
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	if s.scene.IsFull() {
		http.Error(w, "Scene is full", http.StatusServiceUnavailable)
		return
	}

	log.Printf("Authenticated viewer: %s (%s) from %s", viewer.Username, viewer.ID, r.RemoteAddr)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(ws, s, viewer)
	viewer.Connected = true
	viewer.ConnectedAt = time.Now()
	viewer.SceneID = s.scene.ID

	if err := s.scene.AddViewer(viewer, conn); err != nil {
		log.Printf("Failed to add viewer to scene: %v", err)
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, network.ErrCodeSceneFull),
			time.Now().Add(writeWait))
		ws.Close()
		return
	}

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	conn.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeWelcome,
		Payload: s.welcome(viewer),
	})
	s.scene.BroadcastExcept(conn, &network.ServerMessage{
		Type: network.MsgTypeViewerJoined,
		Payload: network.ViewerJoinedPayload{
			ViewerID: viewer.ID,
			Username: viewer.Username,
		},
	})

	log.Printf("WebSocket connection established: %s (%s)", viewer.Username, r.RemoteAddr)

	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	log.Printf("WebSocket connection closed: %s (%s)", viewer.Username, r.RemoteAddr)
}

func (s *Server) welcome(viewer *models.Viewer) network.WelcomePayload {
	g := s.scene.Grid()
	return network.WelcomePayload{
		ViewerID: viewer.ID,
		Username: viewer.Username,
		SceneID:  s.scene.ID,
		Grid: network.GridDescription{
			Name:        g.Name,
			Width:       g.Width,
			Height:      g.Height,
			HexSize:     g.HexSize,
			Orientation: g.Orientation,
			Origin:      g.Origin,
		},
		SceneStatus: s.scene.GetStatus(),
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
