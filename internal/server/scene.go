package server

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/internal/grid"
	"github.com/gravitas-games/hexgrid/internal/network"
	"github.com/gravitas-games/hexgrid/pkg/models"
)

// Scene is the set of viewers looking at one grid
type Scene struct {
	ID        string
	CreatedAt time.Time

	// Viewer management
	viewers     map[string]*models.Viewer // viewerID -> Viewer
	connections map[string]*Connection    // viewerID -> Connection
	mu          sync.RWMutex

	grid       *grid.Grid
	maxViewers int
	meshBuilds atomic.Int64
}

// NewScene creates a scene around an existing grid
func NewScene(id string, g *grid.Grid, cfg config.SceneConfig) *Scene {
	log.Printf("Creating scene: %s", id)

	return &Scene{
		ID:          id,
		CreatedAt:   time.Now(),
		viewers:     make(map[string]*models.Viewer),
		connections: make(map[string]*Connection),
		grid:        g,
		maxViewers:  cfg.MaxViewers,
	}
}

// Grid returns the grid shown in this scene
func (s *Scene) Grid() *grid.Grid {
	return s.grid
}

// IsFull reports whether the viewer limit has been reached
func (s *Scene) IsFull() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.viewers) >= s.maxViewers
}

// AddViewer adds a viewer to the scene. A viewer reconnecting with the same
// ID replaces its previous connection.
func (s *Scene) AddViewer(viewer *models.Viewer, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.viewers[viewer.ID]; !exists && len(s.viewers) >= s.maxViewers {
		return fmt.Errorf("scene %s is full (%d viewers)", s.ID, s.maxViewers)
	}

	s.viewers[viewer.ID] = viewer
	s.connections[viewer.ID] = conn

	log.Printf("Viewer %s (%s) joined scene %s", viewer.Username, viewer.ID, s.ID)
	return nil
}

// RemoveViewer removes a viewer if conn is still its current connection
func (s *Scene) RemoveViewer(viewerID string, conn *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	viewer, exists := s.viewers[viewerID]
	if !exists || s.connections[viewerID] != conn {
		return false
	}
	log.Printf("Viewer %s (%s) left scene %s", viewer.Username, viewerID, s.ID)
	delete(s.viewers, viewerID)
	delete(s.connections, viewerID)
	return true
}

// BroadcastMessage sends a message to all connected viewers
func (s *Scene) BroadcastMessage(msg *network.ServerMessage) {
	s.BroadcastExcept(nil, msg)
}

// BroadcastExcept sends a message to all viewers except the specified connection
func (s *Scene) BroadcastExcept(exclude *Connection, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if conn != exclude {
			conn.SendMessage(msg)
		}
	}
}

// RecordBuild counts a mesh build
func (s *Scene) RecordBuild() {
	s.meshBuilds.Add(1)
}

// GetStatus returns the current scene status
func (s *Scene) GetStatus() network.SceneStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return network.SceneStatus{
		ViewerCount: len(s.viewers),
		MaxViewers:  s.maxViewers,
		MeshBuilds:  s.meshBuilds.Load(),
		Uptime:      int64(time.Since(s.CreatedAt).Seconds()),
	}
}
