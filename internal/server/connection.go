package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gravitas-games/hexgrid/internal/network"
	"github.com/gravitas-games/hexgrid/pkg/hex"
	"github.com/gravitas-games/hexgrid/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a viewer
type Connection struct {
	ws     *websocket.Conn
	server *Server
	viewer *models.Viewer

	// Buffered channel for outbound messages
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates a new connection for an authenticated viewer
func NewConnection(ws *websocket.Conn, server *Server, viewer *models.Viewer) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		viewer: viewer,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the handlers
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError(network.ErrCodeInvalidMessage, "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.server.ctx.Done():
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	switch msg.Type {
	case network.MsgTypeBuildMesh:
		c.handleBuildMesh(msg.Payload)

	case network.MsgTypeClearMesh:
		c.handleClearMesh()

	case network.MsgTypeOutline:
		c.handleOutline()

	case network.MsgTypeLabels:
		c.handleLabels()

	case network.MsgTypeCellInfo:
		c.handleCellInfo(msg.Payload)

	case network.MsgTypeCellAt:
		c.handleCellAt(msg.Payload)

	case network.MsgTypeDistance:
		c.handleDistance(msg.Payload)

	case network.MsgTypePing:
		c.handlePing()

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.SendError(network.ErrCodeUnknownType, "Unknown message type")
	}
}

// handleBuildMesh builds a mesh for the scene grid, optionally resized,
// and publishes it when asked to
func (c *Connection) handleBuildMesh(payload json.RawMessage) {
	var req network.BuildMeshPayload
	if !c.decode(payload, &req) {
		return
	}

	g, err := c.server.scene.Grid().Resized(req.Width, req.Height, req.HexSize, req.Orientation)
	if err != nil {
		c.sendGeometryError(err)
		return
	}
	if limit := c.server.config.Scene.MaxGridCells; g.Exceeds(limit) {
		c.SendError(network.ErrCodeGridTooLarge, fmt.Sprintf("grid %dx%d exceeds the limit of %d cells", g.Width, g.Height, limit))
		return
	}
	if req.Publish && !c.viewer.CanPublish() {
		c.SendError(network.ErrCodeInvalidRequest, "Viewer may not publish meshes")
		return
	}

	m, err := g.Mesh()
	if err != nil {
		c.sendGeometryError(err)
		return
	}
	c.server.scene.RecordBuild()

	out := network.MeshPayload{Mesh: m}
	if req.Publish {
		key := meshKey(c.server.config.Redis.MeshPrefix, g.Name)
		if err := c.server.store.Put(c.server.ctx, key, m); err != nil {
			log.Printf("Failed to publish mesh: %v", err)
			c.SendError(network.ErrCodeStoreFailed, "Failed to publish mesh")
			return
		}
		out.Key = key

		c.server.scene.BroadcastExcept(c, &network.ServerMessage{
			Type: network.MsgTypeMeshPublished,
			Payload: network.MeshPublishedPayload{
				Key:           key,
				PublishedBy:   c.viewer.Username,
				VertexCount:   m.VertexCount(),
				TriangleCount: m.TriangleCount(),
				Timestamp:     time.Now().Unix(),
			},
		})
		log.Printf("Mesh %s published by %s (%d vertices)", key, c.viewer.Username, m.VertexCount())
	}

	c.SendMessage(&network.ServerMessage{Type: network.MsgTypeMesh, Payload: out})
}

// handleClearMesh removes the published mesh of the scene grid
func (c *Connection) handleClearMesh() {
	if !c.viewer.CanPublish() {
		c.SendError(network.ErrCodeInvalidRequest, "Viewer may not clear meshes")
		return
	}

	key := meshKey(c.server.config.Redis.MeshPrefix, c.server.scene.Grid().Name)
	removed, err := c.server.store.Delete(c.server.ctx, key)
	if err != nil {
		log.Printf("Failed to clear mesh: %v", err)
		c.SendError(network.ErrCodeStoreFailed, "Failed to clear mesh")
		return
	}

	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeMeshCleared,
		Payload: network.MeshClearedPayload{Key: key, Removed: removed},
	})
}

func (c *Connection) handleOutline() {
	segs, err := c.server.scene.Grid().Outline()
	if err != nil {
		c.sendGeometryError(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeOutline,
		Payload: network.OutlinePayload{Segments: segs},
	})
}

func (c *Connection) handleLabels() {
	labels, err := c.server.scene.Grid().Labels()
	if err != nil {
		c.sendGeometryError(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeLabels,
		Payload: network.LabelsPayload{Labels: labels},
	})
}

func (c *Connection) handleCellInfo(payload json.RawMessage) {
	var req network.CellPayload
	if !c.decode(payload, &req) {
		return
	}
	info, err := c.server.scene.Grid().Cell(req.X, req.Z)
	if err != nil {
		c.SendError(network.ErrCodeOutOfBounds, err.Error())
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeCellInfo,
		Payload: network.CellInfoPayload{Cell: info},
	})
}

func (c *Connection) handleCellAt(payload json.RawMessage) {
	var req network.PointPayload
	if !c.decode(payload, &req) {
		return
	}
	cell, inside := c.server.scene.Grid().CellAt(req.X, req.Z)
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeCellAt,
		Payload: network.CellAtPayload{Cell: cell, Inside: inside},
	})
}

func (c *Connection) handleDistance(payload json.RawMessage) {
	var req network.DistancePayload
	if !c.decode(payload, &req) {
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeDistance,
		Payload: network.DistanceResultPayload{
			From:     req.From,
			To:       req.To,
			Distance: c.server.scene.Grid().Distance(req.From, req.To),
		},
	})
}

// handlePing handles ping requests
func (c *Connection) handlePing() {
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePong,
		Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

// decode unmarshals an optional payload, replying with an error on failure
func (c *Connection) decode(payload json.RawMessage, v interface{}) bool {
	if len(payload) == 0 {
		return true
	}
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("Failed to parse payload from %s: %v", c.viewer.Username, err)
		c.SendError(network.ErrCodeInvalidRequest, "Invalid payload")
		return false
	}
	return true
}

// sendGeometryError maps hex validation errors to protocol error codes
func (c *Connection) sendGeometryError(err error) {
	switch {
	case errors.Is(err, hex.ErrInvalidDimension):
		c.SendError(network.ErrCodeInvalidDimension, err.Error())
	case errors.Is(err, hex.ErrInvalidSize):
		c.SendError(network.ErrCodeInvalidSize, err.Error())
	default:
		c.SendError(network.ErrCodeInvalidRequest, err.Error())
	}
}

// SendMessage queues a message for the viewer
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Printf("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the viewer
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close removes the viewer from the scene and stops the write pump
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		if c.server.scene.RemoveViewer(c.viewer.ID, c) {
			c.server.scene.BroadcastMessage(&network.ServerMessage{
				Type: network.MsgTypeViewerLeft,
				Payload: network.ViewerLeftPayload{
					ViewerID: c.viewer.ID,
					Username: c.viewer.Username,
				},
			})
		}
		close(c.done)
	})
}
