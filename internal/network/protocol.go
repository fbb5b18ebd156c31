package network

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gravitas-games/hexgrid/internal/grid"
	"github.com/gravitas-games/hexgrid/pkg/hex"
	"github.com/gravitas-games/hexgrid/pkg/mesh"
	"github.com/gravitas-games/hexgrid/pkg/overlay"
)

// Message types - Client → Server
const (
	MsgTypeBuildMesh = "build_mesh"
	MsgTypeClearMesh = "clear_mesh"
	MsgTypeOutline   = "outline"
	MsgTypeLabels    = "labels"
	MsgTypeCellInfo  = "cell_info"
	MsgTypeCellAt    = "cell_at"
	MsgTypeDistance  = "distance"
	MsgTypePing      = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome       = "welcome"
	MsgTypeMesh          = "mesh"
	MsgTypeMeshCleared   = "mesh_cleared"
	MsgTypeMeshPublished = "mesh_published"
	MsgTypeViewerJoined  = "viewer_joined"
	MsgTypeViewerLeft    = "viewer_left"
	MsgTypeError         = "error"
	MsgTypePong          = "pong"
)

// Error codes sent in ErrorPayload
const (
	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeUnknownType      = "unknown_message_type"
	ErrCodeInvalidDimension = "invalid_dimension"
	ErrCodeInvalidSize      = "invalid_size"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeGridTooLarge     = "grid_too_large"
	ErrCodeOutOfBounds      = "out_of_bounds"
	ErrCodeStoreFailed      = "store_failed"
	ErrCodeSceneFull        = "scene_full"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// BuildMeshPayload requests a mesh build. Omitted fields use the
// configured grid; an explicit zero width or height asks for an empty mesh.
type BuildMeshPayload struct {
	Width       *int             `json:"width,omitempty"`
	Height      *int             `json:"height,omitempty"`
	HexSize     *float32         `json:"hex_size,omitempty"`
	Orientation *hex.Orientation `json:"orientation,omitempty"`
	Publish     bool             `json:"publish"` // Store in Redis and notify other viewers
}

// CellPayload addresses one offset cell
type CellPayload struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// PointPayload is a world-space point on the grid plane
type PointPayload struct {
	X float32 `json:"x"`
	Z float32 `json:"z"`
}

// DistancePayload asks for the step distance between two cells
type DistancePayload struct {
	From hex.Offset `json:"from"`
	To   hex.Offset `json:"to"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	ViewerID    string          `json:"viewer_id"`
	Username    string          `json:"username"`
	SceneID     string          `json:"scene_id"`
	Grid        GridDescription `json:"grid"`
	SceneStatus SceneStatus     `json:"scene_status"`
}

// GridDescription summarizes the configured grid
type GridDescription struct {
	Name        string          `json:"name"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	HexSize     float32         `json:"hex_size"`
	Orientation hex.Orientation `json:"orientation"`
	Origin      mgl32.Vec3      `json:"origin"`
}

// MeshPayload carries a built mesh
type MeshPayload struct {
	Key  string     `json:"key,omitempty"` // Redis key when published
	Mesh *mesh.Mesh `json:"mesh"`
}

// MeshPublishedPayload notifies viewers that a new mesh is available
type MeshPublishedPayload struct {
	Key           string `json:"key"`
	PublishedBy   string `json:"published_by"`
	VertexCount   int    `json:"vertex_count"`
	TriangleCount int    `json:"triangle_count"`
	Timestamp     int64  `json:"timestamp"` // Unix timestamp
}

// MeshClearedPayload confirms a stored mesh was removed
type MeshClearedPayload struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

// OutlinePayload carries the gizmo-style edge segments of the grid
type OutlinePayload struct {
	Segments []overlay.Segment `json:"segments"`
}

// LabelsPayload carries coordinate labels for every cell
type LabelsPayload struct {
	Labels []overlay.Label `json:"labels"`
}

// CellInfoPayload describes a single cell
type CellInfoPayload struct {
	Cell grid.CellInfo `json:"cell"`
}

// CellAtPayload answers a world point lookup
type CellAtPayload struct {
	Cell   hex.Offset `json:"cell"`
	Inside bool       `json:"inside"`
}

// DistanceResultPayload answers a distance request
type DistanceResultPayload struct {
	From     hex.Offset `json:"from"`
	To       hex.Offset `json:"to"`
	Distance int        `json:"distance"`
}

// ViewerJoinedPayload notifies clients when a viewer joins
type ViewerJoinedPayload struct {
	ViewerID string `json:"viewer_id"`
	Username string `json:"username"`
}

// ViewerLeftPayload notifies clients when a viewer leaves
type ViewerLeftPayload struct {
	ViewerID string `json:"viewer_id"`
	Username string `json:"username"`
}

// SceneStatus represents the current scene state
type SceneStatus struct {
	ViewerCount int   `json:"viewer_count"`
	MaxViewers  int   `json:"max_viewers"`
	MeshBuilds  int64 `json:"mesh_builds"`
	Uptime      int64 `json:"uptime"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
