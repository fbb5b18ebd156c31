package models

import "time"

// Viewer is an authenticated client attached to the scene, typically a
// render host or an editor overlay.
type Viewer struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`

	// Scene state
	SceneID string `json:"scene_id"`
}

// PermPublishMesh allows a viewer to publish meshes and clear published ones.
const PermPublishMesh int64 = 1 << 0

// IsActive checks if the account is activated and not banned
func (v *Viewer) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return v.Activated > 0
}

// IsBanned checks if the account is banned
func (v *Viewer) IsBanned() bool {
	return v.Activated == -1
}

// CanPublish reports whether the viewer may write to the mesh store
func (v *Viewer) CanPublish() bool {
	return v.Permissions&PermPublishMesh != 0
}
