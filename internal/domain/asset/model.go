package asset

import "time"

// LifecycleState tracks where an asset is in its processing lifecycle.
type LifecycleState string

const (
	StatePending    LifecycleState = "Pending"
	StateProcessing LifecycleState = "Processing"
	StateCompleted  LifecycleState = "Completed"
	StateFailed     LifecycleState = "Failed"
)

// Terminal reports whether the state ends the processing lifecycle.
func (s LifecycleState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Verdict is the binary sensitivity classification of an asset.
type Verdict string

const (
	VerdictPending Verdict = "Pending"
	VerdictSafe    Verdict = "Safe"
	VerdictFlagged Verdict = "Flagged"
)

// GlobalChannel is the broadcast channel for assets without a tenant.
const GlobalChannel = "global"

// ChannelFor returns the broadcast channel key for a tenant reference.
func ChannelFor(tenantID *string) string {
	if tenantID == nil || *tenantID == "" {
		return GlobalChannel
	}
	return *tenantID
}

// MediaAsset represents one uploaded video and its derived artifacts.
type MediaAsset struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Filename      string         `json:"filename"`
	OriginalName  string         `json:"original_name"`
	Path          string         `json:"-"`
	Size          int64          `json:"size"`
	MimeType      string         `json:"mimetype"`
	Duration      float64        `json:"duration"`
	Resolution    string         `json:"resolution"`
	Codec         string         `json:"codec"`
	Bitrate       int64          `json:"bitrate"`
	State         LifecycleState `json:"status"`
	Sensitivity   Verdict        `json:"sensitivity_status"`
	Progress      int            `json:"processing_progress"`
	ThumbnailKey  string         `json:"thumbnail_key,omitempty"`
	OwnerID       string         `json:"uploaded_by"`
	TenantID      *string        `json:"tenant_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Channel returns the broadcast channel key for this asset.
func (a *MediaAsset) Channel() string {
	return ChannelFor(a.TenantID)
}

// Role is the mutation right granted to a principal.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// Principal identifies an authenticated caller and its tenant scope.
// Admins carry a nil tenant and see across all tenants.
type Principal struct {
	UserID   string
	Role     Role
	TenantID *string
}

// CanMutate reports whether the principal may upload or delete assets.
func (p Principal) CanMutate() bool {
	return p.Role == RoleAdmin || p.Role == RoleEditor
}

// Channel returns the broadcast channel key the principal subscribes to.
func (p Principal) Channel() string {
	if p.Role == RoleAdmin {
		return GlobalChannel
	}
	return ChannelFor(p.TenantID)
}

// Scope describes record-store visibility for a principal.
type Scope struct {
	// All grants unrestricted visibility across tenants.
	All bool
	// TenantID restricts visibility to one tenant when All is false.
	TenantID *string
}

// ScopeFor derives the record-store scope for a principal.
func ScopeFor(p Principal) Scope {
	if p.Role == RoleAdmin {
		return Scope{All: true}
	}
	return Scope{TenantID: p.TenantID}
}

// ProbeResult carries the technical metadata derived from a media file.
type ProbeResult struct {
	DurationSeconds float64
	Resolution      string
	Codec           string
	Bitrate         int64
}
