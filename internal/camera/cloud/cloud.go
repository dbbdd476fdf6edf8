// Package cloud defines the contracts the camera-uploads engine consumes to
// talk to remote storage: fingerprint search, file upload with lifecycle
// events, server-side copy and coordinate metadata. The s3 subpackage is the
// production implementation.
package cloud

import "context"

// NodeID identifies a remote node.
type NodeID string

// Node is the engine's view of a remote file.
type Node struct {
	ID          NodeID
	ParentID    NodeID
	Fingerprint string
	InTrash     bool
}

// Coordinates is a GPS position attached to a node or extracted from a
// local file.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Searcher finds remote nodes whose fingerprint matches a local file.
type Searcher interface {
	// SearchByFingerprint returns every node carrying the given content
	// fingerprint, including trashed ones.
	SearchByFingerprint(ctx context.Context, fingerprint string) ([]Node, error)
}

// Copier performs a server-side copy of an existing node into a target
// folder under a new name.
type Copier interface {
	Copy(ctx context.Context, node Node, parent NodeID, name string) (NodeID, error)
}

// CoordinateService reads and writes GPS coordinates on remote nodes.
type CoordinateService interface {
	// NodeCoordinates returns the node's coordinates, or nil when the node
	// has none.
	NodeCoordinates(ctx context.Context, id NodeID) (*Coordinates, error)
	SetNodeCoordinates(ctx context.Context, id NodeID, c Coordinates) error
}

// FingerprintSetter assigns the original local fingerprint to a freshly
// uploaded node.
type FingerprintSetter interface {
	SetOriginalFingerprint(ctx context.Context, id NodeID, fingerprint string) error
}
