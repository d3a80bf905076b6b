package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID is a content-addressed identifier derived from the path of the
// form that created the node, e.g. "defsolid/bracket" or
// "difference/bracket/0".
type NodeID [sha256.Size]byte

// ZeroID is the zero NodeID.
var ZeroID NodeID

// NewNodeID hashes path into a NodeID.
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

// IsZero reports whether id is the zero NodeID.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex digits of id.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:4])
}

// MarshalText encodes id as hex so it can be used as a JSON map key.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex NodeID.
func (id *NodeID) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != len(id) {
		return fmt.Errorf("graph: node id %q has wrong length", text)
	}
	_, err := hex.Decode(id[:], text)
	return err
}

// Vec3 is a 3D vector in design units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SourceRef locates the form that created a node.
type SourceRef struct {
	Line int `json:"line,omitempty"`
	Col  int `json:"col,omitempty"`
}
