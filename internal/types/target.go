package types

import (
	"fmt"

	"github.com/google/uuid"
)

// TargetKind discriminates the two graph entities that can carry a veracity
// score. Every stored row keeps kind+id as a pair; TargetRef is the value
// form passed between services so call sites switch exhaustively on Kind
// instead of re-checking a node-XOR-edge invariant at runtime.
type TargetKind string

const (
	TargetNode TargetKind = "node"
	TargetEdge TargetKind = "edge"
)

type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

func NodeRef(id uuid.UUID) TargetRef { return TargetRef{Kind: TargetNode, ID: id} }
func EdgeRef(id uuid.UUID) TargetRef { return TargetRef{Kind: TargetEdge, ID: id} }

func (r TargetRef) Validate() error {
	switch r.Kind {
	case TargetNode, TargetEdge:
	default:
		return fmt.Errorf("target kind must be node or edge, got %q", r.Kind)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("target id is required")
	}
	return nil
}

// Key is the stable routing/cache key for the target.
func (r TargetRef) Key() string {
	return string(r.Kind) + ":" + r.ID.String()
}

func (r TargetRef) String() string { return r.Key() }

func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case TargetNode:
		return TargetNode, nil
	case TargetEdge:
		return TargetEdge, nil
	}
	return "", fmt.Errorf("unknown target kind %q", s)
}
