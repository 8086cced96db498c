package graph

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/types"
)

// TargetInfo is what the scoring engine needs to know about a graph entity.
type TargetInfo struct {
	Ref      types.TargetRef
	IsLevel0 bool
}

// Store is the read boundary to graph storage. The engine never mutates the
// graph; it only resolves targets and reads node credibilities for the
// weakest-link rule.
type Store interface {
	// GetTarget resolves a target reference, returning NotFound via error
	// when the node/edge does not exist.
	GetTarget(ctx context.Context, ref types.TargetRef) (*TargetInfo, error)
	// GetRelatedNodeCredibilities returns the credibility of each given
	// node, in input order. Unknown nodes count as fully credible.
	GetRelatedNodeCredibilities(ctx context.Context, nodeIDs []uuid.UUID) ([]float64, error)
}
