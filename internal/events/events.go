package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/types"
)

type Kind string

const (
	EvidenceChanged          Kind = "evidence_changed"
	ChallengeCreated         Kind = "challenge_created"
	ChallengeResolved        Kind = "challenge_resolved"
	SourceCredibilityChanged Kind = "source_credibility_changed"
)

// ChangeEvent is one "something the score depends on moved" notification.
// Target is set for target-scoped kinds; SourceID for source-scoped ones.
type ChangeEvent struct {
	Kind       Kind               `json:"kind"`
	Target     types.TargetRef    `json:"target,omitempty"`
	EntityID   uuid.UUID          `json:"entity_id,omitempty"`
	SourceID   uuid.UUID          `json:"source_id,omitempty"`
	Reason     types.ChangeReason `json:"reason"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Bus carries change events from the write services to the recomputation
// coordinator. Delivery is at-least-once; consumers must be idempotent.
type Bus interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev ChangeEvent)) error
	Close() error
}
