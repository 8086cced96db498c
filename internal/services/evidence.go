package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/events"
	"github.com/yungbote/veracity-backend/internal/graph"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/types"
)

type SubmitEvidenceInput struct {
	Target       types.TargetRef
	SourceID     uuid.UUID
	SubmittedBy  uuid.UUID
	Type         types.EvidenceType
	Title        string
	Content      string
	BaseWeight   float64
	Confidence   float64
	DecayRate    float64
	RelevantDate *time.Time
}

type EvidenceService interface {
	Submit(ctx context.Context, in SubmitEvidenceInput) (*types.Evidence, error)
	Verify(ctx context.Context, evidenceID, verifierID uuid.UUID) (*types.Evidence, error)
	SetPeerReview(ctx context.Context, evidenceID uuid.UUID, status types.PeerReviewStatus, reviewerID uuid.UUID) (*types.Evidence, error)
	Retract(ctx context.Context, evidenceID, actorID uuid.UUID) (*types.Evidence, error)
	GetByTarget(ctx context.Context, ref types.TargetRef) ([]*types.Evidence, error)
}

type evidenceService struct {
	db          *gorm.DB
	log         *logger.Logger
	repo        repos.EvidenceRepo
	sourceRepo  repos.SourceRepo
	credService SourceCredibilityService
	graphStore  graph.Store
	bus         events.Bus
}

func NewEvidenceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.EvidenceRepo,
	sourceRepo repos.SourceRepo,
	credService SourceCredibilityService,
	graphStore graph.Store,
	bus events.Bus,
) EvidenceService {
	return &evidenceService{
		db:          db,
		log:         baseLog.With("service", "EvidenceService"),
		repo:        repo,
		sourceRepo:  sourceRepo,
		credService: credService,
		graphStore:  graphStore,
		bus:         bus,
	}
}

func (s *evidenceService) Submit(ctx context.Context, in SubmitEvidenceInput) (*types.Evidence, error) {
	if err := in.Target.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	if !in.Type.Valid() {
		return nil, apierr.Validation("unknown evidence type %q", in.Type)
	}
	if in.Title == "" {
		return nil, apierr.Validation("evidence title is required")
	}
	if in.SourceID == uuid.Nil || in.SubmittedBy == uuid.Nil {
		return nil, apierr.Validation("source_id and submitted_by are required")
	}
	for name, v := range map[string]float64{
		"base_weight": in.BaseWeight,
		"confidence":  in.Confidence,
	} {
		if v < 0 || v > 1 {
			return nil, apierr.Validation("%s must be within [0,1], got %v", name, v)
		}
	}
	if in.DecayRate < 0 {
		return nil, apierr.Validation("decay_rate must be non-negative, got %v", in.DecayRate)
	}

	src, err := s.sourceRepo.GetByID(ctx, nil, in.SourceID)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	if src == nil {
		return nil, apierr.NotFound("source %s not found", in.SourceID)
	}

	info, err := s.graphStore.GetTarget(ctx, in.Target)
	if err != nil {
		return nil, err
	}
	if info.IsLevel0 {
		return nil, apierr.Immutability("target %s is a level-0 axiom and cannot receive evidence", in.Target)
	}

	ev := &types.Evidence{
		TargetKind:       in.Target.Kind,
		TargetID:         in.Target.ID,
		SourceID:         in.SourceID,
		SubmittedBy:      in.SubmittedBy,
		Type:             in.Type,
		Title:            in.Title,
		Content:          in.Content,
		BaseWeight:       in.BaseWeight,
		Confidence:       in.Confidence,
		DecayRate:        in.DecayRate,
		RelevantDate:     in.RelevantDate,
		PeerReviewStatus: types.PeerReviewPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.Create(ctx, tx, []*types.Evidence{ev}); err != nil {
			return fmt.Errorf("create evidence: %w", err)
		}
		if _, err := s.credService.Recompute(ctx, tx, in.SourceID); err != nil {
			return fmt.Errorf("refresh source credibility: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, ev, types.ReasonNewEvidence)
	return ev, nil
}

func (s *evidenceService) Verify(ctx context.Context, evidenceID, verifierID uuid.UUID) (*types.Evidence, error) {
	ev, err := s.load(ctx, evidenceID)
	if err != nil {
		return nil, err
	}
	if ev.Retracted {
		return nil, apierr.State("evidence %s is retracted and cannot be verified", evidenceID)
	}
	if ev.Verified {
		return ev, nil
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"verified":    true,
		"verified_by": verifierID,
		"verified_at": now,
	}
	if err := s.applyAndRefresh(ctx, ev, updates); err != nil {
		return nil, err
	}
	ev.Verified = true
	ev.VerifiedBy = &verifierID
	ev.VerifiedAt = &now

	s.publishChange(ctx, ev, types.ReasonNewEvidence)
	return ev, nil
}

func (s *evidenceService) SetPeerReview(ctx context.Context, evidenceID uuid.UUID, status types.PeerReviewStatus, reviewerID uuid.UUID) (*types.Evidence, error) {
	if !status.Valid() {
		return nil, apierr.Validation("unknown peer review status %q", status)
	}
	ev, err := s.load(ctx, evidenceID)
	if err != nil {
		return nil, err
	}
	if ev.Retracted {
		return nil, apierr.State("evidence %s is retracted and cannot be reviewed", evidenceID)
	}
	if ev.PeerReviewStatus == status {
		return ev, nil
	}

	if err := s.applyAndRefresh(ctx, ev, map[string]interface{}{"peer_review_status": status}); err != nil {
		return nil, err
	}
	ev.PeerReviewStatus = status

	s.publishChange(ctx, ev, types.ReasonNewEvidence)
	return ev, nil
}

// Retract soft-removes evidence from all scoring while keeping the record
// for audit continuity. Evidence is never hard-deleted.
func (s *evidenceService) Retract(ctx context.Context, evidenceID, actorID uuid.UUID) (*types.Evidence, error) {
	ev, err := s.load(ctx, evidenceID)
	if err != nil {
		return nil, err
	}
	if ev.Retracted {
		return ev, nil
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"retracted":    true,
		"retracted_at": now,
	}
	if err := s.applyAndRefresh(ctx, ev, updates); err != nil {
		return nil, err
	}
	ev.Retracted = true
	ev.RetractedAt = &now

	s.log.Info("Evidence retracted", "evidence_id", evidenceID, "actor_id", actorID)
	s.publishChange(ctx, ev, types.ReasonEvidenceRemoved)
	return ev, nil
}

func (s *evidenceService) GetByTarget(ctx context.Context, ref types.TargetRef) ([]*types.Evidence, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	return s.repo.GetByTarget(ctx, nil, ref)
}

func (s *evidenceService) load(ctx context.Context, evidenceID uuid.UUID) (*types.Evidence, error) {
	ev, err := s.repo.GetByID(ctx, nil, evidenceID)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}
	if ev == nil {
		return nil, apierr.NotFound("evidence %s not found", evidenceID)
	}
	return ev, nil
}

// applyAndRefresh writes the evidence mutation and the dependent source
// credibility refresh in one transaction.
func (s *evidenceService) applyAndRefresh(ctx context.Context, ev *types.Evidence, updates map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateFields(ctx, tx, ev.ID, updates); err != nil {
			return fmt.Errorf("update evidence: %w", err)
		}
		if _, err := s.credService.Recompute(ctx, tx, ev.SourceID); err != nil {
			return fmt.Errorf("refresh source credibility: %w", err)
		}
		return nil
	})
}

func (s *evidenceService) publishChange(ctx context.Context, ev *types.Evidence, reason types.ChangeReason) {
	if s.bus == nil {
		return
	}
	change := events.ChangeEvent{
		Kind:       events.EvidenceChanged,
		Target:     ev.Target(),
		EntityID:   ev.ID,
		SourceID:   ev.SourceID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, change); err != nil {
		s.log.Warn("Failed to publish evidence change", "evidence_id", ev.ID, "error", err)
	}
}
