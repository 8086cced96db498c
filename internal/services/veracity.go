package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/graph"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/scoring"
	"github.com/yungbote/veracity-backend/internal/types"
)

type VeracityService interface {
	// Recompute rebuilds the target's score from scratch and swaps the
	// cached row in one transaction. History is written only when the
	// score moved materially.
	Recompute(ctx context.Context, ref types.TargetRef, reason types.ChangeReason, triggeredByKind string, triggeredByID *uuid.UUID) (*types.VeracityScore, error)
	// Get returns the cached score, or a neutral unpersisted default when
	// the target has never been scored.
	Get(ctx context.Context, ref types.TargetRef) (*types.VeracityScore, error)
	History(ctx context.Context, ref types.TargetRef, limit int) ([]*types.VeracityScoreHistory, error)
	GetInquiry(ctx context.Context, inquiryID uuid.UUID) (*types.FormalInquiry, error)
	// ApplyInquiryCeiling recomputes an inquiry's confidence ceiling as
	// the weakest credibility among its related nodes.
	ApplyInquiryCeiling(ctx context.Context, inquiryID uuid.UUID) (*types.FormalInquiry, error)
}

type veracityService struct {
	db             *gorm.DB
	log            *logger.Logger
	scoreRepo      repos.VeracityScoreRepo
	historyRepo    repos.VeracityHistoryRepo
	evidenceRepo   repos.EvidenceRepo
	challengeRepo  repos.ChallengeRepo
	resolutionRepo repos.ChallengeResolutionRepo
	inquiryRepo    repos.FormalInquiryRepo
	credService    SourceCredibilityService
	graphStore     graph.Store
	cache          *gocache.Cache
}

func NewVeracityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scoreRepo repos.VeracityScoreRepo,
	historyRepo repos.VeracityHistoryRepo,
	evidenceRepo repos.EvidenceRepo,
	challengeRepo repos.ChallengeRepo,
	resolutionRepo repos.ChallengeResolutionRepo,
	inquiryRepo repos.FormalInquiryRepo,
	credService SourceCredibilityService,
	graphStore graph.Store,
	cacheTTL time.Duration,
) VeracityService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &veracityService{
		db:             db,
		log:            baseLog.With("service", "VeracityService"),
		scoreRepo:      scoreRepo,
		historyRepo:    historyRepo,
		evidenceRepo:   evidenceRepo,
		challengeRepo:  challengeRepo,
		resolutionRepo: resolutionRepo,
		inquiryRepo:    inquiryRepo,
		credService:    credService,
		graphStore:     graphStore,
		cache:          gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *veracityService) Recompute(ctx context.Context, ref types.TargetRef, reason types.ChangeReason, triggeredByKind string, triggeredByID *uuid.UUID) (*types.VeracityScore, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	info, err := s.graphStore.GetTarget(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next, err := s.computeScore(ctx, ref, info, now)
	if err != nil {
		return nil, err
	}

	var stored *types.VeracityScore
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous, err := s.scoreRepo.GetByTarget(ctx, tx, ref)
		if err != nil {
			return fmt.Errorf("load previous score: %w", err)
		}
		previousScore := scoring.NeutralScore
		if previous != nil {
			previousScore = previous.Score
			next.ID = previous.ID
			next.CreatedAt = previous.CreatedAt
		}

		if err := s.scoreRepo.Upsert(ctx, tx, next); err != nil {
			return fmt.Errorf("store score: %w", err)
		}

		delta := next.Score - previousScore
		if math.Abs(delta) > scoring.HistoryThreshold {
			entry := &types.VeracityScoreHistory{
				TargetKind:      ref.Kind,
				TargetID:        ref.ID,
				OldScore:        previousScore,
				NewScore:        next.Score,
				Delta:           delta,
				ChangeReason:    reason,
				TriggeredByKind: triggeredByKind,
				TriggeredByID:   triggeredByID,
			}
			if _, err := s.historyRepo.Create(ctx, tx, []*types.VeracityScoreHistory{entry}); err != nil {
				return fmt.Errorf("record score history: %w", err)
			}
		}
		stored = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ref.Key(), stored, gocache.DefaultExpiration)
	s.log.Debug("Recomputed veracity score",
		"target", ref.String(),
		"score", stored.Score,
		"consensus", stored.ConsensusScore,
		"challenge_impact", stored.ChallengeImpact,
		"reason", reason,
	)
	return stored, nil
}

// computeScore builds the next score row without touching the database
// row being replaced.
func (s *veracityService) computeScore(ctx context.Context, ref types.TargetRef, info *graph.TargetInfo, now time.Time) (*types.VeracityScore, error) {
	next := &types.VeracityScore{
		TargetKind:          ref.Kind,
		TargetID:            ref.ID,
		Score:               scoring.NeutralScore,
		ConsensusScore:      scoring.NeutralScore,
		TemporalDecayFactor: 1.0,
		CalculationMethod:   types.CalcWeightedEvidence,
		CalculatedAt:        now,
	}

	// Axioms are true by definition and never dragged down by challenges.
	if info != nil && info.IsLevel0 {
		next.Score = 1.0
		next.ConsensusScore = 1.0
		next.CalculationMethod = types.CalcAxiomatic
		return next, nil
	}

	evidence, err := s.evidenceRepo.GetByTarget(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}

	credBySource := make(map[uuid.UUID]float64)
	for _, ev := range evidence {
		if _, seen := credBySource[ev.SourceID]; seen {
			continue
		}
		cred, err := s.credService.Get(ctx, ev.SourceID)
		if err != nil {
			return nil, err
		}
		credBySource[ev.SourceID] = cred.CredibilityScore
	}

	consensus := scoring.Consensus(evidence, credBySource, now)

	total, open, err := s.challengeRepo.CountByTarget(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("count challenges: %w", err)
	}
	resolvedImpact, err := s.resolutionRepo.SumImpactByTarget(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("sum resolved impact: %w", err)
	}
	impact := scoring.CombinedChallengeImpact(open, resolvedImpact)

	next.Score = scoring.Veracity(consensus.Score, impact)
	next.ConsensusScore = consensus.Score
	next.EvidenceCount = consensus.EvidenceCount
	next.ChallengeCount = total
	next.OpenChallengeCount = open
	next.ChallengeImpact = impact
	next.TemporalDecayFactor = aggregateDecay(evidence, now)
	return next, nil
}

// aggregateDecay averages the temporal relevance of the evidence that
// actually feeds the score. No decaying evidence means no decay.
func aggregateDecay(evidence []*types.Evidence, now time.Time) float64 {
	sum := 0.0
	n := 0
	for _, ev := range evidence {
		if ev == nil || !ev.Verified || ev.Retracted {
			continue
		}
		sum += scoring.TemporalRelevance(ev.RelevantDate, ev.DecayRate, now)
		n++
	}
	if n == 0 {
		return 1.0
	}
	return sum / float64(n)
}

func (s *veracityService) Get(ctx context.Context, ref types.TargetRef) (*types.VeracityScore, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	if cached, ok := s.cache.Get(ref.Key()); ok {
		if score, ok := cached.(*types.VeracityScore); ok {
			return score, nil
		}
	}
	score, err := s.scoreRepo.GetByTarget(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("load score: %w", err)
	}
	if score == nil {
		// Unscored targets read as neutral; nothing is persisted until
		// evidence or a challenge arrives.
		score = &types.VeracityScore{
			TargetKind:          ref.Kind,
			TargetID:            ref.ID,
			Score:               scoring.NeutralScore,
			ConsensusScore:      scoring.NeutralScore,
			TemporalDecayFactor: 1.0,
			CalculationMethod:   types.CalcWeightedEvidence,
			CalculatedAt:        time.Now().UTC(),
		}
		return score, nil
	}
	s.cache.Set(ref.Key(), score, gocache.DefaultExpiration)
	return score, nil
}

func (s *veracityService) History(ctx context.Context, ref types.TargetRef, limit int) ([]*types.VeracityScoreHistory, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	return s.historyRepo.ListByTarget(ctx, nil, ref, limit)
}

func (s *veracityService) GetInquiry(ctx context.Context, inquiryID uuid.UUID) (*types.FormalInquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, nil, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("load inquiry: %w", err)
	}
	if inquiry == nil {
		return nil, apierr.NotFound("inquiry %s not found", inquiryID)
	}
	return inquiry, nil
}

// weakestLink returns the lowest credibility among related nodes. An
// inquiry with no nodes is unconstrained.
func weakestLink(creds []float64) float64 {
	ceiling := 1.0
	for _, c := range creds {
		if c < ceiling {
			ceiling = c
		}
	}
	return ceiling
}

func (s *veracityService) ApplyInquiryCeiling(ctx context.Context, inquiryID uuid.UUID) (*types.FormalInquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, nil, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("load inquiry: %w", err)
	}
	if inquiry == nil {
		return nil, apierr.NotFound("inquiry %s not found", inquiryID)
	}

	nodeIDs, err := inquiry.RelatedNodes()
	if err != nil {
		return nil, apierr.Validation("inquiry %s has malformed related nodes: %v", inquiryID, err)
	}

	ceiling := 1.0
	if len(nodeIDs) > 0 {
		creds, err := s.graphStore.GetRelatedNodeCredibilities(ctx, nodeIDs)
		if err != nil {
			return nil, err
		}
		ceiling = weakestLink(creds)
	}

	confidence := math.Min(inquiry.ConfidenceScore, ceiling)
	if err := s.inquiryRepo.UpdateFields(ctx, nil, inquiryID, map[string]interface{}{
		"max_allowed_score": ceiling,
		"confidence_score":  confidence,
	}); err != nil {
		return nil, fmt.Errorf("apply ceiling: %w", err)
	}
	inquiry.MaxAllowedScore = ceiling
	inquiry.ConfidenceScore = confidence
	return inquiry, nil
}
