package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/events"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/scoring"
	"github.com/yungbote/veracity-backend/internal/types"
)

type SourceCredibilityService interface {
	// Recompute rebuilds a source's credibility from its full current
	// evidence set. Never incremental, so replays are harmless.
	Recompute(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (*types.SourceCredibility, error)
	Get(ctx context.Context, sourceID uuid.UUID) (*types.SourceCredibility, error)
}

type sourceCredibilityService struct {
	db           *gorm.DB
	log          *logger.Logger
	sourceRepo   repos.SourceRepo
	credRepo     repos.SourceCredibilityRepo
	evidenceRepo repos.EvidenceRepo
	bus          events.Bus
	cache        *gocache.Cache
}

const credCacheTTL = 30 * time.Second

func NewSourceCredibilityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sourceRepo repos.SourceRepo,
	credRepo repos.SourceCredibilityRepo,
	evidenceRepo repos.EvidenceRepo,
	bus events.Bus,
) SourceCredibilityService {
	return &sourceCredibilityService{
		db:           db,
		log:          baseLog.With("service", "SourceCredibilityService"),
		sourceRepo:   sourceRepo,
		credRepo:     credRepo,
		evidenceRepo: evidenceRepo,
		bus:          bus,
		cache:        gocache.New(credCacheTTL, 2*credCacheTTL),
	}
}

func (s *sourceCredibilityService) Recompute(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (*types.SourceCredibility, error) {
	src, err := s.sourceRepo.GetByID(ctx, tx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	if src == nil {
		return nil, apierr.NotFound("source %s not found", sourceID)
	}

	evidence, err := s.evidenceRepo.GetBySource(ctx, tx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load evidence for source: %w", err)
	}

	in := scoring.CredibilityInputs{ConsensusAlignment: scoring.NeutralConsensusAlignment}
	for _, ev := range evidence {
		if ev.Retracted {
			continue
		}
		in.TotalEvidence++
		if ev.Verified {
			in.VerifiedEvidence++
		}
		// Disputed or rejected peer review marks the evidence as flagged.
		if ev.PeerReviewStatus == types.PeerReviewDisputed || ev.PeerReviewStatus == types.PeerReviewRejected {
			in.ChallengedEvidence++
		}
	}

	prev, err := s.credRepo.GetBySourceID(ctx, tx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load previous credibility: %w", err)
	}

	cred := &types.SourceCredibility{
		SourceID:           sourceID,
		CredibilityScore:   scoring.Credibility(in),
		TotalEvidence:      in.TotalEvidence,
		VerifiedEvidence:   in.VerifiedEvidence,
		ChallengedEvidence: in.ChallengedEvidence,
		ConsensusAlignment: in.ConsensusAlignment,
		LastCalculatedAt:   time.Now().UTC(),
	}
	if err := s.credRepo.Upsert(ctx, tx, cred); err != nil {
		return nil, fmt.Errorf("upsert source credibility: %w", err)
	}
	s.cache.Set(sourceID.String(), cred, gocache.DefaultExpiration)

	moved := prev == nil || math.Abs(prev.CredibilityScore-cred.CredibilityScore) > scoring.HistoryThreshold
	if moved && s.bus != nil {
		ev := events.ChangeEvent{
			Kind:       events.SourceCredibilityChanged,
			SourceID:   sourceID,
			Reason:     types.ReasonSourceCredibilityUpdated,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.bus.Publish(ctx, ev); err != nil {
			s.log.Warn("Failed to publish source credibility change", "source_id", sourceID, "error", err)
		}
	}
	return cred, nil
}

func (s *sourceCredibilityService) Get(ctx context.Context, sourceID uuid.UUID) (*types.SourceCredibility, error) {
	if cached, ok := s.cache.Get(sourceID.String()); ok {
		return cached.(*types.SourceCredibility), nil
	}
	src, err := s.sourceRepo.GetByID(ctx, nil, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	if src == nil {
		return nil, apierr.NotFound("source %s not found", sourceID)
	}
	cred, err := s.credRepo.GetBySourceID(ctx, nil, sourceID)
	if err != nil {
		return nil, fmt.Errorf("load source credibility: %w", err)
	}
	if cred == nil {
		// No evidence yet: report the formula's empty-source baseline
		// without persisting anything.
		return &types.SourceCredibility{
			SourceID: sourceID,
			CredibilityScore: scoring.Credibility(scoring.CredibilityInputs{
				ConsensusAlignment: scoring.NeutralConsensusAlignment,
			}),
			ConsensusAlignment: scoring.NeutralConsensusAlignment,
			LastCalculatedAt:   time.Now().UTC(),
		}, nil
	}
	s.cache.Set(sourceID.String(), cred, gocache.DefaultExpiration)
	return cred, nil
}
