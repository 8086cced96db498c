package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/events"
	"github.com/yungbote/veracity-backend/internal/graph"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/scoring"
	"github.com/yungbote/veracity-backend/internal/types"
)

type CreateChallengeInput struct {
	Target       types.TargetRef
	TypeCode     string
	ChallengerID uuid.UUID
	Claim        string
	EvidenceID   *uuid.UUID
}

type CastVoteInput struct {
	ChallengeID uuid.UUID
	VoterID     uuid.UUID
	Choice      types.VoteChoice
	Confidence  *float64
	Rationale   string
}

type ChallengeService interface {
	Create(ctx context.Context, in CreateChallengeInput) (*types.Challenge, error)
	CastVote(ctx context.Context, in CastVoteInput) (*types.Challenge, error)
	// Resolve closes a challenge from its current tally. Resolving a
	// terminal challenge is a state error for callers; the expiry sweep
	// never sees terminal rows so it stays idempotent.
	Resolve(ctx context.Context, challengeID, resolverID uuid.UUID, notes string) (*types.ChallengeResolution, error)
	Withdraw(ctx context.Context, challengeID, actorID uuid.UUID) (*types.Challenge, error)
	Get(ctx context.Context, challengeID uuid.UUID) (*types.Challenge, error)
	ListOpenByTarget(ctx context.Context, ref types.TargetRef) ([]*types.Challenge, error)
	// SweepExpired resolves every challenge whose voting window has
	// passed, acting as the reserved system resolver.
	SweepExpired(ctx context.Context) (int, error)
	// StartSweeper runs SweepExpired on an interval until ctx ends.
	StartSweeper(ctx context.Context, interval time.Duration)
}

type challengeService struct {
	db             *gorm.DB
	log            *logger.Logger
	repo           repos.ChallengeRepo
	typeRepo       repos.ChallengeTypeRepo
	voteRepo       repos.ChallengeVoteRepo
	resolutionRepo repos.ChallengeResolutionRepo
	evidenceRepo   repos.EvidenceRepo
	reputation     ReputationService
	graphStore     graph.Store
	bus            events.Bus
}

func NewChallengeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.ChallengeRepo,
	typeRepo repos.ChallengeTypeRepo,
	voteRepo repos.ChallengeVoteRepo,
	resolutionRepo repos.ChallengeResolutionRepo,
	evidenceRepo repos.EvidenceRepo,
	reputation ReputationService,
	graphStore graph.Store,
	bus events.Bus,
) ChallengeService {
	return &challengeService{
		db:             db,
		log:            baseLog.With("service", "ChallengeService"),
		repo:           repo,
		typeRepo:       typeRepo,
		voteRepo:       voteRepo,
		resolutionRepo: resolutionRepo,
		evidenceRepo:   evidenceRepo,
		reputation:     reputation,
		graphStore:     graphStore,
		bus:            bus,
	}
}

func (s *challengeService) Create(ctx context.Context, in CreateChallengeInput) (*types.Challenge, error) {
	if err := in.Target.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	if in.Claim == "" {
		return nil, apierr.Validation("challenge claim is required")
	}
	if in.ChallengerID == uuid.Nil {
		return nil, apierr.Validation("challenger_id is required")
	}

	ct, err := s.typeRepo.GetByCode(ctx, nil, in.TypeCode)
	if err != nil {
		return nil, fmt.Errorf("load challenge type: %w", err)
	}
	if ct == nil || !ct.Active {
		return nil, apierr.NotFound("challenge type %q not found", in.TypeCode)
	}

	info, err := s.graphStore.GetTarget(ctx, in.Target)
	if err != nil {
		return nil, err
	}
	if info.IsLevel0 {
		return nil, apierr.Immutability("target %s is a level-0 axiom and cannot be challenged", in.Target)
	}

	if ct.RequiresEvidence {
		if in.EvidenceID == nil {
			return nil, apierr.Validation("challenge type %s requires supporting evidence", ct.Code)
		}
		ev, err := s.evidenceRepo.GetByID(ctx, nil, *in.EvidenceID)
		if err != nil {
			return nil, fmt.Errorf("load supporting evidence: %w", err)
		}
		if ev == nil {
			return nil, apierr.NotFound("evidence %s not found", *in.EvidenceID)
		}
	}

	now := time.Now().UTC()
	challenge := &types.Challenge{
		TargetKind:      in.Target.Kind,
		TargetID:        in.Target.ID,
		ChallengeTypeID: ct.ID,
		ChallengerID:    in.ChallengerID,
		Status:          types.ChallengeOpen,
		Claim:           in.Claim,
		EvidenceID:      in.EvidenceID,
		VotingStartsAt:  now,
		VotingEndsAt:    now.Add(time.Duration(ct.VotingDurationHours) * time.Hour),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligibility and the daily counter bump share the row lock, so
		// two concurrent submits cannot both slip under the limit.
		if err := s.reputation.CheckCanSubmit(ctx, tx, in.ChallengerID, ct); err != nil {
			return err
		}
		if _, err := s.repo.Create(ctx, tx, []*types.Challenge{challenge}); err != nil {
			return fmt.Errorf("create challenge: %w", err)
		}
		return s.reputation.NoteChallengeSubmitted(ctx, tx, in.ChallengerID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ChallengeCreated, challenge, types.ReasonChallengeCreated)
	return challenge, nil
}

func (s *challengeService) CastVote(ctx context.Context, in CastVoteInput) (*types.Challenge, error) {
	if !in.Choice.Valid() {
		return nil, apierr.Validation("unknown vote choice %q", in.Choice)
	}
	if in.Confidence != nil && (*in.Confidence < 0 || *in.Confidence > 1) {
		return nil, apierr.Validation("vote confidence must be within [0,1], got %v", *in.Confidence)
	}

	var updated *types.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenge, err := s.repo.GetByIDForUpdate(ctx, tx, in.ChallengeID)
		if err != nil {
			return fmt.Errorf("lock challenge: %w", err)
		}
		if challenge == nil {
			return apierr.NotFound("challenge %s not found", in.ChallengeID)
		}
		if challenge.Status.Terminal() {
			return apierr.State("challenge %s is already %s", in.ChallengeID, challenge.Status)
		}
		now := time.Now().UTC()
		if now.After(challenge.VotingEndsAt) {
			return apierr.State("voting window for challenge %s closed at %s", in.ChallengeID, challenge.VotingEndsAt.Format(time.RFC3339))
		}

		// Weight is fixed from the voter's tier at cast time so the audit
		// trail reflects who they were when they voted.
		weight, err := s.reputation.VoteWeightFor(ctx, tx, in.VoterID)
		if err != nil {
			return err
		}

		existing, err := s.voteRepo.GetByChallengeVoter(ctx, tx, in.ChallengeID, in.VoterID)
		if err != nil {
			return fmt.Errorf("load existing vote: %w", err)
		}

		vote := &types.ChallengeVote{
			ChallengeID: in.ChallengeID,
			VoterID:     in.VoterID,
			Choice:      in.Choice,
			Weight:      weight,
			Confidence:  in.Confidence,
			Rationale:   in.Rationale,
		}
		if err := s.voteRepo.Upsert(ctx, tx, vote); err != nil {
			return fmt.Errorf("write vote: %w", err)
		}
		if existing == nil {
			if err := s.reputation.NoteVoteCast(ctx, tx, in.VoterID); err != nil {
				return err
			}
		}

		if err := s.retally(ctx, tx, challenge); err != nil {
			return err
		}
		updated = challenge
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// retally rebuilds the challenge's tallies from its full vote set and moves
// an open challenge into voting.
func (s *challengeService) retally(ctx context.Context, tx *gorm.DB, challenge *types.Challenge) error {
	votes, err := s.voteRepo.ListByChallenge(ctx, tx, challenge.ID)
	if err != nil {
		return fmt.Errorf("list votes: %w", err)
	}
	b := scoring.TallyVotes(votes)

	status := challenge.Status
	if status == types.ChallengeOpen {
		status = types.ChallengeVoting
	}

	updates := map[string]interface{}{
		"status":             status,
		"support_votes":      b.SupportVotes,
		"reject_votes":       b.RejectVotes,
		"abstain_votes":      b.AbstainVotes,
		"support_weight":     b.SupportWeight,
		"reject_weight":      b.RejectWeight,
		"support_percentage": b.SupportPercentage,
	}
	if err := s.repo.UpdateFields(ctx, tx, challenge.ID, updates); err != nil {
		return fmt.Errorf("update tallies: %w", err)
	}

	challenge.Status = status
	challenge.SupportVotes = b.SupportVotes
	challenge.RejectVotes = b.RejectVotes
	challenge.AbstainVotes = b.AbstainVotes
	challenge.SupportWeight = b.SupportWeight
	challenge.RejectWeight = b.RejectWeight
	challenge.SupportPercentage = b.SupportPercentage
	return nil
}

func (s *challengeService) Resolve(ctx context.Context, challengeID, resolverID uuid.UUID, notes string) (*types.ChallengeResolution, error) {
	var resolution *types.ChallengeResolution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenge, err := s.repo.GetByIDForUpdate(ctx, tx, challengeID)
		if err != nil {
			return fmt.Errorf("lock challenge: %w", err)
		}
		if challenge == nil {
			return apierr.NotFound("challenge %s not found", challengeID)
		}
		if challenge.Status.Terminal() {
			return apierr.State("challenge %s is already %s", challengeID, challenge.Status)
		}
		resolution, err = s.resolveLocked(ctx, tx, challenge, resolverID, notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishResolved(ctx, resolution)
	return resolution, nil
}

// resolveLocked assumes the challenge row is locked and non-terminal.
func (s *challengeService) resolveLocked(ctx context.Context, tx *gorm.DB, challenge *types.Challenge, resolverID uuid.UUID, notes string) (*types.ChallengeResolution, error) {
	ct, err := s.typeRepo.GetByID(ctx, tx, challenge.ChallengeTypeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge type: %w", err)
	}
	if ct == nil {
		return nil, fmt.Errorf("challenge %s references missing type %s", challenge.ID, challenge.ChallengeTypeID)
	}

	votes, err := s.voteRepo.ListByChallenge(ctx, tx, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	b := scoring.TallyVotes(votes)

	outcome := scoring.ResolveOutcome(b.SupportPercentage, ct.AcceptanceThreshold, ct.MaxVeracityImpact)
	// A quorum shortfall cannot accept a challenge.
	if b.SupportVotes+b.RejectVotes < ct.MinVotesRequired {
		outcome = scoring.ResolutionOutcome{Type: types.ResolutionRejected, Impact: 0}
	}

	breakdown, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal vote breakdown: %w", err)
	}

	resolution := &types.ChallengeResolution{
		ChallengeID:    challenge.ID,
		ResolutionType: outcome.Type,
		VeracityImpact: outcome.Impact,
		VoteBreakdown:  datatypes.JSON(breakdown),
		ResolvedBy:     resolverID,
		Notes:          notes,
	}
	if err := s.resolutionRepo.Create(ctx, tx, resolution); err != nil {
		return nil, fmt.Errorf("create resolution: %w", err)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":             types.ChallengeResolved,
		"resolved_at":        now,
		"support_votes":      b.SupportVotes,
		"reject_votes":       b.RejectVotes,
		"abstain_votes":      b.AbstainVotes,
		"support_weight":     b.SupportWeight,
		"reject_weight":      b.RejectWeight,
		"support_percentage": b.SupportPercentage,
	}
	if err := s.repo.UpdateFields(ctx, tx, challenge.ID, updates); err != nil {
		return nil, fmt.Errorf("finalize challenge: %w", err)
	}
	challenge.Status = types.ChallengeResolved
	challenge.ResolvedAt = &now

	accepted := outcome.Type == types.ResolutionAccepted || outcome.Type == types.ResolutionPartiallyAccepted
	if err := s.reputation.NoteChallengeOutcome(ctx, tx, challenge.ChallengerID, accepted); err != nil {
		return nil, err
	}

	s.log.Info("Challenge resolved",
		"challenge_id", challenge.ID,
		"resolution", outcome.Type,
		"impact", outcome.Impact,
		"support_percentage", b.SupportPercentage,
		"resolved_by", resolverID,
	)
	return resolution, nil
}

func (s *challengeService) Withdraw(ctx context.Context, challengeID, actorID uuid.UUID) (*types.Challenge, error) {
	var withdrawn *types.Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenge, err := s.repo.GetByIDForUpdate(ctx, tx, challengeID)
		if err != nil {
			return fmt.Errorf("lock challenge: %w", err)
		}
		if challenge == nil {
			return apierr.NotFound("challenge %s not found", challengeID)
		}
		if challenge.ChallengerID != actorID {
			return apierr.Permission("only the challenger may withdraw challenge %s", challengeID)
		}
		if challenge.Status.Terminal() {
			return apierr.State("challenge %s is already %s", challengeID, challenge.Status)
		}
		now := time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, tx, challengeID, map[string]interface{}{
			"status":      types.ChallengeWithdrawn,
			"resolved_at": now,
		}); err != nil {
			return fmt.Errorf("withdraw challenge: %w", err)
		}
		challenge.Status = types.ChallengeWithdrawn
		challenge.ResolvedAt = &now
		withdrawn = challenge
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Withdrawal clears an open challenge, so the target's score moves.
	s.publish(ctx, events.ChallengeResolved, withdrawn, types.ReasonChallengeResolved)
	return withdrawn, nil
}

func (s *challengeService) Get(ctx context.Context, challengeID uuid.UUID) (*types.Challenge, error) {
	challenge, err := s.repo.GetByID(ctx, nil, challengeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if challenge == nil {
		return nil, apierr.NotFound("challenge %s not found", challengeID)
	}
	return challenge, nil
}

func (s *challengeService) ListOpenByTarget(ctx context.Context, ref types.TargetRef) ([]*types.Challenge, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}
	return s.repo.ListOpenByTarget(ctx, nil, ref)
}

func (s *challengeService) SweepExpired(ctx context.Context) (int, error) {
	resolved := 0
	for {
		var batch []*types.ChallengeResolution
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			expired, err := s.repo.ListExpired(ctx, tx, time.Now().UTC(), 20)
			if err != nil {
				return fmt.Errorf("list expired challenges: %w", err)
			}
			for _, challenge := range expired {
				res, err := s.resolveLocked(ctx, tx, challenge, types.SystemActorID, "voting window expired")
				if err != nil {
					return err
				}
				batch = append(batch, res)
			}
			return nil
		})
		if err != nil {
			return resolved, err
		}
		for _, res := range batch {
			s.publishResolved(ctx, res)
		}
		resolved += len(batch)
		if len(batch) == 0 {
			return resolved, nil
		}
	}
}

func (s *challengeService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Challenge sweeper stopped")
				return
			case <-ticker.C:
				n, err := s.SweepExpired(ctx)
				if err != nil {
					s.log.Warn("Challenge sweep failed", "error", err)
					continue
				}
				if n > 0 {
					s.log.Info("Resolved expired challenges", "count", n)
				}
			}
		}
	}()
}

func (s *challengeService) publish(ctx context.Context, kind events.Kind, challenge *types.Challenge, reason types.ChangeReason) {
	if s.bus == nil || challenge == nil {
		return
	}
	ev := events.ChangeEvent{
		Kind:       kind,
		Target:     challenge.Target(),
		EntityID:   challenge.ID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.Warn("Failed to publish challenge event", "challenge_id", challenge.ID, "error", err)
	}
}

func (s *challengeService) publishResolved(ctx context.Context, resolution *types.ChallengeResolution) {
	if resolution == nil {
		return
	}
	challenge, err := s.repo.GetByID(ctx, nil, resolution.ChallengeID)
	if err != nil || challenge == nil {
		s.log.Warn("Could not reload challenge for resolution event", "challenge_id", resolution.ChallengeID, "error", err)
		return
	}
	s.publish(ctx, events.ChallengeResolved, challenge, types.ReasonChallengeResolved)
}
