package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/scoring"
	"github.com/yungbote/veracity-backend/internal/types"
	"github.com/yungbote/veracity-backend/internal/utils"
)

// ChallengeAcceptedAward is the reputation granted when a user's challenge
// is accepted or partially accepted.
const ChallengeAcceptedAward = 10

type ReputationService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.UserReputation, error)
	// Award applies a reputation delta, floors the result at zero, and
	// re-derives the tier in the same write.
	Award(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta float64) (*types.UserReputation, error)
	// CheckCanSubmit returns a permission error when the user may not
	// submit a challenge of the given type right now.
	CheckCanSubmit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ct *types.ChallengeType) error
	// NoteChallengeSubmitted bumps the submitted and daily counters.
	NoteChallengeSubmitted(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	// NoteChallengeOutcome updates accepted/rejected counters, accuracy
	// rate, and grants the acceptance award where due.
	NoteChallengeOutcome(ctx context.Context, tx *gorm.DB, userID uuid.UUID, accepted bool) error
	NoteVoteCast(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	VoteWeightFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (float64, error)
}

type reputationService struct {
	db              *gorm.DB
	log             *logger.Logger
	repo            repos.UserReputationRepo
	maxDailySubmits int
}

func NewReputationService(db *gorm.DB, baseLog *logger.Logger, repo repos.UserReputationRepo) ReputationService {
	log := baseLog.With("service", "ReputationService")
	return &reputationService{
		db:              db,
		log:             log,
		repo:            repo,
		maxDailySubmits: utils.GetEnvAsInt("MAX_CHALLENGES_PER_DAY", 5, log),
	}
}

func (s *reputationService) Get(ctx context.Context, userID uuid.UUID) (*types.UserReputation, error) {
	rep, err := s.repo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load reputation: %w", err)
	}
	if rep == nil {
		// Unknown users read as fresh novices; the row is created lazily
		// on their first write.
		return &types.UserReputation{UserID: userID, Tier: types.TierNovice}, nil
	}
	return rep, nil
}

func (s *reputationService) Award(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta float64) (*types.UserReputation, error) {
	rep, err := s.repo.GetOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock reputation: %w", err)
	}
	rep.Score += delta
	if rep.Score < 0 {
		rep.Score = 0
	}
	rep.Tier = scoring.TierForScore(rep.Score)
	if err := s.repo.Save(ctx, tx, rep); err != nil {
		return nil, fmt.Errorf("save reputation: %w", err)
	}
	return rep, nil
}

func (s *reputationService) CheckCanSubmit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, ct *types.ChallengeType) error {
	rep, err := s.repo.GetOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("lock reputation: %w", err)
	}
	if rep.Banned {
		return apierr.Permission("user %s is banned from submitting challenges", userID)
	}
	if rep.Score < ct.MinReputation {
		return apierr.Permission("challenge type %s requires reputation %.0f, user has %.0f",
			ct.Code, ct.MinReputation, rep.Score)
	}
	if countsForToday(rep, time.Now().UTC()) >= s.maxDailySubmits {
		return apierr.Permission("daily challenge limit of %d reached", s.maxDailySubmits)
	}
	return nil
}

func (s *reputationService) NoteChallengeSubmitted(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	rep, err := s.repo.GetOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("lock reputation: %w", err)
	}
	now := time.Now().UTC()
	rep.ChallengesToday = countsForToday(rep, now) + 1
	day := now.Truncate(24 * time.Hour)
	rep.ChallengesTodayDate = &day
	rep.ChallengesSubmitted++
	return s.repo.Save(ctx, tx, rep)
}

func (s *reputationService) NoteChallengeOutcome(ctx context.Context, tx *gorm.DB, userID uuid.UUID, accepted bool) error {
	rep, err := s.repo.GetOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("lock reputation: %w", err)
	}
	if accepted {
		rep.ChallengesAccepted++
		rep.Score += ChallengeAcceptedAward
		rep.Tier = scoring.TierForScore(rep.Score)
	} else {
		rep.ChallengesRejected++
	}
	if rep.ChallengesSubmitted > 0 {
		rep.AccuracyRate = float64(rep.ChallengesAccepted) / float64(rep.ChallengesSubmitted)
	}
	return s.repo.Save(ctx, tx, rep)
}

func (s *reputationService) NoteVoteCast(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	rep, err := s.repo.GetOrCreateForUpdate(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("lock reputation: %w", err)
	}
	rep.VotesCast++
	return s.repo.Save(ctx, tx, rep)
}

func (s *reputationService) VoteWeightFor(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (float64, error) {
	rep, err := s.repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("load reputation: %w", err)
	}
	if rep == nil {
		return scoring.VoteWeight(types.TierNovice), nil
	}
	if rep.Banned {
		return 0, apierr.Permission("user %s is banned from voting", userID)
	}
	return scoring.VoteWeight(rep.Tier), nil
}

// countsForToday reads the daily counter, treating a stale date as zero.
func countsForToday(rep *types.UserReputation, now time.Time) int {
	if rep.ChallengesTodayDate == nil {
		return 0
	}
	y1, m1, d1 := rep.ChallengesTodayDate.UTC().Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return 0
	}
	return rep.ChallengesToday
}
