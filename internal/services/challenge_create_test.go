package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/graph"
	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/types"
)

func newChallengeStack(t *testing.T, db *gorm.DB, store graph.Store) ChallengeService {
	t.Helper()
	log := logger.NewNop()
	return NewChallengeService(db, log,
		repos.NewChallengeRepo(db, log),
		repos.NewChallengeTypeRepo(db, log),
		repos.NewChallengeVoteRepo(db, log),
		repos.NewChallengeResolutionRepo(db, log),
		repos.NewEvidenceRepo(db, log),
		NewReputationService(db, log, repos.NewUserReputationRepo(db, log)),
		store,
		nil,
	)
}

func seedChallengeType(t *testing.T, db *gorm.DB, code string, minReputation float64) *types.ChallengeType {
	t.Helper()
	ct := &types.ChallengeType{
		Code:                code,
		Name:                code,
		MinReputation:       minReputation,
		MaxVeracityImpact:   0.35,
		MinVotesRequired:    5,
		AcceptanceThreshold: 0.65,
		VotingDurationHours: 96,
		Active:              true,
	}
	if err := db.Create(ct).Error; err != nil {
		t.Fatalf("create challenge type: %v", err)
	}
	return ct
}

func TestCreateChallengeBelowMinReputationLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	store := graph.NewMemoryStore()
	ref := types.NodeRef(uuid.New())
	store.PutTarget(ref, false)
	svc := newChallengeStack(t, db, store)
	seedChallengeType(t, db, "unreliable_source", 50)

	_, err := svc.Create(context.Background(), CreateChallengeInput{
		Target:       ref,
		TypeCode:     "unreliable_source",
		ChallengerID: uuid.New(),
		Claim:        "the source fabricates data",
	})
	if !apierr.HasCode(err, apierr.CodePermission) {
		t.Fatalf("expected permission error, got %v", err)
	}

	var n int64
	if err := db.Model(&types.Challenge{}).Count(&n).Error; err != nil {
		t.Fatalf("count challenges: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected submission left %d challenge rows", n)
	}
}

func TestCreateChallengeBannedUserLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	store := graph.NewMemoryStore()
	ref := types.NodeRef(uuid.New())
	store.PutTarget(ref, false)
	svc := newChallengeStack(t, db, store)
	seedChallengeType(t, db, "factual_error", 0)

	userID := uuid.New()
	rep := &types.UserReputation{
		UserID:    userID,
		Score:     100,
		Tier:      types.TierTrusted,
		Banned:    true,
		BanReason: "vote brigading",
	}
	if err := db.Create(rep).Error; err != nil {
		t.Fatalf("create reputation: %v", err)
	}

	_, err := svc.Create(context.Background(), CreateChallengeInput{
		Target:       ref,
		TypeCode:     "factual_error",
		ChallengerID: userID,
		Claim:        "the cited figure is wrong",
	})
	if !apierr.HasCode(err, apierr.CodePermission) {
		t.Fatalf("expected permission error for banned user, got %v", err)
	}

	var n int64
	if err := db.Model(&types.Challenge{}).Count(&n).Error; err != nil {
		t.Fatalf("count challenges: %v", err)
	}
	if n != 0 {
		t.Fatalf("banned submission left %d challenge rows", n)
	}
}

func TestCreateChallengeHappyPathOpensVotingWindow(t *testing.T) {
	db := newTestDB(t)
	store := graph.NewMemoryStore()
	ref := types.NodeRef(uuid.New())
	store.PutTarget(ref, false)
	svc := newChallengeStack(t, db, store)
	seedChallengeType(t, db, "misleading_context", 0)

	before := time.Now().UTC()
	ch, err := svc.Create(context.Background(), CreateChallengeInput{
		Target:       ref,
		TypeCode:     "misleading_context",
		ChallengerID: uuid.New(),
		Claim:        "the quote is clipped mid-sentence",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ch.Status != types.ChallengeOpen {
		t.Fatalf("new challenge status is %s", ch.Status)
	}
	want := 96 * time.Hour
	if got := ch.VotingEndsAt.Sub(ch.VotingStartsAt); got != want {
		t.Fatalf("voting window is %v, want %v", got, want)
	}
	if ch.VotingStartsAt.Before(before.Add(-time.Minute)) {
		t.Fatalf("voting window starts in the past: %v", ch.VotingStartsAt)
	}
}
