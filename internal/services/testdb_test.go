package services

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/veracity-backend/internal/types"
)

// newTestDB opens a throwaway embedded database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "veracity.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Source{},
		&types.SourceCredibility{},
		&types.Evidence{},
		&types.ChallengeType{},
		&types.Challenge{},
		&types.ChallengeVote{},
		&types.ChallengeResolution{},
		&types.UserReputation{},
		&types.VeracityScore{},
		&types.VeracityScoreHistory{},
		&types.FormalInquiry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedSource(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	src := &types.Source{Name: "field report", Kind: types.SourceDocument, CreatedBy: uuid.New()}
	if err := db.Create(src).Error; err != nil {
		t.Fatalf("create source: %v", err)
	}
	return src.ID
}

func seedEvidence(t *testing.T, db *gorm.DB, ref types.TargetRef, sourceID uuid.UUID, typ types.EvidenceType, confidence float64) {
	t.Helper()
	ev := &types.Evidence{
		TargetKind:       ref.Kind,
		TargetID:         ref.ID,
		SourceID:         sourceID,
		SubmittedBy:      uuid.New(),
		Type:             typ,
		Title:            "observation",
		BaseWeight:       0.5,
		Confidence:       confidence,
		Verified:         true,
		PeerReviewStatus: types.PeerReviewPending,
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("create evidence: %v", err)
	}
}
