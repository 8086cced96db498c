package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/veracity-backend/internal/types"
)

func TestMergeChallengeTypesOverridesByCode(t *testing.T) {
	defaults := []*types.ChallengeType{
		{Code: "factual_error", MaxVeracityImpact: 0.5},
		{Code: "logical_fallacy", MaxVeracityImpact: 0.25},
	}
	overrides := []*types.ChallengeType{
		{Code: "factual_error", MaxVeracityImpact: 0.4},
		{Code: "plagiarism", MaxVeracityImpact: 0.2},
	}

	merged := mergeChallengeTypes(defaults, overrides)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged types, got %d", len(merged))
	}
	byCode := map[string]*types.ChallengeType{}
	for _, ct := range merged {
		byCode[ct.Code] = ct
	}
	if byCode["factual_error"].MaxVeracityImpact != 0.4 {
		t.Fatalf("override lost: factual_error impact = %v", byCode["factual_error"].MaxVeracityImpact)
	}
	if byCode["logical_fallacy"].MaxVeracityImpact != 0.25 {
		t.Fatalf("untouched default changed: %v", byCode["logical_fallacy"].MaxVeracityImpact)
	}
	if _, ok := byCode["plagiarism"]; !ok {
		t.Fatal("new type from overrides missing")
	}
}

func TestLoadChallengeTypeFile(t *testing.T) {
	raw := `challenge_types:
  - code: plagiarism
    name: Plagiarism
    min_reputation: 50
    requires_evidence: true
    max_veracity_impact: 0.2
    min_votes_required: 7
    acceptance_threshold: 0.7
    voting_duration_hours: 120
  - code: retired_type
    name: Retired
    max_veracity_impact: 0.1
    min_votes_required: 3
    acceptance_threshold: 0.6
    voting_duration_hours: 24
    active: false
`
	path := filepath.Join(t.TempDir(), "challenge_types.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := loadChallengeTypeFile(path)
	if err != nil {
		t.Fatalf("loadChallengeTypeFile: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 types, got %d", len(got))
	}
	if got[0].Code != "plagiarism" || !got[0].Active {
		t.Fatalf("first entry wrong: %+v", got[0])
	}
	if got[0].MinVotesRequired != 7 || got[0].AcceptanceThreshold != 0.7 {
		t.Fatalf("adjudication config not parsed: %+v", got[0])
	}
	if got[1].Active {
		t.Fatal("explicit active: false ignored")
	}
}

func TestValidateChallengeType(t *testing.T) {
	valid := types.ChallengeType{
		Code:                "x",
		Name:                "X",
		MaxVeracityImpact:   0.3,
		AcceptanceThreshold: 0.6,
		VotingDurationHours: 72,
	}

	tests := []struct {
		name    string
		mutate  func(*types.ChallengeType)
		wantErr bool
	}{
		{"valid", func(ct *types.ChallengeType) {}, false},
		{"missing code", func(ct *types.ChallengeType) { ct.Code = "" }, true},
		{"impact above one", func(ct *types.ChallengeType) { ct.MaxVeracityImpact = 1.5 }, true},
		{"negative impact", func(ct *types.ChallengeType) { ct.MaxVeracityImpact = -0.1 }, true},
		{"zero threshold", func(ct *types.ChallengeType) { ct.AcceptanceThreshold = 0 }, true},
		{"zero voting window", func(ct *types.ChallengeType) { ct.VotingDurationHours = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := valid
			tt.mutate(&ct)
			err := validateChallengeType(&ct)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateChallengeType err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, ct := range defaultChallengeTypes {
		if err := validateChallengeType(ct); err != nil {
			t.Fatalf("default type %s invalid: %v", ct.Code, err)
		}
		if seen[ct.Code] {
			t.Fatalf("duplicate default code %s", ct.Code)
		}
		seen[ct.Code] = true
	}
}
