package services

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/repos"
	"github.com/yungbote/veracity-backend/internal/types"
	"github.com/yungbote/veracity-backend/internal/utils"
)

// defaultChallengeTypes is the built-in catalog. Deployments can extend or
// override it with a YAML file pointed at by CHALLENGE_TYPES_FILE.
var defaultChallengeTypes = []*types.ChallengeType{
	{
		Code:                "factual_error",
		Name:                "Factual error",
		Description:         "The target states something demonstrably false.",
		MinReputation:       10,
		RequiresEvidence:    true,
		MaxVeracityImpact:   0.5,
		MinVotesRequired:    3,
		AcceptanceThreshold: 0.6,
		VotingDurationHours: 72,
		Active:              true,
	},
	{
		Code:                "misleading_context",
		Name:                "Misleading context",
		Description:         "Technically true but framed to mislead.",
		MinReputation:       10,
		RequiresEvidence:    true,
		MaxVeracityImpact:   0.3,
		MinVotesRequired:    3,
		AcceptanceThreshold: 0.6,
		VotingDurationHours: 72,
		Active:              true,
	},
	{
		Code:                "outdated_information",
		Name:                "Outdated information",
		Description:         "Was accurate once but has since been superseded.",
		MinReputation:       5,
		RequiresEvidence:    true,
		MaxVeracityImpact:   0.4,
		MinVotesRequired:    3,
		AcceptanceThreshold: 0.55,
		VotingDurationHours: 48,
		Active:              true,
	},
	{
		Code:                "unreliable_source",
		Name:                "Unreliable source",
		Description:         "The backing source does not meet credibility standards.",
		MinReputation:       25,
		RequiresEvidence:    false,
		MaxVeracityImpact:   0.35,
		MinVotesRequired:    5,
		AcceptanceThreshold: 0.65,
		VotingDurationHours: 96,
		Active:              true,
	},
	{
		Code:                "logical_fallacy",
		Name:                "Logical fallacy",
		Description:         "The inference from evidence to claim is invalid.",
		MinReputation:       25,
		RequiresEvidence:    false,
		MaxVeracityImpact:   0.25,
		MinVotesRequired:    5,
		AcceptanceThreshold: 0.65,
		VotingDurationHours: 96,
		Active:              true,
	},
}

type challengeTypeFile struct {
	ChallengeTypes []struct {
		Code                string  `yaml:"code"`
		Name                string  `yaml:"name"`
		Description         string  `yaml:"description"`
		MinReputation       float64 `yaml:"min_reputation"`
		RequiresEvidence    bool    `yaml:"requires_evidence"`
		MaxVeracityImpact   float64 `yaml:"max_veracity_impact"`
		MinVotesRequired    int     `yaml:"min_votes_required"`
		AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
		VotingDurationHours int     `yaml:"voting_duration_hours"`
		Active              *bool   `yaml:"active"`
	} `yaml:"challenge_types"`
}

// SeedChallengeTypes upserts the catalog by code so redeploys converge on
// the same rows instead of duplicating them.
func SeedChallengeTypes(ctx context.Context, db *gorm.DB, repo repos.ChallengeTypeRepo, log *logger.Logger) error {
	catalog := defaultChallengeTypes

	path := utils.GetEnv("CHALLENGE_TYPES_FILE", "", log)
	if path != "" {
		extra, err := loadChallengeTypeFile(path)
		if err != nil {
			return fmt.Errorf("load challenge type file %s: %w", path, err)
		}
		catalog = mergeChallengeTypes(catalog, extra)
		log.Info("Loaded challenge type overrides", "path", path, "count", len(extra))
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ct := range catalog {
			if err := validateChallengeType(ct); err != nil {
				return err
			}
			if err := repo.UpsertByCode(ctx, tx, ct); err != nil {
				return fmt.Errorf("seed challenge type %s: %w", ct.Code, err)
			}
		}
		return nil
	})
}

func loadChallengeTypeFile(path string) ([]*types.ChallengeType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f challengeTypeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	out := make([]*types.ChallengeType, 0, len(f.ChallengeTypes))
	for _, e := range f.ChallengeTypes {
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		out = append(out, &types.ChallengeType{
			Code:                e.Code,
			Name:                e.Name,
			Description:         e.Description,
			MinReputation:       e.MinReputation,
			RequiresEvidence:    e.RequiresEvidence,
			MaxVeracityImpact:   e.MaxVeracityImpact,
			MinVotesRequired:    e.MinVotesRequired,
			AcceptanceThreshold: e.AcceptanceThreshold,
			VotingDurationHours: e.VotingDurationHours,
			Active:              active,
		})
	}
	return out, nil
}

// mergeChallengeTypes overlays file entries on the defaults by code.
func mergeChallengeTypes(defaults, overrides []*types.ChallengeType) []*types.ChallengeType {
	byCode := make(map[string]int, len(defaults))
	merged := make([]*types.ChallengeType, len(defaults))
	copy(merged, defaults)
	for i, ct := range merged {
		byCode[ct.Code] = i
	}
	for _, ct := range overrides {
		if i, ok := byCode[ct.Code]; ok {
			merged[i] = ct
			continue
		}
		byCode[ct.Code] = len(merged)
		merged = append(merged, ct)
	}
	return merged
}

func validateChallengeType(ct *types.ChallengeType) error {
	if ct.Code == "" || ct.Name == "" {
		return fmt.Errorf("challenge type needs code and name, got code=%q name=%q", ct.Code, ct.Name)
	}
	if ct.MaxVeracityImpact < 0 || ct.MaxVeracityImpact > 1 {
		return fmt.Errorf("challenge type %s: max_veracity_impact must be within [0,1], got %v", ct.Code, ct.MaxVeracityImpact)
	}
	if ct.AcceptanceThreshold <= 0 || ct.AcceptanceThreshold > 1 {
		return fmt.Errorf("challenge type %s: acceptance_threshold must be within (0,1], got %v", ct.Code, ct.AcceptanceThreshold)
	}
	if ct.VotingDurationHours <= 0 {
		return fmt.Errorf("challenge type %s: voting_duration_hours must be positive", ct.Code)
	}
	return nil
}
