package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identifiers are generated app-side so the embedded sqlite mode works
// without a database uuid extension.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Source) BeforeCreate(*gorm.DB) error               { ensureID(&s.ID); return nil }
func (c *SourceCredibility) BeforeCreate(*gorm.DB) error    { ensureID(&c.ID); return nil }
func (e *Evidence) BeforeCreate(*gorm.DB) error             { ensureID(&e.ID); return nil }
func (t *ChallengeType) BeforeCreate(*gorm.DB) error        { ensureID(&t.ID); return nil }
func (c *Challenge) BeforeCreate(*gorm.DB) error            { ensureID(&c.ID); return nil }
func (v *ChallengeVote) BeforeCreate(*gorm.DB) error        { ensureID(&v.ID); return nil }
func (r *ChallengeResolution) BeforeCreate(*gorm.DB) error  { ensureID(&r.ID); return nil }
func (r *UserReputation) BeforeCreate(*gorm.DB) error       { ensureID(&r.ID); return nil }
func (s *VeracityScore) BeforeCreate(*gorm.DB) error        { ensureID(&s.ID); return nil }
func (h *VeracityScoreHistory) BeforeCreate(*gorm.DB) error { ensureID(&h.ID); return nil }
func (i *FormalInquiry) BeforeCreate(*gorm.DB) error        { ensureID(&i.ID); return nil }
