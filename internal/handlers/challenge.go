package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/requestdata"
	"github.com/yungbote/veracity-backend/internal/services"
	"github.com/yungbote/veracity-backend/internal/types"
)

type ChallengeHandler struct {
	log              *logger.Logger
	challengeService services.ChallengeService
}

func NewChallengeHandler(log *logger.Logger, csvc services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		log:              log.With("handler", "ChallengeHandler"),
		challengeService: csvc,
	}
}

type createChallengeRequest struct {
	TargetKind string     `json:"target_kind" binding:"required"`
	TargetID   uuid.UUID  `json:"target_id" binding:"required"`
	TypeCode   string     `json:"type_code" binding:"required"`
	Claim      string     `json:"claim" binding:"required"`
	EvidenceID *uuid.UUID `json:"evidence_id,omitempty"`
}

// POST /api/challenges
func (h *ChallengeHandler) Create(c *gin.Context) {
	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	kind, err := types.ParseTargetKind(req.TargetKind)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	challenge, err := h.challengeService.Create(c.Request.Context(), services.CreateChallengeInput{
		Target:       types.TargetRef{Kind: kind, ID: req.TargetID},
		TypeCode:     req.TypeCode,
		ChallengerID: requestdata.ActorID(c.Request.Context()),
		Claim:        req.Claim,
		EvidenceID:   req.EvidenceID,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"challenge": challenge})
}

type castVoteRequest struct {
	Choice     string   `json:"choice" binding:"required"`
	Confidence *float64 `json:"confidence,omitempty"`
	Rationale  string   `json:"rationale"`
}

// POST /api/challenges/:id/votes
func (h *ChallengeHandler) CastVote(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	challenge, err := h.challengeService.CastVote(c.Request.Context(), services.CastVoteInput{
		ChallengeID: challengeID,
		VoterID:     requestdata.ActorID(c.Request.Context()),
		Choice:      types.VoteChoice(req.Choice),
		Confidence:  req.Confidence,
		Rationale:   req.Rationale,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"challenge": challenge})
}

type resolveChallengeRequest struct {
	Notes string `json:"notes"`
}

// POST /api/challenges/:id/resolve
func (h *ChallengeHandler) Resolve(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	var req resolveChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	resolution, err := h.challengeService.Resolve(c.Request.Context(), challengeID, requestdata.ActorID(c.Request.Context()), req.Notes)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"resolution": resolution})
}

// POST /api/challenges/:id/withdraw
func (h *ChallengeHandler) Withdraw(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	challenge, err := h.challengeService.Withdraw(c.Request.Context(), challengeID, requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"challenge": challenge})
}

// GET /api/challenges/:id
func (h *ChallengeHandler) Get(c *gin.Context) {
	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	challenge, err := h.challengeService.Get(c.Request.Context(), challengeID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"challenge": challenge})
}

// GET /api/targets/:kind/:id/challenges
func (h *ChallengeHandler) ListOpenByTarget(c *gin.Context) {
	ref, ok := targetFromParams(c)
	if !ok {
		return
	}
	challenges, err := h.challengeService.ListOpenByTarget(c.Request.Context(), ref)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"challenges": challenges})
}
