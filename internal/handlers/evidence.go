package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/requestdata"
	"github.com/yungbote/veracity-backend/internal/services"
	"github.com/yungbote/veracity-backend/internal/types"
)

type EvidenceHandler struct {
	log             *logger.Logger
	evidenceService services.EvidenceService
}

func NewEvidenceHandler(log *logger.Logger, esvc services.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{
		log:             log.With("handler", "EvidenceHandler"),
		evidenceService: esvc,
	}
}

type submitEvidenceRequest struct {
	TargetKind   string     `json:"target_kind" binding:"required"`
	TargetID     uuid.UUID  `json:"target_id" binding:"required"`
	SourceID     uuid.UUID  `json:"source_id" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	Title        string     `json:"title" binding:"required"`
	Content      string     `json:"content"`
	BaseWeight   float64    `json:"base_weight"`
	Confidence   float64    `json:"confidence"`
	DecayRate    float64    `json:"decay_rate"`
	RelevantDate *time.Time `json:"relevant_date,omitempty"`
}

// POST /api/evidence
func (h *EvidenceHandler) Submit(c *gin.Context) {
	var req submitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	kind, err := types.ParseTargetKind(req.TargetKind)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	ev, err := h.evidenceService.Submit(c.Request.Context(), services.SubmitEvidenceInput{
		Target:       types.TargetRef{Kind: kind, ID: req.TargetID},
		SourceID:     req.SourceID,
		SubmittedBy:  requestdata.ActorID(c.Request.Context()),
		Type:         types.EvidenceType(req.Type),
		Title:        req.Title,
		Content:      req.Content,
		BaseWeight:   req.BaseWeight,
		Confidence:   req.Confidence,
		DecayRate:    req.DecayRate,
		RelevantDate: req.RelevantDate,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"evidence": ev})
}

// POST /api/evidence/:id/verify
func (h *EvidenceHandler) Verify(c *gin.Context) {
	evidenceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	ev, err := h.evidenceService.Verify(c.Request.Context(), evidenceID, requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"evidence": ev})
}

type peerReviewRequest struct {
	Status string `json:"status" binding:"required"`
}

// POST /api/evidence/:id/peer-review
func (h *EvidenceHandler) SetPeerReview(c *gin.Context) {
	evidenceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	var req peerReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	ev, err := h.evidenceService.SetPeerReview(c.Request.Context(), evidenceID, types.PeerReviewStatus(req.Status), requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"evidence": ev})
}

// POST /api/evidence/:id/retract
func (h *EvidenceHandler) Retract(c *gin.Context) {
	evidenceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	ev, err := h.evidenceService.Retract(c.Request.Context(), evidenceID, requestdata.ActorID(c.Request.Context()))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"evidence": ev})
}

// GET /api/targets/:kind/:id/evidence
func (h *EvidenceHandler) ListByTarget(c *gin.Context) {
	ref, ok := targetFromParams(c)
	if !ok {
		return
	}
	evidence, err := h.evidenceService.GetByTarget(c.Request.Context(), ref)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"evidence": evidence})
}
