package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/requestdata"
	"github.com/yungbote/veracity-backend/internal/services"
	"github.com/yungbote/veracity-backend/internal/types"
)

type VeracityHandler struct {
	log             *logger.Logger
	veracityService services.VeracityService
}

func NewVeracityHandler(log *logger.Logger, vsvc services.VeracityService) *VeracityHandler {
	return &VeracityHandler{
		log:             log.With("handler", "VeracityHandler"),
		veracityService: vsvc,
	}
}

// GET /api/veracity/:kind/:id
func (h *VeracityHandler) GetScore(c *gin.Context) {
	ref, ok := targetFromParams(c)
	if !ok {
		return
	}
	score, err := h.veracityService.Get(c.Request.Context(), ref)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"score": score})
}

// GET /api/veracity/:kind/:id/history
func (h *VeracityHandler) GetScoreHistory(c *gin.Context) {
	ref, ok := targetFromParams(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
			return
		}
		limit = n
	}
	history, err := h.veracityService.History(c.Request.Context(), ref, limit)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": history})
}

// POST /api/veracity/:kind/:id/recalculate
func (h *VeracityHandler) Recalculate(c *gin.Context) {
	ref, ok := targetFromParams(c)
	if !ok {
		return
	}
	actorID := requestdata.ActorID(c.Request.Context())
	score, err := h.veracityService.Recompute(c.Request.Context(), ref, types.ReasonManualRecalculation, "user", &actorID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"score": score})
}

type InquiryHandler struct {
	log             *logger.Logger
	veracityService services.VeracityService
}

func NewInquiryHandler(log *logger.Logger, vsvc services.VeracityService) *InquiryHandler {
	return &InquiryHandler{
		log:             log.With("handler", "InquiryHandler"),
		veracityService: vsvc,
	}
}

// GET /api/inquiries/:id
func (h *InquiryHandler) Get(c *gin.Context) {
	inquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	inquiry, err := h.veracityService.GetInquiry(c.Request.Context(), inquiryID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"inquiry": inquiry})
}

// POST /api/inquiries/:id/recheck
// Re-derives the confidence ceiling from current node credibilities.
func (h *InquiryHandler) Recheck(c *gin.Context) {
	inquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	inquiry, err := h.veracityService.ApplyInquiryCeiling(c.Request.Context(), inquiryID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"inquiry": inquiry})
}
