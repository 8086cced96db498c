package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/services"
)

type SourceHandler struct {
	log         *logger.Logger
	credService services.SourceCredibilityService
	repService  services.ReputationService
}

func NewSourceHandler(log *logger.Logger, csvc services.SourceCredibilityService, rsvc services.ReputationService) *SourceHandler {
	return &SourceHandler{
		log:         log.With("handler", "SourceHandler"),
		credService: csvc,
		repService:  rsvc,
	}
}

// GET /api/sources/:id/credibility
func (h *SourceHandler) GetCredibility(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	cred, err := h.credService.Get(c.Request.Context(), sourceID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"credibility": cred})
}

// POST /api/sources/:id/recalculate
func (h *SourceHandler) Recalculate(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	cred, err := h.credService.Recompute(c.Request.Context(), nil, sourceID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"credibility": cred})
}

// GET /api/users/:id/reputation
func (h *SourceHandler) GetReputation(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	rep, err := h.repService.Get(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"reputation": rep})
}
