package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/http/response"
	"github.com/yungbote/neurobridge-risk/internal/platform/apierr"
	"github.com/yungbote/neurobridge-risk/internal/risk"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

type InterventionHandler struct {
	risk          services.RiskService
	interventions services.InterventionService
}

func NewInterventionHandler(riskSvc services.RiskService, interventions services.InterventionService) *InterventionHandler {
	return &InterventionHandler{risk: riskSvc, interventions: interventions}
}

// GET /api/learners/:id/interventions
func (h *InterventionHandler) ListLearnerInterventions(c *gin.Context) {
	userID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_learner_id", err)
		return
	}
	events, err := h.interventions.GetInterventionHistory(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "intervention_history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"interventions": events})
}

// POST /api/learners/:id/interventions
//
// Scores the learner (cached score when still valid) and dispatches matching templates.
// Partial failures still return the events that were recorded.
func (h *InterventionHandler) TriggerLearnerInterventions(c *gin.Context) {
	userID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_learner_id", err)
		return
	}
	ctx := c.Request.Context()
	score, err := h.risk.GetCurrentRiskScore(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "risk_score_failed", err)
		return
	}
	created, err := h.interventions.TriggerInterventions(ctx, score)
	if err != nil {
		_ = c.Error(err)
		if len(created) == 0 {
			response.RespondError(c, http.StatusInternalServerError, "intervention_trigger_failed", err)
			return
		}
	}
	response.RespondOK(c, gin.H{
		"risk_score":    score,
		"interventions": created,
		"partial":       err != nil,
	})
}

type outcomeRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// POST /api/interventions/:id/delivered
func (h *InterventionHandler) MarkDelivered(c *gin.Context) {
	h.mark(c, h.interventions.MarkDelivered)
}

// POST /api/interventions/:id/opened
func (h *InterventionHandler) MarkOpened(c *gin.Context) {
	h.mark(c, h.interventions.MarkOpened)
}

// POST /api/interventions/:id/outcome
func (h *InterventionHandler) MarkOutcome(c *gin.Context) {
	var req outcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	outcome, err := risk.ParseOutcome(req.Outcome)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_outcome", err)
		return
	}
	h.mark(c, func(ctx context.Context, id uuid.UUID) error {
		return h.interventions.MarkOutcome(ctx, id, outcome)
	})
}

func (h *InterventionHandler) mark(c *gin.Context, apply func(context.Context, uuid.UUID) error) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_intervention_id", err)
		return
	}
	err = apply(c.Request.Context(), id)
	switch {
	case err == nil:
		response.RespondOK(c, gin.H{"ok": true})
	case errors.Is(err, services.ErrEventNotFound):
		response.RespondAPIError(c, apierr.NotFound("intervention_not_found", err))
	default:
		_ = c.Error(err)
		response.RespondAPIError(c, apierr.Internal("intervention_update_failed", err))
	}
}
