package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-risk/internal/http/response"
	"github.com/yungbote/neurobridge-risk/internal/risk"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

type RiskHandler struct {
	risk services.RiskService
}

func NewRiskHandler(riskSvc services.RiskService) *RiskHandler {
	return &RiskHandler{risk: riskSvc}
}

// GET /api/learners/:id/risk
func (h *RiskHandler) GetLearnerRisk(c *gin.Context) {
	userID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_learner_id", err)
		return
	}
	var score *risk.Score
	if c.Query("refresh") == "true" {
		score, err = h.risk.CalculateRiskScore(c.Request.Context(), userID)
	} else {
		score, err = h.risk.GetCurrentRiskScore(c.Request.Context(), userID)
	}
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "risk_score_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"risk_score": score})
}

// GET /api/learners/:id/risk/history
func (h *RiskHandler) GetLearnerRiskHistory(c *gin.Context) {
	userID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_learner_id", err)
		return
	}
	hist, err := h.risk.GetRiskScoreHistory(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "risk_history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"history": hist})
}

// GET /api/instructors/:id/at-risk
func (h *RiskHandler) ListAtRiskStudents(c *gin.Context) {
	instructorID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_instructor_id", err)
		return
	}
	minLevel := risk.LevelModerate
	if raw := strings.TrimSpace(c.Query("min_level")); raw != "" {
		if minLevel, err = risk.ParseLevel(raw); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_risk_level", err)
			return
		}
	}
	students, err := h.risk.GetAtRiskStudentsForInstructor(c.Request.Context(), instructorID, minLevel)
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "at_risk_lookup_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"students": students})
}

// GET /api/risk/distribution
func (h *RiskHandler) GetDistribution(c *gin.Context) {
	dist, err := h.risk.GetRiskDistribution(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "risk_distribution_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"distribution": dist})
}
