package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-risk/internal/http/response"
	"github.com/yungbote/neurobridge-risk/internal/services"
)

type ScanHandler struct {
	scan services.ScanService
}

func NewScanHandler(scan services.ScanService) *ScanHandler {
	return &ScanHandler{scan: scan}
}

type scanRequest struct {
	UserIDs  []uuid.UUID `json:"user_ids"`
	Dispatch bool        `json:"dispatch"`
}

// POST /api/risk/scan
//
// Without user_ids the whole active cohort is scanned synchronously.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	opts := services.ScanOptions{Dispatch: req.Dispatch}
	var (
		res services.ScanResult
		err error
	)
	if len(req.UserIDs) > 0 {
		res, err = h.scan.ScanCohort(c.Request.Context(), req.UserIDs, opts)
	} else {
		res, err = h.scan.ScanAllStudents(c.Request.Context(), opts)
	}
	if err != nil {
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, "risk_scan_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"scored":            len(res.Scores),
		"failed":            res.Failed,
		"dispatched":        res.Dispatched,
		"dispatch_failures": res.DispatchFailures,
		"levels":            res.LevelCounts(),
	})
}
