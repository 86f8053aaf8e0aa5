package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the cross-stage oversight view.
type ReportHandler struct {
	Engine *workflow.Engine
}

var reportStages = map[string]models.Stage{
	"executive": models.StageExecutive,
	"verify":    models.StageVerify,
	"dispatch":  models.StageDispatch,
	"receive":   models.StageReceive,
}

var reportStates = map[string]models.StageState{
	"pending":  models.StagePending,
	"approved": models.StageApproved,
	"rejected": models.StageRejected,
}

// List returns one page of ledger rows exploded into per-stage report rows.
// Query parameters: stage, status, from, to (RFC 3339), page, limit.
func (h *ReportHandler) List(c *gin.Context) {
	filter := workflow.ReportFilter{}

	if stage := c.Query("stage"); stage != "" {
		s, ok := reportStages[stage]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown stage: " + stage})
			return
		}
		filter.Stage = s
	}
	if status := c.Query("status"); status != "" {
		st, ok := reportStates[status]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + status})
			return
		}
		filter.State = st
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		filter.To = &t
	}
	filter.Page, _ = strconv.ParseInt(c.DefaultQuery("page", "0"), 10, 64)
	filter.Limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	rows, err := h.Engine.Report(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
