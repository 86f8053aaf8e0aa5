package handlers

import (
	"net/http"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// ExecutiveHandler exposes the first approval stage.
type ExecutiveHandler struct {
	Engine *workflow.Engine
}

func (h *ExecutiveHandler) ListPending(c *gin.Context) {
	listStage(c, h.Engine, models.StageExecutive, models.StagePending)
}

func (h *ExecutiveHandler) ListApproved(c *gin.Context) {
	listStage(c, h.Engine, models.StageExecutive, models.StageApproved)
}

func (h *ExecutiveHandler) ListRejected(c *gin.Context) {
	listStage(c, h.Engine, models.StageExecutive, models.StageRejected)
}

func (h *ExecutiveHandler) Approve(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.ExecutiveApprove(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ExecutiveHandler) Reject(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.ExecutiveReject(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
