package handlers

import (
	"net/http"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// VerifierHandler exposes the second approval stage.
type VerifierHandler struct {
	Engine *workflow.Engine
}

func (h *VerifierHandler) ListPending(c *gin.Context) {
	listStage(c, h.Engine, models.StageVerify, models.StagePending)
}

func (h *VerifierHandler) ListApproved(c *gin.Context) {
	listStage(c, h.Engine, models.StageVerify, models.StageApproved)
}

func (h *VerifierHandler) ListRejected(c *gin.Context) {
	listStage(c, h.Engine, models.StageVerify, models.StageRejected)
}

func (h *VerifierHandler) Approve(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.VerifierApprove(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *VerifierHandler) Reject(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.VerifierReject(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
