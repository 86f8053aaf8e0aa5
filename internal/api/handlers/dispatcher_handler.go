package handlers

import (
	"net/http"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// DispatcherHandler exposes the petrol-leader/dispatch stage.
type DispatcherHandler struct {
	Engine *workflow.Engine
}

func (h *DispatcherHandler) ListPending(c *gin.Context) {
	listStage(c, h.Engine, models.StageDispatch, models.StagePending)
}

func (h *DispatcherHandler) ListApproved(c *gin.Context) {
	listStage(c, h.Engine, models.StageDispatch, models.StageApproved)
}

func (h *DispatcherHandler) ListRejected(c *gin.Context) {
	listStage(c, h.Engine, models.StageDispatch, models.StageRejected)
}

func (h *DispatcherHandler) Approve(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.DispatcherApprove(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *DispatcherHandler) Reject(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.DispatcherReject(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
