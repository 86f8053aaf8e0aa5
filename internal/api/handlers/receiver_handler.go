package handlers

import (
	"net/http"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// ReceiverHandler exposes the final approval stage.
type ReceiverHandler struct {
	Engine *workflow.Engine
}

func (h *ReceiverHandler) ListPending(c *gin.Context) {
	listStage(c, h.Engine, models.StageReceive, models.StagePending)
}

func (h *ReceiverHandler) ListApproved(c *gin.Context) {
	listStage(c, h.Engine, models.StageReceive, models.StageApproved)
}

func (h *ReceiverHandler) ListRejected(c *gin.Context) {
	listStage(c, h.Engine, models.StageReceive, models.StageRejected)
}

type receiveApprovePayload struct {
	Comment         string                  `json:"comment"`
	UnLoading       *models.HandlingDetail  `json:"unLoading"`
	ReturnableItems []models.ReturnableItem `json:"returnableItems"`
}

func (h *ReceiverHandler) Approve(c *gin.Context) {
	var payload receiveApprovePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := workflow.ReceiveDetails{
		UnLoading:       payload.UnLoading,
		ReturnableItems: payload.ReturnableItems,
	}
	row, err := h.Engine.ReceiverApprove(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, details, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ReceiverHandler) Reject(c *gin.Context) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Engine.ReceiverReject(c.Request.Context(), c.Param("referenceNumber"), payload.Comment, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
