package handlers

import (
	"net/http"

	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the SuperAdmin request-management surface.
type AdminHandler struct {
	Engine *workflow.Engine
}

// HideRequest soft-deletes a request (show=false).
func (h *AdminHandler) HideRequest(c *gin.Context) {
	if err := h.Engine.AdminHide(c.Request.Context(), c.Param("referenceNumber"), actorFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteRequest hard-deletes a request and its ledger rows.
func (h *AdminHandler) DeleteRequest(c *gin.Context) {
	if err := h.Engine.AdminDelete(c.Request.Context(), c.Param("referenceNumber"), actorFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
