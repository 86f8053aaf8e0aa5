package handlers

import (
	"errors"
	"net/http"

	"gatepass-api-server/internal/api/middleware"
	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// actorFromContext builds the workflow actor from the claims Authenticate
// put on the context.
func actorFromContext(c *gin.Context) workflow.Actor {
	return workflow.Actor{
		ServiceNo: c.GetString("user_service_no"),
		Role:      c.GetString("user_role"),
		Branches:  middleware.Branches(c),
	}
}

// respondError maps engine errors onto HTTP statuses. Validation and
// not-found responses carry detail; everything else is opaque.
func respondError(c *gin.Context, err error) {
	switch {
	case workflow.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Status/Request not found"})
	case errors.Is(err, workflow.ErrStageNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "This stage is not awaiting action for the given reference"})
	case errors.Is(err, workflow.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The request was modified concurrently, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// decisionPayload is the shared approve/reject request body.
type decisionPayload struct {
	Comment string `json:"comment"`
}

// listStage serves one stage's listPending/listApproved/listRejected. The
// optional serviceNo query is the SuperAdmin target override.
func listStage(c *gin.Context, engine *workflow.Engine, stage models.Stage, state models.StageState) {
	actor := actorFromContext(c)
	target := c.Query("serviceNo")

	rows, err := engine.ListByStage(c.Request.Context(), stage, state, actor, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
