package handlers

import (
	"net/http"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-gonic/gin"
)

// RequestHandler exposes the requester-facing operations.
type RequestHandler struct {
	Engine *workflow.Engine
}

type submitRequestPayload struct {
	OutLocation   string `json:"outLocation" binding:"required"`
	InLocation    string `json:"inLocation"`
	IsNonSltPlace bool   `json:"isNonSltPlace"`

	CompanyName     string `json:"companyName"`
	CompanyAddress  string `json:"companyAddress"`
	ReceiverNIC     string `json:"receiverNIC"`
	ReceiverName    string `json:"receiverName"`
	ReceiverContact string `json:"receiverContact"`

	ExecutiveOfficerServiceNo string `json:"executiveOfficerServiceNo" binding:"required"`
	ReceiverAvailable         bool   `json:"receiverAvailable"`
	ReceiverServiceNo         string `json:"receiverServiceNo"`

	Items     []models.Item          `json:"items" binding:"required,dive"`
	Transport models.Transport       `json:"transport"`
	Loading   *models.HandlingDetail `json:"loading"`
}

// Submit creates a new gate pass request and opens the executive stage.
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload submitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Engine.Submit(c.Request.Context(), workflow.SubmitPayload{
		OutLocation:               payload.OutLocation,
		InLocation:                payload.InLocation,
		IsNonSltPlace:             payload.IsNonSltPlace,
		CompanyName:               payload.CompanyName,
		CompanyAddress:            payload.CompanyAddress,
		ReceiverNIC:               payload.ReceiverNIC,
		ReceiverName:              payload.ReceiverName,
		ReceiverContact:           payload.ReceiverContact,
		ExecutiveOfficerServiceNo: payload.ExecutiveOfficerServiceNo,
		ReceiverAvailable:         payload.ReceiverAvailable,
		ReceiverServiceNo:         payload.ReceiverServiceNo,
		Items:                     payload.Items,
		Transport:                 payload.Transport,
		Loading:                   payload.Loading,
	}, actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GetByReference returns one request together with its latest ledger row.
func (h *RequestHandler) GetByReference(c *gin.Context) {
	row, err := h.Engine.GetByReference(c.Request.Context(), c.Param("referenceNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// ListMine returns the caller's own requests.
func (h *RequestHandler) ListMine(c *gin.Context) {
	requests, err := h.Engine.ListMine(c.Request.Context(), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Cancel soft-cancels the caller's own request.
func (h *RequestHandler) Cancel(c *gin.Context) {
	req, err := h.Engine.Cancel(c.Request.Context(), c.Param("referenceNumber"), actorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
