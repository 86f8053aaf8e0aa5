package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/notify"

	"github.com/google/uuid"
)

// SubmitPayload is the requester's input for a new gate pass.
type SubmitPayload struct {
	OutLocation   string
	InLocation    string
	IsNonSltPlace bool

	CompanyName     string
	CompanyAddress  string
	ReceiverNIC     string
	ReceiverName    string
	ReceiverContact string

	ExecutiveOfficerServiceNo string
	ReceiverAvailable         bool
	ReceiverServiceNo         string

	Items     []models.Item
	Transport models.Transport
	Loading   *models.HandlingDetail
}

// Submit creates a new Request plus the first ledger row with the executive
// stage pending, emails the executive, and announces the request on the bus.
func (e *Engine) Submit(ctx context.Context, payload SubmitPayload, actor Actor) (*models.Request, error) {
	if payload.OutLocation == "" {
		return nil, validationErr("outLocation is required")
	}
	if payload.ExecutiveOfficerServiceNo == "" {
		return nil, validationErr("executiveOfficerServiceNo is required")
	}
	if len(payload.Items) == 0 {
		return nil, validationErr("at least one item is required")
	}
	if payload.IsNonSltPlace {
		if payload.CompanyName == "" {
			return nil, validationErr("companyName is required for a Non-SLT destination")
		}
	} else if payload.InLocation == "" {
		return nil, validationErr("inLocation is required for an SLT destination")
	}

	ts := now()
	req := &models.Request{
		ReferenceNumber:           fmt.Sprintf("GP-%s", strings.ToUpper(uuid.New().String()[:8])),
		EmployeeServiceNo:         actor.ServiceNo,
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
		ReturnableItems:           deriveReturnables(payload.Items),
		Transport:                 payload.Transport,
		Loading:                   payload.Loading,
		Status:                    models.LifecycleExecutivePending,
		Show:                      true,
		Version:                   1,
		CreatedAt:                 ts,
		UpdatedAt:                 ts,
	}
	if req.IsNonSltPlace {
		req.InLocation = ""
	}

	st := &models.Status{
		ReferenceNumber: req.ReferenceNumber,
		Stages: map[models.Stage]models.StageRecord{
			models.StageExecutive: {
				State:     models.StagePending,
				ServiceNo: req.ExecutiveOfficerServiceNo,
			},
		},
		AfterStatus: req.Status,
		Version:     1,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	tr := &models.StageTransition{
		ReferenceNumber: req.ReferenceNumber,
		Stage:           models.StageExecutive,
		ToState:         models.StagePending,
		ActorServiceNo:  actor.ServiceNo,
		AfterStatus:     req.Status,
		At:              ts,
	}

	if err := e.Store.CreateRequest(ctx, req, st, tr); err != nil {
		log.Printf("Create request failed: %v", err)
		return nil, ErrInternal
	}

	subject, body := notify.StageActionRequired(models.StageExecutive, req)
	e.emailUser(ctx, req.ExecutiveOfficerServiceNo, subject, body)
	st.Request = req
	e.publish(EventRequestCreated, req, st)

	return req, nil
}

// deriveReturnables builds the returnable-item mirror from the item list.
func deriveReturnables(items []models.Item) []models.ReturnableItem {
	var out []models.ReturnableItem
	for _, item := range items {
		if !item.Returnable {
			continue
		}
		out = append(out, models.ReturnableItem{
			Name:     item.Name,
			SerialNo: item.SerialNo,
			Quantity: item.Quantity,
		})
	}
	return out
}

// Cancel soft-cancels a request: lifecycle Canceled, hidden from every
// stage queue. Only the original requester (or a SuperAdmin) may cancel.
func (e *Engine) Cancel(ctx context.Context, referenceNumber string, actor Actor) (*models.Request, error) {
	st, err := e.Store.LatestStatusByReference(ctx, referenceNumber)
	if err != nil {
		log.Printf("Cancel lookup for %s failed: %v", referenceNumber, err)
		return nil, ErrInternal
	}
	if st == nil || st.Request == nil {
		return nil, ErrNotFound
	}
	req := st.Request

	if !actor.IsSuperAdmin() && req.EmployeeServiceNo != actor.ServiceNo {
		return nil, validationErr("only the requester can cancel this request")
	}

	ts := now()
	before := req.Status
	req.Status = models.LifecycleCanceled
	req.Show = false
	st.BeforeStatus, st.AfterStatus = before, req.Status

	tr := &models.StageTransition{
		ReferenceNumber: referenceNumber,
		Stage:           currentStage(st),
		ToState:         models.StageRejected,
		ActorServiceNo:  actor.ServiceNo,
		BeforeStatus:    before,
		AfterStatus:     req.Status,
		Comment:         "canceled by requester",
		At:              ts,
	}

	if err := e.save(ctx, st, req, tr); err != nil {
		return nil, err
	}

	e.publish(EventRequestCanceled, req, st)
	return req, nil
}

// currentStage returns the highest-ordinal stage reached on a ledger row.
func currentStage(st *models.Status) models.Stage {
	current := models.StageExecutive
	for _, stage := range models.Stages() {
		if _, ok := st.StageRecordFor(stage); ok {
			current = stage
		}
	}
	return current
}

// ListMine returns the caller's own requests, hidden ones included, newest
// first.
func (e *Engine) ListMine(ctx context.Context, actor Actor) ([]models.Request, error) {
	if actor.ServiceNo == "" {
		return nil, validationErr("serviceNo is required for this role")
	}
	requests, err := e.Store.ListRequestsByEmployee(ctx, actor.ServiceNo)
	if err != nil {
		log.Printf("ListMine for %s failed: %v", actor.ServiceNo, err)
		return nil, ErrInternal
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

// GetByReference returns one request with its latest ledger row.
func (e *Engine) GetByReference(ctx context.Context, referenceNumber string) (*models.Status, error) {
	st, err := e.Store.LatestStatusByReference(ctx, referenceNumber)
	if err != nil {
		log.Printf("GetByReference %s failed: %v", referenceNumber, err)
		return nil, ErrInternal
	}
	if st == nil || st.Request == nil {
		return nil, ErrNotFound
	}
	return st, nil
}
