package workflow

import (
	"context"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/notify"
)

// ReceiveDetails carries what the receiver records while confirming the
// goods arrived: who unloaded them and any corrections to the returnable
// item tracking.
type ReceiveDetails struct {
	UnLoading       *models.HandlingDetail
	ReturnableItems []models.ReturnableItem
}

// ReceiverApprove confirms the goods arrived, persists the unloading and
// returnable-item details onto the request, and closes the pipeline at
// terminal Received. The original requester is notified.
func (e *Engine) ReceiverApprove(ctx context.Context, referenceNumber, comment string, details ReceiveDetails, actor Actor) (*models.Status, error) {
	st, err := e.loadPendingStage(ctx, referenceNumber, models.StageReceive)
	if err != nil {
		return nil, err
	}
	req := st.Request

	ts := now()
	st.SetStage(models.StageReceive, models.StageRecord{
		State:     models.StageApproved,
		ServiceNo: actor.ServiceNo,
		Comment:   comment,
		ActedAt:   &ts,
	})

	if details.UnLoading != nil {
		req.UnLoading = details.UnLoading
		if req.UnLoading.HandledAt == nil {
			req.UnLoading.HandledAt = &ts
		}
	}
	if details.ReturnableItems != nil {
		req.ReturnableItems = details.ReturnableItems
	}

	before := req.Status
	req.Status = models.LifecycleReceived
	st.BeforeStatus, st.AfterStatus = before, req.Status

	tr := &models.StageTransition{
		ReferenceNumber: referenceNumber,
		Stage:           models.StageReceive,
		FromState:       models.StagePending,
		ToState:         models.StageApproved,
		ActorServiceNo:  actor.ServiceNo,
		BeforeStatus:    before,
		AfterStatus:     req.Status,
		Comment:         comment,
		At:              ts,
	}

	if err := e.save(ctx, st, req, tr); err != nil {
		return nil, err
	}

	subject, body := notify.RequestReceived(req)
	e.emailUser(ctx, req.EmployeeServiceNo, subject, body)
	e.publish(EventRequestApproved, req, st)

	return e.refresh(ctx, referenceNumber)
}

// ReceiverReject rejects at stage ordinal 4.
func (e *Engine) ReceiverReject(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	return e.Reject(ctx, models.StageReceive, referenceNumber, comment, actor)
}
