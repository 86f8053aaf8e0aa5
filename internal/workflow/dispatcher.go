package workflow

import (
	"context"
	"log"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/notify"
)

// DispatcherApprove approves the third stage. It branches three ways:
//
//  1. Non-SLT destination: the pipeline ends here; the request becomes
//     terminal Dispatched and no receiver hand-off happens.
//  2. SLT destination, no designated receiver: the request becomes ready for
//     receiving as an open pool item; any Receiver at the in-location may
//     pick it up.
//  3. SLT destination with a designated receiver: same lifecycle move, but
//     the request's receiverServiceNo is stamped onto the ledger row and
//     only that user is notified.
//
// Unlike the other stages this appends a new ledger row instead of mutating
// the current one, preserving the original submission's createdAt on the new
// row. The superseded row stays behind with dispatch still Pending; list
// queries drop it via the latest-row confirmation in ListByStage.
func (e *Engine) DispatcherApprove(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	st, err := e.loadPendingStage(ctx, referenceNumber, models.StageDispatch)
	if err != nil {
		return nil, err
	}
	req := st.Request

	ts := now()
	next := &models.Status{
		ReferenceNumber: referenceNumber,
		RequestID:       st.RequestID,
		Stages:          make(map[models.Stage]models.StageRecord, len(st.Stages)+1),
		Rejection:       st.Rejection,
		CreatedAt:       st.CreatedAt,
		UpdatedAt:       ts,
	}
	for stage, rec := range st.Stages {
		next.Stages[stage] = rec
	}
	next.SetStage(models.StageDispatch, models.StageRecord{
		State:     models.StageApproved,
		ServiceNo: actor.ServiceNo,
		Comment:   comment,
		ActedAt:   &ts,
	})

	before := req.Status
	switch {
	case req.IsNonSltPlace:
		req.Status = models.LifecycleDispatched
	case req.ReceiverAvailable && req.ReceiverServiceNo != "":
		req.Status = models.LifecycleReceivePending
		next.SetStage(models.StageReceive, models.StageRecord{
			State:     models.StagePending,
			ServiceNo: req.ReceiverServiceNo,
		})
	default:
		req.Status = models.LifecycleReceivePending
		next.SetStage(models.StageReceive, models.StageRecord{State: models.StagePending})
	}
	next.BeforeStatus, next.AfterStatus = before, req.Status

	tr := &models.StageTransition{
		ReferenceNumber: referenceNumber,
		Stage:           models.StageDispatch,
		FromState:       models.StagePending,
		ToState:         models.StageApproved,
		ActorServiceNo:  actor.ServiceNo,
		BeforeStatus:    before,
		AfterStatus:     req.Status,
		Comment:         comment,
		At:              ts,
	}

	if err := e.Store.AppendStageRow(ctx, next, req, tr); err != nil {
		if err == ErrConflict {
			return nil, ErrConflict
		}
		log.Printf("Dispatch append for %s failed: %v", referenceNumber, err)
		return nil, ErrInternal
	}

	switch {
	case req.IsNonSltPlace:
		// Terminal: the goods left for an external party, nobody to notify.
	case req.ReceiverAvailable && req.ReceiverServiceNo != "":
		subject, body := notify.StageActionRequired(models.StageReceive, req)
		e.emailUser(ctx, req.ReceiverServiceNo, subject, body)
	default:
		subject, body := notify.StageActionRequired(models.StageReceive, req)
		e.emailRoleAtBranch(ctx, models.RoleReceiver, req.InLocation, subject, body)
	}
	e.publish(EventRequestApproved, req, next)

	return e.refresh(ctx, referenceNumber)
}

// DispatcherReject rejects at stage ordinal 3.
func (e *Engine) DispatcherReject(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	return e.Reject(ctx, models.StageDispatch, referenceNumber, comment, actor)
}
