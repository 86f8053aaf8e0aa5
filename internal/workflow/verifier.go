package workflow

import (
	"context"
	"log"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/notify"
)

// VerifierApprove approves the second stage. The request advances to
// "verify approved, waiting for dispatch" regardless of destination type:
// Non-SLT requests do not skip ahead to the receiver, they queue for the
// dispatcher at the out-location while SLT requests queue for the dispatcher
// at the in-location.
func (e *Engine) VerifierApprove(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	st, err := e.loadPendingStage(ctx, referenceNumber, models.StageVerify)
	if err != nil {
		return nil, err
	}
	req := st.Request

	ts := now()
	st.SetStage(models.StageVerify, models.StageRecord{
		State:     models.StageApproved,
		ServiceNo: actor.ServiceNo,
		Comment:   comment,
		ActedAt:   &ts,
	})
	// Dispatch queue is an open pool scoped by branch; no dispatcher is
	// assigned until one acts.
	st.SetStage(models.StageDispatch, models.StageRecord{State: models.StagePending})

	before := req.Status
	req.Status = models.LifecycleVerifyApproved
	st.BeforeStatus, st.AfterStatus = before, req.Status

	tr := &models.StageTransition{
		ReferenceNumber: referenceNumber,
		Stage:           models.StageVerify,
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

	dispatchBranch := relevantLocation(models.StageDispatch, req)
	subject, body := notify.StageActionRequired(models.StageDispatch, req)
	e.emailRoleAtBranch(ctx, models.RolePleader, dispatchBranch, subject, body)
	e.emailRoleAtBranch(ctx, models.RoleDispatcher, dispatchBranch, subject, body)
	if dispatchBranch == "" {
		log.Printf("Request %s has no dispatch branch to notify", referenceNumber)
	}
	e.publish(EventRequestApproved, req, st)

	return e.refresh(ctx, referenceNumber)
}

// VerifierReject rejects at stage ordinal 2.
func (e *Engine) VerifierReject(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	return e.Reject(ctx, models.StageVerify, referenceNumber, comment, actor)
}
