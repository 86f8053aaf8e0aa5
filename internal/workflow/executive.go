package workflow

import (
	"context"
	"log"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/notify"
)

// ExecutiveApprove approves the first stage and hands the request to the
// Verifier responsible for the request's out-location. The hand-off happens
// whether or not the destination is Non-SLT; the Non-SLT split only matters
// at dispatch.
func (e *Engine) ExecutiveApprove(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	st, err := e.loadPendingStage(ctx, referenceNumber, models.StageExecutive)
	if err != nil {
		return nil, err
	}
	req := st.Request

	ts := now()
	st.SetStage(models.StageExecutive, models.StageRecord{
		State:     models.StageApproved,
		ServiceNo: actor.ServiceNo,
		Comment:   comment,
		ActedAt:   &ts,
	})

	before := req.Status
	req.Status = models.LifecycleExecutiveApproved

	// Resolve the next actor. The request only advances to the verify queue
	// when a Verifier exists for the out-location.
	verifiers, err := e.Directory.FindByRoleAndBranch(ctx, models.RoleVerifier, req.OutLocation)
	if err != nil {
		log.Printf("Verifier lookup for %s failed: %v", req.OutLocation, err)
		return nil, ErrInternal
	}
	var verifier *models.User
	if len(verifiers) > 0 {
		verifier = &verifiers[0]
		st.SetStage(models.StageVerify, models.StageRecord{
			State:     models.StagePending,
			ServiceNo: verifier.ServiceNo,
		})
		req.Status = models.LifecycleVerifyPending
	} else {
		log.Printf("No verifier found for %s; %s stays at executive-approved", req.OutLocation, referenceNumber)
	}

	st.BeforeStatus, st.AfterStatus = before, req.Status

	tr := &models.StageTransition{
		ReferenceNumber: referenceNumber,
		Stage:           models.StageExecutive,
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

	if verifier != nil {
		subject, body := notify.StageActionRequired(models.StageVerify, req)
		e.emailUser(ctx, verifier.ServiceNo, subject, body)
	}
	e.publish(EventRequestApproved, req, st)

	return e.refresh(ctx, referenceNumber)
}

// ExecutiveReject rejects at stage ordinal 1.
func (e *Engine) ExecutiveReject(ctx context.Context, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	return e.Reject(ctx, models.StageExecutive, referenceNumber, comment, actor)
}
