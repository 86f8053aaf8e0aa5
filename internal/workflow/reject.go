package workflow

import (
	"context"
	"strings"

	"gatepass-api-server/internal/models"
)

// rejectedLifecycle maps a stage to the coarse Request code set on reject.
func rejectedLifecycle(stage models.Stage) int {
	switch stage {
	case models.StageExecutive:
		return models.LifecycleExecutiveRejected
	case models.StageVerify:
		return models.LifecycleVerifyRejected
	case models.StageDispatch:
		return models.LifecycleDispatchRejected
	case models.StageReceive:
		return models.LifecycleReceiveRejected
	}
	return 0
}

// Reject is the shared reject operation of every stage engine. The comment
// is mandatory, the stage must currently be pending, and the rejection fans
// out to every party already involved below the rejecting stage.
func (e *Engine) Reject(ctx context.Context, stage models.Stage, referenceNumber, comment string, actor Actor) (*models.Status, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, validationErr("Rejection comment is required.")
	}

	st, err := e.loadPendingStage(ctx, referenceNumber, stage)
	if err != nil {
		return nil, err
	}
	req := st.Request

	ts := now()
	st.SetStage(stage, models.StageRecord{
		State:     models.StageRejected,
		ServiceNo: actor.ServiceNo,
		Comment:   comment,
		ActedAt:   &ts,
	})
	st.Rejection = &models.Rejection{
		By:        stage.RoleLabel(),
		ServiceNo: actor.ServiceNo,
		Branch:    e.actorBranch(ctx, actor),
		At:        ts,
		Level:     stage.Ordinal(),
	}

	before := req.Status
	req.Status = rejectedLifecycle(stage)
	st.BeforeStatus, st.AfterStatus = before, req.Status

	tr := &models.StageTransition{
		ReferenceNumber: referenceNumber,
		Stage:           stage,
		FromState:       models.StagePending,
		ToState:         models.StageRejected,
		ActorServiceNo:  actor.ServiceNo,
		BeforeStatus:    before,
		AfterStatus:     req.Status,
		Comment:         comment,
		At:              ts,
	}

	if err := e.save(ctx, st, req, tr); err != nil {
		return nil, err
	}

	e.notifyRejection(ctx, stage, st, req, comment)
	e.publish(EventRequestRejected, req, st)

	return e.refresh(ctx, referenceNumber)
}
