package workflow

import (
	"context"
	"log"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/notify"
)

// All notification helpers are best-effort: a missing user, a failed
// directory lookup or a failed send is logged and never fails the stage
// operation, and a failure for one party never blocks the others.

// emailUser looks up one user by service number and emails them.
func (e *Engine) emailUser(ctx context.Context, serviceNo, subject, body string) {
	if e.Mailer == nil || serviceNo == "" {
		return
	}
	user, err := e.Directory.FindByServiceNo(ctx, serviceNo)
	if err != nil {
		log.Printf("Directory lookup for %s failed, skipping email: %v", serviceNo, err)
		return
	}
	if user == nil || user.Email == "" {
		log.Printf("No email on record for %s, skipping notification", serviceNo)
		return
	}
	if err := e.Mailer.Send(user.Email, subject, body); err != nil {
		log.Printf("Notification to %s failed: %v", serviceNo, err)
	}
}

// emailRoleAtBranch emails every user holding the role at the branch.
func (e *Engine) emailRoleAtBranch(ctx context.Context, role, branch, subject, body string) {
	if e.Mailer == nil {
		return
	}
	users, err := e.Directory.FindByRoleAndBranch(ctx, role, branch)
	if err != nil {
		log.Printf("Directory lookup for role %s at %s failed, skipping email: %v", role, branch, err)
		return
	}
	if len(users) == 0 {
		log.Printf("No %s found at %s to notify", role, branch)
		return
	}
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		if err := e.Mailer.Send(user.Email, subject, body); err != nil {
			log.Printf("Notification to %s failed: %v", user.ServiceNo, err)
		}
	}
}

// notifyRejection fans the rejection out to every already-involved party:
// the requester always, plus the actor of each stage below the rejecting
// one.
func (e *Engine) notifyRejection(ctx context.Context, stage models.Stage, st *models.Status, req *models.Request, comment string) {
	subject, body := notify.RequestRejected(st.Rejection, req, comment)

	e.emailUser(ctx, req.EmployeeServiceNo, subject, body)

	for _, lower := range models.Stages() {
		if lower == stage || lower.Ordinal() >= stage.Ordinal() {
			continue
		}
		rec, ok := st.StageRecordFor(lower)
		if !ok || rec.ServiceNo == "" || rec.ServiceNo == req.EmployeeServiceNo {
			continue
		}
		e.emailUser(ctx, rec.ServiceNo, subject, body)
	}
}

// actorBranch resolves the branch recorded as rejection provenance: the
// actor's first token branch, with a directory lookup as fallback when the
// token carried none. The fallback is best-effort.
func (e *Engine) actorBranch(ctx context.Context, actor Actor) string {
	if len(actor.Branches) > 0 {
		return actor.Branches[0]
	}
	user, err := e.Directory.FindByServiceNo(ctx, actor.ServiceNo)
	if err != nil {
		log.Printf("Branch fallback lookup for %s failed: %v", actor.ServiceNo, err)
		return ""
	}
	if user != nil && len(user.Branches) > 0 {
		return user.Branches[0]
	}
	return ""
}
