package workflow

import (
	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/socket"
)

// Event names published to the bus.
const (
	EventRequestCreated  = "gatepass:created"
	EventRequestApproved = "gatepass:approved"
	EventRequestRejected = "gatepass:rejected"
	EventRequestCanceled = "gatepass:canceled"
)

// eventPayload is what subscribers receive; the full ledger row travels with
// the event so dashboards can update without a re-fetch.
type eventPayload struct {
	ReferenceNumber string         `json:"referenceNumber"`
	Lifecycle       int            `json:"lifecycle"`
	Status          *models.Status `json:"status,omitempty"`
}

// computeTargets derives the topic rooms an event for this request fans out
// to: the involved users, the roles whose queue the request now sits in, and
// the two location rooms.
func computeTargets(req *models.Request, st *models.Status) []string {
	seen := map[string]bool{}
	targets := []string{}
	add := func(room string) {
		if room == "" || seen[room] {
			return
		}
		seen[room] = true
		targets = append(targets, room)
	}

	add(socket.UserRoom(req.EmployeeServiceNo))
	add(socket.UserRoom(req.ExecutiveOfficerServiceNo))
	if req.ReceiverServiceNo != "" {
		add(socket.UserRoom(req.ReceiverServiceNo))
	}
	if st != nil {
		for _, stage := range models.Stages() {
			if rec, ok := st.StageRecordFor(stage); ok && rec.ServiceNo != "" {
				add(socket.UserRoom(rec.ServiceNo))
			}
		}
	}

	for _, role := range rolesForLifecycle(req.Status) {
		add(socket.RoleRoom(role))
	}
	add(socket.RoleRoom(models.RoleSuperAdmin))

	add(socket.BranchRoom(req.OutLocation))
	if req.InLocation != "" {
		add(socket.BranchRoom(req.InLocation))
	}
	return targets
}

// rolesForLifecycle maps the coarse lifecycle code to the roles whose work
// queue the request currently sits in.
func rolesForLifecycle(code int) []string {
	switch code {
	case models.LifecycleExecutivePending:
		return []string{models.RoleExecutive}
	case models.LifecycleVerifyPending:
		return []string{models.RoleVerifier}
	case models.LifecycleVerifyApproved:
		return []string{models.RoleDispatcher, models.RolePleader}
	case models.LifecycleReceivePending:
		return []string{models.RoleReceiver}
	}
	return nil
}

// publish pushes an event to the bus; the bus itself is best-effort and
// never blocks the stage operation's success.
func (e *Engine) publish(name string, req *models.Request, st *models.Status) {
	if e.Bus == nil {
		return
	}
	e.Bus.Publish(name, eventPayload{
		ReferenceNumber: req.ReferenceNumber,
		Lifecycle:       req.Status,
		Status:          st,
	}, computeTargets(req, st))
}
