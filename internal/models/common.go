package models

// Request lifecycle codes. The coarse integer on a Request summarizing its
// overall pipeline position; the authoritative per-stage state lives on the
// Status ledger rows.
const (
	LifecycleExecutivePending  = 1
	LifecycleExecutiveApproved = 2
	LifecycleExecutiveRejected = 3
	LifecycleVerifyPending     = 4
	LifecycleVerifyApproved    = 5 // waiting for dispatch
	LifecycleVerifyRejected    = 6
	// 7 is reserved; verify-approved doubles as the dispatch-pending state.
	LifecycleDispatchRejected  = 8
	LifecycleCanceled          = 9
	LifecycleReceivePending    = 10 // ready for receiver
	LifecycleReceived          = 11
	LifecycleReceiveRejected   = 12
	LifecycleDispatched        = 13 // Non-SLT terminal, no receiver stage
)

// User roles.
const (
	RoleUser            = "User"
	RoleExecutive       = "Executive"
	RoleVerifier        = "Verifier"
	RoleDispatcher      = "Dispatcher"
	RolePleader         = "Pleader"
	RoleReceiver        = "Receiver"
	RoleSecurityOfficer = "SecurityOfficer"
	RoleSuperAdmin      = "SuperAdmin"
)

// StageState is the tri-state of one pipeline stage on a ledger row.
type StageState int

const (
	StagePending  StageState = 1
	StageApproved StageState = 2
	StageRejected StageState = 3
)

func (s StageState) Label() string {
	switch s {
	case StagePending:
		return "Pending"
	case StageApproved:
		return "Approved"
	case StageRejected:
		return "Rejected"
	}
	return ""
}

// Stage names the four pipeline steps. Used as the key of the per-stage
// state map on a Status row.
type Stage string

const (
	StageExecutive Stage = "executive"
	StageVerify    Stage = "verify"
	StageDispatch  Stage = "dispatch"
	StageReceive   Stage = "receive"
)

// Ordinal returns the 1-based position of the stage in the pipeline.
// Also used as the rejectionLevel recorded on reject.
func (s Stage) Ordinal() int {
	switch s {
	case StageExecutive:
		return 1
	case StageVerify:
		return 2
	case StageDispatch:
		return 3
	case StageReceive:
		return 4
	}
	return 0
}

// RoleLabel is the human role name recorded as rejection provenance.
func (s Stage) RoleLabel() string {
	switch s {
	case StageExecutive:
		return RoleExecutive
	case StageVerify:
		return RoleVerifier
	case StageDispatch:
		return RolePleader
	case StageReceive:
		return RoleReceiver
	}
	return ""
}

// ReportLabel is the stage name shown on the admin report view.
func (s Stage) ReportLabel() string {
	switch s {
	case StageExecutive:
		return "Executive"
	case StageVerify:
		return "Verify"
	case StageDispatch:
		return "Petrol Leader"
	case StageReceive:
		return "Receive"
	}
	return string(s)
}

// Stages lists the pipeline stages in order.
func Stages() []Stage {
	return []Stage{StageExecutive, StageVerify, StageDispatch, StageReceive}
}
