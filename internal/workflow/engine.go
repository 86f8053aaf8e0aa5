package workflow

import (
	"context"
	"log"
	"strings"
	"time"

	"gatepass-api-server/internal/models"
)

// Actor identifies who is performing a stage operation, as carried by the
// caller's token.
type Actor struct {
	ServiceNo string
	Role      string
	Branches  []string
}

func (a Actor) IsSuperAdmin() bool { return a.Role == models.RoleSuperAdmin }

// ListFilter is the store-level query for ledger rows. Visibility, branch
// scoping, dedup and sorting happen in the engine, not in the store.
type ListFilter struct {
	Stage models.Stage
	State models.StageState
}

// ReportFilter selects the raw ledger-row page for the admin report view.
type ReportFilter struct {
	Stage models.Stage     // optional
	State models.StageState // optional (0 = any)
	From  *time.Time
	To    *time.Time
	Page  int64
	Limit int64
}

// Store is the persistence boundary of the engine: the Request store, the
// Status ledger and the append-only transition log behind one interface.
// SaveStageResult and AppendStageRow commit the paired Status+Request write
// and the transition entry as a single unit of work, compare-and-set on the
// version fields, and return ErrConflict on a lost race.
type Store interface {
	CreateRequest(ctx context.Context, req *models.Request, st *models.Status, tr *models.StageTransition) error
	FindRequestByReference(ctx context.Context, ref string) (*models.Request, error)
	ListRequestsByEmployee(ctx context.Context, serviceNo string) ([]models.Request, error)

	LatestStatusByReference(ctx context.Context, ref string) (*models.Status, error)
	ListStatuses(ctx context.Context, f ListFilter) ([]models.Status, error)
	ListStatusPage(ctx context.Context, f ReportFilter) ([]models.Status, error)

	SaveStageResult(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error
	AppendStageRow(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error

	SetRequestShow(ctx context.Context, ref string, show bool) (bool, error)
	DeleteRequest(ctx context.Context, ref string) (bool, error)
}

// Directory resolves the next actor for a hand-off. Implemented by
// internal/directory over the users collection.
type Directory interface {
	FindByServiceNo(ctx context.Context, serviceNo string) (*models.User, error)
	FindByRole(ctx context.Context, role string) ([]models.User, error)
	FindByRoleAndBranch(ctx context.Context, role, branch string) ([]models.User, error)
}

// Notifier sends one email, fire-and-forget.
type Notifier interface {
	Send(toEmail, subject, htmlBody string) error
}

// EventBus publishes a named event to topic rooms.
type EventBus interface {
	Publish(name string, payload interface{}, targets []string)
}

// Engine runs the four stage pipelines against the ledger. One instance
// serves all stages.
type Engine struct {
	Store     Store
	Directory Directory
	Mailer    Notifier
	Bus       EventBus
}

func NewEngine(store Store, dir Directory, mailer Notifier, bus EventBus) *Engine {
	return &Engine{Store: store, Directory: dir, Mailer: mailer, Bus: bus}
}

// ListByStage is the shared list operation behind every stage's
// listPending/listApproved/listRejected. A SuperAdmin may pass an explicit
// targetServiceNo to filter by assignee; any other role must not.
func (e *Engine) ListByStage(ctx context.Context, stage models.Stage, state models.StageState, actor Actor, targetServiceNo string) ([]models.Status, error) {
	if !actor.IsSuperAdmin() {
		if targetServiceNo != "" {
			return nil, validationErr("explicit target serviceNo is only allowed for SuperAdmin")
		}
		if actor.ServiceNo == "" {
			return nil, validationErr("serviceNo is required for this role")
		}
	}

	rows, err := e.Store.ListStatuses(ctx, ListFilter{Stage: stage, State: state})
	if err != nil {
		log.Printf("ListByStage(%s, %d) query failed: %v", stage, state, err)
		return nil, ErrInternal
	}

	visible := []models.Status{}
	for _, row := range rows {
		if !e.visibleTo(stage, row, actor, targetServiceNo) {
			continue
		}
		visible = append(visible, row)
	}

	// The store filter only returns rows where this stage is in the requested
	// state. A reference whose true latest row no longer matches (the dispatch
	// append leaves the superseded row behind) would survive the collapse on
	// stale data, so each survivor must be confirmed as its reference's actual
	// latest row. If the latest row matched the filter and the visibility
	// rules it is already in the set and wins the collapse on its own.
	collapsed := CollapseLatest(visible)
	confirmed := make([]models.Status, 0, len(collapsed))
	for _, row := range collapsed {
		latest, err := e.Store.LatestStatusByReference(ctx, row.ReferenceNumber)
		if err != nil {
			log.Printf("Latest-row check for %s failed: %v", row.ReferenceNumber, err)
			return nil, ErrInternal
		}
		if latest == nil || latest.ID != row.ID {
			continue
		}
		confirmed = append(confirmed, row)
	}
	SortNewestFirst(confirmed)
	return confirmed, nil
}

// visibleTo applies the show flag, branch scoping and assignment rules for
// one ledger row.
func (e *Engine) visibleTo(stage models.Stage, row models.Status, actor Actor, targetServiceNo string) bool {
	if row.Request == nil || !row.Request.Show {
		return false
	}

	rec, _ := row.StageRecordFor(stage)

	if actor.IsSuperAdmin() {
		if targetServiceNo != "" && rec.ServiceNo != targetServiceNo {
			return false
		}
		return true
	}

	if !branchMatch(actor.Branches, relevantLocation(stage, row.Request)) {
		return false
	}
	// Rows already assigned to a specific actor are visible only to them;
	// unassigned rows (the receiver open pool) fall back to branch scope.
	if rec.ServiceNo != "" && rec.ServiceNo != actor.ServiceNo {
		return false
	}
	return true
}

// relevantLocation picks the Request location a stage is scoped by:
// outLocation for Executive/Verifier, inLocation for Dispatcher and
// Receiver. Non-SLT requests have no inLocation, so the dispatch stage falls
// back to outLocation for them.
func relevantLocation(stage models.Stage, req *models.Request) string {
	switch stage {
	case models.StageExecutive, models.StageVerify:
		return req.OutLocation
	case models.StageDispatch:
		if req.IsNonSltPlace {
			return req.OutLocation
		}
		return req.InLocation
	case models.StageReceive:
		return req.InLocation
	}
	return ""
}

func branchMatch(branches []string, location string) bool {
	for _, b := range branches {
		if strings.EqualFold(b, location) {
			return true
		}
	}
	return false
}

// loadPendingStage fetches the latest ledger row for a reference and checks
// that the stage is currently awaiting action.
func (e *Engine) loadPendingStage(ctx context.Context, ref string, stage models.Stage) (*models.Status, error) {
	st, err := e.Store.LatestStatusByReference(ctx, ref)
	if err != nil {
		log.Printf("Lookup of latest status for %s failed: %v", ref, err)
		return nil, ErrInternal
	}
	if st == nil || st.Request == nil {
		return nil, ErrNotFound
	}
	rec, ok := st.StageRecordFor(stage)
	if !ok || rec.State != models.StagePending {
		return nil, ErrStageNotPending
	}
	return st, nil
}

// refresh re-reads the latest, request-populated ledger row after a save.
func (e *Engine) refresh(ctx context.Context, ref string) (*models.Status, error) {
	st, err := e.Store.LatestStatusByReference(ctx, ref)
	if err != nil {
		log.Printf("Refresh of status for %s failed: %v", ref, err)
		return nil, ErrInternal
	}
	if st == nil {
		return nil, ErrNotFound
	}
	return st, nil
}

// save maps store failures onto the engine error taxonomy.
func (e *Engine) save(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error {
	if err := e.Store.SaveStageResult(ctx, st, req, tr); err != nil {
		if err == ErrConflict {
			return ErrConflict
		}
		log.Printf("Stage save for %s failed: %v", st.ReferenceNumber, err)
		return ErrInternal
	}
	return nil
}

func now() time.Time { return time.Now() }
